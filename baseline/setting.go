package baseline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/SirZenith/kgebench/triples"
)

const (
	ModelMarginalDistribution = "MarginalDistribution"
	ModelSoftInverseTriple    = "SoftInverseTriple"
)

// keyword argument names, also used as result table columns
const (
	KeyEntityMargin   = "entity_margin"
	KeyRelationMargin = "relation_margin"
	KeyThreshold      = "threshold"
)

// KwargsKeys lists all keyword argument names across models in sorted order.
var KwargsKeys = []string{KeyEntityMargin, KeyRelationMargin, KeyThreshold}

// Setting selects a baseline model together with its keyword arguments.
type Setting struct {
	Model          string   `json:"model"`
	EntityMargin   *bool    `json:"entity_margin,omitempty"`
	RelationMargin *bool    `json:"relation_margin,omitempty"`
	Threshold      *float64 `json:"threshold,omitempty"`
}

func Marginal(entityMargin, relationMargin bool) Setting {
	return Setting{
		Model:          ModelMarginalDistribution,
		EntityMargin:   &entityMargin,
		RelationMargin: &relationMargin,
	}
}

// SoftInverse makes a SoftInverseTriple setting, nil threshold keeps all
// similarity values.
func SoftInverse(threshold *float64) Setting {
	return Setting{
		Model:     ModelSoftInverseTriple,
		Threshold: threshold,
	}
}

// DefaultSettings returns the benchmark grid: marginal distribution with every
// combination of margins, followed by soft inverse triple with no threshold,
// 0.1 and 0.3.
func DefaultSettings() []Setting {
	settings := []Setting{}
	for _, entityMargin := range []bool{true, false} {
		for _, relationMargin := range []bool{true, false} {
			settings = append(settings, Marginal(entityMargin, relationMargin))
		}
	}

	for _, threshold := range []float64{math.NaN(), 0.1, 0.3} {
		if math.IsNaN(threshold) {
			settings = append(settings, SoftInverse(nil))
		} else {
			settings = append(settings, SoftInverse(&threshold))
		}
	}

	return settings
}

// Validate checks model name and that only arguments of that model are given.
func (s Setting) Validate() error {
	switch s.Model {
	case ModelMarginalDistribution:
		if s.Threshold != nil {
			return fmt.Errorf("%s does not take %s", s.Model, KeyThreshold)
		}
	case ModelSoftInverseTriple:
		if s.EntityMargin != nil || s.RelationMargin != nil {
			return fmt.Errorf("%s does not take %s or %s", s.Model, KeyEntityMargin, KeyRelationMargin)
		}
		if s.Threshold != nil && (math.IsNaN(*s.Threshold) || *s.Threshold < 0) {
			return fmt.Errorf("invalid %s %v", KeyThreshold, *s.Threshold)
		}
	default:
		return fmt.Errorf("unknown model %q", s.Model)
	}

	return nil
}

// Build constructs model on given training triples.
func (s Setting) Build(factory *triples.Factory) (Model, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	switch s.Model {
	case ModelMarginalDistribution:
		return NewMarginalDistribution(factory, boolOr(s.EntityMargin, true), boolOr(s.RelationMargin, true))
	default:
		return NewSoftInverseTriple(factory, s.Threshold)
	}
}

func boolOr(value *bool, defaultValue bool) bool {
	if value == nil {
		return defaultValue
	}
	return *value
}

// Kwarg is a single keyword argument, a nil Value means the argument is given
// explicitly as null.
type Kwarg struct {
	Key   string
	Value any
}

// Kwargs returns keyword arguments of the setting sorted by key. Marginal
// distribution always reports both margins, soft inverse triple always reports
// threshold.
func (s Setting) Kwargs() []Kwarg {
	switch s.Model {
	case ModelMarginalDistribution:
		return []Kwarg{
			{Key: KeyEntityMargin, Value: boolOr(s.EntityMargin, true)},
			{Key: KeyRelationMargin, Value: boolOr(s.RelationMargin, true)},
		}
	case ModelSoftInverseTriple:
		if s.Threshold == nil {
			return []Kwarg{{Key: KeyThreshold}}
		}
		return []Kwarg{{Key: KeyThreshold, Value: *s.Threshold}}
	default:
		return nil
	}
}

// Kwarg looks up argument value by key, ok is false when the model does not
// have this argument or it is null.
func (s Setting) Kwarg(key string) (any, bool) {
	for _, kwarg := range s.Kwargs() {
		if kwarg.Key == key {
			return kwarg.Value, kwarg.Value != nil
		}
	}
	return nil, false
}

// CanonicalKwargs encodes keyword arguments as JSON object with sorted keys and
// `, ` / `: ` separators.
func (s Setting) CanonicalKwargs() string {
	parts := []string{}
	for _, kwarg := range s.Kwargs() {
		parts = append(parts, strconv.Quote(kwarg.Key)+": "+formatJSONValue(kwarg.Value))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// KwargsHash returns first 8 hex digits of SHA-256 of canonical kwargs.
func (s Setting) KwargsHash() string {
	sum := sha256.Sum256([]byte(s.CanonicalKwargs()))
	return hex.EncodeToString(sum[:])[:8]
}

func (s Setting) String() string {
	return s.Model + s.CanonicalKwargs()
}

func formatJSONValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return FormatFloat(v)
	default:
		return strconv.Quote(fmt.Sprint(v))
	}
}

// FormatFloat prints float in its shortest round-trip form, integral values keep
// a trailing `.0`.
func FormatFloat(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}

	text := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(text, ".") {
		text += ".0"
	}

	return text
}
