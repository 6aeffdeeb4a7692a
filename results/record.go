package results

import (
	"encoding/json"
	"math"

	"github.com/SirZenith/kgebench/baseline"
	"github.com/SirZenith/kgebench/database/data_model"
	"github.com/SirZenith/kgebench/evaluation"
)

// Record is outcome of one trial of one model setting on one dataset.
type Record struct {
	Dataset string `json:"dataset"`

	// statistics of the original training split
	Entities  int `json:"entities"`
	Relations int `json:"relations"`
	Triples   int `json:"triples"`

	Trial int    `json:"trial"`
	Model string `json:"model"`

	EntityMargin   *bool    `json:"entity_margin"`
	RelationMargin *bool    `json:"relation_margin"`
	Threshold      *float64 `json:"threshold"`

	Time float64 `json:"time"` // evaluation time in seconds

	Metrics map[string]float64 `json:"metrics"`
}

// NewRecord fills keyword argument columns from setting and metric values from
// evaluation result.
func NewRecord(setting baseline.Setting, result *evaluation.MetricResults) Record {
	record := Record{
		Model:   setting.Model,
		Metrics: map[string]float64{},
	}

	if value, ok := setting.Kwarg(baseline.KeyEntityMargin); ok {
		b := value.(bool)
		record.EntityMargin = &b
	}
	if value, ok := setting.Kwarg(baseline.KeyRelationMargin); ok {
		b := value.(bool)
		record.RelationMargin = &b
	}
	if value, ok := setting.Kwarg(baseline.KeyThreshold); ok {
		f := value.(float64)
		record.Threshold = &f
	}

	if result != nil {
		for _, name := range evaluation.Metrics {
			value, _ := result.Get(name)
			record.Metrics[name] = value
		}
	}

	return record
}

// Setting reconstructs model setting the record was produced by.
func (r *Record) Setting() baseline.Setting {
	return baseline.Setting{
		Model:          r.Model,
		EntityMargin:   r.EntityMargin,
		RelationMargin: r.RelationMargin,
		Threshold:      r.Threshold,
	}
}

// Metric returns value of named metric, NaN if record does not have it.
func (r *Record) Metric(name string) float64 {
	if value, ok := r.Metrics[name]; ok {
		return value
	}
	return math.NaN()
}

// ToTrialEntry converts record into database row.
func (r *Record) ToTrialEntry() data_model.TrialEntry {
	return data_model.TrialEntry{
		Dataset:        r.Dataset,
		Model:          r.Model,
		KwargsHash:     r.Setting().KwargsHash(),
		Trial:          r.Trial,
		Entities:       r.Entities,
		Relations:      r.Relations,
		Triples:        r.Triples,
		EntityMargin:   formatBool(r.EntityMargin),
		RelationMargin: formatBool(r.RelationMargin),
		Threshold:      formatThreshold(r.Threshold),
		Time:           r.Time,
		MRR:            r.Metric(evaluation.MetricMRR),
		IAMR:           r.Metric(evaluation.MetricIAMR),
		IGMR:           r.Metric(evaluation.MetricIGMR),
		Hits1:          r.Metric(evaluation.HitsAt(1)),
		Hits5:          r.Metric(evaluation.HitsAt(5)),
		Hits10:         r.Metric(evaluation.HitsAt(10)),
		Hits50:         r.Metric(evaluation.HitsAt(50)),
		Hits100:        r.Metric(evaluation.HitsAt(100)),
		AAMR:           r.Metric(evaluation.MetricAAMR),
		AAMRI:          r.Metric(evaluation.MetricAAMRI),
	}
}

// MarshalJSON writes NaN metrics as null, plain float64 can not be encoded
// into JSON.
func (r Record) MarshalJSON() ([]byte, error) {
	metrics := map[string]*float64{}
	for name, value := range r.Metrics {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			metrics[name] = nil
		} else {
			v := value
			metrics[name] = &v
		}
	}

	type plain Record
	return json.Marshal(struct {
		plain
		Metrics map[string]*float64 `json:"metrics"`
	}{plain(r), metrics})
}

func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	aux := struct {
		*plain
		Metrics map[string]*float64 `json:"metrics"`
	}{plain: (*plain)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.Metrics = map[string]float64{}
	for name, value := range aux.Metrics {
		if value == nil {
			r.Metrics[name] = math.NaN()
		} else {
			r.Metrics[name] = *value
		}
	}

	return nil
}
