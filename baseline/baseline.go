// Package baseline implements non-parametric knowledge graph completion
// models. They score candidate entities directly from co-occurrence statistics
// of the training triples and have no trainable parameters.
package baseline

import (
	"fmt"

	"github.com/SirZenith/kgebench/sparse"
	"github.com/SirZenith/kgebench/triples"
)

// Model scores every entity as the missing part of a partial triple. `dst`
// must have length NumEntities(), higher score means more plausible.
type Model interface {
	NumEntities() int
	ScoreTails(head, relation int32, dst []float64)
	ScoreHeads(relation, tail int32, dst []float64)
}

// splitColumns returns head, relation and tail id columns of given triples.
func splitColumns(list []triples.Triple) (heads, relations, tails []int32) {
	heads = make([]int32, len(list))
	relations = make([]int32, len(list))
	tails = make([]int32, len(list))

	for i, t := range list {
		heads[i] = t.Head
		relations[i] = t.Relation
		tails[i] = t.Tail
	}

	return heads, relations, tails
}

// MarginalDistribution scores tails of (h, r) by the empirical distribution
// of tails seen with head h, the distribution of tails seen with relation r,
// or the product of both. Heads are scored symmetrically.
type MarginalDistribution struct {
	numEntities int

	tailPerHead *sparse.CSR // entity x entity, nil when entity margin is off
	headPerTail *sparse.CSR

	tailPerRelation *sparse.CSR // relation x entity, nil when relation margin is off
	headPerRelation *sparse.CSR
}

func NewMarginalDistribution(factory *triples.Factory, entityMargin, relationMargin bool) (*MarginalDistribution, error) {
	numEntities := factory.NumEntities()
	numRelations := factory.NumRelations()
	h, r, t := splitColumns(factory.Triples)

	model := &MarginalDistribution{numEntities: numEntities}

	var err error
	if entityMargin {
		if model.tailPerHead, err = sparse.FromPairs(numEntities, numEntities, h, t, true); err != nil {
			return nil, fmt.Errorf("failed to count tails per head: %s", err)
		}
		if model.headPerTail, err = sparse.FromPairs(numEntities, numEntities, t, h, true); err != nil {
			return nil, fmt.Errorf("failed to count heads per tail: %s", err)
		}
	}

	if relationMargin {
		if model.tailPerRelation, err = sparse.FromPairs(numRelations, numEntities, r, t, true); err != nil {
			return nil, fmt.Errorf("failed to count tails per relation: %s", err)
		}
		if model.headPerRelation, err = sparse.FromPairs(numRelations, numEntities, r, h, true); err != nil {
			return nil, fmt.Errorf("failed to count heads per relation: %s", err)
		}
	}

	return model, nil
}

func (m *MarginalDistribution) NumEntities() int {
	return m.numEntities
}

func (m *MarginalDistribution) ScoreTails(head, relation int32, dst []float64) {
	marginalScore(head, relation, m.tailPerHead, m.tailPerRelation, dst)
}

func (m *MarginalDistribution) ScoreHeads(relation, tail int32, dst []float64) {
	marginalScore(tail, relation, m.headPerTail, m.headPerRelation, dst)
}

func marginalScore(entity, relation int32, perEntity, perRelation *sparse.CSR, dst []float64) {
	switch {
	case perEntity != nil && perRelation != nil:
		sparse.MulRowsTo(perEntity, int(entity), perRelation, int(relation), dst)
	case perEntity != nil:
		perEntity.CopyRowTo(int(entity), dst)
	case perRelation != nil:
		perRelation.CopyRowTo(int(relation), dst)
	default:
		uniform := 1.0 / float64(len(dst))
		for i := range dst {
			dst[i] = uniform
		}
	}
}
