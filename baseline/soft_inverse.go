package baseline

import (
	"fmt"

	"github.com/SirZenith/kgebench/sparse"
	"github.com/SirZenith/kgebench/triples"
	lru "github.com/hashicorp/golang-lru/v2"
)

// memory budget for memoised dense score rows
const scoreCacheBytes = 256 << 20

type scoreSide uint8

const (
	sideTail scoreSide = iota
	sideHead
)

type scoreKey struct {
	relation int32
	side     scoreSide
}

// SoftInverseTriple scores candidates by the entity distributions of
// relations similar to the query relation. Similarity of two relations is the
// Jaccard index of their (head, tail) pair sets, inverse similarity compares
// pairs of one relation with flipped pairs of the other.
type SoftInverseTriple struct {
	numEntities int

	sim    *sparse.CSR // relation x relation
	simInv *sparse.CSR

	relToHead *sparse.CSR // relation x entity
	relToTail *sparse.CSR

	cache *lru.Cache[scoreKey, []float64]
}

// NewSoftInverseTriple builds the model, similarity values less than
// `threshold` are dropped when threshold is not nil.
func NewSoftInverseTriple(factory *triples.Factory, threshold *float64) (*SoftInverseTriple, error) {
	numEntities := factory.NumEntities()
	numRelations := factory.NumRelations()

	sim, simInv := RelationSimilarity(factory)
	if threshold != nil {
		sim = sim.Threshold(*threshold)
		simInv = simInv.Threshold(*threshold)
	}

	h, r, t := splitColumns(factory.Triples)

	relToHead, err := sparse.FromPairs(numRelations, numEntities, r, h, true)
	if err != nil {
		return nil, fmt.Errorf("failed to count heads per relation: %s", err)
	}

	relToTail, err := sparse.FromPairs(numRelations, numEntities, r, t, true)
	if err != nil {
		return nil, fmt.Errorf("failed to count tails per relation: %s", err)
	}

	capacity := scoreCacheBytes / (8 * max(numEntities, 1))
	capacity = max(1, min(capacity, 2*numRelations))

	cache, err := lru.New[scoreKey, []float64](capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create score cache: %s", err)
	}

	return &SoftInverseTriple{
		numEntities: numEntities,
		sim:         sim,
		simInv:      simInv,
		relToHead:   relToHead,
		relToTail:   relToTail,
		cache:       cache,
	}, nil
}

// RelationSimilarity returns Jaccard similarity and inverse similarity between
// all pairs of relations in factory.
func RelationSimilarity(factory *triples.Factory) (sim, simInv *sparse.CSR) {
	numEntities := uint64(factory.NumEntities())
	numRelations := factory.NumRelations()

	pairs := make([][]uint64, numRelations)
	inverse := make([][]uint64, numRelations)
	for _, t := range factory.Triples {
		h, tail := uint64(t.Head), uint64(t.Tail)
		pairs[t.Relation] = append(pairs[t.Relation], h*numEntities+tail)
		inverse[t.Relation] = append(inverse[t.Relation], tail*numEntities+h)
	}

	return sparse.Jaccard(pairs, pairs), sparse.Jaccard(pairs, inverse)
}

func (m *SoftInverseTriple) NumEntities() int {
	return m.numEntities
}

// ScoreTails ignores head entity, scores only depend on relation.
func (m *SoftInverseTriple) ScoreTails(_, relation int32, dst []float64) {
	m.score(scoreKey{relation: relation, side: sideTail}, dst)
}

// ScoreHeads ignores tail entity, scores only depend on relation.
func (m *SoftInverseTriple) ScoreHeads(relation, _ int32, dst []float64) {
	m.score(scoreKey{relation: relation, side: sideHead}, dst)
}

func (m *SoftInverseTriple) score(key scoreKey, dst []float64) {
	if row, ok := m.cache.Get(key); ok {
		copy(dst, row)
		return
	}

	direct, flipped := m.relToTail, m.relToHead
	if key.side == sideHead {
		direct, flipped = m.relToHead, m.relToTail
	}

	clear(dst)

	simIdx, simVal := m.sim.Row(int(key.relation))
	direct.AddVecMulTo(simIdx, simVal, dst)

	invIdx, invVal := m.simInv.Row(int(key.relation))
	flipped.AddVecMulTo(invIdx, invVal, dst)

	row := make([]float64, len(dst))
	copy(row, dst)
	m.cache.Add(key, row)
}
