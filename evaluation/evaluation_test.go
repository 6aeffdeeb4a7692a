package evaluation

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/SirZenith/kgebench/triples"
)

// fixedModel returns the same scores for every query.
type fixedModel struct {
	tails []float64
	heads []float64
}

func (m *fixedModel) NumEntities() int { return len(m.tails) }

func (m *fixedModel) ScoreTails(_, _ int32, dst []float64) { copy(dst, m.tails) }

func (m *fixedModel) ScoreHeads(_, _ int32, dst []float64) { copy(dst, m.heads) }

func factoryOf(numEntities int, list ...triples.Triple) *triples.Factory {
	entities, relations := triples.NewIDMap(), triples.NewIDMap()
	for i := 0; i < numEntities; i++ {
		entities.GetOrAdd(string(rune('a' + i)))
	}
	relations.GetOrAdd("r")

	return &triples.Factory{Entities: entities, Relations: relations, Triples: list}
}

func TestFilteredRankTies(t *testing.T) {
	scores := []float64{0.5, 0.9, 0.5, 0.1, 0.5}

	optimistic, pessimistic, candidates := filteredRank(scores, 2, nil)
	if optimistic != 2 || pessimistic != 4 || candidates != 5 {
		t.Errorf("got (%v, %v, %v), want (2, 4, 5)", optimistic, pessimistic, candidates)
	}
}

func TestFilteredRankRemovesKnown(t *testing.T) {
	scores := []float64{0.5, 0.9, 0.5, 0.1, 0.5}
	known := map[int32]struct{}{1: {}, 2: {}, 4: {}}

	optimistic, pessimistic, candidates := filteredRank(scores, 2, known)
	if optimistic != 1 || pessimistic != 2 || candidates != 3 {
		t.Errorf("got (%v, %v, %v), want (1, 2, 3)", optimistic, pessimistic, candidates)
	}
}

func TestEvaluateFiltered(t *testing.T) {
	model := &fixedModel{
		tails: []float64{0.1, 0.4, 0.3, 0.2},
		heads: []float64{0.4, 0.3, 0.2, 0.1},
	}

	evaluation := factoryOf(4, triples.Triple{Head: 0, Relation: 0, Tail: 2})
	training := factoryOf(4, triples.Triple{Head: 0, Relation: 0, Tail: 1})

	evaluator := NewRankBasedEvaluator([]int{1, 2}, 1)

	ranks, err := evaluator.Ranks(context.Background(), model, evaluation, training)
	if err != nil {
		t.Fatalf("evaluation failed: %s", err)
	}

	// tail 2 ranks first once tail 1 is filtered, head 0 has the best score
	realistic := ranks.Realistic()
	if len(realistic) != 2 || realistic[0] != 1 || realistic[1] != 1 {
		t.Errorf("unexpected realistic ranks %v", realistic)
	}

	// unfiltered evaluation puts tail 2 second
	ranks, err = evaluator.Ranks(context.Background(), model, evaluation)
	if err != nil {
		t.Fatalf("evaluation failed: %s", err)
	}
	if got := ranks.Realistic()[0]; got != 2 {
		t.Errorf("unfiltered tail rank = %v, want 2", got)
	}
}

func TestEvaluateCancelled(t *testing.T) {
	model := &fixedModel{tails: []float64{1, 2}, heads: []float64{1, 2}}
	evaluation := factoryOf(2, triples.Triple{Head: 0, Relation: 0, Tail: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRankBasedEvaluator(nil, 0).Evaluate(ctx, model, evaluation)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expecting context.Canceled, got %v", err)
	}
}

func TestComputeMetrics(t *testing.T) {
	ranks := &Ranks{
		Optimistic:  []float64{1, 4},
		Pessimistic: []float64{1, 4},
		Expected:    []float64{5, 5},
	}

	m := ComputeMetrics(ranks, []int{1, 5})

	check := func(name string, got, want float64) {
		t.Helper()
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}

	check("mrr", m.MRR, (1+0.25)/2)
	check("iamr", m.IAMR, 1/2.5)
	check("igmr", m.IGMR, 0.5)
	check("hits@1", m.Hits[1], 0.5)
	check("hits@5", m.Hits[5], 1)
	check("aamr", m.AAMR, 2.5/5)
	check("aamri", m.AAMRI, 1-1.5/4)

	value, err := m.Get("hits@5")
	if err != nil || value != 1 {
		t.Errorf("Get(hits@5) = %v, %v", value, err)
	}

	if _, err := m.Get("hits@3"); !errors.Is(err, ErrUnknownMetric) {
		t.Errorf("expecting ErrUnknownMetric for hits@3, got %v", err)
	}
}

func TestComputeMetricsEmpty(t *testing.T) {
	m := ComputeMetrics(&Ranks{}, Ks)
	if !math.IsNaN(m.MRR) || !math.IsNaN(m.Hits[10]) {
		t.Errorf("metrics of empty ranks should be NaN, got %+v", m)
	}
}
