package evaluation

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/SirZenith/kgebench/baseline"
	"github.com/SirZenith/kgebench/triples"
	"github.com/schollz/progressbar/v3"
)

const DefaultBatchSize = 2048

// RankBasedEvaluator ranks the true head and tail of every evaluation triple
// among all entities in the filtered setting: other candidates that form a
// known triple are excluded from ranking.
type RankBasedEvaluator struct {
	Ks           []int
	BatchSize    int
	ShowProgress bool
}

func NewRankBasedEvaluator(ks []int, batchSize int) *RankBasedEvaluator {
	if len(ks) == 0 {
		ks = Ks
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &RankBasedEvaluator{
		Ks:        ks,
		BatchSize: batchSize,
	}
}

// Evaluate computes metrics of model on evaluation triples. Evaluation triples
// and all triples in `filters` are used for filtering.
func (e *RankBasedEvaluator) Evaluate(ctx context.Context, model baseline.Model, evaluation *triples.Factory, filters ...*triples.Factory) (*MetricResults, error) {
	ranks, err := e.Ranks(ctx, model, evaluation, filters...)
	if err != nil {
		return nil, err
	}

	return ComputeMetrics(ranks, e.Ks), nil
}

// Ranks returns ranks for both head and tail prediction of every evaluation
// triple.
func (e *RankBasedEvaluator) Ranks(ctx context.Context, model baseline.Model, evaluation *triples.Factory, filters ...*triples.Factory) (*Ranks, error) {
	numEntities := model.NumEntities()
	if numEntities != evaluation.NumEntities() {
		return nil, fmt.Errorf("model knows %d entities, evaluation triples use %d", numEntities, evaluation.NumEntities())
	}

	known := triples.NewMappedSet(append([]*triples.Factory{evaluation}, filters...)...)

	batchSize := e.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	list := evaluation.Triples
	total := len(list)

	var bar *progressbar.ProgressBar
	if e.ShowProgress {
		bar = progressbar.NewOptions(
			total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("evaluating"),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Finish()
	}

	ranks := &Ranks{}
	scores := make([]float64, numEntities)

	for st := 0; st < total; st += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ed := min(st+batchSize, total)
		for _, t := range list[st:ed] {
			model.ScoreTails(t.Head, t.Relation, scores)
			ranks.append(filteredRank(scores, t.Tail, known.TailsOf(t.Head, t.Relation)))

			model.ScoreHeads(t.Relation, t.Tail, scores)
			ranks.append(filteredRank(scores, t.Head, known.HeadsOf(t.Relation, t.Tail)))
		}

		if bar != nil {
			bar.Add(ed - st)
		}
	}

	return ranks, nil
}

// filteredRank ranks `target` in `scores` after removing all other entities in
// `known`. Returns optimistic rank, pessimistic rank and number of candidates
// left. `scores` is modified.
func filteredRank(scores []float64, target int32, known map[int32]struct{}) (optimistic, pessimistic, numCandidates float64) {
	removed := 0
	for e := range known {
		if e == target {
			continue
		}
		scores[e] = math.NaN()
		removed++
	}

	trueScore := scores[target]

	greater, greaterEqual := 0, 0
	for _, s := range scores {
		// NaN never compares true, filtered entries drop out here
		if s > trueScore {
			greater++
			greaterEqual++
		} else if s == trueScore {
			greaterEqual++
		}
	}

	if math.IsNaN(trueScore) {
		// unscorable target is ranked last among all candidates
		greater = len(scores) - removed - 1
		greaterEqual = len(scores) - removed
	}

	return float64(greater + 1), float64(greaterEqual), float64(len(scores) - removed)
}
