package evaluation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Ks are the cut-offs of hits@k reported by default.
var Ks = []int{1, 5, 10, 50, 100}

// Metrics lists metric names in result table order.
var Metrics = []string{
	MetricMRR, MetricIAMR, MetricIGMR,
	"hits@1", "hits@5", "hits@10", "hits@50", "hits@100",
	MetricAAMR, MetricAAMRI,
}

const (
	MetricMRR   = "mrr"   // mean reciprocal rank
	MetricIAMR  = "iamr"  // inverse arithmetic mean rank
	MetricIGMR  = "igmr"  // inverse geometric mean rank
	MetricAAMR  = "aamr"  // adjusted arithmetic mean rank
	MetricAAMRI = "aamri" // adjusted arithmetic mean rank index
)

var ErrUnknownMetric = errors.New("unknown metric")

// HitsAt returns metric name of hits@k.
func HitsAt(k int) string {
	return "hits@" + strconv.Itoa(k)
}

// Ranks collects ranks of true targets among their candidates.
type Ranks struct {
	Optimistic  []float64
	Pessimistic []float64
	Expected    []float64 // expected rank under uniformly random scoring
}

func (r *Ranks) Len() int {
	return len(r.Optimistic)
}

func (r *Ranks) append(optimistic, pessimistic, numCandidates float64) {
	r.Optimistic = append(r.Optimistic, optimistic)
	r.Pessimistic = append(r.Pessimistic, pessimistic)
	r.Expected = append(r.Expected, (numCandidates+1)/2)
}

// Realistic returns mean of optimistic and pessimistic ranks.
func (r *Ranks) Realistic() []float64 {
	result := make([]float64, len(r.Optimistic))
	for i := range result {
		result[i] = (r.Optimistic[i] + r.Pessimistic[i]) / 2
	}
	return result
}

// MetricResults holds rank-based metrics computed on realistic ranks.
type MetricResults struct {
	MRR   float64
	IAMR  float64
	IGMR  float64
	Hits  map[int]float64
	AAMR  float64
	AAMRI float64
}

// ComputeMetrics summarizes ranks. Metrics of empty ranks are NaN.
func ComputeMetrics(ranks *Ranks, ks []int) *MetricResults {
	result := &MetricResults{Hits: map[int]float64{}}

	if ranks.Len() == 0 {
		nan := math.NaN()
		result.MRR, result.IAMR, result.IGMR, result.AAMR, result.AAMRI = nan, nan, nan, nan, nan
		for _, k := range ks {
			result.Hits[k] = nan
		}
		return result
	}

	realistic := ranks.Realistic()

	reciprocal := make([]float64, len(realistic))
	for i, rank := range realistic {
		reciprocal[i] = 1 / rank
	}

	meanRank := stat.Mean(realistic, nil)
	expectedMeanRank := stat.Mean(ranks.Expected, nil)

	result.MRR = stat.Mean(reciprocal, nil)
	result.IAMR = 1 / meanRank
	result.IGMR = 1 / stat.GeometricMean(realistic, nil)
	result.AAMR = meanRank / expectedMeanRank
	result.AAMRI = 1 - (meanRank-1)/(expectedMeanRank-1)

	for _, k := range ks {
		hit := 0
		for _, rank := range realistic {
			if rank <= float64(k) {
				hit++
			}
		}
		result.Hits[k] = float64(hit) / float64(len(realistic))
	}

	return result
}

// Get looks up metric value by name, e.g. `mrr` or `hits@10`.
func (m *MetricResults) Get(name string) (float64, error) {
	switch name {
	case MetricMRR:
		return m.MRR, nil
	case MetricIAMR:
		return m.IAMR, nil
	case MetricIGMR:
		return m.IGMR, nil
	case MetricAAMR:
		return m.AAMR, nil
	case MetricAAMRI:
		return m.AAMRI, nil
	}

	if suffix, ok := strings.CutPrefix(name, "hits@"); ok {
		k, err := strconv.Atoi(suffix)
		if err == nil {
			if value, ok := m.Hits[k]; ok {
				return value, nil
			}
		}
	}

	return 0, fmt.Errorf("%w: %s", ErrUnknownMetric, name)
}

// Values returns values of given metrics in order.
func (m *MetricResults) Values(names []string) ([]float64, error) {
	values := make([]float64, len(names))
	for i, name := range names {
		value, err := m.Get(name)
		if err != nil {
			return nil, err
		}
		values[i] = value
	}
	return values, nil
}
