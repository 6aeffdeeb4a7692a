package benchmark

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/SirZenith/kgebench/baseline"
	"github.com/SirZenith/kgebench/common"
	"github.com/SirZenith/kgebench/dataset"
	"github.com/SirZenith/kgebench/evaluation"
	"github.com/SirZenith/kgebench/network"
)

const (
	DefaultTrials = 10
	DefaultJobCnt = 4

	// last dataset of a full run, larger ones take too long with the
	// similarity based baselines
	LastDefaultDataset = "FB15k-237"
	TestDatasetCnt     = 5

	ResultFileName     = "results.tsv"
	TestResultFileName = "test_results.tsv"
	TestChartPrefix    = "test_"

	// evaluation on training split larger than this shows its own progress bar
	evaluationProgressThreshold = 100_000
)

var ErrInvalidTrials = errors.New("trial count must be at least 1")

// CheckTrials rejects trial counts that would produce no record.
func CheckTrials(trials int) error {
	if trials < 1 {
		return fmt.Errorf("%w, got %d", ErrInvalidTrials, trials)
	}
	return nil
}

type Options struct {
	BatchSize int
	Trials    int // zero means DefaultTrials
	Rebuild   bool
	Test      bool
	JobCnt    int

	ResultDir    string
	RunsDir      string // per setting trial cache, caching is disabled when empty
	DataDir      string
	DatabasePath string // results are also written into this database when not empty

	Registry *dataset.Registry
	Datasets []string // explicit dataset selection
	Settings []baseline.Setting

	Download    network.DownloadOptions
	ImageFormat string
}

// WithDefaults returns a copy of options with zero values replaced by
// defaults. Invalid values are kept for CheckTrials to report.
func (o Options) WithDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = evaluation.DefaultBatchSize
	}
	if o.Trials == 0 {
		o.Trials = DefaultTrials
	}
	if o.JobCnt <= 0 {
		o.JobCnt = DefaultJobCnt
	}
	if o.Registry == nil {
		o.Registry = dataset.Default()
	}
	if len(o.Settings) == 0 {
		o.Settings = baseline.DefaultSettings()
	}
	if o.ImageFormat == "" {
		o.ImageFormat = common.ImageFormatPng
	}
	return o
}

// ResultPath returns path of result table, test runs use a separate file.
func (o *Options) ResultPath() string {
	name := ResultFileName
	if o.Test {
		name = TestResultFileName
	}
	return filepath.Join(o.ResultDir, name)
}

// ChartPrefix is prepended to every chart file name.
func (o *Options) ChartPrefix() string {
	if o.Test {
		return TestChartPrefix
	}
	return ""
}
