package benchmark

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SirZenith/kgebench/baseline"
	"github.com/SirZenith/kgebench/common"
	"github.com/SirZenith/kgebench/database"
	"github.com/SirZenith/kgebench/database/data_model"
	"github.com/SirZenith/kgebench/dataset"
	"github.com/SirZenith/kgebench/evaluation"
	"github.com/SirZenith/kgebench/results"
	"github.com/SirZenith/kgebench/triples"
)

func writeToyDataset(t *testing.T, dir string) {
	t.Helper()

	lines := []string{}
	for i := range 8 {
		lines = append(lines,
			fmt.Sprintf("e%d\tlikes\te%d", i, (i+1)%8),
			fmt.Sprintf("e%d\tknows\te%d", (i+1)%8, i),
		)
	}

	splits := map[string][]string{
		dataset.TrainFileName: lines[:12],
		dataset.TestFileName:  lines[12:14],
		dataset.ValidFileName: lines[14:],
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create dataset dir: %s", err)
	}
	for name, content := range splits {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(strings.Join(content, "\n")+"\n"), 0o644); err != nil {
			t.Fatalf("failed to write %s: %s", path, err)
		}
	}
}

func toyOptions(t *testing.T) Options {
	t.Helper()

	root := t.TempDir()
	dataDir := filepath.Join(root, "toy")
	writeToyDataset(t, dataDir)

	entry, err := dataset.NewLocalEntry("Toy", dataDir)
	if err != nil {
		t.Fatalf("failed to make local entry: %s", err)
	}

	threshold := 0.1

	return Options{
		Trials:       2,
		JobCnt:       2,
		ResultDir:    filepath.Join(root, "results"),
		RunsDir:      filepath.Join(root, "runs"),
		DataDir:      filepath.Join(root, "data"),
		DatabasePath: filepath.Join(root, "results", "results.db"),
		Registry:     dataset.NewRegistry(entry),
		Settings: []baseline.Setting{
			baseline.Marginal(true, false),
			baseline.SoftInverse(&threshold),
		},
		ImageFormat: common.ImageFormatPng,
	}
}

func TestSelectDatasets(t *testing.T) {
	registry := dataset.Default()

	testSet, err := SelectDatasets(registry, true, nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(testSet) != TestDatasetCnt {
		t.Errorf("expecting %d test datasets, got %d", TestDatasetCnt, len(testSet))
	}

	full, err := SelectDatasets(registry, false, nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if last := full[len(full)-1].Name; last != "FB15k-237" {
		t.Errorf("full run should end with FB15k-237, got %s", last)
	}
	for _, entry := range full {
		if entry.Triples > 310079 {
			t.Errorf("dataset %s is larger than FB15k-237", entry.Name)
		}
	}

	explicit, err := SelectDatasets(registry, true, []string{"wn18rr", "Nations"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(explicit) != 2 || explicit[0].Name != "WN18RR" || explicit[1].Name != "Nations" {
		t.Errorf("explicit selection not kept in order: %v", explicit)
	}

	if _, err := SelectDatasets(registry, false, []string{"nope"}); !errors.Is(err, dataset.ErrUnknownDataset) {
		t.Errorf("expecting ErrUnknownDataset, got %v", err)
	}
}

func TestBuild(t *testing.T) {
	options := toyOptions(t)

	records, err := Build(context.Background(), options)
	if err != nil {
		t.Fatalf("build failed: %s", err)
	}

	if len(records) != 4 {
		t.Fatalf("expecting 4 records, got %d", len(records))
	}

	wantOrder := []struct {
		model string
		trial int
	}{
		{baseline.ModelMarginalDistribution, 0},
		{baseline.ModelMarginalDistribution, 1},
		{baseline.ModelSoftInverseTriple, 0},
		{baseline.ModelSoftInverseTriple, 1},
	}
	for i, want := range wantOrder {
		record := records[i]
		if record.Model != want.model || record.Trial != want.trial {
			t.Errorf("record %d: got %s trial %d, want %s trial %d", i, record.Model, record.Trial, want.model, want.trial)
		}
		if record.Dataset != "Toy" || record.Triples != 12 || record.Entities != 8 {
			t.Errorf("record %d: unexpected dataset statistics %+v", i, record)
		}
		for _, metric := range evaluation.Metrics {
			if _, ok := record.Metrics[metric]; !ok {
				t.Errorf("record %d: missing metric %s", i, metric)
			}
		}
		mrr := record.Metric(evaluation.MetricMRR)
		if mrr <= 0 || mrr > 1 {
			t.Errorf("record %d: mrr out of range: %v", i, mrr)
		}
	}

	for _, setting := range options.Settings {
		path := CachePath(options.RunsDir, "Toy", setting)
		if !common.FileExists(path) {
			t.Errorf("trial cache %s not written", path)
		}
	}

	stored, err := results.LoadTSV(filepath.Join(options.ResultDir, ResultFileName))
	if err != nil {
		t.Fatalf("failed to read result table: %s", err)
	}
	if len(stored) != len(records) {
		t.Errorf("result table has %d rows, want %d", len(stored), len(records))
	}

	db, err := database.Open(options.DatabasePath)
	if err != nil {
		t.Fatalf("failed to open database: %s", err)
	}
	defer database.Close(db)

	var count int64
	db.Model(&data_model.TrialEntry{}).Count(&count)
	if count != 4 {
		t.Errorf("expecting 4 database rows, got %d", count)
	}
}

func TestRunTrialsUsesCache(t *testing.T) {
	runsDir := t.TempDir()
	setting := baseline.Marginal(true, true)

	cached := []results.Record{results.NewRecord(setting, nil)}
	cached[0].Dataset = "Toy"
	cached[0].Trial = 7
	cached[0].Metrics[evaluation.MetricMRR] = 0.5

	if err := writeCache(CachePath(runsDir, "Toy", setting), cached); err != nil {
		t.Fatalf("failed to write cache: %s", err)
	}

	// dataset without validation split can not be evaluated, only cache can
	// make this succeed
	ds := &triples.Dataset{Name: "Toy", Training: &triples.Factory{}}
	options := Options{Trials: 3, RunsDir: runsDir}

	records, err := RunTrials(context.Background(), ds, setting, &options)
	if err != nil {
		t.Fatalf("expecting cached records, got error: %s", err)
	}
	if len(records) != 1 || records[0].Trial != 7 || records[0].Metric(evaluation.MetricMRR) != 0.5 {
		t.Errorf("unexpected records %+v", records)
	}

	options.RunsDir = ""
	if _, err := RunTrials(context.Background(), ds, setting, &options); err == nil {
		t.Error("expecting error without cache")
	}
}

func TestRunTrialsCancelled(t *testing.T) {
	options := toyOptions(t)
	options.RunsDir = ""
	options = options.WithDefaults()

	entry, _ := options.Registry.Lookup("Toy")
	ds, err := dataset.Load(entry.Name, dataset.Dir(entry, options.DataDir))
	if err != nil {
		t.Fatalf("failed to load toy dataset: %s", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := RunTrials(ctx, ds, options.Settings[0], &options); !errors.Is(err, context.Canceled) {
		t.Errorf("expecting context.Canceled, got %v", err)
	}
}

func TestRunLoadsExistingResults(t *testing.T) {
	options := toyOptions(t)

	if _, err := Build(context.Background(), options); err != nil {
		t.Fatalf("build failed: %s", err)
	}

	// loading must not touch datasets
	options.Registry = dataset.NewRegistry()
	options.DatabasePath = ""

	records, err := Run(context.Background(), options)
	if err != nil {
		t.Fatalf("run failed: %s", err)
	}
	if len(records) != 4 {
		t.Errorf("expecting 4 loaded records, got %d", len(records))
	}

	for _, name := range []string{"times.svg", "times.png", "mrr.png", "summary.svg", "summary.png", "charts.pdf"} {
		if !common.FileExists(filepath.Join(options.ResultDir, name)) {
			t.Errorf("chart %s not written", name)
		}
	}
}

func TestOptionsPaths(t *testing.T) {
	options := Options{ResultDir: "out"}
	if options.ResultPath() != filepath.Join("out", "results.tsv") || options.ChartPrefix() != "" {
		t.Errorf("unexpected paths %s %q", options.ResultPath(), options.ChartPrefix())
	}

	options.Test = true
	if options.ResultPath() != filepath.Join("out", "test_results.tsv") || options.ChartPrefix() != "test_" {
		t.Errorf("unexpected test paths %s %q", options.ResultPath(), options.ChartPrefix())
	}
}

func TestTrialCount(t *testing.T) {
	if got := (Options{}).WithDefaults().Trials; got != DefaultTrials {
		t.Errorf("unset trial count should default to %d, got %d", DefaultTrials, got)
	}
	if got := (Options{Trials: -1}).WithDefaults().Trials; got != -1 {
		t.Errorf("invalid trial count should be kept, got %d", got)
	}

	for _, trials := range []int{0, -3} {
		if err := CheckTrials(trials); !errors.Is(err, ErrInvalidTrials) {
			t.Errorf("CheckTrials(%d): expecting ErrInvalidTrials, got %v", trials, err)
		}
	}
	if err := CheckTrials(1); err != nil {
		t.Errorf("CheckTrials(1): unexpected error %s", err)
	}

	// rejected before any dataset is looked up
	_, err := Build(context.Background(), Options{
		Trials:   -1,
		Registry: dataset.NewRegistry(),
		Datasets: []string{"missing"},
	})
	if !errors.Is(err, ErrInvalidTrials) {
		t.Errorf("expecting ErrInvalidTrials from Build, got %v", err)
	}
}
