package benchmark

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/SirZenith/kgebench/baseline"
	"github.com/SirZenith/kgebench/common"
	"github.com/SirZenith/kgebench/database"
	"github.com/SirZenith/kgebench/database/data_model"
	"github.com/SirZenith/kgebench/dataset"
	"github.com/SirZenith/kgebench/plot"
	"github.com/SirZenith/kgebench/results"
	"github.com/SirZenith/kgebench/triples"
	"github.com/charmbracelet/log"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

// SelectDatasets picks datasets to benchmark. Explicit names take precedence,
// test mode uses the smallest few datasets, otherwise all datasets up to and
// including FB15k-237 are used.
func SelectDatasets(registry *dataset.Registry, test bool, explicit []string) ([]dataset.Entry, error) {
	if len(explicit) > 0 {
		entries := make([]dataset.Entry, 0, len(explicit))
		for _, name := range explicit {
			entry, err := registry.Lookup(name)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}
		return entries, nil
	}

	sorted := registry.Sorted()
	if test {
		return sorted[:min(TestDatasetCnt, len(sorted))], nil
	}

	last, err := registry.Lookup(LastDefaultDataset)
	if err != nil {
		return sorted, nil
	}

	for i, entry := range sorted {
		if entry.Name == last.Name {
			return sorted[:i+1], nil
		}
	}

	return sorted, nil
}

type job struct {
	dataset *triples.Dataset
	setting baseline.Setting
}

// Build runs trials of every (dataset, setting) pair on a bounded worker pool.
// Records are returned in (dataset, setting, trial) order, written to result
// table and, when configured, to result database.
func Build(ctx context.Context, options Options) ([]results.Record, error) {
	options = options.WithDefaults()
	if err := CheckTrials(options.Trials); err != nil {
		return nil, err
	}

	entries, err := SelectDatasets(options.Registry, options.Test, options.Datasets)
	if err != nil {
		return nil, err
	}

	datasets := make([]*triples.Dataset, 0, len(entries))
	for _, entry := range entries {
		ds, err := dataset.FetchAndLoad(ctx, entry, options.DataDir, options.Download)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, ds)
	}

	jobs := []job{}
	for _, ds := range datasets {
		for _, setting := range options.Settings {
			jobs = append(jobs, job{dataset: ds, setting: setting})
		}
	}

	common.LogBannerMsg([]string{
		fmt.Sprintf("datasets: %d", len(datasets)),
		fmt.Sprintf("settings: %d", len(options.Settings)),
		fmt.Sprintf("trials  : %d", options.Trials),
	}, 5)

	bar := progressbar.NewOptions(
		len(jobs),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("baseline"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)

	jobResults := make([][]results.Record, len(jobs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(options.JobCnt)

	for i, j := range jobs {
		group.Go(func() error {
			records, err := RunTrials(groupCtx, j.dataset, j.setting, &options)
			if err != nil {
				return err
			}

			jobResults[i] = records
			bar.Add(1)

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	records := []results.Record{}
	for _, list := range jobResults {
		records = append(records, list...)
	}

	resultPath := options.ResultPath()
	if err := results.SaveTSV(resultPath, records); err != nil {
		return nil, err
	}
	log.Infof("results written to %s", resultPath)

	if options.DatabasePath != "" {
		if err := saveToDatabase(options.DatabasePath, records); err != nil {
			return nil, err
		}
	}

	return records, nil
}

func saveToDatabase(dbPath string, records []results.Record) error {
	db, err := database.Open(dbPath)
	if err != nil {
		return err
	}
	defer database.Close(db)

	entries := make([]data_model.TrialEntry, len(records))
	for i := range records {
		entries[i] = records[i].ToTrialEntry()
	}

	if err := data_model.UpsertTrials(db, entries); err != nil {
		return fmt.Errorf("failed to save results to %s: %s", dbPath, err)
	}

	log.Infof("%d trial(s) saved to %s", len(entries), dbPath)

	return nil
}

// Run loads existing result table or builds a new one, then draws charts. A
// new table is built when none exists, or when rebuild or test mode is
// requested.
func Run(ctx context.Context, options Options) ([]results.Record, error) {
	options = options.WithDefaults()

	resultPath := options.ResultPath()

	var records []results.Record
	var err error
	if common.FileExists(resultPath) && !options.Rebuild && !options.Test {
		log.Infof("loading results from %s", resultPath)
		records, err = results.LoadTSV(resultPath)
	} else {
		records, err = Build(ctx, options)
	}

	if err != nil {
		return nil, err
	}

	_, err = plot.Plot(records, plot.Options{
		OutputDir: options.ResultDir,
		Prefix:    options.ChartPrefix(),
		Format:    options.ImageFormat,
		Test:      options.Test,
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}
