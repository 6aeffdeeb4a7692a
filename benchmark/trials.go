package benchmark

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/SirZenith/kgebench/baseline"
	"github.com/SirZenith/kgebench/common"
	"github.com/SirZenith/kgebench/evaluation"
	"github.com/SirZenith/kgebench/results"
	"github.com/SirZenith/kgebench/triples"
	"github.com/charmbracelet/log"
)

// CachePath returns path of trial cache file of given dataset and setting.
func CachePath(runsDir, datasetName string, setting baseline.Setting) string {
	name := fmt.Sprintf("%s_%s_%s.json", datasetName, setting.Model, setting.KwargsHash())
	return filepath.Join(runsDir, common.InvalidPathCharReplace(name))
}

// RunTrials evaluates setting on `Trials` remixes of dataset. Trial i uses
// remix seed i. Records found in trial cache are returned without running
// anything.
func RunTrials(ctx context.Context, ds *triples.Dataset, setting baseline.Setting, options *Options) ([]results.Record, error) {
	cachePath := ""
	if options.RunsDir != "" {
		cachePath = CachePath(options.RunsDir, ds.Name, setting)

		records, err := readCache(cachePath)
		if err == nil {
			log.Debugf("using cached trials %s", cachePath)
			return records, nil
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if ds.Validation == nil {
		return nil, fmt.Errorf("dataset %s has no validation split", ds.Name)
	}

	evaluator := evaluation.NewRankBasedEvaluator(evaluation.Ks, options.BatchSize)
	evaluator.ShowProgress = ds.Training.NumTriples() > evaluationProgressThreshold

	base := results.Record{
		Dataset:   ds.Name,
		Entities:  ds.Training.NumEntities(),
		Relations: ds.Training.NumRelations(),
		Triples:   ds.Training.NumTriples(),
	}

	records := make([]results.Record, 0, options.Trials)
	for trial := range options.Trials {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		trialDataset := ds.Remix(uint64(trial))

		model, err := setting.Build(trialDataset.Training)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s on %s: %s", setting, ds.Name, err)
		}

		start := time.Now()
		result, err := evaluator.Evaluate(
			ctx, model, trialDataset.Testing,
			trialDataset.Training, trialDataset.Validation,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate %s on %s: %w", setting, ds.Name, err)
		}
		elapsed := time.Since(start)

		record := results.NewRecord(setting, result)
		record.Dataset = base.Dataset
		record.Entities = base.Entities
		record.Relations = base.Relations
		record.Triples = base.Triples
		record.Trial = trial
		record.Time = elapsed.Seconds()

		log.Debugf("%s %s trial %d: mrr %.4f (%s)", ds.Name, setting, trial, result.MRR, elapsed)

		records = append(records, record)
	}

	if cachePath != "" {
		if err := writeCache(cachePath, records); err != nil {
			return nil, err
		}
	}

	return records, nil
}

func readCache(path string) ([]results.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	records := []results.Record{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse trial cache %s: %s", path, err)
	}

	return records, nil
}

func writeCache(path string, records []results.Record) error {
	return common.WriteFileAtomic(path, func(w io.Writer) error {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	})
}
