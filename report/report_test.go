package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/SirZenith/kgebench/baseline"
	"github.com/SirZenith/kgebench/evaluation"
	"github.com/SirZenith/kgebench/results"
	"golang.org/x/text/language"
)

func sampleRecords() []results.Record {
	records := []results.Record{}
	for _, setting := range []baseline.Setting{baseline.SoftInverse(nil), baseline.Marginal(true, true)} {
		for trial := range 2 {
			record := results.NewRecord(setting, nil)
			record.Dataset = "Nations"
			record.Trial = trial
			record.Time = float64(trial + 1)
			record.Metrics[evaluation.MetricMRR] = 0.25 * float64(trial+1)
			records = append(records, record)
		}
	}
	return records
}

func TestSummarize(t *testing.T) {
	summaries := Summarize(sampleRecords(), []string{evaluation.MetricMRR})
	if len(summaries) != 2 {
		t.Fatalf("expecting 2 summaries, got %d", len(summaries))
	}

	first := summaries[0]
	if first.Model != "SoftInverseTriple" || first.Trials != 2 {
		t.Errorf("unexpected first summary %+v", first)
	}
	if first.Means[evaluation.MetricMRR] != 0.375 || first.Time != 1.5 {
		t.Errorf("unexpected means %+v, time %v", first.Means, first.Time)
	}

	SortSummaries(summaries, language.AmericanEnglish)
	if summaries[0].Model != "MarginalDistribution /e /r" {
		t.Errorf("expecting marginal distribution first after sort, got %s", summaries[0].Model)
	}
}

func TestWriteLocalized(t *testing.T) {
	summaries := Summarize(sampleRecords(), []string{evaluation.MetricMRR})

	buffer := bytes.Buffer{}
	if err := Write(&buffer, summaries, []string{evaluation.MetricMRR}, language.AmericanEnglish); err != nil {
		t.Fatalf("write failed: %s", err)
	}
	if !strings.Contains(buffer.String(), "0.3750") {
		t.Errorf("expecting english decimal point in:\n%s", buffer.String())
	}

	buffer.Reset()
	if err := Write(&buffer, summaries, []string{evaluation.MetricMRR}, language.German); err != nil {
		t.Fatalf("write failed: %s", err)
	}
	if !strings.Contains(buffer.String(), "0,3750") {
		t.Errorf("expecting german decimal comma in:\n%s", buffer.String())
	}
}

func TestReportUnknownMetric(t *testing.T) {
	err := Report(&bytes.Buffer{}, sampleRecords(), []string{"nope"}, "en-US")
	if !errors.Is(err, evaluation.ErrUnknownMetric) {
		t.Errorf("expecting ErrUnknownMetric, got %v", err)
	}
}
