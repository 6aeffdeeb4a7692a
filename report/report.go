package report

import (
	"fmt"
	"io"
	"slices"

	"github.com/SirZenith/kgebench/evaluation"
	"github.com/SirZenith/kgebench/plot"
	"github.com/SirZenith/kgebench/results"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/jeandeaual/go-locale"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"
)

// DefaultMetrics are shown when no metric is selected.
var DefaultMetrics = []string{evaluation.MetricMRR, evaluation.HitsAt(10), evaluation.MetricAAMRI}

// ResolveLanguage parses `lang`, falling back to system locale and then to
// American English.
func ResolveLanguage(lang string) language.Tag {
	langTag := language.AmericanEnglish

	if lang != "" {
		if parsedTag, err := language.Parse(lang); err == nil {
			langTag = parsedTag
		} else {
			log.Warnf("invalid locale, fallback to %s: %s", langTag, err)
		}
	} else if lang, err := locale.GetLocale(); err == nil {
		if parsedTag, err := language.Parse(lang); err == nil {
			langTag = parsedTag
			log.Debugf("detected report locale: %s", langTag)
		}
	}

	return langTag
}

// Summary holds means over all trials of one model setting on one dataset.
type Summary struct {
	Dataset string
	Model   string // relabeled model name
	Trials  int
	Time    float64
	Means   map[string]float64
}

// Summarize groups records by dataset and model label. Datasets keep their
// order of first appearance.
func Summarize(records []results.Record, metrics []string) []Summary {
	type group struct {
		summary Summary
		times   []float64
		values  map[string][]float64
	}

	groups := []*group{}
	index := map[[2]string]*group{}

	for i := range records {
		record := &records[i]
		label := plot.RelabelModel(record.Model, record.EntityMargin, record.RelationMargin, record.Threshold)
		key := [2]string{record.Dataset, label}

		g, ok := index[key]
		if !ok {
			g = &group{
				summary: Summary{Dataset: record.Dataset, Model: label},
				values:  map[string][]float64{},
			}
			index[key] = g
			groups = append(groups, g)
		}

		g.summary.Trials++
		g.times = append(g.times, record.Time)
		for _, metric := range metrics {
			g.values[metric] = append(g.values[metric], record.Metric(metric))
		}
	}

	summaries := make([]Summary, len(groups))
	for i, g := range groups {
		summary := g.summary
		summary.Time = stat.Mean(g.times, nil)
		summary.Means = map[string]float64{}
		for _, metric := range metrics {
			summary.Means[metric] = stat.Mean(g.values[metric], nil)
		}
		summaries[i] = summary
	}

	return summaries
}

// SortSummaries orders model labels within each dataset by collation of given
// language. Dataset order is left unchanged.
func SortSummaries(summaries []Summary, langTag language.Tag) {
	datasetOrder := map[string]int{}
	for _, summary := range summaries {
		if _, ok := datasetOrder[summary.Dataset]; !ok {
			datasetOrder[summary.Dataset] = len(datasetOrder)
		}
	}

	collator := collate.New(langTag)
	slices.SortStableFunc(summaries, func(a, b Summary) int {
		if diff := datasetOrder[a.Dataset] - datasetOrder[b.Dataset]; diff != 0 {
			return diff
		}
		return collator.CompareString(a.Model, b.Model)
	})
}

// Write prints summaries as a table, numbers are formatted for given
// language.
func Write(w io.Writer, summaries []Summary, metrics []string, langTag language.Tag) error {
	printer := message.NewPrinter(langTag)

	headers := []string{"dataset", "model", "trials", "time (s)"}
	headers = append(headers, metrics...)

	rows := make([][]string, 0, len(summaries))
	for _, summary := range summaries {
		row := []string{
			summary.Dataset,
			summary.Model,
			printer.Sprintf("%d", summary.Trials),
			printer.Sprintf("%.3f", summary.Time),
		}
		for _, metric := range metrics {
			row = append(row, printer.Sprintf("%.4f", summary.Means[metric]))
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)

	_, err := fmt.Fprintln(w, t.String())

	return err
}

// Report summarizes records and writes sorted table to `w`.
func Report(w io.Writer, records []results.Record, metrics []string, lang string) error {
	if len(metrics) == 0 {
		metrics = DefaultMetrics
	}

	for _, metric := range metrics {
		if !slices.Contains(evaluation.Metrics, metric) {
			return fmt.Errorf("%w: %s", evaluation.ErrUnknownMetric, metric)
		}
	}

	langTag := ResolveLanguage(lang)

	summaries := Summarize(records, metrics)
	SortSummaries(summaries, langTag)

	return Write(w, summaries, metrics, langTag)
}
