package plot

import (
	"slices"

	"github.com/SirZenith/kgebench/baseline"
	"github.com/SirZenith/kgebench/results"
)

// SmallDatasets are left out of charts unless in test mode.
var SmallDatasets = []string{"Nations", "Countries", "UMLS", "Kinships"}

// Row is one metric value of one trial in long form.
type Row struct {
	Dataset string
	Model   string // relabeled model name
	Trial   int
	Time    float64
	Metric  string
	Value   float64
}

// Melt turns every record into one row per metric. Model names are relabeled
// with RelabelModel.
func Melt(records []results.Record, metrics []string) []Row {
	rows := make([]Row, 0, len(records)*len(metrics))
	for i := range records {
		record := &records[i]
		label := RelabelModel(record.Model, record.EntityMargin, record.RelationMargin, record.Threshold)

		for _, metric := range metrics {
			rows = append(rows, Row{
				Dataset: record.Dataset,
				Model:   label,
				Trial:   record.Trial,
				Time:    record.Time,
				Metric:  metric,
				Value:   record.Metric(metric),
			})
		}
	}
	return rows
}

// RelabelModel appends short markers of keyword arguments to model name: ` /e`
// for entity margin, ` /r` for relation margin, with a bare space for false
// ones, and non-zero threshold in parentheses.
func RelabelModel(model string, entityMargin, relationMargin *bool, threshold *float64) string {
	label := model

	if entityMargin != nil {
		label += " "
		if *entityMargin {
			label += "/e"
		}
	}

	if relationMargin != nil {
		label += " "
		if *relationMargin {
			label += "/r"
		}
	}

	if threshold != nil && *threshold != 0 {
		label += " (" + baseline.FormatFloat(*threshold) + ")"
	}

	return label
}

// SkipSmall drops records of small datasets, nothing is dropped in test mode.
func SkipSmall(records []results.Record, test bool) []results.Record {
	if test {
		return records
	}

	kept := make([]results.Record, 0, len(records))
	for _, record := range records {
		if !slices.Contains(SmallDatasets, record.Dataset) {
			kept = append(kept, record)
		}
	}

	return kept
}

// FilterMetrics keeps rows whose metric is (or is not, with `exclude`) in
// `metrics`.
func FilterMetrics(rows []Row, metrics []string, exclude bool) []Row {
	kept := []Row{}
	for _, row := range rows {
		if slices.Contains(metrics, row.Metric) != exclude {
			kept = append(kept, row)
		}
	}
	return kept
}

// uniqueInOrder returns distinct values of key in order of first appearance.
func uniqueInOrder(rows []Row, key func(Row) string) []string {
	seen := map[string]bool{}
	result := []string{}
	for _, row := range rows {
		value := key(row)
		if !seen[value] {
			seen[value] = true
			result = append(result, value)
		}
	}
	return result
}

// groupValues collects values per (category, series) pair.
func groupValues(rows []Row, value func(Row) float64) map[[2]string][]float64 {
	groups := map[[2]string][]float64{}
	for _, row := range rows {
		key := [2]string{row.Dataset, row.Model}
		groups[key] = append(groups[key], value(row))
	}
	return groups
}
