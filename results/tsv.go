package results

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/SirZenith/kgebench/baseline"
	"github.com/SirZenith/kgebench/common"
	"github.com/SirZenith/kgebench/evaluation"
)

const (
	ColumnDataset   = "dataset"
	ColumnEntities  = "entities"
	ColumnRelations = "relations"
	ColumnTriples   = "triples"
	ColumnTrial     = "trial"
	ColumnModel     = "model"
	ColumnTime      = "time"
)

// fixedColumns returns every non-metric column of result table.
func fixedColumns() []string {
	columns := []string{ColumnDataset, ColumnEntities, ColumnRelations, ColumnTriples, ColumnTrial, ColumnModel}
	columns = append(columns, baseline.KwargsKeys...)
	columns = append(columns, ColumnTime)
	return columns
}

// metricColumns lists standard metrics followed by any other metric found in
// records, in sorted order.
func metricColumns(records []Record) []string {
	extra := []string{}
	for i := range records {
		for name := range records[i].Metrics {
			if !slices.Contains(evaluation.Metrics, name) && !slices.Contains(extra, name) {
				extra = append(extra, name)
			}
		}
	}
	slices.Sort(extra)

	return append(slices.Clone(evaluation.Metrics), extra...)
}

func formatBool(value *bool) string {
	switch {
	case value == nil:
		return ""
	case *value:
		return "True"
	default:
		return "False"
	}
}

func parseBool(text string) (*bool, error) {
	var b bool
	switch text {
	case "":
		return nil, nil
	case "True", "true":
		b = true
	case "False", "false":
		b = false
	default:
		return nil, fmt.Errorf("invalid boolean %q", text)
	}
	return &b, nil
}

func formatThreshold(value *float64) string {
	if value == nil {
		return ""
	}
	return baseline.FormatFloat(*value)
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}

func (r *Record) row(metrics []string) []string {
	row := []string{
		r.Dataset,
		strconv.Itoa(r.Entities),
		strconv.Itoa(r.Relations),
		strconv.Itoa(r.Triples),
		strconv.Itoa(r.Trial),
		r.Model,
		formatBool(r.EntityMargin),
		formatBool(r.RelationMargin),
		formatThreshold(r.Threshold),
		formatFloat(r.Time),
	}

	for _, name := range metrics {
		row = append(row, formatFloat(r.Metric(name)))
	}

	return row
}

// WriteTSV writes records as tab separated table with header.
func WriteTSV(writer io.Writer, records []Record) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = '\t'

	metrics := metricColumns(records)
	if err := csvWriter.Write(append(fixedColumns(), metrics...)); err != nil {
		return fmt.Errorf("failed to write header: %s", err)
	}

	for i := range records {
		if err := csvWriter.Write(records[i].row(metrics)); err != nil {
			return fmt.Errorf("failed to write record %d: %s", i, err)
		}
	}

	csvWriter.Flush()

	return csvWriter.Error()
}

// SaveTSV atomically replaces file at `path` with result table.
func SaveTSV(path string, records []Record) error {
	return common.WriteFileAtomic(path, func(w io.Writer) error {
		return WriteTSV(w, records)
	})
}

// ReadTSV parses result table. Columns are looked up by header name, every
// named column other than the fixed ones is read as a metric. Empty metric
// cells are NaN.
func ReadTSV(reader io.Reader) ([]Record, error) {
	csvReader := csv.NewReader(reader)
	csvReader.Comma = '\t'

	lines, err := csvReader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("result table has no header")
	}

	header := lines[0]
	index := map[string]int{}
	for i, name := range header {
		index[name] = i
	}

	for _, name := range []string{ColumnDataset, ColumnTrial, ColumnModel} {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("result table is missing column %q", name)
		}
	}

	records := make([]Record, 0, len(lines)-1)
	for lineNum, line := range lines[1:] {
		record, err := parseRow(line, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %s", lineNum+2, err)
		}
		records = append(records, record)
	}

	return records, nil
}

func parseRow(line []string, index map[string]int) (Record, error) {
	record := Record{Metrics: map[string]float64{}}

	get := func(name string) (string, bool) {
		i, ok := index[name]
		if !ok || i >= len(line) {
			return "", false
		}
		return line[i], true
	}

	getInt := func(name string, dst *int) error {
		text, ok := get(name)
		if !ok || text == "" {
			return nil
		}
		value, err := strconv.Atoi(text)
		if err != nil {
			return fmt.Errorf("invalid %s %q", name, text)
		}
		*dst = value
		return nil
	}

	record.Dataset, _ = get(ColumnDataset)
	record.Model, _ = get(ColumnModel)

	for name, dst := range map[string]*int{
		ColumnEntities:  &record.Entities,
		ColumnRelations: &record.Relations,
		ColumnTriples:   &record.Triples,
		ColumnTrial:     &record.Trial,
	} {
		if err := getInt(name, dst); err != nil {
			return record, err
		}
	}

	var err error
	if text, ok := get(baseline.KeyEntityMargin); ok {
		if record.EntityMargin, err = parseBool(text); err != nil {
			return record, err
		}
	}
	if text, ok := get(baseline.KeyRelationMargin); ok {
		if record.RelationMargin, err = parseBool(text); err != nil {
			return record, err
		}
	}
	if text, ok := get(baseline.KeyThreshold); ok && text != "" {
		value, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return record, fmt.Errorf("invalid threshold %q", text)
		}
		record.Threshold = &value
	}

	if text, ok := get(ColumnTime); ok && text != "" {
		if record.Time, err = strconv.ParseFloat(text, 64); err != nil {
			return record, fmt.Errorf("invalid time %q", text)
		}
	}

	fixed := fixedColumns()
	for name, i := range index {
		// unnamed column is a row index
		if name == "" || slices.Contains(fixed, name) || i >= len(line) {
			continue
		}

		text := strings.TrimSpace(line[i])
		if text == "" {
			record.Metrics[name] = math.NaN()
			continue
		}

		value, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return record, fmt.Errorf("invalid %s %q", name, line[i])
		}
		record.Metrics[name] = value
	}

	return record, nil
}

// LoadTSV reads result table from file.
func LoadTSV(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open result table %s: %s", path, err)
	}
	defer file.Close()

	records, err := ReadTSV(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read result table %s: %s", path, err)
	}

	return records, nil
}
