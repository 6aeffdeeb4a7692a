package database

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/SirZenith/kgebench/common"
)

// CsvConverter dumps query result rows as delimiter separated values.
type CsvConverter struct {
	Headers         []string // overrides column names when not empty
	WriteHeaders    bool
	TimeFormat      string
	FloatFormat     string
	Delimiter       rune
	rows            *sql.Rows
	rowPreProcessor CsvPreProcessorFunc
}

func New(rows *sql.Rows) *CsvConverter {
	return &CsvConverter{
		rows:         rows,
		WriteHeaders: true,
		TimeFormat:   time.RFC3339,
		Delimiter:    ',',
	}
}

// CsvPreProcessorFunc may rewrite a row before it is written, returning false
// drops the row.
type CsvPreProcessorFunc func(row []string, columnNames []string) (outputRow bool, processedRow []string)

func (c *CsvConverter) SetRowPreProcessor(processor CsvPreProcessorFunc) {
	c.rowPreProcessor = processor
}

func (c *CsvConverter) WriteFile(csvFileName string) error {
	return common.WriteFileAtomic(csvFileName, c.Write)
}

func (c *CsvConverter) Write(writer io.Writer) error {
	rows := c.rows

	csvWriter := csv.NewWriter(writer)
	if c.Delimiter != '\x00' {
		csvWriter.Comma = c.Delimiter
	}

	columnNames, err := rows.Columns()
	if err != nil {
		return err
	}

	if c.WriteHeaders {
		headers := columnNames
		if len(c.Headers) > 0 {
			headers = c.Headers
		}

		if err = csvWriter.Write(headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	count := len(columnNames)
	values := make([]any, count)
	valuePtrs := make([]any, count)
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	for rows.Next() {
		if err = rows.Scan(valuePtrs...); err != nil {
			return err
		}

		row := make([]string, count)
		for i, value := range values {
			row[i] = c.formatValue(value)
		}

		writeRow := true
		if c.rowPreProcessor != nil {
			writeRow, row = c.rowPreProcessor(row, columnNames)
		}

		if writeRow {
			if err = csvWriter.Write(row); err != nil {
				return fmt.Errorf("failed to write data row to csv %w", err)
			}
		}
	}

	csvWriter.Flush()
	if err = csvWriter.Error(); err != nil {
		return err
	}

	return rows.Err()
}

func (c *CsvConverter) formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case []byte:
		return string(v)
	case float64:
		if c.FloatFormat != "" {
			return fmt.Sprintf(c.FloatFormat, v)
		}
	case float32:
		if c.FloatFormat != "" {
			return fmt.Sprintf(c.FloatFormat, v)
		}
	case time.Time:
		if c.TimeFormat != "" {
			return v.Format(c.TimeFormat)
		}
	}

	return fmt.Sprintf("%v", value)
}

func SaveAsCSV(rows *sql.Rows, fileName string) error {
	return New(rows).WriteFile(fileName)
}
