package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset defines tabular export content. Footer rows are appended after the body,
// which statements use for balance totals.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
	Footer  [][2]string
}

// CSVExporter renders Dataset records into CSV bytes.
type CSVExporter struct {
	Comma rune
}

// NewCSVExporter builds a CSV exporter using semicolons, which spreadsheet apps in
// comma-decimal locales open without an import wizard.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{Comma: ';'}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if e.Comma != 0 {
		writer.Comma = e.Comma
	}
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	for _, line := range data.Footer {
		record := make([]string, len(data.Headers))
		record[0] = line[0]
		if len(record) > 1 {
			record[len(record)-1] = line[1]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv footer: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
