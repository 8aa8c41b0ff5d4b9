package formatter

import (
	"bytes"
	"encoding/csv"

	"github.com/m-lab/tb-stats-pipeline/table"
)

// CSVFormatter marshals tables as delimited text with a header row.
type CSVFormatter struct {
	Delimiter rune
}

// NewCSVFormatter creates a new CSVFormatter. A zero delimiter means ','.
func NewCSVFormatter(delimiter rune) *CSVFormatter {
	if delimiter == 0 {
		delimiter = ','
	}
	return &CSVFormatter{Delimiter: delimiter}
}

// Extension returns "csv".
func (f *CSVFormatter) Extension() string {
	return "csv"
}

// Marshal converts t into delimited text. Missing cells are empty and no row
// index is written.
func (f *CSVFormatter) Marshal(t *table.Table) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	w.Comma = f.Delimiter
	if err := w.WriteAll(t.Records()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
