// Package formatter provides the output formats supported by the stats pipeline.
package formatter

import (
	"fmt"

	"github.com/m-lab/tb-stats-pipeline/table"
)

// Formatter converts a table into the bytes of an output file.
type Formatter interface {
	// Extension is the file extension, without the leading dot.
	Extension() string
	Marshal(t *table.Table) ([]byte, error)
}

// New returns the Formatter for the named format: "csv" or "json". The
// delimiter only applies to CSV.
func New(format string, delimiter rune) (Formatter, error) {
	switch format {
	case "", "csv":
		return NewCSVFormatter(delimiter), nil
	case "json":
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format: %q", format)
	}
}
