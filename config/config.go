package config

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

const (
	// DefaultGroupColumn is the column aggregated rows are grouped by.
	DefaultGroupColumn = "country"
	// DefaultThresholdColumn is the column compared against Threshold.
	DefaultThresholdColumn = "m_01"
	// DefaultThreshold is the value rows must exceed to be kept by the filter.
	DefaultThreshold = 100.0
	// DefaultInputExt is the extension of the file produced by the download.
	DefaultInputExt = ".csv"
)

// Config is a configuration object for a single dataset processed by the
// stats pipeline.
type Config struct {
	// SourceURL is the page holding the dataset download link.
	SourceURL string
	// DownloadDir is the directory the dataset is downloaded to.
	DownloadDir string
	// InputExt is the extension of the downloaded file, e.g. ".csv".
	InputExt string
	// GroupColumn is the column to compute per-group means on.
	GroupColumn string
	// ThresholdColumn is the numeric column used by the threshold filter.
	ThresholdColumn string
	// Threshold is the value ThresholdColumn must exceed.
	Threshold float64
	// Format is the output format, "csv" or "json".
	Format string
	// Delimiter is the field delimiter of the input and of CSV outputs.
	Delimiter string
	// OutputPath is the path prefix outputs are written to.
	OutputPath string
	// Staged defers every export until all the stages have succeeded.
	Staged bool
}

// Default returns a Config matching the WHO TB dataset.
func Default() Config {
	return Config{
		InputExt:        DefaultInputExt,
		GroupColumn:     DefaultGroupColumn,
		ThresholdColumn: DefaultThresholdColumn,
		Threshold:       DefaultThreshold,
		Format:          "csv",
		Delimiter:       ",",
	}
}

// WithDefaults returns a copy of c where empty fields are set to their
// default value. Threshold is never changed since zero is a valid threshold.
func (c Config) WithDefaults() Config {
	d := Default()
	if c.InputExt == "" {
		c.InputExt = d.InputExt
	}
	if c.GroupColumn == "" {
		c.GroupColumn = d.GroupColumn
	}
	if c.ThresholdColumn == "" {
		c.ThresholdColumn = d.ThresholdColumn
	}
	if c.Format == "" {
		c.Format = d.Format
	}
	if c.Delimiter == "" {
		c.Delimiter = d.Delimiter
	}
	return c
}

// Comma returns the delimiter as a rune.
func (c Config) Comma() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// Validate checks that c describes a runnable pipeline.
func (c Config) Validate() error {
	if c.GroupColumn == "" {
		return errors.New("missing group column")
	}
	if c.ThresholdColumn == "" {
		return errors.New("missing threshold column")
	}
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character: %q", c.Delimiter)
	}
	switch c.Comma() {
	case '"', '\r', '\n', utf8.RuneError:
		return fmt.Errorf("invalid delimiter: %q", c.Delimiter)
	}
	switch c.Format {
	case "csv", "json":
	default:
		return fmt.Errorf("unknown output format: %q", c.Format)
	}
	return nil
}
