// Package table provides the in-memory tabular representation processed by
// the pipeline, and the loader that builds it from delimited text.
package table

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrNotFound is returned when the input file does not exist.
	ErrNotFound = errors.New("file not found")
	// ErrParse is returned when the input is not a well-formed delimited table.
	ErrParse = errors.New("parse error")
	// ErrSchema is returned when a referenced column is absent or has the
	// wrong kind.
	ErrSchema = errors.New("schema error")
)

// Kind is the semantic type of a column, computed once at load time.
type Kind int

const (
	// Text columns hold strings.
	Text Kind = iota
	// Number columns hold float64 values.
	Number
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Number:
		return "number"
	default:
		return "unknown"
	}
}

// Column describes a single column of a Table.
type Column struct {
	Name string
	Kind Kind
}

// Value is a single cell. A Value is either missing, text or a number. For
// numbers, Str holds the textual form that is written back on export.
type Value struct {
	Str     string
	Num     float64
	Missing bool
}

// Null returns a missing Value.
func Null() Value {
	return Value{Missing: true}
}

// TextValue returns a text Value.
func TextValue(s string) Value {
	return Value{Str: s}
}

// NumberValue returns a computed number Value. Whole numbers keep a trailing
// ".0" so that computed means are distinguishable from counts.
func NumberValue(f float64) Value {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return Value{Str: s, Num: f}
}

// String returns the exported form of v. Missing values are empty.
func (v Value) String() string {
	if v.Missing {
		return ""
	}
	return v.Str
}

// Table is an ordered collection of uniformly-columned rows. Each row is
// aligned with Columns.
type Table struct {
	Columns []Column
	Rows    [][]Value
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the named column, or an ErrSchema error if
// the table has no such column.
func (t *Table) Index(name string) (int, error) {
	for i, c := range t.Columns {
		if c.Name == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: column %q not found", ErrSchema, name)
}

// Empty returns a table with the same columns as t and no rows.
func (t *Table) Empty() *Table {
	cols := make([]Column, len(t.Columns))
	copy(cols, t.Columns)
	return &Table{Columns: cols, Rows: [][]Value{}}
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	c := t.Empty()
	for _, row := range t.Rows {
		c.Rows = append(c.Rows, append([]Value(nil), row...))
	}
	return c
}

// Head returns a copy of t holding at most its first n rows.
func (t *Table) Head(n int) *Table {
	h := t.Empty()
	for _, row := range t.Rows {
		if len(h.Rows) >= n {
			break
		}
		h.Rows = append(h.Rows, append([]Value(nil), row...))
	}
	return h
}

// Records returns the table as string records, header first. Missing cells
// are empty strings.
func (t *Table) Records() [][]string {
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, t.Names())
	for _, row := range t.Rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = v.String()
		}
		records = append(records, rec)
	}
	return records
}
