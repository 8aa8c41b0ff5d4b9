// Package transform implements the pipeline stages. Every stage takes an
// immutable table and returns a new one; inputs are never modified.
package transform

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/m-lab/tb-stats-pipeline/table"
)

// DropMissing returns the rows of t that have no missing cell in any column.
func DropMissing(t *table.Table) *table.Table {
	out := t.Empty()
	for _, row := range t.Rows {
		if complete(row) {
			out.Rows = append(out.Rows, append([]table.Value(nil), row...))
		}
	}
	return out
}

func complete(row []table.Value) bool {
	for _, v := range row {
		if v.Missing {
			return false
		}
	}
	return true
}

// Lowercase returns a copy of t where every value of every Text column is
// lowercased. Number and missing cells are unchanged.
func Lowercase(t *table.Table) *table.Table {
	out := t.Clone()
	for c, col := range out.Columns {
		if col.Kind != table.Text {
			continue
		}
		for _, row := range out.Rows {
			if !row[c].Missing {
				row[c] = table.TextValue(strings.ToLower(row[c].Str))
			}
		}
	}
	return out
}

type group struct {
	key    table.Value
	sums   []float64
	counts []int
}

// MeanBy groups the rows of t by the key column and computes the mean of every
// Number column in each group, ignoring missing values. A mean over no value
// is missing; a group with no value in any averaged column is dropped. Rows
// with a missing key are not grouped. Number keys are grouped by value, so
// "1" and "1.0" fall in the same group, shown with the first text seen.
// Groups are returned sorted by key.
func MeanBy(t *table.Table, key string) (*table.Table, error) {
	k, err := t.Index(key)
	if err != nil {
		return nil, err
	}
	var numeric []int
	cols := []table.Column{t.Columns[k]}
	for i, c := range t.Columns {
		if i != k && c.Kind == table.Number {
			numeric = append(numeric, i)
			cols = append(cols, table.Column{Name: c.Name, Kind: table.Number})
		}
	}

	numericKey := t.Columns[k].Kind == table.Number
	groups := map[string]*group{}
	for _, row := range t.Rows {
		if row[k].Missing {
			continue
		}
		id := row[k].Str
		if numericKey {
			id = strconv.FormatFloat(row[k].Num, 'g', -1, 64)
		}
		g, ok := groups[id]
		if !ok {
			g = &group{
				key:    row[k],
				sums:   make([]float64, len(numeric)),
				counts: make([]int, len(numeric)),
			}
			groups[id] = g
		}
		for j, c := range numeric {
			if !row[c].Missing {
				g.sums[j] += row[c].Num
				g.counts[j]++
			}
		}
	}

	keys := make([]string, 0, len(groups))
	for s := range groups {
		keys = append(keys, s)
	}
	lessFn := func(i, j int) bool { return keys[i] < keys[j] }
	if numericKey {
		lessFn = func(i, j int) bool {
			a, b := groups[keys[i]].key.Num, groups[keys[j]].key.Num
			if a == b {
				return keys[i] < keys[j]
			}
			return a < b
		}
	}
	sort.Slice(keys, lessFn)

	out := &table.Table{Columns: cols, Rows: [][]table.Value{}}
	for _, s := range keys {
		g := groups[s]
		row := make([]table.Value, 0, len(cols))
		row = append(row, g.key)
		observed := len(numeric) == 0
		for j := range numeric {
			if g.counts[j] == 0 {
				row = append(row, table.Null())
				continue
			}
			observed = true
			row = append(row, table.NumberValue(g.sums[j]/float64(g.counts[j])))
		}
		if observed {
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}

// FilterGreater returns the rows of t whose value in column is strictly
// greater than threshold. Missing values never match.
func FilterGreater(t *table.Table, column string, threshold float64) (*table.Table, error) {
	c, err := t.Index(column)
	if err != nil {
		return nil, err
	}
	if t.Columns[c].Kind != table.Number {
		return nil, fmt.Errorf("%w: column %q is %s, not number", table.ErrSchema,
			column, t.Columns[c].Kind)
	}
	out := t.Empty()
	for _, row := range t.Rows {
		if !row[c].Missing && row[c].Num > threshold {
			out.Rows = append(out.Rows, append([]table.Value(nil), row...))
		}
	}
	return out, nil
}
