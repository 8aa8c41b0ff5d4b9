package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// DefaultMissingValues are the cell contents treated as missing when loading.
var DefaultMissingValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None", "n/a",
	"nan", "null",
}

const utf8BOM = "\ufeff"

type loadOptions struct {
	delimiter rune
	missing   []string
}

// Option configures Load and Read.
type Option func(*loadOptions)

// WithDelimiter sets the field delimiter. The default is ','.
func WithDelimiter(d rune) Option {
	return func(o *loadOptions) {
		o.delimiter = d
	}
}

// WithMissingValues replaces the set of cell contents treated as missing.
func WithMissingValues(values []string) Option {
	return func(o *loadOptions) {
		o.missing = values
	}
}

// Load opens the file at path and parses it with Read.
func Load(path string, opts ...Option) (*Table, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := Read(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Read parses delimited text with a header row into a Table. Column kinds
// are inferred from the non-missing cells: integer and float columns become
// Number, anything else becomes Text. Surrounding spaces around a number are
// ignored. A column with no observed value, including every column of a
// header-only input, is a Number column. Repeated column names get a ".N"
// suffix ("country", "country.1").
func Read(r io.Reader, opts ...Option) (*Table, error) {
	cfg := loadOptions{
		delimiter: ',',
		missing:   DefaultMissingValues,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	cr := csv.NewReader(r)
	cr.Comma = cfg.delimiter
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no header row", ErrParse)
	}
	header := records[0]
	header[0] = strings.TrimPrefix(header[0], utf8BOM)
	header = dedupeNames(header)

	t := &Table{
		Columns: make([]Column, len(header)),
		Rows:    make([][]Value, 0, len(records)-1),
	}
	for i, name := range header {
		t.Columns[i] = Column{Name: name, Kind: Text}
	}
	if len(records) == 1 {
		for i := range t.Columns {
			t.Columns[i].Kind = Number
		}
		return t, nil
	}

	cells := make([][]string, len(records))
	cells[0] = header
	for r, rec := range records[1:] {
		row := make([]string, len(rec))
		for c, s := range rec {
			row[c] = trimNumeric(s)
		}
		cells[r+1] = row
	}

	df := dataframe.LoadRecords(cells,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(cfg.missing))
	if df.Err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, df.Err)
	}

	nrows, ncols := df.Dims()
	for c, typ := range df.Types() {
		switch typ {
		case series.Int, series.Float:
			t.Columns[c].Kind = Number
		default:
			if allMissing(df, c, nrows) {
				t.Columns[c].Kind = Number
			}
		}
	}
	for r := 0; r < nrows; r++ {
		row := make([]Value, ncols)
		for c := 0; c < ncols; c++ {
			e := df.Elem(r, c)
			switch {
			case e.IsNA():
				row[c] = Null()
			case t.Columns[c].Kind == Number:
				row[c] = Value{Str: cells[r+1][c], Num: e.Float()}
			default:
				row[c] = TextValue(records[r+1][c])
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func allMissing(df dataframe.DataFrame, c, nrows int) bool {
	for r := 0; r < nrows; r++ {
		if !df.Elem(r, c).IsNA() {
			return false
		}
	}
	return true
}

// trimNumeric returns s without surrounding spaces when what remains is a
// number, and s unchanged otherwise.
func trimNumeric(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == s {
		return s
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
		return s
	}
	return trimmed
}

// dedupeNames renames repeated names by appending ".1", ".2", ... to the
// second and later occurrences, skipping suffixes already in use.
func dedupeNames(names []string) []string {
	out := make([]string, len(names))
	counts := map[string]int{}
	for i, name := range names {
		n := counts[name]
		for n > 0 {
			counts[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n)
			n = counts[name]
		}
		counts[name] = n + 1
		out[i] = name
	}
	return out
}
