package formatter

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/m-lab/tb-stats-pipeline/table"
)

// JSONFormatter marshals tables as a JSON array with one object per row.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Extension returns "json".
func (f *JSONFormatter) Extension() string {
	return "json"
}

// Marshal converts t into a JSON array. Object keys follow the column order,
// numbers are JSON numbers, and missing cells and non-finite numbers are null.
func (f *JSONFormatter) Marshal(t *table.Table) ([]byte, error) {
	keys := make([][]byte, len(t.Columns))
	for i, c := range t.Columns {
		k, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		keys[i] = k
	}
	buf := &bytes.Buffer{}
	buf.WriteByte('[')
	for r, row := range t.Rows {
		if r > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for c, v := range row {
			if c > 0 {
				buf.WriteByte(',')
			}
			buf.Write(keys[c])
			buf.WriteByte(':')
			j, err := marshalValue(t.Columns[c].Kind, v)
			if err != nil {
				return nil, err
			}
			buf.Write(j)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalValue(k table.Kind, v table.Value) ([]byte, error) {
	switch {
	case v.Missing:
		return []byte("null"), nil
	case k == table.Number && (math.IsNaN(v.Num) || math.IsInf(v.Num, 0)):
		return []byte("null"), nil
	case k == table.Number:
		return json.Marshal(v.Num)
	default:
		return json.Marshal(v.Str)
	}
}
