package formatter

import (
	"math"
	"reflect"
	"testing"

	"github.com/m-lab/tb-stats-pipeline/table"
)

var testTable = &table.Table{
	Columns: []table.Column{
		{Name: "country", Kind: table.Text},
		{Name: "cases", Kind: table.Number},
	},
	Rows: [][]table.Value{
		{table.TextValue("usa"), table.NumberValue(100)},
		{table.TextValue("fra, \"north\""), table.Null()},
	},
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		want    string
		wantErr bool
	}{
		{name: "default", format: "", want: "csv"},
		{name: "csv", format: "csv", want: "csv"},
		{name: "json", format: "json", want: "json"},
		{name: "unknown", format: "xml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.format, 0)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && f.Extension() != tt.want {
				t.Errorf("New().Extension() = %q, want %q", f.Extension(), tt.want)
			}
		})
	}
}

func TestCSVFormatter_Marshal(t *testing.T) {
	tests := []struct {
		name      string
		delimiter rune
		table     *table.Table
		want      []byte
	}{
		{
			name:  "success",
			table: testTable,
			want:  []byte("country,cases\nusa,100.0\n\"fra, \"\"north\"\"\",\n"),
		},
		{
			name:      "success-semicolon",
			delimiter: ';',
			table:     testTable,
			want:      []byte("country;cases\nusa;100.0\n\"fra, \"\"north\"\"\";\n"),
		},
		{
			name: "header-only",
			table: &table.Table{
				Columns: []table.Column{{Name: "country"}},
			},
			want: []byte("country\n"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewCSVFormatter(tt.delimiter)
			got, err := f.Marshal(tt.table)
			if err != nil {
				t.Fatalf("CSVFormatter.Marshal() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CSVFormatter.Marshal() = %q, want %q", string(got), string(tt.want))
			}
		})
	}
}

func TestJSONFormatter_Marshal(t *testing.T) {
	tests := []struct {
		name    string
		table   *table.Table
		want    []byte
		wantErr bool
	}{
		{
			name:  "success",
			table: testTable,
			want:  []byte(`[{"country":"usa","cases":100},{"country":"fra, \"north\"","cases":null}]`),
		},
		{
			name: "empty",
			table: &table.Table{
				Columns: []table.Column{{Name: "country"}},
			},
			want: []byte(`[]`),
		},
		{
			name: "success-non-finite",
			table: &table.Table{
				Columns: []table.Column{{Name: "cases", Kind: table.Number}},
				Rows: [][]table.Value{
					{{Str: "NaN", Num: math.NaN()}},
					{{Str: "inf", Num: math.Inf(1)}},
					{{Str: "-inf", Num: math.Inf(-1)}},
				},
			},
			want: []byte(`[{"cases":null},{"cases":null},{"cases":null}]`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewJSONFormatter()
			got, err := f.Marshal(tt.table)
			if (err != nil) != tt.wantErr {
				t.Errorf("JSONFormatter.Marshal() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("JSONFormatter.Marshal() = %q, want %q", string(got), string(tt.want))
			}
		})
	}
}
