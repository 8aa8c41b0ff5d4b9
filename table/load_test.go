package table

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/m-lab/go/testingx"
)

func TestRead(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		opts    []Option
		want    *Table
		wantErr error
	}{
		{
			name:  "success",
			input: "country,cases\nUSA,150\nusa,50\nFRA,\n",
			want: &Table{
				Columns: []Column{{"country", Text}, {"cases", Number}},
				Rows: [][]Value{
					{TextValue("USA"), {Str: "150", Num: 150}},
					{TextValue("usa"), {Str: "50", Num: 50}},
					{TextValue("FRA"), Null()},
				},
			},
		},
		{
			name:  "success-float-and-markers",
			input: "country,rate,note\nITA,1.5,NA\nESP,n/a,ok\n",
			want: &Table{
				Columns: []Column{{"country", Text}, {"rate", Number}, {"note", Text}},
				Rows: [][]Value{
					{TextValue("ITA"), {Str: "1.5", Num: 1.5}, Null()},
					{TextValue("ESP"), Null(), TextValue("ok")},
				},
			},
		},
		{
			name:  "success-all-missing-column",
			input: "country,empty\nITA,\nESP,NULL\n",
			want: &Table{
				Columns: []Column{{"country", Text}, {"empty", Number}},
				Rows: [][]Value{
					{TextValue("ITA"), Null()},
					{TextValue("ESP"), Null()},
				},
			},
		},
		{
			name:  "success-header-only",
			input: "country,cases\n",
			want: &Table{
				Columns: []Column{{"country", Number}, {"cases", Number}},
				Rows:    [][]Value{},
			},
		},
		{
			name:  "success-bom-and-delimiter",
			input: "\ufeffcountry;cases\nUSA;3\n",
			opts:  []Option{WithDelimiter(';')},
			want: &Table{
				Columns: []Column{{"country", Text}, {"cases", Number}},
				Rows: [][]Value{
					{TextValue("USA"), {Str: "3", Num: 3}},
				},
			},
		},
		{
			name:  "success-custom-missing-values",
			input: "country,cases\n-,1\nUSA,\n",
			opts:  []Option{WithMissingValues([]string{"-"})},
			want: &Table{
				Columns: []Column{{"country", Text}, {"cases", Number}},
				Rows: [][]Value{
					{Null(), {Str: "1", Num: 1}},
					{TextValue("USA"), Null()},
				},
			},
		},
		{
			name:  "success-padded-numbers",
			input: "country,cases\nUSA, 5\nFRA,6 \n",
			want: &Table{
				Columns: []Column{{"country", Text}, {"cases", Number}},
				Rows: [][]Value{
					{TextValue("USA"), {Str: "5", Num: 5}},
					{TextValue("FRA"), {Str: "6", Num: 6}},
				},
			},
		},
		{
			name:  "success-padded-text-kept",
			input: "country,cases\n USA ,1\n",
			want: &Table{
				Columns: []Column{{"country", Text}, {"cases", Number}},
				Rows: [][]Value{
					{TextValue(" USA "), {Str: "1", Num: 1}},
				},
			},
		},
		{
			name:  "success-duplicate-columns",
			input: "country,country,country.1,country\nUSA,usa,x,y\n",
			want: &Table{
				Columns: []Column{
					{"country", Text}, {"country.1", Text},
					{"country.1.1", Text}, {"country.2", Text},
				},
				Rows: [][]Value{
					{TextValue("USA"), TextValue("usa"), TextValue("x"), TextValue("y")},
				},
			},
		},
		{
			name:  "success-infinite",
			input: "country,cases\nUSA,inf\nFRA,2\n",
			want: &Table{
				Columns: []Column{{"country", Text}, {"cases", Number}},
				Rows: [][]Value{
					{TextValue("USA"), {Str: "inf", Num: math.Inf(1)}},
					{TextValue("FRA"), {Str: "2", Num: 2}},
				},
			},
		},
		{
			name:    "error-empty",
			input:   "",
			wantErr: ErrParse,
		},
		{
			name:    "error-ragged",
			input:   "country,cases\nUSA,1,2\n",
			wantErr: ErrParse,
		},
		{
			name:    "error-bad-quote",
			input:   "country,cases\n\"USA,1\n",
			wantErr: ErrParse,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(strings.NewReader(tt.input), tt.opts...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Read() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Read() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "data.csv")
	err := os.WriteFile(p, []byte("country,cases\nUSA,1\n"), 0644)
	testingx.Must(t, err, "cannot write test file")

	tbl, err := Load(p)
	testingx.Must(t, err, "cannot load test file")
	if tbl.Len() != 1 {
		t.Errorf("Load() returned %d rows, want 1", tbl.Len())
	}

	_, err = Load(filepath.Join(dir, "missing.csv"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}

	bad := filepath.Join(dir, "bad.csv")
	err = os.WriteFile(bad, []byte("a,b\n1\n"), 0644)
	testingx.Must(t, err, "cannot write test file")
	_, err = Load(bad)
	if !errors.Is(err, ErrParse) {
		t.Errorf("Load() error = %v, want ErrParse", err)
	}
}
