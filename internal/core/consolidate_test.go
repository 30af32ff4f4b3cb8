package core

import (
	"reflect"
	"testing"
)

func rutSources() []Source {
	return []Source{
		{
			ID:      "a",
			Name:    "alumnos.csv",
			Headers: []string{"RUN"},
			Rows:    []Row{{"RUN": "12345678-5"}, {"RUN": "9876543-k"}},
		},
		{
			ID:      "b",
			Name:    "docentes.csv",
			Headers: []string{"Rut"},
			Rows:    []Row{{"Rut": "11111111-1"}},
		},
	}
}

func rutTemplate() TemplateSchema {
	return TemplateSchema{
		Fields: []string{"RUT"},
		Mappings: map[string]FieldMapping{
			"a": {"RUN": "RUT"},
			"b": {"Rut": "RUT"},
		},
	}
}

func TestConsolidate_RowConservation(t *testing.T) {
	sources := []Source{
		{ID: "a", Headers: []string{"x"}, Rows: []Row{{"x": 1}, {"x": 2}, {"x": 3}}},
		{ID: "b", Headers: []string{"y"}, Rows: nil},
		{ID: "c", Headers: []string{"z"}, Rows: []Row{{"z": "q"}}},
	}
	tmpl := TemplateSchema{Fields: []string{"F"}, Mappings: map[string]FieldMapping{"a": {"x": "F"}}}

	res := Consolidate(sources, tmpl)

	if len(res.Rows) != 4 {
		t.Fatalf("len(Rows) = %d, want 4", len(res.Rows))
	}
	if res.Stats.TotalRows != 4 {
		t.Errorf("TotalRows = %d, want 4", res.Stats.TotalRows)
	}
	if res.Stats.TotalSources != 3 {
		t.Errorf("TotalSources = %d, want 3", res.Stats.TotalSources)
	}

	wantCounts := []int{3, 0, 1}
	for i, sc := range res.Stats.RowsPerSource {
		if sc.RowCount != wantCounts[i] {
			t.Errorf("RowsPerSource[%d].RowCount = %d, want %d", i, sc.RowCount, wantCounts[i])
		}
		if sc.ID != sources[i].ID {
			t.Errorf("RowsPerSource[%d].ID = %q, want %q", i, sc.ID, sources[i].ID)
		}
	}
}

func TestConsolidate_FieldCompleteness(t *testing.T) {
	sources := []Source{
		{
			ID:      "a",
			Headers: []string{"nombre", "extra", "rut"},
			Rows: []Row{
				{"nombre": "Ana", "extra": "x", "rut": "1-9"},
				{"nombre": "Luis"},
			},
		},
	}
	tmpl := TemplateSchema{
		Fields: []string{"RUT", "Nombre", "Región"},
		Mappings: map[string]FieldMapping{
			"a": {"nombre": "Nombre", "rut": "RUT", "extra": IgnoreColumn},
		},
	}

	res := Consolidate(sources, tmpl)

	for i, row := range res.Rows {
		if len(row) != len(tmpl.Fields) {
			t.Errorf("row %d has %d keys, want %d", i, len(row), len(tmpl.Fields))
		}
		for _, f := range tmpl.Fields {
			if _, ok := row[f]; !ok {
				t.Errorf("row %d missing field %q", i, f)
			}
		}
		if _, ok := row["extra"]; ok {
			t.Errorf("row %d carries ignored column", i)
		}
	}

	want := []Row{
		{"RUT": "1-9", "Nombre": "Ana", "Región": ""},
		{"RUT": "", "Nombre": "Luis", "Región": ""},
	}
	if !reflect.DeepEqual(res.Rows, want) {
		t.Errorf("Rows = %v, want %v", res.Rows, want)
	}
}

func TestConsolidate_UnmappedFieldDefaultsToEmpty(t *testing.T) {
	sources := []Source{
		{ID: "a", Headers: []string{"h"}, Rows: []Row{{"h": "v"}, {"h": "w"}}},
	}
	tmpl := TemplateSchema{Fields: []string{"A", "B"}}

	res := Consolidate(sources, tmpl)

	for i, row := range res.Rows {
		for _, f := range tmpl.Fields {
			v, ok := row[f]
			if !ok || v != "" {
				t.Errorf("row %d field %q = %v (present=%v), want empty string", i, f, v, ok)
			}
		}
	}
}

func TestConsolidate_PreservesValueTypes(t *testing.T) {
	sources := []Source{
		{ID: "a", Headers: []string{"n", "z"}, Rows: []Row{{"n": 42, "z": nil}}},
	}
	tmpl := TemplateSchema{
		Fields:   []string{"N", "Z"},
		Mappings: map[string]FieldMapping{"a": {"n": "N", "z": "Z"}},
	}

	row := Consolidate(sources, tmpl).Rows[0]

	if row["N"] != 42 {
		t.Errorf("N = %v, want 42", row["N"])
	}
	if v, ok := row["Z"]; !ok || v != nil {
		t.Errorf("Z = %v (present=%v), want nil copied through", v, ok)
	}
}

func TestConsolidate_DoesNotShareInput(t *testing.T) {
	fields := []string{"A"}
	sources := []Source{{ID: "a", Headers: []string{"a"}, Rows: []Row{{"a": "1"}}}}
	tmpl := TemplateSchema{Fields: fields, Mappings: map[string]FieldMapping{"a": {"a": "A"}}}

	res := Consolidate(sources, tmpl)
	res.Rows[0]["A"] = "changed"
	res.Fields[0] = "B"

	if sources[0].Rows[0]["a"] != "1" {
		t.Error("Consolidate result aliases input row")
	}
	if fields[0] != "A" {
		t.Error("Consolidate result aliases template fields")
	}
}

func TestInvertMapping(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		mapping FieldMapping
		want    map[string]string
	}{
		{
			name:    "nil mapping",
			headers: []string{"a"},
			mapping: nil,
			want:    map[string]string{},
		},
		{
			name:    "one to one",
			headers: []string{"a", "b"},
			mapping: FieldMapping{"a": "A", "b": "B"},
			want:    map[string]string{"A": "a", "B": "b"},
		},
		{
			name:    "last header wins",
			headers: []string{"rut", "run", "id"},
			mapping: FieldMapping{"rut": "RUT", "run": "RUT"},
			want:    map[string]string{"RUT": "run"},
		},
		{
			name:    "listed header beats unlisted",
			headers: []string{"b"},
			mapping: FieldMapping{"b": "F", "a": "F", "c": "F"},
			want:    map[string]string{"F": "b"},
		},
		{
			name:    "unlisted headers in sorted order",
			headers: nil,
			mapping: FieldMapping{"z": "F", "m": "F"},
			want:    map[string]string{"F": "z"},
		},
		{
			name:    "ignore and empty skipped",
			headers: []string{"a", "b", "c"},
			mapping: FieldMapping{"a": "A", "b": IgnoreColumn, "c": ""},
			want:    map[string]string{"A": "a"},
		},
		{
			name:    "ignored later header does not override",
			headers: []string{"a", "b"},
			mapping: FieldMapping{"a": "A", "b": IgnoreColumn},
			want:    map[string]string{"A": "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InvertMapping(tt.headers, tt.mapping)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("InvertMapping() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConsolidateThenClean_EndToEnd(t *testing.T) {
	res := Consolidate(rutSources(), rutTemplate())

	wantRaw := []string{"12345678-5", "9876543-k", "11111111-1"}
	if len(res.Rows) != len(wantRaw) {
		t.Fatalf("len(Rows) = %d, want %d", len(res.Rows), len(wantRaw))
	}
	for i, w := range wantRaw {
		if got := res.Rows[i]["RUT"]; got != w {
			t.Errorf("consolidated row %d RUT = %v, want %q", i, got, w)
		}
	}

	cleaned := Clean(res.Rows, CleaningConfig{
		ColumnRules: []ColumnRule{
			{Column: "RUT", Rules: []RuleKind{RuleTrim, RuleNormalizeWhitespace, RuleNormalizeRut}},
		},
	})

	// An eight digit body groups as 11.111.111.
	wantClean := []string{"12.345.678-5", "9.876.543-K", "11.111.111-1"}
	for i, w := range wantClean {
		if got := cleaned.Rows[i]["RUT"]; got != w {
			t.Errorf("cleaned row %d RUT = %v, want %q", i, got, w)
		}
	}

	if cleaned.Stats.TotalRows != 3 {
		t.Errorf("TotalRows = %d, want 3", cleaned.Stats.TotalRows)
	}
	if !reflect.DeepEqual(cleaned.Stats.ColumnsProcessed, []string{"RUT"}) {
		t.Errorf("ColumnsProcessed = %v, want [RUT]", cleaned.Stats.ColumnsProcessed)
	}
}
