package core

import (
	"fmt"
	"testing"
)

// ============================================================================
// Normalizer Benchmarks
// ============================================================================

// BenchmarkNormalizeRut benchmarks RUT formatting.
// This is a hot path when cleaning identity columns.
func BenchmarkNormalizeRut(b *testing.B) {
	testCases := []string{
		"123456785",
		"12.345.678-5",
		"  7654321-k ",
		"11111111-1",
		"abc",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			NormalizeRut(tc)
		}
	}
}

// BenchmarkNormalizeRegion benchmarks alias lookup with accent folding.
func BenchmarkNormalizeRegion(b *testing.B) {
	testCases := []string{
		"RM",
		"metropolitana",
		"Región de Valparaíso",
		"los lagos",
		"Atlantis", // Unknown, passes through
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			NormalizeRegion(tc)
		}
	}
}

// BenchmarkTitleCase benchmarks per-word capitalization.
func BenchmarkTitleCase(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		TitleCase("  maría   josé PÉREZ  ")
	}
}

// ============================================================================
// Pipeline Benchmarks
// ============================================================================

// BenchmarkConsolidate benchmarks merging two sources into one schema.
func BenchmarkConsolidate(b *testing.B) {
	sources, t := generateSources(1000)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Consolidate(sources, t)
	}
}

// BenchmarkClean benchmarks a full rule chain over consolidated rows.
func BenchmarkClean(b *testing.B) {
	sources, t := generateSources(1000)
	rows := Consolidate(sources, t).Rows
	cfg := CleaningConfig{ColumnRules: []ColumnRule{
		{Column: "RUT", Rules: []RuleKind{RuleTrim, RuleNormalizeRut}},
		{Column: "Nombre", Rules: []RuleKind{RuleTrim, RuleNormalizeWhitespace, RuleToTitleCase}},
		{Column: "Región", Rules: []RuleKind{RuleTrim, RuleNormalizeRegion}},
	}}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Clean(rows, cfg)
	}
}

// ============================================================================
// Parallel Benchmarks
// ============================================================================

// BenchmarkNormalizeRutParallel benchmarks parallel RUT formatting.
func BenchmarkNormalizeRutParallel(b *testing.B) {
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			NormalizeRut("12.345.678-5")
		}
	})
}

// BenchmarkApplyRulesParallel benchmarks parallel rule chains.
func BenchmarkApplyRulesParallel(b *testing.B) {
	rules := []RuleKind{RuleTrim, RuleNormalizeWhitespace, RuleRemoveAccents, RuleToUpper}
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			ApplyRules("  Región   de Ñuble ", rules)
		}
	})
}

// ============================================================================
// Helper Functions
// ============================================================================

// generateSources builds two sources with different header names that map
// onto the same three fields.
func generateSources(rows int) ([]Source, TemplateSchema) {
	a := Source{ID: "a", Name: "a.csv", Headers: []string{"rut", "nombre", "region"}}
	c := Source{ID: "c", Name: "c.csv", Headers: []string{"RUN", "Nombre Completo", "Region", "Extra"}}

	for i := 0; i < rows; i++ {
		a.Rows = append(a.Rows, Row{
			"rut":    fmt.Sprintf("%d-5", 12345678+i),
			"nombre": "  juan   pérez ",
			"region": "rm",
		})
		c.Rows = append(c.Rows, Row{
			"RUN":             "7654321K",
			"Nombre Completo": "ANA SOTO",
			"Region":          "los lagos",
			"Extra":           "x",
		})
	}

	t := TemplateSchema{
		Fields: []string{"RUT", "Nombre", "Región"},
		Mappings: map[string]FieldMapping{
			"a": {"rut": "RUT", "nombre": "Nombre", "region": "Región"},
			"c": {"RUN": "RUT", "Nombre Completo": "Nombre", "Region": "Región", "Extra": IgnoreColumn},
		},
	}
	return []Source{a, c}, t
}
