// Package core provides the consolidation and cleaning pipeline.
// This package has no I/O or UI dependencies and can be used by any frontend.
package core

// IgnoreColumn marks an original header that must not feed any target field.
const IgnoreColumn = "__IGNORE__"

// Row maps a field or column name to a scalar value.
// Values are nil (null), string, a number type, json.Number or bool.
// A key that is not present is "absent", which is distinct from a nil value.
type Row map[string]any

// Source is one uploaded table with its original column names.
type Source struct {
	ID      string   `json:"uploadId" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Headers []string `json:"headers" yaml:"headers"`
	Rows    []Row    `json:"rows" yaml:"-"`
}

// FieldMapping maps an original header to a target field name.
type FieldMapping map[string]string

// TemplateSchema is the target schema plus the per-source header mappings.
type TemplateSchema struct {
	Fields   []string                `json:"fields"`
	Mappings map[string]FieldMapping `json:"mappings"` // source ID -> mapping
}

// SourceCount is the number of rows a source contributed.
type SourceCount struct {
	ID       string `json:"uploadId"`
	Name     string `json:"name"`
	RowCount int    `json:"rows"`
}

// ConsolidationStats summarizes a consolidation run.
type ConsolidationStats struct {
	TotalSources  int           `json:"totalSources"`
	TotalRows     int           `json:"totalRows"`
	RowsPerSource []SourceCount `json:"rowsPerSource"`
}

// ConsolidationResult holds rows that all carry exactly Fields as keys.
type ConsolidationResult struct {
	Fields []string           `json:"fields"`
	Rows   []Row              `json:"rows"`
	Stats  ConsolidationStats `json:"stats"`
}

// RuleKind names a single cleaning rule.
type RuleKind string

const (
	RuleTrim                RuleKind = "trim"
	RuleNormalizeWhitespace RuleKind = "normalizeWhitespace"
	RuleToUpper             RuleKind = "toUpper"
	RuleToLower             RuleKind = "toLower"
	RuleToTitleCase         RuleKind = "toTitleCase"
	RuleRemoveAccents       RuleKind = "removeAccents"
	RuleNormalizeRut        RuleKind = "normalizeRut"
	RuleNormalizeRegion     RuleKind = "normalizeRegion"
)

// RuleKinds lists every rule the cleaner knows, in display order.
var RuleKinds = []RuleKind{
	RuleTrim,
	RuleNormalizeWhitespace,
	RuleToUpper,
	RuleToLower,
	RuleToTitleCase,
	RuleRemoveAccents,
	RuleNormalizeRut,
	RuleNormalizeRegion,
}

// Known reports whether k is one of RuleKinds.
func (k RuleKind) Known() bool {
	for _, r := range RuleKinds {
		if r == k {
			return true
		}
	}
	return false
}

// ColumnRule is an ordered rule chain for one column.
// Rules compose left to right.
type ColumnRule struct {
	Column string     `json:"column" yaml:"column"`
	Rules  []RuleKind `json:"rules" yaml:"rules"`
}

// CleaningConfig lists the rule chains applied by Clean.
type CleaningConfig struct {
	ColumnRules []ColumnRule `json:"columnRules" yaml:"columnRules"`
}

// CleaningStats summarizes a cleaning run.
type CleaningStats struct {
	TotalRows        int      `json:"totalRows"`
	ColumnsProcessed []string `json:"columnsProcessed"` // distinct, first-appearance order
}

// CleaningResult holds the cleaned rows and their stats.
type CleaningResult struct {
	Rows  []Row         `json:"rows"`
	Stats CleaningStats `json:"stats"`
}
