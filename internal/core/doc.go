// Package core provides the consolidation and cleaning pipeline.
//
// This package is the heart of datacleaner and contains the domain logic
// independent of any UI, transport or storage layer. It can be used by web
// handlers, the CLI, or tests without modification. Nothing here performs I/O,
// logs, or keeps state between calls; every function is safe to call
// concurrently on disjoint inputs.
//
// # Consolidation
//
// [Consolidate] merges several [Source] tables, each with its own column
// names, into one table whose rows carry exactly the fields of a
// [TemplateSchema]:
//
//	res := core.Consolidate(sources, core.TemplateSchema{
//	    Fields: []string{"RUT", "Nombre"},
//	    Mappings: map[string]core.FieldMapping{
//	        "alumnos": {"RUN": "RUT", "NOMBRE_COMPLETO": "Nombre"},
//	    },
//	})
//
// Fields without a mapping, or whose header is missing from a row, are set to
// the empty string. Rows are never dropped or merged.
//
// # Cleaning
//
// [Clean] folds an ordered chain of [RuleKind] values over the designated
// columns of every row:
//
//	cleaned := core.Clean(res.Rows, core.CleaningConfig{
//	    ColumnRules: []core.ColumnRule{
//	        {Column: "RUT", Rules: []core.RuleKind{core.RuleTrim, core.RuleNormalizeRut}},
//	    },
//	})
//
// Rules never fail. Values they cannot interpret are passed through, so a bad
// row never aborts a batch.
//
// # Domain Normalizers
//
//   - [NormalizeRut]: formats Chilean RUT/RUN identifiers as 12.345.678-K
//     (formatting only, no check digit validation).
//   - [NormalizeRegion]: maps Chilean region aliases ("rm", "Region del Bio Bio",
//     "XIII") to the official region name using the regions table.
package core
