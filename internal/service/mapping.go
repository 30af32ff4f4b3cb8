package service

import (
	"strings"

	"github.com/JonMunkholm/datacleaner/internal/core"
)

// DefaultConcepts are the target fields offered before the user edits them.
var DefaultConcepts = []string{"RUT", "Nombre", "Institución", "Región"}

// headerKey folds a header for comparison with a concept:
// lower case, underscores read as spaces.
func headerKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", " ")
}

// SuggestMapping maps each header to the first concept it matches ignoring
// case and treating underscores as spaces. Unmatched headers map to
// core.IgnoreColumn.
func SuggestMapping(headers, concepts []string) core.FieldMapping {
	byKey := make(map[string]string, len(concepts))
	for _, c := range concepts {
		k := strings.ToLower(strings.TrimSpace(c))
		if _, dup := byKey[k]; !dup {
			byKey[k] = c
		}
	}

	m := make(core.FieldMapping, len(headers))
	for _, h := range headers {
		if c, ok := byKey[headerKey(h)]; ok {
			m[h] = c
		} else {
			m[h] = core.IgnoreColumn
		}
	}
	return m
}

// MatchScore is the fraction of concepts that some header matches under the
// SuggestMapping rules.
func MatchScore(headers, concepts []string) float64 {
	if len(concepts) == 0 {
		return 0
	}

	keys := make(map[string]bool, len(headers))
	for _, h := range headers {
		keys[headerKey(h)] = true
	}

	matched := 0
	for _, c := range concepts {
		if keys[strings.ToLower(strings.TrimSpace(c))] {
			matched++
		}
	}
	return float64(matched) / float64(len(concepts))
}

// NormalizeConcepts trims concept names and drops empty and repeated ones,
// keeping the first occurrence.
func NormalizeConcepts(concepts []string) []string {
	seen := make(map[string]bool, len(concepts))
	out := make([]string, 0, len(concepts))
	for _, c := range concepts {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// ActiveConcepts returns the concepts some source maps a header to, in
// concept order. When none is referenced every concept is returned.
func ActiveConcepts(concepts []string, mappings map[string]core.FieldMapping) []string {
	used := make(map[string]bool)
	for _, m := range mappings {
		for _, field := range m {
			used[field] = true
		}
	}

	active := make([]string, 0, len(concepts))
	for _, c := range concepts {
		if used[c] {
			active = append(active, c)
		}
	}
	if len(active) == 0 {
		return append([]string(nil), concepts...)
	}
	return active
}

// DefaultColumnRules builds the rule chain used when the caller supplies
// none: trim and normalizeWhitespace for every field, then normalizeRut for
// fields whose name contains "rut" or "run", toTitleCase for "nombre" and
// normalizeRegion for "region". Names are compared without case or accents.
func DefaultColumnRules(fields []string) core.CleaningConfig {
	cfg := core.CleaningConfig{ColumnRules: make([]core.ColumnRule, 0, len(fields))}

	for _, field := range fields {
		rules := []core.RuleKind{core.RuleTrim, core.RuleNormalizeWhitespace}
		name := strings.ToLower(core.RemoveAccents(field))

		if strings.Contains(name, "rut") || strings.Contains(name, "run") {
			rules = append(rules, core.RuleNormalizeRut)
		}
		if strings.Contains(name, "nombre") {
			rules = append(rules, core.RuleToTitleCase)
		}
		if strings.Contains(name, "region") {
			rules = append(rules, core.RuleNormalizeRegion)
		}

		cfg.ColumnRules = append(cfg.ColumnRules, core.ColumnRule{Column: field, Rules: rules})
	}
	return cfg
}

// ValidateInputs checks the preconditions of a run.
func ValidateInputs(sources []core.Source, fields []string) error {
	if len(sources) == 0 {
		return ErrNoSources
	}
	if len(fields) == 0 {
		return ErrNoFields
	}
	return nil
}

// ValidateRules returns the distinct rule names in cfg that the cleaner does
// not know. Unknown rules are tolerated at run time.
func ValidateRules(cfg core.CleaningConfig) []string {
	var unknown []string
	seen := make(map[core.RuleKind]bool)
	for _, cr := range cfg.ColumnRules {
		for _, r := range cr.Rules {
			if r.Known() || seen[r] {
				continue
			}
			seen[r] = true
			unknown = append(unknown, string(r))
		}
	}
	return unknown
}
