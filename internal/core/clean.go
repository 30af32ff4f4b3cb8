package core

// ApplyRule applies a single rule to a value and returns the resulting text.
//
// The value is always stringified and trimmed first, so every rule, including
// an unrecognized one, yields trimmed text. Rules never fail: inputs they do
// not understand pass through.
func ApplyRule(value any, rule RuleKind) string {
	s := Trim(ValueString(value))

	switch rule {
	case RuleTrim:
		return s
	case RuleNormalizeWhitespace:
		return CollapseWhitespace(s)
	case RuleToUpper:
		return Upper(s)
	case RuleToLower:
		return Lower(s)
	case RuleToTitleCase:
		return TitleCase(s)
	case RuleRemoveAccents:
		return RemoveAccents(s)
	case RuleNormalizeRut:
		return NormalizeRut(s)
	case RuleNormalizeRegion:
		return NormalizeRegion(s)
	default:
		return s
	}
}

// ApplyRules folds rules over value from left to right.
func ApplyRules(value any, rules []RuleKind) any {
	for _, rule := range rules {
		value = ApplyRule(value, rule)
	}
	return value
}

// Clean applies cfg to every row and returns new rows.
//
// Only columns present in a row are rewritten; no key is ever added or
// removed and the input rows are not modified.
func Clean(rows []Row, cfg CleaningConfig) CleaningResult {
	out := make([]Row, len(rows))

	for i, row := range rows {
		cleaned := make(Row, len(row))
		for k, v := range row {
			cleaned[k] = v
		}
		for _, cr := range cfg.ColumnRules {
			if v, ok := cleaned[cr.Column]; ok {
				cleaned[cr.Column] = ApplyRules(v, cr.Rules)
			}
		}
		out[i] = cleaned
	}

	return CleaningResult{
		Rows: out,
		Stats: CleaningStats{
			TotalRows:        len(rows),
			ColumnsProcessed: ConfiguredColumns(cfg),
		},
	}
}

// ConfiguredColumns returns the distinct columns named in cfg, in the order
// they first appear.
func ConfiguredColumns(cfg CleaningConfig) []string {
	seen := make(map[string]bool, len(cfg.ColumnRules))
	cols := make([]string, 0, len(cfg.ColumnRules))
	for _, cr := range cfg.ColumnRules {
		if seen[cr.Column] {
			continue
		}
		seen[cr.Column] = true
		cols = append(cols, cr.Column)
	}
	return cols
}
