package core

import "sort"

// Consolidate merges sources into rows that carry exactly t.Fields as keys.
//
// Rows are concatenated in source order and keep their order within each
// source. A field is copied from the mapped original header when the source
// row has that key (even with a nil value); otherwise it is set to "".
//
// When several headers of one source map to the same field, the header that
// comes last in Source.Headers wins. Mapped headers that are not listed in
// Source.Headers rank before all listed ones, in sorted order.
func Consolidate(sources []Source, t TemplateSchema) ConsolidationResult {
	fields := append([]string(nil), t.Fields...)

	total := 0
	for _, src := range sources {
		total += len(src.Rows)
	}

	rows := make([]Row, 0, total)
	perSource := make([]SourceCount, 0, len(sources))

	for _, src := range sources {
		reverse := InvertMapping(src.Headers, t.Mappings[src.ID])

		for _, orig := range src.Rows {
			row := make(Row, len(fields))
			for _, field := range fields {
				row[field] = ""
				header, ok := reverse[field]
				if !ok {
					continue
				}
				if v, present := orig[header]; present {
					row[field] = v
				}
			}
			rows = append(rows, row)
		}

		perSource = append(perSource, SourceCount{
			ID:       src.ID,
			Name:     src.Name,
			RowCount: len(src.Rows),
		})
	}

	return ConsolidationResult{
		Fields: fields,
		Rows:   rows,
		Stats: ConsolidationStats{
			TotalSources:  len(sources),
			TotalRows:     len(rows),
			RowsPerSource: perSource,
		},
	}
}

// InvertMapping turns header -> field into field -> header using the
// precedence documented on Consolidate. Ignored and empty targets are skipped.
func InvertMapping(headers []string, mapping FieldMapping) map[string]string {
	reverse := make(map[string]string, len(mapping))
	if len(mapping) == 0 {
		return reverse
	}

	listed := make(map[string]bool, len(headers))
	for _, h := range headers {
		listed[h] = true
	}

	var extra []string
	for h := range mapping {
		if !listed[h] {
			extra = append(extra, h)
		}
	}
	sort.Strings(extra)

	order := append(extra, headers...)
	for _, h := range order {
		field, ok := mapping[h]
		if !ok || field == "" || field == IgnoreColumn {
			continue
		}
		reverse[field] = h
	}
	return reverse
}
