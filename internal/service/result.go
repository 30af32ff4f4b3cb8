package service

import (
	"fmt"

	"github.com/JonMunkholm/datacleaner/internal/core"
)

// DefaultPreviewRows is how many rows Preview shows when n is not positive.
const DefaultPreviewRows = 50

// RunResult is the output of one consolidate-then-clean run.
type RunResult struct {
	Fields        []string                `json:"fields"`
	Rows          []core.Row              `json:"-"`
	Consolidation core.ConsolidationStats `json:"consolidation"`
	Cleaning      core.CleaningStats      `json:"cleaning"`
	Config        core.CleaningConfig     `json:"config"`
	UnknownRules  []string                `json:"unknownRules,omitempty"`
	DurationMS    int64                   `json:"durationMs"`
}

// PreviewResult is the head of a result for display.
type PreviewResult struct {
	Fields  []string   `json:"fields"`
	Rows    []core.Row `json:"rows"`
	Shown   int        `json:"shown"`
	Total   int        `json:"total"`
	Message string     `json:"message"`
}

// Preview returns the first n rows of res.
func Preview(res *RunResult, n int) PreviewResult {
	if n <= 0 {
		n = DefaultPreviewRows
	}
	if res == nil {
		return PreviewResult{Rows: []core.Row{}}
	}

	shown := min(n, len(res.Rows))
	return PreviewResult{
		Fields:  res.Fields,
		Rows:    res.Rows[:shown],
		Shown:   shown,
		Total:   len(res.Rows),
		Message: fmt.Sprintf("Mostrando las primeras %d de %d filas.", shown, len(res.Rows)),
	}
}
