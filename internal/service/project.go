package service

import (
	"sync"
	"time"

	"github.com/JonMunkholm/datacleaner/internal/core"
)

// Project is one cleaning session: its uploaded sources, the concepts and
// mappings the user chose, and the last processed result.
type Project struct {
	ID        string
	CreatedAt time.Time

	mu       sync.RWMutex
	sources  []core.Source
	concepts []string
	mappings map[string]core.FieldMapping
	result   *RunResult
	version  int // bumped on every input change
}

func newProject(id string, now time.Time) *Project {
	return &Project{
		ID:        id,
		CreatedAt: now,
		concepts:  append([]string(nil), DefaultConcepts...),
		mappings:  make(map[string]core.FieldMapping),
	}
}

// SourceInfo describes an uploaded source without its rows.
type SourceInfo struct {
	ID        string            `json:"uploadId"`
	Name      string            `json:"name"`
	Headers   []string          `json:"headers"`
	RowCount  int               `json:"rowCount"`
	Delimiter string            `json:"delimiter,omitempty"`
	Mapping   core.FieldMapping `json:"mapping"`
}

// ProjectInfo is a snapshot of a project for display.
type ProjectInfo struct {
	ID        string              `json:"projectId"`
	CreatedAt time.Time           `json:"createdAt"`
	Sources   []SourceInfo        `json:"sources"`
	Concepts  []string            `json:"concepts"`
	Template  core.TemplateSchema `json:"template"`
	Result    *RunResult          `json:"result,omitempty"`
}

// addSource appends src and auto-maps it against the current concepts.
func (p *Project) addSource(src core.Source) core.FieldMapping {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sources = append(p.sources, src)
	if _, ok := p.mappings[src.ID]; !ok {
		p.mappings[src.ID] = SuggestMapping(src.Headers, p.concepts)
	}
	p.result = nil
	p.version++
	return copyMapping(p.mappings[src.ID])
}

// setTemplate replaces the concepts and the mappings of the given sources.
// Mappings that point at a concept no longer listed are reset to ignore.
func (p *Project) setTemplate(concepts []string, mappings map[string]core.FieldMapping) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	known := make(map[string]bool, len(p.sources))
	for _, s := range p.sources {
		known[s.ID] = true
	}
	for id := range mappings {
		if !known[id] {
			return ErrSourceNotFound
		}
	}

	if concepts != nil {
		p.concepts = NormalizeConcepts(concepts)
	}
	for id, m := range mappings {
		p.mappings[id] = copyMapping(m)
	}

	valid := make(map[string]bool, len(p.concepts))
	for _, c := range p.concepts {
		valid[c] = true
	}
	for _, m := range p.mappings {
		for h, field := range m {
			if field != core.IgnoreColumn && !valid[field] {
				m[h] = core.IgnoreColumn
			}
		}
	}

	p.result = nil
	p.version++
	return nil
}

// template returns the effective schema: the active concepts and a copy of
// every mapping.
func (p *Project) template() core.TemplateSchema {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.templateLocked()
}

func (p *Project) templateLocked() core.TemplateSchema {
	mappings := make(map[string]core.FieldMapping, len(p.mappings))
	for id, m := range p.mappings {
		mappings[id] = copyMapping(m)
	}
	return core.TemplateSchema{
		Fields:   ActiveConcepts(p.concepts, p.mappings),
		Mappings: mappings,
	}
}

// snapshot returns the inputs of a run and the version they belong to.
// Sources are immutable once added, so the slice header copy is enough.
func (p *Project) snapshot() ([]core.Source, core.TemplateSchema, int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]core.Source(nil), p.sources...), p.templateLocked(), p.version
}

// setResult stores r unless the inputs changed since version was taken.
func (p *Project) setResult(r *RunResult, version int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.version != version {
		return false
	}
	p.result = r
	return true
}

func (p *Project) lastResult() *RunResult {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.result
}

func (p *Project) info() ProjectInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()

	sources := make([]SourceInfo, len(p.sources))
	for i, s := range p.sources {
		sources[i] = SourceInfo{
			ID:       s.ID,
			Name:     s.Name,
			Headers:  s.Headers,
			RowCount: len(s.Rows),
			Mapping:  copyMapping(p.mappings[s.ID]),
		}
	}

	return ProjectInfo{
		ID:        p.ID,
		CreatedAt: p.CreatedAt,
		Sources:   sources,
		Concepts:  append([]string(nil), p.concepts...),
		Template:  p.templateLocked(),
		Result:    p.result,
	}
}

func copyMapping(m core.FieldMapping) core.FieldMapping {
	if m == nil {
		return nil
	}
	out := make(core.FieldMapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
