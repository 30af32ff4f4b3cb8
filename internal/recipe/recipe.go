// Package recipe loads YAML files describing a batch cleaning run: the
// target fields, the CSV sources with their mappings, the rules and where
// to write the result.
package recipe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/datacleaner/internal/core"
	"github.com/JonMunkholm/datacleaner/internal/service"
)

// ErrInvalid prefixes every validation failure.
var ErrInvalid = errors.New("invalid recipe")

// Recipe is a batch run description.
type Recipe struct {
	Fields      []string          `yaml:"fields"`
	Sources     []Source          `yaml:"sources"`
	ColumnRules []core.ColumnRule `yaml:"columnRules,omitempty"`
	Export      Export            `yaml:"export,omitempty"`
}

// Source is one input file.
type Source struct {
	ID       string            `yaml:"id,omitempty"`
	Name     string            `yaml:"name,omitempty"`
	Path     string            `yaml:"path"`
	Encoding string            `yaml:"encoding,omitempty"`
	Mapping  core.FieldMapping `yaml:"mapping,omitempty"`
	// AutoMap fills headers missing from Mapping with the suggested concept.
	AutoMap bool `yaml:"automap,omitempty"`
}

// Export says where the cleaned table goes.
type Export struct {
	Path      string `yaml:"path,omitempty"`
	Delimiter string `yaml:"delimiter,omitempty"`
}

// Load reads, defaults and validates the recipe at path. Relative source
// and export paths are resolved against the recipe's directory.
func Load(path string, strict bool) (*Recipe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recipe: %w", err)
	}
	defer f.Close()

	r, err := Parse(f, filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	if err := r.Validate(strict); err != nil {
		return nil, err
	}
	return r, nil
}

// Parse decodes a recipe and fills defaults. Unknown keys are rejected.
// Relative paths are joined to dir when dir is not empty.
func Parse(rd io.Reader, dir string) (*Recipe, error) {
	var r Recipe
	dec := yaml.NewDecoder(rd)
	dec.KnownFields(true)
	if err := dec.Decode(&r); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalid)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	for i := range r.Sources {
		src := &r.Sources[i]
		base := strings.TrimSuffix(filepath.Base(src.Path), filepath.Ext(src.Path))
		if src.ID == "" && src.Path != "" {
			src.ID = base
		}
		if src.Name == "" && src.Path != "" {
			src.Name = filepath.Base(src.Path)
		}
		src.Path = resolve(dir, src.Path)
	}
	r.Export.Path = resolve(dir, r.Export.Path)

	return &r, nil
}

func resolve(dir, p string) string {
	if p == "" || dir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// Validate checks the recipe. Unknown rule names are only an error when
// strict is set; the cleaner otherwise treats them as trim.
func (r *Recipe) Validate(strict bool) error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if len(service.NormalizeConcepts(r.Fields)) == 0 {
		fail("fields must list at least one target field")
	}
	if len(r.Sources) == 0 {
		fail("sources must list at least one file")
	}

	ids := make(map[string]bool, len(r.Sources))
	for i, src := range r.Sources {
		if src.Path == "" {
			fail("sources[%d]: path is required", i)
			continue
		}
		if ids[src.ID] {
			fail("sources[%d]: duplicate id %q", i, src.ID)
		}
		ids[src.ID] = true
	}

	if strict {
		if unknown := service.ValidateRules(core.CleaningConfig{ColumnRules: r.ColumnRules}); len(unknown) > 0 {
			fail("unknown rules: %s", strings.Join(unknown, ", "))
		}
	}

	return errors.Join(errs...)
}

// Rules returns the configured rules, or nil to use the defaults.
func (r *Recipe) Rules() *core.CleaningConfig {
	if len(r.ColumnRules) == 0 {
		return nil
	}
	return &core.CleaningConfig{ColumnRules: r.ColumnRules}
}

// MappingFor returns the mapping of src for the given headers. Explicit
// entries win; with AutoMap the remaining headers get the suggested field.
func (r *Recipe) MappingFor(src Source, headers []string) core.FieldMapping {
	m := make(core.FieldMapping, len(headers))
	if src.AutoMap {
		for h, field := range service.SuggestMapping(headers, r.Fields) {
			m[h] = field
		}
	}
	for h, field := range src.Mapping {
		m[h] = field
	}
	return m
}

// Marshal encodes the recipe as YAML.
func (r *Recipe) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
