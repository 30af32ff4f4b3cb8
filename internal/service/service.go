// Package service orchestrates the pipeline for the HTTP server and the CLI.
//
// It owns everything the core package leaves to its callers: parsing
// uploaded files, keeping projects in memory, choosing default rules,
// bounding concurrent runs and recording metrics.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/datacleaner/internal/config"
	"github.com/JonMunkholm/datacleaner/internal/core"
	"github.com/JonMunkholm/datacleaner/internal/csvio"
	"github.com/JonMunkholm/datacleaner/internal/logging"
	"github.com/JonMunkholm/datacleaner/internal/metrics"
)

// Run outcomes recorded in metrics.
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeCanceled = "canceled"
)

// Service runs the pipeline over in-memory projects.
type Service struct {
	cfg     *config.Config
	store   *Store
	limiter *RunLimiter
	metrics metrics.Recorder

	now   func() time.Time
	newID func() string
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records pipeline metrics on r.
func WithMetrics(r metrics.Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.metrics = r
		}
	}
}

// WithIDGenerator replaces the uuid generator used for project and upload ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewService creates a Service from cfg.
func NewService(cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		cfg:     cfg,
		metrics: metrics.Nop{},
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}

	s.store = NewStore(cfg.Session.MaxProjects, cfg.Session.TTL, s.metrics.SetProjects)
	s.limiter = NewRunLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)
	s.limiter.onChange = s.metrics.SetActiveRuns
	return s
}

// Limiter returns the run limiter, for status reporting.
func (s *Service) Limiter() *RunLimiter {
	return s.limiter
}

// Shutdown waits for in-flight runs to finish or ctx to end.
func (s *Service) Shutdown(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// CreateProject starts an empty project with the default concepts.
func (s *Service) CreateProject(ctx context.Context) ProjectInfo {
	p := newProject(s.newID(), s.now())
	s.store.Put(p)
	logging.WithFields(ctx, "project_id", p.ID).Info("project created")
	return p.info()
}

// GetProject returns a snapshot of a project.
func (s *Service) GetProject(projectID string) (ProjectInfo, error) {
	p, err := s.project(projectID)
	if err != nil {
		return ProjectInfo{}, err
	}
	return p.info(), nil
}

// DeleteProject drops a project and its data.
func (s *Service) DeleteProject(projectID string) error {
	if !s.store.Delete(projectID) {
		return ErrProjectNotFound
	}
	return nil
}

func (s *Service) project(id string) (*Project, error) {
	p, ok := s.store.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	return p, nil
}

// Upload is a CSV file handed to the service.
type Upload struct {
	Name     string
	Reader   io.Reader
	Size     int64  // declared size; -1 or 0 when unknown
	Encoding string // empty uses the configured default
}

// ParseSource parses an upload into a source with a fresh id. The returned
// rune is the delimiter the file used.
func (s *Service) ParseSource(ctx context.Context, up Upload) (core.Source, rune, error) {
	if up.Reader == nil {
		return core.Source{}, 0, ErrNoFile
	}

	limit := s.cfg.Upload.MaxFileSize
	if limit > 0 && up.Size > limit {
		return core.Source{}, 0, fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, up.Size, limit)
	}

	encName := up.Encoding
	if encName == "" {
		encName = s.cfg.Upload.Encoding
	}
	enc, err := csvio.ParseEncoding(encName)
	if err != nil {
		return core.Source{}, 0, err
	}

	start := time.Now()
	table, err := csvio.Parse(ctxReader{ctx: ctx, r: up.Reader}, csvio.Options{
		Encoding: enc,
		MaxBytes: limit,
		Strict:   s.cfg.Upload.Strict,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return core.Source{}, 0, ctxErr
		}
		return core.Source{}, 0, fmt.Errorf("parse %s: %w", up.Name, err)
	}
	s.metrics.ObserveStage(metrics.StageParse, time.Since(start))
	s.metrics.AddRows(metrics.StageParse, len(table.Rows))

	return core.Source{
		ID:      s.newID(),
		Name:    up.Name,
		Headers: table.Headers,
		Rows:    table.Rows,
	}, table.Delimiter, nil
}

// AddSource parses an upload into a project and suggests a mapping for it.
func (s *Service) AddSource(ctx context.Context, projectID string, up Upload) (SourceInfo, error) {
	p, err := s.project(projectID)
	if err != nil {
		return SourceInfo{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	src, delim, err := s.ParseSource(ctx, up)
	if err != nil {
		return SourceInfo{}, err
	}
	mapping := p.addSource(src)

	logging.WithFields(ctx,
		"project_id", projectID,
		"upload_id", src.ID,
		"file", src.Name,
	).Info("source added", "rows", len(src.Rows), "headers", len(src.Headers))

	return SourceInfo{
		ID:        src.ID,
		Name:      src.Name,
		Headers:   src.Headers,
		RowCount:  len(src.Rows),
		Delimiter: string(delim),
		Mapping:   mapping,
	}, nil
}

// SetTemplate replaces the project's concepts (when non-nil) and the
// mappings of the listed sources.
func (s *Service) SetTemplate(projectID string, concepts []string, mappings map[string]core.FieldMapping) (core.TemplateSchema, error) {
	p, err := s.project(projectID)
	if err != nil {
		return core.TemplateSchema{}, err
	}
	if err := p.setTemplate(concepts, mappings); err != nil {
		return core.TemplateSchema{}, err
	}
	return p.template(), nil
}

// Template returns the project's effective schema.
func (s *Service) Template(projectID string) (core.TemplateSchema, error) {
	p, err := s.project(projectID)
	if err != nil {
		return core.TemplateSchema{}, err
	}
	return p.template(), nil
}

// Run consolidates sources under t and cleans the result. A nil cfg, or one
// without column rules, uses DefaultColumnRules for t.Fields. Unknown rule names are logged and
// reported on the result; they never fail the run.
func (s *Service) Run(ctx context.Context, sources []core.Source, t core.TemplateSchema, cfg *core.CleaningConfig) (*RunResult, error) {
	if err := ValidateInputs(sources, t.Fields); err != nil {
		s.metrics.IncRun(OutcomeInvalid)
		return nil, err
	}

	rules := DefaultColumnRules(t.Fields)
	if cfg != nil && len(cfg.ColumnRules) > 0 {
		rules = *cfg
	}

	log := logging.WithFields(ctx, "sources", len(sources), "fields", len(t.Fields))
	unknown := ValidateRules(rules)
	if len(unknown) > 0 {
		log.Warn("unknown cleaning rules are applied as trim", "rules", unknown)
	}

	start := time.Now()

	cons := core.Consolidate(sources, t)
	s.metrics.ObserveStage(metrics.StageConsolidate, time.Since(start))
	s.metrics.AddRows(metrics.StageConsolidate, len(cons.Rows))

	if err := ctx.Err(); err != nil {
		s.metrics.IncRun(OutcomeCanceled)
		return nil, err
	}

	cleanStart := time.Now()
	cleaned := core.Clean(cons.Rows, rules)
	s.metrics.ObserveStage(metrics.StageClean, time.Since(cleanStart))
	s.metrics.AddRows(metrics.StageClean, len(cleaned.Rows))
	s.recordRuleApplications(cons.Fields, len(cleaned.Rows), rules)

	res := &RunResult{
		Fields:        cons.Fields,
		Rows:          cleaned.Rows,
		Consolidation: cons.Stats,
		Cleaning:      cleaned.Stats,
		Config:        rules,
		UnknownRules:  unknown,
		DurationMS:    time.Since(start).Milliseconds(),
	}
	s.metrics.IncRun(OutcomeOK)
	log.Info("run completed", "rows", len(res.Rows), "duration_ms", res.DurationMS)
	return res, nil
}

// recordRuleApplications counts one application per rule per row for every
// configured column that is a consolidated field.
func (s *Service) recordRuleApplications(fields []string, rows int, cfg core.CleaningConfig) {
	if rows == 0 {
		return
	}
	present := make(map[string]bool, len(fields))
	for _, f := range fields {
		present[f] = true
	}
	for _, cr := range cfg.ColumnRules {
		if !present[cr.Column] {
			continue
		}
		for _, r := range cr.Rules {
			s.metrics.AddRuleApplications(string(r), rows)
		}
	}
}

// Process runs the pipeline over a project and keeps the result on it.
// Runs share a bounded number of slots; see RunLimiter.
func (s *Service) Process(ctx context.Context, projectID string, cfg *core.CleaningConfig) (*RunResult, error) {
	p, err := s.project(projectID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	sources, t, version := p.snapshot()
	res, err := s.Run(ctx, sources, t, cfg)
	if err != nil {
		return nil, err
	}

	if !p.setResult(res, version) {
		logging.WithFields(ctx, "project_id", projectID).
			Warn("project changed during run, result not kept")
	}
	return res, nil
}

// Result returns the last processed result of a project.
func (s *Service) Result(projectID string) (*RunResult, error) {
	p, err := s.project(projectID)
	if err != nil {
		return nil, err
	}
	res := p.lastResult()
	if res == nil {
		return nil, ErrNoResult
	}
	return res, nil
}

// ExportOptions resolves a delimiter name, falling back to the configured
// default when empty.
func (s *Service) ExportOptions(delimiter string) (csvio.ExportOptions, error) {
	if delimiter == "" {
		delimiter = s.cfg.Export.Delimiter
	}
	d, err := csvio.ParseDelimiter(delimiter)
	if err != nil {
		return csvio.ExportOptions{}, err
	}
	return csvio.ExportOptions{Delimiter: d}, nil
}

// Export writes the project's last result as CSV.
func (s *Service) Export(ctx context.Context, projectID string, w io.Writer, opts csvio.ExportOptions) error {
	res, err := s.Result(projectID)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := csvio.Export(w, res.Fields, res.Rows, opts); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	s.metrics.ObserveStage(metrics.StageExport, time.Since(start))
	s.metrics.AddRows(metrics.StageExport, len(res.Rows))

	logging.WithFields(ctx, "project_id", projectID).Info("result exported", "rows", len(res.Rows))
	return nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Upload.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.Upload.Timeout)
}

// ctxReader stops reading once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// IsNotFound reports whether err means a project or source does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProjectNotFound) || errors.Is(err, ErrSourceNotFound)
}
