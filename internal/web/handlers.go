package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"
	"strconv"

	"github.com/JonMunkholm/datacleaner/internal/core"
	"github.com/JonMunkholm/datacleaner/internal/core/regions"
	"github.com/JonMunkholm/datacleaner/internal/service"
)

// maxFormOverhead is allowed on top of the file size for multipart framing.
const maxFormOverhead = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListRules returns the rule names the cleaner understands.
func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"rules":          core.RuleKinds,
		"defaultFields":  service.DefaultConcepts,
		"ignoreColumn":   core.IgnoreColumn,
		"regions":        regions.Official(),
		"previewRows":    s.cfg.Export.PreviewRows,
		"maxFileSize":    s.cfg.Upload.MaxFileSize,
		"exportFileName": exportFileName,
	})
}

// handleStatus reports run slot usage, for monitoring and client backoff.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Limiter().Status())
}

type consolidateRequest struct {
	Sources  []core.Source       `json:"sources"`
	Template core.TemplateSchema `json:"template"`
}

// handleConsolidate merges inline sources without creating a project.
func (s *Server) handleConsolidate(w http.ResponseWriter, r *http.Request) {
	var req consolidateRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := service.ValidateInputs(req.Sources, req.Template.Fields); err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, core.Consolidate(req.Sources, req.Template))
}

type cleanRequest struct {
	Rows   []core.Row           `json:"rows"`
	Config *core.CleaningConfig `json:"config"`
}

type cleanResponse struct {
	core.CleaningResult
	UnknownRules []string `json:"unknownRules,omitempty"`
}

// handleClean applies rules to inline rows. Without column rules every column
// of the first row gets the default rules.
func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	var req cleanRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Rows == nil {
		req.Rows = []core.Row{}
	}

	cfg := req.Config
	if cfg == nil || len(cfg.ColumnRules) == 0 {
		var cols []string
		if len(req.Rows) > 0 {
			cols = sortedKeys(req.Rows[0])
		}
		def := service.DefaultColumnRules(cols)
		cfg = &def
	}

	writeJSON(w, http.StatusOK, cleanResponse{
		CleaningResult: core.Clean(req.Rows, *cfg),
		UnknownRules:   service.ValidateRules(*cfg),
	})
}

// decodeJSON reads a bounded JSON body. Numbers keep their text so values
// stringify exactly as sent.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return fmt.Errorf("%w: %w", service.ErrFileTooLarge, err)
		}
		return fmt.Errorf("%w: %w", errInvalidRequest, err)
	}
	return nil
}

// decodeOptionalJSON is decodeJSON that accepts an empty body.
func (s *Server) decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v any) (bool, error) {
	if r.ContentLength == 0 {
		return false, nil
	}
	err := s.decodeJSON(w, r, v)
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	return err == nil, err
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

func sortedKeys(row core.Row) []string {
	return slices.Sorted(maps.Keys(row))
}
