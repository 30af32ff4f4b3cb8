package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/datacleaner/internal/core"
	"github.com/JonMunkholm/datacleaner/internal/csvio"
	"github.com/JonMunkholm/datacleaner/internal/logging"
	"github.com/JonMunkholm/datacleaner/internal/service"
)

const exportFileName = csvio.DefaultExportName

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, s.service.CreateProject(r.Context()))
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.GetProject(chi.URLParam(r, "projectID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteProject(chi.URLParam(r, "projectID")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAddSource parses a multipart "file" field into the project. An
// optional "encoding" field overrides the configured charset.
func (s *Server) handleAddSource(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+maxFormOverhead)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respondError(w, r, fmt.Errorf("%w: %w", service.ErrFileTooLarge, err))
			return
		}
		respondErrorStatus(w, r, fmt.Errorf("%w: %w", errInvalidRequest, err), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondErrorStatus(w, r, service.ErrNoFile, http.StatusBadRequest)
		return
	}
	defer file.Close()

	info, err := s.service.AddSource(r.Context(), projectID, service.Upload{
		Name:     header.Filename,
		Reader:   file,
		Size:     header.Size,
		Encoding: r.FormValue("encoding"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, info)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := s.service.Template(chi.URLParam(r, "projectID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type templateRequest struct {
	Concepts []string                     `json:"concepts"`
	Mappings map[string]core.FieldMapping `json:"mappings"`
}

// handleSetTemplate replaces the concepts (when "concepts" is sent) and the
// mappings of the listed sources.
func (s *Server) handleSetTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	t, err := s.service.SetTemplate(chi.URLParam(r, "projectID"), req.Concepts, req.Mappings)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type processResponse struct {
	Result  *service.RunResult    `json:"result"`
	Preview service.PreviewResult `json:"preview"`
}

// handleProcess consolidates and cleans the project. The body may carry a
// {"columnRules": [...]} config; without one the default rules apply.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var cfg core.CleaningConfig
	sent, err := s.decodeOptionalJSON(w, r, &cfg)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var rules *core.CleaningConfig
	if sent {
		rules = &cfg
	}

	res, err := s.service.Process(r.Context(), chi.URLParam(r, "projectID"), rules)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, processResponse{
		Result:  res,
		Preview: service.Preview(res, parseIntParam(r, "limit", s.cfg.Export.PreviewRows)),
	})
}

// handlePreview returns the head of the last processed result.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.Result(chi.URLParam(r, "projectID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, service.Preview(res, parseIntParam(r, "limit", s.cfg.Export.PreviewRows)))
}

// handleExport streams the last result as a CSV attachment.
// The delimiter query parameter accepts a character or its name.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	opts, err := s.service.ExportOptions(r.URL.Query().Get("delimiter"))
	if err != nil {
		respondErrorStatus(w, r, fmt.Errorf("%w: %w", errInvalidRequest, err), http.StatusBadRequest)
		return
	}

	// Fail before headers are written.
	if _, err := s.service.Result(projectID); err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, exportFileName))

	if err := s.service.Export(r.Context(), projectID, w, opts); err != nil {
		// Headers are already sent.
		logging.FromContext(r.Context()).Error("export failed", "project_id", projectID, "error", err)
	}
}
