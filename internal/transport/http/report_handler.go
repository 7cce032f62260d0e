// Package http exposes the aggregation pipeline to the UI layer. Handlers
// only invoke the pipeline and shape its outputs; all logic lives below.
package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	apierrors "rxcli/internal/errors"
	"rxcli/internal/exporter"
	rxrender "rxcli/internal/render"
	"rxcli/internal/report"
	"rxcli/pkg/contracts/domain"
)

// maxHeldRuns caps the short-lived session cache of computed tables.
const maxHeldRuns = 16

type contextKey string

const runTableKey contextKey = "run_table"

// ReportHandler handles upload, chart, export and save requests.
type ReportHandler struct {
	pipeline       *report.Pipeline
	renderer       *rxrender.Renderer
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
	topN           int

	// Session cache: tables from recent runs, so chart and document
	// requests can follow an upload without re-ingesting. The pipeline
	// itself stays stateless.
	mu    sync.Mutex
	runs  map[string]domain.ReportTable
	order []string
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(pipeline *report.Pipeline, renderer *rxrender.Renderer, logger *slog.Logger, maxUploadBytes int64, topN int) *ReportHandler {
	return &ReportHandler{
		pipeline:       pipeline,
		renderer:       renderer,
		logger:         logger.With(slog.String("component", "report_handler")),
		errorHandler:   apierrors.NewErrorHandler(logger),
		maxUploadBytes: maxUploadBytes,
		topN:           topN,
		runs:           make(map[string]domain.ReportTable),
	}
}

// Routes returns the report routes.
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/analyze", h.Analyze)

	r.Route("/runs/{runID}", func(r chi.Router) {
		r.Use(h.RunCtx)
		r.Get("/charts", h.Charts)
		r.Get("/document", h.Document)
		r.Post("/save", h.Save)
	})

	return r
}

// RunCtx loads the run's table into the request context.
func (h *ReportHandler) RunCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		runID := chi.URLParam(r, "runID")

		h.mu.Lock()
		table, ok := h.runs[runID]
		h.mu.Unlock()
		if !ok {
			h.errorHandler.HandleError(w, r, apierrors.New(
				http.StatusNotFound, "RUN_NOT_FOUND", "No analysis run with this ID"))
			return
		}

		ctx := context.WithValue(r.Context(), runTableKey, table)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Analyze handles POST /analyze: ingests the uploaded export and returns
// the aggregated table together with a run ID for follow-up requests.
func (h *ReportHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	reqID := chimiddleware.GetReqID(r.Context())

	topN := h.topN
	if raw := r.URL.Query().Get("top_n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("top_n", "must be an integer between 1 and 100"))
			return
		}
		topN = parsed
	}

	data, err := h.readUpload(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	table, err := h.pipeline.IngestAndAggregate(r.Context(), data, domain.AnalyzeOptions{TopN: topN})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	runID := uuid.NewString()
	h.holdRun(runID, table)

	h.logger.InfoContext(r.Context(), "analysis run completed",
		slog.String("request_id", reqID),
		slog.String("run_id", runID),
		slog.Int("rows", len(table.Rows)))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]any{
		"status": "success",
		"run_id": runID,
		"data":   table,
	})
}

// Charts handles GET /runs/{runID}/charts.
func (h *ReportHandler) Charts(w http.ResponseWriter, r *http.Request) {
	table := r.Context().Value(runTableKey).(domain.ReportTable)

	bar, pie := rxrender.Charts(table)
	render.JSON(w, r, map[string]any{
		"status": "success",
		"bar":    bar,
		"pie":    pie,
	})
}

// Document handles GET /runs/{runID}/document: the two-page PDF report.
func (h *ReportHandler) Document(w http.ResponseWriter, r *http.Request) {
	table := r.Context().Value(runTableKey).(domain.ReportTable)

	bar, pie := rxrender.Charts(table)
	doc, err := h.renderer.ExportDocument(r.Context(), bar, pie)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="prescriber-share.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

// saveRequest is the body of POST /runs/{runID}/save.
type saveRequest struct {
	Path string `json:"path"`
}

// Save handles POST /runs/{runID}/save: persists the table to the caller's
// path as CSV or xlsx by extension.
func (h *ReportHandler) Save(w http.ResponseWriter, r *http.Request) {
	table := r.Context().Value(runTableKey).(domain.ReportTable)

	var req saveRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil || req.Path == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("path", "a destination path is required"))
		return
	}

	if err := exporter.SaveTable(table, req.Path); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]any{
		"status": "success",
		"path":   req.Path,
	})
}

// readUpload extracts the export bytes from a multipart "file" field, or
// from the raw request body for plain uploads. Size is bounded either way.
func (h *ReportHandler) readUpload(r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err == nil {
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, apierrors.ErrValidation("file", "multipart upload is missing the file field")
		}
		defer file.Close()
		return io.ReadAll(file)
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, apierrors.New(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Upload exceeds the size limit")
	}
	if len(data) == 0 {
		return nil, apierrors.ErrValidation("body", "an export file is required")
	}
	return data, nil
}

// holdRun stores the run's table, evicting the oldest beyond maxHeldRuns.
func (h *ReportHandler) holdRun(runID string, table domain.ReportTable) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.runs[runID] = table
	h.order = append(h.order, runID)
	for len(h.order) > maxHeldRuns {
		delete(h.runs, h.order[0])
		h.order = h.order[1:]
	}
}
