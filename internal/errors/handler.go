package errors

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// APIError is the JSON error envelope the HTTP layer returns.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string { return e.Message }

// Render implements render.Renderer.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// New creates an APIError.
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message}
}

// NewWithDetails creates an APIError carrying extra context for the caller.
func NewWithDetails(statusCode int, errorCode, message string, details any) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message, Details: details}
}

// ErrorHandler maps pipeline errors onto HTTP responses with enough context
// for the caller to correct the input.
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates an ErrorHandler.
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger.With(slog.String("component", "error_handler"))}
}

// HandleError logs err and writes the mapped APIError response.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())
	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("error", err.Error()),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	render.Render(w, r, ToAPIError(err))
}

// ToAPIError converts any pipeline error to its APIError representation.
// Unknown errors become opaque 500s.
func ToAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var ingestErr *IngestError
	if errors.As(err, &ingestErr) {
		code := "INGEST_PARSE_FAILURE"
		msg := "The uploaded file could not be parsed as a delimited table"
		if ingestErr.Cause == CauseDecode {
			code = "INGEST_DECODE_FAILURE"
			msg = "The uploaded file is neither valid UTF-8 nor EUC-KR"
		}
		return NewWithDetails(http.StatusBadRequest, code, msg, ingestErr.Error())
	}

	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		return NewWithDetails(http.StatusUnprocessableEntity, "SCHEMA_MISSING_COLUMN",
			"The export is missing a required column", map[string]string{"missing": schemaErr.Missing})
	}

	var emptyErr *EmptyDatasetError
	if errors.As(err, &emptyErr) {
		return New(http.StatusUnprocessableEntity, "EMPTY_DATASET",
			"No data rows remain after normalization")
	}

	var renderErr *RenderError
	if errors.As(err, &renderErr) {
		return NewWithDetails(http.StatusInternalServerError, "RENDER_FAILED",
			"Document export failed", map[string]string{"stage": string(renderErr.Stage)})
	}

	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return NewWithDetails(http.StatusInternalServerError, "IO_FAILED",
			"Could not write pipeline output", map[string]string{"op": ioErr.Op, "path": ioErr.Path})
	}

	return New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
}

// ErrValidation creates a field-level validation APIError.
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed",
		map[string]string{"field": field, "message": message})
}
