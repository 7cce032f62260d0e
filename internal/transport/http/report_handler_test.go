package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	stdhttp "net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rxcli/internal/render"
	"rxcli/internal/report"
	"rxcli/pkg/contracts/domain"
)

func setupTestRouter(t *testing.T) chi.Router {
	t.Helper()

	logger := slog.Default()
	handler := NewReportHandler(
		report.NewPipeline(logger),
		render.NewRenderer(logger),
		logger,
		1<<20,
		domain.DefaultTopN,
	)

	r := chi.NewRouter()
	r.Mount("/api", handler.Routes())
	r.Mount("/healthz", NewHealthHandler().Routes())
	return r
}

func buildExport(rows ...string) []byte {
	var sb strings.Builder
	sb.WriteString("약국 조제내역 다운로드\n")
	sb.WriteString("조제일,처방의사\n")
	for _, row := range rows {
		sb.WriteString(row)
		sb.WriteString("\n")
	}
	return []byte(sb.String())
}

func multipartUpload(t *testing.T, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "export.csv")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

type analyzeResponse struct {
	Status string             `json:"status"`
	RunID  string             `json:"run_id"`
	Data   domain.ReportTable `json:"data"`
}

func analyze(t *testing.T, router chi.Router, data []byte) analyzeResponse {
	t.Helper()

	body, contentType := multipartUpload(t, data)
	req := httptest.NewRequest(stdhttp.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, stdhttp.StatusCreated, rec.Code, rec.Body.String())

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestAnalyzeMultipart(t *testing.T) {
	router := setupTestRouter(t)

	resp := analyze(t, router, buildExport(
		"2025-01-02,김내과",
		"2025-01-02,김내과",
		"2025-01-02,김내과",
		"2025-01-03,박외과",
	))

	assert.Equal(t, "success", resp.Status)
	assert.NotEmpty(t, resp.RunID)
	require.Len(t, resp.Data.Rows, 2)
	assert.Equal(t, domain.SharedRow{Prescriber: "김내과", Count: 3, Share: 75}, resp.Data.Rows[0])
	assert.Equal(t, 4, resp.Data.TotalCount)
}

func TestAnalyzeRawBody(t *testing.T) {
	router := setupTestRouter(t)

	req := httptest.NewRequest(stdhttp.MethodPost, "/api/analyze",
		bytes.NewReader(buildExport("2025-01-02,김내과")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, stdhttp.StatusCreated, rec.Code, rec.Body.String())
}

func TestAnalyzeMissingPrescriberColumn(t *testing.T) {
	router := setupTestRouter(t)

	data := []byte("약국 조제내역 다운로드\n조제일,환자명\n2025-01-02,홍길동\n")
	body, contentType := multipartUpload(t, data)
	req := httptest.NewRequest(stdhttp.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "SCHEMA_MISSING_COLUMN")
}

func TestAnalyzeInvalidTopN(t *testing.T) {
	router := setupTestRouter(t)

	body, contentType := multipartUpload(t, buildExport("2025-01-02,김내과"))
	req := httptest.NewRequest(stdhttp.MethodPost, "/api/analyze?top_n=0", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
}

func TestAnalyzeEmptyBody(t *testing.T) {
	router := setupTestRouter(t)

	req := httptest.NewRequest(stdhttp.MethodPost, "/api/analyze", bytes.NewReader(nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
}

func TestChartsForRun(t *testing.T) {
	router := setupTestRouter(t)
	resp := analyze(t, router, buildExport(
		"2025-01-02,김내과",
		"2025-01-02,김내과",
		"2025-01-03,박외과",
	))

	req := httptest.NewRequest(stdhttp.MethodGet, "/api/runs/"+resp.RunID+"/charts", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())

	var charts struct {
		Bar domain.BarSpec `json:"bar"`
		Pie domain.PieSpec `json:"pie"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &charts))
	assert.Len(t, charts.Bar.Bars, 2)
	assert.Len(t, charts.Pie.Slices, 2)
	assert.InDelta(t, 0.3, charts.Pie.InnerRadiusRate, 1e-9)
}

func TestDocumentForRun(t *testing.T) {
	router := setupTestRouter(t)
	resp := analyze(t, router, buildExport(
		"2025-01-02,김내과",
		"2025-01-02,김내과",
		"2025-01-03,박외과",
	))

	req := httptest.NewRequest(stdhttp.MethodGet, "/api/runs/"+resp.RunID+"/document", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}

func TestSaveForRun(t *testing.T) {
	router := setupTestRouter(t)
	resp := analyze(t, router, buildExport(
		"2025-01-02,김내과",
		"2025-01-03,박외과",
	))

	path := filepath.Join(t.TempDir(), "shares.csv")
	payload, err := json.Marshal(map[string]string{"path": path})
	require.NoError(t, err)

	req := httptest.NewRequest(stdhttp.MethodPost, "/api/runs/"+resp.RunID+"/save", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	assert.FileExists(t, path)
}

func TestSaveRequiresPath(t *testing.T) {
	router := setupTestRouter(t)
	resp := analyze(t, router, buildExport("2025-01-02,김내과"))

	req := httptest.NewRequest(stdhttp.MethodPost, "/api/runs/"+resp.RunID+"/save",
		strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
}

func TestUnknownRun(t *testing.T) {
	router := setupTestRouter(t)

	req := httptest.NewRequest(stdhttp.MethodGet, "/api/runs/does-not-exist/charts", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "RUN_NOT_FOUND")
}

func TestRunCacheEviction(t *testing.T) {
	router := setupTestRouter(t)

	first := analyze(t, router, buildExport("2025-01-02,김내과"))
	for i := 0; i < maxHeldRuns; i++ {
		analyze(t, router, buildExport("2025-01-02,김내과"))
	}

	req := httptest.NewRequest(stdhttp.MethodGet, "/api/runs/"+first.RunID+"/charts", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	router := setupTestRouter(t)

	req := httptest.NewRequest(stdhttp.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)

	req = httptest.NewRequest(stdhttp.MethodGet, "/healthz/version", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version"`)
}
