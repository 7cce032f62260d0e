package app

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) *Application {
	t.Helper()
	t.Setenv("RX_PATHS_BASE_DIR", t.TempDir())
	t.Setenv("RX_LOGGING_OUTPUT", "console")

	a, err := NewApplication()
	require.NoError(t, err)
	return a
}

func TestNewApplication(t *testing.T) {
	a := setupTestApp(t)

	assert.NotNil(t, a.Router)
	assert.NotNil(t, a.Server)
	assert.Equal(t, 8080, a.Config.Server.Port)
	assert.DirExists(t, a.Paths.ReportsDir)
}

func TestRouterEndpoints(t *testing.T) {
	a := setupTestApp(t)

	tests := []struct {
		name string
		path string
		want int
	}{
		{name: "health", path: "/healthz", want: 200},
		{name: "version", path: "/healthz/version", want: 200},
		{name: "metrics", path: "/metrics", want: 200},
		{name: "unknown run", path: "/api/runs/nope/charts", want: 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			rec := httptest.NewRecorder()
			a.Router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
