package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Report.TopN)
	assert.Equal(t, int64(10<<20), cfg.Report.MaxUploadBytes)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "zero top n rejected",
			mutate:  func(c *Config) { c.Report.TopN = 0 },
			wantErr: true,
		},
		{
			name:    "port out of range rejected",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "unknown log level rejected",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: true,
		},
		{
			name:    "negative read timeout rejected",
			mutate:  func(c *Config) { c.Server.ReadTimeout = -time.Second },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPathsEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	paths, err := NewPaths(base)
	require.NoError(t, err)

	require.NoError(t, paths.EnsureDirectories())
	assert.DirExists(t, paths.ReportsDir)
	assert.DirExists(t, paths.LogsDir)

	// Idempotent: creating existing directories is not an error.
	require.NoError(t, paths.EnsureDirectories())

	got := paths.GetReportPath("result.csv")
	assert.Equal(t, filepath.Join(base, "reports", "result.csv"), got)
}

func TestPathsDefaultsToWorkingDirectory(t *testing.T) {
	paths, err := NewPaths("")
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, wd, paths.BaseDir)
}
