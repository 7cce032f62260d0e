package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths is the single source of truth for the filesystem locations the
// application writes to.
type Paths struct {
	BaseDir    string
	ReportsDir string
	LogsDir    string
}

// NewPaths resolves the application paths under baseDir. An empty baseDir
// falls back to the current working directory.
func NewPaths(baseDir string) (*Paths, error) {
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve working directory: %w", err)
		}
		baseDir = wd
	}

	return &Paths{
		BaseDir:    baseDir,
		ReportsDir: filepath.Join(baseDir, "reports"),
		LogsDir:    filepath.Join(baseDir, "logs"),
	}, nil
}

// EnsureDirectories creates every managed directory. Creating a directory
// that already exists is not an error.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetReportPath returns the full path for a report file.
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetLogPath returns the full path for a log file.
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}
