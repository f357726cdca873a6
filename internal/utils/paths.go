// Package utils contains the logger and filesystem path helpers used
// throughout cpubars.
package utils

import (
	"os"
	"path/filepath"
)

// Paths resolves filesystem locations used by cpubars.
type Paths struct {
	RootPath string `json:"root_path"`
}

// NewPaths constructs Paths rooted at the specified directory.
func NewPaths(rootPath string) *Paths {
	return &Paths{RootPath: rootPath}
}

// DefaultPaths roots Paths next to the running executable, or under the
// temp directory when the executable cannot be located.
func DefaultPaths() *Paths {
	exe, err := os.Executable()
	if err == nil {
		if resolved, rerr := filepath.EvalSymlinks(exe); rerr == nil && resolved != "" {
			exe = resolved
		}
		return NewPaths(filepath.Dir(exe))
	}
	return NewPaths(filepath.Join(os.TempDir(), "cpubars"))
}

// LogsDir returns the logs directory.
func (p *Paths) LogsDir() string {
	return filepath.Join(p.RootPath, "logs")
}

// LogFile returns the main cpubars log file path.
func (p *Paths) LogFile() string {
	return filepath.Join(p.LogsDir(), "cpubars.log")
}

// ConfigFile returns the default configuration file path in the working
// directory.
func ConfigFile() string {
	wd, err := os.Getwd()
	if err != nil {
		return "cpubars.config"
	}
	return filepath.Join(wd, "cpubars.config")
}
