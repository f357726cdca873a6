package utils

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoggerWritesTimestampedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "test.log")
	logger := NewLogger(path)

	logger.Write("feed connected")
	logger.Writef("rendered %d bars", 4)
	logger.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	got := string(data)
	if !strings.Contains(got, ": feed connected\n") {
		t.Fatalf("expected first message in log, got %q", got)
	}
	if !strings.Contains(got, ": rendered 4 bars\n") {
		t.Fatalf("expected formatted message in log, got %q", got)
	}
}

// capture swaps f for a pipe while fn runs and returns what was written.
func capture(t *testing.T, f **os.File, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	orig := *f
	*f = w
	fn()
	*f = orig
	w.Close()
	data, _ := io.ReadAll(r)
	r.Close()
	return string(data)
}

func TestLoggerFallsBackToStderr(t *testing.T) {
	// A directory cannot be opened for writing.
	logger := NewLogger(t.TempDir())
	defer logger.Close()

	var stdout string
	stderr := capture(t, &os.Stderr, func() {
		stdout = capture(t, &os.Stdout, func() {
			logger.Write("viewer started")
		})
	})
	if stdout != "" {
		t.Fatalf("expected nothing on stdout, got %q", stdout)
	}
	if !strings.Contains(stderr, ": viewer started\n") {
		t.Fatalf("expected message on stderr, got %q", stderr)
	}
}

func TestPathsLayout(t *testing.T) {
	p := NewPaths("/opt/cpubars")
	if got, want := p.LogFile(), filepath.Join("/opt/cpubars", "logs", "cpubars.log"); got != want {
		t.Fatalf("LogFile() = %q, want %q", got, want)
	}
}
