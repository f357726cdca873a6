package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05"

// Logger writes timestamped lines to a log file.
type Logger struct {
	mu        sync.Mutex
	writeFile *os.File
}

// writeToDefaultLog attempts to write a single timestamped line to the default
// cpubars log. If it fails, it falls back to stderr.
func writeToDefaultLog(message string) {
	path := DefaultPaths().LogFile()
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", time.Now().Format(timestampLayout), message)
		return
	}
	defer f.Close()
	_, _ = f.WriteString(fmt.Sprintf("%s: %s\n", time.Now().Format(timestampLayout), message))
}

// NewLogger opens the given log file for appending. If the file cannot be
// opened, logs are written to stderr so they never mix with the bars on
// stdout.
func NewLogger(logFile string) *Logger {
	logger := &Logger{}
	if logFile == "" {
		logFile = DefaultPaths().LogFile()
	}

	_ = os.MkdirAll(filepath.Dir(logFile), 0o755)

	var err error
	logger.writeFile, err = os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		writeToDefaultLog(fmt.Sprintf("Error opening log file (%s): %v", logFile, err))
	}
	return logger
}

// Write appends a timestamped message to the log (or stderr when no file).
func (l *Logger) Write(message string) {
	logMessage := fmt.Sprintf("%s: %s\n", time.Now().Format(timestampLayout), message)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writeFile != nil {
		l.writeFile.WriteString(logMessage)
		l.writeFile.Sync()
	} else {
		fmt.Fprint(os.Stderr, logMessage)
	}
}

// Writef formats and appends a message.
func (l *Logger) Writef(format string, args ...interface{}) {
	l.Write(fmt.Sprintf(format, args...))
}

// Close flushes and closes underlying file handles.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writeFile != nil {
		l.writeFile.Close()
	}
}

// Logf writes to l, or to the default log when l is nil.
func Logf(l *Logger, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if l != nil {
		l.Write(msg)
		return
	}
	writeToDefaultLog(msg)
}
