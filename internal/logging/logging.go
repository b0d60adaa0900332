// Package logging provides structured logging for the workbench. The
// TUI owns stdout, so log output goes to a file under the data dir.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Logger is the logging surface injected into services. Args follow
// slog conventions: alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// FileLogger writes text-format slog records to a log file.
type FileLogger struct {
	logger *slog.Logger
	closer io.Closer
}

// NewFileLogger opens (creating if needed) the log file at path and
// returns a logger appending to it.
func NewFileLogger(path string) (*FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return &FileLogger{
		logger: slog.New(slog.NewTextHandler(f, nil)),
		closer: f,
	}, nil
}

// NewWriterLogger returns a logger writing to w. Useful for command
// output and tests.
func NewWriterLogger(w io.Writer) *FileLogger {
	return &FileLogger{logger: slog.New(slog.NewTextHandler(w, nil))}
}

func (l *FileLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *FileLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *FileLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *FileLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

// Close releases the underlying log file, if any.
func (l *FileLogger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// NopLogger discards all output. Use in tests.
type NopLogger struct{}

func NewNop() *NopLogger { return &NopLogger{} }

func (*NopLogger) Debug(string, ...any) {}
func (*NopLogger) Info(string, ...any)  {}
func (*NopLogger) Warn(string, ...any)  {}
func (*NopLogger) Error(string, ...any) {}
