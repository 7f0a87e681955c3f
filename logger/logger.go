// Package logger provides the shared slog logger. Logs go to a rotating
// file, never to stdout: stdout belongs to the wire protocol, and any stray
// write there would corrupt a framed response.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tomhartley/gitbridge/paths"
)

var (
	root     *slog.Logger
	levelVar = new(slog.LevelVar)
	sink     io.WriteCloser
	mu       sync.Mutex
	initDone bool
)

// DefaultLogPath returns the default log file path.
func DefaultLogPath() (string, error) {
	dir, err := paths.LogsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "gitbridge.log"), nil
}

// SetDebug enables or disables debug level logging.
func SetDebug(enabled bool) {
	if enabled {
		levelVar.Set(slog.LevelDebug)
	} else {
		levelVar.Set(slog.LevelInfo)
	}
}

// Init initializes the logger with a custom path. Must be called before
// logging; if not called, the default path is used on first log call.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if initDone {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	initWith(path)
	root.Info("logger initialized", "path", path)
	return nil
}

// initWith wires the handler to a rotating file sink. Caller must hold mu.
func initWith(path string) {
	sink = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
	}
	handler := slog.NewTextHandler(sink, &slog.HandlerOptions{Level: levelVar})
	root = slog.New(handler)
	initDone = true
}

// ensureInit initializes the logger with default settings if not already
// initialized. Caller must hold mu.
func ensureInit() {
	if initDone {
		return
	}

	defaultPath, err := DefaultLogPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to get default log path: %v\n", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(defaultPath), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to create log directory: %v\n", err)
		return
	}

	initWith(defaultPath)
	root.Info("logger initialized", "path", defaultPath)
}

// Get returns the root logger instance.
// Use this when you don't have session context.
func Get() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()

	ensureInit()

	if root == nil {
		return slog.Default()
	}
	return root
}

// WithSession returns a logger with the session ID attached.
func WithSession(sessionID string) *slog.Logger {
	return Get().With("sessionID", sessionID)
}

// WithComponent returns a logger with the component name attached.
//
// Example:
//
//	log := logger.WithComponent("git")
//	log.Info("commit amended", "hash", hash)
//	// Output: level=INFO msg="commit amended" component=git hash=abc123
func WithComponent(component string) *slog.Logger {
	return Get().With("component", component)
}

// WithRequest returns a logger with the request correlation ID attached, so
// every line a single tool call emits can be grepped together.
func WithRequest(correlationID string) *slog.Logger {
	return Get().With("requestID", correlationID)
}

// Close closes the log sink.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if sink != nil {
		sink.Close()
		sink = nil
	}
	root = nil
}

// Reset resets the logger state, allowing reinitialization.
// This is primarily for testing purposes.
func Reset() {
	mu.Lock()
	defer mu.Unlock()

	if sink != nil {
		sink.Close()
		sink = nil
	}
	initDone = false
	root = nil
	levelVar = new(slog.LevelVar)
}
