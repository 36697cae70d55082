package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Logger writes component-scoped records for one trainer process.
// All components of a process share a session file in ~/.trainer/logs/.
//
// Records are rendered by slog's text handler with the component and session
// attached. Every level is written; there is no filtering.
type Logger struct {
	component string
	sessionID string
	logPath   string
	file      *os.File // nil for fallback, discard, and child loggers
	out       io.Writer
	slog      *slog.Logger
	closeOnce sync.Once
}

var (
	sessionID     string
	sessionIDOnce sync.Once

	// logDir is the directory where session log files are written.
	logDir   string
	initOnce sync.Once
	initErr  error
)

func getSessionID() string {
	sessionIDOnce.Do(func() {
		sessionID = uuid.New().String()
	})
	return sessionID
}

func initLogDirectory() error {
	initOnce.Do(func() {
		if logDir != "" {
			initErr = os.MkdirAll(logDir, 0o750)
			return
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			initErr = fmt.Errorf("failed to get home directory: %w", err)
			return
		}
		logDir = filepath.Join(homeDir, ".trainer", "logs")
		if err := os.MkdirAll(logDir, 0o750); err != nil {
			initErr = fmt.Errorf("failed to create log directory: %w", err)
		}
	})
	return initErr
}

// NewLogger creates a logger for component writing to
// ~/.trainer/logs/<session-id>-trainer.log.
//
// When the directory or file cannot be opened it returns a logger writing to
// stderr together with the error, so callers can warn and carry on.
func NewLogger(component string) (*Logger, error) {
	if err := initLogDirectory(); err != nil {
		return newFallbackLogger(component, err), err
	}

	sessID := getSessionID()
	logPath := filepath.Join(logDir, fmt.Sprintf("%s-trainer.log", sessID))

	// Components open the same file in append mode.
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		err = fmt.Errorf("failed to open log file: %w", err)
		return newFallbackLogger(component, err), err
	}

	l := newLogger(component, sessID, file)
	l.file = file
	l.logPath = logPath
	return l, nil
}

// New creates a logger writing to w. It does not own w.
func New(component string, w io.Writer) *Logger {
	return newLogger(component, getSessionID(), w)
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return newLogger("discard", "", io.Discard)
}

func newFallbackLogger(component string, err error) *Logger {
	l := newLogger(component, getSessionID(), os.Stderr)
	l.Warnf("failed to initialize file logging, falling back to stderr: %v", err)
	return l
}

func newLogger(component, sessID string, w io.Writer) *Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	return &Logger{
		component: component,
		sessionID: sessID,
		out:       w,
		slog:      slog.New(h).With("component", component, "session", sessID),
	}
}

// Debugf logs a debug-level message.
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.slog.Debug(fmt.Sprintf(format, v...))
}

// Infof logs an info-level message.
func (l *Logger) Infof(format string, v ...interface{}) {
	l.slog.Info(fmt.Sprintf(format, v...))
}

// Warnf logs a warning-level message.
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.slog.Warn(fmt.Sprintf(format, v...))
}

// Errorf logs an error-level message.
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.slog.Error(fmt.Sprintf(format, v...))
}

// With returns a child logger that adds the key-value pairs to every record.
// The child shares the parent's output; closing it is a no-op.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		component: l.component,
		sessionID: l.sessionID,
		logPath:   l.logPath,
		out:       l.out,
		slog:      l.slog.With(args...),
	}
}

// Writer returns the underlying output.
func (l *Logger) Writer() io.Writer {
	return l.out
}

// SessionID returns the session the logger belongs to.
func (l *Logger) SessionID() string {
	return l.sessionID
}

// LogPath returns the log file path, or "" when not writing to a file.
func (l *Logger) LogPath() string {
	return l.logPath
}

// Close closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *Logger) *Logger {
	if l == nil {
		return Discard()
	}
	return l
}

// GetLogDirectory returns the directory session logs are written to.
func GetLogDirectory() (string, error) {
	if err := initLogDirectory(); err != nil {
		return "", err
	}
	return logDir, nil
}
