package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// setupTestDir points the package at a temporary log directory and resets
// the process-wide state for the duration of the test.
func setupTestDir(t *testing.T) {
	t.Helper()

	tempDir := t.TempDir()

	origLogDir := logDir
	origInitErr := initErr
	origSessionID := sessionID

	logDir = tempDir
	initErr = nil
	initOnce = sync.Once{}
	sessionID = ""
	sessionIDOnce = sync.Once{}

	t.Cleanup(func() {
		logDir = origLogDir
		initErr = origInitErr
		initOnce = sync.Once{}
		sessionID = origSessionID
		sessionIDOnce = sync.Once{}
	})
}

func TestNewLogger(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("store")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	if logger.SessionID() == "" {
		t.Error("Expected non-empty session ID")
	}
	if _, err := os.Stat(logger.LogPath()); err != nil {
		t.Errorf("Log file does not exist at %s: %v", logger.LogPath(), err)
	}
	if !strings.HasSuffix(filepath.Base(logger.LogPath()), "-trainer.log") {
		t.Errorf("Unexpected log file name %q", filepath.Base(logger.LogPath()))
	}
}

func TestLoggerLevelsAndComponent(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("pipeline")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	logger.Debugf("debug %d", 1)
	logger.Infof("info %s", "two")
	logger.Warnf("warn")
	logger.Errorf("error")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	content, err := os.ReadFile(logger.LogPath())
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	logContent := string(content)

	for _, pattern := range []string{
		`level=DEBUG msg="debug 1"`,
		`level=INFO msg="info two"`,
		`level=WARN msg=warn`,
		`level=ERROR msg=error`,
		"component=pipeline",
		"session=" + logger.SessionID(),
	} {
		if !strings.Contains(logContent, pattern) {
			t.Errorf("Log content missing %q\nContent:\n%s", pattern, logContent)
		}
	}
}

func TestComponentsShareSessionFile(t *testing.T) {
	setupTestDir(t)

	a, err := NewLogger("a")
	if err != nil {
		t.Fatalf("Failed to create logger a: %v", err)
	}
	defer a.Close()
	b, err := NewLogger("b")
	if err != nil {
		t.Fatalf("Failed to create logger b: %v", err)
	}
	defer b.Close()

	if a.SessionID() != b.SessionID() || a.LogPath() != b.LogPath() {
		t.Fatalf("Expected shared session file, got %q and %q", a.LogPath(), b.LogPath())
	}
}

func TestWithAddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := New("store", &buf).With("identity", "guest")
	logger.Infof("appended")

	if !strings.Contains(buf.String(), "identity=guest") {
		t.Errorf("Expected identity attribute, got %q", buf.String())
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Closing a child logger should be a no-op, got %v", err)
	}
}

func TestOrDiscard(t *testing.T) {
	if OrDiscard(nil) == nil {
		t.Fatal("Expected a discarding logger for nil")
	}
	l := Discard()
	if OrDiscard(l) != l {
		t.Error("Expected OrDiscard to return the given logger")
	}
}

func TestLoggerCloseTwice(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("First close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Second close failed: %v", err)
	}
}

func TestGetLogDirectory(t *testing.T) {
	setupTestDir(t)

	dir, err := GetLogDirectory()
	if err != nil {
		t.Fatalf("Failed to get log directory: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("Log directory does not exist or is not a directory: %s", dir)
	}
}
