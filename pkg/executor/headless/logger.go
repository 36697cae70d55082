package headless

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// LogLevel represents the console verbosity level
type LogLevel int

const (
	// LogLevelQuiet shows only errors, warnings and the plan itself
	LogLevelQuiet LogLevel = iota
	// LogLevelNormal shows progress and the final summary (default)
	LogLevelNormal
	// LogLevelVerbose also shows the prompt and store details
	LogLevelVerbose
)

// Logger writes progress for a headless run to the console. The plan text
// itself goes to the executor's output writer, never through the Logger.
type Logger struct {
	level  LogLevel
	writer io.Writer
	color  bool
}

// NewLogger creates a console logger writing to stderr with colors.
func NewLogger(level LogLevel) *Logger {
	return &Logger{level: level, writer: os.Stderr, color: true}
}

// NewPlainLogger creates a console logger without ANSI colors.
func NewPlainLogger(level LogLevel, w io.Writer) *Logger {
	return &Logger{level: level, writer: w}
}

const (
	colorReset     = "\033[0m"
	colorSalmon    = "\033[38;5;217m" // Salmon pink #FFB3BA
	colorYellow    = "\033[33m"
	colorGray      = "\033[90m"
	colorBoldGreen = "\033[1;32m"
	colorBoldRed   = "\033[1;31m"
	colorBoldWhite = "\033[1;37m"
)

func (l *Logger) printf(color, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if l.color {
		fmt.Fprintf(l.writer, "%s%s%s\n", color, msg, colorReset)
		return
	}
	fmt.Fprintln(l.writer, msg)
}

// Header prints a prominent header message
func (l *Logger) Header(message string) {
	if l.level >= LogLevelNormal {
		rule := strings.Repeat("=", 60)
		l.printf(colorBoldWhite, "%s\n  %s\n%s", rule, message, rule)
	}
}

// Successf prints a success message with checkmark
func (l *Logger) Successf(format string, args ...interface{}) {
	if l.level >= LogLevelNormal {
		l.printf(colorBoldGreen, "✓ "+format, args...)
	}
}

// Infof prints an informational message
func (l *Logger) Infof(format string, args ...interface{}) {
	if l.level >= LogLevelNormal {
		l.printf(colorSalmon, format, args...)
	}
}

// Warningf prints a warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.printf(colorYellow, "⚠ Warning: "+format, args...)
}

// Errorf prints an error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.printf(colorBoldRed, "✗ Error: "+format, args...)
}

// Verbosef prints detailed information (only in verbose mode)
func (l *Logger) Verbosef(format string, args ...interface{}) {
	if l.level >= LogLevelVerbose {
		l.printf(colorGray, "→ "+format, args...)
	}
}

// Summary prints the outcome of a run.
func (l *Logger) Summary(summary *ExecutionSummary) {
	if l.level < LogLevelNormal {
		return
	}
	l.printf(colorBoldWhite, "%s", strings.Repeat("=", 60))
	l.printf(colorBoldWhite, "  Status: %s", summary.Status)
	if summary.Identity != "" {
		fmt.Fprintf(l.writer, "  User: %s\n", summary.Identity)
	}
	fmt.Fprintf(l.writer, "  Duration: %s\n", summary.Duration.Round(10*time.Millisecond))
	if summary.Record != nil {
		fmt.Fprintf(l.writer, "  Plan: %s\n", summary.Record.Label())
		fmt.Fprintf(l.writer, "  Saved: %t\n", summary.Saved)
	}
	if summary.Error != "" {
		l.printf(colorBoldRed, "  Error: %s", summary.Error)
	}
	l.printf(colorBoldWhite, "%s", strings.Repeat("=", 60))
}

// parseLogLevel converts a string log level to LogLevel type
func parseLogLevel(level string) (LogLevel, bool) {
	switch level {
	case "quiet":
		return LogLevelQuiet, true
	case "normal", "":
		return LogLevelNormal, true
	case "verbose":
		return LogLevelVerbose, true
	default:
		return LogLevelNormal, false
	}
}

// ParseLogLevel converts a verbosity name, defaulting to LogLevelNormal.
func ParseLogLevel(level string) LogLevel {
	l, _ := parseLogLevel(level)
	return l
}
