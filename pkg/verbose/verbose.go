// Package verbose provides the application logger.
//
// It keeps a single logrus logger tagged with a component field. Warnings and
// errors are always written; debug output appears once Enable is called (the
// --verbose flag) or when the configured level asks for it.
package verbose

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// EnvLogLevel overrides the configured log level when set.
const EnvLogLevel = "APPUPDATE_LOG_LEVEL"

const component = "appupdate"

var (
	mu      sync.RWMutex
	enabled bool
	base    = newLogger(os.Stderr)
	entry   = base.WithField("component", component)
)

// newLogger builds a logger writing to w with the default warn level.
func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(newTextFormatter(w))
	return l
}

// Configure applies the logging section of the configuration.
//
// It performs the following operations:
//   - Parses level (falls back to warn on an unknown value)
//   - Lets the APPUPDATE_LOG_LEVEL environment variable override the level
//   - Selects the JSON formatter when format is "json", otherwise the text formatter
//   - Keeps debug output on if Enable was already called
//
// Parameters:
//   - level: Level name such as "debug", "info", "warn"
//   - format: "text" or "json"
func Configure(level, format string) {
	mu.Lock()
	defer mu.Unlock()

	if env := strings.TrimSpace(os.Getenv(EnvLogLevel)); env != "" {
		level = env
	}
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.WarnLevel
	}
	if enabled && lvl < logrus.DebugLevel {
		lvl = logrus.DebugLevel
	}
	base.SetLevel(lvl)

	if strings.EqualFold(strings.TrimSpace(format), "json") {
		base.SetFormatter(&logrus.JSONFormatter{})
	} else {
		base.SetFormatter(newTextFormatter(base.Out))
	}
}

// Enable turns on debug logging.
func Enable() {
	mu.Lock()
	defer mu.Unlock()
	enabled = true
	if base.GetLevel() < logrus.DebugLevel {
		base.SetLevel(logrus.DebugLevel)
	}
}

// Disable turns off debug logging and restores the warn level.
func Disable() {
	mu.Lock()
	defer mu.Unlock()
	enabled = false
	base.SetLevel(logrus.WarnLevel)
}

// IsEnabled returns whether debug logging is currently enabled.
//
// Returns:
//   - bool: true if Enable was called or the configured level is debug or lower
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled || base.IsLevelEnabled(logrus.DebugLevel)
}

// SetWriter redirects log output. A nil writer is ignored.
//
// Parameters:
//   - w: Destination for log lines
//
// Returns:
//   - func(): Restores the previous writer
func SetWriter(w io.Writer) func() {
	mu.Lock()
	defer mu.Unlock()
	previous := base.Out
	if w != nil {
		base.SetOutput(w)
		if _, ok := base.Formatter.(*textFormatter); ok {
			base.SetFormatter(newTextFormatter(w))
		}
	}
	return func() {
		mu.Lock()
		defer mu.Unlock()
		base.SetOutput(previous)
		if _, ok := base.Formatter.(*textFormatter); ok {
			base.SetFormatter(newTextFormatter(previous))
		}
	}
}

// Logger returns the component logger for callers that want structured fields.
func Logger() *logrus.Entry {
	return entry
}

// Printf writes a debug message. A trailing newline in format is trimmed.
func Printf(format string, args ...any) {
	entry.Debugf(strings.TrimSuffix(format, "\n"), args...)
}

// Info writes an informational message.
func Info(msg string) {
	entry.Info(msg)
}

// Infof writes a formatted informational message.
func Infof(format string, args ...any) {
	entry.Infof(format, args...)
}

// Debugf writes a formatted debug message.
func Debugf(format string, args ...any) {
	entry.Debugf(format, args...)
}

// Tracef writes a formatted trace message, shown only at trace level.
func Tracef(format string, args ...any) {
	entry.Tracef(format, args...)
}

// Warnf writes a formatted warning. A trailing newline in format is trimmed.
func Warnf(format string, args ...any) {
	entry.Warnf(strings.TrimSuffix(format, "\n"), args...)
}

// Errorf writes a formatted error message.
func Errorf(format string, args ...any) {
	entry.Errorf(format, args...)
}

// CommandExec logs an external command about to run.
//
// Parameters:
//   - name: Executable name
//   - args: Arguments passed to the executable
func CommandExec(name string, args []string) {
	entry.WithField("args", strings.Join(args, " ")).Debugf("Executing: %s", name)
}

// CommandResult logs the outcome of an external command.
//
// Output longer than five lines is shortened to its first three lines
// followed by a count of the omitted ones.
//
// Parameters:
//   - cmd: Command line that ran
//   - exitCode: Process exit code (-1 when the process never exited normally)
//   - output: Combined output of the command
func CommandResult(cmd string, exitCode int, output string) {
	if !IsEnabled() {
		return
	}
	e := entry.WithField("exit", exitCode)
	if exitCode == 0 {
		e.Debugf("Command succeeded: %s", truncate(cmd, 60))
	} else {
		e.Debugf("Command failed: %s", truncate(cmd, 60))
	}

	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) > 5 {
		for _, line := range lines[:3] {
			entry.Debugf("  | %s", truncate(line, 100))
		}
		entry.Debugf("  | ... (%d more lines)", len(lines)-3)
		return
	}
	for _, line := range lines {
		entry.Debugf("  | %s", truncate(line, 100))
	}
}

// ConfigLoaded logs which configuration file was loaded.
func ConfigLoaded(path string) {
	entry.WithField("path", path).Debug("Config loaded")
}

// RecordFiltered logs that a package record was left out of a batch.
//
// Parameters:
//   - name: Record name (may be empty for malformed records)
//   - reason: Why the record was filtered
func RecordFiltered(name, reason string) {
	entry.WithField("reason", reason).Debugf("Package '%s' filtered", name)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
