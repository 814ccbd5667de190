package verbose

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureLogs redirects the logger into a buffer for the duration of a test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	restore := SetWriter(&buf)
	t.Cleanup(func() {
		restore()
		Disable()
		Configure("warn", "text")
	})
	return &buf
}

// TestDebugHiddenUntilEnabled tests that debug output depends on Enable.
//
// It verifies:
//   - Debug messages are dropped at the default level
//   - Debug messages appear after Enable with the [DEBUG] tag
func TestDebugHiddenUntilEnabled(t *testing.T) {
	buf := captureLogs(t)

	Printf("hidden %d\n", 1)
	assert.Empty(t, buf.String())
	assert.False(t, IsEnabled())

	Enable()
	Printf("shown %d\n", 2)
	assert.True(t, IsEnabled())
	assert.Contains(t, buf.String(), "[DEBUG] shown 2")
}

// TestWarningsAlwaysWritten tests that warnings pass at the default level.
func TestWarningsAlwaysWritten(t *testing.T) {
	buf := captureLogs(t)

	Warnf("disk %s\n", "full")
	assert.Equal(t, "[WARN] disk full\n", buf.String())
}

// TestConfigure tests level and format selection.
//
// It verifies:
//   - An info level lets Infof through
//   - The json format emits JSON with the component field
//   - An unknown level falls back to warn
//   - The environment variable overrides the configured level
func TestConfigure(t *testing.T) {
	t.Run("info level", func(t *testing.T) {
		buf := captureLogs(t)
		Configure("info", "text")
		Infof("hello %s", "there")
		assert.Contains(t, buf.String(), "[INFO] hello there")
	})

	t.Run("json format", func(t *testing.T) {
		buf := captureLogs(t)
		Configure("info", "json")
		Info("structured")
		out := buf.String()
		assert.Contains(t, out, `"msg":"structured"`)
		assert.Contains(t, out, `"component":"appupdate"`)
	})

	t.Run("unknown level", func(t *testing.T) {
		buf := captureLogs(t)
		Configure("chatty", "text")
		Infof("dropped")
		assert.Empty(t, buf.String())
	})

	t.Run("env override", func(t *testing.T) {
		buf := captureLogs(t)
		t.Setenv(EnvLogLevel, "debug")
		Configure("warn", "text")
		Debugf("from env")
		assert.Contains(t, buf.String(), "from env")
	})
}

// TestCommandResult tests the shortened output preview.
//
// It verifies:
//   - Long output is cut to three lines plus an omission note
//   - Nothing is written when debug output is off
func TestCommandResult(t *testing.T) {
	buf := captureLogs(t)

	CommandResult("winget upgrade", 1, "a\nb\nc\nd\ne\nf")
	assert.Empty(t, buf.String())

	Enable()
	CommandResult("winget upgrade", 1, "a\nb\nc\nd\ne\nf")
	out := buf.String()
	require.Contains(t, out, "Command failed: winget upgrade")
	assert.Contains(t, out, "exit=1")
	assert.Contains(t, out, "| c")
	assert.NotContains(t, out, "| d")
	assert.Contains(t, out, "(3 more lines)")
}

// TestTruncate tests string truncation with ellipsis.
func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	long := strings.Repeat("x", 20)
	assert.Equal(t, "xxxxxxx...", truncate(long, 10))
}
