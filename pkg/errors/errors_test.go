package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExitError tests message selection and unwrapping of ExitError.
func TestExitError(t *testing.T) {
	inner := stderrors.New("boom")

	assert.Equal(t, "custom", (&ExitError{Code: 2, Message: "custom", Err: inner}).Error())
	assert.Equal(t, "boom", NewExitError(3, inner).Error())
	assert.Equal(t, "exit code 1", (&ExitError{Code: 1}).Error())
	assert.ErrorIs(t, NewExitError(3, inner), inner)
	assert.Equal(t, "bad 7", NewExitErrorf(2, "bad %d", 7).Error())
}

// TestGetExitCode tests the mapping from errors to process exit codes.
//
// It verifies:
//   - nil maps to ExitSuccess
//   - Wrapped ExitError keeps its code
//   - PartialSuccessError maps to ExitPartialFailure
//   - Unknown errors map to ExitFailure
func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"exit error", NewExitError(ExitConfigError, nil), ExitConfigError},
		{"wrapped exit error", fmt.Errorf("ctx: %w", NewExitError(ExitCancelled, nil)), ExitCancelled},
		{"partial", NewPartialSuccessError(2, 1, []string{"a"}), ExitPartialFailure},
		{"plain", stderrors.New("x"), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

// TestIsHelpers tests the Is* helpers for each typed error.
func TestIsHelpers(t *testing.T) {
	exitErr, ok := IsExitError(fmt.Errorf("wrap: %w", NewExitError(2, nil)))
	require.True(t, ok)
	assert.Equal(t, 2, exitErr.Code)

	_, ok = IsExitError(stderrors.New("x"))
	assert.False(t, ok)

	pse, ok := IsPartialSuccess(NewPartialSuccessError(3, 2, []string{"a", "b"}))
	require.True(t, ok)
	assert.Equal(t, "3 succeeded, 2 failed", pse.Error())

	timeout := &TimeoutError{Command: "winget upgrade", Timeout: 30 * time.Second, Err: stderrors.New("killed")}
	assert.True(t, IsTimeout(fmt.Errorf("attempt: %w", timeout)))
	assert.False(t, IsTimeout(stderrors.New("x")))
	assert.Equal(t, "winget upgrade: timed out after 30s", timeout.Error())

	me, ok := IsMalformedRecord(&MalformedRecordError{ID: "Foo.Bar", Reason: "missing name"})
	require.True(t, ok)
	assert.Equal(t, `malformed record "Foo.Bar": missing name`, me.Error())
	assert.Equal(t, "malformed record: missing name", (&MalformedRecordError{Reason: "missing name"}).Error())
}
