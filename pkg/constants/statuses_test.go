// Package constants provides centralized string constants used throughout the application.
package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestOutcomeConstants tests the behavior of outcome constants.
//
// It verifies:
//   - Outcome labels have the expected string values
//   - Prevents accidental changes to labels that appear in status lines
func TestOutcomeConstants(t *testing.T) {
	tests := []struct {
		name     string
		constant string
		expected string
	}{
		{"OutcomeUpdated", OutcomeUpdated, "updated"},
		{"OutcomeNoUpdate", OutcomeNoUpdate, "no-update-available"},
		{"OutcomeFailed", OutcomeFailed, "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.constant, "constant %s has unexpected value", tt.name)
		})
	}
}

// TestBatchConstants tests the behavior of batch status constants.
func TestBatchConstants(t *testing.T) {
	assert.Equal(t, "idle", BatchIdle)
	assert.Equal(t, "running", BatchRunning)
	assert.Equal(t, "completed", BatchCompleted)
	assert.Equal(t, "cancelled", BatchCancelled)
	assert.Equal(t, "system-error", BatchSystemError)
}

// TestOutcomeIcon tests the behavior of OutcomeIcon.
//
// It verifies:
//   - Updated maps to the success icon
//   - Failed maps to the error icon
//   - No-update and unknown labels map to the info icon
func TestOutcomeIcon(t *testing.T) {
	assert.Equal(t, IconSuccess, OutcomeIcon(OutcomeUpdated))
	assert.Equal(t, IconError, OutcomeIcon(OutcomeFailed))
	assert.Equal(t, IconInfo, OutcomeIcon(OutcomeNoUpdate))
	assert.Equal(t, IconInfo, OutcomeIcon("other"))
}
