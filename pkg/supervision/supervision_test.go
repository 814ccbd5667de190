package supervision

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajxudir/appupdate/pkg/packages"
)

func rec(name, id, version, source string) packages.Record {
	return packages.Record{Name: name, ID: id, Version: version, Source: source}
}

// TestNewUnsupportedTracker tests the behavior of NewUnsupportedTracker.
//
// It verifies:
//   - Tracker is properly initialized
//   - New tracker has no messages
func TestNewUnsupportedTracker(t *testing.T) {
	tracker := NewUnsupportedTracker()
	assert.NotNil(t, tracker)
	assert.Nil(t, tracker.Messages())
	assert.Equal(t, 0, tracker.Count())
}

// TestDeriveReason tests the behavior of DeriveReason.
//
// It verifies:
//   - Missing source wins over the other checks
//   - Unknown version and missing identifier are reported
//   - Complete records have no reason and are not tracked
func TestDeriveReason(t *testing.T) {
	tests := []struct {
		name   string
		rec    packages.Record
		reason string
	}{
		{"no source", rec("Legacy Tool", "", "Unknown", ""), ReasonNoSource},
		{"unknown version", rec("Zoom", "Zoom.Zoom", "Unknown", "winget"), ReasonUnknownVersion},
		{"unknown version lower case", rec("Zoom", "Zoom.Zoom", " unknown ", "winget"), ReasonUnknownVersion},
		{"no identifier", rec("Git", "", "2.40.0", "winget"), ReasonNoIdentifier},
		{"supported", rec("Git", "Git.Git", "2.40.0", "winget"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.reason, DeriveReason(tt.rec))
			assert.Equal(t, tt.reason != "", ShouldTrack(tt.rec))
		})
	}
}

// TestUnsupportedTrackerAdd tests the behavior of adding records to the tracker.
//
// It verifies:
//   - Empty and whitespace-only reasons are ignored
//   - Records with the same source and reason share a group
//   - Empty sources are reported as unmanaged
func TestUnsupportedTrackerAdd(t *testing.T) {
	tracker := NewUnsupportedTracker()
	legacy := rec("Legacy Tool", "", "1.0", "")

	t.Run("empty reason is ignored", func(t *testing.T) {
		tracker.Add(legacy, "")
		tracker.Add(legacy, "   ")
		assert.Empty(t, tracker.Messages())
	})

	t.Run("adds record with reason", func(t *testing.T) {
		tracker.Add(legacy, ReasonNoSource)
		messages := tracker.Messages()
		require.Len(t, messages, 1)
		assert.Contains(t, messages[0], "unmanaged")
		assert.Contains(t, messages[0], ReasonNoSource)
		assert.Contains(t, messages[0], "(1 package)")
	})

	t.Run("groups same source and reason", func(t *testing.T) {
		tracker.Add(rec("Old Driver", "", "2.0", ""), ReasonNoSource)
		messages := tracker.Messages()
		require.Len(t, messages, 1)
		assert.Contains(t, messages[0], "(2 packages)")

		groups := tracker.Groups()
		require.Len(t, groups, 1)
		assert.Equal(t, []string{"Legacy Tool", "Old Driver"}, groups[0].Names)
	})
}

// TestUnsupportedTrackerMessages tests the behavior of message ordering.
//
// It verifies:
//   - Messages are sorted by source, then reason
func TestUnsupportedTrackerMessages(t *testing.T) {
	tracker := NewUnsupportedTracker()
	tracker.Add(rec("Zoom", "Zoom.Zoom", "Unknown", "winget"), ReasonUnknownVersion)
	tracker.Add(rec("Legacy", "", "1.0", ""), ReasonNoSource)
	tracker.Add(rec("Git", "", "2.0", "winget"), ReasonNoIdentifier)

	messages := tracker.Messages()
	require.Len(t, messages, 3)
	assert.Contains(t, messages[0], "unmanaged")
	assert.Contains(t, messages[1], ReasonUnknownVersion)
	assert.Contains(t, messages[2], ReasonNoIdentifier)
}

// TestUnsupportedTrackerCounts tests Count and TotalPackages.
//
// It verifies:
//   - Count tracks distinct groups
//   - TotalPackages tracks every added record
func TestUnsupportedTrackerCounts(t *testing.T) {
	tracker := NewUnsupportedTracker()
	assert.Equal(t, 0, tracker.TotalPackages())

	tracker.Add(rec("A", "", "1", ""), ReasonNoSource)
	tracker.Add(rec("B", "", "1", ""), ReasonNoSource)
	tracker.Add(rec("C", "C.C", "Unknown", "winget"), ReasonUnknownVersion)

	assert.Equal(t, 2, tracker.Count())
	assert.Equal(t, 3, tracker.TotalPackages())
}

// TestUnsupportedTrackerConcurrentAdd tests concurrent use of the tracker.
func TestUnsupportedTrackerConcurrentAdd(t *testing.T) {
	tracker := NewUnsupportedTracker()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Add(rec("X", "", "1", ""), ReasonNoSource)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, tracker.Count())
	assert.Equal(t, 50, tracker.TotalPackages())
}
