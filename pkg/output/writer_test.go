package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajxudir/appupdate/pkg/constants"
	"github.com/ajxudir/appupdate/pkg/dispatch"
	"github.com/ajxudir/appupdate/pkg/packages"
	"github.com/ajxudir/appupdate/pkg/testutil"
	"github.com/ajxudir/appupdate/pkg/update"
)

type nameSet map[string]bool

func (s nameSet) Contains(name string) bool { return s[name] }

func inventory() []packages.Record {
	return []packages.Record{
		testutil.OutdatedRecord("Mozilla Firefox", "Mozilla.Firefox", "120.0", "121.0"),
		testutil.NewRecord("Git").WithID("Git.Git").WithVersion("2.43.0").Build(),
		testutil.OutdatedRecord("Zoom", "Zoom.Zoom", "5.16", "5.17"),
		testutil.NewRecord("Legacy Tool").WithVersion("1.0").WithSource("").Build(),
	}
}

// TestNewListResult tests the behavior of NewListResult.
//
// It verifies:
//   - Exclusion wins over the other statuses
//   - Records without a source are unsupported and noted in warnings
//   - Summary counts match the statuses
func TestNewListResult(t *testing.T) {
	result := NewListResult(inventory(), nameSet{"Zoom": true})

	statuses := make(map[string]string)
	for _, p := range result.Packages {
		statuses[p.Name] = p.Status
	}
	assert.Equal(t, map[string]string{
		"Mozilla Firefox": StatusOutdated,
		"Git":             StatusUpToDate,
		"Zoom":            StatusExcluded,
		"Legacy Tool":     StatusUnsupported,
	}, statuses)

	assert.Equal(t, ListSummary{TotalPackages: 4, OutdatedPackages: 1, ExcludedPackages: 1, UnsupportedPackages: 1}, result.Summary)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "unmanaged")
}

// TestWriteListResult tests list output in every format.
func TestWriteListResult(t *testing.T) {
	result := NewListResult(inventory(), nil)

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteListResult(&buf, FormatJSON, result))
		var decoded ListResult
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, result.Summary, decoded.Summary)
		assert.Len(t, decoded.Packages, 4)
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteListResult(&buf, FormatCSV, result))
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 5)
		assert.Equal(t, "NAME,ID,VERSION,AVAILABLE,SOURCE,STATUS", lines[0])
		assert.Equal(t, "Mozilla Firefox,Mozilla.Firefox,120.0,121.0,winget,outdated", lines[1])
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteListResult(&buf, FormatTable, result))
		out := buf.String()
		assert.Contains(t, out, "NAME")
		assert.Contains(t, out, "AVAILABLE")
		assert.Contains(t, out, constants.PlaceholderNA)
		assert.Contains(t, out, "4 packages, 2 outdated, 0 excluded, 1 unsupported")
	})

	t.Run("empty table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteListResult(&buf, FormatTable, NewListResult(nil, nil)))
		assert.Equal(t, "No packages found.\n", buf.String())
	})

	t.Run("unsupported format", func(t *testing.T) {
		assert.Error(t, WriteListResult(&bytes.Buffer{}, Format("xml"), result))
	})
}

// TestNewUpdateResult tests the behavior of NewUpdateResult.
//
// It verifies:
//   - Counts and status are copied from the summary
//   - Packages are sorted by name and carry the error text
//   - A system error message lands in Errors
func TestNewUpdateResult(t *testing.T) {
	summary := dispatch.Summary{
		Status:    constants.BatchCompleted,
		Total:     2,
		Completed: 2,
		Updated:   1,
		Failed:    1,
		Duration:  1500 * time.Millisecond,
		Results: []update.Result{
			{Name: "Zoom", Outcome: constants.OutcomeFailed, Attempts: 2, Err: errors.New("exit 1")},
			{Name: "git", Outcome: constants.OutcomeUpdated, Attempts: 2},
		},
	}

	result := NewUpdateResult(summary)
	assert.Equal(t, constants.BatchCompleted, result.Summary.Status)
	assert.Equal(t, int64(1500), result.Summary.DurationMS)
	require.Len(t, result.Packages, 2)
	assert.Equal(t, "git", result.Packages[0].Name)
	assert.Equal(t, "exit 1", result.Packages[1].Error)
	assert.Empty(t, result.Errors)

	broken := NewUpdateResult(dispatch.Summary{Status: constants.BatchSystemError, Message: "boom"})
	assert.Equal(t, []string{"boom"}, broken.Errors)
}

// TestNewPlanResult tests the behavior of NewPlanResult.
//
// It verifies:
//   - Generic records list the name and id commands
//   - Handler records that are already current report no-update-available
//   - Malformed records are counted as skipped
func TestNewPlanResult(t *testing.T) {
	cfg := testutil.NewConfig().WithHandler("Mozilla Firefox", "Mozilla.Firefox").Build()
	handlers, err := update.NewHandlerTable(cfg.Handlers)
	require.NoError(t, err)
	exec := update.NewExecutor(update.SettingsFromConfig(cfg), handlers, nil)

	batch := []packages.Record{
		testutil.OutdatedRecord("Zoom", "Zoom.Zoom", "5.16", "5.17"),
		testutil.OutdatedRecord("Mozilla Firefox", "Mozilla.Firefox", "121.0", "120.0"),
		{ID: "Broken.Record"},
	}
	result := NewPlanResult(exec, batch)

	assert.True(t, result.Summary.DryRun)
	assert.Equal(t, 2, result.Summary.TotalPackages)
	assert.Equal(t, 1, result.Summary.SkippedPackages)
	require.Len(t, result.Packages, 2)

	zoom := result.Packages[0]
	assert.Equal(t, OutcomePlanned, zoom.Outcome)
	require.Len(t, zoom.Commands, 2)
	assert.Contains(t, zoom.Commands[0], "upgrade --name Zoom --silent")
	assert.Contains(t, zoom.Commands[1], "upgrade --id Zoom.Zoom --silent")

	firefox := result.Packages[1]
	assert.Equal(t, constants.OutcomeNoUpdate, firefox.Outcome)
	assert.Empty(t, firefox.Commands)
	assert.Contains(t, firefox.Error, "not newer")

	var buf bytes.Buffer
	require.NoError(t, WriteUpdateResult(&buf, FormatTable, result))
	assert.Contains(t, buf.String(), "    winget upgrade --id Zoom.Zoom --silent")
	assert.Contains(t, buf.String(), "Dry run: 2 packages would be updated")
}

// TestWriteUpdateResult tests update output formats.
func TestWriteUpdateResult(t *testing.T) {
	result := &UpdateResult{
		Summary: UpdateSummary{Status: constants.BatchCompleted, TotalPackages: 1, CompletedPackages: 1, UpdatedPackages: 1},
		Packages: []UpdatePackage{
			{Name: "Zoom", Outcome: constants.OutcomeUpdated, Attempts: 2},
		},
	}

	var table bytes.Buffer
	require.NoError(t, WriteUpdateResult(&table, FormatTable, result))
	assert.Contains(t, table.String(), constants.IconSuccess+" updated")

	var csvOut bytes.Buffer
	require.NoError(t, WriteUpdateResult(&csvOut, FormatCSV, result))
	assert.Equal(t, "NAME,OUTCOME,ATTEMPTS,COMMANDS,ERROR\nZoom,updated,2,,\n", csvOut.String())

	var empty bytes.Buffer
	require.NoError(t, WriteUpdateResult(&empty, FormatTable, &UpdateResult{}))
	assert.Equal(t, "Nothing to update.\n", empty.String())
}
