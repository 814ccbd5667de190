package cmd

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajxudir/appupdate/pkg/testutil"
)

// TestExcludeAddRemove tests the exclusion round trip.
//
// It verifies:
//   - add stores bare names and reports duplicates
//   - remove restores names and reports unknown ones
//   - the file reflects each mutation
func TestExcludeAddRemove(t *testing.T) {
	env := newCmdEnv(t)

	out, err := env.run("exclude", "add", "Zoom", "Steam")
	require.NoError(t, err)
	assert.Contains(t, out, "Excluded Zoom")
	assert.Contains(t, out, "Excluded Steam")

	out, err = env.run("exclude", "add", "Zoom")
	require.NoError(t, err)
	assert.Contains(t, out, "Zoom is already excluded")

	data, err := os.ReadFile(env.exclusions)
	require.NoError(t, err)
	var names []string
	require.NoError(t, json.Unmarshal(data, &names))
	assert.Equal(t, []string{"Zoom", "Steam"}, names)

	out, err = env.run("exclude", "remove", "Zoom", "Discord")
	require.NoError(t, err)
	assert.Contains(t, out, "Restored Zoom")
	assert.Contains(t, out, "Discord was not excluded")

	data, err = os.ReadFile(env.exclusions)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &names))
	assert.Equal(t, []string{"Steam"}, names)
}

// TestExcludeSnapshot verifies that --snapshot stores the installed record.
func TestExcludeSnapshot(t *testing.T) {
	env := newCmdEnv(t, testutil.OutdatedRecord("Mozilla Firefox", "Mozilla.Firefox", "118.0", "119.0"))

	out, err := env.run("exclude", "add", "--snapshot", "mozilla.firefox", "Ghost App")
	require.NoError(t, err)
	assert.Contains(t, out, "Excluded Mozilla Firefox")
	assert.Contains(t, out, "Ghost App is not installed; storing the name only")

	data, err := os.ReadFile(env.exclusions)
	require.NoError(t, err)
	var items []any
	require.NoError(t, json.Unmarshal(data, &items))
	require.Len(t, items, 2)

	obj, ok := items[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Mozilla Firefox", obj["name"])
	assert.Equal(t, "Mozilla.Firefox", obj["id"])
	assert.Equal(t, "Ghost App", items[1])
}

// TestExcludeList tests the list subcommand in each format.
func TestExcludeList(t *testing.T) {
	env := newCmdEnv(t)

	out, err := env.run("exclude", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No applications are excluded.")

	out, err = env.run("exclude", "list", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)

	env.writeExclusions(t, `["Zoom", {"name": "Steam", "id": "Valve.Steam"}]`)

	out, err = env.run("exclude", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Zoom")
	assert.Contains(t, out, "Steam")
	assert.Contains(t, out, "2 excluded ("+env.exclusions+")")

	out, err = env.run("exclude", "list", "-o", "csv")
	require.NoError(t, err)
	assert.Equal(t, "NAME\nZoom\nSteam\n", out)
}

// TestExcludeExcludedRecordsSkipUpdate verifies that an exclusion added
// through the command keeps the record out of the next update batch.
func TestExcludeExcludedRecordsSkipUpdate(t *testing.T) {
	env := newCmdEnv(t, testutil.Records("Alpha", "Beta")...)

	_, err := env.run("exclude", "add", "Alpha")
	require.NoError(t, err)

	_, err = env.run("update", "--all", "--yes")
	require.NoError(t, err)
	for _, line := range env.runner.Lines() {
		assert.NotContains(t, line, "Alpha")
	}
	assert.Equal(t, 2, env.runner.CallCount())
}
