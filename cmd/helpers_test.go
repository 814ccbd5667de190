package cmd

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ajxudir/appupdate/pkg/cmdexec"
	"github.com/ajxudir/appupdate/pkg/config"
	"github.com/ajxudir/appupdate/pkg/packages"
	"github.com/ajxudir/appupdate/pkg/preflight"
	"github.com/ajxudir/appupdate/pkg/testutil"
)

// fakeSource is an inventory source with fixed records.
type fakeSource struct {
	records []packages.Record
	err     error
}

func (f fakeSource) Records(ctx context.Context) ([]packages.Record, error) {
	return f.records, f.err
}

// cmdEnv is an isolated command environment: a temp working directory
// with a config pointing at a temp exclusion file, a fake inventory, and a
// scripted package manager.
type cmdEnv struct {
	dir        string
	exclusions string
	out        *bytes.Buffer
	errOut     *bytes.Buffer
	runner     *testutil.ScriptedRunner
	preflight  *preflight.ValidateResult
	managerErr error
}

// resetFlagsToDefaults restores every command flag variable.
func resetFlagsToDefaults() {
	verboseFlag = false
	versionFlag = false
	configFlag = ""
	listOutdatedFlag = false
	listOutputFlag = ""
	excludeSnapshotFlag = false
	excludeOutputFlag = ""
	updateAllFlag = false
	updateDryRunFlag = false
	updateYesFlag = false
	updateConcurrencyFlag = 0
	updateOutputFlag = ""
}

// newCmdEnv swaps every seam of the cmd package for the duration of t.
//
// Parameters:
//   - t: Test whose cleanup restores the seams
//   - records: Inventory returned by the fake source
//
// Returns:
//   - *cmdEnv: Environment handle
func newCmdEnv(t *testing.T, records ...packages.Record) *cmdEnv {
	t.Helper()

	env := &cmdEnv{
		dir:       t.TempDir(),
		out:       &bytes.Buffer{},
		errOut:    &bytes.Buffer{},
		runner:    testutil.NewScriptedRunner(),
		preflight: &preflight.ValidateResult{},
	}
	env.exclusions = filepath.Join(env.dir, "exclusions.json")
	env.writeConfig(t, "")

	oldGetwd := getwdFunc
	oldSource := newSourceFunc
	oldValidate := validateConfigFunc
	oldCheck := checkManagerFunc
	oldRun := cmdexec.Run
	oldProgress := progressWriter
	oldInterrupts := interruptSource
	oldStdin := stdinReaderFunc

	getwdFunc = func() (string, error) { return env.dir, nil }
	newSourceFunc = func(cfg *config.Config) (packages.Source, error) {
		return fakeSource{records: records}, nil
	}
	validateConfigFunc = func(cfg *config.Config) *preflight.ValidateResult { return env.preflight }
	checkManagerFunc = func(ctx context.Context, command string) error { return env.managerErr }
	cmdexec.Run = env.runner.Run
	progressWriter = io.Discard
	interruptSource = func() (<-chan os.Signal, func()) { return make(chan os.Signal), func() {} }
	stdinReaderFunc = func() *bufio.Reader { return bufio.NewReader(strings.NewReader("")) }

	resetFlagsToDefaults()
	rootCmd.SetOut(env.out)
	rootCmd.SetErr(env.errOut)

	t.Cleanup(func() {
		getwdFunc = oldGetwd
		newSourceFunc = oldSource
		validateConfigFunc = oldValidate
		checkManagerFunc = oldCheck
		cmdexec.Run = oldRun
		progressWriter = oldProgress
		interruptSource = oldInterrupts
		stdinReaderFunc = oldStdin
		resetFlagsToDefaults()
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	return env
}

// writeConfig writes .appupdate.yml with the exclusion path and extra YAML.
func (e *cmdEnv) writeConfig(t *testing.T, extra string) {
	t.Helper()
	content := fmt.Sprintf("manager:\n  timeout_seconds: 1\nexclusions:\n  path: %q\n%s", e.exclusions, extra)
	require.NoError(t, os.WriteFile(filepath.Join(e.dir, config.LocalConfigName), []byte(content), 0o600))
}

// writeExclusions seeds the exclusion file.
func (e *cmdEnv) writeExclusions(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(e.exclusions, []byte(content), 0o600))
}

// run executes the root command and returns its standard output.
func (e *cmdEnv) run(args ...string) (string, error) {
	resetFlagsToDefaults()
	e.out.Reset()
	e.errOut.Reset()
	err := ExecuteTest(args...)
	return e.out.String(), err
}
