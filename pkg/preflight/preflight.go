// Package preflight checks that the external commands appupdate relies on
// are available before any listing or update runs.
package preflight

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/ajxudir/appupdate/pkg/cmdexec"
	"github.com/ajxudir/appupdate/pkg/config"
	"github.com/ajxudir/appupdate/pkg/constants"
	"github.com/ajxudir/appupdate/pkg/verbose"
)

// CommandResolutionHints maps command names to installation instructions.
//
// Keys are command names, values are human-readable installation instructions with URLs.
var CommandResolutionHints = map[string]string{
	"winget":     "Install App Installer from the Microsoft Store: https://aka.ms/getwinget",
	"powershell": "Install Windows PowerShell or PowerShell 7: https://aka.ms/powershell",
	"pwsh":       "Install PowerShell 7: https://aka.ms/powershell",
}

// versionTimeout bounds the manager probe in CheckManager.
const versionTimeout = 15 * time.Second

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// ValidationError represents a missing or unusable command with resolution hints.
//
// Fields:
//   - Command: The name of the missing command
//   - Hint: Installation instructions (empty if no hint available)
//   - Detail: Why the command was rejected when it exists but does not work
type ValidationError struct {
	Command string
	Hint    string
	Detail  string
}

// Error returns a formatted error message with resolution instructions.
func (e *ValidationError) Error() string {
	head := fmt.Sprintf("command not found: %s", e.Command)
	if e.Detail != "" {
		head = fmt.Sprintf("command not usable: %s (%s)", e.Command, e.Detail)
	}
	if e.Hint != "" {
		return fmt.Sprintf("%s\n  Resolution: %s", head, e.Hint)
	}
	return fmt.Sprintf("%s\n  Resolution: Ensure '%s' is installed and available in your PATH.", head, e.Command)
}

// ValidateResult holds the result of pre-flight validation.
//
// Fields:
//   - Errors: Missing or unusable commands
//   - Warnings: Problems that do not stop the run
type ValidateResult struct {
	Errors   []ValidationError
	Warnings []string
}

// HasErrors returns true if there are validation errors.
func (r *ValidateResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// ErrorMessage returns a formatted error message for all validation errors.
//
// Returns:
//   - string: Multi-line message with header, empty string if no errors
func (r *ValidateResult) ErrorMessage() string {
	if len(r.Errors) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Pre-flight validation failed:\n")
	for _, err := range r.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// ValidateConfig checks that every command the configuration names can be found.
//
// It performs the following operations:
//   - Collects the manager executable
//   - Collects the executable of the inventory names command, if any
//   - Looks each unique command up in PATH, then in the user's shell
//
// A missing names command only produces a warning, since the listing
// still works without full names.
//
// Parameters:
//   - cfg: Loaded configuration
//
// Returns:
//   - *ValidateResult: Result containing any validation errors; never nil
func ValidateConfig(cfg *config.Config) *ValidateResult {
	result := &ValidateResult{}

	if err := validateCommand(cfg.GetCommand()); err != nil {
		result.Errors = append(result.Errors, *err)
	}

	if cfg.Inventory.Source == "" || cfg.Inventory.Source == constants.SourceWinget {
		for _, cmd := range extractCommands(cfg.Inventory.NamesCommand) {
			if cmd == cfg.GetCommand() {
				continue
			}
			if err := validateCommand(cmd); err != nil {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("names command %q unavailable; truncated names will not be resolved", cmd))
			}
		}
	}

	verbose.Debugf("Preflight: %d errors, %d warnings", len(result.Errors), len(result.Warnings))
	return result
}

// CheckManager probes the package manager by running "<command> --version".
//
// Parameters:
//   - ctx: Context for cancellation
//   - command: Manager executable, e.g. "winget"
//
// Returns:
//   - error: *ValidationError when the command cannot be started or exits non-zero
func CheckManager(ctx context.Context, command string) error {
	res, err := cmdexec.Run(ctx, cmdexec.Command{Name: command, Args: []string{"--version"}, Timeout: versionTimeout})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &ValidationError{Command: command, Hint: CommandResolutionHints[command], Detail: err.Error()}
	}
	if res.ExitCode != 0 {
		return &ValidationError{
			Command: command,
			Hint:    CommandResolutionHints[command],
			Detail:  fmt.Sprintf("--version exited with code %d", res.ExitCode),
		}
	}
	verbose.Debugf("Preflight: %s version %s", command, strings.TrimSpace(res.Output))
	return nil
}

// extractCommands extracts the executable from a command line. Lines are
// run without a shell, so a "|" inside quotes belongs to the arguments.
//
// Parameters:
//   - line: Command line, possibly empty
//
// Returns:
//   - []string: The executable, or nothing for an empty line
func extractCommands(line string) []string {
	fields := cmdexec.SplitArgs(strings.TrimSpace(line))
	if len(fields) == 0 {
		return nil
	}
	return fields[:1]
}

// validateCommand checks if a command exists in PATH or as a shell alias.
//
// Returns:
//   - *ValidationError: Error with resolution hint if not found; nil if found or cmd is empty
func validateCommand(cmd string) *ValidationError {
	if cmd == "" {
		return nil
	}

	if _, err := lookPath(cmd); err == nil {
		verbose.Tracef("Preflight: command %q found in PATH", cmd)
		return nil
	}

	verbose.Tracef("Preflight: command %q not in PATH, checking shell", cmd)
	if commandExistsInShell(cmd) {
		return nil
	}

	hint := CommandResolutionHints[cmd]
	verbose.Warnf("Preflight: command %q not found", cmd)
	return &ValidationError{Command: cmd, Hint: hint}
}

// commandExistsInShell checks if a command exists through the user's shell.
var commandExistsInShell = func(cmd string) bool {
	shell, args := getShellCommandCheck(cmd)
	if shell == "" {
		return false
	}
	return exec.Command(shell, args...).Run() == nil
}

// GetResolutionHint returns the installation hint for a command, if available.
func GetResolutionHint(cmd string) string {
	return CommandResolutionHints[cmd]
}
