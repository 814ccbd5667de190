//go:build !windows

package preflight

import (
	"fmt"
	"os"
)

// getShellCommandCheck returns the shell and args for checking if a command exists.
//
// The user's $SHELL (or sh) is started as a login shell running 'command -v',
// which also finds aliases and shell functions.
func getShellCommandCheck(cmd string) (shell string, args []string) {
	shell = os.Getenv("SHELL")
	if shell == "" {
		shell = "sh"
	}
	return shell, []string{"-l", "-c", fmt.Sprintf("command -v %s", cmd)}
}
