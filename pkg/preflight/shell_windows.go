//go:build windows

package preflight

// getShellCommandCheck returns the PowerShell probe for a command.
func getShellCommandCheck(cmd string) (shell string, args []string) {
	return "powershell", []string{"-NoProfile", "-Command", "Get-Command " + cmd + " -ErrorAction Stop"}
}
