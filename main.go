// Package main is the entry point for the appupdate CLI application.
//
// appupdate lists installed applications, keeps an exclusion list and
// updates outdated applications through the winget package manager.
package main

import "github.com/ajxudir/appupdate/cmd"

// main delegates all command parsing and execution to the cmd package.
func main() {
	cmd.Execute()
}
