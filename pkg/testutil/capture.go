// Package testutil provides shared test utilities for appupdate packages:
// output capture, record and configuration builders, and a scripted fake
// process runner.
package testutil

import (
	"bytes"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/ajxudir/appupdate/pkg/verbose"
)

// CaptureStdout captures stdout during the execution of fn and returns the output as a string.
//
// The original stdout is restored after the function completes.
//
// Parameters:
//   - t: Testing instance for helper marking
//   - fn: Function to execute while capturing stdout
//
// Returns:
//   - string: All content written to stdout during fn execution
func CaptureStdout(t *testing.T, fn func()) string {
	t.Helper()
	out, _ := CaptureOutput(t, fn)
	return out
}

// CaptureStderr captures stderr during the execution of fn and returns the output as a string.
func CaptureStderr(t *testing.T, fn func()) string {
	t.Helper()
	_, errOut := CaptureOutput(t, fn)
	return errOut
}

// CaptureOutput captures both stdout and stderr during the execution of fn.
//
// The pipes are drained concurrently so fn cannot block on a full pipe
// buffer.
//
// Parameters:
//   - t: Testing instance for helper marking
//   - fn: Function to execute while capturing both streams
//
// Returns:
//   - stdout: All content written to stdout during fn execution
//   - stderr: All content written to stderr during fn execution
func CaptureOutput(t *testing.T, fn func()) (stdout, stderr string) {
	t.Helper()

	oldStdout, oldStderr := os.Stdout, os.Stderr
	rOut, wOut, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	rErr, wErr, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout, os.Stderr = wOut, wErr

	var bufOut, bufErr bytes.Buffer
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _, _ = io.Copy(&bufOut, rOut) }()
	go func() { defer wg.Done(); _, _ = io.Copy(&bufErr, rErr) }()

	defer func() {
		os.Stdout, os.Stderr = oldStdout, oldStderr
	}()
	fn()

	_ = wOut.Close()
	_ = wErr.Close()
	wg.Wait()
	_ = rOut.Close()
	_ = rErr.Close()

	return bufOut.String(), bufErr.String()
}

// CaptureLogs redirects the application logger into a buffer until the test ends.
//
// Parameters:
//   - t: Testing instance; the writer is restored in t.Cleanup
//
// Returns:
//   - *SafeBuffer: Collected log output
func CaptureLogs(t *testing.T) *SafeBuffer {
	t.Helper()
	buf := &SafeBuffer{}
	restore := verbose.SetWriter(buf)
	t.Cleanup(restore)
	return buf
}

// SafeBuffer is a bytes.Buffer that may be written from several goroutines.
type SafeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements io.Writer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns the collected output.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
