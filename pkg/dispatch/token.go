package dispatch

import "sync/atomic"

// Token carries a stop request into a running batch. The flag is set at
// most once and never cleared. The zero value is ready to use.
type Token struct {
	stop atomic.Bool
}

// NewToken creates a Token with no stop requested.
func NewToken() *Token {
	return &Token{}
}

// RequestStop sets the stop flag.
//
// Returns:
//   - bool: true for the call that set the flag, false if it was already set
func (t *Token) RequestStop() bool {
	return t.stop.CompareAndSwap(false, true)
}

// StopRequested reports whether a stop was requested.
func (t *Token) StopRequested() bool {
	return t.stop.Load()
}
