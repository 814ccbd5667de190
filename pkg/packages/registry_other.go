//go:build !windows

package packages

import (
	"context"
	"errors"
)

// ErrRegistryUnsupported is returned by RegistrySource outside Windows.
var ErrRegistryUnsupported = errors.New("registry inventory is only available on Windows")

// Records always fails outside Windows.
func (s *RegistrySource) Records(ctx context.Context) ([]Record, error) {
	return nil, ErrRegistryUnsupported
}
