package packages

import (
	"context"
	"fmt"

	"github.com/ajxudir/appupdate/pkg/config"
	"github.com/ajxudir/appupdate/pkg/constants"
)

// Source produces installed package records.
type Source interface {
	Records(ctx context.Context) ([]Record, error)
}

var (
	_ Source = (*WingetSource)(nil)
	_ Source = (*RegistrySource)(nil)
)

// NewSource builds the inventory source selected by the configuration.
//
// Parameters:
//   - cfg: Loaded configuration
//
// Returns:
//   - Source: WingetSource or RegistrySource
//   - error: When the configured source is unknown
func NewSource(cfg *config.Config) (Source, error) {
	switch cfg.Inventory.Source {
	case "", constants.SourceWinget:
		return &WingetSource{
			Command:      cfg.GetCommand(),
			ListArgs:     cfg.Inventory.ListArgs,
			NamesCommand: cfg.Inventory.NamesCommand,
			Timeout:      cfg.GetTimeout(),
		}, nil
	case constants.SourceRegistry:
		return &RegistrySource{}, nil
	default:
		return nil, fmt.Errorf("unknown inventory source %q", cfg.Inventory.Source)
	}
}
