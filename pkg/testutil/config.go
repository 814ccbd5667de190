package testutil

import (
	"github.com/ajxudir/appupdate/pkg/config"
	"github.com/ajxudir/appupdate/pkg/constants"
)

// ConfigBuilder provides a fluent API for building test configurations.
type ConfigBuilder struct {
	cfg config.Config
}

// NewConfig creates a ConfigBuilder with a winget manager, a one-second
// timeout and concurrency 2.
//
// Returns:
//   - *ConfigBuilder: New builder instance ready for method chaining
func NewConfig() *ConfigBuilder {
	return &ConfigBuilder{
		cfg: config.Config{
			Manager: config.ManagerCfg{
				Command:        "winget",
				TimeoutSeconds: 1,
			},
			Concurrency: 2,
			Inventory:   config.InventoryCfg{Source: constants.SourceWinget},
		},
	}
}

// WithCommand sets the manager executable.
func (b *ConfigBuilder) WithCommand(cmd string) *ConfigBuilder {
	b.cfg.Manager.Command = cmd
	return b
}

// WithTimeout sets the per-attempt timeout in seconds.
func (b *ConfigBuilder) WithTimeout(seconds int) *ConfigBuilder {
	b.cfg.Manager.TimeoutSeconds = seconds
	return b
}

// WithConcurrency sets the concurrency limit.
func (b *ConfigBuilder) WithConcurrency(n int) *ConfigBuilder {
	b.cfg.Concurrency = n
	return b
}

// WithExtraArgs sets the arguments appended to every upgrade.
func (b *ConfigBuilder) WithExtraArgs(args ...string) *ConfigBuilder {
	b.cfg.Manager.ExtraArgs = args
	return b
}

// WithHandler adds an id handler.
//
// Parameters:
//   - name: Package display name
//   - id: Identifier used when the record has none
//
// Returns:
//   - *ConfigBuilder: Self for method chaining
func (b *ConfigBuilder) WithHandler(name, id string) *ConfigBuilder {
	b.cfg.Handlers = append(b.cfg.Handlers, config.HandlerCfg{Name: name, By: constants.StrategyID, ID: id})
	return b
}

// WithExclusionsPath sets the exclusion store location.
func (b *ConfigBuilder) WithExclusionsPath(path string) *ConfigBuilder {
	b.cfg.Exclusions.Path = path
	return b
}

// Build returns a pointer to a copy of the configuration.
func (b *ConfigBuilder) Build() *config.Config {
	cfg := b.cfg
	return &cfg
}
