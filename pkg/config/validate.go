package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ajxudir/appupdate/pkg/constants"
	"github.com/ajxudir/appupdate/pkg/verbose"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field     string
	Message   string
	ValidKeys string // Valid keys for this context
}

// Error returns the error message string.
//
// Returns:
//   - string: formatted error message with field name if available
func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationResult holds the results of configuration validation.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []string
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// ErrorMessages returns all error messages as a formatted string.
//
// Returns:
//   - string: formatted error messages, or empty string if no errors
func (r *ValidationResult) ErrorMessages() string {
	if len(r.Errors) == 0 {
		return ""
	}
	var msgs []string
	for _, e := range r.Errors {
		line := "  - " + e.Error()
		if e.ValidKeys != "" {
			line += "\n    Valid keys: " + e.ValidKeys
		}
		msgs = append(msgs, line)
	}
	return "Configuration validation failed:\n" + strings.Join(msgs, "\n")
}

func (r *ValidationResult) addError(field, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Valid keys per type, used to hint at typos.
var configSchema = map[string]string{
	"Config":        "manager, concurrency, inventory, exclusions, handlers, logging",
	"ManagerCfg":    "command, timeout_seconds, extra_args, no_update_markers, success_markers",
	"InventoryCfg":  "source, list_args, names_command",
	"ExclusionsCfg": "path",
	"HandlerCfg":    "name, by, id",
	"LoggingCfg":    "level, format",
}

var lineNumberPattern = regexp.MustCompile(`line (\d+):`)

// ValidateConfigFile validates raw YAML configuration data.
//
// It decodes with strict field checking so typos surface as unknown
// fields, then checks the decoded values. The data is validated as a
// standalone file: missing sections are not errors because defaults fill them.
//
// Parameters:
//   - data: YAML configuration data as bytes
//
// Returns:
//   - *ValidationResult: validation result with any errors and warnings found
func ValidateConfigFile(data []byte) *ValidationResult {
	result := &ValidationResult{}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var cfg Config
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		verbose.Printf("Config validation FAILED: YAML decode error: %v\n", err)
		errMsg := err.Error()
		if strings.Contains(errMsg, "field") && strings.Contains(errMsg, "not found") {
			fieldName, typeName := extractFieldAndType(errMsg)
			verr := ValidationError{Message: fmt.Sprintf("unknown field '%s'", fieldName)}
			if m := lineNumberPattern.FindStringSubmatch(errMsg); len(m) == 2 {
				verr.Message = fmt.Sprintf("unknown field '%s' (line %s)", fieldName, m[1])
			}
			verr.ValidKeys = configSchema[typeName]
			if suggestion := suggestSimilarField(fieldName, typeName); suggestion != "" {
				verr.Message += fmt.Sprintf(" (did you mean '%s'?)", suggestion)
			}
			result.Errors = append(result.Errors, verr)
		} else {
			result.Errors = append(result.Errors, ValidationError{Message: errMsg})
		}
		return result
	}

	validateFileValues(&cfg, result)
	return result
}

// validateFileValues checks only the values a file actually sets.
func validateFileValues(cfg *Config, result *ValidationResult) {
	if cfg.Concurrency < 0 {
		result.addError("concurrency", "must be at least 1, got %d", cfg.Concurrency)
	}
	if cfg.Manager.TimeoutSeconds < 0 {
		result.addError("manager.timeout_seconds", "must be positive, got %d", cfg.Manager.TimeoutSeconds)
	}
	validateInventory(cfg, result)
	validateHandlers(cfg.Handlers, result)
	validateLogging(cfg, result)
}

// Validate validates a loaded and merged Config struct.
//
// Returns:
//   - *ValidationResult: validation result with any errors and warnings found
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{}
	verbose.Printf("Config validation: checking merged configuration\n")

	if strings.TrimSpace(c.Manager.Command) == "" {
		result.addError("manager.command", "cannot be empty")
	}
	if c.Concurrency < 1 {
		result.addError("concurrency", "must be at least 1, got %d", c.Concurrency)
	}
	if c.Manager.TimeoutSeconds <= 0 {
		result.addError("manager.timeout_seconds", "must be positive, got %d", c.Manager.TimeoutSeconds)
	}
	validateInventory(c, result)
	validateHandlers(c.Handlers, result)
	validateLogging(c, result)

	if len(result.Errors) > 0 {
		verbose.Printf("Config validation FAILED: %d errors found\n", len(result.Errors))
	}
	return result
}

func validateInventory(cfg *Config, result *ValidationResult) {
	switch cfg.Inventory.Source {
	case "", constants.SourceWinget, constants.SourceRegistry:
	default:
		result.addError("inventory.source", "unknown source %q (expected %s or %s)",
			cfg.Inventory.Source, constants.SourceWinget, constants.SourceRegistry)
	}
}

// validateHandlers checks that every handler is named once and uses a known strategy.
func validateHandlers(handlers []HandlerCfg, result *ValidationResult) {
	seen := make(map[string]bool, len(handlers))
	for i, h := range handlers {
		field := fmt.Sprintf("handlers[%d]", i)
		name := strings.ToLower(strings.TrimSpace(h.Name))
		if name == "" {
			result.addError(field, "handler name cannot be empty")
			continue
		}
		if seen[name] {
			result.addError(field, "duplicate handler for %q", h.Name)
		}
		seen[name] = true
		if h.By != constants.StrategyID {
			result.addError(field, "unknown strategy %q for %q (expected %q)", h.By, h.Name, constants.StrategyID)
		}
	}
}

func validateLogging(cfg *Config, result *ValidationResult) {
	if lvl := cfg.Logging.Level; lvl != "" {
		if _, err := logrus.ParseLevel(lvl); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("logging.level: unknown level %q, using warn", lvl))
		}
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "", "text", "json":
	default:
		result.addError("logging.format", "unknown format %q (expected text or json)", cfg.Logging.Format)
	}
}

// extractFieldAndType extracts the field and type names from a yaml.v3
// unknown-field error such as "line 3: field foo not found in type config.ManagerCfg".
func extractFieldAndType(errMsg string) (field, typeName string) {
	parts := strings.SplitN(errMsg, "field ", 2)
	if len(parts) == 2 {
		field = parts[1]
		if i := strings.Index(field, " "); i > 0 {
			field = field[:i]
		}
	}

	if idx := strings.Index(errMsg, "in type config."); idx >= 0 {
		typeName = errMsg[idx+len("in type config."):]
		if end := strings.IndexAny(typeName, " \n"); end > 0 {
			typeName = typeName[:end]
		}
	}
	return field, typeName
}

// suggestSimilarField suggests the snake_case spelling of a kebab-case or
// camelCase key when that spelling is valid for the type.
func suggestSimilarField(field, typeName string) string {
	fields, ok := configSchema[typeName]
	if !ok {
		return ""
	}
	candidates := []string{strings.ReplaceAll(field, "-", "_"), camelToSnake(field)}
	for _, c := range candidates {
		if c == field {
			continue
		}
		for _, valid := range strings.Split(fields, ", ") {
			if valid == c {
				return c
			}
		}
	}
	return ""
}

func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
