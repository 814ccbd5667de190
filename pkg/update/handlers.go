package update

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ajxudir/appupdate/pkg/config"
	"github.com/ajxudir/appupdate/pkg/constants"
)

// Handler is a package with a specialized update strategy.
type Handler struct {
	// Name is the display name the handler applies to.
	Name string

	// By is the addressing strategy; only "id" is known.
	By string

	// ID is the identifier used when the record does not carry one.
	ID string
}

// HandlerTable maps lower-cased package names to handlers. It is built once
// from configuration and never modified afterwards, so it can be shared by
// concurrent executors without locking.
type HandlerTable struct {
	handlers map[string]Handler
}

// NewHandlerTable builds the table from the configured handler entries.
//
// Parameters:
//   - entries: Handler configuration; names are matched case-insensitively
//
// Returns:
//   - *HandlerTable: Immutable lookup table
//   - error: When an entry has no name, a duplicate name or an unknown strategy
func NewHandlerTable(entries []config.HandlerCfg) (*HandlerTable, error) {
	t := &HandlerTable{handlers: make(map[string]Handler, len(entries))}
	for i, e := range entries {
		key := handlerKey(e.Name)
		if key == "" {
			return nil, fmt.Errorf("handler %d: name is required", i)
		}
		if _, dup := t.handlers[key]; dup {
			return nil, fmt.Errorf("handler %q: duplicate name", e.Name)
		}
		by := strings.ToLower(strings.TrimSpace(e.By))
		if by == "" {
			by = constants.StrategyID
		}
		if by != constants.StrategyID {
			return nil, fmt.Errorf("handler %q: unknown strategy %q", e.Name, e.By)
		}
		t.handlers[key] = Handler{Name: strings.TrimSpace(e.Name), By: by, ID: strings.TrimSpace(e.ID)}
	}
	return t, nil
}

// Lookup returns the handler for name, if any. A nil table has no handlers.
func (t *HandlerTable) Lookup(name string) (Handler, bool) {
	if t == nil {
		return Handler{}, false
	}
	h, ok := t.handlers[handlerKey(name)]
	return h, ok
}

// Len returns the number of handlers.
func (t *HandlerTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.handlers)
}

// Names returns the handler display names, sorted.
func (t *HandlerTable) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.handlers))
	for _, h := range t.handlers {
		names = append(names, h.Name)
	}
	sort.Strings(names)
	return names
}

func handlerKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
