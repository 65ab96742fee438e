package notify

import (
	"fmt"
	"strings"
)

// Registry resolves a dispatcher by action type. Built once at startup, so
// new channels are added by registration, not by editing the orchestrator.
type Registry struct {
	dispatchers map[string]Dispatcher
}

func NewRegistry(dispatchers map[string]Dispatcher) *Registry {
	normalized := map[string]Dispatcher{}
	for key, d := range dispatchers {
		normalized[strings.ToLower(key)] = d
	}
	return &Registry{dispatchers: normalized}
}

func (r *Registry) DispatcherFor(actionType string) (Dispatcher, error) {
	if r == nil {
		return nil, fmt.Errorf("dispatcher registry not configured")
	}
	d, ok := r.dispatchers[strings.ToLower(actionType)]
	if !ok {
		return nil, fmt.Errorf("no dispatcher configured for %s", actionType)
	}
	return d, nil
}
