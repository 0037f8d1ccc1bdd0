// Package tool holds the fixed tool registry the agent works with: two local
// helper tools plus whatever the remote MCP servers advertise at startup.
// The registry is populated once during startup and read-only afterwards, so
// no locking is needed on the request path.
package tool

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrToolAlreadyRegistered = errors.New("tool already registered")
	ErrToolNotRegistered     = errors.New("tool not registered")
)

// Spec describes one tool as presented to the model.
// InputSchema is a JSON Schema object.
type Spec struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}

// Registry maps tool names to executors, preserving registration order so
// the model always sees tools in a stable sequence.
type Registry struct {
	order     []string
	executors map[string]Executor
	specs     map[string]Spec
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		executors: make(map[string]Executor),
		specs:     make(map[string]Spec),
	}
}

// Register adds a tool under spec.Name. Names must be unique: a remote tool
// shadowing a builtin (or another server's tool) is a configuration problem
// surfaced at startup, not silently resolved.
func (r *Registry) Register(spec Spec, executor Executor) error {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return fmt.Errorf("register tool: name is required")
	}
	if executor == nil {
		return fmt.Errorf("register tool %q: executor is required", name)
	}
	if _, exists := r.executors[name]; exists {
		return fmt.Errorf("%w: %q", ErrToolAlreadyRegistered, name)
	}

	spec.Name = name
	if len(spec.InputSchema) == 0 {
		spec.InputSchema = json.RawMessage(`{"type":"object","properties":{}}`)
	}

	r.order = append(r.order, name)
	r.executors[name] = executor
	r.specs[name] = spec
	return nil
}

// Get returns the executor registered under name.
func (r *Registry) Get(name string) (Executor, error) {
	executor, ok := r.executors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrToolNotRegistered, name)
	}
	return executor, nil
}

// Specs returns every registered tool spec in registration order.
func (r *Registry) Specs() []Spec {
	out := make([]Spec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.specs[name])
	}
	return out
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.order)
}
