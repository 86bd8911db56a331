// Package tools holds the external tool adaptors and the dispatcher that
// routes calls to them. A tool failure is converted to text, never
// propagated: the conversation must survive any single adaptor.
package tools

import (
	"context"
	"fmt"
	"log"
)

// Tool is one external capability. Schema describes the input parameters
// in the JSON-schema-as-map style used when advertising tools to an LLM.
type Tool interface {
	Name() string
	Description() string
	Schema() map[string]any
	Execute(ctx context.Context, args map[string]any) (string, error)
}

// Registry maps tool names to adaptors. The tool set is closed: adding a
// tool means adding an implementation and registering it here.
type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry(ts ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool)}
	for _, t := range ts {
		r.Register(t)
	}
	return r
}

func (r *Registry) Register(t Tool) {
	if _, exists := r.tools[t.Name()]; !exists {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// List returns the registered tools in registration order.
func (r *Registry) List() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Invoke dispatches by exact name and always returns text. Adaptor errors
// and unknown names come back as formatted strings so the turn continues.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) string {
	t, ok := r.tools[name]
	if !ok {
		return fmt.Sprintf("Tool %s not found", name)
	}
	out, err := t.Execute(ctx, args)
	if err != nil {
		log.Printf("❌ tool %s failed: %v", name, err)
		return fmt.Sprintf("Error executing %s: %v", name, err)
	}
	return out
}

// stringArg reads a string parameter with a default.
func stringArg(args map[string]any, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}

// intArg reads an integer parameter with a default; JSON numbers arrive
// as float64.
func intArg(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return def
	}
}
