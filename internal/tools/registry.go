package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"ragchat/internal/domain"
)

// Tool is a function the chat model may ask the application to run.
type Tool interface {
	Spec() domain.ToolSpec
	Invoke(ctx context.Context, input json.RawMessage) (domain.ToolResultContent, error)
}

// Registry holds the declared tools in registration order.
type Registry struct {
	order  []string
	byName map[string]Tool
}

// NewRegistry registers the given tools. Duplicate names are rejected.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{byName: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		name := t.Spec().Name
		if name == "" {
			return nil, fmt.Errorf("tool without name: %T", t)
		}
		if _, ok := r.byName[name]; ok {
			return nil, fmt.Errorf("duplicate tool %q", name)
		}
		r.order = append(r.order, name)
		r.byName[name] = t
	}
	return r, nil
}

// Lookup finds a tool by exact name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Specs returns the tool declarations sent with every model call.
func (r *Registry) Specs() []domain.ToolSpec {
	specs := make([]domain.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.byName[name].Spec())
	}
	return specs
}

// decodeInput unmarshals tool input into a generic object.
func decodeInput(input json.RawMessage) (map[string]any, error) {
	if len(input) == 0 {
		return nil, fmt.Errorf("%w: empty input", domain.ErrInvalidToolInput)
	}
	var args map[string]any
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToolInput, err)
	}
	if args == nil {
		return nil, fmt.Errorf("%w: input is not an object", domain.ErrInvalidToolInput)
	}
	return args, nil
}
