package tools

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/anglerlab/finbot/pkg/domain/interfaces"
	"github.com/anglerlab/finbot/pkg/domain/model"
	"github.com/anglerlab/finbot/pkg/domain/types"
	"github.com/anglerlab/finbot/pkg/utils/logging"
)

// Registry is the closed set of tools available to the router. Adding a tool
// means adding a types.ToolName constant and wiring its implementation here,
// so the set is checked at compile time rather than discovered at runtime.
type Registry struct {
	order  []types.ToolName
	byName map[types.ToolName]interfaces.Tool
}

// NewRegistry builds a registry over the given tools. Tool names must be
// valid and unique.
func NewRegistry(toolList ...interfaces.Tool) (*Registry, error) {
	r := &Registry{
		byName: make(map[types.ToolName]interfaces.Tool, len(toolList)),
	}
	for _, t := range toolList {
		name := t.Name()
		if err := name.Validate(); err != nil {
			return nil, err
		}
		if _, exists := r.byName[name]; exists {
			return nil, goerr.New("duplicate tool", goerr.V("tool", name.String()))
		}
		r.byName[name] = t
		r.order = append(r.order, name)
	}
	return r, nil
}

// Lookup returns the tool registered under name
func (r *Registry) Lookup(name types.ToolName) (interfaces.Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Specs returns the tool specs in registration order, for routing prompts and
// parameter validation.
func (r *Registry) Specs() []gollem.ToolSpec {
	specs := make([]gollem.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.byName[name].Spec())
	}
	return specs
}

// Invoke dispatches to the named tool and returns its normalized outcome.
// Every fault is a ToolOutcome failure; Invoke never returns an error.
func (r *Registry) Invoke(ctx context.Context, name types.ToolName, params map[string]any) *model.ToolOutcome {
	t, ok := r.byName[name]
	if !ok {
		return model.NewToolFailure(name, types.FailureInvalidParameters,
			fmt.Sprintf("unknown tool: %s", name))
	}

	outcome := t.Invoke(ctx, params)

	logger := logging.From(ctx)
	if outcome.OK() {
		logger.Debug("tool invoked", "tool", name.String())
	} else {
		logger.Info("tool invocation failed",
			"tool", name.String(),
			"kind", outcome.Failure.Kind.String(),
			"message", outcome.Failure.Message,
		)
	}

	return outcome
}
