package interfaces

import (
	"context"

	"github.com/m-mizutani/gollem"

	"github.com/anglerlab/finbot/pkg/domain/model"
	"github.com/anglerlab/finbot/pkg/domain/types"
)

// Tool is one member of the closed tool set. Tools are pure functions of
// their parameters: no shared mutable state between invocations. Every fault
// is normalized into the returned ToolOutcome, never raised as an error.
type Tool interface {
	Name() types.ToolName
	Spec() gollem.ToolSpec
	Invoke(ctx context.Context, params map[string]any) *model.ToolOutcome
}

// ToolRegistry dispatches invocations to the named tool and exposes the tool
// specs for routing prompts and parameter validation.
type ToolRegistry interface {
	Lookup(name types.ToolName) (Tool, bool)
	Specs() []gollem.ToolSpec
	Invoke(ctx context.Context, name types.ToolName, params map[string]any) *model.ToolOutcome
}
