package model

import (
	"github.com/anglerlab/finbot/pkg/domain/types"
)

// ToolFailure describes a normalized tool fault. Supported carries the set of
// accepted values when the failure is about an unsupported input.
type ToolFailure struct {
	Kind      types.FailureKind
	Message   string
	Supported []string
}

// ToolOutcome is the uniform result of a tool invocation: either Data is set
// (success) or Failure is set, never both.
type ToolOutcome struct {
	Tool    types.ToolName
	Data    map[string]any
	Failure *ToolFailure
}

// OK reports whether the invocation succeeded
func (o *ToolOutcome) OK() bool {
	return o != nil && o.Failure == nil
}

// NewToolSuccess builds a successful outcome
func NewToolSuccess(tool types.ToolName, data map[string]any) *ToolOutcome {
	return &ToolOutcome{Tool: tool, Data: data}
}

// NewToolFailure builds a failed outcome
func NewToolFailure(tool types.ToolName, kind types.FailureKind, message string, supported ...string) *ToolOutcome {
	return &ToolOutcome{
		Tool: tool,
		Failure: &ToolFailure{
			Kind:      kind,
			Message:   message,
			Supported: supported,
		},
	}
}
