package model

import (
	"github.com/anglerlab/finbot/pkg/domain/types"
)

// RouteKind is the derived shape of a routing decision
type RouteKind string

const (
	RouteRetrievalOnly    RouteKind = "retrieval_only"
	RouteToolOnly         RouteKind = "tool_only"
	RouteRetrievalAndTool RouteKind = "retrieval_and_tool"
	RouteGeneralChat      RouteKind = "general_chat"
)

// RouteDecision is the structured output deciding whether a query needs
// retrieval, a tool, both, or neither. It is produced by the generation
// oracle and must be validated before use; see the router service.
type RouteDecision struct {
	NeedsRetrieval bool
	NeedsTool      bool
	ToolName       types.ToolName // empty unless NeedsTool
	ToolParams     map[string]any
	Reasoning      string
}

// Kind derives the route shape from the decision flags
func (d *RouteDecision) Kind() RouteKind {
	switch {
	case d.NeedsRetrieval && d.NeedsTool:
		return RouteRetrievalAndTool
	case d.NeedsTool:
		return RouteToolOnly
	case d.NeedsRetrieval:
		return RouteRetrievalOnly
	}
	return RouteGeneralChat
}

// RetrievalOnly returns the safe default decision used when the oracle's
// output is malformed or cannot be validated.
func RetrievalOnly(reason string) *RouteDecision {
	return &RouteDecision{
		NeedsRetrieval: true,
		NeedsTool:      false,
		ToolParams:     map[string]any{},
		Reasoning:      reason,
	}
}
