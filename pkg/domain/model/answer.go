package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anglerlab/finbot/pkg/domain/types"
)

// AnswerID is a UUID-based identifier for a grounded answer
type AnswerID string

// NewAnswerID generates a new UUID v7 AnswerID
func NewAnswerID() AnswerID {
	return AnswerID(uuid.Must(uuid.NewV7()).String())
}

// CitationKind distinguishes document citations from tool citations
type CitationKind string

const (
	CitationDocument CitationKind = "document"
	CitationTool     CitationKind = "tool"
)

// Citation references the origin of a claim: either a retrieved chunk's
// source/section or a tool outcome. Citations are derived from what was
// assembled into the prompt, not from parsing the oracle's text.
type Citation struct {
	Kind    CitationKind
	Source  string        // record/file name for document citations
	Section types.Section // document section for document citations
	Tool    types.ToolName
}

// Label renders the citation in "source/section" or "tool:name" form
func (c Citation) Label() string {
	if c.Kind == CitationTool {
		return fmt.Sprintf("tool:%s", c.Tool)
	}
	return fmt.Sprintf("%s/%s", c.Source, c.Section)
}

// GroundedAnswer is the final response of the pipeline. Every request yields
// exactly one, including all failure paths. Never regenerated once produced.
type GroundedAnswer struct {
	ID        AnswerID
	Query     string
	Answer    string
	Citations []Citation
	NoContent bool // answer is an explicit "information not available"
	Degraded  bool // the generation oracle failed and a canned answer was used
	CreatedAt time.Time
}
