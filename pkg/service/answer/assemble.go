package answer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anglerlab/finbot/pkg/domain/model"
)

// Input carries everything the pipeline gathered for one query. Retrieval
// and Tool are both optional; an Input with neither still assembles, with
// NoMaterial set on the resulting prompt.
type Input struct {
	Query     string
	Retrieval model.RetrievalResult
	Tool      *model.ToolOutcome
}

// Prompt is an assembled generation request. Citations are a property of
// what was assembled, derived mechanically here and never from the oracle's
// generated text.
type Prompt struct {
	Text       string
	Citations  []model.Citation
	NoMaterial bool // neither retrieval nor tool contributed anything
}

// Assemble merges the retrieved chunks and/or tool outcome into one grounded
// generation prompt. Each block is delimited and labeled with its origin so
// the oracle can attribute claims to a specific source.
func Assemble(input *Input) *Prompt {
	p := &Prompt{}

	var sb strings.Builder
	sb.WriteString("Question: ")
	sb.WriteString(input.Query)
	sb.WriteString("\n")

	if !input.Retrieval.Empty() {
		sb.WriteString("\nContext from official documents:\n")
		seen := map[string]bool{}
		for _, scored := range input.Retrieval {
			chunk := scored.Chunk
			fmt.Fprintf(&sb, "\n[Source: %s/%s]\n%s\n", chunk.Source, chunk.Section, chunk.Text)

			citation := model.Citation{
				Kind:    model.CitationDocument,
				Source:  chunk.Source,
				Section: chunk.Section,
			}
			if !seen[citation.Label()] {
				seen[citation.Label()] = true
				p.Citations = append(p.Citations, citation)
			}
		}
	}

	if input.Tool != nil {
		if input.Tool.OK() {
			data, err := json.Marshal(input.Tool.Data)
			if err != nil {
				data = []byte(fmt.Sprintf("%v", input.Tool.Data))
			}
			fmt.Fprintf(&sb, "\n[Tool result: %s]\n%s\n", input.Tool.Tool, data)
		} else {
			failure := input.Tool.Failure
			fmt.Fprintf(&sb, "\n[Tool failure: %s (%s)]\n%s\n", input.Tool.Tool, failure.Kind, failure.Message)
			if len(failure.Supported) > 0 {
				fmt.Fprintf(&sb, "Supported values: %s\n", strings.Join(failure.Supported, ", "))
			}
		}
		p.Citations = append(p.Citations, model.Citation{
			Kind: model.CitationTool,
			Tool: input.Tool.Tool,
		})
	}

	if input.Retrieval.Empty() && input.Tool == nil {
		p.NoMaterial = true
		sb.WriteString("\nNo supporting material was found for this question.\n")
		sb.WriteString("State explicitly that the requested information is not available in the provided information. Do not infer or invent an answer.\n")
	} else {
		sb.WriteString("\nAnswer the question using only the material above. If the material does not contain the answer, say so explicitly.\n")
	}

	p.Text = sb.String()
	return p
}

// Verify reports whether a quoted fact appears in the retrieved chunks. Used
// by evaluation to check that a citation is backed by retrieval.
func Verify(citation string, retrieval model.RetrievalResult) bool {
	needle := strings.ToLower(citation)
	for _, scored := range retrieval {
		if strings.Contains(strings.ToLower(scored.Chunk.Text), needle) {
			return true
		}
	}
	return false
}
