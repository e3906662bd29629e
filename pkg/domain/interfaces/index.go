package interfaces

import (
	"context"

	"github.com/anglerlab/finbot/pkg/domain/model"
	"github.com/anglerlab/finbot/pkg/domain/types"
)

// Index is the read-only retrieval contract over the embedded corpus. The
// structure is built once during startup and has no mutation API afterwards;
// re-ingestion replaces it wholesale.
type Index interface {
	// Search embeds the query and returns at most topK chunks ordered by
	// descending cosine similarity. A non-nil section restricts candidates to
	// that section; a filtered result smaller than topK is never backfilled
	// from other sections.
	Search(ctx context.Context, query string, topK int, section *types.Section) (model.RetrievalResult, error)
}

// Router produces one routing decision per query. Implementations must repair
// malformed oracle output to the retrieval-only default rather than failing.
type Router interface {
	Route(ctx context.Context, query string) *model.RouteDecision
}
