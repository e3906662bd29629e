package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/anglerlab/finbot/pkg/domain/interfaces"
	"github.com/anglerlab/finbot/pkg/domain/model"
	"github.com/anglerlab/finbot/pkg/service/answer"
	"github.com/anglerlab/finbot/pkg/service/normalize"
	"github.com/anglerlab/finbot/pkg/utils/logging"
)

// DefaultTopK is the default number of chunks retrieved per query
const DefaultTopK = 5

// UseCase runs the full question pipeline: normalize, route, gather
// (retrieval and/or tool, concurrently when both), assemble, synthesize.
// Every query yields exactly one GroundedAnswer; no failure path escapes as
// an unhandled fault.
type UseCase struct {
	normalizer  *normalize.Normalizer
	router      interfaces.Router
	index       interfaces.Index
	registry    interfaces.ToolRegistry
	synthesizer *answer.Service
	topK        int
}

// Option is a functional option for UseCase configuration
type Option func(*UseCase)

// WithTopK overrides the retrieval result size
func WithTopK(k int) Option {
	return func(u *UseCase) {
		u.topK = k
	}
}

// New wires the pipeline components together
func New(
	normalizer *normalize.Normalizer,
	rt interfaces.Router,
	idx interfaces.Index,
	registry interfaces.ToolRegistry,
	synthesizer *answer.Service,
	opts ...Option,
) (*UseCase, error) {
	if normalizer == nil || rt == nil || idx == nil || registry == nil || synthesizer == nil {
		return nil, goerr.New("all pipeline components are required")
	}

	u := &UseCase{
		normalizer:  normalizer,
		router:      rt,
		index:       idx,
		registry:    registry,
		synthesizer: synthesizer,
		topK:        DefaultTopK,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u, nil
}

// Ask answers one user question. There is no conversational state across
// calls.
func (u *UseCase) Ask(ctx context.Context, query string) *model.GroundedAnswer {
	logger := logging.From(ctx)
	started := time.Now()

	if strings.TrimSpace(query) == "" {
		return &model.GroundedAnswer{
			ID:        model.NewAnswerID(),
			Query:     query,
			Answer:    "Please ask a question about fishing in Tasmania.",
			NoContent: true,
			CreatedAt: time.Now().UTC(),
		}
	}

	canonical, inferredSection := u.normalizer.Normalize(query)

	decision := u.router.Route(ctx, canonical)
	if decision.Kind() == model.RouteGeneralChat {
		return u.synthesizer.GeneralChat(ctx, query)
	}

	// Retrieval and tool invocation are independent; run them concurrently
	// and join before assembling. Neither branch fails the other: retrieval
	// errors degrade to an empty result and tool faults are already
	// normalized into the outcome.
	var retrieval model.RetrievalResult
	var outcome *model.ToolOutcome

	eg, gatherCtx := errgroup.WithContext(ctx)

	if decision.NeedsRetrieval {
		eg.Go(func() error {
			result, err := u.index.Search(gatherCtx, canonical, u.topK, inferredSection)
			if err != nil {
				logger.Error("retrieval failed, continuing without documents", "error", err.Error())
				return nil
			}
			retrieval = result
			return nil
		})
	}

	if decision.NeedsTool {
		eg.Go(func() error {
			outcome = u.registry.Invoke(gatherCtx, decision.ToolName, decision.ToolParams)
			return nil
		})
	}

	// Branches never return errors; Wait is the join point.
	_ = eg.Wait()

	prompt := answer.Assemble(&answer.Input{
		Query:     query,
		Retrieval: retrieval,
		Tool:      outcome,
	})

	ga := u.synthesizer.Synthesize(ctx, query, prompt)

	logger.Info("query answered",
		"route", string(decision.Kind()),
		"retrieved", len(retrieval),
		"citations", len(ga.Citations),
		"no_content", ga.NoContent,
		"degraded", ga.Degraded,
		"duration", time.Since(started),
	)
	return ga
}
