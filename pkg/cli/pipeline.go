package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/anglerlab/finbot/pkg/cli/config"
	"github.com/anglerlab/finbot/pkg/service/answer"
	"github.com/anglerlab/finbot/pkg/service/corpus"
	"github.com/anglerlab/finbot/pkg/service/index"
	"github.com/anglerlab/finbot/pkg/service/router"
	"github.com/anglerlab/finbot/pkg/usecase"
	"github.com/anglerlab/finbot/pkg/utils/logging"
)

// buildPipeline loads the corpus, builds the embedding index and wires all
// pipeline components into a ready usecase. Shared by serve and chat.
func buildPipeline(ctx context.Context, geminiCfg *config.Gemini, corpusCfg *config.Corpus, toolsCfg *config.Tools) (*usecase.UseCase, error) {
	llmClient, err := geminiCfg.Configure(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure LLM client")
	}

	records, err := corpus.LoadDir(ctx, corpusCfg.Dir())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load corpus")
	}

	chunker, err := corpusCfg.Chunker()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure chunker")
	}
	chunks := chunker.Chunk(ctx, records)

	logging.Default().Info("corpus loaded", "records", len(records), "chunks", len(chunks))

	idx, err := index.Build(ctx, llmClient, chunks)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build embedding index")
	}

	normalizer, err := corpusCfg.Normalizer()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure normalizer")
	}

	registry, err := toolsCfg.Configure()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure tools")
	}

	rt, err := router.New(llmClient, registry)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure router")
	}

	synthesizer, err := answer.New(llmClient)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure synthesizer")
	}

	return usecase.New(normalizer, rt, idx, registry, synthesizer,
		usecase.WithTopK(corpusCfg.TopK()))
}
