package index

import (
	"context"
	"math"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/anglerlab/finbot/pkg/domain/model"
	"github.com/anglerlab/finbot/pkg/domain/types"
	"github.com/anglerlab/finbot/pkg/utils/logging"
)

// embedBatchSize bounds how many chunk texts are sent per embedding request
const embedBatchSize = 64

// Index is the in-memory vector index over the embedded corpus. It is
// constructed fully by Build and has no mutation API afterwards; re-ingestion
// builds a replacement. Safe for unlimited concurrent readers.
type Index struct {
	llmClient gollem.LLMClient
	chunks    []model.Chunk // insertion order defines the ranking tie-break
}

// Build embeds every chunk with the fixed embedding function and returns the
// finished index. An empty chunk set yields a usable, empty index.
func Build(ctx context.Context, llmClient gollem.LLMClient, chunks []model.Chunk) (*Index, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	idx := &Index{
		llmClient: llmClient,
		chunks:    make([]model.Chunk, len(chunks)),
	}
	copy(idx.chunks, chunks)

	for start := 0; start < len(idx.chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(idx.chunks) {
			end = len(idx.chunks)
		}

		texts := make([]string, 0, end-start)
		for _, chunk := range idx.chunks[start:end] {
			texts = append(texts, chunk.Text)
		}

		embeddings, err := llmClient.GenerateEmbedding(ctx, model.EmbeddingDimension, texts)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to embed chunk batch",
				goerr.V("start", start), goerr.V("count", len(texts)))
		}
		if len(embeddings) != len(texts) {
			return nil, goerr.New("embedding count mismatch",
				goerr.V("want", len(texts)), goerr.V("got", len(embeddings)))
		}

		for i, embedding := range embeddings {
			idx.chunks[start+i].Embedding = toFloat32(embedding)
		}
	}

	logging.From(ctx).Info("index built", "chunks", len(idx.chunks))
	return idx, nil
}

// Size returns the number of indexed chunks
func (x *Index) Size() int {
	return len(x.chunks)
}

// Search embeds the query and returns at most topK chunks ordered by
// descending cosine similarity, ties broken by chunk insertion order. A
// non-nil section restricts candidates to that section; the result is never
// backfilled from other sections. An empty index returns an empty result.
func (x *Index) Search(ctx context.Context, query string, topK int, section *types.Section) (model.RetrievalResult, error) {
	if len(x.chunks) == 0 || topK <= 0 {
		return model.RetrievalResult{}, nil
	}

	embeddings, err := x.llmClient.GenerateEmbedding(ctx, model.EmbeddingDimension, []string{query})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query", goerr.V("query", query))
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, goerr.New("embedding generation returned empty result")
	}
	queryVec := toFloat32(embeddings[0])

	var candidates []model.ScoredChunk
	for i := range x.chunks {
		chunk := &x.chunks[i]
		if section != nil && chunk.Section != *section {
			continue
		}
		candidates = append(candidates, model.ScoredChunk{
			Chunk: chunk,
			Score: cosineSimilarity(queryVec, chunk.Embedding),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if topK > len(candidates) {
		topK = len(candidates)
	}
	return model.RetrievalResult(candidates[:topK]), nil
}

func toFloat32(v []float64) []float32 {
	result := make([]float32, len(v))
	for i, f := range v {
		result[i] = float32(f)
	}
	return result
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}

	return dot / denom
}
