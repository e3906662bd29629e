package model

import (
	"fmt"

	"github.com/anglerlab/finbot/pkg/domain/types"
)

// EmbeddingDimension is the dimension of the embedding vector.
// Gemini text-embedding-004 uses 768 dimensions.
const EmbeddingDimension = 768

// Default chunking parameters in words
const (
	DefaultChunkSize    = 300
	DefaultChunkOverlap = 50
)

// ChunkID is a stable identifier derived from source, section and sequence
type ChunkID string

// NewChunkID derives the chunk identifier. Rebuilding the index from the same
// records yields the same IDs, which keeps ranking tie-breaks deterministic.
func NewChunkID(source string, section types.Section, seq int) ChunkID {
	return ChunkID(fmt.Sprintf("%s:%s:%d", source, section, seq))
}

// Chunk is the unit of retrieval: a bounded, overlapping slice of a knowledge
// record's canonical text. Chunks are created during ingestion and never
// mutated; re-ingestion replaces them wholesale.
type Chunk struct {
	ID        ChunkID
	Source    string
	Section   types.Section
	Text      string
	Topics    []string // keywords extracted once per record
	Embedding []float32
}

// ScoredChunk pairs a chunk with its cosine similarity to a query
type ScoredChunk struct {
	Chunk *Chunk
	Score float64 // cosine similarity in [-1, 1]
}

// RetrievalResult is an ordered sequence of scored chunks, descending by
// similarity, at most top-k long.
type RetrievalResult []ScoredChunk

// Empty reports whether no chunks were retrieved
func (r RetrievalResult) Empty() bool {
	return len(r) == 0
}
