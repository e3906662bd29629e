package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/anglerlab/finbot/pkg/domain/model"
	"github.com/anglerlab/finbot/pkg/service/corpus"
	"github.com/anglerlab/finbot/pkg/service/normalize"
	"github.com/anglerlab/finbot/pkg/usecase"
)

// Corpus holds configuration for corpus loading, chunking and retrieval
type Corpus struct {
	dir          string
	chunkSize    int
	chunkOverlap int
	topK         int
	tablesPath   string
}

// Flags returns CLI flags for corpus configuration
func (c *Corpus) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "corpus-dir",
			Usage:       "Directory containing corpus JSON documents",
			Value:       "./data",
			Sources:     cli.EnvVars("FINBOT_CORPUS_DIR"),
			Destination: &c.dir,
		},
		&cli.IntFlag{
			Name:        "chunk-size",
			Usage:       "Chunk window size in words",
			Value:       model.DefaultChunkSize,
			Sources:     cli.EnvVars("FINBOT_CHUNK_SIZE"),
			Destination: &c.chunkSize,
		},
		&cli.IntFlag{
			Name:        "chunk-overlap",
			Usage:       "Overlap between consecutive chunks in words",
			Value:       model.DefaultChunkOverlap,
			Sources:     cli.EnvVars("FINBOT_CHUNK_OVERLAP"),
			Destination: &c.chunkOverlap,
		},
		&cli.IntFlag{
			Name:        "top-k",
			Usage:       "Number of chunks retrieved per query",
			Value:       usecase.DefaultTopK,
			Sources:     cli.EnvVars("FINBOT_TOP_K"),
			Destination: &c.topK,
		},
		&cli.StringFlag{
			Name:        "normalize-tables",
			Usage:       "TOML file overriding the built-in synonym and section tables",
			Sources:     cli.EnvVars("FINBOT_NORMALIZE_TABLES"),
			Destination: &c.tablesPath,
		},
	}
}

// LogAttrs returns log attributes for the corpus configuration
func (c *Corpus) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("dir", c.dir),
		slog.Int("chunk_size", c.chunkSize),
		slog.Int("chunk_overlap", c.chunkOverlap),
		slog.Int("top_k", c.topK),
		slog.String("tables_path", c.tablesPath),
	}
}

// Dir returns the corpus directory path
func (c *Corpus) Dir() string {
	return c.dir
}

// TopK returns the configured retrieval size
func (c *Corpus) TopK() int {
	return c.topK
}

// Chunker builds a chunker from the configured window parameters
func (c *Corpus) Chunker() (*corpus.Chunker, error) {
	return corpus.NewChunker(c.chunkSize, c.chunkOverlap)
}

// Normalizer builds the query normalizer, loading override tables when a
// path is configured and falling back to the built-in tables otherwise.
func (c *Corpus) Normalizer() (*normalize.Normalizer, error) {
	tables := normalize.DefaultTables()
	if c.tablesPath != "" {
		loaded, err := normalize.LoadTables(c.tablesPath)
		if err != nil {
			return nil, err
		}
		tables = loaded
	}
	return normalize.New(tables)
}
