package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/anglerlab/finbot/pkg/cli/config"
	"github.com/anglerlab/finbot/pkg/domain/types"
	"github.com/anglerlab/finbot/pkg/service/corpus"
)

// cmdIngest loads and chunks the corpus without embedding it, reporting what
// an index build would contain. Useful for checking documents before serving.
func cmdIngest() *cli.Command {
	var corpusCfg config.Corpus

	return &cli.Command{
		Name:  "ingest",
		Usage: "Load and chunk the corpus, then print index statistics (no embedding calls)",
		Flags: corpusCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			records, err := corpus.LoadDir(ctx, corpusCfg.Dir())
			if err != nil {
				return err
			}

			chunker, err := corpusCfg.Chunker()
			if err != nil {
				return err
			}
			chunks := chunker.Chunk(ctx, records)

			bySection := map[types.Section]int{}
			sources := map[string]bool{}
			for _, chunk := range chunks {
				bySection[chunk.Section]++
				sources[chunk.Source] = true
			}

			fmt.Printf("Corpus directory: %s\n", corpusCfg.Dir())
			fmt.Printf("Documents: %d\n", len(sources))
			fmt.Printf("Records: %d\n", len(records))
			fmt.Printf("Chunks: %d\n", len(chunks))
			for _, section := range types.AllSections() {
				if n := bySection[section]; n > 0 {
					fmt.Printf("  %s: %d\n", section, n)
				}
			}
			return nil
		},
	}
}
