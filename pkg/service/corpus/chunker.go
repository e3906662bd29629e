package corpus

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/anglerlab/finbot/pkg/domain/model"
	"github.com/anglerlab/finbot/pkg/domain/types"
	"github.com/anglerlab/finbot/pkg/utils/logging"
)

// Chunker converts knowledge records into overlapping word-window chunks.
type Chunker struct {
	size    int // chunk size in words
	overlap int // words shared between consecutive chunks of a record
}

// NewChunker validates the window parameters and returns a Chunker.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, goerr.New("chunk size must be positive", goerr.V("size", size))
	}
	if overlap < 0 || overlap >= size {
		return nil, goerr.New("overlap must be non-negative and smaller than chunk size",
			goerr.V("size", size), goerr.V("overlap", overlap))
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Chunk serializes each record to canonical text and splits it into
// overlapping windows. Chunk IDs are sequenced per source+section in input
// order, so rebuilding from the same records yields identical IDs. A record
// that fails serialization is skipped and logged, never aborting the batch.
func (c *Chunker) Chunk(ctx context.Context, records []model.KnowledgeRecord) []model.Chunk {
	logger := logging.From(ctx)

	type seqKey struct {
		source  string
		section types.Section
	}
	seq := map[seqKey]int{}

	var chunks []model.Chunk
	for _, record := range records {
		text, err := serializeRecord(&record)
		if err != nil {
			logger.Warn("skipping record that failed serialization",
				"source", record.Source, "section", record.Section.String(), "key", record.Key,
				"error", err.Error())
			continue
		}

		words := strings.Fields(text)
		if len(words) == 0 {
			continue
		}

		topics := extractTopics(record.Section, strings.ToLower(text))
		key := seqKey{source: record.Source, section: record.Section}

		for _, window := range splitWindows(words, c.size, c.overlap) {
			chunks = append(chunks, model.Chunk{
				ID:      model.NewChunkID(record.Source, record.Section, seq[key]),
				Source:  record.Source,
				Section: record.Section,
				Text:    strings.Join(window, " "),
				Topics:  topics,
			})
			seq[key]++
		}
	}

	return chunks
}

// splitWindows slides a window of size words forward by size-overlap each
// step. The final window of a record may be shorter than size; a text shorter
// than size yields exactly one window.
func splitWindows(words []string, size, overlap int) [][]string {
	step := size - overlap

	var windows [][]string
	for i := 0; i < len(words); i += step {
		end := i + size
		if end > len(words) {
			end = len(words)
		}
		windows = append(windows, words[i:end])
		if end == len(words) {
			break
		}
	}
	return windows
}

// serializeRecord renders a record as readable text preserving field order so
// that similarity search can match on field names and values.
func serializeRecord(record *model.KnowledgeRecord) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== %s: %s ===\n", strings.ToUpper(record.Section.String()), record.Key)

	for _, field := range record.Fields {
		if err := writeField(&sb, field, 0); err != nil {
			return "", err
		}
	}

	return sb.String(), nil
}

func writeField(sb *strings.Builder, field model.Field, depth int) error {
	indent := strings.Repeat("  ", depth)
	name := titleizeFieldName(field.Name)

	switch v := field.Value.(type) {
	case []model.Field:
		fmt.Fprintf(sb, "%s%s:\n", indent, name)
		for _, sub := range v {
			if err := writeField(sb, sub, depth+1); err != nil {
				return err
			}
		}
	case []any:
		fmt.Fprintf(sb, "%s%s:\n", indent, name)
		for _, item := range v {
			rendered, err := renderScalar(item)
			if err != nil {
				return err
			}
			fmt.Fprintf(sb, "%s  • %s\n", indent, rendered)
		}
	default:
		rendered, err := renderScalar(v)
		if err != nil {
			return err
		}
		fmt.Fprintf(sb, "%s%s: %s\n", indent, name, rendered)
	}

	return nil
}

func renderScalar(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case bool:
		return fmt.Sprintf("%t", t), nil
	case nil:
		return "unknown", nil
	case fmt.Stringer:
		return t.String(), nil
	case []model.Field:
		// Nested objects inside arrays are flattened to "name: value" pairs
		parts := make([]string, 0, len(t))
		for _, f := range t {
			rendered, err := renderScalar(f.Value)
			if err != nil {
				return "", err
			}
			parts = append(parts, fmt.Sprintf("%s: %s", titleizeFieldName(f.Name), rendered))
		}
		return strings.Join(parts, ", "), nil
	default:
		return "", goerr.New("unsupported field value type", goerr.V("value", v))
	}
}

func titleizeFieldName(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}
