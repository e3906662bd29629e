package tools

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/pelletier/go-toml/v2"

	"github.com/anglerlab/finbot/pkg/domain/model"
	"github.com/anglerlab/finbot/pkg/domain/types"
)

// SizeTable maps a species name to its legal minimum size in centimeters
type SizeTable map[string]float64

// DefaultSizeTable is the built-in Tasmania minimum-size table
func DefaultSizeTable() SizeTable {
	return SizeTable{
		"brown trout":     25,
		"rainbow trout":   22,
		"atlantic salmon": 30,
		"rock lobster":    10.5,
		"abalone":         13.2,
	}
}

// sizeTableFile is the TOML shape of an external size table
type sizeTableFile struct {
	Species []sizeEntry `toml:"species"`
}

type sizeEntry struct {
	Name      string  `toml:"name"`
	MinimumCM float64 `toml:"minimum_cm"`
}

// LoadSizeTable loads a minimum-size table from a TOML file
func LoadSizeTable(path string) (SizeTable, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read size table", goerr.V("path", path))
	}

	var file sizeTableFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML size table", goerr.V("path", path))
	}

	table := make(SizeTable, len(file.Species))
	for _, entry := range file.Species {
		if entry.Name == "" {
			return nil, goerr.New("size table entry has no name")
		}
		if entry.MinimumCM < 0 {
			return nil, goerr.New("minimum size must not be negative",
				goerr.V("species", entry.Name), goerr.V("minimum_cm", entry.MinimumCM))
		}
		table[entry.Name] = entry.MinimumCM
	}
	if len(table) == 0 {
		return nil, goerr.New("size table is empty", goerr.V("path", path))
	}

	return table, nil
}

// legalSizeTool checks a caught fish against the legal minimum-size table.
// It is a pure function of its table: no shared mutable state.
type legalSizeTool struct {
	table SizeTable
}

// NewLegalSizeTool builds the check_legal_size tool over the given table
// (nil means the built-in table).
func NewLegalSizeTool(table SizeTable) *legalSizeTool {
	if table == nil {
		table = DefaultSizeTable()
	}
	return &legalSizeTool{table: table}
}

func (t *legalSizeTool) Name() types.ToolName {
	return types.ToolCheckLegalSize
}

func (t *legalSizeTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        types.ToolCheckLegalSize.String(),
		Description: "Check if a caught fish meets the legal minimum size requirements in Tasmania. Returns whether the fish is legal to keep or must be released.",
		Parameters: map[string]*gollem.Parameter{
			"species": {
				Type:        gollem.TypeString,
				Description: "The fish species name (e.g. 'brown trout', 'rock lobster')",
				Required:    true,
			},
			"length_cm": {
				Type:        gollem.TypeNumber,
				Description: "The length of the caught fish in centimeters",
				Required:    true,
			},
		},
	}
}

func (t *legalSizeTool) Invoke(ctx context.Context, params map[string]any) *model.ToolOutcome {
	species, err := extractString(params, "species")
	if err != nil {
		return model.NewToolFailure(t.Name(), types.FailureInvalidParameters, err.Error())
	}

	length, err := extractNumber(params, "length_cm")
	if err != nil {
		return model.NewToolFailure(t.Name(), types.FailureInvalidParameters, err.Error())
	}
	if length < 0 {
		return model.NewToolFailure(t.Name(), types.FailureInvalidParameters,
			"length_cm must not be negative")
	}

	minimum, ok := t.table[normalizeSpecies(species)]
	if !ok {
		return model.NewToolFailure(t.Name(), types.FailureUnsupportedInput,
			fmt.Sprintf("no size rule for species %q; supported species: %s",
				species, joinSorted(t.supported())),
			t.supported()...)
	}

	legal := length >= minimum
	return model.NewToolSuccess(t.Name(), map[string]any{
		"species":    normalizeSpecies(species),
		"length_cm":  length,
		"minimum_cm": minimum,
		"legal":      legal,
		"margin_cm":  round1(length - minimum),
	})
}

func (t *legalSizeTool) supported() []string {
	names := make([]string, 0, len(t.table))
	for name := range t.table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeSpecies(s string) string {
	return joinFields(s)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
