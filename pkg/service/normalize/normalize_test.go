package normalize_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/anglerlab/finbot/pkg/domain/types"
	"github.com/anglerlab/finbot/pkg/service/normalize"
)

func newNormalizer(t *testing.T) *normalize.Normalizer {
	t.Helper()
	n, err := normalize.New(nil)
	gt.NoError(t, err).Required()
	return n
}

func TestNormalizeSynonyms(t *testing.T) {
	n := newNormalizer(t)

	cases := []struct {
		input    string
		expected string
	}{
		{"can I keep a brownie", "can I keep a brown trout"},
		{"bag limit for rainbows", "bag limit for rainbow trout"},
		{"crayfish season", "rock lobster season"},
		{"cray pots", "rock lobster pots"},
		{"where to catch couta", "where to catch barracouta"},
		{"flat head spots", "flathead spots"},
		{"floathead size", "flathead size"},
		{"abolone licence", "abalone licence"},
		// canonical terms pass through untouched
		{"brown trout bag limit", "brown trout bag limit"},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			canonical, _ := n.Normalize(tc.input)
			gt.Value(t, canonical).Equal(tc.expected)
		})
	}
}

func TestNormalizeSynonymsCaseInsensitive(t *testing.T) {
	n := newNormalizer(t)

	canonical, _ := n.Normalize("Can I keep a BROWNIE?")
	gt.String(t, canonical).Contains("brown trout")
}

func TestNormalizeSectionInference(t *testing.T) {
	n := newNormalizer(t)

	cases := []struct {
		input    string
		expected types.Section
	}{
		{"do I need a licence", types.SectionLicensing},
		{"what permit do I need", types.SectionLicensing},
		{"bag limit for flathead", types.SectionSpecies},
		{"minimum size for abalone", types.SectionSpecies},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			_, section := n.Normalize(tc.input)
			gt.Value(t, section).NotEqual(nil)
			gt.Value(t, *section).Equal(tc.expected)
		})
	}

	_, section := n.Normalize("when does trout season open")
	gt.Value(t, *section).Equal(types.SectionSeasons)

	_, section = n.Normalize("good fishing spot near hobart")
	gt.Value(t, *section).Equal(types.SectionLocations)
}

func TestNormalizeFirstRuleWins(t *testing.T) {
	n := newNormalizer(t)

	// Both licensing ("licence") and species ("bag limit") keywords appear;
	// rules run in table order so licensing wins.
	_, section := n.Normalize("does my licence cover the bag limit")
	gt.Value(t, *section).Equal(types.SectionLicensing)
}

func TestNormalizeNoSection(t *testing.T) {
	n := newNormalizer(t)

	canonical, section := n.Normalize("hello there")
	gt.Value(t, canonical).Equal("hello there")
	gt.Value(t, section).Equal((*types.Section)(nil))
}

func TestLoadTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.toml")
	content := `
[synonyms]
salmonids = "atlantic salmon"

[[section]]
section = "species"
keywords = ["how big"]
`
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()

	tables, err := normalize.LoadTables(path)
	gt.NoError(t, err).Required()

	n, err := normalize.New(tables)
	gt.NoError(t, err).Required()

	canonical, section := n.Normalize("how big do salmonids get")
	gt.String(t, canonical).Contains("atlantic salmon")
	gt.Value(t, *section).Equal(types.SectionSpecies)
}

func TestLoadTablesInvalidSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.toml")
	content := `
[[section]]
section = "tackle"
keywords = ["rod"]
`
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()

	_, err := normalize.LoadTables(path)
	gt.Error(t, err)
}
