package normalize

import (
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/anglerlab/finbot/pkg/domain/types"
)

// Tables holds the synonym substitutions and section inference rules. They
// are built once at startup and never mutated during query processing.
type Tables struct {
	Synonyms map[string]string `toml:"synonyms"`
	Sections []SectionRule     `toml:"section"`
}

// SectionRule maps trigger keywords to a candidate section. Rules are
// evaluated in order; the first match wins.
type SectionRule struct {
	Section  string   `toml:"section"`
	Keywords []string `toml:"keywords"`
}

// Validate checks that every rule names a valid section and has keywords
func (t *Tables) Validate() error {
	for _, rule := range t.Sections {
		if _, err := types.ParseSection(rule.Section); err != nil {
			return goerr.Wrap(err, "invalid section rule")
		}
		if len(rule.Keywords) == 0 {
			return goerr.New("section rule has no keywords", goerr.V("section", rule.Section))
		}
	}
	return nil
}

// LoadTables loads normalization tables from a TOML file
func LoadTables(path string) (*Tables, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read tables file", goerr.V("path", path))
	}

	var tables Tables
	if err := toml.Unmarshal(data, &tables); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML tables", goerr.V("path", path))
	}

	if err := tables.Validate(); err != nil {
		return nil, goerr.Wrap(err, "tables validation failed", goerr.V("path", path))
	}

	return &tables, nil
}

// DefaultTables returns the built-in tables for the Tasmania fishing corpus
func DefaultTables() *Tables {
	return &Tables{
		Synonyms: map[string]string{
			"brownie":    "brown trout",
			"rainbows":   "rainbow trout",
			"crayfish":   "rock lobster",
			"cray":       "rock lobster",
			"couta":      "barracouta",
			"flat head":  "flathead",
			"floathead":  "flathead",
			"abolone":    "abalone",
		},
		Sections: []SectionRule{
			{
				Section:  types.SectionLicensing.String(),
				Keywords: []string{"license", "licence", "permit", "need to fish"},
			},
			{
				Section:  types.SectionSpecies.String(),
				Keywords: []string{"bag limit", "size limit", "legal size", "minimum size", "can i keep"},
			},
			{
				Section:  types.SectionSeasons.String(),
				Keywords: []string{"season", "when", "open", "closed"},
			},
			{
				Section: types.SectionLocations.String(),
				Keywords: []string{
					"where", "location", "spot", "lake", "river", "beach", "bay",
					"jetty", "fishing spot", "good place", "best place", "catch at",
				},
			},
		},
	}
}

type synonymRule struct {
	pattern     *regexp.Regexp
	replacement string
}

type sectionRule struct {
	section  types.Section
	keywords []string
}

// Normalizer canonicalizes query terms and infers a candidate section. It is
// a pure function of its tables: no side effects, safe for concurrent use.
type Normalizer struct {
	synonyms []synonymRule
	sections []sectionRule
}

// New builds a Normalizer from the given tables (nil means defaults)
func New(tables *Tables) (*Normalizer, error) {
	if tables == nil {
		tables = DefaultTables()
	}
	if err := tables.Validate(); err != nil {
		return nil, err
	}

	n := &Normalizer{}

	// Sorted iteration keeps replacement order deterministic; longer terms
	// first so "flat head" wins over "flat".
	terms := make([]string, 0, len(tables.Synonyms))
	for term := range tables.Synonyms {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) > len(terms[j])
		}
		return terms[i] < terms[j]
	})
	for _, term := range terms {
		pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to compile synonym pattern", goerr.V("term", term))
		}
		n.synonyms = append(n.synonyms, synonymRule{
			pattern:     pattern,
			replacement: tables.Synonyms[term],
		})
	}

	for _, rule := range tables.Sections {
		section, err := types.ParseSection(rule.Section)
		if err != nil {
			return nil, err
		}
		n.sections = append(n.sections, sectionRule{section: section, keywords: rule.Keywords})
	}

	return n, nil
}

// Normalize replaces known synonyms with the canonical corpus terms and
// infers a candidate section by keyword matching. The inferred section is
// advisory only: callers may ignore it. A nil section means no rule matched
// and retrieval is unfiltered.
func (n *Normalizer) Normalize(rawQuery string) (string, *types.Section) {
	canonical := rawQuery
	for _, rule := range n.synonyms {
		canonical = rule.pattern.ReplaceAllString(canonical, rule.replacement)
	}

	lower := strings.ToLower(canonical)
	for _, rule := range n.sections {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				section := rule.section
				return canonical, &section
			}
		}
	}

	return canonical, nil
}
