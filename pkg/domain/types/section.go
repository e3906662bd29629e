package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Section is a coarse category tag of a knowledge record, used to scope retrieval
type Section string

const (
	SectionLicensing Section = "licensing"
	SectionSpecies   Section = "species"
	SectionSeasons   Section = "seasons"
	SectionLocations Section = "locations"
)

// AllSections lists every valid section in a fixed order
func AllSections() []Section {
	return []Section{SectionLicensing, SectionSpecies, SectionSeasons, SectionLocations}
}

// sectionAliases maps corpus file spellings to canonical sections
var sectionAliases = map[string]Section{
	"licensing":         SectionLicensing,
	"licence":           SectionLicensing,
	"license":           SectionLicensing,
	"fishing_licence":   SectionLicensing,
	"fishing_license":   SectionLicensing,
	"species":           SectionSpecies,
	"seasons":           SectionSeasons,
	"fishing_seasons":   SectionSeasons,
	"locations":         SectionLocations,
	"hot_fishing_spots": SectionLocations,
	"fishing_spots":     SectionLocations,
}

// ParseSection resolves a section name or known alias to a canonical Section
func ParseSection(s string) (Section, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if section, ok := sectionAliases[key]; ok {
		return section, nil
	}
	return "", goerr.New("unknown section", goerr.V("section", s))
}

// Validate checks if the Section is one of the fixed enumeration
func (s Section) Validate() error {
	switch s {
	case SectionLicensing, SectionSpecies, SectionSeasons, SectionLocations:
		return nil
	}
	return goerr.New("invalid section", goerr.V("section", s))
}

// String returns the string representation of Section
func (s Section) String() string {
	return string(s)
}
