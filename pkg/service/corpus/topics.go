package corpus

import (
	"strings"

	"github.com/anglerlab/finbot/pkg/domain/types"
)

// Fixed keyword tables for topic extraction. These mirror the vocabulary of
// the Tasmania fishing corpus and are not configurable.
var (
	licensingTopics = []string{"freshwater", "saltwater", "marine", "recreational"}

	speciesTopics = []string{"trout", "salmon", "flathead", "bream", "tuna"}

	locationRegions = []string{
		"derwent", "east coast", "st helens", "bruny", "entrecasteaux",
		"tasman", "flinders", "tamar", "devonport", "port sorell",
		"north west", "king island", "macquarie", "hobart",
	}
	locationTypes = []string{
		"lake", "river", "creek", "dam", "beach", "bay",
		"jetty", "wharf", "coast", "peninsula", "island",
	}
	locationSpecies = []string{
		"salmon", "flathead", "bream", "snapper", "whiting",
		"calamari", "squid", "barracouta", "kingfish",
	}
)

// extractTopics computes the topic keyword set for a record once; every chunk
// derived from the record carries the same topics. Input text must be
// lowercased by the caller.
func extractTopics(section types.Section, lower string) []string {
	topics := []string{section.String()}

	contains := func(keyword string) bool {
		return strings.Contains(lower, keyword)
	}

	switch section {
	case types.SectionLicensing:
		for _, kw := range licensingTopics {
			if contains(kw) {
				topics = append(topics, kw)
			}
		}

	case types.SectionSpecies:
		for _, kw := range speciesTopics {
			if contains(kw) {
				topics = append(topics, kw)
			}
		}
		if contains("bag limit") {
			topics = append(topics, "bag_limit")
		}
		if contains("size limit") || contains("minimum size") {
			topics = append(topics, "size_limit")
		}

	case types.SectionSeasons:
		if contains("open") {
			topics = append(topics, "open_season")
		}
		if contains("closed") {
			topics = append(topics, "closed_season")
		}

	case types.SectionLocations:
		for _, kw := range locationRegions {
			if contains(kw) {
				topics = append(topics, kw)
			}
		}
		for _, kw := range locationTypes {
			if contains(kw) {
				topics = append(topics, kw)
			}
		}
		for _, kw := range locationSpecies {
			if contains(kw) {
				topics = append(topics, kw)
			}
		}
		if contains("shore") {
			topics = append(topics, "shore_fishing")
		}
		if contains("boat") {
			topics = append(topics, "boat_fishing")
		}
	}

	return dedupe(topics)
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	return result
}
