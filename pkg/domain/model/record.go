package model

import (
	"github.com/anglerlab/finbot/pkg/domain/types"
)

// Field is a single named value of a knowledge record. Fields keep the order
// they appear in the source document so that canonical serialization is stable.
type Field struct {
	Name  string
	Value any
}

// KnowledgeRecord is one structured entry of the corpus (a species, a
// location, a license type, ...). Records are loaded once at startup and are
// read-only afterwards.
type KnowledgeRecord struct {
	Key     string        // stable key within the section (e.g. "brown trout")
	Source  string        // originating file name without extension
	Section types.Section // coarse category tag
	Fields  []Field       // ordered key/value fields
}
