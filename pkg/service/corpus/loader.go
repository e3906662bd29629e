package corpus

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/anglerlab/finbot/pkg/domain/model"
	"github.com/anglerlab/finbot/pkg/domain/types"
	"github.com/anglerlab/finbot/pkg/utils/logging"
)

// LoadDir loads every *.json knowledge file in dir and returns the records in
// file name order. The corpus is loaded once at startup and read-only after.
func LoadDir(ctx context.Context, dir string) ([]model.KnowledgeRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read corpus directory", goerr.V("dir", dir))
	}

	var records []model.KnowledgeRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		fileRecords, err := LoadFile(ctx, filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load corpus file", goerr.V("file", entry.Name()))
		}
		records = append(records, fileRecords...)
	}

	return records, nil
}

// LoadFile loads one knowledge file. The top level maps section names to
// objects whose entries each become a KnowledgeRecord. Field order in the
// file is preserved so canonical serialization stays stable across loads.
func LoadFile(ctx context.Context, path string) ([]model.KnowledgeRecord, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read knowledge file", goerr.V("path", path))
	}

	source := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return parse(ctx, source, data)
}

func parse(ctx context.Context, source string, data []byte) ([]model.KnowledgeRecord, error) {
	logger := logging.From(ctx)

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, goerr.Wrap(err, "knowledge file must be a JSON object", goerr.V("source", source))
	}

	var records []model.KnowledgeRecord
	for dec.More() {
		sectionName, err := nextKey(dec)
		if err != nil {
			return nil, err
		}

		section, err := types.ParseSection(sectionName)
		if err != nil {
			// Unknown sections are skipped, not fatal: the fixed enumeration
			// defines what is retrievable.
			logger.Warn("skipping unknown section", "source", source, "section", sectionName)
			if err := skipValue(dec); err != nil {
				return nil, err
			}
			continue
		}

		value, err := parseValue(dec)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to parse section", goerr.V("section", sectionName))
		}

		fields, ok := value.([]model.Field)
		if !ok {
			logger.Warn("section content is not an object, skipping", "source", source, "section", sectionName)
			continue
		}

		for _, entry := range fields {
			record := model.KnowledgeRecord{
				Key:     entry.Name,
				Source:  source,
				Section: section,
			}
			if sub, ok := entry.Value.([]model.Field); ok {
				record.Fields = sub
			} else {
				record.Fields = []model.Field{{Name: entry.Name, Value: entry.Value}}
			}
			records = append(records, record)
		}
	}

	return records, nil
}

// parseValue reads one JSON value preserving object field order. Objects are
// returned as []model.Field, arrays as []any, scalars as string/json.Number/
// bool/nil.
func parseValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read JSON token")
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			var fields []model.Field
			for dec.More() {
				key, err := nextKey(dec)
				if err != nil {
					return nil, err
				}
				value, err := parseValue(dec)
				if err != nil {
					return nil, err
				}
				fields = append(fields, model.Field{Name: key, Value: value})
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, goerr.Wrap(err, "unterminated JSON object")
			}
			return fields, nil
		case '[':
			var items []any
			for dec.More() {
				item, err := parseValue(dec)
				if err != nil {
					return nil, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, goerr.Wrap(err, "unterminated JSON array")
			}
			return items, nil
		}
		return nil, goerr.New("unexpected JSON delimiter", goerr.V("delim", t.String()))
	default:
		return tok, nil
	}
}

func skipValue(dec *json.Decoder) error {
	_, err := parseValue(dec)
	return err
}

func expectDelim(dec *json.Decoder, delim json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return goerr.Wrap(err, "failed to read JSON token")
	}
	if d, ok := tok.(json.Delim); !ok || d != delim {
		return goerr.New("unexpected JSON token", goerr.V("token", tok))
	}
	return nil
}

func nextKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", goerr.Wrap(err, "failed to read JSON key")
	}
	key, ok := tok.(string)
	if !ok {
		return "", goerr.New("expected JSON object key", goerr.V("token", tok))
	}
	return key, nil
}
