package tools

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Tool parameters arrive from the generation oracle as untyped JSON; these
// helpers coerce them into the expected types without trusting the oracle.

func extractString(params map[string]any, key string) (string, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return "", goerr.New("missing required parameter", goerr.V("param", key))
	}
	s, ok := v.(string)
	if !ok {
		return "", goerr.New("parameter must be a string", goerr.V("param", key), goerr.V("value", v))
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", goerr.New("parameter must not be empty", goerr.V("param", key))
	}
	return s, nil
}

func extractNumber(params map[string]any, key string) (float64, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return 0, goerr.New("missing required parameter", goerr.V("param", key))
	}

	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, goerr.Wrap(err, "parameter is not numeric", goerr.V("param", key))
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, goerr.Wrap(err, "parameter is not numeric", goerr.V("param", key), goerr.V("value", n))
		}
		return f, nil
	default:
		return 0, goerr.New("parameter must be a number", goerr.V("param", key), goerr.V("value", v))
	}
}

func extractIntOr(params map[string]any, key string, fallback int) (int, error) {
	if _, ok := params[key]; !ok {
		return fallback, nil
	}
	f, err := extractNumber(params, key)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// joinFields lowercases and collapses whitespace so species and location
// names compare stably against table keys.
func joinFields(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func joinSorted(values []string) string {
	return strings.Join(values, ", ")
}
