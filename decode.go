package veld

import (
	"bytes"
	"context"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/veld-go/veld/i18n"
)

// ParseJSON decodes a JSON object and validates it against the schema.
// Numbers are decoded as json.Number so integer precision survives the trip
// through the untyped map.
func ParseJSON(ctx context.Context, s *Schema, data []byte) (*Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, Report{{
			Path: "/", Code: CodeParseError,
			Message: i18n.T(CodeParseError, nil),
			Cause:   err,
		}}
	}
	return s.Validate(ctx, raw)
}

// ParseYAML decodes a YAML document and validates it against the schema.
// Non-string map keys anywhere in the document are a parse error.
func ParseYAML(ctx context.Context, s *Schema, data []byte) (*Record, error) {
	var node any
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, Report{{
			Path: "/", Code: CodeParseError,
			Message: i18n.T(CodeParseError, nil),
			Cause:   err,
		}}
	}
	raw, ok := yamlStringMap(node)
	if !ok {
		return nil, Report{{
			Path: "/", Code: CodeParseError,
			Message: i18n.T(CodeParseError, nil),
			Hint:    "document root must be a string-keyed mapping",
		}}
	}
	return s.Validate(ctx, raw)
}

// yamlStringMap normalizes a decoded YAML node into map[string]any,
// rejecting non-string keys at any depth.
func yamlStringMap(node any) (map[string]any, bool) {
	m, ok := node.(map[string]any)
	if !ok {
		if am, isAny := node.(map[any]any); isAny {
			m = make(map[string]any, len(am))
			for k, v := range am {
				ks, isStr := k.(string)
				if !isStr {
					return nil, false
				}
				m[ks] = v
			}
		} else {
			return nil, false
		}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		nv, ok := yamlNormalize(v)
		if !ok {
			return nil, false
		}
		out[k] = nv
	}
	return out, true
}

func yamlNormalize(v any) (any, bool) {
	switch t := v.(type) {
	case map[string]any, map[any]any:
		m, ok := yamlStringMap(t)
		if !ok {
			return nil, false
		}
		return m, true
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			ne, ok := yamlNormalize(e)
			if !ok {
				return nil, false
			}
			out[i] = ne
		}
		return out, true
	default:
		return v, true
	}
}
