package veld

import "context"

// Record is an immutable-after-construction mapping from field name to typed
// value, produced only by Schema.Validate and tagged with the schema it
// conforms to. Nested records are stored as plain string-keyed maps; their
// provenance lives under the full path in the record's ProvenanceMap.
type Record struct {
	schema *Schema
	values map[string]any
	prov   ProvenanceMap
}

// Schema returns the schema this record conforms to.
func (r *Record) Schema() *Schema { return r.schema }

// Has reports whether the named field holds a value (optional fields absent
// from the input are unset).
func (r *Record) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Get returns the stored value for the named field. Composite values come
// back as deep copies so the record cannot be mutated through them.
func (r *Record) Get(name string) (any, bool) {
	v, ok := r.values[name]
	if !ok {
		return nil, false
	}
	return copyValue(v), true
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, cv := range t {
			out[k] = copyValue(cv)
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, cv := range t {
			out = append(out, copyValue(cv))
		}
		return out
	default:
		return v
	}
}

// String returns the named field as a string.
func (r *Record) String(name string) (string, bool) {
	v, ok := r.values[name].(string)
	return v, ok
}

// Int returns the named field as an int64.
func (r *Record) Int(name string) (int64, bool) {
	v, ok := r.values[name].(int64)
	return v, ok
}

// Float returns the named field as a float64. Integer fields convert.
func (r *Record) Float(name string) (float64, bool) {
	switch v := r.values[name].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// Bool returns the named field as a bool.
func (r *Record) Bool(name string) (bool, bool) {
	v, ok := r.values[name].(bool)
	return v, ok
}

// Fields returns the set field names in schema declaration order.
func (r *Record) Fields() []string {
	out := make([]string, 0, len(r.values))
	for _, f := range r.schema.fields {
		if _, ok := r.values[f.name]; ok {
			out = append(out, f.name)
		}
	}
	return out
}

// Provenance returns a copy of the per-field provenance collected during
// validation.
func (r *Record) Provenance() ProvenanceMap { return r.prov.clone() }

// Computed resolves the schema's computed fields against this record. It is
// evaluated on every call, never cached.
func (r *Record) Computed(ctx context.Context) (map[string]any, error) {
	return Resolve(ctx, r)
}
