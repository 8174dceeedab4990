package veld

import (
	"context"
	"encoding/json"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/veld-go/veld/i18n"
	"github.com/veld-go/veld/internal/format"
)

// Validate runs the full pipeline over raw input: per field in declaration
// order, default application, before-hooks, coercion, constraints, and
// after-hooks, collecting every violation; then model-level hooks; then
// atomic Record construction. Either a Record is returned or a complete
// Report, never a partial record.
func (s *Schema) Validate(ctx context.Context, raw map[string]any) (*Record, error) {
	values := make(map[string]any, len(s.fields))
	prov := ProvenanceMap{"/": ProvenanceSeen}
	var rep Report

	for _, f := range s.fields {
		path := "/" + f.name
		v, present := raw[f.name]
		if !present {
			if f.hasDef {
				values[f.name] = f.def
				prov[path] |= ProvenanceDefaultApplied
				continue
			}
			if _, opt := f.typ.unwrap(); opt {
				continue
			}
			rep = AppendViolations(rep, Violation{
				Path: path, Code: CodeMissingField,
				Message: i18n.T(CodeMissingField, nil),
			})
			if IsFailFast(ctx) {
				return nil, rep
			}
			continue
		}
		prov[path] |= ProvenanceSeen
		if v == nil {
			prov[path] |= ProvenanceWasNull
		}

		cv, frep := s.validateField(ctx, path, f, v, prov)
		if len(frep) > 0 {
			rep = AppendViolations(rep, frep...)
			if IsFailFast(ctx) {
				return nil, rep
			}
			continue
		}
		values[f.name] = cv
	}

	if s.denyUnknown {
		rep = AppendViolations(rep, s.unknownKeyViolations(raw)...)
		if IsFailFast(ctx) && len(rep) > 0 {
			return nil, rep
		}
	}

	// Model-level hooks see the candidate only when every field passed.
	if len(rep) == 0 {
		for _, mc := range s.checks {
			if err := mc.fn(ctx, values); err != nil {
				vrep := reportFromErr("/", CodeHookViolation, err)
				for i := range vrep {
					if vrep[i].Hint == "" {
						vrep[i].Hint = mc.name
					}
				}
				rep = AppendViolations(rep, vrep...)
				if IsFailFast(ctx) {
					return nil, rep
				}
			}
		}
	}

	if len(rep) > 0 {
		return nil, rep
	}
	return &Record{schema: s, values: values, prov: prov}, nil
}

// validateField runs before-hooks, coercion, constraints, and after-hooks for
// one field. The first failing stage aborts the rest of this field only.
func (s *Schema) validateField(ctx context.Context, path string, f *FieldDescriptor, v any, prov ProvenanceMap) (any, Report) {
	fh := s.hooks[f.name]
	if fh != nil {
		for _, h := range fh.before {
			nv, err := h(ctx, v)
			if err != nil {
				return nil, reportFromErr(path, CodeHookViolation, err)
			}
			v = nv
		}
	}
	cv, rep := s.coerce(ctx, path, f.typ, v, f.strict, prov)
	if len(rep) > 0 {
		return nil, rep
	}
	if rep := f.constraintViolations(path, cv); len(rep) > 0 {
		return nil, rep
	}
	if fh != nil {
		for _, h := range fh.after {
			nv, err := h(ctx, cv)
			if err != nil {
				return nil, reportFromErr(path, CodeHookViolation, err)
			}
			cv = nv
		}
	}
	return cv, nil
}

func (s *Schema) unknownKeyViolations(raw map[string]any) Report {
	var unknown []string
	for k := range raw {
		if _, known := s.byName[k]; !known {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	var rep Report
	for _, k := range unknown {
		rep = AppendViolations(rep, Violation{
			Path: "/" + k, Code: CodeUnknownKey,
			Message: i18n.T(CodeUnknownKey, nil),
		})
	}
	return rep
}

// coerce converts a raw value into the declared semantic type. Strict mode
// accepts only exact-type matches (a wire number still satisfies a numeric
// field of the same shape); lax mode additionally converts numeric-looking
// strings and performs safe widening. Composite kinds recurse, collecting
// element violations rather than stopping at the first.
func (s *Schema) coerce(ctx context.Context, path string, t Type, v any, strict bool, prov ProvenanceMap) (any, Report) {
	if inner, opt := t.unwrap(); opt {
		if v == nil {
			return nil, nil
		}
		return s.coerce(ctx, path, inner, v, strict, prov)
	}
	switch t.kind {
	case KindString:
		if sv, ok := v.(string); ok {
			return sv, nil
		}
		return nil, mismatch(path, "string", v)
	case KindInt:
		return coerceInt(path, v, strict)
	case KindFloat:
		return coerceFloat(path, v, strict)
	case KindBool:
		return coerceBool(path, v, strict)
	case KindSequence:
		return s.coerceSequence(ctx, path, t, v, strict, prov)
	case KindMapping:
		return s.coerceMapping(ctx, path, t, v, strict, prov)
	case KindNested:
		return s.coerceNested(ctx, path, t, v, prov)
	default:
		return nil, mismatch(path, t.kind.String(), v)
	}
}

func (s *Schema) coerceSequence(ctx context.Context, path string, t Type, v any, strict bool, prov ProvenanceMap) (any, Report) {
	var elems []any
	switch sv := v.(type) {
	case []any:
		elems = sv
	default:
		rv := reflect.ValueOf(v)
		if !rv.IsValid() || rv.Kind() != reflect.Slice {
			return nil, mismatch(path, "sequence", v)
		}
		elems = make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elems[i] = rv.Index(i).Interface()
		}
	}
	out := make([]any, 0, len(elems))
	var rep Report
	for i, ev := range elems {
		cv, erep := s.coerce(ctx, path+"/"+strconv.Itoa(i), *t.elem, ev, strict, prov)
		if len(erep) > 0 {
			rep = AppendViolations(rep, erep...)
			if IsFailFast(ctx) {
				return nil, rep
			}
			continue
		}
		out = append(out, cv)
	}
	if len(rep) > 0 {
		return nil, rep
	}
	return out, nil
}

func (s *Schema) coerceMapping(ctx context.Context, path string, t Type, v any, strict bool, prov ProvenanceMap) (any, Report) {
	src, ok := v.(map[string]any)
	if !ok {
		rv := reflect.ValueOf(v)
		if !rv.IsValid() || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
			return nil, mismatch(path, "mapping", v)
		}
		src = make(map[string]any, rv.Len())
		for _, k := range rv.MapKeys() {
			src[k.String()] = rv.MapIndex(k).Interface()
		}
	}
	// key-sorted order for deterministic violation output
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(map[string]any, len(src))
	var rep Report
	for _, k := range keys {
		cv, vrep := s.coerce(ctx, path+"/"+k, *t.val, src[k], strict, prov)
		if len(vrep) > 0 {
			rep = AppendViolations(rep, vrep...)
			if IsFailFast(ctx) {
				return nil, rep
			}
			continue
		}
		out[k] = cv
	}
	if len(rep) > 0 {
		return nil, rep
	}
	return out, nil
}

func (s *Schema) coerceNested(ctx context.Context, path string, t Type, v any, prov ProvenanceMap) (any, Report) {
	src, ok := v.(map[string]any)
	if !ok {
		return nil, mismatch(path, "nested record", v)
	}
	rec, err := t.sub.Validate(ctx, src)
	if err != nil {
		if crep, ok := AsReport(err); ok {
			return nil, rebase(path, crep)
		}
		return nil, reportFromErr(path, CodeTypeMismatch, err)
	}
	prov[path] |= ProvenanceSeen
	prov.mergeUnder(path, rec.prov)
	return rec.values, nil
}

func coerceInt(path string, v any, strict bool) (any, Report) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8, int16, int32, int64:
		return reflect.ValueOf(n).Int(), nil
	case uint, uint8, uint16, uint32, uint64:
		u := reflect.ValueOf(n).Uint()
		if u > math.MaxInt64 {
			return nil, mismatch(path, "int", v)
		}
		return int64(u), nil
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		if !strict {
			if f, err := n.Float64(); err == nil && f == math.Trunc(f) {
				return int64(f), nil
			}
		}
		return nil, mismatch(path, "int", v)
	case float64, float32:
		if strict {
			return nil, mismatch(path, "int", v)
		}
		f := reflect.ValueOf(n).Convert(reflect.TypeOf(float64(0))).Float()
		if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, mismatch(path, "int", v)
		}
		return int64(f), nil
	case string:
		if strict {
			return nil, mismatch(path, "int", v)
		}
		if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
			return i, nil
		}
		return nil, mismatch(path, "int", v)
	default:
		return nil, mismatch(path, "int", v)
	}
}

func coerceFloat(path string, v any, strict bool) (any, Report) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f, nil
		}
		return nil, mismatch(path, "float", v)
	case int, int8, int16, int32, int64:
		if strict {
			return nil, mismatch(path, "float", v)
		}
		return float64(reflect.ValueOf(n).Int()), nil
	case uint, uint8, uint16, uint32, uint64:
		if strict {
			return nil, mismatch(path, "float", v)
		}
		return float64(reflect.ValueOf(n).Uint()), nil
	case string:
		if strict {
			return nil, mismatch(path, "float", v)
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f, nil
		}
		return nil, mismatch(path, "float", v)
	default:
		return nil, mismatch(path, "float", v)
	}
}

func coerceBool(path string, v any, strict bool) (any, Report) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case int, int8, int16, int32, int64:
		if strict {
			return nil, mismatch(path, "bool", v)
		}
		switch reflect.ValueOf(b).Int() {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
		return nil, mismatch(path, "bool", v)
	case json.Number:
		if strict {
			return nil, mismatch(path, "bool", v)
		}
		switch string(b) {
		case "0":
			return false, nil
		case "1":
			return true, nil
		}
		return nil, mismatch(path, "bool", v)
	case string:
		if strict {
			return nil, mismatch(path, "bool", v)
		}
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
		return nil, mismatch(path, "bool", v)
	default:
		return nil, mismatch(path, "bool", v)
	}
}

func mismatch(path, want string, got any) Report {
	return Report{{
		Path: path, Code: CodeTypeMismatch,
		Message: i18n.T(CodeTypeMismatch, nil),
		Params:  map[string]any{"want": want, "got": typeName(got)},
	}}
}

func typeName(v any) string {
	if v == nil {
		return "null"
	}
	return reflect.TypeOf(v).String()
}

// constraintViolations applies the declared bounds, length cap, and format
// tag to a coerced value. A nil value (optional null) has nothing to check.
func (f *FieldDescriptor) constraintViolations(path string, v any) Report {
	if v == nil {
		return nil
	}
	var rep Report
	if num, ok := asFloat(v); ok {
		bound := func(bad bool, key string, limit float64) {
			if bad {
				rep = AppendViolations(rep, Violation{
					Path: path, Code: CodeOutOfRange,
					Message: i18n.T(CodeOutOfRange, nil),
					Params:  map[string]any{key: limit, "got": num},
				})
			}
		}
		if f.gt != nil {
			bound(num <= *f.gt, "gt", *f.gt)
		}
		if f.ge != nil {
			bound(num < *f.ge, "ge", *f.ge)
		}
		if f.lt != nil {
			bound(num >= *f.lt, "lt", *f.lt)
		}
		if f.le != nil {
			bound(num > *f.le, "le", *f.le)
		}
	}
	if f.maxLen != nil {
		if n, ok := lengthOf(v); ok && n > *f.maxLen {
			rep = AppendViolations(rep, Violation{
				Path: path, Code: CodeTooLong,
				Message: i18n.T(CodeTooLong, nil),
				Params:  map[string]any{"maxLen": *f.maxLen, "got": n},
			})
		}
	}
	if f.format != "" {
		if sv, ok := v.(string); ok && !formatOK(f.format, sv) {
			rep = AppendViolations(rep, Violation{
				Path: path, Code: CodeBadFormat,
				Message: i18n.T(CodeBadFormat, nil),
				Params:  map[string]any{"format": f.format},
			})
		}
	}
	return rep
}

func formatOK(tag, s string) bool {
	switch tag {
	case FormatEmail:
		return format.Email(s)
	case FormatURL:
		return format.URL(s)
	default:
		return true
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func lengthOf(v any) (int, bool) {
	switch t := v.(type) {
	case string:
		return utf8.RuneCountInString(t), true
	case []any:
		return len(t), true
	case map[string]any:
		return len(t), true
	default:
		return 0, false
	}
}
