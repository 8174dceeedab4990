package veld

import (
	"context"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/veld-go/veld/i18n"
)

// DumpOpt selects what Dump emits. Include and Exclude are mutually
// exclusive JSON-Pointer-style field paths ("name" and "/name" are
// equivalent); Exclude supports nested paths such as "/address/state".
// ExcludeUnset omits fields that were filled from a default rather than
// supplied in the original input.
type DumpOpt struct {
	Include      []string
	Exclude      []string
	ExcludeUnset bool
}

// Dump converts a validated record back into plain data: all stored fields
// plus all computed fields by default, narrowed by the option's filters.
// Nested records serialize recursively with the filters scoped to their
// sub-path. The result shares no memory with the record.
func Dump(ctx context.Context, r *Record, opt DumpOpt) (map[string]any, error) {
	if len(opt.Include) > 0 && len(opt.Exclude) > 0 {
		return nil, Report{{
			Path: "/", Code: CodeFilterConflict,
			Message: i18n.T(CodeFilterConflict, nil),
		}}
	}
	inc := normFilters(opt.Include)
	exc := normFilters(opt.Exclude)
	prov := r.prov

	out := make(map[string]any, len(r.values))
	for _, f := range r.schema.fields {
		v, ok := r.values[f.name]
		if !ok {
			continue
		}
		path := "/" + f.name
		if !keep(path, inc, exc) {
			continue
		}
		if opt.ExcludeUnset && prov.Defaulted(path) {
			continue
		}
		out[f.name] = filterValue(path, v, inc, exc, opt.ExcludeUnset, prov)
	}

	// Derivations run only for computed fields that survive the filters; an
	// excluded one is never evaluated and cannot fail the dump.
	var crep Report
	for _, c := range r.schema.computed {
		path := "/" + c.name
		if !keep(path, inc, exc) {
			continue
		}
		v, drep := derive(ctx, r, c)
		if len(drep) > 0 {
			crep = AppendViolations(crep, drep...)
			if IsFailFast(ctx) {
				return nil, crep
			}
			continue
		}
		out[c.name] = filterValue(path, v, inc, exc, false, nil)
	}
	if len(crep) > 0 {
		return nil, crep
	}
	return out, nil
}

// DumpJSON is Dump followed by JSON encoding of the plain data.
func DumpJSON(ctx context.Context, r *Record, opt DumpOpt) ([]byte, error) {
	m, err := Dump(ctx, r, opt)
	if err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

// filterValue deep-copies v, descending into maps and sequences so nested
// filter paths and nested default provenance apply.
func filterValue(path string, v any, inc, exc []string, excludeUnset bool, prov ProvenanceMap) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, cv := range t {
			cp := path + "/" + k
			if !keep(cp, inc, exc) {
				continue
			}
			if excludeUnset && prov.Defaulted(cp) {
				continue
			}
			out[k] = filterValue(cp, cv, inc, exc, excludeUnset, prov)
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for i, cv := range t {
			out = append(out, filterValue(path+"/"+strconv.Itoa(i), cv, inc, exc, excludeUnset, prov))
		}
		return out
	default:
		return v
	}
}

func normFilters(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSuffix(p, "/")
		if p == "" {
			continue
		}
		if p[0] != '/' {
			p = "/" + p
		}
		out = append(out, p)
	}
	return out
}

// keep decides whether path survives the filters. With includes set, a path
// survives when it lies inside an included subtree or is an ancestor of an
// included path (the container must stay so the included leaf has a home).
func keep(path string, inc, exc []string) bool {
	for _, e := range exc {
		if path == e || strings.HasPrefix(path, e+"/") {
			return false
		}
	}
	if len(inc) == 0 {
		return true
	}
	for _, in := range inc {
		if path == in || strings.HasPrefix(path, in+"/") || strings.HasPrefix(in, path+"/") {
			return true
		}
	}
	return false
}
