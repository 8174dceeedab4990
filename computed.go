package veld

import (
	"context"
	"fmt"
	"math"

	"github.com/veld-go/veld/i18n"
)

// Resolve evaluates every computed field of the record's schema against its
// stored values, in registration order. Derivations are pure reads; a panic
// or a non-finite float result is reported as computation_error for that
// field rather than propagated, and remaining fields still resolve.
func Resolve(ctx context.Context, r *Record) (map[string]any, error) {
	out := make(map[string]any, len(r.schema.computed))
	var rep Report
	for _, c := range r.schema.computed {
		v, crep := derive(ctx, r, c)
		if len(crep) > 0 {
			rep = AppendViolations(rep, crep...)
			if IsFailFast(ctx) {
				return nil, rep
			}
			continue
		}
		out[c.name] = v
	}
	if len(rep) > 0 {
		return nil, rep
	}
	return out, nil
}

func derive(ctx context.Context, r *Record, c computedField) (v any, rep Report) {
	path := "/" + c.name
	defer func() {
		if p := recover(); p != nil {
			rep = Report{{
				Path: path, Code: CodeComputationError,
				Message: i18n.T(CodeComputationError, nil),
				Cause:   fmt.Errorf("panic: %v", p),
			}}
		}
	}()
	v, err := c.fn(ctx, r)
	if err != nil {
		return nil, reportFromErr(path, CodeComputationError, err)
	}
	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return nil, Report{{
			Path: path, Code: CodeComputationError,
			Message: i18n.T(CodeComputationError, nil),
			Hint:    "derivation produced a non-finite number",
		}}
	}
	return v, nil
}
