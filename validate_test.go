package veld_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	veld "github.com/veld-go/veld"
)

func memberSchema(t *testing.T) *veld.Schema {
	t.Helper()
	s, err := veld.Define(
		veld.Field("name", veld.String()).MaxLen(50),
		veld.Field("email", veld.String()).Format(veld.FormatEmail),
		veld.Field("age", veld.Int()).GT(0).LT(120),
	).Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	return s
}

func TestValidate_CoercesAndAppliesDefaults(t *testing.T) {
	ctx := context.Background()
	s, err := veld.Define(
		veld.Field("name", veld.String()),
		veld.Field("age", veld.Int()),
		veld.Field("score", veld.Float()),
		veld.Field("active", veld.Bool()).Default(true),
		veld.Field("tags", veld.Optional(veld.Sequence(veld.String()))),
	).Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	rec, err := s.Validate(ctx, map[string]any{
		"name":  "Ada",
		"age":   "36", // numeric string, lax mode coerces
		"score": 7,    // int widens to float
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if v, _ := rec.Int("age"); v != 36 {
		t.Fatalf("expected age=36, got %v", v)
	}
	if v, _ := rec.Float("score"); v != 7.0 {
		t.Fatalf("expected score=7.0, got %v", v)
	}
	if v, _ := rec.Bool("active"); v != true {
		t.Fatalf("expected default active=true, got %v", v)
	}
	if rec.Has("tags") {
		t.Fatalf("optional absent field should stay unset")
	}
	pm := rec.Provenance()
	if !pm.Defaulted("/active") {
		t.Fatalf("active should be flagged default-applied, got %v", pm["/active"])
	}
	if !pm.Explicit("/age") {
		t.Fatalf("age should be flagged seen, got %v", pm["/age"])
	}
}

func TestValidate_StrictModeRejectsCoercion(t *testing.T) {
	ctx := context.Background()
	s := veld.Define(
		veld.Field("weight", veld.Float()).GT(0).Strict(),
	).MustBuild()

	if _, err := s.Validate(ctx, map[string]any{"weight": 70}); err == nil {
		t.Fatalf("expected type_mismatch for int into strict float")
	} else if rep, _ := veld.AsReport(err); !rep.Has(veld.CodeTypeMismatch) {
		t.Fatalf("expected type_mismatch, got %v", err)
	}
	if _, err := s.Validate(ctx, map[string]any{"weight": "70.5"}); err == nil {
		t.Fatalf("expected type_mismatch for string into strict float")
	}
	if _, err := s.Validate(ctx, map[string]any{"weight": 70.5}); err != nil {
		t.Fatalf("unexpected err for exact float: %v", err)
	}
}

func TestValidate_MissingRequiredField_ExactlyOne(t *testing.T) {
	ctx := context.Background()
	s := memberSchema(t)

	_, err := s.Validate(ctx, map[string]any{"name": "Ada", "email": "ada@example.com"})
	rep, ok := veld.AsReport(err)
	if !ok {
		t.Fatalf("expected a report, got %v", err)
	}
	if len(rep) != 1 {
		t.Fatalf("expected exactly one violation, got %d: %v", len(rep), rep)
	}
	if rep[0].Code != veld.CodeMissingField || rep[0].Path != "/age" {
		t.Fatalf("expected missing_field at /age, got %+v", rep[0])
	}
}

func TestValidate_OutOfRange_NoRecord(t *testing.T) {
	ctx := context.Background()
	s := memberSchema(t)

	rec, err := s.Validate(ctx, map[string]any{"name": "Ada", "email": "ada@example.com", "age": -5})
	if rec != nil {
		t.Fatalf("no record may be constructed on violation")
	}
	rep, _ := veld.AsReport(err)
	if len(rep.At("/age")) != 1 || rep[0].Code != veld.CodeOutOfRange {
		t.Fatalf("expected out_of_range at /age, got %v", rep)
	}
}

func TestValidate_CollectsAllViolations_InDeclarationOrder(t *testing.T) {
	ctx := context.Background()
	s := memberSchema(t)

	_, err := s.Validate(ctx, map[string]any{
		"name":  strings.Repeat("x", 51),
		"email": "not-an-email",
		"age":   200,
	})
	rep, _ := veld.AsReport(err)
	if len(rep) != 3 {
		t.Fatalf("expected 3 violations, got %d: %v", len(rep), rep)
	}
	wantPaths := []string{"/name", "/email", "/age"}
	wantCodes := []string{veld.CodeTooLong, veld.CodeBadFormat, veld.CodeOutOfRange}
	for i := range rep {
		if rep[i].Path != wantPaths[i] || rep[i].Code != wantCodes[i] {
			t.Fatalf("violation %d: want %s at %s, got %s at %s", i, wantCodes[i], wantPaths[i], rep[i].Code, rep[i].Path)
		}
	}
}

func TestValidate_FailFastStopsAtFirstViolation(t *testing.T) {
	ctx := veld.WithFailFast(context.Background(), true)
	s := memberSchema(t)

	_, err := s.Validate(ctx, map[string]any{
		"name":  strings.Repeat("x", 51),
		"email": "not-an-email",
		"age":   200,
	})
	rep, _ := veld.AsReport(err)
	if len(rep) != 1 || rep[0].Path != "/name" {
		t.Fatalf("expected single violation at /name, got %v", rep)
	}
}

func TestValidate_URLFormat(t *testing.T) {
	ctx := context.Background()
	s := veld.Define(
		veld.Field("homepage", veld.String()).Format(veld.FormatURL),
	).MustBuild()

	if _, err := s.Validate(ctx, map[string]any{"homepage": "https://example.com/a"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := s.Validate(ctx, map[string]any{"homepage": "nope"}); err == nil {
		t.Fatalf("expected bad_format for relative url")
	}
}

func TestValidate_BeforeHookSeesRawValue(t *testing.T) {
	ctx := context.Background()
	var saw any
	s := veld.Define(
		veld.Field("age", veld.Int()),
	).Before("age", func(ctx context.Context, v any) (any, error) {
		saw = v
		return v, nil
	}).MustBuild()

	if _, err := s.Validate(ctx, map[string]any{"age": "41"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if saw != "41" {
		t.Fatalf("before hook should receive the raw value, got %v", saw)
	}
}

func TestValidate_AfterHookTransformsValue(t *testing.T) {
	ctx := context.Background()
	s := veld.Define(
		veld.Field("name", veld.String()),
	).After("name", func(ctx context.Context, v any) (any, error) {
		return strings.ToUpper(v.(string)), nil
	}).MustBuild()

	rec, err := s.Validate(ctx, map[string]any{"name": "ada"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if v, _ := rec.String("name"); v != "ADA" {
		t.Fatalf("expected transformed name ADA, got %q", v)
	}
}

func TestValidate_HookViolationSkipsFieldOnly(t *testing.T) {
	ctx := context.Background()
	s := veld.Define(
		veld.Field("email", veld.String()),
		veld.Field("age", veld.Int()),
	).Before("email", func(ctx context.Context, v any) (any, error) {
		domain := v.(string)
		if i := strings.LastIndex(domain, "@"); i >= 0 {
			domain = domain[i+1:]
		}
		if domain != "example.com" {
			return nil, errors.New("not a valid domain")
		}
		return v, nil
	}).MustBuild()

	// email hook fails, age missing: both must be reported
	_, err := s.Validate(ctx, map[string]any{"email": "ada@elsewhere.org"})
	rep, _ := veld.AsReport(err)
	if len(rep) != 2 {
		t.Fatalf("expected 2 violations, got %v", rep)
	}
	if rep[0].Path != "/email" || rep[0].Code != veld.CodeHookViolation {
		t.Fatalf("expected hook_violation at /email, got %+v", rep[0])
	}
	if rep[1].Path != "/age" || rep[1].Code != veld.CodeMissingField {
		t.Fatalf("expected missing_field at /age, got %+v", rep[1])
	}
}

func TestValidate_ModelCheck_CrossFieldInvariant(t *testing.T) {
	ctx := context.Background()
	s := veld.Define(
		veld.Field("age", veld.Int()).GT(0),
		veld.Field("contact", veld.Mapping(veld.String(), veld.String())),
	).Check("emergency-contact", func(ctx context.Context, fields map[string]any) error {
		age, _ := fields["age"].(int64)
		contact, _ := fields["contact"].(map[string]any)
		if age > 60 {
			if _, ok := contact["emergency"]; !ok {
				return errors.New("members older than 60 must have an emergency contact")
			}
		}
		return nil
	}).MustBuild()

	_, err := s.Validate(ctx, map[string]any{
		"age":     65,
		"contact": map[string]any{"phone": "123"},
	})
	rep, _ := veld.AsReport(err)
	if len(rep) != 1 || rep[0].Code != veld.CodeHookViolation || rep[0].Path != "/" {
		t.Fatalf("expected hook_violation at /, got %v", rep)
	}

	if _, err := s.Validate(ctx, map[string]any{
		"age":     65,
		"contact": map[string]any{"phone": "123", "emergency": "911"},
	}); err != nil {
		t.Fatalf("unexpected err with emergency contact: %v", err)
	}
}

func TestValidate_ModelChecksSkippedWhenFieldsFail(t *testing.T) {
	ctx := context.Background()
	ran := false
	s := veld.Define(
		veld.Field("age", veld.Int()),
	).Check("never", func(ctx context.Context, fields map[string]any) error {
		ran = true
		return nil
	}).MustBuild()

	if _, err := s.Validate(ctx, map[string]any{}); err == nil {
		t.Fatalf("expected missing_field")
	}
	if ran {
		t.Fatalf("model check must not run when a field violation exists")
	}
}

func TestValidate_NestedSchema(t *testing.T) {
	ctx := context.Background()
	address := veld.Define(
		veld.Field("city", veld.String()),
		veld.Field("state", veld.String()),
		veld.Field("pin", veld.String()),
	).MustBuild()
	s := veld.Define(
		veld.Field("name", veld.String()),
		veld.Field("address", veld.Nested(address)),
	).MustBuild()

	rec, err := s.Validate(ctx, map[string]any{
		"name":    "Ada",
		"address": map[string]any{"city": "gurgaon", "state": "punjab", "pin": "1234"},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	addr, _ := rec.Get("address")
	if m, ok := addr.(map[string]any); !ok || m["city"] != "gurgaon" {
		t.Fatalf("expected nested map with city, got %#v", addr)
	}
	if !rec.Provenance().Explicit("/address/city") {
		t.Fatalf("nested provenance missing for /address/city")
	}

	// inner violation surfaces under the full path
	_, err = s.Validate(ctx, map[string]any{
		"name":    "Ada",
		"address": map[string]any{"city": "gurgaon", "state": "punjab", "pin": 1234},
	})
	rep, _ := veld.AsReport(err)
	if len(rep.At("/address/pin")) != 1 {
		t.Fatalf("expected violation at /address/pin, got %v", rep)
	}
}

func TestValidate_SequenceElementViolations(t *testing.T) {
	ctx := context.Background()
	s := veld.Define(
		veld.Field("tags", veld.Sequence(veld.String())),
	).MustBuild()

	_, err := s.Validate(ctx, map[string]any{"tags": []any{"dev", 5, true}})
	rep, _ := veld.AsReport(err)
	if len(rep) != 2 {
		t.Fatalf("expected 2 element violations, got %v", rep)
	}
	if rep[0].Path != "/tags/1" || rep[1].Path != "/tags/2" {
		t.Fatalf("expected violations at /tags/1 and /tags/2, got %v", rep)
	}
}

func TestValidate_MaxLenOnSequenceAndMapping(t *testing.T) {
	ctx := context.Background()
	s := veld.Define(
		veld.Field("tags", veld.Sequence(veld.String())).MaxLen(2),
		veld.Field("scores", veld.Mapping(veld.String(), veld.Int())).MaxLen(1),
	).MustBuild()

	_, err := s.Validate(ctx, map[string]any{
		"tags":   []any{"a", "b", "c"},
		"scores": map[string]any{"math": 90, "art": 75},
	})
	rep, _ := veld.AsReport(err)
	if len(rep) != 2 {
		t.Fatalf("expected 2 violations, got %v", rep)
	}
	if rep[0].Path != "/tags" || rep[0].Code != veld.CodeTooLong {
		t.Fatalf("expected too_long at /tags, got %+v", rep[0])
	}
	if rep[1].Path != "/scores" || rep[1].Code != veld.CodeTooLong {
		t.Fatalf("expected too_long at /scores, got %+v", rep[1])
	}

	if _, err := s.Validate(ctx, map[string]any{
		"tags":   []any{"a", "b"},
		"scores": map[string]any{"math": 90},
	}); err != nil {
		t.Fatalf("unexpected err within length caps: %v", err)
	}
}

func TestValidate_MappingValuesCoerced(t *testing.T) {
	ctx := context.Background()
	s := veld.Define(
		veld.Field("scores", veld.Mapping(veld.String(), veld.Int())),
	).MustBuild()

	rec, err := s.Validate(ctx, map[string]any{
		"scores": map[string]any{"math": "90", "art": 75},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	v, _ := rec.Get("scores")
	m := v.(map[string]any)
	if m["math"] != int64(90) || m["art"] != int64(75) {
		t.Fatalf("expected coerced int64 values, got %#v", m)
	}
}

func TestValidate_UnknownKeysStrippedByDefault(t *testing.T) {
	ctx := context.Background()
	s := veld.Define(
		veld.Field("name", veld.String()),
	).MustBuild()

	rec, err := s.Validate(ctx, map[string]any{"name": "Ada", "extra": 1})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if rec.Has("extra") {
		t.Fatalf("unknown key must not be stored")
	}
}

func TestValidate_DenyUnknown(t *testing.T) {
	ctx := context.Background()
	s := veld.Define(
		veld.Field("name", veld.String()),
	).DenyUnknown().MustBuild()

	_, err := s.Validate(ctx, map[string]any{"name": "Ada", "extra": 1})
	rep, _ := veld.AsReport(err)
	if len(rep) != 1 || rep[0].Code != veld.CodeUnknownKey || rep[0].Path != "/extra" {
		t.Fatalf("expected unknown_key at /extra, got %v", rep)
	}
}

func TestValidate_OptionalNullStoredAsNil(t *testing.T) {
	ctx := context.Background()
	s := veld.Define(
		veld.Field("nickname", veld.Optional(veld.String())),
	).MustBuild()

	rec, err := s.Validate(ctx, map[string]any{"nickname": nil})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	v, ok := rec.Get("nickname")
	if !ok || v != nil {
		t.Fatalf("expected stored nil, got %v ok=%v", v, ok)
	}
	pm := rec.Provenance()
	if pm["/nickname"]&veld.ProvenanceWasNull == 0 {
		t.Fatalf("expected was-null provenance, got %v", pm["/nickname"])
	}
}

func TestValidate_HookMayReturnReportWithOwnCode(t *testing.T) {
	ctx := context.Background()
	s := veld.Define(
		veld.Field("age", veld.Int()),
	).Before("age", func(ctx context.Context, v any) (any, error) {
		if n, ok := v.(int); ok && (n <= 0 || n >= 100) {
			return nil, veld.Report{{Code: veld.CodeOutOfRange, Message: "age must be between 0 and 100"}}
		}
		return v, nil
	}).MustBuild()

	_, err := s.Validate(ctx, map[string]any{"age": 150})
	rep, _ := veld.AsReport(err)
	if len(rep) != 1 || rep[0].Code != veld.CodeOutOfRange || rep[0].Path != "/age" {
		t.Fatalf("expected rebased out_of_range at /age, got %v", rep)
	}
}
