package veld

// Package veld provides:
//
// - Declarative record schemas built from typed field descriptors (Define/Field/Build)
// - Validation and coercion of untyped input into immutable Records, with a
//   stable error model via Report (JSON Pointer path, code, message)
// - Custom validator hooks per field (before/after coercion) and per record
// - Computed attributes resolved lazily from stored fields
// - Serialization back to plain data with include/exclude filters and
//   provenance-aware omission of defaulted fields
//
// Design policy:
// - Keep only public APIs in the root package; put detailed implementations under internal/.
// - Place the message catalog under i18n/ and schema export under jsonschema/.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	s := veld.Define(
//	        veld.Field("name", veld.String()).MaxLen(50),
//	        veld.Field("age", veld.Int()).GT(0).LT(120),
//	).MustBuild()
//
//	rec, err := s.Validate(ctx, map[string]any{"name": "Ada", "age": 36})
//	out, err := veld.Dump(ctx, rec, veld.DumpOpt{})
