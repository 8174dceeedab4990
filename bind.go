package veld

import (
	"github.com/mitchellh/mapstructure"

	"github.com/veld-go/veld/i18n"
)

// Bind decodes a validated record into a caller-defined struct. Field names
// map via `mapstructure` tags, falling back to case-insensitive name matching.
// The record stays untouched; nested records land in nested structs or maps.
func Bind[T any](r *Record) (T, error) {
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: false,
	})
	if err != nil {
		return out, Report{{
			Path: "/", Code: CodeTypeMismatch,
			Message: i18n.T(CodeTypeMismatch, nil),
			Cause:   err,
		}}
	}
	if err := dec.Decode(r.values); err != nil {
		return out, Report{{
			Path: "/", Code: CodeTypeMismatch,
			Message: i18n.T(CodeTypeMismatch, nil),
			Hint:    "record does not fit the target struct",
			Cause:   err,
		}}
	}
	return out, nil
}
