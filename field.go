package veld

import (
	"github.com/veld-go/veld/i18n"
)

// Format tags accepted by FieldDescriptor.Format.
const (
	FormatEmail = "email"
	FormatURL   = "url"
)

// FieldDescriptor declares one field of a schema: its name, semantic type,
// constraints, optional default, and strict flag. It is pure data; the
// validation engine consults it but it carries no behavior of its own.
// Descriptors are built fluently and frozen by Schema Build:
//
//	veld.Field("age", veld.Int()).GT(0).LT(120)
type FieldDescriptor struct {
	name   string
	typ    Type
	gt     *float64
	ge     *float64
	lt     *float64
	le     *float64
	maxLen *int
	format string
	def    any
	hasDef bool
	strict bool
}

// Field starts a descriptor for the named field.
func Field(name string, typ Type) *FieldDescriptor {
	return &FieldDescriptor{name: name, typ: typ}
}

// Name returns the field name.
func (f *FieldDescriptor) Name() string { return f.name }

// Type returns the declared semantic type.
func (f *FieldDescriptor) Type() Type { return f.typ }

// GT sets an exclusive lower bound. Numeric types only; checked at Build.
func (f *FieldDescriptor) GT(v float64) *FieldDescriptor { f.gt = &v; return f }

// GE sets an inclusive lower bound.
func (f *FieldDescriptor) GE(v float64) *FieldDescriptor { f.ge = &v; return f }

// LT sets an exclusive upper bound.
func (f *FieldDescriptor) LT(v float64) *FieldDescriptor { f.lt = &v; return f }

// LE sets an inclusive upper bound.
func (f *FieldDescriptor) LE(v float64) *FieldDescriptor { f.le = &v; return f }

// MaxLen caps the length of a string (in runes), sequence, or mapping.
func (f *FieldDescriptor) MaxLen(n int) *FieldDescriptor { f.maxLen = &n; return f }

// Format attaches a format tag (FormatEmail, FormatURL) to a string field.
func (f *FieldDescriptor) Format(tag string) *FieldDescriptor { f.format = tag; return f }

// Default supplies a value used when the field is absent from the input.
// The default itself is coerced and constraint-checked at Build time.
func (f *FieldDescriptor) Default(v any) *FieldDescriptor {
	f.def = v
	f.hasDef = true
	return f
}

// Strict disables coercion for this field; only exact-type matches are
// accepted (a wire number still satisfies a numeric field of the same shape).
func (f *FieldDescriptor) Strict() *FieldDescriptor { f.strict = true; return f }

// check verifies constraint/type consistency. This is a schema-definition
// concern: a bound incompatible with the declared type is a programmer error
// surfaced at Build, not deferred to input validation.
func (f *FieldDescriptor) check() Report {
	var rep Report
	path := "/" + f.name
	def := func(hint string, params map[string]any) {
		rep = AppendViolations(rep, Violation{
			Path: path, Code: CodeInvalidSchema,
			Message: i18n.T(CodeInvalidSchema, nil),
			Hint:    hint, Params: params,
		})
	}
	if f.name == "" {
		def("field name must not be empty", nil)
	}
	if (f.gt != nil || f.ge != nil || f.lt != nil || f.le != nil) && !f.typ.numeric() {
		def("numeric bounds require an int or float type", map[string]any{"kind": f.typ.base().Kind().String()})
	}
	if f.maxLen != nil && !f.typ.lengthy() {
		def("max length requires a string, sequence, or mapping type", map[string]any{"kind": f.typ.base().Kind().String()})
	}
	if f.maxLen != nil && *f.maxLen < 0 {
		def("max length must not be negative", map[string]any{"maxLen": *f.maxLen})
	}
	if f.format != "" {
		if f.typ.base().kind != KindString {
			def("format tags require a string type", map[string]any{"format": f.format})
		} else if f.format != FormatEmail && f.format != FormatURL {
			def("unknown format tag", map[string]any{"format": f.format})
		}
	}
	if f.strict && !f.typ.scalar() {
		def("strict mode applies to scalar types only", nil)
	}
	switch b := f.typ.base(); b.kind {
	case KindMapping:
		if b.key == nil || b.key.kind != KindString {
			def("mapping keys must be declared as string", nil)
		}
	case KindNested:
		if b.sub == nil {
			def("nested type requires a schema", nil)
		}
	}
	return rep
}
