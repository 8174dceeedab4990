package veld

import (
	"context"
	"fmt"

	"github.com/veld-go/veld/i18n"
	js "github.com/veld-go/veld/jsonschema"
)

// FieldHook is a custom validator attached to one field. It receives the
// current value and returns the (possibly transformed) value, or an error to
// record a violation for that field. Hooks run in registration order.
type FieldHook func(ctx context.Context, value any) (any, error)

// ModelHook is a whole-record validator run after every field individually
// validates. It reads the assembled candidate and returns an error to reject
// it; hooks must not mutate the candidate map.
type ModelHook func(ctx context.Context, fields map[string]any) error

// Derivation computes a read-only attribute from a record's stored fields.
// It must be pure: read the record, never mutate it.
type Derivation func(ctx context.Context, r *Record) (any, error)

type fieldHooks struct {
	before []FieldHook
	after  []FieldHook
}

type modelCheck struct {
	name string
	fn   ModelHook
}

type computedField struct {
	name string
	fn   Derivation
}

// Schema is an ordered collection of field descriptors plus hook and
// computed-field registrations. It is read-only after Build and safe for
// concurrent use.
type Schema struct {
	fields      []*FieldDescriptor
	byName      map[string]*FieldDescriptor
	hooks       map[string]*fieldHooks
	checks      []modelCheck
	computed    []computedField
	denyUnknown bool
}

// Builder accumulates a schema definition. Registration errors (hooks on
// unknown fields, computed-name collisions, inconsistent constraints) are
// reported together by Build.
type Builder struct {
	fields      []*FieldDescriptor
	hooks       map[string]*fieldHooks
	checks      []modelCheck
	computed    []computedField
	denyUnknown bool
}

// Define creates a new schema builder seeded with the given descriptors.
func Define(fields ...*FieldDescriptor) *Builder {
	b := &Builder{hooks: map[string]*fieldHooks{}}
	b.fields = append(b.fields, fields...)
	return b
}

// Field appends a descriptor.
func (b *Builder) Field(f *FieldDescriptor) *Builder {
	b.fields = append(b.fields, f)
	return b
}

// Before registers a field hook that runs before coercion, receiving the raw
// input value.
func (b *Builder) Before(field string, h FieldHook) *Builder {
	return b.hook(field, h, true)
}

// After registers a field hook that runs after coercion and constraints,
// receiving the typed value.
func (b *Builder) After(field string, h FieldHook) *Builder {
	return b.hook(field, h, false)
}

func (b *Builder) hook(field string, h FieldHook, before bool) *Builder {
	if h == nil {
		return b
	}
	fh := b.hooks[field]
	if fh == nil {
		fh = &fieldHooks{}
		b.hooks[field] = fh
	}
	if before {
		fh.before = append(fh.before, h)
	} else {
		fh.after = append(fh.after, h)
	}
	return b
}

// Check registers a named model-level hook, run once all fields individually
// validate. Cross-field invariants live here.
func (b *Builder) Check(name string, h ModelHook) *Builder {
	if h == nil {
		return b
	}
	b.checks = append(b.checks, modelCheck{name: name, fn: h})
	return b
}

// Computed registers a derived attribute. Computed names must not collide
// with stored field names.
func (b *Builder) Computed(name string, fn Derivation) *Builder {
	if fn == nil {
		return b
	}
	b.computed = append(b.computed, computedField{name: name, fn: fn})
	return b
}

// DenyUnknown makes unknown input keys a violation instead of stripping them.
func (b *Builder) DenyUnknown() *Builder {
	b.denyUnknown = true
	return b
}

// Build validates the definition and returns an immutable Schema. All
// definition problems are reported together with code invalid_schema.
func (b *Builder) Build() (*Schema, error) {
	var rep Report
	byName := make(map[string]*FieldDescriptor, len(b.fields))
	for _, f := range b.fields {
		rep = AppendViolations(rep, f.check()...)
		if _, dup := byName[f.name]; dup {
			rep = AppendViolations(rep, Violation{
				Path: "/" + f.name, Code: CodeInvalidSchema,
				Message: i18n.T(CodeInvalidSchema, nil),
				Hint:    "duplicate field name",
			})
			continue
		}
		byName[f.name] = f
	}
	for name := range b.hooks {
		if _, ok := byName[name]; !ok {
			rep = AppendViolations(rep, Violation{
				Path: "/" + name, Code: CodeInvalidSchema,
				Message: i18n.T(CodeInvalidSchema, nil),
				Hint:    "validator hook references an unknown field",
			})
		}
	}
	seenComputed := map[string]struct{}{}
	for _, c := range b.computed {
		_, stored := byName[c.name]
		_, dup := seenComputed[c.name]
		if stored || dup {
			rep = AppendViolations(rep, Violation{
				Path: "/" + c.name, Code: CodeInvalidSchema,
				Message: i18n.T(CodeInvalidSchema, nil),
				Hint:    "computed field name collides",
			})
		}
		seenComputed[c.name] = struct{}{}
	}
	if len(rep) > 0 {
		return nil, rep
	}
	s := &Schema{
		fields:      b.fields,
		byName:      byName,
		hooks:       b.hooks,
		checks:      b.checks,
		computed:    b.computed,
		denyUnknown: b.denyUnknown,
	}
	// Defaults go through the same coercion and constraint path as input so
	// a bad default fails at definition time, not on first use.
	for _, f := range s.fields {
		if !f.hasDef {
			continue
		}
		cv, crep := s.coerce(context.Background(), "/"+f.name, f.typ, f.def, f.strict, ProvenanceMap{})
		if len(crep) == 0 {
			crep = f.constraintViolations("/"+f.name, cv)
		}
		if len(crep) > 0 {
			for i := range crep {
				crep[i].Code = CodeInvalidSchema
				crep[i].Hint = "default value violates the field descriptor"
			}
			rep = AppendViolations(rep, crep...)
			continue
		}
		f.def = cv
	}
	if len(rep) > 0 {
		return nil, rep
	}
	return s, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("veld: %v", err))
	}
	return s
}

// FieldNames returns the stored field names in declaration order.
func (s *Schema) FieldNames() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.name
	}
	return out
}

// ComputedNames returns the computed field names in registration order.
func (s *Schema) ComputedNames() []string {
	out := make([]string, len(s.computed))
	for i, c := range s.computed {
		out[i] = c.name
	}
	return out
}

// JSONSchema projects the schema into a minimal JSON Schema representation.
func (s *Schema) JSONSchema() (*js.Schema, error) {
	props := make(map[string]*js.Schema, len(s.fields))
	var required []string
	for _, f := range s.fields {
		ps, err := fieldJSONSchema(f)
		if err != nil {
			return nil, err
		}
		props[f.name] = ps
		if _, opt := f.typ.unwrap(); !opt && !f.hasDef {
			required = append(required, f.name)
		}
	}
	additional := any(true)
	if s.denyUnknown {
		additional = false
	}
	return &js.Schema{Type: "object", Properties: props, Required: required, AdditionalProperties: additional}, nil
}

func fieldJSONSchema(f *FieldDescriptor) (*js.Schema, error) {
	out, err := typeJSONSchema(f.typ.base())
	if err != nil {
		return nil, err
	}
	out.ExclusiveMinimum = f.gt
	out.Minimum = f.ge
	out.ExclusiveMaximum = f.lt
	out.Maximum = f.le
	if f.maxLen != nil {
		switch f.typ.base().kind {
		case KindString:
			out.MaxLength = f.maxLen
		case KindSequence:
			out.MaxItems = f.maxLen
		}
	}
	out.Format = f.format
	if f.hasDef {
		out.Default = f.def
	}
	return out, nil
}

func typeJSONSchema(t Type) (*js.Schema, error) {
	switch t.kind {
	case KindString:
		return &js.Schema{Type: "string"}, nil
	case KindInt:
		return &js.Schema{Type: "integer"}, nil
	case KindFloat:
		return &js.Schema{Type: "number"}, nil
	case KindBool:
		return &js.Schema{Type: "boolean"}, nil
	case KindSequence:
		es, err := typeJSONSchema(t.elem.base())
		if err != nil {
			return nil, err
		}
		return &js.Schema{Type: "array", Items: es}, nil
	case KindMapping:
		vs, err := typeJSONSchema(t.val.base())
		if err != nil {
			return nil, err
		}
		return &js.Schema{Type: "object", AdditionalProperties: vs}, nil
	case KindNested:
		return t.sub.JSONSchema()
	default:
		return &js.Schema{}, nil
	}
}
