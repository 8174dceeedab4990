package veld

// Kind enumerates the semantic types a field descriptor may declare.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindSequence
	KindMapping
	KindNested
	KindOptional
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	case KindNested:
		return "nested"
	case KindOptional:
		return "optional"
	default:
		return "unknown"
	}
}

// Type describes a field's declared semantic type. Composite kinds carry
// element/key/value types or a nested schema; construct values through the
// String/Int/.../Optional helpers rather than literals.
type Type struct {
	kind Kind
	elem *Type   // sequence element, or optional inner type
	key  *Type   // mapping key
	val  *Type   // mapping value
	sub  *Schema // nested record schema
}

// String declares a text field.
func String() Type { return Type{kind: KindString} }

// Int declares an integer field.
func Int() Type { return Type{kind: KindInt} }

// Float declares a floating-point field.
func Float() Type { return Type{kind: KindFloat} }

// Bool declares a boolean field.
func Bool() Type { return Type{kind: KindBool} }

// Sequence declares an ordered collection whose elements conform to elem.
func Sequence(elem Type) Type {
	e := elem
	return Type{kind: KindSequence, elem: &e}
}

// Mapping declares a key/value collection. Keys must be declared as String;
// Build rejects anything else since decoded input maps are string-keyed.
func Mapping(key, val Type) Type {
	k, v := key, val
	return Type{kind: KindMapping, key: &k, val: &v}
}

// Nested declares a single-level nested record conforming to sub.
func Nested(sub *Schema) Type { return Type{kind: KindNested, sub: sub} }

// Optional wraps a type so that a missing field is not a violation and a null
// value is stored as nil.
func Optional(inner Type) Type {
	i := inner
	return Type{kind: KindOptional, elem: &i}
}

// Kind returns the declared kind.
func (t Type) Kind() Kind { return t.kind }

// unwrap strips one Optional layer, reporting whether it was present.
func (t Type) unwrap() (Type, bool) {
	if t.kind == KindOptional && t.elem != nil {
		return *t.elem, true
	}
	return t, false
}

// base resolves through Optional to the kind constraints apply to.
func (t Type) base() Type {
	for t.kind == KindOptional && t.elem != nil {
		t = *t.elem
	}
	return t
}

func (t Type) numeric() bool {
	b := t.base().kind
	return b == KindInt || b == KindFloat
}

func (t Type) lengthy() bool {
	switch t.base().kind {
	case KindString, KindSequence, KindMapping:
		return true
	default:
		return false
	}
}

func (t Type) scalar() bool {
	switch t.base().kind {
	case KindString, KindInt, KindFloat, KindBool:
		return true
	default:
		return false
	}
}
