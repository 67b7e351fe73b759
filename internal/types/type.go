// Package types defines the static types and runtime values of forkvm programs.
package types

import "fmt"

// Kind identifies the shape of a Type or Value.
type Kind uint8

const (
	// KindInt is a signed 64-bit integer.
	KindInt Kind = iota
	// KindBool is a boolean.
	KindBool
	// KindStr is an immutable string.
	KindStr
	// KindRef is a heap reference with an inner pointee type.
	KindRef
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindStr:
		return "string"
	case KindRef:
		return "ref"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is an immutable static type. The zero Type is Int.
type Type struct {
	Kind  Kind
	inner *Type
}

// Int returns the integer type.
func Int() Type { return Type{Kind: KindInt} }

// Bool returns the boolean type.
func Bool() Type { return Type{Kind: KindBool} }

// Str returns the string type.
func Str() Type { return Type{Kind: KindStr} }

// Ref returns a reference type pointing at values of inner.
func Ref(inner Type) Type {
	in := inner
	return Type{Kind: KindRef, inner: &in}
}

// Inner returns the pointee type of a reference type.
// ok is false for non-reference types.
func (t Type) Inner() (Type, bool) {
	if t.Kind != KindRef || t.inner == nil {
		return Type{}, false
	}
	return *t.inner, true
}

// IsRef reports whether t is a reference type.
func (t Type) IsRef() bool { return t.Kind == KindRef }

// Equal reports structural equality, recursing through reference types.
func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind {
		return false
	}
	if t.Kind != KindRef {
		return true
	}
	a, _ := t.Inner()
	b, _ := other.Inner()
	return a.Equal(b)
}

// Default returns the canonical default value for the type.
func (t Type) Default() Value {
	switch t.Kind {
	case KindBool:
		return BoolValue(false)
	case KindStr:
		return StrValue("")
	case KindRef:
		inner, _ := t.Inner()
		return RefValue(Null, inner)
	default:
		return IntValue(0)
	}
}

// String renders the type in surface syntax.
func (t Type) String() string {
	if t.Kind == KindRef {
		inner, _ := t.Inner()
		return "ref " + inner.String()
	}
	return t.Kind.String()
}
