package types

import (
	"strconv"
)

// Address identifies a heap slot. Null is never a valid slot.
type Address uint64

// Null is the sentinel reference address.
const Null Address = 0

// Value is an immutable runtime value. The zero Value is Int 0.
type Value struct {
	kind    Kind
	i       int64
	b       bool
	s       string
	addr    Address
	pointee Type
}

// IntValue constructs an integer value.
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

// BoolValue constructs a boolean value.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// StrValue constructs a string value.
func StrValue(s string) Value { return Value{kind: KindStr, s: s} }

// RefValue constructs a reference to addr holding values of type pointee.
func RefValue(addr Address, pointee Type) Value {
	return Value{kind: KindRef, addr: addr, pointee: pointee}
}

// Kind returns the value kind.
func (v Value) Kind() Kind { return v.kind }

// Type returns the dynamic type of the value.
func (v Value) Type() Type {
	switch v.kind {
	case KindBool:
		return Bool()
	case KindStr:
		return Str()
	case KindRef:
		return Ref(v.pointee)
	default:
		return Int()
	}
}

// Int returns the integer payload; ok is false for other kinds.
func (v Value) Int() (int64, bool) { return v.i, v.kind == KindInt }

// Bool returns the boolean payload; ok is false for other kinds.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// Str returns the string payload; ok is false for other kinds.
func (v Value) Str() (string, bool) { return v.s, v.kind == KindStr }

// Ref returns the address and pointee type; ok is false for non-references.
func (v Value) Ref() (Address, Type, bool) {
	return v.addr, v.pointee, v.kind == KindRef
}

// IsNullRef reports whether v is a reference to the null address.
func (v Value) IsNullRef() bool { return v.kind == KindRef && v.addr == Null }

// Equal reports structural equality.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == other.b
	case KindStr:
		return v.s == other.s
	case KindRef:
		return v.addr == other.addr && v.pointee.Equal(other.pointee)
	default:
		return v.i == other.i
	}
}

// String renders the value for display and logs.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindStr:
		return strconv.Quote(v.s)
	case KindRef:
		return "(" + strconv.FormatUint(uint64(v.addr), 10) + ", " + v.pointee.String() + ")"
	default:
		return strconv.FormatInt(v.i, 10)
	}
}
