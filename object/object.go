// Package object provides the Sable value types, the string interner, and
// the hash table used for global variables and the interning set.
//
// Code working with values usually type asserts an object.Value to a
// specific type:
//
//	switch obj := obj.(type) {
//	case *object.String:
//		// do something with obj.Value()
//	case *object.Number:
//		// do something with obj.Value()
//	}
//
// The Type() method of each value may also be used to get a string name of
// the value type, such as "string" or "number".
package object

import (
	"fmt"
	"strconv"
)

// Type of a value as a string.
type Type string

// Type constants
const (
	BOOL   Type = "bool"
	NIL    Type = "nil"
	NUMBER Type = "number"
	STRING Type = "string"
)

var (
	Nil   = &NilType{}
	True  = &Bool{value: true}
	False = &Bool{value: false}
)

// Value is the interface implemented by all Sable value types. Values are
// copied by reference onto the VM stack; the primitives are immutable so the
// distinction is unobservable.
type Value interface {
	// Type of the value.
	Type() Type

	// Inspect returns a string representation of the value for debugging
	// and disassembly output. Strings are quoted.
	Inspect() string

	// IsTruthy returns true if the value is considered "truthy". Only nil
	// and false are falsey; every other value, including 0, is truthy.
	IsTruthy() bool

	// Equals returns true if the given value is equal to this one. Equality
	// never fails: values of different types are simply unequal.
	Equals(other Value) bool
}

// Bool wraps bool and implements Value. Only the two singletons True and
// False exist, so booleans compare by identity.
type Bool struct {
	value bool
}

func (b *Bool) Type() Type { return BOOL }

func (b *Bool) Value() bool { return b.value }

func (b *Bool) Inspect() string {
	return strconv.FormatBool(b.value)
}

func (b *Bool) IsTruthy() bool { return b.value }

func (b *Bool) Equals(other Value) bool {
	return b == other
}

func (b *Bool) String() string { return b.Inspect() }

// NewBool returns the Bool singleton for the given bool.
func NewBool(value bool) *Bool {
	if value {
		return True
	}
	return False
}

// NilType is the type of the Nil singleton.
type NilType struct{}

func (n *NilType) Type() Type { return NIL }

func (n *NilType) Inspect() string { return "nil" }

func (n *NilType) IsTruthy() bool { return false }

func (n *NilType) Equals(other Value) bool {
	return n == other
}

func (n *NilType) String() string { return "nil" }

// Number wraps float64 and implements Value.
type Number struct {
	value float64
}

func (n *Number) Type() Type { return NUMBER }

func (n *Number) Value() float64 { return n.value }

func (n *Number) Inspect() string {
	return strconv.FormatFloat(n.value, 'g', -1, 64)
}

func (n *Number) IsTruthy() bool { return true }

func (n *Number) Equals(other Value) bool {
	num, ok := other.(*Number)
	if !ok {
		return false
	}
	return n.value == num.value
}

func (n *Number) String() string { return n.Inspect() }

// NewNumber creates a Number containing the given float64.
func NewNumber(value float64) *Number {
	return &Number{value: value}
}

// Printable returns the value that the print statement should write. Unlike
// Inspect, strings print their raw contents without quotes.
func Printable(v Value) string {
	if s, ok := v.(*String); ok {
		return s.Value()
	}
	return v.Inspect()
}

// String is an interned immutable string with a precomputed hash. Two
// strings with equal content are always the same *String, so strings
// compare by pointer identity. Construct strings through an Interner;
// a zero-value or composite-literal String breaks the interning invariant.
type String struct {
	value string
	hash  uint32
}

func (s *String) Type() Type { return STRING }

func (s *String) Value() string { return s.value }

// Hash returns the precomputed FNV-1a hash of the string content.
func (s *String) Hash() uint32 { return s.hash }

func (s *String) Inspect() string {
	return fmt.Sprintf("%q", s.value)
}

func (s *String) IsTruthy() bool { return true }

// Equals compares by identity, which is valid because of interning: two
// equal strings are always the same object.
func (s *String) Equals(other Value) bool {
	return Value(s) == other
}

func (s *String) String() string { return s.value }

// HashString computes the FNV-1a 32-bit hash of the given string content.
// This is the hash stored on String values and used by Table.
func HashString(key string) uint32 {
	var hash uint32 = 2166136261
	for i := 0; i < len(key); i++ {
		hash ^= uint32(key[i])
		hash *= 16777619
	}
	return hash
}
