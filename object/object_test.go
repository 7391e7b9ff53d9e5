package object

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTruthiness(t *testing.T) {
	in := NewInterner()
	tests := []struct {
		value    Value
		expected bool
	}{
		{Nil, false},
		{False, false},
		{True, true},
		{NewNumber(0), true},
		{NewNumber(-1), true},
		{in.Intern(""), true},
		{in.Intern("s"), true},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, tt.value.IsTruthy(), tt.value.Inspect())
	}
}

func TestNumberEquality(t *testing.T) {
	a := NewNumber(3)
	b := NewNumber(3)
	c := NewNumber(4)
	require.True(t, a.Equals(b))
	require.True(t, b.Equals(a))
	require.False(t, a.Equals(c))
	require.False(t, a.Equals(True))
	require.False(t, a.Equals(Nil))
}

func TestBoolSingletons(t *testing.T) {
	require.Same(t, True, NewBool(true))
	require.Same(t, False, NewBool(false))
	require.True(t, True.Equals(NewBool(true)))
	require.False(t, True.Equals(False))
	require.False(t, True.Equals(NewNumber(1)))
}

func TestNilEquality(t *testing.T) {
	require.True(t, Nil.Equals(Nil))
	require.False(t, Nil.Equals(False))
}

func TestStringIdentityEquality(t *testing.T) {
	in := NewInterner()
	a := in.Intern("hello")
	b := in.Intern("hello")
	c := in.Intern("world")
	require.True(t, a.Equals(b))
	require.False(t, a.Equals(c))

	// A string from a different interner has different identity, so it is
	// unequal even with equal content
	other := NewInterner().Intern("hello")
	require.False(t, a.Equals(other))
}

func TestNumberInspect(t *testing.T) {
	tests := []struct {
		value    float64
		expected string
	}{
		{4, "4"},
		{3.14, "3.14"},
		{-0.5, "-0.5"},
		{1000000, "1e+06"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, NewNumber(tt.value).Inspect())
	}
}

func TestPrintable(t *testing.T) {
	in := NewInterner()
	require.Equal(t, "hi", Printable(in.Intern("hi")))
	require.Equal(t, `"hi"`, in.Intern("hi").Inspect())
	require.Equal(t, "nil", Printable(Nil))
	require.Equal(t, "true", Printable(True))
	require.Equal(t, "4", Printable(NewNumber(4)))
}

func TestHashString(t *testing.T) {
	// FNV-1a reference values
	require.Equal(t, uint32(2166136261), HashString(""))
	require.Equal(t, HashString("abc"), HashString("abc"))
	require.NotEqual(t, HashString("abc"), HashString("abd"))
}
