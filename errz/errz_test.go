package errz

import (
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"
)

func TestSyntaxErrorFormat(t *testing.T) {
	err := NewSyntaxError(3, "foo", false, "Expect ';' after expression.")
	require.Equal(t,
		"compile error: Expect ';' after expression. (line 3)", err.Error())
	require.Equal(t,
		"[line 3] Error at 'foo': Expect ';' after expression.",
		err.FriendlyErrorMessage())
}

func TestSyntaxErrorAtEnd(t *testing.T) {
	err := NewSyntaxError(1, "", true, "Expect expression.")
	require.Equal(t,
		"[line 1] Error at end: Expect expression.",
		err.FriendlyErrorMessage())
}

func TestSyntaxErrorNoLexeme(t *testing.T) {
	err := NewSyntaxError(2, "", false, "Unterminated string.")
	require.Equal(t,
		"[line 2] Error: Unterminated string.",
		err.FriendlyErrorMessage())
}

func TestRuntimeErrorFormat(t *testing.T) {
	err := NewRuntimeErrorf(ErrType, 7, "Operands must be %s.", "numbers")
	require.Equal(t, "type error: Operands must be numbers. (line 7)", err.Error())
	require.Equal(t,
		"Operands must be numbers.\n[line 7] in script",
		err.FriendlyErrorMessage())
}

func TestKindPredicates(t *testing.T) {
	syntax := NewSyntaxError(1, "x", false, "bad")
	runtime := NewRuntimeErrorf(ErrName, 1, "Undefined variable 'x'.")

	require.True(t, IsCompileError(syntax))
	require.False(t, IsRuntimeError(syntax))
	require.True(t, IsRuntimeError(runtime))
	require.False(t, IsCompileError(runtime))

	var merr error = multierror.Append(nil, syntax, syntax)
	require.True(t, IsCompileError(merr))
	require.False(t, IsRuntimeError(merr))

	require.False(t, IsCompileError(nil))
	require.False(t, IsRuntimeError(nil))
}
