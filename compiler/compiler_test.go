package compiler

import (
	"strconv"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"

	"github.com/cloudcmds/sable/bytecode"
	"github.com/cloudcmds/sable/object"
	"github.com/cloudcmds/sable/op"
)

func compileOK(t *testing.T, source string) *bytecode.Chunk {
	t.Helper()
	chunk, err := Compile(source)
	require.Nil(t, err)
	return chunk
}

func TestEmptySource(t *testing.T) {
	chunk := compileOK(t, "")
	require.Equal(t, []byte{byte(op.Return)}, chunk.Code())
}

func TestNumberLiteral(t *testing.T) {
	chunk := compileOK(t, "1.5;")
	require.Equal(t, []byte{
		byte(op.Constant), 0,
		byte(op.Pop),
		byte(op.Return),
	}, chunk.Code())
	require.Equal(t, 1.5, chunk.Constant(0).(*object.Number).Value())
}

func TestLiterals(t *testing.T) {
	chunk := compileOK(t, "true; false; nil;")
	require.Equal(t, []byte{
		byte(op.True), byte(op.Pop),
		byte(op.False), byte(op.Pop),
		byte(op.Nil), byte(op.Pop),
		byte(op.Return),
	}, chunk.Code())
}

func TestPrecedenceMultiplicationBindsTighter(t *testing.T) {
	chunk := compileOK(t, "1 + 2 * 3;")
	require.Equal(t, []byte{
		byte(op.Constant), 0,
		byte(op.Constant), 1,
		byte(op.Constant), 2,
		byte(op.Multiply),
		byte(op.Add),
		byte(op.Pop),
		byte(op.Return),
	}, chunk.Code())
}

func TestGroupingOverridesPrecedence(t *testing.T) {
	chunk := compileOK(t, "(1 + 2) * 3;")
	require.Equal(t, []byte{
		byte(op.Constant), 0,
		byte(op.Constant), 1,
		byte(op.Add),
		byte(op.Constant), 2,
		byte(op.Multiply),
		byte(op.Pop),
		byte(op.Return),
	}, chunk.Code())
}

func TestUnaryNegationBeforeAdd(t *testing.T) {
	chunk := compileOK(t, "-2 + 3;")
	require.Equal(t, []byte{
		byte(op.Constant), 0,
		byte(op.Negate),
		byte(op.Constant), 1,
		byte(op.Add),
		byte(op.Pop),
		byte(op.Return),
	}, chunk.Code())
}

func TestComparisonPairs(t *testing.T) {
	// >= and <= compile to the inverse comparison followed by NOT
	chunk := compileOK(t, "1 <= 2;")
	require.Equal(t, []byte{
		byte(op.Constant), 0,
		byte(op.Constant), 1,
		byte(op.Greater),
		byte(op.Not),
		byte(op.Pop),
		byte(op.Return),
	}, chunk.Code())

	chunk = compileOK(t, "1 != 2;")
	require.Equal(t, []byte{
		byte(op.Constant), 0,
		byte(op.Constant), 1,
		byte(op.Equal),
		byte(op.Not),
		byte(op.Pop),
		byte(op.Return),
	}, chunk.Code())
}

func TestGlobalDeclaration(t *testing.T) {
	chunk := compileOK(t, "var x = 1;")
	require.Equal(t, []byte{
		byte(op.Constant), 1,
		byte(op.DefineGlobal), 0,
		byte(op.Return),
	}, chunk.Code())
	// Constant 0 is the interned variable name
	require.Equal(t, "x", chunk.Constant(0).(*object.String).Value())
}

func TestGlobalDeclarationDefaultsToNil(t *testing.T) {
	chunk := compileOK(t, "var x;")
	require.Equal(t, []byte{
		byte(op.Nil),
		byte(op.DefineGlobal), 0,
		byte(op.Return),
	}, chunk.Code())
}

func TestGlobalAssignment(t *testing.T) {
	chunk := compileOK(t, "x = 2;")
	require.Equal(t, []byte{
		byte(op.Constant), 1,
		byte(op.SetGlobal), 0,
		byte(op.Pop),
		byte(op.Return),
	}, chunk.Code())
}

func TestLocalSlots(t *testing.T) {
	chunk := compileOK(t, "{ var a = 1; print a; }")
	require.Equal(t, []byte{
		byte(op.Constant), 0,
		byte(op.GetLocal), 0,
		byte(op.Print),
		byte(op.Pop),
		byte(op.Return),
	}, chunk.Code())
}

func TestScopeExitPopsInReverseOrder(t *testing.T) {
	chunk := compileOK(t, "{ var a = 1; var b = 2; }")
	require.Equal(t, []byte{
		byte(op.Constant), 0,
		byte(op.Constant), 1,
		byte(op.Pop),
		byte(op.Pop),
		byte(op.Return),
	}, chunk.Code())
}

func TestShadowingResolvesInnermost(t *testing.T) {
	chunk := compileOK(t, "{ var a = 1; { var a = 2; a = 3; } }")
	// The inner assignment targets slot 1, not slot 0
	require.Equal(t, []byte{
		byte(op.Constant), 0,
		byte(op.Constant), 1,
		byte(op.Constant), 2,
		byte(op.SetLocal), 1,
		byte(op.Pop),
		byte(op.Pop),
		byte(op.Pop),
		byte(op.Return),
	}, chunk.Code())
}

func TestStringConstantsAreInterned(t *testing.T) {
	c := New()
	chunk, err := c.Compile(`"hi"; "hi";`)
	require.Nil(t, err)
	a := chunk.Constant(0).(*object.String)
	b := chunk.Constant(1).(*object.String)
	require.Same(t, a, b)

	interned, found := c.Interner().Lookup("hi")
	require.True(t, found)
	require.Same(t, a, interned)
}

func TestLineAttribution(t *testing.T) {
	chunk := compileOK(t, "1;\n2;")
	require.Equal(t, 1, chunk.LineAt(0))
	require.Equal(t, 1, chunk.LineAt(2))
	require.Equal(t, 2, chunk.LineAt(3))
}

func requireCompileError(t *testing.T, source, message string) {
	t.Helper()
	_, err := Compile(source)
	require.NotNil(t, err)
	require.Contains(t, err.Error(), message)
}

func TestInvalidAssignmentTarget(t *testing.T) {
	requireCompileError(t, "1 + 2 = 3;", "Invalid assignment target.")
	requireCompileError(t, "a + b = 1;", "Invalid assignment target.")
}

func TestSelfReferentialInitializer(t *testing.T) {
	requireCompileError(t, "{ var a = a; }",
		"Can't read local variable in its own initializer.")
}

func TestSelfReferenceAllowedForGlobals(t *testing.T) {
	// Globals are late bound, so this compiles (and fails at runtime)
	compileOK(t, "var a = a;")
}

func TestDuplicateLocal(t *testing.T) {
	requireCompileError(t, "{ var a = 1; var a = 2; }",
		"Already a variable with this name in this scope.")
}

func TestShadowingAcrossScopesAllowed(t *testing.T) {
	compileOK(t, "{ var a = 1; { var a = 2; } }")
}

func TestMissingSemicolon(t *testing.T) {
	requireCompileError(t, "print 1", "Expect ';' after value.")
	requireCompileError(t, "1 + 2", "Expect ';' after expression.")
}

func TestExpectExpression(t *testing.T) {
	requireCompileError(t, "+;", "Expect expression.")
}

func TestUnterminatedBlock(t *testing.T) {
	requireCompileError(t, "{ var a = 1;", "Expect '}' after block.")
}

func TestReservedWordsHaveNoProductions(t *testing.T) {
	// if/while/and/or are keywords without grammar rules in this language
	requireCompileError(t, "if (true) {}", "Expect expression.")
	requireCompileError(t, "1 and 2;", "Expect ';' after expression.")
	requireCompileError(t, "1 or 2;", "Expect ';' after expression.")
}

func TestScannerErrorsSurfaceAsDiagnostics(t *testing.T) {
	requireCompileError(t, `"unterminated`, "Unterminated string.")
	requireCompileError(t, "@;", "Unexpected character.")
}

func TestOneDiagnosticPerBrokenStatement(t *testing.T) {
	_, err := Compile("foo bar; baz qux;")
	require.NotNil(t, err)
	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	require.Len(t, merr.Errors, 2)
}

func TestPanicModeSuppressesCascades(t *testing.T) {
	// Multiple problems inside one statement report only the first
	_, err := Compile("print 1 2 3;")
	require.NotNil(t, err)
	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	require.Len(t, merr.Errors, 1)
}

func TestTooManyConstants(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 260; i++ {
		b.WriteString("1;")
	}
	requireCompileError(t, b.String(), "Too many constants in one chunk.")
}

func TestTooManyLocals(t *testing.T) {
	var b strings.Builder
	b.WriteString("{")
	for i := 0; i < MaxLocals+1; i++ {
		b.WriteString("var v")
		b.WriteString(strconv.Itoa(i))
		b.WriteString(";")
	}
	b.WriteString("}")
	requireCompileError(t, b.String(), "Too many local variables in function.")
}
