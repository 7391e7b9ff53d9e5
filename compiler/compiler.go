// Package compiler translates Sable source code into bytecode in a single
// pass: there is no intermediate syntax tree. Statements are parsed by
// recursive descent and expressions by precedence climbing, with each parsed
// construct immediately emitting instructions into a bytecode.Chunk.
//
// # Expression parsing
//
// A table maps each token type to an optional prefix handler, an optional
// infix handler, and a binding precedence. parsePrecedence consumes one
// prefix construct and then greedily consumes infix operators of at least
// the requested precedence, which yields left-associative binary operators
// and correctly nested unary and grouping expressions.
//
// # Variable resolution
//
// At scope depth zero, named variables compile to global-table accesses
// keyed by an interned-string constant in the chunk's constant pool. Inside
// a block, declarations claim stack slots that are resolved at compile time
// by searching the locals array back to front, so inner shadowing wins. A
// declared-but-uninitialized local carries the sentinel depth -1; referring
// to it from its own initializer is a compile error.
//
// # Error recovery
//
// The first error in a construct switches the parser into panic mode, which
// suppresses further diagnostics until the parser resynchronizes at the next
// statement boundary. Each broken statement therefore reports exactly one
// diagnostic. All diagnostics are accumulated and returned together; when
// any were reported, the produced chunk is unusable and is discarded.
package compiler

import (
	"strconv"

	"github.com/hashicorp/go-multierror"

	"github.com/cloudcmds/sable/bytecode"
	"github.com/cloudcmds/sable/errz"
	"github.com/cloudcmds/sable/object"
	"github.com/cloudcmds/sable/op"
	"github.com/cloudcmds/sable/scanner"
	"github.com/cloudcmds/sable/token"
)

// MaxLocals is the number of local variable slots available in one
// compilation, bounded by the one-byte slot operand.
const MaxLocals = 256

// uninitialized is the scope depth of a local that has been declared but
// whose initializer has not finished compiling.
const uninitialized = -1

type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

type parseFn func(canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

// local is one declared local variable: its name token and the depth of the
// scope that declared it.
type local struct {
	name  token.Token
	depth int
}

// Compiler compiles Sable source into a bytecode chunk. A Compiler may be
// reused for multiple Compile calls; parser and scope state is reset on
// each call.
type Compiler struct {
	scanner  *scanner.Scanner
	chunk    *bytecode.Chunk
	interner *object.Interner
	rules    map[token.Type]parseRule

	// Parser state
	current   token.Token
	previous  token.Token
	hadError  bool
	panicMode bool
	diags     *multierror.Error

	// Lexical scope state
	locals     [MaxLocals]local
	localCount int
	scopeDepth int
}

// Option is a configuration function for a Compiler.
type Option func(*Compiler)

// WithInterner sets the string interner the compiler places string constants
// into. The VM executing the compiled chunk must share the same interner so
// that string identity holds across compile time and run time.
func WithInterner(interner *object.Interner) Option {
	return func(c *Compiler) {
		c.interner = interner
	}
}

// Compile compiles the given source and returns the populated chunk. On any
// lexical or syntactic error it returns all accumulated diagnostics and the
// chunk must be considered unusable.
func Compile(source string, opts ...Option) (*bytecode.Chunk, error) {
	return New(opts...).Compile(source)
}

// New creates and returns a new Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}
	if c.interner == nil {
		c.interner = object.NewInterner()
	}
	c.rules = map[token.Type]parseRule{
		token.LPAREN:        {prefix: c.grouping},
		token.MINUS:         {prefix: c.unary, infix: c.binary, precedence: precTerm},
		token.PLUS:          {infix: c.binary, precedence: precTerm},
		token.SLASH:         {infix: c.binary, precedence: precFactor},
		token.STAR:          {infix: c.binary, precedence: precFactor},
		token.BANG:          {prefix: c.unary},
		token.BANG_EQUAL:    {infix: c.binary, precedence: precEquality},
		token.EQUAL_EQUAL:   {infix: c.binary, precedence: precEquality},
		token.GREATER:       {infix: c.binary, precedence: precComparison},
		token.GREATER_EQUAL: {infix: c.binary, precedence: precComparison},
		token.LESS:          {infix: c.binary, precedence: precComparison},
		token.LESS_EQUAL:    {infix: c.binary, precedence: precComparison},
		token.IDENT:         {prefix: c.variable},
		token.STRING:        {prefix: c.stringLiteral},
		token.NUMBER:        {prefix: c.number},
		token.FALSE:         {prefix: c.literal},
		token.NIL:           {prefix: c.literal},
		token.TRUE:          {prefix: c.literal},
	}
	return c
}

// Compile compiles the given source text into a fresh chunk.
func (c *Compiler) Compile(source string) (*bytecode.Chunk, error) {
	c.scanner = scanner.New(source)
	c.chunk = bytecode.New()
	c.hadError = false
	c.panicMode = false
	c.diags = nil
	c.localCount = 0
	c.scopeDepth = 0

	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	c.emitOp(op.Return)

	if c.hadError {
		return nil, c.diags.ErrorOrNil()
	}
	return c.chunk, nil
}

// Interner returns the interner the compiler registers string constants in.
func (c *Compiler) Interner() *object.Interner {
	return c.interner
}

func (c *Compiler) getRule(typ token.Type) parseRule {
	return c.rules[typ]
}

// ----------------------------------------------------------------------------
// Diagnostics

// errorAt records a diagnostic against the given token. While panic mode is
// set, further diagnostics are suppressed until the parser resynchronizes.
func (c *Compiler) errorAt(tok token.Token, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true

	var diag *errz.StructuredError
	switch tok.Type {
	case token.EOF:
		diag = errz.NewSyntaxError(tok.Line, "", true, message)
	case token.ERROR:
		// The token carries no lexeme, only the scanner's message
		diag = errz.NewSyntaxError(tok.Line, "", false, message)
	default:
		diag = errz.NewSyntaxError(tok.Line, tok.Literal, false, message)
	}
	c.diags = multierror.Append(c.diags, diag)
}

func (c *Compiler) error(message string) {
	c.errorAt(c.previous, message)
}

func (c *Compiler) errorAtCurrent(message string) {
	c.errorAt(c.current, message)
}

// ----------------------------------------------------------------------------
// Token consumption

// advance steps to the next token, reporting any ERROR tokens the scanner
// hands us along the way.
func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scanner.Next()
		if c.current.Type != token.ERROR {
			break
		}
		c.errorAtCurrent(c.current.Literal)
	}
}

// consume advances past a token of the expected type or reports an error.
func (c *Compiler) consume(typ token.Type, message string) {
	if c.current.Type == typ {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

func (c *Compiler) check(typ token.Type) bool {
	return c.current.Type == typ
}

func (c *Compiler) match(typ token.Type) bool {
	if !c.check(typ) {
		return false
	}
	c.advance()
	return true
}

// synchronize exits panic mode by skipping tokens until a statement
// boundary: just past a semicolon, or just before a token that begins a
// declaration or statement.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Type != token.EOF {
		if c.previous.Type == token.SEMICOLON {
			return
		}
		switch c.current.Type {
		case token.CLASS, token.FUN, token.VAR, token.FOR,
			token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		c.advance()
	}
}

// ----------------------------------------------------------------------------
// Bytecode emission

// emitByte writes one byte, attributed to the previous token's line so that
// runtime errors point at the construct that emitted the instruction.
func (c *Compiler) emitByte(b byte) {
	c.chunk.Write(b, c.previous.Line)
}

func (c *Compiler) emitOp(code op.Code) {
	c.emitByte(byte(code))
}

func (c *Compiler) emitOps(code1, code2 op.Code) {
	c.emitByte(byte(code1))
	c.emitByte(byte(code2))
}

func (c *Compiler) emitOpByte(code op.Code, operand byte) {
	c.emitByte(byte(code))
	c.emitByte(operand)
}

// makeConstant adds a value to the chunk's constant pool and returns its
// index. Exceeding the one-byte index space is a compile error, not a
// silent truncation.
func (c *Compiler) makeConstant(value object.Value) byte {
	index, ok := c.chunk.AddConstant(value)
	if !ok {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return byte(index)
}

func (c *Compiler) emitConstant(value object.Value) {
	c.emitOpByte(op.Constant, c.makeConstant(value))
}

// ----------------------------------------------------------------------------
// Variables and scopes

// identifierConstant interns the token's lexeme and adds it to the constant
// pool, returning the constant index used as a global-access operand.
func (c *Compiler) identifierConstant(name token.Token) byte {
	return c.makeConstant(c.interner.Intern(name.Literal))
}

func identifiersEqual(a, b token.Token) bool {
	return a.Literal == b.Literal
}

// resolveLocal returns the stack slot of the named local, searching back to
// front so the innermost shadowing declaration wins, or -1 if the name does
// not resolve to a local.
func (c *Compiler) resolveLocal(name token.Token) int {
	for i := c.localCount - 1; i >= 0; i-- {
		l := &c.locals[i]
		if identifiersEqual(name, l.name) {
			if l.depth == uninitialized {
				c.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

// addLocal claims the next stack slot for a new local. The local starts in
// the uninitialized state until its initializer has been compiled.
func (c *Compiler) addLocal(name token.Token) {
	if c.localCount == MaxLocals {
		c.error("Too many local variables in function.")
		return
	}
	c.locals[c.localCount] = local{name: name, depth: uninitialized}
	c.localCount++
}

// declareVariable records a local declaration. Globals are late bound and
// need no declaration. Redeclaring a name within the same scope is an
// error; shadowing an outer scope is allowed.
func (c *Compiler) declareVariable() {
	if c.scopeDepth == 0 {
		return
	}
	name := c.previous
	for i := c.localCount - 1; i >= 0; i-- {
		l := &c.locals[i]
		if l.depth != uninitialized && l.depth < c.scopeDepth {
			break
		}
		if identifiersEqual(name, l.name) {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) parseVariable(errorMessage string) byte {
	c.consume(token.IDENT, errorMessage)
	c.declareVariable()
	if c.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.previous)
}

func (c *Compiler) markInitialized() {
	c.locals[c.localCount-1].depth = c.scopeDepth
}

// defineVariable makes a declared variable available for use. For a local,
// its value is already sitting in the right stack slot and only the
// initialized marker is needed; for a global, the value on the stack is
// stored into the global table.
func (c *Compiler) defineVariable(global byte) {
	if c.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOpByte(op.DefineGlobal, global)
}

func (c *Compiler) beginScope() {
	c.scopeDepth++
}

// endScope pops each local belonging to the closing scope, in reverse
// declaration order.
func (c *Compiler) endScope() {
	c.scopeDepth--
	for c.localCount > 0 && c.locals[c.localCount-1].depth > c.scopeDepth {
		c.emitOp(op.Pop)
		c.localCount--
	}
}

// ----------------------------------------------------------------------------
// Expressions

// parsePrecedence parses any expression whose operators bind at least as
// tightly as the given precedence.
func (c *Compiler) parsePrecedence(prec precedence) {
	c.advance()
	prefix := c.getRule(c.previous.Type).prefix
	if prefix == nil {
		c.error("Expect expression.")
		return
	}

	// Assignment binds loosest, so a prefix construct may only be an
	// assignment target when nothing tighter is being parsed
	canAssign := prec <= precAssignment
	prefix(canAssign)

	for prec <= c.getRule(c.current.Type).precedence {
		c.advance()
		infix := c.getRule(c.previous.Type).infix
		infix(canAssign)
	}

	if canAssign && c.match(token.EQUAL) {
		c.error("Invalid assignment target.")
	}
}

func (c *Compiler) expression() {
	c.parsePrecedence(precAssignment)
}

func (c *Compiler) grouping(canAssign bool) {
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after expression.")
}

func (c *Compiler) number(canAssign bool) {
	value, err := strconv.ParseFloat(c.previous.Literal, 64)
	if err != nil {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstant(object.NewNumber(value))
}

// stringLiteral trims the surrounding quotes from the lexeme and interns
// the contents as a constant.
func (c *Compiler) stringLiteral(canAssign bool) {
	lexeme := c.previous.Literal
	c.emitConstant(c.interner.Intern(lexeme[1 : len(lexeme)-1]))
}

func (c *Compiler) literal(canAssign bool) {
	switch c.previous.Type {
	case token.FALSE:
		c.emitOp(op.False)
	case token.NIL:
		c.emitOp(op.Nil)
	case token.TRUE:
		c.emitOp(op.True)
	}
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous, canAssign)
}

// namedVariable compiles a variable reference or, when a '=' follows an
// assignable reference, an assignment to it.
func (c *Compiler) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp op.Code
	arg := c.resolveLocal(name)
	if arg != -1 {
		getOp = op.GetLocal
		setOp = op.SetLocal
	} else {
		arg = int(c.identifierConstant(name))
		getOp = op.GetGlobal
		setOp = op.SetGlobal
	}
	if canAssign && c.match(token.EQUAL) {
		c.expression()
		c.emitOpByte(setOp, byte(arg))
	} else {
		c.emitOpByte(getOp, byte(arg))
	}
}

func (c *Compiler) unary(canAssign bool) {
	operatorType := c.previous.Type

	// Compile the operand
	c.parsePrecedence(precUnary)

	switch operatorType {
	case token.BANG:
		c.emitOp(op.Not)
	case token.MINUS:
		c.emitOp(op.Negate)
	}
}

func (c *Compiler) binary(canAssign bool) {
	operatorType := c.previous.Type
	rule := c.getRule(operatorType)
	c.parsePrecedence(rule.precedence + 1)

	switch operatorType {
	case token.BANG_EQUAL:
		c.emitOps(op.Equal, op.Not)
	case token.EQUAL_EQUAL:
		c.emitOp(op.Equal)
	case token.GREATER:
		c.emitOp(op.Greater)
	case token.GREATER_EQUAL:
		c.emitOps(op.Less, op.Not)
	case token.LESS:
		c.emitOp(op.Less)
	case token.LESS_EQUAL:
		c.emitOps(op.Greater, op.Not)
	case token.PLUS:
		c.emitOp(op.Add)
	case token.MINUS:
		c.emitOp(op.Subtract)
	case token.STAR:
		c.emitOp(op.Multiply)
	case token.SLASH:
		c.emitOp(op.Divide)
	}
}

// ----------------------------------------------------------------------------
// Statements

func (c *Compiler) declaration() {
	if c.match(token.VAR) {
		c.varDeclaration()
	} else {
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

// varDeclaration compiles a var statement. A missing initializer defaults
// the variable to nil.
func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")

	if c.match(token.EQUAL) {
		c.expression()
	} else {
		c.emitOp(op.Nil)
	}
	c.consume(token.SEMICOLON, "Expect ';' after variable declaration.")

	c.defineVariable(global)
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.PRINT):
		c.printStatement()
	case c.match(token.LBRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RBRACE, "Expect '}' after block.")
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after value.")
	c.emitOp(op.Print)
}

// expressionStatement evaluates an expression for its side effects and
// discards the result.
func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after expression.")
	c.emitOp(op.Pop)
}
