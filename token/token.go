// Package token defines language keywords and tokens produced when scanning
// Sable source code.
package token

// Type describes the type of a token as a string.
type Type string

// Token represents one token scanned from the input source code. The Literal
// field is a view into the source buffer, not a copy. ERROR tokens carry a
// static message in Literal instead of a lexeme.
type Token struct {
	Type    Type
	Literal string
	Line    int
}

// Token types
const (
	// Single-character tokens
	LPAREN    Type = "("
	RPAREN    Type = ")"
	LBRACE    Type = "{"
	RBRACE    Type = "}"
	COMMA     Type = ","
	DOT       Type = "."
	MINUS     Type = "-"
	PLUS      Type = "+"
	SEMICOLON Type = ";"
	SLASH     Type = "/"
	STAR      Type = "*"

	// One- or two-character tokens
	BANG          Type = "!"
	BANG_EQUAL    Type = "!="
	EQUAL         Type = "="
	EQUAL_EQUAL   Type = "=="
	GREATER       Type = ">"
	GREATER_EQUAL Type = ">="
	LESS          Type = "<"
	LESS_EQUAL    Type = "<="

	// Literals
	IDENT  Type = "IDENT"
	STRING Type = "STRING"
	NUMBER Type = "NUMBER"

	// Keywords
	AND    Type = "AND"
	CLASS  Type = "CLASS"
	ELSE   Type = "ELSE"
	FALSE  Type = "FALSE"
	FOR    Type = "FOR"
	FUN    Type = "FUN"
	IF     Type = "IF"
	NIL    Type = "NIL"
	OR     Type = "OR"
	PRINT  Type = "PRINT"
	RETURN Type = "RETURN"
	SUPER  Type = "SUPER"
	THIS   Type = "THIS"
	TRUE   Type = "TRUE"
	VAR    Type = "VAR"
	WHILE  Type = "WHILE"

	// Synthetic
	ERROR Type = "ERROR"
	EOF   Type = "EOF"
)

// Reserved keywords
var keywords = map[string]Type{
	"and":    AND,
	"class":  CLASS,
	"else":   ELSE,
	"false":  FALSE,
	"for":    FOR,
	"fun":    FUN,
	"if":     IF,
	"nil":    NIL,
	"or":     OR,
	"print":  PRINT,
	"return": RETURN,
	"super":  SUPER,
	"this":   THIS,
	"true":   TRUE,
	"var":    VAR,
	"while":  WHILE,
}

// LookupIdentifier determines whether an identifier is a keyword or not.
func LookupIdentifier(identifier string) Type {
	if tok, ok := keywords[identifier]; ok {
		return tok
	}
	return IDENT
}
