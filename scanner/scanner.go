// Package scanner turns Sable source code into a lazy stream of tokens.
//
// The scanner holds only a cursor into the source buffer. Tokens are produced
// one at a time via Next and the sequence ends with an EOF token. Malformed
// input (an unterminated string, an unexpected character) produces an ERROR
// token whose Literal is the diagnostic message; the compiler is responsible
// for surfacing it.
package scanner

import (
	"github.com/cloudcmds/sable/token"
)

// Scanner produces tokens from an input string.
type Scanner struct {
	source  string
	start   int // start of the lexeme being scanned
	current int // current scan position
	line    int // current 1-based line number
}

// New creates a Scanner positioned at the start of the given source.
func New(source string) *Scanner {
	return &Scanner{source: source, line: 1}
}

// Next scans and returns the next token. After the end of input is reached,
// it returns EOF tokens forever.
func (s *Scanner) Next() token.Token {
	s.skipWhitespace()
	s.start = s.current
	if s.isAtEnd() {
		return s.make(token.EOF)
	}
	c := s.advance()
	switch {
	case isAlpha(c):
		return s.identifier()
	case isDigit(c):
		return s.number()
	}
	switch c {
	case '(':
		return s.make(token.LPAREN)
	case ')':
		return s.make(token.RPAREN)
	case '{':
		return s.make(token.LBRACE)
	case '}':
		return s.make(token.RBRACE)
	case ';':
		return s.make(token.SEMICOLON)
	case ',':
		return s.make(token.COMMA)
	case '.':
		return s.make(token.DOT)
	case '-':
		return s.make(token.MINUS)
	case '+':
		return s.make(token.PLUS)
	case '/':
		return s.make(token.SLASH)
	case '*':
		return s.make(token.STAR)
	case '!':
		if s.match('=') {
			return s.make(token.BANG_EQUAL)
		}
		return s.make(token.BANG)
	case '=':
		if s.match('=') {
			return s.make(token.EQUAL_EQUAL)
		}
		return s.make(token.EQUAL)
	case '<':
		if s.match('=') {
			return s.make(token.LESS_EQUAL)
		}
		return s.make(token.LESS)
	case '>':
		if s.match('=') {
			return s.make(token.GREATER_EQUAL)
		}
		return s.make(token.GREATER)
	case '"':
		return s.str()
	}
	return s.errorToken("Unexpected character.")
}

// skipWhitespace advances past spaces, tabs, newlines and // comments,
// counting lines as it goes.
func (s *Scanner) skipWhitespace() {
	for {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.advance()
		case '\n':
			s.line++
			s.advance()
		case '/':
			if s.peekNext() == '/' {
				// A comment goes until the end of the line
				for s.peek() != '\n' && !s.isAtEnd() {
					s.advance()
				}
			} else {
				return
			}
		default:
			return
		}
	}
}

func (s *Scanner) identifier() token.Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	lexeme := s.source[s.start:s.current]
	return token.Token{
		Type:    token.LookupIdentifier(lexeme),
		Literal: lexeme,
		Line:    s.line,
	}
}

// number scans a numeric literal: digits with an optional single fractional
// part. There is no exponent syntax.
func (s *Scanner) number() token.Token {
	for isDigit(s.peek()) {
		s.advance()
	}
	// Look for a fractional part
	if s.peek() == '.' && isDigit(s.peekNext()) {
		// Consume the "."
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	return s.make(token.NUMBER)
}

// str scans a string literal. There are no escape sequences. The returned
// token's Literal includes the surrounding quotes.
func (s *Scanner) str() token.Token {
	for s.peek() != '"' && !s.isAtEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.isAtEnd() {
		return s.errorToken("Unterminated string.")
	}
	// The closing quote
	s.advance()
	return s.make(token.STRING)
}

func (s *Scanner) make(typ token.Type) token.Token {
	return token.Token{
		Type:    typ,
		Literal: s.source[s.start:s.current],
		Line:    s.line,
	}
}

func (s *Scanner) errorToken(message string) token.Token {
	return token.Token{Type: token.ERROR, Literal: message, Line: s.line}
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.source)
}

func (s *Scanner) advance() byte {
	c := s.source[s.current]
	s.current++
	return c
}

func (s *Scanner) match(expected byte) bool {
	if s.isAtEnd() || s.source[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return 0
	}
	return s.source[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.source) {
		return 0
	}
	return s.source[s.current+1]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}
