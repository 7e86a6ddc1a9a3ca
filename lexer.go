package wee

import (
	"strings"

	"github.com/jcorbin/wee/internal/fileinput"
)

// Lexer is a one-token-lookahead scanner over source text. It reads through
// an internal/fileinput.Input (which in turn uses internal/runeio for rune
// decoding), the same plumbing gothird's vm.scan uses in internals.go, so
// every Token comes with an accurate source line for free, and the same
// input queue could carry a REPL's successive lines.
//
// The scanner itself keeps a two-rune sliding window (ch, ch2) rather than
// source[current]/source[current+1] index arithmetic, since Input has no
// random access; ch2 is what lets "//" be recognized before either slash is
// consumed.
type Lexer struct {
	in  fileinput.Input
	ch  rune
	ch2 rune

	peeked    Token
	hasPeeked bool
}

// NewLexer returns a Lexer scanning source.
func NewLexer(source string) *Lexer {
	lx := &Lexer{}
	lx.in.Queue = append(lx.in.Queue, strings.NewReader(source))
	lx.ch = lx.readRune()
	lx.ch2 = lx.readRune()
	return lx
}

func (lx *Lexer) readRune() rune {
	r, _, err := lx.in.ReadRune()
	if err != nil {
		return 0
	}
	return r
}

// atEOF reports whether ch is the end-of-input sentinel rune 0. readRune
// maps end of input to 0, but Input.ReadRune also returns 0 for a NUL byte
// in the source, so a NUL ends scanning as if it were the end of input.
func (lx *Lexer) atEOF() bool {
	return lx.ch == 0
}

func (lx *Lexer) advance() rune {
	c := lx.ch
	lx.ch = lx.ch2
	lx.ch2 = lx.readRune()
	return c
}

func (lx *Lexer) line() int {
	if lx.in.Scan.Line == 0 {
		return 1
	}
	return lx.in.Scan.Line
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() Token {
	if !lx.hasPeeked {
		lx.peeked = lx.scan()
		lx.hasPeeked = true
	}
	return lx.peeked
}

// Next consumes and returns the next token.
func (lx *Lexer) Next() Token {
	if lx.hasPeeked {
		lx.hasPeeked = false
		return lx.peeked
	}
	return lx.scan()
}

func (lx *Lexer) errorToken(msg string) Token {
	return Token{Kind: TokenError, Lexeme: msg, Line: lx.line()}
}

func (lx *Lexer) scan() Token {
	lx.skipWhitespaceAndComments()

	line := lx.line()
	if lx.atEOF() {
		return Token{Kind: TokenEOF, Line: line}
	}

	c := lx.ch
	switch {
	case isAlpha(c):
		return lx.identifier(line)
	case isDigit(c):
		return lx.number(line)
	case c == '"':
		return lx.string(line)
	}

	lx.advance()
	switch c {
	case '(':
		return Token{Kind: TokenLeftParen, Lexeme: "(", Line: line}
	case ')':
		return Token{Kind: TokenRightParen, Lexeme: ")", Line: line}
	case '{':
		return Token{Kind: TokenLeftBrace, Lexeme: "{", Line: line}
	case '}':
		return Token{Kind: TokenRightBrace, Lexeme: "}", Line: line}
	case ',':
		return Token{Kind: TokenComma, Lexeme: ",", Line: line}
	case '.':
		return Token{Kind: TokenDot, Lexeme: ".", Line: line}
	case '-':
		return Token{Kind: TokenMinus, Lexeme: "-", Line: line}
	case '+':
		return Token{Kind: TokenPlus, Lexeme: "+", Line: line}
	case ';':
		return Token{Kind: TokenSemicolon, Lexeme: ";", Line: line}
	case ':':
		return Token{Kind: TokenColon, Lexeme: ":", Line: line}
	case '/':
		return Token{Kind: TokenSlash, Lexeme: "/", Line: line}
	case '*':
		return Token{Kind: TokenStar, Lexeme: "*", Line: line}
	case '!':
		if lx.match('=') {
			return Token{Kind: TokenBangEqual, Lexeme: "!=", Line: line}
		}
		return Token{Kind: TokenBang, Lexeme: "!", Line: line}
	case '=':
		if lx.match('=') {
			return Token{Kind: TokenEqualEqual, Lexeme: "==", Line: line}
		}
		return Token{Kind: TokenEqual, Lexeme: "=", Line: line}
	case '<':
		if lx.match('=') {
			return Token{Kind: TokenLessEqual, Lexeme: "<=", Line: line}
		}
		return Token{Kind: TokenLess, Lexeme: "<", Line: line}
	case '>':
		if lx.match('=') {
			return Token{Kind: TokenGreaterEqual, Lexeme: ">=", Line: line}
		}
		return Token{Kind: TokenGreater, Lexeme: ">", Line: line}
	}

	return lx.errorToken("unexpected character")
}

func (lx *Lexer) match(want rune) bool {
	if lx.atEOF() || lx.ch != want {
		return false
	}
	lx.advance()
	return true
}

func (lx *Lexer) skipWhitespaceAndComments() {
	for !lx.atEOF() {
		switch lx.ch {
		case ' ', '\t', '\r', '\n':
			lx.advance()
		case '/':
			if lx.ch2 != '/' {
				return
			}
			for !lx.atEOF() && lx.ch != '\n' {
				lx.advance()
			}
		default:
			return
		}
	}
}

func (lx *Lexer) identifier(line int) Token {
	var sb strings.Builder
	for !lx.atEOF() && (isAlpha(lx.ch) || isDigit(lx.ch)) {
		sb.WriteRune(lx.advance())
	}
	text := sb.String()
	kind := TokenIdentifier
	if k, ok := keywords[text]; ok {
		kind = k
	}
	return Token{Kind: kind, Lexeme: text, Line: line}
}

func (lx *Lexer) number(line int) Token {
	var sb strings.Builder
	for !lx.atEOF() && isDigit(lx.ch) {
		sb.WriteRune(lx.advance())
	}
	if !lx.atEOF() && lx.ch == '.' && isDigit(lx.ch2) {
		sb.WriteRune(lx.advance())
		for !lx.atEOF() && isDigit(lx.ch) {
			sb.WriteRune(lx.advance())
		}
	}
	return Token{Kind: TokenNumber, Lexeme: sb.String(), Line: line}
}

// string scans a "..." literal. A multi-line string's token Line is the
// line its closing quote lands on, not its opening one, so a runtime error
// raised while evaluating it blames the line the parser was actually on
// when it finished reading the token.
func (lx *Lexer) string(_ int) Token {
	lx.advance() // opening quote
	var sb strings.Builder
	for !lx.atEOF() && lx.ch != '"' {
		sb.WriteRune(lx.advance())
	}
	if lx.atEOF() {
		return lx.errorToken("unterminated string")
	}
	lx.advance() // closing quote
	return Token{Kind: TokenString, Lexeme: sb.String(), Line: lx.line()}
}

func isAlpha(c rune) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}
