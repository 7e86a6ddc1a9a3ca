package wee

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, source string) []Token {
	t.Helper()
	lx := NewLexer(source)
	var toks []Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == TokenEOF || tok.Kind == TokenError {
			break
		}
	}
	return toks
}

func TestLexerEndsExactlyOnEOF(t *testing.T) {
	for _, source := range []string{"", "x", "let x = 1;", "1 + 2\n"} {
		toks := scanAll(t, source)
		require.NotEmpty(t, toks)
		last := toks[len(toks)-1]
		assert.Equalf(t, TokenEOF, last.Kind, "source %q: expected clean EOF, got %+v", source, last)
	}
}

func TestLexerDistinguishesDivisionFromComment(t *testing.T) {
	toks := scanAll(t, "a / b // trailing comment\nc")
	var kinds []TokenKind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []TokenKind{
		TokenIdentifier, TokenSlash, TokenIdentifier, TokenIdentifier, TokenEOF,
	}, kinds)
}

func TestLexerKeywordsVsIdentifiers(t *testing.T) {
	toks := scanAll(t, "fun function let letter")
	kinds := make([]TokenKind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	assert.Equal(t, []TokenKind{
		TokenFun, TokenIdentifier, TokenLet, TokenIdentifier, TokenEOF,
	}, kinds, "only 'fun' and 'let' are keywords; 'function' and 'letter' scan as identifiers")
}

func TestLexerNumbers(t *testing.T) {
	cases := map[string]string{
		"123":   "123",
		"1.5":   "1.5",
		"1.":    "1",
		"0.001": "0.001",
	}
	for source, wantLexeme := range cases {
		toks := scanAll(t, source)
		wantLen := 2 // the number, then EOF
		if source == "1." {
			wantLen = 3 // the number, the dot, then EOF
		}
		require.Len(t, toks, wantLen)
		assert.Equal(t, TokenNumber, toks[0].Kind)
		if source == "1." {
			// the trailing dot, with no digit after it, is not part of the
			// number and is instead its own token
			assert.Equal(t, "1", toks[0].Lexeme)
			assert.Equal(t, TokenDot, toks[1].Kind)
			continue
		}
		assert.Equal(t, wantLexeme, toks[0].Lexeme)
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	toks := scanAll(t, `"no closing quote`)
	require.NotEmpty(t, toks)
	assert.Equal(t, TokenError, toks[len(toks)-1].Kind)
}

func TestLexerPeekDoesNotConsume(t *testing.T) {
	lx := NewLexer("a b")
	first := lx.Peek()
	second := lx.Peek()
	assert.Equal(t, first, second)
	assert.Equal(t, first, lx.Next())
	assert.Equal(t, TokenIdentifier, lx.Next().Kind)
}

func TestLexerColonForInheritance(t *testing.T) {
	toks := scanAll(t, "class B : A {}")
	kinds := make([]TokenKind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	assert.Equal(t, []TokenKind{
		TokenClass, TokenIdentifier, TokenColon, TokenIdentifier,
		TokenLeftBrace, TokenRightBrace, TokenEOF,
	}, kinds)
}
