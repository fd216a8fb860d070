package lexer_test

import (
	"testing"

	"github.com/hearthlang/hearth/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typesOf(tokens []lexer.Token) []lexer.TokenType {
	types := make([]lexer.TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	return types
}

func TestTokenizeSimpleAssignment(t *testing.T) {
	tokens, err := lexer.Tokenize(`remember x = 5`, "test")
	require.NoError(t, err)

	assert.Equal(t, []lexer.TokenType{
		lexer.KEYWORD, lexer.IDENT, lexer.ASSIGN, lexer.NUMBER, lexer.NEWLINE, lexer.EOF,
	}, typesOf(tokens))
	assert.Equal(t, "remember", tokens[0].Value)
	assert.Equal(t, "x", tokens[1].Value)
	assert.Equal(t, "5", tokens[3].Value)
}

func TestTokenizeStringLiteral(t *testing.T) {
	tokens, err := lexer.Tokenize(`speak "hello world"`, "test")
	require.NoError(t, err)

	require.Len(t, tokens, 4) // KEYWORD, STRING, NEWLINE, EOF
	assert.Equal(t, lexer.STRING, tokens[1].Type)
	assert.Equal(t, "hello world", tokens[1].Value)
}

func TestTokenizeTwoCharOperators(t *testing.T) {
	tokens, err := lexer.Tokenize(`think x == 1`, "test")
	require.NoError(t, err)

	var ops []string
	for _, tok := range tokens {
		if tok.Type == lexer.OP {
			ops = append(ops, tok.Value)
		}
	}
	assert.Equal(t, []string{"=="}, ops)
}

func TestTokenizeDistinguishesAssignFromEquals(t *testing.T) {
	tokens, err := lexer.Tokenize("update x = 1\nthink x != 2\n", "test")
	require.NoError(t, err)

	var assigns, ops []string
	for _, tok := range tokens {
		switch tok.Type {
		case lexer.ASSIGN:
			assigns = append(assigns, tok.Value)
		case lexer.OP:
			ops = append(ops, tok.Value)
		}
	}
	assert.Equal(t, []string{"="}, assigns)
	assert.Equal(t, []string{"!="}, ops)
}

func TestTokenizeKeywordsVsIdentifiers(t *testing.T) {
	tokens, err := lexer.Tokenize(`remember remembered = 1`, "test")
	require.NoError(t, err)

	assert.Equal(t, lexer.KEYWORD, tokens[0].Type)
	assert.Equal(t, lexer.IDENT, tokens[1].Type)
}

func TestTokenizeIndentEmitsIndentAndDedent(t *testing.T) {
	src := "think x == 1\n    speak \"hi\"\nspeak \"bye\"\n"
	tokens, err := lexer.Tokenize(src, "test")
	require.NoError(t, err)

	assert.Contains(t, typesOf(tokens), lexer.INDENT)
	assert.Contains(t, typesOf(tokens), lexer.DEDENT)

	// DEDENT must appear before the final "speak" line's KEYWORD token.
	var dedentIdx, lastKeywordIdx int
	for i, tok := range tokens {
		if tok.Type == lexer.DEDENT {
			dedentIdx = i
		}
		if tok.Type == lexer.KEYWORD && tok.Value == "speak" {
			lastKeywordIdx = i
		}
	}
	assert.Less(t, dedentIdx, lastKeywordIdx)
}

func TestTokenizeNestedIndentation(t *testing.T) {
	src := "think x == 1\n    think y == 2\n        speak \"deep\"\n"
	tokens, err := lexer.Tokenize(src, "test")
	require.NoError(t, err)

	indents := 0
	dedents := 0
	for _, tok := range tokens {
		if tok.Type == lexer.INDENT {
			indents++
		}
		if tok.Type == lexer.DEDENT {
			dedents++
		}
	}
	assert.Equal(t, 2, indents)
	assert.Equal(t, 2, dedents)
}

func TestTokenizeInconsistentIndentIsError(t *testing.T) {
	src := "think x == 1\n    speak \"a\"\n  speak \"b\"\n"
	_, err := lexer.Tokenize(src, "test")
	require.Error(t, err)

	var lexErr *lexer.Error
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, lexer.ErrInconsistentIndent, lexErr.Kind)
}

func TestTokenizeIllegalCharacter(t *testing.T) {
	_, err := lexer.Tokenize("remember x = 5 @ 2", "test")
	require.Error(t, err)

	var lexErr *lexer.Error
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, lexer.ErrIllegalChar, lexErr.Kind)
}

func TestTokenizeUnterminatedStringIsError(t *testing.T) {
	_, err := lexer.Tokenize(`speak "unterminated`, "test")
	require.Error(t, err)

	var lexErr *lexer.Error
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, lexer.ErrIllegalChar, lexErr.Kind)
}

func TestTokenizeLineCommentsIgnored(t *testing.T) {
	src := "remember x = 1 // a comment\n# also a comment\nremember y = 2\n"
	tokens, err := lexer.Tokenize(src, "test")
	require.NoError(t, err)

	var idents []string
	for _, tok := range tokens {
		if tok.Type == lexer.IDENT {
			idents = append(idents, tok.Value)
		}
	}
	assert.Equal(t, []string{"x", "y"}, idents)
}

func TestTokenizeBlankAndCommentOnlyLinesCarryNoIndentMeaning(t *testing.T) {
	src := "think x == 1\n    speak \"a\"\n\n    # a comment, still indented\n    speak \"b\"\nspeak \"c\"\n"
	tokens, err := lexer.Tokenize(src, "test")
	require.NoError(t, err)

	indents := 0
	for _, tok := range tokens {
		if tok.Type == lexer.INDENT {
			indents++
		}
	}
	assert.Equal(t, 1, indents)
}

func TestTokenizeAlwaysEndsWithNewlineDedentsThenEOF(t *testing.T) {
	src := "think x == 1\n    speak \"a\""
	tokens, err := lexer.Tokenize(src, "test")
	require.NoError(t, err)

	last := tokens[len(tokens)-1]
	assert.Equal(t, lexer.EOF, last.Type)

	secondLast := tokens[len(tokens)-2]
	assert.Equal(t, lexer.DEDENT, secondLast.Type)
}

func TestTokenPositionsTrackLineAndColumn(t *testing.T) {
	tokens, err := lexer.Tokenize("remember x = 1\nremember y = 2\n", "myfile.hearth")
	require.NoError(t, err)

	require.NotEmpty(t, tokens)
	assert.Equal(t, "myfile.hearth", tokens[0].Pos.Filename)
	assert.Equal(t, 1, tokens[0].Pos.Line)

	var secondLineKeyword lexer.Token
	found := false
	for _, tok := range tokens {
		if tok.Type == lexer.KEYWORD && tok.Pos.Line == 2 {
			secondLineKeyword = tok
			found = true
			break
		}
	}
	require.True(t, found)
	assert.Equal(t, "remember", secondLineKeyword.Value)
}

func TestTokenTypeStringNames(t *testing.T) {
	assert.Equal(t, "NUMBER", lexer.NUMBER.String())
	assert.Equal(t, "KEYWORD", lexer.KEYWORD.String())
	assert.Equal(t, "EOF", lexer.EOF.String())
}
