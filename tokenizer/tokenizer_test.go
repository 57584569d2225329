package tokenizer_test

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/sqlkit-go/sqlkit/tokenizer"
)

func kinds(t *testing.T, src string) []tokenizer.Kind {
	t.Helper()
	toks, err := tokenizer.Tokens(src, tokenizer.Mode{})
	assert.NoError(t, err)
	var out []tokenizer.Kind
	for _, tok := range toks {
		if tok.Kind == tokenizer.Whitespace || tok.Kind == tokenizer.Newline {
			continue
		}
		out = append(out, tok.Kind)
	}
	return out
}

func TestBasicSelect(t *testing.T) {
	got := kinds(t, "SELECT id, name FROM users WHERE active = true")
	assert.Equal(t, []tokenizer.Kind{
		tokenizer.Keyword, tokenizer.Identifier, tokenizer.Comma, tokenizer.Identifier,
		tokenizer.Keyword, tokenizer.Identifier,
		tokenizer.Keyword, tokenizer.Identifier, tokenizer.Eq, tokenizer.Identifier,
		tokenizer.EOF,
	}, got)
}

func TestQuotedIdentifierPreservesCase(t *testing.T) {
	toks, err := tokenizer.Tokens(`select "UserName" from t`, tokenizer.Mode{})
	assert.NoError(t, err)
	var found bool
	for _, tok := range toks {
		if tok.Kind == tokenizer.Identifier && tok.Lexeme == `"UserName"` {
			found = true
		}
	}
	assert.True(t, found)
}

func TestStringLiteralDoubledQuoteEscape(t *testing.T) {
	toks, err := tokenizer.Tokens(`select 'it''s'`, tokenizer.Mode{})
	assert.NoError(t, err)
	lit := toks[2]
	assert.Equal(t, tokenizer.StringLiteral, lit.Kind)
	assert.Equal(t, `'it''s'`, lit.Lexeme)
}

func TestDollarQuotedString(t *testing.T) {
	toks, err := tokenizer.Tokens(`select $tag$hello $$ world$tag$`, tokenizer.Mode{})
	assert.NoError(t, err)
	lit := toks[2]
	assert.Equal(t, tokenizer.StringLiteral, lit.Kind)
	assert.Equal(t, `$tag$hello $$ world$tag$`, lit.Lexeme)
}

func TestEscapeStringSpecifier(t *testing.T) {
	toks, err := tokenizer.Tokens(`select E'line\n'`, tokenizer.Mode{})
	assert.NoError(t, err)
	lit := toks[2]
	assert.Equal(t, tokenizer.StringLiteral, lit.Kind)
	assert.Equal(t, "E", lit.StringPrefix)
}

func TestParameterStyles(t *testing.T) {
	toks, err := tokenizer.Tokens(`select :name, $1, @other, ?`, tokenizer.Mode{})
	assert.NoError(t, err)
	var params []tokenizer.Token
	for _, tok := range toks {
		if tok.Kind == tokenizer.ParameterMark {
			params = append(params, tok)
		}
	}
	assert.Equal(t, 4, len(params))
	assert.Equal(t, tokenizer.ParamNamed, params[0].ParamStyle)
	assert.Equal(t, "name", params[0].ParamName)
	assert.Equal(t, tokenizer.ParamIndexed, params[1].ParamStyle)
	assert.Equal(t, "1", params[1].ParamName)
	assert.Equal(t, tokenizer.ParamAtName, params[2].ParamStyle)
	assert.Equal(t, tokenizer.ParamAnonymous, params[3].ParamStyle)
}

func TestNumberPreservesExactDigits(t *testing.T) {
	toks, err := tokenizer.Tokens(`select 9007199254740993`, tokenizer.Mode{})
	assert.NoError(t, err)
	assert.Equal(t, "9007199254740993", toks[2].Lexeme)
}

func TestScientificNumber(t *testing.T) {
	toks, err := tokenizer.Tokens(`select 1.5e-10`, tokenizer.Mode{})
	assert.NoError(t, err)
	assert.Equal(t, "1.5e-10", toks[2].Lexeme)
}

func TestLineAndBlockComments(t *testing.T) {
	toks, err := tokenizer.Tokens("select 1 -- trailing\n/* block */ from t", tokenizer.Mode{})
	assert.NoError(t, err)
	var lineComment, blockComment bool
	for _, tok := range toks {
		if tok.Kind == tokenizer.CommentLine && tok.Lexeme == "-- trailing" {
			lineComment = true
		}
		if tok.Kind == tokenizer.CommentBlock && tok.Lexeme == "/* block */" {
			blockComment = true
		}
	}
	assert.True(t, lineComment)
	assert.True(t, blockComment)
}

func TestUnterminatedStringFails(t *testing.T) {
	_, err := tokenizer.Tokens(`select 'abc`, tokenizer.Mode{})
	assert.Error(t, err)
}

func TestUnterminatedBlockCommentFails(t *testing.T) {
	_, err := tokenizer.Tokens(`select 1 /* abc`, tokenizer.Mode{})
	assert.Error(t, err)
}

func TestNestedBlockCommentsOptIn(t *testing.T) {
	_, err := tokenizer.Tokens(`/* outer /* inner */ still-in-comment */`, tokenizer.Mode{NestedBlockComments: true})
	assert.NoError(t, err)
}

func TestBacktickAndBracketIdentifiers(t *testing.T) {
	toks, err := tokenizer.Tokens("select `col`, [other] from t", tokenizer.Mode{})
	assert.NoError(t, err)
	assert.Equal(t, tokenizer.Identifier, toks[2].Kind)
	assert.Equal(t, "`col`", toks[2].Lexeme)
}

func TestBracketIdentifierMode(t *testing.T) {
	toks, err := tokenizer.Tokens("select [order date] from t", tokenizer.Mode{BracketIdentifiers: true})
	assert.NoError(t, err)
	assert.Equal(t, tokenizer.Identifier, toks[2].Kind)
	assert.Equal(t, "[order date]", toks[2].Lexeme)
}

func TestSoftKeywordUserIsIdentifierCapable(t *testing.T) {
	assert.True(t, tokenizer.IsKeyword("user"))
	assert.False(t, tokenizer.IsStrictKeyword("user"))
	assert.True(t, tokenizer.IsStrictKeyword("select"))
}
