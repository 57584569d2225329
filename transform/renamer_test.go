package transform_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/sqlkit-go/sqlkit/tokenizer"
	"github.com/sqlkit-go/sqlkit/transform"
)

// aliasPosition locates the first occurrence of name as a bare
// identifier token and returns its start line/column, as the tokenizer
// itself reports them.
func aliasPosition(t *testing.T, sql, name string) (int, int) {
	t.Helper()
	toks, err := tokenizer.Tokens(sql, tokenizer.Mode{})
	assert.NoError(t, err)
	for _, tok := range toks {
		if tok.Kind == tokenizer.Identifier && tok.Lexeme == name {
			return tok.Start.Line, tok.Start.Column
		}
	}
	t.Fatalf("identifier %q not found", name)
	return 0, 0
}

func TestRenameAliasRewritesQualifiedReferences(t *testing.T) {
	sql := `SELECT u.id FROM users u WHERE u.active = true`
	// the first "u" token is the qualifier in "u.id"; the alias itself
	// is the second occurrence, in "users u".
	toks, err := tokenizer.Tokens(sql, tokenizer.Mode{})
	assert.NoError(t, err)
	var line, col int
	count := 0
	for _, tok := range toks {
		if tok.Kind == tokenizer.Identifier && tok.Lexeme == "u" {
			count++
			if count == 2 {
				line, col = tok.Start.Line, tok.Start.Column
			}
		}
	}

	r := transform.SqlIdentifierRenamer{}
	out, err := r.Rename(sql, line, col, "usr")
	assert.NoError(t, err)
	assert.Contains(t, out, `"usr"."id"`)
	assert.Contains(t, strings.ToLower(out), `as "usr"`)
}

func TestRenameAliasPreservingFormatting(t *testing.T) {
	sql := `SELECT u.id FROM users u WHERE u.active = true`
	toks, err := tokenizer.Tokens(sql, tokenizer.Mode{})
	assert.NoError(t, err)
	var line, col int
	count := 0
	for _, tok := range toks {
		if tok.Kind == tokenizer.Identifier && tok.Lexeme == "u" {
			count++
			if count == 2 {
				line, col = tok.Start.Line, tok.Start.Column
			}
		}
	}

	r := transform.SqlIdentifierRenamer{PreserveFormatting: true}
	out, err := r.Rename(sql, line, col, "usr")
	assert.NoError(t, err)
	assert.Equal(t, `SELECT usr.id FROM users usr WHERE usr.active = true`, out)
}

func TestRenameCTEName(t *testing.T) {
	sql := `WITH base AS (SELECT id FROM users) SELECT id FROM base`
	line, col := aliasPosition(t, sql, "base")

	r := transform.SqlIdentifierRenamer{PreserveFormatting: true}
	out, err := r.Rename(sql, line, col, "base_users")
	assert.NoError(t, err)
	assert.Equal(t, `WITH base_users AS (SELECT id FROM users) SELECT id FROM base_users`, out)
}

func TestRenameRejectsReservedWord(t *testing.T) {
	sql := `SELECT u.id FROM users u`
	toks, err := tokenizer.Tokens(sql, tokenizer.Mode{})
	assert.NoError(t, err)
	var line, col int
	count := 0
	for _, tok := range toks {
		if tok.Kind == tokenizer.Identifier && tok.Lexeme == "u" {
			count++
			if count == 2 {
				line, col = tok.Start.Line, tok.Start.Column
			}
		}
	}

	r := transform.SqlIdentifierRenamer{}
	_, err = r.Rename(sql, line, col, "select")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, transform.ErrReservedWord))
}

func TestRenameEmptySQL(t *testing.T) {
	r := transform.SqlIdentifierRenamer{}
	_, err := r.Rename("   ", 1, 1, "x")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, transform.ErrEmptySQL))
}
