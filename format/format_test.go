package format_test

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/sqlkit-go/sqlkit/format"
	"github.com/sqlkit-go/sqlkit/param"
	"github.com/sqlkit-go/sqlkit/parser"
)

func TestFormatBasicSelect(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT id, name FROM users WHERE active = true`)
	assert.NoError(t, err)

	res, err := format.Format(q, format.Default())
	assert.NoError(t, err)
	assert.Equal(t, `select "id", "name"
from "users"
where "active" = true`, res.SQL)
}

func TestFormatPaginationScenarioA(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT id, name FROM users WHERE active = true LIMIT :paging_limit OFFSET :paging_offset`)
	assert.NoError(t, err)

	res, err := format.Format(q, format.Default(), param.Map{
		"paging_limit":  param.Int64(10),
		"paging_offset": param.Int64(10),
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(10), res.Params["paging_limit"].Int64)
	assert.Equal(t, int64(10), res.Params["paging_offset"].Int64)
}

func TestFormatParameterUnbound(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT id FROM users WHERE id = :id`)
	assert.NoError(t, err)

	res, err := format.Format(q, format.Default())
	assert.NoError(t, err)
	assert.True(t, res.Params["id"].IsNull())
}

func TestFormatIdempotence(t *testing.T) {
	src := `SELECT id, name FROM users WHERE active = true ORDER BY name DESC`
	q1, err := parser.ParseSelect(src)
	assert.NoError(t, err)
	res1, err := format.Format(q1, format.Default())
	assert.NoError(t, err)

	q2, err := parser.ParseSelect(res1.SQL)
	assert.NoError(t, err)
	res2, err := format.Format(q2, format.Default())
	assert.NoError(t, err)

	assert.Equal(t, res1.SQL, res2.SQL)
}

func TestFormatCommentSmartStyle(t *testing.T) {
	src := "SELECT s.sale_id /* Sale ID */, s.amount /* Amount */ FROM sales s"
	q, err := parser.ParseSelect(src)
	assert.NoError(t, err)

	opts := format.Default()
	opts.CommentStyle = format.CommentSmart
	opts.CommaBreak = format.BreakAfter

	res, err := format.Format(q, opts)
	assert.NoError(t, err)
	// Commas end the line; each item's comment trails it in line form.
	assert.Contains(t, res.SQL, ", -- Sale ID")
	assert.Contains(t, res.SQL, "-- Amount")
}

func TestFormatKeywordCaseUpper(t *testing.T) {
	q, err := parser.ParseSelect(`select id from users`)
	assert.NoError(t, err)
	opts := format.Default()
	opts.KeywordCase = format.KeywordUpper
	res, err := format.Format(q, opts)
	assert.NoError(t, err)
	assert.Contains(t, res.SQL, "SELECT")
	assert.Contains(t, res.SQL, "FROM")
}

func TestProfileOptions(t *testing.T) {
	data := []byte("keyword_case: upper\nindent_size: 2\ncomment_style: smart\n")
	prof, err := format.LoadProfile(data)
	assert.NoError(t, err)
	opts, err := prof.Options()
	assert.NoError(t, err)
	assert.Equal(t, format.KeywordUpper, opts.KeywordCase)
	assert.Equal(t, 2, opts.IndentSize)
	assert.Equal(t, format.CommentSmart, opts.CommentStyle)
}
