package transform_test

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/sqlkit-go/sqlkit/format"
	"github.com/sqlkit-go/sqlkit/parser"
	"github.com/sqlkit-go/sqlkit/transform"
)

func TestPostgresJsonQueryBuilderWrap(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT id, name FROM users WHERE active = true`)
	assert.NoError(t, err)

	out := transform.PostgresJsonQueryBuilder{}.Wrap(q)
	res, err := format.Format(out, format.Default())
	assert.NoError(t, err)
	assert.Contains(t, res.SQL, `jsonb_agg(to_jsonb("t")) as "result"`)
	assert.Contains(t, res.SQL, `from "users"`)
	assert.Contains(t, res.SQL, `as "t"`)
}

func TestPostgresJsonQueryBuilderCustomNames(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT id FROM users`)
	assert.NoError(t, err)

	out := transform.PostgresJsonQueryBuilder{Alias: "rows", ResultName: "payload"}.Wrap(q)
	res, err := format.Format(out, format.Default())
	assert.NoError(t, err)
	assert.Contains(t, res.SQL, `jsonb_agg(to_jsonb("rows")) as "payload"`)
}
