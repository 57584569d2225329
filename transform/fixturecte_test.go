package transform_test

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/sqlkit-go/sqlkit/ast"
	"github.com/sqlkit-go/sqlkit/format"
	"github.com/sqlkit-go/sqlkit/param"
	"github.com/sqlkit-go/sqlkit/transform"
)

// fixtureQuery wraps the built CTEs in a `SELECT * FROM <table>` so the
// result can go through the formatter.
func fixtureQuery(w *ast.WithClause, table string) *ast.SimpleQuery {
	return &ast.SimpleQuery{
		With:   w,
		Select: ast.SelectClause{Items: []ast.SelectItem{{Star: true}}},
		From:   &ast.FromClause{Source: &ast.TableSource{Name: ast.Identifier{Name: table}}},
	}
}

func TestFixtureCteBuilderRows(t *testing.T) {
	b := transform.FixtureCteBuilder{}
	w := b.BuildAll([]transform.FixtureTable{{
		Name: "users",
		Columns: []transform.FixtureColumn{
			{Name: "id", Type: "int"},
			{Name: "name", Type: "text"},
		},
		Rows: [][]param.Value{
			{param.Int64(1), param.String("Alice")},
			{param.Int64(2), param.String("Bob")},
		},
	}})

	res, err := format.Format(fixtureQuery(w, "users"), format.Default())
	assert.NoError(t, err)
	assert.Contains(t, res.SQL, `"users" as (`)
	assert.Contains(t, res.SQL, `cast(1 as int) as "id"`)
	assert.Contains(t, res.SQL, `cast('Alice' as text) as "name"`)
	assert.Contains(t, res.SQL, "union all")
	assert.Contains(t, res.SQL, "cast(2 as int)")
}

func TestFixtureCteBuilderEmptyRowSet(t *testing.T) {
	b := transform.FixtureCteBuilder{}
	cte := b.Build(transform.FixtureTable{
		Name: "users",
		Columns: []transform.FixtureColumn{
			{Name: "id", Type: "int"},
			{Name: "name", Type: "text"},
		},
	})

	w := &ast.WithClause{CTEs: []ast.CTE{cte}}
	res, err := format.Format(fixtureQuery(w, "users"), format.Default())
	assert.NoError(t, err)
	assert.Contains(t, res.SQL, `null as "id"`)
	assert.Contains(t, res.SQL, `null as "name"`)
	assert.Contains(t, res.SQL, "where 1 = 0")
}

func TestFixtureCteBuilderScalarRendering(t *testing.T) {
	b := transform.FixtureCteBuilder{}
	w := b.BuildAll([]transform.FixtureTable{{
		Name: "blobs",
		Columns: []transform.FixtureColumn{
			{Name: "flag", Type: ""},
			{Name: "data", Type: ""},
			{Name: "big", Type: ""},
			{Name: "note", Type: ""},
		},
		Rows: [][]param.Value{
			{param.Bool(true), param.Bytes([]byte{0xde, 0xad}), param.BigInt("9007199254740993"), param.Null()},
		},
	}})

	res, err := format.Format(fixtureQuery(w, "blobs"), format.Default())
	assert.NoError(t, err)
	assert.Contains(t, res.SQL, `true as "flag"`)
	assert.Contains(t, res.SQL, `X'dead' as "data"`)
	assert.Contains(t, res.SQL, `9007199254740993 as "big"`)
	assert.Contains(t, res.SQL, `null as "note"`)
}

func TestFixtureCteBuilderEscapesQuotes(t *testing.T) {
	b := transform.FixtureCteBuilder{}
	w := b.BuildAll([]transform.FixtureTable{{
		Name:    "notes",
		Columns: []transform.FixtureColumn{{Name: "body", Type: "text"}},
		Rows:    [][]param.Value{{param.String("it's fine")}},
	}})

	res, err := format.Format(fixtureQuery(w, "notes"), format.Default())
	assert.NoError(t, err)
	assert.Contains(t, res.SQL, `'it''s fine'`)
}

func TestFixtureFromJSON(t *testing.T) {
	data := []byte(`{
		"users": {
			"columns": [{"name": "id", "type": "int"}, {"name": "score", "type": "numeric"}],
			"rows": [
				{"id": 9007199254740993, "score": 1.5},
				{"id": 2}
			]
		}
	}`)
	tables, err := transform.FixtureCteBuilder{}.FromJSON(data)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(tables))
	assert.Equal(t, "users", tables[0].Name)
	assert.Equal(t, 2, len(tables[0].Rows))

	// Exact digits survive: no float widening of 2^53+1.
	assert.Equal(t, param.KindInt64, tables[0].Rows[0][0].Kind)
	assert.Equal(t, int64(9007199254740993), tables[0].Rows[0][0].Int64)
	assert.Equal(t, param.KindDecimal, tables[0].Rows[0][1].Kind)

	// Missing fields become null.
	assert.True(t, tables[0].Rows[1][1].IsNull())
}

func TestFixtureFromYAML(t *testing.T) {
	data := []byte(`users:
  columns:
    - name: id
      type: int
    - name: name
      type: text
  rows:
    - id: 1
      name: Alice
    - id: 2
`)
	tables, err := transform.FixtureCteBuilder{}.FromYAML(data)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(tables))
	assert.Equal(t, 2, len(tables[0].Rows))
	assert.Equal(t, "Alice", tables[0].Rows[0][1].String)
	assert.True(t, tables[0].Rows[1][1].IsNull())
}
