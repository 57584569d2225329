package transform_test

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/sqlkit-go/sqlkit/format"
	"github.com/sqlkit-go/sqlkit/param"
	"github.com/sqlkit-go/sqlkit/parser"
	"github.com/sqlkit-go/sqlkit/transform"
)

func saleResolver(tableName string) []transform.TargetColumn {
	if tableName != "sale" {
		return nil
	}
	return []transform.TargetColumn{
		{Name: "id", Type: "integer", Serial: true},
		{Name: "sale_date", Type: "date"},
		{Name: "price", Type: "integer"},
		{Name: "created_at", Type: "timestamp", Default: "now()"},
	}
}

func TestInsertResultSelectWithoutReturning(t *testing.T) {
	q, err := parser.ParseInsert(`INSERT INTO sale (sale_date, price) VALUES ('2023-01-01', 160)`)
	assert.NoError(t, err)

	conv := transform.InsertResultSelectConverter{Resolver: saleResolver}
	out, err := conv.ToSelectQuery(q)
	assert.NoError(t, err)

	res, err := format.Format(out, format.Default())
	assert.NoError(t, err)
	assert.Contains(t, res.SQL, `"__inserted_rows" as (`)
	assert.Contains(t, res.SQL, `count(*) as "count"`)
	assert.Contains(t, res.SQL, `from "__inserted_rows"`)

	// The serial id becomes a synthetic row number; the omitted
	// created_at falls back to its table default. Everything is cast to
	// the target column type.
	assert.Contains(t, res.SQL, `cast(row_number() over () as integer) as "id"`)
	assert.Contains(t, res.SQL, `cast('2023-01-01' as date) as "sale_date"`)
	assert.Contains(t, res.SQL, `cast(160 as integer) as "price"`)
	assert.Contains(t, res.SQL, `cast(now() as timestamp) as "created_at"`)
}

func TestInsertResultSelectWithReturning(t *testing.T) {
	q, err := parser.ParseInsert(`INSERT INTO sale (sale_date, price) VALUES ('2023-01-01', 160) RETURNING id, price`)
	assert.NoError(t, err)

	conv := transform.InsertResultSelectConverter{Resolver: saleResolver}
	out, err := conv.ToSelectQuery(q)
	assert.NoError(t, err)

	res, err := format.Format(out, format.Default())
	assert.NoError(t, err)
	assert.Contains(t, res.SQL, `select "id", "price"`)
	assert.NotContains(t, res.SQL, "count(*)")
}

func TestInsertResultSelectMultiRowSource(t *testing.T) {
	q, err := parser.ParseInsert(`INSERT INTO sale (sale_date, price) VALUES ('2023-01-01', 160), ('2023-03-12', 200)`)
	assert.NoError(t, err)

	conv := transform.InsertResultSelectConverter{Resolver: saleResolver}
	out, err := conv.ToSelectQuery(q)
	assert.NoError(t, err)

	res, err := format.Format(out, format.Default())
	assert.NoError(t, err)
	assert.Contains(t, res.SQL, "union all")
	assert.Contains(t, res.SQL, `cast('2023-03-12' as date)`)
}

func TestInsertResultFixtureCoverage(t *testing.T) {
	q, err := parser.ParseInsert(`INSERT INTO sale (sale_date, price) SELECT sale_date, price FROM staging`)
	assert.NoError(t, err)

	conv := transform.InsertResultSelectConverter{Resolver: saleResolver}
	_, err = conv.ToSelectQuery(q)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, transform.ErrFixtureCoverage))
	assert.Contains(t, err.Error(), "fixture coverage: staging")
}

func TestInsertResultFixtureSatisfied(t *testing.T) {
	q, err := parser.ParseInsert(`INSERT INTO sale (sale_date, price) SELECT sale_date, price FROM staging`)
	assert.NoError(t, err)

	conv := transform.InsertResultSelectConverter{
		Resolver: saleResolver,
		Fixtures: []transform.FixtureTable{{
			Name: "staging",
			Columns: []transform.FixtureColumn{
				{Name: "sale_date", Type: "date"},
				{Name: "price", Type: "integer"},
			},
			Rows: [][]param.Value{{param.String("2023-01-01"), param.Int64(160)}},
		}},
	}
	out, err := conv.ToSelectQuery(q)
	assert.NoError(t, err)

	res, err := format.Format(out, format.Default())
	assert.NoError(t, err)
	assert.Contains(t, res.SQL, `"staging" as (`)
	assert.Contains(t, res.SQL, `"__inserted_rows" as (`)
}

func TestInsertResultPassthroughStrategy(t *testing.T) {
	q, err := parser.ParseInsert(`INSERT INTO sale (sale_date, price) SELECT sale_date, price FROM staging`)
	assert.NoError(t, err)

	conv := transform.InsertResultSelectConverter{
		Resolver: saleResolver,
		Strategy: transform.FixturePassthrough,
	}
	out, err := conv.ToSelectQuery(q)
	assert.NoError(t, err)

	res, err := format.Format(out, format.Default())
	assert.NoError(t, err)
	assert.Contains(t, res.SQL, `from "staging"`)
}

func TestInsertResultUnknownTable(t *testing.T) {
	q, err := parser.ParseInsert(`INSERT INTO mystery (a) VALUES (1)`)
	assert.NoError(t, err)

	conv := transform.InsertResultSelectConverter{Resolver: saleResolver}
	_, err = conv.ToSelectQuery(q)
	assert.Error(t, err)
}
