package transform_test

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/sqlkit-go/sqlkit/format"
	"github.com/sqlkit-go/sqlkit/parser"
	"github.com/sqlkit-go/sqlkit/transform"
)

const saleInsert = `INSERT INTO sale (sale_date, price, created_at) VALUES ('2023-01-01', 160, '2024-01-11 14:29:01.618'), ('2023-03-12', 200, '2024-01-11 14:29:01.618')`

func TestInsertValuesToSelectUnion(t *testing.T) {
	q, err := parser.ParseInsert(saleInsert)
	assert.NoError(t, err)

	out, err := transform.InsertQuerySelectValuesConverter{}.ToSelectUnion(q)
	assert.NoError(t, err)

	res, err := format.Format(out, format.Default())
	assert.NoError(t, err)
	assert.Contains(t, res.SQL, `insert into "sale"("sale_date", "price", "created_at")`)
	assert.Contains(t, res.SQL, `select '2023-01-01' as "sale_date", 160 as "price", '2024-01-11 14:29:01.618' as "created_at"`)
	assert.Contains(t, res.SQL, "union all")
	assert.Contains(t, res.SQL, `select '2023-03-12', 200, '2024-01-11 14:29:01.618'`)
}

func TestInsertValuesRoundTrip(t *testing.T) {
	q, err := parser.ParseInsert(saleInsert)
	assert.NoError(t, err)
	original, err := format.Format(q, format.Default())
	assert.NoError(t, err)

	conv := transform.InsertQuerySelectValuesConverter{}
	asSelect, err := conv.ToSelectUnion(q)
	assert.NoError(t, err)
	back, err := conv.ToValues(asSelect)
	assert.NoError(t, err)

	res, err := format.Format(back, format.Default())
	assert.NoError(t, err)
	assert.Equal(t, original.SQL, res.SQL)
}

func TestInsertValuesRequiresColumnList(t *testing.T) {
	q, err := parser.ParseInsert(`INSERT INTO sale VALUES ('2023-01-01', 160)`)
	assert.NoError(t, err)

	_, err = transform.InsertQuerySelectValuesConverter{}.ToSelectUnion(q)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, transform.ErrMissingColumnList))
}

func TestInsertValuesTupleLengthMismatch(t *testing.T) {
	q, err := parser.ParseInsert(`INSERT INTO sale (sale_date, price) VALUES ('2023-01-01', 160, 'extra')`)
	assert.NoError(t, err)

	_, err = transform.InsertQuerySelectValuesConverter{}.ToSelectUnion(q)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, transform.ErrColumnCountMismatch))
}

func TestInsertToValuesRejectsSelectWithFrom(t *testing.T) {
	q, err := parser.ParseInsert(`INSERT INTO sale (sale_date) SELECT sale_date AS sale_date FROM staging`)
	assert.NoError(t, err)

	_, err = transform.InsertQuerySelectValuesConverter{}.ToValues(q)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, transform.ErrSelectHasFromOrWhere))
}

func TestInsertToValuesRequiresMatchingAliases(t *testing.T) {
	q, err := parser.ParseInsert(`INSERT INTO sale (sale_date, price) SELECT '2023-01-01' AS wrong, 160 AS price`)
	assert.NoError(t, err)

	_, err = transform.InsertQuerySelectValuesConverter{}.ToValues(q)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, transform.ErrAliasRequired))
}
