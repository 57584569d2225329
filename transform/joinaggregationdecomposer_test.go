package transform_test

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/sqlkit-go/sqlkit/ast"
	"github.com/sqlkit-go/sqlkit/format"
	"github.com/sqlkit-go/sqlkit/parser"
	"github.com/sqlkit-go/sqlkit/transform"
)

func TestJoinAggregationDecomposerScenarioC(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT c.category_name, COUNT(p.id) AS product_count FROM categories c JOIN products p ON c.id = p.category_id GROUP BY c.category_name`)
	assert.NoError(t, err)
	sq := q.(*ast.SimpleQuery)

	d := transform.JoinAggregationDecomposer{}
	out, err := d.Decompose(sq)
	assert.NoError(t, err)

	res, err := format.Format(out, format.Default())
	assert.NoError(t, err)
	assert.Contains(t, res.SQL, "with\n    \"detail_data\" as")
	assert.Contains(t, res.SQL, `select "category_name", count("id") as "product_count"`)
	assert.Contains(t, res.SQL, `from "detail_data"`)
	assert.Contains(t, res.SQL, `group by "category_name"`)
}

func TestJoinAggregationDecomposerRejectsNoJoins(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT category_name, COUNT(id) FROM categories GROUP BY category_name`)
	assert.NoError(t, err)
	sq := q.(*ast.SimpleQuery)

	d := transform.JoinAggregationDecomposer{}
	_, err = d.Decompose(sq)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, transform.ErrNoJoins))
}

func TestJoinAggregationDecomposerRejectsNoAggregation(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT c.category_name FROM categories c JOIN products p ON c.id = p.category_id`)
	assert.NoError(t, err)
	sq := q.(*ast.SimpleQuery)

	d := transform.JoinAggregationDecomposer{}
	_, err = d.Decompose(sq)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, transform.ErrNoAggregation))
}

func TestJoinAggregationDecomposerCustomCTEName(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT c.category_name, COUNT(p.id) FROM categories c JOIN products p ON c.id = p.category_id GROUP BY c.category_name`)
	assert.NoError(t, err)
	sq := q.(*ast.SimpleQuery)

	d := transform.JoinAggregationDecomposer{CTEName: "src"}
	out, err := d.Decompose(sq)
	assert.NoError(t, err)

	res, err := format.Format(out, format.Default())
	assert.NoError(t, err)
	assert.Contains(t, res.SQL, "with\n    \"src\" as")
}

func TestJoinAggregationDecomposerAnalyzeResult(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT category_name FROM categories`)
	assert.NoError(t, err)
	sq := q.(*ast.SimpleQuery)

	r := transform.JoinAggregationDecomposer{}.Analyze(sq)
	assert.True(t, errors.Is(r.Err, transform.ErrNoJoins))
}
