package transform_test

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/sqlkit-go/sqlkit/format"
	"github.com/sqlkit-go/sqlkit/param"
	"github.com/sqlkit-go/sqlkit/parser"
	"github.com/sqlkit-go/sqlkit/transform"
)

func TestDynamicQueryBuilderScenarioB(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT id, name FROM users WHERE active = true`)
	assert.NoError(t, err)

	b := transform.DynamicQueryBuilder{}
	out, bindings, err := b.Build(q,
		map[string]transform.FilterValue{"name": transform.Eq(param.String("Alice"))},
		map[string]transform.SortOption{"name": {Desc: true}},
		&transform.Paging{Page: 1, PageSize: 5},
	)
	assert.NoError(t, err)

	res, err := format.Format(out, format.Default(), bindings)
	assert.NoError(t, err)
	assert.Equal(t, `select "id", "name"
from "users"
where "active" = true and "name" = :name
order by "name" desc
limit :paging_limit
offset :paging_offset`, res.SQL)
	assert.Equal(t, "Alice", res.Params["name"].String)
	assert.Equal(t, int64(5), res.Params["paging_limit"].Int64)
	assert.Equal(t, int64(0), res.Params["paging_offset"].Int64)
}

func TestDynamicQueryBuilderPassesThroughExistingParameter(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT id FROM sales WHERE to_char(sale_date, 'YYYY-MM') = :ym`)
	assert.NoError(t, err)

	b := transform.DynamicQueryBuilder{}
	out, bindings, err := b.Build(q,
		map[string]transform.FilterValue{"ym": transform.Eq(param.String("2024-01"))},
		nil, nil,
	)
	assert.NoError(t, err)
	assert.Equal(t, "2024-01", bindings["ym"].String)

	res, err := format.Format(out, format.Default(), bindings)
	assert.NoError(t, err)
	assert.NotContains(t, res.SQL, `"ym" = :ym`)
}

func TestDynamicQueryBuilderNoOptionsIsNoop(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT id FROM users`)
	assert.NoError(t, err)

	b := transform.DynamicQueryBuilder{}
	out, bindings, err := b.Build(q, nil, nil, nil)
	assert.NoError(t, err)
	assert.Zero(t, len(bindings))

	res, err := format.Format(out, format.Default())
	assert.NoError(t, err)
	assert.Equal(t, `select "id"
from "users"`, res.SQL)
}
