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

func TestParamInjectorEqShorthand(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT id, name FROM users WHERE active = true`)
	assert.NoError(t, err)

	pi := transform.ParamInjector{}
	out, bindings, err := pi.Inject(q, map[string]transform.FilterValue{
		"name": transform.Eq(param.String("Alice")),
	}, false)
	assert.NoError(t, err)

	res, err := format.Format(out, format.Default(), bindings)
	assert.NoError(t, err)
	assert.Equal(t, `select "id", "name"
from "users"
where "active" = true and "name" = :name`, res.SQL)
	assert.Equal(t, "Alice", res.Params["name"].String)
}

func TestParamInjectorAllUndefinedRejectedByDefault(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT id FROM users`)
	assert.NoError(t, err)

	pi := transform.ParamInjector{}
	_, _, err = pi.Inject(q, map[string]transform.FilterValue{
		"name": transform.Undefined(),
	}, false)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, transform.ErrAllParametersUndefined))
}

func TestParamInjectorAllUndefinedAllowed(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT id FROM users`)
	assert.NoError(t, err)

	pi := transform.ParamInjector{}
	out, bindings, err := pi.Inject(q, map[string]transform.FilterValue{
		"name": transform.Undefined(),
	}, true)
	assert.NoError(t, err)
	assert.Zero(t, len(bindings))
	assert.Zero(t, out.Where)
}

func TestParamInjectorOrGroup(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT id FROM users`)
	assert.NoError(t, err)

	pi := transform.ParamInjector{}
	out, bindings, err := pi.Inject(q, map[string]transform.FilterValue{
		"id": transform.OrGroup(
			transform.Condition{Op: transform.OpLt, Value: param.Int64(10)},
			transform.Condition{Op: transform.OpGt, Value: param.Int64(100)},
		),
	}, false)
	assert.NoError(t, err)

	res, err := format.Format(out, format.Default(), bindings)
	assert.NoError(t, err)
	assert.Contains(t, res.SQL, `"id" < :id_or_0_lt`)
	assert.Contains(t, res.SQL, `"id" > :id_or_1_gt`)
}

func TestParamInjectorAliasKeyedColumnRejected(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT u.id FROM users u`)
	assert.NoError(t, err)

	pi := transform.ParamInjector{}
	_, _, err = pi.Inject(q, map[string]transform.FilterValue{
		"u.id": transform.Eq(param.Int64(1)),
	}, false)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, transform.ErrAliasKeyedColumn))
}

func TestParamInjectorInOperator(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT id FROM users`)
	assert.NoError(t, err)

	pi := transform.ParamInjector{}
	out, bindings, err := pi.Inject(q, map[string]transform.FilterValue{
		"id": transform.Cond(transform.Condition{Op: transform.OpIn, Values: []param.Value{param.Int64(1), param.Int64(2)}}),
	}, false)
	assert.NoError(t, err)

	res, err := format.Format(out, format.Default(), bindings)
	assert.NoError(t, err)
	assert.Contains(t, res.SQL, `"id" in (:id_in_0, :id_in_1)`)
}
