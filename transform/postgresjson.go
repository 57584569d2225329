package transform

import (
	"github.com/sqlkit-go/sqlkit/ast"
)

// PostgresJsonQueryBuilder wraps a query so its whole row set comes back
// as a single jsonb value:
//
//	SELECT jsonb_agg(to_jsonb("t")) AS "result" FROM (<query>) AS "t"
//
// It consumes a Query and returns a Query, same as any other
// transformer; DynamicQueryBuilder callers apply it as a final step
// when they want a JSON payload instead of rows.
type PostgresJsonQueryBuilder struct {
	Alias      string // subquery alias, default "t"
	ResultName string // output column alias, default "result"
}

func (b PostgresJsonQueryBuilder) alias() string {
	if b.Alias == "" {
		return "t"
	}
	return b.Alias
}

func (b PostgresJsonQueryBuilder) resultName() string {
	if b.ResultName == "" {
		return "result"
	}
	return b.ResultName
}

// Wrap returns the jsonb_agg projection over q.
func (b PostgresJsonQueryBuilder) Wrap(q ast.Query) *ast.SimpleQuery {
	alias := b.alias()
	agg := &ast.FunctionExpr{
		Name: ast.QualifiedName{Name: ast.Identifier{Name: "jsonb_agg"}},
		Args: []ast.Expr{&ast.FunctionExpr{
			Name: ast.QualifiedName{Name: ast.Identifier{Name: "to_jsonb"}},
			Args: []ast.Expr{&ast.ColumnReference{Qualified: ast.QualifiedName{Name: ast.Identifier{Name: alias}}}},
		}},
	}
	return &ast.SimpleQuery{
		Select: ast.SelectClause{Items: []ast.SelectItem{{Expr: agg, Alias: b.resultName()}}},
		From:   &ast.FromClause{Source: &ast.SubQuerySource{Query: q, Alias: alias}},
	}
}
