package transform

import (
	"github.com/sqlkit-go/sqlkit/ast"
)

// InsertQuerySelectValuesConverter converts between the two equivalent
// shapes of a multi-row INSERT source: a VALUES list and a UNION ALL
// chain of single-row SELECTs. The UNION ALL shape lets each row carry
// per-value casts and comments the way a bare VALUES tuple cannot.
type InsertQuerySelectValuesConverter struct{}

// ToSelectUnion rewrites q's VALUES source into a UNION ALL chain of
// SELECTs, one per tuple, with the first SELECT's items aliased to the
// insert's column list. Requires an explicit column list and rejects
// any tuple whose length doesn't match it.
func (InsertQuerySelectValuesConverter) ToSelectUnion(q *ast.InsertQuery) (*ast.InsertQuery, error) {
	if len(q.Insert.Columns) == 0 {
		return nil, ErrMissingColumnList
	}
	vq, ok := q.Source.(*ast.ValuesQuery)
	if !ok {
		return nil, ErrColumnCountMismatch
	}
	cols := q.Insert.Columns

	var source ast.Query
	for ti, tup := range vq.Tuples {
		if len(tup.Values) != len(cols) {
			return nil, ErrColumnCountMismatch
		}
		items := make([]ast.SelectItem, len(cols))
		for ci, v := range tup.Values {
			alias := ""
			if ti == 0 {
				alias = cols[ci]
			}
			items[ci] = ast.SelectItem{Expr: v, Alias: alias}
		}
		sel := &ast.SimpleQuery{Select: ast.SelectClause{Items: items}}
		if source == nil {
			source = sel
		} else {
			source = &ast.BinaryQuery{Op: ast.SetUnionAll, Left: source, Right: sel}
		}
	}

	out := *q
	out.Source = source
	return &out, nil
}

// ToValues is the inverse of ToSelectUnion: it collapses a UNION ALL
// chain of single-row SELECTs back into a VALUES list. Every branch
// must be a plain SimpleQuery with no FROM/WHERE, and every select item
// in the first branch must carry an alias matching a target column, in
// order; later branches are matched positionally rather than by alias.
func (InsertQuerySelectValuesConverter) ToValues(q *ast.InsertQuery) (*ast.InsertQuery, error) {
	if len(q.Insert.Columns) == 0 {
		return nil, ErrMissingColumnList
	}
	branches, err := flattenUnionAll(q.Source)
	if err != nil {
		return nil, err
	}
	cols := q.Insert.Columns

	tuples := make([]ast.TupleExpr, len(branches))
	for bi, sel := range branches {
		if sel.From != nil || sel.Where != nil {
			return nil, ErrSelectHasFromOrWhere
		}
		if len(sel.Select.Items) != len(cols) {
			return nil, ErrColumnCountMismatch
		}
		if bi == 0 {
			for ci, item := range sel.Select.Items {
				if item.Alias == "" || item.Alias != cols[ci] {
					return nil, ErrAliasRequired
				}
			}
		}
		values := make([]ast.Expr, len(cols))
		for ci, item := range sel.Select.Items {
			values[ci] = item.Expr
		}
		tuples[bi] = ast.TupleExpr{Values: values}
	}

	out := *q
	out.Source = &ast.ValuesQuery{Tuples: tuples}
	return &out, nil
}

// flattenUnionAll walks a left-leaning UNION ALL chain (as produced by
// ToSelectUnion) into its ordered leaf SimpleQuery branches.
func flattenUnionAll(q ast.Query) ([]*ast.SimpleQuery, error) {
	switch v := q.(type) {
	case *ast.SimpleQuery:
		return []*ast.SimpleQuery{v}, nil
	case *ast.BinaryQuery:
		if v.Op != ast.SetUnionAll {
			return nil, ErrSelectHasFromOrWhere
		}
		left, err := flattenUnionAll(v.Left)
		if err != nil {
			return nil, err
		}
		right, err := flattenUnionAll(v.Right)
		if err != nil {
			return nil, err
		}
		return append(left, right...), nil
	default:
		return nil, ErrSelectHasFromOrWhere
	}
}
