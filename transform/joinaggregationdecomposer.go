package transform

import (
	"strings"

	"github.com/google/uuid"

	"github.com/sqlkit-go/sqlkit/ast"
)

var aggregateFunctionNames = map[string]bool{
	"count": true, "sum": true, "avg": true, "min": true, "max": true,
	"array_agg": true, "string_agg": true, "json_agg": true, "jsonb_agg": true,
	"bool_and": true, "bool_or": true, "stddev": true, "variance": true,
}

func isAggregateCall(e ast.Expr) (*ast.FunctionExpr, bool) {
	fn, ok := e.(*ast.FunctionExpr)
	if !ok {
		return nil, false
	}
	return fn, aggregateFunctionNames[strings.ToLower(fn.Name.Name.Name)]
}

func containsWindowFunction(q *ast.SimpleQuery) bool {
	found := false
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		if found || e == nil {
			return
		}
		if fn, ok := e.(*ast.FunctionExpr); ok {
			if fn.Over != nil {
				found = true
				return
			}
			for _, a := range fn.Args {
				walk(a)
			}
		}
	}
	for _, item := range q.Select.Items {
		walk(item.Expr)
	}
	return found
}

// JoinAggregationDecomposer rewrites `SELECT ..., agg(...) FROM a JOIN
// b ... GROUP BY ...` into a `WITH <cteName> AS (SELECT <raw cols> FROM
// a JOIN b ...) SELECT ..., agg(...) FROM <cteName> GROUP BY ...`. Its
// treatment of DISTINCT aggregates and complex-expression
// aggregates is deliberately conservative: it extracts only bare
// ColumnReference arguments, matching the documented "not fully
// decomposable" limitation rather than attempting deeper extraction.
type JoinAggregationDecomposer struct {
	CTEName string
}

// cteName picks the detail CTE's name. A collision with a name already
// present in the query (an existing CTE or a referenced table) gets a
// random suffix so the rewrite never shadows the colliding name.
func (d JoinAggregationDecomposer) cteName(q *ast.SimpleQuery) string {
	name := d.CTEName
	if name == "" {
		name = "detail_data"
	}
	if nameInUse(q, name) {
		name = name + "_" + uuid.NewString()[:8]
	}
	return name
}

func nameInUse(q *ast.SimpleQuery, name string) bool {
	if q.With != nil {
		for _, cte := range q.With.CTEs {
			if cte.Name == name {
				return true
			}
		}
	}
	if q.From == nil {
		return false
	}
	check := func(s ast.Source) bool {
		t, ok := s.(*ast.TableSource)
		return ok && t.Name.Name == name
	}
	if check(q.From.Source) {
		return true
	}
	for _, j := range q.From.Joins {
		if check(j.Source) {
			return true
		}
	}
	return false
}

// Decompose is the error-returning primary entry point. It leaves q
// unchanged and returns a new query whose CTE body and outer clauses
// share q's FROM, WHERE, HAVING, ORDER BY, LIMIT and OFFSET nodes.
func (d JoinAggregationDecomposer) Decompose(q *ast.SimpleQuery) (*ast.SimpleQuery, error) {
	if q.From == nil || len(q.From.Joins) == 0 {
		return nil, ErrNoJoins
	}
	hasAgg := false
	for _, item := range q.Select.Items {
		if _, ok := isAggregateCall(item.Expr); ok {
			hasAgg = true
		}
	}
	if q.GroupBy == nil && !hasAgg {
		return nil, ErrNoAggregation
	}
	if containsWindowFunction(q) {
		return nil, ErrWindowFunctionsPresent
	}

	var detailItems []ast.SelectItem
	addDetail := func(col string, e ast.Expr) {
		if col == "" {
			return
		}
		for _, it := range detailItems {
			if it.Alias == col {
				return
			}
		}
		detailItems = append(detailItems, ast.SelectItem{Expr: e, Alias: col})
	}

	outerItems := make([]ast.SelectItem, len(q.Select.Items))
	for i, item := range q.Select.Items {
		if fn, ok := isAggregateCall(item.Expr); ok {
			newFn := *fn
			newArgs := make([]ast.Expr, len(fn.Args))
			for j, a := range fn.Args {
				if cr, ok := a.(*ast.ColumnReference); ok {
					bare := cr.Qualified.Name.Name
					addDetail(bare, a)
					newArgs[j] = colRef(bare)
				} else {
					newArgs[j] = a
				}
			}
			newFn.Args = newArgs
			outerItems[i] = ast.SelectItem{Expr: &newFn, Alias: item.Alias}
			continue
		}
		bare := item.Alias
		if bare == "" {
			bare = bareColumnName(item.Expr)
		}
		addDetail(bare, item.Expr)
		outerItems[i] = ast.SelectItem{Expr: colRef(bare), Alias: item.Alias}
	}

	var outerGroupBy *ast.GroupByClause
	if q.GroupBy != nil {
		items := make([]ast.Expr, len(q.GroupBy.Items))
		for i, e := range q.GroupBy.Items {
			bare := bareColumnName(e)
			addDetail(bare, e)
			items[i] = colRef(bare)
		}
		outerGroupBy = &ast.GroupByClause{Grouping: q.GroupBy.Grouping, Items: items}
	}

	detailQuery := &ast.SimpleQuery{
		Select: ast.SelectClause{Items: detailItems},
		From:   q.From,
		Where:  q.Where,
	}

	cteName := d.cteName(q)
	outer := &ast.SimpleQuery{
		With:    &ast.WithClause{CTEs: []ast.CTE{{Name: cteName, Body: detailQuery}}},
		Select:  ast.SelectClause{Distinct: q.Select.Distinct, Items: outerItems},
		From:    &ast.FromClause{Source: &ast.TableSource{Name: ast.Identifier{Name: cteName}}},
		GroupBy: outerGroupBy,
		Having:  q.Having,
		OrderBy: q.OrderBy,
		Limit:   q.Limit,
		Offset:  q.Offset,
	}
	return outer, nil
}

// Analyze is the Result-returning thin wrapper around Decompose, for
// callers that prefer a value over an exception.
func (d JoinAggregationDecomposer) Analyze(q *ast.SimpleQuery) Result[*ast.SimpleQuery] {
	out, err := d.Decompose(q)
	if err != nil {
		return Fail[*ast.SimpleQuery](err)
	}
	return Ok(out)
}
