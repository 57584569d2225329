// Package visitor provides uniform, deterministic AST traversal used by
// every transformer: read-only Collectors and subtree-
// replacing Rewriters, both walking in the same documented pre-order.
package visitor

import "github.com/sqlkit-go/sqlkit/ast"

// Visit walks n in pre-order, calling enter(n) before descending into
// its children. Traversal order is deterministic: for a query, With
// (CTEs in declaration order) precedes Select, then From (source, then
// joins in order), then Where, GroupBy, Having, OrderBy, Limit, Offset,
// Fetch, For — matching the clause order a formatter emits them in.
// Comment-bearing positions are never skipped: every node reachable
// here is a node the formatter would also visit.
func Visit(n ast.Node, enter func(ast.Node)) {
	if n == nil || isNilNode(n) {
		return
	}
	enter(n)

	switch v := n.(type) {
	case *ast.SimpleQuery:
		if v.With != nil {
			Visit(v.With, enter)
		}
		Visit(&v.Select, enter)
		if v.From != nil {
			Visit(v.From, enter)
		}
		if v.Where != nil {
			Visit(v.Where, enter)
		}
		if v.GroupBy != nil {
			Visit(v.GroupBy, enter)
		}
		if v.Having != nil {
			Visit(v.Having, enter)
		}
		if v.OrderBy != nil {
			Visit(v.OrderBy, enter)
		}
		if v.Limit != nil {
			Visit(v.Limit, enter)
		}
		if v.Offset != nil {
			Visit(v.Offset, enter)
		}
		if v.Fetch != nil {
			Visit(v.Fetch, enter)
		}
		if v.For != nil {
			Visit(v.For, enter)
		}

	case *ast.BinaryQuery:
		Visit(v.Left, enter)
		Visit(v.Right, enter)
		if v.OrderBy != nil {
			Visit(v.OrderBy, enter)
		}
		if v.Limit != nil {
			Visit(v.Limit, enter)
		}
		if v.Offset != nil {
			Visit(v.Offset, enter)
		}
		if v.Fetch != nil {
			Visit(v.Fetch, enter)
		}

	case *ast.ValuesQuery:
		for i := range v.Tuples {
			Visit(&v.Tuples[i], enter)
		}

	case *ast.InsertQuery:
		Visit(&v.Insert, enter)
		Visit(v.Source, enter)
		if v.OnConflict != nil {
			Visit(v.OnConflict, enter)
		}
		if v.Returning != nil {
			Visit(v.Returning, enter)
		}

	case *ast.UpdateQuery:
		if v.With != nil {
			Visit(v.With, enter)
		}
		Visit(&v.Target, enter)
		Visit(&v.Set, enter)
		if v.From != nil {
			Visit(v.From, enter)
		}
		if v.Where != nil {
			Visit(v.Where, enter)
		}
		if v.Returning != nil {
			Visit(v.Returning, enter)
		}

	case *ast.CreateTableQuery:
		if v.Body.As != nil {
			Visit(v.Body.As, enter)
		}
		for i := range v.Body.Columns {
			if v.Body.Columns[i].Default != nil {
				Visit(v.Body.Columns[i].Default, enter)
			}
			if v.Body.Columns[i].Check != nil {
				Visit(v.Body.Columns[i].Check, enter)
			}
		}
		for i := range v.Body.Constraints {
			if v.Body.Constraints[i].Check != nil {
				Visit(v.Body.Constraints[i].Check, enter)
			}
		}

	case *ast.WithClause:
		for i := range v.CTEs {
			Visit(&v.CTEs[i], enter)
		}

	case *ast.CTE:
		Visit(v.Body, enter)

	case *ast.SelectClause:
		for i := range v.Items {
			Visit(&v.Items[i], enter)
		}

	case *ast.SelectItem:
		if v.Expr != nil {
			Visit(v.Expr, enter)
		}

	case *ast.FromClause:
		Visit(v.Source, enter)
		for i := range v.Joins {
			Visit(&v.Joins[i], enter)
		}

	case *ast.Join:
		Visit(v.Source, enter)
		if v.Condition != nil && v.Condition.On != nil {
			Visit(v.Condition.On, enter)
		}

	case *ast.WhereClause:
		Visit(v.Predicate, enter)

	case *ast.GroupByClause:
		for _, e := range v.Items {
			Visit(e, enter)
		}
		for _, set := range v.Sets {
			for _, e := range set {
				Visit(e, enter)
			}
		}

	case *ast.HavingClause:
		Visit(v.Predicate, enter)

	case *ast.OrderByClause:
		for _, item := range v.Items {
			Visit(item.Expr, enter)
		}

	case *ast.LimitClause:
		Visit(v.Count, enter)

	case *ast.OffsetClause:
		Visit(v.Count, enter)

	case *ast.FetchClause:
		Visit(v.Count, enter)

	case *ast.ReturningClause:
		for i := range v.Items {
			Visit(&v.Items[i], enter)
		}

	case *ast.InsertClause:
		// leaf w.r.t. expressions

	case *ast.OnConflictClause:
		for _, item := range v.Action.SetItems {
			Visit(item.Value, enter)
		}
		if v.Action.Where != nil {
			Visit(v.Action.Where, enter)
		}

	case *ast.SetClause:
		for _, item := range v.Items {
			Visit(item.Value, enter)
		}

	case *ast.TableSource:
		// leaf

	case *ast.SubQuerySource:
		Visit(v.Query, enter)

	case *ast.FunctionSource:
		Visit(&v.Call, enter)

	case *ast.ValuesSource:
		Visit(v.Query, enter)

	case *ast.ParenthesizedSource:
		Visit(v.Source, enter)

	case *ast.JoinedSource:
		Visit(v.Source, enter)
		for i := range v.Joins {
			Visit(&v.Joins[i], enter)
		}

	case *ast.BinaryExpr:
		Visit(v.Left, enter)
		Visit(v.Right, enter)

	case *ast.UnaryExpr:
		Visit(v.Operand, enter)

	case *ast.FunctionExpr:
		for _, a := range v.Args {
			Visit(a, enter)
		}
		for _, item := range v.OrderBy {
			Visit(item.Expr, enter)
		}
		if v.Filter != nil {
			Visit(v.Filter, enter)
		}
		if v.Over != nil {
			for _, e := range v.Over.PartitionBy {
				Visit(e, enter)
			}
			for _, item := range v.Over.OrderBy {
				Visit(item.Expr, enter)
			}
		}
		for _, item := range v.WithinGroup {
			Visit(item.Expr, enter)
		}

	case *ast.CaseExpr:
		if v.Input != nil {
			Visit(v.Input, enter)
		}
		for _, b := range v.Branches {
			Visit(b.When, enter)
			Visit(b.Then, enter)
		}
		if v.Else != nil {
			Visit(v.Else, enter)
		}

	case *ast.CastExpr:
		Visit(v.Input, enter)

	case *ast.InExpr:
		Visit(v.Input, enter)
		for _, e := range v.List {
			Visit(e, enter)
		}
		if v.Subquery != nil {
			Visit(v.Subquery, enter)
		}

	case *ast.BetweenExpr:
		Visit(v.Input, enter)
		Visit(v.Low, enter)
		Visit(v.High, enter)

	case *ast.ExistsExpr:
		Visit(v.Subquery, enter)

	case *ast.LikeExpr:
		Visit(v.Input, enter)
		Visit(v.Pattern, enter)
		if v.Escape != nil {
			Visit(v.Escape, enter)
		}

	case *ast.TupleExpr:
		for _, e := range v.Values {
			Visit(e, enter)
		}

	case *ast.ArrayExpr:
		for _, e := range v.Values {
			Visit(e, enter)
		}

	case *ast.SubqueryExpr:
		Visit(v.Query, enter)

	case *ast.QualifiedName, *ast.ColumnReference, *ast.Identifier, *ast.Literal, *ast.Parameter, *ast.StringSpecifierExpr:
		// leaves

	default:
		// Unknown node kinds are treated as leaves rather than panicking;
		// new node types should add a case above as they're introduced.
	}
}

// isNilNode reports whether n holds a typed nil pointer, which Visit
// must not dereference.
func isNilNode(n ast.Node) bool {
	switch v := n.(type) {
	case *ast.SimpleQuery:
		return v == nil
	case *ast.BinaryQuery:
		return v == nil
	case *ast.ValuesQuery:
		return v == nil
	case *ast.InsertQuery:
		return v == nil
	case *ast.UpdateQuery:
		return v == nil
	case *ast.CreateTableQuery:
		return v == nil
	case *ast.SubqueryExpr:
		return v == nil
	}
	return false
}
