package visitor

import "github.com/sqlkit-go/sqlkit/ast"

// ColumnReferenceCollector gathers every column reference encountered
// during a pre-order walk, in that order, with duplicates retained
// (callers dedupe if they need to; this collector answers "which nodes
// reference columns", not "which columns are referenced").
type ColumnReferenceCollector struct {
	Refs []*ast.ColumnReference
}

func (c *ColumnReferenceCollector) Visit(n ast.Node) {
	Visit(n, func(node ast.Node) {
		if ref, ok := node.(*ast.ColumnReference); ok {
			c.Refs = append(c.Refs, ref)
		}
	})
}

// SelectValueCollector returns the top-level SELECT clause's items. It
// does not descend into subqueries on purpose — use it on a specific
// SelectClause, not a whole tree.
type SelectValueCollector struct {
	Items []ast.SelectItem
}

func (c *SelectValueCollector) Visit(sel *ast.SelectClause) {
	c.Items = append(c.Items, sel.Items...)
}

// TableSourceMode selects how far TableSourceCollector descends.
type TableSourceMode int

const (
	// SelectableOnly collects only the outermost query's FROM sources.
	SelectableOnly TableSourceMode = iota
	// FullScan traverses subqueries, CTEs, and function-argument
	// subqueries, and excludes CTE-defined names from the result.
	FullScan
)

// TableSourceCollector gathers distinct real table names reachable from
// a query. In FullScan mode, names introduced by a WITH
// clause are excluded even if also referenced as a FROM source — they
// are CTEs, not real tables.
type TableSourceCollector struct {
	Mode   TableSourceMode
	Tables []ast.TableSource

	cteNames map[string]bool
	seen     map[string]bool
}

func NewTableSourceCollector(mode TableSourceMode) *TableSourceCollector {
	return &TableSourceCollector{Mode: mode, cteNames: map[string]bool{}, seen: map[string]bool{}}
}

func (c *TableSourceCollector) Visit(q ast.Query) {
	if c.Mode == FullScan {
		c.collectCTENames(q)
	}
	switch c.Mode {
	case SelectableOnly:
		c.collectFromOnly(q)
	case FullScan:
		Visit(q, func(n ast.Node) {
			if ts, ok := n.(*ast.TableSource); ok {
				c.add(*ts)
			}
		})
	}
}

func (c *TableSourceCollector) collectCTENames(n ast.Node) {
	Visit(n, func(node ast.Node) {
		if with, ok := node.(*ast.WithClause); ok {
			for _, cte := range with.CTEs {
				c.cteNames[cte.Name] = true
			}
		}
	})
}

func (c *TableSourceCollector) collectFromOnly(q ast.Query) {
	sq, ok := q.(*ast.SimpleQuery)
	if !ok || sq.From == nil {
		return
	}
	if with := sq.With; with != nil {
		for _, cte := range with.CTEs {
			c.cteNames[cte.Name] = true
		}
	}
	if ts, ok := sq.From.Source.(*ast.TableSource); ok {
		c.add(*ts)
	}
	for _, j := range sq.From.Joins {
		if ts, ok := j.Source.(*ast.TableSource); ok {
			c.add(*ts)
		}
	}
}

func (c *TableSourceCollector) add(ts ast.TableSource) {
	if c.Mode == FullScan && c.cteNames[ts.Name.Name] && len(ts.Namespaces) == 0 {
		return
	}
	key := ts.Name.Name
	for _, ns := range ts.Namespaces {
		key = ns.Name + "." + key
	}
	if c.seen[key] {
		return
	}
	c.seen[key] = true
	c.Tables = append(c.Tables, ts)
}

// Rewriter replaces subtrees. RewriteExpr returns a (possibly new) Expr;
// returning the input unchanged is valid when no rewrite applies.
type Rewriter interface {
	RewriteExpr(e ast.Expr) ast.Expr
}

// RewriteExprFunc adapts a function to the Rewriter interface.
type RewriteExprFunc func(ast.Expr) ast.Expr

func (f RewriteExprFunc) RewriteExpr(e ast.Expr) ast.Expr { return f(e) }

// RewriteExprTree applies r to e and to the operands, arguments, list
// items and CASE branches of the expression kinds listed below,
// bottom-up (children rewritten before their parent sees the result),
// and returns the (possibly replaced) root expression itself rewritten.
// It does not enter subqueries, FILTER/OVER clauses or LIKE ESCAPE.
func RewriteExprTree(e ast.Expr, r Rewriter) ast.Expr {
	switch v := e.(type) {
	case *ast.BinaryExpr:
		v.Left = RewriteExprTree(v.Left, r)
		v.Right = RewriteExprTree(v.Right, r)
	case *ast.UnaryExpr:
		v.Operand = RewriteExprTree(v.Operand, r)
	case *ast.FunctionExpr:
		for i, a := range v.Args {
			v.Args[i] = RewriteExprTree(a, r)
		}
	case *ast.CaseExpr:
		if v.Input != nil {
			v.Input = RewriteExprTree(v.Input, r)
		}
		for i := range v.Branches {
			v.Branches[i].When = RewriteExprTree(v.Branches[i].When, r)
			v.Branches[i].Then = RewriteExprTree(v.Branches[i].Then, r)
		}
		if v.Else != nil {
			v.Else = RewriteExprTree(v.Else, r)
		}
	case *ast.CastExpr:
		v.Input = RewriteExprTree(v.Input, r)
	case *ast.InExpr:
		v.Input = RewriteExprTree(v.Input, r)
		for i, item := range v.List {
			v.List[i] = RewriteExprTree(item, r)
		}
	case *ast.BetweenExpr:
		v.Input = RewriteExprTree(v.Input, r)
		v.Low = RewriteExprTree(v.Low, r)
		v.High = RewriteExprTree(v.High, r)
	case *ast.LikeExpr:
		v.Input = RewriteExprTree(v.Input, r)
		v.Pattern = RewriteExprTree(v.Pattern, r)
	case *ast.TupleExpr:
		for i, item := range v.Values {
			v.Values[i] = RewriteExprTree(item, r)
		}
	case *ast.ArrayExpr:
		for i, item := range v.Values {
			v.Values[i] = RewriteExprTree(item, r)
		}
	}
	return r.RewriteExpr(e)
}
