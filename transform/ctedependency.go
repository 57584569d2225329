package transform

import (
	"fmt"
	"sort"

	"github.com/sqlkit-go/sqlkit/ast"
	"github.com/sqlkit-go/sqlkit/visitor"
)

// MainQueryNode is the synthetic graph node representing the
// statement's final (non-CTE) query.
const MainQueryNode = "MAIN_QUERY"

// CTEGraph is a directed "uses" graph over a statement's CTEs plus the
// synthetic MAIN_QUERY node.
type CTEGraph struct {
	Nodes []string
	Edges map[string][]string // node -> nodes it uses (depends on)
}

// CTEDependencyAnalyzer builds the dependency graph for a query's WITH
// clause.
type CTEDependencyAnalyzer struct{}

// Analyze walks the query's WITH clause (if any) and every CTE body,
// recording which other CTE names each CTE (and the main query)
// references.
func (CTEDependencyAnalyzer) Analyze(query ast.Query) *CTEGraph {
	g := &CTEGraph{Edges: map[string][]string{}}
	q, ok := query.(*ast.SimpleQuery)
	if !ok || q.With == nil {
		g.Nodes = []string{MainQueryNode}
		g.Edges[MainQueryNode] = nil
		return g
	}
	names := map[string]bool{}
	for _, cte := range q.With.CTEs {
		names[cte.Name] = true
		g.Nodes = append(g.Nodes, cte.Name)
	}
	g.Nodes = append(g.Nodes, MainQueryNode)

	for _, cte := range q.With.CTEs {
		g.Edges[cte.Name] = referencedCTEs(cte.Body, names, cte.Name)
	}

	mainQuery := &ast.SimpleQuery{
		Select:  q.Select,
		From:    q.From,
		Where:   q.Where,
		GroupBy: q.GroupBy,
		Having:  q.Having,
	}
	g.Edges[MainQueryNode] = referencedCTEs(mainQuery, names, "")
	return g
}

func referencedCTEs(q ast.Query, names map[string]bool, self string) []string {
	seen := map[string]bool{}
	var out []string
	visitor.Visit(q, func(n ast.Node) {
		if ts, ok := n.(*ast.TableSource); ok && len(ts.Namespaces) == 0 {
			if names[ts.Name.Name] && ts.Name.Name != self && !seen[ts.Name.Name] {
				seen[ts.Name.Name] = true
				out = append(out, ts.Name.Name)
			}
		}
	})
	sort.Strings(out)
	return out
}

// TopologicalOrder returns the graph's nodes in dependency order
// (leaves first), or an error if a cycle is present (SQL CTEs never
// cycle by construction, but the analyzer defends against malformed
// input all the same).
func (g *CTEGraph) TopologicalOrder() ([]string, error) {
	state := map[string]int{} // 0 unvisited, 1 visiting, 2 done
	var order []string
	var visit func(string) error
	visit = func(n string) error {
		switch state[n] {
		case 2:
			return nil
		case 1:
			return fmt.Errorf("cte dependency cycle at %q", n)
		}
		state[n] = 1
		for _, dep := range g.Edges[n] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[n] = 2
		order = append(order, n)
		return nil
	}
	for _, n := range g.Nodes {
		if err := visit(n); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// IndependentCTEs returns CTE names (excluding MAIN_QUERY) with no
// dependency on any other CTE in the graph.
func (g *CTEGraph) IndependentCTEs() []string {
	var out []string
	for _, n := range g.Nodes {
		if n == MainQueryNode {
			continue
		}
		if len(g.Edges[n]) == 0 {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// DependenciesOf returns the direct dependency list for node.
func (g *CTEGraph) DependenciesOf(node string) []string {
	return g.Edges[node]
}

// CTEDependencyTracer reports, for a given column name, in which CTEs
// it first appears (introduced) and in which it is dropped (no longer
// projected by a later CTE that consumes an earlier one).
type CTEDependencyTracer struct{}

// ColumnTrace is the result of tracing one column name through a
// query's CTE chain.
type ColumnTrace struct {
	Column       string
	AppearsIn    []string // CTE names (in WITH declaration order) that project the column
	DroppedAfter []string // CTE names that consume a column-bearing CTE but don't re-project it
}

func (CTEDependencyTracer) Trace(query ast.Query, column string) ColumnTrace {
	tr := ColumnTrace{Column: column}
	q, ok := query.(*ast.SimpleQuery)
	if !ok || q.With == nil {
		return tr
	}
	projects := map[string]bool{}
	for _, cte := range q.With.CTEs {
		sq, ok := cte.Body.(*ast.SimpleQuery)
		if !ok {
			continue
		}
		has := false
		for _, item := range sq.Select.Items {
			name := item.Alias
			if name == "" {
				name = bareColumnName(item.Expr)
			}
			if name == column || item.Star {
				has = true
				break
			}
		}
		if has {
			tr.AppearsIn = append(tr.AppearsIn, cte.Name)
			projects[cte.Name] = true
		}
	}
	names := map[string]bool{}
	for _, cte := range q.With.CTEs {
		names[cte.Name] = true
	}
	for _, cte := range q.With.CTEs {
		if projects[cte.Name] {
			continue
		}
		deps := referencedCTEs(cte.Body, names, cte.Name)
		for _, d := range deps {
			if projects[d] {
				tr.DroppedAfter = append(tr.DroppedAfter, cte.Name)
				break
			}
		}
	}
	return tr
}
