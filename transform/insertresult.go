package transform

import (
	"fmt"

	"github.com/sqlkit-go/sqlkit/ast"
	"github.com/sqlkit-go/sqlkit/visitor"
)

// TargetColumn describes one column of an INSERT's target table, as
// InsertResultSelectConverter needs it: its SQL type for casting, the
// raw text of its default expression (if any), and whether that
// default is a serial/sequence default that must be rewritten to
// row_number() OVER () rather than re-evaluated.
type TargetColumn struct {
	Name    string
	Type    string
	Default string // raw SQL text, e.g. "now()"; empty if no default
	Serial  bool
}

// TargetTableResolver returns the full column list (in table order) of
// an INSERT's target table.
type TargetTableResolver func(tableName string) []TargetColumn

// FixtureStrategy controls how InsertResultSelectConverter handles real
// tables referenced by the insert source that have no matching fixture.
type FixtureStrategy int

const (
	// FixtureRequireCoverage fails with ErrFixtureCoverage when a
	// referenced table has no fixture.
	FixtureRequireCoverage FixtureStrategy = iota
	// FixturePassthrough leaves unfixtured tables referenced as-is.
	FixturePassthrough
)

// InsertResultSelectConverter simulates the row set an INSERT would
// produce, as a plain SELECT: useful for previewing or testing an
// insert without executing it.
type InsertResultSelectConverter struct {
	Resolver TargetTableResolver
	Fixtures []FixtureTable
	Strategy FixtureStrategy
}

const insertedRowsCTE = "__inserted_rows"

// ToSelectQuery builds the __inserted_rows CTE from q's VALUES/SELECT
// source, casting each projected value to its target column's type,
// substituting table defaults for omitted columns (serial/sequence
// defaults become row_number() OVER ()), and prepending one
// FixtureCteBuilder-built CTE per non-CTE table the source references.
// The outer SELECT mirrors q's RETURNING list against __inserted_rows,
// or, absent RETURNING, is `SELECT count(*) AS "count"`.
func (c InsertResultSelectConverter) ToSelectQuery(q *ast.InsertQuery) (*ast.SimpleQuery, error) {
	if c.Resolver == nil {
		return nil, fmt.Errorf("%w: no target table resolver configured", ErrRequiredColumnMissing)
	}
	tableName := q.Insert.Table.Name
	targetCols := c.Resolver(tableName)
	if len(targetCols) == 0 {
		return nil, fmt.Errorf("%w: unknown table %q", ErrRequiredColumnMissing, tableName)
	}

	source, err := normalizeInsertSource(q)
	if err != nil {
		return nil, err
	}

	insertedBody, err := c.buildInsertedRowsBody(q, source, targetCols)
	if err != nil {
		return nil, err
	}

	with := &ast.WithClause{}
	if err := c.appendFixtureCTEs(with, source); err != nil {
		return nil, err
	}
	with.CTEs = append(with.CTEs, ast.CTE{Name: insertedRowsCTE, Body: insertedBody})

	var items []ast.SelectItem
	if q.Returning != nil && len(q.Returning.Items) > 0 {
		items = make([]ast.SelectItem, len(q.Returning.Items))
		copy(items, q.Returning.Items)
	} else {
		items = []ast.SelectItem{{
			Expr:  &ast.FunctionExpr{Name: ast.QualifiedName{Name: ast.Identifier{Name: "count"}}, Star: true},
			Alias: "count",
		}}
	}

	out := &ast.SimpleQuery{
		With:   with,
		Select: ast.SelectClause{Items: items},
		From:   &ast.FromClause{Source: &ast.TableSource{Name: ast.Identifier{Name: insertedRowsCTE}}},
	}
	return out, nil
}

// normalizeInsertSource turns a VALUES source into its SELECT UNION ALL
// equivalent so both source shapes share one code path below.
func normalizeInsertSource(q *ast.InsertQuery) (ast.Query, error) {
	if _, ok := q.Source.(*ast.ValuesQuery); ok {
		converted, err := InsertQuerySelectValuesConverter{}.ToSelectUnion(q)
		if err != nil {
			return nil, err
		}
		return converted.Source, nil
	}
	return q.Source, nil
}

// buildInsertedRowsBody projects the source's per-column values (by
// position against q.Insert.Columns) for every target column, casting
// to the target type, falling back to the table default (or
// row_number() OVER () for a serial default) when a target column is
// omitted from the insert's column list.
func (c InsertResultSelectConverter) buildInsertedRowsBody(q *ast.InsertQuery, source ast.Query, targetCols []TargetColumn) (ast.Query, error) {
	position := map[string]int{}
	for i, name := range q.Insert.Columns {
		position[name] = i
	}

	rewriteBranch := func(sel *ast.SimpleQuery) (*ast.SimpleQuery, error) {
		items := make([]ast.SelectItem, len(targetCols))
		for i, tc := range targetCols {
			var expr ast.Expr
			if pos, ok := position[tc.Name]; ok && pos < len(sel.Select.Items) {
				expr = sel.Select.Items[pos].Expr
			} else if tc.Serial {
				expr = &ast.FunctionExpr{Name: ast.QualifiedName{Name: ast.Identifier{Name: "row_number"}}, Over: &ast.WindowSpec{}}
			} else if tc.Default != "" {
				expr = &ast.Literal{RawText: tc.Default}
			} else {
				expr = &ast.Literal{RawText: "null"}
			}
			if tc.Type != "" {
				expr = &ast.CastExpr{Input: expr, TargetType: tc.Type}
			}
			items[i] = ast.SelectItem{Expr: expr, Alias: tc.Name}
		}
		return &ast.SimpleQuery{Select: ast.SelectClause{Items: items}, From: sel.From, Where: sel.Where}, nil
	}

	switch v := source.(type) {
	case *ast.SimpleQuery:
		return rewriteBranch(v)
	case *ast.BinaryQuery:
		branches, err := flattenUnionAll(v)
		if err != nil {
			return nil, err
		}
		var out ast.Query
		for _, b := range branches {
			rb, err := rewriteBranch(b)
			if err != nil {
				return nil, err
			}
			if out == nil {
				out = rb
			} else {
				out = &ast.BinaryQuery{Op: ast.SetUnionAll, Left: out, Right: rb}
			}
		}
		return out, nil
	default:
		return nil, ErrRequiredColumnMissing
	}
}

// appendFixtureCTEs prepends one CTE per non-CTE real table the source
// references, built from c.Fixtures. A referenced table without a
// matching fixture fails unless c.Strategy is FixturePassthrough.
func (c InsertResultSelectConverter) appendFixtureCTEs(with *ast.WithClause, source ast.Query) error {
	collector := visitor.NewTableSourceCollector(visitor.FullScan)
	collector.Visit(source)

	fixtureByName := map[string]FixtureTable{}
	for _, f := range c.Fixtures {
		fixtureByName[f.Name] = f
	}

	builder := FixtureCteBuilder{}
	for _, ts := range collector.Tables {
		ft, ok := fixtureByName[ts.Name.Name]
		if !ok {
			if c.Strategy == FixturePassthrough {
				continue
			}
			return fmt.Errorf("%w: %s", ErrFixtureCoverage, ts.Name.Name)
		}
		with.CTEs = append(with.CTEs, builder.Build(ft))
	}
	return nil
}
