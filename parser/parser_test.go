package parser_test

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/sqlkit-go/sqlkit/ast"
	"github.com/sqlkit-go/sqlkit/parser"
)

func TestParseSelectBasic(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT id, name FROM users WHERE active = true`)
	assert.NoError(t, err)
	sq, ok := q.(*ast.SimpleQuery)
	assert.True(t, ok)
	assert.Equal(t, 2, len(sq.Select.Items))
	assert.NotZero(t, sq.Where)
}

func TestParseSelectDistinctOn(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT DISTINCT ON (category) id, category FROM products`)
	assert.NoError(t, err)
	sq := q.(*ast.SimpleQuery)
	assert.True(t, sq.Select.Distinct)
	assert.Equal(t, 1, len(sq.Select.DistinctOn))
}

func TestParseWildcardAndQualifiedWildcard(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT *, u.* FROM users u`)
	assert.NoError(t, err)
	sq := q.(*ast.SimpleQuery)
	assert.Equal(t, 2, len(sq.Select.Items))
	assert.True(t, sq.Select.Items[0].Star)
	assert.Equal(t, "u", sq.Select.Items[1].QualifiedStar)
}

func TestParseJoinChain(t *testing.T) {
	q, err := parser.ParseSelect(`
		SELECT c.category_name, p.name
		FROM categories c
		JOIN products p ON c.id = p.category_id
		LEFT JOIN reviews r ON r.product_id = p.id
	`)
	assert.NoError(t, err)
	sq := q.(*ast.SimpleQuery)
	assert.Equal(t, 2, len(sq.From.Joins))
	assert.Equal(t, ast.JoinInner, sq.From.Joins[0].JoinType)
	assert.Equal(t, ast.JoinLeft, sq.From.Joins[1].JoinType)
}

func TestParseLateralSubquery(t *testing.T) {
	q, err := parser.ParseSelect(`
		SELECT u.id, t.total
		FROM users u
		JOIN LATERAL (SELECT sum(amount) AS total FROM sales s WHERE s.user_id = u.id) t ON true
	`)
	assert.NoError(t, err)
	sq := q.(*ast.SimpleQuery)
	assert.Equal(t, 1, len(sq.From.Joins))
	assert.True(t, sq.From.Joins[0].Lateral)
}

func TestParseFunctionSourceWithColumnAliases(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT n.value FROM generate_series(1, 10) AS n(value)`)
	assert.NoError(t, err)
	sq := q.(*ast.SimpleQuery)
	fs, ok := sq.From.Source.(*ast.FunctionSource)
	assert.True(t, ok)
	assert.Equal(t, "n", fs.Alias)
	assert.Equal(t, []string{"value"}, fs.Columns)
}

func TestParseValuesAsSource(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT t.a, t.b FROM VALUES (1, 'x'), (2, 'y') AS t(a, b)`)
	assert.NoError(t, err)
	sq := q.(*ast.SimpleQuery)
	vs, ok := sq.From.Source.(*ast.ValuesSource)
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, vs.Columns)
}

func TestParseGroupByRollupCubeSets(t *testing.T) {
	cases := []struct {
		sql  string
		kind ast.GroupingKind
	}{
		{`SELECT a, b, count(*) FROM t GROUP BY ROLLUP (a, b)`, ast.GroupRollup},
		{`SELECT a, b, count(*) FROM t GROUP BY CUBE (a, b)`, ast.GroupCube},
		{`SELECT a, b, count(*) FROM t GROUP BY GROUPING SETS ((a), (b), ())`, ast.GroupSets},
		{`SELECT a, count(*) FROM t GROUP BY a`, ast.GroupPlain},
	}
	for _, c := range cases {
		q, err := parser.ParseSelect(c.sql)
		assert.NoError(t, err)
		sq := q.(*ast.SimpleQuery)
		assert.Equal(t, c.kind, sq.GroupBy.Grouping)
	}
}

func TestParseOrderByNullsAndDirection(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT id FROM t ORDER BY name DESC NULLS LAST, id ASC NULLS FIRST`)
	assert.NoError(t, err)
	sq := q.(*ast.SimpleQuery)
	assert.Equal(t, 2, len(sq.OrderBy.Items))
	assert.Equal(t, ast.DirDesc, sq.OrderBy.Items[0].Direction)
	assert.Equal(t, ast.NullsLast, sq.OrderBy.Items[0].Nulls)
	assert.Equal(t, ast.DirAsc, sq.OrderBy.Items[1].Direction)
	assert.Equal(t, ast.NullsFirst, sq.OrderBy.Items[1].Nulls)
}

func TestParseLimitOffsetFetch(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT id FROM t FETCH FIRST 10 ROWS ONLY`)
	assert.NoError(t, err)
	sq := q.(*ast.SimpleQuery)
	assert.NotZero(t, sq.Fetch)

	q2, err := parser.ParseSelect(`SELECT id FROM t LIMIT 10 OFFSET 5`)
	assert.NoError(t, err)
	sq2 := q2.(*ast.SimpleQuery)
	assert.NotZero(t, sq2.Limit)
	assert.NotZero(t, sq2.Offset)
}

func TestParseSetOperationPrecedence(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT a FROM t1 UNION SELECT a FROM t2 INTERSECT SELECT a FROM t3`)
	assert.NoError(t, err)
	bq, ok := q.(*ast.BinaryQuery)
	assert.True(t, ok)
	assert.Equal(t, ast.SetUnion, bq.Op)
	rhs, ok := bq.Right.(*ast.BinaryQuery)
	assert.True(t, ok)
	assert.Equal(t, ast.SetIntersect, rhs.Op)
}

func TestParseWithRecursive(t *testing.T) {
	q, err := parser.ParseSelect(`
		WITH RECURSIVE tree(id, parent_id) AS (
			SELECT id, parent_id FROM nodes WHERE parent_id IS NULL
			UNION ALL
			SELECT n.id, n.parent_id FROM nodes n JOIN tree t ON n.parent_id = t.id
		)
		SELECT * FROM tree
	`)
	assert.NoError(t, err)
	sq := q.(*ast.SimpleQuery)
	assert.True(t, sq.With.Recursive)
	assert.Equal(t, 1, len(sq.With.CTEs))
	assert.Equal(t, []string{"id", "parent_id"}, sq.With.CTEs[0].Columns)
}

func TestParseWindowFunctionWithFilterAndFrame(t *testing.T) {
	q, err := parser.ParseSelect(`
		SELECT sum(amount) FILTER (WHERE active) OVER (PARTITION BY user_id ORDER BY created_at) FROM sales
	`)
	assert.NoError(t, err)
	sq := q.(*ast.SimpleQuery)
	fn, ok := sq.Select.Items[0].Expr.(*ast.FunctionExpr)
	assert.True(t, ok)
	assert.NotZero(t, fn.Filter)
	assert.NotZero(t, fn.Over)
}

func TestParseAggregateOrderByWithinArgs(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT string_agg(name, ',' ORDER BY name) FROM t`)
	assert.NoError(t, err)
	sq := q.(*ast.SimpleQuery)
	fn := sq.Select.Items[0].Expr.(*ast.FunctionExpr)
	assert.NotZero(t, fn.OrderBy)
}

func TestParseCaseSimpleAndSearched(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT CASE status WHEN 'a' THEN 1 WHEN 'b' THEN 2 ELSE 0 END FROM t`)
	assert.NoError(t, err)
	sq := q.(*ast.SimpleQuery)
	c := sq.Select.Items[0].Expr.(*ast.CaseExpr)
	assert.NotZero(t, c.Input)
	assert.Equal(t, 2, len(c.Branches))

	q2, err := parser.ParseSelect(`SELECT CASE WHEN x > 1 THEN 'big' ELSE 'small' END FROM t`)
	assert.NoError(t, err)
	sq2 := q2.(*ast.SimpleQuery)
	c2 := sq2.Select.Items[0].Expr.(*ast.CaseExpr)
	assert.Zero(t, c2.Input)
}

func TestParseCastBothForms(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT CAST(x AS int), y::text FROM t`)
	assert.NoError(t, err)
	sq := q.(*ast.SimpleQuery)
	_, ok1 := sq.Select.Items[0].Expr.(*ast.CastExpr)
	assert.True(t, ok1)
	_, ok2 := sq.Select.Items[1].Expr.(*ast.CastExpr)
	assert.True(t, ok2)
}

func TestParseExistsInBetweenLike(t *testing.T) {
	q, err := parser.ParseSelect(`
		SELECT id FROM t
		WHERE EXISTS (SELECT 1 FROM u WHERE u.id = t.id)
		  AND id IN (1, 2, 3)
		  AND amount BETWEEN 10 AND 20
		  AND name LIKE 'A%' ESCAPE '\'
		  AND name NOT ILIKE 'z%'
	`)
	assert.NoError(t, err)
	sq := q.(*ast.SimpleQuery)
	assert.NotZero(t, sq.Where)
}

func TestParseInWithSubquery(t *testing.T) {
	q, err := parser.ParseSelect(`SELECT id FROM t WHERE id IN (SELECT id FROM u)`)
	assert.NoError(t, err)
	sq := q.(*ast.SimpleQuery)
	in := sq.Where.Predicate.(*ast.InExpr)
	assert.NotZero(t, in.Subquery)
	assert.Zero(t, in.List)
}

func TestParseExpressionPrecedence(t *testing.T) {
	q, err := parser.ParseValue(`1 + 2 * 3 ^ 2`)
	assert.NoError(t, err)
	bin := q.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpAdd, bin.Op)
}

func TestParseCreateTable(t *testing.T) {
	q, err := parser.ParseCreateTable(`
		CREATE TABLE IF NOT EXISTS users (
			id INT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			manager_id INT REFERENCES users(id),
			CONSTRAINT chk_email CHECK (email <> '')
		)
	`)
	assert.NoError(t, err)
	assert.True(t, q.IfNotExists)
	assert.Equal(t, 3, len(q.Body.Columns))
	assert.Equal(t, 1, len(q.Body.Constraints))
	assert.True(t, q.Body.Columns[0].PrimaryKey)
	assert.NotZero(t, q.Body.Columns[2].References)
}

func TestParseCreateTableAsSelect(t *testing.T) {
	q, err := parser.ParseCreateTable(`CREATE TEMPORARY TABLE recent AS SELECT id FROM sales WHERE created_at > now()`)
	assert.NoError(t, err)
	assert.True(t, q.Temporary)
	assert.NotZero(t, q.Body.As)
}

func TestParseInsertValues(t *testing.T) {
	q, err := parser.ParseInsert(`INSERT INTO sale (sale_date, price) VALUES ('2023-01-01', 160), ('2023-03-12', 200)`)
	assert.NoError(t, err)
	assert.Equal(t, []string{"sale_date", "price"}, q.Insert.Columns)
	vq, ok := q.Source.(*ast.ValuesQuery)
	assert.True(t, ok)
	assert.Equal(t, 2, len(vq.Tuples))
}

func TestParseInsertSelectOnConflictReturning(t *testing.T) {
	q, err := parser.ParseInsert(`
		INSERT INTO users (id, email) SELECT id, email FROM staging
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING id
	`)
	assert.NoError(t, err)
	_, ok := q.Source.(ast.Query)
	assert.True(t, ok)
	assert.NotZero(t, q.OnConflict)
	assert.False(t, q.OnConflict.Action.DoNothing)
	assert.NotZero(t, q.Returning)
}

func TestParseUpdateFromWhereReturning(t *testing.T) {
	q, err := parser.ParseUpdate(`
		UPDATE t SET active = false
		FROM archive a
		WHERE t.id = a.id
		RETURNING t.id
	`)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(q.Set.Items))
	assert.NotZero(t, q.From)
	assert.NotZero(t, q.Where)
	assert.NotZero(t, q.Returning)
}

func TestParseAmbiguousKeywordAsColumnName(t *testing.T) {
	// "user" is a non-strict reserved word and must parse as a plain
	// column reference in this context.
	q, err := parser.ParseSelect(`SELECT user FROM t`)
	assert.NoError(t, err)
	sq := q.(*ast.SimpleQuery)
	assert.Equal(t, 1, len(sq.Select.Items))
}

func TestParseUnexpectedTokenError(t *testing.T) {
	_, err := parser.ParseSelect(`SELECT FROM FROM t`)
	assert.Error(t, err)
	var perr *parser.ParseError
	assert.True(t, asParseError(err, &perr))
}

func asParseError(err error, target **parser.ParseError) bool {
	pe, ok := err.(*parser.ParseError)
	if ok {
		*target = pe
	}
	return ok
}
