package ast

// TableSource is a real or schema-qualified table reference.
type TableSource struct {
	Base
	Namespaces []Identifier
	Name       Identifier
	Alias      string
}

func (*TableSource) sourceNode()     {}
func (*TableSource) Kind() NodeKind { return KindTableSource }

// SubQuerySource is a derived table: (SELECT ...) AS alias.
type SubQuerySource struct {
	Base
	Query Query
	Alias string
}

func (*SubQuerySource) sourceNode()     {}
func (*SubQuerySource) Kind() NodeKind { return KindSubQuerySource }

// FunctionSource is a set-returning function used as a FROM source,
// e.g. generate_series(1, 10) AS s(n).
type FunctionSource struct {
	Base
	Call    FunctionExpr
	Alias   string
	Columns []string
}

func (*FunctionSource) sourceNode()     {}
func (*FunctionSource) Kind() NodeKind { return KindFunctionSource }

// ValuesSource is an inline VALUES list used as a FROM source:
// VALUES (1,'a'), (2,'b') AS t(id, label).
type ValuesSource struct {
	Base
	Query   *ValuesQuery
	Alias   string
	Columns []string
}

func (*ValuesSource) sourceNode()     {}
func (*ValuesSource) Kind() NodeKind { return KindValuesSource }

// ParenthesizedSource wraps a nested join chain in parentheses.
type ParenthesizedSource struct {
	Base
	Source Source
}

func (*ParenthesizedSource) sourceNode()     {}
func (*ParenthesizedSource) Kind() NodeKind { return KindParenthesizedSource }

// JoinedSource wraps a source plus its chained joins so a parenthesized
// join tree, e.g. `(a JOIN b ON ... JOIN c ON ...)`, can itself be used
// wherever a single Source is expected.
type JoinedSource struct {
	Base
	Source Source
	Joins  []Join
}

func (*JoinedSource) sourceNode()     {}
func (*JoinedSource) Kind() NodeKind { return KindJoinedSource }

// JoinKind enumerates the supported join kinds.
type JoinKind int

const (
	JoinInner JoinKind = iota
	JoinLeft
	JoinRight
	JoinFull
	JoinCross
)

// JoinCondition is either ON(expr) or USING(ids); exactly one is set.
type JoinCondition struct {
	On    Expr
	Using []string
}

// Join is one join step chained after a FROM source.
type Join struct {
	Base
	JoinType  JoinKind
	Lateral   bool
	Source    Source
	Condition *JoinCondition // nil for CROSS JOIN
}

func (*Join) Kind() NodeKind { return KindJoinClause }

// FromClause is the FROM source plus its chained joins.
type FromClause struct {
	Base
	Source Source
	Joins  []Join
}

func (*FromClause) clauseNode()    {}
func (*FromClause) Kind() NodeKind { return KindFromClause }
