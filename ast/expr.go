package ast

import "github.com/sqlkit-go/sqlkit/tokenizer"

// BinaryOp enumerates the binary operators the parser's precedence
// table recognizes.
type BinaryOp int

const (
	OpOr BinaryOp = iota
	OpAnd
	OpEq
	OpNotEq
	OpLt
	OpLtEq
	OpGt
	OpGtEq
	OpAdd
	OpSub
	OpConcat
	OpMul
	OpDiv
	OpMod
	OpPow
	OpIs
	OpIsNot
)

// UnaryOp enumerates prefix unary operators.
type UnaryOp int

const (
	OpNeg UnaryOp = iota // unary -
	OpPos                // unary +
	OpNot                // NOT
)

// Literal is a scalar literal: number, string, boolean, or NULL. RawText
// preserves the exact source spelling: numeric precision is never
// float-widened.
type Literal struct {
	Base
	RawText  string
	IsString bool
	TypeHint string // optional explicit type annotation, e.g. from a cast shorthand
}

func (*Literal) exprNode()     {}
func (*Literal) Kind() NodeKind { return KindLiteral }

// Identifier is a single unqualified name.
type Identifier struct {
	Base
	Name   string
	Quoted bool
}

func (*Identifier) exprNode()      {}
func (*Identifier) Kind() NodeKind { return KindIdentifier }

// QualifiedName is a dotted name chain (schema.table.column, etc).
type QualifiedName struct {
	Base
	Namespaces []Identifier
	Name       Identifier
}

func (*QualifiedName) exprNode()      {}
func (*QualifiedName) Kind() NodeKind { return KindQualifiedName }

// ColumnReference wraps a QualifiedName used in value position.
type ColumnReference struct {
	Base
	Qualified QualifiedName
}

func (*ColumnReference) exprNode()      {}
func (*ColumnReference) Kind() NodeKind { return KindColumnReference }

// Parameter is a named or positional bind marker.
type Parameter struct {
	Base
	Name  string // canonical name used for dedup in the parameter map
	Style tokenizer.ParamStyle
}

func (*Parameter) exprNode()      {}
func (*Parameter) Kind() NodeKind { return KindParameter }

// BinaryExpr is a two-operand operator expression.
type BinaryExpr struct {
	Base
	Left  Expr
	Op    BinaryOp
	Right Expr
}

func (*BinaryExpr) exprNode()      {}
func (*BinaryExpr) Kind() NodeKind { return KindBinaryExpr }

// UnaryExpr is a prefix operator expression.
type UnaryExpr struct {
	Base
	Op      UnaryOp
	Operand Expr
}

func (*UnaryExpr) exprNode()      {}
func (*UnaryExpr) Kind() NodeKind { return KindUnaryExpr }

// OrderItem is one ORDER BY entry, reused both at the clause level and
// inside ordered aggregate function arguments.
type OrderItem struct {
	Expr      Expr
	Direction Direction
	Nulls     NullsOrder
}

type Direction int

const (
	DirDefault Direction = iota
	DirAsc
	DirDesc
)

type NullsOrder int

const (
	NullsDefault NullsOrder = iota
	NullsFirst
	NullsLast
)

// WindowFrame describes a ROWS/RANGE frame clause inside OVER (...).
type WindowFrame struct {
	Unit       string // "rows" or "range"
	StartBound string
	EndBound   string // empty when there is no BETWEEN ... AND ...
}

// WindowSpec is the body of an OVER (...) clause.
type WindowSpec struct {
	PartitionBy []Expr
	OrderBy     []OrderItem
	Frame       *WindowFrame
}

// FunctionExpr is a function call, optionally carrying aggregate/window
// modifiers (window functions, aggregates).
type FunctionExpr struct {
	Base
	Name         QualifiedName
	Args         []Expr
	Distinct     bool
	Star         bool // COUNT(*)
	OrderBy      []OrderItem
	Filter       Expr // FILTER (WHERE pred)
	Over         *WindowSpec
	WithinGroup  []OrderItem
}

func (*FunctionExpr) exprNode()      {}
func (*FunctionExpr) Kind() NodeKind { return KindFunctionExpr }

// CaseBranch is one WHEN/THEN pair.
type CaseBranch struct {
	When Expr
	Then Expr
}

// CaseExpr models both simple (CASE input WHEN ...) and searched
// (CASE WHEN cond ...) forms; Input is nil for the searched form.
type CaseExpr struct {
	Base
	Input    Expr
	Branches []CaseBranch
	Else     Expr
}

func (*CaseExpr) exprNode()      {}
func (*CaseExpr) Kind() NodeKind { return KindCaseExpr }

// CastExpr models both CAST(x AS t) and x::t; DoubleColon records which
// spelling was used so the formatter reproduces it exactly.
type CastExpr struct {
	Base
	Input      Expr
	TargetType string
	DoubleColon bool
}

func (*CastExpr) exprNode()      {}
func (*CastExpr) Kind() NodeKind { return KindCastExpr }

// InExpr models `x [NOT] IN (list)` and `x [NOT] IN (subquery)`.
type InExpr struct {
	Base
	Input    Expr
	List     []Expr // nil when Subquery is set
	Subquery Query
	Negated  bool
}

func (*InExpr) exprNode()      {}
func (*InExpr) Kind() NodeKind { return KindInExpr }

// BetweenExpr models `x [NOT] BETWEEN low AND high`.
type BetweenExpr struct {
	Base
	Input   Expr
	Low     Expr
	High    Expr
	Negated bool
}

func (*BetweenExpr) exprNode()      {}
func (*BetweenExpr) Kind() NodeKind { return KindBetweenExpr }

// ExistsExpr models `[NOT] EXISTS (subquery)`.
type ExistsExpr struct {
	Base
	Subquery Query
	Negated  bool
}

func (*ExistsExpr) exprNode()      {}
func (*ExistsExpr) Kind() NodeKind { return KindExistsExpr }

// LikeExpr models LIKE/ILIKE with optional ESCAPE.
type LikeExpr struct {
	Base
	Input           Expr
	Pattern         Expr
	Escape          Expr
	Negated         bool
	CaseInsensitive bool
}

func (*LikeExpr) exprNode()      {}
func (*LikeExpr) Kind() NodeKind { return KindLikeExpr }

// TupleExpr is a parenthesized value list: (a, b, c).
type TupleExpr struct {
	Base
	Values []Expr
}

func (*TupleExpr) exprNode()      {}
func (*TupleExpr) Kind() NodeKind { return KindTupleExpr }

// ArrayExpr is an ARRAY[...] constructor.
type ArrayExpr struct {
	Base
	Values []Expr
}

func (*ArrayExpr) exprNode()      {}
func (*ArrayExpr) Kind() NodeKind { return KindArrayExpr }

// StringSpecifierExpr models a prefixed string literal, e.g. E'...'.
type StringSpecifierExpr struct {
	Base
	Prefix string
	Value  string // including the surrounding quotes, as lexed
}

func (*StringSpecifierExpr) exprNode()      {}
func (*StringSpecifierExpr) Kind() NodeKind { return KindStringSpecifierExpr }

// SubqueryExpr wraps a Query used in value (scalar subquery) position.
type SubqueryExpr struct {
	Base
	Query Query
}

func (*SubqueryExpr) exprNode()      {}
func (*SubqueryExpr) Kind() NodeKind { return KindSubqueryExpr }
