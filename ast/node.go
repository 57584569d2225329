// Package ast defines sqlkit's SQL abstract syntax tree: a tagged-variant
// node set for queries, clauses, sources, and value expressions, plus the
// positioned-comment model that lets the formatter reproduce the source's
// comments at their original relative positions.
package ast

import "github.com/sqlkit-go/sqlkit/tokenizer"

// NodeKind discriminates the concrete Go type of a Node for callers that
// need to switch without a type assertion chain (debugging, logging).
// It is not used for dispatch inside the module — visitors type-switch
// on the concrete Go types directly, the idiomatic tagged-variant style.
type NodeKind int

const (
	KindUnknown NodeKind = iota

	// Queries
	KindSimpleQuery
	KindBinaryQuery
	KindValuesQuery
	KindCreateTableQuery
	KindInsertQuery
	KindUpdateQuery

	// Clauses
	KindSelectClause
	KindSelectItem
	KindFromClause
	KindJoinClause
	KindWithClause
	KindCTE
	KindWhereClause
	KindGroupByClause
	KindHavingClause
	KindOrderByClause
	KindLimitClause
	KindOffsetClause
	KindFetchClause
	KindForClause
	KindReturningClause
	KindOnConflictClause
	KindSetClause
	KindInsertClause

	// Sources
	KindTableSource
	KindSubQuerySource
	KindFunctionSource
	KindParenthesizedSource
	KindValuesSource
	KindJoinedSource

	// Expressions
	KindLiteral
	KindIdentifier
	KindQualifiedName
	KindColumnReference
	KindParameter
	KindBinaryExpr
	KindUnaryExpr
	KindFunctionExpr
	KindCaseExpr
	KindCastExpr
	KindInExpr
	KindBetweenExpr
	KindExistsExpr
	KindLikeExpr
	KindTupleExpr
	KindArrayExpr
	KindStringSpecifierExpr
	KindSubqueryExpr
)

// CommentPosition is a 3-valued variant, used in place of a string-typed
// 'before'|'after'|'inner' position.
type CommentPosition int

const (
	Before CommentPosition = iota
	After
	Inner
)

func (p CommentPosition) String() string {
	switch p {
	case Before:
		return "before"
	case After:
		return "after"
	case Inner:
		return "inner"
	default:
		return "unknown"
	}
}

// CommentStyle is the original delimiter style of a comment.
type CommentStyle int

const (
	StyleLine CommentStyle = iota
	StyleBlock
)

// CommentGroup is one positioned_comments entry: a relative
// position plus an ordered run of raw comment bodies sharing that
// position and style.
type CommentGroup struct {
	Position CommentPosition
	Style    CommentStyle
	Texts    []string // raw comment text, delimiters stripped
}

// Node is implemented by every AST node. Kind() supports debugging and
// generic tree walks that don't care about the concrete Go type;
// visitors that do care type-switch on the concrete type instead.
type Node interface {
	Kind() NodeKind
	Pos() tokenizer.Position
	Comments() *[]CommentGroup
}

// Base is embedded by every concrete node and supplies the common
// Pos()/Comments() machinery: every node may carry a positioned_comments
// list.
type Base struct {
	Position tokenizer.Position
	Groups   []CommentGroup
}

func (b *Base) Pos() tokenizer.Position     { return b.Position }
func (b *Base) Comments() *[]CommentGroup   { return &b.Groups }

// AddComment appends raw comment texts at the given position, merging
// into the previous group when it shares the same position and style
// (keeps adjacent same-kind comments as one ordered run, as the lexer
// would have emitted them).
func (b *Base) AddComment(pos CommentPosition, style CommentStyle, texts ...string) {
	if len(texts) == 0 {
		return
	}
	if n := len(b.Groups); n > 0 {
		last := &b.Groups[n-1]
		if last.Position == pos && last.Style == style {
			last.Texts = append(last.Texts, texts...)
			return
		}
	}
	b.Groups = append(b.Groups, CommentGroup{Position: pos, Style: style, Texts: texts})
}

// CommentsAt returns the comment groups attached at the given position,
// in declaration order.
func (b *Base) CommentsAt(pos CommentPosition) []CommentGroup {
	var out []CommentGroup
	for _, g := range b.Groups {
		if g.Position == pos {
			out = append(out, g)
		}
	}
	return out
}

// Expr is any value expression.
type Expr interface {
	Node
	exprNode()
}

// Query is any top-level query/statement shape.
type Query interface {
	Node
	queryNode()
}

// Clause is any clause attached to a Query.
type Clause interface {
	Node
	clauseNode()
}

// Source is any FROM-position source.
type Source interface {
	Node
	sourceNode()
}
