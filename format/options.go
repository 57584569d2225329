package format

// KeywordCase controls the emission case for SQL keywords.
type KeywordCase int

const (
	KeywordLower KeywordCase = iota
	KeywordUpper
	KeywordPreserve
)

// ParameterStyle controls how parameter slots are numbered/named on
// output, independent of how they were spelled in the source: that
// choice belongs to the formatter, not the lexer.
type ParameterStyle int

const (
	ParamStyleNamed ParameterStyle = iota
	ParamStyleIndexed
	ParamStyleAnonymous
)

// Break controls comma/AND/OR placement for a list-like construct.
type Break int

const (
	BreakNone Break = iota
	BreakBefore
	BreakAfter
)

// WithClauseStyle controls WITH-block layout.
type WithClauseStyle int

const (
	WithStandard WithClauseStyle = iota
	WithCTEOneline
	WithFullOneline
)

// CommentStyle controls how comments are re-emitted.
type CommentStyle int

const (
	CommentBlock CommentStyle = iota
	CommentSmart
)

// IdentifierEscape is the quote pair wrapped around every emitted
// identifier; with None set, identifiers are emitted bare.
type IdentifierEscape struct {
	Start string
	End   string
	None  bool
}

var (
	EscapeDoubleQuote = IdentifierEscape{Start: `"`, End: `"`}
	EscapeBacktick    = IdentifierEscape{Start: "`", End: "`"}
	EscapeBracket     = IdentifierEscape{Start: "[", End: "]"}
	EscapeNone        = IdentifierEscape{None: true}
)

// Options is the formatter's public contract. The zero value is not
// Default(): its quote pair, parameter symbol, indent and newline are
// empty and ExportComment is false.
type Options struct {
	KeywordCase      KeywordCase
	IdentifierEscape IdentifierEscape
	ParameterSymbol  string
	ParameterStyle   ParameterStyle

	IndentChar string
	IndentSize int
	Newline    string

	CommaBreak    Break
	ValuesCommaBreak Break
	CTECommaBreak Break
	AndBreak      Break
	OrBreak       Break

	JoinOneLine        bool
	CaseOneLine        bool
	SubqueryOneLine    bool
	ParenthesesOneLine bool
	BetweenOneLine     bool
	ValuesOneLine      bool

	WithClauseStyle WithClauseStyle
	CTEOneline      bool // legacy alias for WithClauseStyle = WithCTEOneline

	ExportComment bool
	CommentStyle  CommentStyle

	JoinConditionOrderByDeclaration bool
	InsertColumnsOneLine            bool
}

// Default returns the baseline option set: lowercase keywords,
// double-quoted identifiers, named `:param` parameters, tab-free 4
// space indent, comma-before breaks off (inline), comments exported in
// their original block/line form.
func Default() Options {
	return Options{
		KeywordCase:      KeywordLower,
		IdentifierEscape: EscapeDoubleQuote,
		ParameterSymbol:  ":",
		ParameterStyle:   ParamStyleNamed,
		IndentChar:       " ",
		IndentSize:       4,
		Newline:          "\n",
		CommaBreak:       BreakNone,
		ValuesCommaBreak: BreakNone,
		CTECommaBreak:    BreakNone,
		AndBreak:         BreakNone,
		OrBreak:          BreakNone,
		ExportComment:    true,
		CommentStyle:     CommentBlock,
	}
}

// resolvedWithStyle honors the legacy CTEOneline alias when set.
func (o Options) resolvedWithStyle() WithClauseStyle {
	if o.CTEOneline && o.WithClauseStyle == WithStandard {
		return WithCTEOneline
	}
	return o.WithClauseStyle
}
