package format

import (
	"strings"

	"github.com/sqlkit-go/sqlkit/ast"
)

// precedence mirrors the parser's table, low to high: or, and,
// comparison, additive, multiplicative, exponent.
func precedence(op ast.BinaryOp) int {
	switch op {
	case ast.OpOr:
		return 1
	case ast.OpAnd:
		return 2
	case ast.OpEq, ast.OpNotEq, ast.OpLt, ast.OpLtEq, ast.OpGt, ast.OpGtEq, ast.OpIs, ast.OpIsNot:
		return 3
	case ast.OpAdd, ast.OpSub, ast.OpConcat:
		return 4
	case ast.OpMul, ast.OpDiv, ast.OpMod:
		return 5
	case ast.OpPow:
		return 6
	default:
		return 0
	}
}

func binaryOpText(op ast.BinaryOp) string {
	switch op {
	case ast.OpOr:
		return "or"
	case ast.OpAnd:
		return "and"
	case ast.OpEq:
		return "="
	case ast.OpNotEq:
		return "<>"
	case ast.OpLt:
		return "<"
	case ast.OpLtEq:
		return "<="
	case ast.OpGt:
		return ">"
	case ast.OpGtEq:
		return ">="
	case ast.OpAdd:
		return "+"
	case ast.OpSub:
		return "-"
	case ast.OpConcat:
		return "||"
	case ast.OpMul:
		return "*"
	case ast.OpDiv:
		return "/"
	case ast.OpMod:
		return "%"
	case ast.OpPow:
		return "^"
	case ast.OpIs:
		return "is"
	case ast.OpIsNot:
		return "is not"
	}
	return "?"
}

// printExpr renders e as a self-contained string; nested binary
// operands are parenthesized when reparsing without parens would change
// precedence grouping, so a reparse reproduces the same tree.
func (p *printer) printExpr(e ast.Expr) string {
	s := p.printExprRaw(e)
	return s
}

func (p *printer) printExprRaw(e ast.Expr) string {
	switch v := e.(type) {
	case nil:
		return ""
	case *ast.Literal:
		if v.IsString {
			return "'" + strings.ReplaceAll(v.RawText, "'", "''") + "'"
		}
		// NULL/TRUE/FALSE/DEFAULT are keyword-like literals and follow
		// the keyword case option; numbers and raw expressions pass
		// through verbatim.
		switch strings.ToLower(v.RawText) {
		case "null", "true", "false", "default":
			return p.kw(v.RawText)
		}
		return v.RawText
	case *ast.Identifier:
		return p.ident(v.Name)
	case *ast.QualifiedName:
		return p.qualifiedIdent(v.Namespaces, v.Name.Name)
	case *ast.ColumnReference:
		return p.qualifiedIdent(v.Qualified.Namespaces, v.Qualified.Name.Name)
	case *ast.Parameter:
		return p.paramText(v.Name)
	case *ast.BinaryExpr:
		return p.printBinaryExpr(v)
	case *ast.UnaryExpr:
		return p.printUnaryExpr(v)
	case *ast.FunctionExpr:
		return p.printFunctionExpr(v)
	case *ast.CaseExpr:
		return p.printCaseExpr(v)
	case *ast.CastExpr:
		return p.printCastExpr(v)
	case *ast.InExpr:
		return p.printInExpr(v)
	case *ast.BetweenExpr:
		return p.printBetweenExpr(v)
	case *ast.ExistsExpr:
		neg := ""
		if v.Negated {
			neg = "not "
		}
		return neg + p.kw("exists") + " (" + p.printSubquery(v.Subquery) + ")"
	case *ast.LikeExpr:
		return p.printLikeExpr(v)
	case *ast.TupleExpr:
		parts := make([]string, len(v.Values))
		for i, x := range v.Values {
			parts[i] = p.printExpr(x)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *ast.ArrayExpr:
		parts := make([]string, len(v.Values))
		for i, x := range v.Values {
			parts[i] = p.printExpr(x)
		}
		return p.kw("array") + "[" + strings.Join(parts, ", ") + "]"
	case *ast.StringSpecifierExpr:
		return v.Prefix + v.Value
	case *ast.SubqueryExpr:
		return "(" + p.printSubquery(v.Query) + ")"
	}
	return ""
}

func (p *printer) printSubquery(q ast.Query) string {
	sub := &printer{opts: p.opts, indent: p.indent + 1, paramIndex: p.paramIndex}
	sub.printQuery(q)
	body := strings.TrimSpace(sub.sb.String())
	if p.opts.SubqueryOneLine {
		return oneLine(body, p.opts.Newline)
	}
	return body
}

func (p *printer) printBinaryExpr(v *ast.BinaryExpr) string {
	left := p.printExpr(v.Left)
	if lb, ok := v.Left.(*ast.BinaryExpr); ok && precedence(lb.Op) < precedence(v.Op) {
		left = "(" + left + ")"
	}
	right := p.printExpr(v.Right)
	if rb, ok := v.Right.(*ast.BinaryExpr); ok && precedence(rb.Op) <= precedence(v.Op) {
		right = "(" + right + ")"
	}
	return left + " " + binaryOpText(v.Op) + " " + right
}

func (p *printer) printUnaryExpr(v *ast.UnaryExpr) string {
	operand := p.printExpr(v.Operand)
	if _, ok := v.Operand.(*ast.BinaryExpr); ok {
		operand = "(" + operand + ")"
	}
	switch v.Op {
	case ast.OpNeg:
		return "-" + operand
	case ast.OpPos:
		return "+" + operand
	case ast.OpNot:
		return p.kw("not") + " " + operand
	}
	return operand
}

// functionName renders a call target. Unlike column identifiers,
// function names stay unquoted (lowercased for portability) unless the
// source explicitly quoted them.
func (p *printer) functionName(qn ast.QualifiedName) string {
	if qn.Name.Quoted || len(qn.Namespaces) > 0 {
		return p.qualifiedIdent(qn.Namespaces, qn.Name.Name)
	}
	return strings.ToLower(qn.Name.Name)
}

func (p *printer) printFunctionExpr(v *ast.FunctionExpr) string {
	var sb strings.Builder
	sb.WriteString(p.functionName(v.Name))
	sb.WriteByte('(')
	if v.Star {
		sb.WriteByte('*')
	} else {
		if v.Distinct {
			sb.WriteString(p.kw("distinct") + " ")
		}
		for i, a := range v.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.printExpr(a))
		}
		if len(v.OrderBy) > 0 {
			sb.WriteString(" " + p.kw("order by") + " ")
			for i, item := range v.OrderBy {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(p.printOrderItem(item))
			}
		}
	}
	sb.WriteByte(')')
	if len(v.WithinGroup) > 0 {
		sb.WriteString(" " + p.kw("within group") + " (" + p.kw("order by") + " ")
		for i, item := range v.WithinGroup {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.printOrderItem(item))
		}
		sb.WriteByte(')')
	}
	if v.Filter != nil {
		sb.WriteString(" " + p.kw("filter") + " (" + p.kw("where") + " " + p.printExpr(v.Filter) + ")")
	}
	if v.Over != nil {
		sb.WriteString(" " + p.kw("over") + " (")
		wrote := false
		if len(v.Over.PartitionBy) > 0 {
			sb.WriteString(p.kw("partition by") + " ")
			for i, e := range v.Over.PartitionBy {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(p.printExpr(e))
			}
			wrote = true
		}
		if len(v.Over.OrderBy) > 0 {
			if wrote {
				sb.WriteString(" ")
			}
			sb.WriteString(p.kw("order by") + " ")
			for i, item := range v.Over.OrderBy {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(p.printOrderItem(item))
			}
		}
		if v.Over.Frame != nil {
			sb.WriteString(" " + p.kw(v.Over.Frame.Unit) + " ")
			if v.Over.Frame.EndBound != "" {
				sb.WriteString(p.kw("between") + " " + v.Over.Frame.StartBound + " " + p.kw("and") + " " + v.Over.Frame.EndBound)
			} else {
				sb.WriteString(v.Over.Frame.StartBound)
			}
		}
		sb.WriteByte(')')
	}
	return sb.String()
}

func (p *printer) printCaseExpr(v *ast.CaseExpr) string {
	var sb strings.Builder
	sb.WriteString(p.kw("case"))
	if v.Input != nil {
		sb.WriteString(" " + p.printExpr(v.Input))
	}
	sep := " "
	if !p.opts.CaseOneLine {
		sep = p.opts.Newline + strings.Repeat(p.opts.IndentChar, (p.indent+1)*p.opts.IndentSize)
	}
	for _, b := range v.Branches {
		sb.WriteString(sep + p.kw("when") + " " + p.printExpr(b.When) + " " + p.kw("then") + " " + p.printExpr(b.Then))
	}
	if v.Else != nil {
		sb.WriteString(sep + p.kw("else") + " " + p.printExpr(v.Else))
	}
	if !p.opts.CaseOneLine {
		sb.WriteString(p.opts.Newline + strings.Repeat(p.opts.IndentChar, p.indent*p.opts.IndentSize))
	} else {
		sb.WriteString(" ")
	}
	sb.WriteString(p.kw("end"))
	return sb.String()
}

func (p *printer) printCastExpr(v *ast.CastExpr) string {
	input := p.printExpr(v.Input)
	if v.DoubleColon {
		if _, ok := v.Input.(*ast.BinaryExpr); ok {
			input = "(" + input + ")"
		}
		return input + "::" + v.TargetType
	}
	return p.kw("cast") + "(" + input + " " + p.kw("as") + " " + v.TargetType + ")"
}

func (p *printer) printInExpr(v *ast.InExpr) string {
	out := p.printExpr(v.Input) + " "
	if v.Negated {
		out += p.kw("not") + " "
	}
	out += p.kw("in") + " ("
	if v.Subquery != nil {
		out += p.printSubquery(v.Subquery)
	} else {
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = p.printExpr(e)
		}
		out += strings.Join(parts, ", ")
	}
	return out + ")"
}

func (p *printer) printBetweenExpr(v *ast.BetweenExpr) string {
	out := p.printExpr(v.Input) + " "
	if v.Negated {
		out += p.kw("not") + " "
	}
	out += p.kw("between") + " " + p.printExpr(v.Low) + " " + p.kw("and") + " " + p.printExpr(v.High)
	return out
}

func (p *printer) printLikeExpr(v *ast.LikeExpr) string {
	out := p.printExpr(v.Input) + " "
	if v.Negated {
		out += p.kw("not") + " "
	}
	if v.CaseInsensitive {
		out += p.kw("ilike")
	} else {
		out += p.kw("like")
	}
	out += " " + p.printExpr(v.Pattern)
	if v.Escape != nil {
		out += " " + p.kw("escape") + " " + p.printExpr(v.Escape)
	}
	return out
}
