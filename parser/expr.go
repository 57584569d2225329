package parser

import (
	"strings"

	"github.com/sqlkit-go/sqlkit/ast"
	"github.com/sqlkit-go/sqlkit/tokenizer"
)

// precedence levels, lowest to highest: OR, AND, NOT,
// comparison, additive, multiplicative, exponent, unary sign, cast,
// member access. NOT is handled as a prefix operator rather than a
// binary level; member access (dotted names) is resolved while reading
// a primary, not here.
const (
	precNone = iota
	precOr
	precAnd
	precComparison
	precAdditive
	precMultiplicative
	precExponent
)

func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseExprPrec(precNone)
}

func (p *Parser) parseExprPrec(minPrec int) (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		left, err = p.parsePostfixOps(left)
		if err != nil {
			return nil, err
		}
		op, prec, ok := p.peekBinaryOp()
		if !ok || prec < minPrec {
			return left, nil
		}
		pos := p.cur().Start
		p.consumeBinaryOp()
		nextMin := prec + 1
		right, err := p.parseExprPrec(nextMin)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: ast.Base{Position: pos}, Left: left, Op: op, Right: right}
	}
}

func (p *Parser) peekBinaryOp() (ast.BinaryOp, int, bool) {
	t := p.cur()
	switch t.Kind {
	case tokenizer.Eq:
		return ast.OpEq, precComparison, true
	case tokenizer.NotEq:
		return ast.OpNotEq, precComparison, true
	case tokenizer.Lt:
		return ast.OpLt, precComparison, true
	case tokenizer.LtEq:
		return ast.OpLtEq, precComparison, true
	case tokenizer.Gt:
		return ast.OpGt, precComparison, true
	case tokenizer.GtEq:
		return ast.OpGtEq, precComparison, true
	case tokenizer.Plus:
		return ast.OpAdd, precAdditive, true
	case tokenizer.Minus:
		return ast.OpSub, precAdditive, true
	case tokenizer.Concat:
		return ast.OpConcat, precAdditive, true
	case tokenizer.Star:
		return ast.OpMul, precMultiplicative, true
	case tokenizer.Slash:
		return ast.OpDiv, precMultiplicative, true
	case tokenizer.Percent:
		return ast.OpMod, precMultiplicative, true
	case tokenizer.Caret:
		return ast.OpPow, precExponent, true
	}
	if t.Kind == tokenizer.Keyword || t.Kind == tokenizer.Identifier {
		switch t.Canonical {
		case "OR":
			return ast.OpOr, precOr, true
		case "AND":
			return ast.OpAnd, precAnd, true
		}
	}
	// IS [NOT] NULL is handled in parsePostfixOps, which always runs
	// before this check; it never sees a bare "IS" here.
	return 0, 0, false
}

func (p *Parser) consumeBinaryOp() { p.consume() }

// parseUnary handles prefix NOT/-/+ and otherwise delegates to
// parsePrimary. The IN/BETWEEN/LIKE/IS-NULL family is applied by
// parseExprPrec through parsePostfixOps, since it needs the
// already-parsed left operand.
func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.is("NOT") {
		// NOT binds tighter than AND/OR but looser than comparison, so
		// its operand parses up through (and including) a comparison
		// but stops before a following AND/OR.
		pos := p.cur().Start
		p.consume()
		operand, err := p.parseExprPrec(precComparison)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Base: ast.Base{Position: pos}, Op: ast.OpNot, Operand: operand}, nil
	}
	if p.isKind(tokenizer.Minus) {
		pos := p.cur().Start
		p.consume()
		operand, err := p.parseExprPrec(precExponent + 1)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Base: ast.Base{Position: pos}, Op: ast.OpNeg, Operand: operand}, nil
	}
	if p.isKind(tokenizer.Plus) {
		pos := p.cur().Start
		p.consume()
		operand, err := p.parseExprPrec(precExponent + 1)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Base: ast.Base{Position: pos}, Op: ast.OpPos, Operand: operand}, nil
	}
	return p.parsePrimary()
}

// parsePostfixOps wraps left with any immediately-following IS [NOT]
// NULL, [NOT] IN, [NOT] BETWEEN, [NOT] LIKE/ILIKE, or :: cast, looping
// so chained forms like `x::int IS NOT NULL` work.
func (p *Parser) parsePostfixOps(left ast.Expr) (ast.Expr, error) {
	for {
		switch {
		case p.isKind(tokenizer.Cast):
			pos := p.cur().Start
			p.consume()
			typ, err := p.parseTypeName()
			if err != nil {
				return nil, err
			}
			left = &ast.CastExpr{Base: ast.Base{Position: pos}, Input: left, TargetType: typ, DoubleColon: true}

		case p.is("IS"):
			pos := p.cur().Start
			p.consume()
			negated := false
			if p.is("NOT") {
				negated = true
				p.consume()
			}
			if _, err := p.expectKeyword("NULL"); err != nil {
				return nil, err
			}
			lit := &ast.Literal{Base: ast.Base{Position: pos}, RawText: "NULL"}
			op := ast.OpIs
			if negated {
				op = ast.OpIsNot
			}
			left = &ast.BinaryExpr{Base: ast.Base{Position: pos}, Left: left, Op: op, Right: lit}

		case p.isAny("IN") || (p.is("NOT") && p.peekAt(1).Canonical == "IN"):
			negated := false
			pos := p.cur().Start
			if p.is("NOT") {
				negated = true
				p.consume()
			}
			p.consume() // IN
			e, err := p.parseInTail(left, negated, pos)
			if err != nil {
				return nil, err
			}
			left = e

		case p.isAny("BETWEEN") || (p.is("NOT") && p.peekAt(1).Canonical == "BETWEEN"):
			negated := false
			pos := p.cur().Start
			if p.is("NOT") {
				negated = true
				p.consume()
			}
			p.consume() // BETWEEN
			low, err := p.parseExprPrec(precAdditive + 1)
			if err != nil {
				return nil, err
			}
			if _, err := p.expectKeyword("AND"); err != nil {
				return nil, err
			}
			high, err := p.parseExprPrec(precAdditive + 1)
			if err != nil {
				return nil, err
			}
			left = &ast.BetweenExpr{Base: ast.Base{Position: pos}, Input: left, Low: low, High: high, Negated: negated}

		case p.isAny("LIKE", "ILIKE") || (p.is("NOT") && (p.peekAt(1).Canonical == "LIKE" || p.peekAt(1).Canonical == "ILIKE")):
			negated := false
			pos := p.cur().Start
			if p.is("NOT") {
				negated = true
				p.consume()
			}
			ci := p.is("ILIKE")
			p.consume() // LIKE/ILIKE
			pattern, err := p.parseExprPrec(precAdditive + 1)
			if err != nil {
				return nil, err
			}
			e := &ast.LikeExpr{Base: ast.Base{Position: pos}, Input: left, Pattern: pattern, Negated: negated, CaseInsensitive: ci}
			if p.is("ESCAPE") {
				p.consume()
				esc, err := p.parseExprPrec(precAdditive + 1)
				if err != nil {
					return nil, err
				}
				e.Escape = esc
			}
			left = e

		default:
			return left, nil
		}
	}
}

func (p *Parser) parseInTail(left ast.Expr, negated bool, pos tokenizer.Position) (ast.Expr, error) {
	if _, err := p.expectKind(tokenizer.LParen, "("); err != nil {
		return nil, err
	}
	if p.isSelectStart() {
		q, err := p.parseQueryBody()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectKind(tokenizer.RParen, ")"); err != nil {
			return nil, err
		}
		return &ast.InExpr{Base: ast.Base{Position: pos}, Input: left, Subquery: q, Negated: negated}, nil
	}
	var list []ast.Expr
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		list = append(list, e)
		if p.isKind(tokenizer.Comma) {
			p.consume()
			continue
		}
		break
	}
	if _, err := p.expectKind(tokenizer.RParen, ")"); err != nil {
		return nil, err
	}
	return &ast.InExpr{Base: ast.Base{Position: pos}, Input: left, List: list, Negated: negated}, nil
}

func (p *Parser) isSelectStart() bool {
	return p.is("SELECT") || p.is("WITH") || p.isKind(tokenizer.LParen)
}

// parsePrimary handles literals, identifiers, parameters, parenthesized
// groups/subqueries/tuples, function calls, CASE, EXISTS, and ARRAY[...].
func (p *Parser) parsePrimary() (ast.Expr, error) {
	leading := p.consumeGapComments()
	t := p.cur()
	switch {
	case t.Kind == tokenizer.NumberLiteral:
		p.consume()
		lit := &ast.Literal{Base: ast.Base{Position: t.Start}, RawText: t.Lexeme}
		p.attachLeading(lit, leading)
		return lit, nil

	case t.Kind == tokenizer.StringLiteral:
		p.consume()
		if t.StringPrefix != "" {
			e := &ast.StringSpecifierExpr{Base: ast.Base{Position: t.Start}, Prefix: t.StringPrefix, Value: t.Lexeme}
			p.attachLeading(e, leading)
			return e, nil
		}
		// RawText holds the unquoted, unescaped content; the formatter
		// re-quotes and re-doubles embedded quotes on emission.
		raw := t.Lexeme
		if len(raw) >= 2 {
			raw = raw[1 : len(raw)-1]
		}
		raw = strings.ReplaceAll(raw, "''", "'")
		lit := &ast.Literal{Base: ast.Base{Position: t.Start}, RawText: raw, IsString: true}
		p.attachLeading(lit, leading)
		return lit, nil

	case t.Kind == tokenizer.ParameterMark:
		p.consume()
		name := t.ParamName
		if t.ParamStyle == tokenizer.ParamAnonymous {
			name = "?"
		}
		param := &ast.Parameter{Base: ast.Base{Position: t.Start}, Name: name, Style: t.ParamStyle}
		p.attachLeading(param, leading)
		return param, nil

	case p.is("NULL"), p.is("TRUE"), p.is("FALSE"):
		p.consume()
		lit := &ast.Literal{Base: ast.Base{Position: t.Start}, RawText: t.Lexeme}
		p.attachLeading(lit, leading)
		return lit, nil

	case p.is("CASE"):
		return p.parseCaseExpr(leading)

	case p.is("CAST"):
		return p.parseCastExpr(leading)

	case p.is("EXISTS"):
		p.consume()
		if _, err := p.expectKind(tokenizer.LParen, "("); err != nil {
			return nil, err
		}
		q, err := p.parseQueryBody()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectKind(tokenizer.RParen, ")"); err != nil {
			return nil, err
		}
		e := &ast.ExistsExpr{Base: ast.Base{Position: t.Start}, Subquery: q}
		p.attachLeading(e, leading)
		return e, nil

	case p.is("ARRAY") && p.peekAt(1).Kind == tokenizer.LBracket:
		p.consume()
		p.consume() // [
		var vals []ast.Expr
		if !p.isKind(tokenizer.RBracket) {
			for {
				v, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				vals = append(vals, v)
				if p.isKind(tokenizer.Comma) {
					p.consume()
					continue
				}
				break
			}
		}
		if _, err := p.expectKind(tokenizer.RBracket, "]"); err != nil {
			return nil, err
		}
		e := &ast.ArrayExpr{Base: ast.Base{Position: t.Start}, Values: vals}
		p.attachLeading(e, leading)
		return e, nil

	case p.isKind(tokenizer.LParen):
		return p.parseParenExpr(leading)

	case t.Kind == tokenizer.Keyword && tokenizer.IsStrictKeyword(t.Lexeme) && p.peekAt(1).Kind != tokenizer.LParen:
		return nil, p.errf(t.Start, ErrUnexpectedToken, "unexpected keyword %q in expression", t.Lexeme)

	case t.Kind == tokenizer.Identifier || t.Kind == tokenizer.Keyword:
		return p.parseNameOrCall(leading)

	default:
		return nil, p.errf(t.Start, ErrUnexpectedToken, "unexpected %q in expression", t.Lexeme)
	}
}

func (p *Parser) parseParenExpr(leading []ast.CommentGroup) (ast.Expr, error) {
	start := p.cur().Start
	p.consume() // (
	if p.isSelectStart() {
		q, err := p.parseQueryBody()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectKind(tokenizer.RParen, ")"); err != nil {
			return nil, err
		}
		e := &ast.SubqueryExpr{Base: ast.Base{Position: start}, Query: q}
		p.attachLeading(e, leading)
		return e, nil
	}
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.isKind(tokenizer.Comma) {
		vals := []ast.Expr{first}
		for p.isKind(tokenizer.Comma) {
			p.consume()
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			vals = append(vals, v)
		}
		if _, err := p.expectKind(tokenizer.RParen, ")"); err != nil {
			return nil, err
		}
		e := &ast.TupleExpr{Base: ast.Base{Position: start}, Values: vals}
		p.attachLeading(e, leading)
		return e, nil
	}
	if _, err := p.expectKind(tokenizer.RParen, ")"); err != nil {
		return nil, err
	}
	p.attachLeading(first, leading)
	return first, nil
}

func (p *Parser) parseCaseExpr(leading []ast.CommentGroup) (ast.Expr, error) {
	start := p.cur().Start
	p.consume() // CASE
	ce := &ast.CaseExpr{Base: ast.Base{Position: start}}
	if !p.is("WHEN") {
		input, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		ce.Input = input
	}
	for p.is("WHEN") {
		p.consume()
		when, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectKeyword("THEN"); err != nil {
			return nil, err
		}
		then, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		ce.Branches = append(ce.Branches, ast.CaseBranch{When: when, Then: then})
	}
	if p.is("ELSE") {
		p.consume()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		ce.Else = e
	}
	if _, err := p.expectKeyword("END"); err != nil {
		return nil, err
	}
	p.attachLeading(ce, leading)
	return ce, nil
}

func (p *Parser) parseCastExpr(leading []ast.CommentGroup) (ast.Expr, error) {
	start := p.cur().Start
	p.consume() // CAST
	if _, err := p.expectKind(tokenizer.LParen, "("); err != nil {
		return nil, err
	}
	input, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("AS"); err != nil {
		return nil, err
	}
	typ, err := p.parseTypeName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKind(tokenizer.RParen, ")"); err != nil {
		return nil, err
	}
	e := &ast.CastExpr{Base: ast.Base{Position: start}, Input: input, TargetType: typ}
	p.attachLeading(e, leading)
	return e, nil
}

// parseTypeName reads a (possibly multi-word, possibly parameterized)
// SQL type name: INT, VARCHAR(255), DOUBLE PRECISION, TIMESTAMP WITH
// TIME ZONE, foo.bar_type.
func (p *Parser) parseTypeName() (string, error) {
	var parts []string
	for p.cur().Kind == tokenizer.Identifier || p.cur().Kind == tokenizer.Keyword {
		parts = append(parts, p.cur().Lexeme)
		p.consume()
		if p.isKind(tokenizer.Dot) {
			p.consume()
			continue
		}
		if p.isAny("PRECISION", "VARYING", "WITH", "WITHOUT", "TIME", "ZONE") {
			continue
		}
		break
	}
	if len(parts) == 0 {
		return "", p.errf(p.cur().Start, ErrUnexpectedToken, "expected type name, got %q", p.cur().Lexeme)
	}
	name := strings.Join(parts, " ")
	if p.isKind(tokenizer.LParen) {
		p.consume()
		var nums []string
		for {
			t, err := p.expectKind(tokenizer.NumberLiteral, "numeric type modifier")
			if err != nil {
				return "", err
			}
			nums = append(nums, t.Lexeme)
			if p.isKind(tokenizer.Comma) {
				p.consume()
				continue
			}
			break
		}
		if _, err := p.expectKind(tokenizer.RParen, ")"); err != nil {
			return "", err
		}
		name += "(" + strings.Join(nums, ",") + ")"
	}
	if p.isKind(tokenizer.LBracket) {
		p.consume()
		if _, err := p.expectKind(tokenizer.RBracket, "]"); err != nil {
			return "", err
		}
		name += "[]"
	}
	return name, nil
}

// parseNameOrCall reads a dotted identifier chain and, if followed by
// '(', a function call with aggregate/window modifiers.
func (p *Parser) parseNameOrCall(leading []ast.CommentGroup) (ast.Expr, error) {
	start := p.cur().Start
	qn, err := p.parseQualifiedName()
	if err != nil {
		return nil, err
	}
	if !p.isKind(tokenizer.LParen) {
		ref := &ast.ColumnReference{Base: ast.Base{Position: start}, Qualified: *qn}
		p.attachLeading(ref, leading)
		return ref, nil
	}
	call, err := p.parseCallTail(*qn, start)
	if err != nil {
		return nil, err
	}
	p.attachLeading(call, leading)
	return call, nil
}

func (p *Parser) parseCallTail(name ast.QualifiedName, start tokenizer.Position) (*ast.FunctionExpr, error) {
	p.consume() // (
	fn := &ast.FunctionExpr{Base: ast.Base{Position: start}, Name: name}

	if p.is("DISTINCT") {
		fn.Distinct = true
		p.consume()
	}
	if p.isKind(tokenizer.Star) {
		fn.Star = true
		p.consume()
	} else if !p.isKind(tokenizer.RParen) {
		for {
			a, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			fn.Args = append(fn.Args, a)
			if p.isKind(tokenizer.Comma) {
				p.consume()
				continue
			}
			break
		}
		if p.is("ORDER") {
			p.consume()
			if _, err := p.expectKeyword("BY"); err != nil {
				return nil, err
			}
			items, err := p.parseOrderItems()
			if err != nil {
				return nil, err
			}
			fn.OrderBy = items
		}
	}
	if _, err := p.expectKind(tokenizer.RParen, ")"); err != nil {
		return nil, err
	}

	if p.is("WITHIN") {
		p.consume()
		if _, err := p.expectKeyword("GROUP"); err != nil {
			return nil, err
		}
		if _, err := p.expectKind(tokenizer.LParen, "("); err != nil {
			return nil, err
		}
		if _, err := p.expectKeyword("ORDER"); err != nil {
			return nil, err
		}
		if _, err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		items, err := p.parseOrderItems()
		if err != nil {
			return nil, err
		}
		fn.WithinGroup = items
		if _, err := p.expectKind(tokenizer.RParen, ")"); err != nil {
			return nil, err
		}
	}

	if p.is("FILTER") {
		p.consume()
		if _, err := p.expectKind(tokenizer.LParen, "("); err != nil {
			return nil, err
		}
		if _, err := p.expectKeyword("WHERE"); err != nil {
			return nil, err
		}
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		fn.Filter = cond
		if _, err := p.expectKind(tokenizer.RParen, ")"); err != nil {
			return nil, err
		}
	}

	if p.is("OVER") {
		p.consume()
		spec, err := p.parseWindowSpec()
		if err != nil {
			return nil, err
		}
		fn.Over = spec
	}

	return fn, nil
}

func (p *Parser) parseWindowSpec() (*ast.WindowSpec, error) {
	if _, err := p.expectKind(tokenizer.LParen, "("); err != nil {
		return nil, err
	}
	spec := &ast.WindowSpec{}
	if p.is("PARTITION") {
		p.consume()
		if _, err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			spec.PartitionBy = append(spec.PartitionBy, e)
			if p.isKind(tokenizer.Comma) {
				p.consume()
				continue
			}
			break
		}
	}
	if p.is("ORDER") {
		p.consume()
		if _, err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		items, err := p.parseOrderItems()
		if err != nil {
			return nil, err
		}
		spec.OrderBy = items
	}
	if p.isAny("ROWS", "RANGE") {
		unit := strings.ToLower(p.cur().Lexeme)
		p.consume()
		frame := &ast.WindowFrame{Unit: unit}
		start, err := p.parseFrameBound()
		if err != nil {
			return nil, err
		}
		frame.StartBound = start
		if p.is("AND") {
			p.consume()
			end, err := p.parseFrameBound()
			if err != nil {
				return nil, err
			}
			frame.EndBound = end
		}
		spec.Frame = frame
	}
	if _, err := p.expectKind(tokenizer.RParen, ")"); err != nil {
		return nil, err
	}
	return spec, nil
}

func (p *Parser) parseFrameBound() (string, error) {
	if p.is("UNBOUNDED") {
		p.consume()
		if p.is("PRECEDING") {
			p.consume()
			return "unbounded preceding", nil
		}
		if p.is("FOLLOWING") {
			p.consume()
			return "unbounded following", nil
		}
		return "", p.errf(p.cur().Start, ErrUnexpectedToken, "expected PRECEDING/FOLLOWING after UNBOUNDED")
	}
	if p.is("CURRENT") {
		p.consume()
		if _, err := p.expectKeyword("ROW"); err != nil {
			return "", err
		}
		return "current row", nil
	}
	n, err := p.expectKind(tokenizer.NumberLiteral, "frame bound")
	if err != nil {
		return "", err
	}
	if p.is("PRECEDING") {
		p.consume()
		return n.Lexeme + " preceding", nil
	}
	if p.is("FOLLOWING") {
		p.consume()
		return n.Lexeme + " following", nil
	}
	return "", p.errf(p.cur().Start, ErrUnexpectedToken, "expected PRECEDING/FOLLOWING")
}

func (p *Parser) parseOrderItems() ([]ast.OrderItem, error) {
	var items []ast.OrderItem
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		item := ast.OrderItem{Expr: e}
		if p.is("ASC") {
			p.consume()
			item.Direction = ast.DirAsc
		} else if p.is("DESC") {
			p.consume()
			item.Direction = ast.DirDesc
		}
		if p.is("NULLS") {
			p.consume()
			if p.is("FIRST") {
				p.consume()
				item.Nulls = ast.NullsFirst
			} else if _, err := p.expectKeyword("LAST"); err == nil {
				item.Nulls = ast.NullsLast
			} else {
				return nil, err
			}
		}
		items = append(items, item)
		if p.isKind(tokenizer.Comma) {
			p.consume()
			continue
		}
		break
	}
	return items, nil
}

// parseQualifiedName reads a dotted identifier chain (schema.table.col).
func (p *Parser) parseQualifiedName() (*ast.QualifiedName, error) {
	start := p.cur().Start
	first, err := p.parseIdentPart()
	if err != nil {
		return nil, err
	}
	qn := &ast.QualifiedName{Base: ast.Base{Position: start}}
	names := []ast.Identifier{first}
	for p.isKind(tokenizer.Dot) {
		p.consume()
		if p.isKind(tokenizer.Star) {
			break
		}
		id, err := p.parseIdentPart()
		if err != nil {
			return nil, err
		}
		names = append(names, id)
	}
	qn.Name = names[len(names)-1]
	qn.Namespaces = names[:len(names)-1]
	return qn, nil
}

func (p *Parser) parseIdentPart() (ast.Identifier, error) {
	t := p.cur()
	if t.Kind != tokenizer.Identifier && t.Kind != tokenizer.Keyword {
		return ast.Identifier{}, p.errf(t.Start, ErrUnexpectedToken, "expected identifier, got %q", t.Lexeme)
	}
	p.consume()
	quoted := strings.HasPrefix(t.Lexeme, `"`) || strings.HasPrefix(t.Lexeme, "`") || strings.HasPrefix(t.Lexeme, "[")
	name := t.Lexeme
	if quoted && len(name) >= 2 {
		name = name[1 : len(name)-1]
	}
	return ast.Identifier{Base: ast.Base{Position: t.Start}, Name: name, Quoted: quoted}, nil
}
