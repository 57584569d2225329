package parser

import (
	"github.com/sqlkit-go/sqlkit/ast"
	"github.com/sqlkit-go/sqlkit/tokenizer"
)

// ParseSelect parses a single SELECT statement, including any leading
// WITH clause and any UNION/INTERSECT/EXCEPT chain.
func ParseSelect(src string) (ast.Query, error) {
	return ParseSelectMode(src, Mode{})
}

func ParseSelectMode(src string, mode Mode) (ast.Query, error) {
	p, err := newParser(src, mode)
	if err != nil {
		return nil, err
	}
	leading := p.consumeGapComments()
	q, err := p.parseQueryBody()
	if err != nil {
		return nil, err
	}
	p.attachLeading(q, leading)
	if !p.isKind(tokenizer.Semicolon) && !p.atEOF() {
		return nil, p.errf(p.cur().Start, ErrUnexpectedToken, "unexpected trailing %q", p.cur().Lexeme)
	}
	p.finish(q)
	return q, nil
}

// parseQueryBody parses one query term (optionally WITH-prefixed SELECT
// or VALUES or parenthesized query), then folds in any UNION/INTERSECT/
// EXCEPT chain. INTERSECT binds tighter than UNION/EXCEPT, matching
// standard SQL precedence; all three are left-associative.
func (p *Parser) parseQueryBody() (ast.Query, error) {
	left, err := p.parseSetOpOperand()
	if err != nil {
		return nil, err
	}
	return p.parseSetOpChain(left, 0)
}

func (p *Parser) parseSetOpChain(left ast.Query, minPrec int) (ast.Query, error) {
	for {
		op, prec, ok := p.peekSetOp()
		if !ok || prec < minPrec {
			break
		}
		pos := p.cur().Start
		p.consumeSetOp()
		right, err := p.parseSetOpOperand()
		if err != nil {
			return nil, err
		}
		right, err = p.parseSetOpChain(right, prec+1)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryQuery{Base: ast.Base{Position: pos}, Op: op, Left: left, Right: right}
	}
	bq, ok := left.(*ast.BinaryQuery)
	if !ok {
		return left, nil
	}
	if err := p.parseTrailingClausesInto(bq); err != nil {
		return nil, err
	}
	return bq, nil
}

const (
	setPrecUnionExcept = 1
	setPrecIntersect   = 2
)

func (p *Parser) peekSetOp() (ast.SetOp, int, bool) {
	switch {
	case p.is("UNION"):
		return ast.SetUnion, setPrecUnionExcept, true
	case p.is("EXCEPT"):
		return ast.SetExcept, setPrecUnionExcept, true
	case p.is("INTERSECT"):
		return ast.SetIntersect, setPrecIntersect, true
	}
	return 0, 0, false
}

func (p *Parser) consumeSetOp() {
	all := p.is("UNION")
	p.consume()
	if all && p.is("ALL") {
		p.consume()
	} else if p.is("ALL") || p.is("DISTINCT") {
		p.consume()
	}
}

func (p *Parser) parseSetOpOperand() (ast.Query, error) {
	leading := p.consumeGapComments()
	if p.isKind(tokenizer.LParen) {
		p.consume()
		q, err := p.parseQueryBody()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectKind(tokenizer.RParen, ")"); err != nil {
			return nil, err
		}
		p.attachLeading(q, leading)
		return q, nil
	}
	if p.is("VALUES") {
		q, err := p.parseValuesQuery()
		if err != nil {
			return nil, err
		}
		p.attachLeading(q, leading)
		return q, nil
	}
	q, err := p.parseSimpleQuery()
	if err != nil {
		return nil, err
	}
	p.attachLeading(q, leading)
	return q, nil
}

// parseSimpleQuery parses one [WITH ...] SELECT ... statement body
// (everything up to but not including a following set operator).
func (p *Parser) parseSimpleQuery() (*ast.SimpleQuery, error) {
	start := p.cur().Start
	sq := &ast.SimpleQuery{Base: ast.Base{Position: start}}

	if p.is("WITH") {
		with, err := p.parseWithClause()
		if err != nil {
			return nil, err
		}
		sq.With = with
	}

	if _, err := p.expectKeyword("SELECT"); err != nil {
		return nil, err
	}
	sel := ast.SelectClause{Base: ast.Base{Position: start}}
	if p.is("DISTINCT") {
		sel.Distinct = true
		p.consume()
		if p.is("ON") {
			p.consume()
			if _, err := p.expectKind(tokenizer.LParen, "("); err != nil {
				return nil, err
			}
			for {
				e, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				sel.DistinctOn = append(sel.DistinctOn, e)
				if p.isKind(tokenizer.Comma) {
					p.consume()
					continue
				}
				break
			}
			if _, err := p.expectKind(tokenizer.RParen, ")"); err != nil {
				return nil, err
			}
		}
	} else if p.is("ALL") {
		p.consume()
	}
	items, err := p.parseSelectItems()
	if err != nil {
		return nil, err
	}
	sel.Items = items
	sq.Select = sel

	if p.is("FROM") {
		from, err := p.parseFromClause()
		if err != nil {
			return nil, err
		}
		sq.From = from
	}
	if p.is("WHERE") {
		where, err := p.parseWhereClause()
		if err != nil {
			return nil, err
		}
		sq.Where = where
	}
	if p.is("GROUP") {
		gb, err := p.parseGroupByClause()
		if err != nil {
			return nil, err
		}
		sq.GroupBy = gb
	}
	if p.is("HAVING") {
		having, err := p.parseHavingClause()
		if err != nil {
			return nil, err
		}
		sq.Having = having
	}

	tail := struct {
		OrderBy *ast.OrderByClause
		Limit   *ast.LimitClause
		Offset  *ast.OffsetClause
		Fetch   *ast.FetchClause
	}{}
	if err := p.parseTrailingClauses(&tail.OrderBy, &tail.Limit, &tail.Offset, &tail.Fetch); err != nil {
		return nil, err
	}
	sq.OrderBy, sq.Limit, sq.Offset, sq.Fetch = tail.OrderBy, tail.Limit, tail.Offset, tail.Fetch

	if p.is("FOR") {
		forClause, err := p.parseForClause()
		if err != nil {
			return nil, err
		}
		sq.For = forClause
	}

	return sq, nil
}

// parseTrailingClausesInto fills in the ORDER BY/LIMIT/OFFSET/FETCH that
// trail a completed set-operation chain.
func (p *Parser) parseTrailingClausesInto(bq *ast.BinaryQuery) error {
	return p.parseTrailingClauses(&bq.OrderBy, &bq.Limit, &bq.Offset, &bq.Fetch)
}

func (p *Parser) parseTrailingClauses(orderBy **ast.OrderByClause, limit **ast.LimitClause, offset **ast.OffsetClause, fetch **ast.FetchClause) error {
	if p.is("ORDER") {
		start := p.cur().Start
		p.consume()
		if _, err := p.expectKeyword("BY"); err != nil {
			return err
		}
		items, err := p.parseOrderItems()
		if err != nil {
			return err
		}
		*orderBy = &ast.OrderByClause{Base: ast.Base{Position: start}, Items: items}
	}
	if p.is("LIMIT") {
		start := p.cur().Start
		p.consume()
		if p.is("ALL") {
			p.consume()
		} else {
			e, err := p.parseExpr()
			if err != nil {
				return err
			}
			*limit = &ast.LimitClause{Base: ast.Base{Position: start}, Count: e}
		}
	}
	if p.is("OFFSET") {
		start := p.cur().Start
		p.consume()
		e, err := p.parseExpr()
		if err != nil {
			return err
		}
		if p.isAny("ROW", "ROWS") {
			p.consume()
		}
		*offset = &ast.OffsetClause{Base: ast.Base{Position: start}, Count: e}
	}
	if p.is("FETCH") {
		start := p.cur().Start
		p.consume()
		if p.isAny("FIRST", "NEXT") {
			p.consume()
		}
		e, err := p.parseExpr()
		if err != nil {
			return err
		}
		if p.isAny("ROW", "ROWS") {
			p.consume()
		}
		withTies := false
		if p.is("WITH") {
			p.consume()
			if _, err := p.expectKeyword("TIES"); err != nil {
				return err
			}
			withTies = true
		} else if p.is("ONLY") {
			p.consume()
		}
		*fetch = &ast.FetchClause{Base: ast.Base{Position: start}, Count: e, WithTies: withTies}
	}
	return nil
}

func (p *Parser) parseForClause() (*ast.ForClause, error) {
	start := p.cur().Start
	p.consume() // FOR
	fc := &ast.ForClause{Base: ast.Base{Position: start}}
	switch {
	case p.is("UPDATE"):
		p.consume()
		fc.Mode = "update"
	case p.is("SHARE"):
		p.consume()
		fc.Mode = "share"
	case p.is("NO"):
		p.consume()
		if _, err := p.expectKeyword("KEY"); err != nil {
			return nil, err
		}
		if _, err := p.expectKeyword("UPDATE"); err != nil {
			return nil, err
		}
		fc.Mode = "no key update"
	case p.is("KEY"):
		p.consume()
		if _, err := p.expectKeyword("SHARE"); err != nil {
			return nil, err
		}
		fc.Mode = "key share"
	default:
		return nil, p.errf(p.cur().Start, ErrUnexpectedToken, "expected UPDATE/SHARE after FOR")
	}
	if p.is("OF") {
		p.consume()
		for {
			id, err := p.parseIdentPart()
			if err != nil {
				return nil, err
			}
			fc.OfTable = append(fc.OfTable, id.Name)
			if p.isKind(tokenizer.Comma) {
				p.consume()
				continue
			}
			break
		}
	}
	if p.is("NOWAIT") {
		p.consume()
		fc.NoWait = true
	} else if p.is("SKIP") {
		p.consume()
		if _, err := p.expectKeyword("LOCKED"); err != nil {
			return nil, err
		}
		fc.SkipLocked = true
	}
	return fc, nil
}

func (p *Parser) parseSelectItems() ([]ast.SelectItem, error) {
	var items []ast.SelectItem
	for {
		leading := p.consumeGapComments()
		start := p.cur().Start
		item := ast.SelectItem{Base: ast.Base{Position: start}}

		if p.isKind(tokenizer.Star) {
			p.consume()
			item.Star = true
		} else if p.cur().Kind == tokenizer.Identifier && p.peekAt(1).Kind == tokenizer.Dot && p.peekAt(2).Kind == tokenizer.Star {
			id, err := p.parseIdentPart()
			if err != nil {
				return nil, err
			}
			p.consume() // .
			p.consume() // *
			item.QualifiedStar = id.Name
		} else {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			item.Expr = e
			if p.is("AS") {
				p.consume()
				id, err := p.parseIdentPart()
				if err != nil {
					return nil, err
				}
				item.Alias = id.Name
			} else if p.cur().Kind == tokenizer.Identifier && !tokenizer.IsStrictKeyword(p.cur().Lexeme) {
				id, err := p.parseIdentPart()
				if err != nil {
					return nil, err
				}
				item.Alias = id.Name
			}
		}
		p.attachLeading(&item, leading)
		// Claim the comment sitting between the item and the comma (or
		// the next clause keyword) while the host still points at it.
		p.claimTrailing()
		items = append(items, item)
		idx := len(items) - 1
		p.trailingHost = func(trailing []ast.CommentGroup) {
			for _, g := range trailing {
				appendToNode(&items[idx], g)
			}
		}
		if p.isKind(tokenizer.Comma) {
			p.consume()
			continue
		}
		break
	}
	return items, nil
}

func (p *Parser) parseWithClause() (*ast.WithClause, error) {
	start := p.cur().Start
	p.consume() // WITH
	wc := &ast.WithClause{Base: ast.Base{Position: start}}
	if p.is("RECURSIVE") {
		wc.Recursive = true
		p.consume()
	}
	for {
		leading := p.consumeGapComments()
		cteStart := p.cur().Start
		id, err := p.parseIdentPart()
		if err != nil {
			return nil, err
		}
		cte := ast.CTE{Base: ast.Base{Position: cteStart}, Name: id.Name}
		if p.isKind(tokenizer.LParen) {
			p.consume()
			for {
				colID, err := p.parseIdentPart()
				if err != nil {
					return nil, err
				}
				cte.Columns = append(cte.Columns, colID.Name)
				if p.isKind(tokenizer.Comma) {
					p.consume()
					continue
				}
				break
			}
			if _, err := p.expectKind(tokenizer.RParen, ")"); err != nil {
				return nil, err
			}
		}
		if _, err := p.expectKeyword("AS"); err != nil {
			return nil, err
		}
		if _, err := p.expectKind(tokenizer.LParen, "("); err != nil {
			return nil, err
		}
		body, err := p.parseQueryBody()
		if err != nil {
			return nil, err
		}
		cte.Body = body
		if _, err := p.expectKind(tokenizer.RParen, ")"); err != nil {
			return nil, err
		}
		p.attachLeading(&cte, leading)
		p.claimTrailing()
		wc.CTEs = append(wc.CTEs, cte)
		idx := len(wc.CTEs) - 1
		p.trailingHost = func(trailing []ast.CommentGroup) {
			for _, g := range trailing {
				appendToNode(&wc.CTEs[idx], g)
			}
		}
		if p.isKind(tokenizer.Comma) {
			p.consume()
			continue
		}
		break
	}
	return wc, nil
}

func (p *Parser) parseWhereClause() (*ast.WhereClause, error) {
	start := p.cur().Start
	p.consume() // WHERE
	pred, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.WhereClause{Base: ast.Base{Position: start}, Predicate: pred}, nil
}

func (p *Parser) parseHavingClause() (*ast.HavingClause, error) {
	start := p.cur().Start
	p.consume() // HAVING
	pred, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.HavingClause{Base: ast.Base{Position: start}, Predicate: pred}, nil
}

func (p *Parser) parseGroupByClause() (*ast.GroupByClause, error) {
	start := p.cur().Start
	p.consume() // GROUP
	if _, err := p.expectKeyword("BY"); err != nil {
		return nil, err
	}
	gb := &ast.GroupByClause{Base: ast.Base{Position: start}}
	switch {
	case p.is("ROLLUP"):
		p.consume()
		gb.Grouping = ast.GroupRollup
		items, err := p.parseParenExprList()
		if err != nil {
			return nil, err
		}
		gb.Items = items
	case p.is("CUBE"):
		p.consume()
		gb.Grouping = ast.GroupCube
		items, err := p.parseParenExprList()
		if err != nil {
			return nil, err
		}
		gb.Items = items
	case p.is("GROUPING"):
		p.consume()
		if _, err := p.expectKeyword("SETS"); err != nil {
			return nil, err
		}
		gb.Grouping = ast.GroupSets
		if _, err := p.expectKind(tokenizer.LParen, "("); err != nil {
			return nil, err
		}
		for {
			set, err := p.parseParenExprList()
			if err != nil {
				return nil, err
			}
			gb.Sets = append(gb.Sets, set)
			if p.isKind(tokenizer.Comma) {
				p.consume()
				continue
			}
			break
		}
		if _, err := p.expectKind(tokenizer.RParen, ")"); err != nil {
			return nil, err
		}
	default:
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			gb.Items = append(gb.Items, e)
			if p.isKind(tokenizer.Comma) {
				p.consume()
				continue
			}
			break
		}
	}
	return gb, nil
}

// parseParenExprList parses a parenthesized expression list, or a
// single bare expression treated as a one-element list (ROLLUP/CUBE
// accept both forms).
func (p *Parser) parseParenExprList() ([]ast.Expr, error) {
	if !p.isKind(tokenizer.LParen) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return []ast.Expr{e}, nil
	}
	p.consume()
	if p.isKind(tokenizer.RParen) {
		p.consume()
		return nil, nil
	}
	var items []ast.Expr
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, e)
		if p.isKind(tokenizer.Comma) {
			p.consume()
			continue
		}
		break
	}
	if _, err := p.expectKind(tokenizer.RParen, ")"); err != nil {
		return nil, err
	}
	return items, nil
}

// --- FROM / JOIN ---

func (p *Parser) parseFromClause() (*ast.FromClause, error) {
	start := p.cur().Start
	p.consume() // FROM
	src, err := p.parseSource()
	if err != nil {
		return nil, err
	}
	fc := &ast.FromClause{Base: ast.Base{Position: start}, Source: src}
	for {
		if p.isKind(tokenizer.Comma) {
			p.consume()
			right, err := p.parseSource()
			if err != nil {
				return nil, err
			}
			fc.Joins = append(fc.Joins, ast.Join{JoinType: ast.JoinInner, Source: right})
			continue
		}
		join, ok, err := p.tryParseJoin()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		fc.Joins = append(fc.Joins, *join)
	}
	return fc, nil
}

func (p *Parser) tryParseJoin() (*ast.Join, bool, error) {
	start := p.cur().Start
	lateral := false
	kind := ast.JoinInner
	matched := true
	switch {
	case p.is("JOIN"):
		p.consume()
	case p.is("INNER"):
		p.consume()
		if _, err := p.expectKeyword("JOIN"); err != nil {
			return nil, false, err
		}
	case p.is("LEFT"):
		p.consume()
		if p.is("OUTER") {
			p.consume()
		}
		if _, err := p.expectKeyword("JOIN"); err != nil {
			return nil, false, err
		}
		kind = ast.JoinLeft
	case p.is("RIGHT"):
		p.consume()
		if p.is("OUTER") {
			p.consume()
		}
		if _, err := p.expectKeyword("JOIN"); err != nil {
			return nil, false, err
		}
		kind = ast.JoinRight
	case p.is("FULL"):
		p.consume()
		if p.is("OUTER") {
			p.consume()
		}
		if _, err := p.expectKeyword("JOIN"); err != nil {
			return nil, false, err
		}
		kind = ast.JoinFull
	case p.is("CROSS"):
		p.consume()
		if _, err := p.expectKeyword("JOIN"); err != nil {
			return nil, false, err
		}
		kind = ast.JoinCross
	default:
		matched = false
	}
	if !matched {
		return nil, false, nil
	}
	if p.is("LATERAL") {
		lateral = true
		p.consume()
	}
	src, err := p.parseSource()
	if err != nil {
		return nil, false, err
	}
	j := &ast.Join{Base: ast.Base{Position: start}, JoinType: kind, Lateral: lateral, Source: src}
	if kind != ast.JoinCross {
		if p.is("ON") {
			p.consume()
			on, err := p.parseExpr()
			if err != nil {
				return nil, false, err
			}
			j.Condition = &ast.JoinCondition{On: on}
		} else if p.is("USING") {
			p.consume()
			if _, err := p.expectKind(tokenizer.LParen, "("); err != nil {
				return nil, false, err
			}
			var cols []string
			for {
				id, err := p.parseIdentPart()
				if err != nil {
					return nil, false, err
				}
				cols = append(cols, id.Name)
				if p.isKind(tokenizer.Comma) {
					p.consume()
					continue
				}
				break
			}
			if _, err := p.expectKind(tokenizer.RParen, ")"); err != nil {
				return nil, false, err
			}
			j.Condition = &ast.JoinCondition{Using: cols}
		}
	}
	return j, true, nil
}

func (p *Parser) parseSource() (ast.Source, error) {
	leading := p.consumeGapComments()
	start := p.cur().Start

	if p.isKind(tokenizer.LParen) {
		p.consume()
		if p.isSelectStart() {
			q, err := p.parseQueryBody()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectKind(tokenizer.RParen, ")"); err != nil {
				return nil, err
			}
			alias, err := p.parseOptionalAlias()
			if err != nil {
				return nil, err
			}
			src := &ast.SubQuerySource{Base: ast.Base{Position: start}, Query: q, Alias: alias}
			p.attachLeading(src, leading)
			return src, nil
		}
		// Parenthesized source: a single source optionally followed by
		// its own JOIN chain, e.g. `(a JOIN b ON ...)`.
		innerSrc, err := p.parseSource()
		if err != nil {
			return nil, err
		}
		var joins []ast.Join
		for {
			j, ok, err := p.tryParseJoin()
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
			joins = append(joins, *j)
		}
		if _, err := p.expectKind(tokenizer.RParen, ")"); err != nil {
			return nil, err
		}
		var wrapped ast.Source = innerSrc
		if len(joins) > 0 {
			wrapped = &ast.JoinedSource{Source: innerSrc, Joins: joins}
		}
		src := &ast.ParenthesizedSource{Base: ast.Base{Position: start}, Source: wrapped}
		p.attachLeading(src, leading)
		return src, nil
	}

	if p.is("VALUES") {
		vq, err := p.parseValuesQuery()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectKeyword("AS"); err != nil {
			return nil, err
		}
		id, err := p.parseIdentPart()
		if err != nil {
			return nil, err
		}
		cols, err := p.parseOptionalColumnList()
		if err != nil {
			return nil, err
		}
		src := &ast.ValuesSource{Base: ast.Base{Position: start}, Query: vq, Alias: id.Name, Columns: cols}
		p.attachLeading(src, leading)
		return src, nil
	}

	qn, err := p.parseQualifiedName()
	if err != nil {
		return nil, err
	}
	if p.isKind(tokenizer.LParen) {
		call, err := p.parseCallTail(*qn, start)
		if err != nil {
			return nil, err
		}
		alias, err := p.parseOptionalAlias()
		if err != nil {
			return nil, err
		}
		var cols []string
		if alias != "" && p.isKind(tokenizer.LParen) {
			cols, err = p.parseOptionalColumnList()
			if err != nil {
				return nil, err
			}
		}
		src := &ast.FunctionSource{Base: ast.Base{Position: start}, Call: *call, Alias: alias, Columns: cols}
		p.attachLeading(src, leading)
		return src, nil
	}
	alias, err := p.parseOptionalAlias()
	if err != nil {
		return nil, err
	}
	src := &ast.TableSource{Base: ast.Base{Position: start}, Namespaces: qn.Namespaces, Name: qn.Name, Alias: alias}
	p.attachLeading(src, leading)
	return src, nil
}

func (p *Parser) parseOptionalAlias() (string, error) {
	if p.is("AS") {
		p.consume()
		id, err := p.parseIdentPart()
		if err != nil {
			return "", err
		}
		return id.Name, nil
	}
	if (p.cur().Kind == tokenizer.Identifier) && !tokenizer.IsStrictKeyword(p.cur().Lexeme) {
		id, err := p.parseIdentPart()
		if err != nil {
			return "", err
		}
		return id.Name, nil
	}
	return "", nil
}

func (p *Parser) parseOptionalColumnList() ([]string, error) {
	if !p.isKind(tokenizer.LParen) {
		return nil, nil
	}
	p.consume()
	var cols []string
	for {
		id, err := p.parseIdentPart()
		if err != nil {
			return nil, err
		}
		cols = append(cols, id.Name)
		if p.isKind(tokenizer.Comma) {
			p.consume()
			continue
		}
		break
	}
	if _, err := p.expectKind(tokenizer.RParen, ")"); err != nil {
		return nil, err
	}
	return cols, nil
}
