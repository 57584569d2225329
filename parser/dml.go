package parser

import (
	"github.com/sqlkit-go/sqlkit/ast"
	"github.com/sqlkit-go/sqlkit/tokenizer"
)

// ParseInsert parses a single INSERT INTO ... statement,
// including VALUES or SELECT sources, ON CONFLICT, and RETURNING.
func ParseInsert(src string) (*ast.InsertQuery, error) {
	p, err := newParser(src, Mode{})
	if err != nil {
		return nil, err
	}
	leading := p.consumeGapComments()
	q, err := p.parseInsertQuery()
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

// ParseUpdate parses a single UPDATE ... statement.
func ParseUpdate(src string) (*ast.UpdateQuery, error) {
	p, err := newParser(src, Mode{})
	if err != nil {
		return nil, err
	}
	leading := p.consumeGapComments()
	q, err := p.parseUpdateQuery()
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

func (p *Parser) parseInsertQuery() (*ast.InsertQuery, error) {
	start := p.cur().Start
	if _, err := p.expectKeyword("INSERT"); err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("INTO"); err != nil {
		return nil, err
	}
	qn, err := p.parseQualifiedName()
	if err != nil {
		return nil, err
	}
	ic := ast.InsertClause{Base: ast.Base{Position: start}, Namespaces: qn.Namespaces, Table: qn.Name}
	if p.isKind(tokenizer.LParen) {
		p.consume()
		for {
			id, err := p.parseIdentPart()
			if err != nil {
				return nil, err
			}
			ic.Columns = append(ic.Columns, id.Name)
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

	iq := &ast.InsertQuery{Base: ast.Base{Position: start}, Insert: ic}

	if p.is("DEFAULT") {
		p.consume()
		if _, err := p.expectKeyword("VALUES"); err != nil {
			return nil, err
		}
		iq.Source = &ast.ValuesQuery{Tuples: []ast.TupleExpr{{}}}
	} else if p.is("VALUES") {
		vq, err := p.parseValuesQuery()
		if err != nil {
			return nil, err
		}
		iq.Source = vq
	} else {
		q, err := p.parseQueryBody()
		if err != nil {
			return nil, err
		}
		iq.Source = q
	}

	if p.is("ON") {
		oc, err := p.parseOnConflict()
		if err != nil {
			return nil, err
		}
		iq.OnConflict = oc
	}

	if p.is("RETURNING") {
		rc, err := p.parseReturning()
		if err != nil {
			return nil, err
		}
		iq.Returning = rc
	}

	return iq, nil
}

func (p *Parser) parseOnConflict() (*ast.OnConflictClause, error) {
	start := p.cur().Start
	p.consume() // ON
	if _, err := p.expectKeyword("CONFLICT"); err != nil {
		return nil, err
	}
	oc := &ast.OnConflictClause{Base: ast.Base{Position: start}}
	if p.isKind(tokenizer.LParen) {
		p.consume()
		for {
			id, err := p.parseIdentPart()
			if err != nil {
				return nil, err
			}
			oc.Target.Columns = append(oc.Target.Columns, id.Name)
			if p.isKind(tokenizer.Comma) {
				p.consume()
				continue
			}
			break
		}
		if _, err := p.expectKind(tokenizer.RParen, ")"); err != nil {
			return nil, err
		}
	} else if p.is("ON") {
		p.consume()
		if _, err := p.expectKeyword("CONSTRAINT"); err != nil {
			return nil, err
		}
		id, err := p.parseIdentPart()
		if err != nil {
			return nil, err
		}
		oc.Target.Constraint = id.Name
	}
	if _, err := p.expectKeyword("DO"); err != nil {
		return nil, err
	}
	if p.is("NOTHING") {
		p.consume()
		oc.Action.DoNothing = true
		return oc, nil
	}
	if _, err := p.expectKeyword("UPDATE"); err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("SET"); err != nil {
		return nil, err
	}
	items, err := p.parseSetItems()
	if err != nil {
		return nil, err
	}
	oc.Action.SetItems = items
	if p.is("WHERE") {
		p.consume()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		oc.Action.Where = e
	}
	return oc, nil
}

func (p *Parser) parseSetItems() ([]ast.SetItem, error) {
	var items []ast.SetItem
	for {
		id, err := p.parseIdentPart()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectKind(tokenizer.Eq, "="); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, ast.SetItem{Column: id.Name, Value: val})
		if p.isKind(tokenizer.Comma) {
			p.consume()
			continue
		}
		break
	}
	return items, nil
}

func (p *Parser) parseReturning() (*ast.ReturningClause, error) {
	start := p.cur().Start
	p.consume() // RETURNING
	items, err := p.parseSelectItems()
	if err != nil {
		return nil, err
	}
	return &ast.ReturningClause{Base: ast.Base{Position: start}, Items: items}, nil
}

func (p *Parser) parseUpdateQuery() (*ast.UpdateQuery, error) {
	start := p.cur().Start
	uq := &ast.UpdateQuery{Base: ast.Base{Position: start}}
	if p.is("WITH") {
		with, err := p.parseWithClause()
		if err != nil {
			return nil, err
		}
		uq.With = with
	}
	if _, err := p.expectKeyword("UPDATE"); err != nil {
		return nil, err
	}
	qn, err := p.parseQualifiedName()
	if err != nil {
		return nil, err
	}
	alias, err := p.parseOptionalAlias()
	if err != nil {
		return nil, err
	}
	uq.Target = ast.TableSource{Base: ast.Base{Position: start}, Namespaces: qn.Namespaces, Name: qn.Name, Alias: alias}

	if _, err := p.expectKeyword("SET"); err != nil {
		return nil, err
	}
	setStart := p.cur().Start
	items, err := p.parseSetItems()
	if err != nil {
		return nil, err
	}
	uq.Set = ast.SetClause{Base: ast.Base{Position: setStart}, Items: items}

	if p.is("FROM") {
		from, err := p.parseFromClause()
		if err != nil {
			return nil, err
		}
		uq.From = from
	}
	if p.is("WHERE") {
		where, err := p.parseWhereClause()
		if err != nil {
			return nil, err
		}
		uq.Where = where
	}
	if p.is("RETURNING") {
		rc, err := p.parseReturning()
		if err != nil {
			return nil, err
		}
		uq.Returning = rc
	}
	return uq, nil
}
