package parser

import (
	"github.com/sqlkit-go/sqlkit/ast"
	"github.com/sqlkit-go/sqlkit/tokenizer"
)

// ParseCreateTable parses a single CREATE TABLE statement,
// either an explicit column/constraint list or a CREATE TABLE ... AS
// SELECT body.
func ParseCreateTable(src string) (*ast.CreateTableQuery, error) {
	p, err := newParser(src, Mode{})
	if err != nil {
		return nil, err
	}
	leading := p.consumeGapComments()
	q, err := p.parseCreateTableQuery()
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

func (p *Parser) parseCreateTableQuery() (*ast.CreateTableQuery, error) {
	start := p.cur().Start
	if _, err := p.expectKeyword("CREATE"); err != nil {
		return nil, err
	}
	ct := &ast.CreateTableQuery{Base: ast.Base{Position: start}}
	if p.isAny("TEMPORARY", "TEMP") {
		ct.Temporary = true
		p.consume()
	}
	if _, err := p.expectKeyword("TABLE"); err != nil {
		return nil, err
	}
	if p.is("IF") {
		p.consume()
		if _, err := p.expectKeyword("NOT"); err != nil {
			return nil, err
		}
		if _, err := p.expectKeyword("EXISTS"); err != nil {
			return nil, err
		}
		ct.IfNotExists = true
	}
	qn, err := p.parseQualifiedName()
	if err != nil {
		return nil, err
	}
	ct.Namespaces, ct.Name = qn.Namespaces, qn.Name

	if p.is("AS") {
		p.consume()
		q, err := p.parseQueryBody()
		if err != nil {
			return nil, err
		}
		ct.Body.As = q
		return ct, nil
	}

	if _, err := p.expectKind(tokenizer.LParen, "("); err != nil {
		return nil, err
	}
	for {
		if p.isTableConstraintStart() {
			tc, err := p.parseTableConstraint()
			if err != nil {
				return nil, err
			}
			ct.Body.Constraints = append(ct.Body.Constraints, tc)
		} else {
			cd, err := p.parseColumnDef()
			if err != nil {
				return nil, err
			}
			ct.Body.Columns = append(ct.Body.Columns, cd)
		}
		if p.isKind(tokenizer.Comma) {
			p.consume()
			continue
		}
		break
	}
	if _, err := p.expectKind(tokenizer.RParen, ")"); err != nil {
		return nil, err
	}
	return ct, nil
}

func (p *Parser) isTableConstraintStart() bool {
	return p.isAny("PRIMARY", "UNIQUE", "CHECK", "FOREIGN", "CONSTRAINT")
}

func (p *Parser) parseTableConstraint() (ast.TableConstraint, error) {
	tc := ast.TableConstraint{}
	if p.is("CONSTRAINT") {
		p.consume()
		id, err := p.parseIdentPart()
		if err != nil {
			return tc, err
		}
		tc.Name = id.Name
	}
	switch {
	case p.is("PRIMARY"):
		p.consume()
		if _, err := p.expectKeyword("KEY"); err != nil {
			return tc, err
		}
		tc.Kind = ast.ConstraintPrimaryKey
		cols, err := p.parseIdentList()
		if err != nil {
			return tc, err
		}
		tc.Columns = cols
	case p.is("UNIQUE"):
		p.consume()
		tc.Kind = ast.ConstraintUnique
		cols, err := p.parseIdentList()
		if err != nil {
			return tc, err
		}
		tc.Columns = cols
	case p.is("CHECK"):
		p.consume()
		if _, err := p.expectKind(tokenizer.LParen, "("); err != nil {
			return tc, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return tc, err
		}
		if _, err := p.expectKind(tokenizer.RParen, ")"); err != nil {
			return tc, err
		}
		tc.Kind = ast.ConstraintCheck
		tc.Check = e
	case p.is("FOREIGN"):
		p.consume()
		if _, err := p.expectKeyword("KEY"); err != nil {
			return tc, err
		}
		cols, err := p.parseIdentList()
		if err != nil {
			return tc, err
		}
		tc.Kind = ast.ConstraintForeignKey
		tc.Columns = cols
		if _, err := p.expectKeyword("REFERENCES"); err != nil {
			return tc, err
		}
		refQn, err := p.parseQualifiedName()
		if err != nil {
			return tc, err
		}
		tc.RefTable = *refQn
		if p.isKind(tokenizer.LParen) {
			refCols, err := p.parseIdentList()
			if err != nil {
				return tc, err
			}
			tc.RefColumns = refCols
		}
	default:
		return tc, p.errf(p.cur().Start, ErrUnexpectedToken, "expected table constraint, got %q", p.cur().Lexeme)
	}
	return tc, nil
}

func (p *Parser) parseIdentList() ([]string, error) {
	if _, err := p.expectKind(tokenizer.LParen, "("); err != nil {
		return nil, err
	}
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

func (p *Parser) parseColumnDef() (ast.ColumnDef, error) {
	id, err := p.parseIdentPart()
	if err != nil {
		return ast.ColumnDef{}, err
	}
	typ, err := p.parseTypeName()
	if err != nil {
		return ast.ColumnDef{}, err
	}
	cd := ast.ColumnDef{Name: id.Name, Type: typ}
	for {
		switch {
		case p.is("NOT"):
			p.consume()
			if _, err := p.expectKeyword("NULL"); err != nil {
				return cd, err
			}
			cd.NotNull = true
		case p.is("NULL"):
			p.consume()
		case p.is("DEFAULT"):
			p.consume()
			e, err := p.parseExpr()
			if err != nil {
				return cd, err
			}
			cd.Default = e
		case p.is("PRIMARY"):
			p.consume()
			if _, err := p.expectKeyword("KEY"); err != nil {
				return cd, err
			}
			cd.PrimaryKey = true
		case p.is("UNIQUE"):
			p.consume()
			cd.Unique = true
		case p.is("CHECK"):
			p.consume()
			if _, err := p.expectKind(tokenizer.LParen, "("); err != nil {
				return cd, err
			}
			e, err := p.parseExpr()
			if err != nil {
				return cd, err
			}
			if _, err := p.expectKind(tokenizer.RParen, ")"); err != nil {
				return cd, err
			}
			cd.Check = e
		case p.is("REFERENCES"):
			p.consume()
			qn, err := p.parseQualifiedName()
			if err != nil {
				return cd, err
			}
			ref := &ast.ColumnReferenceConstraint{Table: *qn}
			if p.isKind(tokenizer.LParen) {
				cols, err := p.parseIdentList()
				if err != nil {
					return cd, err
				}
				if len(cols) > 0 {
					ref.Column = cols[0]
				}
			}
			cd.References = ref
		default:
			return cd, nil
		}
	}
}
