package parser

import (
	"github.com/sqlkit-go/sqlkit/ast"
	"github.com/sqlkit-go/sqlkit/tokenizer"
)

// ParseValues parses a standalone VALUES (...), (...) statement.
func ParseValues(src string) (*ast.ValuesQuery, error) {
	p, err := newParser(src, Mode{})
	if err != nil {
		return nil, err
	}
	leading := p.consumeGapComments()
	q, err := p.parseValuesQuery()
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

// ParseValue parses a single standalone value expression, used
// by transformers that synthesize literal/parameter expressions outside
// a full statement context.
func ParseValue(src string) (ast.Expr, error) {
	p, err := newParser(src, Mode{})
	if err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.atEOF() {
		return nil, p.errf(p.cur().Start, ErrUnexpectedToken, "unexpected trailing %q", p.cur().Lexeme)
	}
	p.finish(e)
	return e, nil
}

func (p *Parser) parseValuesQuery() (*ast.ValuesQuery, error) {
	start := p.cur().Start
	if _, err := p.expectKeyword("VALUES"); err != nil {
		return nil, err
	}
	vq := &ast.ValuesQuery{Base: ast.Base{Position: start}}
	for {
		tupStart := p.cur().Start
		if _, err := p.expectKind(tokenizer.LParen, "("); err != nil {
			return nil, err
		}
		var vals []ast.Expr
		for {
			if p.is("DEFAULT") {
				p.consume()
				vals = append(vals, &ast.Literal{RawText: "DEFAULT"})
			} else {
				e, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				vals = append(vals, e)
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
		vq.Tuples = append(vq.Tuples, ast.TupleExpr{Base: ast.Base{Position: tupStart}, Values: vals})
		if p.isKind(tokenizer.Comma) {
			p.consume()
			continue
		}
		break
	}
	return vq, nil
}
