// Package parser builds sqlkit's AST from a token stream: recursive
// descent for statements and clauses, Pratt-style precedence climbing
// for expressions.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sqlkit-go/sqlkit/ast"
	"github.com/sqlkit-go/sqlkit/tokenizer"
)

// Sentinel errors wrapped by ParseError.
var (
	ErrUnexpectedToken    = errors.New("unexpected token")
	ErrUnterminated       = errors.New("unterminated construct")
	ErrAmbiguousConstruct = errors.New("ambiguous construct")
)

// ParseError carries the source position of a parse failure.
type ParseError struct {
	Err error
	Pos tokenizer.Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v at line %d, column %d", e.Err, e.Pos.Line, e.Pos.Column)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Mode carries dialect relaxations accepted in addition to the
// Postgres-flavored baseline.
type Mode struct {
	Tokenizer tokenizer.Mode
}

// Parser holds state for one parse of one token stream. Not safe for
// concurrent use: one parse per call.
type Parser struct {
	toks []tokenizer.Token // full stream, including whitespace/newline/comments
	sig  []int             // indices into toks of grammar-significant tokens
	pos  int               // index into sig

	// trailingHost receives "after" comments discovered in the gap
	// before the next significant token; it is set right after a node
	// is constructed and cleared the next time the gap is scanned.
	trailingHost func(groups []ast.CommentGroup)

	// leftover holds every comment token index not yet claimed by a gap
	// scan; whatever remains at end of parse is attached to the root so
	// no comment is silently dropped.
	leftover map[int]bool
}

func newParser(src string, mode Mode) (*Parser, error) {
	toks, err := tokenizer.Tokens(src, mode.Tokenizer)
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks, leftover: map[int]bool{}}
	for i, t := range toks {
		switch t.Kind {
		case tokenizer.Whitespace, tokenizer.Newline:
			// skip
		case tokenizer.CommentLine, tokenizer.CommentBlock:
			p.leftover[i] = true
		default:
			p.sig = append(p.sig, i)
		}
	}
	return p, nil
}

func (p *Parser) errf(pos tokenizer.Position, base error, format string, args ...any) error {
	return &ParseError{Err: fmt.Errorf("%w: %s", base, fmt.Sprintf(format, args...)), Pos: pos}
}

// cur returns the current significant token without consuming it.
func (p *Parser) cur() tokenizer.Token {
	if p.pos >= len(p.sig) {
		return tokenizer.Token{Kind: tokenizer.EOF}
	}
	return p.toks[p.sig[p.pos]]
}

func (p *Parser) curIdx() int {
	if p.pos >= len(p.sig) {
		if len(p.toks) == 0 {
			return -1
		}
		return len(p.toks) - 1
	}
	return p.sig[p.pos]
}

func (p *Parser) peekAt(n int) tokenizer.Token {
	idx := p.pos + n
	if idx >= len(p.sig) {
		return tokenizer.Token{Kind: tokenizer.EOF}
	}
	return p.toks[p.sig[idx]]
}

func (p *Parser) atEOF() bool { return p.cur().Kind == tokenizer.EOF }

// is reports whether the current token is a keyword/identifier matching
// word (case-insensitive).
func (p *Parser) is(word string) bool {
	t := p.cur()
	return (t.Kind == tokenizer.Keyword || t.Kind == tokenizer.Identifier) && t.Canonical == strings.ToUpper(word)
}

func (p *Parser) isAny(words ...string) bool {
	for _, w := range words {
		if p.is(w) {
			return true
		}
	}
	return false
}

func (p *Parser) isKind(k tokenizer.Kind) bool { return p.cur().Kind == k }

// consume advances past the current token and returns it.
func (p *Parser) consume() tokenizer.Token {
	t := p.cur()
	p.pos++
	return t
}

// expectKeyword consumes the current token if it matches word, else
// returns a ParseError.
func (p *Parser) expectKeyword(word string) (tokenizer.Token, error) {
	if !p.is(word) {
		return tokenizer.Token{}, p.errf(p.cur().Start, ErrUnexpectedToken, "expected %q, got %q", word, p.cur().Lexeme)
	}
	return p.consume(), nil
}

func (p *Parser) expectKind(k tokenizer.Kind, what string) (tokenizer.Token, error) {
	if p.cur().Kind != k {
		return tokenizer.Token{}, p.errf(p.cur().Start, ErrUnexpectedToken, "expected %s, got %q", what, p.cur().Lexeme)
	}
	return p.consume(), nil
}

// consumeGapComments scans the raw token range between the previous
// significant token and the current one, splitting at the first
// newline: comments before the first newline are "after" comments for
// the previous construct (delivered via the last-registered
// trailingHost, if any); comments after the first newline are "before"
// comments for whatever comes next, returned directly using the
// before/after/inner positioning.
func (p *Parser) consumeGapComments() []ast.CommentGroup {
	end := p.curIdx()
	start := 0
	if p.pos > 0 {
		start = p.sig[p.pos-1] + 1
	}
	if end < 0 {
		end = len(p.toks)
	}

	var trailing, leading []ast.CommentGroup
	sawNewline := false
	for i := start; i < end && i < len(p.toks); i++ {
		t := p.toks[i]
		switch t.Kind {
		case tokenizer.Newline:
			sawNewline = true
		case tokenizer.CommentLine, tokenizer.CommentBlock:
			if !p.leftover[i] {
				continue
			}
			delete(p.leftover, i)
			style := ast.StyleBlock
			if t.Kind == tokenizer.CommentLine {
				style = ast.StyleLine
			}
			text := stripCommentDelims(t.Lexeme, t.Kind)
			if !sawNewline {
				trailing = appendGroup(trailing, ast.After, style, text)
			} else {
				leading = appendGroup(leading, ast.Before, style, text)
			}
		}
	}
	if len(trailing) > 0 && p.trailingHost != nil {
		p.trailingHost(trailing)
	}
	p.trailingHost = nil
	return leading
}

// claimTrailing delivers the same-line comments sitting between the
// previous significant token and the current one to the registered
// trailing host. Comments past the first newline stay unclaimed for the
// next gap scan, so a construct's own line keeps its comment and the
// next line's comment leads the next construct.
func (p *Parser) claimTrailing() {
	end := p.curIdx()
	start := 0
	if p.pos > 0 {
		start = p.sig[p.pos-1] + 1
	}
	if end < 0 {
		end = len(p.toks)
	}
	var trailing []ast.CommentGroup
	for i := start; i < end && i < len(p.toks); i++ {
		t := p.toks[i]
		if t.Kind == tokenizer.Newline {
			break
		}
		if t.Kind != tokenizer.CommentLine && t.Kind != tokenizer.CommentBlock {
			continue
		}
		if !p.leftover[i] {
			continue
		}
		delete(p.leftover, i)
		style := ast.StyleBlock
		if t.Kind == tokenizer.CommentLine {
			style = ast.StyleLine
		}
		trailing = appendGroup(trailing, ast.After, style, stripCommentDelims(t.Lexeme, t.Kind))
	}
	if len(trailing) > 0 && p.trailingHost != nil {
		p.trailingHost(trailing)
	}
}

func appendGroup(groups []ast.CommentGroup, pos ast.CommentPosition, style ast.CommentStyle, text string) []ast.CommentGroup {
	if n := len(groups); n > 0 && groups[n-1].Style == style {
		groups[n-1].Texts = append(groups[n-1].Texts, text)
		return groups
	}
	return append(groups, ast.CommentGroup{Position: pos, Style: style, Texts: []string{text}})
}

func stripCommentDelims(lexeme string, kind tokenizer.Kind) string {
	if kind == tokenizer.CommentLine {
		if len(lexeme) >= 2 {
			return lexeme[2:]
		}
		return lexeme
	}
	if len(lexeme) >= 4 {
		return lexeme[2 : len(lexeme)-2]
	}
	return lexeme
}

// attachLeading applies leading comment groups to n, and registers n as
// the trailing-comment host for the next gap scan.
func (p *Parser) attachLeading(n ast.Node, groups []ast.CommentGroup) {
	for _, g := range groups {
		appendToNode(n, g)
	}
	p.trailingHost = func(trailing []ast.CommentGroup) {
		for _, g := range trailing {
			appendToNode(n, g)
		}
	}
}

func appendToNode(n ast.Node, g ast.CommentGroup) {
	gs := n.Comments()
	*gs = append(*gs, g)
}

// finish attaches any never-claimed comments (leftover) to root, in
// source order, as trailing After groups. This guarantees no comment is
// silently dropped even where positional fidelity elsewhere in a deeply
// nested expression is only approximate.
func (p *Parser) finish(root ast.Node) {
	if len(p.leftover) == 0 {
		return
	}
	idxs := make([]int, 0, len(p.leftover))
	for i := range p.leftover {
		idxs = append(idxs, i)
	}
	sortInts(idxs)
	for _, i := range idxs {
		t := p.toks[i]
		style := ast.StyleBlock
		if t.Kind == tokenizer.CommentLine {
			style = ast.StyleLine
		}
		appendToNode(root, ast.CommentGroup{Position: ast.After, Style: style, Texts: []string{stripCommentDelims(t.Lexeme, t.Kind)}})
	}
}

func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
