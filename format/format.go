// Package format turns a sqlkit AST back into SQL text: it
// interleaves comments at their original relative positions, honors a
// configurable layout policy, and collects the query's unique parameter
// names into a returned binding map.
package format

import (
	"strconv"
	"strings"

	"github.com/sqlkit-go/sqlkit/ast"
	"github.com/sqlkit-go/sqlkit/param"
	"github.com/sqlkit-go/sqlkit/visitor"
)

// Result is what Format returns: the formatted text plus the extracted
// parameter map.
type Result struct {
	SQL    string
	Params param.Map
}

// Format renders q under opts. bindings, if given, supply bound values
// for named parameters (as produced by ParamInjector/SortInjector/
// PaginationInjector); later maps override earlier ones on name
// collision. Any parameter name with no matching binding is emitted as
// param.Null() when unbound.
func Format(q ast.Query, opts Options, bindings ...param.Map) (Result, error) {
	order := collectParamNames(q)
	idx := map[string]int{}
	for i, name := range order {
		idx[name] = i + 1
	}
	p := &printer{opts: opts, paramIndex: idx}
	p.printQuery(q)

	params := param.Map{}
	for _, b := range bindings {
		for k, v := range b {
			params[k] = v
			if !contains(order, k) {
				order = append(order, k)
			}
		}
	}
	for _, name := range order {
		if _, ok := params[name]; !ok {
			params[name] = param.Null()
		}
	}
	return Result{SQL: strings.TrimSpace(p.sb.String()), Params: params}, nil
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// collectParamNames walks q in the visitor package's documented
// pre-order, returning unique Parameter names in first-seen order
// so the map has exactly one entry per unique name.
func collectParamNames(q ast.Query) []string {
	var order []string
	seen := map[string]bool{}
	visitor.Visit(q, func(n ast.Node) {
		if p, ok := n.(*ast.Parameter); ok {
			if !seen[p.Name] {
				seen[p.Name] = true
				order = append(order, p.Name)
			}
		}
	})
	return order
}

// printer holds the mutable state of one Format call.
type printer struct {
	opts       Options
	sb         strings.Builder
	indent     int
	paramIndex map[string]int // unique name -> 1-based slot, for indexed style
}

// nl starts a fresh indented line. If the current line is already blank
// (a line comment just ended it), only the missing indent is added, so
// comment-terminated lines never produce double newlines.
func (p *printer) nl() {
	target := strings.Repeat(p.opts.IndentChar, p.indent*p.opts.IndentSize)
	s := p.sb.String()
	if i := strings.LastIndex(s, p.opts.Newline); i >= 0 {
		tail := s[i+len(p.opts.Newline):]
		if strings.Trim(tail, " \t") == "" {
			if strings.HasPrefix(target, tail) {
				p.sb.WriteString(target[len(tail):])
			}
			return
		}
	}
	p.sb.WriteString(p.opts.Newline)
	p.sb.WriteString(target)
}

func (p *printer) space() { p.sb.WriteByte(' ') }

func (p *printer) kw(word string) string {
	switch p.opts.KeywordCase {
	case KeywordUpper:
		return strings.ToUpper(word)
	case KeywordLower:
		return strings.ToLower(word)
	default:
		return word
	}
}

func (p *printer) writeKw(word string) { p.sb.WriteString(p.kw(word)) }

// ident quotes name per opts.IdentifierEscape. Every name is quoted,
// whether or not it was quoted in the source, so keyword collisions are
// never ambiguous on reformat; only IdentifierEscape.None emits it bare.
func (p *printer) ident(name string) string {
	if p.opts.IdentifierEscape.None {
		return name
	}
	esc := p.opts.IdentifierEscape
	escaped := strings.ReplaceAll(name, esc.End, esc.End+esc.End)
	return esc.Start + escaped + esc.End
}

func (p *printer) qualifiedIdent(namespaces []ast.Identifier, name string) string {
	var parts []string
	for _, ns := range namespaces {
		parts = append(parts, p.ident(ns.Name))
	}
	parts = append(parts, p.ident(name))
	return strings.Join(parts, ".")
}

func (p *printer) paramText(name string) string {
	switch p.opts.ParameterStyle {
	case ParamStyleIndexed:
		if i, ok := p.paramIndex[name]; ok {
			return p.opts.ParameterSymbol + strconv.Itoa(i)
		}
		return p.opts.ParameterSymbol + name
	case ParamStyleAnonymous:
		return "?"
	default:
		return p.opts.ParameterSymbol + name
	}
}

// emitComments writes the comment groups attached to n at pos, in the
// smart or verbatim style per opts.CommentStyle.
func (p *printer) emitComments(n ast.Node, pos ast.CommentPosition, inline bool) {
	if !p.opts.ExportComment {
		return
	}
	groups := n.Comments()
	for _, g := range *groups {
		if g.Position != pos {
			continue
		}
		p.emitGroup(g, inline)
	}
}

func (p *printer) emitGroup(g ast.CommentGroup, inline bool) {
	switch p.opts.CommentStyle {
	case CommentSmart:
		p.emitSmartGroup(g, inline)
	default:
		p.emitVerbatimGroup(g, inline)
	}
}

// emitVerbatimGroup re-emits comments in their original style. A line
// comment always terminates its line: anything written after `--` on
// the same line would be swallowed by the comment.
func (p *printer) emitVerbatimGroup(g ast.CommentGroup, inline bool) {
	for _, t := range g.Texts {
		if g.Style == ast.StyleLine {
			p.sb.WriteString("--" + t)
			p.nl()
		} else {
			p.sb.WriteString("/*" + escapeBlockClose(t) + "*/")
			if inline {
				p.space()
			} else {
				p.nl()
			}
		}
	}
}

// emitSmartGroup implements the `smart` comment style. inline means the
// surrounding construct continues on the same line after the comments,
// so they must take block form; at end of line, singles convert to `--`
// line form regardless of their original style, and a run of >=2
// stacked line comments merges into one multi-line block. Embedded `*/`
// is escaped in any block form produced.
func (p *printer) emitSmartGroup(g ast.CommentGroup, inline bool) {
	if g.Style == ast.StyleLine && len(g.Texts) >= 2 {
		p.sb.WriteString("/*")
		for i, t := range g.Texts {
			if i > 0 {
				p.sb.WriteString(p.opts.Newline)
			}
			p.sb.WriteString(escapeBlockClose(t))
		}
		p.sb.WriteString("*/")
		if inline {
			p.space()
		} else {
			p.nl()
		}
		return
	}
	for _, t := range g.Texts {
		if inline {
			p.sb.WriteString("/*" + escapeBlockClose(t) + "*/")
			p.space()
		} else {
			p.sb.WriteString("--" + t)
			p.nl()
		}
	}
}

func escapeBlockClose(s string) string {
	return strings.ReplaceAll(s, "*/", "*\\/")
}

// breakJoin writes items separated per b: BreakBefore puts the
// separator at the start of the next line, BreakAfter at the end of
// the current line followed by a newline, BreakNone inline with a
// single space.
func (p *printer) breakJoin(sep string, b Break, items []func()) {
	for i, item := range items {
		if i > 0 {
			switch b {
			case BreakBefore:
				p.nl()
				p.sb.WriteString(sep + " ")
			case BreakAfter:
				p.sb.WriteString(sep)
				p.nl()
			default:
				p.sb.WriteString(sep + " ")
			}
		}
		item()
	}
}
