package format

import (
	"strings"

	"github.com/sqlkit-go/sqlkit/ast"
)

func (p *printer) printQuery(q ast.Query) {
	switch v := q.(type) {
	case *ast.SimpleQuery:
		p.printSimpleQuery(v)
	case *ast.BinaryQuery:
		p.printBinaryQuery(v)
	case *ast.ValuesQuery:
		p.printValuesQuery(v)
	case *ast.InsertQuery:
		p.printInsertQuery(v)
	case *ast.UpdateQuery:
		p.printUpdateQuery(v)
	case *ast.CreateTableQuery:
		p.printCreateTableQuery(v)
	}
}

func (p *printer) printSimpleQuery(q *ast.SimpleQuery) {
	p.emitComments(q, ast.Before, false)
	if q.With != nil {
		p.printWithClause(q.With)
		p.nl()
	}
	p.printSelectClause(&q.Select)
	if q.From != nil {
		p.nl()
		p.printFromClause(q.From)
	}
	if q.Where != nil {
		p.nl()
		p.printWhereClause(q.Where)
	}
	if q.GroupBy != nil {
		p.nl()
		p.printGroupByClause(q.GroupBy)
	}
	if q.Having != nil {
		p.nl()
		p.writeKw("having")
		p.space()
		p.sb.WriteString(p.printExpr(q.Having.Predicate))
	}
	if q.OrderBy != nil {
		p.nl()
		p.printOrderByClause(q.OrderBy)
	}
	if q.Limit != nil {
		p.nl()
		p.writeKw("limit")
		p.space()
		p.sb.WriteString(p.printExpr(q.Limit.Count))
	}
	if q.Offset != nil {
		p.nl()
		p.writeKw("offset")
		p.space()
		p.sb.WriteString(p.printExpr(q.Offset.Count))
	}
	if q.Fetch != nil {
		p.nl()
		p.writeKw("fetch first")
		p.space()
		p.sb.WriteString(p.printExpr(q.Fetch.Count))
		p.space()
		p.writeKw("rows only")
	}
	if q.For != nil {
		p.nl()
		p.writeKw("for " + q.For.Mode)
	}
	p.emitComments(q, ast.After, true)
}

func (p *printer) printWithClause(w *ast.WithClause) {
	p.writeKw("with")
	if w.Recursive {
		p.space()
		p.writeKw("recursive")
	}
	style := p.opts.resolvedWithStyle()
	inline := style == WithCTEOneline || style == WithFullOneline
	if !inline {
		p.indent++
	}
	p.breakJoin(",", p.opts.CTECommaBreak, cteItemFns(p, w.CTEs, inline))
	if !inline {
		p.indent--
	}
}

func cteItemFns(p *printer, ctes []ast.CTE, inline bool) []func() {
	fns := make([]func(), len(ctes))
	for i := range ctes {
		cte := &ctes[i]
		fns[i] = func() {
			if !inline {
				p.nl()
			} else {
				p.space()
			}
			p.sb.WriteString(p.ident(cte.Name))
			if len(cte.Columns) > 0 {
				p.sb.WriteByte('(')
				for j, c := range cte.Columns {
					if j > 0 {
						p.sb.WriteString(", ")
					}
					p.sb.WriteString(p.ident(c))
				}
				p.sb.WriteByte(')')
			}
			p.space()
			p.writeKw("as")
			p.space()
			p.sb.WriteByte('(')
			sub := &printer{opts: p.opts, indent: p.indent + 1, paramIndex: p.paramIndex}
			sub.printQuery(cte.Body)
			if inline || p.opts.resolvedWithStyle() == WithFullOneline {
				p.sb.WriteString(strings.TrimSpace(strings.ReplaceAll(sub.sb.String(), sub.opts.Newline, " ")))
			} else {
				p.nl()
				p.indent++
				p.sb.WriteString(strings.TrimSpace(sub.sb.String()))
				p.indent--
				p.nl()
			}
			p.sb.WriteByte(')')
		}
	}
	return fns
}

func (p *printer) printSelectClause(sel *ast.SelectClause) {
	p.emitComments(sel, ast.Before, false)
	p.writeKw("select")
	if sel.Distinct {
		p.space()
		p.writeKw("distinct")
		if len(sel.DistinctOn) > 0 {
			p.space()
			p.writeKw("on")
			p.sb.WriteByte('(')
			for i, e := range sel.DistinctOn {
				if i > 0 {
					p.sb.WriteString(", ")
				}
				p.sb.WriteString(p.printExpr(e))
			}
			p.sb.WriteByte(')')
		}
	}
	p.indent++
	if p.opts.CommaBreak == BreakNone {
		p.space()
	} else {
		p.nl()
	}
	for i := range sel.Items {
		item := &sel.Items[i]
		p.emitComments(item, ast.Before, false)
		p.printSelectItemBody(item)
		last := i == len(sel.Items)-1
		// After comments ride the end of the item's line; under
		// commaBreak after, the comma comes first so the comment never
		// swallows it.
		switch {
		case last:
			if hasComments(item, ast.After) {
				p.space()
				p.emitComments(item, ast.After, false)
			}
		case p.opts.CommaBreak == BreakAfter:
			p.sb.WriteString(",")
			if hasComments(item, ast.After) {
				p.space()
				p.emitComments(item, ast.After, false)
			}
			p.nl()
		case p.opts.CommaBreak == BreakBefore:
			if hasComments(item, ast.After) {
				p.space()
				p.emitComments(item, ast.After, false)
			}
			p.nl()
			p.sb.WriteString(", ")
		default:
			if hasComments(item, ast.After) {
				p.space()
				p.emitComments(item, ast.After, true)
			}
			p.sb.WriteString(", ")
		}
	}
	p.indent--
}

func hasComments(n ast.Node, pos ast.CommentPosition) bool {
	for _, g := range *n.Comments() {
		if g.Position == pos && len(g.Texts) > 0 {
			return true
		}
	}
	return false
}

func (p *printer) printSelectItemBody(item *ast.SelectItem) {
	switch {
	case item.Star:
		p.sb.WriteByte('*')
	case item.QualifiedStar != "":
		p.sb.WriteString(p.ident(item.QualifiedStar) + ".*")
	default:
		p.sb.WriteString(p.printExpr(item.Expr))
	}
	if item.Alias != "" {
		p.space()
		p.writeKw("as")
		p.space()
		p.sb.WriteString(p.ident(item.Alias))
	}
}

func (p *printer) printFromClause(f *ast.FromClause) {
	p.writeKw("from")
	p.space()
	p.sb.WriteString(p.printSource(f.Source))
	var order map[string]int
	if p.opts.JoinConditionOrderByDeclaration {
		order = declarationOrder(f)
	}
	for i := range f.Joins {
		j := f.Joins[i]
		if order != nil && j.Condition != nil && j.Condition.On != nil {
			if norm, changed := normalizeOnOperands(j.Condition.On, order); changed {
				j.Condition = &ast.JoinCondition{On: norm}
			}
		}
		p.printJoin(&j)
	}
}

// declarationOrder maps each FROM source's alias and table name to its
// position in declaration order.
func declarationOrder(f *ast.FromClause) map[string]int {
	order := map[string]int{}
	add := func(s ast.Source, i int) {
		if ts, ok := s.(*ast.TableSource); ok {
			if ts.Alias != "" {
				order[ts.Alias] = i
			}
			order[ts.Name.Name] = i
		}
	}
	add(f.Source, 0)
	for i := range f.Joins {
		add(f.Joins[i].Source, i+1)
	}
	return order
}

// normalizeOnOperands flips `ON a = b` so the operand whose table was
// declared first in FROM is on the left.
func normalizeOnOperands(e ast.Expr, order map[string]int) (ast.Expr, bool) {
	b, ok := e.(*ast.BinaryExpr)
	if !ok || b.Op != ast.OpEq {
		return e, false
	}
	l, lok := b.Left.(*ast.ColumnReference)
	r, rok := b.Right.(*ast.ColumnReference)
	if !lok || !rok || len(l.Qualified.Namespaces) == 0 || len(r.Qualified.Namespaces) == 0 {
		return e, false
	}
	li, lfound := order[l.Qualified.Namespaces[0].Name]
	ri, rfound := order[r.Qualified.Namespaces[0].Name]
	if lfound && rfound && ri < li {
		return &ast.BinaryExpr{Left: r, Op: ast.OpEq, Right: l}, true
	}
	return e, false
}

func (p *printer) printJoin(j *ast.Join) {
	if p.opts.JoinOneLine {
		p.space()
	} else {
		p.nl()
	}
	if j.Lateral {
		p.writeKw("lateral")
		p.space()
	}
	switch j.JoinType {
	case ast.JoinInner:
		p.writeKw("join")
	case ast.JoinLeft:
		p.writeKw("left join")
	case ast.JoinRight:
		p.writeKw("right join")
	case ast.JoinFull:
		p.writeKw("full join")
	case ast.JoinCross:
		p.writeKw("cross join")
	}
	p.space()
	p.sb.WriteString(p.printSource(j.Source))
	if j.Condition != nil {
		p.space()
		if j.Condition.On != nil {
			p.writeKw("on")
			p.space()
			p.sb.WriteString(p.printExpr(j.Condition.On))
		} else {
			p.writeKw("using")
			p.sb.WriteByte('(')
			for i, c := range j.Condition.Using {
				if i > 0 {
					p.sb.WriteString(", ")
				}
				p.sb.WriteString(p.ident(c))
			}
			p.sb.WriteByte(')')
		}
	}
}

func (p *printer) printSource(s ast.Source) string {
	switch v := s.(type) {
	case *ast.TableSource:
		out := p.qualifiedIdent(v.Namespaces, v.Name.Name)
		if v.Alias != "" {
			out += " " + p.kw("as") + " " + p.ident(v.Alias)
		}
		return out
	case *ast.SubQuerySource:
		sub := &printer{opts: p.opts, indent: p.indent + 1, paramIndex: p.paramIndex}
		sub.printQuery(v.Query)
		body := strings.TrimSpace(sub.sb.String())
		if p.opts.SubqueryOneLine {
			body = oneLine(body, p.opts.Newline)
		}
		out := "(" + body + ")"
		if v.Alias != "" {
			out += " " + p.kw("as") + " " + p.ident(v.Alias)
		}
		return out
	case *ast.FunctionSource:
		out := p.printExpr(&v.Call)
		if v.Alias != "" {
			out += " " + p.kw("as") + " " + p.ident(v.Alias)
			if len(v.Columns) > 0 {
				cols := make([]string, len(v.Columns))
				for i, c := range v.Columns {
					cols[i] = p.ident(c)
				}
				out += "(" + strings.Join(cols, ", ") + ")"
			}
		}
		return out
	case *ast.ValuesSource:
		sub := &printer{opts: p.opts, indent: p.indent, paramIndex: p.paramIndex}
		sub.printValuesQuery(v.Query)
		out := "(" + strings.TrimSpace(sub.sb.String()) + ")"
		if v.Alias != "" {
			out += " " + p.kw("as") + " " + p.ident(v.Alias)
			if len(v.Columns) > 0 {
				cols := make([]string, len(v.Columns))
				for i, c := range v.Columns {
					cols[i] = p.ident(c)
				}
				out += "(" + strings.Join(cols, ", ") + ")"
			}
		}
		return out
	case *ast.ParenthesizedSource:
		inner := p.printSource(v.Source)
		return "(" + inner + ")"
	case *ast.JoinedSource:
		sub := &printer{opts: p.opts, indent: p.indent, paramIndex: p.paramIndex}
		sub.sb.WriteString(sub.printSource(v.Source))
		for i := range v.Joins {
			sub.printJoin(&v.Joins[i])
		}
		return "(" + strings.TrimSpace(sub.sb.String()) + ")"
	}
	return ""
}

func oneLine(s, newline string) string {
	s = strings.ReplaceAll(s, newline, " ")
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return strings.TrimSpace(s)
}

func (p *printer) printWhereClause(w *ast.WhereClause) {
	p.writeKw("where")
	p.space()
	p.sb.WriteString(p.printPredicate(w.Predicate))
}

// printPredicate renders a boolean expression honoring andBreak/orBreak
// layout for top-level AND/OR chains.
func (p *printer) printPredicate(e ast.Expr) string {
	if b, ok := e.(*ast.BinaryExpr); ok {
		if b.Op == ast.OpAnd {
			return p.joinChain(e, ast.OpAnd, p.kw("and"), p.opts.AndBreak)
		}
		if b.Op == ast.OpOr {
			return p.joinChain(e, ast.OpOr, p.kw("or"), p.opts.OrBreak)
		}
	}
	return p.printExpr(e)
}

// joinChain flattens a left-associative chain of the same binary
// operator and joins the operands per the break policy.
func (p *printer) joinChain(e ast.Expr, op ast.BinaryOp, kw string, brk Break) string {
	var parts []string
	var flatten func(ast.Expr)
	flatten = func(x ast.Expr) {
		if b, ok := x.(*ast.BinaryExpr); ok && b.Op == op {
			flatten(b.Left)
			flatten(b.Right)
			return
		}
		parts = append(parts, p.printExpr(x))
	}
	flatten(e)
	switch brk {
	case BreakBefore:
		nl := p.opts.Newline + strings.Repeat(p.opts.IndentChar, p.indent*p.opts.IndentSize)
		return strings.Join(parts, nl+kw+" ")
	case BreakAfter:
		nl := p.opts.Newline + strings.Repeat(p.opts.IndentChar, p.indent*p.opts.IndentSize)
		return strings.Join(parts, " "+kw+nl)
	default:
		return strings.Join(parts, " "+kw+" ")
	}
}

func (p *printer) printGroupByClause(g *ast.GroupByClause) {
	p.writeKw("group by")
	p.space()
	switch g.Grouping {
	case ast.GroupRollup:
		p.writeKw("rollup")
		p.sb.WriteByte('(')
		p.writeExprList(g.Items)
		p.sb.WriteByte(')')
	case ast.GroupCube:
		p.writeKw("cube")
		p.sb.WriteByte('(')
		p.writeExprList(g.Items)
		p.sb.WriteByte(')')
	case ast.GroupSets:
		p.writeKw("grouping sets")
		p.sb.WriteByte('(')
		for i, set := range g.Sets {
			if i > 0 {
				p.sb.WriteString(", ")
			}
			p.sb.WriteByte('(')
			p.writeExprList(set)
			p.sb.WriteByte(')')
		}
		p.sb.WriteByte(')')
	default:
		p.writeExprList(g.Items)
	}
}

func (p *printer) writeExprList(items []ast.Expr) {
	for i, e := range items {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		p.sb.WriteString(p.printExpr(e))
	}
}

func (p *printer) printOrderByClause(o *ast.OrderByClause) {
	p.writeKw("order by")
	p.space()
	for i, item := range o.Items {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		p.sb.WriteString(p.printOrderItem(item))
	}
}

func (p *printer) printOrderItem(item ast.OrderItem) string {
	out := p.printExpr(item.Expr)
	switch item.Direction {
	case ast.DirAsc:
		out += " " + p.kw("asc")
	case ast.DirDesc:
		out += " " + p.kw("desc")
	}
	switch item.Nulls {
	case ast.NullsFirst:
		out += " " + p.kw("nulls first")
	case ast.NullsLast:
		out += " " + p.kw("nulls last")
	}
	return out
}

func (p *printer) printBinaryQuery(q *ast.BinaryQuery) {
	p.emitComments(q, ast.Before, false)
	p.printQuery(q.Left)
	p.nl()
	switch q.Op {
	case ast.SetUnion:
		p.writeKw("union")
	case ast.SetUnionAll:
		p.writeKw("union all")
	case ast.SetIntersect:
		p.writeKw("intersect")
	case ast.SetExcept:
		p.writeKw("except")
	}
	p.nl()
	p.printQuery(q.Right)
	if q.OrderBy != nil {
		p.nl()
		p.printOrderByClause(q.OrderBy)
	}
	if q.Limit != nil {
		p.nl()
		p.writeKw("limit")
		p.space()
		p.sb.WriteString(p.printExpr(q.Limit.Count))
	}
	if q.Offset != nil {
		p.nl()
		p.writeKw("offset")
		p.space()
		p.sb.WriteString(p.printExpr(q.Offset.Count))
	}
}

func (p *printer) printValuesQuery(q *ast.ValuesQuery) {
	p.emitComments(q, ast.Before, false)
	p.writeKw("values")
	fns := make([]func(), len(q.Tuples))
	for i := range q.Tuples {
		t := &q.Tuples[i]
		fns[i] = func() {
			p.sb.WriteByte('(')
			for j, e := range t.Values {
				if j > 0 {
					p.sb.WriteString(", ")
				}
				p.sb.WriteString(p.printExpr(e))
			}
			p.sb.WriteByte(')')
		}
	}
	p.space()
	if p.opts.ValuesOneLine {
		p.breakJoin(",", BreakNone, fns)
		return
	}
	p.breakJoin(",", p.opts.ValuesCommaBreak, fns)
}

func (p *printer) printInsertQuery(q *ast.InsertQuery) {
	p.emitComments(q, ast.Before, false)
	p.writeKw("insert into")
	p.space()
	p.sb.WriteString(p.qualifiedIdent(q.Insert.Namespaces, q.Insert.Table.Name))
	if len(q.Insert.Columns) > 0 {
		p.sb.WriteByte('(')
		for i, c := range q.Insert.Columns {
			if i > 0 {
				p.sb.WriteString(", ")
			}
			p.sb.WriteString(p.ident(c))
		}
		p.sb.WriteByte(')')
	}
	p.space()
	p.printQuery(q.Source)
	if q.OnConflict != nil {
		p.nl()
		p.printOnConflict(q.OnConflict)
	}
	if q.Returning != nil {
		p.nl()
		p.printReturning(q.Returning)
	}
	p.emitComments(q, ast.After, true)
}

func (p *printer) printOnConflict(oc *ast.OnConflictClause) {
	p.writeKw("on conflict")
	if len(oc.Target.Columns) > 0 {
		p.space()
		p.sb.WriteByte('(')
		for i, c := range oc.Target.Columns {
			if i > 0 {
				p.sb.WriteString(", ")
			}
			p.sb.WriteString(p.ident(c))
		}
		p.sb.WriteByte(')')
	} else if oc.Target.Constraint != "" {
		p.space()
		p.writeKw("on constraint")
		p.space()
		p.sb.WriteString(p.ident(oc.Target.Constraint))
	}
	p.space()
	if oc.Action.DoNothing {
		p.writeKw("do nothing")
		return
	}
	p.writeKw("do update set")
	p.space()
	for i, item := range oc.Action.SetItems {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		p.sb.WriteString(p.ident(item.Column) + " = " + p.printExpr(item.Value))
	}
	if oc.Action.Where != nil {
		p.space()
		p.writeKw("where")
		p.space()
		p.sb.WriteString(p.printExpr(oc.Action.Where))
	}
}

func (p *printer) printReturning(r *ast.ReturningClause) {
	p.writeKw("returning")
	p.space()
	for i := range r.Items {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		p.printSelectItemInline(&r.Items[i])
	}
}

func (p *printer) printSelectItemInline(item *ast.SelectItem) {
	if item.Star {
		p.sb.WriteByte('*')
	} else {
		p.sb.WriteString(p.printExpr(item.Expr))
	}
	if item.Alias != "" {
		p.space()
		p.writeKw("as")
		p.space()
		p.sb.WriteString(p.ident(item.Alias))
	}
}

func (p *printer) printUpdateQuery(q *ast.UpdateQuery) {
	p.emitComments(q, ast.Before, false)
	if q.With != nil {
		p.printWithClause(q.With)
		p.nl()
	}
	p.writeKw("update")
	p.space()
	p.sb.WriteString(p.printSource(&q.Target))
	p.nl()
	p.writeKw("set")
	p.space()
	for i, item := range q.Set.Items {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		p.sb.WriteString(p.ident(item.Column) + " = " + p.printExpr(item.Value))
	}
	if q.From != nil {
		p.nl()
		p.printFromClause(q.From)
	}
	if q.Where != nil {
		p.nl()
		p.printWhereClause(q.Where)
	}
	if q.Returning != nil {
		p.nl()
		p.printReturning(q.Returning)
	}
	p.emitComments(q, ast.After, true)
}

func (p *printer) printCreateTableQuery(q *ast.CreateTableQuery) {
	p.emitComments(q, ast.Before, false)
	p.writeKw("create")
	if q.Temporary {
		p.space()
		p.writeKw("temporary")
	}
	p.space()
	p.writeKw("table")
	if q.IfNotExists {
		p.space()
		p.writeKw("if not exists")
	}
	p.space()
	p.sb.WriteString(p.qualifiedIdent(q.Namespaces, q.Name.Name))
	if q.Body.As != nil {
		p.space()
		p.writeKw("as")
		p.nl()
		p.printQuery(q.Body.As)
		return
	}
	p.space()
	p.sb.WriteByte('(')
	p.indent++
	first := true
	writeSep := func() {
		if !first {
			p.sb.WriteByte(',')
		}
		p.nl()
		first = false
	}
	for _, c := range q.Body.Columns {
		writeSep()
		p.printColumnDef(c)
	}
	for _, c := range q.Body.Constraints {
		writeSep()
		p.printTableConstraint(c)
	}
	p.indent--
	p.nl()
	p.sb.WriteByte(')')
}

func (p *printer) printColumnDef(c ast.ColumnDef) {
	p.sb.WriteString(p.ident(c.Name) + " " + c.Type)
	if c.PrimaryKey {
		p.space()
		p.writeKw("primary key")
	}
	if c.NotNull {
		p.space()
		p.writeKw("not null")
	}
	if c.Unique {
		p.space()
		p.writeKw("unique")
	}
	if c.Default != nil {
		p.space()
		p.writeKw("default")
		p.space()
		p.sb.WriteString(p.printExpr(c.Default))
	}
	if c.Check != nil {
		p.space()
		p.writeKw("check")
		p.sb.WriteByte('(')
		p.sb.WriteString(p.printExpr(c.Check))
		p.sb.WriteByte(')')
	}
	if c.References != nil {
		p.space()
		p.writeKw("references")
		p.space()
		p.sb.WriteString(p.qualifiedIdent(c.References.Table.Namespaces, c.References.Table.Name.Name))
		p.sb.WriteByte('(')
		p.sb.WriteString(p.ident(c.References.Column))
		p.sb.WriteByte(')')
	}
}

func (p *printer) printTableConstraint(c ast.TableConstraint) {
	if c.Name != "" {
		p.writeKw("constraint")
		p.space()
		p.sb.WriteString(p.ident(c.Name))
		p.space()
	}
	switch c.Kind {
	case ast.ConstraintPrimaryKey:
		p.writeKw("primary key")
		p.printColList(c.Columns)
	case ast.ConstraintUnique:
		p.writeKw("unique")
		p.printColList(c.Columns)
	case ast.ConstraintCheck:
		p.writeKw("check")
		p.sb.WriteByte('(')
		p.sb.WriteString(p.printExpr(c.Check))
		p.sb.WriteByte(')')
	case ast.ConstraintForeignKey:
		p.writeKw("foreign key")
		p.printColList(c.Columns)
		p.space()
		p.writeKw("references")
		p.space()
		p.sb.WriteString(p.qualifiedIdent(c.RefTable.Namespaces, c.RefTable.Name.Name))
		p.printColList(c.RefColumns)
	}
}

func (p *printer) printColList(cols []string) {
	p.sb.WriteByte('(')
	for i, c := range cols {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		p.sb.WriteString(p.ident(c))
	}
	p.sb.WriteByte(')')
}
