package transform

import "github.com/sqlkit-go/sqlkit/ast"

// TableColumnResolver returns the ordered column list for a real table
// name (never an alias). Used to expand wildcards and resolve qualified
// names that the projection doesn't already spell out.
type TableColumnResolver func(tableName string) []string

// projectedColumns returns the column names a SimpleQuery's SELECT list
// exposes to the outside: the item's alias if present, else the column
// name for a bare ColumnReference/Identifier, else "" (unresolvable
// without a resolver, e.g. an unaliased expression).
func projectedColumns(q *ast.SimpleQuery, resolver TableColumnResolver) []string {
	var out []string
	for _, item := range q.Select.Items {
		switch {
		case item.Star:
			out = append(out, expandStar(q, resolver)...)
		case item.QualifiedStar != "":
			out = append(out, expandQualifiedStar(q, item.QualifiedStar, resolver)...)
		case item.Alias != "":
			out = append(out, item.Alias)
		default:
			out = append(out, bareColumnName(item.Expr))
		}
	}
	return out
}

func bareColumnName(e ast.Expr) string {
	switch v := e.(type) {
	case *ast.ColumnReference:
		return v.Qualified.Name.Name
	case *ast.Identifier:
		return v.Name
	default:
		return ""
	}
}

func expandStar(q *ast.SimpleQuery, resolver TableColumnResolver) []string {
	if q.From == nil || resolver == nil {
		return nil
	}
	var out []string
	if ts, ok := q.From.Source.(*ast.TableSource); ok {
		out = append(out, resolver(ts.Name.Name)...)
	}
	for _, j := range q.From.Joins {
		if ts, ok := j.Source.(*ast.TableSource); ok {
			out = append(out, resolver(ts.Name.Name)...)
		}
	}
	return out
}

func expandQualifiedStar(q *ast.SimpleQuery, alias string, resolver TableColumnResolver) []string {
	if q.From == nil || resolver == nil {
		return nil
	}
	tableName := resolveAliasToTable(q, alias)
	if tableName == "" {
		return nil
	}
	return resolver(tableName)
}

// resolveAliasToTable maps a FROM-position alias (or bare table name)
// back to the real table name it refers to.
func resolveAliasToTable(q *ast.SimpleQuery, alias string) string {
	if q.From == nil {
		return ""
	}
	check := func(s ast.Source) string {
		if ts, ok := s.(*ast.TableSource); ok {
			if ts.Alias == alias || (ts.Alias == "" && ts.Name.Name == alias) {
				return ts.Name.Name
			}
		}
		return ""
	}
	if name := check(q.From.Source); name != "" {
		return name
	}
	for _, j := range q.From.Joins {
		if name := check(j.Source); name != "" {
			return name
		}
	}
	return ""
}

// realTableNames lists every real table name in the query's FROM, keyed
// by the real name only (never the alias), so callers can reject
// alias-keyed filter/sort keys: qualified keys must use real table
// names, not aliases.
func realTableNames(q *ast.SimpleQuery) map[string]bool {
	out := map[string]bool{}
	if q.From == nil {
		return out
	}
	add := func(s ast.Source) {
		if ts, ok := s.(*ast.TableSource); ok {
			out[ts.Name.Name] = true
		}
	}
	add(q.From.Source)
	for _, j := range q.From.Joins {
		add(j.Source)
	}
	return out
}

// aliasNames lists every alias introduced in the query's FROM.
func aliasNames(q *ast.SimpleQuery) map[string]bool {
	out := map[string]bool{}
	if q.From == nil {
		return out
	}
	add := func(s ast.Source) {
		if ts, ok := s.(*ast.TableSource); ok && ts.Alias != "" {
			out[ts.Alias] = true
		}
	}
	add(q.From.Source)
	for _, j := range q.From.Joins {
		add(j.Source)
	}
	return out
}
