package transform

import (
	"fmt"
	"strings"

	"github.com/sqlkit-go/sqlkit/ast"
	"github.com/sqlkit-go/sqlkit/format"
	"github.com/sqlkit-go/sqlkit/parser"
	"github.com/sqlkit-go/sqlkit/tokenizer"
	"github.com/sqlkit-go/sqlkit/visitor"
)

// RenameTargetKind classifies what a Renamer found at a cursor position.
type RenameTargetKind int

const (
	RenameUnknown RenameTargetKind = iota
	RenameCTEName
	RenameAlias
)

// SqlIdentifierRenamer implements the shared rename algorithm behind
// the source's SmartRenamer/AliasRenamer/CTERenamer family: find the
// identifier at (line, column), classify it as a CTE name or a table
// alias, check the rename is conflict-free, and apply it either as a
// token-level text rewrite (PreserveFormatting) or as an AST rewrite
// followed by re-formatting.
type SqlIdentifierRenamer struct {
	PreserveFormatting bool
}

// Rename renames the identifier at (line, column) in sql to newName.
func (r SqlIdentifierRenamer) Rename(sql string, line, column int, newName string) (string, error) {
	if strings.TrimSpace(sql) == "" {
		return "", ErrEmptySQL
	}
	toks, err := tokenizer.Tokens(sql, tokenizer.Mode{})
	if err != nil {
		return "", err
	}

	target, err := identifierAt(toks, line, column)
	if err != nil {
		return "", err
	}

	q, err := parser.ParseSelect(sql)
	if err != nil {
		return "", fmt.Errorf("rename: %w", err)
	}
	sq, ok := q.(*ast.SimpleQuery)
	if !ok {
		return "", fmt.Errorf("%w: rename is only supported for simple select statements", ErrNotAnIdentifier)
	}

	kind := classify(sq, target)
	if kind == RenameUnknown {
		return "", fmt.Errorf("%w: %q", ErrNoIdentifierFound, target)
	}

	if tokenizer.IsStrictKeyword(newName) {
		return "", fmt.Errorf("%w: %q", ErrReservedWord, newName)
	}
	if err := checkConflict(sq, kind, target, newName); err != nil {
		return "", err
	}

	if r.PreserveFormatting {
		return renameByText(toks, target, newName), nil
	}
	renameInAST(sq, kind, target, newName)
	res, err := format.Format(sq, format.Default())
	if err != nil {
		return "", err
	}
	return res.SQL, nil
}

// identifierAt returns the lexeme of the significant, identifier-like
// token whose span covers (line, column), or an error if none does.
func identifierAt(toks []tokenizer.Token, line, column int) (string, error) {
	for _, t := range toks {
		if t.Kind != tokenizer.Identifier && t.Kind != tokenizer.Keyword {
			continue
		}
		if within(t, line, column) {
			return t.Lexeme, nil
		}
	}
	return "", ErrInvalidPosition
}

func within(t tokenizer.Token, line, column int) bool {
	if t.Start.Line == t.End.Line {
		return line == t.Start.Line && column >= t.Start.Column && column <= t.End.Column
	}
	if line == t.Start.Line {
		return column >= t.Start.Column
	}
	if line == t.End.Line {
		return column <= t.End.Column
	}
	return line > t.Start.Line && line < t.End.Line
}

// classify decides whether name is a CTE name or a table alias
// introduced somewhere in sq.
func classify(sq *ast.SimpleQuery, name string) RenameTargetKind {
	if sq.With != nil {
		for _, cte := range sq.With.CTEs {
			if strings.EqualFold(cte.Name, name) {
				return RenameCTEName
			}
		}
	}
	found := RenameUnknown
	visitor.Visit(sq, func(n ast.Node) {
		if ts, ok := n.(*ast.TableSource); ok && strings.EqualFold(ts.Alias, name) {
			found = RenameAlias
		}
	})
	return found
}

// checkConflict disallows renaming to an existing CTE name in the same
// WITH, a real table name in scope, or a reserved keyword (the keyword
// check runs in the caller). Alias-to-alias conflicts are intentionally
// not rejected, so a rename to an existing alias is permitted even
// though it can produce ambiguous SQL.
func checkConflict(sq *ast.SimpleQuery, kind RenameTargetKind, oldName, newName string) error {
	switch kind {
	case RenameCTEName:
		if sq.With != nil {
			for _, cte := range sq.With.CTEs {
				if strings.EqualFold(cte.Name, newName) && !strings.EqualFold(cte.Name, oldName) {
					return fmt.Errorf("%w: CTE %q already exists", ErrRenameConflict, newName)
				}
			}
		}
	case RenameAlias:
		tables := map[string]bool{}
		visitor.Visit(sq, func(n ast.Node) {
			if ts, ok := n.(*ast.TableSource); ok {
				tables[strings.ToLower(ts.Name.Name)] = true
			}
		})
		if tables[strings.ToLower(newName)] {
			return fmt.Errorf("%w: %q names a real table in scope", ErrRenameConflict, newName)
		}
	}
	return nil
}

// renameByText rewrites every bare occurrence of target (an identifier
// token not immediately preceded by a `.` member-access dot) to
// newName, preserving every other byte of the original text verbatim —
// whitespace, comments, and casing of everything else survive untouched.
func renameByText(toks []tokenizer.Token, target, newName string) string {
	var sb strings.Builder
	prevSignificant := tokenizer.Token{Kind: tokenizer.EOF}
	for _, t := range toks {
		if t.Kind == tokenizer.EOF {
			continue
		}
		if (t.Kind == tokenizer.Identifier || t.Kind == tokenizer.Keyword) &&
			strings.EqualFold(stripQuotes(t.Lexeme), target) &&
			prevSignificant.Kind != tokenizer.Dot {
			sb.WriteString(newName)
		} else {
			sb.WriteString(t.Lexeme)
		}
		if t.Kind != tokenizer.Whitespace && t.Kind != tokenizer.Newline {
			prevSignificant = t
		}
	}
	return sb.String()
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '`' && last == '`') || (first == '[' && last == ']') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// renameInAST applies the rename directly to the tree: every
// TableSource.Alias match becomes newName (and every ColumnReference
// qualified by that alias), or every CTE.Name match becomes newName
// (and every unqualified TableSource reference to it).
func renameInAST(sq *ast.SimpleQuery, kind RenameTargetKind, oldName, newName string) {
	switch kind {
	case RenameCTEName:
		if sq.With != nil {
			for i := range sq.With.CTEs {
				if strings.EqualFold(sq.With.CTEs[i].Name, oldName) {
					sq.With.CTEs[i].Name = newName
				}
			}
		}
		visitor.Visit(sq, func(n ast.Node) {
			if ts, ok := n.(*ast.TableSource); ok && len(ts.Namespaces) == 0 && strings.EqualFold(ts.Name.Name, oldName) {
				ts.Name.Name = newName
			}
		})
	case RenameAlias:
		visitor.Visit(sq, func(n ast.Node) {
			if ts, ok := n.(*ast.TableSource); ok && strings.EqualFold(ts.Alias, oldName) {
				ts.Alias = newName
			}
			if cr, ok := n.(*ast.ColumnReference); ok && len(cr.Qualified.Namespaces) > 0 {
				for i := range cr.Qualified.Namespaces {
					if strings.EqualFold(cr.Qualified.Namespaces[i].Name, oldName) {
						cr.Qualified.Namespaces[i].Name = newName
					}
				}
			}
		})
	}
}
