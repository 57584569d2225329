package transform

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sqlkit-go/sqlkit/ast"
	"github.com/sqlkit-go/sqlkit/format"
)

// ddlOptions renders CREATE TABLE statements and embedded expressions
// with uppercase keywords, matching the convention DDL tooling expects.
func ddlOptions() format.Options {
	opts := format.Default()
	opts.KeywordCase = format.KeywordUpper
	return opts
}

func formatDDL(q ast.Query) (string, error) {
	res, err := format.Format(q, ddlOptions())
	if err != nil {
		return "", err
	}
	return res.SQL, nil
}

// IndexDef is a standalone index definition; the ast package has no
// CREATE INDEX query node, so DDLDiffGenerator tracks indexes as plain
// data rather than parsed statements.
type IndexDef struct {
	Name    string
	Table   string
	Columns []string
	Unique  bool
}

// Schema is one side of a DDLDiffGenerator comparison: a table's full
// body definitions plus any indexes defined on it.
type Schema struct {
	Tables  []*ast.CreateTableQuery
	Indexes []IndexDef
}

func (s Schema) table(name string) *ast.CreateTableQuery {
	for _, t := range s.Tables {
		if t.Name.Name == name {
			return t
		}
	}
	return nil
}

// DDLDiffOptions controls how name-sensitive DDLDiffGenerator's
// comparisons are and whether it emits drop statements.
type DDLDiffOptions struct {
	// CheckConstraintNames makes index and unique-constraint comparison
	// name-sensitive; primary keys are always compared by column set
	// alone, never by name.
	CheckConstraintNames bool
	DropColumns          bool
	DropConstraints      bool
}

// DDLDiffGenerator compares a current schema against an expected one
// and emits the ordered DDL statements that would bring current up to
// expected: CREATE TABLE, then per-table ADD COLUMN/ADD CONSTRAINT
// (and, when enabled, DROP COLUMN/DROP CONSTRAINT), then CREATE/DROP
// INDEX.
type DDLDiffGenerator struct {
	Options DDLDiffOptions
}

// Diff returns the ordered list of DDL statements.
func (g DDLDiffGenerator) Diff(current, expected Schema) ([]string, error) {
	var stmts []string

	for _, et := range expected.Tables {
		if current.table(et.Name.Name) == nil {
			stmt, err := g.createTableStatement(et)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, stmt)
		}
	}

	for _, et := range expected.Tables {
		ct := current.table(et.Name.Name)
		if ct == nil {
			continue
		}
		colStmts, err := g.diffColumns(et.Name.Name, ct, et)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, colStmts...)

		conStmts, err := g.diffConstraints(et.Name.Name, ct, et)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, conStmts...)
	}

	stmts = append(stmts, g.diffIndexes(current.Indexes, expected.Indexes)...)
	return stmts, nil
}

func (g DDLDiffGenerator) createTableStatement(t *ast.CreateTableQuery) (string, error) {
	res, err := formatDDL(t)
	if err != nil {
		return "", err
	}
	return res, nil
}

func (g DDLDiffGenerator) diffColumns(tableName string, current, expected *ast.CreateTableQuery) ([]string, error) {
	var stmts []string
	currentCols := map[string]ast.ColumnDef{}
	for _, c := range current.Body.Columns {
		currentCols[c.Name] = c
	}
	expectedCols := map[string]ast.ColumnDef{}
	for _, c := range expected.Body.Columns {
		expectedCols[c.Name] = c
	}

	for _, c := range expected.Body.Columns {
		if _, ok := currentCols[c.Name]; !ok {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", quoteIdent(tableName), columnDefText(c)))
		}
	}
	if g.Options.DropColumns {
		for _, c := range current.Body.Columns {
			if _, ok := expectedCols[c.Name]; !ok {
				stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", quoteIdent(tableName), quoteIdent(c.Name)))
			}
		}
	}
	return stmts, nil
}

func (g DDLDiffGenerator) diffConstraints(tableName string, current, expected *ast.CreateTableQuery) ([]string, error) {
	var stmts []string
	key := func(c ast.TableConstraint) string {
		if g.Options.CheckConstraintNames && c.Kind != ast.ConstraintPrimaryKey && c.Name != "" {
			return "name:" + c.Name
		}
		return constraintSignature(c)
	}

	currentSet := map[string]ast.TableConstraint{}
	for _, c := range current.Body.Constraints {
		currentSet[key(c)] = c
	}
	expectedSet := map[string]ast.TableConstraint{}
	for _, c := range expected.Body.Constraints {
		expectedSet[key(c)] = c
	}

	for _, c := range expected.Body.Constraints {
		if _, ok := currentSet[key(c)]; !ok {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s", quoteIdent(tableName), constraintDefText(tableName, c)))
		}
	}
	if g.Options.DropConstraints {
		for _, c := range current.Body.Constraints {
			if _, ok := expectedSet[key(c)]; !ok && c.Name != "" {
				stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", quoteIdent(tableName), quoteIdent(c.Name)))
			}
		}
	}
	return stmts, nil
}

func (g DDLDiffGenerator) diffIndexes(current, expected []IndexDef) []string {
	var stmts []string
	key := func(ix IndexDef) string {
		if g.Options.CheckConstraintNames && ix.Name != "" {
			return "name:" + ix.Name
		}
		return ix.Table + ":" + strings.Join(ix.Columns, ",")
	}

	currentSet := map[string]bool{}
	for _, ix := range current {
		currentSet[key(ix)] = true
	}
	expectedSet := map[string]bool{}
	for _, ix := range expected {
		expectedSet[key(ix)] = true
	}

	for _, ix := range expected {
		if !currentSet[key(ix)] {
			stmts = append(stmts, createIndexStatement(ix))
		}
	}
	if g.Options.DropConstraints {
		for _, ix := range current {
			if !expectedSet[key(ix)] {
				stmts = append(stmts, fmt.Sprintf("DROP INDEX %s", quoteIdent(ix.Name)))
			}
		}
	}
	return stmts
}

func createIndexStatement(ix IndexDef) string {
	unique := ""
	if ix.Unique {
		unique = "UNIQUE "
	}
	cols := make([]string, len(ix.Columns))
	for i, c := range ix.Columns {
		cols[i] = quoteIdent(c)
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)", unique, quoteIdent(ix.Name), quoteIdent(ix.Table), strings.Join(cols, ", "))
}

func constraintSignature(c ast.TableConstraint) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "kind:%d|cols:%s", c.Kind, strings.Join(c.Columns, ","))
	if c.Kind == ast.ConstraintForeignKey {
		fmt.Fprintf(&sb, "|ref:%s(%s)", c.RefTable.Name.Name, strings.Join(c.RefColumns, ","))
	}
	if c.Kind == ast.ConstraintCheck {
		sb.WriteString("|check:" + checkExprText(c.Check))
	}
	return sb.String()
}

func checkExprText(e ast.Expr) string {
	res, err := formatDDL(&ast.SimpleQuery{Select: ast.SelectClause{Items: []ast.SelectItem{{Expr: e}}}})
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(res, "SELECT ")
}

func columnDefText(c ast.ColumnDef) string {
	var sb strings.Builder
	sb.WriteString(quoteIdent(c.Name) + " " + c.Type)
	if c.NotNull {
		sb.WriteString(" NOT NULL")
	}
	if c.PrimaryKey {
		sb.WriteString(" PRIMARY KEY")
	}
	if c.Unique {
		sb.WriteString(" UNIQUE")
	}
	if c.Default != nil {
		sb.WriteString(" DEFAULT " + checkExprText(c.Default))
	}
	return sb.String()
}

// constraintDefText renders the constraint with its name in front, as
// ADD CONSTRAINT requires. Unnamed constraints get a synthesized
// `<table>_<kind>_<suffix>` name; ALTER TABLE cannot add an anonymous
// constraint.
func constraintDefText(tableName string, c ast.TableConstraint) string {
	var sb strings.Builder
	if c.Name == "" {
		sb.WriteString(quoteIdent(tableName+"_"+constraintKindWord(c.Kind)+"_"+uuid.NewString()[:8]) + " ")
	} else {
		sb.WriteString(quoteIdent(c.Name) + " ")
	}
	switch c.Kind {
	case ast.ConstraintPrimaryKey:
		sb.WriteString("PRIMARY KEY (" + quoteIdentList(c.Columns) + ")")
	case ast.ConstraintUnique:
		sb.WriteString("UNIQUE (" + quoteIdentList(c.Columns) + ")")
	case ast.ConstraintCheck:
		sb.WriteString("CHECK (" + checkExprText(c.Check) + ")")
	case ast.ConstraintForeignKey:
		sb.WriteString("FOREIGN KEY (" + quoteIdentList(c.Columns) + ") REFERENCES " +
			quoteIdent(c.RefTable.Name.Name) + " (" + quoteIdentList(c.RefColumns) + ")")
	}
	return sb.String()
}

func constraintKindWord(k ast.TableConstraintKind) string {
	switch k {
	case ast.ConstraintPrimaryKey:
		return "pkey"
	case ast.ConstraintUnique:
		return "key"
	case ast.ConstraintCheck:
		return "check"
	case ast.ConstraintForeignKey:
		return "fkey"
	default:
		return "con"
	}
}

func quoteIdentList(names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = quoteIdent(n)
	}
	return strings.Join(out, ", ")
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
