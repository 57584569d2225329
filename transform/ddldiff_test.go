package transform_test

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/sqlkit-go/sqlkit/ast"
	"github.com/sqlkit-go/sqlkit/parser"
	"github.com/sqlkit-go/sqlkit/transform"
)

func TestDDLDiffAddColumn(t *testing.T) {
	current, err := parser.ParseCreateTable(`CREATE TABLE users (id INT)`)
	assert.NoError(t, err)
	expected, err := parser.ParseCreateTable(`CREATE TABLE users (id INT, name TEXT)`)
	assert.NoError(t, err)

	gen := transform.DDLDiffGenerator{}
	stmts, err := gen.Diff(
		transform.Schema{Tables: []*ast.CreateTableQuery{current}},
		transform.Schema{Tables: []*ast.CreateTableQuery{expected}},
	)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(stmts))
	assert.Contains(t, stmts[0], `ALTER TABLE "users" ADD COLUMN "name" TEXT`)
}

func TestDDLDiffCreateMissingTable(t *testing.T) {
	expected, err := parser.ParseCreateTable(`CREATE TABLE orders (id INT PRIMARY KEY)`)
	assert.NoError(t, err)

	gen := transform.DDLDiffGenerator{}
	stmts, err := gen.Diff(transform.Schema{}, transform.Schema{Tables: []*ast.CreateTableQuery{expected}})
	assert.NoError(t, err)
	assert.Equal(t, 1, len(stmts))
	assert.Contains(t, stmts[0], "CREATE TABLE")
	assert.Contains(t, stmts[0], `"orders"`)
}

func TestDDLDiffDropColumnGated(t *testing.T) {
	current, err := parser.ParseCreateTable(`CREATE TABLE users (id INT, legacy TEXT)`)
	assert.NoError(t, err)
	expected, err := parser.ParseCreateTable(`CREATE TABLE users (id INT)`)
	assert.NoError(t, err)

	cs := transform.Schema{Tables: []*ast.CreateTableQuery{current}}
	es := transform.Schema{Tables: []*ast.CreateTableQuery{expected}}

	gen := transform.DDLDiffGenerator{}
	stmts, err := gen.Diff(cs, es)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(stmts))

	gen.Options.DropColumns = true
	stmts, err = gen.Diff(cs, es)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(stmts))
	assert.Contains(t, stmts[0], `ALTER TABLE "users" DROP COLUMN "legacy"`)
}

func TestDDLDiffAddConstraint(t *testing.T) {
	current, err := parser.ParseCreateTable(`CREATE TABLE users (id INT, email TEXT)`)
	assert.NoError(t, err)
	expected, err := parser.ParseCreateTable(`CREATE TABLE users (id INT, email TEXT, CONSTRAINT users_email_key UNIQUE (email))`)
	assert.NoError(t, err)

	gen := transform.DDLDiffGenerator{}
	stmts, err := gen.Diff(
		transform.Schema{Tables: []*ast.CreateTableQuery{current}},
		transform.Schema{Tables: []*ast.CreateTableQuery{expected}},
	)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(stmts))
	assert.Contains(t, stmts[0], `ALTER TABLE "users" ADD CONSTRAINT "users_email_key" UNIQUE ("email")`)
}

func TestDDLDiffUnnamedConstraintGetsSynthesizedName(t *testing.T) {
	current, err := parser.ParseCreateTable(`CREATE TABLE users (id INT)`)
	assert.NoError(t, err)
	expected, err := parser.ParseCreateTable(`CREATE TABLE users (id INT, UNIQUE (id))`)
	assert.NoError(t, err)

	gen := transform.DDLDiffGenerator{}
	stmts, err := gen.Diff(
		transform.Schema{Tables: []*ast.CreateTableQuery{current}},
		transform.Schema{Tables: []*ast.CreateTableQuery{expected}},
	)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(stmts))
	assert.Contains(t, stmts[0], `ADD CONSTRAINT "users_key_`)
}

func TestDDLDiffConstraintNameSensitivity(t *testing.T) {
	// Same unique column set under a different name: only a diff when
	// name checking is on, and primary keys stay name-insensitive.
	current, err := parser.ParseCreateTable(`CREATE TABLE t (id INT, CONSTRAINT old_name UNIQUE (id), CONSTRAINT pk_a PRIMARY KEY (id))`)
	assert.NoError(t, err)
	expected, err := parser.ParseCreateTable(`CREATE TABLE t (id INT, CONSTRAINT new_name UNIQUE (id), CONSTRAINT pk_b PRIMARY KEY (id))`)
	assert.NoError(t, err)

	cs := transform.Schema{Tables: []*ast.CreateTableQuery{current}}
	es := transform.Schema{Tables: []*ast.CreateTableQuery{expected}}

	gen := transform.DDLDiffGenerator{}
	stmts, err := gen.Diff(cs, es)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(stmts))

	gen.Options.CheckConstraintNames = true
	stmts, err = gen.Diff(cs, es)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(stmts))
	assert.Contains(t, stmts[0], `"new_name"`)
	for _, s := range stmts {
		assert.False(t, strings.Contains(s, "PRIMARY KEY"))
	}
}

func TestDDLDiffIndexes(t *testing.T) {
	cs := transform.Schema{Indexes: []transform.IndexDef{
		{Name: "ix_old", Table: "users", Columns: []string{"legacy"}},
	}}
	es := transform.Schema{Indexes: []transform.IndexDef{
		{Name: "ix_users_email", Table: "users", Columns: []string{"email"}, Unique: true},
	}}

	gen := transform.DDLDiffGenerator{Options: transform.DDLDiffOptions{DropConstraints: true}}
	stmts, err := gen.Diff(cs, es)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(stmts))
	assert.Equal(t, `CREATE UNIQUE INDEX "ix_users_email" ON "users" ("email")`, stmts[0])
	assert.Equal(t, `DROP INDEX "ix_old"`, stmts[1])
}
