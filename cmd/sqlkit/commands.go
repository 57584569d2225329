package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/sqlkit-go/sqlkit/ast"
	"github.com/sqlkit-go/sqlkit/format"
	"github.com/sqlkit-go/sqlkit/parser"
	"github.com/sqlkit-go/sqlkit/transform"
)

// readInput reads the SQL source from a file path, or stdin when the
// path is empty or "-".
func readInput(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// parseStatement dispatches on the statement's leading keyword. Any
// statement not led by INSERT, UPDATE, CREATE or VALUES, including one
// led by WITH, is parsed as a SELECT.
func parseStatement(src string) (ast.Query, error) {
	var q ast.Query
	var err error
	switch leadingKeyword(src) {
	case "INSERT":
		q, err = parser.ParseInsert(src)
	case "UPDATE":
		q, err = parser.ParseUpdate(src)
	case "CREATE":
		q, err = parser.ParseCreateTable(src)
	case "VALUES":
		q, err = parser.ParseValues(src)
	default:
		q, err = parser.ParseSelect(src)
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

// leadingKeyword returns the first keyword of the statement, skipping
// leading comments.
func leadingKeyword(src string) string {
	s := strings.TrimSpace(src)
	for {
		switch {
		case strings.HasPrefix(s, "--"):
			if i := strings.IndexByte(s, '\n'); i >= 0 {
				s = strings.TrimSpace(s[i+1:])
				continue
			}
			return ""
		case strings.HasPrefix(s, "/*"):
			if i := strings.Index(s, "*/"); i >= 0 {
				s = strings.TrimSpace(s[i+2:])
				continue
			}
			return ""
		}
		break
	}
	end := 0
	for end < len(s) && (s[end] >= 'a' && s[end] <= 'z' || s[end] >= 'A' && s[end] <= 'Z') {
		end++
	}
	return strings.ToUpper(s[:end])
}

// FormatCmd represents the format command
type FormatCmd struct {
	Input   string `arg:"" optional:"" help:"SQL file to format (stdin if omitted)" type:"path"`
	Profile string `help:"YAML format profile file" short:"p" type:"path"`

	KeywordCase     string `help:"Keyword case: lower, upper, preserve"`
	CommaBreak      string `help:"Comma placement: none, before, after"`
	AndBreak        string `help:"AND placement: none, before, after"`
	IndentSize      int    `help:"Indent width in spaces"`
	CommentStyle    string `help:"Comment style: block, smart"`
	WithClauseStyle string `help:"WITH layout: standard, cte-oneline, full-oneline"`
	NoComments      bool   `help:"Strip comments from the output"`
}

// Run executes the format command
func (cmd *FormatCmd) Run(ctx *Context) error {
	src, err := readInput(cmd.Input)
	if err != nil {
		return err
	}

	profile := format.Profile{}
	if cmd.Profile != "" {
		data, err := os.ReadFile(cmd.Profile)
		if err != nil {
			return fmt.Errorf("failed to read profile: %w", err)
		}
		profile, err = format.LoadProfile(data)
		if err != nil {
			return err
		}
		if ctx.Verbose {
			color.Blue("Loaded profile from %s", cmd.Profile)
		}
	}
	if cmd.KeywordCase != "" {
		profile.KeywordCase = cmd.KeywordCase
	}
	if cmd.CommaBreak != "" {
		profile.CommaBreak = cmd.CommaBreak
	}
	if cmd.AndBreak != "" {
		profile.AndBreak = cmd.AndBreak
	}
	if cmd.IndentSize > 0 {
		profile.IndentSize = cmd.IndentSize
	}
	if cmd.CommentStyle != "" {
		profile.CommentStyle = cmd.CommentStyle
	}
	if cmd.WithClauseStyle != "" {
		profile.WithClauseStyle = cmd.WithClauseStyle
	}
	opts, err := profile.Options()
	if err != nil {
		return err
	}
	if cmd.NoComments {
		opts.ExportComment = false
	}

	q, err := parseStatement(src)
	if err != nil {
		return err
	}
	res, err := format.Format(q, opts)
	if err != nil {
		return err
	}
	fmt.Println(res.SQL)
	return nil
}

// CheckCmd represents the check command
type CheckCmd struct {
	Input string `arg:"" optional:"" help:"SQL file to check (stdin if omitted)" type:"path"`
}

// Run executes the check command
func (cmd *CheckCmd) Run(ctx *Context) error {
	src, err := readInput(cmd.Input)
	if err != nil {
		return err
	}
	if _, err := parseStatement(src); err != nil {
		return err
	}
	if !ctx.Quiet {
		color.Green("OK")
	}
	return nil
}

// DiffCmd represents the diff command
type DiffCmd struct {
	Current  string `arg:"" help:"DDL file describing the current schema" type:"path"`
	Expected string `arg:"" help:"DDL file describing the expected schema" type:"path"`

	DropColumns          bool `help:"Emit DROP COLUMN for columns absent from the expected schema"`
	DropConstraints      bool `help:"Emit DROP CONSTRAINT / DROP INDEX for removed constraints"`
	CheckConstraintNames bool `help:"Compare indexes and unique constraints by name"`
}

// Run executes the diff command
func (cmd *DiffCmd) Run(ctx *Context) error {
	current, err := loadSchema(cmd.Current)
	if err != nil {
		return err
	}
	expected, err := loadSchema(cmd.Expected)
	if err != nil {
		return err
	}

	gen := transform.DDLDiffGenerator{Options: transform.DDLDiffOptions{
		CheckConstraintNames: cmd.CheckConstraintNames,
		DropColumns:          cmd.DropColumns,
		DropConstraints:      cmd.DropConstraints,
	}}
	stmts, err := gen.Diff(current, expected)
	if err != nil {
		return err
	}
	if len(stmts) == 0 {
		if !ctx.Quiet {
			color.Green("Schemas are identical")
		}
		return nil
	}
	for _, s := range stmts {
		fmt.Println(s + ";")
	}
	return nil
}

// loadSchema parses every CREATE TABLE statement in a semicolon-
// separated DDL file.
func loadSchema(path string) (transform.Schema, error) {
	src, err := readInput(path)
	if err != nil {
		return transform.Schema{}, err
	}
	var schema transform.Schema
	for _, stmt := range strings.Split(src, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		t, err := parser.ParseCreateTable(stmt)
		if err != nil {
			return transform.Schema{}, fmt.Errorf("%s: %w", path, err)
		}
		schema.Tables = append(schema.Tables, t)
	}
	return schema, nil
}
