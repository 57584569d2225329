package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// Context represents the global context for commands
type Context struct {
	Verbose bool
	Quiet   bool
}

var CLI struct {
	Verbose bool `short:"v" help:"Enable verbose output"`
	Quiet   bool `short:"q" help:"Suppress diagnostic output"`

	Format  FormatCmd  `cmd:"" help:"Parse SQL and re-emit it with the configured layout"`
	Check   CheckCmd   `cmd:"" help:"Parse SQL and report the first syntax error, if any"`
	Diff    DiffCmd    `cmd:"" help:"Diff two DDL files and emit migration statements"`
	Version VersionCmd `cmd:"" help:"Show version"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run() error {
	fmt.Println("sqlkit v0.1.0")
	return nil
}

func main() {
	ctx := kong.Parse(&CLI)

	appCtx := &Context{
		Verbose: CLI.Verbose,
		Quiet:   CLI.Quiet,
	}

	err := ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
