// Package repl is the interactive console. Statements accumulate across
// lines until a semicolon, then run through the executor; backslash
// commands handle the rest.
package repl

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/settledb/settle-db/internal/executor"
	"github.com/settledb/settle-db/internal/storage"
	"github.com/settledb/settle-db/internal/types"
)

const banner = `settle-db console
Type SQL statements terminated by ';', or \help for commands.`

const helpText = `Commands:
  \help           show this help
  \tables         list tables
  \desc <table>   show a table's schema
  \export         write a parquet snapshot
  \exit, \quit    leave the console

Statements end with ';' and may span multiple lines.`

// Console reads statements from the terminal and prints results.
type Console struct {
	exec        *executor.Executor
	store       *storage.Store
	snapshotDir string
	out         io.Writer
}

// New returns a Console over the given executor and store. Snapshots
// from \export land in snapshotDir.
func New(exec *executor.Executor, store *storage.Store, snapshotDir string) *Console {
	return &Console{
		exec:        exec,
		store:       store,
		snapshotDir: snapshotDir,
		out:         os.Stdout,
	}
}

// Run reads lines until EOF or an exit command. Ctrl-C discards the
// statement being typed instead of quitting.
func (c *Console) Run() error {
	rl, err := readline.New("sql> ")
	if err != nil {
		return fmt.Errorf("open readline: %w", err)
	}
	defer rl.Close()

	fmt.Fprintln(c.out, bannerStyle.Render(banner))

	var pending []string
	for {
		if len(pending) > 0 {
			rl.SetPrompt(" ... ")
		} else {
			rl.SetPrompt("sql> ")
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			pending = pending[:0]
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read line: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if len(pending) == 0 && strings.HasPrefix(line, `\`) {
			if quit := c.runCommand(line); quit {
				return nil
			}
			continue
		}

		pending = append(pending, line)
		stmt := strings.Join(pending, " ")
		if !strings.Contains(stmt, ";") {
			continue
		}
		pending = pending[:0]

		c.printResult(c.exec.Execute(stmt))
	}
}

// runCommand handles one backslash command and reports whether the
// console should exit.
func (c *Console) runCommand(line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case `\exit`, `\quit`:
		fmt.Fprintln(c.out, "Bye.")
		return true
	case `\help`:
		fmt.Fprintln(c.out, helpText)
	case `\tables`:
		c.printResult(c.exec.ListTables())
	case `\desc`:
		if len(fields) < 2 {
			fmt.Fprintln(c.out, errorStyle.Render("Usage: \\desc <table>"))
			break
		}
		c.printResult(c.exec.Describe(fields[1]))
	case `\export`:
		if err := c.store.ExportParquet(c.snapshotDir); err != nil {
			fmt.Fprintln(c.out, errorStyle.Render("Export failed: "+err.Error()))
			break
		}
		fmt.Fprintln(c.out, successStyle.Render("Snapshot written to "+c.snapshotDir))
	default:
		fmt.Fprintf(c.out, "%s\n", errorStyle.Render("Unknown command "+fields[0]+"; try \\help"))
	}
	return false
}

func (c *Console) printResult(res executor.Result) {
	if !res.Success {
		fmt.Fprintln(c.out, errorStyle.Render("Error: "+res.Message))
		return
	}

	fmt.Fprintln(c.out, successStyle.Render(res.Message))

	switch data := res.Data.(type) {
	case []types.Row:
		if len(data) > 0 {
			fmt.Fprintln(c.out, FormatRows(data))
		}
	case types.Schema:
		fmt.Fprintln(c.out, FormatSchema(data))
	case []string:
		for _, name := range data {
			fmt.Fprintln(c.out, "  "+name)
		}
	}
}
