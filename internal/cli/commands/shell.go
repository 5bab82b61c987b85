package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlpad/internal/cli/output"
	"github.com/leapstack-labs/sqlpad/internal/engine"
	"github.com/leapstack-labs/sqlpad/internal/sqlexec"
)

const (
	shellPrompt         = "sqlpad> "
	shellContinuePrompt = "    ...> "
	historyFileName     = ".sqlpad_history"
)

// NewShellCommand creates the interactive shell command.
func NewShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Practice SQL interactively",
		Long: `Start an interactive SQL shell against the practice database.

Statements end with a semicolon and may span several lines. Every statement
runs the same way it does over the API: queries print their rows and other
statements print the table before and after.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			return runShell(cmd.Context(), cmdCtx)
		},
	}
}

// shell holds the REPL state that does not depend on the terminal.
type shell struct {
	db       *engine.DB
	executor *sqlexec.Executor
	agg      *sqlexec.Aggregator
	r        *output.Renderer
	buf      strings.Builder
}

func newShell(cmdCtx *CommandContext) *shell {
	return &shell{
		db:       cmdCtx.DB,
		executor: sqlexec.NewExecutor(cmdCtx.DB, cmdCtx.Logger),
		agg:      sqlexec.NewAggregator(cmdCtx.DB, cmdCtx.Cfg.SchemaConcurrency, cmdCtx.Logger),
		r:        cmdCtx.Renderer,
	}
}

func runShell(ctx context.Context, cmdCtx *CommandContext) error {
	sh := newShell(cmdCtx)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          shellPrompt,
		HistoryFile:     filepath.Join(filepath.Dir(cmdCtx.Cfg.DatabasePath), historyFileName),
		AutoComplete:    sh.completer(ctx),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmdCtx.Renderer.Writer(),
		Stderr:          cmdCtx.Renderer.ErrWriter(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	sh.r.Printf("SQLPad shell (database: %s)\n", cmdCtx.Cfg.DatabasePath)
	sh.r.Println("Type .help for commands, .quit to exit")
	sh.r.Println()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			sh.buf.Reset()
			rl.SetPrompt(shellPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if sh.handleLine(ctx, line) {
			return nil
		}
		if sh.pending() {
			rl.SetPrompt(shellContinuePrompt)
		} else {
			rl.SetPrompt(shellPrompt)
		}
	}
}

// pending reports whether a statement is waiting for its closing semicolon.
func (s *shell) pending() bool {
	return s.buf.Len() > 0
}

// handleLine feeds one input line to the shell and reports whether it asked to quit.
func (s *shell) handleLine(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if !s.pending() && strings.HasPrefix(line, ".") {
		return s.dotCommand(ctx, line)
	}

	s.buf.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		s.buf.WriteString("\n")
		return false
	}

	stmt := strings.TrimSuffix(s.buf.String(), ";")
	s.buf.Reset()

	// Failed statements are already rendered; the shell keeps going.
	if err := s.r.RenderResult(s.executor.Execute(ctx, stmt)); err != nil {
		s.r.Errorf("Error: %v", err)
	}
	s.r.Println()
	return false
}

func (s *shell) dotCommand(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printShellHelp(s.r.Writer())

	case ".tables":
		tables, err := s.db.ListTables(ctx)
		if err != nil {
			s.r.Errorf("Error: %v", err)
			break
		}
		if len(tables) == 0 {
			s.r.Println(s.r.Styles().Muted.Render("(no tables)"))
			break
		}
		for _, t := range tables {
			s.r.Println(t)
		}

	case ".schema":
		summary, err := s.agg.FullSchema(ctx)
		if err != nil {
			s.r.Errorf("Error: %v", err)
			break
		}
		if len(parts) > 1 {
			t, ok := summary[parts[1]]
			if !ok {
				s.r.Errorf("Error: table '%s' not found", parts[1])
				break
			}
			s.r.RenderTable(parts[1], t)
			break
		}
		if err := s.r.RenderSchema(summary); err != nil {
			s.r.Errorf("Error: %v", err)
		}

	case ".clear":
		s.r.Printf("\033[H\033[2J")

	default:
		s.r.Errorf("Unknown command: %s (type .help for commands)", command)
	}
	return false
}

func printShellHelp(w io.Writer) {
	help := `
Commands:
  .help            Show this help message
  .tables          List all tables
  .schema [table]  Show columns and row counts
  .clear           Clear the screen
  .quit / .exit    Exit the shell

Tips:
  - SQL statements must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completion works for table names
`
	_, _ = fmt.Fprintln(w, help)
}

// completer offers table names and dot-commands. Table lookup failures only
// cost completion.
func (s *shell) completer(ctx context.Context) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface

	if tables, err := s.db.ListTables(ctx); err == nil {
		for _, t := range tables {
			items = append(items, readline.PcItem(t))
		}
	}

	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".schema"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}
