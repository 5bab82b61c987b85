package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlpad/internal/cli/output"
	"github.com/leapstack-labs/sqlpad/internal/sqlexec"
)

// ErrStatementFailed is returned when a statement produced an error result.
// The result itself has already been rendered.
var ErrStatementFailed = errors.New("statement failed")

// ExecOptions holds options for the exec command.
type ExecOptions struct {
	Input string
	stdin io.Reader
}

// NewExecCommand creates the exec command.
func NewExecCommand() *cobra.Command {
	opts := &ExecOptions{}

	cmd := &cobra.Command{
		Use:   "exec [SQL]",
		Short: "Run one SQL statement against the practice database",
		Long: `Run one SQL statement and print what it returned or changed.

SELECT statements print their rows. Any other statement prints the target
table before and after it ran. The SQL comes from the arguments, from --input,
or from standard input when it is piped.`,
		Example: `  sqlpad exec "SELECT * FROM employees"
  sqlpad exec "INSERT INTO departments (name) VALUES ('Legal')" --output json
  echo "DROP TABLE employees" | sqlpad exec`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	return cmd
}

func runExec(cmd *cobra.Command, args []string, opts *ExecOptions) error {
	sqlText, err := readStatement(args, opts)
	if err != nil {
		return err
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	executor := sqlexec.NewExecutor(cmdCtx.DB, cmdCtx.Logger)
	return executeAndRender(cmd, cmdCtx.Renderer, executor, sqlText)
}

// readStatement picks the SQL source: arguments, then --input, then piped stdin.
func readStatement(args []string, opts *ExecOptions) (string, error) {
	switch {
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(content), nil
	}

	stdin := opts.stdin
	if stdin == nil {
		if output.IsTerminal(os.Stdin) {
			return "", fmt.Errorf("no SQL given (pass it as an argument, with --input, or on stdin)")
		}
		stdin = os.Stdin
	}
	content, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(content), nil
}

func executeAndRender(cmd *cobra.Command, r *output.Renderer, executor *sqlexec.Executor, sqlText string) error {
	result := executor.Execute(cmd.Context(), sqlText)
	if err := r.RenderResult(result); err != nil {
		return err
	}
	if result.Type() == sqlexec.TypeError {
		return ErrStatementFailed
	}
	return nil
}
