package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/askiada/werner/internal/config"
	"github.com/askiada/werner/pkg/pipeline"
	"github.com/askiada/werner/pkg/pipeline/runner"
)

// Execute runs werner with args and returns the exit code of the process.
// It is the only place turning an error into a message for the user.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	settings, err := config.New()
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %s\n", err)

		return ExitConfig
	}

	cmd := NewCommand(settings, func(logger *zap.Logger) runner.Runner {
		return runner.NewExecRunner(logger)
	})

	return execute(ctx, cmd, args, stdout, stderr)
}

func execute(ctx context.Context, cmd *cobra.Command, args []string, stdout, stderr io.Writer) int {
	if args == nil {
		args = []string{}
	}

	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)

	return exitCode(ctx, err, stderr)
}

func exitCode(ctx context.Context, err error, stderr io.Writer) int {
	if err == nil {
		return ExitOK
	}

	if ctx.Err() != nil {
		fmt.Fprintln(stderr, "Interrupted, the partial output was left on disk.")

		return ExitInterrupted
	}

	var cfgErr *pipeline.ConfigurationError
	if errors.As(err, &cfgErr) {
		fmt.Fprintf(stderr, "ERROR: %s\n", cfgErr.Reason)
		fmt.Fprintln(stderr, helpHint)

		return ExitConfig
	}

	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) && stageErr.Message != "" {
		fmt.Fprintf(stderr, "ERROR: %s\n", stageErr.Message)

		return ExitFailure
	}

	fmt.Fprintf(stderr, "ERROR: %s\n", err)

	return ExitFailure
}
