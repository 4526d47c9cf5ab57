package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vvka-141/bulkload/internal/ui"
	"github.com/vvka-141/bulkload/pkg/bulkload"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Test the connection, then load the input file",
	Long: `Run executes the full load: connection test, shared connection,
file parsing and batched inserts. Running bulkload without a command does
the same.

Examples:
  # Load with settings from ./bulkload.yaml
  bulkload run

  # Load a file into PostgreSQL
  bulkload run --driver postgres --connection "$DATABASE_URL" \
    --schema staging --table dur_qtr --file data/dur_qtr.csv

  # Smaller transactions
  bulkload run --batch-size 250`,
	Args: cobra.NoArgs,
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runLoad(cmd *cobra.Command, _ []string) error {
	verbose := getVerboseFlag(cmd)

	cfg, err := resolveSettings(cmd, loadFlags, os.Getenv)
	if err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Application.InputFile) == "" {
		return fmt.Errorf("no input file: set --file, application.input_file or BULKLOAD_INPUT_FILE: %w", bulkload.ErrInvalidConfig)
	}

	logger, closeLog := newLogger(cfg, verbose, !loadFlags.noLogFile)
	defer closeLog()

	pipeline, err := buildPipeline(cfg, ui.NewConsole(), logger)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	if code := pipeline.Run(ctx); code != bulkload.ExitSuccess {
		return fmt.Errorf("run did not complete: %w", bulkload.ErrLoadFailed)
	}
	return nil
}

// signalContext cancels on Ctrl+C or SIGTERM so in-flight statements stop
// and the open batch rolls back.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
