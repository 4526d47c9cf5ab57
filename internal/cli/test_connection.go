package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vvka-141/bulkload/internal/ui"
	"github.com/vvka-141/bulkload/pkg/bulkload"
)

var testConnectionCmd = &cobra.Command{
	Use:   "test-connection",
	Short: "Check that the target database is reachable",
	Long: `Test-connection opens a short-lived connection, runs a trivial probe
query (SELECT 1 FROM DUAL on Oracle, SELECT 1 elsewhere) and closes it.
No file is read and nothing is written.

Examples:
  bulkload test-connection --driver mysql --connection "loader:secret@tcp(db:3306)/loads"`,
	Args: cobra.NoArgs,
	RunE: runTestConnection,
}

func init() {
	rootCmd.AddCommand(testConnectionCmd)
}

func runTestConnection(cmd *cobra.Command, _ []string) error {
	verbose := getVerboseFlag(cmd)

	cfg, err := resolveSettings(cmd, loadFlags, os.Getenv)
	if err != nil {
		return err
	}

	logger, closeLog := newLogger(cfg, verbose, !loadFlags.noLogFile)
	defer closeLog()

	pipeline, err := buildPipeline(cfg, ui.NewConsole(), logger)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	if code := pipeline.TestOnly(ctx); code != bulkload.ExitSuccess {
		return fmt.Errorf("connection test failed: %w", bulkload.ErrConnectionFailed)
	}
	return nil
}
