package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bulkload",
	Short: "Load delimited files into a relational table in transactional batches",
	Long: `bulkload reads a CSV file and inserts its records into schema.table,
one transaction per batch, after first checking that the database is reachable.

A run has four stages:
  1. Test the database connection
  2. Acquire the connection shared by the load
  3. Read and parse the input file
  4. Insert the records batch by batch

A failing batch is rolled back and ends the run; batches committed before
it stay committed.

Configuration precedence (highest first):
  flags > environment (BULKLOAD_*, DATABASE_URL, .env) >
  bulkload.<BULKLOAD_ENVIRONMENT>.yaml > bulkload.yaml > defaults

Exit Codes:
  0  - Success (including an empty input file)
  1  - Any failure`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runLoad,
}

// Execute runs the root command
func Execute() error {
	if isVersionFlag(os.Args[1:]) {
		printVersionInfo(os.Stdout)
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
	registerLoadFlags(rootCmd)
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
