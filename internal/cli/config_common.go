package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/bulkload/internal/config"
	"github.com/vvka-141/bulkload/internal/db"
	"github.com/vvka-141/bulkload/internal/db/manager"
	"github.com/vvka-141/bulkload/internal/loader"
	"github.com/vvka-141/bulkload/internal/logging"
	"github.com/vvka-141/bulkload/internal/records"
	"github.com/vvka-141/bulkload/internal/services"
	"github.com/vvka-141/bulkload/pkg/bulkload"
)

// loadFlagValues holds the flags shared by every command that touches the database.
type loadFlagValues struct {
	configDir  string
	file       string
	basePath   string
	connection string
	driver     string
	schema     string
	table      string
	batchSize  int
	logDir     string
	noLogFile  bool
}

var loadFlags loadFlagValues

func registerLoadFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVarP(&loadFlags.configDir, "config", "c", ".",
		"Directory containing bulkload.yaml and optional bulkload.<env>.yaml overlays")
	f.StringVarP(&loadFlags.file, "file", "f", "",
		"Input CSV file, relative to --base-path unless absolute\n"+
			"Alternative: application.input_file or $BULKLOAD_INPUT_FILE")
	f.StringVar(&loadFlags.basePath, "base-path", "",
		"Directory the input file is resolved against (default: working directory)")
	f.StringVar(&loadFlags.connection, "connection", "",
		"Driver connection string, passed unchanged to the driver\n"+
			"Alternative: $BULKLOAD_CONNECTION_STRING or $DATABASE_URL")
	f.StringVar(&loadFlags.driver, "driver", "",
		fmt.Sprintf("Database dialect: %v (default %s)", db.SupportedDrivers(), bulkload.DefaultDriver))
	f.StringVar(&loadFlags.schema, "schema", "", "Target schema")
	f.StringVar(&loadFlags.table, "table", "", "Target table")
	f.IntVar(&loadFlags.batchSize, "batch-size", 0, "Records per transaction")
	f.StringVar(&loadFlags.logDir, "log-dir", "", "Directory for daily JSON log files")
	f.BoolVar(&loadFlags.noLogFile, "no-log-file", false, "Log to the console only")
}

// resolveSettings layers configuration: defaults, bulkload.yaml, the
// environment overlay, environment variables (after .env), then flags
// the user actually set.
func resolveSettings(cmd *cobra.Command, flags loadFlagValues, getenv func(string) string) (config.ProjectConfig, error) {
	_ = godotenv.Load(filepath.Join(flags.configDir, ".env"))

	cfg := config.Defaults()
	loaded, err := config.Load(flags.configDir)
	switch {
	case err == nil:
		cfg = *loaded
	case errors.Is(err, config.ErrConfigNotFound):
		// no file: defaults stand
	default:
		return config.ProjectConfig{}, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
	}

	if err := config.ApplyEnv(&cfg, getenv); err != nil {
		return config.ProjectConfig{}, err
	}

	changed := cmd.Flags().Changed
	if changed("file") {
		cfg.Application.InputFile = flags.file
	}
	if changed("base-path") {
		cfg.Application.BasePath = flags.basePath
	}
	if changed("connection") {
		cfg.Connection.ConnectionString = flags.connection
	}
	if changed("driver") {
		cfg.Connection.Driver = flags.driver
	}
	if changed("schema") {
		cfg.Connection.Schema = flags.schema
	}
	if changed("table") {
		cfg.Connection.TableName = flags.table
	}
	if changed("batch-size") {
		cfg.BulkLoad.BatchSize = flags.batchSize
	}
	if changed("log-dir") {
		cfg.Application.LogDirectory = flags.logDir
	}

	if err := cfg.Validate(); err != nil {
		return config.ProjectConfig{}, err
	}
	return cfg, nil
}

// newLogger builds the console logger and, unless disabled, the daily file
// logger. The returned func closes the file logger.
func newLogger(cfg config.ProjectConfig, verbose, fileLogging bool) (bulkload.Logger, func()) {
	console := logging.NewConsoleLogger(verbose)
	if !fileLogging {
		return console, func() {}
	}

	fileLogger, err := logging.NewFileLogger(cfg.Application.LogDirectory, cfg.Application.Name, verbose)
	if err != nil {
		console.Warn("File logging disabled: %v", err)
		return console, func() {}
	}
	console.Verbose("Logging to %s (run %s)", fileLogger.Path(), fileLogger.RunID())

	return logging.NewMultiLogger(console, fileLogger), func() {
		if err := fileLogger.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
		}
	}
}

// buildPipeline wires the pipeline for cfg.
func buildPipeline(cfg config.ProjectConfig, reporter bulkload.Reporter, logger bulkload.Logger) (*services.Pipeline, error) {
	connSettings := cfg.ConnectionSettings()

	connector, err := db.NewConnector(connSettings)
	if err != nil {
		return nil, err
	}
	dialect, err := db.LookupDialect(connSettings.Driver)
	if err != nil {
		return nil, err
	}
	batchLoader, err := loader.New(dialect, connSettings, cfg.BatchSettings(), logger)
	if err != nil {
		return nil, err
	}
	logger.Verbose("Insert statement: %s", batchLoader.Statement())

	appVersion := cfg.Application.Version
	if appVersion == "" {
		appVersion, _, _ = resolveVersionInfo()
	}

	return services.NewPipeline(
		services.PipelineConfig{
			Application: cfg.Application.Name,
			Version:     appVersion,
			BasePath:    cfg.Application.BasePath,
			InputFile:   cfg.Application.InputFile,
		},
		manager.New(connector, connSettings, logger),
		records.NewReader(logger),
		batchLoader,
		reporter,
		logger,
	), nil
}
