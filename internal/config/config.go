package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/bulkload/internal/db"
	"github.com/vvka-141/bulkload/pkg/bulkload"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ConfigFileName is the base configuration file looked up in a directory.
const ConfigFileName = "bulkload.yaml"

// EnvironmentVariable selects the overlay file bulkload.<env>.yaml.
const EnvironmentVariable = "BULKLOAD_ENVIRONMENT"

// DefaultEnvironment is used when EnvironmentVariable is unset.
const DefaultEnvironment = "production"

type ApplicationConfig struct {
	Name         string `yaml:"name"`
	Version      string `yaml:"version,omitempty"`
	InputFile    string `yaml:"input_file"`
	BasePath     string `yaml:"base_path,omitempty"`
	LogDirectory string `yaml:"log_directory"`
}

type ConnectionConfig struct {
	Driver            string `yaml:"driver"`
	ConnectionString  string `yaml:"connection_string"`
	Schema            string `yaml:"schema"`
	TableName         string `yaml:"table_name"`
	CommandTimeout    int    `yaml:"command_timeout"`
	ConnectionTimeout int    `yaml:"connection_timeout"`
}

type BulkLoadConfig struct {
	BatchSize    int `yaml:"batch_size"`
	MaxRetries   int `yaml:"max_retries"`
	RetryDelayMs int `yaml:"retry_delay_ms"`
}

type ProjectConfig struct {
	Application ApplicationConfig `yaml:"application"`
	Connection  ConnectionConfig  `yaml:"connection"`
	BulkLoad    BulkLoadConfig    `yaml:"bulk_load"`
}

// Defaults returns the configuration used when no file sets a value.
func Defaults() ProjectConfig {
	return ProjectConfig{
		Application: ApplicationConfig{
			Name:         "bulkload",
			LogDirectory: bulkload.DefaultLogDirectory,
		},
		Connection: ConnectionConfig{
			Driver:            bulkload.DefaultDriver,
			Schema:            bulkload.DefaultSchema,
			TableName:         bulkload.DefaultTable,
			CommandTimeout:    int(bulkload.DefaultCommandTimeout / time.Second),
			ConnectionTimeout: int(bulkload.DefaultConnectionTimeout / time.Second),
		},
		BulkLoad: BulkLoadConfig{
			BatchSize:    bulkload.DefaultBatchSize,
			MaxRetries:   bulkload.DefaultMaxRetries,
			RetryDelayMs: int(bulkload.DefaultRetryDelay / time.Millisecond),
		},
	}
}

// Load reads bulkload.yaml from dir on top of Defaults, then the overlay for
// the environment named by BULKLOAD_ENVIRONMENT when that file exists.
func Load(dir string) (*ProjectConfig, error) {
	return LoadEnvironment(dir, os.Getenv(EnvironmentVariable))
}

// LoadEnvironment is Load with an explicit environment name.
func LoadEnvironment(dir, environment string) (*ProjectConfig, error) {
	cfg := Defaults()

	if err := mergeFile(&cfg, filepath.Join(dir, ConfigFileName)); err != nil {
		return nil, err
	}

	if environment == "" {
		environment = DefaultEnvironment
	}
	overlay := filepath.Join(dir, OverlayFileName(environment))
	if err := mergeFile(&cfg, overlay); err != nil && !errors.Is(err, ErrConfigNotFound) {
		return nil, err
	}
	return &cfg, nil
}

// OverlayFileName returns bulkload.<environment>.yaml.
func OverlayFileName(environment string) string {
	return fmt.Sprintf("bulkload.%s.yaml", strings.ToLower(environment))
}

func mergeFile(cfg *ProjectConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrConfigNotFound
		}
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg from environment variables read through getenv.
// DATABASE_URL is used when BULKLOAD_CONNECTION_STRING is unset.
func ApplyEnv(cfg *ProjectConfig, getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	setString("DATABASE_URL", &cfg.Connection.ConnectionString)
	setString("BULKLOAD_CONNECTION_STRING", &cfg.Connection.ConnectionString)
	setString("BULKLOAD_DRIVER", &cfg.Connection.Driver)
	setString("BULKLOAD_SCHEMA", &cfg.Connection.Schema)
	setString("BULKLOAD_TABLE", &cfg.Connection.TableName)
	setString("BULKLOAD_INPUT_FILE", &cfg.Application.InputFile)
	setString("BULKLOAD_LOG_DIR", &cfg.Application.LogDirectory)

	if v := strings.TrimSpace(getenv("BULKLOAD_BATCH_SIZE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BULKLOAD_BATCH_SIZE %q is not a number: %w", v, bulkload.ErrInvalidConfig)
		}
		cfg.BulkLoad.BatchSize = n
	}
	return nil
}

// Validate reports every invalid setting at once. A blank connection string
// is not reported here; the connection test reports it.
func (c ProjectConfig) Validate() error {
	var errs []error

	if _, err := db.LookupDialect(c.Connection.Driver); err != nil {
		errs = append(errs, err)
	}
	if err := c.ConnectionSettings().Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.BatchSettings().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.BulkLoad.RetryDelayMs < 0 {
		errs = append(errs, fmt.Errorf("retry delay cannot be negative: %w", bulkload.ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// ConnectionSettings converts the connection section.
func (c ProjectConfig) ConnectionSettings() bulkload.ConnectionConfig {
	return bulkload.ConnectionConfig{
		Driver:            c.Connection.Driver,
		ConnectionString:  c.Connection.ConnectionString,
		Schema:            c.Connection.Schema,
		Table:             c.Connection.TableName,
		CommandTimeout:    time.Duration(c.Connection.CommandTimeout) * time.Second,
		ConnectionTimeout: time.Duration(c.Connection.ConnectionTimeout) * time.Second,
	}
}

// BatchSettings converts the bulk_load section.
func (c ProjectConfig) BatchSettings() bulkload.BatchConfig {
	return bulkload.BatchConfig{
		BatchSize:  c.BulkLoad.BatchSize,
		MaxRetries: c.BulkLoad.MaxRetries,
		RetryDelay: time.Duration(c.BulkLoad.RetryDelayMs) * time.Millisecond,
	}
}
