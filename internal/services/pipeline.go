package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/vvka-141/bulkload/pkg/bulkload"
)

const msgEmptyInput = "CSV file is empty or contains no valid records"

// PipelineConfig names the run and locates its input.
type PipelineConfig struct {
	Application string
	Version     string

	// BasePath is joined with InputFile unless InputFile is absolute.
	// Empty means the working directory.
	BasePath  string
	InputFile string
}

// InputPath returns the file the pipeline reads.
func (c PipelineConfig) InputPath() string {
	if filepath.IsAbs(c.InputFile) {
		return c.InputFile
	}
	return filepath.Join(c.BasePath, c.InputFile)
}

// Pipeline sequences a load run: test connection, share a connection,
// read the input file, load it. It holds no business logic of its own.
// Thread-Safety: NOT safe for concurrent Run() calls on the same instance.
type Pipeline struct {
	config   PipelineConfig
	manager  bulkload.ConnectionManager
	reader   bulkload.RecordReader
	loader   bulkload.BatchLoader
	reporter bulkload.Reporter
	logger   bulkload.Logger
	now      func() time.Time
}

// NewPipeline creates a Pipeline with all dependencies injected.
// Panics on nil dependencies.
func NewPipeline(
	config PipelineConfig,
	manager bulkload.ConnectionManager,
	reader bulkload.RecordReader,
	loader bulkload.BatchLoader,
	reporter bulkload.Reporter,
	logger bulkload.Logger,
) *Pipeline {
	if manager == nil {
		panic("manager cannot be nil")
	}
	if reader == nil {
		panic("reader cannot be nil")
	}
	if loader == nil {
		panic("loader cannot be nil")
	}
	if reporter == nil {
		panic("reporter cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Pipeline{
		config:   config,
		manager:  manager,
		reader:   reader,
		loader:   loader,
		reporter: reporter,
		logger:   logger,
		now:      time.Now,
	}
}

// Run executes the whole pipeline and returns the process exit code.
func (p *Pipeline) Run(ctx context.Context) int {
	return bulkload.ExitCodeForError(p.Execute(ctx).Err)
}

// TestOnly runs the connection test alone and returns the exit code.
func (p *Pipeline) TestOnly(ctx context.Context) int {
	p.reporter.Banner(p.config.Application, p.config.Version)
	defer p.release()

	if err := p.testConnection(ctx); err != nil {
		return bulkload.ExitCodeForError(err)
	}
	return bulkload.ExitSuccess
}

// Execute runs the pipeline and returns its aggregate result. The shared
// connection is released before it returns.
func (p *Pipeline) Execute(ctx context.Context) bulkload.ExecutionResult {
	started := p.now()
	p.reporter.Banner(p.config.Application, p.config.Version)
	p.logger.Info("Starting %s %s", p.config.Application, p.config.Version)
	defer p.release()

	result := p.execute(ctx)

	elapsed := p.now().Sub(started).Round(time.Millisecond)
	p.reporter.Detail("Elapsed", elapsed)
	if result.Success {
		p.logger.Info("Run finished successfully in %s: %s", elapsed, result.Message)
	} else {
		p.logger.Error("Run failed after %s: %s", elapsed, result.Message)
	}
	return result
}

func (p *Pipeline) execute(ctx context.Context) bulkload.ExecutionResult {
	if err := p.testConnection(ctx); err != nil {
		return failure("Database connection test failed", err)
	}

	p.shareConnection(ctx)

	records, err := p.readInput(ctx)
	if err != nil {
		return failure("Failed to read input file", err)
	}
	if len(records) == 0 {
		p.reporter.Warning(msgEmptyInput)
		p.logger.Warn(msgEmptyInput)
		return bulkload.ExecutionResult{Success: true, Message: msgEmptyInput}
	}

	return p.load(ctx, records)
}

func (p *Pipeline) testConnection(ctx context.Context) error {
	done := p.stage(1, "Testing database connection")

	status := p.manager.TestConnection(ctx)
	p.reporter.Detail("Tested at", status.TestedAt.Format(time.RFC3339))
	if !status.Connected {
		p.reporter.Failure("Connection test failed: %s", status.Message)
		done()
		err := status.Err
		if err == nil {
			err = errors.New(status.Message)
		}
		return fmt.Errorf("%w: %w", bulkload.ErrLoadFailed, err)
	}

	p.reporter.Success("Connection test passed")
	done()
	return nil
}

func (p *Pipeline) shareConnection(ctx context.Context) {
	done := p.stage(2, "Establishing shared connection")
	defer done()

	conn := p.manager.AcquireConnection(ctx)
	if conn == nil {
		p.reporter.Failure("Could not acquire a database connection")
		p.logger.Error("Could not acquire a database connection; loading cannot proceed")
		return
	}
	p.manager.SetShared(conn)
	p.reporter.Success("Shared connection established")
}

func (p *Pipeline) readInput(ctx context.Context) ([]bulkload.Record, error) {
	done := p.stage(3, "Reading input file")
	defer done()

	path := p.config.InputPath()
	p.reporter.Detail("File", path)

	records, err := p.reader.ReadFile(ctx, path)
	if err != nil {
		if errors.Is(err, bulkload.ErrFileNotFound) {
			p.reporter.Failure("Input file not found: %s", path)
		} else {
			p.reporter.Failure("Failed to read input file: %v", err)
		}
		return nil, fmt.Errorf("%w: %w", bulkload.ErrLoadFailed, err)
	}

	p.reporter.Detail("Records", len(records))
	if len(records) > 0 {
		p.reporter.Success("Parsed %d records", len(records))
	}
	return records, nil
}

func (p *Pipeline) load(ctx context.Context, records []bulkload.Record) bulkload.ExecutionResult {
	done := p.stage(4, "Loading records")
	defer done()

	result := p.loader.LoadAll(ctx, p.manager.GetShared(), records)
	p.reporter.Detail("Records processed", result.RecordsProcessed)

	if !result.Success {
		p.reporter.Failure("%s", result.Message)
		err := result.Err
		if err == nil {
			err = errors.New(result.Message)
		}
		return bulkload.ExecutionResult{
			Success:          false,
			Message:          result.Message,
			RecordsProcessed: result.RecordsProcessed,
			Err:              fmt.Errorf("%w: %w", bulkload.ErrLoadFailed, err),
		}
	}

	p.reporter.Success("%s", result.Message)
	return result
}

// stage reports a stage heading and returns a func logging its duration.
func (p *Pipeline) stage(number int, title string) func() {
	p.reporter.Stage(number, title)
	started := p.now()
	return func() {
		p.logger.Info("Stage %d (%s) finished in %s", number, title, p.now().Sub(started).Round(time.Millisecond))
	}
}

func (p *Pipeline) release() {
	if err := p.manager.Close(); err != nil {
		p.logger.Warn("Failed to release shared connection: %v", err)
	}
}

func failure(message string, err error) bulkload.ExecutionResult {
	return bulkload.ExecutionResult{
		Success: false,
		Message: fmt.Sprintf("%s: %v", message, err),
		Err:     err,
	}
}
