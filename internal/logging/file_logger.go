package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vvka-141/bulkload/pkg/bulkload"
)

// FileLogger appends JSON lines to a daily log file, one file per
// application per day: <dir>/<app>-YYYYMMDD.log. Every line carries the
// run_id of the process that wrote it so concurrent runs can be told apart.
type FileLogger struct {
	logger zerolog.Logger
	file   *os.File
	path   string
	runID  string

	closeOnce sync.Once
	closeErr  error
}

// NewFileLogger opens (creating if needed) today's log file under dir.
// Verbose messages are written at debug level and dropped unless verbose is set.
func NewFileLogger(dir, application string, verbose bool) (*FileLogger, error) {
	return newFileLogger(dir, application, verbose, time.Now())
}

func newFileLogger(dir, application string, verbose bool, now time.Time) (*FileLogger, error) {
	if dir == "" {
		dir = bulkload.DefaultLogDirectory
	}
	if application == "" {
		application = "bulkload"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-%s.log", application, now.Format("20060102")))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	runID := uuid.NewString()
	logger := zerolog.New(file).
		Level(level).
		With().
		Timestamp().
		Str("app", application).
		Str("run_id", runID).
		Logger()

	return &FileLogger{logger: logger, file: file, path: path, runID: runID}, nil
}

// Path returns the file being written.
func (l *FileLogger) Path() string {
	return l.path
}

// RunID returns the identifier stamped on every line of this run.
func (l *FileLogger) RunID() string {
	return l.runID
}

func (l *FileLogger) Verbose(format string, args ...interface{}) {
	emit(l.logger.Debug(), format, args)
}

func (l *FileLogger) Info(format string, args ...interface{}) {
	emit(l.logger.Info(), format, args)
}

func (l *FileLogger) Warn(format string, args ...interface{}) {
	emit(l.logger.Warn(), format, args)
}

func (l *FileLogger) Error(format string, args ...interface{}) {
	emit(l.logger.Error(), format, args)
}

func emit(event *zerolog.Event, format string, args []interface{}) {
	if len(args) > 0 {
		event.Msgf(format, args...)
	} else {
		event.Msg(format)
	}
}

// Close flushes and closes the log file. Later calls return the first result.
func (l *FileLogger) Close() error {
	l.closeOnce.Do(func() {
		if err := l.file.Sync(); err != nil {
			l.closeErr = err
		}
		if err := l.file.Close(); err != nil && l.closeErr == nil {
			l.closeErr = err
		}
	})
	return l.closeErr
}

var _ bulkload.Logger = (*FileLogger)(nil)
