package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/vvka-141/bulkload/internal/db"
	"github.com/vvka-141/bulkload/pkg/bulkload"
)

const msgConnectionUnavailable = "connection is not available for bulk loading"

// Loader inserts records in fixed-size batches, one transaction per batch.
// It never retries: the first failing batch ends the load.
type Loader struct {
	batch          bulkload.BatchConfig
	columns        []string
	statement      string
	commandTimeout time.Duration
	logger         bulkload.Logger
}

// New creates a Loader for the default columns.
func New(dialect db.Dialect, conn bulkload.ConnectionConfig, batch bulkload.BatchConfig, logger bulkload.Logger) (*Loader, error) {
	return NewWithColumns(dialect, conn, batch, bulkload.DefaultColumns(), logger)
}

// NewWithColumns creates a Loader inserting into the given columns.
// Panics if logger is nil.
func NewWithColumns(dialect db.Dialect, conn bulkload.ConnectionConfig, batch bulkload.BatchConfig, columns []string, logger bulkload.Logger) (*Loader, error) {
	if logger == nil {
		panic("logger cannot be nil")
	}
	if err := batch.Validate(); err != nil {
		return nil, err
	}
	statement, err := BuildInsert(dialect, conn.Schema, conn.Table, columns)
	if err != nil {
		return nil, err
	}
	return &Loader{
		batch:          batch,
		columns:        append([]string(nil), columns...),
		statement:      statement,
		commandTimeout: conn.CommandTimeout,
		logger:         logger,
	}, nil
}

// Statement returns the insert statement executed for every record.
func (l *Loader) Statement() string {
	return l.statement
}

// LoadAll loads records in order, BatchSize at a time, and stops at the
// first failing batch. RecordsProcessed counts committed batches only.
func (l *Loader) LoadAll(ctx context.Context, conn bulkload.Conn, records []bulkload.Record) bulkload.ExecutionResult {
	if conn == nil {
		l.logger.Error("Bulk load aborted: %s", msgConnectionUnavailable)
		return bulkload.ExecutionResult{
			Success: false,
			Message: msgConnectionUnavailable,
			Err:     fmt.Errorf("%w: %s", bulkload.ErrConnectionUnavailable, msgConnectionUnavailable),
		}
	}

	total := len(records)
	batches := (total + l.batch.BatchSize - 1) / l.batch.BatchSize
	l.logger.Verbose("Loading %d records in %d batch(es) of up to %d", total, batches, l.batch.BatchSize)

	processed := 0
	for start := 0; start < total; start += l.batch.BatchSize {
		end := min(start+l.batch.BatchSize, total)

		result := l.LoadBatch(ctx, conn, records[start:end], start+1)
		if !result.Success {
			l.logger.Error("%s (%d records committed before the failure)", result.Message, processed)
			return bulkload.ExecutionResult{
				Success:          false,
				Message:          result.Message,
				RecordsProcessed: processed,
				Err:              result.Err,
			}
		}
		processed += result.RecordsProcessed
		l.logger.Verbose("Committed records %d-%d (%d/%d)", start+1, end, processed, total)
	}

	return bulkload.ExecutionResult{
		Success:          true,
		Message:          fmt.Sprintf("Successfully bulk loaded %d records", processed),
		RecordsProcessed: processed,
	}
}

// LoadBatch inserts chunk inside one transaction. start is the 1-based
// position of the chunk's first record in the whole input. On any error
// the transaction is rolled back and no record of the chunk counts.
func (l *Loader) LoadBatch(ctx context.Context, conn bulkload.Conn, chunk []bulkload.Record, start int) bulkload.ExecutionResult {
	if conn == nil {
		return bulkload.ExecutionResult{
			Success: false,
			Message: msgConnectionUnavailable,
			Err:     fmt.Errorf("%w: %s", bulkload.ErrConnectionUnavailable, msgConnectionUnavailable),
		}
	}

	tx, err := conn.BeginTx(ctx)
	if err != nil {
		return batchFailure(start, fmt.Errorf("begin transaction: %w", err))
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			l.logger.Verbose("Rollback of batch starting at record %d returned: %v", start, rbErr)
		} else {
			l.logger.Warn("Rolled back batch starting at record %d", start)
		}
	}()

	for i, record := range chunk {
		if err := l.insert(ctx, tx, record); err != nil {
			return batchFailure(start, fmt.Errorf("record %d: %w", start+i, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return batchFailure(start, fmt.Errorf("commit: %w", err))
	}
	committed = true

	return bulkload.ExecutionResult{
		Success:          true,
		Message:          fmt.Sprintf("Batch starting at record %d committed %d records", start, len(chunk)),
		RecordsProcessed: len(chunk),
	}
}

func (l *Loader) insert(ctx context.Context, tx bulkload.Tx, record bulkload.Record) error {
	if l.commandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.commandTimeout)
		defer cancel()
	}
	return tx.Exec(ctx, l.statement, record.Values(len(l.columns))...)
}

func batchFailure(start int, err error) bulkload.ExecutionResult {
	return bulkload.ExecutionResult{
		Success:          false,
		Message:          fmt.Sprintf("Batch starting at record %d failed: %s", start, db.DescribeError(err)),
		RecordsProcessed: 0,
		Err:              fmt.Errorf("%w: batch starting at record %d: %w", bulkload.ErrBatchFailed, start, err),
	}
}

// Verify Loader implements bulkload.BatchLoader at compile time
var _ bulkload.BatchLoader = (*Loader)(nil)
