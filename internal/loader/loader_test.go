package loader

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/bulkload/internal/logging"
	testhelpers "github.com/vvka-141/bulkload/internal/testing"
	"github.com/vvka-141/bulkload/pkg/bulkload"
)

func newTestLoader(t *testing.T, batchSize int) *Loader {
	t.Helper()
	conn := bulkload.ConnectionConfig{
		Driver:         "oracle",
		Schema:         "hsicustom",
		Table:          "ccBulk_DUR_QTR_LOAD",
		CommandTimeout: time.Second,
	}
	l, err := New(mustDialect(t, "oracle"), conn, bulkload.BatchConfig{BatchSize: batchSize}, logging.NewNullLogger())
	require.NoError(t, err)
	return l
}

func TestNew_InvalidBatchSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		_, err := New(mustDialect(t, "oracle"),
			bulkload.ConnectionConfig{Table: "t"},
			bulkload.BatchConfig{BatchSize: size},
			logging.NewNullLogger())
		require.Error(t, err)
		assert.True(t, errors.Is(err, bulkload.ErrInvalidConfig))
	}
}

func TestNew_PanicsOnNilLogger(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = New(mustDialect(t, "oracle"), bulkload.ConnectionConfig{Table: "t"}, bulkload.BatchConfig{BatchSize: 1}, nil)
	})
}

func TestLoadAll_NilConnection(t *testing.T) {
	l := newTestLoader(t, 10)

	result := l.LoadAll(context.Background(), nil, testhelpers.Records(testhelpers.Rows(5, nil)))

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.RecordsProcessed)
	assert.Equal(t, "connection is not available for bulk loading", result.Message)
	assert.True(t, errors.Is(result.Err, bulkload.ErrConnectionUnavailable))
}

func TestLoadAll_AllBatchesCommit(t *testing.T) {
	l := newTestLoader(t, 1000)
	conn := testhelpers.NewFakeConn()

	result := l.LoadAll(context.Background(), conn, testhelpers.Records(testhelpers.Rows(2500, nil)))

	require.True(t, result.Success, result.Message)
	assert.Equal(t, 2500, result.RecordsProcessed)
	assert.Equal(t, "Successfully bulk loaded 2500 records", result.Message)
	assert.NoError(t, result.Err)

	require.Len(t, conn.Txs, 3)
	assert.Len(t, conn.Txs[0].Execs, 1000)
	assert.Len(t, conn.Txs[1].Execs, 1000)
	assert.Len(t, conn.Txs[2].Execs, 500)
	assert.Equal(t, 3, conn.Committed())
	assert.Equal(t, 0, conn.RolledBack())
}

func TestLoadAll_BindsFieldsPositionally(t *testing.T) {
	l := newTestLoader(t, 10)
	conn := testhelpers.NewFakeConn()
	a, c := "a", "c"
	records := []bulkload.Record{bulkload.NewRecord(&a, nil, &c)}

	result := l.LoadAll(context.Background(), conn, records)

	require.True(t, result.Success)
	rows := conn.CommittedRows()
	require.Len(t, rows, 1)
	assert.Equal(t, l.Statement(), rows[0].Query)
	assert.Equal(t, []any{"a", nil, "c", nil, nil}, rows[0].Args, "absent fields bind as NULL")
}

func TestLoadAll_StopsAtFirstFailingBatch(t *testing.T) {
	l := newTestLoader(t, 1000)
	conn := testhelpers.NewFakeConn()
	checkErr := errors.New("ORA-02290: check constraint violated")
	conn.ExecFunc = func(ctx context.Context, query string, args ...any) error {
		if args[0] == "r1004c1" {
			return checkErr
		}
		return nil
	}

	result := l.LoadAll(context.Background(), conn, testhelpers.Records(testhelpers.Rows(2500, nil)))

	assert.False(t, result.Success)
	assert.Equal(t, 1000, result.RecordsProcessed)
	assert.Contains(t, result.Message, "Batch starting at record 1001 failed")
	assert.Contains(t, result.Message, "ORA-02290")
	assert.True(t, errors.Is(result.Err, bulkload.ErrBatchFailed))
	assert.True(t, errors.Is(result.Err, checkErr))

	require.Len(t, conn.Txs, 2, "third batch must not start")
	assert.True(t, conn.Txs[0].Committed)
	assert.True(t, conn.Txs[1].RolledBack)
	assert.Len(t, conn.Txs[1].Execs, 4, "inserts stop at the failing record")
	assert.Len(t, conn.CommittedRows(), 1000)
}

func TestLoadAll_FirstBatchFails(t *testing.T) {
	l := newTestLoader(t, 2)
	conn := testhelpers.NewFakeConn()
	conn.ExecFunc = func(context.Context, string, ...any) error { return errors.New("boom") }

	result := l.LoadAll(context.Background(), conn, testhelpers.Records(testhelpers.Rows(5, nil)))

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.RecordsProcessed)
	assert.Contains(t, result.Message, "Batch starting at record 1 failed")
}

func TestLoadAll_EmptyInput(t *testing.T) {
	l := newTestLoader(t, 10)
	conn := testhelpers.NewFakeConn()

	result := l.LoadAll(context.Background(), conn, nil)

	assert.True(t, result.Success)
	assert.Equal(t, 0, result.RecordsProcessed)
	assert.Empty(t, conn.Txs)
}

func TestLoadAll_BatchSizeLargerThanInput(t *testing.T) {
	l := newTestLoader(t, 1000)
	conn := testhelpers.NewFakeConn()

	result := l.LoadAll(context.Background(), conn, testhelpers.Records(testhelpers.Rows(7, nil)))

	assert.True(t, result.Success)
	assert.Equal(t, 7, result.RecordsProcessed)
	assert.Len(t, conn.Txs, 1)
}

func TestLoadAll_ProcessedIsMultipleOfBatchSize(t *testing.T) {
	for failAt := 1; failAt <= 23; failAt++ {
		t.Run(fmt.Sprintf("fail at %d", failAt), func(t *testing.T) {
			l := newTestLoader(t, 5)
			conn := testhelpers.NewFakeConn()
			target := fmt.Sprintf("r%dc1", failAt)
			conn.ExecFunc = func(_ context.Context, _ string, args ...any) error {
				if args[0] == target {
					return errors.New("rejected")
				}
				return nil
			}

			result := l.LoadAll(context.Background(), conn, testhelpers.Records(testhelpers.Rows(23, nil)))

			require.False(t, result.Success)
			committedBatches := (failAt - 1) / 5
			assert.Equal(t, committedBatches*5, result.RecordsProcessed)
			assert.Contains(t, result.Message, fmt.Sprintf("Batch starting at record %d failed", committedBatches*5+1))
		})
	}
}

func TestLoadBatch_BeginFailure(t *testing.T) {
	l := newTestLoader(t, 10)
	conn := testhelpers.NewFakeConn()
	conn.BeginFunc = func(context.Context) (bulkload.Tx, error) { return nil, errors.New("no transaction for you") }

	result := l.LoadBatch(context.Background(), conn, testhelpers.Records(testhelpers.Rows(3, nil)), 11)

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.RecordsProcessed)
	assert.Contains(t, result.Message, "Batch starting at record 11 failed")
	assert.True(t, errors.Is(result.Err, bulkload.ErrBatchFailed))
}

func TestLoadBatch_CommitFailureRollsBack(t *testing.T) {
	l := newTestLoader(t, 10)
	conn := testhelpers.NewFakeConn()
	conn.CommitFunc = func() error { return errors.New("commit lost") }

	result := l.LoadBatch(context.Background(), conn, testhelpers.Records(testhelpers.Rows(3, nil)), 1)

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.RecordsProcessed)
	assert.Contains(t, result.Message, "commit lost")
	require.Len(t, conn.Txs, 1)
	assert.True(t, conn.Txs[0].RolledBack)
}

func TestLoadBatch_PerStatementTimeout(t *testing.T) {
	l := newTestLoader(t, 10)
	conn := testhelpers.NewFakeConn()
	conn.ExecFunc = func(ctx context.Context, _ string, _ ...any) error {
		if _, ok := ctx.Deadline(); !ok {
			return errors.New("statement ran without a deadline")
		}
		return nil
	}

	result := l.LoadBatch(context.Background(), conn, testhelpers.Records(testhelpers.Rows(2, nil)), 1)
	assert.True(t, result.Success, result.Message)
}

func TestLoadBatch_NilConnection(t *testing.T) {
	l := newTestLoader(t, 10)
	result := l.LoadBatch(context.Background(), nil, testhelpers.Records(testhelpers.Rows(1, nil)), 1)
	assert.False(t, result.Success)
	assert.True(t, errors.Is(result.Err, bulkload.ErrConnectionUnavailable))
}

func TestLoadAll_CancelledContextFailsBatch(t *testing.T) {
	l := newTestLoader(t, 10)
	conn := testhelpers.NewFakeConn()
	conn.ExecFunc = func(ctx context.Context, _ string, _ ...any) error { return ctx.Err() }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := l.LoadAll(ctx, conn, testhelpers.Records(testhelpers.Rows(3, nil)))

	assert.False(t, result.Success)
	assert.True(t, errors.Is(result.Err, context.Canceled))
	assert.Equal(t, 0, conn.Committed())
}
