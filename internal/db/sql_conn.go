package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/vvka-141/bulkload/pkg/bulkload"
)

// SQLConn adapts a dedicated *sql.Conn to the bulkload.Conn interface.
// It owns the *sql.DB it was taken from and closes both together.
type SQLConn struct {
	db      *sql.DB
	conn    *sql.Conn
	dialect Dialect

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// NewSQLConn wraps conn, taken from db, for the given dialect.
func NewSQLConn(db *sql.DB, conn *sql.Conn, dialect Dialect) *SQLConn {
	return &SQLConn{db: db, conn: conn, dialect: dialect}
}

// Dialect returns the dialect the connection speaks.
func (c *SQLConn) Dialect() Dialect {
	return c.dialect
}

// Probe runs the dialect's probe query and returns the scalar it produced.
func (c *SQLConn) Probe(ctx context.Context) (any, error) {
	if c.closed.Load() {
		return nil, sql.ErrConnDone
	}
	var result any
	if err := c.conn.QueryRowContext(ctx, c.dialect.ProbeQuery).Scan(&result); err != nil {
		return nil, err
	}
	return result, nil
}

// BeginTx starts a transaction on the dedicated connection.
func (c *SQLConn) BeginTx(ctx context.Context) (bulkload.Tx, error) {
	if c.closed.Load() {
		return nil, sql.ErrConnDone
	}
	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		c.noteError(err)
		return nil, err
	}
	return &sqlTx{tx: tx, conn: c}, nil
}

// IsOpen reports whether Close has not been called and no statement on the
// connection has failed with a dead-connection error.
func (c *SQLConn) IsOpen() bool {
	return !c.closed.Load()
}

// Close returns the connection to its pool and closes the pool.
func (c *SQLConn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		connErr := c.conn.Close()
		if errors.Is(connErr, sql.ErrConnDone) {
			connErr = nil
		}
		c.closeErr = errors.Join(connErr, c.db.Close())
	})
	return c.closeErr
}

// noteError marks the connection unusable when err says the driver
// connection is gone.
func (c *SQLConn) noteError(err error) {
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) {
		c.closed.Store(true)
	}
}

// sqlTx adapts *sql.Tx to bulkload.Tx.
type sqlTx struct {
	tx   *sql.Tx
	conn *SQLConn
}

func (t *sqlTx) Exec(ctx context.Context, query string, args ...any) error {
	_, err := t.tx.ExecContext(ctx, query, args...)
	t.conn.noteError(err)
	return err
}

func (t *sqlTx) Commit() error {
	err := t.tx.Commit()
	t.conn.noteError(err)
	return err
}

func (t *sqlTx) Rollback() error {
	return t.tx.Rollback()
}

// Verify SQLConn implements bulkload.Conn at compile time
var _ bulkload.Conn = (*SQLConn)(nil)
