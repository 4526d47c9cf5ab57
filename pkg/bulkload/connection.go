package bulkload

import "context"

// Conn is a single live database connection.
//
// Thread-Safety: a Conn is used by one pipeline at a time. Sharing across
// goroutines goes through ConnectionManager, which serializes access to
// the slot holding it, not to the connection itself.
type Conn interface {
	// Probe runs the dialect's trivial round-trip query and returns its
	// scalar result (nil when the driver returned NULL).
	Probe(ctx context.Context) (any, error)

	// BeginTx starts a transaction scoped to this connection.
	BeginTx(ctx context.Context) (Tx, error)

	// IsOpen reports whether the connection is usable.
	IsOpen() bool

	// Close releases the connection. Calling Close more than once is safe.
	Close() error
}

// Tx is a transaction on a Conn.
type Tx interface {
	// Exec executes a statement inside the transaction.
	Exec(ctx context.Context, query string, args ...any) error

	// Commit makes every statement of the transaction durable.
	Commit() error

	// Rollback discards the transaction. It is safe to call after Commit;
	// the driver's "already committed" error is returned and ignored by callers.
	Rollback() error
}

// Connector opens connections to the configured database.
// Different implementations handle different drivers.
type Connector interface {
	// Connect opens a new connection. The caller owns it and must Close it.
	Connect(ctx context.Context) (Conn, error)
}
