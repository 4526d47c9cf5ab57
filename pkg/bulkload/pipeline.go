package bulkload

import "context"

// ConnectionManager tests connectivity and owns the shared connection.
type ConnectionManager interface {
	// TestConnection opens a throwaway connection and probes it.
	// Failures are reported in the status, never returned.
	TestConnection(ctx context.Context) ConnectionStatus

	// AcquireConnection opens a new connection, or returns nil on failure.
	AcquireConnection(ctx context.Context) Conn

	// SetShared replaces the shared connection, closing the previous one.
	SetShared(conn Conn)

	// GetShared returns the shared connection if it is open, otherwise nil.
	GetShared() Conn

	// Close releases the shared connection. Safe to call multiple times.
	Close() error
}

// RecordReader parses an input file into records.
type RecordReader interface {
	ReadFile(ctx context.Context, path string) ([]Record, error)
}

// BatchLoader inserts records in transactional batches.
type BatchLoader interface {
	LoadAll(ctx context.Context, conn Conn, records []Record) ExecutionResult
}
