package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/vvka-141/bulkload/pkg/bulkload"
)

// Pool settings for the *sql.DB behind each connection. Every SQLConn pins
// exactly one driver connection, so the pool never needs more than one.
const (
	maxOpenConns = 1
	maxIdleConns = 1
)

// SQLConnector implements bulkload.Connector on top of database/sql.
type SQLConnector struct {
	config  bulkload.ConnectionConfig
	dialect Dialect
	open    func(driverName, dsn string) (*sql.DB, error)
}

// NewConnector resolves the configured dialect. The connection string is
// checked by Connect, so a blank or malformed one surfaces as a failed
// connection test rather than a construction error.
func NewConnector(config bulkload.ConnectionConfig) (bulkload.Connector, error) {
	dialect, err := LookupDialect(config.Driver)
	if err != nil {
		return nil, err
	}
	return &SQLConnector{config: config, dialect: dialect, open: sql.Open}, nil
}

// Dialect returns the connector's dialect.
func (c *SQLConnector) Dialect() Dialect {
	return c.dialect
}

// Connect checks the connection string syntax, opens a pool limited to one
// connection, pins that connection and pings it. ConnectionTimeout bounds
// the whole sequence.
func (c *SQLConnector) Connect(ctx context.Context) (bulkload.Conn, error) {
	if !c.config.HasConnectionString() {
		return nil, fmt.Errorf("connection string is not configured: %w", bulkload.ErrInvalidConfig)
	}
	if err := c.dialect.ValidateDSN(c.config.ConnectionString); err != nil {
		return nil, fmt.Errorf("%w: %w", bulkload.ErrInvalidConfig, err)
	}

	if c.config.ConnectionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ConnectionTimeout)
		defer cancel()
	}

	sqlDB, err := c.open(c.dialect.DriverName, c.config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s driver: %w", c.dialect.Name, err)
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)

	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: %w", bulkload.ErrConnectionFailed, wrapConnectionError(err, c.dialect.Name))
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: %w", bulkload.ErrConnectionFailed, wrapConnectionError(err, c.dialect.Name))
	}

	return NewSQLConn(sqlDB, conn, c.dialect), nil
}

// wrapConnectionError wraps raw driver connection errors with actionable guidance.
func wrapConnectionError(err error, dialect string) error {
	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`connection refused by the %s server

Possible causes:
  - The database server or listener is not running
  - Wrong host or port in the connection string
  - Firewall blocking the connection

Original error: %w`, dialect, err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`cannot resolve the database host

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable
  - Network connection issue

Original error: %w`, err)

	case strings.Contains(errStr, "password authentication failed") ||
		strings.Contains(errStr, "ora-01017") ||
		strings.Contains(errStr, "login failed") ||
		strings.Contains(errStr, "access denied"):
		return fmt.Errorf(`authentication failed for the %s server

Possible causes:
  - Wrong password or username in the connection string
  - Account is locked or expired
  - User does not have access to the target schema

Original error: %w`, dialect, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out") ||
		strings.Contains(errStr, "deadline exceeded"):
		return fmt.Errorf(`connection timed out

Possible causes:
  - Server is overloaded or unresponsive
  - Network latency or packet loss
  - Firewall silently dropping packets
  - connection.connection_timeout is too small

Original error: %w`, err)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		return fmt.Errorf(`SSL/TLS connection error

Possible causes:
  - Server requires encryption the connection string does not enable
  - Certificate verification failed

Original error: %w`, err)

	default:
		return fmt.Errorf("failed to connect to %s database: %w", dialect, err)
	}
}
