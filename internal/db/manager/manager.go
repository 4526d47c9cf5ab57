package manager

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vvka-141/bulkload/pkg/bulkload"
)

const (
	msgNotConfigured = "connection string is not configured"
	msgConnected     = "Connection successful"
	msgProbeNull     = "connection opened but the probe query returned no result"
)

// Manager implements bulkload.ConnectionManager on top of a Connector.
// The shared connection slot is guarded by a mutex; the connection itself
// is used by one pipeline at a time.
type Manager struct {
	connector bulkload.Connector
	config    bulkload.ConnectionConfig
	logger    bulkload.Logger
	now       func() time.Time

	mu     sync.Mutex
	shared bulkload.Conn
	closed bool
}

// New creates a Manager. Panics if connector or logger is nil.
func New(connector bulkload.Connector, config bulkload.ConnectionConfig, logger bulkload.Logger) *Manager {
	if connector == nil {
		panic("connector cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Manager{
		connector: connector,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

// TestConnection opens a throwaway connection, runs the dialect probe and
// closes the connection on every path. Errors are captured in the status.
func (m *Manager) TestConnection(ctx context.Context) bulkload.ConnectionStatus {
	if !m.config.HasConnectionString() {
		m.logger.Error("Connection test skipped: %s", msgNotConfigured)
		return bulkload.ConnectionStatus{
			Connected: false,
			Message:   msgNotConfigured,
			TestedAt:  m.now().UTC(),
			Err:       errors.New(msgNotConfigured),
		}
	}

	m.logger.Verbose("Testing %s connection to %s", m.config.Driver, m.config.QualifiedTable())

	status := m.probe(ctx)
	status.TestedAt = m.now().UTC()

	if status.Connected {
		m.logger.Info("Database connection test succeeded")
	} else {
		m.logger.Error("Database connection test failed: %s", status.Message)
	}
	return status
}

func (m *Manager) probe(ctx context.Context) bulkload.ConnectionStatus {
	conn, err := m.connector.Connect(ctx)
	if err != nil {
		return bulkload.ConnectionStatus{Message: err.Error(), Err: err}
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			m.logger.Verbose("Failed to close probe connection: %v", cerr)
		}
	}()

	probeCtx := ctx
	if m.config.CommandTimeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, m.config.CommandTimeout)
		defer cancel()
	}

	result, err := conn.Probe(probeCtx)
	if err != nil {
		return bulkload.ConnectionStatus{Message: err.Error(), Err: err}
	}
	if result == nil {
		return bulkload.ConnectionStatus{Message: msgProbeNull, Err: errors.New(msgProbeNull)}
	}
	return bulkload.ConnectionStatus{Connected: true, Message: msgConnected}
}

// AcquireConnection opens a new connection owned by the caller, or returns
// nil when the connection string is blank or opening fails.
func (m *Manager) AcquireConnection(ctx context.Context) bulkload.Conn {
	if !m.config.HasConnectionString() {
		m.logger.Error("Cannot acquire connection: %s", msgNotConfigured)
		return nil
	}

	conn, err := m.connector.Connect(ctx)
	if err != nil {
		m.logger.Error("Failed to acquire database connection: %v", err)
		return nil
	}
	m.logger.Verbose("Database connection acquired")
	return conn
}

// SetShared stores conn as the shared connection, closing the previous one
// first when it differs. A nil conn clears the slot.
func (m *Manager) SetShared(conn bulkload.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shared != nil && m.shared != conn {
		if err := m.shared.Close(); err != nil {
			m.logger.Warn("Failed to close previous shared connection: %v", err)
		}
	}
	m.shared = conn
	m.closed = false

	if conn == nil {
		m.logger.Verbose("Shared connection cleared")
	} else {
		m.logger.Verbose("Shared connection established")
	}
}

// GetShared returns the shared connection if it is set and open.
func (m *Manager) GetShared() bulkload.Conn {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shared == nil {
		m.logger.Verbose("No shared connection is set")
		return nil
	}
	if !m.shared.IsOpen() {
		m.logger.Warn("Shared connection is no longer open")
		return nil
	}
	return m.shared
}

// Close releases the shared connection. Later calls are no-ops.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	if m.shared == nil {
		return nil
	}
	err := m.shared.Close()
	m.shared = nil
	if err != nil {
		return err
	}
	m.logger.Verbose("Shared connection released")
	return nil
}

// Verify Manager implements the ConnectionManager interface at compile time
var _ bulkload.ConnectionManager = (*Manager)(nil)
