package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/vvka-141/bulkload/pkg/bulkload"
)

type mockManager struct {
	status   bulkload.ConnectionStatus
	acquired bulkload.Conn

	mu         sync.Mutex
	shared     bulkload.Conn
	acquires   int
	closeCalls int
	closeErr   error
}

func (m *mockManager) TestConnection(_ context.Context) bulkload.ConnectionStatus {
	return m.status
}

func (m *mockManager) AcquireConnection(_ context.Context) bulkload.Conn {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acquires++
	return m.acquired
}

func (m *mockManager) SetShared(conn bulkload.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shared = conn
}

func (m *mockManager) GetShared() bulkload.Conn {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shared == nil || !m.shared.IsOpen() {
		return nil
	}
	return m.shared
}

func (m *mockManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeCalls++
	return m.closeErr
}

type mockReader struct {
	records []bulkload.Record
	err     error
	paths   []string
}

func (m *mockReader) ReadFile(_ context.Context, path string) ([]bulkload.Record, error) {
	m.paths = append(m.paths, path)
	return m.records, m.err
}

type mockLoader struct {
	loadFunc func(conn bulkload.Conn, records []bulkload.Record) bulkload.ExecutionResult
	calls    int
	lastConn bulkload.Conn
}

func (m *mockLoader) LoadAll(_ context.Context, conn bulkload.Conn, records []bulkload.Record) bulkload.ExecutionResult {
	m.calls++
	m.lastConn = conn
	if m.loadFunc != nil {
		return m.loadFunc(conn, records)
	}
	return bulkload.ExecutionResult{
		Success:          true,
		Message:          fmt.Sprintf("Successfully bulk loaded %d records", len(records)),
		RecordsProcessed: len(records),
	}
}

// recordingReporter keeps every line a Reporter would have printed.
type recordingReporter struct {
	stages   []string
	success  []string
	failures []string
	warnings []string
	details  map[string]interface{}
}

func newRecordingReporter() *recordingReporter {
	return &recordingReporter{details: make(map[string]interface{})}
}

func (r *recordingReporter) Banner(string, string) {}

func (r *recordingReporter) Stage(number int, title string) {
	r.stages = append(r.stages, fmt.Sprintf("%d %s", number, title))
}

func (r *recordingReporter) Success(format string, args ...interface{}) {
	r.success = append(r.success, fmt.Sprintf(format, args...))
}

func (r *recordingReporter) Failure(format string, args ...interface{}) {
	r.failures = append(r.failures, fmt.Sprintf(format, args...))
}

func (r *recordingReporter) Warning(format string, args ...interface{}) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

func (r *recordingReporter) Detail(label string, value interface{}) {
	r.details[label] = value
}

var (
	_ bulkload.ConnectionManager = (*mockManager)(nil)
	_ bulkload.RecordReader      = (*mockReader)(nil)
	_ bulkload.BatchLoader       = (*mockLoader)(nil)
	_ bulkload.Reporter          = (*recordingReporter)(nil)
)
