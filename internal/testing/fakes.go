package testing

import (
	"context"
	"errors"
	"sync"

	"github.com/vvka-141/bulkload/pkg/bulkload"
)

// ErrFakeTxDone is returned by FakeTx once the transaction has ended.
var ErrFakeTxDone = errors.New("fake transaction already finished")

// ExecCall is one statement executed through a FakeTx.
type ExecCall struct {
	Query string
	Args  []any
}

// FakeConn is a test double for bulkload.Conn. Unset funcs succeed.
// Every transaction it begins is recorded in Txs.
type FakeConn struct {
	ProbeFunc func(ctx context.Context) (any, error)
	BeginFunc func(ctx context.Context) (bulkload.Tx, error)

	// ExecFunc is installed on every FakeTx this connection begins.
	ExecFunc func(ctx context.Context, query string, args ...any) error

	// CommitFunc is installed on every FakeTx this connection begins.
	CommitFunc func() error

	CloseFunc func() error

	mu         sync.Mutex
	closed     bool
	closeCalls int
	Txs        []*FakeTx
}

// NewFakeConn returns an open FakeConn whose probe returns 1.
func NewFakeConn() *FakeConn {
	return &FakeConn{}
}

func (c *FakeConn) Probe(ctx context.Context) (any, error) {
	if c.ProbeFunc != nil {
		return c.ProbeFunc(ctx)
	}
	return int64(1), nil
}

func (c *FakeConn) BeginTx(ctx context.Context) (bulkload.Tx, error) {
	if c.BeginFunc != nil {
		return c.BeginFunc(ctx)
	}
	tx := &FakeTx{ExecFunc: c.ExecFunc, CommitFunc: c.CommitFunc}
	c.mu.Lock()
	c.Txs = append(c.Txs, tx)
	c.mu.Unlock()
	return tx, nil
}

func (c *FakeConn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

func (c *FakeConn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.closeCalls++
	c.mu.Unlock()
	if c.CloseFunc != nil {
		return c.CloseFunc()
	}
	return nil
}

// CloseCalls returns how many times Close was called.
func (c *FakeConn) CloseCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeCalls
}

// Committed returns the number of committed transactions.
func (c *FakeConn) Committed() int {
	return c.countTx(func(tx *FakeTx) bool { return tx.Committed })
}

// RolledBack returns the number of rolled back transactions.
func (c *FakeConn) RolledBack() int {
	return c.countTx(func(tx *FakeTx) bool { return tx.RolledBack })
}

// CommittedRows returns the statements executed in committed transactions.
func (c *FakeConn) CommittedRows() []ExecCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	var rows []ExecCall
	for _, tx := range c.Txs {
		if tx.Committed {
			rows = append(rows, tx.Execs...)
		}
	}
	return rows
}

func (c *FakeConn) countTx(match func(*FakeTx) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, tx := range c.Txs {
		if match(tx) {
			n++
		}
	}
	return n
}

// FakeTx is a test double for bulkload.Tx that records what it executed.
type FakeTx struct {
	ExecFunc   func(ctx context.Context, query string, args ...any) error
	CommitFunc func() error

	Execs      []ExecCall
	Committed  bool
	RolledBack bool
}

func (t *FakeTx) Exec(ctx context.Context, query string, args ...any) error {
	if t.Committed || t.RolledBack {
		return ErrFakeTxDone
	}
	t.Execs = append(t.Execs, ExecCall{Query: query, Args: args})
	if t.ExecFunc != nil {
		return t.ExecFunc(ctx, query, args...)
	}
	return nil
}

func (t *FakeTx) Commit() error {
	if t.Committed || t.RolledBack {
		return ErrFakeTxDone
	}
	if t.CommitFunc != nil {
		if err := t.CommitFunc(); err != nil {
			return err
		}
	}
	t.Committed = true
	return nil
}

func (t *FakeTx) Rollback() error {
	if t.Committed || t.RolledBack {
		return ErrFakeTxDone
	}
	t.RolledBack = true
	return nil
}

// FakeConnector is a test double for bulkload.Connector.
// Without ConnectFunc it hands out fresh FakeConns.
type FakeConnector struct {
	ConnectFunc func(ctx context.Context) (bulkload.Conn, error)

	mu    sync.Mutex
	calls int
	Conns []*FakeConn
}

func (f *FakeConnector) Connect(ctx context.Context) (bulkload.Conn, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.ConnectFunc != nil {
		return f.ConnectFunc(ctx)
	}
	conn := NewFakeConn()
	f.mu.Lock()
	f.Conns = append(f.Conns, conn)
	f.mu.Unlock()
	return conn, nil
}

// Calls returns how many times Connect was called.
func (f *FakeConnector) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var (
	_ bulkload.Conn      = (*FakeConn)(nil)
	_ bulkload.Tx        = (*FakeTx)(nil)
	_ bulkload.Connector = (*FakeConnector)(nil)
)
