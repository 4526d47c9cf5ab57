// Package manager owns the database connection lifecycle of a load run.
//
// The manager offers three operations over a bulkload.Connector:
//   - Testing connectivity with a short-lived connection and a probe query
//   - Acquiring a connection for the caller
//   - Holding one shared connection that later stages read back
//
// # Example Usage
//
//	mgr := manager.New(connector, cfg.Connection, logger)
//	defer mgr.Close()
//
//	status := mgr.TestConnection(ctx)
//	if !status.Connected {
//	    return status.Err
//	}
//	mgr.SetShared(mgr.AcquireConnection(ctx))
//	conn := mgr.GetShared() // nil when absent or closed
//
// # Thread Safety
//
// SetShared, GetShared and Close serialize on one mutex, so at most one
// shared connection exists and replacing it always closes the old one.
// The returned connection is not itself safe for concurrent use.
package manager
