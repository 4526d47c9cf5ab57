// Package loader inserts parsed records into the target table.
//
// Records are split into contiguous chunks of BatchSize. Each chunk runs in
// its own transaction: every record is inserted with one parameterized
// statement, then the transaction commits. Any failing insert rolls the
// chunk back and ends the load, so RecordsProcessed only ever counts
// records from committed chunks.
//
// # Batch States
//
//	Pending -> InTransaction -> Committed
//	                         -> RolledBack
package loader
