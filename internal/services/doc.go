// Package services wires the connection manager, record reader and batch
// loader into one load run.
//
// A run has four stages, reported in order:
//  1. Test the database connection (a failure ends the run)
//  2. Acquire a connection and install it as the shared connection
//  3. Read the input file (an empty file ends the run successfully)
//  4. Load the records over the shared connection
//
// Run returns 0 when every stage succeeded and 1 otherwise.
package services
