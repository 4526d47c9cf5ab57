// Package logging provides concrete implementations of the bulkload.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: Writes prefixed messages to stderr with thread-safe output
//   - FileLogger: Appends zerolog JSON lines to <dir>/<app>-YYYYMMDD.log
//   - MultiLogger: Fans each message out to several loggers
//   - NullLogger: Discards all messages (useful for testing)
//
// The CLI combines a ConsoleLogger and a FileLogger with MultiLogger so that
// the terminal and the daily log file receive the same messages.
package logging
