// Package records parses delimited input files into bulkload.Record values.
//
// Input is decoded as UTF-8 (a leading byte order mark is dropped) and split
// with encoding/csv using strict quoting and variable field counts. A row
// with a stray or unterminated quote is skipped with a warning and parsing
// picks up on the next line. Quoted fields may still span lines. The first
// row is a header: cells are matched to the declared columns ignoring case,
// spaces, underscores and dashes. If no cell matches, fields are taken by
// position. Every field is trimmed, and a cell the row does not have is
// absent, which the loader binds as NULL.
package records
