package bulkload

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// identifierPattern accepts unquoted SQL identifiers portable across the
// supported dialects.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$#]*$`)

// ConnectionConfig describes the target database and table.
type ConnectionConfig struct {
	// Driver selects the SQL dialect (oracle, postgres, sqlserver, mysql, sqlite)
	Driver string

	// ConnectionString is passed unchanged to the driver
	ConnectionString string

	// Schema and Table identify the target object as schema.table
	Schema string
	Table  string

	// CommandTimeout bounds each statement
	CommandTimeout time.Duration

	// ConnectionTimeout bounds opening and pinging a connection
	ConnectionTimeout time.Duration
}

// HasConnectionString reports whether a non-blank connection string is set.
func (c ConnectionConfig) HasConnectionString() bool {
	return strings.TrimSpace(c.ConnectionString) != ""
}

// QualifiedTable returns schema.table, or just table when no schema is set.
func (c ConnectionConfig) QualifiedTable() string {
	if c.Schema == "" {
		return c.Table
	}
	return c.Schema + "." + c.Table
}

// Validate checks identifiers and timeouts. A blank connection string is
// not an error here; TestConnection reports it.
func (c ConnectionConfig) Validate() error {
	var errs []error

	if c.Schema != "" && !IsValidIdentifier(c.Schema) {
		errs = append(errs, fmt.Errorf("schema %q is not a valid identifier: %w", c.Schema, ErrInvalidConfig))
	}
	if c.Table == "" {
		errs = append(errs, fmt.Errorf("table name is required: %w", ErrInvalidConfig))
	} else if !IsValidIdentifier(c.Table) {
		errs = append(errs, fmt.Errorf("table %q is not a valid identifier: %w", c.Table, ErrInvalidConfig))
	}
	if c.CommandTimeout < 0 {
		errs = append(errs, fmt.Errorf("command timeout cannot be negative: %w", ErrInvalidConfig))
	}
	if c.ConnectionTimeout < 0 {
		errs = append(errs, fmt.Errorf("connection timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// BatchConfig controls how records are chunked into transactions.
type BatchConfig struct {
	// BatchSize is the number of records per transaction (> 0)
	BatchSize int

	// MaxRetries and RetryDelay are carried from configuration but the
	// loader does not retry failed batches.
	MaxRetries int
	RetryDelay time.Duration
}

// Validate checks that BatchSize is positive.
func (c BatchConfig) Validate() error {
	var errs []error
	if c.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("batch size must be greater than zero, got %d: %w", c.BatchSize, ErrInvalidConfig))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("max retries cannot be negative: %w", ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

// IsValidIdentifier reports whether name can be used unquoted as a schema,
// table or column name.
func IsValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// ColumnNames returns COLUMN1..COLUMN{n}.
func ColumnNames(n int) []string {
	cols := make([]string, n)
	for i := range cols {
		cols[i] = fmt.Sprintf("COLUMN%d", i+1)
	}
	return cols
}

// Record is one parsed input row: an ordered list of nullable strings.
// Records are immutable once built.
type Record struct {
	fields []*string
}

// NewRecord builds a record from nullable values. The values are copied.
func NewRecord(values ...*string) Record {
	fields := make([]*string, len(values))
	for i, v := range values {
		if v != nil {
			s := *v
			fields[i] = &s
		}
	}
	return Record{fields: fields}
}

// RecordFromStrings builds a record where every field is present.
func RecordFromStrings(values ...string) Record {
	fields := make([]*string, len(values))
	for i := range values {
		s := values[i]
		fields[i] = &s
	}
	return Record{fields: fields}
}

// Len returns the record's arity.
func (r Record) Len() int {
	return len(r.fields)
}

// Field returns the i-th value and whether it is present.
// Out-of-range indexes are reported as absent.
func (r Record) Field(i int) (string, bool) {
	if i < 0 || i >= len(r.fields) || r.fields[i] == nil {
		return "", false
	}
	return *r.fields[i], true
}

// Values returns the fields as driver arguments, nil for absent fields.
// The result always has n entries; missing trailing fields are nil.
func (r Record) Values(n int) []any {
	args := make([]any, n)
	for i := 0; i < n; i++ {
		if v, ok := r.Field(i); ok {
			args[i] = v
		}
	}
	return args
}

// String renders the record for diagnostics, with <null> for absent fields.
func (r Record) String() string {
	parts := make([]string, len(r.fields))
	for i := range r.fields {
		if v, ok := r.Field(i); ok {
			parts[i] = v
		} else {
			parts[i] = "<null>"
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ExecutionResult is the outcome of a top-level operation.
type ExecutionResult struct {
	Success          bool
	Message          string
	RecordsProcessed int
	Err              error
}

// ConnectionStatus is the outcome of a connectivity test.
type ConnectionStatus struct {
	Connected bool
	Message   string
	TestedAt  time.Time
	Err       error
}
