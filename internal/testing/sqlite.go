package testing

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	// registers the "sqlite" database/sql driver
	_ "modernc.org/sqlite"

	"github.com/vvka-141/bulkload/pkg/bulkload"
)

// SQLiteSchema is the schema name SQLite gives the main database file.
const SQLiteSchema = "main"

// NewSQLiteTarget creates a SQLite database in a temp dir containing the
// default load table and returns a config pointing at it, plus a separate
// handle for assertions. Each check is added as a table CHECK constraint.
func NewSQLiteTarget(t *testing.T, checks ...string) (bulkload.ConnectionConfig, *sql.DB) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "target.db")
	cfg := bulkload.ConnectionConfig{
		Driver:            "sqlite",
		ConnectionString:  path,
		Schema:            SQLiteSchema,
		Table:             bulkload.DefaultTable,
		CommandTimeout:    5 * time.Second,
		ConnectionTimeout: 5 * time.Second,
	}

	handle, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("Failed to open SQLite database: %v", err)
	}
	t.Cleanup(func() { handle.Close() })

	if _, err := handle.Exec(LoadTableDDL(cfg.QualifiedTable(), bulkload.DefaultArity, checks...)); err != nil {
		t.Fatalf("Failed to create load table: %v", err)
	}
	return cfg, handle
}

// LoadTableDDL renders a CREATE TABLE for the load table with arity text
// columns and the creation timestamp column.
func LoadTableDDL(qualifiedTable string, arity int, checks ...string) string {
	defs := make([]string, 0, arity+1+len(checks))
	for _, col := range bulkload.ColumnNames(arity) {
		defs = append(defs, col+" VARCHAR(200)")
	}
	defs = append(defs, bulkload.CreatedDateColumn+" TIMESTAMP NOT NULL")
	for _, check := range checks {
		defs = append(defs, "CHECK ("+check+")")
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", qualifiedTable, strings.Join(defs, ", "))
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, handle *sql.DB, table string) int {
	t.Helper()

	var n int
	if err := handle.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}
	return n
}
