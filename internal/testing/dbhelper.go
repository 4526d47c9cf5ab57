package testing

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/bulkload/internal/testinfra"
	"github.com/vvka-141/bulkload/pkg/bulkload"
)

// TestConnectionEnv overrides the auto-started container with an existing
// PostgreSQL server.
const TestConnectionEnv = "BULKLOAD_TEST_PG"

var (
	testContainerOnce sync.Once
	testContainerConn string
	testContainerErr  error
)

func getOrStartTestContainer() (string, error) {
	testContainerOnce.Do(func() {
		ctx := context.Background()
		container, err := testinfra.StartPostgres(ctx)
		if err != nil {
			testContainerErr = err
			return
		}
		testContainerConn = container.ConnString
	})
	return testContainerConn, testContainerErr
}

// GetTestConnectionString returns the test database connection string.
// Priority: BULKLOAD_TEST_PG env var > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv(TestConnectionEnv); connString != "" {
		return connString
	}

	connString, err := getOrStartTestContainer()
	if err != nil {
		t.Skipf("%s not set and Docker unavailable: %v", TestConnectionEnv, err)
	}
	return connString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString for convenience.
// Returns the test connection string if available, otherwise skips the test.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// NewPostgresTarget creates a throwaway schema holding the default load
// table and returns a config pointing at it, plus a pool for assertions.
// The schema is dropped when the test completes.
func NewPostgresTarget(t *testing.T, checks ...string) (bulkload.ConnectionConfig, *pgxpool.Pool) {
	t.Helper()

	connString := RequireDatabase(t)
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	schema := "bl_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	cfg := bulkload.ConnectionConfig{
		Driver:            "postgres",
		ConnectionString:  connString,
		Schema:            schema,
		Table:             strings.ToLower(bulkload.DefaultTable),
		CommandTimeout:    10 * time.Second,
		ConnectionTimeout: 10 * time.Second,
	}

	if _, err := pool.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %s", schema)); err != nil {
		pool.Close()
		t.Fatalf("Failed to create schema %s: %v", schema, err)
	}
	t.Cleanup(func() {
		if _, err := pool.Exec(context.Background(), fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schema)); err != nil {
			t.Logf("Warning: Failed to drop schema %s: %v", schema, err)
		}
		pool.Close()
	})

	if _, err := pool.Exec(ctx, LoadTableDDL(cfg.QualifiedTable(), bulkload.DefaultArity, checks...)); err != nil {
		t.Fatalf("Failed to create load table: %v", err)
	}
	return cfg, pool
}

// CountPostgresRows returns the number of rows in table.
func CountPostgresRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()

	var n int
	if err := pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}
	return n
}
