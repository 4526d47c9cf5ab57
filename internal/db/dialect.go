package db

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/microsoft/go-mssqldb/msdsn"

	// database/sql drivers registered for the dialects below
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
	_ "github.com/sijms/go-ora/v2"
	_ "modernc.org/sqlite"

	"github.com/vvka-141/bulkload/pkg/bulkload"
)

// Dialect captures the SQL differences between the supported databases.
type Dialect struct {
	// Name is the configuration value selecting this dialect
	Name string

	// DriverName is the database/sql driver registered for it
	DriverName string

	// ProbeQuery is a table-less round trip returning a single non-null scalar
	ProbeQuery string

	// Now is the server-side current timestamp expression
	Now string

	placeholder func(n int) string
	validateDSN func(dsn string) error
}

// Placeholder returns the bind marker for the n-th (1-based) parameter.
func (d Dialect) Placeholder(n int) string {
	return d.placeholder(n)
}

// ValidateDSN performs an offline syntax check of the connection string
// when the driver exposes one.
func (d Dialect) ValidateDSN(dsn string) error {
	if d.validateDSN == nil {
		return nil
	}
	if err := d.validateDSN(dsn); err != nil {
		return fmt.Errorf("invalid %s connection string: %w", d.Name, err)
	}
	return nil
}

var dialects = map[string]Dialect{
	"oracle": {
		Name:        "oracle",
		DriverName:  "oracle",
		ProbeQuery:  "SELECT 1 FROM DUAL",
		Now:         "SYSTIMESTAMP",
		placeholder: func(n int) string { return fmt.Sprintf(":%d", n) },
	},
	"postgres": {
		Name:        "postgres",
		DriverName:  "pgx",
		ProbeQuery:  "SELECT 1",
		Now:         "CURRENT_TIMESTAMP",
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		validateDSN: func(dsn string) error {
			_, err := pgx.ParseConfig(dsn)
			return err
		},
	},
	"sqlserver": {
		Name:        "sqlserver",
		DriverName:  "sqlserver",
		ProbeQuery:  "SELECT 1",
		Now:         "SYSDATETIME()",
		placeholder: func(n int) string { return fmt.Sprintf("@p%d", n) },
		validateDSN: func(dsn string) error {
			_, err := msdsn.Parse(dsn)
			return err
		},
	},
	"mysql": {
		Name:        "mysql",
		DriverName:  "mysql",
		ProbeQuery:  "SELECT 1",
		Now:         "CURRENT_TIMESTAMP",
		placeholder: func(int) string { return "?" },
		validateDSN: func(dsn string) error {
			_, err := mysql.ParseDSN(dsn)
			return err
		},
	},
	"sqlite": {
		Name:        "sqlite",
		DriverName:  "sqlite",
		ProbeQuery:  "SELECT 1",
		Now:         "CURRENT_TIMESTAMP",
		placeholder: func(int) string { return "?" },
	},
}

// aliases map common alternative spellings onto dialect names.
var aliases = map[string]string{
	"ora":        "oracle",
	"pg":         "postgres",
	"postgresql": "postgres",
	"pgx":        "postgres",
	"mssql":      "sqlserver",
	"mariadb":    "mysql",
	"sqlite3":    "sqlite",
}

// LookupDialect resolves a configured driver name. An empty name selects
// the default dialect.
func LookupDialect(name string) (Dialect, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = bulkload.DefaultDriver
	}
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	d, ok := dialects[key]
	if !ok {
		return Dialect{}, fmt.Errorf("%q (supported: %s): %w",
			name, strings.Join(SupportedDrivers(), ", "), bulkload.ErrUnsupportedDriver)
	}
	return d, nil
}

// SupportedDrivers returns the dialect names in sorted order.
func SupportedDrivers() []string {
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
