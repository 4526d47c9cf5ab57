package db

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	mssql "github.com/microsoft/go-mssqldb"
)

// DescribeError renders a driver error with the structured detail the
// driver exposes (SQLSTATE and constraint for PostgreSQL, error numbers for
// MySQL and SQL Server). Other errors are rendered with Error().
func DescribeError(err error) string {
	if err == nil {
		return ""
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		msg := fmt.Sprintf("%s (SQLSTATE %s)", pgErr.Message, pgErr.Code)
		if pgErr.ConstraintName != "" {
			msg += fmt.Sprintf(", constraint %s", pgErr.ConstraintName)
		}
		if pgErr.Detail != "" {
			msg += ": " + pgErr.Detail
		}
		return msg
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return fmt.Sprintf("%s (MySQL error %d)", myErr.Message, myErr.Number)
	}

	var msErr mssql.Error
	if errors.As(err, &msErr) {
		return fmt.Sprintf("%s (SQL Server error %d)", msErr.Message, msErr.Number)
	}

	return err.Error()
}
