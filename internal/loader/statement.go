package loader

import (
	"fmt"
	"strings"

	"github.com/vvka-141/bulkload/internal/db"
	"github.com/vvka-141/bulkload/pkg/bulkload"
)

// BuildInsert renders the parameterized insert for one record:
//
//	INSERT INTO schema.table (COL1, ..., COLN, CREATED_DATE) VALUES (p1, ..., pN, <now>)
//
// Identifiers cannot be bound as parameters, so each one is checked
// against bulkload.IsValidIdentifier before it is spliced in.
func BuildInsert(dialect db.Dialect, schema, table string, columns []string) (string, error) {
	if len(columns) == 0 {
		return "", fmt.Errorf("at least one column is required: %w", bulkload.ErrInvalidConfig)
	}
	if schema != "" && !bulkload.IsValidIdentifier(schema) {
		return "", fmt.Errorf("schema %q is not a valid identifier: %w", schema, bulkload.ErrInvalidConfig)
	}
	if !bulkload.IsValidIdentifier(table) {
		return "", fmt.Errorf("table %q is not a valid identifier: %w", table, bulkload.ErrInvalidConfig)
	}
	for _, col := range columns {
		if !bulkload.IsValidIdentifier(col) {
			return "", fmt.Errorf("column %q is not a valid identifier: %w", col, bulkload.ErrInvalidConfig)
		}
	}

	target := table
	if schema != "" {
		target = schema + "." + table
	}

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = dialect.Placeholder(i + 1)
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(target)
	b.WriteString(" (")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(", ")
	b.WriteString(bulkload.CreatedDateColumn)
	b.WriteString(") VALUES (")
	b.WriteString(strings.Join(placeholders, ", "))
	b.WriteString(", ")
	b.WriteString(dialect.Now)
	b.WriteString(")")
	return b.String(), nil
}
