package testing

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/vvka-141/bulkload/pkg/bulkload"
)

// WriteCSV writes a header and rows to name inside dir and returns its path.
func WriteCSV(t *testing.T, dir, name string, header []string, rows [][]string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if header != nil {
		if err := w.Write(header); err != nil {
			t.Fatalf("Failed to write header: %v", err)
		}
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("Failed to write rows: %v", err)
	}
	return path
}

// Rows generates n rows of the default arity; row i (0-based) holds
// "r{i+1}c{j+1}" in column j unless override returns replacement values.
func Rows(n int, override func(i int) []string) [][]string {
	rows := make([][]string, n)
	for i := range rows {
		if override != nil {
			if row := override(i); row != nil {
				rows[i] = row
				continue
			}
		}
		row := make([]string, bulkload.DefaultArity)
		for j := range row {
			row[j] = fmt.Sprintf("r%dc%d", i+1, j+1)
		}
		rows[i] = row
	}
	return rows
}

// Records converts rows to records.
func Records(rows [][]string) []bulkload.Record {
	records := make([]bulkload.Record, len(rows))
	for i, row := range rows {
		records[i] = bulkload.RecordFromStrings(row...)
	}
	return records
}
