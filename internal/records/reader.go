package records

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/vvka-141/bulkload/pkg/bulkload"
)

// Options configures a Reader.
type Options struct {
	// Columns are the declared target columns, in insert order.
	// Defaults to bulkload.DefaultColumns().
	Columns []string

	// Comma is the field delimiter. Defaults to ','.
	Comma rune
}

// Reader parses delimited files with a header row into records.
type Reader struct {
	columns []string
	comma   rune
	logger  bulkload.Logger
}

// NewReader creates a Reader for the default columns and comma delimiter.
func NewReader(logger bulkload.Logger) *Reader {
	return NewReaderWithOptions(logger, Options{})
}

// NewReaderWithOptions creates a Reader with explicit columns and delimiter.
// Panics if logger is nil.
func NewReaderWithOptions(logger bulkload.Logger, opts Options) *Reader {
	if logger == nil {
		panic("logger cannot be nil")
	}
	columns := opts.Columns
	if len(columns) == 0 {
		columns = bulkload.DefaultColumns()
	}
	comma := opts.Comma
	if comma == 0 {
		comma = ','
	}
	return &Reader{
		columns: append([]string(nil), columns...),
		comma:   comma,
		logger:  logger,
	}
}

// ReadFile opens path and parses it. A missing file yields an error
// wrapping bulkload.ErrFileNotFound; other I/O failures wrap
// bulkload.ErrReadFailed.
func (r *Reader) ReadFile(ctx context.Context, path string) ([]bulkload.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", bulkload.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %w", bulkload.ErrReadFailed, path, err)
	}
	defer f.Close()

	records, err := r.Read(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Read parses src. The first parseable row is the header. Quoting is
// strict: a row the CSV parser rejects is skipped and counted, and parsing
// resumes on the physical line after the one the bad row started on, so a
// stray quote never swallows the rows behind it.
func (r *Reader) Read(ctx context.Context, src io.Reader) ([]bulkload.Record, error) {
	data, err := io.ReadAll(transform.NewReader(src, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", bulkload.ErrReadFailed, err)
	}
	lines := lineOffsets(data)

	var (
		mapping []int
		records []bulkload.Record
		skipped int
		first   int
	)

	cr := r.csvReaderAt(data, lines, first)
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("read interrupted: %w", err)
		}

		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, fmt.Errorf("%w: %w", bulkload.ErrReadFailed, err)
			}
			bad := first + parseErr.StartLine - 1
			skipped++
			r.logger.Warn("Skipping malformed row at line %d: %v", bad+1, parseErr.Err)
			first = bad + 1
			cr = r.csvReaderAt(data, lines, first)
			continue
		}

		if mapping == nil {
			mapping = r.mapHeader(row)
			continue
		}
		records = append(records, r.toRecord(row, mapping))
	}

	if skipped > 0 {
		r.logger.Warn("Skipped %d malformed row(s)", skipped)
	}
	r.logger.Verbose("Parsed %d record(s)", len(records))
	return records, nil
}

// csvReaderAt returns a CSV reader starting at the given 0-based physical line.
func (r *Reader) csvReaderAt(data []byte, lines []int, line int) *csv.Reader {
	offset := len(data)
	if line < len(lines) {
		offset = lines[line]
	}
	cr := csv.NewReader(bytes.NewReader(data[offset:]))
	cr.Comma = r.comma
	cr.FieldsPerRecord = -1
	return cr
}

// lineOffsets returns the byte offset at which each physical line starts.
func lineOffsets(data []byte) []int {
	offsets := []int{0}
	for i, b := range data {
		if b == '\n' && i+1 < len(data) {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// mapHeader returns, for each declared column, the index of the header cell
// feeding it (-1 when absent). Matching ignores case, spaces, underscores
// and dashes. When no header cell matches, columns map by position.
func (r *Reader) mapHeader(header []string) []int {
	positions := make(map[string]int, len(header))
	for i, cell := range header {
		key := normalizeName(cell)
		if _, seen := positions[key]; !seen && key != "" {
			positions[key] = i
		}
	}

	mapping := make([]int, len(r.columns))
	matched := 0
	for j, col := range r.columns {
		if i, ok := positions[normalizeName(col)]; ok {
			mapping[j] = i
			matched++
		} else {
			mapping[j] = -1
		}
	}

	if matched == 0 {
		r.logger.Verbose("Header %v matches no declared column; mapping fields by position", header)
		for j := range mapping {
			mapping[j] = j
		}
		return mapping
	}

	if matched < len(r.columns) {
		r.logger.Verbose("Header matched %d of %d declared columns; unmatched columns load as NULL", matched, len(r.columns))
	}
	return mapping
}

func (r *Reader) toRecord(row []string, mapping []int) bulkload.Record {
	values := make([]*string, len(mapping))
	for j, i := range mapping {
		if i < 0 || i >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[i])
		values[j] = &v
	}
	return bulkload.NewRecord(values...)
}

func normalizeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '\t':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
}

// Verify Reader implements bulkload.RecordReader at compile time
var _ bulkload.RecordReader = (*Reader)(nil)
