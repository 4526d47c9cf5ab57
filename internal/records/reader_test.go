package records

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/bulkload/internal/logging"
	"github.com/vvka-141/bulkload/pkg/bulkload"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func fields(t *testing.T, rec bulkload.Record) []any {
	t.Helper()
	return rec.Values(rec.Len())
}

func TestReadFile_NotFound(t *testing.T) {
	r := NewReader(logging.NewNullLogger())

	records, err := r.ReadFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))

	assert.Nil(t, records)
	require.Error(t, err)
	assert.True(t, errors.Is(err, bulkload.ErrFileNotFound))
	assert.False(t, errors.Is(err, bulkload.ErrReadFailed))
}

func TestReadFile_DirectoryIsReadFailure(t *testing.T) {
	r := NewReader(logging.NewNullLogger())

	_, err := r.ReadFile(context.Background(), t.TempDir())

	require.Error(t, err)
	assert.True(t, errors.Is(err, bulkload.ErrReadFailed))
}

func TestReadFile_HeaderAndRows(t *testing.T) {
	path := writeFile(t, "COLUMN1,COLUMN2,COLUMN3,COLUMN4,COLUMN5\n"+
		"a,b,c,d,e\n"+
		"  f , g,h ,i,j  \n")

	records, err := NewReader(logging.NewNullLogger()).ReadFile(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []any{"a", "b", "c", "d", "e"}, fields(t, records[0]))
	assert.Equal(t, []any{"f", "g", "h", "i", "j"}, fields(t, records[1]), "fields are trimmed")
}

func TestReadFile_EmptyAndHeaderOnly(t *testing.T) {
	for name, content := range map[string]string{
		"empty":           "",
		"header only":     "COLUMN1,COLUMN2,COLUMN3,COLUMN4,COLUMN5\n",
		"header no EOL":   "COLUMN1,COLUMN2",
		"blank lines":     "\n\n\n",
		"bom header only": "\ufeffCOLUMN1,COLUMN2\n",
	} {
		t.Run(name, func(t *testing.T) {
			records, err := NewReader(logging.NewNullLogger()).ReadFile(context.Background(), writeFile(t, content))
			require.NoError(t, err)
			assert.Empty(t, records)
		})
	}
}

func TestRead_MissingCellsAreAbsent(t *testing.T) {
	input := "COLUMN1,COLUMN2,COLUMN3,COLUMN4,COLUMN5\n" +
		"a,b\n" +
		"a,,c,,\n"

	records, err := NewReader(logging.NewNullLogger()).Read(context.Background(), strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []any{"a", "b", nil, nil, nil}, fields(t, records[0]))
	assert.Equal(t, []any{"a", "", "c", "", ""}, fields(t, records[1]), "empty cells stay present")
}

func TestRead_ExtraCellsIgnored(t *testing.T) {
	input := "COLUMN1,COLUMN2,COLUMN3,COLUMN4,COLUMN5\n1,2,3,4,5,6,7\n"

	records, err := NewReader(logging.NewNullLogger()).Read(context.Background(), strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 5, records[0].Len())
	assert.Equal(t, []any{"1", "2", "3", "4", "5"}, fields(t, records[0]))
}

func TestRead_HeaderMatchedByName(t *testing.T) {
	input := "column_5, Column 3 ,notes,COLUMN-1\n" +
		"five,three,ignored,one\n"

	records, err := NewReader(logging.NewNullLogger()).Read(context.Background(), strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []any{"one", nil, "three", nil, "five"}, fields(t, records[0]))
}

func TestRead_UnrecognizedHeaderMapsByPosition(t *testing.T) {
	input := "Region,Quarter,Units,Amount,Code\n" +
		"EU,Q1,10,99.5,X\n"

	records, err := NewReader(logging.NewNullLogger()).Read(context.Background(), strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []any{"EU", "Q1", "10", "99.5", "X"}, fields(t, records[0]))
}

func TestRead_BOMAndQuotes(t *testing.T) {
	input := "\ufeffCOLUMN1,COLUMN2,COLUMN3\n" +
		"\"quoted, with comma\",\"multi\nline\",\"escaped \"\"inner\"\" quote\"\n"

	r := NewReaderWithOptions(logging.NewNullLogger(), Options{Columns: bulkload.ColumnNames(3)})
	records, err := r.Read(context.Background(), strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []any{"quoted, with comma", "multi\nline", `escaped "inner" quote`}, fields(t, records[0]))
}

func TestRead_UTF8Preserved(t *testing.T) {
	input := "COLUMN1,COLUMN2\nZürich,東京\n"

	r := NewReaderWithOptions(logging.NewNullLogger(), Options{Columns: bulkload.ColumnNames(2)})
	records, err := r.Read(context.Background(), strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []any{"Zürich", "東京"}, fields(t, records[0]))
}

func TestRead_CustomDelimiter(t *testing.T) {
	input := "COLUMN1;COLUMN2\na;b\n"

	r := NewReaderWithOptions(logging.NewNullLogger(), Options{Columns: bulkload.ColumnNames(2), Comma: ';'})
	records, err := r.Read(context.Background(), strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []any{"a", "b"}, fields(t, records[0]))
}

func TestRead_HashLinesAreData(t *testing.T) {
	input := "COLUMN1\n#not-a-comment\n"

	r := NewReaderWithOptions(logging.NewNullLogger(), Options{Columns: bulkload.ColumnNames(1)})
	records, err := r.Read(context.Background(), strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []any{"#not-a-comment"}, fields(t, records[0]))
}

func TestRead_PreservesFileOrder(t *testing.T) {
	var b strings.Builder
	b.WriteString("COLUMN1\n")
	for i := 0; i < 100; i++ {
		b.WriteString(strings.Repeat("x", i%7))
		b.WriteString("row\n")
	}

	r := NewReaderWithOptions(logging.NewNullLogger(), Options{Columns: bulkload.ColumnNames(1)})
	records, err := r.Read(context.Background(), strings.NewReader(b.String()))

	require.NoError(t, err)
	require.Len(t, records, 100)
	for i, rec := range records {
		v, ok := rec.Field(0)
		require.True(t, ok)
		assert.Equal(t, strings.Repeat("x", i%7)+"row", v)
	}
}

// warnLog records Warn calls and discards everything else.
type warnLog struct {
	logging.NullLogger
	warnings []string
}

func (l *warnLog) Warn(format string, args ...interface{}) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

func TestRead_UnterminatedQuoteSkipsOnlyItsRow(t *testing.T) {
	input := "COLUMN1,COLUMN2\na,b\nc,\"d\ne,f\ng,h\n"
	log := &warnLog{}

	r := NewReaderWithOptions(log, Options{Columns: bulkload.ColumnNames(2)})
	records, err := r.Read(context.Background(), strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []any{"a", "b"}, fields(t, records[0]))
	assert.Equal(t, []any{"e", "f"}, fields(t, records[1]))
	assert.Equal(t, []any{"g", "h"}, fields(t, records[2]))

	require.Len(t, log.warnings, 2)
	assert.Contains(t, log.warnings[0], "Skipping malformed row at line 3")
	assert.Equal(t, "Skipped 1 malformed row(s)", log.warnings[1])
}

func TestRead_BareQuotesAreSkippedAndCounted(t *testing.T) {
	input := "COLUMN1,COLUMN2\n" +
		"one,1\n" +
		"tw\"o,2\n" +
		"three,3\n" +
		"\"fo\"ur,4\n" +
		"five,5\n"
	log := &warnLog{}

	r := NewReaderWithOptions(log, Options{Columns: bulkload.ColumnNames(2)})
	records, err := r.Read(context.Background(), strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, want := range []string{"one", "three", "five"} {
		v, ok := records[i].Field(0)
		require.True(t, ok)
		assert.Equal(t, want, v, "record %d keeps file order", i)
	}

	require.Len(t, log.warnings, 3)
	assert.Contains(t, log.warnings[0], "line 3")
	assert.Contains(t, log.warnings[1], "line 5")
	assert.Equal(t, "Skipped 2 malformed row(s)", log.warnings[2])
}

func TestRead_MalformedHeaderFallsThroughToNextRow(t *testing.T) {
	input := "COLUMN1,\"COLUMN2\n" +
		"COLUMN1,COLUMN2\n" +
		"a,b\n"

	r := NewReaderWithOptions(logging.NewNullLogger(), Options{Columns: bulkload.ColumnNames(2)})
	records, err := r.Read(context.Background(), strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []any{"a", "b"}, fields(t, records[0]))
}

func TestLineOffsets(t *testing.T) {
	assert.Equal(t, []int{0}, lineOffsets(nil))
	assert.Equal(t, []int{0}, lineOffsets([]byte("abc\n")))
	assert.Equal(t, []int{0, 2, 5, 6}, lineOffsets([]byte("a\nbc\n\nx")))
}

func TestRead_IOErrorIsReadFailure(t *testing.T) {
	diskErr := errors.New("device error")
	src := io.MultiReader(strings.NewReader("COLUMN1\nfoo\n"), iotest.ErrReader(diskErr))

	records, err := NewReader(logging.NewNullLogger()).Read(context.Background(), src)

	assert.Nil(t, records)
	require.Error(t, err)
	assert.True(t, errors.Is(err, bulkload.ErrReadFailed))
	assert.True(t, errors.Is(err, diskErr))
}

func TestRead_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewReader(logging.NewNullLogger()).Read(ctx, strings.NewReader("COLUMN1\na\n"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewReaderWithOptions_PanicsOnNilLogger(t *testing.T) {
	assert.Panics(t, func() {
		NewReaderWithOptions(nil, Options{})
	})
}

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"COLUMN1":      "column1",
		" Column_1 ":   "column1",
		"column-1":     "column1",
		"Column 1":     "column1",
		"CREATED_DATE": "createddate",
		"":             "",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeName(in), "normalizeName(%q)", in)
	}
}
