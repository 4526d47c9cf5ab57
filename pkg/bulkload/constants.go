package bulkload

import "time"

// Exit codes returned by the bulkload binary.
//   - 0: every stage succeeded
//   - 1: any stage failed, including panics caught in main
const (
	ExitSuccess = 0 // Connection test, read and load all succeeded
	ExitFailure = 1 // Any failure (connection, file, batch, unexpected)
)

const (
	// DefaultDriver is the dialect used when none is configured.
	DefaultDriver = "oracle"

	// DefaultSchema and DefaultTable name the target object when the
	// configuration leaves them empty.
	DefaultSchema = "hsicustom"
	DefaultTable  = "ccBulk_DUR_QTR_LOAD"

	// DefaultCommandTimeout bounds every statement sent to the database.
	DefaultCommandTimeout = 30 * time.Second

	// DefaultConnectionTimeout bounds opening and pinging a connection.
	DefaultConnectionTimeout = 15 * time.Second

	// DefaultBatchSize is the number of records committed per transaction.
	DefaultBatchSize = 1000

	// DefaultMaxRetries and DefaultRetryDelay are carried in BatchConfig
	// but not consulted by the loader.
	DefaultMaxRetries = 3
	DefaultRetryDelay = 1000 * time.Millisecond

	// DefaultLogDirectory is relative to the working directory.
	DefaultLogDirectory = "log"

	// DefaultArity is the number of fields in a record.
	DefaultArity = 5

	// CreatedDateColumn receives the server-side timestamp on insert.
	CreatedDateColumn = "CREATED_DATE"
)

// DefaultColumns returns the target columns COLUMN1..COLUMN{DefaultArity}.
func DefaultColumns() []string {
	return ColumnNames(DefaultArity)
}
