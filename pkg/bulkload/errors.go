package bulkload

import "errors"

// Sentinel errors for the failure modes of a load run.
// Callers distinguish them with errors.Is().
//
// Example usage:
//
//	records, err := reader.ReadFile(ctx, path)
//	if errors.Is(err, bulkload.ErrFileNotFound) {
//	    // report the missing input, skip loading
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupportedDriver indicates the configured dialect has no driver.
	ErrUnsupportedDriver = errors.New("unsupported database driver")

	// ErrConnectionFailed indicates a connection could not be opened or probed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrConnectionUnavailable indicates no open shared connection exists.
	ErrConnectionUnavailable = errors.New("connection unavailable")

	// ErrFileNotFound indicates the input file does not exist.
	ErrFileNotFound = errors.New("input file not found")

	// ErrReadFailed indicates an unrecoverable I/O failure while reading input.
	ErrReadFailed = errors.New("input read failed")

	// ErrBatchFailed indicates a batch was rolled back.
	ErrBatchFailed = errors.New("batch failed")

	// ErrLoadFailed indicates the pipeline finished with a failing stage.
	ErrLoadFailed = errors.New("load failed")
)

// ExitCodeForError returns ExitSuccess for nil and ExitFailure otherwise.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}
	return ExitFailure
}
