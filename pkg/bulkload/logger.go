package bulkload

// Logger provides a pluggable logging interface for bulkload operations.
// Implementations must be safe for concurrent use by multiple goroutines.
type Logger interface {
	// Verbose logs detailed diagnostic information.
	// Only logged when verbose mode is enabled.
	Verbose(format string, args ...interface{})

	// Info logs informational messages about normal operations.
	Info(format string, args ...interface{})

	// Warn logs conditions that do not stop the run.
	Warn(format string, args ...interface{})

	// Error logs error messages.
	Error(format string, args ...interface{})
}

// Reporter renders user-facing stage progress. Unlike Logger it is meant
// for a human watching the run, not for the log file.
type Reporter interface {
	Banner(name, version string)
	Stage(number int, title string)
	Success(format string, args ...interface{})
	Failure(format string, args ...interface{})
	Warning(format string, args ...interface{})
	Detail(label string, value interface{})
}
