package ui

import (
	"os"

	"golang.org/x/term"
)

// ColorEnabled reports whether output written to f should be styled.
//
// Returns false if:
//   - NO_COLOR is set (https://no-color.org)
//   - BULKLOAD_NO_COLOR=1 is set
//   - CI is set (common CI/CD convention)
//   - f is nil or not a terminal (redirected to a file or pipe)
func ColorEnabled(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("BULKLOAD_NO_COLOR") == "1" {
		return false
	}
	if os.Getenv("CI") != "" {
		return false
	}
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
