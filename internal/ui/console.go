package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/vvka-141/bulkload/pkg/bulkload"
)

// Console implements bulkload.Reporter for a human watching the run.
// Safe for concurrent use by multiple goroutines.
type Console struct {
	out    io.Writer
	styled bool
	mu     sync.Mutex
}

// NewConsole writes to stdout, styled when stdout is a color terminal.
func NewConsole() *Console {
	return NewConsoleWriter(os.Stdout, ColorEnabled(os.Stdout))
}

// NewConsoleWriter writes to out; styled selects lipgloss rendering.
func NewConsoleWriter(out io.Writer, styled bool) *Console {
	return &Console{out: out, styled: styled}
}

func (c *Console) Banner(name, version string) {
	text := name
	if version != "" {
		text = fmt.Sprintf("%s v%s", name, version)
	}
	if c.styled {
		c.println(BannerStyle.Render(text))
		return
	}
	c.println("=== " + text + " ===")
}

func (c *Console) Stage(number int, title string) {
	c.println("\n" + c.render(StageStyle, fmt.Sprintf("%d. %s", number, title)))
}

func (c *Console) Success(format string, args ...interface{}) {
	c.status(SuccessStyle, SymbolCheck, format, args)
}

func (c *Console) Failure(format string, args ...interface{}) {
	c.status(ErrorStyle, SymbolCross, format, args)
}

func (c *Console) Warning(format string, args ...interface{}) {
	c.status(WarningStyle, SymbolWarning, format, args)
}

func (c *Console) Detail(label string, value interface{}) {
	c.println(fmt.Sprintf("    %s %v", c.render(LabelStyle, label+":"), value))
}

func (c *Console) status(style lipgloss.Style, symbol, format string, args []interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	c.println("  " + c.render(style, symbol) + " " + msg)
}

func (c *Console) render(style lipgloss.Style, text string) string {
	if !c.styled {
		return text
	}
	return style.Render(text)
}

func (c *Console) println(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, line)
}

// Verify Console implements bulkload.Reporter at compile time
var _ bulkload.Reporter = (*Console)(nil)
