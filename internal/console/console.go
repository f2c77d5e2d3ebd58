// Package console is the line-oriented user surface: status lines, mapping
// listings and the one-line prompt used by the mapping switcher.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Console writes human-readable output and reads one line at a time.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	in      *bufio.Reader
	control *Control

	title   lipgloss.Style
	item    lipgloss.Style
	muted   lipgloss.Style
	warning lipgloss.Style
}

// New creates a console. Colors are only emitted when out is a terminal.
func New(in io.Reader, out io.Writer) *Console {
	r := lipgloss.NewRenderer(out)
	return &Console{
		out:     out,
		in:      bufio.NewReader(in),
		control: NewControl(out),
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa")),
		item:    r.NewStyle().Foreground(lipgloss.Color("#cdd6f4")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("#7f849c")),
		warning: r.NewStyle().Foreground(lipgloss.Color("#f38ba8")),
	}
}

// Discard returns a console that drops output and has no input.
func Discard() *Console {
	return New(strings.NewReader(""), io.Discard)
}

// Println writes one plain line.
func (c *Console) Println(a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, a...)
}

// Status writes an informational line.
func (c *Console) Status(format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, c.item.Render(fmt.Sprintf(format, a...)))
}

// Warn writes a highlighted warning line.
func (c *Console) Warn(format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, c.warning.Render(fmt.Sprintf(format, a...)))
}

// Listing writes a titled block of indented lines.
func (c *Console) Listing(title string, lines []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintln(c.out, c.title.Render(title))
	if len(lines) == 0 {
		fmt.Fprintln(c.out, c.muted.Render("  (no hotkeys)"))
		return
	}
	for _, line := range lines {
		fmt.Fprintln(c.out, "  "+c.item.Render(line))
	}
}

// Choices writes the current selection and the list of available names.
func (c *Console) Choices(current string, names []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if current == "" {
		current = "(none)"
	}
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, c.muted.Render("Current mapping:"), c.title.Render(current))
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, c.muted.Render("Available mappings:"))
	for _, name := range names {
		fmt.Fprintln(c.out, "  "+c.item.Render(name))
	}
}

// Prompt writes prompt and reads one line with surrounding whitespace
// removed. At end of input it returns io.EOF, together with any partial line.
func (c *Console) Prompt(prompt string) (string, error) {
	c.mu.Lock()
	fmt.Fprint(c.out, "\n"+prompt)
	c.mu.Unlock()

	line, err := c.in.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil {
		if err == io.EOF && line != "" {
			return line, nil
		}
		return line, err
	}
	return line, nil
}

// Block rewrites a multi-line status block in place on terminals.
func (c *Console) Block(lines []string, first bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.control.UpdateInPlace(lines, first)
}
