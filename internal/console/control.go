package console

import (
	"fmt"
	"io"
	"os"
)

// Control provides ANSI cursor control on a writer.
type Control struct {
	out io.Writer
}

// NewControl creates a control bound to out.
func NewControl(out io.Writer) *Control {
	return &Control{out: out}
}

// MoveCursorUp moves the cursor up by the specified number of lines
func (c *Control) MoveCursorUp(lines int) {
	if lines <= 0 {
		return
	}
	fmt.Fprintf(c.out, "\033[%dA", lines)
}

// ClearLine clears the current line
func (c *Control) ClearLine() {
	fmt.Fprint(c.out, "\033[2K\r")
}

// IsTerminal checks if output is going to a terminal
func (c *Control) IsTerminal() bool {
	f, ok := c.out.(*os.File)
	if !ok {
		return false
	}
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}

	// On Unix-like systems, check if it's a character device
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// UpdateInPlace rewrites a block of lines printed by a previous call.
// Output that is not a terminal just gets the lines appended.
func (c *Control) UpdateInPlace(lines []string, isFirstUpdate bool) {
	if !c.IsTerminal() {
		for _, line := range lines {
			fmt.Fprintln(c.out, line)
		}
		return
	}

	if !isFirstUpdate {
		c.MoveCursorUp(len(lines))
	}

	for _, line := range lines {
		if !isFirstUpdate {
			c.ClearLine()
		}
		fmt.Fprintln(c.out, line)
	}
}
