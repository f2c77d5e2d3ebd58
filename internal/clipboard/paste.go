// Package clipboard pastes text into the focused application.
package clipboard

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// Runner runs name with args, feeding stdin when it is not empty.
type Runner func(stdin, name string, args ...string) error

func execRunner(stdin, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Paster pastes text with the platform's clipboard tools.
type Paster struct {
	goos  string
	run   Runner
	delay time.Duration
}

// New returns a paster for the current platform.
func New() *Paster {
	return &Paster{goos: runtime.GOOS, run: execRunner, delay: 200 * time.Millisecond}
}

// PasteTextSafely copies text to the clipboard and sends the paste keystroke.
// On Linux the text is typed with xdotool instead.
func (p *Paster) PasteTextSafely(text string) error {
	if text == "" {
		return fmt.Errorf("empty text")
	}

	switch p.goos {
	case "darwin":
		if err := p.run(text, "pbcopy"); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}

		// Small delay to ensure clipboard is set
		time.Sleep(p.delay)

		script := `tell application "System Events" to keystroke "v" using command down`
		if err := p.run("", "osascript", "-e", script); err != nil {
			return fmt.Errorf("paste failed: %w", err)
		}
		return nil

	case "linux":
		if err := p.run("", "xdotool", "type", "--clearmodifiers", "--", text); err != nil {
			return fmt.Errorf("paste failed: %w", err)
		}
		return nil
	}
	return fmt.Errorf("paste is not supported on %s", p.goos)
}
