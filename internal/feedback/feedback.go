// Package feedback plays a sound and shows a desktop notification when the
// active mapping changes.
package feedback

import (
	"fmt"
	"log"
	"os/exec"
	"runtime"

	"github.com/gen2brain/beeep"

	"github.com/bezmoradi/keycycle/internal/mapping"
)

// Tone selects the beep played for an event.
type Tone string

const (
	ToneSwitch Tone = "switch"
	ToneError  Tone = "error"
)

// Options enables the individual feedback channels.
type Options struct {
	Beep   bool
	Notify bool
}

// Notifier reports mapping switches to the user.
type Notifier struct {
	opts Options

	beep   func(freq float64, duration int) error
	notify func(title, message string, icon any) error
}

// New creates a notifier backed by beeep.
func New(opts Options) *Notifier {
	beeep.AppName = "keycycle"
	return NewWithBackend(opts, beeep.Beep, beeep.Notify)
}

// NewWithBackend creates a notifier that plays and shows through the given
// functions instead of the desktop.
func NewWithBackend(opts Options, beep func(freq float64, duration int) error, notify func(title, message string, icon any) error) *Notifier {
	return &Notifier{
		opts:   opts,
		beep:   beep,
		notify: notify,
	}
}

// Play plays the tone for t, falling back to the system beep on macOS when
// the audio device cannot be opened.
func (n *Notifier) Play(t Tone) {
	freq, duration := toneParams(t)
	if err := n.beep(freq, duration); err != nil {
		log.Printf("[FEEDBACK] beep failed: %v", err)
		if runtime.GOOS == "darwin" {
			exec.Command("osascript", "-e", "beep 1").Run()
		}
	}
}

// Show displays a desktop notification.
func (n *Notifier) Show(title, message string) error {
	if err := n.notify(title, message, ""); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

// OnSwitch is a mapping.Manager subscriber.
func (n *Notifier) OnSwitch(e mapping.SwitchEvent) {
	if n.opts.Beep {
		n.Play(ToneSwitch)
	}
	if n.opts.Notify {
		if err := n.Show("keycycle", fmt.Sprintf("Mapping: %s", e.Alias)); err != nil {
			log.Printf("[FEEDBACK] %v", err)
		}
	}
}

func toneParams(t Tone) (float64, int) {
	switch t {
	case ToneError:
		return beeep.DefaultFreq / 2, beeep.DefaultDuration / 2
	default:
		return beeep.DefaultFreq, beeep.DefaultDuration / 3
	}
}
