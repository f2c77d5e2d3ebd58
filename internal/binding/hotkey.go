package binding

import (
	"fmt"
	"log"
	"strings"
)

// Callback is the action a hotkey runs when its combination fires.
type Callback func(args ...any)

// InvalidHotkeyError reports a hotkey that cannot be built.
type InvalidHotkeyError struct {
	Combination string
	Callback    string
	Reason      string
}

func (e *InvalidHotkeyError) Error() string {
	if e.Callback == "" {
		return fmt.Sprintf("invalid hotkey %q: %s", e.Combination, e.Reason)
	}
	return fmt.Sprintf("invalid hotkey %q (%s): %s", e.Combination, e.Callback, e.Reason)
}

// Hotkey binds one key combination to a named callback and its arguments.
// A Hotkey never changes after New returns, so one value may be shared
// between a mapping and the persistent list.
type Hotkey struct {
	combination string
	name        string
	callback    Callback
	args        []any
}

// New creates a hotkey. The combination is opaque to this package and is
// only compared for equality; it must not be empty. name identifies the
// callback in listings and conflict reports.
func New(combination, name string, fn Callback, args ...any) (*Hotkey, error) {
	combination = strings.TrimSpace(combination)
	if combination == "" {
		return nil, &InvalidHotkeyError{Callback: name, Reason: "empty key combination"}
	}
	if name == "" || fn == nil {
		return nil, &InvalidHotkeyError{Combination: combination, Callback: name, Reason: "unresolvable callback"}
	}

	stored := make([]any, len(args))
	copy(stored, args)

	return &Hotkey{
		combination: combination,
		name:        name,
		callback:    fn,
		args:        stored,
	}, nil
}

// Combination returns the key combination string.
func (h *Hotkey) Combination() string {
	return h.combination
}

// CallbackName returns the name of the bound callback.
func (h *Hotkey) CallbackName() string {
	return h.name
}

// Args returns a copy of the trigger arguments.
func (h *Hotkey) Args() []any {
	out := make([]any, len(h.args))
	copy(out, h.args)
	return out
}

// Trigger runs the callback with the stored arguments. A panicking action is
// logged and swallowed so the dispatch goroutine keeps running.
func (h *Hotkey) Trigger() {
	h.Invoke(h.Args()...)
}

// Invoke runs the callback with the given arguments. It matches the shape the
// registration service expects, which passes the registered args back in.
func (h *Hotkey) Invoke(args ...any) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[HOTKEY] action %q on %s panicked: %v", h.name, h.combination, r)
		}
	}()
	h.callback(args...)
}

// Describe returns a one-line listing of the hotkey.
func (h *Hotkey) Describe() string {
	return fmt.Sprintf("%s -> %s", h.combination, h.name)
}

func (h *Hotkey) String() string {
	return h.Describe()
}
