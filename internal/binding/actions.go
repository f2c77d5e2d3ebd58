package binding

import (
	"sort"
	"sync"
)

// Actions is a registry of named callbacks that hotkeys can be built from.
type Actions struct {
	mu      sync.RWMutex
	actions map[string]Callback
}

// NewActions creates an empty action registry.
func NewActions() *Actions {
	return &Actions{
		actions: make(map[string]Callback),
	}
}

// Register adds or replaces a named action.
func (a *Actions) Register(name string, fn Callback) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions[name] = fn
}

// Resolve looks up an action by name.
func (a *Actions) Resolve(name string) (Callback, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	fn, ok := a.actions[name]
	if !ok || fn == nil {
		return nil, &InvalidHotkeyError{Callback: name, Reason: "unknown action"}
	}
	return fn, nil
}

// Names returns the registered action names in sorted order.
func (a *Actions) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, 0, len(a.actions))
	for name := range a.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FromAction builds a hotkey bound to a registered action.
func FromAction(actions *Actions, combination, name string, args ...any) (*Hotkey, error) {
	fn, err := actions.Resolve(name)
	if err != nil {
		if ih, ok := err.(*InvalidHotkeyError); ok {
			ih.Combination = combination
		}
		return nil, err
	}
	return New(combination, name, fn, args...)
}
