// Package mapping holds named sets of hotkeys ("mappings"), the hotkeys that
// stay active under every mapping, and the master key that switches between
// mappings.
//
// The lifecycle is one-way: register mappings and persistent hotkeys, call
// Finalize to validate them, then activate mappings with SetMapping or the
// interactive CycleMappings prompt. A Manager is not safe for concurrent use;
// run it behind a hotkeys.Dispatcher when callbacks arrive from other
// goroutines.
package mapping

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/bezmoradi/keycycle/internal/binding"
	"github.com/bezmoradi/keycycle/internal/console"
	"github.com/bezmoradi/keycycle/internal/hotkeys"
)

// Binding pairs a label with a hotkey inside a mapping.
type Binding struct {
	Label  string
	Hotkey *binding.Hotkey
}

type positioned struct {
	combination string
	position    int // 0-based
}

// Mapping is a named, ordered set of bindings that is active as a unit.
type Mapping struct {
	Alias    string
	bindings []Binding
	combos   []positioned
}

func newMapping(alias string, bindings []Binding) *Mapping {
	m := &Mapping{Alias: alias}

	// A repeated label keeps its first position and takes the last value.
	index := make(map[string]int, len(bindings))
	for _, b := range bindings {
		if i, ok := index[b.Label]; ok {
			m.bindings[i] = b
			continue
		}
		index[b.Label] = len(m.bindings)
		m.bindings = append(m.bindings, b)
	}

	m.combos = make([]positioned, len(m.bindings))
	for i, b := range m.bindings {
		m.combos[i] = positioned{combination: b.Hotkey.Combination(), position: i}
	}
	return m
}

// Bindings returns the mapping's bindings in insertion order.
func (m *Mapping) Bindings() []Binding {
	out := make([]Binding, len(m.bindings))
	copy(out, m.bindings)
	return out
}

// Descriptions returns one line per binding in insertion order.
func (m *Mapping) Descriptions() []string {
	out := make([]string, 0, len(m.bindings))
	for _, b := range m.bindings {
		out = append(out, b.Hotkey.Describe())
	}
	return out
}

// Len returns the number of bindings.
func (m *Mapping) Len() int {
	return len(m.bindings)
}

// Listing is one mapping as shown by ListMappings.
type Listing struct {
	Alias        string
	Descriptions []string
}

// SwitchEvent is published after a mapping has been activated.
type SwitchEvent struct {
	ID       string
	Alias    string
	Previous string
	At       time.Time
}

// Options configures a Manager.
type Options struct {
	// Console receives listings and status lines and provides the cycle
	// prompt input. Nil discards output.
	Console *console.Console

	// Wrap, when set, wraps every callback before it is registered. Pass
	// hotkeys.Dispatcher.Wrap to serialize key presses.
	Wrap func(fn func(args ...any)) func(args ...any)
}

// Manager owns all mappings, the persistent hotkeys and the master cycle key.
type Manager struct {
	cycleKey string
	service  hotkeys.Service
	console  *console.Console
	wrap     func(fn func(args ...any)) func(args ...any)

	mappings   map[string]*Mapping
	order      []string
	persistent []*binding.Hotkey

	finalized    bool
	current      *Mapping
	currentAlias string
	cycling      bool

	subscribers []func(SwitchEvent)
}

// NewManager creates a manager whose master key cycleKey opens the mapping
// switcher. Nothing is registered with service until Finalize.
func NewManager(cycleKey string, service hotkeys.Service, opts Options) *Manager {
	c := opts.Console
	if c == nil {
		c = console.Discard()
	}
	return &Manager{
		cycleKey: cycleKey,
		service:  service,
		console:  c,
		wrap:     opts.Wrap,
		mappings: make(map[string]*Mapping),
	}
}

// CycleKey returns the master cycle key combination.
func (m *Manager) CycleKey() string {
	return m.cycleKey
}

// Finalized reports whether Finalize has been called.
func (m *Manager) Finalized() bool {
	return m.finalized
}

// CurrentAlias returns the alias of the active mapping, or "" if none.
func (m *Manager) CurrentAlias() string {
	return m.currentAlias
}

// Current returns the active mapping, or nil before the first SetMapping.
func (m *Manager) Current() *Mapping {
	return m.current
}

// Aliases returns the registered aliases in insertion order.
func (m *Manager) Aliases() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Persistent returns the persistent hotkeys in insertion order.
func (m *Manager) Persistent() []*binding.Hotkey {
	out := make([]*binding.Hotkey, len(m.persistent))
	copy(out, m.persistent)
	return out
}

// Subscribe registers fn to be called after every successful mapping switch.
func (m *Manager) Subscribe(fn func(SwitchEvent)) {
	m.subscribers = append(m.subscribers, fn)
}

// AddMapping stores bindings under alias, replacing any mapping already
// registered with that alias. Every binding must carry a hotkey; otherwise
// nothing is stored and a *TypeMismatchError is returned.
func (m *Manager) AddMapping(alias string, bindings []Binding) error {
	for _, b := range bindings {
		if b.Hotkey == nil {
			return &TypeMismatchError{Alias: alias, Label: b.Label}
		}
	}

	mp := newMapping(alias, bindings)
	if _, exists := m.mappings[alias]; !exists {
		m.order = append(m.order, alias)
	}
	m.mappings[alias] = mp

	log.Printf("[MAPPING] added mapping %q with %d hotkeys", alias, mp.Len())
	return nil
}

// AddPersistent appends a hotkey that stays registered under every mapping.
// Duplicate combinations are accepted.
func (m *Manager) AddPersistent(h *binding.Hotkey) error {
	if h == nil {
		return &TypeMismatchError{}
	}
	m.persistent = append(m.persistent, h)

	log.Printf("[MAPPING] added persistent hotkey %s", h.Describe())
	return nil
}

// ListMappings returns every mapping with its hotkey descriptions, in the
// order the aliases were first added.
func (m *Manager) ListMappings() []Listing {
	out := make([]Listing, 0, len(m.order))
	for _, alias := range m.order {
		out = append(out, Listing{
			Alias:        alias,
			Descriptions: m.mappings[alias].Descriptions(),
		})
	}
	return out
}

// ListMapping returns the hotkey descriptions of one mapping.
func (m *Manager) ListMapping(alias string) ([]string, error) {
	mp, ok := m.mappings[alias]
	if !ok {
		return nil, &NotFoundError{Alias: alias}
	}
	return mp.Descriptions(), nil
}

// Finalize validates every binding for conflicts and registers the
// persistent hotkeys and the master key. The manager counts as finalized as
// soon as Finalize is called, even when validation fails; calling it again
// re-validates the current state.
func (m *Manager) Finalize() error {
	m.finalized = true

	if err := m.validate(); err != nil {
		log.Printf("[MAPPING] finalize failed: %v", err)
		return err
	}

	if err := m.registerHotkeys(); err != nil {
		return fmt.Errorf("finalize: %w", err)
	}

	log.Printf("[MAPPING] finalized %d mappings, %d persistent hotkeys", len(m.order), len(m.persistent))
	m.console.Status("✅ Hotkey mappings finalized")
	m.console.Status("🚀 Ready. Press %s to switch mappings", m.cycleKey)
	return nil
}

// SetMapping activates the mapping registered under alias: the service is
// cleared, then the mapping's hotkeys, the persistent hotkeys and the master
// key are registered again.
//
// NOTE: suppressError is inverted relative to its name. With
// suppressError == false an unknown alias is only reported on the console
// and SetMapping returns nil. With suppressError == true an unknown alias
// returns a *NotFoundError.
//
// When some hotkeys fail to register the switch still takes effect: the
// alias becomes current, the rest of the table (master key included) is
// registered, subscribers are notified, and the joined registration errors
// are returned.
func (m *Manager) SetMapping(alias string, suppressError bool) error {
	if !m.finalized {
		return &StateError{Op: "set mapping"}
	}

	mp, ok := m.mappings[alias]
	if !ok {
		if suppressError {
			return &NotFoundError{Alias: alias}
		}
		log.Printf("[MAPPING] alias %q not found", alias)
		m.console.Warn("Alias not found: %s", alias)
		return nil
	}

	previous := m.currentAlias
	m.current = mp
	m.currentAlias = alias

	m.console.Listing(alias, mp.Descriptions())

	regErr := m.registerHotkeys()
	if regErr != nil {
		log.Printf("[MAPPING] switched %q -> %q with errors: %v", previous, alias, regErr)
		m.console.Warn("Some hotkeys could not be registered: %v", regErr)
	} else {
		log.Printf("[MAPPING] switched %q -> %q", previous, alias)
		m.console.Status("⌨️  Hotkeys registered")
	}

	event := SwitchEvent{
		ID:       uuid.NewString(),
		Alias:    alias,
		Previous: previous,
		At:       time.Now(),
	}
	for _, fn := range m.subscribers {
		fn(event)
	}
	if regErr != nil {
		return fmt.Errorf("set mapping %q: %w", alias, regErr)
	}
	return nil
}

// registerHotkeys rebuilds the service table: active mapping, persistent
// hotkeys, then the master key. A failed registration does not stop the
// rebuild, so the master key is always attempted; the failures are joined.
// Persistent hotkeys sharing a combination are registered once and fire in
// the order they were added, since OS backends refuse a second grab of the
// same chord.
func (m *Manager) registerHotkeys() error {
	var errs []error
	if err := m.service.ClearAll(); err != nil {
		errs = append(errs, fmt.Errorf("clear hotkeys: %w", err))
	}

	if m.current != nil {
		for _, b := range m.current.bindings {
			if err := m.register(b.Hotkey.Combination(), b.Hotkey.Invoke, b.Hotkey.Args()); err != nil {
				errs = append(errs, err)
			}
		}
	}

	for _, group := range m.persistentGroups() {
		h := group[0]
		fn, args := h.Invoke, h.Args()
		if len(group) > 1 {
			fn, args = fanOut(group), nil
		}
		if err := m.register(h.Combination(), fn, args); err != nil {
			errs = append(errs, err)
		}
	}

	if err := m.register(m.cycleKey, m.onCycleKey, nil); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// persistentGroups returns the persistent hotkeys grouped by combination,
// in order of first appearance.
func (m *Manager) persistentGroups() [][]*binding.Hotkey {
	var groups [][]*binding.Hotkey
	index := make(map[string]int, len(m.persistent))
	for _, h := range m.persistent {
		if i, ok := index[h.Combination()]; ok {
			groups[i] = append(groups[i], h)
			continue
		}
		index[h.Combination()] = len(groups)
		groups = append(groups, []*binding.Hotkey{h})
	}
	return groups
}

// fanOut runs every hotkey of group with its own arguments.
func fanOut(group []*binding.Hotkey) func(args ...any) {
	return func(...any) {
		for _, h := range group {
			h.Trigger()
		}
	}
}

func (m *Manager) register(combination string, fn func(args ...any), args []any) error {
	if m.wrap != nil {
		fn = m.wrap(fn)
	}
	if err := m.service.Register(combination, fn, args); err != nil {
		return fmt.Errorf("register %s: %w", combination, err)
	}
	return nil
}

func (m *Manager) onCycleKey(args ...any) {
	if m.cycling {
		log.Printf("[MAPPING] cycle prompt already open, ignoring %s", m.cycleKey)
		return
	}
	if err := m.CycleMappings(); err != nil {
		log.Printf("[MAPPING] cycle mappings: %v", err)
	}
}
