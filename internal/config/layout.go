package config

import (
	"fmt"
	"strconv"

	"github.com/bezmoradi/keycycle/internal/binding"
	"github.com/bezmoradi/keycycle/internal/hotkeys"
	"github.com/bezmoradi/keycycle/internal/mapping"
)

// Build registers the declared persistent hotkeys and mappings with m.
// Key combinations are normalized so that equal chords collide during
// Finalize. An entry without a label is labelled by its 1-based position.
func Build(cfg *Config, actions *binding.Actions, m *mapping.Manager) error {
	for i, hc := range cfg.Persistent {
		h, err := hc.hotkey(actions)
		if err != nil {
			return fmt.Errorf("persistent hotkey %d: %w", i+1, err)
		}
		if err := m.AddPersistent(h); err != nil {
			return err
		}
	}

	for _, mc := range cfg.Mappings {
		if mc.Alias == "" {
			return fmt.Errorf("mapping without alias")
		}

		bindings := make([]mapping.Binding, 0, len(mc.Hotkeys))
		for i, hc := range mc.Hotkeys {
			h, err := hc.hotkey(actions)
			if err != nil {
				return fmt.Errorf("mapping %s, hotkey %d: %w", mc.Alias, i+1, err)
			}
			label := hc.Label
			if label == "" {
				label = strconv.Itoa(i + 1)
			}
			bindings = append(bindings, mapping.Binding{Label: label, Hotkey: h})
		}

		if err := m.AddMapping(mc.Alias, bindings); err != nil {
			return err
		}
	}
	return nil
}

func (hc HotkeyConfig) hotkey(actions *binding.Actions) (*binding.Hotkey, error) {
	combo, err := hotkeys.Normalize(hc.Keys)
	if err != nil {
		return nil, &binding.InvalidHotkeyError{Combination: hc.Keys, Callback: hc.Action, Reason: err.Error()}
	}

	args := make([]any, len(hc.Args))
	for i, a := range hc.Args {
		args[i] = a
	}
	return binding.FromAction(actions, combo, hc.Action, args...)
}
