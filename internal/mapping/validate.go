package mapping

// validate returns the first conflict between bindings. Mappings are checked
// in alias order and entries in position order; for each entry it looks for
// another entry on the same combination, then the master key, then the
// persistent hotkeys. Persistent hotkeys are checked against the master key
// last. Two persistent hotkeys on one combination are not a conflict.
// An entry's duplicates are reported before its master key or persistent
// clashes, so an entry on the master key that is also repeated later in its
// mapping reports the duplicate.
func (m *Manager) validate() error {
	for _, alias := range m.order {
		mp := m.mappings[alias]

		positions := make(map[string][]int, len(mp.combos))
		for _, c := range mp.combos {
			positions[c.combination] = append(positions[c.combination], c.position)
		}

		for _, c := range mp.combos {
			for _, other := range positions[c.combination] {
				if other == c.position {
					continue
				}
				return &ConflictError{
					Kind:        KindDuplicate,
					Combination: c.combination,
					Mapping:     alias,
					Position:    c.position + 1,
					Other:       other + 1,
				}
			}

			if c.combination == m.cycleKey {
				return &ConflictError{
					Kind:        KindCycleKey,
					Combination: c.combination,
					Mapping:     alias,
					Position:    c.position + 1,
				}
			}

			for _, p := range m.persistent {
				if p.Combination() == c.combination {
					return &ConflictError{
						Kind:        KindPersistent,
						Combination: c.combination,
						Mapping:     alias,
						Position:    c.position + 1,
						Persistent:  p.CallbackName(),
					}
				}
			}
		}
	}

	for _, p := range m.persistent {
		if p.Combination() == m.cycleKey {
			return &ConflictError{
				Kind:        KindPersistentCycleKey,
				Combination: p.Combination(),
				Persistent:  p.CallbackName(),
			}
		}
	}
	return nil
}
