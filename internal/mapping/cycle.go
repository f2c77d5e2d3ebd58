package mapping

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

const cyclePrompt = "Enter alias to set mapping, or 'exit' to exit: "

// maxSuggestDistance bounds the edit distance for "did you mean" hints.
const maxSuggestDistance = 2

var exitTokens = map[string]bool{
	"exit": true,
	"e":    true,
	"-1":   true,
}

// CycleMappings runs the interactive mapping switcher. It shows the current
// and available mappings and reads aliases until one matches exactly, which
// is then activated, or an exit token ("exit", "e", "-1", any case) is read.
// It blocks until then. End of input returns an error wrapping io.EOF.
func (m *Manager) CycleMappings() error {
	if !m.finalized {
		return &StateError{Op: "cycle mappings"}
	}

	m.cycling = true
	defer func() { m.cycling = false }()

	for {
		m.console.Choices(m.currentAlias, m.order)

		choice, err := m.console.Prompt(cyclePrompt)
		if err != nil {
			return fmt.Errorf("read mapping choice: %w", err)
		}

		if exitTokens[strings.ToLower(choice)] {
			return nil
		}
		if _, ok := m.mappings[choice]; ok {
			return m.SetMapping(choice, false)
		}

		if hint := m.suggest(choice); hint != "" {
			m.console.Warn("Invalid choice %q, did you mean %q?", choice, hint)
		} else {
			m.console.Warn("Invalid choice %q", choice)
		}
	}
}

// suggest returns the closest alias to input, or "" when none is close.
func (m *Manager) suggest(input string) string {
	if input == "" {
		return ""
	}

	best := ""
	bestDist := maxSuggestDistance + 1
	lowered := strings.ToLower(input)
	for _, alias := range m.order {
		d := levenshtein.ComputeDistance(lowered, strings.ToLower(alias))
		if d < bestDist {
			best, bestDist = alias, d
		}
	}
	return best
}
