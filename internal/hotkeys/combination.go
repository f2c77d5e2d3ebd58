package hotkeys

import (
	"fmt"
	"sort"
	"strings"
)

// Modifier is a platform-neutral modifier name.
type Modifier string

const (
	ModCtrl  Modifier = "ctrl"
	ModShift Modifier = "shift"
	ModAlt   Modifier = "alt"
	ModSuper Modifier = "super"
)

var modifierAliases = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"shift":   ModShift,
	"alt":     ModAlt,
	"option":  ModAlt,
	"opt":     ModAlt,
	"super":   ModSuper,
	"win":     ModSuper,
	"cmd":     ModSuper,
	"command": ModSuper,
	"meta":    ModSuper,
}

var keyAliases = map[string]string{
	"return": "enter",
	"escape": "esc",
	"del":    "delete",
}

var namedKeys = map[string]bool{
	"space":  true,
	"enter":  true,
	"esc":    true,
	"tab":    true,
	"delete": true,
	"left":   true,
	"right":  true,
	"up":     true,
	"down":   true,
}

// Combination is a parsed "ctrl+alt+k" style key chord.
type Combination struct {
	Modifiers []Modifier
	Key       string
}

func (c Combination) String() string {
	parts := make([]string, 0, len(c.Modifiers)+1)
	for _, m := range c.Modifiers {
		parts = append(parts, string(m))
	}
	return strings.Join(append(parts, c.Key), "+")
}

// ParseCombination parses a '+' separated chord. The last part is the key,
// everything before it is a modifier. Names are case-insensitive.
func ParseCombination(s string) (Combination, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return Combination{}, fmt.Errorf("empty combination")
	}

	parts := strings.Split(s, "+")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	keyPart := parts[len(parts)-1]
	if keyPart == "" {
		return Combination{}, fmt.Errorf("combination %q has no key", s)
	}
	if alias, ok := keyAliases[keyPart]; ok {
		keyPart = alias
	}
	if !IsKnownKey(keyPart) {
		return Combination{}, fmt.Errorf("unsupported key: %s", keyPart)
	}

	var mods []Modifier
	seen := make(map[Modifier]bool)
	for _, part := range parts[:len(parts)-1] {
		mod, ok := modifierAliases[part]
		if !ok {
			return Combination{}, fmt.Errorf("unsupported modifier: %s", part)
		}
		if seen[mod] {
			continue
		}
		seen[mod] = true
		mods = append(mods, mod)
	}

	return Combination{Modifiers: mods, Key: keyPart}, nil
}

// IsKnownKey reports whether key is a normalized key name the backends support.
func IsKnownKey(key string) bool {
	if len(key) == 1 {
		c := key[0]
		return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
	}
	if namedKeys[key] {
		return true
	}
	return functionKeyNumber(key) > 0
}

// FunctionKey returns n for "fN" (1..20) and 0 otherwise.
func FunctionKey(key string) int {
	return functionKeyNumber(key)
}

func functionKeyNumber(key string) int {
	if len(key) < 2 || len(key) > 3 || key[0] != 'f' {
		return 0
	}
	n := 0
	for _, c := range key[1:] {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	if n < 1 || n > 20 {
		return 0
	}
	return n
}

var modifierRank = map[Modifier]int{ModCtrl: 0, ModShift: 1, ModAlt: 2, ModSuper: 3}

// Normalize parses s and returns it with modifiers in ctrl, shift, alt, super
// order, so that equal chords compare equal as strings.
func Normalize(s string) (string, error) {
	c, err := ParseCombination(s)
	if err != nil {
		return "", err
	}
	sort.SliceStable(c.Modifiers, func(i, j int) bool {
		return modifierRank[c.Modifiers[i]] < modifierRank[c.Modifiers[j]]
	})
	return c.String(), nil
}
