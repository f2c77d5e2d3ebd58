//go:build linux

package native

import (
	"golang.design/x/hotkey"

	"github.com/bezmoradi/keycycle/internal/hotkeys"
)

// X11: Alt is Mod1, Super is Mod4.
var modifierMap = map[hotkeys.Modifier]hotkey.Modifier{
	hotkeys.ModCtrl:  hotkey.ModCtrl,
	hotkeys.ModShift: hotkey.ModShift,
	hotkeys.ModAlt:   hotkey.Mod1,
	hotkeys.ModSuper: hotkey.Mod4,
}
