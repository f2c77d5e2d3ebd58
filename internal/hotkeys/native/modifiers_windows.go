//go:build windows

package native

import (
	"golang.design/x/hotkey"

	"github.com/bezmoradi/keycycle/internal/hotkeys"
)

var modifierMap = map[hotkeys.Modifier]hotkey.Modifier{
	hotkeys.ModCtrl:  hotkey.ModCtrl,
	hotkeys.ModShift: hotkey.ModShift,
	hotkeys.ModAlt:   hotkey.ModAlt,
	hotkeys.ModSuper: hotkey.ModWin,
}
