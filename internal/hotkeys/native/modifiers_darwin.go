//go:build darwin

package native

import (
	"golang.design/x/hotkey"

	"github.com/bezmoradi/keycycle/internal/hotkeys"
)

var modifierMap = map[hotkeys.Modifier]hotkey.Modifier{
	hotkeys.ModCtrl:  hotkey.ModCtrl,
	hotkeys.ModShift: hotkey.ModShift,
	hotkeys.ModAlt:   hotkey.ModOption,
	hotkeys.ModSuper: hotkey.ModCmd,
}
