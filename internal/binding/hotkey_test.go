package binding

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(args ...any) {}

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		combination string
		callback    string
		fn          Callback
		wantErr     bool
	}{
		{name: "valid", combination: "ctrl+1", callback: "open", fn: noop},
		{name: "trimmed", combination: "  ctrl+2 ", callback: "open", fn: noop},
		{name: "empty combination", combination: "", callback: "open", fn: noop, wantErr: true},
		{name: "blank combination", combination: "   ", callback: "open", fn: noop, wantErr: true},
		{name: "nil callback", combination: "ctrl+1", callback: "open", fn: nil, wantErr: true},
		{name: "empty callback name", combination: "ctrl+1", callback: "", fn: noop, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := New(tt.combination, tt.callback, tt.fn)
			if tt.wantErr {
				var ih *InvalidHotkeyError
				require.True(t, errors.As(err, &ih), "want InvalidHotkeyError, got %v", err)
				assert.Nil(t, h)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, h.Combination())
		})
	}
}

func TestHotkeyAccessors(t *testing.T) {
	h, err := New(" ctrl+shift+k ", "say", noop, "hello", 3)
	require.NoError(t, err)

	assert.Equal(t, "ctrl+shift+k", h.Combination())
	assert.Equal(t, "say", h.CallbackName())
	assert.Equal(t, []any{"hello", 3}, h.Args())
	assert.Equal(t, "ctrl+shift+k -> say", h.Describe())
}

func TestHotkeyArgsAreCopied(t *testing.T) {
	args := []any{"a", "b"}
	h, err := New("ctrl+1", "echo", noop, args...)
	require.NoError(t, err)

	args[0] = "changed"
	got := h.Args()
	got[1] = "changed"

	assert.Equal(t, []any{"a", "b"}, h.Args())
}

func TestHotkeyTrigger(t *testing.T) {
	var received []any
	h, err := New("ctrl+1", "record", func(args ...any) {
		received = args
	}, "x", 42)
	require.NoError(t, err)

	h.Trigger()
	assert.Equal(t, []any{"x", 42}, received)
}

func TestHotkeyTriggerRecoversPanic(t *testing.T) {
	h, err := New("ctrl+1", "boom", func(args ...any) {
		panic("boom")
	})
	require.NoError(t, err)

	assert.NotPanics(t, h.Trigger)
}

func TestActions(t *testing.T) {
	actions := NewActions()
	var calls int
	actions.Register("count", func(args ...any) { calls++ })
	actions.Register("echo", noop)

	assert.Equal(t, []string{"count", "echo"}, actions.Names())

	h, err := FromAction(actions, "ctrl+c", "count")
	require.NoError(t, err)
	h.Trigger()
	h.Trigger()
	assert.Equal(t, 2, calls)

	_, err = FromAction(actions, "ctrl+x", "missing")
	var ih *InvalidHotkeyError
	require.ErrorAs(t, err, &ih)
	assert.Equal(t, "ctrl+x", ih.Combination)
	assert.Equal(t, "missing", ih.Callback)
}
