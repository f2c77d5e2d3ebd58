package hotkeys

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryServiceRecordsSinceLastClear(t *testing.T) {
	svc := NewMemoryService(false)
	noop := func(args ...any) {}

	require.NoError(t, svc.Register("ctrl+1", noop, nil))
	require.NoError(t, svc.ClearAll())
	require.NoError(t, svc.Register("ctrl+2", noop, []any{"a"}))
	require.NoError(t, svc.Register("ctrl+m", noop, nil))

	assert.Equal(t, []string{"ctrl+2", "ctrl+m"}, svc.Combinations())
	assert.Equal(t, 1, svc.Clears())
	assert.Equal(t, []any{"a"}, svc.Registrations()[0].Args)
}

func TestMemoryServiceRejectsBadRegistrations(t *testing.T) {
	svc := NewMemoryService(false)

	assert.Error(t, svc.Register("", func(args ...any) {}, nil))
	assert.Error(t, svc.Register("ctrl+1", nil, nil))
	assert.Empty(t, svc.Registrations())
}

func TestMemoryServiceFire(t *testing.T) {
	svc := NewMemoryService(false)
	var got []any
	require.NoError(t, svc.Register("ctrl+1", func(args ...any) { got = args }, []any{"x", 1}))

	assert.True(t, svc.Fire("ctrl+1"))
	assert.Equal(t, []any{"x", 1}, got)
	assert.False(t, svc.Fire("ctrl+9"))
}

func TestMemoryServiceFireAllowsReregistration(t *testing.T) {
	svc := NewMemoryService(false)
	noop := func(args ...any) {}
	require.NoError(t, svc.Register("ctrl+m", func(args ...any) {
		_ = svc.ClearAll()
		_ = svc.Register("ctrl+2", noop, nil)
	}, nil))

	assert.True(t, svc.Fire("ctrl+m"))
	assert.Equal(t, []string{"ctrl+2"}, svc.Combinations())
}

func TestDispatcherRunsInOrder(t *testing.T) {
	d := NewDispatcher(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var order []int
	done := make(chan struct{})

	for i := 1; i <= 3; i++ {
		n := i
		require.True(t, d.Post(func() {
			mu.Lock()
			order = append(order, n)
			mu.Unlock()
			if n == 3 {
				close(done)
			}
		}))
	}

	go d.Run(ctx)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for dispatched work")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	d := NewDispatcher(1)

	assert.True(t, d.Post(func() {}))
	assert.False(t, d.Post(func() {}))
}

func TestDispatcherStop(t *testing.T) {
	d := NewDispatcher(1)
	finished := make(chan struct{})

	go func() {
		d.Run(context.Background())
		close(finished)
	}()

	d.Stop()
	d.Stop()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
	assert.False(t, d.Post(func() {}))
}

func TestDispatcherRecoversPanic(t *testing.T) {
	d := NewDispatcher(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	after := make(chan struct{})
	d.Post(func() { panic("bad action") })
	d.Post(func() { close(after) })

	go d.Run(ctx)

	select {
	case <-after:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher stopped after a panic")
	}
}

func TestDispatcherWrap(t *testing.T) {
	d := NewDispatcher(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan []any, 1)
	fn := d.Wrap(func(args ...any) { got <- args })

	svc := NewMemoryService(false)
	require.NoError(t, svc.Register("ctrl+1", fn, []any{"a"}))
	go d.Run(ctx)

	svc.Fire("ctrl+1")

	select {
	case args := <-got:
		assert.Equal(t, []any{"a"}, args)
	case <-time.After(2 * time.Second):
		t.Fatal("wrapped callback never ran")
	}
}
