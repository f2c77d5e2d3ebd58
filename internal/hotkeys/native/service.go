// Package native registers global hotkeys with the operating system through
// golang.design/x/hotkey. On macOS the program must run its main function
// through mainthread.Init.
package native

import (
	"fmt"
	"log"
	"sync"

	"golang.design/x/hotkey"

	"github.com/bezmoradi/keycycle/internal/hotkeys"
)

type registered struct {
	combination string
	hk          *hotkey.Hotkey
	stop        chan struct{}
	done        chan struct{}
}

// Service is a hotkeys.Service backed by OS-level hotkey hooks. Key presses
// are delivered from listener goroutines, so callbacks should be wrapped with
// a hotkeys.Dispatcher.
type Service struct {
	mu      sync.Mutex
	entries []*registered
}

// NewService creates an OS hotkey service with nothing registered.
func NewService() *Service {
	return &Service{}
}

func (s *Service) Register(combination string, fn func(args ...any), args []any) error {
	if fn == nil {
		return fmt.Errorf("nil callback for %s", combination)
	}

	mods, key, err := resolve(combination)
	if err != nil {
		return err
	}

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("register %s: %w", combination, err)
	}

	r := &registered{
		combination: combination,
		hk:          hk,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	go listen(r, fn, args)

	s.mu.Lock()
	s.entries = append(s.entries, r)
	s.mu.Unlock()

	log.Printf("[HOTKEY] registered %s", combination)
	return nil
}

func (s *Service) ClearAll() error {
	s.mu.Lock()
	entries := s.entries
	s.entries = nil
	s.mu.Unlock()

	var firstErr error
	for _, r := range entries {
		close(r.stop)
		<-r.done
		if err := r.hk.Unregister(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("unregister %s: %w", r.combination, err)
		}
	}
	if len(entries) > 0 {
		log.Printf("[HOTKEY] unregistered %d hotkeys", len(entries))
	}
	return firstErr
}

func listen(r *registered, fn func(args ...any), args []any) {
	defer close(r.done)
	for {
		select {
		case <-r.hk.Keydown():
			fn(args...)
		case <-r.stop:
			return
		}
	}
}

func resolve(combination string) ([]hotkey.Modifier, hotkey.Key, error) {
	c, err := hotkeys.ParseCombination(combination)
	if err != nil {
		return nil, 0, err
	}

	key, ok := lookupKey(c.Key)
	if !ok {
		return nil, 0, fmt.Errorf("unsupported key: %s", c.Key)
	}

	mods := make([]hotkey.Modifier, 0, len(c.Modifiers))
	for _, m := range c.Modifiers {
		mod, ok := modifierMap[m]
		if !ok {
			return nil, 0, fmt.Errorf("unsupported modifier on this platform: %s", m)
		}
		mods = append(mods, mod)
	}
	return mods, key, nil
}
