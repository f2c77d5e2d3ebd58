package hotkeys

import (
	"fmt"
	"log"
	"sync"
)

// Service is the OS-level hotkey registration table. It only supports
// incremental registration and a global clear; replacing a set of hotkeys
// means clearing everything and registering again.
type Service interface {
	Register(combination string, fn func(args ...any), args []any) error
	ClearAll() error
}

// Registration is one entry recorded by MemoryService.
type Registration struct {
	Combination string
	Callback    func(args ...any)
	Args        []any
}

// MemoryService records registrations instead of hooking real input. It backs
// dry runs and tests, and can fire a registered combination on demand.
type MemoryService struct {
	mu      sync.Mutex
	entries []Registration
	clears  int
	verbose bool
}

// NewMemoryService creates an empty in-memory registration table. When
// verbose is true every registration is logged.
func NewMemoryService(verbose bool) *MemoryService {
	return &MemoryService{verbose: verbose}
}

func (s *MemoryService) Register(combination string, fn func(args ...any), args []any) error {
	if combination == "" {
		return fmt.Errorf("empty combination")
	}
	if fn == nil {
		return fmt.Errorf("nil callback for %s", combination)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, Registration{
		Combination: combination,
		Callback:    fn,
		Args:        args,
	})
	if s.verbose {
		log.Printf("[HOTKEY] registered %s", combination)
	}
	return nil
}

func (s *MemoryService) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	s.clears++
	if s.verbose {
		log.Printf("[HOTKEY] cleared all registrations")
	}
	return nil
}

// Registrations returns the entries registered since the last clear.
func (s *MemoryService) Registrations() []Registration {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Registration, len(s.entries))
	copy(out, s.entries)
	return out
}

// Combinations returns the registered combinations in registration order.
func (s *MemoryService) Combinations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Combination)
	}
	return out
}

// Clears returns how many times ClearAll has been called.
func (s *MemoryService) Clears() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clears
}

// Fire invokes every callback registered under combination, as the OS hook
// would on a key press. It reports whether anything was registered.
func (s *MemoryService) Fire(combination string) bool {
	s.mu.Lock()
	var matched []Registration
	for _, e := range s.entries {
		if e.Combination == combination {
			matched = append(matched, e)
		}
	}
	s.mu.Unlock()

	// Callbacks may re-register, so they run without the lock held.
	for _, e := range matched {
		e.Callback(e.Args...)
	}
	return len(matched) > 0
}
