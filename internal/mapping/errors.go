package mapping

import (
	"fmt"
)

// TypeMismatchError reports a registration value that is not a usable hotkey.
type TypeMismatchError struct {
	Alias string
	Label string
}

func (e *TypeMismatchError) Error() string {
	if e.Alias == "" {
		return "persistent hotkey must be a non-nil Hotkey"
	}
	return fmt.Sprintf("binding %q in mapping %q must be a non-nil Hotkey", e.Label, e.Alias)
}

// ConflictKind identifies which pair of bindings collided.
type ConflictKind int

const (
	// KindDuplicate is two entries of one mapping on the same combination.
	KindDuplicate ConflictKind = iota + 1
	// KindCycleKey is a mapping entry on the master cycle key.
	KindCycleKey
	// KindPersistent is a mapping entry on a persistent hotkey's combination.
	KindPersistent
	// KindPersistentCycleKey is a persistent hotkey on the master cycle key.
	KindPersistentCycleKey
)

func (k ConflictKind) String() string {
	switch k {
	case KindDuplicate:
		return "duplicate"
	case KindCycleKey:
		return "cycle-key"
	case KindPersistent:
		return "persistent"
	case KindPersistentCycleKey:
		return "persistent-cycle-key"
	}
	return "unknown"
}

// ConflictError reports two bindings sharing one key combination. Positions
// are 1-based entry positions within Mapping.
type ConflictError struct {
	Kind        ConflictKind
	Combination string
	Mapping     string
	Position    int
	Other       int
	Persistent  string
}

func (e *ConflictError) Error() string {
	switch e.Kind {
	case KindDuplicate:
		return fmt.Sprintf("hotkey conflict: %s is bound to both items at positions %d and %d in mapping: %s",
			e.Combination, e.Position, e.Other, e.Mapping)
	case KindCycleKey:
		return fmt.Sprintf("hotkey conflict: %s is bound to item at position %d in mapping: %s and the master hotkey",
			e.Combination, e.Position, e.Mapping)
	case KindPersistent:
		return fmt.Sprintf("hotkey conflict: %s is bound to item at position %d in mapping: %s and persistent hotkey: %s",
			e.Combination, e.Position, e.Mapping, e.Persistent)
	case KindPersistentCycleKey:
		return fmt.Sprintf("hotkey conflict: %s is bound to persistent hotkey: %s and the master hotkey",
			e.Combination, e.Persistent)
	}
	return fmt.Sprintf("hotkey conflict: %s", e.Combination)
}

// StateError reports an operation attempted in the wrong lifecycle state.
type StateError struct {
	Op string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: manager not finalized, call Finalize first", e.Op)
}

// Is makes every StateError match ErrNotFinalized.
func (e *StateError) Is(target error) bool {
	_, ok := target.(*StateError)
	return ok
}

// ErrNotFinalized matches any StateError with errors.Is.
var ErrNotFinalized error = &StateError{Op: "mapping"}

// NotFoundError reports an unknown mapping alias.
type NotFoundError struct {
	Alias string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("alias not found: %q", e.Alias)
}
