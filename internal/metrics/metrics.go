// Package metrics tracks how often each mapping is activated and how long it
// stays active.
package metrics

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/bezmoradi/keycycle/internal/mapping"
)

// AliasStats is the usage of one mapping.
type AliasStats struct {
	Alias       string        `json:"alias"`
	Activations int           `json:"activations"`
	Active      time.Duration `json:"active"`
}

// DailyMetrics is the activation count per alias for one day.
type DailyMetrics struct {
	Date        string         `json:"date"`
	Activations map[string]int `json:"activations"`
	Total       int            `json:"total"`
}

// TotalMetrics sums every stored day.
type TotalMetrics struct {
	TotalSwitches int            `json:"total_switches"`
	ActiveDays    int            `json:"active_days"`
	Activations   map[string]int `json:"activations"`
}

// Aliases returns the aliases in TotalMetrics sorted by activation count,
// most used first.
func (t *TotalMetrics) Aliases() []string {
	out := make([]string, 0, len(t.Activations))
	for alias := range t.Activations {
		out = append(out, alias)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := t.Activations[out[i]], t.Activations[out[j]]
		if a != b {
			return a > b
		}
		return out[i] < out[j]
	})
	return out
}

// Tracker accumulates per-mapping usage from switch events. When storage is
// set each activation is also recorded on disk.
type Tracker struct {
	mu      sync.Mutex
	storage *Storage
	now     func() time.Time

	stats   map[string]*AliasStats
	order   []string
	current string
	since   time.Time
}

// NewTracker creates a tracker. storage may be nil.
func NewTracker(storage *Storage) *Tracker {
	return &Tracker{
		storage: storage,
		now:     time.Now,
		stats:   make(map[string]*AliasStats),
	}
}

// OnSwitch is a mapping.Manager subscriber.
func (t *Tracker) OnSwitch(e mapping.SwitchEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	at := e.At
	if at.IsZero() {
		at = t.now()
	}

	if t.current != "" {
		t.entry(t.current).Active += at.Sub(t.since)
	}
	t.entry(e.Alias).Activations++
	t.current = e.Alias
	t.since = at

	if t.storage != nil {
		if err := t.storage.SaveActivation(e.Alias, at); err != nil {
			log.Printf("[METRICS] failed to save activation: %v", err)
		}
	}
}

// Snapshot returns usage per alias in first-activation order. The active
// mapping's time runs up to now.
func (t *Tracker) Snapshot() []AliasStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]AliasStats, 0, len(t.order))
	for _, alias := range t.order {
		s := *t.stats[alias]
		if alias == t.current {
			s.Active += t.now().Sub(t.since)
		}
		out = append(out, s)
	}
	return out
}

// Current returns the alias the tracker last saw activated.
func (t *Tracker) Current() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Totals returns the stored totals, or nil without storage.
func (t *Tracker) Totals() (*TotalMetrics, error) {
	if t.storage == nil {
		return nil, nil
	}
	return t.storage.GetTotalMetrics()
}

func (t *Tracker) entry(alias string) *AliasStats {
	s, ok := t.stats[alias]
	if !ok {
		s = &AliasStats{Alias: alias}
		t.stats[alias] = s
		t.order = append(t.order, alias)
	}
	return s
}
