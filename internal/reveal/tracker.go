// Package reveal latches page elements as revealed the first time they
// scroll into view.
package reveal

import (
	"sort"
	"sync"
)

// Threshold is the visible area ratio at which an element is revealed.
const Threshold = 0.1

// Tracker holds the reveal state of the elements of one page.
// The zero value is not usable; call NewTracker.
type Tracker struct {
	mu       sync.Mutex
	revealed map[string]bool
}

// NewTracker returns a tracker watching ids.
func NewTracker(ids ...string) *Tracker {
	t := &Tracker{revealed: make(map[string]bool, len(ids))}
	for _, id := range ids {
		t.Register(id)
	}
	return t
}

// Register adds id to the watch set. Registering a known id does nothing.
func (t *Tracker) Register(id string) {
	if id == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.revealed[id]; !ok {
		t.revealed[id] = false
	}
}

// Observe records that ratio of the element's area is visible. It returns
// true only for the observation that reveals the element; unknown and
// already revealed elements are ignored.
func (t *Tracker) Observe(id string, ratio float64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	revealed, ok := t.revealed[id]
	if !ok || revealed || ratio < Threshold {
		return false
	}
	t.revealed[id] = true
	return true
}

// Revealed reports whether id has been revealed.
func (t *Tracker) Revealed(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.revealed[id]
}

// Watching returns the ids still awaiting reveal, sorted.
func (t *Tracker) Watching() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var ids []string
	for id, revealed := range t.revealed {
		if !revealed {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Snapshot returns a copy of the reveal state.
func (t *Tracker) Snapshot() map[string]bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]bool, len(t.revealed))
	for id, revealed := range t.revealed {
		out[id] = revealed
	}
	return out
}
