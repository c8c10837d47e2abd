// Package session keeps the per-page-load state of open pages.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oogunniyi/portfolio/internal/modal"
	"github.com/oogunniyi/portfolio/internal/reveal"
)

// Page is the state of one page load. It ends when the page is swept.
type Page struct {
	ID      string
	Tracker *reveal.Tracker
	Modal   *modal.Controller

	lastSeen time.Time
}

// DefaultMaxPages bounds a registry created with a non-positive limit.
const DefaultMaxPages = 10000

// Registry maps page ids to pages. It holds at most max pages; creating
// one more evicts the page seen least recently.
type Registry struct {
	mu       sync.Mutex
	pages    map[string]*Page
	sections []string
	max      int
	now      func() time.Time
}

// NewRegistry returns a registry whose pages track the given section ids.
func NewRegistry(sections []string, maxPages int) *Registry {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &Registry{
		pages:    make(map[string]*Page),
		sections: append([]string(nil), sections...),
		max:      maxPages,
		now:      time.Now,
	}
}

// Create starts a new page with every section unrevealed and the modal closed.
func (r *Registry) Create() *Page {
	p := &Page{
		ID:      uuid.NewString(),
		Tracker: reveal.NewTracker(r.sections...),
		Modal:   modal.NewController(),
	}

	r.mu.Lock()
	for len(r.pages) >= r.max {
		r.evictOldest()
	}
	p.lastSeen = r.now()
	r.pages[p.ID] = p
	r.mu.Unlock()
	return p
}

// evictOldest drops the least recently seen page. r.mu must be held.
func (r *Registry) evictOldest() {
	var oldest *Page
	for _, p := range r.pages {
		if oldest == nil || p.lastSeen.Before(oldest.lastSeen) {
			oldest = p
		}
	}
	if oldest != nil {
		delete(r.pages, oldest.ID)
	}
}

// Get returns the page with id and marks it as seen.
func (r *Registry) Get(id string) (*Page, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pages[id]
	if ok {
		p.lastSeen = r.now()
	}
	return p, ok
}

// Len returns the number of live pages.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pages)
}

// Sweep drops pages not seen for longer than idle and returns how many went.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, p := range r.pages {
		if p.lastSeen.Before(cutoff) {
			delete(r.pages, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, every, idle time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Sweep(idle)
		}
	}
}
