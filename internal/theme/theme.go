// Package theme holds the light/dark display preference of a page.
package theme

import (
	"errors"
	"slices"
	"sync"
)

// StorageKey is the key the preference is persisted under.
const StorageKey = "theme"

// Mode is the two-valued display preference.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// Default is used when nothing valid has been persisted.
const Default = Dark

// ErrStorageUnavailable reports that the backing store cannot be used.
var ErrStorageUnavailable = errors.New("theme storage unavailable")

// Parse returns the mode named by s.
func Parse(s string) (Mode, bool) {
	switch Mode(s) {
	case Light, Dark:
		return Mode(s), true
	}
	return "", false
}

// Toggle returns the opposite mode.
func (m Mode) Toggle() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

func (m Mode) String() string { return string(m) }

// Store persists the raw preference value under StorageKey.
// Load returns "" with a nil error when nothing has been stored.
type Store interface {
	Load() (string, error)
	Save(value string) error
}

// Preference is the theme state of one page. Create it with New.
type Preference struct {
	mu        sync.Mutex
	mode      Mode
	store     Store
	persisted bool
	observers []func(Mode)
}

// New reads the persisted value from store. An absent or invalid value
// yields Default. If the store fails the preference lives in memory only.
func New(store Store) *Preference {
	p := &Preference{mode: Default, store: store}
	if store == nil {
		return p
	}

	raw, err := store.Load()
	if err != nil {
		return p
	}
	p.persisted = true
	if m, ok := Parse(raw); ok {
		p.mode = m
	}
	return p
}

// Get returns the current mode.
func (p *Preference) Get() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// Persisted reports whether changes are still written to the store.
func (p *Preference) Persisted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.persisted
}

// Subscribe registers fn to be called with the new mode after every toggle.
func (p *Preference) Subscribe(fn func(Mode)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, fn)
}

// Toggle flips the mode, persists it and notifies subscribers.
// A failed save switches the preference to in-memory for the rest of its life.
func (p *Preference) Toggle() Mode {
	p.mu.Lock()
	p.mode = p.mode.Toggle()
	mode := p.mode
	if p.persisted {
		if err := p.store.Save(string(mode)); err != nil {
			p.persisted = false
		}
	}
	observers := slices.Clone(p.observers)
	p.mu.Unlock()

	for _, fn := range observers {
		fn(mode)
	}
	return mode
}

// MemoryStore is a Store backed by a single in-memory value.
// Setting Unavailable makes every call fail with ErrStorageUnavailable.
type MemoryStore struct {
	mu          sync.Mutex
	value       string
	Unavailable bool
}

// NewMemoryStore returns a store holding value.
func NewMemoryStore(value string) *MemoryStore {
	return &MemoryStore{value: value}
}

func (s *MemoryStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Unavailable {
		return "", ErrStorageUnavailable
	}
	return s.value, nil
}

func (s *MemoryStore) Save(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Unavailable {
		return ErrStorageUnavailable
	}
	s.value = value
	return nil
}

// Value returns the stored value.
func (s *MemoryStore) Value() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}
