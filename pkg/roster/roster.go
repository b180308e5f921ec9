// Package roster implements the in-memory contact store backing the
// /contacts endpoints. State lives for the lifetime of the process and
// is never persisted.
package roster

import (
	"sort"
	"strings"
	"sync"
)

// DefaultTrustLevel is assigned when a contact is created without an
// explicit trust level.
const DefaultTrustLevel = 3

// Contact is a stored roster entry.
type Contact struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Affiliation string `json:"affiliation,omitempty"`
	TrustLevel  int    `json:"trust_level"`
}

// Store is a mutex-guarded contact roster. IDs are assigned
// sequentially starting at 1 and are never reused while the store
// holds records; Clear resets the counter.
type Store struct {
	mu       sync.RWMutex
	contacts map[int64]Contact
	nextID   int64
}

// NewStore returns an empty roster.
func NewStore() *Store {
	return &Store{
		contacts: make(map[int64]Contact),
		nextID:   1,
	}
}

// Create stores a new contact and returns it with its assigned id.
// Names are unique under case folding; a duplicate yields a
// *ConflictError and no state change. The check and the insert happen
// under one lock so concurrent creates cannot both pass the check.
func (s *Store) Create(c Contact) (Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.contacts {
		if strings.EqualFold(existing.Name, c.Name) {
			return Contact{}, &ConflictError{Name: c.Name}
		}
	}

	if c.TrustLevel == 0 {
		c.TrustLevel = DefaultTrustLevel
	}
	c.ID = s.nextID
	s.contacts[c.ID] = c
	s.nextID++
	return c, nil
}

// Get returns the contact with the given id.
func (s *Store) Get(id int64) (Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contacts[id]
	if !ok {
		return Contact{}, &NotFoundError{ID: id}
	}
	return c, nil
}

// List returns all contacts in insertion order.
func (s *Store) List() []Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked()
}

// Page returns a window of the roster for paginated listings. skip
// values past the end yield an empty slice; limit <= 0 yields an empty
// slice.
func (s *Store) Page(skip, limit int) []Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.listLocked()
	if skip < 0 {
		skip = 0
	}
	if skip >= len(all) || limit <= 0 {
		return []Contact{}
	}
	end := skip + limit
	if end > len(all) {
		end = len(all)
	}
	return all[skip:end]
}

// Count returns the number of stored contacts.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contacts)
}

// Clear removes every contact and resets the id counter to 1. The next
// Create after a Clear assigns id 1 again.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.contacts = make(map[int64]Contact)
	s.nextID = 1
}

func (s *Store) listLocked() []Contact {
	ids := make([]int64, 0, len(s.contacts))
	for id := range s.contacts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]Contact, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.contacts[id])
	}
	return out
}
