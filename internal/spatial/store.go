// Package spatial holds the authoritative in-memory note collection for the
// current session and its derived views: tag universe, filtered notes, the
// carousel set, and stack membership.
package spatial

import (
	"sort"
	"strings"
	"sync"

	"github.com/stickon/stickon/internal/models"
)

// Store is the single shared mutable note collection. Notes are kept in
// collection order (creation time descending, as listed by the record
// store). All mutations replace whole records by id rather than merging
// partial fields, so an interleaved write can never produce a half-updated
// note.
type Store struct {
	mu    sync.RWMutex
	notes []models.Note

	search     string
	activeTags []string

	armed string // stacking source id, empty when inactive
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Load replaces the whole collection, preserving the given order.
func (s *Store) Load(notes []models.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append([]models.Note(nil), notes...)
}

// Clear drops every note and resets interaction state. Called at session end.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = nil
	s.armed = ""
}

// Len returns the number of notes in the collection.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}

// All returns a copy of the full collection in order.
func (s *Store) All() []models.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Note(nil), s.notes...)
}

// Get returns the note with the given id.
func (s *Store) Get(id string) (models.Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.notes {
		if s.notes[i].ID == id {
			return s.notes[i], true
		}
	}
	return models.Note{}, false
}

// Insert prepends a newly created note (newest first).
func (s *Store) Insert(n models.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append([]models.Note{n}, s.notes...)
}

// Replace swaps the stored record for the one with the same id. Unknown ids
// are ignored; the caller decides whether that is an error.
func (s *Store) Replace(n models.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notes {
		if s.notes[i].ID == n.ID {
			s.notes[i] = n
			return
		}
	}
}

// Remove takes a note out of the collection, returning the removed record
// and its index so a failed remote delete can be rolled back with RestoreAt.
// Children stacked onto the removed note are un-stacked.
func (s *Store) Remove(id string) (models.Note, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notes {
		if s.notes[i].ID != id {
			continue
		}
		removed := s.notes[i]
		s.notes = append(s.notes[:i], s.notes[i+1:]...)
		for j := range s.notes {
			if s.notes[j].StackID == id {
				s.notes[j].StackID = ""
			}
		}
		if s.armed == id {
			s.armed = ""
		}
		return removed, i, true
	}
	return models.Note{}, 0, false
}

// RestoreAt reinserts a previously removed note at its original index.
func (s *Store) RestoreAt(n models.Note, idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx < 0 {
		idx = 0
	}
	if idx > len(s.notes) {
		idx = len(s.notes)
	}
	s.notes = append(s.notes[:idx], append([]models.Note{n}, s.notes[idx:]...)...)
}

// SetSearch sets the free-text search term.
func (s *Store) SetSearch(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = term
}

// SetActiveTags sets the active tag filters. A note must carry every active
// tag to pass the filter.
func (s *Store) SetActiveTags(tags []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeTags = append([]string(nil), tags...)
}

// Filter returns the current search term and active tag filters.
func (s *Store) Filter() (string, []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.search, append([]string(nil), s.activeTags...)
}

// TagUniverse returns every distinct tag across all notes, sorted.
func (s *Store) TagUniverse() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	var out []string
	for i := range s.notes {
		for _, t := range s.notes[i].Tags {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// Filtered returns the notes matching the current search term and active
// tag filters, pinned notes first. The pin ordering is a stable partition:
// relative order within each pin group is preserved from collection order.
func (s *Store) Filtered() []models.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pinned, rest []models.Note
	for i := range s.notes {
		if !s.matches(&s.notes[i]) {
			continue
		}
		if s.notes[i].Pinned {
			pinned = append(pinned, s.notes[i])
		} else {
			rest = append(rest, s.notes[i])
		}
	}
	return append(pinned, rest...)
}

// CarouselSet returns the filtered notes with no stack parent. Only these
// are eligible for primary carousel navigation.
func (s *Store) CarouselSet() []models.Note {
	var out []models.Note
	for _, n := range s.Filtered() {
		if n.StackID == "" {
			out = append(out, n)
		}
	}
	return out
}

// StackMembers returns the filtered notes stacked onto the given parent.
func (s *Store) StackMembers(parentID string) []models.Note {
	var out []models.Note
	for _, n := range s.Filtered() {
		if n.StackID == parentID {
			out = append(out, n)
		}
	}
	return out
}

// matches applies the filter predicate: (no search term OR case-insensitive
// substring match on text, summary, or any tag) AND (note carries every
// active tag). Callers hold s.mu.
func (s *Store) matches(n *models.Note) bool {
	if s.search != "" {
		term := strings.ToLower(s.search)
		hit := strings.Contains(strings.ToLower(n.Text), term) ||
			strings.Contains(strings.ToLower(n.Summary), term)
		if !hit {
			for _, t := range n.Tags {
				if strings.Contains(strings.ToLower(t), term) {
					hit = true
					break
				}
			}
		}
		if !hit {
			return false
		}
	}
	for _, want := range s.activeTags {
		found := false
		for _, t := range n.Tags {
			if t == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Verify the id a stacking commit will target actually exists.
func (s *Store) exists(id string) bool {
	for i := range s.notes {
		if s.notes[i].ID == id {
			return true
		}
	}
	return false
}
