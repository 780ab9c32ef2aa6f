package spatial

import (
	"fmt"

	"github.com/stickon/stickon/internal/apperr"
)

// Stacking is a two-state interaction: inactive, or armed with a source
// note awaiting a target. Arming the same note again toggles the mode off.
// Committing onto the source itself is a no-op, not an error, and leaves
// the machine armed.

// ArmedStack returns the id of the note currently picked for stacking, or
// empty when stacking mode is inactive.
func (s *Store) ArmedStack() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.armed
}

// StartStacking arms stacking mode with the given source note, or disarms
// it when the same note is picked twice.
func (s *Store) StartStacking(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.exists(id) {
		return fmt.Errorf("start stacking %s: %w", id, apperr.ErrNotFound)
	}
	if s.armed == id {
		s.armed = ""
		return nil
	}
	s.armed = id
	return nil
}

// CancelStacking returns the machine to inactive without committing.
func (s *Store) CancelStacking() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.armed = ""
}

// FinishStacking resolves the armed interaction against a target note. On a
// real commit it disarms and returns the source id with commit=true; the
// caller then sets source.stack_id = target through the standard note
// update path. A self-target returns commit=false with no state change.
func (s *Store) FinishStacking(targetID string) (source string, commit bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.armed == "" {
		return "", false, fmt.Errorf("finish stacking: %w", apperr.ErrValidation)
	}
	if targetID == s.armed {
		return "", false, nil
	}
	if !s.exists(targetID) {
		return "", false, fmt.Errorf("finish stacking onto %s: %w", targetID, apperr.ErrNotFound)
	}
	source = s.armed
	s.armed = ""
	return source, true, nil
}
