// Package syncer coordinates the in-memory note collection with the record
// store. Every mutation flows through it: edits apply locally first and are
// persisted remotely, position changes are debounced per note, and failed
// deletes are rolled back.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/stickon/stickon/internal/apperr"
	"github.com/stickon/stickon/internal/layout"
	"github.com/stickon/stickon/internal/models"
	"github.com/stickon/stickon/internal/recordstore"
	"github.com/stickon/stickon/internal/session"
	"github.com/stickon/stickon/internal/spatial"
	"github.com/stickon/stickon/internal/sse"
)

// DefaultDebounce is how long a note's position must stay still before its
// coordinates are written to the record store.
const DefaultDebounce = 500 * time.Millisecond

// flushTimeout bounds the background write a debounce timer performs.
const flushTimeout = 10 * time.Second

// Syncer owns the mutation pipeline between the spatial store and the
// record store.
type Syncer struct {
	store    *spatial.Store
	db       recordstore.Provider
	broker   *sse.Broker
	sessions *session.Manager
	log      *slog.Logger
	debounce time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New creates a syncer. A non-positive debounce falls back to
// DefaultDebounce.
func New(store *spatial.Store, db recordstore.Provider, broker *sse.Broker, sessions *session.Manager, log *slog.Logger, debounce time.Duration) *Syncer {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = slog.Default()
	}
	return &Syncer{
		store:    store,
		db:       db,
		broker:   broker,
		sessions: sessions,
		log:      log,
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
	}
}

// LoadNotes fetches the session user's notes into the spatial store. On
// failure the collection is left empty rather than stale.
func (s *Syncer) LoadNotes(ctx context.Context) error {
	userID, err := s.sessions.UserID()
	if err != nil {
		return err
	}
	notes, err := s.db.ListNotes(ctx, userID)
	if err != nil {
		s.store.Clear()
		return fmt.Errorf("load notes: %w", err)
	}
	s.store.Load(notes)
	return nil
}

// CreateNote persists a new note and inserts the stored record (with its
// assigned id and timestamps) at the top of the collection.
func (s *Syncer) CreateNote(ctx context.Context, n models.Note) (models.Note, error) {
	userID, err := s.sessions.UserID()
	if err != nil {
		return models.Note{}, err
	}
	if n.Text == "" && n.ImageURL == "" && n.DrawingURL == "" && n.AudioURL == "" {
		return models.Note{}, fmt.Errorf("create note: empty note: %w", apperr.ErrValidation)
	}
	if n.Color != "" && !n.Color.Valid() {
		return models.Note{}, fmt.Errorf("create note: color %q: %w", n.Color, apperr.ErrValidation)
	}
	n.UserID = userID

	created, err := s.db.CreateNote(ctx, n)
	if err != nil {
		return models.Note{}, fmt.Errorf("create note: %w", err)
	}
	s.store.Insert(created)
	s.broker.NoteChanged(sse.KindCreated, created.ID)
	return created, nil
}

// UpdateNote applies a partial update optimistically, then persists it. On a
// remote failure the optimistic state is kept and the error reported; the
// next successful write reconciles the record.
func (s *Syncer) UpdateNote(ctx context.Context, id string, u models.NoteUpdate) (models.Note, error) {
	if u.Color != nil && !u.Color.Valid() {
		return models.Note{}, fmt.Errorf("update note: color %q: %w", *u.Color, apperr.ErrValidation)
	}
	local, ok := s.store.Get(id)
	if !ok {
		return models.Note{}, fmt.Errorf("update note %s: %w", id, apperr.ErrNotFound)
	}
	u.Apply(&local)
	s.store.Replace(local)

	stored, err := s.db.UpdateNote(ctx, id, u)
	if err != nil {
		s.log.Warn("note update not persisted", "id", id, "error", err)
		return local, fmt.Errorf("update note %s: %w", id, err)
	}
	s.store.Replace(stored)
	s.broker.NoteChanged(sse.KindUpdated, id)
	return stored, nil
}

// MoveNote applies a position change immediately and schedules the remote
// write. Repeated moves of the same note within the debounce window collapse
// into one write carrying the final position; moves of different notes are
// debounced independently.
func (s *Syncer) MoveNote(id string, x, y float64) error {
	local, ok := s.store.Get(id)
	if !ok {
		return fmt.Errorf("move note %s: %w", id, apperr.ErrNotFound)
	}
	local.X, local.Y = x, y
	s.store.Replace(local)
	s.broker.NoteChanged(sse.KindMoved, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[id]; ok {
		t.Reset(s.debounce)
		return nil
	}
	s.timers[id] = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		s.flushPosition(id)
	})
	return nil
}

// flushPosition writes a note's current coordinates to the record store.
func (s *Syncer) flushPosition(id string) {
	n, ok := s.store.Get(id)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if _, err := s.db.UpdateNote(ctx, id, models.NoteUpdate{X: &n.X, Y: &n.Y}); err != nil {
		s.log.Warn("position not persisted", "id", id, "error", err)
	}
}

// Flush writes every pending position immediately. Used at shutdown and
// before an export so no debounced move is lost.
func (s *Syncer) Flush() {
	s.mu.Lock()
	ids := make([]string, 0, len(s.timers))
	for id, t := range s.timers {
		t.Stop()
		ids = append(ids, id)
	}
	s.timers = make(map[string]*time.Timer)
	s.mu.Unlock()

	for _, id := range ids {
		s.flushPosition(id)
	}
}

// cancelPending drops a note's debounce timer, if any, without flushing.
func (s *Syncer) cancelPending(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

// Tidy applies a grid layout to the collection and persists all positions in
// one batch. The local arrangement is kept even if the batch write fails.
func (s *Syncer) Tidy(ctx context.Context, placements []layout.Placement) error {
	userID, err := s.sessions.UserID()
	if err != nil {
		return err
	}

	updates := make([]recordstore.PositionUpdate, 0, len(placements))
	for _, p := range placements {
		n, ok := s.store.Get(p.ID)
		if !ok {
			continue
		}
		s.cancelPending(p.ID)
		n.X, n.Y = p.X, p.Y
		s.store.Replace(n)
		updates = append(updates, recordstore.PositionUpdate{ID: p.ID, UserID: userID, X: p.X, Y: p.Y})
	}
	s.broker.Publish(sse.Event{Type: "canvas.updated", Data: map[string]int{"moved": len(updates)}})

	if err := s.db.BatchUpsertPositions(ctx, updates); err != nil {
		s.log.Warn("tidy positions not persisted", "count", len(updates), "error", err)
		return fmt.Errorf("tidy: %w", err)
	}
	return nil
}

// DeleteNote removes a note locally and remotely. A pending position write
// for the note is cancelled first. If the remote delete fails, the note is
// restored at its original index.
func (s *Syncer) DeleteNote(ctx context.Context, id string) error {
	s.cancelPending(id)

	children := s.stackChildren(id)
	removed, idx, ok := s.store.Remove(id)
	if !ok {
		return fmt.Errorf("delete note %s: %w", id, apperr.ErrNotFound)
	}

	if err := s.db.DeleteNote(ctx, id); err != nil {
		s.store.RestoreAt(removed, idx)
		return fmt.Errorf("delete note %s: %w", id, err)
	}
	s.broker.NoteChanged(sse.KindDeleted, id)

	// Children were un-stacked locally by Remove; persist the same change.
	empty := ""
	for _, childID := range children {
		if _, err := s.db.UpdateNote(ctx, childID, models.NoteUpdate{StackID: &empty}); err != nil {
			s.log.Warn("un-stack not persisted", "id", childID, "error", err)
		}
	}
	return nil
}

// DeleteAll clears the collection and the record store. On a remote failure
// the full collection is restored.
func (s *Syncer) DeleteAll(ctx context.Context) error {
	userID, err := s.sessions.UserID()
	if err != nil {
		return err
	}

	s.mu.Lock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()

	backup := s.store.All()
	s.store.Clear()

	if err := s.db.DeleteAllNotes(ctx, userID); err != nil {
		s.store.Load(backup)
		return fmt.Errorf("delete all notes: %w", err)
	}
	s.broker.Publish(sse.Event{Type: "canvas.cleared", Data: map[string]int{"deleted": len(backup)}})
	return nil
}

// ImportNotes inserts foreign records into the store and collection, skipping
// ids already present. Returns how many were imported and how many skipped.
func (s *Syncer) ImportNotes(ctx context.Context, incoming []models.Note) (imported, skipped int, err error) {
	userID, err := s.sessions.UserID()
	if err != nil {
		return 0, 0, err
	}

	var batch []models.Note
	for _, n := range incoming {
		if _, exists := s.store.Get(n.ID); exists {
			skipped++
			continue
		}
		n.UserID = userID
		batch = append(batch, n)
	}
	if len(batch) == 0 {
		return 0, skipped, nil
	}

	if err := s.db.BatchInsert(ctx, batch); err != nil {
		return 0, skipped, fmt.Errorf("import notes: %w", err)
	}
	// Prepend in reverse so the first imported record ends up on top.
	for i := len(batch) - 1; i >= 0; i-- {
		s.store.Insert(batch[i])
	}
	s.broker.Publish(sse.Event{Type: "canvas.updated", Data: map[string]int{"imported": len(batch)}})
	return len(batch), skipped, nil
}

// StartStacking arms stacking mode with the given source note. Arming the
// same note again disarms it.
func (s *Syncer) StartStacking(id string) error {
	return s.store.StartStacking(id)
}

// CancelStacking disarms stacking mode without committing.
func (s *Syncer) CancelStacking() {
	s.store.CancelStacking()
}

// ArmedStack returns the armed source note id, or empty when inactive.
func (s *Syncer) ArmedStack() string {
	return s.store.ArmedStack()
}

// FinishStacking commits the armed source onto the target note. Picking the
// source itself is a no-op that leaves stacking armed.
func (s *Syncer) FinishStacking(ctx context.Context, targetID string) error {
	source, commit, err := s.store.FinishStacking(targetID)
	if err != nil {
		return err
	}
	if !commit {
		return nil
	}
	if _, err := s.UpdateNote(ctx, source, models.NoteUpdate{StackID: &targetID}); err != nil {
		return fmt.Errorf("finish stacking: %w", err)
	}
	return nil
}

// stackChildren lists ids of notes stacked onto the given parent, bypassing
// the current search and tag filters.
func (s *Syncer) stackChildren(parentID string) []string {
	var out []string
	for _, n := range s.store.All() {
		if n.StackID == parentID {
			out = append(out, n.ID)
		}
	}
	return out
}

// Close flushes pending position writes.
func (s *Syncer) Close() {
	s.Flush()
}
