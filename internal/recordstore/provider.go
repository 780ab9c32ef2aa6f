// Package recordstore is the boundary with the persistence collaborator: a
// generic authenticated record store with CRUD and upsert semantics.
package recordstore

import (
	"context"

	"github.com/stickon/stickon/internal/models"
)

// PositionUpdate is one entry of a batched position upsert.
type PositionUpdate struct {
	ID     string  `json:"id"`
	UserID string  `json:"user_id"`
	X      float64 `json:"canvas_x"`
	Y      float64 `json:"canvas_y"`
}

// ProfileUpdate carries a partial-field profile mutation.
type ProfileUpdate struct {
	Name  *string `json:"name,omitempty"`
	Theme *string `json:"theme,omitempty"`
}

// Provider is the interface for the external record store. Consumers should
// depend on this interface rather than the concrete SQLite type so tests
// can substitute failing or in-memory stores.
type Provider interface {
	// ListNotes returns the user's notes ordered by creation time descending.
	ListNotes(ctx context.Context, userID string) ([]models.Note, error)
	// CreateNote stores a note, assigning id and creation timestamp, and
	// returns the stored record.
	CreateNote(ctx context.Context, n models.Note) (models.Note, error)
	// UpdateNote applies partial fields and returns the full updated record.
	UpdateNote(ctx context.Context, id string, upd models.NoteUpdate) (models.Note, error)
	// DeleteNote removes a single note.
	DeleteNote(ctx context.Context, id string) error
	// DeleteAllNotes removes every note belonging to the user.
	DeleteAllNotes(ctx context.Context, userID string) error
	// BatchUpsertPositions writes many note positions in one call.
	BatchUpsertPositions(ctx context.Context, positions []PositionUpdate) error
	// BatchInsert stores many notes in one call (bulk import).
	BatchInsert(ctx context.Context, notes []models.Note) error

	GetProfile(ctx context.Context, userID string) (models.Profile, error)
	CreateProfile(ctx context.Context, p models.Profile) (models.Profile, error)
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (models.Profile, error)

	// CreateCredential registers a sign-in credential and its new user id.
	CreateCredential(ctx context.Context, email, passwordHash string) (string, error)
	// Credential returns the user id and password hash for an email.
	Credential(ctx context.Context, email string) (userID, passwordHash string, err error)

	Close() error
}
