package recordstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/stickon/stickon/internal/apperr"
	"github.com/stickon/stickon/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL DEFAULT '',
	text        TEXT NOT NULL DEFAULT '',
	image_url   TEXT NOT NULL DEFAULT '',
	drawing_url TEXT NOT NULL DEFAULT '',
	audio_url   TEXT NOT NULL DEFAULT '',
	summary     TEXT NOT NULL DEFAULT '',
	tasks       TEXT NOT NULL DEFAULT '[]',
	related_ids TEXT NOT NULL DEFAULT '[]',
	tags        TEXT NOT NULL DEFAULT '[]',
	stack_id    TEXT NOT NULL DEFAULT '',
	pinned      INTEGER NOT NULL DEFAULT 0,
	canvas_x    REAL NOT NULL DEFAULT 0,
	canvas_y    REAL NOT NULL DEFAULT 0,
	color       TEXT NOT NULL DEFAULT 'yellow',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notes_user ON notes(user_id);
CREATE INDEX IF NOT EXISTS idx_notes_stack ON notes(stack_id);

CREATE TABLE IF NOT EXISTS profiles (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL DEFAULT '',
	theme      TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS credentials (
	email         TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	password_hash TEXT NOT NULL
);
`

// SQLite implements Provider backed by a local SQLite database.
type SQLite struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("recordstore: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("recordstore: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("recordstore: apply schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

const noteColumns = `id, user_id, text, image_url, drawing_url, audio_url,
	summary, tasks, related_ids, tags, stack_id, pinned,
	canvas_x, canvas_y, color, created_at, updated_at`

func scanNote(row interface{ Scan(...any) error }) (models.Note, error) {
	var n models.Note
	var tasks, related, tags string
	err := row.Scan(&n.ID, &n.UserID, &n.Text, &n.ImageURL, &n.DrawingURL, &n.AudioURL,
		&n.Summary, &tasks, &related, &tags, &n.StackID, &n.Pinned,
		&n.X, &n.Y, &n.Color, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return n, err
	}
	_ = json.Unmarshal([]byte(tasks), &n.Tasks)
	_ = json.Unmarshal([]byte(related), &n.RelatedIDs)
	_ = json.Unmarshal([]byte(tags), &n.Tags)
	if n.Tags == nil {
		n.Tags = []string{}
	}
	return n, nil
}

// ListNotes returns the user's notes, newest first.
func (s *SQLite) ListNotes(ctx context.Context, userID string) ([]models.Note, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("recordstore: list notes: %w", err)
	}
	defer rows.Close()

	var out []models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("recordstore: scan note: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// CreateNote stores a note with a server-assigned id and timestamps and
// returns the stored record.
func (s *SQLite) CreateNote(ctx context.Context, n models.Note) (models.Note, error) {
	if n.ID == "" {
		n.ID = "note_" + uuid.New().String()
	}
	if !n.Color.Valid() {
		n.Color = models.ColorYellow
	}
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now

	if err := s.insertNote(ctx, s.conn, n); err != nil {
		return models.Note{}, err
	}
	return s.getNote(ctx, n.ID)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLite) insertNote(ctx context.Context, db execer, n models.Note) error {
	tasks, _ := json.Marshal(n.Tasks)
	related, _ := json.Marshal(n.RelatedIDs)
	tags, _ := json.Marshal(n.TagList())

	_, err := db.ExecContext(ctx, `
		INSERT INTO notes (`+noteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Text, n.ImageURL, n.DrawingURL, n.AudioURL,
		n.Summary, string(tasks), string(related), string(tags), n.StackID, n.Pinned,
		n.X, n.Y, n.Color, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("recordstore: note %s: %w", n.ID, apperr.ErrAlreadyExists)
		}
		return fmt.Errorf("recordstore: insert note: %w", err)
	}
	return nil
}

func (s *SQLite) getNote(ctx context.Context, id string) (models.Note, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Note{}, fmt.Errorf("recordstore: note %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return models.Note{}, fmt.Errorf("recordstore: get note: %w", err)
	}
	return n, nil
}

// UpdateNote applies the set fields and returns the full updated record.
func (s *SQLite) UpdateNote(ctx context.Context, id string, upd models.NoteUpdate) (models.Note, error) {
	var sets []string
	var args []any
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if upd.Text != nil {
		set("text", *upd.Text)
	}
	if upd.ImageURL != nil {
		set("image_url", *upd.ImageURL)
	}
	if upd.DrawingURL != nil {
		set("drawing_url", *upd.DrawingURL)
	}
	if upd.AudioURL != nil {
		set("audio_url", *upd.AudioURL)
	}
	if upd.Summary != nil {
		set("summary", *upd.Summary)
	}
	if upd.Tasks != nil {
		b, _ := json.Marshal(*upd.Tasks)
		set("tasks", string(b))
	}
	if upd.RelatedIDs != nil {
		b, _ := json.Marshal(*upd.RelatedIDs)
		set("related_ids", string(b))
	}
	if upd.Tags != nil {
		b, _ := json.Marshal(*upd.Tags)
		set("tags", string(b))
	}
	if upd.StackID != nil {
		set("stack_id", *upd.StackID)
	}
	if upd.Pinned != nil {
		set("pinned", *upd.Pinned)
	}
	if upd.X != nil {
		set("canvas_x", *upd.X)
	}
	if upd.Y != nil {
		set("canvas_y", *upd.Y)
	}
	if upd.Color != nil {
		set("color", string(*upd.Color))
	}
	set("updated_at", time.Now().UTC())

	args = append(args, id)
	res, err := s.conn.ExecContext(ctx,
		`UPDATE notes SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return models.Note{}, fmt.Errorf("recordstore: update note: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return models.Note{}, fmt.Errorf("recordstore: note %s: %w", id, apperr.ErrNotFound)
	}
	return s.getNote(ctx, id)
}

// DeleteNote removes a single note.
func (s *SQLite) DeleteNote(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("recordstore: delete note: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("recordstore: note %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// DeleteAllNotes removes every note belonging to the user.
func (s *SQLite) DeleteAllNotes(ctx context.Context, userID string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM notes WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("recordstore: delete all notes: %w", err)
	}
	return nil
}

// BatchUpsertPositions writes every position in one transaction.
func (s *SQLite) BatchUpsertPositions(ctx context.Context, positions []PositionUpdate) error {
	if len(positions) == 0 {
		return nil
	}
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("recordstore: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO notes (id, user_id, canvas_x, canvas_y)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			canvas_x   = excluded.canvas_x,
			canvas_y   = excluded.canvas_y,
			updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("recordstore: prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range positions {
		if _, err := stmt.ExecContext(ctx, p.ID, p.UserID, p.X, p.Y); err != nil {
			return fmt.Errorf("recordstore: upsert position %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// BatchInsert stores many notes in one transaction.
func (s *SQLite) BatchInsert(ctx context.Context, notes []models.Note) error {
	if len(notes) == 0 {
		return nil
	}
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("recordstore: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	for _, n := range notes {
		if n.ID == "" {
			n.ID = "note_" + uuid.New().String()
		}
		if !n.Color.Valid() {
			n.Color = models.ColorYellow
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
		n.UpdatedAt = now
		if err := s.insertNote(ctx, tx, n); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetProfile returns the profile for a user id.
func (s *SQLite) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	var p models.Profile
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, email, name, theme, created_at FROM profiles WHERE id = ?`, userID).
		Scan(&p.ID, &p.Email, &p.Name, &p.Theme, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, fmt.Errorf("recordstore: profile %s: %w", userID, apperr.ErrNotFound)
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("recordstore: get profile: %w", err)
	}
	return p, nil
}

// CreateProfile stores a profile, assigning an id when absent.
func (s *SQLite) CreateProfile(ctx context.Context, p models.Profile) (models.Profile, error) {
	if p.ID == "" {
		p.ID = "user_" + uuid.New().String()
	}
	p.CreatedAt = time.Now().UTC()
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO profiles (id, email, name, theme, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Email, p.Name, p.Theme, p.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return models.Profile{}, fmt.Errorf("recordstore: profile %s: %w", p.Email, apperr.ErrAlreadyExists)
		}
		return models.Profile{}, fmt.Errorf("recordstore: create profile: %w", err)
	}
	return p, nil
}

// UpdateProfile applies the set fields and returns the updated profile.
func (s *SQLite) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (models.Profile, error) {
	var sets []string
	var args []any
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Theme != nil {
		sets = append(sets, "theme = ?")
		args = append(args, *upd.Theme)
	}
	if len(sets) > 0 {
		args = append(args, id)
		res, err := s.conn.ExecContext(ctx,
			`UPDATE profiles SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			return models.Profile{}, fmt.Errorf("recordstore: update profile: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return models.Profile{}, fmt.Errorf("recordstore: profile %s: %w", id, apperr.ErrNotFound)
		}
	}
	return s.GetProfile(ctx, id)
}

// CreateCredential registers a sign-in credential and a fresh user id.
func (s *SQLite) CreateCredential(ctx context.Context, email, passwordHash string) (string, error) {
	userID := "user_" + uuid.New().String()
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO credentials (email, user_id, password_hash) VALUES (?, ?, ?)`,
		email, userID, passwordHash)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return "", fmt.Errorf("recordstore: credential %s: %w", email, apperr.ErrAlreadyExists)
		}
		return "", fmt.Errorf("recordstore: create credential: %w", err)
	}
	return userID, nil
}

// Credential returns the user id and password hash for an email.
func (s *SQLite) Credential(ctx context.Context, email string) (string, string, error) {
	var userID, hash string
	err := s.conn.QueryRowContext(ctx,
		`SELECT user_id, password_hash FROM credentials WHERE email = ?`, email).
		Scan(&userID, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", fmt.Errorf("recordstore: credential %s: %w", email, apperr.ErrNotFound)
	}
	if err != nil {
		return "", "", fmt.Errorf("recordstore: credential: %w", err)
	}
	return userID, hash, nil
}

// Verify *SQLite satisfies Provider at compile time.
var _ Provider = (*SQLite)(nil)
