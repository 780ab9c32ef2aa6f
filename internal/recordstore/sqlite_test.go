package recordstore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stickon/stickon/internal/apperr"
	"github.com/stickon/stickon/internal/models"
)

func testDB(t *testing.T) *SQLite {
	t.Helper()
	dbFile, err := os.CreateTemp("", "stickon-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateAssignsIDAndDefaults(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	n, err := db.CreateNote(ctx, models.Note{UserID: "u1", Text: "hello"})
	if err != nil {
		t.Fatal(err)
	}
	if n.ID == "" {
		t.Error("no id assigned")
	}
	if n.Color != models.ColorYellow {
		t.Errorf("color = %q, want default yellow", n.Color)
	}
	if n.Tags == nil || len(n.Tags) != 0 {
		t.Errorf("tags = %#v, want empty non-nil", n.Tags)
	}
	if n.CreatedAt.IsZero() {
		t.Error("no creation timestamp")
	}
}

func TestListOrderedByCreationDesc(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	for _, text := range []string{"first", "second", "third"} {
		if _, err := db.CreateNote(ctx, models.Note{UserID: "u1", Text: text}); err != nil {
			t.Fatal(err)
		}
		time.Sleep(5 * time.Millisecond) // distinct creation times
	}
	// Notes for another user must not leak into the listing.
	if _, err := db.CreateNote(ctx, models.Note{UserID: "u2", Text: "other"}); err != nil {
		t.Fatal(err)
	}

	notes, err := db.ListNotes(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 3 {
		t.Fatalf("len = %d, want 3", len(notes))
	}
	if notes[0].Text != "third" || notes[2].Text != "first" {
		t.Errorf("order = [%s %s %s], want newest first",
			notes[0].Text, notes[1].Text, notes[2].Text)
	}
}

func TestUpdateReturnsEcho(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	n, _ := db.CreateNote(ctx, models.Note{UserID: "u1", Text: "v1"})

	text := "v2"
	pinned := true
	tags := []string{"a", "b"}
	got, err := db.UpdateNote(ctx, n.ID, models.NoteUpdate{Text: &text, Pinned: &pinned, Tags: &tags})
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != "v2" || !got.Pinned || len(got.Tags) != 2 {
		t.Errorf("echo = %+v", got)
	}
	// Untouched fields survive a partial update.
	if got.UserID != "u1" {
		t.Errorf("user lost: %q", got.UserID)
	}

	if _, err := db.UpdateNote(ctx, "ghost", models.NoteUpdate{Text: &text}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("update missing note: %v", err)
	}
}

func TestDeleteAndDeleteAll(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	n, _ := db.CreateNote(ctx, models.Note{UserID: "u1"})
	if err := db.DeleteNote(ctx, n.ID); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteNote(ctx, n.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("double delete: %v", err)
	}

	_, _ = db.CreateNote(ctx, models.Note{UserID: "u1"})
	_, _ = db.CreateNote(ctx, models.Note{UserID: "u1"})
	if err := db.DeleteAllNotes(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	notes, _ := db.ListNotes(ctx, "u1")
	if len(notes) != 0 {
		t.Errorf("%d notes left after delete-all", len(notes))
	}
}

func TestBatchUpsertPositions(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	a, _ := db.CreateNote(ctx, models.Note{UserID: "u1"})
	b, _ := db.CreateNote(ctx, models.Note{UserID: "u1"})

	err := db.BatchUpsertPositions(ctx, []PositionUpdate{
		{ID: a.ID, UserID: "u1", X: 24, Y: 48},
		{ID: b.ID, UserID: "u1", X: 288, Y: 48},
	})
	if err != nil {
		t.Fatal(err)
	}

	notes, _ := db.ListNotes(ctx, "u1")
	byID := map[string]models.Note{}
	for _, n := range notes {
		byID[n.ID] = n
	}
	if got := byID[a.ID]; got.X != 24 || got.Y != 48 {
		t.Errorf("a position = (%v,%v)", got.X, got.Y)
	}
	if got := byID[b.ID]; got.X != 288 {
		t.Errorf("b position x = %v", got.X)
	}
	// Content must be untouched by a position upsert.
	if byID[a.ID].UserID != "u1" {
		t.Errorf("upsert clobbered record: %+v", byID[a.ID])
	}
}

func TestBatchInsert(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	err := db.BatchInsert(ctx, []models.Note{
		{ID: "x1", UserID: "u1", Text: "hello"},
		{UserID: "u1", Text: "auto-id"},
	})
	if err != nil {
		t.Fatal(err)
	}
	notes, _ := db.ListNotes(ctx, "u1")
	if len(notes) != 2 {
		t.Fatalf("len = %d", len(notes))
	}

	// A colliding id fails the whole batch.
	err = db.BatchInsert(ctx, []models.Note{{ID: "x1", UserID: "u1"}})
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("colliding insert: %v", err)
	}
}

func TestProfilesAndCredentials(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	userID, err := db.CreateCredential(ctx, "a@example.com", "hash1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.CreateCredential(ctx, "a@example.com", "hash2"); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate credential: %v", err)
	}

	gotID, hash, err := db.Credential(ctx, "a@example.com")
	if err != nil || gotID != userID || hash != "hash1" {
		t.Fatalf("credential = %q %q %v", gotID, hash, err)
	}

	p, err := db.CreateProfile(ctx, models.Profile{ID: userID, Email: "a@example.com", Name: "Ada"})
	if err != nil {
		t.Fatal(err)
	}
	theme := "forest"
	p, err = db.UpdateProfile(ctx, p.ID, ProfileUpdate{Theme: &theme})
	if err != nil || p.Theme != "forest" {
		t.Fatalf("profile update = %+v, %v", p, err)
	}
	if _, err := db.GetProfile(ctx, "nobody"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing profile: %v", err)
	}
}
