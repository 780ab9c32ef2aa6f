// Package ai provides the note collaborator: summaries, transcription, task
// extraction, related-note suggestions, and a conversational query interface
// that can answer from the collection or draft note mutations.
package ai

import (
	"context"

	"github.com/stickon/stickon/internal/models"
)

// Kind classifies what a Query result asks the caller to do.
type Kind string

const (
	// KindAnswer carries a plain text answer.
	KindAnswer Kind = "answer"
	// KindCreateNote carries a draft for a new note.
	KindCreateNote Kind = "create_note"
	// KindUpdateNote carries a draft update for an existing note.
	KindUpdateNote Kind = "update_note"
)

// NoteDraft is the note content proposed by a query result. For
// KindUpdateNote the ID names the target note.
type NoteDraft struct {
	ID    string       `json:"id,omitempty"`
	Text  string       `json:"text"`
	Tags  []string     `json:"tags,omitempty"`
	Color models.Color `json:"color,omitempty"`
}

// QueryResult is the outcome of a conversational query. Content always holds
// the text shown to the user; Note is set for the mutation kinds.
type QueryResult struct {
	Kind    Kind       `json:"kind"`
	Content string     `json:"content"`
	Note    *NoteDraft `json:"note,omitempty"`
}

// Message is one turn of query conversation history.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Client is the collaborator boundary. Implementations return
// apperr.ErrAINotConfigured when no provider credentials are available.
type Client interface {
	// Summarize produces a one-or-two sentence summary of a note.
	Summarize(ctx context.Context, note models.Note) (string, error)
	// Transcribe turns a recorded audio attachment into text.
	Transcribe(ctx context.Context, audioURL string) (string, error)
	// ExtractTasks pulls actionable items out of a note's text.
	ExtractTasks(ctx context.Context, note models.Note) ([]string, error)
	// RelatedNotes suggests up to three ids from all that relate to note.
	RelatedNotes(ctx context.Context, note models.Note, all []models.Note) ([]string, error)
	// Expand elaborates a note's text into a fuller draft.
	Expand(ctx context.Context, note models.Note) (string, error)
	// Insights surveys the whole collection for themes and suggestions.
	Insights(ctx context.Context, all []models.Note) (string, error)
	// Query answers a free-form question over the collection, optionally
	// proposing a note creation or update.
	Query(ctx context.Context, question string, all []models.Note, history []Message) (QueryResult, error)
}
