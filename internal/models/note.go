// Package models defines the domain types for Stickon.
package models

import "time"

// Color is a note background color drawn from a fixed palette.
type Color string

// The note color palette.
const (
	ColorYellow Color = "yellow"
	ColorRose   Color = "rose"
	ColorSky    Color = "sky"
	ColorLime   Color = "lime"
	ColorViolet Color = "violet"
	ColorAmber  Color = "amber"
)

// Palette lists every valid note color.
var Palette = []Color{ColorYellow, ColorRose, ColorSky, ColorLime, ColorViolet, ColorAmber}

// Valid reports whether c is a palette color.
func (c Color) Valid() bool {
	for _, p := range Palette {
		if c == p {
			return true
		}
	}
	return false
}

// Note is a sticky note placed on the infinite canvas.
//
// StackID, when non-empty, references the id of another note acting as the
// stack head for this note. Stacks are single-level: the carousel renders
// only unstacked notes as primary slides.
type Note struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Text       string    `json:"text"`
	ImageURL   string    `json:"image_url,omitempty"`
	DrawingURL string    `json:"drawing_url,omitempty"`
	AudioURL   string    `json:"audio_url,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	Tasks      []string  `json:"tasks,omitempty"`
	RelatedIDs []string  `json:"related_ids,omitempty"`
	Tags       []string  `json:"tags"`
	StackID    string    `json:"stack_id,omitempty"`
	Pinned     bool      `json:"is_pinned"`
	X          float64   `json:"canvas_x"`
	Y          float64   `json:"canvas_y"`
	Color      Color     `json:"color"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TagList returns the note's tags, treating an absent slice as empty.
func (n *Note) TagList() []string {
	if n.Tags == nil {
		return []string{}
	}
	return n.Tags
}

// NoteUpdate carries a partial-field mutation for a note. Nil fields are
// left untouched. Manual edits, canvas interaction, and AI-driven mutations
// all use this type so that every change flows through one pipeline.
type NoteUpdate struct {
	Text       *string   `json:"text,omitempty"`
	ImageURL   *string   `json:"image_url,omitempty"`
	DrawingURL *string   `json:"drawing_url,omitempty"`
	AudioURL   *string   `json:"audio_url,omitempty"`
	Summary    *string   `json:"summary,omitempty"`
	Tasks      *[]string `json:"tasks,omitempty"`
	RelatedIDs *[]string `json:"related_ids,omitempty"`
	Tags       *[]string `json:"tags,omitempty"`
	StackID    *string   `json:"stack_id,omitempty"`
	Pinned     *bool     `json:"is_pinned,omitempty"`
	X          *float64  `json:"canvas_x,omitempty"`
	Y          *float64  `json:"canvas_y,omitempty"`
	Color      *Color    `json:"color,omitempty"`
}

// Apply copies the set fields of u onto n.
func (u NoteUpdate) Apply(n *Note) {
	if u.Text != nil {
		n.Text = *u.Text
	}
	if u.ImageURL != nil {
		n.ImageURL = *u.ImageURL
	}
	if u.DrawingURL != nil {
		n.DrawingURL = *u.DrawingURL
	}
	if u.AudioURL != nil {
		n.AudioURL = *u.AudioURL
	}
	if u.Summary != nil {
		n.Summary = *u.Summary
	}
	if u.Tasks != nil {
		n.Tasks = *u.Tasks
	}
	if u.RelatedIDs != nil {
		n.RelatedIDs = *u.RelatedIDs
	}
	if u.Tags != nil {
		n.Tags = *u.Tags
	}
	if u.StackID != nil {
		n.StackID = *u.StackID
	}
	if u.Pinned != nil {
		n.Pinned = *u.Pinned
	}
	if u.X != nil {
		n.X = *u.X
	}
	if u.Y != nil {
		n.Y = *u.Y
	}
	if u.Color != nil {
		n.Color = *u.Color
	}
}

// Profile is the per-user settings record.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Theme     string    `json:"theme,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
