// Package layout implements the deterministic tidy grid packing that
// assigns canvas coordinates to an ordered note list.
package layout

import (
	"math"

	"github.com/stickon/stickon/internal/models"
)

// Default note cell dimensions and grid gaps, in canvas units.
const (
	DefaultNoteWidth  = 240
	DefaultNoteHeight = 240
	DefaultGapX       = 24
	DefaultGapY       = 24
)

// Grid holds the fixed cell dimensions used by tidy packing.
type Grid struct {
	NoteWidth  float64
	NoteHeight float64
	GapX       float64
	GapY       float64
}

// DefaultGrid returns a grid with the default cell dimensions.
func DefaultGrid() Grid {
	return Grid{
		NoteWidth:  DefaultNoteWidth,
		NoteHeight: DefaultNoteHeight,
		GapX:       DefaultGapX,
		GapY:       DefaultGapY,
	}
}

// Placement assigns a canvas position to one note.
type Placement struct {
	ID string  `json:"id"`
	X  float64 `json:"canvas_x"`
	Y  float64 `json:"canvas_y"`
}

// Columns returns how many grid columns fit in the container width, never
// fewer than one.
func (g Grid) Columns(containerWidth float64) int {
	cols := int(math.Floor(containerWidth / (g.NoteWidth + g.GapX)))
	if cols < 1 {
		return 1
	}
	return cols
}

// Plan packs the notes, in their existing display order, into a grid for
// the given container width. It is a pure function of its inputs: the same
// ordered list and width always produce the same placements. A gap-sized
// offset on both axes keeps the grid off the canvas origin. The result is
// meant to be applied as one batched position update.
func (g Grid) Plan(notes []models.Note, containerWidth float64) []Placement {
	cols := g.Columns(containerWidth)
	out := make([]Placement, len(notes))
	for i := range notes {
		row := i / cols
		col := i % cols
		out[i] = Placement{
			ID: notes[i].ID,
			X:  float64(col)*(g.NoteWidth+g.GapX) + g.GapX,
			Y:  float64(row)*(g.NoteHeight+g.GapY) + g.GapY,
		}
	}
	return out
}
