// Package carousel maps a linear active index onto per-slide 3D transform
// parameters for the animated note carousel.
package carousel

import (
	"fmt"

	"github.com/stickon/stickon/internal/apperr"
	"github.com/stickon/stickon/internal/models"
)

// Layout constants for the 3D carousel.
const (
	RotationStepDeg  = -25  // Y-axis rotation per offset step
	ScaleStep        = 0.2  // scale reduction per offset step
	TranslateStepPct = 40   // horizontal translation, % of container width
	DepthStepPx      = -150 // Z translation per offset step
	VisibleRange     = 2    // |offset| beyond which slides are transparent
	BaseZIndex       = 100

	// Stack members render as progressively offset shadow layers under
	// their parent slide.
	ShadowOffsetStepPx = 8
	ShadowDepthStepPx  = -20
)

// Transform describes how a single carousel slide is rendered.
type Transform struct {
	RotateYDeg    float64 `json:"rotate_y_deg"`
	Scale         float64 `json:"scale"`
	TranslateXPct float64 `json:"translate_x_pct"`
	TranslateZPx  float64 `json:"translate_z_px"`
	Opacity       float64 `json:"opacity"`
	ZIndex        int     `json:"z_index"`
	Interactive   bool    `json:"interactive"`
}

// Shadow is a purely presentational layer rendered beneath a slide for each
// of its stack members.
type Shadow struct {
	OffsetPx float64 `json:"offset_px"`
	DepthPx  float64 `json:"depth_px"`
}

// Position computes the render transform for the slide at index given the
// active index. Only the active slide (offset 0) accepts pointer input;
// slides beyond the visible range stay in the tree fully transparent for
// transition continuity.
func Position(index, active int) Transform {
	offset := index - active
	abs := offset
	if abs < 0 {
		abs = -abs
	}
	tr := Transform{
		RotateYDeg:    float64(offset) * RotationStepDeg,
		Scale:         1 - float64(abs)*ScaleStep,
		TranslateXPct: float64(offset) * TranslateStepPct,
		TranslateZPx:  float64(abs) * DepthStepPx,
		ZIndex:        BaseZIndex - abs,
		Interactive:   offset == 0,
	}
	if abs <= VisibleRange {
		tr.Opacity = 1
	}
	return tr
}

// Next advances the active index, wrapping past the end.
func Next(active, n int) int {
	if n <= 0 {
		return 0
	}
	return (active + 1) % n
}

// Prev retreats the active index, wrapping past the start.
func Prev(active, n int) int {
	if n <= 0 {
		return 0
	}
	return (active - 1 + n) % n
}

// ClampActive resets an active index that fell outside the set, as happens
// when the underlying filtered set changes.
func ClampActive(active, n int) int {
	if active < 0 || active >= n {
		return 0
	}
	return active
}

// JumpTo locates a note inside the carousel set and returns its index. A
// note absent from the set (filtered out, or currently stacked) is a
// reported error, not a silent no-op.
func JumpTo(set []models.Note, id string) (int, error) {
	for i := range set {
		if set[i].ID == id {
			return i, nil
		}
	}
	return 0, fmt.Errorf("jump to note %s: %w", id, apperr.ErrNotInCarousel)
}

// Shadows returns the shadow layers for a slide with the given number of
// stack members, offset incrementally by stack position index.
func Shadows(memberCount int) []Shadow {
	out := make([]Shadow, memberCount)
	for i := range out {
		out[i] = Shadow{
			OffsetPx: float64(i+1) * ShadowOffsetStepPx,
			DepthPx:  float64(i+1) * ShadowDepthStepPx,
		}
	}
	return out
}
