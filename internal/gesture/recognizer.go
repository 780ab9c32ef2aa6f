// Package gesture interprets pointer event streams into pan, zoom, and
// per-note drag intents for the canvas view.
package gesture

import (
	"math"

	"github.com/stickon/stickon/internal/geom"
)

// DefaultDragThreshold is the cumulative screen-space displacement, in
// pixels on either axis, past which a press-move-release on a note is
// classified as a drag rather than a click.
const DefaultDragThreshold = 5

// State is the recognizer's current interaction mode.
type State int

const (
	Idle State = iota
	Panning
	Pinching
	DraggingNote
)

func (s State) String() string {
	switch s {
	case Panning:
		return "panning"
	case Pinching:
		return "pinching"
	case DraggingNote:
		return "dragging-note"
	default:
		return "idle"
	}
}

// Handlers receives the intents produced by the recognizer. Nil handlers
// are skipped.
type Handlers struct {
	// Pan is called with a screen-space delta while panning.
	Pan func(dx, dy float64)
	// ZoomTo is called with the pinch midpoint (screen space) and the
	// requested absolute scale. The caller applies it via geom.Transform.ZoomAt,
	// which clamps.
	ZoomTo func(anchor geom.Point, scale float64)
	// MoveNote reports the live canvas-space position of a note while it is
	// being dragged past the threshold.
	MoveNote func(id string, pos geom.Point)
	// CommitNote reports the final canvas-space position when a drag ends.
	CommitNote func(id string, pos geom.Point)
	// ViewNote fires when a press-release on a note stays under the drag
	// threshold.
	ViewNote func(id string)
}

// Recognizer disambiguates pointer input into pan, pinch-zoom, note-drag,
// and note-click intents.
//
// The drag threshold is checked against screen-space pixel distance, not
// canvas-space distance, so classification is invariant to zoom level. Note
// positions are computed as startPosition + pointerDelta/scale, converting
// the screen-space delta into canvas space.
type Recognizer struct {
	threshold float64
	scale     func() float64
	h         Handlers

	state    State
	pointers map[int]geom.Point

	pinchA    int
	pinchB    int
	pinchDist float64

	dragNote     string
	dragStartScr geom.Point
	dragStartPos geom.Point
	dragLast     geom.Point
	dragExceeded bool
}

// New creates a recognizer. scale returns the current viewport scale and
// must not be nil. A non-positive threshold falls back to the default.
func New(threshold float64, scale func() float64, h Handlers) *Recognizer {
	if threshold <= 0 {
		threshold = DefaultDragThreshold
	}
	return &Recognizer{
		threshold: threshold,
		scale:     scale,
		h:         h,
		pointers:  make(map[int]geom.Point),
	}
}

// State returns the current interaction mode.
func (r *Recognizer) State() State {
	return r.state
}

// Down handles a pointer press on the empty canvas background.
func (r *Recognizer) Down(ptr int, at geom.Point) {
	r.pointers[ptr] = at
	switch r.state {
	case Idle:
		r.state = Panning
	case Panning:
		// Second pointer cancels the pan and starts a pinch.
		r.beginPinch(ptr)
	case DraggingNote, Pinching:
		// Extra pointers during a drag are ignored; during a pinch only the
		// first two pointers participate.
	}
}

// DownOnNote handles a pointer press on a note body. pos is the note's
// current canvas-space position.
func (r *Recognizer) DownOnNote(ptr int, at geom.Point, noteID string, pos geom.Point) {
	if r.state != Idle {
		return
	}
	r.pointers[ptr] = at
	r.state = DraggingNote
	r.dragNote = noteID
	r.dragStartScr = at
	r.dragStartPos = pos
	r.dragLast = at
	r.dragExceeded = false
}

// Move handles pointer movement.
func (r *Recognizer) Move(ptr int, at geom.Point) {
	prev, ok := r.pointers[ptr]
	if !ok {
		return
	}
	r.pointers[ptr] = at

	switch r.state {
	case Panning:
		if r.h.Pan != nil {
			r.h.Pan(at.X-prev.X, at.Y-prev.Y)
		}

	case Pinching:
		if ptr != r.pinchA && ptr != r.pinchB {
			return
		}
		a, b, ok := r.pinchPair()
		if !ok {
			return
		}
		dist := distance(a, b)
		if r.pinchDist > 0 && dist > 0 && r.h.ZoomTo != nil {
			mid := geom.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
			r.h.ZoomTo(mid, r.scale()*dist/r.pinchDist)
		}
		r.pinchDist = dist

	case DraggingNote:
		r.dragLast = at
		delta := at.Sub(r.dragStartScr)
		if !r.dragExceeded &&
			(math.Abs(delta.X) >= r.threshold || math.Abs(delta.Y) >= r.threshold) {
			r.dragExceeded = true
		}
		if r.dragExceeded && r.h.MoveNote != nil {
			r.h.MoveNote(r.dragNote, r.dragPosition())
		}
	}
}

// Up handles a pointer release. Lifting all pointers always returns the
// recognizer to idle; there is no other cancel path.
func (r *Recognizer) Up(ptr int, at geom.Point) {
	if _, ok := r.pointers[ptr]; ok {
		r.pointers[ptr] = at
	}
	delete(r.pointers, ptr)

	switch r.state {
	case DraggingNote:
		r.dragLast = at
		if r.dragExceeded {
			if r.h.CommitNote != nil {
				r.h.CommitNote(r.dragNote, r.dragPosition())
			}
		} else if r.h.ViewNote != nil {
			r.h.ViewNote(r.dragNote)
		}
		r.reset()

	case Pinching:
		if len(r.pointers) >= 2 {
			if ptr == r.pinchA || ptr == r.pinchB {
				r.adoptPinchPointer(ptr)
			}
			return
		}
		if len(r.pointers) == 1 {
			// One finger left: continue as a pan from its position.
			r.state = Panning
			r.pinchDist = 0
			return
		}
		r.reset()

	case Panning:
		if len(r.pointers) == 0 {
			r.reset()
		}

	case Idle:
	}
}

// beginPinch fixes the two participating pointers: the one already panning
// and the newly pressed one. Later pointers do not take part.
func (r *Recognizer) beginPinch(second int) {
	r.state = Pinching
	r.pinchB = second
	for id := range r.pointers {
		if id != second {
			r.pinchA = id
			break
		}
	}
	if a, b, ok := r.pinchPair(); ok {
		r.pinchDist = distance(a, b)
	}
}

// adoptPinchPointer replaces a lifted participant with one of the remaining
// pointers and re-measures, so the next move does not see a distance jump.
func (r *Recognizer) adoptPinchPointer(lifted int) {
	for id := range r.pointers {
		if id == r.pinchA || id == r.pinchB {
			continue
		}
		if lifted == r.pinchA {
			r.pinchA = id
		} else {
			r.pinchB = id
		}
		break
	}
	r.pinchDist = 0
	if a, b, ok := r.pinchPair(); ok {
		r.pinchDist = distance(a, b)
	}
}

// pinchPair returns the positions of the two participating pointers.
func (r *Recognizer) pinchPair() (geom.Point, geom.Point, bool) {
	a, okA := r.pointers[r.pinchA]
	b, okB := r.pointers[r.pinchB]
	if !okA || !okB {
		return geom.Point{}, geom.Point{}, false
	}
	return a, b, true
}

// dragPosition converts the cumulative screen delta into canvas space.
func (r *Recognizer) dragPosition() geom.Point {
	delta := r.dragLast.Sub(r.dragStartScr)
	return r.dragStartPos.Add(delta.Scale(1 / r.scale()))
}

func (r *Recognizer) reset() {
	r.state = Idle
	r.dragNote = ""
	r.dragExceeded = false
	r.pinchDist = 0
	for k := range r.pointers {
		delete(r.pointers, k)
	}
}

func distance(a, b geom.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
