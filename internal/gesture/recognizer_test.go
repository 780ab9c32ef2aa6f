package gesture

import (
	"testing"

	"github.com/stickon/stickon/internal/geom"
)

// recorder collects every intent the recognizer emits.
type recorder struct {
	pans    []geom.Point
	zooms   []float64
	anchors []geom.Point
	moves   []geom.Point
	commits []geom.Point
	views   []string
}

func newRecognizer(scale float64, rec *recorder) *Recognizer {
	return New(0, func() float64 { return scale }, Handlers{
		Pan:    func(dx, dy float64) { rec.pans = append(rec.pans, geom.Point{X: dx, Y: dy}) },
		ZoomTo: func(a geom.Point, s float64) { rec.anchors = append(rec.anchors, a); rec.zooms = append(rec.zooms, s) },
		MoveNote: func(id string, p geom.Point) {
			rec.moves = append(rec.moves, p)
		},
		CommitNote: func(id string, p geom.Point) {
			rec.commits = append(rec.commits, p)
		},
		ViewNote: func(id string) { rec.views = append(rec.views, id) },
	})
}

func TestSubThresholdReleaseIsView(t *testing.T) {
	rec := &recorder{}
	r := newRecognizer(1, rec)

	r.DownOnNote(1, geom.Point{X: 10, Y: 10}, "n1", geom.Point{X: 100, Y: 100})
	r.Move(1, geom.Point{X: 13, Y: 12})
	r.Up(1, geom.Point{X: 13, Y: 12})

	if len(rec.views) != 1 || rec.views[0] != "n1" {
		t.Fatalf("views = %v, want exactly one for n1", rec.views)
	}
	if len(rec.moves) != 0 || len(rec.commits) != 0 {
		t.Errorf("sub-threshold drag committed: moves=%v commits=%v", rec.moves, rec.commits)
	}
	if r.State() != Idle {
		t.Errorf("state = %v, want idle", r.State())
	}
}

func TestDragCommitDividesByScale(t *testing.T) {
	rec := &recorder{}
	r := newRecognizer(2, rec)

	// Drag from canvas (0,0) with screen delta (100,50) at scale 2.
	r.DownOnNote(1, geom.Point{}, "n1", geom.Point{})
	r.Move(1, geom.Point{X: 100, Y: 50})
	r.Up(1, geom.Point{X: 100, Y: 50})

	if len(rec.commits) != 1 {
		t.Fatalf("commits = %d, want 1", len(rec.commits))
	}
	if got := rec.commits[0]; got.X != 50 || got.Y != 25 {
		t.Errorf("committed position = %+v, want (50,25)", got)
	}
	if len(rec.views) != 0 {
		t.Errorf("view fired on a committed drag")
	}
}

func TestThresholdIsScreenSpace(t *testing.T) {
	// At scale 0.2 a 4px screen move covers 20 canvas units, but it is
	// still below the 5px screen threshold and must stay a click.
	rec := &recorder{}
	r := newRecognizer(0.2, rec)

	r.DownOnNote(1, geom.Point{}, "n1", geom.Point{})
	r.Move(1, geom.Point{X: 4, Y: 0})
	r.Up(1, geom.Point{X: 4, Y: 0})

	if len(rec.commits) != 0 {
		t.Errorf("4px screen move committed at low zoom")
	}
	if len(rec.views) != 1 {
		t.Errorf("views = %d, want 1", len(rec.views))
	}
}

func TestThresholdEitherAxis(t *testing.T) {
	rec := &recorder{}
	r := newRecognizer(1, rec)

	r.DownOnNote(1, geom.Point{}, "n1", geom.Point{})
	r.Move(1, geom.Point{X: 0, Y: 5}) // exactly at threshold on Y
	r.Up(1, geom.Point{X: 0, Y: 5})

	if len(rec.commits) != 1 {
		t.Fatalf("at-threshold move should commit, commits = %d", len(rec.commits))
	}
	if got := rec.commits[0]; got.X != 0 || got.Y != 5 {
		t.Errorf("committed = %+v, want (0,5)", got)
	}
}

func TestPanEmitsScreenDeltas(t *testing.T) {
	rec := &recorder{}
	r := newRecognizer(0.5, rec)

	r.Down(1, geom.Point{X: 10, Y: 10})
	if r.State() != Panning {
		t.Fatalf("state = %v, want panning", r.State())
	}
	r.Move(1, geom.Point{X: 25, Y: 5})
	r.Up(1, geom.Point{X: 25, Y: 5})

	if len(rec.pans) != 1 {
		t.Fatalf("pans = %d, want 1", len(rec.pans))
	}
	// Pan deltas stay in screen space regardless of scale.
	if got := rec.pans[0]; got.X != 15 || got.Y != -5 {
		t.Errorf("pan delta = %+v, want (15,-5)", got)
	}
	if r.State() != Idle {
		t.Errorf("state after release = %v", r.State())
	}
}

func TestSecondPointerCancelsPanAndPinches(t *testing.T) {
	rec := &recorder{}
	r := newRecognizer(1, rec)

	r.Down(1, geom.Point{X: 0, Y: 0})
	r.Down(2, geom.Point{X: 100, Y: 0})
	if r.State() != Pinching {
		t.Fatalf("state = %v, want pinching", r.State())
	}

	// Double the pointer distance: requested scale doubles, anchored at
	// the midpoint.
	r.Move(2, geom.Point{X: 200, Y: 0})
	if len(rec.zooms) != 1 {
		t.Fatalf("zooms = %d, want 1", len(rec.zooms))
	}
	if rec.zooms[0] != 2 {
		t.Errorf("requested scale = %v, want 2", rec.zooms[0])
	}
	if mid := rec.anchors[0]; mid.X != 100 || mid.Y != 0 {
		t.Errorf("anchor = %+v, want midpoint (100,0)", mid)
	}
	// No pan events once the pinch began.
	if len(rec.pans) != 0 {
		t.Errorf("pan fired during pinch: %v", rec.pans)
	}

	// Lift one finger: the remaining pointer continues as a pan.
	r.Up(2, geom.Point{X: 200, Y: 0})
	if r.State() != Panning {
		t.Errorf("state = %v, want panning after one finger lifted", r.State())
	}
	r.Up(1, geom.Point{X: 0, Y: 0})
	if r.State() != Idle {
		t.Errorf("state = %v, want idle after all fingers lifted", r.State())
	}
}

func TestThirdPointerDoesNotDisturbPinch(t *testing.T) {
	rec := &recorder{}
	r := newRecognizer(1, rec)

	r.Down(1, geom.Point{X: 0, Y: 0})
	r.Down(2, geom.Point{X: 100, Y: 0})
	r.Down(3, geom.Point{X: 500, Y: 500})

	// Moves of a non-participating pointer emit nothing.
	r.Move(3, geom.Point{X: 900, Y: 900})
	if len(rec.zooms) != 0 {
		t.Fatalf("third pointer zoomed: %v", rec.zooms)
	}

	// The pinch pair stays pointers 1 and 2: doubling their distance
	// requests double scale no matter where pointer 3 sits.
	r.Move(2, geom.Point{X: 200, Y: 0})
	if len(rec.zooms) != 1 || rec.zooms[0] != 2 {
		t.Fatalf("zooms = %v, want [2]", rec.zooms)
	}
	if mid := rec.anchors[0]; mid.X != 100 || mid.Y != 0 {
		t.Errorf("anchor = %+v, want midpoint (100,0)", mid)
	}
}

func TestLiftedPinchPointerIsReplaced(t *testing.T) {
	rec := &recorder{}
	r := newRecognizer(1, rec)

	r.Down(1, geom.Point{X: 0, Y: 0})
	r.Down(2, geom.Point{X: 100, Y: 0})
	r.Down(3, geom.Point{X: 0, Y: 300})

	// Pointer 2 lifts: pointer 3 joins the pinch and the baseline distance
	// is re-measured, so the handoff itself causes no zoom.
	r.Up(2, geom.Point{X: 100, Y: 0})
	if r.State() != Pinching {
		t.Fatalf("state = %v, want pinching", r.State())
	}
	if len(rec.zooms) != 0 {
		t.Fatalf("handoff zoomed: %v", rec.zooms)
	}

	// New pair is pointers 1 and 3, 300 apart; halving requests half scale.
	r.Move(3, geom.Point{X: 0, Y: 150})
	if len(rec.zooms) != 1 || rec.zooms[0] != 0.5 {
		t.Errorf("zooms = %v, want [0.5]", rec.zooms)
	}
}

func TestLiveMovePositionsWhileDragging(t *testing.T) {
	rec := &recorder{}
	r := newRecognizer(1, rec)

	r.DownOnNote(1, geom.Point{}, "n1", geom.Point{X: 10, Y: 10})
	r.Move(1, geom.Point{X: 20, Y: 0})
	r.Move(1, geom.Point{X: 30, Y: 10})
	r.Up(1, geom.Point{X: 30, Y: 10})

	if len(rec.moves) != 2 {
		t.Fatalf("moves = %d, want 2", len(rec.moves))
	}
	if got := rec.moves[1]; got.X != 40 || got.Y != 20 {
		t.Errorf("live position = %+v, want (40,20)", got)
	}
	if len(rec.commits) != 1 {
		t.Fatalf("commits = %d, want 1", len(rec.commits))
	}
}
