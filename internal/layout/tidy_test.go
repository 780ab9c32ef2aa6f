package layout

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stickon/stickon/internal/models"
)

func testNotes(k int) []models.Note {
	notes := make([]models.Note, k)
	for i := range notes {
		notes[i] = models.Note{ID: fmt.Sprintf("n%d", i)}
	}
	return notes
}

func TestColumnsNeverBelowOne(t *testing.T) {
	g := DefaultGrid()
	if got := g.Columns(10); got != 1 {
		t.Errorf("columns in tiny container = %d, want 1", got)
	}
	// Three cells of 240+24 fit in 800.
	if got := g.Columns(800); got != 3 {
		t.Errorf("columns(800) = %d, want 3", got)
	}
}

func TestPlanPositions(t *testing.T) {
	g := DefaultGrid()
	placements := g.Plan(testNotes(4), 800) // 3 columns

	first := placements[0]
	if first.X != g.GapX || first.Y != g.GapY {
		t.Errorf("first cell = (%v,%v), want gap offset (%v,%v)", first.X, first.Y, g.GapX, g.GapY)
	}
	// Fourth note wraps to row 1, column 0.
	fourth := placements[3]
	if fourth.X != g.GapX {
		t.Errorf("wrapped note x = %v, want %v", fourth.X, g.GapX)
	}
	if want := g.NoteHeight + 2*g.GapY; fourth.Y != want {
		t.Errorf("wrapped note y = %v, want %v", fourth.Y, want)
	}
}

func TestPlanDeterministic(t *testing.T) {
	g := DefaultGrid()
	notes := testNotes(17)
	a := g.Plan(notes, 1234)
	b := g.Plan(notes, 1234)
	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs produced different layouts")
	}
}

func TestPlanCollisionFree(t *testing.T) {
	g := DefaultGrid()
	for _, width := range []float64{100, 500, 1000, 2500} {
		seen := make(map[[2]float64]string)
		for _, p := range g.Plan(testNotes(23), width) {
			key := [2]float64{p.X, p.Y}
			if prev, dup := seen[key]; dup {
				t.Fatalf("width %v: %s and %s share cell %v", width, prev, p.ID, key)
			}
			seen[key] = p.ID
		}
	}
}
