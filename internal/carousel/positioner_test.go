package carousel

import (
	"errors"
	"testing"

	"github.com/stickon/stickon/internal/apperr"
	"github.com/stickon/stickon/internal/models"
)

func TestExactlyOneActiveSlide(t *testing.T) {
	const n = 7
	for active := 0; active < n; active++ {
		interactive := 0
		for i := 0; i < n; i++ {
			tr := Position(i, active)
			if tr.Interactive {
				interactive++
				if tr.Opacity != 1 {
					t.Errorf("active slide %d not fully opaque", i)
				}
				if tr.ZIndex != BaseZIndex {
					t.Errorf("active slide z = %d, want %d", tr.ZIndex, BaseZIndex)
				}
				if tr.Scale != 1 {
					t.Errorf("active slide scale = %v", tr.Scale)
				}
			}
		}
		if interactive != 1 {
			t.Fatalf("active=%d: %d interactive slides, want 1", active, interactive)
		}
	}
}

func TestOffsetTransforms(t *testing.T) {
	tr := Position(3, 1) // offset +2
	if tr.RotateYDeg != -50 {
		t.Errorf("rotation = %v, want -50", tr.RotateYDeg)
	}
	if tr.Scale != 0.6 {
		t.Errorf("scale = %v, want 0.6", tr.Scale)
	}
	if tr.TranslateXPct != 80 {
		t.Errorf("translate = %v, want 80", tr.TranslateXPct)
	}
	if tr.TranslateZPx != -300 {
		t.Errorf("depth = %v, want -300", tr.TranslateZPx)
	}
	if tr.Opacity != 1 {
		t.Errorf("offset 2 should still be visible")
	}
	if tr.ZIndex != 98 {
		t.Errorf("z = %d, want 98", tr.ZIndex)
	}

	far := Position(0, 4) // offset -4, past the visible range
	if far.Opacity != 0 {
		t.Errorf("far slide opacity = %v, want 0", far.Opacity)
	}
	if far.Interactive {
		t.Errorf("far slide must be inert")
	}
}

func TestCyclicNavigation(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		if got := Next(n-1, n); got != 0 {
			t.Errorf("next from last of %d = %d, want 0", n, got)
		}
		if got := Prev(0, n); got != n-1 {
			t.Errorf("prev from 0 of %d = %d, want %d", n, got, n-1)
		}
	}
	// Walking forward n steps returns to the start.
	active := 0
	for i := 0; i < 5; i++ {
		active = Next(active, 5)
	}
	if active != 0 {
		t.Errorf("full cycle ended at %d", active)
	}
}

func TestClampActiveOnSetChange(t *testing.T) {
	if got := ClampActive(4, 3); got != 0 {
		t.Errorf("out-of-range active = %d, want 0", got)
	}
	if got := ClampActive(2, 3); got != 2 {
		t.Errorf("in-range active reset: %d", got)
	}
}

func TestJumpTo(t *testing.T) {
	set := []models.Note{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	idx, err := JumpTo(set, "c")
	if err != nil || idx != 2 {
		t.Fatalf("jump = %d, %v", idx, err)
	}
	_, err = JumpTo(set, "stacked-away")
	if !errors.Is(err, apperr.ErrNotInCarousel) {
		t.Errorf("jump to absent note: %v", err)
	}
}

func TestShadows(t *testing.T) {
	sh := Shadows(3)
	if len(sh) != 3 {
		t.Fatalf("layers = %d", len(sh))
	}
	if sh[0].OffsetPx != ShadowOffsetStepPx || sh[2].OffsetPx != 3*ShadowOffsetStepPx {
		t.Errorf("shadow offsets not incremental: %+v", sh)
	}
	if len(Shadows(0)) != 0 {
		t.Errorf("no members should yield no shadows")
	}
}
