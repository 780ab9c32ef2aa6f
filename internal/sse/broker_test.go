package sse

import (
	"strings"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestNoteChangedDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.NoteChanged(KindMoved, "note_1")

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: note.moved") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"id":"note_1"`) {
			t.Errorf("missing note id in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestCanvasUpdateThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Two rapid changes: two note events, but one coalesced canvas event.
	b.NoteChanged(KindCreated, "a")
	b.NoteChanged(KindUpdated, "b")

	time.Sleep(50 * time.Millisecond)
	canvasCount := 0
	noteCount := 0
loop:
	for {
		select {
		case msg := <-ch:
			if strings.Contains(string(msg), "canvas.updated") {
				canvasCount++
			} else {
				noteCount++
			}
		default:
			break loop
		}
	}

	if noteCount != 2 {
		t.Errorf("note events = %d, want 2", noteCount)
	}
	if canvasCount != 1 {
		t.Errorf("canvas events = %d, want 1 (throttled)", canvasCount)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	b := NewBroker(time.Second)
	b.Close()
	b.Close()
	// Operations after close must not panic or block.
	b.NoteChanged(KindDeleted, "x")
	if b.ClientCount() != 0 {
		t.Error("count after close")
	}
	ch := b.Subscribe()
	if _, open := <-ch; open {
		t.Error("subscribe after close returned an open channel")
	}
}
