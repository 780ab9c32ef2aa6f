package mcpserver

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stickon/stickon/internal/layout"
	"github.com/stickon/stickon/internal/spatial"
	"github.com/stickon/stickon/internal/testutil"
)

func testServer(t *testing.T) (*Server, *spatial.Store) {
	t.Helper()

	env := testutil.NewEnv(t, 20*time.Millisecond)
	env.Sessions.StartLocal("local")

	return New(env.Sync, env.Store, layout.DefaultGrid()), env.Store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we call the
	// tool handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_notes":
		result, err = srv.listNotes(ctx, req)
	case "search_notes":
		result, err = srv.searchNotes(ctx, req)
	case "create_note":
		result, err = srv.createNote(ctx, req)
	case "update_note":
		result, err = srv.updateNote(ctx, req)
	case "delete_note":
		result, err = srv.deleteNote(ctx, req)
	case "stack_note":
		result, err = srv.stackNote(ctx, req)
	case "tidy_canvas":
		result, err = srv.tidyCanvas(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCreateAndListNotes(t *testing.T) {
	srv, store := testServer(t)

	res := callTool(t, srv, "create_note", map[string]interface{}{
		"text":  "remember the milk",
		"color": "sky",
		"tags":  "errand, shopping",
	})
	if res.IsError {
		t.Fatalf("create failed: %s", resultText(res))
	}
	if !strings.HasPrefix(resultText(res), "created: note_") {
		t.Errorf("result = %q", resultText(res))
	}

	if store.Len() != 1 {
		t.Fatalf("store len = %d", store.Len())
	}
	n := store.All()[0]
	if n.Color != "sky" || len(n.Tags) != 2 {
		t.Errorf("note = %+v", n)
	}

	res = callTool(t, srv, "list_notes", nil)
	if !strings.Contains(resultText(res), "remember the milk") {
		t.Errorf("list missing note: %s", resultText(res))
	}
}

func TestCreateNoteRejectsEmptyText(t *testing.T) {
	srv, _ := testServer(t)

	res := callTool(t, srv, "create_note", map[string]interface{}{"text": ""})
	if !res.IsError {
		t.Error("empty text must be a tool error")
	}
}

func TestSearchNotes(t *testing.T) {
	srv, _ := testServer(t)

	callTool(t, srv, "create_note", map[string]interface{}{"text": "groceries list"})
	callTool(t, srv, "create_note", map[string]interface{}{"text": "meeting agenda", "tags": "work"})

	res := callTool(t, srv, "search_notes", map[string]interface{}{"query": "grocer"})
	if !strings.Contains(resultText(res), "groceries list") || strings.Contains(resultText(res), "agenda") {
		t.Errorf("search result: %s", resultText(res))
	}

	res = callTool(t, srv, "search_notes", map[string]interface{}{"query": "work"})
	if !strings.Contains(resultText(res), "meeting agenda") {
		t.Errorf("tag search result: %s", resultText(res))
	}

	res = callTool(t, srv, "search_notes", map[string]interface{}{"query": "nothing matches this"})
	if resultText(res) != "no notes found" {
		t.Errorf("empty search result: %s", resultText(res))
	}
}

func TestUpdateAndDeleteNote(t *testing.T) {
	srv, store := testServer(t)

	callTool(t, srv, "create_note", map[string]interface{}{"text": "v1"})
	id := store.All()[0].ID

	res := callTool(t, srv, "update_note", map[string]interface{}{"id": id, "text": "v2"})
	if res.IsError {
		t.Fatalf("update failed: %s", resultText(res))
	}
	if n, _ := store.Get(id); n.Text != "v2" {
		t.Errorf("text = %q", n.Text)
	}

	res = callTool(t, srv, "update_note", map[string]interface{}{"id": id})
	if !res.IsError {
		t.Error("update with no fields must be a tool error")
	}

	res = callTool(t, srv, "delete_note", map[string]interface{}{"id": id})
	if res.IsError {
		t.Fatalf("delete failed: %s", resultText(res))
	}
	if store.Len() != 0 {
		t.Error("note still present")
	}

	res = callTool(t, srv, "delete_note", map[string]interface{}{"id": id})
	if !res.IsError {
		t.Error("double delete must be a tool error")
	}
}

func TestStackNote(t *testing.T) {
	srv, store := testServer(t)

	callTool(t, srv, "create_note", map[string]interface{}{"text": "target"})
	callTool(t, srv, "create_note", map[string]interface{}{"text": "source"})
	all := store.All()
	sourceID, targetID := all[0].ID, all[1].ID

	res := callTool(t, srv, "stack_note", map[string]interface{}{
		"source_id": sourceID,
		"target_id": targetID,
	})
	if res.IsError {
		t.Fatalf("stack failed: %s", resultText(res))
	}
	if n, _ := store.Get(sourceID); n.StackID != targetID {
		t.Errorf("stack id = %q", n.StackID)
	}

	// A failed commit must not leave stacking armed.
	res = callTool(t, srv, "stack_note", map[string]interface{}{
		"source_id": targetID,
		"target_id": "ghost",
	})
	if !res.IsError {
		t.Error("stack onto missing note must be a tool error")
	}
	if armed := srv.sync.ArmedStack(); armed != "" {
		t.Errorf("still armed: %q", armed)
	}
}

func TestStackNoteRejectsSelfTarget(t *testing.T) {
	srv, store := testServer(t)

	callTool(t, srv, "create_note", map[string]interface{}{"text": "solo"})
	id := store.All()[0].ID

	res := callTool(t, srv, "stack_note", map[string]interface{}{
		"source_id": id,
		"target_id": id,
	})
	if !res.IsError {
		t.Errorf("self stack must be a tool error, got %q", resultText(res))
	}
	if armed := srv.sync.ArmedStack(); armed != "" {
		t.Errorf("still armed: %q", armed)
	}
	if n, _ := store.Get(id); n.StackID != "" {
		t.Errorf("stack id = %q", n.StackID)
	}
}

func TestTidyCanvas(t *testing.T) {
	srv, store := testServer(t)

	callTool(t, srv, "create_note", map[string]interface{}{"text": "a"})
	callTool(t, srv, "create_note", map[string]interface{}{"text": "b"})

	res := callTool(t, srv, "tidy_canvas", map[string]interface{}{"container_width": 800.0})
	if res.IsError {
		t.Fatalf("tidy failed: %s", resultText(res))
	}
	if resultText(res) != "arranged 2 notes" {
		t.Errorf("result = %q", resultText(res))
	}
	first := store.All()[0]
	if first.X != layout.DefaultGapX || first.Y != layout.DefaultGapY {
		t.Errorf("first cell = (%v,%v)", first.X, first.Y)
	}

	res = callTool(t, srv, "tidy_canvas", map[string]interface{}{"container_width": 0.0})
	if !res.IsError {
		t.Error("zero width must be a tool error")
	}
}
