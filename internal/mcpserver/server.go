// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Stickon canvas tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/stickon/stickon/internal/layout"
	"github.com/stickon/stickon/internal/models"
	"github.com/stickon/stickon/internal/spatial"
	"github.com/stickon/stickon/internal/syncer"
)

// Server wraps the MCP server with Stickon tools.
type Server struct {
	mcp   *server.MCPServer
	sync  *syncer.Syncer
	store *spatial.Store
	grid  layout.Grid
}

// New creates a new MCP server with all Stickon tools registered.
func New(sync *syncer.Syncer, store *spatial.Store, grid layout.Grid) *Server {
	s := &Server{sync: sync, store: store, grid: grid}

	s.mcp = server.NewMCPServer(
		"Stickon",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List every note on the canvas as JSON, newest first."),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Search notes by text, summary, or tag substring."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a sticky note on the canvas."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Note text")),
		mcp.WithString("color", mcp.Description("Palette color: yellow, rose, sky, lime, violet, amber")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Change a note's text or color."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("text", mcp.Description("New note text")),
		mcp.WithString("color", mcp.Description("New palette color")),
	), s.updateNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note. Notes stacked onto it are un-stacked, not deleted."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("stack_note",
		mcp.WithDescription("Stack one note onto another so it leaves the carousel."),
		mcp.WithString("source_id", mcp.Required(), mcp.Description("Note to stack")),
		mcp.WithString("target_id", mcp.Required(), mcp.Description("Note to stack it onto")),
	), s.stackNote)

	s.mcp.AddTool(mcp.NewTool("tidy_canvas",
		mcp.WithDescription("Arrange all visible notes into a grid."),
		mcp.WithNumber("container_width", mcp.Required(), mcp.Description("Canvas container width in pixels")),
	), s.tidyCanvas)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.store.All(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	term := strings.ToLower(query)
	var hits []models.Note
	for _, n := range s.store.All() {
		if strings.Contains(strings.ToLower(n.Text), term) ||
			strings.Contains(strings.ToLower(n.Summary), term) {
			hits = append(hits, n)
			continue
		}
		for _, tag := range n.Tags {
			if strings.Contains(strings.ToLower(tag), term) {
				hits = append(hits, n)
				break
			}
		}
	}
	if len(hits) == 0 {
		return mcp.NewToolResultText("no notes found"), nil
	}
	out, _ := json.MarshalIndent(hits, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	note := models.Note{Text: text}
	if c, cErr := req.RequireString("color"); cErr == nil {
		note.Color = models.Color(c)
	}
	if raw, tErr := req.RequireString("tags"); tErr == nil && raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				note.Tags = append(note.Tags, tag)
			}
		}
	}

	created, err := s.sync.CreateNote(ctx, note)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", created.ID)), nil
}

func (s *Server) updateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var update models.NoteUpdate
	if text, tErr := req.RequireString("text"); tErr == nil {
		update.Text = &text
	}
	if c, cErr := req.RequireString("color"); cErr == nil {
		color := models.Color(c)
		update.Color = &color
	}
	if update.Text == nil && update.Color == nil {
		return mcp.NewToolResultError("nothing to update: pass text or color"), nil
	}

	if _, err := s.sync.UpdateNote(ctx, id, update); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated: %s", id)), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.sync.DeleteNote(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", id)), nil
}

func (s *Server) stackNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourceID, err := req.RequireString("source_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	targetID, err := req.RequireString("target_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	// A self-target is an interactive no-op that would leave stacking armed
	// between tool calls, so reject it here.
	if sourceID == targetID {
		return mcp.NewToolResultError("cannot stack a note onto itself"), nil
	}

	if err := s.sync.StartStacking(sourceID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.sync.FinishStacking(ctx, targetID); err != nil {
		s.sync.CancelStacking()
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("stacked %s onto %s", sourceID, targetID)), nil
}

func (s *Server) tidyCanvas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	width, err := req.RequireFloat("container_width")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if width <= 0 {
		return mcp.NewToolResultError("container_width must be positive"), nil
	}

	placements := s.grid.Plan(s.store.Filtered(), width)
	if err := s.sync.Tidy(ctx, placements); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("arranged %d notes", len(placements))), nil
}
