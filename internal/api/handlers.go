package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stickon/stickon/internal/ai"
	"github.com/stickon/stickon/internal/layout"
	"github.com/stickon/stickon/internal/models"
	"github.com/stickon/stickon/internal/recordstore"
	"github.com/stickon/stickon/internal/session"
	"github.com/stickon/stickon/internal/spatial"
	"github.com/stickon/stickon/internal/syncer"
	"github.com/stickon/stickon/internal/transfer"
)

const maxBodyBytes = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	sync     *syncer.Syncer
	store    *spatial.Store
	sessions *session.Manager
	db       recordstore.Provider
	ai       ai.Client
	grid     layout.Grid
}

// NewHandler creates a new Handler.
func NewHandler(sync *syncer.Syncer, store *spatial.Store, sessions *session.Manager, db recordstore.Provider, aiClient ai.Client, grid layout.Grid) *Handler {
	return &Handler{sync: sync, store: store, sessions: sessions, db: db, ai: aiClient, grid: grid}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes, filtered and pinned-first
//	@Tags			notes
//	@Produce		json
//	@Param			search	query		string	false	"Free-text search over text, summary, and tags"
//	@Param			tags	query		string	false	"Comma-separated tags a note must all carry"
//	@Success		200		{object}	NoteListResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.store.SetSearch(q.Get("search"))
	var tags []string
	if raw := q.Get("tags"); raw != "" {
		tags = strings.Split(raw, ",")
	}
	h.store.SetActiveTags(tags)

	notes := h.store.Filtered()
	if notes == nil {
		notes = []models.Note{}
	}
	universe := h.store.TagUniverse()
	if universe == nil {
		universe = []string{}
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Tags: universe, Total: len(notes)})
}

// GetNote handles GET /api/notes/{id}.
//
//	@Summary		Get a single note
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	models.Note
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	note, ok := h.store.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Create a new note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateNoteRequest	true	"Note to create"
//	@Success		201		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	note, err := h.sync.CreateNote(r.Context(), models.Note{
		Text:       req.Text,
		ImageURL:   req.ImageURL,
		DrawingURL: req.DrawingURL,
		AudioURL:   req.AudioURL,
		Tags:       req.Tags,
		Color:      req.Color,
		X:          req.X,
		Y:          req.Y,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// UpdateNote handles PATCH /api/notes/{id}.
//
//	@Summary		Apply a partial update to a note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.NoteUpdate	true	"Fields to change"
//	@Success		200		{object}	models.Note
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [patch]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var update models.NoteUpdate
	if !decodeBody(w, r, &update) {
		return
	}
	note, err := h.sync.UpdateNote(r.Context(), id, update)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/{id}.
//
//	@Summary		Delete a note, un-stacking any notes stacked onto it
//	@Tags			notes
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.sync.DeleteNote(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAllNotes handles DELETE /api/notes.
//
//	@Summary		Delete every note in the collection
//	@Tags			notes
//	@Success		204
//	@Security		BearerAuth
//	@Router			/notes [delete]
func (h *Handler) DeleteAllNotes(w http.ResponseWriter, r *http.Request) {
	if err := h.sync.DeleteAll(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Import handles POST /api/import.
//
//	@Summary		Import an exported note collection, skipping known ids
//	@Tags			transfer
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	ImportResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/import [post]
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("unreadable body"))
		return
	}
	notes, invalid, err := transfer.ParseImport(data)
	if err != nil {
		writeError(w, err)
		return
	}
	imported, skipped, err := h.sync.ImportNotes(r.Context(), notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ImportResponse{Imported: imported, Skipped: skipped, Invalid: invalid})
}

// Export handles GET /api/export.
//
//	@Summary		Download the full collection as JSON
//	@Tags			transfer
//	@Produce		json
//	@Security		BearerAuth
//	@Router			/export [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	h.sync.Flush()
	data, err := transfer.Export(h.store.All())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+transfer.ExportFilename(time.Now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
