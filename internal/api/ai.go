package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stickon/stickon/internal/ai"
	"github.com/stickon/stickon/internal/models"
)

// SummarizeNote handles POST /api/notes/{id}/ai/summarize. The generated
// summary is saved onto the note.
//
//	@Summary		Summarize a note
//	@Tags			ai
//	@Produce		json
//	@Success		200	{object}	models.Note
//	@Failure		404	{object}	errResponse
//	@Failure		503	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/ai/summarize [post]
func (h *Handler) SummarizeNote(w http.ResponseWriter, r *http.Request) {
	note, ok := h.store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	summary, err := h.ai.Summarize(r.Context(), note)
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.sync.UpdateNote(r.Context(), note.ID, models.NoteUpdate{Summary: &summary})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// TranscribeNote handles POST /api/notes/{id}/ai/transcribe. The transcript
// is appended to the note text.
func (h *Handler) TranscribeNote(w http.ResponseWriter, r *http.Request) {
	note, ok := h.store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	transcript, err := h.ai.Transcribe(r.Context(), note.AudioURL)
	if err != nil {
		writeError(w, err)
		return
	}
	text := note.Text
	if text != "" {
		text += "\n\n"
	}
	text += transcript
	updated, err := h.sync.UpdateNote(r.Context(), note.ID, models.NoteUpdate{Text: &text})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// ExtractTasks handles POST /api/notes/{id}/ai/tasks.
func (h *Handler) ExtractTasks(w http.ResponseWriter, r *http.Request) {
	note, ok := h.store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	tasks, err := h.ai.ExtractTasks(r.Context(), note)
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.sync.UpdateNote(r.Context(), note.ID, models.NoteUpdate{Tasks: &tasks})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// RelatedNotes handles POST /api/notes/{id}/ai/related.
func (h *Handler) RelatedNotes(w http.ResponseWriter, r *http.Request) {
	note, ok := h.store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	related, err := h.ai.RelatedNotes(r.Context(), note, h.store.All())
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.sync.UpdateNote(r.Context(), note.ID, models.NoteUpdate{RelatedIDs: &related})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// ExpandNote handles POST /api/notes/{id}/ai/expand.
func (h *Handler) ExpandNote(w http.ResponseWriter, r *http.Request) {
	note, ok := h.store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	expanded, err := h.ai.Expand(r.Context(), note)
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.sync.UpdateNote(r.Context(), note.ID, models.NoteUpdate{Text: &expanded})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Insights handles POST /api/ai/insights.
func (h *Handler) Insights(w http.ResponseWriter, r *http.Request) {
	digest, err := h.ai.Insights(r.Context(), h.store.All())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"insights": digest})
}

// Query handles POST /api/ai/query.
//
// Answer results pass straight through; create_note and update_note results
// are applied to the collection first, so the response carries both the
// assistant message and the stored note.
//
//	@Summary		Ask the canvas assistant a question
//	@Tags			ai
//	@Accept			json
//	@Produce		json
//	@Param			body	body		QueryRequest	true	"Question and prior conversation turns"
//	@Success		200		{object}	map[string]any
//	@Failure		503		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/ai/query [post]
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Question == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("question is required"))
		return
	}

	res, err := h.ai.Query(r.Context(), req.Question, h.store.All(), req.History)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := map[string]any{"kind": res.Kind, "content": res.Content}
	switch res.Kind {
	case ai.KindCreateNote:
		note, err := h.sync.CreateNote(r.Context(), models.Note{
			Text:  res.Note.Text,
			Tags:  res.Note.Tags,
			Color: res.Note.Color,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		resp["note"] = note
	case ai.KindUpdateNote:
		update := models.NoteUpdate{Text: &res.Note.Text}
		if res.Note.Tags != nil {
			update.Tags = &res.Note.Tags
		}
		note, err := h.sync.UpdateNote(r.Context(), res.Note.ID, update)
		if err != nil {
			writeError(w, err)
			return
		}
		resp["note"] = note
	}
	writeJSON(w, http.StatusOK, resp)
}
