package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stickon/stickon/internal/carousel"
)

// MoveNote handles PUT /api/notes/{id}/position.
//
// The position applies to the local collection immediately; the record store
// write is debounced, so rapid successive moves collapse into one write.
//
//	@Summary		Move a note on the canvas
//	@Tags			canvas
//	@Accept			json
//	@Param			body	body	PositionRequest	true	"New canvas coordinates"
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/position [put]
func (h *Handler) MoveNote(w http.ResponseWriter, r *http.Request) {
	var req PositionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.sync.MoveNote(chi.URLParam(r, "id"), req.X, req.Y); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Tidy handles POST /api/canvas/tidy.
//
//	@Summary		Arrange the visible notes into a grid
//	@Tags			canvas
//	@Accept			json
//	@Produce		json
//	@Param			body	body		TidyRequest	true	"Canvas container width in pixels"
//	@Success		200		{object}	map[string]int
//	@Security		BearerAuth
//	@Router			/canvas/tidy [post]
func (h *Handler) Tidy(w http.ResponseWriter, r *http.Request) {
	var req TidyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ContainerWidth <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("container_width must be positive"))
		return
	}
	placements := h.grid.Plan(h.store.Filtered(), req.ContainerWidth)
	if err := h.sync.Tidy(r.Context(), placements); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"moved": len(placements)})
}

// StackState handles GET /api/stack.
func (h *Handler) StackState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StackStateResponse{Armed: h.sync.ArmedStack()})
}

// StartStacking handles POST /api/stack/start.
//
//	@Summary		Arm stacking mode with a source note
//	@Tags			canvas
//	@Accept			json
//	@Produce		json
//	@Param			body	body		StackRequest	true	"Source note id; arming it again disarms"
//	@Success		200		{object}	StackStateResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/stack/start [post]
func (h *Handler) StartStacking(w http.ResponseWriter, r *http.Request) {
	var req StackRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.sync.StartStacking(req.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StackStateResponse{Armed: h.sync.ArmedStack()})
}

// FinishStacking handles POST /api/stack/finish.
//
//	@Summary		Stack the armed source onto a target note
//	@Tags			canvas
//	@Accept			json
//	@Produce		json
//	@Param			body	body		StackRequest	true	"Target note id; the source itself is a no-op"
//	@Success		200		{object}	StackStateResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/stack/finish [post]
func (h *Handler) FinishStacking(w http.ResponseWriter, r *http.Request) {
	var req StackRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.sync.FinishStacking(r.Context(), req.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StackStateResponse{Armed: h.sync.ArmedStack()})
}

// CancelStacking handles POST /api/stack/cancel.
func (h *Handler) CancelStacking(w http.ResponseWriter, r *http.Request) {
	h.sync.CancelStacking()
	writeJSON(w, http.StatusOK, StackStateResponse{Armed: ""})
}

// Carousel handles GET /api/carousel.
//
// Renders the full slide deck for the given active index: every unstacked
// note that passes the current filters gets a 3D transform, and notes
// stacked beneath a slide appear as shadow layers.
//
//	@Summary		Render the carousel slide deck
//	@Tags			canvas
//	@Produce		json
//	@Param			active	query		int	false	"Active slide index; out-of-range resets to 0"
//	@Success		200		{object}	CarouselResponse
//	@Security		BearerAuth
//	@Router			/carousel [get]
func (h *Handler) Carousel(w http.ResponseWriter, r *http.Request) {
	active, _ := strconv.Atoi(r.URL.Query().Get("active"))

	set := h.store.CarouselSet()
	active = carousel.ClampActive(active, len(set))

	slides := make([]CarouselSlide, len(set))
	for i, n := range set {
		members := h.store.StackMembers(n.ID)
		slides[i] = CarouselSlide{
			Note:       n,
			Transform:  carousel.Position(i, active),
			StackCount: len(members),
			Shadows:    carousel.Shadows(len(members)),
		}
	}
	writeJSON(w, http.StatusOK, CarouselResponse{Slides: slides, Active: active, Total: len(set)})
}

// CarouselJump handles POST /api/carousel/jump.
//
//	@Summary		Focus the carousel on a specific note
//	@Tags			canvas
//	@Accept			json
//	@Produce		json
//	@Param			body	body		JumpRequest	true	"Note id to focus"
//	@Success		200		{object}	map[string]int
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/carousel/jump [post]
func (h *Handler) CarouselJump(w http.ResponseWriter, r *http.Request) {
	var req JumpRequest
	if !decodeBody(w, r, &req) {
		return
	}
	idx, err := carousel.JumpTo(h.store.CarouselSet(), req.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"active": idx})
}
