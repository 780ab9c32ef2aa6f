package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether the session token is enforced; the session
// endpoints themselves are always reachable so a client can sign in.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()

	// Session lifecycle (outside the auth gate).
	r.Post("/session/signup", h.SignUp)
	r.Post("/session/signin", h.SignIn)
	r.Post("/session/signout", h.SignOut)
	r.Get("/session", h.CurrentSession)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(authEnabled, h.sessions))

		// Profile.
		r.Get("/profile", h.GetProfile)
		r.Patch("/profile", h.UpdateProfile)

		// Notes CRUD.
		r.Get("/notes", h.ListNotes)
		r.Post("/notes", h.CreateNote)
		r.Delete("/notes", h.DeleteAllNotes)
		r.Get("/notes/{id}", h.GetNote)
		r.Patch("/notes/{id}", h.UpdateNote)
		r.Delete("/notes/{id}", h.DeleteNote)

		// Canvas interaction.
		r.Put("/notes/{id}/position", h.MoveNote)
		r.Post("/canvas/tidy", h.Tidy)

		// Stacking.
		r.Get("/stack", h.StackState)
		r.Post("/stack/start", h.StartStacking)
		r.Post("/stack/finish", h.FinishStacking)
		r.Post("/stack/cancel", h.CancelStacking)

		// Carousel.
		r.Get("/carousel", h.Carousel)
		r.Post("/carousel/jump", h.CarouselJump)

		// Collection transfer.
		r.Post("/import", h.Import)
		r.Get("/export", h.Export)

		// AI collaborator.
		r.Post("/notes/{id}/ai/summarize", h.SummarizeNote)
		r.Post("/notes/{id}/ai/transcribe", h.TranscribeNote)
		r.Post("/notes/{id}/ai/tasks", h.ExtractTasks)
		r.Post("/notes/{id}/ai/related", h.RelatedNotes)
		r.Post("/notes/{id}/ai/expand", h.ExpandNote)
		r.Post("/ai/insights", h.Insights)
		r.Post("/ai/query", h.Query)

		// SSE endpoint (protected by the same auth middleware).
		if sseHandler != nil {
			r.Get("/events", sseHandler.ServeHTTP)
		}
	})

	return r
}
