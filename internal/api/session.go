package api

import (
	"net/http"

	"github.com/stickon/stickon/internal/recordstore"
)

// SignUp handles POST /api/session/signup.
//
//	@Summary		Register an account and start a session
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SignUpRequest	true	"Account details"
//	@Success		201		{object}	session.Session
//	@Failure		409		{object}	errResponse
//	@Router			/session/signup [post]
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s, err := h.sessions.SignUp(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

// SignIn handles POST /api/session/signin.
//
//	@Summary		Authenticate and start a session
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SignInRequest	true	"Credentials"
//	@Success		200		{object}	session.Session
//	@Failure		404		{object}	errResponse
//	@Router			/session/signin [post]
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s, err := h.sessions.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// SignOut handles POST /api/session/signout.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.sessions.SignOut()
	w.WriteHeader(http.StatusNoContent)
}

// CurrentSession handles GET /api/session.
func (h *Handler) CurrentSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Current()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// GetProfile handles GET /api/profile.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := h.sessions.UserID()
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := h.db.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateProfile handles PATCH /api/profile.
//
//	@Summary		Update the signed-in user's profile settings
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			body	body		recordstore.ProfileUpdate	true	"Fields to change"
//	@Success		200		{object}	models.Profile
//	@Security		BearerAuth
//	@Router			/profile [patch]
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := h.sessions.UserID()
	if err != nil {
		writeError(w, err)
		return
	}
	var update recordstore.ProfileUpdate
	if !decodeBody(w, r, &update) {
		return
	}
	p, err := h.db.UpdateProfile(r.Context(), userID, update)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
