// Package session manages the authenticated session lifecycle. All note
// operations are gated on an active session; subscribers are notified on
// every sign-in and sign-out so dependent state (the spatial store) can be
// loaded or cleared.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/stickon/stickon/internal/apperr"
	"github.com/stickon/stickon/internal/models"
	"github.com/stickon/stickon/internal/recordstore"
)

// Session is an active authenticated session.
type Session struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Manager owns the current session and its change subscribers.
type Manager struct {
	db recordstore.Provider

	mu      sync.Mutex
	current *Session
	subs    map[int]func(*Session)
	nextSub int
}

// NewManager creates a manager backed by the given record store.
func NewManager(db recordstore.Provider) *Manager {
	return &Manager{db: db, subs: make(map[int]func(*Session))}
}

// SignUp registers a credential, creates the profile, and starts a session.
func (m *Manager) SignUp(ctx context.Context, email, password, name string) (*Session, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("sign up: email and password are required: %w", apperr.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("sign up: hash password: %w", err)
	}
	userID, err := m.db.CreateCredential(ctx, email, string(hash))
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	if _, err := m.db.CreateProfile(ctx, models.Profile{ID: userID, Email: email, Name: name}); err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	return m.start(userID, email), nil
}

// SignIn verifies a credential and starts a session. Unknown emails and
// wrong passwords are reported identically.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*Session, error) {
	userID, hash, err := m.db.Credential(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", apperr.ErrNotFound)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, fmt.Errorf("sign in: %w", apperr.ErrNotFound)
	}
	return m.start(userID, email), nil
}

// StartLocal starts a synthetic session without credentials. Used when
// authentication is disabled for local single-user operation.
func (m *Manager) StartLocal(userID string) *Session {
	return m.start(userID, "")
}

// SignOut ends the current session and notifies subscribers.
func (m *Manager) SignOut() {
	m.mu.Lock()
	m.current = nil
	subs := m.snapshot()
	m.mu.Unlock()
	for _, fn := range subs {
		fn(nil)
	}
}

// Current returns the active session or apperr.ErrNoSession.
func (m *Manager) Current() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, apperr.ErrNoSession
	}
	s := *m.current
	return &s, nil
}

// UserID returns the active session's user id or apperr.ErrNoSession.
func (m *Manager) UserID() (string, error) {
	s, err := m.Current()
	if err != nil {
		return "", err
	}
	return s.UserID, nil
}

// Subscribe registers a session-change callback and returns an unsubscribe
// function. The callback receives nil on sign-out.
func (m *Manager) Subscribe(fn func(*Session)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *Manager) start(userID, email string) *Session {
	s := &Session{Token: uuid.New().String(), UserID: userID, Email: email}
	m.mu.Lock()
	m.current = s
	subs := m.snapshot()
	m.mu.Unlock()
	for _, fn := range subs {
		fn(s)
	}
	out := *s
	return &out
}

// snapshot copies the subscriber list so notification runs outside the lock.
// Callers hold m.mu.
func (m *Manager) snapshot() []func(*Session) {
	out := make([]func(*Session), 0, len(m.subs))
	for _, fn := range m.subs {
		out = append(out, fn)
	}
	return out
}
