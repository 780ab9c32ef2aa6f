package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stickon/stickon/internal/apperr"
	"github.com/stickon/stickon/internal/session"
	"github.com/stickon/stickon/internal/testutil"
)

func testManager(t *testing.T) *session.Manager {
	t.Helper()
	return session.NewManager(testutil.TempStore(t))
}

func TestSignUpAndSignIn(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	s, err := m.SignUp(ctx, "ada@example.com", "secret", "Ada")
	if err != nil {
		t.Fatal(err)
	}
	if s.Token == "" || s.UserID == "" {
		t.Fatalf("incomplete session: %+v", s)
	}

	m.SignOut()
	if _, err := m.Current(); !errors.Is(err, apperr.ErrNoSession) {
		t.Errorf("after sign out: %v", err)
	}

	s2, err := m.SignIn(ctx, "ada@example.com", "secret")
	if err != nil {
		t.Fatal(err)
	}
	if s2.UserID != s.UserID {
		t.Errorf("user id changed across sessions: %q vs %q", s2.UserID, s.UserID)
	}
	if s2.Token == s.Token {
		t.Error("token reused across sessions")
	}
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	if _, err := m.SignUp(ctx, "ada@example.com", "secret", "Ada"); err != nil {
		t.Fatal(err)
	}
	m.SignOut()

	if _, err := m.SignIn(ctx, "ada@example.com", "wrong"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("wrong password: %v", err)
	}
	if _, err := m.SignIn(ctx, "ghost@example.com", "secret"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown email: %v", err)
	}
	if _, err := m.Current(); !errors.Is(err, apperr.ErrNoSession) {
		t.Errorf("failed sign-in must not start a session: %v", err)
	}
}

func TestSignUpValidation(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	if _, err := m.SignUp(ctx, "", "secret", ""); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("empty email: %v", err)
	}
	if _, err := m.SignUp(ctx, "a@example.com", "", ""); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("empty password: %v", err)
	}
}

func TestSubscribeNotifications(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	var events []*session.Session
	unsub := m.Subscribe(func(s *session.Session) { events = append(events, s) })

	if _, err := m.SignUp(ctx, "ada@example.com", "secret", "Ada"); err != nil {
		t.Fatal(err)
	}
	m.SignOut()

	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0] == nil || events[1] != nil {
		t.Errorf("events = [%v %v], want [session nil]", events[0], events[1])
	}

	unsub()
	m.StartLocal("local")
	if len(events) != 2 {
		t.Error("notified after unsubscribe")
	}
}

func TestStartLocal(t *testing.T) {
	m := testManager(t)

	s := m.StartLocal("local")
	if s.UserID != "local" {
		t.Errorf("user = %q", s.UserID)
	}
	id, err := m.UserID()
	if err != nil || id != "local" {
		t.Errorf("UserID = %q, %v", id, err)
	}
}
