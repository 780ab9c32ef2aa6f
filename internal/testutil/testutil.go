// Package testutil provides shared helpers for tests that need a wired
// application core.
package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/stickon/stickon/internal/recordstore"
	"github.com/stickon/stickon/internal/session"
	"github.com/stickon/stickon/internal/spatial"
	"github.com/stickon/stickon/internal/sse"
	"github.com/stickon/stickon/internal/syncer"
)

// TempStore opens a SQLite record store on a temp file cleaned up with the
// test.
func TempStore(t *testing.T) *recordstore.SQLite {
	t.Helper()
	dbFile, err := os.CreateTemp("", "stickon-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := recordstore.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Env is a wired application core backed by a temp record store.
type Env struct {
	DB       *recordstore.SQLite
	Store    *spatial.Store
	Broker   *sse.Broker
	Sessions *session.Manager
	Sync     *syncer.Syncer
}

// NewEnv wires a full engine with the given position debounce. No session is
// started; call Sessions.StartLocal or sign up as the test requires.
func NewEnv(t *testing.T, debounce time.Duration) *Env {
	t.Helper()

	db := TempStore(t)
	store := spatial.NewStore()
	broker := sse.NewBroker(time.Second)
	t.Cleanup(broker.Close)
	sessions := session.NewManager(db)
	sync := syncer.New(store, db, broker, sessions, nil, debounce)
	t.Cleanup(sync.Close)

	return &Env{DB: db, Store: store, Broker: broker, Sessions: sessions, Sync: sync}
}
