// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/stickon/stickon/internal/ai"
	"github.com/stickon/stickon/internal/api"
	"github.com/stickon/stickon/internal/layout"
	"github.com/stickon/stickon/internal/mcpserver"
	"github.com/stickon/stickon/internal/models"
	"github.com/stickon/stickon/internal/recordstore"
	"github.com/stickon/stickon/internal/session"
	"github.com/stickon/stickon/internal/spatial"
	"github.com/stickon/stickon/internal/sse"
	"github.com/stickon/stickon/internal/syncer"
	"github.com/stickon/stickon/internal/transfer"
)

// engine bundles the running application state shared by the HTTP and MCP
// front ends.
type engine struct {
	db       *recordstore.SQLite
	store    *spatial.Store
	sessions *session.Manager
	broker   *sse.Broker
	sync     *syncer.Syncer
	ai       ai.Client
	grid     layout.Grid
	log      *slog.Logger
}

// buildEngine wires the shared application core from configuration.
func buildEngine(app *application) (*engine, error) {
	cfg := app.config

	logOut := app.logOut
	if logOut == nil {
		logOut = os.Stdout
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	db, err := recordstore.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init record store: %w", err)
	}

	store := spatial.NewStore()
	sessions := session.NewManager(db)
	broker := sse.NewBroker(2 * time.Second)
	sync := syncer.New(store, db, broker, sessions, logger, cfg.Canvas.Debounce())

	aiClient := app.aiClient
	if aiClient == nil {
		aiClient = ai.NewAnthropic(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.MaxTokens)
	}

	grid := layout.Grid{
		NoteWidth:  cfg.Canvas.NoteWidth,
		NoteHeight: cfg.Canvas.NoteHeight,
		GapX:       cfg.Canvas.GridGapX,
		GapY:       cfg.Canvas.GridGapY,
	}

	// Session changes drive the collection: sign-in loads the user's notes,
	// sign-out clears them.
	sessions.Subscribe(func(s *session.Session) {
		if s == nil {
			sync.Flush()
			store.Clear()
			return
		}
		loadCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := sync.LoadNotes(loadCtx); err != nil {
			logger.Error("load notes failed", slog.String("error", err.Error()))
		}
	})

	if !cfg.Auth.AuthEnabled() {
		sessions.StartLocal("local")
	}

	return &engine{
		db:       db,
		store:    store,
		sessions: sessions,
		broker:   broker,
		sync:     sync,
		ai:       aiClient,
		grid:     grid,
		log:      logger,
	}, nil
}

func (e *engine) close() {
	e.sync.Close()
	e.broker.Close()
	if err := e.db.Close(); err != nil {
		e.log.Error("record store close failed", slog.String("error", err.Error()))
	}
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	eng, err := buildEngine(app)
	if err != nil {
		return err
	}
	defer eng.close()
	logger := eng.log

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Build API handler and router.
	h := api.NewHandler(eng.sync, eng.store, eng.sessions, eng.db, eng.ai, eng.grid)
	apiRouter := api.NewRouter(h, cfg.Auth.AuthEnabled(), eng.broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start the import inbox watcher.
	if cfg.Import.InboxDir != "" {
		g.Go(func() error {
			err := transfer.Watch(gCtx, cfg.Import.InboxDir, logger,
				func(ctx context.Context, notes []models.Note) (int, int, error) {
					return eng.sync.ImportNotes(ctx, notes)
				})
			if err != nil {
				logger.Error("import inbox failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the MCP stdio server instead of the HTTP front end. The
// local session is always used: MCP clients are single-user by nature.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	// Stdio transport owns stdout, so logs go to stderr here.
	app.logOut = os.Stderr
	app.config.Auth.Mode = AuthModeDisabled

	eng, err := buildEngine(app)
	if err != nil {
		return err
	}
	defer eng.close()

	srv := mcpserver.New(eng.sync, eng.store, eng.grid)
	return srv.ServeStdio()
}
