package transfer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/stickon/stickon/internal/models"
)

// settleDelay is how long a dropped file must stay quiet before it is read,
// so partially written files are not imported mid-copy.
const settleDelay = 200 * time.Millisecond

// ImportFunc receives the parsed notes from a dropped file and returns how
// many were imported and skipped.
type ImportFunc func(ctx context.Context, notes []models.Note) (imported, skipped int, err error)

// Watch starts an fsnotify watcher on the import inbox and processes dropped
// .json files until ctx is cancelled. Successfully handled files are renamed
// with an .imported suffix so they are not picked up again.
func Watch(ctx context.Context, inboxDir string, logger *slog.Logger, importFn ImportFunc) error {
	if err := os.MkdirAll(inboxDir, 0o755); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(inboxDir); err != nil {
		return err
	}

	logger.Info("import inbox: started", slog.String("dir", inboxDir))

	// Write events for the same file are debounced with a settle timer so a
	// file copied in several chunks is imported once, after the last chunk.
	pending := make(map[string]struct{})
	var settleTimer *time.Timer
	var settleCh <-chan time.Time

	scheduleSettle := func() {
		if settleTimer == nil {
			settleTimer = time.NewTimer(settleDelay)
			settleCh = settleTimer.C
		} else {
			settleTimer.Reset(settleDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if settleTimer != nil {
				settleTimer.Stop()
			}
			logger.Info("import inbox: stopped")
			return nil

		case <-settleCh:
			for path := range pending {
				delete(pending, path)
				handleDrop(ctx, path, logger, importFn)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !strings.HasSuffix(ev.Name, ".json") {
				continue
			}
			pending[ev.Name] = struct{}{}
			scheduleSettle()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("import inbox: error", slog.String("error", watchErr.Error()))
		}
	}
}

// handleDrop imports one dropped file and marks it processed.
func handleDrop(ctx context.Context, path string, logger *slog.Logger, importFn ImportFunc) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("import inbox: read failed", slog.String("file", filepath.Base(path)), slog.String("error", err.Error()))
		return
	}

	notes, droppedRecords, err := ParseImport(data)
	if err != nil {
		logger.Warn("import inbox: parse failed", slog.String("file", filepath.Base(path)), slog.String("error", err.Error()))
		return
	}

	imported, skipped, err := importFn(ctx, notes)
	if err != nil {
		logger.Warn("import inbox: import failed", slog.String("file", filepath.Base(path)), slog.String("error", err.Error()))
		return
	}

	logger.Info("import inbox: imported",
		slog.String("file", filepath.Base(path)),
		slog.Int("imported", imported),
		slog.Int("skipped", skipped),
		slog.Int("invalid", droppedRecords))

	if err := os.Rename(path, path+".imported"); err != nil {
		logger.Warn("import inbox: mark failed", slog.String("file", filepath.Base(path)), slog.String("error", err.Error()))
	}
}
