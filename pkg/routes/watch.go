package routes

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the route file at path into h whenever it changes, until
// ctx is done. A file that fails to load, validate, or pass check is
// logged and the previous table stays active. check may be nil.
//
// The parent directory is watched rather than the file so that editors
// replacing the file by rename are picked up.
func Watch(ctx context.Context, path string, h *Holder, check func(*Table) error, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = fsw.Close() }()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	logger.Info("watching route table", "path", abs)

	const debounce = 100 * time.Millisecond
	var (
		timer   *time.Timer
		pending <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			// Editors often write in several steps; reload once they settle.
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			reload(abs, h, check, logger)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("route watcher error", "error", err)
		}
	}
}

func reload(path string, h *Holder, check func(*Table) error, logger *slog.Logger) {
	t, err := LoadFile(path)
	if err == nil && check != nil {
		err = check(t)
	}
	if err != nil {
		logger.Error("route table reload rejected, keeping previous table", "path", path, "error", err)
		return
	}
	h.Swap(t)
	logger.Info("route table reloaded", "path", path, "entries", len(t.entries))
}
