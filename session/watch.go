package session

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits after the last change before
// reloading.
const DefaultDebounce = 200 * time.Millisecond

// Watch reloads both documents whenever either file changes, until ctx is
// done. The parent directories are watched so editors that replace files
// are noticed. A failed reload leaves the session not loaded and is logged;
// watching continues. onReload, if not nil, is called after every attempt.
func (s *Session) Watch(ctx context.Context, v3Path, v4Path string, debounce time.Duration, onReload func(error)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("session: watch: %w", err)
	}
	defer w.Close()

	targets := map[string]bool{}
	for _, p := range []string{v3Path, v4Path} {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("session: watch %s: %w", p, err)
		}
		targets[abs] = true
	}
	dirs := map[string]bool{}
	for p := range targets {
		dir := filepath.Dir(p)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("session: watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	s.log.Info("session: watching", slog.String("v3", v3Path), slog.String("v4", v4Path))

	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil || !targets[abs] {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			timerC = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("session: watch error", slog.Any("error", err))
		case <-timerC:
			timerC = nil
			err := s.LoadFiles(ctx, v3Path, v4Path)
			if err == nil {
				s.log.Info("session: reloaded")
			}
			if onReload != nil {
				onReload(err)
			}
		}
	}
}
