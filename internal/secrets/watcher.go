package secrets

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch starts the background reload loop. It observes the secrets file and
// any referenced key files, collapsing bursts of filesystem events into a
// single Reload after the debounce period. The loop shares nothing with
// request handlers beyond the atomic snapshot swap and exits when ctx is
// cancelled.
func (s *Store) Watch(ctx context.Context, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch parent directories rather than the files themselves so that
	// rename-and-replace writes (editors, kubelet secret updates) keep
	// delivering events.
	if err := s.syncWatchDirs(watcher); err != nil {
		watcher.Close()
		return err
	}

	go s.watchLoop(ctx, watcher, debounce)
	return nil
}

func (s *Store) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, debounce time.Duration) {
	defer watcher.Close()

	targets := s.targetSet()
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if _, watched := targets[filepath.Clean(event.Name)]; !watched {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			s.logger.Debug("secrets file event", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(debounce)
				fire = timer.C
			} else {
				timer.Reset(debounce)
			}

		case <-fire:
			timer, fire = nil, nil
			if err := s.Reload(); err != nil {
				s.logger.Warn("secret reload failed, keeping previous material", zap.Error(err))
				continue
			}
			s.logger.Info("signing material reloaded", zap.String("file", s.path))
			if err := s.syncWatchDirs(watcher); err != nil {
				s.logger.Warn("failed to update watched paths", zap.Error(err))
			}
			targets = s.targetSet()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Debug("filewatcher error", zap.Error(err))

		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// syncWatchDirs ensures the parent directories of the secrets file and the
// currently-referenced key files are watched. Re-adding an existing path is
// a no-op for fsnotify.
func (s *Store) syncWatchDirs(watcher *fsnotify.Watcher) error {
	dirs := map[string]struct{}{filepath.Dir(s.path): {}}
	for _, keyPath := range s.KeyPaths() {
		dirs[filepath.Dir(keyPath)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) targetSet() map[string]struct{} {
	targets := map[string]struct{}{filepath.Clean(s.path): {}}
	for _, keyPath := range s.KeyPaths() {
		targets[filepath.Clean(keyPath)] = struct{}{}
	}
	return targets
}
