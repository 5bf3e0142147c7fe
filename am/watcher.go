package am

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/schemalens/errors"
	"github.com/teranos/schemalens/logger"
	"github.com/teranos/schemalens/seed"
)

// ReloadCallback is called once per debounced burst of seed changes
type ReloadCallback func(ctx context.Context) error

// SeedWatcher watches a seed directory and triggers reload callbacks
type SeedWatcher struct {
	dir            string
	watcher        *fsnotify.Watcher
	callbacks      []ReloadCallback
	mu             sync.RWMutex
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
	log            *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSeedWatcher creates a watcher for dir. Nothing fires until Start.
func NewSeedWatcher(dir string, debounce time.Duration, log *zap.SugaredLogger) (*SeedWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	// Watch the directory, not the files, so editors that replace files are seen
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "failed to watch seed directory %s", dir)
	}

	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	return &SeedWatcher{
		dir:            dir,
		watcher:        watcher,
		debouncePeriod: debounce,
		log:            logger.OrNop(log).Named("seed-watcher"),
	}, nil
}

// OnReload registers a callback to be called after seed files change
func (sw *SeedWatcher) OnReload(callback ReloadCallback) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.callbacks = append(sw.callbacks, callback)
}

// Start begins watching; callbacks receive ctx until Stop or ctx ends
func (sw *SeedWatcher) Start(ctx context.Context) {
	sw.ctx, sw.cancel = context.WithCancel(ctx)
	sw.wg.Add(1)
	go sw.watchLoop()
}

// watchLoop monitors file system events
func (sw *SeedWatcher) watchLoop() {
	defer sw.wg.Done()
	for {
		select {
		case <-sw.ctx.Done():
			return

		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			sw.log.Debugw("Seed watcher detected change",
				logger.FieldPath, event.Name,
				"op", event.Op.String())
			sw.scheduleReload()

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.log.Warnw("Seed watcher error", logger.FieldError, err)
		}
	}
}

// relevant filters out backups, hidden editor files, and chmod-only events
func relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	if isBackupFile(base) || len(base) == 0 || base[0] == '.' {
		return false
	}
	return seed.IsSeedFile(base)
}

// scheduleReload debounces rapid file changes
func (sw *SeedWatcher) scheduleReload() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.debounceTimer != nil {
		sw.debounceTimer.Stop()
	}
	sw.debounceTimer = time.AfterFunc(sw.debouncePeriod, sw.fire)
}

// fire calls every registered callback; one failing does not stop the rest
func (sw *SeedWatcher) fire() {
	if sw.ctx.Err() != nil {
		return
	}

	sw.mu.RLock()
	callbacks := make([]ReloadCallback, len(sw.callbacks))
	copy(callbacks, sw.callbacks)
	sw.mu.RUnlock()

	for _, callback := range callbacks {
		if err := callback(sw.ctx); err != nil {
			sw.log.Warnw("Seed reload callback error",
				logger.FieldPath, sw.dir,
				logger.FieldError, err)
		}
	}
}

// Stop stops watching and waits for the event loop to exit
func (sw *SeedWatcher) Stop() error {
	if sw.cancel != nil {
		sw.cancel()
	}
	sw.mu.Lock()
	if sw.debounceTimer != nil {
		sw.debounceTimer.Stop()
	}
	sw.mu.Unlock()

	err := sw.watcher.Close()
	sw.wg.Wait()
	return err
}
