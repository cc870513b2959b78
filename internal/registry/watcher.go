// watcher.go keeps the registry in sync with the shared directory using
// fsnotify. Bursts of events (an unzip dropping hundreds of files) are
// coalesced with a short debounce so the directory is rescanned once per
// burst instead of once per file.
package registry

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// debounceInterval is how long the watcher waits after the last event
// before triggering a rescan.
const debounceInterval = 200 * time.Millisecond

// Watcher feeds filesystem events on the shared directory into a
// Registry. Start launches the event loop; Stop shuts it down.
type Watcher struct {
	reg     *Registry
	watcher *fsnotify.Watcher
	done    chan struct{}
	log     *zap.Logger
}

// NewWatcher creates a Watcher for the registry's shared directory.
// The caller must invoke Start to begin receiving events and Stop to
// release the inotify handle.
func NewWatcher(reg *Registry, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating filesystem watcher: %w", err)
	}
	if err := fw.Add(reg.FilesDir()); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watching %s: %w", reg.FilesDir(), err)
	}
	return &Watcher{
		reg:     reg,
		watcher: fw,
		done:    make(chan struct{}),
		log:     log,
	}, nil
}

// Start launches the event loop goroutine.
func (w *Watcher) Start() {
	go w.loop()
}

// Stop closes the underlying watcher and waits for the loop to exit.
func (w *Watcher) Stop() {
	_ = w.watcher.Close()
	<-w.done
}

// loop consumes fsnotify events until the watcher is closed. Only events
// that can change the file set (create, remove, rename, write) arm the
// debounce timer; chmod-only events are ignored.
func (w *Watcher) loop() {
	defer close(w.done)

	var debounce *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) == 0 {
				continue
			}
			w.log.Debug("shared directory event",
				zap.String("op", ev.Op.String()),
				zap.String("path", ev.Name))
			if debounce == nil {
				debounce = time.NewTimer(debounceInterval)
				fire = debounce.C
			} else {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(debounceInterval)
			}

		case <-fire:
			debounce = nil
			fire = nil
			if err := w.reg.Refresh(); err != nil {
				w.log.Warn("rescan after filesystem event failed", zap.Error(err))
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("filesystem watcher error", zap.Error(err))
		}
	}
}
