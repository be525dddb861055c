package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/edaniels/golog"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// reloadDelay coalesces the bursts of events editors produce on save.
const reloadDelay = 100 * time.Millisecond

// A Watcher re-reads a config file whenever it changes.
type Watcher struct {
	watcher *fsnotify.Watcher
	cancel  func()

	activeBackgroundWorkers sync.WaitGroup
}

// Watch calls onChange with every valid version of the file at path written
// after the call. Invalid versions are logged and skipped. The watcher stops
// when ctx is done or Close is called.
func Watch(ctx context.Context, logger golog.Logger, path string, onChange func(*Config)) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot watch config %q", path)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "cannot create file watcher")
	}
	// the directory survives editors that save by renaming over the file
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return nil, closeWithError(errors.Wrapf(err, "cannot watch config %q", path), fsw)
	}

	cancelCtx, cancel := context.WithCancel(ctx)
	w := &Watcher{watcher: fsw, cancel: cancel}
	debounced := debounce.New(reloadDelay)
	// the debounce timer only signals; reloads run on the watch goroutine
	reloads := make(chan struct{}, 1)
	requestReload := func() {
		select {
		case reloads <- struct{}{}:
		default:
		}
	}
	reload := func() {
		cfg, err := Read(abs)
		if err != nil {
			logger.Errorw("ignoring config change", "path", abs, "error", err)
			return
		}
		logger.Infow("config changed", "path", abs)
		onChange(cfg)
	}

	w.activeBackgroundWorkers.Add(1)
	utils.ManagedGo(func() {
		for {
			select {
			case <-cancelCtx.Done():
				return
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					debounced(requestReload)
				}
			case <-reloads:
				if cancelCtx.Err() == nil {
					reload()
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				logger.Warnw("config watcher error", "error", err)
			}
		}
	}, w.activeBackgroundWorkers.Done)
	return w, nil
}

// Close stops the watcher and waits for it to exit. onChange is never called
// once Close has returned.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	w.activeBackgroundWorkers.Wait()
	return err
}

func closeWithError(err error, fsw *fsnotify.Watcher) error {
	utils.UncheckedError(fsw.Close())
	return err
}
