package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/robotcell/cellsim/logging"
)

// settleTime is how long the file must stay quiet before a change is read. Editors often write a
// file in several steps.
const settleTime = 100 * time.Millisecond

// A Watcher delivers a freshly read config every time its file changes.
type Watcher interface {
	Config() <-chan *Config
	Close() error
}

type fsConfigWatcher struct {
	watcher *fsnotify.Watcher
	configs chan *Config
	cancel  func()
	wg      sync.WaitGroup
}

// NewWatcher watches the config at path. Changes that fail to read or validate are logged and
// skipped, so the last good config stays in effect. A burst of events is read once, after the file
// has settled. The directory is watched rather than the file
// so that editors replacing the file by rename are seen.
func NewWatcher(ctx context.Context, path string, logger logging.Logger) (Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return nil, multierr.Combine(errors.Wrapf(err, "cannot watch %q", path), w.Close())
	}

	cancelCtx, cancel := context.WithCancel(ctx)
	cw := &fsConfigWatcher{
		watcher: w,
		configs: make(chan *Config),
		cancel:  cancel,
	}
	reload := make(chan struct{}, 1)
	debounced := debounce.New(settleTime)
	cw.wg.Add(1)
	go func() {
		defer cw.wg.Done()
		for {
			select {
			case <-cancelCtx.Done():
				return
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warnw("config watcher error", "path", path, "error", err)
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs || !event.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				debounced(func() {
					select {
					case reload <- struct{}{}:
					default:
					}
				})
			case <-reload:
				cfg, err := Read(abs)
				if err != nil {
					logger.Errorw("ignoring changed config", "path", path, "error", err)
					continue
				}
				cfg.ConfigFilePath = path
				select {
				case <-cancelCtx.Done():
					return
				case cw.configs <- cfg:
				}
			}
		}
	}()
	return cw, nil
}

func (w *fsConfigWatcher) Config() <-chan *Config {
	return w.configs
}

func (w *fsConfigWatcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}
