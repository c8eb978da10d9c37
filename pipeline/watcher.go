package pipeline

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the model when the training dataset changes on disk.
type Watcher struct {
	path     string
	debounce time.Duration
	log      *zap.Logger
	onChange func()

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher watches the dataset file and invokes onChange after writes
// settle. The parent directory is watched rather than the file itself so
// write-then-rename updates keep firing events.
func NewWatcher(path string, log *zap.Logger, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		path:     path,
		debounce: 2 * time.Second,
		log:      log,
		onChange: onChange,
		watcher:  fsw,
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	var timer *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			// Collapse bursts of write events into one reload.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("dataset watch error", zap.Error(err))
		case <-pending:
			w.log.Info("dataset changed, reloading", zap.String("path", w.path))
			w.onChange()
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
