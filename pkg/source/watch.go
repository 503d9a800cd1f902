package source

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a Watcher waits for writes to settle.
const DefaultDebounce = 100 * time.Millisecond

// Watcher signals when a file changes. It watches the parent directory so
// that editors replacing the file through a rename are noticed.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	onChange chan struct{}
	done     chan struct{}
}

// NewWatcher watches path. A debounce of 0 means [DefaultDebounce].
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	watcher := &Watcher{
		watcher:  w,
		path:     abs,
		debounce: debounce,
		onChange: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	go watcher.loop()
	return watcher, nil
}

// Changes returns a channel that receives a signal after the file changes.
// Bursts of writes collapse into one signal.
func (w *Watcher) Changes() <-chan struct{} {
	return w.onChange
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

func (w *Watcher) loop() {
	var timer *time.Timer
	base := filepath.Base(w.path)
	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case w.onChange <- struct{}{}:
				default:
				}
			})
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// Watch reloads l whenever its file source changes and passes each new
// dataset to fn. It blocks until ctx is done. Sources that are not files
// return immediately with a nil error.
func (l *Loader) Watch(ctx context.Context, debounce time.Duration, fn func(*Dataset)) error {
	f, ok := l.src.(*File)
	if !ok {
		return nil
	}
	w, err := NewWatcher(f.Path, debounce)
	if err != nil {
		return err
	}
	defer w.Close()

	l.logger.Debug("watching for changes", "path", f.Path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.Changes():
			l.logger.Info("source changed, reloading", "path", f.Path)
			ds := l.Load(ctx)
			if fn != nil {
				fn(ds)
			}
		}
	}
}
