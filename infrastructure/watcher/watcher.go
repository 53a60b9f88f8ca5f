package watcher

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"video-translator/domain/media"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultSettle is how long a file must stay unchanged before it is handled
const DefaultSettle = 2 * time.Second

// EventHandler is called once per settled video file
type EventHandler func(ctx context.Context, filePath string) error

// Watcher hands newly dropped video files in a directory to a handler, one at a time
type Watcher struct {
	inputDir string
	handler  EventHandler
	log      logrus.FieldLogger
	settle   time.Duration
	fsw      *fsnotify.Watcher
	now      func() time.Time
}

// Option customizes the watcher
type Option func(*Watcher)

// WithSettle overrides the quiet period before a file is handled
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(log logrus.FieldLogger) Option {
	return func(w *Watcher) {
		if log != nil {
			w.log = log
		}
	}
}

// New creates a watcher on inputDir
func New(inputDir string, handler EventHandler, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(inputDir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("%w: watch %s: %v", media.ErrInputDir, inputDir, err)
	}

	w := &Watcher{
		inputDir: inputDir,
		handler:  handler,
		log:      logrus.StandardLogger(),
		settle:   DefaultSettle,
		fsw:      fsw,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start blocks until ctx is cancelled. A file is handled once no create or
// write event has been seen for it during the settle period; handling is
// serialized so runs never overlap.
func (w *Watcher) Start(ctx context.Context) error {
	queue := make(chan string, 64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for path := range queue {
			if ctx.Err() != nil {
				continue
			}
			if err := w.handler(ctx, path); err != nil {
				w.log.WithError(err).WithField("file", path).Error("Failed to process file")
			}
		}
	}()
	defer func() {
		close(queue)
		wg.Wait()
	}()

	tick := time.NewTicker(w.settle / 4)
	defer tick.Stop()

	pending := make(map[string]time.Time)
	w.log.WithField("dir", w.inputDir).Info("Watching for new videos")

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Watcher stopping")
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !media.IsSupported(event.Name) {
				w.log.WithField("file", event.Name).Debug("Ignoring non-video file")
				continue
			}
			if _, seen := pending[event.Name]; !seen {
				w.log.WithField("file", event.Name).Info("New video detected")
			}
			pending[event.Name] = w.now()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.log.WithError(err).Warn("Watcher error")

		case <-tick.C:
			now := w.now()
			for path, last := range pending {
				if now.Sub(last) < w.settle {
					continue
				}
				if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
					delete(pending, path)
					continue
				}
				select {
				case queue <- path:
					delete(pending, path)
				default:
					// queue full, retry on the next tick
				}
			}
		}
	}
}

// Stop closes the underlying file watcher
func (w *Watcher) Stop() error {
	return w.fsw.Close()
}
