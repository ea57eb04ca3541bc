package content

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 200 * time.Millisecond

// Watcher reloads a CatalogRepository whenever its file changes. The parent
// directory is watched so editors that save by rename are still seen.
type Watcher struct {
	repo    *CatalogRepository
	file    string
	watcher *fsnotify.Watcher
	done    chan struct{}

	// Reloaded receives the outcome of every reload attempt; nil means success.
	Reloaded <-chan error
	reloaded chan error
}

// NewWatcher prepares a watcher for the repository's external file.
func NewWatcher(repo *CatalogRepository) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ch := make(chan error, 4)
	return &Watcher{
		repo:     repo,
		file:     filepath.Clean(repo.Path()),
		watcher:  fw,
		done:     make(chan struct{}),
		Reloaded: ch,
		reloaded: ch,
	}, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.file)); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done
}

func (w *Watcher) loop() {
	defer close(w.done)
	defer close(w.reloaded)

	var pending time.Time
	ticker := time.NewTicker(watchDebounce / 2)
	defer ticker.Stop()

	logger := w.repo.logger.Content()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.file {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending = time.Now()
			}

		case <-ticker.C:
			if pending.IsZero() || time.Since(pending) < watchDebounce {
				continue
			}
			pending = time.Time{}
			err := w.repo.Reload()
			if err != nil {
				logger.Warn("Catalog change ignored, keeping previous version", "path", w.file, "error", err.Error())
			} else {
				logger.Info("Catalog reloaded from disk", "path", w.file)
			}
			select {
			case w.reloaded <- err:
			default:
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Catalog watch error", "error", err.Error())
		}
	}
}
