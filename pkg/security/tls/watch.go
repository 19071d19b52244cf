package tls

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce is how long the watcher waits after the last file
// event before re-reading the pair.
const DefaultWatchDebounce = 250 * time.Millisecond

// FileChange describes the certificate and key found on disk after they
// were modified.
type FileChange struct {
	// Path is the file whose event triggered the check.
	Path string

	// RestartPending is true when the files hold a valid pair that differs
	// from the one being served.
	RestartPending bool

	// Err is set when the files on disk no longer form a usable pair.
	Err error
}

// FileWatcher reports modifications of the certificate and key files. The
// running server keeps the identity it loaded at startup; the watcher only
// tells the operator that a restart is needed to serve the new pair.
type FileWatcher struct {
	identity *Identity
	debounce time.Duration
	onChange func(FileChange)
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
	targets  map[string]bool

	mu      sync.Mutex
	timer   *time.Timer
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewFileWatcher creates a watcher for the files id was loaded from.
// onChange may be nil. A zero debounce uses DefaultWatchDebounce.
func NewFileWatcher(id *Identity, debounce time.Duration, logger *slog.Logger, onChange func(FileChange)) (*FileWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		identity: id,
		debounce: debounce,
		onChange: onChange,
		logger:   logger.With("component", "tls.watch"),
		watcher:  watcher,
		targets:  resolveTargets(id.CertFile, id.KeyFile),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// resolveTargets returns the cleaned paths and, when they are symlinks,
// the files they currently point to. Secret mounts that swap a symlinked
// directory only produce events under the resolved path.
func resolveTargets(paths ...string) map[string]bool {
	targets := make(map[string]bool, 2*len(paths))
	for _, p := range paths {
		targets[filepath.Clean(p)] = true
		if resolved, err := filepath.EvalSymlinks(p); err == nil {
			targets[filepath.Clean(resolved)] = true
		}
	}
	return targets
}

// Start watches the directories holding the certificate and key. Watching
// the directory rather than the file keeps working when the files are
// replaced by rename, as certificate tooling usually does.
func (w *FileWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("certificate watcher already running")
	}

	if err := w.watchDirs(w.targets); err != nil {
		return err
	}

	w.running = true
	go w.loop(ctx)

	w.logger.Info("watching certificate files",
		"cert_file", w.identity.CertFile,
		"key_file", w.identity.KeyFile,
	)
	return nil
}

func (w *FileWatcher) loop(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("certificate file event", "path", event.Name, "op", event.Op.String())
			w.trigger(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("certificate watcher error", "error", err)
		}
	}
}

func (w *FileWatcher) watchDirs(targets map[string]bool) error {
	dirs := map[string]bool{}
	for target := range targets {
		dirs[filepath.Dir(target)] = true
	}
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %q: %w", dir, err)
		}
	}
	return nil
}

func (w *FileWatcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.targets[filepath.Clean(event.Name)]
}

// refreshTargets follows symlinks again after a change, so the next swap
// of a symlinked pair is still seen.
func (w *FileWatcher) refreshTargets() {
	targets := resolveTargets(w.identity.CertFile, w.identity.KeyFile)
	if err := w.watchDirs(targets); err != nil {
		w.logger.Debug("failed to watch resolved certificate paths", "error", err)
	}

	w.mu.Lock()
	w.targets = targets
	w.mu.Unlock()
}

// trigger schedules a check once events for path have been quiet for the
// debounce interval.
func (w *FileWatcher) trigger(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.stopCh:
			return
		default:
		}
		w.refreshTargets()
		w.Check(path)
	})
}

// Check re-reads the pair from disk, logs the outcome and reports it to
// the change callback.
func (w *FileWatcher) Check(path string) FileChange {
	change := FileChange{Path: path}

	current, err := LoadIdentity(w.identity.CertFile, w.identity.KeyFile)
	switch {
	case err != nil:
		change.Err = err
		w.logger.Warn("certificate files on disk are not usable; the running server keeps its loaded certificate",
			"path", path,
			"error", err,
		)
	case !bytes.Equal(current.Leaf.Raw, w.identity.Leaf.Raw):
		change.RestartPending = true
		w.logger.Warn("certificate changed on disk; restart harbor to serve it",
			"path", path,
			"subject", current.Leaf.Subject.CommonName,
			"expires_at", current.Leaf.NotAfter.Format(time.RFC3339),
		)
	default:
		w.logger.Debug("certificate files unchanged", "path", path)
	}

	if w.onChange != nil {
		w.onChange(change)
	}
	return change
}

// Stop stops the watcher and cancels any pending check. It is safe to
// call more than once.
func (w *FileWatcher) Stop() error {
	w.mu.Lock()
	running := w.running
	w.running = false
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}
	w.mu.Unlock()

	if running {
		<-w.doneCh
	}
	return w.watcher.Close()
}
