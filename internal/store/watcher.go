package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"
)

// ChangeOp indicates what happened to a key.
type ChangeOp string

const (
	ChangeCreated  ChangeOp = "created"
	ChangeModified ChangeOp = "modified"
	ChangeDeleted  ChangeOp = "deleted"
)

// Change is a key change observed on disk.
type Change struct {
	Key      string   `json:"key"`
	Op       ChangeOp `json:"op"`
	OldValue string   `json:"old_value,omitempty"`
	NewValue string   `json:"new_value,omitempty"`
}

// ChangeSubscriber receives key change notifications.
type ChangeSubscriber interface {
	OnStoreChange(change Change)
}

// debounceDelay coalesces the write+rename pairs produced by FileStore.Set.
const debounceDelay = 50 * time.Millisecond

// Watcher watches a FileStore directory and reports key changes, including
// those made by other processes.
type Watcher struct {
	watcher *fsnotify.Watcher
	dir     string
	logger  hclog.Logger

	mu          sync.RWMutex
	subscribers []ChangeSubscriber
	values      map[string]string
	running     bool
	stopped     bool

	debounceMu sync.Mutex
	debounce   map[string]*time.Timer
	stopCh     chan struct{}
}

// NewWatcher creates a watcher for the store directory dir.
func NewWatcher(dir string, logger hclog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Watcher{
		watcher:  fw,
		dir:      dir,
		logger:   logger.Named("watcher"),
		values:   make(map[string]string),
		debounce: make(map[string]*time.Timer),
		stopCh:   make(chan struct{}),
	}, nil
}

// Subscribe adds a subscriber to receive change notifications.
func (w *Watcher) Subscribe(sub ChangeSubscriber) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.subscribers = append(w.subscribers, sub)
}

// Start begins watching. The directory is created if needed so a fresh
// install can be watched before the first write.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	if w.stopped {
		w.mu.Unlock()
		return fmt.Errorf("watcher cannot be restarted after stop")
	}
	w.running = true
	w.mu.Unlock()

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	// Snapshot current values so the first change can report the old value.
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("failed to read store directory: %w", err)
	}
	w.mu.Lock()
	for _, e := range entries {
		if key, ok := keyFromPath(e.Name()); ok {
			w.values[key] = readValue(filepath.Join(w.dir, e.Name()))
		}
	}
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	go w.run()
	return nil
}

// Stop stops watching. A stopped watcher cannot be restarted.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running || w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.stopped = true
	w.mu.Unlock()

	w.debounceMu.Lock()
	for path, timer := range w.debounce {
		timer.Stop()
		delete(w.debounce, path)
	}
	w.debounceMu.Unlock()

	close(w.stopCh)
	return w.watcher.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)

		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	key, ok := keyFromPath(filepath.Base(event.Name))
	if !ok {
		return
	}

	w.debounceMu.Lock()
	if timer, exists := w.debounce[key]; exists {
		timer.Stop()
	}
	w.debounce[key] = time.AfterFunc(debounceDelay, func() {
		w.emit(key)
		w.debounceMu.Lock()
		delete(w.debounce, key)
		w.debounceMu.Unlock()
	})
	w.debounceMu.Unlock()
}

// emit compares the file with the last seen value rather than trusting the
// event op, since an atomic rename shows up as create, write or rename
// depending on platform.
func (w *Watcher) emit(key string) {
	newValue := readValue(filepath.Join(w.dir, key+FileExt))
	_, statErr := os.Stat(filepath.Join(w.dir, key+FileExt))

	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	oldValue, existed := w.values[key]

	change := Change{Key: key, OldValue: oldValue, NewValue: newValue}
	switch {
	case statErr != nil && existed:
		change.Op = ChangeDeleted
		delete(w.values, key)
	case statErr != nil:
		w.mu.Unlock()
		return
	case !existed:
		change.Op = ChangeCreated
		w.values[key] = newValue
	case oldValue == newValue:
		w.mu.Unlock()
		return
	default:
		change.Op = ChangeModified
		w.values[key] = newValue
	}

	subs := make([]ChangeSubscriber, len(w.subscribers))
	copy(subs, w.subscribers)
	w.mu.Unlock()

	w.logger.Info("storage key changed", "key", key, "op", change.Op,
		"old", change.OldValue, "new", change.NewValue)

	for _, sub := range subs {
		sub.OnStoreChange(change)
	}
}

// keyFromPath maps a file name in the store directory to its key, skipping
// hidden and temporary files.
func keyFromPath(name string) (string, bool) {
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, FileExt) {
		return "", false
	}
	key := strings.TrimSuffix(name, FileExt)
	if validateKey(key) != nil {
		return "", false
	}
	return key, true
}

// readValue returns the file content flattened to a single line for logging.
func readValue(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(string(data)), " ")
}
