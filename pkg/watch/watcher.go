// Package watch monitors dataset CSV files on disk and triggers a re-match
// callback when any of them changes, so match outputs can be kept current
// as new SCDB releases or collection runs land in the data directory.
package watch

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/fsnotify.v1"
)

// DefaultDebounce is the quiet period after the last write event before the
// change callback fires. Editors and downloads produce bursts of writes.
const DefaultDebounce = 500 * time.Millisecond

// DatasetWatcher watches a directory for changes to CSV dataset files.
type DatasetWatcher struct {
	dir      string
	debounce time.Duration
	onChange func(path string)

	watcher  *fsnotify.Watcher
	stopChan chan struct{}

	pendingMu sync.Mutex
	pending   map[string]*time.Timer
}

// NewDatasetWatcher creates a watcher over dir. onChange is invoked with
// the changed file's path after the debounce window closes; it may be
// called from the watcher goroutine.
func NewDatasetWatcher(dir string, debounce time.Duration, onChange func(path string)) *DatasetWatcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &DatasetWatcher{
		dir:      dir,
		debounce: debounce,
		onChange: onChange,
		pending:  make(map[string]*time.Timer),
	}
}

// Start begins watching. It returns once the watcher is installed; events
// are handled on a background goroutine until Stop is called.
func (datasetWatcher *DatasetWatcher) Start() error {
	if datasetWatcher.dir == "" {
		return fmt.Errorf("no directory configured for watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	datasetWatcher.watcher = watcher
	datasetWatcher.stopChan = make(chan struct{})

	go datasetWatcher.watchLoop()

	if err := watcher.Add(datasetWatcher.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching directory %s: %w", datasetWatcher.dir, err)
	}

	return nil
}

// Stop ends watching and releases the underlying watcher.
func (datasetWatcher *DatasetWatcher) Stop() {
	if datasetWatcher.stopChan != nil {
		close(datasetWatcher.stopChan)
		datasetWatcher.stopChan = nil
	}
	if datasetWatcher.watcher != nil {
		datasetWatcher.watcher.Close()
		datasetWatcher.watcher = nil
	}
}

// watchLoop handles file system events until stopped.
func (datasetWatcher *DatasetWatcher) watchLoop() {
	for {
		select {
		case <-datasetWatcher.stopChan:
			return

		case event, ok := <-datasetWatcher.watcher.Events:
			if !ok {
				return
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".csv") {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				datasetWatcher.scheduleChange(event.Name)
			}

		case _, ok := <-datasetWatcher.watcher.Errors:
			if !ok {
				return
			}
			// Watcher errors are transient; keep watching.
		}
	}
}

// scheduleChange (re)starts the debounce timer for a changed file.
func (datasetWatcher *DatasetWatcher) scheduleChange(path string) {
	datasetWatcher.pendingMu.Lock()
	defer datasetWatcher.pendingMu.Unlock()

	if timer, exists := datasetWatcher.pending[path]; exists {
		timer.Stop()
	}
	datasetWatcher.pending[path] = time.AfterFunc(datasetWatcher.debounce, func() {
		datasetWatcher.pendingMu.Lock()
		delete(datasetWatcher.pending, path)
		datasetWatcher.pendingMu.Unlock()

		if datasetWatcher.onChange != nil {
			datasetWatcher.onChange(path)
		}
	})
}
