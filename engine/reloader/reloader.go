// Package reloader watches pmfx source folders for changes and exposes a
// small reload state machine the render loop polls at frame boundaries.
// Change detection runs two ways: fsnotify events for prompt notification,
// and a periodic modification-time poll as a fallback for editors and
// filesystems that do not emit events.
package reloader

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/fsnotify/fsnotify"
)

// ReloadState is the coordinator-visible state of the watcher.
type ReloadState int

const (
	// StateUnchanged means no change has been observed since the last
	// completed reload.
	StateUnchanged ReloadState = iota
	// StateAvailable means changed files are waiting for a reload.
	StateAvailable
	// StateReloading means a reload is in progress.
	StateReloading
)

// Reloader watches registered paths and reports when a reload is due.
type Reloader interface {
	// Watch registers a file or directory for change detection. Directories
	// are watched recursively by fsnotify and flat by the mtime poll.
	//
	// Parameters:
	//   - path: the file or directory to watch
	//
	// Returns:
	//   - error: a watcher registration error
	Watch(path string) error

	// Start launches the watch goroutines. Safe to call once.
	//
	// Returns:
	//   - error: an error creating the native watcher
	Start() error

	// Stop terminates the watch goroutines and waits for them to exit.
	Stop()

	// State returns the current reload state.
	//
	// Returns:
	//   - ReloadState: the state
	State() ReloadState

	// Begin transitions an available reload to in-progress.
	//
	// Returns:
	//   - bool: false when no reload was available
	Begin() bool

	// Complete marks the in-progress reload finished.
	Complete()
}

type reloaderImpl struct {
	mu *sync.Mutex

	state   ReloadState
	watcher *fsnotify.Watcher

	// path → last observed mtime, for the polling fallback
	watched map[string]time.Time

	pollInterval time.Duration
	pool         worker.DynamicWorkerPool
	poolWorkers  int

	quit     chan struct{}
	stopOnce *sync.Once
	wg       *sync.WaitGroup
}

var _ Reloader = &reloaderImpl{}

// NewReloader creates a stopped reloader.
//
// Parameters:
//   - optionBuilders: optional configuration, see ReloaderBuilderOption
//
// Returns:
//   - Reloader: the reloader; call Start to begin watching
func NewReloader(optionBuilders ...ReloaderBuilderOption) Reloader {
	options := defaultReloaderBuilderOptions()
	for _, ob := range optionBuilders {
		ob(options)
	}
	return &reloaderImpl{
		mu:           &sync.Mutex{},
		watched:      map[string]time.Time{},
		pollInterval: options.pollInterval,
		poolWorkers:  options.pollWorkers,
		quit:         make(chan struct{}),
		stopOnce:     &sync.Once{},
		wg:           &sync.WaitGroup{},
	}
}

func (r *reloaderImpl) Watch(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		entries, dirErr := os.ReadDir(path)
		if dirErr != nil {
			return dirErr
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			entryInfo, infoErr := entry.Info()
			if infoErr != nil {
				continue
			}
			r.watched[filepath.Join(path, entry.Name())] = entryInfo.ModTime()
		}
	} else {
		r.watched[path] = info.ModTime()
	}

	if r.watcher != nil {
		return r.watcher.Add(path)
	}
	return nil
}

func (r *reloaderImpl) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.watcher != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	r.watcher = watcher

	// Re-register paths added before Start.
	dirs := map[string]struct{}{}
	for path := range r.watched {
		dirs[filepath.Dir(path)] = struct{}{}
	}
	for dir := range dirs {
		if addErr := watcher.Add(dir); addErr != nil {
			log.Printf("[reloader] failed to watch %s: %v", dir, addErr)
		}
	}

	r.pool = worker.NewDynamicWorkerPool(r.poolWorkers, 256, 1*time.Second)

	r.wg.Add(2)
	go r.watchEvents()
	go r.pollLoop()
	return nil
}

func (r *reloaderImpl) Stop() {
	r.stopOnce.Do(func() {
		close(r.quit)
		r.wg.Wait()
		r.mu.Lock()
		if r.watcher != nil {
			r.watcher.Close()
			r.watcher = nil
		}
		r.mu.Unlock()
	})
}

func (r *reloaderImpl) State() ReloadState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *reloaderImpl) Begin() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateAvailable {
		return false
	}
	r.state = StateReloading
	return true
}

func (r *reloaderImpl) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateUnchanged
}

// markAvailable flags a pending reload unless one is already in progress.
func (r *reloaderImpl) markAvailable() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateUnchanged {
		r.state = StateAvailable
	}
}

func (r *reloaderImpl) watchEvents() {
	defer r.wg.Done()
	for {
		select {
		case <-r.quit:
			return
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				r.markAvailable()
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[reloader] watch error: %v", err)
		}
	}
}

// pollLoop stats watched files on a ticker, fanning the stats out over the
// worker pool, and flags a reload when any mtime advanced.
func (r *reloaderImpl) pollLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	taskID := 0
	for {
		select {
		case <-r.quit:
			return
		case <-ticker.C:
			r.mu.Lock()
			paths := make([]string, 0, len(r.watched))
			for path := range r.watched {
				paths = append(paths, path)
			}
			r.mu.Unlock()

			var wg sync.WaitGroup
			for _, path := range paths {
				wg.Add(1)
				p := path
				id := taskID
				taskID++
				r.pool.SubmitTask(worker.Task{
					ID: id,
					Do: func() (any, error) {
						defer wg.Done()
						info, err := os.Stat(p)
						if err != nil {
							return nil, nil
						}
						r.mu.Lock()
						last := r.watched[p]
						if info.ModTime().After(last) {
							r.watched[p] = info.ModTime()
							r.mu.Unlock()
							r.markAvailable()
							return nil, nil
						}
						r.mu.Unlock()
						return nil, nil
					},
				})
			}
			wg.Wait()
		}
	}
}
