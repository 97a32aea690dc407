package shader

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// watcher is the fsnotify implementation of Watcher.
type watcher struct {
	mu *sync.Mutex

	fs       *fsnotify.Watcher
	shaders  map[string][]Shader
	dirs     map[string]bool
	reloaded chan Shader
	done     chan struct{}
	closed   bool
}

// Watcher reloads file-backed shaders when their source changes on disk. Every successful
// reload is published on Reloaded so pipelines built from the shader can be re-specialized.
type Watcher interface {
	// Watch starts watching the source file of s.
	//
	// Parameters:
	//   - s: a shader created with WithSourceFromPath
	//
	// Returns:
	//   - error: an error if s has no path or the directory cannot be watched
	Watch(s Shader) error

	// Reloaded delivers shaders after a successful reload. Reloads are dropped when the
	// channel is full.
	//
	// Returns:
	//   - <-chan Shader: the reload channel
	Reloaded() <-chan Shader

	// Close stops watching and waits for the event loop to exit.
	//
	// Returns:
	//   - error: an error from the underlying watcher
	Close() error
}

var _ Watcher = &watcher{}

// NewWatcher starts a shader watcher.
//
// Returns:
//   - Watcher: the running watcher
//   - error: an error if the platform watcher could not be created
func NewWatcher() (Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("shader: create watcher: %w", err)
	}
	w := &watcher{
		mu:       &sync.Mutex{},
		fs:       fs,
		shaders:  make(map[string][]Shader),
		dirs:     make(map[string]bool),
		reloaded: make(chan Shader, 16),
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *watcher) Watch(s Shader) error {
	if s.Path() == "" {
		return fmt.Errorf("shader: %s has no source file to watch", s.Key())
	}
	path, err := filepath.Abs(s.Path())
	if err != nil {
		return fmt.Errorf("shader: resolve %q: %w", s.Path(), err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	// editors often replace files on save so the directory is watched rather than the file
	dir := filepath.Dir(path)
	if !w.dirs[dir] {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("shader: watch %q: %w", dir, err)
		}
		w.dirs[dir] = true
	}
	w.shaders[path] = append(w.shaders[path], s)
	return nil
}

func (w *watcher) Reloaded() <-chan Shader {
	return w.reloaded
}

func (w *watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	err := w.fs.Close()
	<-w.done
	return err
}

func (w *watcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			w.reload(ev.Name)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("[Shader] watcher error: %v", err)
		}
	}
}

func (w *watcher) reload(name string) {
	path, err := filepath.Abs(name)
	if err != nil {
		return
	}
	w.mu.Lock()
	targets := append([]Shader(nil), w.shaders[path]...)
	w.mu.Unlock()

	for _, s := range targets {
		if err := s.Reload(); err != nil {
			log.Printf("[Shader] reload %s failed: %v", s.Key(), err)
			continue
		}
		log.Printf("[Shader] reloaded %s (generation %d)", s.Key(), s.Generation())
		select {
		case w.reloaded <- s:
		default:
		}
	}
}
