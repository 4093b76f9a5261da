package codebase

import (
	"os"
	"path/filepath"
	"time"

	"github.com/dhamidi/luaref/luaref"
	"github.com/fsnotify/fsnotify"
)

// LoadFunc builds a library from a reference snapshot on disk.
type LoadFunc func(path string) (*luaref.Library, error)

// SnapshotWatcher swaps the codebase's library whenever a saved reference
// page changes on disk.
type SnapshotWatcher struct {
	codebase *Codebase
	path     string
	load     LoadFunc
	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	modTime  time.Time
	size     int64
}

// NewSnapshotWatcher watches the directory of path, so snapshots replaced by
// rename are still seen.
func NewSnapshotWatcher(c *Codebase, path string, load LoadFunc) (*SnapshotWatcher, error) {
	path = filepath.Clean(path)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	w := &SnapshotWatcher{
		codebase: c,
		path:     path,
		load:     load,
		watcher:  watcher,
		stopCh:   make(chan struct{}),
	}
	if info, err := os.Stat(path); err == nil {
		w.modTime, w.size = info.ModTime(), info.Size()
	}
	return w, nil
}

func (w *SnapshotWatcher) Start() {
	go w.run()
}

func (w *SnapshotWatcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
}

func (w *SnapshotWatcher) run() {
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) == w.path && event.Has(fsnotify.Write|fsnotify.Create) {
				w.scan()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warningf("watch %s: %s", w.path, err)
		}
	}
}

// scan reloads the snapshot if its modification time or size differ from
// the last successful load. A snapshot that fails to load keeps the previous
// library in service and is retried on the next event.
func (w *SnapshotWatcher) scan() bool {
	info, err := os.Stat(w.path)
	if err != nil || (info.ModTime().Equal(w.modTime) && info.Size() == w.size) {
		return false
	}

	lib, err := w.load(w.path)
	if err != nil {
		log.Warningf("reload %s: %s", w.path, err)
		return false
	}
	w.modTime, w.size = info.ModTime(), info.Size()
	w.codebase.SetLibrary(lib)
	log.Infof("reloaded %s: %d classes", w.path, len(lib.Classes))
	return true
}
