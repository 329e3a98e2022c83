// watch.go - debounced filesystem watcher that keeps the index live
//
// (c) 2024- Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package agentfs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// High level design:
//
// * one goroutine owns all debounce state. OS events are folded into
//   a pending map keyed by path; a ticker at the debounce interval
//   flushes the accumulated batch.
// * applying an event re-stats the path instead of trusting what the
//   OS claimed happened: exists -> upsert, gone -> remove. The op is
//   consulted only to spot a newly created directory, which is then
//   subscribed and scanned. That makes
//   application idempotent and immune to event reordering within a
//   window, while a modify-then-delete still ends as a delete.
// * watcher errors never reach callers; they are logged and the
//   worker keeps going. IsWatching() reflects whether the worker
//   is alive.

type watcher struct {
	afs *FS
	fsw *fsnotify.Watcher

	debounce time.Duration

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op // abs path -> OR of observed ops

	stopCh chan struct{}
	doneCh chan struct{}
	alive  atomic.Bool
}

func newWatcher(afs *FS, debounce time.Duration) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &watcher{
		afs:      afs,
		fsw:      fsw,
		debounce: debounce,
		pending:  make(map[string]fsnotify.Op, 8),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	if err := w.watchTree(afs.root); err != nil {
		fsw.Close()
		return nil, err
	}

	w.alive.Store(true)
	go w.loop()
	return w, nil
}

// stop ends the worker, applies whatever is still pending and
// releases the OS handles.
func (w *watcher) stop() {
	close(w.stopCh)
	<-w.doneCh
	w.fsw.Close()
}

func (w *watcher) isAlive() bool {
	return w.alive.Load()
}

// watchTree subscribes 'dir' and every non-ignored subdir beneath it.
func (w *watcher) watchTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, de fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !de.IsDir() {
			return nil
		}

		if rel, rerr := w.afs.relOf(p); rerr == nil && rel != "" {
			if w.afs.ignore.match(rel) {
				return filepath.SkipDir
			}
		}

		if werr := w.fsw.Add(p); werr != nil {
			w.afs.logf("watch: add %s: %s", p, werr)
		}
		return nil
	})
}

func (w *watcher) loop() {
	defer func() {
		w.alive.Store(false)
		close(w.doneCh)
	}()

	tick := time.NewTicker(w.debounce)
	defer tick.Stop()

	for {
		select {
		case <-w.stopCh:
			// drain best-effort on the way out
			w.flush()
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.pendingMu.Lock()
			w.pending[ev.Name] |= ev.Op
			w.pendingMu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.afs.logf("watch: %s", err)
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				// events were lost; resubscribe and rescan the whole
				// tree so the index catches up with what we missed
				if werr := w.watchTree(w.afs.root); werr != nil {
					w.afs.logf("watch: %s", werr)
				}
				w.afs.Refresh()
			}

		case <-tick.C:
			w.flush()
		}
	}
}

// flush applies the batch accumulated over the last debounce window.
// Events that arrive while we apply land in a fresh pending map and
// are picked up on the next tick.
func (w *watcher) flush() {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	batch := w.pending
	w.pending = make(map[string]fsnotify.Op, 8)
	w.pendingMu.Unlock()

	for nm, op := range batch {
		w.apply(nm, op)
	}
}

// apply reconciles the index with the current state of one path.
func (w *watcher) apply(nm string, op fsnotify.Op) {
	afs := w.afs

	rel, err := afs.relOf(nm)
	if err != nil || rel == "" {
		return
	}
	if afs.ignore.match(rel) {
		return
	}

	fi, serr := os.Lstat(nm)
	switch {
	case serr != nil:
		// gone; a vanished dir takes its subtree with it
		afs.idx.removeTree(rel)

	case fi.IsDir():
		afs.idx.upsert(newEntry(rel, nm, fi))
		if op&fsnotify.Create != 0 {
			// a directory moved in wholesale: subscribe it and
			// pick up contents we never saw events for
			if err := w.watchTree(nm); err != nil {
				afs.logf("watch: %s: %s", nm, err)
			}
			afs.scanFrom(afs.idx.m.Load(), scanDir{rel: rel, abs: nm})
			afs.idx.gen.Add(1)
		}

	case fi.Mode().IsRegular():
		// a fresh entry also resets the cached binary verdict
		afs.idx.upsert(newEntry(rel, nm, fi))

	default:
		afs.idx.remove(rel)
	}
}

// EOF
