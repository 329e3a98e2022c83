// agentfs.go - live-indexed filesystem operations rooted at one dir
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

// Package agentfs amortizes directory traversal for workloads that
// repeatedly list, glob, grep and batch-read one project tree. A
// concurrent scan builds an in-memory catalog of every non-ignored
// path under the root; a debounced filesystem watcher keeps the
// catalog coherent thereafter. Queries (List, Glob, Grep, ReadBatch)
// fan out over the catalog instead of walking the disk.
//
// Paths in the public API are forward-slash and relative to the
// root; absolute paths inside the root are accepted and normalized.
// The index is ephemeral - nothing persists across process restarts.
package agentfs

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	logger "github.com/opencoff/go-logger"
)

// Options control the behavior of a FS instance. The zero value
// means: no watcher, hardware concurrency, 200ms debounce, no extra
// excludes, no logging.
type Options struct {
	// AutoWatch starts the filesystem watcher at construction so
	// external changes reach the index without explicit Refresh()
	// calls.
	AutoWatch bool

	// Number of go-routines used by the scanner, the batch reader
	// and the grep engine; if not set (ie 0), the max available
	// cpus are used.
	Concurrency int

	// Debounce is the interval at which the watcher applies the
	// events accumulated since the last flush (default 200ms). It is
	// a fixed tick; events are not held until a path goes quiet.
	Debounce time.Duration

	// Excludes is a list of shell-glob patterns to exclude from the
	// index, matched against the basename - in addition to the
	// always-excluded VCS dirs and .gitignore rules.
	Excludes []string

	// Log receives scanner and watcher diagnostics; nil means
	// silent. Those errors never reach callers.
	Log logger.Logger
}

// FS is a handle on one indexed root. All methods are safe for
// concurrent use. There is no cross-operation snapshot isolation: a
// List followed by a ReadBatch may observe different populations.
type FS struct {
	root string // absolute, cleaned
	opt  Options

	idx    *pathIndex
	ignore *ignoreSet
	w      *watcher // nil when not watching
	log    logger.Logger

	closed atomic.Bool
}

const _DefaultDebounce = 200 * time.Millisecond

// New creates a FS rooted at 'root', which must be an existing
// directory, and starts the initial scan in the background. A nil
// 'opt' watches by default; use WaitReady() to block until the scan
// completes.
func New(root string, opt *Options) (*FS, error) {
	if opt == nil {
		opt = &Options{AutoWatch: true}
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", root, ErrInvalidRoot)
	}

	st, err := os.Stat(abs)
	if err != nil || !st.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, ErrInvalidRoot)
	}

	afs := &FS{
		root:   abs,
		opt:    *opt,
		idx:    newPathIndex(),
		ignore: newIgnoreSet(opt.Excludes),
		log:    opt.Log,
	}

	if afs.opt.Concurrency <= 0 {
		afs.opt.Concurrency = runtime.NumCPU()
	}
	if afs.opt.Debounce <= 0 {
		afs.opt.Debounce = _DefaultDebounce
	}

	if afs.opt.AutoWatch {
		w, err := newWatcher(afs, afs.opt.Debounce)
		if err != nil {
			afs.logf("watch: %s; continuing without watcher", err)
		} else {
			afs.w = w
		}
	}

	go func() {
		afs.scanInto(afs.idx.m.Load())
		afs.idx.gen.Add(1)
		afs.idx.markReady()
	}()

	return afs, nil
}

// WaitReady blocks until the initial scan completes or 'timeout'
// elapses; returns true iff the index is ready.
func (afs *FS) WaitReady(timeout time.Duration) bool {
	select {
	case <-afs.idx.readyCh:
		return true
	case <-time.After(timeout):
		return afs.idx.isReady()
	}
}

// IsReady returns true once the initial scan has completed.
func (afs *FS) IsReady() bool {
	return afs.idx.isReady()
}

// IsWatching returns true while the watcher goroutine is alive.
func (afs *FS) IsWatching() bool {
	return afs.w != nil && afs.w.isAlive() && !afs.closed.Load()
}

// Generation returns the index mutation counter; it bumps on every
// applied change and can be used to detect staleness across calls.
func (afs *FS) Generation() uint64 {
	return afs.idx.generation()
}

// Refresh rescans the whole tree and swaps the new catalog in as one
// step. Useful after bulk external changes when the watcher is off
// (or behind). Refresh is idempotent: rescanning an unchanged tree
// yields the same catalog.
func (afs *FS) Refresh() error {
	if afs.closed.Load() {
		return ErrClosed
	}

	m := newEntryMap()
	afs.scanInto(m)
	afs.idx.swap(m)
	afs.idx.markReady()
	return nil
}

// Close stops the watcher, applies pending events best-effort and
// marks the handle inert; every later operation fails with
// ErrClosed. Close is not idempotent - the second call gets
// ErrClosed too.
func (afs *FS) Close() error {
	if afs.closed.Swap(true) {
		return ErrClosed
	}

	if afs.w != nil {
		afs.w.stop()
	}
	return nil
}

// Root returns the absolute root this FS operates on.
func (afs *FS) Root() string {
	return afs.root
}

// resolve validates 'nm' and returns its absolute OS-native path and
// its canonical relative form. Relative names resolve against the
// root; absolute names must lie inside it.
func (afs *FS) resolve(nm string) (abs string, rel string, err error) {
	if afs.closed.Load() {
		return "", "", ErrClosed
	}

	p := filepath.FromSlash(nm)
	if filepath.IsAbs(p) {
		p = filepath.Clean(p)
	} else {
		p = filepath.Join(afs.root, p)
	}

	rel, err = afs.relOf(p)
	if err != nil {
		return "", "", err
	}
	return p, rel, nil
}

// relOf maps an absolute path to its forward-slash form relative to
// the root ("" for the root itself).
func (afs *FS) relOf(abs string) (string, error) {
	r, err := filepath.Rel(afs.root, abs)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", abs, ErrOutsideRoot)
	}
	if r == "." {
		return "", nil
	}
	return filepath.ToSlash(r), nil
}

func (afs *FS) logf(format string, args ...any) {
	if afs.log != nil {
		afs.log.Warn(format, args...)
	}
}
