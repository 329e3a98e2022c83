// scan.go - concurrent scan of the root tree
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
	"os"
	"path/filepath"
	"sync"
)

// High level design:
//
// * multiple workers; each worker is responsible for processing a single
//   directory and its contents. Files and dirs go straight into the
//   target EntryMap; subdirs are queued back on the work channel.
// * each directory queued bumps up a WaitGroup count (scanState::dirWg);
//   the scan is complete when that count drains to zero.
// * per-entry stat errors are logged and skipped; they never fail
//   the scan.

type scanDir struct {
	rel string // "" for the root itself
	abs string
}

// internal state for one scan
type scanState struct {
	afs *FS
	dst *EntryMap

	ch    chan scanDir
	dirWg sync.WaitGroup
	wg    sync.WaitGroup
}

// scanInto walks the whole root and fills 'dst'. Runs once at
// construction and once per Refresh().
func (afs *FS) scanInto(dst *EntryMap) {
	afs.ignore.loadDir("", afs.root)
	afs.scanFrom(dst, scanDir{rel: "", abs: afs.root})
}

// scanFrom walks the subtree at 'start' and fills 'dst'. Also used by
// the watcher when a directory moves in wholesale.
func (afs *FS) scanFrom(dst *EntryMap, start scanDir) {
	nw := afs.opt.Concurrency
	d := &scanState{
		afs: afs,
		dst: dst,
		ch:  make(chan scanDir, nw),
	}

	d.wg.Add(nw)
	for i := 0; i < nw; i++ {
		go d.worker()
	}

	d.enq([]scanDir{start})
	d.dirWg.Wait()
	close(d.ch)
	d.wg.Wait()
}

func (d *scanState) worker() {
	for dir := range d.ch {
		d.scanDir(dir)

		// It is crucial that we do this as the last thing in the
		// processing loop; scanDir() must queue the subdirs it found
		// before this count can drop.
		d.dirWg.Done()
	}
	d.wg.Done()
}

// enqueue dirs in a separate go-routine so a worker queueing its own
// subdirs can't deadlock on a full channel
func (d *scanState) enq(dirs []scanDir) {
	if len(dirs) > 0 {
		d.dirWg.Add(len(dirs))
		go func(dirs []scanDir) {
			for _, s := range dirs {
				d.ch <- s
			}
		}(dirs)
	}
}

// process one directory: insert an entry per child, queue subdirs
func (d *scanState) scanDir(dir scanDir) {
	afs := d.afs

	ents, err := os.ReadDir(dir.abs)
	if err != nil {
		afs.logf("scan: readdir %s: %s", dir.abs, err)
		return
	}

	// pick up this dir's .gitignore before judging its children
	afs.ignore.loadDir(dir.rel, dir.abs)

	subdirs := make([]scanDir, 0, len(ents)/2)
	for _, de := range ents {
		rel := de.Name()
		if dir.rel != "" {
			rel = dir.rel + "/" + de.Name()
		}
		abs := filepath.Join(dir.abs, de.Name())

		if afs.ignore.match(rel) {
			continue
		}

		fi, err := de.Info()
		if err != nil {
			afs.logf("scan: stat %s: %s", abs, err)
			continue
		}

		switch {
		case fi.IsDir():
			d.dst.Store(rel, newEntry(rel, abs, fi))
			subdirs = append(subdirs, scanDir{rel: rel, abs: abs})

		case fi.Mode().IsRegular():
			d.dst.Store(rel, newEntry(rel, abs, fi))

		default:
			// symlinks and special files are not indexed
		}
	}

	d.enq(subdirs)
}

// EOF
