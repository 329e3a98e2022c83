// index.go -- concurrent map of relative path to Entry
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
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// EntryMap is a concurrency safe map of relative path name and the
// corresponding index record.
type EntryMap = xsync.MapOf[string, *Entry]

func newEntryMap() *EntryMap {
	return xsync.NewMapOf[string, *Entry]()
}

// pathIndex is the in-memory catalog of every non-ignored path under
// the root. Readers go straight to the concurrent map; the sorted
// enumeration is derived on demand and cached per generation. Writers
// are only the scanner and the watcher goroutine.
type pathIndex struct {
	m   atomic.Pointer[EntryMap]
	gen atomic.Uint64

	ready   atomic.Bool
	readyCh chan struct{}

	// cached lexicographic enumeration; valid while sortedGen
	// matches the live generation
	mu        sync.Mutex
	sorted    []*Entry
	sortedGen uint64
}

func newPathIndex() *pathIndex {
	ix := &pathIndex{
		readyCh: make(chan struct{}),
	}
	ix.m.Store(newEntryMap())
	return ix
}

func (ix *pathIndex) get(rel string) (*Entry, bool) {
	return ix.m.Load().Load(rel)
}

func (ix *pathIndex) upsert(e *Entry) {
	ix.m.Load().Store(e.Rel, e)
	ix.gen.Add(1)
}

func (ix *pathIndex) remove(rel string) {
	if _, ok := ix.m.Load().LoadAndDelete(rel); ok {
		ix.gen.Add(1)
	}
}

// removeTree removes 'rel' and every entry beneath it. Used when a
// directory vanishes; the OS only reports the topmost removal.
func (ix *pathIndex) removeTree(rel string) {
	m := ix.m.Load()
	pfx := rel + "/"

	var gone bool
	m.Range(func(k string, _ *Entry) bool {
		if k == rel || strings.HasPrefix(k, pfx) {
			if _, ok := m.LoadAndDelete(k); ok {
				gone = true
			}
		}
		return true
	})
	if gone {
		ix.gen.Add(1)
	}
}

// swap publishes a freshly scanned map in one step; readers that are
// mid-enumeration keep the old map.
func (ix *pathIndex) swap(m *EntryMap) {
	ix.m.Store(m)
	ix.gen.Add(1)
}

func (ix *pathIndex) markReady() {
	if ix.ready.CompareAndSwap(false, true) {
		close(ix.readyCh)
	}
}

func (ix *pathIndex) isReady() bool {
	return ix.ready.Load()
}

func (ix *pathIndex) generation() uint64 {
	return ix.gen.Load()
}

func (ix *pathIndex) size() int {
	return ix.m.Load().Size()
}

// entries returns every index record in lexicographic order of the
// relative path. The returned slice is shared; callers must not
// mutate it.
func (ix *pathIndex) entries() []*Entry {
	gen := ix.gen.Load()

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.sorted != nil && ix.sortedGen == gen {
		return ix.sorted
	}

	m := ix.m.Load()
	all := make([]*Entry, 0, m.Size())
	m.Range(func(_ string, e *Entry) bool {
		all = append(all, e)
		return true
	})
	sort.Slice(all, func(i, j int) bool {
		return all[i].Rel < all[j].Rel
	})

	ix.sorted = all
	ix.sortedGen = gen
	return all
}
