// watch_test.go -- tests for the debounced watcher

package agentfs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// a generous multiple of the configured debounce; these tests assert
// eventual convergence, not latency
const _Settle = 5 * time.Second

func openWatched(t *testing.T) (*FS, string) {
	assert := newAsserter(t)

	root := t.TempDir()
	mkProjectTree(t, root)

	afs, err := New(root, &Options{AutoWatch: true, Debounce: 50 * time.Millisecond})
	assert(err == nil, "new: %s", err)
	assert(afs.WaitReady(5*time.Second), "index never became ready")
	assert(afs.IsWatching(), "watcher not running")

	t.Cleanup(func() {
		afs.Close()
	})
	return afs, root
}

func hasPath(afs *FS, nm string) bool {
	got, err := afs.List("**/*", false)
	if err != nil {
		return false
	}
	for _, p := range got {
		if p == nm {
			return true
		}
	}
	return false
}

func TestWatchCreate(t *testing.T) {
	assert := newAsserter(t)
	afs, root := openWatched(t)

	err := os.WriteFile(filepath.Join(root, "late.txt"), []byte("surprise\n"), 0600)
	assert(err == nil, "write late.txt: %s", err)

	assert(waitFor(_Settle, func() bool { return hasPath(afs, "late.txt") }),
		"created file never reached the index")
}

func TestWatchRemove(t *testing.T) {
	assert := newAsserter(t)
	afs, root := openWatched(t)

	assert(hasPath(afs, "go.txt"), "fixture missing from index")

	err := os.Remove(filepath.Join(root, "go.txt"))
	assert(err == nil, "remove go.txt: %s", err)

	assert(waitFor(_Settle, func() bool { return !hasPath(afs, "go.txt") }),
		"removed file never left the index")
}

func TestWatchModify(t *testing.T) {
	assert := newAsserter(t)
	afs, root := openWatched(t)

	err := os.WriteFile(filepath.Join(root, "go.txt"), []byte("much longer contents now\n"), 0600)
	assert(err == nil, "rewrite go.txt: %s", err)

	assert(waitFor(_Settle, func() bool {
		e, ok := afs.idx.get("go.txt")
		return ok && e.Siz == int64(len("much longer contents now\n"))
	}), "size change never reached the index")
}

func TestWatchNewSubtree(t *testing.T) {
	assert := newAsserter(t)
	afs, root := openWatched(t)

	// a directory appearing with contents must be picked up wholesale,
	// and events from inside it must flow thereafter
	sub := filepath.Join(root, "pkg", "deep")
	err := os.MkdirAll(sub, 0700)
	assert(err == nil, "mkdir: %s", err)
	err = os.WriteFile(filepath.Join(sub, "inner.txt"), []byte("in\n"), 0600)
	assert(err == nil, "write inner: %s", err)

	assert(waitFor(_Settle, func() bool { return hasPath(afs, "pkg/deep/inner.txt") }),
		"nested file never reached the index")

	err = os.WriteFile(filepath.Join(sub, "second.txt"), []byte("two\n"), 0600)
	assert(err == nil, "write second: %s", err)
	assert(waitFor(_Settle, func() bool { return hasPath(afs, "pkg/deep/second.txt") }),
		"new dir is not being watched")
}

func TestWatchRemoveTree(t *testing.T) {
	assert := newAsserter(t)
	afs, root := openWatched(t)

	assert(hasPath(afs, "src/main.txt"), "fixture missing from index")

	err := os.RemoveAll(filepath.Join(root, "src"))
	assert(err == nil, "removeall src: %s", err)

	assert(waitFor(_Settle, func() bool {
		return !hasPath(afs, "src") && !hasPath(afs, "src/main.txt") && !hasPath(afs, "src/util.txt")
	}), "removed subtree still in the index")
}

func TestWatchSeesOwnWrites(t *testing.T) {
	assert := newAsserter(t)
	afs, _ := openWatched(t)

	// writes through the FS reach the index via the watcher, not
	// synchronously
	err := afs.WriteFile("made.txt", "by us\n")
	assert(err == nil, "write: %s", err)

	assert(waitFor(_Settle, func() bool { return hasPath(afs, "made.txt") }),
		"own write never reached the index")
}

func TestWatchStopsOnClose(t *testing.T) {
	assert := newAsserter(t)
	afs, _ := openWatched(t)

	err := afs.Close()
	assert(err == nil, "close: %s", err)
	assert(!afs.IsWatching(), "still watching after close")
}
