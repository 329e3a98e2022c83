// utils_test.go -- test harness utilities
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
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func newAsserter(t *testing.T) func(cond bool, msg string, args ...interface{}) {
	return func(cond bool, msg string, args ...interface{}) {
		if cond {
			return
		}

		_, file, line, ok := runtime.Caller(1)
		if !ok {
			file = "???"
			line = 0
		}

		s := fmt.Sprintf(msg, args...)
		t.Fatalf("\n%s: %d: Assertion failed: %s\n", file, line, s)
	}
}

// mkProjectTree populates 'root' with a small source tree:
//
//	go.txt
//	src/main.txt
//	src/util.txt
//	docs/notes.txt
func mkProjectTree(t *testing.T, root string) {
	assert := newAsserter(t)

	files := map[string]string{
		"go.txt":         "module scratch\n",
		"src/main.txt":   "func main() {\n\tprintln(\"Hello, World!\")\n}\n",
		"src/util.txt":   "func helper() int {\n\treturn 42\n}\n\nfunc hello() string {\n\treturn \"hello\"\n}\n",
		"docs/notes.txt": "# Notes\n\nThis is a test.\n",
	}

	for nm, body := range files {
		p := filepath.Join(root, filepath.FromSlash(nm))
		err := os.MkdirAll(filepath.Dir(p), 0700)
		assert(err == nil, "mkdir %s: %s", p, err)
		err = os.WriteFile(p, []byte(body), 0600)
		assert(err == nil, "write %s: %s", p, err)
	}
}

// openTree builds the fixture tree and returns a ready FS on it.
func openTree(t *testing.T, opt *Options) (*FS, string) {
	assert := newAsserter(t)

	root := t.TempDir()
	mkProjectTree(t, root)

	afs, err := New(root, opt)
	assert(err == nil, "new %s: %s", root, err)
	assert(afs.WaitReady(5*time.Second), "%s: index never became ready", root)

	t.Cleanup(func() {
		afs.Close()
	})
	return afs, root
}

// waitFor polls 'cond' until it holds or the deadline passes.
func waitFor(timeout time.Duration, cond func() bool) bool {
	dead := time.Now().Add(timeout)
	for time.Now().Before(dead) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
