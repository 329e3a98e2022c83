// glob_test.go -- tests for pattern matching against the index

package agentfs

import (
	"errors"
	"sort"
	"testing"
)

func TestGlobPatterns(t *testing.T) {
	assert := newAsserter(t)
	afs, _ := openTree(t, &Options{})

	txt, err := afs.Glob("**/*.txt")
	assert(err == nil, "glob: %s", err)
	assert(len(txt) == 4, "exp 4 txt files, saw %v", txt)
	assert(sort.StringsAreSorted(txt), "glob results unsorted: %v", txt)

	src, err := afs.Glob("src/*.txt")
	assert(err == nil, "glob src: %s", err)
	assert(sameStrings(src, []string{"src/main.txt", "src/util.txt"}),
		"exp src files, saw %v", src)

	one, err := afs.Glob("go.txt")
	assert(err == nil, "glob literal: %s", err)
	assert(sameStrings(one, []string{"go.txt"}), "exp [go.txt], saw %v", one)

	q, err := afs.Glob("src/?ain.txt")
	assert(err == nil, "glob ?: %s", err)
	assert(sameStrings(q, []string{"src/main.txt"}), "exp [src/main.txt], saw %v", q)
}

func TestGlobNoMatch(t *testing.T) {
	assert := newAsserter(t)
	afs, _ := openTree(t, &Options{})

	none, err := afs.Glob("**/*.nope")
	assert(err == nil, "glob: %s", err)
	assert(none != nil && len(none) == 0, "exp empty slice, saw %v", none)
}

func TestGlobExcludesDirs(t *testing.T) {
	assert := newAsserter(t)
	afs, _ := openTree(t, &Options{})

	got, err := afs.Glob("**/*")
	assert(err == nil, "glob: %s", err)
	for _, nm := range got {
		md, err := afs.GetMetadata(nm)
		assert(err == nil, "metadata %s: %s", nm, err)
		assert(!md.IsDir, "glob returned a directory: %s", nm)
	}
}

func TestGlobBadPattern(t *testing.T) {
	assert := newAsserter(t)
	afs, _ := openTree(t, &Options{})

	_, err := afs.List("[", true)
	assert(errors.Is(err, ErrBadPattern), "exp ErrBadPattern, saw %s", err)
}

func TestListDefaultPattern(t *testing.T) {
	assert := newAsserter(t)
	afs, _ := openTree(t, &Options{})

	def, err := afs.List("", true)
	assert(err == nil, "list default: %s", err)
	all, err := afs.List("**/*", true)
	assert(err == nil, "list: %s", err)
	assert(sameStrings(def, all), "default pattern differs: %v vs %v", def, all)
}
