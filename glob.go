// glob.go - pattern matching against the index
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

	"github.com/bmatcuk/doublestar/v4"
)

// the pattern used when a caller passes ""
const defaultPattern = "**/*"

// List returns the relative paths matching 'pattern' in lexicographic
// order. With onlyFiles set, directory entries are filtered out. An
// empty match set is an empty slice, never an error.
//
// Matching happens against the in-memory index; nothing touches the
// disk. For the workloads this package exists for - many queries over
// one tree - that is the difference between O(indexed entries) per
// query and a full directory walk per query.
func (afs *FS) List(pattern string, onlyFiles bool) ([]string, error) {
	if afs.closed.Load() {
		return nil, ErrClosed
	}
	return afs.matchIndex(pattern, onlyFiles)
}

// Glob returns the files (never directories) matching 'pattern' in
// lexicographic order.
func (afs *FS) Glob(pattern string) ([]string, error) {
	if afs.closed.Load() {
		return nil, ErrClosed
	}
	return afs.matchIndex(pattern, true)
}

func (afs *FS) matchIndex(pattern string, onlyFiles bool) ([]string, error) {
	if pattern == "" {
		pattern = defaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("glob '%s': %w", pattern, ErrBadPattern)
	}

	out := []string{}
	for _, e := range afs.idx.entries() {
		if onlyFiles && e.Dir {
			continue
		}
		if ok, _ := doublestar.Match(pattern, e.Rel); ok {
			out = append(out, e.Rel)
		}
	}
	return out, nil
}

// matchFiles returns the file entries selected by 'pattern', in
// enumeration order. Used by the grep engine.
func (afs *FS) matchFiles(pattern string) ([]*Entry, error) {
	if pattern == "" {
		pattern = defaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("glob '%s': %w", pattern, ErrBadPattern)
	}

	var out []*Entry
	for _, e := range afs.idx.entries() {
		if e.Dir {
			continue
		}
		if ok, _ := doublestar.Match(pattern, e.Rel); ok {
			out = append(out, e)
		}
	}
	return out, nil
}
