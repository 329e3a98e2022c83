// ignore.go - exclusion rules for the scanner and watcher
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
	"path"
	"path/filepath"
	"strings"
	"sync"

	gitignore "github.com/sabhiram/go-gitignore"
)

// vcsDirs are never indexed and never descended into.
var vcsDirs = map[string]bool{
	".git": true,
	".hg":  true,
	".svn": true,
	".bzr": true,
	"CVS":  true,
}

// ignoreSet aggregates three exclusion sources: the VCS metadata
// dirs, caller supplied basename globs and every .gitignore found
// while walking the tree. Matching is against forward-slash paths
// relative to the root.
type ignoreSet struct {
	excludes []string

	mu    sync.RWMutex
	byDir map[string]*gitignore.GitIgnore // keyed by rel dir; "" is the root
}

func newIgnoreSet(excludes []string) *ignoreSet {
	return &ignoreSet{
		excludes: excludes,
		byDir:    make(map[string]*gitignore.GitIgnore),
	}
}

// loadDir compiles 'dir'/.gitignore if one exists. 'rel' is the
// directory's path relative to the root ("" for the root itself).
// Called by the scanner for each directory it reaches; reloading a
// directory replaces its earlier rules.
func (ig *ignoreSet) loadDir(rel, dir string) {
	gi, err := gitignore.CompileIgnoreFile(filepath.Join(dir, ".gitignore"))
	if err != nil || gi == nil {
		return
	}

	ig.mu.Lock()
	ig.byDir[rel] = gi
	ig.mu.Unlock()
}

// match reports whether 'rel' is excluded from the index.
func (ig *ignoreSet) match(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if vcsDirs[seg] {
			return true
		}
	}

	bn := path.Base(rel)
	for _, pat := range ig.excludes {
		if ok, err := path.Match(pat, bn); err == nil && ok {
			return true
		}
	}

	ig.mu.RLock()
	defer ig.mu.RUnlock()

	// every ancestor directory with a .gitignore gets a say; the
	// path is rewritten relative to that directory before matching
	for d, gi := range ig.byDir {
		sub := rel
		if d != "" {
			pfx := d + "/"
			if !strings.HasPrefix(rel, pfx) {
				continue
			}
			sub = rel[len(pfx):]
		}
		if gi.MatchesPath(sub) {
			return true
		}
	}
	return false
}
