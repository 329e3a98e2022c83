// edit.go - unique-match text replacement
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
	"strings"
)

// EditReplace replaces 'old' with 'new' in the file 'nm' and writes
// the result back through the atomic writer. Occurrences are counted
// by plain substring search.
//
// In strict mode the old text must occur exactly once: zero
// occurrences fail with ErrTextNotFound, several with a
// NotUniqueError carrying the count. In lenient mode zero occurrences
// return false without error, and several replace only the first.
//
// Returns true iff a replacement was written.
func (afs *FS) EditReplace(nm, old, new string, strict bool) (bool, error) {
	abs, _, err := afs.resolve(nm)
	if err != nil {
		return false, err
	}

	b, err := os.ReadFile(abs)
	if err != nil {
		return false, err
	}

	s := string(b)
	n := strings.Count(s, old)
	switch {
	case n == 0:
		if strict {
			return false, fmt.Errorf("edit %s: %w", nm, ErrTextNotFound)
		}
		return false, nil

	case n > 1 && strict:
		return false, &NotUniqueError{Path: nm, Count: n}
	}

	if err := afs.WriteFile(nm, strings.Replace(s, old, new, 1)); err != nil {
		return false, err
	}
	return true, nil
}
