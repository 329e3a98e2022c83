// errors.go - descriptive errors for agentfs
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
	"fmt"
)

var (
	// ErrClosed is returned by every operation invoked after Close().
	ErrClosed = errors.New("filesystem is closed")

	// ErrInvalidRoot is returned by New() when the root doesn't
	// exist or is not a directory.
	ErrInvalidRoot = errors.New("root is not a directory")

	// ErrOutsideRoot is returned when a path, relative or absolute,
	// does not resolve to a location under the root.
	ErrOutsideRoot = errors.New("path is outside root")

	// ErrDecode is returned when file bytes can't be decoded in the
	// requested encoding.
	ErrDecode = errors.New("can't decode content")

	// ErrBadPattern is returned by Grep() when the regex fails to
	// compile, and by List(), Glob() and Grep() when the glob pattern
	// is malformed.
	ErrBadPattern = errors.New("bad search pattern")

	// ErrTextNotFound is returned by a strict EditReplace() when the
	// old text has zero occurrences.
	ErrTextNotFound = errors.New("old text not found")
)

// NotUniqueError is returned by a strict EditReplace() when the old
// text occurs more than once in the target file.
type NotUniqueError struct {
	Path  string
	Count int
}

// Error returns a string representation of NotUniqueError
func (e *NotUniqueError) Error() string {
	return fmt.Sprintf("edit %s: old text not unique; %d occurrences", e.Path, e.Count)
}

var _ error = &NotUniqueError{}
