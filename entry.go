// entry.go - index record for one file system object
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
	"bytes"
	"io"
	"io/fs"
	"os"
	"sync/atomic"
	"time"
)

// Entry is one index record - a file or directory under the root.
// Rel is the canonical forward-slash path relative to the root and
// is the index key; Abs is the OS-native absolute path used for all
// I/O. Size and Mtime reflect the last stat; they may lag external
// writes until the watcher catches up.
type Entry struct {
	Rel string
	Abs string

	Siz  int64
	Mtim time.Time
	Dir  bool

	// binary sniff verdict; computed lazily, valid until the
	// entry is replaced
	binary atomic.Int32
}

const (
	binUnknown int32 = iota
	binText
	binBinary
)

// newEntry builds an index record from a fresh stat.
func newEntry(rel, abs string, fi fs.FileInfo) *Entry {
	return &Entry{
		Rel:  rel,
		Abs:  abs,
		Siz:  fi.Size(),
		Mtim: fi.ModTime(),
		Dir:  fi.IsDir(),
	}
}

// Size returns the byte length at the last stat.
func (e *Entry) Size() int64 { return e.Siz }

// ModTime returns the modification time at the last stat.
func (e *Entry) ModTime() time.Time { return e.Mtim }

// IsDir returns true for directory entries.
func (e *Entry) IsDir() bool { return e.Dir }

// IsBinary reports whether the file looks binary (a NUL byte in the
// leading bytes). The first call sniffs the file; the verdict is
// cached for the lifetime of the entry. A false negative merely
// wastes grep work; directories are never binary.
func (e *Entry) IsBinary() bool {
	if e.Dir {
		return false
	}

	if v := e.binary.Load(); v != binUnknown {
		return v == binBinary
	}

	v := binText
	if sniffBinary(e.Abs) {
		v = binBinary
	}
	e.binary.Store(v)
	return v == binBinary
}

// number of leading bytes examined for the binary heuristic
const _SniffLen = 512

func sniffBinary(nm string) bool {
	fd, err := os.Open(nm)
	if err != nil {
		return false
	}
	defer fd.Close()

	var b [_SniffLen]byte
	n, err := fd.Read(b[:])
	if err != nil && err != io.EOF {
		return false
	}
	return bytes.IndexByte(b[:n], 0) >= 0
}
