// lines.go - line-range and byte-range reads
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
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/opencoff/go-mmap"
)

// files at or above this size are line-scanned through a memory map
// instead of buffered reads
const _MmapThreshold = 1 << 20

// ReadLines returns the lines [start, start+count) of 'nm',
// 0-indexed, with trailing '\n' and '\r' stripped. A negative count
// means "to end of file". Ranges beyond the end of the file yield an
// empty slice, not an error.
func (afs *FS) ReadLines(nm string, start, count int) ([]string, error) {
	abs, _, err := afs.resolve(nm)
	if err != nil {
		return nil, err
	}
	if start < 0 {
		start = 0
	}

	out := []string{}
	if count == 0 {
		return out, nil
	}

	fd, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	fi, err := fd.Stat()
	if err != nil {
		return nil, err
	}

	lineno := 0
	err = forEachLine(fd, fi.Size(), func(line []byte) bool {
		if lineno >= start {
			out = append(out, string(line))
		}
		lineno++
		return count < 0 || len(out) < count
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadFileRange reads up to 'limit' bytes of 'nm' starting at byte
// 'offset' and decodes them as UTF-8. An offset at or beyond the end
// of the file yields an empty string, not an error.
func (afs *FS) ReadFileRange(nm string, offset, limit int64) (string, error) {
	abs, _, err := afs.resolve(nm)
	if err != nil {
		return "", err
	}

	fd, err := os.Open(abs)
	if err != nil {
		return "", err
	}
	defer fd.Close()

	if limit <= 0 || offset < 0 {
		return "", nil
	}

	b := make([]byte, limit)
	n, err := fd.ReadAt(b, offset)
	if err != nil && err != io.EOF {
		return "", err
	}
	return decode(b[:n], "")
}

// sentinel used to end a scan early without signalling failure
var errStopScan = errors.New("stop scan")

// forEachLine feeds every line of 'fd' (terminators stripped) to
// 'fn' until fn returns false or the file ends. Large files go
// through the mmap reader in windows; small ones through a buffered
// scanner. The final unterminated line, if any, is delivered too.
func forEachLine(fd *os.File, size int64, fn func(line []byte) bool) error {
	if size < _MmapThreshold {
		sc := bufio.NewScanner(fd)
		sc.Buffer(make([]byte, 64*1024), 4<<20)
		for sc.Scan() {
			if !fn(trimEOL(sc.Bytes())) {
				return nil
			}
		}
		return sc.Err()
	}

	// mmap path; the callback may see the file in several windows,
	// so a line split across windows is carried over
	var carry []byte
	_, err := mmap.Reader(fd, func(b []byte) error {
		for len(b) > 0 {
			i := bytes.IndexByte(b, '\n')
			if i < 0 {
				carry = append(carry, b...)
				return nil
			}

			line := b[:i]
			if len(carry) > 0 {
				line = append(carry, line...)
				carry = carry[:0]
			}
			if !fn(trimEOL(line)) {
				return errStopScan
			}
			b = b[i+1:]
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, errStopScan) {
			return nil
		}
		return err
	}

	if len(carry) > 0 {
		fn(trimEOL(carry))
	}
	return nil
}

// trimEOL strips every trailing '\n' and '\r'
func trimEOL(b []byte) []byte {
	for len(b) > 0 {
		if c := b[len(b)-1]; c != '\n' && c != '\r' {
			break
		}
		b = b[:len(b)-1]
	}
	return b
}
