// read.go - single-file and batch reads
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
	"unicode/utf8"

	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/text/encoding/ianaindex"
)

// ReadFile reads one file and decodes it in 'encoding' ("" means
// UTF-8). A missing file surfaces the underlying not-exist error;
// undecodable bytes surface ErrDecode.
func (afs *FS) ReadFile(nm string, encoding string) (string, error) {
	abs, _, err := afs.resolve(nm)
	if err != nil {
		return "", err
	}

	b, err := os.ReadFile(abs)
	if err != nil {
		return "", err
	}
	return decode(b, encoding)
}

// ReadBatch reads many files in parallel and returns a map keyed by
// the caller supplied path. Best effort over many paths: a path that
// can't be read or decoded is simply absent from the result. Callers
// wanting per-path errors must use ReadFile.
func (afs *FS) ReadBatch(paths []string) (map[string]string, error) {
	if afs.closed.Load() {
		return nil, ErrClosed
	}

	res := xsync.NewMapOf[string, string]()
	wp := NewWorkPool[string](afs.opt.Concurrency, func(_ int, nm string) error {
		abs, _, err := afs.resolve(nm)
		if err != nil {
			return nil
		}
		b, err := os.ReadFile(abs)
		if err != nil {
			return nil
		}
		s, err := decode(b, "")
		if err != nil {
			return nil
		}
		res.Store(nm, s)
		return nil
	})

	for _, nm := range paths {
		wp.Submit(nm)
	}
	wp.Close()
	wp.Wait()

	out := make(map[string]string, res.Size())
	res.Range(func(k, v string) bool {
		out[k] = v
		return true
	})
	return out, nil
}

// decode turns raw bytes into a string in the named encoding. UTF-8
// is validated strictly; other names are resolved through the IANA
// registry.
func decode(b []byte, encoding string) (string, error) {
	switch strings.ToLower(encoding) {
	case "", "utf-8", "utf8":
		if !utf8.Valid(b) {
			return "", fmt.Errorf("%w: invalid utf-8", ErrDecode)
		}
		return string(b), nil
	}

	enc, err := ianaindex.IANA.Encoding(encoding)
	if err != nil || enc == nil {
		return "", fmt.Errorf("%w: unknown encoding %q", ErrDecode, encoding)
	}

	s, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %s", ErrDecode, encoding, err)
	}
	return string(s), nil
}
