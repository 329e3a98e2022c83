// metadata.go - public metadata record for a single path
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
	"os"
	"time"
)

// Metadata is the result of GetMetadata(): a fresh stat of one path
// combined with the index's cached binary verdict and any extended
// attributes the platform exposes.
type Metadata struct {
	Path     string // relative, forward-slash
	Size     int64
	ModTime  time.Time
	IsDir    bool
	IsBinary bool
	Xattr    Xattr
}

// GetMetadata stats 'nm' and returns its metadata record. The stat is
// always fresh; only the binary flag comes from the index cache. A
// missing path returns the underlying not-exist error.
func (afs *FS) GetMetadata(nm string) (*Metadata, error) {
	abs, rel, err := afs.resolve(nm)
	if err != nil {
		return nil, err
	}

	fi, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}

	m := &Metadata{
		Path:    rel,
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
		IsDir:   fi.IsDir(),
	}

	if e, ok := afs.idx.get(rel); ok {
		m.IsBinary = e.IsBinary()
	}

	// xattr is best-effort; many filesystems don't support it
	if x, err := LgetXattr(abs); err == nil && len(x) > 0 {
		m.Xattr = x
	}
	return m, nil
}
