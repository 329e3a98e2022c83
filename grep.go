// grep.go - parallel regex search over indexed files
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
	"regexp"
	"sync/atomic"
)

// SearchResult is one matching line from a Grep() call.
// LineNumber is 1-based. ContextBefore and ContextAfter are always
// present and always empty.
type SearchResult struct {
	File       string
	LineNumber int
	Content    string

	ContextBefore []string
	ContextAfter  []string
}

// GrepOptions control one Grep() call. The zero value means
// case-insensitive with no results wanted; pass nil to Grep() for
// the defaults (case-insensitive, 1000 results).
type GrepOptions struct {
	// CaseSensitive applies the case flag at compile time.
	CaseSensitive bool

	// MaxResults caps the result count. 0 yields no results.
	MaxResults int

	// MaxFileSize skips candidates larger than this many bytes
	// (10 MiB when 0).
	MaxFileSize int64
}

const (
	_DefaultMaxResults  = 1000
	_DefaultMaxGrepSize = 10 << 20
)

// Grep applies the regex 'query' to every line of every indexed file
// selected by 'pattern'. Results from one file are ordered by line
// number; across files they follow the glob enumeration order. Files
// that look binary, exceed the size cap or fail to read are skipped.
//
// Candidates are scanned in parallel; the result cap is enforced as
// a soft cap internally (workers stop claiming new lines once it is
// reached) and the final result is trimmed to exactly MaxResults.
func (afs *FS) Grep(query, pattern string, opt *GrepOptions) ([]SearchResult, error) {
	if afs.closed.Load() {
		return nil, ErrClosed
	}

	o := GrepOptions{MaxResults: _DefaultMaxResults}
	if opt != nil {
		o = *opt
	}
	if o.MaxFileSize <= 0 {
		o.MaxFileSize = _DefaultMaxGrepSize
	}

	expr := query
	if !o.CaseSensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadPattern, err)
	}

	cands, err := afs.matchFiles(pattern)
	if err != nil {
		return nil, err
	}

	out := []SearchResult{}
	if o.MaxResults <= 0 || len(cands) == 0 {
		return out, nil
	}

	// per-candidate result slots; each worker owns its own slot, so
	// assembling in candidate order needs no locking
	hits := make([][]SearchResult, len(cands))

	var nfound atomic.Int64
	wp := NewWorkPool[int](afs.opt.Concurrency, func(_ int, i int) error {
		if nfound.Load() >= int64(o.MaxResults) {
			return nil
		}

		e := cands[i]
		if e.Siz > o.MaxFileSize || e.IsBinary() {
			return nil
		}
		hits[i] = grepFile(re, e, o.MaxResults, &nfound)
		return nil
	})

	for i := range cands {
		wp.Submit(i)
	}
	wp.Close()
	if err := wp.Wait(); err != nil {
		afs.logf("grep: %s", err)
	}

	for _, rs := range hits {
		out = append(out, rs...)
	}
	if len(out) > o.MaxResults {
		out = out[:o.MaxResults]
	}
	return out, nil
}

// grepFile scans one file line by line. Read errors skip the file;
// this is the aggregate best-effort contract.
func grepFile(re *regexp.Regexp, e *Entry, max int, nfound *atomic.Int64) []SearchResult {
	fd, err := os.Open(e.Abs)
	if err != nil {
		return nil
	}
	defer fd.Close()

	var rs []SearchResult
	lineno := 0
	forEachLine(fd, e.Siz, func(line []byte) bool {
		lineno++
		if !re.Match(line) {
			return true
		}

		rs = append(rs, SearchResult{
			File:          e.Rel,
			LineNumber:    lineno,
			Content:       string(line),
			ContextBefore: []string{},
			ContextAfter:  []string{},
		})
		return nfound.Add(1) < int64(max)
	})
	return rs
}
