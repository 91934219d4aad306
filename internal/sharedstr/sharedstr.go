// Package sharedstr provides an immutable shared string type standing in
// for the host framework's ArcStr: O(1) clone, safe to share across
// goroutines, with an interning fast path for small program-literal
// strings (such as HTTP/2 scheme names) that are constructed over and
// over from the same handful of constants.
package sharedstr

import "sync"

// Str is an immutable, cheaply-cloneable string handle. The zero value is
// the empty string. Because Go strings are themselves immutable and
// share backing arrays on slice/assign, Str is a thin named type rather
// than a pointer-to-refcount box — cloning is already O(1) in Go, so the
// only value this type adds over a plain string is the interning table
// below and a documented contract at the core boundary.
type Str string

// String returns the underlying string.
func (s Str) String() string { return string(s) }

// IsEmpty reports whether the string has zero length.
func (s Str) IsEmpty() bool { return len(s) == 0 }

var (
	internMu sync.RWMutex
	intern   = make(map[string]Str)
)

// Intern returns a Str sharing a single canonical backing value for a
// given literal across the process, analogous to ArcStr's static-storage
// fast path for program literals. Safe for concurrent use.
func Intern(s string) Str {
	internMu.RLock()
	v, ok := intern[s]
	internMu.RUnlock()
	if ok {
		return v
	}
	internMu.Lock()
	defer internMu.Unlock()
	if v, ok := intern[s]; ok {
		return v
	}
	v = Str(s)
	intern[s] = v
	return v
}

// New wraps an arbitrary string without interning it.
func New(s string) Str { return Str(s) }
