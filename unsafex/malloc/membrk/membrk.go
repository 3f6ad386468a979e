// Package membrk implements the heap-growth primitive the allocators in
// unsafex/malloc depend on but do not themselves provide: a contiguous,
// monotonically growable byte region with a fixed upper bound, modeled
// after a process break.
package membrk

import (
	"fmt"

	"github.com/bytedance/gopkg/lang/dirtmake"
)

// Break is a fixed-capacity, growable-by-length byte region. Growth never
// reallocates: the full capacity is reserved up front with
// dirtmake.Bytes, and ExtendBreak only ever grows the used length within
// that capacity, so the backing array's address — and therefore every
// offset handed out against it — never moves.
type Break struct {
	buf []byte // len == current break, cap == maxSize
	max int
}

// New reserves a region that can grow up to maxSize bytes.
func New(maxSize int) *Break {
	return &Break{
		buf: dirtmake.Bytes(0, maxSize),
		max: maxSize,
	}
}

// ExtendBreak grows the region by n bytes and returns the offset of the
// first newly added byte. n must be positive. Returns an error once the
// region would exceed the capacity passed to New.
func (b *Break) ExtendBreak(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("membrk: extend size must be positive, got %d", n)
	}
	base := len(b.buf)
	if base+n > b.max {
		return 0, fmt.Errorf("membrk: out of memory: break at %d, requested %d, limit %d", base, n, b.max)
	}
	b.buf = b.buf[:base+n]
	return base, nil
}

// Bytes returns the current view of the region, from offset 0 to the
// current break.
func (b *Break) Bytes() []byte {
	return b.buf
}

// Base returns the lowest valid offset (always 0); together with Limit it
// gives both ends of the region.
func (b *Break) Base() int {
	return 0
}

// Limit returns the current break (one past the last valid offset).
func (b *Break) Limit() int {
	return len(b.buf)
}
