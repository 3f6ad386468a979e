// Package heapdump is a read-only consistency dumper for
// unsafex/malloc.ExplicitListAllocator. It depends on the allocator's
// exported iteration accessors only, never the reverse, so there is no
// import cycle between the two packages.
package heapdump

import (
	"fmt"
	"io"
)

// Source is the view an allocator exposes for dumping. It mirrors the
// iteration ExplicitListAllocator.Check already performs internally, but
// as an exported, read-only surface a separate tool can drive.
type Source interface {
	// Blocks calls visit once per block in heap order, from the
	// prologue's first real successor up to (excluding) the epilogue.
	Blocks(visit func(offset, size int, allocated bool))

	// FreeList calls visit once per block reachable from the free-list
	// head, in list order.
	FreeList(visit func(offset, size int))
}

// Dump writes one line per heap block to w: its offset, size, and
// allocated flag, followed by a summary of the free-list contents.
func Dump(w io.Writer, src Source) {
	fmt.Fprintln(w, "heap blocks:")
	src.Blocks(func(offset, size int, allocated bool) {
		state := "free"
		if allocated {
			state = "allocated"
		}
		fmt.Fprintf(w, "  %8d  size=%-6d %s\n", offset, size, state)
	})

	fmt.Fprintln(w, "free list:")
	n := 0
	src.FreeList(func(offset, size int) {
		fmt.Fprintf(w, "  %8d  size=%d\n", offset, size)
		n++
	})
	fmt.Fprintf(w, "  %d free block(s)\n", n)
}
