package malloc

import (
	"fmt"

	"github.com/cloudwego/xmalloc/unsafex/malloc/membrk"
)

func ExampleExplicitListAllocator() {
	a, _ := NewExplicitListAllocator(membrk.New(1 << 20))

	b1 := a.Alloc(24)
	b2 := a.Alloc(24)

	fmt.Printf("b1: len=%d\n", len(b1))
	fmt.Printf("b2: len=%d\n", len(b2))

	a.Free(b2)
	a.Free(b1)

	// Output:
	// b1: len=24
	// b2: len=24
}
