package heapdump_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/xmalloc/unsafex/malloc"
	"github.com/cloudwego/xmalloc/unsafex/malloc/heapdump"
	"github.com/cloudwego/xmalloc/unsafex/malloc/membrk"
)

func TestDump(t *testing.T) {
	a, err := malloc.NewExplicitListAllocator(membrk.New(64 * 1024))
	require.NoError(t, err)

	b := a.Alloc(32)
	require.NotNil(t, b)

	var out bytes.Buffer
	heapdump.Dump(&out, a)

	s := out.String()
	assert.Contains(t, s, "heap blocks:")
	assert.Contains(t, s, "allocated")
	assert.Contains(t, s, "free list:")
	assert.Contains(t, s, "free block(s)")

	a.Free(b)
	out.Reset()
	heapdump.Dump(&out, a)
	// After freeing the only allocation, every block line should be free.
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.Contains(line, "size=") && strings.Contains(line, "allocated") {
			t.Fatalf("unexpected allocated block after Free: %q", line)
		}
	}
}
