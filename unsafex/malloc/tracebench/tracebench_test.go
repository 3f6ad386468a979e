package tracebench

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/xmalloc/unsafex/malloc"
	"github.com/cloudwego/xmalloc/unsafex/malloc/membrk"
)

func smallTrace() []Op {
	return []Op{
		{Kind: OpAlloc, ID: 1, Size: 32},
		{Kind: OpAlloc, ID: 2, Size: 64},
		{Kind: OpFree, ID: 1},
		{Kind: OpAlloc, ID: 3, Size: 16},
		{Kind: OpFree, ID: 2},
		{Kind: OpFree, ID: 3},
	}
}

func TestReplayExplicitList(t *testing.T) {
	a, err := malloc.NewExplicitListAllocator(membrk.New(64 * 1024))
	require.NoError(t, err)

	res := Replay("small", "explicit-list", a, smallTrace())
	assert.Equal(t, 6, res.Ops)
	assert.False(t, res.CorruptionFound)
	assert.Greater(t, res.PeakLiveBytes, 0)
	require.NotNil(t, res.Utilization)
	assert.Greater(t, res.Utilization.Len(), 0)

	last, ok := res.Utilization.Get(res.Utilization.Len() - 1)
	require.True(t, ok)
	assert.Equal(t, last.Value(), res.FinalUtilization())
}

func TestResultFinalUtilizationEmpty(t *testing.T) {
	var res Result
	assert.Equal(t, float64(0), res.FinalUtilization())
}

func TestReplayBuddy(t *testing.T) {
	a, err := malloc.NewBuddyAllocator(make([]byte, 512*1024))
	require.NoError(t, err)

	res := Replay("small", "buddy", a, smallTrace())
	assert.False(t, res.CorruptionFound)
}

func TestReplayBitmap(t *testing.T) {
	a, err := malloc.NewBitmapAllocator(make([]byte, 512*1024))
	require.NoError(t, err)

	res := Replay("small", "bitmap", a, smallTrace())
	assert.False(t, res.CorruptionFound)
}

func TestRunAllCoversEveryTraceStrategyPair(t *testing.T) {
	traces := []NamedTrace{
		{Name: "small", Ops: smallTrace()},
	}
	factories := map[string]Factory{
		"explicit-list": func() Strategy {
			a, _ := malloc.NewExplicitListAllocator(membrk.New(64 * 1024))
			return a
		},
		"buddy": func() Strategy {
			a, _ := malloc.NewBuddyAllocator(make([]byte, 512*1024))
			return a
		},
		"bitmap": func() Strategy {
			a, _ := malloc.NewBitmapAllocator(make([]byte, 512*1024))
			return a
		},
	}

	results := RunAll(traces, factories)
	assert.Len(t, results, len(traces)*len(factories))
	for _, r := range results {
		assert.False(t, r.CorruptionFound, "%s/%s reported corruption", r.Trace, r.Strategy)
	}
}
