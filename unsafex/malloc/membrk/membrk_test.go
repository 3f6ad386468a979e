package membrk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakExtend(t *testing.T) {
	b := New(64)

	off, err := b.ExtendBreak(16)
	require.NoError(t, err)
	assert.Equal(t, 0, off)
	assert.Equal(t, 16, b.Limit())

	off, err = b.ExtendBreak(16)
	require.NoError(t, err)
	assert.Equal(t, 16, off)
	assert.Equal(t, 32, b.Limit())
}

func TestBreakOutOfMemory(t *testing.T) {
	b := New(32)

	_, err := b.ExtendBreak(16)
	require.NoError(t, err)

	_, err = b.ExtendBreak(32)
	assert.Error(t, err)
	assert.Equal(t, 16, b.Limit(), "a failed extension must not change the break")
}

func TestBreakRejectsNonPositiveSize(t *testing.T) {
	b := New(64)
	_, err := b.ExtendBreak(0)
	assert.Error(t, err)
	_, err = b.ExtendBreak(-8)
	assert.Error(t, err)
}

func TestBreakBytesStableAcrossGrowth(t *testing.T) {
	b := New(128)

	_, err := b.ExtendBreak(16)
	require.NoError(t, err)
	before := b.Bytes()
	before[0] = 0xAB

	_, err = b.ExtendBreak(16)
	require.NoError(t, err)
	after := b.Bytes()

	// Growth must never relocate the backing array: a previously
	// returned view must keep observing writes made through the new one.
	assert.Equal(t, byte(0xAB), before[0])
	assert.Equal(t, byte(0xAB), after[0])
}
