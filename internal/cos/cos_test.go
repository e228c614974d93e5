package cos

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ashgrove/zcache/internal/pagepool"
)

func TestAllocFreeRoundTrip(t *testing.T) {
	pool := pagepool.NewWithTotalRAM(100, 4*pagepool.PageSize)
	store := New(pool)

	h, ok := store.Alloc(128)
	require.True(t, ok)

	dst, unmap, err := store.MapWrite(h, 128)
	require.NoError(t, err)
	copy(dst, []byte("hello compressed world"))
	unmap()

	src, unmap, err := store.MapRead(h, 128)
	require.NoError(t, err)
	require.Equal(t, byte('h'), src[0])
	unmap()

	store.Free(h)
	require.Equal(t, int64(0), pool.LivePages())
}

func TestAllocRejectsOversize(t *testing.T) {
	pool := pagepool.NewWithTotalRAM(100, pagepool.PageSize)
	store := New(pool)

	_, ok := store.Alloc(pagepool.PageSize + 1)
	require.False(t, ok)
}

func TestAllocFailsWhenPoolExhausted(t *testing.T) {
	pool := pagepool.NewWithTotalRAM(100, pagepool.PageSize)
	store := New(pool)

	_, ok := store.Alloc(64)
	require.True(t, ok)

	_, ok = store.Alloc(64)
	require.False(t, ok, "second allocation must fail once the single-page pool is exhausted")
}

func TestMapOfZeroHandleErrors(t *testing.T) {
	store := New(pagepool.NewWithTotalRAM(100, pagepool.PageSize))
	_, _, err := store.MapRead(Handle{}, 10)
	require.Error(t, err)
	_, _, err = store.MapWrite(Handle{}, 10)
	require.Error(t, err)
}
