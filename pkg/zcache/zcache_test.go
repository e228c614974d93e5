package zcache

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ashgrove/zcache/internal/hostswap"
)

func newTestCache(t *testing.T, opts ...Option) *Cache {
	t.Helper()
	provider := hostswap.NewMemProvider(4096)
	defaults := []Option{WithCodec("snappy")}
	c, err := New(provider, append(defaults, opts...)...)
	require.NoError(t, err)
	c.Init(0)
	return c
}

func compressiblePage() []byte {
	p := make([]byte, 4096)
	for i := range p {
		p[i] = byte(i / 64)
	}
	return p
}

func incompressiblePage() []byte {
	p := make([]byte, 4096)
	rand.New(rand.NewSource(1)).Read(p)
	return p
}

func TestStoreThenLoadRoundTrip(t *testing.T) {
	c := newTestCache(t)
	src := compressiblePage()

	reason := c.Store(0, 100, src)
	require.Equal(t, RejectNone, reason)

	dst := make([]byte, 4096)
	ok := c.Load(0, 100, dst)
	require.True(t, ok)
	require.Equal(t, src, dst)
}

func TestLoadMissReturnsFalse(t *testing.T) {
	c := newTestCache(t)
	dst := make([]byte, 4096)
	require.False(t, c.Load(0, 999, dst))
}

func TestStoreWithoutInitIsRejected(t *testing.T) {
	provider := hostswap.NewMemProvider(4096)
	c, err := New(provider, WithCodec("snappy"))
	require.NoError(t, err)

	reason := c.Store(7, 1, compressiblePage())
	require.Equal(t, RejectNoDevice, reason)
}

func TestIncompressiblePageIsRejected(t *testing.T) {
	c := newTestCache(t, WithMaxCompressionRatio(80))
	reason := c.Store(0, 1, incompressiblePage())
	require.Equal(t, RejectRatio, reason)
}

func TestDuplicateStoreReplacesEntry(t *testing.T) {
	c := newTestCache(t)
	first := compressiblePage()
	second := compressiblePage()
	second[0] = 0xFF

	require.Equal(t, RejectNone, c.Store(0, 55, first))
	require.Equal(t, RejectNone, c.Store(0, 55, second))

	dst := make([]byte, 4096)
	require.True(t, c.Load(0, 55, dst))
	require.Equal(t, second, dst)

	stats := c.StatsFor(0)
	require.Equal(t, 1, stats.StoredPages, "a duplicate replace must not leave two live entries")
}

func TestInvalidatePageRemovesEntry(t *testing.T) {
	c := newTestCache(t)
	require.Equal(t, RejectNone, c.Store(0, 3, compressiblePage()))

	c.InvalidatePage(0, 3)

	dst := make([]byte, 4096)
	require.False(t, c.Load(0, 3, dst))

	// A second invalidate of the same offset is a no-op.
	c.InvalidatePage(0, 3)
	require.False(t, c.Load(0, 3, dst))
}

func TestInvalidateAreaWipesEverything(t *testing.T) {
	c := newTestCache(t)
	const n = 100
	for i := uint64(0); i < n; i++ {
		require.Equal(t, RejectNone, c.Store(0, i, compressiblePage()))
	}
	require.Equal(t, n, c.StatsFor(0).StoredPages)

	c.InvalidateArea(0)

	require.Equal(t, 0, c.StatsFor(0).StoredPages)
	require.Equal(t, int64(0), c.pool.LivePages(), "pool pages backing the wiped area must be returned")
	dst := make([]byte, 4096)
	for i := uint64(0); i < n; i++ {
		require.False(t, c.Load(0, i, dst))
	}
}

func TestInitIsIdempotent(t *testing.T) {
	c := newTestCache(t)
	require.Equal(t, RejectNone, c.Store(0, 1, compressiblePage()))
	c.Init(0) // second call must not reset existing state
	dst := make([]byte, 4096)
	require.True(t, c.Load(0, 1, dst))
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	provider := hostswap.NewMemProvider(4096)
	_, err := New(provider, WithMaxPoolPercent(0))
	require.Error(t, err)

	_, err = New(provider, WithMaxCompressionRatio(200))
	require.Error(t, err)

	_, err = New(provider, WithSpareBufferCapacity(-1))
	require.Error(t, err)
}

func TestUnknownCodecFallsBackWithoutError(t *testing.T) {
	provider := hostswap.NewMemProvider(4096)
	c, err := New(provider, WithCodec("not-a-real-codec"))
	require.NoError(t, err)
	require.Equal(t, "snappy", c.codec.Name())
}
