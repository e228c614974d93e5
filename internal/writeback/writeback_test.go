package writeback

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ashgrove/zcache/internal/codec"
	"github.com/ashgrove/zcache/internal/cos"
	"github.com/ashgrove/zcache/internal/entryindex"
	"github.com/ashgrove/zcache/internal/hostswap"
	"github.com/ashgrove/zcache/internal/pagepool"
)

func setup(t *testing.T, pages int64) (*entryindex.Index, *cos.Store, codec.Codec, *hostswap.MemProvider) {
	t.Helper()
	pool := pagepool.NewWithTotalRAM(100, uint64(pages)*pagepool.PageSize)
	store := cos.New(pool)
	idx := entryindex.New(0, store)
	c, _ := codec.New("snappy")
	provider := hostswap.NewMemProvider(pagepool.PageSize)
	return idx, store, c, provider
}

func storeOne(t *testing.T, idx *entryindex.Index, store *cos.Store, c codec.Codec, offset uint64) *entryindex.Entry {
	t.Helper()
	plain := make([]byte, pagepool.PageSize)
	for i := range plain {
		plain[i] = byte(offset)
	}
	compressed, err := c.Compress(make([]byte, 0, pagepool.PageSize), plain)
	require.NoError(t, err)

	h, ok := store.Alloc(len(compressed))
	require.True(t, ok)
	dst, unmap, err := store.MapWrite(h, len(compressed))
	require.NoError(t, err)
	copy(dst, compressed)
	unmap()

	e := &entryindex.Entry{Offset: offset, Handle: h, Length: uint32(len(compressed))}
	idx.Lock()
	idx.Insert(e)
	idx.Unlock()
	return e
}

func TestWritebackFreesEntryWhenRefcountReachesZero(t *testing.T) {
	idx, store, c, provider := setup(t, 4)
	storeOne(t, idx, store, c, 1)
	storeOne(t, idx, store, c, 2)

	engine := NewEngine(provider, DefaultInFlightCeiling)
	freed := engine.WritebackBatch(idx, c, 10)

	require.Equal(t, 2, freed)
	require.Equal(t, uint64(2), engine.Freed())
	idx.Lock()
	_, ok := idx.Lookup(1)
	idx.Unlock()
	require.False(t, ok, "a written-back entry must no longer be reachable by offset")
	require.True(t, provider.IsOnDevice(0, 1))
	require.True(t, provider.IsOnDevice(0, 2))
}

func TestWritebackSkipsAlreadyPresentAndRequeues(t *testing.T) {
	idx, store, c, provider := setup(t, 4)
	provider.MarkPresent(0, 1)
	storeOne(t, idx, store, c, 1)

	engine := NewEngine(provider, DefaultInFlightCeiling)
	freed := engine.WritebackBatch(idx, c, 10)

	require.Equal(t, 0, freed, "already-present entries are requeued, not freed")
	idx.Lock()
	_, ok := idx.Lookup(1)
	idx.Unlock()
	require.True(t, ok, "an already-present entry stays in the index")
}

func TestWritebackStopsBatchOnAllocFailure(t *testing.T) {
	idx, store, c, provider := setup(t, 4)
	storeOne(t, idx, store, c, 1)
	storeOne(t, idx, store, c, 2)
	provider.SetOOM(true)

	engine := NewEngine(provider, DefaultInFlightCeiling)
	freed := engine.WritebackBatch(idx, c, 10)

	require.Equal(t, 0, freed)
	idx.Lock()
	_, ok := idx.Lookup(1)
	idx.Unlock()
	require.True(t, ok, "allocation failure must not drop the entry")
}

func TestWritebackBatchStopsWhenIndexEmpty(t *testing.T) {
	idx, _, c, provider := setup(t, 4)
	engine := NewEngine(provider, DefaultInFlightCeiling)
	freed := engine.WritebackBatch(idx, c, 10)
	require.Equal(t, 0, freed)
	require.Equal(t, int64(0), engine.InFlight())
}
