// Package zcache is the compressed swap cache engine's public API: the five
// operations exposed to a host swap subsystem (Init, Store, Load,
// InvalidatePage, InvalidateArea), layered over the internal entry index,
// compressed object store, page pool, scratch buffers, and writeback engine
// packages.
//
// A top-level Cache struct, a functional-options New constructor, and a
// process-wide per-swap-type index table modeled as a fixed-capacity
// [256]*typeSlot array indexed by swap-type id (swap types are a small fixed
// number that fits a uint8).
//
// © 2025 zcache authors. MIT License.
package zcache

import (
	"sync"

	"go.uber.org/zap"

	"github.com/ashgrove/zcache/internal/codec"
	"github.com/ashgrove/zcache/internal/cos"
	"github.com/ashgrove/zcache/internal/entryindex"
	"github.com/ashgrove/zcache/internal/hostswap"
	"github.com/ashgrove/zcache/internal/pagepool"
	"github.com/ashgrove/zcache/internal/scratch"
	"github.com/ashgrove/zcache/internal/writeback"
)

// RejectReason enumerates the negative Store outcomes the engine surfaces
// and counts, each separately.
type RejectReason int

const (
	RejectNone RejectReason = iota
	RejectNoDevice
	RejectEntryAlloc
	RejectCodec
	RejectRatio
	RejectSpareBuffer
	RejectNoSpace
)

func (r RejectReason) String() string {
	switch r {
	case RejectNone:
		return "ok"
	case RejectNoDevice:
		return "no-device"
	case RejectEntryAlloc:
		return "entry-alloc"
	case RejectCodec:
		return "invalid"
	case RejectRatio:
		return "compress-poor"
	case RejectSpareBuffer:
		return "spare-exhausted"
	case RejectNoSpace:
		return "no-space"
	default:
		return "unknown"
	}
}

// typeSlot holds what a single swap type needs beyond the shared page pool:
// its entry index and its own compressed object store. Stores are separate
// per swap type with no cross-instance sharing, but the page pool they draw
// from is not: the ceiling is a single cache-wide budget expressed as a
// percentage of total physical memory, so one *pagepool.Pool is shared by
// every typeSlot's cos.Store (see Cache.pool).
type typeSlot struct {
	index *entryindex.Index
	store *cos.Store
}

// Cache is the process-wide compressed swap cache engine.
type Cache struct {
	cfg *config

	mu    sync.RWMutex
	slots [256]*typeSlot

	pool      *pagepool.Pool // shared across every swap type; the cache's one global ceiling
	codec     codec.Codec
	spareBufs *scratch.SparePool
	writeback *writeback.Engine
	metrics   metricsSink
	log       *zap.Logger
}

// New constructs a Cache. provider is the host-swap collaborator the
// writeback engine consumes; pass an internal/hostswap implementation
// (MemProvider for tests, BadgerProvider for a demo, or a real host
// integration in production).
func New(provider hostswap.Provider, opts ...Option) (*Cache, error) {
	cfg := defaultConfig()
	if err := applyOptions(cfg, opts); err != nil {
		return nil, err
	}

	c, usedFallback := codec.New(cfg.codecName)
	logger := cfg.logger
	if usedFallback {
		logger.Warn("zcache: requested codec unavailable, using built-in default",
			zap.String("requested", cfg.codecName), zap.String("using", c.Name()))
	}

	return &Cache{
		cfg:       cfg,
		pool:      pagepool.New(cfg.maxPoolPercent),
		codec:     c,
		spareBufs: scratch.NewSparePool(cfg.spareBufferCapacity),
		writeback: writeback.NewEngine(provider, int64(cfg.writebackCeiling)),
		metrics:   newMetricsSink(cfg.registry),
		log:       logger,
	}, nil
}

// Init lazily allocates the index and its compressed object store for
// swapType, both backed by the cache's single shared page pool. Called when
// a new swap device comes online, in a non-sleeping context; a silent
// no-op on allocation failure lets the caller proceed without caching. Safe
// to call more than once for the same swapType; later calls are no-ops.
func (c *Cache) Init(swapType uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.slots[swapType] != nil {
		return
	}
	store := cos.New(c.pool)
	c.slots[swapType] = &typeSlot{
		index: entryindex.New(swapType, store),
		store: store,
	}
}

func (c *Cache) slot(swapType uint8) *typeSlot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.slots[swapType]
}

// Stats is a point-in-time snapshot of the observability surface: read-only
// counters for pool pages, stored pages, outstanding writebacks, and pages
// written back. Duplicate and rejection-reason counts live on the
// Prometheus side when metrics are enabled. PoolPages is the cache-wide
// page pool occupancy (shared across every swap type), not a per-type
// count; StoredPages is the one count that is per swap type.
type Stats struct {
	PoolPages             int64
	StoredPages           int
	OutstandingWritebacks int64
	PagesWrittenBack      uint64
}

// StatsFor returns a snapshot for swapType, or the zero Stats if that swap
// type was never Init'd.
func (c *Cache) StatsFor(swapType uint8) Stats {
	s := c.slot(swapType)
	if s == nil {
		return Stats{}
	}
	s.index.Lock()
	stored := s.index.Len()
	s.index.Unlock()
	return Stats{
		PoolPages:             c.pool.LivePages(),
		StoredPages:           stored,
		OutstandingWritebacks: c.writeback.InFlight(),
		PagesWrittenBack:      c.writeback.Freed(),
	}
}

// TriggerWriteback runs up to n writeback iterations against swapType
// outside the normal Store-triggered admission path. Operational escape
// hatch for a host that wants to reclaim ahead of memory pressure rather
// than waiting for the next failed allocation; a no-op if swapType was never
// Init'd. Returns the number of entries freed.
func (c *Cache) TriggerWriteback(swapType uint8, n int) int {
	s := c.slot(swapType)
	if s == nil {
		return 0
	}
	freed := c.writeback.WritebackBatch(s.index, c.codec, n)
	if freed > 0 {
		c.metrics.incPagesWrittenBack(swapType, uint64(freed))
	}
	s.index.Lock()
	stored := s.index.Len()
	s.index.Unlock()
	c.metrics.setStoredPages(swapType, int64(stored))
	c.metrics.setPoolPages(swapType, c.pool.LivePages())
	c.metrics.setOutstandingWritebacks(c.writeback.InFlight())
	return freed
}
