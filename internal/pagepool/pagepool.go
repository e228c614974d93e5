// Package pagepool implements the bounded source of fixed-size raw pages
// backing the compressed object store. It is the cache's sole backpressure
// signal against unbounded growth: the live-page count is checked against a
// ceiling expressed as a percentage of total physical RAM before every
// allocation.
//
// The admission check is an atomic compare-and-swap loop against a
// precomputed ceiling, the same O(1)-budget shape a generation-based byte
// budget tracker would use, retargeted at a flat page ceiling instead of a
// ring of generations since there is no time-based eviction here.
//
// © 2025 zcache authors. MIT License.
package pagepool

import (
	"sync"
	"sync/atomic"

	"github.com/shirou/gopsutil/v3/mem"
)

// PageSize is the fixed size, in bytes, of every page handed out by a Pool.
// Matches the host VM page size this cache is interposed on top of.
const PageSize = 4096

// Page is a single fixed-size raw page. The byte slice is reused across
// Get/Put cycles — callers must not retain it past the matching Put.
type Page struct {
	Bytes [PageSize]byte
}

// Pool is a bounded, concurrency-safe source of *Page values. A Cache
// constructs one Pool and shares it across every swap type's COS instance.
type Pool struct {
	live     atomic.Int64
	maxPages atomic.Int64
	rejected atomic.Uint64

	mu       sync.Mutex
	maxPct   int
	totalRAM uint64 // total physical RAM in bytes, fixed at construction
}

// New constructs a Pool whose ceiling is maxPercent% of the host's total
// physical memory, expressed in PageSize units. maxPercent is a runtime
// tunable (default 50).
func New(maxPercent int) *Pool {
	total, err := totalRAMBytes()
	if err != nil || total == 0 {
		// Conservative fallback: a modest fixed ceiling so the cache remains
		// usable even when the host's memory stats are unavailable (e.g. in
		// sandboxed CI containers gopsutil cannot introspect).
		total = 512 << 20 // 512 MiB
	}
	p := &Pool{
		maxPct:   maxPercent,
		totalRAM: total,
	}
	p.recomputeCeiling()
	return p
}

// NewWithTotalRAM is the test/override constructor: it pins the "total
// physical memory" figure instead of querying gopsutil, so unit tests get
// deterministic ceilings regardless of the host running them.
func NewWithTotalRAM(maxPercent int, totalRAMBytes uint64) *Pool {
	p := &Pool{maxPct: maxPercent, totalRAM: totalRAMBytes}
	p.recomputeCeiling()
	return p
}

func totalRAMBytes() (uint64, error) {
	v, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return v.Total, nil
}

func (p *Pool) recomputeCeiling() {
	totalPages := int64(p.totalRAM / PageSize)
	ceil := totalPages * int64(p.maxPct) / 100
	if ceil <= 0 {
		ceil = 1
	}
	p.maxPages.Store(ceil)
}

// SetMaxPercent updates the tunable ceiling at runtime.
func (p *Pool) SetMaxPercent(pct int) {
	p.mu.Lock()
	p.maxPct = pct
	p.recomputeCeiling()
	p.mu.Unlock()
}

// Get returns a fresh Page if the live-page count is strictly below the
// ceiling; otherwise it fails fast and increments the rejection counter.
func (p *Pool) Get() (*Page, bool) {
	for {
		cur := p.live.Load()
		if cur >= p.maxPages.Load() {
			p.rejected.Add(1)
			return nil, false
		}
		if p.live.CompareAndSwap(cur, cur+1) {
			return &Page{}, true
		}
	}
}

// Put returns a page to the pool, decrementing the live count.
func (p *Pool) Put(*Page) {
	p.live.Add(-1)
}

// LivePages returns the current number of outstanding pages.
func (p *Pool) LivePages() int64 { return p.live.Load() }

// MaxPages returns the current ceiling, in pages.
func (p *Pool) MaxPages() int64 { return p.maxPages.Load() }

// Rejected returns the number of Get calls that failed fast due to the
// ceiling being reached.
func (p *Pool) Rejected() uint64 { return p.rejected.Load() }
