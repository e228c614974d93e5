package hostswap

import "sync"

type pageKey struct {
	swapType uint8
	offset   uint64
}

// MemProvider is an in-memory reference Provider: it models the real swap
// device as a plain map. Used by unit/integration tests and the benchmarks,
// where no real durable backing store is needed.
type MemProvider struct {
	pageSize int

	mu      sync.Mutex
	present map[pageKey]bool // offsets already "on the real swap device"
	oom     bool             // test hook: force AllocatePage to report OOM
}

// NewMemProvider constructs a MemProvider whose pages are pageSize bytes.
func NewMemProvider(pageSize int) *MemProvider {
	return &MemProvider{pageSize: pageSize, present: make(map[pageKey]bool)}
}

// SetOOM flips whether AllocatePage reports allocation failure — a test hook
// for exercising the writeback engine's allocation-failure outcome.
func (m *MemProvider) SetOOM(oom bool) {
	m.mu.Lock()
	m.oom = oom
	m.mu.Unlock()
}

// MarkPresent seeds the provider as if offset were already resident in the
// real swap cache — a test hook for exercising the "page already present"
// outcome.
func (m *MemProvider) MarkPresent(swapType uint8, offset uint64) {
	m.mu.Lock()
	m.present[pageKey{swapType, offset}] = true
	m.mu.Unlock()
}

// IsOnDevice reports whether offset has been durably written back, i.e. it
// would now be served by the real swap device rather than the cache.
func (m *MemProvider) IsOnDevice(swapType uint8, offset uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.present[pageKey{swapType, offset}]
}

func (m *MemProvider) AllocatePage(swapType uint8, offset uint64) (PageOutcome, *Page) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.oom {
		return PageAllocFailed, nil
	}
	if m.present[pageKey{swapType, offset}] {
		return PageAlreadyPresent, nil
	}
	return PageNewLocked, &Page{Data: make([]byte, m.pageSize)}
}

func (m *MemProvider) SubmitWritepage(swapType uint8, offset uint64, page *Page, onComplete func(success bool)) {
	m.mu.Lock()
	m.present[pageKey{swapType, offset}] = true
	m.mu.Unlock()
	onComplete(true)
}
