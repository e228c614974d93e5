// Package scratch implements the per-worker compression destination buffers
// and the spare-buffer pool. Each worker that may execute the store path
// holds a pinned destination buffer of 2x page size for compression output;
// a small fixed-size pool of spare buffers is borrowed when the store path
// needs to release its per-worker buffer to permit a blocking call
// downstream without losing the compressed result.
//
// Goroutine-confinement is documented in prose rather than enforced by the
// type system: a Worker is a thread-local token the calling goroutine holds
// exclusively while pinned.
//
// © 2025 zcache authors. MIT License.
package scratch

import (
	"sync"

	"github.com/ashgrove/zcache/internal/pagepool"
)

// bufSize is 2x page size: enough room to hold a worst-case-incompressible
// page's compressed output alongside headroom for the codec's framing.
const bufSize = 2 * pagepool.PageSize

// Worker owns one pinned destination buffer. Callers must confine a Worker
// to a single goroutine at a time; Acquire/Release bracket the non-sleepable
// compression window.
type Worker struct {
	buf   [bufSize]byte
	inUse bool
}

// NewWorker constructs an idle per-worker scratch buffer.
func NewWorker() *Worker { return &Worker{} }

// Acquire pins the worker's buffer for the calling goroutine's exclusive use
// and returns a full-capacity slice to write into. Panics on re-entrant
// Acquire — that would indicate a caller bug, not a recoverable condition.
func (w *Worker) Acquire() []byte {
	if w.inUse {
		panic("scratch: worker buffer already acquired")
	}
	w.inUse = true
	return w.buf[:0:bufSize]
}

// Release unpins the worker's buffer, making it available for the next
// Acquire.
func (w *Worker) Release() {
	w.inUse = false
}

// SparePool is a small fixed-capacity pool of spare order-1 buffers, shared
// across all Index instances alongside the writeback engine's in-flight
// counter. Exhaustion is a rejection, never a wait.
type SparePool struct {
	mu   sync.Mutex
	free [][]byte
}

// NewSparePool constructs a pool with the given fixed capacity of spare
// buffers, each bufSize bytes.
func NewSparePool(capacity int) *SparePool {
	free := make([][]byte, 0, capacity)
	for i := 0; i < capacity; i++ {
		free = append(free, make([]byte, bufSize))
	}
	return &SparePool{free: free}
}

// Borrow takes one spare buffer from the pool, copies src into it, and
// returns a slice of the copy sized to len(src). ok is false when the pool
// is exhausted — the store path must treat that as a rejection.
func (p *SparePool) Borrow(src []byte) (buf []byte, ok bool) {
	p.mu.Lock()
	n := len(p.free)
	if n == 0 {
		p.mu.Unlock()
		return nil, false
	}
	b := p.free[n-1]
	p.free = p.free[:n-1]
	p.mu.Unlock()

	copy(b, src)
	return b[:len(src)], true
}

// Return hands a buffer previously obtained from Borrow back to the pool.
func (p *SparePool) Return(buf []byte) {
	full := buf[:cap(buf)]
	p.mu.Lock()
	p.free = append(p.free, full)
	p.mu.Unlock()
}

// Available reports how many spare buffers are currently free (observability
// only; not used on any decision path).
func (p *SparePool) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}
