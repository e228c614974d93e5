// Package writeback implements the writeback engine: it dequeues LRU
// entries, decompresses them into a fresh swap-cache page, submits that page
// to the host's swap writeback, and reconciles refcounts on completion.
//
// The in-flight ceiling is a golang.org/x/sync/semaphore.Weighted — an
// idiomatic fit for a bounded-concurrency admission gate, gating concurrent
// work through an x/sync primitive rather than a hand-rolled counter and
// condition variable.
//
// © 2025 zcache authors. MIT License.
package writeback

import (
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/ashgrove/zcache/internal/codec"
	"github.com/ashgrove/zcache/internal/entryindex"
	"github.com/ashgrove/zcache/internal/hostswap"
)

// DefaultBatchSize and DefaultInFlightCeiling are fixed constants (16 and
// 64). Kept as named constants rather than inlined magic numbers:
// DefaultBatchSize is the Cache's default writeback batch size and
// DefaultInFlightCeiling the default for NewEngine's ceiling argument.
const (
	DefaultBatchSize       = 16
	DefaultInFlightCeiling = 64
)

// Engine is the per-process writeback engine. A single Engine (and its
// in-flight semaphore) is shared across all swap-type Indexes — the
// in-flight writeback counter is cross-Index shared state by design.
type Engine struct {
	provider hostswap.Provider
	sem      *semaphore.Weighted
	inFlight atomic.Int64
	freed    atomic.Uint64
}

// NewEngine constructs a writeback engine bounding in-flight host writebacks
// to ceiling (pass DefaultInFlightCeiling for the default of 64).
func NewEngine(provider hostswap.Provider, ceiling int64) *Engine {
	return &Engine{provider: provider, sem: semaphore.NewWeighted(ceiling)}
}

// InFlight returns the current number of writebacks holding an in-flight
// slot: the slot is taken before the LRU head is dequeued and given back
// when the attempt ends without a submission or when the submitted write
// completes.
func (e *Engine) InFlight() int64 { return e.inFlight.Load() }

// Freed returns the cumulative count of entries freed by writeback.
func (e *Engine) Freed() uint64 { return e.freed.Load() }

// WritebackBatch runs up to n reclaim iterations against idx, using c to
// decompress compressed blobs before handing the plaintext page to the host.
// It returns the number of entries freed.
func (e *Engine) WritebackBatch(idx *entryindex.Index, c codec.Codec, n int) int {
	freedThisBatch := 0

	for i := 0; i < n; i++ {
		// Step 1: global in-flight ceiling.
		if !e.sem.TryAcquire(1) {
			break
		}
		e.inFlight.Add(1)

		// Step 2: dequeue the LRU head.
		idx.Lock()
		ent := idx.PopLRUHead()
		if ent == nil {
			idx.Unlock()
			e.releaseToken()
			break
		}
		idx.Get(ent)
		idx.Unlock()

		// Step 3: ask the host for the swap-cache page.
		outcome, page := e.provider.AllocatePage(idx.SwapType, ent.Offset)

		switch outcome {
		case hostswap.PageAllocFailed:
			idx.Lock()
			idx.Put(ent) // drop writeback's own reference; leave orphaned from LRU
			idx.Unlock()
			e.releaseToken()
			return freedThisBatch // stop the batch (step 3 bullet 1)

		case hostswap.PageAlreadyPresent:
			idx.Lock()
			idx.Put(ent)
			idx.PushLRUTail(ent)
			idx.Unlock()
			e.releaseToken()
			continue

		case hostswap.PageNewLocked:
			length := int(ent.Length)
			src, unmapRead, err := idx.Store.MapRead(ent.Handle, length)
			if err != nil {
				panic("writeback: map of live handle failed: " + err.Error())
			}
			decoded, err := c.Decompress(page.Data[:0:cap(page.Data)], src)
			unmapRead()
			if err != nil {
				// Invariant violation: the blob was produced by a
				// deterministic compressor from a full page; any decode
				// failure implies memory corruption.
				panic("writeback: decompression invariant violated: " + err.Error())
			}
			if len(decoded) != len(page.Data) {
				panic("writeback: decompressed length != page size")
			}
			copy(page.Data, decoded)

			e.provider.SubmitWritepage(idx.SwapType, ent.Offset, page, func(success bool) {
				e.inFlight.Add(-1)
				e.sem.Release(1)
			})

			// Step 4: reconcile refcounts.
			idx.Lock()
			rc := idx.Put(ent) // drop writeback's own reference
			rc = idx.Put(ent)  // submission succeeded: drop the index's reference too

			// Step 5: interpret the resulting refcount.
			switch rc {
			case 2:
				// concurrent load in progress; it will re-add to LRU.
			case 1:
				idx.PushLRUTail(ent)
			case 0:
				idx.RemoveFromMap(ent)
				idx.Unlock()
				idx.Store.Free(ent.Handle)
				e.freed.Add(1)
				freedThisBatch++
				continue
			case -1:
				// invalidate already removed ent from the map.
				idx.Unlock()
				idx.Store.Free(ent.Handle)
				e.freed.Add(1)
				freedThisBatch++
				continue
			default:
				panic("writeback: impossible refcount after reconciliation")
			}
			idx.Unlock()
		}
	}

	return freedThisBatch
}

func (e *Engine) releaseToken() {
	e.inFlight.Add(-1)
	e.sem.Release(1)
}
