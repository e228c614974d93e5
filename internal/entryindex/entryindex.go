// Package entryindex implements the per-swap-type entry index and the
// refcount protocol layered over it: a hash map keyed by swap offset
// (lookup by offset only; entries are not kept in offset order), a
// doubly-linked approximate-LRU list, and the single mutex that serializes
// mutation of both plus every read/write of an entry's refcount.
//
// "Caller holds the lock, this package mutates metadata lock-free" is the
// same shape a CLOCK-Pro-based eviction tracker would use, but the eviction
// policy here is a literal container/list-backed LRU rather than a hot/cold/
// test state machine — the lock-discipline convention and the
// duplicate-insert signalling shape are what carries over.
//
// © 2025 zcache authors. MIT License.
package entryindex

import (
	"container/list"
	"sync"

	"github.com/ashgrove/zcache/internal/cos"
)

// Entry is the core per-offset record. Refcount and LRU linkage are
// unexported: every mutation happens through Index methods, which is what
// lets the package's doc comments promise "always mutated under the Index
// lock" as an actual invariant rather than a convention callers must
// remember.
type Entry struct {
	Offset uint64
	Handle cos.Handle
	Length uint32

	refcount int32
	lruElem  *list.Element // nil when not linked into the LRU (being serviced)
}

// Refcount returns the entry's current refcount. Callers must hold the
// owning Index's lock.
func (e *Entry) Refcount() int32 { return e.refcount }

// Index is the per-swap-type index of live compressed entries.
type Index struct {
	mu       sync.Mutex
	SwapType uint8
	byOffset map[uint64]*Entry
	lru      *list.List // front = least recently used; new/touched entries go to the back, writeback dequeues from the front
	Store    *cos.Store
}

// New constructs an empty Index for swapType, backed by store.
func New(swapType uint8, store *cos.Store) *Index {
	return &Index{
		SwapType: swapType,
		byOffset: make(map[uint64]*Entry),
		lru:      list.New(),
		Store:    store,
	}
}

// Lock / Unlock expose the Index mutex directly to callers (pkg/zcache's
// store/load/invalidate paths) that need to bracket several index
// operations plus a non-index decision (e.g. a duplicate-removal retry loop)
// inside one critical section.
func (idx *Index) Lock()   { idx.mu.Lock() }
func (idx *Index) Unlock() { idx.mu.Unlock() }

// Lookup returns the live entry at offset, if any. Caller must hold the lock.
func (idx *Index) Lookup(offset uint64) (*Entry, bool) {
	e, ok := idx.byOffset[offset]
	return e, ok
}

// Insert publishes a brand-new entry with refcount 1 (the index's own
// reference) keyed by e.Offset. If an entry already occupies that offset, it
// is returned as existing and duplicate is true — the caller owns
// removing it as part of its own duplicate-replace loop. Insert never
// overwrites an existing entry itself. Caller must hold the lock.
func (idx *Index) Insert(e *Entry) (existing *Entry, duplicate bool) {
	if old, ok := idx.byOffset[e.Offset]; ok {
		return old, true
	}
	e.refcount = 1
	idx.byOffset[e.Offset] = e
	e.lruElem = idx.lru.PushBack(e)
	return nil, false
}

// RemoveFromMap unlinks e from both the map and the LRU (if linked) without
// touching its refcount. Used by the invalidate and duplicate-replace paths
// immediately before they drop the index's own reference. Caller must hold
// the lock.
func (idx *Index) RemoveFromMap(e *Entry) {
	delete(idx.byOffset, e.Offset)
	idx.unlinkLRU(e)
}

// Get increments e's refcount; used by any path that intends to release the
// lock while continuing to touch e. Caller must hold the lock.
func (idx *Index) Get(e *Entry) int32 {
	e.refcount++
	return e.refcount
}

// Put decrements e's refcount and returns the new value. Caller must hold
// the lock.
func (idx *Index) Put(e *Entry) int32 {
	e.refcount--
	return e.refcount
}

// UnlinkLRU removes e from the LRU while leaving it in the map — the "being
// serviced" state a load or writeback puts an entry into for the duration of
// its blocking work. Caller must hold the lock.
func (idx *Index) UnlinkLRU(e *Entry) { idx.unlinkLRU(e) }

func (idx *Index) unlinkLRU(e *Entry) {
	if e.lruElem != nil {
		idx.lru.Remove(e.lruElem)
		e.lruElem = nil
	}
}

// PushLRUTail re-links e at the LRU tail (the most-recently-used end; new
// entries are inserted at the tail and the writeback engine dequeues from
// the head). Caller must hold the lock.
func (idx *Index) PushLRUTail(e *Entry) {
	if e.lruElem != nil {
		idx.lru.Remove(e.lruElem)
	}
	e.lruElem = idx.lru.PushBack(e)
}

// PopLRUHead removes and returns the least-recently-used entry still linked
// into the LRU, or nil if the LRU is empty. The entry remains in the map.
// Caller must hold the lock.
func (idx *Index) PopLRUHead() *Entry {
	front := idx.lru.Front()
	if front == nil {
		return nil
	}
	e := front.Value.(*Entry)
	idx.lru.Remove(front)
	e.lruElem = nil
	return e
}

// Len returns the number of live entries. Caller must hold the lock.
func (idx *Index) Len() int { return len(idx.byOffset) }

// Drain removes and returns every live entry in arbitrary order, resetting
// both the map and LRU to empty. Used by whole-area invalidate, whose caller
// guarantees no concurrent store/load/invalidate races in. Caller must hold
// the lock.
func (idx *Index) Drain() []*Entry {
	out := make([]*Entry, 0, len(idx.byOffset))
	for _, e := range idx.byOffset {
		out = append(out, e)
	}
	idx.byOffset = make(map[uint64]*Entry)
	idx.lru = list.New()
	return out
}
