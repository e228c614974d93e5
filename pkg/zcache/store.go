// store.go implements the admission/store path: compress, check the ratio,
// allocate storage (reclaiming via writeback on pressure), and publish.
//
// © 2025 zcache authors. MIT License.
package zcache

import (
	"sync"

	"go.uber.org/zap"

	"github.com/ashgrove/zcache/internal/entryindex"
	"github.com/ashgrove/zcache/internal/pagepool"
	"github.com/ashgrove/zcache/internal/scratch"
)

var workerPool = sync.Pool{New: func() any { return scratch.NewWorker() }}

// Store attempts to compress and admit src (a full pagepool.PageSize page)
// at (swapType, offset). It returns RejectNone on success; any other
// RejectReason means src was not cached and the host must fall through to
// the real swap device.
func (c *Cache) Store(swapType uint8, offset uint64, src []byte) RejectReason {
	slot := c.slot(swapType)
	if slot == nil {
		c.metrics.incRejection(swapType, RejectNoDevice)
		return RejectNoDevice
	}

	// Allocate the entry record. Under Go's GC this allocation cannot
	// meaningfully fail the way a kernel slab allocator can, so
	// RejectEntryAlloc is never actually returned in practice; the reason is
	// kept in the enum since it's part of the rejection vocabulary callers
	// switch on.
	ent := &entryindex.Entry{Offset: offset}

	// Compress into the per-worker scratch buffer.
	worker := workerPool.Get().(*scratch.Worker)
	buf := worker.Acquire()
	compressed, err := c.codec.Compress(buf, src)
	if err != nil {
		worker.Release()
		workerPool.Put(worker)
		c.metrics.incRejection(swapType, RejectCodec)
		return RejectCodec
	}

	// Ratio check.
	if len(compressed)*100/pagepool.PageSize > c.cfg.maxCompressionRatio {
		worker.Release()
		workerPool.Put(worker)
		c.metrics.incRejection(swapType, RejectRatio)
		return RejectRatio
	}

	// Acquire compressed-object-store storage, reclaiming via writeback on
	// failure.
	handle, ok := slot.store.Alloc(len(compressed))
	held := compressed
	usingSpare := false

	if !ok {
		if !c.cfg.writebackEnabled {
			worker.Release()
			workerPool.Put(worker)
			c.metrics.incRejection(swapType, RejectNoSpace)
			return RejectNoSpace
		}

		spareBuf, sok := c.spareBufs.Borrow(compressed)
		if !sok {
			worker.Release()
			workerPool.Put(worker)
			c.metrics.incRejection(swapType, RejectSpareBuffer)
			return RejectSpareBuffer
		}
		worker.Release()
		workerPool.Put(worker)
		usingSpare = true
		held = spareBuf

		freed := c.writeback.WritebackBatch(slot.index, c.codec, c.cfg.writebackBatchSize)
		if freed > 0 {
			c.metrics.incPagesWrittenBack(swapType, uint64(freed))
		}
		c.log.Debug("zcache: store-triggered reclaim wave",
			zap.Uint8("swap_type", swapType), zap.Int("freed", freed))

		handle, ok = slot.store.Alloc(len(held))
		if !ok {
			c.spareBufs.Return(held)
			c.metrics.incRejection(swapType, RejectNoSpace)
			return RejectNoSpace
		}
	}

	// Copy compressed bytes into the handle.
	dst, unmapWrite, err := slot.store.MapWrite(handle, len(held))
	if err != nil {
		panic("zcache: map_write of freshly allocated handle failed: " + err.Error())
	}
	copy(dst, held)
	unmapWrite()

	if usingSpare {
		c.spareBufs.Return(held)
	} else {
		worker.Release()
		workerPool.Put(worker)
	}

	ent.Handle = handle
	ent.Length = uint32(len(held))

	// Publish under the Index lock, replacing any duplicate.
	slot.index.Lock()
	for {
		existing, dup := slot.index.Insert(ent)
		if !dup {
			break
		}
		slot.index.RemoveFromMap(existing)
		if slot.index.Put(existing) == 0 {
			slot.store.Free(existing.Handle)
		}
		c.metrics.incDuplicates(swapType)
	}
	storedPages := slot.index.Len()
	slot.index.Unlock()

	c.metrics.setStoredPages(swapType, int64(storedPages))
	c.metrics.setPoolPages(swapType, c.pool.LivePages())
	c.metrics.setOutstandingWritebacks(c.writeback.InFlight())

	return RejectNone
}
