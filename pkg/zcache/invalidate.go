// invalidate.go implements the single-page and whole-area invalidate paths.
//
// © 2025 zcache authors. MIT License.
package zcache

// InvalidatePage removes (swapType, offset) from the cache, if present.
// Non-blocking. After return, no Load(swapType, offset, _) will hit until a
// new Store succeeds for that offset.
func (c *Cache) InvalidatePage(swapType uint8, offset uint64) {
	slot := c.slot(swapType)
	if slot == nil {
		return
	}

	slot.index.Lock()
	ent, ok := slot.index.Lookup(offset)
	if !ok {
		slot.index.Unlock()
		return
	}
	slot.index.RemoveFromMap(ent)
	rc := slot.index.Put(ent)
	if rc > 0 {
		// A concurrent writeback or load still holds a reference and will
		// free on its own path out.
		slot.index.Unlock()
		return
	}
	slot.index.Unlock()
	slot.index.Store.Free(ent.Handle)
}

// InvalidateArea wipes every entry for swapType. Caller guarantees no
// concurrent Store/Load/InvalidatePage races in (the host's swap-device
// teardown path holds the required exclusion). After return the Index for
// swapType contains no entries and pool pages attributable to its
// compressed object store are returned.
func (c *Cache) InvalidateArea(swapType uint8) {
	slot := c.slot(swapType)
	if slot == nil {
		return
	}

	slot.index.Lock()
	drained := slot.index.Drain()
	slot.index.Unlock()

	for _, ent := range drained {
		slot.store.Free(ent.Handle)
	}

	c.metrics.setStoredPages(swapType, 0)
	c.metrics.setPoolPages(swapType, c.pool.LivePages())
}
