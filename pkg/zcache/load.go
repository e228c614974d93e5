// load.go implements the load (fault-in) path.
//
// © 2025 zcache authors. MIT License.
package zcache

// Load looks up (swapType, offset) and, on hit, decompresses directly into
// dst (a caller-owned, pagepool.PageSize-capacity destination). Returns
// true on hit, false on miss — a miss is not an error: the entry may have
// been written back, and the caller is expected to fall through to the real
// swap device.
func (c *Cache) Load(swapType uint8, offset uint64, dst []byte) bool {
	slot := c.slot(swapType)
	if slot == nil {
		return false
	}

	slot.index.Lock()
	ent, ok := slot.index.Lookup(offset)
	if !ok {
		slot.index.Unlock()
		return false
	}
	slot.index.Get(ent)
	slot.index.UnlinkLRU(ent)
	slot.index.Unlock()

	src, unmapRead, err := slot.index.Store.MapRead(ent.Handle, int(ent.Length))
	if err != nil {
		panic("zcache: map_read of live handle failed: " + err.Error())
	}
	decoded, err := c.codec.Decompress(dst[:0:cap(dst)], src)
	unmapRead()
	if err != nil {
		// Invariant violation: a live entry's blob must decompress cleanly.
		panic("zcache: decompression invariant violated: " + err.Error())
	}
	if len(decoded) != cap(dst) && len(decoded) != len(dst) {
		panic("zcache: decompressed length mismatch")
	}
	if &decoded[0] != &dst[0] {
		copy(dst, decoded)
	}

	slot.index.Lock()
	rc := slot.index.Put(ent)
	if rc > 0 {
		slot.index.PushLRUTail(ent)
		slot.index.Unlock()
		return true
	}
	// Orphaned by a racing invalidate: free it. The caller already has the
	// page, so this is still a hit.
	slot.index.Unlock()
	slot.index.Store.Free(ent.Handle)
	return true
}
