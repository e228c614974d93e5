// Package cos implements the compressed object store: a handle-returning
// allocator for variable-sized compressed blobs backed by raw pages drawn
// from internal/pagepool. Handles are opaque and stable; mapping a handle
// pins it in a region the caller must not block within.
//
// A thin, unpooled, stats-free bulk allocator whose thread-safety is
// entirely delegated to the caller's lock, backed by ordinary
// pagepool-sourced storage rather than an arena allocator — the experimental
// goexperiment.arenas build tag it would otherwise require never compiles
// under a normal toolchain.
//
// One Store instance per swap type; no cross-instance sharing.
//
// © 2025 zcache authors. MIT License.
package cos

import (
	"errors"

	"github.com/ashgrove/zcache/internal/pagepool"
	"github.com/ashgrove/zcache/internal/unsafehelpers"
)

// ErrTooLarge is returned by MapWrite and MapRead when size exceeds a single
// page (Alloc reports an oversize request as ok=false instead). The
// admission path's compression-ratio check guarantees compressed bytes never
// exceed max_compression_ratio% of page size, so a single page always
// suffices for any blob this store is asked to hold.
var ErrTooLarge = errors.New("cos: object larger than one page")

// Handle is an opaque, stable token identifying a compressed blob. The zero
// Handle is never valid and is used as a "no handle" sentinel.
type Handle struct {
	gen uint64 // generation counter, guards against stale-handle reuse bugs
	pg  *pagepool.Page
}

// Store is a single swap type's compressed object store.
type Store struct {
	pool   *pagepool.Pool
	genCtr uint64
}

// New constructs a Store drawing pages from pool.
func New(pool *pagepool.Pool) *Store {
	return &Store{pool: pool}
}

// Alloc reserves storage for a size-byte compressed blob and returns an
// opaque handle. Returns ok=false when the backing page pool is at its
// ceiling — this is how allocation failure surfaces to the store path.
func (s *Store) Alloc(size int) (Handle, bool) {
	if size < 0 || size > pagepool.PageSize {
		return Handle{}, false
	}
	pg, ok := s.pool.Get()
	if !ok {
		return Handle{}, false
	}
	s.genCtr++
	return Handle{gen: s.genCtr, pg: pg}, true
}

// Free releases the page backing h. Freeing the zero Handle is a no-op.
func (s *Store) Free(h Handle) {
	if h.pg == nil {
		return
	}
	s.pool.Put(h.pg)
}

// MapWrite pins h's page for writing and returns a size-capped view plus an
// unmap function the caller must invoke before doing anything that could
// block — mapping windows are non-sleepable.
func (s *Store) MapWrite(h Handle, size int) ([]byte, func(), error) {
	if h.pg == nil {
		return nil, func() {}, errors.New("cos: map of zero handle")
	}
	aligned := unsafehelpers.AlignUp(uintptr(size), 8)
	if aligned > pagepool.PageSize {
		return nil, func() {}, ErrTooLarge
	}
	return h.pg.Bytes[:size], func() {}, nil
}

// MapRead pins h's page for reading and returns a size-capped read-only view
// plus an unmap function.
func (s *Store) MapRead(h Handle, size int) ([]byte, func(), error) {
	if h.pg == nil {
		return nil, func() {}, errors.New("cos: map of zero handle")
	}
	if size > pagepool.PageSize {
		return nil, func() {}, ErrTooLarge
	}
	return h.pg.Bytes[:size:size], func() {}, nil
}
