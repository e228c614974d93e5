// Package codec treats compression as a pure byte-buffer transform, isolated
// from the cache engine itself so the compression algorithm can be swapped
// without touching admission, storage, or writeback logic.
//
// Grounded on klauspost/compress/zstd, compress-once / decompress into a
// caller-owned destination, with golang/snappy and pierrec/lz4 wired in as
// alternate codecs selectable by boot-time name with fallback to a built-in
// default.
//
// © 2025 zcache authors. MIT License.
package codec

import "fmt"

// Codec is a pure byte-buffer transform: Compress writes the compressed form
// of src into dst (which must have capacity for the worst case) and returns
// the slice actually written; Decompress writes the decompressed form of src
// into dst and returns the slice actually written. Neither method may block
// on I/O — both run inside the cache's non-sleepable compression window.
type Codec interface {
	Name() string
	Compress(dst, src []byte) ([]byte, error)
	Decompress(dst, src []byte) ([]byte, error)
}

// DefaultName is the built-in default codec — always available, never fails
// to register, used whenever the boot-time requested codec name does not
// resolve.
const DefaultName = "snappy"

// New resolves a codec by name, falling back to DefaultName (and logging the
// fallback at the boot layer) when the name is unknown.
func New(name string) (c Codec, usedFallback bool) {
	switch name {
	case "zstd":
		return newZstd(), false
	case "lz4":
		return newLZ4(), false
	case "snappy", "":
		return newSnappy(), name != "" && name != DefaultName
	default:
		return newSnappy(), true
	}
}

// ErrShortBuffer is returned when dst cannot hold the transform's output.
type ErrShortBuffer struct {
	Need, Have int
}

func (e ErrShortBuffer) Error() string {
	return fmt.Sprintf("codec: destination buffer too small: need %d, have %d", e.Need, e.Have)
}
