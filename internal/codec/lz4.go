package codec

import "github.com/pierrec/lz4/v4"

// lz4Codec wraps pierrec/lz4/v4, offered as an optional faster/lower-ratio
// alternative to zstd — operators whose admission ratio check is tight may
// want to pick a codec to match their typical page contents.
type lz4Codec struct{}

func newLZ4() *lz4Codec { return &lz4Codec{} }

func (*lz4Codec) Name() string { return "lz4" }

func (*lz4Codec) Compress(dst, src []byte) ([]byte, error) {
	var c lz4.Compressor
	n, err := c.CompressBlock(src, dst[:cap(dst)])
	if err != nil {
		return nil, err
	}
	if n == 0 && len(src) > 0 {
		return nil, ErrShortBuffer{Need: len(src), Have: cap(dst)}
	}
	return dst[:n], nil
}

func (*lz4Codec) Decompress(dst, src []byte) ([]byte, error) {
	n, err := lz4.UncompressBlock(src, dst[:cap(dst)])
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}
