package codec

import "github.com/golang/snappy"

// snappyCodec wraps golang/snappy: no external C dependency, smallest fixed
// memory footprint of the three codecs this package wires in, which is why
// it is the always-available fallback.
type snappyCodec struct{}

func newSnappy() *snappyCodec { return &snappyCodec{} }

func (*snappyCodec) Name() string { return "snappy" }

func (*snappyCodec) Compress(dst, src []byte) ([]byte, error) {
	// snappy.Encode, like Decode, checks len(dst) rather than cap(dst) before
	// writing into the caller's buffer, so hand it the full-length view.
	return snappy.Encode(dst[:cap(dst)], src), nil
}

func (*snappyCodec) Decompress(dst, src []byte) ([]byte, error) {
	// snappy.Decode keys off len(dst), not cap(dst), to decide whether it can
	// reuse the caller's buffer, so hand it the full-length view.
	return snappy.Decode(dst[:cap(dst)], src)
}
