package codec

import "github.com/klauspost/compress/zstd"

// zstdCodec wraps klauspost/compress/zstd, the default codec. A single
// *zstd.Encoder/*zstd.Decoder pair is shared across goroutines:
// both EncodeAll/DecodeAll are documented by klauspost/compress as safe for
// concurrent use, unlike the streaming Write/Read API.
type zstdCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newZstd() *zstdCodec {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		panic("codec: zstd encoder init: " + err.Error())
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		panic("codec: zstd decoder init: " + err.Error())
	}
	return &zstdCodec{enc: enc, dec: dec}
}

func (*zstdCodec) Name() string { return "zstd" }

func (z *zstdCodec) Compress(dst, src []byte) ([]byte, error) {
	return z.enc.EncodeAll(src, dst[:0:cap(dst)]), nil
}

func (z *zstdCodec) Decompress(dst, src []byte) ([]byte, error) {
	return z.dec.DecodeAll(src, dst[:0:cap(dst)])
}
