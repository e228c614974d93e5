package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func payload() []byte {
	// Compressible: long repeated run plus a little noise at the tail.
	p := bytes.Repeat([]byte("A"), 3000)
	return append(p, []byte("the quick brown fox jumps over")...)
}

func TestRoundTripAllCodecs(t *testing.T) {
	for _, name := range []string{"zstd", "lz4", "snappy"} {
		t.Run(name, func(t *testing.T) {
			c, fallback := New(name)
			require.False(t, fallback)
			require.Equal(t, name, c.Name())

			src := payload()
			compressed, err := c.Compress(make([]byte, 0, len(src)), src)
			require.NoError(t, err)
			require.Less(t, len(compressed), len(src), "a compressible payload should shrink")

			decoded, err := c.Decompress(make([]byte, 0, len(src)), compressed)
			require.NoError(t, err)
			require.Equal(t, src, decoded)
		})
	}
}

func TestUnknownNameFallsBackToSnappy(t *testing.T) {
	c, fallback := New("bogus-codec")
	require.True(t, fallback)
	require.Equal(t, "snappy", c.Name())
}

func TestEmptyNameSelectsDefaultWithoutFallbackFlag(t *testing.T) {
	c, fallback := New("")
	require.False(t, fallback)
	require.Equal(t, DefaultName, c.Name())
}
