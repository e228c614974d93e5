package offsetgen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateIsDeterministicForSameSeed(t *testing.T) {
	p := Params{Dist: Zipf, Seed: 42, ZipfS: 1.2, ZipfV: 1.0}
	a, err := Generate(1000, p)
	require.NoError(t, err)
	b, err := Generate(1000, p)
	require.NoError(t, err)
	require.Equal(t, a, b, "same seed and params must produce the same sequence")
}

func TestGenerateUniformDefaultWhenDistEmpty(t *testing.T) {
	out, err := Generate(100, Params{Seed: 7})
	require.NoError(t, err)
	require.Len(t, out, 100)
}

func TestGenerateRejectsInvalidZipfParams(t *testing.T) {
	_, err := Generate(10, Params{Dist: Zipf, Seed: 1, ZipfS: 0.5, ZipfV: 1.0})
	require.Error(t, err, "s<=1 must be rejected")

	_, err = Generate(10, Params{Dist: Zipf, Seed: 1, ZipfS: 1.2, ZipfV: 0})
	require.Error(t, err, "v<=0 must be rejected")
}

func TestGenerateRejectsUnknownDist(t *testing.T) {
	_, err := Generate(10, Params{Dist: "gaussian", Seed: 1})
	require.Error(t, err)
}
