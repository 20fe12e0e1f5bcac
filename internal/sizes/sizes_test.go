package sizes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestForAlgorithm(t *testing.T) {
	t.Parallel()

	gz, err := ForAlgorithm(AlgorithmGzip)
	require.NoError(t, err)
	require.Equal(t, AlgorithmGzip, gz.Name())

	lz, err := ForAlgorithm(AlgorithmLZ4)
	require.NoError(t, err)
	require.Equal(t, AlgorithmLZ4, lz.Name())

	_, err = ForAlgorithm("zstd")
	require.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestCompressedSizeDeterministic(t *testing.T) {
	t.Parallel()

	src := strings.Repeat("var a = 1;\n", 200)

	for _, compressor := range []Compressor{Gzip{}, LZ4{}} {
		first, err := compressor.CompressedSize(src)
		require.NoError(t, err)
		require.Positive(t, first)

		second, err := compressor.CompressedSize(src)
		require.NoError(t, err)
		require.Equal(t, first, second, "%s must be deterministic", compressor.Name())

		// Highly repetitive input must compress well below its raw length.
		require.Less(t, first, int64(len(src)), "%s should shrink repetitive input", compressor.Name())
	}
}

func TestCompressedSizeEmptyInput(t *testing.T) {
	t.Parallel()

	for _, compressor := range []Compressor{Gzip{}, LZ4{}} {
		n, err := compressor.CompressedSize("")
		require.NoError(t, err)
		// Frame headers alone occupy a few bytes.
		require.Positive(t, n, "%s frame overhead", compressor.Name())
	}
}
