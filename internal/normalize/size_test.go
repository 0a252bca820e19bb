package normalize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSizeBinaryUnitsUse1024(t *testing.T) {
	require.Equal(t, int64(1610612736), Size("1.5GiB"))
	require.Equal(t, int64(1024), Size("1 KiB"))
	require.Equal(t, int64(2*1024*1024), Size("2 MiB"))
	require.Equal(t, int64(1024*1024*1024*1024), Size("1TiB"))
}

func TestSizeBareUnitsUse1000(t *testing.T) {
	require.Equal(t, int64(500000000), Size("500M"))
	require.Equal(t, int64(500000000), Size("500 MB"))
	require.Equal(t, int64(3400000000), Size("3.4G"))
	require.Equal(t, int64(7000), Size("7K"))
}

func TestSizeStripsSeparatorsAndWhitespace(t *testing.T) {
	require.Equal(t, int64(1234000000), Size(" 1,234 MB "))
}

func TestSizeBareNumber(t *testing.T) {
	require.Equal(t, int64(42), Size("42"))
}

func TestSizeUnparseableYieldsZero(t *testing.T) {
	require.Equal(t, int64(0), Size(""))
	require.Equal(t, int64(0), Size("garbage"))
	require.Equal(t, int64(0), Size("..GiB"))
}
