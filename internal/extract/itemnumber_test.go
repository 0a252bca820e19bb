package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestItemNumberStrictPattern(t *testing.T) {
	require.Equal(t, "ABC-123", ItemNumber("Some release ABC-123 uncensored"))
	require.Equal(t, "ABP-4K-001", ItemNumber("abp-4k-001 special"))
}

func TestItemNumberCompactPatternInsertsHyphen(t *testing.T) {
	require.Equal(t, "ABC-1234", ItemNumber("watch abc1234 now online for free"))
}

func TestItemNumberShortTitleFallback(t *testing.T) {
	require.Equal(t, "SHORT TITLE", ItemNumber(" short title "))
}

func TestItemNumberLongUnmatchedTitleIsEmpty(t *testing.T) {
	require.Equal(t, "", ItemNumber("a very long title without any catalog code in it"))
}

func TestItemNumberStrictOnly(t *testing.T) {
	require.Equal(t, "ABC-123", ItemNumberStrict("release ABC-123"))
	require.Equal(t, "", ItemNumberStrict("abc1234 compact codes are ignored"))
	require.Equal(t, "", ItemNumberStrict("tiny"))
}
