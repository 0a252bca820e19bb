package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time { return f.t }

func TestExpandDateParamDay(t *testing.T) {
	clk := fixedClock{t: time.Date(2025, 9, 1, 12, 0, 0, 0, time.Local)}

	for _, in := range []string{"2025-08-15", "2025/08/15", "20250815"} {
		days, err := ExpandDateParam(in, clk)
		require.NoError(t, err, "input %q", in)
		require.Len(t, days, 1)
		require.Equal(t, 2025, days[0].Year())
		require.Equal(t, time.August, days[0].Month())
		require.Equal(t, 15, days[0].Day())
	}
}

func TestExpandDateParamMonth(t *testing.T) {
	clk := fixedClock{t: time.Date(2025, 9, 1, 12, 0, 0, 0, time.Local)}

	days, err := ExpandDateParam("2024-02", clk)
	require.NoError(t, err)
	require.Len(t, days, 29) // leap year
	require.Equal(t, 1, days[0].Day())
	require.Equal(t, 29, days[28].Day())

	days, err = ExpandDateParam("202506", clk)
	require.NoError(t, err)
	require.Len(t, days, 30)
}

func TestExpandDateParamDefaultsToYesterday(t *testing.T) {
	clk := fixedClock{t: time.Date(2025, 9, 1, 12, 0, 0, 0, time.Local)}

	days, err := ExpandDateParam("", clk)
	require.NoError(t, err)
	require.Len(t, days, 1)
	require.Equal(t, 31, days[0].Day())
	require.Equal(t, time.August, days[0].Month())
}

func TestExpandDateParamInvalid(t *testing.T) {
	clk := fixedClock{t: time.Now()}

	_, err := ExpandDateParam("not-a-date", clk)
	require.Error(t, err)
}
