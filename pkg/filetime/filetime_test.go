package filetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cases := []time.Time{
		time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC),
		time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2038, 1, 19, 3, 14, 7, 500, time.UTC),
	}
	for _, tc := range cases {
		ft := FromTime(tc)
		got := ToTime(ft)
		require.WithinDuration(t, tc, got, time.Microsecond)
	}
}

func TestUnixEpochFiletime(t *testing.T) {
	require.Equal(t, int64(epochDelta), FromTime(time.Unix(0, 0).UTC()))
}

func TestNowIsPlausible(t *testing.T) {
	ft := Now()
	got := ToTime(ft)
	require.WithinDuration(t, time.Now(), got, time.Second)
}
