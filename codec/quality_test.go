package codec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dev-tony-hu/zstreams/codec"
	"github.com/dev-tony-hu/zstreams/errs"
	"github.com/dev-tony-hu/zstreams/internal/cgozstd"
)

func TestQuality_LevelMapping(t *testing.T) {
	cases := []struct {
		quality codec.Quality
		want    int
	}{
		{codec.QualityNone, cgozstd.MinLevel()},
		{codec.QualityFastest, cgozstd.MinLevel()},
		{codec.QualityDefault, cgozstd.DefaultLevel()},
		{codec.QualityMaximum, cgozstd.MaxLevel()},
	}

	for _, tc := range cases {
		t.Run(tc.quality.String(), func(t *testing.T) {
			level, err := tc.quality.Level()
			require.NoError(t, err)
			require.Equal(t, tc.want, level)
		})
	}
}

func TestQuality_Invalid(t *testing.T) {
	_, err := codec.Quality(42).Level()
	require.ErrorIs(t, err, errs.ErrInvalidQuality)
	require.Equal(t, "Unknown", codec.Quality(42).String())
}

func TestStatus_String(t *testing.T) {
	require.Equal(t, "Done", codec.Done.String())
	require.Equal(t, "DstTooSmall", codec.DstTooSmall.String())
	require.Equal(t, "NeedMoreData", codec.NeedMoreData.String())
}
