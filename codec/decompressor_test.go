package codec_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dev-tony-hu/zstreams/codec"
	"github.com/dev-tony-hu/zstreams/errs"
)

func compressFrame(t *testing.T, payload []byte) []byte {
	t.Helper()

	comp := codec.NewCompressor()
	defer comp.Close()

	return compressAll(t, comp, payload)
}

func TestDecompressor_MultiFrameConcatenation(t *testing.T) {
	parts := [][]byte{
		[]byte(strings.Repeat("A", 4096)),
		[]byte(strings.Repeat("B", 4096)),
		[]byte(strings.Repeat("C", 4096)),
	}

	var blob bytes.Buffer
	var want bytes.Buffer
	for _, p := range parts {
		blob.Write(compressFrame(t, p))
		want.Write(p)
	}

	dec := codec.NewDecompressor()
	defer dec.Close()

	// Feed in awkward 1000-byte input slices; no reset between frames.
	var got bytes.Buffer
	dst := make([]byte, 3000)
	src := blob.Bytes()
	boundaries := 0
	for pos := 0; pos < len(src); {
		chunk := src[pos:min(pos+1000, len(src))]
		final := pos+len(chunk) == len(src)

		res, err := dec.Decompress(chunk, dst, final)
		require.NoError(t, err)
		pos += res.Consumed
		got.Write(dst[:res.Written])
		if res.FrameFinished {
			boundaries++
		}
		if res.Status == codec.NeedMoreData {
			require.Equal(t, len(chunk), res.Consumed, "NeedMoreData implies drained input")
		}
	}

	require.Equal(t, want.Bytes(), got.Bytes())
	require.Equal(t, len(parts), boundaries, "each frame end must be signalled exactly once")
}

func TestDecompressor_TruncationSafety(t *testing.T) {
	payload := []byte(strings.Repeat("truncation probe ", 2048))
	blob := compressFrame(t, payload)

	for _, cut := range []int{1, 3, 4, 10, len(blob) / 2, len(blob) - 1} {
		dec := codec.NewDecompressor()

		var got bytes.Buffer
		dst := make([]byte, 8192)
		src := blob[:cut]
		pos := 0
		for {
			res, err := dec.Decompress(src[pos:], dst, true)
			require.NoError(t, err, "truncated input is not a codec error, cut=%d", cut)
			pos += res.Consumed
			got.Write(dst[:res.Written])
			if res.Status != codec.DstTooSmall {
				require.False(t, res.FrameFinished, "a cut frame can never finish, cut=%d", cut)
				require.Equal(t, codec.NeedMoreData, res.Status,
					"end-of-input with an open frame reads as NeedMoreData, cut=%d", cut)
				break
			}
		}

		require.True(t, bytes.HasPrefix(payload, got.Bytes()),
			"decoded bytes must be a prefix of the original, cut=%d", cut)
		require.NoError(t, dec.Close())
	}
}

func TestDecompressor_ExactFitDestination(t *testing.T) {
	payload := []byte("exactly sized destination")
	blob := compressFrame(t, payload)

	dec := codec.NewDecompressor()
	defer dec.Close()

	dst := make([]byte, len(payload))
	res, err := dec.Decompress(blob, dst, true)
	require.NoError(t, err)
	require.True(t, res.FrameFinished)
	require.Equal(t, codec.Done, res.Status, "a finished frame is Done even with a full destination")
	require.Equal(t, payload, dst[:res.Written])
}

func TestDecompressor_WindowLogValidation(t *testing.T) {
	dec := codec.NewDecompressor()
	defer dec.Close()

	require.ErrorIs(t, dec.SetWindowLogMax(9), errs.ErrInvalidWindowLog)
	require.ErrorIs(t, dec.SetWindowLogMax(32), errs.ErrInvalidWindowLog)
	require.NoError(t, dec.SetWindowLogMax(20))

	blob := compressFrame(t, []byte("window log probe"))
	dst := make([]byte, 256)
	_, err := dec.Decompress(blob, dst, true)
	require.NoError(t, err)

	require.ErrorIs(t, dec.SetWindowLogMax(21), errs.ErrSessionActive)
	require.NoError(t, dec.Reset())
	require.NoError(t, dec.SetWindowLogMax(21), "reset must unlock the window limit")
}

func TestDecompressor_InvalidData(t *testing.T) {
	dec := codec.NewDecompressor()
	defer dec.Close()

	garbage := []byte("this is definitely not a zstd frame, not even close")
	dst := make([]byte, 256)
	_, err := dec.Decompress(garbage, dst, true)
	require.ErrorIs(t, err, errs.ErrInvalidData)
}

func TestDecompressorPool_RentReturn(t *testing.T) {
	d := codec.RentDecompressor()
	require.NotNil(t, d)

	blob := compressFrame(t, []byte("pooled decode"))
	dst := make([]byte, 256)
	res, err := d.Decompress(blob, dst, true)
	require.NoError(t, err)
	require.Equal(t, []byte("pooled decode"), dst[:res.Written])

	codec.ReturnDecompressor(d)
	codec.ReturnDecompressor(nil) // must not panic

	// A re-rented context starts a fresh session.
	d2 := codec.RentDecompressor()
	res, err = d2.Decompress(blob, dst, true)
	require.NoError(t, err)
	require.True(t, res.FrameFinished)
	require.Equal(t, []byte("pooled decode"), dst[:res.Written])
	codec.ReturnDecompressor(d2)
}

func TestDecompressor_Closed(t *testing.T) {
	dec := codec.NewDecompressor()
	require.NoError(t, dec.Close())
	require.NoError(t, dec.Close())

	_, err := dec.Decompress([]byte("x"), make([]byte, 4), true)
	require.ErrorIs(t, err, errs.ErrClosed)
	require.ErrorIs(t, dec.Reset(), errs.ErrClosed)
	require.ErrorIs(t, dec.SetWindowLogMax(20), errs.ErrClosed)
}
