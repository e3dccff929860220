package stream_test

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/cespare/xxhash/v2"
	kpzstd "github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"

	"github.com/dev-tony-hu/zstreams/codec"
	"github.com/dev-tony-hu/zstreams/errs"
	"github.com/dev-tony-hu/zstreams/frame"
	"github.com/dev-tony-hu/zstreams/stream"
)

// decodeIndependent decodes blob with klauspost's pure-Go zstd, proving the
// emitted bytes are a conforming Zstandard stream.
func decodeIndependent(t *testing.T, blob []byte) []byte {
	t.Helper()

	dec, err := kpzstd.NewReader(nil, kpzstd.WithDecoderConcurrency(1))
	require.NoError(t, err)
	defer dec.Close()

	out, err := dec.DecodeAll(blob, nil)
	require.NoError(t, err)

	return out
}

func readAllStream(t *testing.T, blob []byte, opts ...stream.ReaderOption) []byte {
	t.Helper()

	zr, err := stream.NewReader(bytes.NewReader(blob), opts...)
	require.NoError(t, err)
	out, err := io.ReadAll(zr)
	require.NoError(t, err)
	require.NoError(t, zr.Close())

	return out
}

func TestWriter_RoundTrip(t *testing.T) {
	input := []byte(strings.Repeat("hello zstd", 100))

	var sink bytes.Buffer
	zw, err := stream.NewWriter(&sink, stream.WithLevel(3))
	require.NoError(t, err)

	n, err := zw.Write(input)
	require.NoError(t, err)
	require.Equal(t, len(input), n)
	require.NoError(t, zw.Close())

	require.Less(t, sink.Len(), len(input))
	require.Equal(t, input, decodeIndependent(t, sink.Bytes()))
	require.Equal(t, input, readAllStream(t, sink.Bytes()))
}

func TestWriter_ThreeFrames(t *testing.T) {
	payloads := [][]byte{
		[]byte(strings.Repeat("A", 4096)),
		[]byte(strings.Repeat("B", 4096)),
		[]byte(strings.Repeat("C", 4096)),
	}

	var sink bytes.Buffer
	zw, err := stream.NewWriter(&sink)
	require.NoError(t, err)

	var want bytes.Buffer
	for _, p := range payloads {
		_, err := zw.Write(p)
		require.NoError(t, err)
		require.NoError(t, zw.FlushFrame())
		want.Write(p)
	}
	require.NoError(t, zw.Close())

	infos, err := frame.Inspect(sink.Bytes())
	require.NoError(t, err)
	require.Len(t, infos, len(payloads), "close after FlushFrame must not add an empty frame")

	require.Equal(t, want.Bytes(), readAllStream(t, sink.Bytes()))
}

func TestWriter_FlushFrameStandalonePrefix(t *testing.T) {
	var sink bytes.Buffer
	zw, err := stream.NewWriter(&sink)
	require.NoError(t, err)

	first := []byte(strings.Repeat("standalone frame ", 256))
	_, err = zw.Write(first)
	require.NoError(t, err)
	require.NoError(t, zw.FlushFrame())

	// The output so far is a complete frame on its own.
	cut := sink.Len()
	second := []byte("tail data")
	_, err = zw.Write(second)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	require.Equal(t, first, decodeIndependent(t, sink.Bytes()[:cut]))
	require.Equal(t, append(append([]byte{}, first...), second...),
		decodeIndependent(t, sink.Bytes()))
}

func TestWriter_FlushFrameIdempotent(t *testing.T) {
	var sink bytes.Buffer
	zw, err := stream.NewWriter(&sink)
	require.NoError(t, err)

	_, err = zw.Write([]byte("only payload"))
	require.NoError(t, err)
	require.NoError(t, zw.FlushFrame())
	after := sink.Len()
	require.NoError(t, zw.FlushFrame(), "repeat FlushFrame must be a no-op")
	require.Equal(t, after, sink.Len())
	require.NoError(t, zw.Close())

	infos, err := frame.Inspect(sink.Bytes())
	require.NoError(t, err)
	require.Len(t, infos, 1)
}

func TestWriter_FlushKeepsFrameOpen(t *testing.T) {
	var sink bytes.Buffer
	zw, err := stream.NewWriter(&sink)
	require.NoError(t, err)

	first := []byte(strings.Repeat("before flush ", 128))
	_, err = zw.Write(first)
	require.NoError(t, err)
	require.NoError(t, zw.Flush())
	flushed := sink.Len()
	require.Positive(t, flushed, "flush must drain pending bytes to the sink")

	second := []byte(strings.Repeat("after flush ", 128))
	_, err = zw.Write(second)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	infos, err := frame.Inspect(sink.Bytes())
	require.NoError(t, err)
	require.Len(t, infos, 1, "basic flush must not terminate the frame")
	require.Equal(t, append(append([]byte{}, first...), second...),
		decodeIndependent(t, sink.Bytes()))
}

func TestWriter_ChunkedLargePayload(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	payload := make([]byte, 2*1024*1024+123)
	_, err := rng.Read(payload)
	require.NoError(t, err)

	var sink bytes.Buffer
	zw, err := stream.NewWriter(&sink, stream.WithLevel(5))
	require.NoError(t, err)

	const chunkSize = 13117
	for pos := 0; pos < len(payload); pos += chunkSize {
		end := min(pos+chunkSize, len(payload))
		n, err := zw.Write(payload[pos:end])
		require.NoError(t, err)
		require.Equal(t, end-pos, n)
	}
	require.NoError(t, zw.Close())

	restored := readAllStream(t, sink.Bytes())
	require.Equal(t, len(payload), len(restored))
	require.Equal(t, xxhash.Sum64(payload), xxhash.Sum64(restored),
		"digest mismatch after chunked round trip")
}

func TestWriter_ChunkShapeIndependence(t *testing.T) {
	payload := []byte(strings.Repeat("chunk shape independence ", 4096))

	compressWith := func(chunks []int) []byte {
		var sink bytes.Buffer
		zw, err := stream.NewWriter(&sink)
		require.NoError(t, err)
		pos := 0
		for _, c := range chunks {
			end := min(pos+c, len(payload))
			_, err := zw.Write(payload[pos:end])
			require.NoError(t, err)
			pos = end
		}
		for pos < len(payload) {
			end := min(pos+997, len(payload))
			_, err := zw.Write(payload[pos:end])
			require.NoError(t, err)
			pos = end
		}
		require.NoError(t, zw.Close())

		return sink.Bytes()
	}

	a := compressWith([]int{1, 2, 3, 50000})
	b := compressWith([]int{65536, 11})
	require.Equal(t, payload, decodeIndependent(t, a))
	require.Equal(t, payload, decodeIndependent(t, b))
}

func TestWriter_PrefixOption(t *testing.T) {
	prefix := []byte("HEADER-1234567890-ABCDEFG")
	payload := append(append([]byte{}, prefix...),
		bytes.Repeat([]byte("HEADER-1234-0-XYZ-"), 200)...)

	sizeOf := func(opts ...stream.WriterOption) int {
		var sink bytes.Buffer
		zw, err := stream.NewWriter(&sink, opts...)
		require.NoError(t, err)
		_, err = zw.Write(payload)
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		return sink.Len()
	}

	require.LessOrEqual(t, sizeOf(stream.WithPrefix(prefix)), sizeOf())
}

// gatedSink blocks inside Write until released, keeping the writer's
// exclusivity token held.
type gatedSink struct {
	entered chan struct{}
	release chan struct{}
	once    bool
	buf     bytes.Buffer
}

func (g *gatedSink) Write(p []byte) (int, error) {
	if !g.once {
		g.once = true
		close(g.entered)
		<-g.release
	}

	return g.buf.Write(p)
}

func TestWriter_Exclusivity(t *testing.T) {
	sink := &gatedSink{entered: make(chan struct{}), release: make(chan struct{})}
	zw, err := stream.NewWriter(sink)
	require.NoError(t, err)

	payload := []byte(strings.Repeat("exclusive ", 64))
	writeDone := make(chan error, 1)
	go func() {
		if _, err := zw.Write(payload); err != nil {
			writeDone <- err
			return
		}
		writeDone <- zw.Flush() // forces a sink write that blocks on the gate
	}()

	<-sink.entered

	// The in-progress operation holds the slot: everything else fails fast.
	_, err = zw.Write([]byte("again"))
	require.ErrorIs(t, err, errs.ErrConcurrentUse)
	require.ErrorIs(t, zw.Flush(), errs.ErrConcurrentUse)
	require.ErrorIs(t, zw.FlushFrame(), errs.ErrConcurrentUse)
	require.ErrorIs(t, zw.Close(), errs.ErrConcurrentUse)

	close(sink.release)
	require.NoError(t, <-writeDone, "the rejected calls must not disturb the in-progress one")
	require.NoError(t, zw.Close())

	require.Equal(t, payload, decodeIndependent(t, sink.buf.Bytes()))
}

func TestWriter_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var sink bytes.Buffer
	zw, err := stream.NewWriter(&sink, stream.WithWriterContext(ctx))
	require.NoError(t, err)

	n, err := zw.Write([]byte("never arrives"))
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, n, "a cancelled write must make zero progress")
	require.Zero(t, sink.Len())
	require.ErrorIs(t, zw.Flush(), context.Canceled)
}

type closeRecorder struct {
	bytes.Buffer
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestWriter_LeaveOpen(t *testing.T) {
	t.Run("default closes the sink", func(t *testing.T) {
		sink := &closeRecorder{}
		zw, err := stream.NewWriter(sink)
		require.NoError(t, err)
		require.NoError(t, zw.Close())
		require.True(t, sink.closed)
	})

	t.Run("leave-open keeps the sink", func(t *testing.T) {
		sink := &closeRecorder{}
		zw, err := stream.NewWriter(sink, stream.WithWriterLeaveOpen())
		require.NoError(t, err)
		require.NoError(t, zw.Close())
		require.False(t, sink.closed)
	})
}

func TestWriter_ClosedErrors(t *testing.T) {
	var sink bytes.Buffer
	zw, err := stream.NewWriter(&sink)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, zw.Close(), "double close is a no-op")

	_, err = zw.Write([]byte("x"))
	require.ErrorIs(t, err, errs.ErrClosed)
	require.ErrorIs(t, zw.Flush(), errs.ErrClosed)
	require.ErrorIs(t, zw.FlushFrame(), errs.ErrClosed)
}

func TestWriter_OptionValidation(t *testing.T) {
	var sink bytes.Buffer

	_, err := stream.NewWriter(&sink, stream.WithQuality(codec.Quality(99)))
	require.ErrorIs(t, err, errs.ErrInvalidQuality)

	_, err = stream.NewWriter(&sink, stream.WithLevel(1_000_000))
	require.ErrorIs(t, err, errs.ErrInvalidLevel)

	_, err = stream.NewWriter(&sink, stream.WithWriterBufferSize(0))
	require.Error(t, err)

	zw, err := stream.NewWriter(&sink, stream.WithQuality(codec.QualityMaximum),
		stream.WithWriterBufferSize(4096))
	require.NoError(t, err)
	_, err = zw.Write([]byte("quality maximum"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.Equal(t, []byte("quality maximum"), decodeIndependent(t, sink.Bytes()))
}
