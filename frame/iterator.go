package frame

import (
	"context"
	"fmt"
	"io"
	"iter"

	"github.com/dev-tony-hu/zstreams/codec"
	"github.com/dev-tony-hu/zstreams/errs"
	"github.com/dev-tony-hu/zstreams/internal/cgozstd"
	"github.com/dev-tony-hu/zstreams/internal/options"
	"github.com/dev-tony-hu/zstreams/internal/pool"
)

// Frame is one fully decoded member of a concatenated stream.
type Frame struct {
	Info Info

	// Data is the decompressed content; empty for skippable frames. The
	// slice is owned by the receiver.
	Data []byte
}

// initialFrameBufferSize seeds the doubling output buffer per frame.
const initialFrameBufferSize = 64 * 1024

// IterConfig collects the settings of a Frames iteration.
type IterConfig struct {
	maxFrameSize int
	bufferSize   int
}

// IterOption configures a Frames iteration.
type IterOption = options.Option[*IterConfig]

// WithMaxFrameSize caps the decoded size of a single frame. Iteration fails
// with errs.ErrFrameTooLarge when a frame exceeds it. Zero means unlimited.
func WithMaxFrameSize(n int) IterOption {
	return options.New(func(c *IterConfig) error {
		if n < 0 {
			return fmt.Errorf("invalid max frame size %d", n)
		}
		c.maxFrameSize = n

		return nil
	})
}

// WithIterBufferSize overrides the pooled input scratch size (default
// 64KiB). The span must hold at least a whole frame header, so sizes below
// 1KiB are rejected.
func WithIterBufferSize(size int) IterOption {
	return options.New(func(c *IterConfig) error {
		if size < 1024 {
			return fmt.Errorf("invalid buffer size %d: need at least 1024", size)
		}
		c.bufferSize = size

		return nil
	})
}

// Frames decodes the members of src one at a time and yields each complete
// frame together with its metadata. The decoder is reset between members, so
// a fresh frame header is expected after every yield. Cancellation is polled
// between source reads; a cancelled iteration yields ctx.Err() and stops.
//
// Frames reporting zero decoded bytes from at most 8 consumed bytes are
// considered spurious and are swallowed rather than yielded.
func Frames(ctx context.Context, src io.Reader, opts ...IterOption) iter.Seq2[*Frame, error] {
	return func(yield func(*Frame, error) bool) {
		cfg := &IterConfig{bufferSize: pool.ScratchDefaultSize}
		if err := options.Apply(cfg, opts...); err != nil {
			yield(nil, err)
			return
		}

		it := &frameIterator{
			ctx:    ctx,
			src:    src,
			dec:    codec.RentDecompressor(),
			inBuf:  pool.GetScratch(cfg.bufferSize),
			maxOut: cfg.maxFrameSize,
		}
		defer it.release()

		for {
			f, err := it.next()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if f == nil {
				continue // spurious empty frame, swallowed
			}
			if !yield(f, nil) {
				return
			}
			if err := it.dec.Reset(); err != nil {
				yield(nil, err)
				return
			}
		}
	}
}

type frameIterator struct {
	ctx    context.Context
	src    io.Reader
	dec    *codec.Decompressor
	inBuf  []byte
	maxOut int

	inStart int
	inEnd   int
	srcEOF  bool
	offset  int64
}

func (it *frameIterator) release() {
	pool.PutScratch(it.inBuf)
	codec.ReturnDecompressor(it.dec)
}

// next decodes one member. It returns (nil, io.EOF) at a clean end of the
// source, (nil, nil) for a swallowed spurious frame, and otherwise either a
// complete frame or a hard error.
func (it *frameIterator) next() (*Frame, error) {
	if err := it.ctx.Err(); err != nil {
		return nil, err
	}

	if it.inStart == it.inEnd && !it.srcEOF {
		if err := it.refill(); err != nil {
			return nil, err
		}
	}
	if it.inStart == it.inEnd && it.srcEOF {
		return nil, io.EOF
	}

	out := make([]byte, initialOut(it.maxOut))
	outLen := 0
	consumed := int64(0)
	var info Info
	headerDone := false

	for {
		// The header query must run against the input window before the
		// decoder consumes any frame bytes, so a short window refills
		// instead of decoding.
		if !headerDone {
			if it.inEnd > it.inStart {
				hdr, err := cgozstd.GetFrameHeader(it.inBuf[it.inStart:it.inEnd])
				switch {
				case err == nil:
					info = infoFromHeader(hdr, it.offset, 0)
					headerDone = true
				case !cgozstd.IsSrcSizeWrong(err):
					return nil, fmt.Errorf("%w: frame header at offset %d: %w", errs.ErrInvalidData, it.offset, err)
				}
			}
			if !headerDone {
				if it.srcEOF {
					return nil, fmt.Errorf("%w: frame at offset %d", errs.ErrTruncated, it.offset)
				}
				if err := it.refill(); err != nil {
					return nil, err
				}
				continue
			}
		}

		res, err := it.dec.Decompress(it.inBuf[it.inStart:it.inEnd], out[outLen:], it.srcEOF)
		if err != nil {
			return nil, err
		}
		it.inStart += res.Consumed
		consumed += int64(res.Consumed)
		outLen += res.Written

		if res.FrameFinished {
			it.offset += consumed
			if outLen == 0 && consumed <= 8 {
				return nil, nil
			}
			info.CompressedSize = consumed

			return &Frame{Info: info, Data: out[:outLen]}, nil
		}

		switch res.Status {
		case codec.DstTooSmall:
			grown, err := it.grow(out, outLen)
			if err != nil {
				return nil, err
			}
			out = grown
		case codec.NeedMoreData:
			if it.srcEOF && it.inStart == it.inEnd {
				return nil, fmt.Errorf("%w: frame at offset %d", errs.ErrTruncated, it.offset)
			}
			if err := it.refill(); err != nil {
				return nil, err
			}
		}
	}
}

func (it *frameIterator) grow(out []byte, outLen int) ([]byte, error) {
	if it.maxOut > 0 && len(out) >= it.maxOut {
		return nil, fmt.Errorf("%w: frame at offset %d exceeds %d bytes", errs.ErrFrameTooLarge, it.offset, it.maxOut)
	}

	newSize := 2 * len(out)
	if it.maxOut > 0 && newSize > it.maxOut {
		newSize = it.maxOut
	}
	grown := make([]byte, newSize)
	copy(grown, out[:outLen])

	return grown, nil
}

func (it *frameIterator) refill() error {
	if err := it.ctx.Err(); err != nil {
		return err
	}

	if it.inStart > 0 {
		copy(it.inBuf, it.inBuf[it.inStart:it.inEnd])
		it.inEnd -= it.inStart
		it.inStart = 0
	}

	n, err := it.src.Read(it.inBuf[it.inEnd:])
	it.inEnd += n
	switch {
	case err == io.EOF:
		it.srcEOF = true
	case err != nil:
		return err
	}

	return nil
}

func initialOut(maxOut int) int {
	if maxOut > 0 && maxOut < initialFrameBufferSize {
		return maxOut
	}

	return initialFrameBufferSize
}
