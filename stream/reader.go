package stream

import (
	"context"
	"io"

	"github.com/dev-tony-hu/zstreams/codec"
	"github.com/dev-tony-hu/zstreams/errs"
	"github.com/dev-tony-hu/zstreams/internal/options"
	"github.com/dev-tony-hu/zstreams/internal/pool"
)

// Reader decompresses a concatenation of zstd frames from an underlying
// source, continuing transparently across frame boundaries. It implements
// io.ReadCloser.
//
// A truncated source surfaces as a short stream: Read returns io.EOF with
// fewer total bytes than the payload once had, never an error. Integrity
// checking is the caller's responsibility.
//
// A Reader is single-owner; concurrent calls fail with errs.ErrConcurrentUse.
type Reader struct {
	src io.Reader
	dec *codec.Decompressor
	ctx context.Context

	inBuf   []byte
	inStart int
	inEnd   int
	srcEOF  bool

	guard     opGuard
	leaveOpen bool
	closed    bool
}

// NewReader creates a decompressing Reader over r.
func NewReader(r io.Reader, opts ...ReaderOption) (*Reader, error) {
	cfg := defaultReaderConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	dec := codec.NewDecompressor()
	if cfg.windowLogMax != 0 {
		if err := dec.SetWindowLogMax(cfg.windowLogMax); err != nil {
			_ = dec.Close()
			return nil, err
		}
	}

	return &Reader{
		src:       r,
		dec:       dec,
		ctx:       cfg.ctx,
		inBuf:     pool.GetScratch(cfg.bufferSize),
		leaveOpen: cfg.leaveOpen,
	}, nil
}

// Read fills p with decompressed bytes, refilling the input scratch from the
// source as needed. It returns io.EOF once the source is depleted and all
// decodable bytes have been delivered.
func (zr *Reader) Read(p []byte) (int, error) {
	if err := zr.guard.enter(); err != nil {
		return 0, err
	}
	defer zr.guard.exit()

	if zr.closed {
		return 0, errs.ErrClosed
	}
	if err := zr.ctx.Err(); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}

	produced := 0
	for {
		if zr.inStart == zr.inEnd && !zr.srcEOF {
			if err := zr.refill(); err != nil {
				return produced, err
			}
		}

		res, err := zr.dec.Decompress(zr.inBuf[zr.inStart:zr.inEnd], p[produced:], zr.srcEOF)
		if err != nil {
			return produced, err
		}
		zr.inStart += res.Consumed
		produced += res.Written

		switch res.Status {
		case codec.DstTooSmall:
			return produced, nil
		case codec.NeedMoreData:
			if zr.srcEOF && zr.inStart == zr.inEnd {
				// Depleted source with an open frame: truncated stream,
				// observed as a plain end of stream.
				return zr.atEOF(produced)
			}
		case codec.Done:
			if produced == len(p) {
				return produced, nil
			}
			if zr.srcEOF && zr.inStart == zr.inEnd {
				return zr.atEOF(produced)
			}
			// Frame finished with input left over: the next iteration
			// starts decoding the following frame.
		}
	}
}

func (zr *Reader) atEOF(produced int) (int, error) {
	if produced > 0 {
		return produced, nil
	}

	return 0, io.EOF
}

func (zr *Reader) refill() error {
	if err := zr.ctx.Err(); err != nil {
		return err
	}

	n, err := zr.src.Read(zr.inBuf)
	zr.inStart = 0
	zr.inEnd = n
	switch {
	case err == io.EOF:
		zr.srcEOF = true
	case err != nil:
		return err
	case n == 0:
		// A zero-byte read without error; try again on the next loop turn.
	}

	return nil
}

// Reset discards buffered input and resets the decoder so the next Read
// starts a fresh frame from whatever follows in the underlying source.
func (zr *Reader) Reset() error {
	if err := zr.guard.enter(); err != nil {
		return err
	}
	defer zr.guard.exit()

	if zr.closed {
		return errs.ErrClosed
	}
	if err := zr.dec.Reset(); err != nil {
		return err
	}
	zr.inStart = 0
	zr.inEnd = 0
	zr.srcEOF = false

	return nil
}

// Close releases the scratch span and the decoder, and closes the source
// unless leave-open was requested. Closing twice is a no-op.
func (zr *Reader) Close() error {
	if err := zr.guard.enter(); err != nil {
		return err
	}
	defer zr.guard.exit()

	if zr.closed {
		return nil
	}

	var firstErr error
	pool.PutScratch(zr.inBuf)
	zr.inBuf = nil
	if err := zr.dec.Close(); err != nil {
		firstErr = err
	}
	if !zr.leaveOpen {
		if c, ok := zr.src.(io.Closer); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	zr.closed = true

	return firstErr
}
