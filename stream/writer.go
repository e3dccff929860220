package stream

import (
	"context"
	"io"

	"github.com/dev-tony-hu/zstreams/codec"
	"github.com/dev-tony-hu/zstreams/errs"
	"github.com/dev-tony-hu/zstreams/internal/options"
	"github.com/dev-tony-hu/zstreams/internal/pool"
)

// Writer compresses everything written to it onto an underlying sink.
// It implements io.WriteCloser plus the Flush/FlushFrame taxonomy.
//
// A Writer is single-owner; concurrent calls fail with errs.ErrConcurrentUse.
type Writer struct {
	sink    io.Writer
	comp    *codec.Compressor
	scratch []byte
	ctx     context.Context

	guard     opGuard
	leaveOpen bool
	closed    bool

	// pendingFrameReset records that the prior operation emitted a frame
	// terminator and a fresh frame must begin on the next write. The reset
	// is deferred so Close after FlushFrame emits no empty trailing frame.
	pendingFrameReset bool

	// frameHasData is true once the current frame consumed any input;
	// FlushFrame with no data since the previous terminator is a no-op.
	frameHasData bool
}

// NewWriter creates a compressing Writer over w.
func NewWriter(w io.Writer, opts ...WriterOption) (*Writer, error) {
	cfg := defaultWriterConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	var comp *codec.Compressor
	if cfg.level != nil {
		var err error
		comp, err = codec.NewCompressorLevel(*cfg.level)
		if err != nil {
			return nil, err
		}
	} else {
		comp = codec.NewCompressor()
	}

	if len(cfg.prefix) > 0 {
		if err := comp.SetPrefix(cfg.prefix); err != nil {
			_ = comp.Close()
			return nil, err
		}
	}

	return &Writer{
		sink:      w,
		comp:      comp,
		scratch:   pool.GetScratch(cfg.bufferSize),
		ctx:       cfg.ctx,
		leaveOpen: cfg.leaveOpen,
	}, nil
}

// Write compresses p into the current frame, pushing produced bytes to the
// sink as the scratch span fills. It returns the number of input bytes
// consumed, which is len(p) unless an error occurs.
func (zw *Writer) Write(p []byte) (int, error) {
	if err := zw.guard.enter(); err != nil {
		return 0, err
	}
	defer zw.guard.exit()

	if zw.closed {
		return 0, errs.ErrClosed
	}
	if err := zw.ctx.Err(); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}

	if zw.pendingFrameReset {
		if err := zw.comp.Reset(); err != nil {
			return 0, err
		}
		zw.pendingFrameReset = false
	}

	written := 0
	for written < len(p) {
		res, err := zw.comp.Compress(p[written:], zw.scratch, false)
		if err != nil {
			return written, err
		}
		written += res.Consumed
		if res.Consumed > 0 {
			zw.frameHasData = true
		}
		if res.Written > 0 {
			if err := zw.writeOut(zw.scratch[:res.Written]); err != nil {
				return written, err
			}
		}

		if res.Consumed == 0 && res.Written == 0 {
			// Stalled: one empty-input flush attempt, then stop if the codec
			// still reports no progress.
			_, n, err := zw.comp.Flush(zw.scratch)
			if err != nil {
				return written, err
			}
			if n == 0 {
				return written, io.ErrShortWrite
			}
			if err := zw.writeOut(zw.scratch[:n]); err != nil {
				return written, err
			}
		}
	}

	return written, nil
}

// Flush drains pending compressed bytes to the sink without terminating the
// current frame. Writes after Flush extend the same frame.
func (zw *Writer) Flush() error {
	if err := zw.guard.enter(); err != nil {
		return err
	}
	defer zw.guard.exit()

	if zw.closed {
		return errs.ErrClosed
	}
	if err := zw.ctx.Err(); err != nil {
		return err
	}
	if zw.pendingFrameReset {
		// The previous frame was terminated and fully drained; nothing is
		// pending until the next write starts a frame.
		return nil
	}

	return zw.drain()
}

func (zw *Writer) drain() error {
	for {
		status, n, err := zw.comp.Flush(zw.scratch)
		if err != nil {
			return err
		}
		if n > 0 {
			if err := zw.writeOut(zw.scratch[:n]); err != nil {
				return err
			}
		}
		if status == codec.Done {
			return nil
		}
	}
}

// FlushFrame terminates the current frame and drains it to the sink. The
// next write begins a fresh frame. Calling FlushFrame again before any
// intervening write is a no-op.
func (zw *Writer) FlushFrame() error {
	if err := zw.guard.enter(); err != nil {
		return err
	}
	defer zw.guard.exit()

	if zw.closed {
		return errs.ErrClosed
	}
	if err := zw.ctx.Err(); err != nil {
		return err
	}
	if zw.pendingFrameReset && !zw.frameHasData {
		return nil
	}

	if err := zw.endFrame(); err != nil {
		return err
	}
	zw.pendingFrameReset = true
	zw.frameHasData = false

	return nil
}

// endFrame drives the encoder with the end directive until the frame
// terminator is fully written out.
func (zw *Writer) endFrame() error {
	for {
		res, err := zw.comp.Compress(nil, zw.scratch, true)
		if err != nil {
			return err
		}
		if res.Written > 0 {
			if err := zw.writeOut(zw.scratch[:res.Written]); err != nil {
				return err
			}
		}
		if res.Status == codec.Done {
			return nil
		}
	}
}

// Close terminates the frame (unless FlushFrame already did), releases the
// scratch span, frees the encoder, and closes the sink unless leave-open was
// requested. Closing twice is a no-op.
func (zw *Writer) Close() error {
	if err := zw.guard.enter(); err != nil {
		return err
	}
	defer zw.guard.exit()

	if zw.closed {
		return nil
	}

	var firstErr error
	if !zw.pendingFrameReset {
		firstErr = zw.endFrame()
	}

	pool.PutScratch(zw.scratch)
	zw.scratch = nil
	if err := zw.comp.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if !zw.leaveOpen {
		if c, ok := zw.sink.(io.Closer); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	zw.closed = true

	return firstErr
}

func (zw *Writer) writeOut(b []byte) error {
	if err := zw.ctx.Err(); err != nil {
		return err
	}

	n, err := zw.sink.Write(b)
	if err != nil {
		return err
	}
	if n < len(b) {
		return io.ErrShortWrite
	}

	return nil
}
