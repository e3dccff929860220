package codec

import (
	"fmt"

	"github.com/dev-tony-hu/zstreams/errs"
	"github.com/dev-tony-hu/zstreams/internal/cgozstd"
)

// Window-log bounds accepted by SetWindowLogMax. The codec may still reject
// values its build does not support.
const (
	WindowLogMin = 10
	WindowLogMax = 31
)

// Decompressor is the incremental decoding state machine. It maps a
// compressed chunk onto produced bytes, a frame-boundary signal, and a
// Status. Concatenated frames need no reset in between: after FrameFinished
// the next call starts parsing the following frame header.
//
// A Decompressor is not safe for concurrent use.
type Decompressor struct {
	ctx          *cgozstd.DCtx
	windowLogMax int
	initialized  bool
	closed       bool
}

// NewDecompressor creates a Decompressor with no window limit configured.
func NewDecompressor() *Decompressor {
	return &Decompressor{ctx: cgozstd.NewDCtx()}
}

// SetWindowLogMax bounds the sliding-window memory the decoder will accept
// from untrusted input. Accepted range is [WindowLogMin, WindowLogMax], and
// only before the first Decompress of a session.
func (d *Decompressor) SetWindowLogMax(windowLog int) error {
	if d.closed {
		return errs.ErrClosed
	}
	if d.initialized {
		return fmt.Errorf("%w: cannot change window log", errs.ErrSessionActive)
	}
	if windowLog < WindowLogMin || windowLog > WindowLogMax {
		return fmt.Errorf("%w: %d not in [%d, %d]", errs.ErrInvalidWindowLog, windowLog, WindowLogMin, WindowLogMax)
	}
	d.windowLogMax = windowLog

	return nil
}

func (d *Decompressor) initialize() error {
	if d.initialized {
		return nil
	}
	if d.windowLogMax != 0 {
		if err := d.ctx.SetWindowLogMax(d.windowLogMax); err != nil {
			return fmt.Errorf("configure window log: %w", err)
		}
	}
	d.initialized = true

	return nil
}

// Decompress consumes compressed bytes from src into dst. final marks src as
// the last input that will ever arrive; a frame left open at that point is
// reported as NeedMoreData, which the caller observes as an end-of-stream
// without frame closure.
//
// Codec failures wrap errs.ErrInvalidData.
func (d *Decompressor) Decompress(src, dst []byte, final bool) (DecompressResult, error) {
	if d.closed {
		return DecompressResult{}, errs.ErrClosed
	}
	if err := d.initialize(); err != nil {
		return DecompressResult{}, err
	}

	in := cgozstd.Buffer{Data: src}
	out := cgozstd.Buffer{Data: dst}

	hint, err := d.ctx.DecompressStream(&out, &in)
	if err != nil {
		return DecompressResult{}, fmt.Errorf("%w: %w", errs.ErrInvalidData, err)
	}

	res := DecompressResult{
		Consumed:      in.Pos,
		Written:       out.Pos,
		FrameFinished: hint == 0,
	}

	// The same rule covers both cases: with final set, a still-open frame is
	// "need more data that will never come".
	switch {
	case res.Written == len(dst) && !res.FrameFinished:
		res.Status = DstTooSmall
	case res.Consumed == len(src) && !res.FrameFinished && hint > 0:
		res.Status = NeedMoreData
	default:
		res.Status = Done
	}

	return res, nil
}

// Reset ends the current session; the configured window limit is kept and
// re-applied lazily on the next Decompress.
func (d *Decompressor) Reset() error {
	if d.closed {
		return errs.ErrClosed
	}
	if err := d.ctx.Reset(); err != nil {
		return fmt.Errorf("reset decompressor: %w", err)
	}
	d.initialized = false

	return nil
}

// Close releases the native context. Safe to call more than once.
func (d *Decompressor) Close() error {
	if d.closed {
		return nil
	}
	d.ctx.Close()
	d.closed = true

	return nil
}
