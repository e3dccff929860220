package codec

import (
	"bytes"
	"fmt"

	"github.com/dev-tony-hu/zstreams/errs"
	"github.com/dev-tony-hu/zstreams/internal/cgozstd"
)

// Compressor is the incremental encoding state machine. It maps a caller
// chunk plus an end-of-frame flag onto a Status and progress counters,
// driving the codec's unified streaming primitive underneath.
//
// A Compressor is not safe for concurrent use.
type Compressor struct {
	ctx        *cgozstd.CCtx
	level      int
	prefix     []byte
	configured bool
	closed     bool
}

// NewCompressor creates a Compressor at the codec's default level.
func NewCompressor() *Compressor {
	c, _ := NewCompressorLevel(cgozstd.DefaultLevel())

	return c
}

// NewCompressorLevel creates a Compressor at the given level.
// Returns errs.ErrInvalidLevel when level is outside the codec's range.
func NewCompressorLevel(level int) (*Compressor, error) {
	if err := validateLevel(level); err != nil {
		return nil, err
	}

	return &Compressor{ctx: cgozstd.NewCCtx(), level: level}, nil
}

func validateLevel(level int) error {
	minLevel, maxLevel := cgozstd.MinLevel(), cgozstd.MaxLevel()
	if level < minLevel || level > maxLevel {
		return fmt.Errorf("%w: %d not in [%d, %d]", errs.ErrInvalidLevel, level, minLevel, maxLevel)
	}

	return nil
}

// SetLevel changes the compression level for the next session.
// Fails with errs.ErrSessionActive once the current session is configured.
func (c *Compressor) SetLevel(level int) error {
	if c.closed {
		return errs.ErrClosed
	}
	if c.configured {
		return fmt.Errorf("%w: cannot change level", errs.ErrSessionActive)
	}
	if err := validateLevel(level); err != nil {
		return err
	}
	c.level = level

	return nil
}

// SetPrefix installs expected leading context for the next frame. The bytes
// are copied, so the caller's slice may be reused immediately. An empty
// prefix clears any prior one. Fails with errs.ErrSessionActive once the
// current session is configured; the prefix is dropped again on Reset.
func (c *Compressor) SetPrefix(prefix []byte) error {
	if c.closed {
		return errs.ErrClosed
	}
	if c.configured {
		return fmt.Errorf("%w: cannot change prefix", errs.ErrSessionActive)
	}
	if len(prefix) == 0 {
		c.prefix = nil
		return nil
	}
	c.prefix = bytes.Clone(prefix)

	return nil
}

// configure pushes the pending level and prefix into native state. It runs
// lazily on the first streaming call of a session.
func (c *Compressor) configure() error {
	if c.configured {
		return nil
	}
	if err := c.ctx.SetLevel(c.level); err != nil {
		return fmt.Errorf("configure level: %w", err)
	}
	if len(c.prefix) > 0 {
		if err := c.ctx.RefPrefix(c.prefix); err != nil {
			return fmt.Errorf("configure prefix: %w", err)
		}
	}
	c.configured = true

	return nil
}

// Compress consumes src into dst. final marks the last block of the current
// frame: when it is set and the returned Status is Done, the bytes written
// so far end the frame.
//
// Codec failures on this path are fatal I/O-class errors; they are never
// errs.ErrInvalidData, which stays decoder-only.
func (c *Compressor) Compress(src, dst []byte, final bool) (CompressResult, error) {
	if c.closed {
		return CompressResult{}, errs.ErrClosed
	}
	if err := c.configure(); err != nil {
		return CompressResult{}, err
	}

	op := cgozstd.EndContinue
	if final {
		op = cgozstd.EndEnd
	}

	in := cgozstd.Buffer{Data: src}
	out := cgozstd.Buffer{Data: dst}

	remaining, err := c.ctx.CompressStream2(&out, &in, op)
	if err != nil {
		return CompressResult{}, fmt.Errorf("compress: %w", err)
	}

	res := CompressResult{Consumed: in.Pos, Written: out.Pos}

	// Tie-break order is load-bearing: a full destination must report
	// DstTooSmall before NeedMoreData is considered.
	switch {
	case final && res.Consumed == len(src) && remaining == 0:
		res.Status = Done
	case final && remaining > 0 && res.Written == len(dst):
		res.Status = DstTooSmall
	case !final && res.Written == len(dst):
		res.Status = DstTooSmall
	case !final && res.Consumed == len(src) && res.Written < len(dst):
		res.Status = NeedMoreData
	default:
		res.Status = Done
	}

	return res, nil
}

// Flush drains internally buffered bytes into dst without terminating the
// current frame. It loops while the codec reports outstanding bytes and dst
// still has room, then returns Done (nothing pending) or DstTooSmall.
func (c *Compressor) Flush(dst []byte) (Status, int, error) {
	if c.closed {
		return Done, 0, errs.ErrClosed
	}
	if err := c.configure(); err != nil {
		return Done, 0, err
	}

	var in cgozstd.Buffer
	out := cgozstd.Buffer{Data: dst}

	for {
		remaining, err := c.ctx.CompressStream2(&out, &in, cgozstd.EndFlush)
		if err != nil {
			return Done, out.Pos, fmt.Errorf("flush: %w", err)
		}
		if remaining == 0 {
			return Done, out.Pos, nil
		}
		if out.Pos == len(dst) {
			return DstTooSmall, out.Pos, nil
		}
	}
}

// Reset ends the current session: the native state is reset, the prefix is
// dropped, and the Compressor returns to unconfigured. The level is kept.
func (c *Compressor) Reset() error {
	if c.closed {
		return errs.ErrClosed
	}
	if err := c.ctx.Reset(); err != nil {
		return fmt.Errorf("reset compressor: %w", err)
	}
	c.prefix = nil
	c.configured = false

	return nil
}

// Close releases the native context. Safe to call more than once; all other
// operations fail with errs.ErrClosed afterwards.
func (c *Compressor) Close() error {
	if c.closed {
		return nil
	}
	c.ctx.Close()
	c.prefix = nil
	c.closed = true

	return nil
}
