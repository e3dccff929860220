package stream

import (
	"context"
	"fmt"

	"github.com/dev-tony-hu/zstreams/codec"
	"github.com/dev-tony-hu/zstreams/errs"
	"github.com/dev-tony-hu/zstreams/internal/options"
	"github.com/dev-tony-hu/zstreams/internal/pool"
)

// WriterConfig collects the construction-time settings of a Writer.
type WriterConfig struct {
	level      *int
	prefix     []byte
	bufferSize int
	ctx        context.Context
	leaveOpen  bool
}

// WriterOption configures a Writer at construction time.
type WriterOption = options.Option[*WriterConfig]

// WithLevel sets the compression level for all frames the Writer produces.
func WithLevel(level int) WriterOption {
	return options.NoError(func(c *WriterConfig) {
		c.level = &level
	})
}

// WithQuality sets the compression level through the coarse Quality enum.
func WithQuality(q codec.Quality) WriterOption {
	return options.New(func(c *WriterConfig) error {
		level, err := q.Level()
		if err != nil {
			return err
		}
		c.level = &level

		return nil
	})
}

// WithPrefix installs expected leading context for the first frame. The
// bytes are copied. The prefix applies to the first frame of the stream
// only; frames started after FlushFrame compress without it.
func WithPrefix(prefix []byte) WriterOption {
	return options.NoError(func(c *WriterConfig) {
		c.prefix = prefix
	})
}

// WithWriterBufferSize overrides the pooled scratch size (default 64KiB).
func WithWriterBufferSize(size int) WriterOption {
	return options.New(func(c *WriterConfig) error {
		if size <= 0 {
			return fmt.Errorf("invalid buffer size %d", size)
		}
		c.bufferSize = size

		return nil
	})
}

// WithWriterContext attaches a context polled for cancellation on entry and
// before each sink write.
func WithWriterContext(ctx context.Context) WriterOption {
	return options.NoError(func(c *WriterConfig) {
		c.ctx = ctx
	})
}

// WithWriterLeaveOpen keeps the underlying sink open when the Writer closes.
func WithWriterLeaveOpen() WriterOption {
	return options.NoError(func(c *WriterConfig) {
		c.leaveOpen = true
	})
}

// ReaderConfig collects the construction-time settings of a Reader.
type ReaderConfig struct {
	windowLogMax int
	bufferSize   int
	ctx          context.Context
	leaveOpen    bool
}

// ReaderOption configures a Reader at construction time.
type ReaderOption = options.Option[*ReaderConfig]

// WithWindowLogMax bounds the decoder window for untrusted input.
func WithWindowLogMax(windowLog int) ReaderOption {
	return options.New(func(c *ReaderConfig) error {
		if windowLog < codec.WindowLogMin || windowLog > codec.WindowLogMax {
			return fmt.Errorf("%w: %d", errs.ErrInvalidWindowLog, windowLog)
		}
		c.windowLogMax = windowLog

		return nil
	})
}

// WithReaderBufferSize overrides the pooled input scratch size (default 64KiB).
func WithReaderBufferSize(size int) ReaderOption {
	return options.New(func(c *ReaderConfig) error {
		if size <= 0 {
			return fmt.Errorf("invalid buffer size %d", size)
		}
		c.bufferSize = size

		return nil
	})
}

// WithReaderContext attaches a context polled for cancellation on entry and
// before each source read.
func WithReaderContext(ctx context.Context) ReaderOption {
	return options.NoError(func(c *ReaderConfig) {
		c.ctx = ctx
	})
}

// WithReaderLeaveOpen keeps the underlying source open when the Reader closes.
func WithReaderLeaveOpen() ReaderOption {
	return options.NoError(func(c *ReaderConfig) {
		c.leaveOpen = true
	})
}

func defaultWriterConfig() *WriterConfig {
	return &WriterConfig{
		bufferSize: pool.ScratchDefaultSize,
		ctx:        context.Background(),
	}
}

func defaultReaderConfig() *ReaderConfig {
	return &ReaderConfig{
		bufferSize: pool.ScratchDefaultSize,
		ctx:        context.Background(),
	}
}
