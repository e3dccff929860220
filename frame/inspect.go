package frame

import (
	"fmt"
	"io"
	"iter"

	"github.com/dev-tony-hu/zstreams/errs"
	"github.com/dev-tony-hu/zstreams/internal/cgozstd"
	"github.com/dev-tony-hu/zstreams/internal/pool"
)

// Inspect walks the concatenated frames in b and returns their metadata in
// stream order. The sum of the reported compressed sizes equals len(b), and
// each frame's offset is the previous offset plus its size.
//
// Fails with errs.ErrInvalidData when a frame boundary cannot be determined.
func Inspect(b []byte) ([]Info, error) {
	var infos []Info

	offset := int64(0)
	for offset < int64(len(b)) {
		info, err := frameInfoAt(b[offset:], offset)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
		offset += info.CompressedSize
	}

	return infos, nil
}

func frameInfoAt(b []byte, offset int64) (Info, error) {
	size, err := cgozstd.FindFrameCompressedSize(b)
	if err != nil {
		return Info{}, fmt.Errorf("%w: frame at offset %d: %w", errs.ErrInvalidData, offset, err)
	}

	hdr, err := cgozstd.GetFrameHeader(b)
	if err != nil {
		return Info{}, fmt.Errorf("%w: frame header at offset %d: %w", errs.ErrInvalidData, offset, err)
	}

	return infoFromHeader(hdr, offset, int64(size)), nil
}

// Walk enumerates frame metadata from an arbitrary byte source. Whole frames
// are buffered in a growing scratch span: the size query is retried with
// more input until it is satisfied, so peak memory tracks the largest frame.
//
// The sequence yields a non-nil error as its final element when the source
// is truncated mid-frame (errs.ErrTruncated), unreadable, or not zstd
// (errs.ErrInvalidData).
func Walk(r io.Reader) iter.Seq2[Info, error] {
	return func(yield func(Info, error) bool) {
		buf := pool.GetScratch(pool.ScratchDefaultSize)
		defer func() { pool.PutScratch(buf) }()

		var start, end int
		var offset int64
		srcEOF := false

		for {
			if end > start {
				size, err := cgozstd.FindFrameCompressedSize(buf[start:end])
				switch {
				case err == nil:
					hdr, herr := cgozstd.GetFrameHeader(buf[start:end])
					if herr != nil {
						yield(Info{}, fmt.Errorf("%w: frame header at offset %d: %w", errs.ErrInvalidData, offset, herr))
						return
					}
					info := infoFromHeader(hdr, offset, int64(size))
					if !yield(info, nil) {
						return
					}
					start += int(size)
					offset += int64(size)
					continue
				case !cgozstd.IsSrcSizeWrong(err):
					yield(Info{}, fmt.Errorf("%w: frame at offset %d: %w", errs.ErrInvalidData, offset, err))
					return
				}
				// Size query unsatisfied; fall through to refill.
			}

			if srcEOF {
				if end > start {
					yield(Info{}, fmt.Errorf("%w: frame at offset %d", errs.ErrTruncated, offset))
				}
				return
			}

			// Compact, then grow when the span is already full.
			if start > 0 {
				copy(buf, buf[start:end])
				end -= start
				start = 0
			}
			if end == len(buf) {
				grown := make([]byte, 2*len(buf))
				copy(grown, buf[:end])
				pool.PutScratch(buf)
				buf = grown
			}

			n, err := r.Read(buf[end:])
			end += n
			switch {
			case err == io.EOF:
				srcEOF = true
			case err != nil:
				yield(Info{}, err)
				return
			case n == 0:
				// Zero-byte refill while the size query is unsatisfied.
				yield(Info{}, fmt.Errorf("%w: frame at offset %d", errs.ErrTruncated, offset))
				return
			}
		}
	}
}
