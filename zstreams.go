// Package zstreams provides incremental, buffer-at-a-time Zstandard
// compression and decompression for pipelining unbounded byte sequences
// through caller-supplied buffers.
//
// # Layers
//
// The codec package holds the core contract: streaming state machines that
// map one input chunk and one destination span onto a tri-state status
// (Done, DstTooSmall, NeedMoreData) plus progress counters. The stream
// package adapts them to io.Writer/io.Reader with a three-way flush taxonomy
// and multi-frame support. The frame package walks and decodes the members
// of a concatenated stream.
//
// This file adds the one-shot conveniences for whole buffers.
//
// # Basic Usage
//
// Whole-buffer round trip:
//
//	compressed, _ := zstreams.Compress(nil, data)
//	restored, _ := zstreams.Decompress(nil, compressed)
//
// Streaming with explicit frame boundaries:
//
//	zw, _ := stream.NewWriter(sink, stream.WithLevel(5))
//	zw.Write(recordA)
//	zw.FlushFrame() // recordA is now a standalone frame
//	zw.Write(recordB)
//	zw.Close()      // terminates recordB's frame
//
// Walking a concatenated stream:
//
//	for info, err := range frame.Walk(src) {
//	    ...
//	}
//
// The produced byte stream is plain Zstandard: any conforming decoder can
// read it, and zstreams reads any conforming stream, skippable frames
// included.
package zstreams

import (
	"fmt"

	"github.com/dev-tony-hu/zstreams/codec"
	"github.com/dev-tony-hu/zstreams/errs"
	"github.com/dev-tony-hu/zstreams/internal/cgozstd"
)

// CompressBound returns the worst-case compressed size for srcSize input
// bytes in a single frame.
func CompressBound(srcSize int) int {
	return cgozstd.CompressBound(srcSize)
}

// Compress appends src compressed as a single frame at the default level to
// dst and returns the result.
func Compress(dst, src []byte) ([]byte, error) {
	return CompressLevel(dst, src, cgozstd.DefaultLevel())
}

// CompressLevel appends src compressed as a single frame at the given level
// to dst and returns the result.
func CompressLevel(dst, src []byte, level int) ([]byte, error) {
	comp, err := codec.NewCompressorLevel(level)
	if err != nil {
		return nil, err
	}
	defer comp.Close()

	return compressOneShot(comp, dst, src)
}

// CompressQuality is CompressLevel with the coarse Quality selector.
func CompressQuality(dst, src []byte, q codec.Quality) ([]byte, error) {
	level, err := q.Level()
	if err != nil {
		return nil, err
	}

	return CompressLevel(dst, src, level)
}

func compressOneShot(comp *codec.Compressor, dst, src []byte) ([]byte, error) {
	dstLen := len(dst)
	bound := cgozstd.CompressBound(len(src))

	if cap(dst)-dstLen < bound {
		grown := make([]byte, dstLen, dstLen+bound)
		copy(grown, dst)
		dst = grown
	}

	res, err := comp.Compress(src, dst[dstLen:dstLen+bound], true)
	if err != nil {
		return nil, err
	}
	if res.Status != codec.Done {
		// CompressBound sizing makes this unreachable for a conforming codec.
		return nil, fmt.Errorf("one-shot compression did not complete: %v", res.Status)
	}

	return dst[:dstLen+res.Written], nil
}

// Decompress appends the decoded content of src, a concatenation of one or
// more frames, to dst and returns the result. The decoder context comes
// from the process-wide pool.
//
// Truncated or corrupt input fails with errs.ErrInvalidData.
func Decompress(dst, src []byte) ([]byte, error) {
	if len(src) == 0 {
		return dst, nil
	}

	dec := codec.RentDecompressor()
	defer codec.ReturnDecompressor(dec)

	buf := make([]byte, decompressSizeHint(src))
	pos := 0
	written := 0

	for pos < len(src) {
		res, err := dec.Decompress(src[pos:], buf[written:], true)
		if err != nil {
			return nil, err
		}
		pos += res.Consumed
		written += res.Written

		switch res.Status {
		case codec.DstTooSmall:
			grown := make([]byte, 2*len(buf))
			copy(grown, buf[:written])
			buf = grown
		case codec.NeedMoreData:
			if pos == len(src) {
				return nil, fmt.Errorf("%w: truncated input", errs.ErrInvalidData)
			}
		}
	}

	return append(dst, buf[:written]...), nil
}

// decompressSizeHint picks the initial output capacity: the recorded content
// size when the first frame header carries one, otherwise a multiple of the
// compressed size.
func decompressSizeHint(src []byte) int {
	const maxHint = 1 << 30

	size, known, err := cgozstd.GetFrameContentSize(src)
	if err == nil && known && size > 0 && size < maxHint {
		return int(size) + 1
	}

	hint := 4 * len(src)
	if hint < 4096 {
		hint = 4096
	}

	return hint
}
