// Package cgozstd is the cgo boundary to libzstd.
//
// It exposes exactly the primitives the streaming core consumes: context
// lifecycle, the unified ZSTD_compressStream2 entry point with an end
// directive, ZSTD_decompressStream with its "bytes expected" hint, parameter
// setters, raw-prefix referencing, frame inspection queries, and error
// introspection. Everything above this package is plain Go.
package cgozstd

/*
#cgo LDFLAGS: -lzstd

#define ZSTD_STATIC_LINKING_ONLY
#include <zstd.h>
#include <zstd_errors.h>
#include <stdlib.h>

// The *_wrapper functions keep the ZSTD_inBuffer/ZSTD_outBuffer structs on
// the C stack and report the advanced positions through out-params, so no
// Go-side allocation or struct marshalling is needed per call.
// See https://github.com/golang/go/issues/24450 .

static size_t ZSTD_compressStream2_wrapper(void *ctx,
		void *dst, size_t dstSize, size_t *dstPos,
		const void *src, size_t srcSize, size_t *srcPos,
		int endOp) {
	ZSTD_outBuffer out = {dst, dstSize, *dstPos};
	ZSTD_inBuffer in = {src, srcSize, *srcPos};
	size_t result = ZSTD_compressStream2((ZSTD_CCtx*)ctx, &out, &in, (ZSTD_EndDirective)endOp);
	*dstPos = out.pos;
	*srcPos = in.pos;
	return result;
}

static size_t ZSTD_decompressStream_wrapper(void *ctx,
		void *dst, size_t dstSize, size_t *dstPos,
		const void *src, size_t srcSize, size_t *srcPos) {
	ZSTD_outBuffer out = {dst, dstSize, *dstPos};
	ZSTD_inBuffer in = {src, srcSize, *srcPos};
	size_t result = ZSTD_decompressStream((ZSTD_DCtx*)ctx, &out, &in);
	*dstPos = out.pos;
	*srcPos = in.pos;
	return result;
}
*/
import "C"

import (
	"runtime"
	"unsafe"
)

// EndDirective selects how a CompressStream2 call treats the current frame.
type EndDirective int

// Values map one-to-one onto ZSTD_EndDirective.
const (
	EndContinue EndDirective = C.ZSTD_e_continue
	EndFlush    EndDirective = C.ZSTD_e_flush
	EndEnd      EndDirective = C.ZSTD_e_end
)

// Buffer is the wire shape shared with the codec: a byte span plus the
// position already consumed (input) or produced (output) within it. The
// codec advances Pos; callers read it back after each streaming call.
type Buffer struct {
	Data []byte
	Pos  int
}

// Remaining returns the unconsumed/unfilled tail length of the buffer.
func (b *Buffer) Remaining() int {
	return len(b.Data) - b.Pos
}

func dataPtr(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}

	return unsafe.Pointer(unsafe.SliceData(b))
}

// CCtx owns a native compression context. It is not safe for concurrent use.
type CCtx struct {
	p      *C.ZSTD_CCtx
	prefix unsafe.Pointer
}

// NewCCtx creates a compression context. A finalizer releases the native
// state if the caller forgets to Close, but deterministic Close is expected.
func NewCCtx() *CCtx {
	c := &CCtx{p: C.ZSTD_createCCtx()}
	runtime.SetFinalizer(c, freeCCtx)

	return c
}

func freeCCtx(c *CCtx) { c.Close() }

// Close releases the native context and any referenced prefix. Safe to call
// more than once.
func (c *CCtx) Close() {
	if c.p == nil {
		return
	}
	C.ZSTD_freeCCtx(c.p)
	c.p = nil
	c.dropPrefix()
}

// Reset ends the current compression session. Parameters survive; the
// referenced prefix is released.
func (c *CCtx) Reset() error {
	result := C.ZSTD_CCtx_reset(c.p, C.ZSTD_reset_session_only)
	err := resultError(result, "ZSTD_CCtx_reset")
	c.dropPrefix()

	return err
}

// SetLevel sets the compression level for subsequent frames.
func (c *CCtx) SetLevel(level int) error {
	result := C.ZSTD_CCtx_setParameter(c.p, C.ZSTD_c_compressionLevel, C.int(level))

	return resultError(result, "ZSTD_CCtx_setParameter")
}

// RefPrefix references prefix as expected leading context for the next
// frame. The bytes are copied into C memory so the codec's retained pointer
// stays valid regardless of Go heap movement; the copy is released on the
// next Reset, RefPrefix, or Close. An empty prefix clears the reference.
func (c *CCtx) RefPrefix(prefix []byte) error {
	c.dropPrefix()
	if len(prefix) == 0 {
		return nil
	}

	buf := C.CBytes(prefix)
	result := C.ZSTD_CCtx_refPrefix(c.p, buf, C.size_t(len(prefix)))
	if err := resultError(result, "ZSTD_CCtx_refPrefix"); err != nil {
		C.free(buf)
		return err
	}
	c.prefix = buf

	return nil
}

func (c *CCtx) dropPrefix() {
	if c.prefix != nil {
		C.free(c.prefix)
		c.prefix = nil
	}
}

// CompressStream2 drives the unified streaming compressor. It advances
// dst.Pos and src.Pos and returns the codec's "bytes still to flush" value:
// zero means the requested directive completed.
func (c *CCtx) CompressStream2(dst, src *Buffer, op EndDirective) (uint64, error) {
	dstPos := C.size_t(dst.Pos)
	srcPos := C.size_t(src.Pos)

	result := C.ZSTD_compressStream2_wrapper(
		unsafe.Pointer(c.p),
		dataPtr(dst.Data), C.size_t(len(dst.Data)), &dstPos,
		dataPtr(src.Data), C.size_t(len(src.Data)), &srcPos,
		C.int(op))
	// Prevent GC of dst and src during the cgo call above.
	runtime.KeepAlive(dst.Data)
	runtime.KeepAlive(src.Data)

	dst.Pos = int(dstPos)
	src.Pos = int(srcPos)

	if err := resultError(result, "ZSTD_compressStream2"); err != nil {
		return 0, err
	}

	return uint64(result), nil
}

// DCtx owns a native decompression context. It is not safe for concurrent use.
type DCtx struct {
	p *C.ZSTD_DCtx
}

// NewDCtx creates a decompression context with a finalizer safety net.
func NewDCtx() *DCtx {
	d := &DCtx{p: C.ZSTD_createDCtx()}
	runtime.SetFinalizer(d, freeDCtx)

	return d
}

func freeDCtx(d *DCtx) { d.Close() }

// Close releases the native context. Safe to call more than once.
func (d *DCtx) Close() {
	if d.p == nil {
		return
	}
	C.ZSTD_freeDCtx(d.p)
	d.p = nil
}

// Reset ends the current decompression session. Parameters survive.
func (d *DCtx) Reset() error {
	result := C.ZSTD_DCtx_reset(d.p, C.ZSTD_reset_session_only)

	return resultError(result, "ZSTD_DCtx_reset")
}

// SetWindowLogMax bounds the sliding-window memory the decoder will accept.
func (d *DCtx) SetWindowLogMax(windowLog int) error {
	result := C.ZSTD_DCtx_setParameter(d.p, C.ZSTD_d_windowLogMax, C.int(windowLog))

	return resultError(result, "ZSTD_DCtx_setParameter")
}

// DecompressStream drives the streaming decompressor. It advances dst.Pos
// and src.Pos and returns the codec hint: zero when the current frame just
// completed, otherwise a suggestion of how many more input bytes are needed.
func (d *DCtx) DecompressStream(dst, src *Buffer) (uint64, error) {
	dstPos := C.size_t(dst.Pos)
	srcPos := C.size_t(src.Pos)

	result := C.ZSTD_decompressStream_wrapper(
		unsafe.Pointer(d.p),
		dataPtr(dst.Data), C.size_t(len(dst.Data)), &dstPos,
		dataPtr(src.Data), C.size_t(len(src.Data)), &srcPos)
	// Prevent GC of dst and src during the cgo call above.
	runtime.KeepAlive(dst.Data)
	runtime.KeepAlive(src.Data)

	dst.Pos = int(dstPos)
	src.Pos = int(srcPos)

	if err := resultError(result, "ZSTD_decompressStream"); err != nil {
		return 0, err
	}

	return uint64(result), nil
}

// MinLevel returns the smallest level libzstd accepts (negative, very fast).
func MinLevel() int { return int(C.ZSTD_minCLevel()) }

// MaxLevel returns the largest level libzstd accepts.
func MaxLevel() int { return int(C.ZSTD_maxCLevel()) }

// DefaultLevel returns libzstd's built-in default compression level.
func DefaultLevel() int { return int(C.ZSTD_defaultCLevel()) }

// CompressBound returns the worst-case compressed size for srcSize input.
func CompressBound(srcSize int) int {
	return int(C.ZSTD_compressBound(C.size_t(srcSize)))
}

// Version returns the linked libzstd version number (e.g. 10507 for 1.5.7).
func Version() uint { return uint(C.ZSTD_versionNumber()) }
