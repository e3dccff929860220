package cgozstd

/*
#define ZSTD_STATIC_LINKING_ONLY
#include <zstd.h>
#include <zstd_errors.h>
*/
import "C"

import "runtime"

// ContentSizeUnknown marks frames whose header carries no decoded size.
const ContentSizeUnknown int64 = -1

// FrameHeader is the parsed leading header of a regular or skippable frame.
type FrameHeader struct {
	ContentSize  int64 // ContentSizeUnknown when the header omits it
	WindowSize   uint64
	BlockSizeMax uint32
	HeaderSize   uint32
	DictID       uint32
	HasChecksum  bool
	Skippable    bool
}

// FindFrameCompressedSize returns the total compressed size of the frame
// beginning at b[0], skippable frames included. The input must contain the
// entire frame; a short input fails with a srcSize-wrong error that
// IsSrcSizeWrong recognises.
func FindFrameCompressedSize(b []byte) (uint64, error) {
	result := C.ZSTD_findFrameCompressedSize(dataPtr(b), C.size_t(len(b)))
	runtime.KeepAlive(b)

	if err := resultError(result, "ZSTD_findFrameCompressedSize"); err != nil {
		return 0, err
	}

	return uint64(result), nil
}

// GetFrameContentSize reports the decoded size recorded in the frame header
// at b[0]. known is false when the header legitimately omits the size.
func GetFrameContentSize(b []byte) (size uint64, known bool, err error) {
	result := C.ZSTD_getFrameContentSize(dataPtr(b), C.size_t(len(b)))
	runtime.KeepAlive(b)

	switch uint64(result) {
	case uint64(C.ZSTD_CONTENTSIZE_UNKNOWN):
		return 0, false, nil
	case uint64(C.ZSTD_CONTENTSIZE_ERROR):
		return 0, false, srcSizeWrongError("ZSTD_getFrameContentSize")
	}

	return uint64(result), true, nil
}

// GetFrameHeader parses the frame header at b[0]. The input only needs to
// cover the header itself, not the whole frame; a too-short input fails with
// a srcSize-wrong error.
func GetFrameHeader(b []byte) (FrameHeader, error) {
	var hdr C.ZSTD_frameHeader

	result := C.ZSTD_getFrameHeader(&hdr, dataPtr(b), C.size_t(len(b)))
	runtime.KeepAlive(b)

	if err := resultError(result, "ZSTD_getFrameHeader"); err != nil {
		return FrameHeader{}, err
	}
	if result > 0 {
		// Positive return means "feed at least this many header bytes".
		return FrameHeader{}, srcSizeWrongError("ZSTD_getFrameHeader")
	}

	fh := FrameHeader{
		ContentSize:  ContentSizeUnknown,
		WindowSize:   uint64(hdr.windowSize),
		BlockSizeMax: uint32(hdr.blockSizeMax),
		HeaderSize:   uint32(hdr.headerSize),
		DictID:       uint32(hdr.dictID),
		HasChecksum:  hdr.checksumFlag != 0,
		Skippable:    hdr.frameType == C.ZSTD_skippableFrame,
	}
	if uint64(hdr.frameContentSize) != uint64(C.ZSTD_CONTENTSIZE_UNKNOWN) {
		fh.ContentSize = int64(hdr.frameContentSize)
	}

	return fh, nil
}
