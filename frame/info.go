// Package frame walks the members of a concatenated Zstandard stream.
//
// Three enumeration modes are offered: Inspect walks an in-memory blob and
// reports per-frame metadata, Walk does the same over an io.Reader, and
// Frames additionally decodes each member and yields its content. Skippable
// frames are recognised and counted in the offset arithmetic; the walkers
// add no framing of their own, so offsets and sizes always sum to the blob
// length.
package frame

import "github.com/dev-tony-hu/zstreams/internal/cgozstd"

// Kind tags a stream member as a regular or a skippable frame.
type Kind uint8

const (
	KindFrame Kind = iota
	KindSkippable
)

func (k Kind) String() string {
	switch k {
	case KindFrame:
		return "frame"
	case KindSkippable:
		return "skippable"
	default:
		return "unknown"
	}
}

// ContentSizeUnknown marks frames whose header does not record the decoded
// size.
const ContentSizeUnknown = cgozstd.ContentSizeUnknown

// Info describes one member of a concatenated stream.
type Info struct {
	// Offset of the frame's first byte within the concatenated stream.
	Offset int64

	// CompressedSize is the total on-wire size of the member, header and
	// trailing checksum included.
	CompressedSize int64

	// ContentSize is the decoded size recorded in the header, or
	// ContentSizeUnknown. For skippable frames it is the payload size.
	ContentSize int64

	// WindowSize the decoder needs for this frame; zero for skippable ones.
	WindowSize uint64

	// DictID referenced by the frame, zero when none.
	DictID uint32

	// HasChecksum reports a trailing content checksum.
	HasChecksum bool

	Kind Kind
}

func infoFromHeader(hdr cgozstd.FrameHeader, offset, compressedSize int64) Info {
	info := Info{
		Offset:         offset,
		CompressedSize: compressedSize,
		ContentSize:    hdr.ContentSize,
		WindowSize:     hdr.WindowSize,
		DictID:         hdr.DictID,
		HasChecksum:    hdr.HasChecksum,
		Kind:           KindFrame,
	}
	if hdr.Skippable {
		info.Kind = KindSkippable
	}

	return info
}
