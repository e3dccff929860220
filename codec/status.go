package codec

// Status is the tri-state outcome of an incremental compress or decompress
// call. It is flow control, not an error: every Status return leaves the
// context ready for the next call.
type Status uint8

const (
	// Done means neither DstTooSmall nor NeedMoreData applies. After a final
	// Compress block it means the frame is fully written; after a Decompress
	// call that finished a frame, input following the frame end may still be
	// unconsumed.
	Done Status = iota

	// DstTooSmall means the destination filled before the operation could
	// finish. Drain the destination and call again. It always takes
	// precedence over NeedMoreData when the destination is actually full.
	DstTooSmall

	// NeedMoreData means the input was fully consumed but the current frame
	// is not complete; supply the next chunk.
	NeedMoreData
)

func (s Status) String() string {
	switch s {
	case Done:
		return "Done"
	case DstTooSmall:
		return "DstTooSmall"
	case NeedMoreData:
		return "NeedMoreData"
	default:
		return "Unknown"
	}
}

// CompressResult reports the progress of a single Compressor call.
type CompressResult struct {
	Status   Status
	Consumed int // bytes advanced in the source
	Written  int // bytes advanced in the destination
}

// DecompressResult reports the progress of a single Decompressor call.
// FrameFinished is true exactly when the end marker of the current frame was
// observed during this call.
type DecompressResult struct {
	Status        Status
	Consumed      int
	Written       int
	FrameFinished bool
}
