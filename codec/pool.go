package codec

// maxPooledDecompressors bounds steady-state memory held by the pool; it is
// a sizing decision, not a correctness property.
const maxPooledDecompressors = 32

// The pool is process-wide and needs no initialisation ritual. A buffered
// channel gives the fixed retention cap that sync.Pool cannot.
var decompressorPool = make(chan *Decompressor, maxPooledDecompressors)

// RentDecompressor returns a ready Decompressor, reusing a pooled context
// when one is available. Pair with ReturnDecompressor.
//
// Compressors are deliberately not pooled: their level and prefix are
// per-frame-group, caller-specific state.
func RentDecompressor() *Decompressor {
	select {
	case d := <-decompressorPool:
		return d
	default:
		return NewDecompressor()
	}
}

// ReturnDecompressor resets d and re-pools it, closing it instead when the
// reset fails or the retention cap is reached. Safe to call with nil.
func ReturnDecompressor(d *Decompressor) {
	if d == nil {
		return
	}
	if err := d.Reset(); err != nil {
		_ = d.Close()
		return
	}

	select {
	case decompressorPool <- d:
	default:
		_ = d.Close()
	}
}
