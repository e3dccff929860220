// Package pool provides pooled scratch buffers for the streaming adapters
// and frame walkers, minimizing per-stream allocations.
package pool

import "sync"

const (
	// ScratchDefaultSize is the default scratch span rented by a stream
	// adapter, 64KiB.
	ScratchDefaultSize = 64 * 1024

	// ScratchMaxThreshold caps the size of buffers retained by the pool.
	// Larger buffers are dropped to prevent memory bloat.
	ScratchMaxThreshold = 1024 * 1024
)

// ScratchPool is a pool of fixed-length byte spans. Buffers are returned
// without zeroing; callers must not assume clean contents.
type ScratchPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewScratchPool creates a pool handing out spans of defaultSize bytes.
func NewScratchPool(defaultSize, maxThreshold int) *ScratchPool {
	return &ScratchPool{
		pool: sync.Pool{
			New: func() any {
				b := make([]byte, defaultSize)
				return &b
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a span of exactly size bytes, reusing pooled memory when its
// capacity suffices.
func (sp *ScratchPool) Get(size int) []byte {
	ptr, _ := sp.pool.Get().(*[]byte)
	b := *ptr
	if cap(b) < size {
		// Undersized for this caller; put it back for someone else.
		sp.pool.Put(ptr)
		return make([]byte, size)
	}

	return b[:size]
}

// Put returns a span to the pool. Oversized buffers are discarded.
func (sp *ScratchPool) Put(b []byte) {
	if b == nil {
		return
	}
	if sp.maxThreshold > 0 && cap(b) > sp.maxThreshold {
		return
	}
	b = b[:cap(b)]
	sp.pool.Put(&b)
}

var scratchDefaultPool = NewScratchPool(ScratchDefaultSize, ScratchMaxThreshold)

// GetScratch retrieves a span of size bytes from the default pool.
func GetScratch(size int) []byte {
	return scratchDefaultPool.Get(size)
}

// PutScratch returns a span to the default pool.
func PutScratch(b []byte) {
	scratchDefaultPool.Put(b)
}
