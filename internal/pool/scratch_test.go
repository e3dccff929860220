package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScratchPool_GetReturnsRequestedLength(t *testing.T) {
	sp := NewScratchPool(1024, 4096)

	b := sp.Get(512)
	require.Len(t, b, 512)
	require.GreaterOrEqual(t, cap(b), 512)
	sp.Put(b)
}

func TestScratchPool_GrowsBeyondDefault(t *testing.T) {
	sp := NewScratchPool(1024, 1<<20)

	b := sp.Get(8192)
	require.Len(t, b, 8192, "pool should allocate when the pooled span is too small")
	sp.Put(b)

	b2 := sp.Get(8192)
	require.Len(t, b2, 8192)
}

func TestScratchPool_DiscardsOversized(t *testing.T) {
	sp := NewScratchPool(1024, 2048)

	big := sp.Get(4096)
	sp.Put(big) // over threshold, dropped

	b := sp.Get(1024)
	require.Len(t, b, 1024)
}

func TestScratchPool_PutNil(t *testing.T) {
	sp := NewScratchPool(1024, 2048)
	require.NotPanics(t, func() { sp.Put(nil) })
}

func TestDefaultScratchPool(t *testing.T) {
	b := GetScratch(ScratchDefaultSize)
	require.Len(t, b, ScratchDefaultSize)
	PutScratch(b)
}
