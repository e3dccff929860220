package stream

import (
	"sync/atomic"

	"github.com/dev-tony-hu/zstreams/errs"
)

// opGuard is the single-slot mutual-exclusion token held by an adapter.
// Entry fails fast; there is no queueing.
type opGuard struct {
	active atomic.Uint32
}

func (g *opGuard) enter() error {
	if !g.active.CompareAndSwap(0, 1) {
		return errs.ErrConcurrentUse
	}

	return nil
}

func (g *opGuard) exit() {
	g.active.Store(0)
}
