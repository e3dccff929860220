// Package stream adapts the incremental codec state machines to ordered byte
// streams: a Writer compresses onto an io.Writer sink, a Reader decompresses
// from an io.Reader source. Direction is locked at construction.
//
// # Flush taxonomy
//
// The Writer distinguishes three ways of pushing bytes out:
//
//   - Flush drains pending compressed bytes to the sink. The current frame
//     stays open; further writes extend it.
//   - FlushFrame terminates the current frame. A fresh frame begins on the
//     next write, not immediately: the deferred reset avoids emitting an
//     empty trailing frame when Close follows FlushFrame. Consecutive
//     FlushFrame calls with no intervening write are idempotent.
//   - Close terminates the frame (unless FlushFrame already did), releases
//     the pooled scratch, and closes the sink unless leave-open was set.
//
// # Concurrency
//
// Adapters are single-owner. A single-slot exclusivity token rejects
// concurrent entry fast with errs.ErrConcurrentUse instead of queueing; the
// in-progress call is unaffected. Cooperative cancellation comes from an
// optional context, polled on entry and before each underlying I/O; a
// cancelled operation does not advance the codec further. The context is
// fixed at construction, so once it is cancelled every later call that polls
// it fails with the context's error; Reader.Reset does not clear that.
package stream
