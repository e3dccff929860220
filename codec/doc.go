// Package codec implements the incremental Zstandard streaming state
// machines: a buffer-at-a-time Compressor and Decompressor plus the quality
// enum and the process-wide decompressor pool.
//
// # Contract
//
// Both directions share the same shape: the caller supplies a bounded input
// chunk, a destination span, and a flag marking the final block; the call
// returns a tri-state Status together with progress counters. The caller
// loops, draining the destination on DstTooSmall and supplying more input on
// NeedMoreData. Neither side buffers payload bytes internally beyond what
// the native codec holds in its own window.
//
// A Compressor or Decompressor is owned by one goroutine at a time; the
// stream package layers an explicit exclusivity guard on top for misuse
// detection.
//
// # Sessions
//
// Configuration (level, prefix, window-log-max) is pushed into native state
// lazily, on the first streaming call of a session. From that point the
// context counts as configured and setters fail with errs.ErrSessionActive
// until Reset starts a fresh session.
package codec
