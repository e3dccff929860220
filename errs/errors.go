// Package errs defines the sentinel errors shared across zstreams packages.
//
// Callers match them with errors.Is; wrapped causes (including the native
// codec's error name) travel along via the %w chain.
package errs

import "errors"

// Argument validation failures.
var (
	// ErrInvalidLevel is returned when a compression level is outside the
	// range the linked codec reports.
	ErrInvalidLevel = errors.New("compression level out of range")

	// ErrInvalidWindowLog is returned when a window-log-max value is outside
	// [10, 31].
	ErrInvalidWindowLog = errors.New("window log out of range")

	// ErrInvalidQuality is returned for values outside the Quality enum.
	ErrInvalidQuality = errors.New("invalid compression quality")
)

// Lifecycle and concurrency misuse.
var (
	// ErrSessionActive is returned when configuration is changed after the
	// first Compress of a session; Reset makes configuration legal again.
	ErrSessionActive = errors.New("context already configured for this session")

	// ErrConcurrentUse is returned when a second operation enters a stream
	// adapter while one is in progress. There is no queueing; the caller
	// must serialise access.
	ErrConcurrentUse = errors.New("concurrent operation on stream")

	// ErrClosed is returned for operations on a closed object.
	ErrClosed = errors.New("object is closed")

	// ErrTruncated is returned by frame walkers when the source ends in the
	// middle of a frame. The stream Reader does not use it; truncation there
	// surfaces as a short read.
	ErrTruncated = errors.New("truncated zstd stream")
)

// Data and resource failures.
var (
	// ErrInvalidData is returned by the decode side when the codec rejects
	// the input or a frame header cannot be parsed where one is required.
	// The compression path never produces it.
	ErrInvalidData = errors.New("invalid compressed data")

	// ErrFrameTooLarge is returned by the frame iterator when a decoded
	// frame exceeds the configured size cap.
	ErrFrameTooLarge = errors.New("decoded frame exceeds size limit")
)
