package cgozstd

/*
#define ZSTD_STATIC_LINKING_ONLY
#include <zstd.h>
#include <zstd_errors.h>
*/
import "C"

import "errors"

// Error is a libzstd failure, carrying the codec's error name and code.
// It is produced exactly once, at the cgo boundary; higher layers wrap it
// into their own sentinel kinds.
type Error struct {
	code uint
	name string
}

func (e *Error) Error() string {
	return "zstd: " + e.name
}

// Code returns the raw ZSTD_ErrorCode value.
func (e *Error) Code() uint { return e.code }

func resultError(result C.size_t, fn string) error {
	if C.ZSTD_isError(result) == 0 {
		return nil
	}

	return &Error{
		code: uint(C.ZSTD_getErrorCode(result)),
		name: fn + ": " + C.GoString(C.ZSTD_getErrorName(result)),
	}
}

func srcSizeWrongError(fn string) error {
	return &Error{
		code: uint(C.ZSTD_error_srcSize_wrong),
		name: fn + ": Src size is incorrect",
	}
}

// IsSrcSizeWrong reports whether err is the codec's "input too short for
// this query" condition. Streaming frame walkers retry with more input when
// they see it.
func IsSrcSizeWrong(err error) bool {
	var ze *Error
	if !errors.As(err, &ze) {
		return false
	}

	return ze.code == uint(C.ZSTD_error_srcSize_wrong)
}
