package hcompress

import (
	"errors"
	"fmt"
)

// Caller precondition errors. These are reported immediately and are
// never retried.
var (
	ErrInvalidDimensions = errors.New("hcompress: invalid dimensions")
	ErrInvalidScale      = errors.New("hcompress: invalid scale factor")
)

// Stream integrity errors, detected while decoding. A decode that fails
// with one of these never returns a grid.
var (
	ErrBadMagic        = errors.New("hcompress: bad magic number")
	ErrTruncatedStream = errors.New("hcompress: truncated stream")
	ErrCorruptPayload  = errors.New("hcompress: corrupt payload")
)

// ErrIO wraps failures of the underlying reader or writer.
var ErrIO = errors.New("hcompress: i/o failure")

func ioError(err error) error {
	return fmt.Errorf("%w: %w", ErrIO, err)
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptPayload, fmt.Sprintf(format, args...))
}
