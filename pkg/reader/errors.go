package reader

import (
	"github.com/ssargent/pff/pkg/codec"
	"github.com/ssargent/pff/pkg/compress"
	"github.com/ssargent/pff/pkg/frame"
)

// Errors
var (
	ErrOpenFailed      = &ReadError{"failed to open file"}
	ErrIndexOutOfRange = &ReadError{"index out of range"}
	ErrNotFound        = &ReadError{"channel not found"}
	ErrNoCurrentEvent  = &ReadError{"no current event"}
	ErrClosed          = &ReadError{"reader is closed"}

	// ErrEndOfStream signals that no further files exist. It is a normal
	// termination, not a failure.
	ErrEndOfStream = &ReadError{"end of stream"}

	ErrInvalidHeader  = codec.ErrInvalidHeader
	ErrInvalidRecord  = codec.ErrInvalidRecord
	ErrTruncated      = frame.ErrTruncated
	ErrRecordTooLarge = frame.ErrRecordTooLarge
	ErrDecompress     = compress.ErrCorrupt
)

// ReadError represents a reader error
type ReadError struct {
	Message string
}

func (e *ReadError) Error() string {
	return e.Message
}
