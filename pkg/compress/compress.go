// Package compress decompresses event payloads.
package compress

import (
	"fmt"

	"github.com/golang/snappy"
)

// ErrCorrupt is returned when a payload cannot be decompressed
var ErrCorrupt = &CompressError{"corrupt compressed payload"}

// CompressError represents a decompression error
type CompressError struct {
	Message string
}

func (e *CompressError) Error() string {
	return e.Message
}

// Decompressor turns a compressed payload back into its original bytes
type Decompressor interface {
	// UncompressedSize probes the decoded length without decoding
	UncompressedSize(src []byte) (int, error)
	// Decompress decodes src into a newly allocated buffer owned by the caller
	Decompress(src []byte) ([]byte, error)
}

// maxExpansion bounds how far a snappy block can expand. The densest
// element is a 3 byte copy emitting 64 bytes.
const maxExpansion = 22

// Snappy decodes raw (unframed) snappy blocks
type Snappy struct {
	// MaxSize caps the decoded length of a payload (0 = no cap)
	MaxSize int
}

// UncompressedSize reads the length preamble of a snappy block. A preamble
// that src could not possibly expand to, or that exceeds MaxSize, is
// reported as corrupt.
func (s Snappy) UncompressedSize(src []byte) (int, error) {
	n, err := snappy.DecodedLen(src)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if n > maxExpansion*len(src) {
		return 0, fmt.Errorf("%w: %d bytes cannot decode to %d", ErrCorrupt, len(src), n)
	}
	if s.MaxSize > 0 && n > s.MaxSize {
		return 0, fmt.Errorf("%w: decoded size %d exceeds limit %d", ErrCorrupt, n, s.MaxSize)
	}
	return n, nil
}

// Decompress allocates a buffer of exactly the probed size and decodes into it
func (s Snappy) Decompress(src []byte) ([]byte, error) {
	n, err := s.UncompressedSize(src)
	if err != nil {
		return nil, err
	}

	dst := make([]byte, n)
	out, err := snappy.Decode(dst, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return out, nil
}

// None returns payloads unchanged
type None struct{}

// UncompressedSize returns len(src)
func (None) UncompressedSize(src []byte) (int, error) {
	return len(src), nil
}

// Decompress returns src itself
func (None) Decompress(src []byte) ([]byte, error) {
	return src, nil
}

// For returns the decompressor governing a file with the given zipped
// flag. maxSize caps decoded payloads (0 = no cap).
func For(zipped bool, maxSize int) Decompressor {
	if zipped {
		return Snappy{MaxSize: maxSize}
	}
	return None{}
}
