package frame

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// DefaultMaxRecordSize caps a single record at 64 MiB.
const DefaultMaxRecordSize = 64 << 20

// Errors
var (
	ErrTruncated      = &FrameError{"truncated record"}
	ErrRecordTooLarge = &FrameError{"record exceeds maximum size"}
)

// FrameError represents a framing error
type FrameError struct {
	Message string
}

func (e *FrameError) Error() string {
	return e.Message
}

// Option configures a Stream
type Option func(*Stream)

// WithMaxRecordSize sets the largest length prefix the stream accepts
func WithMaxRecordSize(n int) Option {
	return func(s *Stream) {
		if n > 0 {
			s.maxRecordSize = n
		}
	}
}

// WithBufferSize sets the size of the read buffer
func WithBufferSize(n int) Option {
	return func(s *Stream) {
		s.bufferSize = n
	}
}

// Stream reads length-prefixed records from an underlying reader.
// Format: [uvarint32 length][length bytes]
type Stream struct {
	reader        *bufio.Reader
	offset        int64
	records       int64
	maxRecordSize int
	bufferSize    int
}

// NewStream creates a new record stream over r
func NewStream(r io.Reader, opts ...Option) *Stream {
	s := &Stream{
		maxRecordSize: DefaultMaxRecordSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bufferSize > 0 {
		s.reader = bufio.NewReaderSize(r, s.bufferSize)
	} else {
		s.reader = bufio.NewReader(r)
	}
	return s
}

// ReadRecord reads the next record. It returns io.EOF only when the
// underlying reader is exhausted on a record boundary.
func (s *Stream) ReadRecord() ([]byte, error) {
	size, n, err := s.readLength()
	if err != nil {
		return nil, err
	}
	s.offset += int64(n)

	if size > uint64(s.maxRecordSize) {
		// Skip the payload so the next call starts on a record boundary.
		skipped, err := io.CopyN(io.Discard, s.reader, int64(size))
		s.offset += skipped
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: oversized record of %d bytes, got %d", ErrTruncated, size, skipped)
			}
			return nil, err
		}
		return nil, fmt.Errorf("%w: %d > %d at offset %d", ErrRecordTooLarge, size, s.maxRecordSize, s.offset-int64(size))
	}

	data := make([]byte, size)
	read, err := io.ReadFull(s.reader, data)
	s.offset += int64(read)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: wanted %d bytes, got %d", ErrTruncated, size, read)
		}
		return nil, err
	}

	s.records++
	return data, nil
}

// readLength decodes the varint length prefix, returning the number of
// prefix bytes consumed alongside the value.
func (s *Stream) readLength() (uint64, int, error) {
	var (
		value uint64
		shift uint
	)
	for i := 0; i < binary.MaxVarintLen64; i++ {
		b, err := s.reader.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if i == 0 {
					return 0, 0, io.EOF
				}
				return 0, i, fmt.Errorf("%w: partial length prefix", ErrTruncated)
			}
			return 0, i, err
		}
		value |= uint64(b&0x7f) << shift
		if b < 0x80 {
			if value > math.MaxUint32 {
				return 0, i + 1, fmt.Errorf("%w: length prefix overflows 32 bits", ErrRecordTooLarge)
			}
			return value, i + 1, nil
		}
		shift += 7
	}
	return 0, binary.MaxVarintLen64, fmt.Errorf("%w: malformed length prefix", ErrRecordTooLarge)
}

// Offset returns the number of bytes consumed so far
func (s *Stream) Offset() int64 {
	return s.offset
}

// RecordsRead returns the number of complete records returned so far
func (s *Stream) RecordsRead() int64 {
	return s.records
}
