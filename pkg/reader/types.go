package reader

import (
	"go.uber.org/zap"

	"github.com/ssargent/pff/pkg/frame"
)

// Extension is the file suffix of framed event log files
const Extension = ".pff"

// ReaderConfig holds configuration for the reader
type ReaderConfig struct {
	BasePath       string      // Explicit .pff file or numbered file stub
	MaxRecordSize  int         // Largest accepted record (0 = frame.DefaultMaxRecordSize)
	MaxPayloadSize int         // Largest decompressed payload (0 = the record size limit)
	BufferSize     int         // Read buffer size (0 = bufio default)
	Logger         *zap.Logger // Optional, defaults to a no-op logger
	Metrics        *Metrics    // Optional
}

// Option adjusts a ReaderConfig
type Option func(*ReaderConfig)

// WithLogger sets the reader's logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *ReaderConfig) {
		c.Logger = logger
	}
}

// WithMetrics attaches prometheus metrics to the reader
func WithMetrics(m *Metrics) Option {
	return func(c *ReaderConfig) {
		c.Metrics = m
	}
}

// WithMaxRecordSize overrides the record size limit
func WithMaxRecordSize(n int) Option {
	return func(c *ReaderConfig) {
		c.MaxRecordSize = n
	}
}

// WithMaxPayloadSize caps the size of decompressed payloads
func WithMaxPayloadSize(n int) Option {
	return func(c *ReaderConfig) {
		c.MaxPayloadSize = n
	}
}

func (c ReaderConfig) maxPayloadSize() int {
	switch {
	case c.MaxPayloadSize > 0:
		return c.MaxPayloadSize
	case c.MaxRecordSize > 0:
		return c.MaxRecordSize
	default:
		return frame.DefaultMaxRecordSize
	}
}

func (c ReaderConfig) frameOptions() []frame.Option {
	var opts []frame.Option
	if c.MaxRecordSize > 0 {
		opts = append(opts, frame.WithMaxRecordSize(c.MaxRecordSize))
	}
	if c.BufferSize > 0 {
		opts = append(opts, frame.WithBufferSize(c.BufferSize))
	}
	return opts
}

// State is the reader's lifecycle state
type State int

const (
	StateUninitialized State = iota
	StateHeaderRead          // a file is open and its header decoded, no event from it yet
	StateEventHeld           // an event from the open file is current
	StateExhausted           // no further files
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateHeaderRead:
		return "header-read"
	case StateEventHeld:
		return "event-held"
	case StateExhausted:
		return "exhausted"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
