package reader

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/ssargent/pff/pkg/codec"
	"github.com/ssargent/pff/pkg/compress"
)

// current is the most recently decoded event together with the file
// state that governs its payloads
type current struct {
	event      *codec.Event
	compressed bool
}

// Reader provides sequential access to the events of a framed event log
// spread over one or more numbered files. A Reader is not safe for
// concurrent use.
type Reader struct {
	config  ReaderConfig
	logger  *zap.Logger
	metrics *Metrics

	file    *fileContext
	index   int // index of the last file opened
	header  *codec.Header
	current *current
	state   State

	onFileOpened func(index int, header codec.Header)
}

// Open opens base and decodes the header of its first file. base is either
// an explicit path ending in ".pff" or a stub to which a six digit file
// index and ".pff" are appended.
func Open(base string, opts ...Option) (*Reader, error) {
	config := ReaderConfig{BasePath: base}
	for _, opt := range opts {
		opt(&config)
	}
	return NewReader(config)
}

// NewReader creates a reader from config and opens its first file
func NewReader(config ReaderConfig) (*Reader, error) {
	if config.BasePath == "" {
		return nil, fmt.Errorf("%w: empty path", ErrOpenFailed)
	}

	r := &Reader{
		config:  config,
		logger:  config.Logger,
		metrics: config.Metrics,
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}

	fc, err := r.openFile(0)
	if err != nil {
		return nil, err
	}
	r.file = fc
	r.header = fc.header
	r.state = StateHeaderRead
	return r, nil
}

// Next reads the next event, rolling over to the next numbered file when
// the current one is exhausted. It returns ErrEndOfStream when no files
// remain. On a decode error the previously held event stays current.
func (r *Reader) Next() error {
	switch r.state {
	case StateClosed:
		return ErrClosed
	case StateExhausted:
		return ErrEndOfStream
	}

	for {
		data, err := r.file.stream.ReadRecord()
		if errors.Is(err, io.EOF) {
			r.logger.Debug("end of file", zap.String("path", r.file.path),
				zap.Int64("records", r.file.stream.RecordsRead()))
			if err := r.advance(); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			r.metrics.decodeError(kindFrame)
			return fmt.Errorf("%s: %w", r.file.path, err)
		}

		event, err := codec.DecodeEvent(data)
		if err != nil {
			r.metrics.decodeError(kindRecord)
			r.logger.Error("could not parse event",
				zap.String("path", r.file.path),
				zap.Int64("offset", r.file.stream.Offset()),
				zap.Error(err))
			return fmt.Errorf("%s: %w", r.file.path, err)
		}

		r.current = &current{
			event:      event,
			compressed: r.file.compressed(),
		}
		r.state = StateEventHeld
		r.metrics.eventRead(len(data))
		return nil
	}
}

// OnFileOpened registers fn to be called each time Next rolls over to a
// new file, including files holding no events. The file opened by Open is
// not reported. A nil fn removes the callback.
func (r *Reader) OnFileOpened(fn func(index int, header codec.Header)) {
	r.onFileOpened = fn
}

// Header returns the header of the most recently opened file
func (r *Reader) Header() (codec.Header, error) {
	if r.header == nil {
		return codec.Header{}, ErrClosed
	}
	return *r.header, nil
}

// FileIndex returns the index of the last file opened
func (r *Reader) FileIndex() int {
	return r.index
}

// FilePath returns the path of the open file, or "" when none is open
func (r *Reader) FilePath() string {
	if r.file == nil {
		return ""
	}
	return r.file.path
}

// State returns the reader's lifecycle state
func (r *Reader) State() State {
	return r.state
}

// decompressor returns the decompressor for the current event's file
func (r *Reader) decompressor() compress.Decompressor {
	return compress.For(r.current.compressed, r.config.maxPayloadSize())
}

// Close closes the open file and drops the current event
func (r *Reader) Close() error {
	if r.state == StateClosed {
		return nil
	}
	err := r.closeFile()
	r.current = nil
	r.header = nil
	r.state = StateClosed
	return err
}
