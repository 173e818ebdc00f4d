package reader

import (
	"errors"

	"github.com/ssargent/pff/pkg/codec"
)

// EventIterator provides streaming access to events
type EventIterator interface {
	Next() bool
	Event() *codec.Event
	Err() error
	Close() error
}

// Events returns a streaming iterator over the remaining events
func (r *Reader) Events() EventIterator {
	return &eventIterator{reader: r}
}

// eventIterator implements EventIterator on top of Reader.Next
type eventIterator struct {
	reader *Reader
	event  *codec.Event
	err    error
}

func (it *eventIterator) Next() bool {
	if it.err != nil {
		return false
	}
	if err := it.reader.Next(); err != nil {
		if !errors.Is(err, ErrEndOfStream) {
			it.err = err
		}
		it.event = nil
		return false
	}
	it.event, it.err = it.reader.Event()
	return it.err == nil
}

func (it *eventIterator) Event() *codec.Event {
	return it.event
}

// Err returns the error that stopped iteration, or nil after a clean end
// of stream
func (it *eventIterator) Err() error {
	return it.err
}

func (it *eventIterator) Close() error {
	// Don't close the underlying reader as it's owned by the caller
	return nil
}
