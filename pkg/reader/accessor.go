package reader

import (
	"fmt"

	"github.com/ssargent/pff/pkg/codec"
)

// Event returns the current event. The event and its payloads are owned
// by the reader and must not be modified.
func (r *Reader) Event() (*codec.Event, error) {
	if r.current == nil {
		return nil, ErrNoCurrentEvent
	}
	return r.current.event, nil
}

// EventNumber returns the number of the current event
func (r *Reader) EventNumber() (int, error) {
	ev, err := r.Event()
	if err != nil {
		return 0, err
	}
	return int(ev.Number), nil
}

// ChannelCount returns the number of channels in the current event
func (r *Reader) ChannelCount() (int, error) {
	ev, err := r.Event()
	if err != nil {
		return 0, err
	}
	return len(ev.Channels), nil
}

// channel returns the channel at index, bounds checked
func (r *Reader) channel(index int) (*codec.Channel, error) {
	ev, err := r.Event()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(ev.Channels) {
		return nil, fmt.Errorf("%w: channel %d of %d", ErrIndexOutOfRange, index, len(ev.Channels))
	}
	return &ev.Channels[index], nil
}

// DataCount returns the number of data items in the channel at index
func (r *Reader) DataCount(channelIndex int) (int, error) {
	ch, err := r.channel(channelIndex)
	if err != nil {
		return 0, err
	}
	return len(ch.Data), nil
}

// DataCountByKey returns the number of data items in the first channel
// matching (channelID, moduleID). Use codec.NoModule for channels without
// a module.
func (r *Reader) DataCountByKey(channelID, moduleID int) (int, error) {
	index, err := r.ChannelIndexForKey(channelID, moduleID)
	if err != nil {
		return 0, err
	}
	return r.DataCount(index)
}

// ChannelKeyAt returns the (channel id, module id) of the channel at index.
// The module id is codec.NoModule when the channel has none.
func (r *Reader) ChannelKeyAt(channelIndex int) (channelID, moduleID int, err error) {
	ch, err := r.channel(channelIndex)
	if err != nil {
		return 0, 0, err
	}
	channelID, moduleID = ch.Key()
	return channelID, moduleID, nil
}

// ChannelIndexForKey returns the index of the first channel matching
// (channelID, moduleID)
func (r *Reader) ChannelIndexForKey(channelID, moduleID int) (int, error) {
	ev, err := r.Event()
	if err != nil {
		return 0, err
	}
	// Linear scan; channel counts per event are small.
	for i := range ev.Channels {
		if ev.Channels[i].Matches(channelID, moduleID) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: channel %d module %d", ErrNotFound, channelID, moduleID)
}

// DataAt returns the payload and timestamp of a data item. For files
// written uncompressed the payload is the reader's own slice and must not
// be modified; for compressed files it is a new buffer owned by the caller.
// The timestamp is 0 when the item has none.
func (r *Reader) DataAt(channelIndex, dataIndex int) (payload []byte, timestamp int64, err error) {
	ch, err := r.channel(channelIndex)
	if err != nil {
		return nil, 0, err
	}
	if dataIndex < 0 || dataIndex >= len(ch.Data) {
		return nil, 0, fmt.Errorf("%w: data %d of %d in channel %d", ErrIndexOutOfRange, dataIndex, len(ch.Data), channelIndex)
	}
	d := ch.Data[dataIndex]

	if !r.current.compressed {
		return d.Payload, d.Time, nil
	}

	out, err := r.decompressor().Decompress(d.Payload)
	if err != nil {
		r.metrics.decodeError(kindDecompress)
		return nil, 0, fmt.Errorf("channel %d data %d: %w", channelIndex, dataIndex, err)
	}
	r.metrics.decompressed(len(out))
	return out, d.Time, nil
}
