// Package pfftest builds framed event log files for tests.
package pfftest

import (
	"os"
	"testing"

	"github.com/golang/snappy"
	"google.golang.org/protobuf/encoding/protowire"
)

// Header mirrors the on-disk run header. Nil pointers leave optional fields unset.
type Header struct {
	Zipped        bool
	FileNumber    int32
	StartDate     int64
	CreationDate  int64
	RunIdentifier string
	RunMode       *string
	StartedBy     *string
	Notes         *string
}

// Event mirrors the on-disk event record.
type Event struct {
	Number   int32
	Channels []Channel
}

// Channel mirrors one channel of an event. A nil Module leaves the field unset.
type Channel struct {
	ID     int32
	Module *int32
	Data   []Data
}

// Data mirrors one data item. A nil Time leaves the field unset.
type Data struct {
	Time    *int64
	Payload []byte
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// EncodeHeader serializes h in protobuf wire format.
func EncodeHeader(h Header) []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeBool(h.Zipped))
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(int64(h.FileNumber)))
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(h.StartDate))
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(h.CreationDate))
	b = protowire.AppendTag(b, 5, protowire.BytesType)
	b = protowire.AppendString(b, h.RunIdentifier)
	b = appendOptionalString(b, 6, h.RunMode)
	b = appendOptionalString(b, 7, h.StartedBy)
	b = appendOptionalString(b, 8, h.Notes)
	return b
}

func appendOptionalString(b []byte, num protowire.Number, s *string) []byte {
	if s == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, *s)
}

// EncodeEvent serializes e in protobuf wire format.
func EncodeEvent(e Event) []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(int64(e.Number)))
	for _, ch := range e.Channels {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, encodeChannel(ch))
	}
	return b
}

func encodeChannel(ch Channel) []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(int64(ch.ID)))
	if ch.Module != nil {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(int64(*ch.Module)))
	}
	for _, d := range ch.Data {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, encodeData(d))
	}
	return b
}

func encodeData(d Data) []byte {
	var b []byte
	if d.Time != nil {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(*d.Time))
	}
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	return protowire.AppendBytes(b, d.Payload)
}

// Frame prefixes record with its uvarint length.
func Frame(record []byte) []byte {
	b := protowire.AppendVarint(nil, uint64(len(record)))
	return append(b, record...)
}

// Compress snappy-encodes every payload of e, as a zipped writer would.
func Compress(e Event) Event {
	out := Event{Number: e.Number, Channels: make([]Channel, len(e.Channels))}
	for i, ch := range e.Channels {
		c := Channel{ID: ch.ID, Module: ch.Module, Data: make([]Data, len(ch.Data))}
		for j, d := range ch.Data {
			c.Data[j] = Data{Time: d.Time, Payload: snappy.Encode(nil, d.Payload)}
		}
		out.Channels[i] = c
	}
	return out
}

// Build returns the bytes of a complete file: one header frame followed
// by one frame per event.
func Build(h Header, events ...Event) []byte {
	b := Frame(EncodeHeader(h))
	for _, e := range events {
		b = append(b, Frame(EncodeEvent(e))...)
	}
	return b
}

// WriteFile writes a complete file to path. Payloads are compressed
// when h.Zipped is set.
func WriteFile(t testing.TB, path string, h Header, events ...Event) {
	t.Helper()
	if h.Zipped {
		zipped := make([]Event, len(events))
		for i, e := range events {
			zipped[i] = Compress(e)
		}
		events = zipped
	}
	WriteRaw(t, path, Build(h, events...))
}

// WriteRaw writes data to path verbatim.
func WriteRaw(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// SimpleEvent returns an event with one module-less channel holding payloads.
func SimpleEvent(number int32, payloads ...string) Event {
	ch := Channel{ID: 1}
	for i, p := range payloads {
		ch.Data = append(ch.Data, Data{Time: Ptr(int64(i + 1)), Payload: []byte(p)})
	}
	return Event{Number: number, Channels: []Channel{ch}}
}
