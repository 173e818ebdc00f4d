package codec

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Errors
var (
	ErrInvalidHeader = &CodecError{"invalid header record"}
	ErrInvalidRecord = &CodecError{"invalid event record"}
)

// CodecError represents a record decoding error
type CodecError struct {
	Message string
}

func (e *CodecError) Error() string {
	return e.Message
}

// field is one decoded top-level field of a message
type field struct {
	num    protowire.Number
	typ    protowire.Type
	varint uint64
	bytes  []byte
}

// walk calls fn for every field in b. Only varint and bytes values are
// decoded; fields of other wire types reach fn with just num and typ set,
// so known fields fail expect and unknown ones are ignored.
func walk(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.varint, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			f.bytes, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

// expect checks the wire type of a known field
func expect(f field, typ protowire.Type) error {
	if f.typ != typ {
		return fmt.Errorf("field %d: wire type %d, want %d", f.num, f.typ, typ)
	}
	return nil
}

// DecodeHeader decodes a header record
func DecodeHeader(data []byte) (*Header, error) {
	h := &Header{}
	var seen [6]bool

	err := walk(data, func(f field) error {
		switch f.num {
		case 1:
			if err := expect(f, protowire.VarintType); err != nil {
				return err
			}
			h.Zipped = protowire.DecodeBool(f.varint)
		case 2:
			if err := expect(f, protowire.VarintType); err != nil {
				return err
			}
			h.FileNumber = int32(f.varint)
		case 3:
			if err := expect(f, protowire.VarintType); err != nil {
				return err
			}
			h.StartDate = int64(f.varint)
		case 4:
			if err := expect(f, protowire.VarintType); err != nil {
				return err
			}
			h.CreationDate = int64(f.varint)
		case 5:
			if err := expect(f, protowire.BytesType); err != nil {
				return err
			}
			h.RunIdentifier = string(f.bytes)
		case 6, 7, 8:
			if err := expect(f, protowire.BytesType); err != nil {
				return err
			}
			switch f.num {
			case 6:
				h.RunMode = string(f.bytes)
			case 7:
				h.StartedBy = string(f.bytes)
			case 8:
				h.Notes = string(f.bytes)
			}
		default:
			return nil
		}
		if f.num <= 5 {
			seen[f.num] = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}

	for num := 1; num <= 5; num++ {
		if !seen[num] {
			return nil, fmt.Errorf("%w: missing required field %d", ErrInvalidHeader, num)
		}
	}
	return h, nil
}

// DecodeEvent decodes an event record
func DecodeEvent(data []byte) (*Event, error) {
	ev, err := decodeEvent(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return ev, nil
}

func decodeEvent(data []byte) (*Event, error) {
	ev := &Event{}
	hasNumber := false

	err := walk(data, func(f field) error {
		switch f.num {
		case 1:
			if err := expect(f, protowire.VarintType); err != nil {
				return err
			}
			ev.Number = int32(f.varint)
			hasNumber = true
		case 2:
			if err := expect(f, protowire.BytesType); err != nil {
				return err
			}
			ch, err := decodeChannel(f.bytes)
			if err != nil {
				return fmt.Errorf("channel %d: %w", len(ev.Channels), err)
			}
			ev.Channels = append(ev.Channels, ch)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !hasNumber {
		return nil, fmt.Errorf("missing event number")
	}
	return ev, nil
}

func decodeChannel(data []byte) (Channel, error) {
	var ch Channel
	hasID := false

	err := walk(data, func(f field) error {
		switch f.num {
		case 1:
			if err := expect(f, protowire.VarintType); err != nil {
				return err
			}
			ch.ID = int32(f.varint)
			hasID = true
		case 2:
			if err := expect(f, protowire.VarintType); err != nil {
				return err
			}
			ch.Module = int32(f.varint)
			ch.HasModule = true
		case 3:
			if err := expect(f, protowire.BytesType); err != nil {
				return err
			}
			d, err := decodeData(f.bytes)
			if err != nil {
				return fmt.Errorf("data %d: %w", len(ch.Data), err)
			}
			ch.Data = append(ch.Data, d)
		}
		return nil
	})
	if err != nil {
		return Channel{}, err
	}
	if !hasID {
		return Channel{}, fmt.Errorf("missing channel id")
	}
	return ch, nil
}

func decodeData(data []byte) (Data, error) {
	var d Data
	hasPayload := false

	err := walk(data, func(f field) error {
		switch f.num {
		case 1:
			if err := expect(f, protowire.VarintType); err != nil {
				return err
			}
			d.Time = int64(f.varint)
			d.HasTime = true
		case 2:
			if err := expect(f, protowire.BytesType); err != nil {
				return err
			}
			d.Payload = f.bytes
			hasPayload = true
		}
		return nil
	})
	if err != nil {
		return Data{}, err
	}
	if !hasPayload {
		return Data{}, fmt.Errorf("missing payload")
	}
	return d, nil
}
