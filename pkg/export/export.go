// Package export copies decoded events from a reader into a pebble store.
//
// Every export run is a batch identified by a KSUID, so repeated exports of
// the same files never collide and sort by creation time. Keys are laid out
// as
//
//	<batch>/header/<file %06d>                          run header (YAML)
//	<batch>/event/<ordinal %010d>                        event summary (YAML)
//	<batch>/event/<ordinal %010d>/<channel %04d>/<data %06d>  [time int64 BE][payload]
//
// where ordinal is the event's position in the stream. Payloads are stored
// decompressed.
package export

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/pff/pkg/codec"
	"github.com/ssargent/pff/pkg/reader"
)

// ErrNotFound is returned when an exported record does not exist
var ErrNotFound = errors.New("export record not found")

// Exporter writes events into a pebble database
type Exporter struct {
	db     *pebble.DB
	logger *zap.Logger
}

// Summary describes one completed export
type Summary struct {
	Batch  ksuid.KSUID
	Files  int
	Events int
	Items  int
	Bytes  int64
}

// HeaderRecord is the stored form of a run header
type HeaderRecord struct {
	File          int    `yaml:"file"`
	FileNumber    int32  `yaml:"file_number"`
	Zipped        bool   `yaml:"zipped"`
	StartDate     int64  `yaml:"start_date"`
	CreationDate  int64  `yaml:"creation_date"`
	RunIdentifier string `yaml:"run_identifier"`
	RunMode       string `yaml:"run_mode,omitempty"`
	StartedBy     string `yaml:"started_by,omitempty"`
	Notes         string `yaml:"notes,omitempty"`
}

// EventRecord is the stored summary of one event
type EventRecord struct {
	Number   int32           `yaml:"number"`
	File     int             `yaml:"file"`
	Channels []ChannelRecord `yaml:"channels"`
}

// ChannelRecord is the stored summary of one channel
type ChannelRecord struct {
	ID     int `yaml:"id"`
	Module int `yaml:"module"`
	Items  int `yaml:"items"`
}

// Open opens (or creates) the export database in dir
func Open(dir string, logger *zap.Logger) (*Exporter, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open export store: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{db: db, logger: logger}, nil
}

// Close closes the export database
func (e *Exporter) Close() error {
	return e.db.Close()
}

func headerKey(batch ksuid.KSUID, file int) []byte {
	return []byte(fmt.Sprintf("%s/header/%06d", batch, file))
}

func eventKey(batch ksuid.KSUID, ordinal int) []byte {
	return []byte(fmt.Sprintf("%s/event/%010d", batch, ordinal))
}

func itemKey(batch ksuid.KSUID, ordinal, channel, data int) []byte {
	return []byte(fmt.Sprintf("%s/event/%010d/%04d/%06d", batch, ordinal, channel, data))
}

// Export drains r into a new batch. The header of every file the reader
// visits is stored, including files holding no events. It stops early with
// ctx.Err() when ctx is cancelled; records written before that remain in
// the store.
func (e *Exporter) Export(ctx context.Context, r *reader.Reader) (*Summary, error) {
	s := &Summary{Batch: ksuid.New()}

	h, err := r.Header()
	if err != nil {
		return s, err
	}
	if err := e.putHeader(s, r.FileIndex(), h); err != nil {
		return s, err
	}

	var headerErr error
	r.OnFileOpened(func(index int, h codec.Header) {
		if headerErr == nil {
			headerErr = e.putHeader(s, index, h)
		}
	})
	defer r.OnFileOpened(nil)

	for ordinal := 0; ; ordinal++ {
		select {
		case <-ctx.Done():
			return s, ctx.Err()
		default:
		}

		err := r.Next()
		if headerErr != nil {
			return s, headerErr
		}
		if errors.Is(err, reader.ErrEndOfStream) {
			break
		}
		if err != nil {
			return s, fmt.Errorf("export stopped after %d events: %w", s.Events, err)
		}

		if err := e.putEvent(s, ordinal, r); err != nil {
			return s, err
		}
	}

	e.logger.Info("export complete",
		zap.String("batch", s.Batch.String()),
		zap.Int("files", s.Files),
		zap.Int("events", s.Events),
		zap.Int("items", s.Items),
		zap.Int64("bytes", s.Bytes))
	return s, nil
}

func (e *Exporter) putHeader(s *Summary, file int, h codec.Header) error {
	data, err := yaml.Marshal(HeaderRecord{
		File:          file,
		FileNumber:    h.FileNumber,
		Zipped:        h.Zipped,
		StartDate:     h.StartDate,
		CreationDate:  h.CreationDate,
		RunIdentifier: h.RunIdentifier,
		RunMode:       h.RunMode,
		StartedBy:     h.StartedBy,
		Notes:         h.Notes,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if err := e.db.Set(headerKey(s.Batch, file), data, pebble.NoSync); err != nil {
		return fmt.Errorf("failed to store header %d: %w", file, err)
	}
	s.Files++
	return nil
}

func (e *Exporter) putEvent(s *Summary, ordinal int, r *reader.Reader) error {
	ev, err := r.Event()
	if err != nil {
		return err
	}

	b := e.db.NewBatch()
	defer b.Close()

	rec := EventRecord{Number: ev.Number, File: r.FileIndex()}
	items := 0
	var size int64
	for c := range ev.Channels {
		id, module := ev.Channels[c].Key()
		rec.Channels = append(rec.Channels, ChannelRecord{ID: id, Module: module, Items: len(ev.Channels[c].Data)})

		for d := range ev.Channels[c].Data {
			payload, ts, err := r.DataAt(c, d)
			if err != nil {
				return fmt.Errorf("event %d: %w", ev.Number, err)
			}
			value := make([]byte, 8+len(payload))
			binary.BigEndian.PutUint64(value, uint64(ts))
			copy(value[8:], payload)
			if err := b.Set(itemKey(s.Batch, ordinal, c, d), value, nil); err != nil {
				return err
			}
			items++
			size += int64(len(payload))
		}
	}

	summary, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := b.Set(eventKey(s.Batch, ordinal), summary, nil); err != nil {
		return err
	}
	if err := b.Commit(pebble.NoSync); err != nil {
		return fmt.Errorf("failed to commit event %d: %w", ev.Number, err)
	}

	s.Events++
	s.Items += items
	s.Bytes += size
	return nil
}

// get returns a copy of the value stored under key
func (e *Exporter) get(key []byte) ([]byte, error) {
	data, closer, err := e.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, err
	}
	defer closer.Close()

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Header returns the stored header of file in batch
func (e *Exporter) Header(batch ksuid.KSUID, file int) (*HeaderRecord, error) {
	data, err := e.get(headerKey(batch, file))
	if err != nil {
		return nil, err
	}
	var h HeaderRecord
	if err := yaml.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}
	return &h, nil
}

// Event returns the stored summary of the event at ordinal in batch
func (e *Exporter) Event(batch ksuid.KSUID, ordinal int) (*EventRecord, error) {
	data, err := e.get(eventKey(batch, ordinal))
	if err != nil {
		return nil, err
	}
	var ev EventRecord
	if err := yaml.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("failed to parse event: %w", err)
	}
	return &ev, nil
}

// Payload returns the stored payload and timestamp of one data item
func (e *Exporter) Payload(batch ksuid.KSUID, ordinal, channel, data int) ([]byte, int64, error) {
	value, err := e.get(itemKey(batch, ordinal, channel, data))
	if err != nil {
		return nil, 0, err
	}
	if len(value) < 8 {
		return nil, 0, fmt.Errorf("corrupt export value for %s", itemKey(batch, ordinal, channel, data))
	}
	return value[8:], int64(binary.BigEndian.Uint64(value)), nil
}

// HasModule reports whether the channel was recorded with a module
func (c ChannelRecord) HasModule() bool {
	return c.Module != codec.NoModule
}
