package codec

import "time"

// NoModule is the module id reported for channels without a module
const NoModule = -1

// Header describes a run and the file it was read from
type Header struct {
	Zipped        bool   // Payloads in this file are snappy compressed
	FileNumber    int32  // File number recorded by the writer
	StartDate     int64  // Run start, Unix seconds
	CreationDate  int64  // File creation, Unix seconds
	RunIdentifier string // Run name
	RunMode       string // Optional, "" when absent
	StartedBy     string // Optional, "" when absent
	Notes         string // Optional, "" when absent
}

// StartTime returns StartDate as a time.Time
func (h Header) StartTime() time.Time {
	return time.Unix(h.StartDate, 0).UTC()
}

// CreationTime returns CreationDate as a time.Time
func (h Header) CreationTime() time.Time {
	return time.Unix(h.CreationDate, 0).UTC()
}

// Event is one decoded event record
type Event struct {
	Number   int32
	Channels []Channel
}

// Channel holds the data items recorded by one channel of one module
type Channel struct {
	ID        int32
	Module    int32
	HasModule bool
	Data      []Data
}

// Data is a single timestamped payload
type Data struct {
	Time    int64 // 0 when absent
	HasTime bool
	Payload []byte
}

// Key returns the channel's lookup key, with NoModule standing in for an
// absent module.
func (c *Channel) Key() (id, module int) {
	if !c.HasModule {
		return int(c.ID), NoModule
	}
	return int(c.ID), int(c.Module)
}

// Matches reports whether the channel answers to (id, module). A module of
// NoModule only matches channels without a module.
func (c *Channel) Matches(id, module int) bool {
	if int(c.ID) != id {
		return false
	}
	if module == NoModule {
		return !c.HasModule
	}
	return c.HasModule && int(c.Module) == module
}
