// Package codec decodes the structured records stored in framed event log
// (.pff) files.
//
// Records are protobuf messages. The package decodes them directly from the
// wire format, so no generated code is required. Two message types exist:
//
// # Header
//
// The first record of every file describes the run and the file itself:
//
//	1 zipped        bool    required
//	2 filenumber    int32   required
//	3 startdate     int64   required
//	4 creationdate  int64   required
//	5 runidentifier string  required
//	6 runmode       string  optional
//	7 startedby     string  optional
//	8 notes         string  optional
//
// Missing optional strings decode to "".
//
// # Event
//
// Every following record is an event:
//
//	Event   { 1 number int32 required; 2 channel Channel repeated }
//	Channel { 1 id int32 required; 2 module int32 optional; 3 data Data repeated }
//	Data    { 1 time int64 optional; 2 payload bytes required }
//
// Unknown fields are skipped. Missing required fields, malformed wire data
// and wire type mismatches are reported as ErrInvalidHeader or
// ErrInvalidRecord.
//
// # Payloads
//
// Payload slices returned by DecodeEvent alias the input buffer. Callers
// must not modify them.
package codec
