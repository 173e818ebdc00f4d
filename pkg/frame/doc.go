// Package frame reads length-prefixed records from a byte stream.
//
// Each record on disk is laid out as
//
//	[uvarint32 length][length bytes]
//
// which matches the delimited framing produced by protobuf coded output
// streams. A Stream reports io.EOF only when the input ends exactly on a
// record boundary; any shortfall after a length prefix has been read is
// reported as ErrTruncated.
package frame
