// Package reader reads framed event log (.pff) files.
//
// A run is stored as one or more files. Each file starts with a header
// record followed by any number of event records:
//
//	r, err := reader.Open("/data/run_0042_")   // run_0042_000000.pff, run_0042_000001.pff, ...
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	for {
//	    err := r.Next()
//	    if errors.Is(err, reader.ErrEndOfStream) {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    n, _ := r.ChannelCount()
//	    for c := 0; c < n; c++ {
//	        payload, ts, err := r.DataAt(c, 0)
//	        ...
//	    }
//	}
//
// Passing a path ending in ".pff" reads that single file only. Otherwise
// the path is a stub and files are opened in order as stub000000.pff,
// stub000001.pff and so on until one is missing.
//
// Payloads of files whose header sets the zipped flag are snappy
// decompressed by DataAt into a buffer owned by the caller.
//
// Channels are addressed either by position or by (channel id, module id).
// Channels without a module answer to codec.NoModule (-1) only. When several
// channels share a key the first one in the event wins.
package reader
