package reader

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ssargent/pff/internal/pfftest"
)

// readAll drains r and returns the event numbers in read order
func readAll(t *testing.T, r *Reader) []int {
	t.Helper()
	var numbers []int
	for {
		err := r.Next()
		if errors.Is(err, ErrEndOfStream) {
			return numbers
		}
		require.NoError(t, err)
		n, err := r.EventNumber()
		require.NoError(t, err)
		numbers = append(numbers, n)
	}
}

func TestReader_SingleFileReadsEveryEvent(t *testing.T) {
	testCases := []struct {
		name   string
		events int
	}{
		{"no events", 0},
		{"one event", 1},
		{"many events", 250},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "run.pff")
			var events []pfftest.Event
			var want []int
			for i := 0; i < tc.events; i++ {
				events = append(events, pfftest.SimpleEvent(int32(i*2), fmt.Sprintf("payload-%d", i)))
				want = append(want, i*2)
			}
			pfftest.WriteFile(t, path, pfftest.Header{RunIdentifier: "r"}, events...)

			r, err := Open(path)
			require.NoError(t, err)
			defer r.Close()

			assert.Equal(t, want, readAll(t, r))
			assert.ErrorIs(t, r.Next(), ErrEndOfStream)
		})
	}
}

func TestReader_RolloverWithoutLossOrDuplication(t *testing.T) {
	dir := t.TempDir()
	stub := filepath.Join(dir, "xe_")

	pfftest.WriteFile(t, stub+"000000.pff", pfftest.Header{RunIdentifier: "xe"},
		pfftest.SimpleEvent(0, "a"), pfftest.SimpleEvent(1, "b"), pfftest.SimpleEvent(2, "c"))
	// a file holding only its header is skipped over
	pfftest.WriteFile(t, stub+"000001.pff", pfftest.Header{RunIdentifier: "xe", FileNumber: 1})
	pfftest.WriteFile(t, stub+"000002.pff", pfftest.Header{RunIdentifier: "xe", FileNumber: 2, Zipped: true},
		pfftest.SimpleEvent(3, "d"), pfftest.SimpleEvent(4, "e"))

	r, err := Open(stub)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, []int{0, 1, 2, 3, 4}, readAll(t, r))
	assert.Equal(t, 2, r.FileIndex())
	assert.Equal(t, StateExhausted, r.State())
}

func TestReader_SingleNumberedFileEndsCleanly(t *testing.T) {
	stub := filepath.Join(t.TempDir(), "run_")
	pfftest.WriteFile(t, stub+"000000.pff", pfftest.Header{RunIdentifier: "r"}, pfftest.SimpleEvent(5, "x"))

	r, err := Open(stub)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Next())
	err = r.Next()
	assert.True(t, errors.Is(err, ErrEndOfStream))
	assert.False(t, errors.Is(err, ErrOpenFailed))
}

func TestReader_TruncatedEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cut.pff")
	data := pfftest.Build(pfftest.Header{RunIdentifier: "r"},
		pfftest.SimpleEvent(1, "complete"), pfftest.SimpleEvent(2, "cut off here"))
	pfftest.WriteRaw(t, path, data[:len(data)-4])

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Next())

	err = r.Next()
	assert.ErrorIs(t, err, ErrTruncated)
	assert.False(t, errors.Is(err, ErrEndOfStream))

	// the last good event stays current
	n, err := r.EventNumber()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestReader_InvalidRecordKeepsPreviousEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pff")
	data := pfftest.Build(pfftest.Header{RunIdentifier: "r"}, pfftest.SimpleEvent(7, "good"))
	data = append(data, pfftest.Frame([]byte{0xFF, 0xFF, 0xFF})...)
	data = append(data, pfftest.Frame(pfftest.EncodeEvent(pfftest.SimpleEvent(8, "after")))...)
	pfftest.WriteRaw(t, path, data)

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Next())

	err = r.Next()
	assert.ErrorIs(t, err, ErrInvalidRecord)
	n, err := r.EventNumber()
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	// the bad record is consumed and reading continues behind it
	require.NoError(t, r.Next())
	n, err = r.EventNumber()
	require.NoError(t, err)
	assert.Equal(t, 8, n)
}

func TestReader_MaxRecordSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.pff")
	pfftest.WriteFile(t, path, pfftest.Header{RunIdentifier: "r"},
		pfftest.SimpleEvent(1, string(make([]byte, 4096))))

	r, err := Open(path, WithMaxRecordSize(1024))
	require.NoError(t, err)
	defer r.Close()

	assert.ErrorIs(t, r.Next(), ErrRecordTooLarge)
	assert.ErrorIs(t, r.Next(), ErrEndOfStream)
}

func TestReader_MaxRecordSizeSkipsRejectedRecord(t *testing.T) {
	// The rejected record's payload opens with a well-formed framed event
	// that must never surface.
	hidden := pfftest.Frame(pfftest.EncodeEvent(pfftest.SimpleEvent(99, "inside")))
	oversized := append(hidden, make([]byte, 2048-len(hidden))...)

	var data []byte
	data = append(data, pfftest.Build(pfftest.Header{RunIdentifier: "r"}, pfftest.SimpleEvent(1, "a"))...)
	data = append(data, pfftest.Frame(oversized)...)
	data = append(data, pfftest.Frame(pfftest.EncodeEvent(pfftest.SimpleEvent(2, "b")))...)

	path := filepath.Join(t.TempDir(), "oversized.pff")
	pfftest.WriteRaw(t, path, data)

	r, err := Open(path, WithMaxRecordSize(1024))
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Next())
	n, err := r.EventNumber()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.ErrorIs(t, r.Next(), ErrRecordTooLarge)

	require.NoError(t, r.Next())
	n, err = r.EventNumber()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.ErrorIs(t, r.Next(), ErrEndOfStream)
}

func TestReader_Iterator(t *testing.T) {
	stub := filepath.Join(t.TempDir(), "it_")
	pfftest.WriteFile(t, stub+"000000.pff", pfftest.Header{RunIdentifier: "r"},
		pfftest.SimpleEvent(1, "a"), pfftest.SimpleEvent(2, "b"))
	pfftest.WriteFile(t, stub+"000001.pff", pfftest.Header{RunIdentifier: "r", FileNumber: 1},
		pfftest.SimpleEvent(3, "c"))

	r, err := Open(stub)
	require.NoError(t, err)
	defer r.Close()

	it := r.Events()
	defer it.Close()

	var numbers []int32
	for it.Next() {
		numbers = append(numbers, it.Event().Number)
	}
	assert.NoError(t, it.Err())
	assert.Equal(t, []int32{1, 2, 3}, numbers)
	assert.False(t, it.Next())
	assert.Nil(t, it.Event())
}

func TestReader_IteratorStopsOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pff")
	data := pfftest.Build(pfftest.Header{RunIdentifier: "r"}, pfftest.SimpleEvent(1, "a"))
	pfftest.WriteRaw(t, path, append(data, 0x05, 0x01))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	it := r.Events()
	assert.True(t, it.Next())
	assert.False(t, it.Next())
	assert.ErrorIs(t, it.Err(), ErrTruncated)
}

func TestReader_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	stub := filepath.Join(t.TempDir(), "log_")
	pfftest.WriteFile(t, stub+"000000.pff", pfftest.Header{RunIdentifier: "r"}, pfftest.SimpleEvent(1, "a"))
	// header claims a different file number than its position
	pfftest.WriteFile(t, stub+"000001.pff", pfftest.Header{RunIdentifier: "r", FileNumber: 9}, pfftest.SimpleEvent(2, "b"))

	r, err := Open(stub, WithLogger(zap.New(core)))
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, []int{1, 2}, readAll(t, r))

	assert.Equal(t, 2, logs.FilterMessage("opened file").Len())
	assert.Equal(t, 1, logs.FilterMessage("rolled over").Len())
	assert.Equal(t, 1, logs.FilterMessage("end of input").Len())

	mismatch := logs.FilterMessage("file number in header does not match sequence").All()
	require.Len(t, mismatch, 1)
	assert.Equal(t, int32(9), mismatch[0].ContextMap()["header_file_number"])
}

func TestReader_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	stub := filepath.Join(t.TempDir(), "m_")
	pfftest.WriteFile(t, stub+"000000.pff", pfftest.Header{RunIdentifier: "r"},
		pfftest.SimpleEvent(1, "a"), pfftest.SimpleEvent(2, "b"))
	pfftest.WriteFile(t, stub+"000001.pff", pfftest.Header{RunIdentifier: "r", FileNumber: 1, Zipped: true},
		pfftest.SimpleEvent(3, "hello world"))

	r, err := Open(stub, WithMetrics(m))
	require.NoError(t, err)
	defer r.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, r.Next())
	}
	_, _, err = r.DataAt(0, 0)
	require.NoError(t, err)
	assert.ErrorIs(t, r.Next(), ErrEndOfStream)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.filesOpened))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.eventsRead))
	assert.Equal(t, float64(len("hello world")), testutil.ToFloat64(m.decompressedBytes))
	assert.Greater(t, testutil.ToFloat64(m.recordBytes), float64(0))
	assert.Equal(t, 0, testutil.CollectAndCount(m.decodeErrors))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.fileOpened()
		m.eventRead(10)
		m.decodeError(kindRecord)
		m.decompressed(10)
	})
}
