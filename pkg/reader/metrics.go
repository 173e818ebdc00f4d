package reader

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	kindHeader     = "header"
	kindRecord     = "record"
	kindFrame      = "frame"
	kindDecompress = "decompress"
)

// Metrics holds the Prometheus metrics reported by a Reader
type Metrics struct {
	filesOpened       prometheus.Counter
	eventsRead        prometheus.Counter
	recordBytes       prometheus.Counter
	decodeErrors      *prometheus.CounterVec
	decompressedBytes prometheus.Counter
}

// NewMetrics creates the reader metrics and registers them with reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		filesOpened: factory.NewCounter(prometheus.CounterOpts{
			Name: "pff_files_opened_total",
			Help: "Total number of event log files opened",
		}),
		eventsRead: factory.NewCounter(prometheus.CounterOpts{
			Name: "pff_events_read_total",
			Help: "Total number of events decoded",
		}),
		recordBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "pff_record_bytes_total",
			Help: "Total bytes of framed records read, excluding length prefixes",
		}),
		decodeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pff_decode_errors_total",
				Help: "Total number of decode failures",
			},
			[]string{"kind"},
		),
		decompressedBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "pff_decompressed_bytes_total",
			Help: "Total bytes produced by payload decompression",
		}),
	}
}

func (m *Metrics) fileOpened() {
	if m == nil {
		return
	}
	m.filesOpened.Inc()
}

func (m *Metrics) eventRead(size int) {
	if m == nil {
		return
	}
	m.eventsRead.Inc()
	m.recordBytes.Add(float64(size))
}

func (m *Metrics) decodeError(kind string) {
	if m == nil {
		return
	}
	m.decodeErrors.WithLabelValues(kind).Inc()
}

func (m *Metrics) decompressed(n int) {
	if m == nil {
		return
	}
	m.decompressedBytes.Add(float64(n))
}
