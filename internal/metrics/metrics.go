// Package metrics instruments the WSPR daemon with Prometheus collectors.
// Grounded on the teacher's prometheus.go: a struct of promauto-registered
// collectors built once at startup, updated from decode results rather than
// noise-floor samples.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the daemon's Prometheus collectors.
type Metrics struct {
	decodesTotal     *prometheus.CounterVec
	candidatesPerRun prometheus.Histogram
	snr              prometheus.Histogram
	decodeDuration   prometheus.Histogram
	lastDecodeUnix   prometheus.Gauge
	hashTableSize    prometheus.Gauge
}

// New creates and registers the daemon's metric collectors against reg.
// Pass prometheus.DefaultRegisterer in production; tests should pass a
// fresh prometheus.NewRegistry() so repeated calls don't collide.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		decodesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wspr_decodes_total",
				Help: "Total WSPR decodes returned, labelled by message type.",
			},
			[]string{"type"},
		),
		candidatesPerRun: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wspr_candidates_per_slot",
				Help:    "Number of decodes returned per decode call.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		snr: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wspr_decode_snr_db",
				Help:    "SNR (2500 Hz reference bandwidth) of successful decodes.",
				Buckets: prometheus.LinearBuckets(-30, 2, 25),
			},
		),
		decodeDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wspr_decode_duration_seconds",
				Help:    "Wall-clock time spent in one internal/wspr.Decode call.",
				Buckets: prometheus.DefBuckets,
			},
		),
		lastDecodeUnix: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "wspr_last_decode_timestamp",
				Help: "Unix timestamp of the most recent completed decode slot.",
			},
		),
		hashTableSize: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "wspr_hash_table_entries",
				Help: "Number of entries currently held by the C8 hash table.",
			},
		),
	}
}

// RecordSlot records the outcome of one decode call: the number of decodes
// it returned and how long it took. Candidate counts from inside the decoder
// are not recorded.
func (m *Metrics) RecordSlot(decodeCount int, duration time.Duration) {
	m.candidatesPerRun.Observe(float64(decodeCount))
	m.decodeDuration.Observe(duration.Seconds())
	m.lastDecodeUnix.Set(float64(time.Now().Unix()))
}

// RecordDecode records one successfully decoded message.
func (m *Metrics) RecordDecode(msgType string, snrDb float64) {
	m.decodesTotal.WithLabelValues(msgType).Inc()
	m.snr.Observe(snrDb)
}

// SetHashTableSize reports the current C8 hash table size.
func (m *Metrics) SetHashTableSize(n int) {
	m.hashTableSize.Set(float64(n))
}
