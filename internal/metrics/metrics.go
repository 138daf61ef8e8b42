// Package metrics wires optional, non-blocking instrumentation into the
// codec. Nothing here is process-wide: a Recorder only registers
// collectors when a caller explicitly supplies a prometheus.Registerer. Calling any method on a nil *Recorder is always a
// safe no-op, so the codec's hot path never needs a nil check of its own.
package metrics

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the collectors for one codec instance's observability. Its
// zero value (a nil *Recorder) is a valid, inert recorder.
type Recorder struct {
	log *slog.Logger

	compressDuration   prometheus.Histogram
	decompressDuration prometheus.Histogram
	bytesIn            prometheus.Counter
	bytesOut           prometheus.Counter
	candidatesFound    prometheus.Histogram
	tilingCoverage     prometheus.Histogram
}

// NewRecorder registers a fresh set of collectors on reg and returns a
// Recorder that reports to them and to log. A nil reg is valid and yields a
// Recorder that only logs. A nil log falls back to slog.Default().
func NewRecorder(reg prometheus.Registerer, log *slog.Logger) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	r := &Recorder{
		log: log,
		compressDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "blackhole",
			Name:      "compress_duration_seconds",
			Help:      "Wall-clock time spent in Compress.",
			Buckets:   prometheus.DefBuckets,
		}),
		decompressDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "blackhole",
			Name:      "decompress_duration_seconds",
			Help:      "Wall-clock time spent in Decompress.",
			Buckets:   prometheus.DefBuckets,
		}),
		bytesIn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "blackhole",
			Name:      "bytes_in_total",
			Help:      "Cumulative bytes read from Compress sources.",
		}),
		bytesOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "blackhole",
			Name:      "bytes_out_total",
			Help:      "Cumulative bytes written to Compress sinks.",
		}),
		candidatesFound: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "blackhole",
			Name:      "analyser_candidates",
			Help:      "Number of dictionary candidates the analyser surfaced per call.",
			Buckets:   prometheus.ExponentialBuckets(4, 2, 12),
		}),
		tilingCoverage: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "blackhole",
			Name:      "selector_coverage_ratio",
			Help:      "Fraction of source bytes the selector tiled with dictionary words.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
	}
	if reg != nil {
		reg.MustRegister(
			r.compressDuration, r.decompressDuration,
			r.bytesIn, r.bytesOut,
			r.candidatesFound, r.tilingCoverage,
		)
	}
	return r
}

// ObserveCompress records one Compress call's duration and byte counts, and
// logs a structured summary.
func (r *Recorder) ObserveCompress(d time.Duration, bytesIn, bytesOut, candidates int, coverage float64) {
	if r == nil {
		return
	}
	r.compressDuration.Observe(d.Seconds())
	r.bytesIn.Add(float64(bytesIn))
	r.bytesOut.Add(float64(bytesOut))
	r.candidatesFound.Observe(float64(candidates))
	r.tilingCoverage.Observe(coverage)
	r.log.Debug("compress finished",
		"duration", d,
		"bytes_in", bytesIn,
		"bytes_out", bytesOut,
		"candidates", candidates,
		"coverage", coverage,
	)
}

// ObserveDecompress records one Decompress call's duration and output size.
func (r *Recorder) ObserveDecompress(d time.Duration, bytesOut int) {
	if r == nil {
		return
	}
	r.decompressDuration.Observe(d.Seconds())
	r.log.Debug("decompress finished", "duration", d, "bytes_out", bytesOut)
}
