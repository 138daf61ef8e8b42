// Package blackhole implements a lossless byte-stream codec: a greedy,
// iteratively-extended substring dictionary is mined from the input, a
// non-overlapping tiling of the most valuable occurrences is selected, and
// the result is Huffman-coded against a one-bit escape marker for bytes
// the dictionary didn't cover.
//
// Compress and Decompress are both synchronous, one-shot calls over the
// whole input; there is no streaming mode, no incremental append, and no
// attempt at format compatibility with any existing compressor.
package blackhole

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tpaschalis/blackhole/internal/analyser"
	"github.com/tpaschalis/blackhole/internal/bitio"
	"github.com/tpaschalis/blackhole/internal/codecerr"
	"github.com/tpaschalis/blackhole/internal/container"
	"github.com/tpaschalis/blackhole/internal/huffman"
	"github.com/tpaschalis/blackhole/internal/metrics"
	"github.com/tpaschalis/blackhole/internal/selector"
)

// Stats reports the internal sizing of one Compress call, for callers that
// want to inspect the dictionary the codec built without reaching into its
// internals.
type Stats struct {
	InputBytes      int
	OutputBytes     int
	CandidatesFound int
	DictionaryWords int
	CoverageRatio   float64
}

type options struct {
	poolWidth  int
	registerer prometheus.Registerer
	logger     *slog.Logger
	stats      *Stats
}

// Option configures a single Compress or Decompress call.
type Option func(*options)

// WithPoolWidth bounds how many dictionary candidates the analyser tracks
// per extension round. The default is generous; lower it to trade
// compression ratio for memory on very large or highly repetitive inputs.
func WithPoolWidth(n int) Option {
	return func(o *options) { o.poolWidth = n }
}

// WithMetrics registers Prometheus collectors for this call (and any other
// call sharing the same Option across a process) on reg. Omitting this
// option means no metrics are registered anywhere.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithLogger directs structured diagnostics to log instead of slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.logger = log }
}

// WithStats populates s with the call's internal sizing once Compress
// returns successfully.
func WithStats(s *Stats) Option {
	return func(o *options) { o.stats = s }
}

func resolve(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Compress reads all of src, mines it for a substring dictionary, and
// writes the coded frame to dst.
func Compress(src io.Reader, dst io.Writer, opts ...Option) error {
	o := resolve(opts)
	rec := metrics.NewRecorder(o.registerer, o.logger)
	start := time.Now()

	data, err := io.ReadAll(src)
	if err != nil {
		return codecerr.IOError(err, "read compress input")
	}

	candidates, err := analyser.Analyse(context.Background(), data, analyser.Options{MaxPoolWidth: o.poolWidth})
	if err != nil {
		return err
	}
	analyser.Rank(candidates)

	selCandidates := make([]selector.Candidate, len(candidates))
	for i, c := range candidates {
		selCandidates[i] = selector.Candidate{Word: c.Word, Positions: c.Positions}
	}
	tiles, err := selector.Select(selCandidates, len(data))
	if err != nil {
		return err
	}
	selector.SortTiles(tiles)

	freqs := wordFrequencies(tiles)
	h, err := huffman.Build(freqs)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	if err := container.WriteFrame(w, data, tiles, h); err != nil {
		return err
	}

	n, err := dst.Write(buf.Bytes())
	if err != nil {
		return codecerr.IOError(err, "write compress output")
	}
	if n != buf.Len() {
		return codecerr.IOError(io.ErrShortWrite, "write compress output")
	}

	covered := 0
	for _, t := range tiles {
		covered += t.Interval.Len()
	}
	coverage := 0.0
	if len(data) > 0 {
		coverage = float64(covered) / float64(len(data))
	}
	rec.ObserveCompress(time.Since(start), len(data), buf.Len(), len(candidates), coverage)

	if o.stats != nil {
		*o.stats = Stats{
			InputBytes:      len(data),
			OutputBytes:     buf.Len(),
			CandidatesFound: len(candidates),
			DictionaryWords: len(freqs),
			CoverageRatio:   coverage,
		}
	}
	return nil
}

// Decompress reads a frame written by Compress from src and writes the
// original bytes to dst.
func Decompress(src io.Reader, dst io.Writer, opts ...Option) error {
	o := resolve(opts)
	rec := metrics.NewRecorder(o.registerer, o.logger)
	start := time.Now()

	r := bitio.NewReader(src)
	data, err := container.ReadFrame(r)
	if err != nil {
		return err
	}

	n, err := dst.Write(data)
	if err != nil {
		return codecerr.IOError(err, "write decompress output")
	}
	if n != len(data) {
		return codecerr.IOError(io.ErrShortWrite, "write decompress output")
	}

	rec.ObserveDecompress(time.Since(start), len(data))
	return nil
}

// wordFrequencies counts tile occurrences per distinct word, the weight
// table the Huffman tree is built from.
func wordFrequencies(tiles []selector.Tile) []huffman.WordFreq {
	counts := map[string]int{}
	for _, t := range tiles {
		counts[string(t.Word)]++
	}
	out := make([]huffman.WordFreq, 0, len(counts))
	for _, word := range selector.DictionaryWords(tiles) {
		out = append(out, huffman.WordFreq{Word: word, Weight: counts[string(word)]})
	}
	return out
}
