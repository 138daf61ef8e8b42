// Package analyser mines a byte sequence for repeated substrings worth
// putting in a dictionary: starting from one candidate per distinct byte,
// it iteratively extends every surviving candidate by one byte, keeping an
// extension alive only while the expected encoding benefit of the longer
// word still beats the shorter one.
//
// Extension rounds fan out across goroutines via errgroup, since scoring
// one round's candidates is embarrassingly parallel and independent of
// every other candidate in the same round. A TinyLFU-backed admission
// cache bounds how many candidate words survive a round on pathological,
// highly repetitive input, aging out words that stop earning their keep
// instead of letting the pool grow without limit.
package analyser

import (
	"context"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-tinylfu"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"github.com/tpaschalis/blackhole/internal/codecerr"
)

// Candidate is a candidate dictionary word together with every offset in
// the source at which it occurs.
type Candidate struct {
	Word      []byte
	Positions []int
}

// Options tunes the mining run. The zero value is usable: it applies a
// generous default pool width.
type Options struct {
	// MaxPoolWidth bounds how many candidates survive into the next
	// extension round. Zero selects a built-in default.
	MaxPoolWidth int
}

const defaultMaxPoolWidth = 4096

// Analyse mines data for repeated-substring candidates. The result is not
// sorted for selection; call Rank to order it by the project's scoring
// rule before handing it to the selector.
func Analyse(ctx context.Context, data []byte, opts Options) ([]Candidate, error) {
	maxWidth := opts.MaxPoolWidth
	if maxWidth <= 0 {
		maxWidth = defaultMaxPoolWidth
	}
	if len(data) == 0 {
		return nil, nil
	}

	seed := seedBytes(data)
	admitted := tinylfu.New(maxWidth, maxWidth*8)

	final := append([]Candidate{}, seed...)
	round := seed
	for len(round) > 0 {
		next, done, err := extendRound(ctx, data, round)
		if err != nil {
			return nil, err
		}
		final = append(final, done...)
		round = admit(admitted, next, maxWidth)
	}

	return final, nil
}

// seedBytes builds the initial one-candidate-per-distinct-byte pool. Every
// distinct byte value present in data is seeded unconditionally, even if it
// occurs only once, so that single-occurrence runs still get a chance to
// combine with neighbours during extension.
func seedBytes(data []byte) []Candidate {
	positions := make(map[byte][]int, 256)
	for i, b := range data {
		positions[b] = append(positions[b], i)
	}
	out := make([]Candidate, 0, len(positions))
	for b := 0; b < 256; b++ {
		if p, ok := positions[byte(b)]; ok {
			out = append(out, Candidate{Word: []byte{byte(b)}, Positions: p})
		}
	}
	return out
}

// extendRound grows every candidate in round by one byte, grouping
// occurrences by the byte that follows each one. Every grouped extension
// constructed this round is recorded into done in its own right, regardless
// of whether it passes the expected-cost prune test - a candidate is only
// ever entered into the pool once, at the point it is built, never
// re-entered via its parent. A grouped extension additionally carries into
// next, for further extension next round, only if it passes the prune test.
func extendRound(ctx context.Context, data []byte, round []Candidate) (next, done []Candidate, err error) {
	nextGroups := make([][]Candidate, len(round))
	doneGroups := make([][]Candidate, len(round))

	g, _ := errgroup.WithContext(ctx)
	for i, cand := range round {
		i, cand := i, cand
		g.Go(func() error {
			groups := groupByNextByte(data, cand)
			var passing []Candidate
			for _, grp := range groups {
				if benefits(cand, grp) {
					passing = append(passing, grp)
				}
			}
			nextGroups[i] = passing
			doneGroups[i] = groups
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, codecerr.Wrap(codecerr.KindInvalidState, err, "analyser: extension round failed")
	}

	for _, r := range nextGroups {
		next = append(next, r...)
	}
	for _, d := range doneGroups {
		done = append(done, d...)
	}
	return next, done, nil
}

// groupByNextByte partitions cand's occurrences by the byte immediately
// following each one, producing one extended candidate per distinct
// follower byte. Occurrences that have no following byte (they end at the
// source boundary) drop out of extension entirely.
func groupByNextByte(data []byte, cand Candidate) []Candidate {
	byFollower := make(map[byte][]int)
	end := len(cand.Word)
	for _, pos := range cand.Positions {
		followerIdx := pos + end
		if followerIdx >= len(data) {
			continue
		}
		b := data[followerIdx]
		byFollower[b] = append(byFollower[b], pos)
	}
	if len(byFollower) == 0 {
		return nil
	}
	out := make([]Candidate, 0, len(byFollower))
	for b := 0; b < 256; b++ {
		pos, ok := byFollower[byte(b)]
		if !ok {
			continue
		}
		word := append(append([]byte{}, cand.Word...), byte(b))
		out = append(out, Candidate{Word: word, Positions: pos})
	}
	return out
}

// benefits reports whether extended's expected encoding benefit over its
// occurrences beats parent's. The benefit model is the number of raw bytes
// the dictionary reference would save: occurrences * (wordLen - 1), since
// every reference costs roughly one code plus the one-bit escape marker
// saved relative to emitting the bytes raw. Extension that loses
// occurrences without strictly increasing this product is not worth
// carrying forward; a single surviving occurrence can never be shared and
// is always pruned.
func benefits(parent, extended Candidate) bool {
	if len(extended.Positions) < 2 {
		return false
	}
	parentBenefit := len(parent.Positions) * (len(parent.Word) - 1)
	extendedBenefit := len(extended.Positions) * (len(extended.Word) - 1)
	return extendedBenefit > parentBenefit
}

// admit bounds round to at most maxWidth candidates, using the TinyLFU
// cache to decide which words are worth tracking when a pathological input
// produces more surviving extensions than the pool can hold. Candidates
// are offered to the cache best-first (by current occurrence count) so
// that the admission policy's frequency estimate is built from the most
// valuable entries first; a candidate is kept in the round only while the
// cache still reports it resident afterwards.
func admit(cache *tinylfu.T, round []Candidate, maxWidth int) []Candidate {
	if len(round) <= maxWidth {
		return round
	}
	slices.SortFunc(round, func(a, b Candidate) int {
		return len(b.Positions) - len(a.Positions)
	})

	out := make([]Candidate, 0, maxWidth)
	for _, c := range round {
		key := wordKey(c.Word)
		cache.Add(key, c)
		if v, ok := cache.Get(key); ok {
			if stored, ok := v.(Candidate); ok && string(stored.Word) == string(c.Word) {
				out = append(out, c)
			}
		}
		if len(out) >= maxWidth {
			break
		}
	}
	return out
}

func wordKey(word []byte) string {
	h := xxhash.Sum64(word)
	return string([]byte{
		byte(h), byte(h >> 8), byte(h >> 16), byte(h >> 24),
		byte(h >> 32), byte(h >> 40), byte(h >> 48), byte(h >> 56),
	}) + string(word)
}

// Rank sorts candidates by the project's scoring rule: longest word first,
// then highest occurrence count, then descending byte-lexical order as a
// final, fully deterministic tie-break.
func Rank(candidates []Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if len(a.Word) != len(b.Word) {
			return len(a.Word) > len(b.Word)
		}
		if len(a.Positions) != len(b.Positions) {
			return len(a.Positions) > len(b.Positions)
		}
		for k := 0; k < len(a.Word) && k < len(b.Word); k++ {
			if a.Word[k] != b.Word[k] {
				return a.Word[k] > b.Word[k]
			}
		}
		return false
	})
}
