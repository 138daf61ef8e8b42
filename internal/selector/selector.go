// Package selector picks a non-overlapping tiling of candidate substrings
// over the source bytes: the set of dictionary words and occurrence
// positions that the container codec will actually reference.
//
// Accepted occurrences are tracked in two ordered maps keyed by byte
// offset, starts and ends, mirroring the interval-bookkeeping idiom used
// elsewhere in this codebase for position-set lookups: every admission
// decision is answered by one exact lookup and two ordered range queries
// instead of a linear scan of previously accepted intervals.
package selector

import (
	"sort"

	"github.com/RaduBerinde/btreemap"

	"github.com/tpaschalis/blackhole/internal/codecerr"
)

// Interval is a half-open byte range [Start, End) within the source.
type Interval struct {
	Start, End int
}

func (iv Interval) Len() int { return iv.End - iv.Start }

// Candidate is one dictionary entry under consideration: a word and every
// offset in the source at which it occurs.
type Candidate struct {
	Word      []byte
	Positions []int
}

// Tile is one accepted (word, interval) placement in the final selection.
type Tile struct {
	Word     []byte
	Interval Interval
}

func cmpInt(a, b int) int { return a - b }

// Select runs the greedy non-overlap tiling described above: candidates are
// considered in rank order (the caller is responsible for having sorted
// them best-first, e.g. by length desc, count desc, byte-lexical desc), and
// each occurrence is admitted only if it does not overlap any
// already-accepted tile. Admission stops early once n bytes of the source
// are covered. A candidate whose word has length < 2 is rejected outright,
// since a single-byte match can never be cheaper than its own raw encoding.
func Select(candidates []Candidate, n int) ([]Tile, error) {
	if n < 0 {
		return nil, codecerr.InvalidArgument("selector: negative source length %d", n)
	}

	starts := btreemap.New[int, Interval](cmpInt)
	ends := btreemap.New[int, Interval](cmpInt)

	var tiles []Tile
	covered := 0

	for _, c := range candidates {
		if len(c.Word) < 2 {
			continue
		}
		positions := append([]int{}, c.Positions...)
		sort.Ints(positions)

		for _, pos := range positions {
			if covered >= n {
				return tiles, nil
			}
			iv := Interval{Start: pos, End: pos + len(c.Word)}
			if iv.End > n {
				continue
			}
			if overlaps(starts, ends, iv) {
				continue
			}
			starts.Set(iv.Start, iv)
			ends.Set(iv.End, iv)
			tiles = append(tiles, Tile{Word: c.Word, Interval: iv})
			covered += iv.Len()
		}
	}

	return tiles, nil
}

// overlaps answers whether iv intersects any interval already recorded in
// starts/ends, using three ordered-map queries:
//
//  1. An exact lookup for an existing interval that starts exactly at
//     iv.Start (the cheapest and most common collision to catch).
//  2. A range scan of starts over (iv.Start, iv.End) for any interval that
//     begins inside iv - it necessarily overlaps regardless of its own
//     extent.
//  3. A predecessor lookup: the closest existing interval starting at or
//     before iv.Start. If that interval's End reaches past iv.Start, the
//     two overlap even though neither starts inside the other's range from
//     query 2's point of view.
func overlaps(starts, ends *btreemap.Map[int, Interval], iv Interval) bool {
	if _, ok := starts.Get(iv.Start); ok {
		return true
	}

	found := false
	starts.Ascend(iv.Start+1, func(_ int, existing Interval) bool {
		if existing.Start >= iv.End {
			return false
		}
		found = true
		return false
	})
	if found {
		return true
	}

	if prevStart, prevIv, ok := predecessor(starts, iv.Start); ok {
		_ = prevStart
		if prevIv.End > iv.Start {
			return true
		}
	}
	_ = ends // retained for symmetry with the bookkeeping the caller maintains
	return false
}

// predecessor returns the entry with the greatest key <= at, if any.
func predecessor(m *btreemap.Map[int, Interval], at int) (int, Interval, bool) {
	var k int
	var v Interval
	found := false
	m.Descend(at, func(key int, val Interval) bool {
		k, v, found = key, val, true
		return false
	})
	return k, v, found
}

// DictionaryWords returns the distinct words referenced by tiles, in first-
// use order, for building the Huffman weight table.
func DictionaryWords(tiles []Tile) [][]byte {
	seen := map[string]bool{}
	var dict [][]byte
	for _, t := range tiles {
		key := string(t.Word)
		if !seen[key] {
			seen[key] = true
			dict = append(dict, t.Word)
		}
	}
	return dict
}

// SortTiles orders tiles by start offset, the order the container codec
// walks the source in.
func SortTiles(tiles []Tile) {
	sort.Slice(tiles, func(i, j int) bool { return tiles[i].Interval.Start < tiles[j].Interval.Start })
}
