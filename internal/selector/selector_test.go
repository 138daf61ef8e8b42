package selector

import (
	"testing"
)

func TestSelectRejectsShortWords(t *testing.T) {
	cands := []Candidate{{Word: []byte("a"), Positions: []int{0, 1, 2}}}
	tiles, err := Select(cands, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(tiles) != 0 {
		t.Fatalf("got %d tiles, want 0 (single-byte words are never admitted)", len(tiles))
	}
}

func TestSelectNonOverlapping(t *testing.T) {
	// "ab" at 0 and 4; "bc" at 1, which overlaps the first "ab" occurrence
	// and must be rejected.
	cands := []Candidate{
		{Word: []byte("ab"), Positions: []int{0, 4}},
		{Word: []byte("bc"), Positions: []int{1}},
	}
	tiles, err := Select(cands, 6)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < len(tiles); i++ {
		for j := i + 1; j < len(tiles); j++ {
			a, b := tiles[i].Interval, tiles[j].Interval
			if a.Start < b.End && b.Start < a.End {
				t.Fatalf("tiles overlap: %+v and %+v", a, b)
			}
		}
	}
	found := map[string]int{}
	for _, tl := range tiles {
		found[string(tl.Word)]++
	}
	if found["ab"] != 2 {
		t.Fatal("expected both ab occurrences to be admitted")
	}
	if found["bc"] {
		t.Fatal("bc should have been rejected as overlapping the earlier ab")
	}
}

func TestSelectStopsAtCoverage(t *testing.T) {
	cands := []Candidate{{Word: []byte("xy"), Positions: []int{0, 2, 4, 6, 8}}}
	tiles, err := Select(cands, 4)
	if err != nil {
		t.Fatal(err)
	}
	covered := 0
	for _, tl := range tiles {
		covered += tl.Interval.Len()
	}
	if covered > 4 {
		t.Fatalf("covered %d bytes, want <= 4", covered)
	}
}

func TestSelectRejectsOutOfRangeInterval(t *testing.T) {
	cands := []Candidate{{Word: []byte("toolong"), Positions: []int{0}}}
	tiles, err := Select(cands, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(tiles) != 0 {
		t.Fatalf("got %d tiles, want 0 (word extends past source length)", len(tiles))
	}
}

func TestDictionaryWordsDeduplicates(t *testing.T) {
	tiles := []Tile{
		{Word: []byte("ab"), Interval: Interval{0, 2}},
		{Word: []byte("ab"), Interval: Interval{4, 6}},
		{Word: []byte("cd"), Interval: Interval{8, 10}},
	}
	got := DictionaryWords(tiles)
	if len(got) != 2 {
		t.Fatalf("got %d distinct words, want 2", len(got))
	}
}
