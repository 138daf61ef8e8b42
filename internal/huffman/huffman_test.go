package huffman

import (
	"bytes"
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/tpaschalis/blackhole/internal/bitio"
	"github.com/tpaschalis/blackhole/internal/codecerr"
)

func words(ss ...string) []WordFreq {
	out := make([]WordFreq, len(ss))
	for i, s := range ss {
		out[i] = WordFreq{Word: []byte(s), Weight: i + 1}
	}
	return out
}

func TestBuildEmpty(t *testing.T) {
	h, err := Build(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !h.Empty() {
		t.Fatal("expected empty tree")
	}
	if _, err := h.Decode(bitio.NewReader(bytes.NewReader(nil))); !codecerr.Is(err, codecerr.KindInvalidState) {
		t.Fatalf("decode on empty tree = %v, want InvalidState", err)
	}
}

func TestBuildSingleWordCodeIsOneBit(t *testing.T) {
	h, err := Build(words("only"))
	if err != nil {
		t.Fatal(err)
	}
	n, ok := h.CodeLen([]byte("only"))
	if !ok || n != 1 {
		t.Fatalf("CodeLen = %d, %v; want 1, true", n, ok)
	}
}

// TestPrefixProperty verifies no code is a prefix of another, by
// round-tripping a canonical encoding of every word through Decode.
func TestPrefixProperty(t *testing.T) {
	h, err := Build(words("a", "bb", "ccc", "dddd", "e", "f", "g", "hh"))
	if err != nil {
		t.Fatal(err)
	}
	ws := h.Words()
	if len(ws) != 8 {
		t.Fatalf("Words() returned %d entries, want 8", len(ws))
	}

	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	for _, word := range ws {
		if err := h.Encode(w, word); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	r := bitio.NewReader(bytes.NewReader(buf.Bytes()))
	for _, want := range ws {
		got, err := h.Decode(r)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Decode = %q, want %q", got, want)
		}
	}
}

func TestInsertRebuildsDecodableTree(t *testing.T) {
	src, err := Build(words("alpha", "beta", "gamma", "delta", "epsilon"))
	if err != nil {
		t.Fatal(err)
	}
	ws := src.Words()

	dst := &Huffman{}
	for _, word := range ws {
		n, _ := src.CodeLen(word)
		code, err := codeBitsFor(src, word, n)
		if err != nil {
			t.Fatal(err)
		}
		if err := dst.Insert(word, code); err != nil {
			t.Fatalf("Insert(%q): %v", word, err)
		}
	}

	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	for _, word := range ws {
		if err := src.Encode(w, word); err != nil {
			t.Fatal(err)
		}
	}
	w.Flush()

	r := bitio.NewReader(bytes.NewReader(buf.Bytes()))
	for _, want := range ws {
		got, err := dst.Decode(r)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Decode = %q, want %q", got, want)
		}
	}
}

func TestInsertConflictIsInvalidState(t *testing.T) {
	h := &Huffman{}
	if err := h.Insert([]byte("a"), []byte{0}); err != nil {
		t.Fatal(err)
	}
	// "b" would require walking through the now-leaf node at 0: conflict.
	if err := h.Insert([]byte("b"), []byte{0, 1}); !codecerr.Is(err, codecerr.KindInvalidState) {
		t.Fatalf("got %v, want InvalidState", err)
	}
}

func TestBuildRejectsNonPositiveWeight(t *testing.T) {
	_, err := Build([]WordFreq{{Word: []byte("x"), Weight: 0}})
	if !codecerr.Is(err, codecerr.KindInvalidArgument) {
		t.Fatalf("got %v, want InvalidArgument", err)
	}
}

func TestBuildDeterministic(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	var freqs []WordFreq
	alphabet := []string{"p", "q", "r", "s", "t", "u", "v", "w", "x", "y", "z"}
	for i, s := range alphabet {
		freqs = append(freqs, WordFreq{Word: []byte(s), Weight: 1 + rng.IntN(50) + i})
	}

	h1, err := Build(freqs)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := Build(freqs)
	if err != nil {
		t.Fatal(err)
	}

	for _, f := range freqs {
		n1, _ := h1.CodeLen(f.Word)
		n2, _ := h2.CodeLen(f.Word)
		if n1 != n2 {
			t.Fatalf("code length for %q not deterministic: %d vs %d", f.Word, n1, n2)
		}
	}

	ws1, ws2 := h1.Words(), h2.Words()
	sort.Slice(ws1, func(i, j int) bool { return bytes.Compare(ws1[i], ws1[j]) < 0 })
	sort.Slice(ws2, func(i, j int) bool { return bytes.Compare(ws2[i], ws2[j]) < 0 })
	if len(ws1) != len(ws2) {
		t.Fatalf("word count differs: %d vs %d", len(ws1), len(ws2))
	}
}

// codeBitsFor re-derives the bit sequence for word by encoding it alone and
// reading the bits back, used only to feed Insert in the test above.
func codeBitsFor(h *Huffman, word []byte, n int) ([]byte, error) {
	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	if err := h.Encode(w, word); err != nil {
		return nil, err
	}
	w.Flush()
	r := bitio.NewReader(bytes.NewReader(buf.Bytes()))
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		bit, err := r.ReadBit()
		if err != nil {
			return nil, err
		}
		out[i] = bit
	}
	return out, nil
}
