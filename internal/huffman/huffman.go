// Package huffman builds and walks a binary prefix tree whose leaves carry
// distinct byte-sequence words, maintaining a word->bits code table so
// encoding is O(|word|) instead of a tree walk.
//
// Tree construction follows the textbook algorithm (repeatedly combine the
// two lowest-weight nodes via a min-priority queue), the same shape as
// compress/flate's canonical-code approach in spirit, though this tree is
// walked directly rather than compiled into flate's chunked lookup tables,
// since our codes are over arbitrary byte-sequence words rather than a fixed
// symbol alphabet.
package huffman

import (
	"container/heap"

	"github.com/tpaschalis/blackhole/internal/bitio"
	"github.com/tpaschalis/blackhole/internal/codecerr"
)

// MaxCodeBits is the longest code this package will ever produce or accept;
// it bounds the explicit (non-recursive) walk depth used everywhere below,
// per the project's note that recursive tree walks risk stack depth
// proportional to code length.
const MaxCodeBits = 15

// WordFreq pairs a word with its occurrence weight for Build.
type WordFreq struct {
	Word   []byte
	Weight int
}

type node struct {
	left, right *node
	word        []byte
	isLeaf      bool
}

// Huffman is a prefix-tree of byte-sequence leaves plus the derived code
// table. The zero value is an empty tree (no words, no codes).
type Huffman struct {
	root  *node
	codes map[string]*bitio.Bits // word -> code, bit i of the Bits is the bit emitted at tree depth i.
}

// pqItem is one entry in the construction priority queue: a candidate
// internal-or-leaf node awaiting combination, tagged with a monotonic
// sequence number so that equal-weight items combine in a stable,
// reproducible order.
type pqItem struct {
	weight int
	seq    int
	n      *node
}

type pq []pqItem

func (q pq) Len() int { return len(q) }
func (q pq) Less(i, j int) bool {
	if q[i].weight != q[j].weight {
		return q[i].weight < q[j].weight
	}
	return q[i].seq < q[j].seq
}
func (q pq) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *pq) Push(x any)         { *q = append(*q, x.(pqItem)) }
func (q *pq) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// Build constructs an optimal prefix code over freqs. Weights must be
// positive. When only one distinct word is present its code is the single
// bit 0. An empty freqs yields an empty tree.
func Build(freqs []WordFreq) (*Huffman, error) {
	if len(freqs) == 0 {
		return &Huffman{codes: map[string]*bitio.Bits{}}, nil
	}

	q := make(pq, 0, len(freqs))
	for i, f := range freqs {
		if f.Weight <= 0 {
			return nil, codecerr.InvalidArgument("huffman: word %q has non-positive weight %d", f.Word, f.Weight)
		}
		q = append(q, pqItem{weight: f.Weight, seq: i, n: &node{word: f.Word, isLeaf: true}})
	}
	heap.Init(&q)

	seq := len(freqs)
	for q.Len() > 1 {
		a := heap.Pop(&q).(pqItem)
		b := heap.Pop(&q).(pqItem)
		parent := &node{left: a.n, right: b.n}
		heap.Push(&q, pqItem{weight: a.weight + b.weight, seq: seq, n: parent})
		seq++
	}
	root := heap.Pop(&q).(pqItem).n

	if root.isLeaf {
		// Single distinct word: wrap it so its code is the single bit 0.
		root = &node{left: root}
	}

	h := &Huffman{root: root, codes: map[string]*bitio.Bits{}}
	h.rebuildCodes()
	return h, nil
}

// rebuildCodes walks the tree once, iteratively, appending 0 for left and 1
// for right, to populate the code table from scratch.
func (h *Huffman) rebuildCodes() {
	h.codes = map[string]*bitio.Bits{}
	if h.root == nil {
		return
	}
	type frame struct {
		n    *node
		path *bitio.Bits
	}
	stack := []frame{{h.root, &bitio.Bits{}}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.n.isLeaf {
			h.codes[string(f.n.word)] = f.path
			continue
		}
		if f.n.left != nil {
			p := f.path.Clone()
			p.Push(0)
			stack = append(stack, frame{f.n.left, p})
		}
		if f.n.right != nil {
			p := f.path.Clone()
			p.Push(1)
			stack = append(stack, frame{f.n.right, p})
		}
	}
}

// Encode looks up word in the code table and emits its bits to w.
func (h *Huffman) Encode(w *bitio.Writer, word []byte) error {
	code, ok := h.codes[string(word)]
	if !ok {
		return codecerr.InvalidState("huffman: word %q is not in the code table", word)
	}
	return code.Emit(w)
}

// CodeLen reports the bit length of word's code.
func (h *Huffman) CodeLen(word []byte) (int, bool) {
	code, ok := h.codes[string(word)]
	if !ok {
		return 0, false
	}
	return code.Len(), true
}

// Code returns the exact code assigned to word, so a caller that needs to
// place it directly on the wire (the container codec's dictionary header)
// doesn't have to re-derive it through Encode and a scratch bit reader.
func (h *Huffman) Code(word []byte) (*bitio.Bits, bool) {
	code, ok := h.codes[string(word)]
	return code, ok
}

// Decode walks the tree from the root, consuming bits and following left on
// 0 / right on 1, stopping at the first leaf.
func (h *Huffman) Decode(r *bitio.Reader) ([]byte, error) {
	if h.root == nil {
		return nil, codecerr.InvalidState("huffman: decode on empty tree")
	}
	n := h.root
	for depth := 0; !n.isLeaf; depth++ {
		if depth >= MaxCodeBits {
			return nil, codecerr.FormatError("huffman: code exceeds max length %d", MaxCodeBits)
		}
		bit, err := r.ReadBit()
		if err != nil {
			return nil, err
		}
		if bit == 0 {
			n = n.left
		} else {
			n = n.right
		}
		if n == nil {
			return nil, codecerr.FormatError("huffman: code path falls off the tree")
		}
	}
	return n.word, nil
}

// Insert rebuilds one root-to-leaf path from a persisted (word, code)
// header entry, used only on the decoder side. codeBits is LSB-first in the
// sense that codeBits[0] is the bit taken at the root. Walking is iterative
// to bound stack depth by MaxCodeBits regardless of code length. Two
// inserts that collide on a non-terminal node, or a leaf that gets
// revisited, are an InvalidState format error.
func (h *Huffman) Insert(word []byte, codeBits []byte) error {
	if len(codeBits) == 0 || len(codeBits) > MaxCodeBits {
		return codecerr.FormatError("huffman: code length %d out of range", len(codeBits))
	}
	if h.root == nil {
		h.root = &node{}
	}
	n := h.root
	for i, bit := range codeBits {
		if n.isLeaf {
			return codecerr.InvalidState("huffman: code for %q conflicts with an existing shorter code", word)
		}
		last := i == len(codeBits)-1
		var next **node
		if bit == 0 {
			next = &n.left
		} else {
			next = &n.right
		}
		if *next == nil {
			*next = &node{}
		}
		n = *next
		if last {
			if n.isLeaf || n.left != nil || n.right != nil {
				return codecerr.InvalidState("huffman: code for %q conflicts with an existing path", word)
			}
			n.isLeaf = true
			n.word = word
		}
	}
	if h.codes == nil {
		h.codes = map[string]*bitio.Bits{}
	}
	bits := &bitio.Bits{}
	for _, bit := range codeBits {
		bits.Push(bit)
	}
	h.codes[string(word)] = bits
	return nil
}

// Words enumerates all leaf words in a deterministic in-order (left before
// right) traversal, the order the encoder uses to serialize the dictionary.
func (h *Huffman) Words() [][]byte {
	var out [][]byte
	var walk func(n *node)
	walk = func(n *node) {
		if n == nil {
			return
		}
		if n.isLeaf {
			out = append(out, n.word)
			return
		}
		walk(n.left)
		walk(n.right)
	}
	// The tree depth is bounded by MaxCodeBits (<=15), so a recursive
	// in-order walk here cannot exceed that bound.
	walk(h.root)
	return out
}

// Empty reports whether the code table (and tree) is empty.
func (h *Huffman) Empty() bool {
	return len(h.codes) == 0
}
