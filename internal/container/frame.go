// Package container implements the on-wire frame: a self-describing
// dictionary header followed by a body that is, bit by bit, either a
// one-bit escape marker plus a raw byte, or a Huffman code for one
// dictionary word. There is deliberately no magic number or version field,
// per the project's external-interface contract: the caller is always
// expected to know it is handing this codec one of its own frames.
package container

import (
	"github.com/tpaschalis/blackhole/internal/bitio"
	"github.com/tpaschalis/blackhole/internal/codecerr"
	"github.com/tpaschalis/blackhole/internal/huffman"
	"github.com/tpaschalis/blackhole/internal/selector"
)

// escapeBit marks the next 8 bits as a raw, undictionaried byte; the
// complementary 0 bit marks a Huffman-coded dictionary word.
const (
	escapeBit = 1
	codedBit  = 0
)

// WriteFrame serializes data as a dictionary header followed by the coded
// body. tiles must already be non-overlapping and sorted by start offset
// (selector.Select followed by selector.SortTiles satisfies this), and h's
// code table must cover every distinct word among tiles.
func WriteFrame(w *bitio.Writer, data []byte, tiles []selector.Tile, h *huffman.Huffman) error {
	dict := h.Words()

	if err := WriteVaruint(w, uint64(len(dict))); err != nil {
		return err
	}
	for _, word := range dict {
		if err := writeDictEntry(w, h, word); err != nil {
			return err
		}
	}

	if err := WriteVaruint(w, uint64(len(data))); err != nil {
		return err
	}

	pos := 0
	for _, t := range tiles {
		for pos < t.Interval.Start {
			if err := writeEscapeByte(w, data[pos]); err != nil {
				return err
			}
			pos++
		}
		if err := w.WriteBit(codedBit); err != nil {
			return err
		}
		if err := h.Encode(w, t.Word); err != nil {
			return err
		}
		pos = t.Interval.End
	}
	for pos < len(data) {
		if err := writeEscapeByte(w, data[pos]); err != nil {
			return err
		}
		pos++
	}

	return w.Flush()
}

func writeEscapeByte(w *bitio.Writer, b byte) error {
	if err := w.WriteBit(escapeBit); err != nil {
		return err
	}
	return w.WriteByte(b)
}

// writeDictEntry serializes one dictionary entry as (a) code length, huflen-
// tagged, (b) the code's raw bits, (c) word byte length, varuint-tagged,
// and (d) the word's raw bytes - in that order, matching the frame layout
// readDictEntry parses. Word length goes out as a varuint rather than a
// huflen since a dictionary word, unlike a code, is allowed to run past the
// 15-bit huflen ceiling.
func writeDictEntry(w *bitio.Writer, h *huffman.Huffman, word []byte) error {
	code, ok := h.Code(word)
	if !ok {
		return codecerr.InvalidState("container: word %q has no assigned code", word)
	}
	if err := WriteHuflen(w, uint64(code.Len())); err != nil {
		return err
	}
	if err := code.Emit(w); err != nil {
		return err
	}
	if err := WriteVaruint(w, uint64(len(word))); err != nil {
		return err
	}
	return w.WriteN(word)
}

// ReadFrame parses a frame written by WriteFrame back into the original
// data.
func ReadFrame(r *bitio.Reader) ([]byte, error) {
	dictLen, err := ReadVaruint(r)
	if err != nil {
		return nil, err
	}

	h := &huffman.Huffman{}
	for i := uint64(0); i < dictLen; i++ {
		if err := readDictEntry(r, h); err != nil {
			return nil, err
		}
	}

	n, err := ReadVaruint(r)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, n)
	for uint64(len(out)) < n {
		bit, err := r.ReadBit()
		if err != nil {
			return nil, err
		}
		if bit == escapeBit {
			b, err := r.ReadByte()
			if err != nil {
				return nil, err
			}
			out = append(out, b)
			continue
		}
		word, err := h.Decode(r)
		if err != nil {
			return nil, err
		}
		if uint64(len(out)+len(word)) > n {
			return nil, codecerr.FormatError("container: decoded word overruns declared length %d", n)
		}
		out = append(out, word...)
	}
	return out, nil
}

func readDictEntry(r *bitio.Reader, h *huffman.Huffman) error {
	codeLen, err := ReadHuflen(r)
	if err != nil {
		return err
	}
	if codeLen == 0 || int(codeLen) > huffman.MaxCodeBits {
		return codecerr.FormatError("container: code length %d out of range", codeLen)
	}
	code := make([]byte, codeLen)
	for i := range code {
		bit, err := r.ReadBit()
		if err != nil {
			return err
		}
		code[i] = bit
	}
	wordLen, err := ReadVaruint(r)
	if err != nil {
		return err
	}
	word, err := r.ReadN(int(wordLen))
	if err != nil {
		return err
	}
	return h.Insert(word, code)
}
