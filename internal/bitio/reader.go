package bitio

import (
	"encoding/binary"
	"io"

	"github.com/tpaschalis/blackhole/internal/codecerr"
)

// Reader exposes LSB-first bit access over an underlying byte source.
type Reader struct {
	src io.Reader
	cur byte
	nb  uint // number of valid low bits remaining in cur
}

// NewReader wraps src for bit-at-a-time reading.
func NewReader(src io.Reader) *Reader {
	return &Reader{src: src}
}

func (r *Reader) fill() error {
	var one [1]byte
	if _, err := io.ReadFull(r.src, one[:]); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return codecerr.UnexpectedEOF("bit stream ended")
		}
		return codecerr.IOError(err, "read byte")
	}
	r.cur = one[0]
	r.nb = 8
	return nil
}

// ReadBit returns the next single bit.
func (r *Reader) ReadBit() (byte, error) {
	if r.nb == 0 {
		if err := r.fill(); err != nil {
			return 0, err
		}
	}
	bit := r.cur & 1
	r.cur >>= 1
	r.nb--
	return bit, nil
}

// ReadBits packs k (0<=k<=8) consecutive bits, the first-read bit landing in
// position 0 of the result.
func (r *Reader) ReadBits(k int) (uint64, error) {
	if k < 0 || k > 8 {
		return 0, codecerr.InvalidArgument("ReadBits: k=%d out of range", k)
	}
	var v uint64
	for i := 0; i < k; i++ {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		v |= uint64(bit) << uint(i)
	}
	return v, nil
}

// ReadBitsN packs k (0<=k<=64) consecutive bits, for widths bigger than a
// single byte (used by huflen and varuint decoding).
func (r *Reader) ReadBitsN(k int) (uint64, error) {
	if k < 0 || k > 64 {
		return 0, codecerr.InvalidArgument("ReadBitsN: k=%d out of range", k)
	}
	var v uint64
	for i := 0; i < k; i++ {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		v |= uint64(bit) << uint(i)
	}
	return v, nil
}

// ReadByte consumes eight bits, or a raw byte if the cursor is byte-aligned.
func (r *Reader) ReadByte() (byte, error) {
	if r.nb == 0 {
		var one [1]byte
		if _, err := io.ReadFull(r.src, one[:]); err != nil {
			if err == io.ErrUnexpectedEOF || err == io.EOF {
				return 0, codecerr.UnexpectedEOF("byte stream ended")
			}
			return 0, codecerr.IOError(err, "read byte")
		}
		return one[0], nil
	}
	v, err := r.ReadBits(8)
	return byte(v), err
}

// ReadN returns n bytes, each consumed via ReadByte so unaligned cursors are
// honoured.
func (r *Reader) ReadN(n int) ([]byte, error) {
	out := make([]byte, n)
	for i := range out {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

// ReadU16 reads a little-endian uint16 via ReadByte.
func (r *Reader) ReadU16() (uint16, error) {
	b, err := r.ReadN(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32 reads a little-endian uint32 via ReadByte.
func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.ReadN(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadU64 reads a little-endian uint64 via ReadByte.
func (r *Reader) ReadU64() (uint64, error) {
	b, err := r.ReadN(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}
