package container

import (
	"github.com/tpaschalis/blackhole/internal/bitio"
	"github.com/tpaschalis/blackhole/internal/codecerr"
)

// Self-describing variable-width unsigned integer: a 2-bit width tag
// followed by the value itself, least-significant bit first throughout.
// Tag 0 (00) carries a 6-bit value, tag 1 (01) a 14-bit value, tag 2 (10) a
// 30-bit value, and tag 3 (11) a 62-bit value - the smallest tag able to
// hold the value is always chosen, so encoding is canonical.
const maxVaruint = 1<<62 - 1

var varuintWidths = [4]int{6, 14, 30, 62}

// WriteVaruint encodes v in the smallest tier that fits. Values that do not
// fit in 62 bits are rejected as LimitExceeded.
func WriteVaruint(w *bitio.Writer, v uint64) error {
	tag, width, err := varuintTier(v)
	if err != nil {
		return err
	}
	if err := w.WriteBitsN(uint64(tag), 2); err != nil {
		return err
	}
	return w.WriteBitsN(v, width)
}

func varuintTier(v uint64) (tag int, width int, err error) {
	switch {
	case v < 1<<6:
		return 0, 6, nil
	case v < 1<<14:
		return 1, 14, nil
	case v < 1<<30:
		return 2, 30, nil
	case v <= maxVaruint:
		return 3, 62, nil
	default:
		return 0, 0, codecerr.LimitExceeded("varuint: value %d exceeds the 62-bit limit", v)
	}
}

// ReadVaruint decodes a value written by WriteVaruint.
func ReadVaruint(r *bitio.Reader) (uint64, error) {
	tag, err := r.ReadBitsN(2)
	if err != nil {
		return 0, err
	}
	if tag > 3 {
		return 0, codecerr.FormatError("varuint: impossible tag %d", tag)
	}
	return r.ReadBitsN(varuintWidths[tag])
}

// Huflen is a narrower self-describing integer used for dictionary code
// bit-lengths: a 1-bit tag selects either a 7-bit (tag 0) or 15-bit
// (tag 1) field.
func WriteHuflen(w *bitio.Writer, v uint64) error {
	switch {
	case v < 1<<7:
		if err := w.WriteBit(0); err != nil {
			return err
		}
		return w.WriteBitsN(v, 7)
	case v < 1<<15:
		if err := w.WriteBit(1); err != nil {
			return err
		}
		return w.WriteBitsN(v, 15)
	default:
		return codecerr.LimitExceeded("huflen: value %d exceeds the 15-bit limit", v)
	}
}

// ReadHuflen decodes a value written by WriteHuflen.
func ReadHuflen(r *bitio.Reader) (uint64, error) {
	tag, err := r.ReadBit()
	if err != nil {
		return 0, err
	}
	if tag == 0 {
		return r.ReadBitsN(7)
	}
	return r.ReadBitsN(15)
}
