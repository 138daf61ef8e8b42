package bitio

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/tpaschalis/blackhole/internal/codecerr"
)

func TestBitsPushGet(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	var want []byte
	var b Bits
	for range 1000 {
		bit := byte(rng.IntN(2))
		want = append(want, bit)
		b.Push(bit)
	}
	for i, w := range want {
		got, err := b.Get(i)
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		if got != w {
			t.Fatalf("Get(%d) = %d, want %d", i, got, w)
		}
	}
	if _, err := b.Get(len(want)); !codecerr.Is(err, codecerr.KindInvalidState) {
		t.Fatalf("Get(len) = %v, want InvalidState", err)
	}
}

func TestBitsEmitRoundTrip(t *testing.T) {
	var b Bits
	for _, bit := range []byte{1, 0, 1, 1, 0, 0, 0, 1, 1} {
		b.Push(bit)
	}
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := b.Emit(w); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	r := NewReader(bytes.NewReader(buf.Bytes()))
	for i := 0; i < b.Len(); i++ {
		want, _ := b.Get(i)
		got, err := r.ReadBit()
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("bit %d = %d, want %d", i, got, want)
		}
	}
}

func TestByteRoundTripUnaligned(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	// put the cursor out of alignment first.
	for range 3 {
		w.WriteBit(1)
	}
	if err := w.WriteByte(0xA5); err != nil {
		t.Fatal(err)
	}
	w.Flush()

	r := NewReader(bytes.NewReader(buf.Bytes()))
	for range 3 {
		if _, err := r.ReadBit(); err != nil {
			t.Fatal(err)
		}
	}
	got, err := r.ReadByte()
	if err != nil {
		t.Fatal(err)
	}
	if got != 0xA5 {
		t.Fatalf("got %#x, want %#x", got, 0xA5)
	}
}

func TestMultiByteLittleEndian(t *testing.T) {
	for _, v := range []uint64{0, 1, 0xFF, 0x1234, 0xDEADBEEF, 0x0102030405060708} {
		t.Run(fmt.Sprintf("%#x", v), func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf)
			w.WriteU64(v)
			w.Flush()
			r := NewReader(bytes.NewReader(buf.Bytes()))
			got, err := r.ReadU64()
			if err != nil {
				t.Fatal(err)
			}
			if got != v {
				t.Fatalf("got %#x, want %#x", got, v)
			}
		})
	}
}

func TestReadBitsTruncated(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	if _, err := r.ReadBit(); !codecerr.Is(err, codecerr.KindUnexpectedEOF) {
		t.Fatalf("got %v, want UnexpectedEof", err)
	}
}
