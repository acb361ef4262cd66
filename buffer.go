package xbase

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// byteBuffer is a growable little-endian byte buffer with positioned
// writes, mirroring the offset-driven layout of a DBF/DBT file. It is the
// low-level primitive the header/field/record/DBT codecs build on.
type byteBuffer struct {
	buf []byte
}

func newByteBuffer(capacity int) *byteBuffer {
	return &byteBuffer{buf: make([]byte, 0, capacity)}
}

func (b *byteBuffer) Bytes() []byte { return b.buf }
func (b *byteBuffer) Len() int      { return len(b.buf) }

func (b *byteBuffer) writeByte(v byte) {
	b.buf = append(b.buf, v)
}

func (b *byteBuffer) writeBytes(v []byte) {
	b.buf = append(b.buf, v...)
}

func (b *byteBuffer) writeU16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

func (b *byteBuffer) writeU32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

func (b *byteBuffer) writeI32(v int32) {
	b.writeU32(uint32(v))
}

func (b *byteBuffer) writeF64(v float64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v))
	b.buf = append(b.buf, tmp[:]...)
}

// writeASCIIPaddedZero fills all of dst: the ASCII content of s (cut to
// len(dst)) followed by zero padding (used for fixed-name/reserved fields).
func writeASCIIPaddedZero(dst []byte, s string) {
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// rightJustify right-justifies s within width bytes, left-padding with pad.
// Returns an error if s is longer than width.
func rightJustify(s string, width int, pad byte) ([]byte, error) {
	if len(s) > width {
		return nil, errors.Errorf("value %q exceeds field width %d", s, width)
	}
	out := make([]byte, width)
	for i := range out {
		out[i] = pad
	}
	copy(out[width-len(s):], s)
	return out, nil
}

// positioned reads against a plain byte slice, used by the header/field/
// record/DBT decoders.

func readU16(b []byte, offset int) uint16 {
	return binary.LittleEndian.Uint16(b[offset : offset+2])
}

func readU32(b []byte, offset int) uint32 {
	return binary.LittleEndian.Uint32(b[offset : offset+4])
}

func readF64(b []byte, offset int) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b[offset : offset+8]))
}
