// Package bitio implements MSB-first bit-level writing and reading over
// byte slices, used for the sign and bit-plane sections of H-compress
// streams.
package bitio

import "errors"

// ErrUnexpectedEnd is returned when a read runs past the end of the data.
var ErrUnexpectedEnd = errors.New("bitio: unexpected end of data")

// Writer assembles bits into bytes, most significant bit first.
type Writer struct {
	buf     []byte // completed bytes
	curByte byte   // byte being assembled
	bitPos  uint   // bits written into curByte (0-7)
}

// NewWriter creates a Writer with room for capacity bytes.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// WriteBit writes a single bit; any nonzero value writes a 1.
func (w *Writer) WriteBit(bit uint) {
	if bit != 0 {
		w.curByte |= 1 << (7 - w.bitPos)
	}
	w.bitPos++
	if w.bitPos == 8 {
		w.buf = append(w.buf, w.curByte)
		w.curByte = 0
		w.bitPos = 0
	}
}

// WriteBool writes 1 for true and 0 for false.
func (w *Writer) WriteBool(b bool) {
	if b {
		w.WriteBit(1)
	} else {
		w.WriteBit(0)
	}
}

// Flush pads the final partial byte with zeros and returns a copy of
// the encoded bytes. The writer keeps its state; further writes start
// on the next byte boundary.
func (w *Writer) Flush() []byte {
	if w.bitPos > 0 {
		w.buf = append(w.buf, w.curByte)
		w.curByte = 0
		w.bitPos = 0
	}
	out := make([]byte, len(w.buf))
	copy(out, w.buf)
	return out
}

// Reader reads bits from a byte slice, most significant bit first.
type Reader struct {
	data   []byte
	pos    int  // byte position
	bitPos uint // next bit within data[pos] (0-7)
}

// NewReader creates a Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// ReadBit reads a single bit.
func (r *Reader) ReadBit() (uint, error) {
	if r.pos >= len(r.data) {
		return 0, ErrUnexpectedEnd
	}
	bit := uint(r.data[r.pos]>>(7-r.bitPos)) & 1
	r.bitPos++
	if r.bitPos == 8 {
		r.bitPos = 0
		r.pos++
	}
	return bit, nil
}

// ReadBool reads a single bit as a boolean.
func (r *Reader) ReadBool() (bool, error) {
	bit, err := r.ReadBit()
	return bit == 1, err
}

// Consumed returns the number of bytes touched so far, counting a
// partially read byte.
func (r *Reader) Consumed() int {
	if r.bitPos > 0 {
		return r.pos + 1
	}
	return r.pos
}

// PaddingIsZero reports whether the unread bits of a partially read
// final byte are all zero.
func (r *Reader) PaddingIsZero() bool {
	if r.bitPos == 0 || r.pos >= len(r.data) {
		return true
	}
	return r.data[r.pos]&(0xFF>>r.bitPos) == 0
}
