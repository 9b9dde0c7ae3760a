package hcompress

import (
	"fmt"

	"github.com/mrjoshuak/go-hcompress/internal/xdr"
)

// Stream framing constants.
const (
	// Magic identifies an H-compress stream: the classic 0xDD99 marker
	// followed by ASCII "HC".
	Magic uint32 = 0xDD994843

	// HeaderSize is the size of the fixed stream header in bytes.
	HeaderSize = 16
)

// Header is the fixed-size record at the start of every stream.
type Header struct {
	Nx    int // slow axis length
	Ny    int // fast axis length
	Scale int // quantization step, 1 = lossless
}

// Samples returns the number of samples the stream decodes to.
func (h Header) Samples() int {
	return h.Nx * h.Ny
}

// Lossless reports whether the stream was written with scale 1.
func (h Header) Lossless() bool {
	return h.Scale == 1
}

func (h Header) String() string {
	return fmt.Sprintf("%dx%d scale=%d", h.Nx, h.Ny, h.Scale)
}

func (h Header) write(w *xdr.BufferWriter) {
	w.WriteUint32(Magic)
	w.WriteInt32(int32(h.Nx))
	w.WriteInt32(int32(h.Ny))
	w.WriteInt32(int32(h.Scale))
}

// ReadHeader parses and validates the stream header without decoding
// the payload. The magic number is checked before any other field is
// trusted.
func ReadHeader(data []byte) (Header, error) {
	return readHeader(xdr.NewReader(data))
}

func readHeader(r *xdr.Reader) (Header, error) {
	magic, err := r.ReadUint32()
	if err != nil {
		return Header{}, fmt.Errorf("%w: %d bytes, header needs %d", ErrTruncatedStream, r.Len(), HeaderSize)
	}
	if magic != Magic {
		return Header{}, fmt.Errorf("%w: 0x%08X", ErrBadMagic, magic)
	}

	var fields [3]int32
	for i := range fields {
		if fields[i], err = r.ReadInt32(); err != nil {
			return Header{}, fmt.Errorf("%w: header cut at byte %d", ErrTruncatedStream, r.Pos())
		}
	}
	h := Header{Nx: int(fields[0]), Ny: int(fields[1]), Scale: int(fields[2])}

	if err := checkDimensions(h.Nx, h.Ny); err != nil {
		return Header{}, err
	}
	if h.Scale < 1 {
		return Header{}, corrupt("scale %d in header", h.Scale)
	}
	return h, nil
}
