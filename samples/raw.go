package samples

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/mrjoshuak/go-hcompress/hcompress"
)

// SampleType is the on-disk type of one raw sample.
type SampleType uint8

// Raw sample types.
const (
	Uint8 SampleType = iota
	Int16
	Uint16
	Int32
)

// Size returns the size of one sample in bytes.
func (t SampleType) Size() int {
	switch t {
	case Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32:
		return 4
	}
	return 0
}

func (t SampleType) String() string {
	switch t {
	case Uint8:
		return "uint8"
	case Int16:
		return "int16"
	case Uint16:
		return "uint16"
	case Int32:
		return "int32"
	}
	return fmt.Sprintf("SampleType(%d)", uint8(t))
}

// ParseSampleType maps a type name to a SampleType.
func ParseSampleType(name string) (SampleType, error) {
	switch name {
	case "uint8", "u8", "byte":
		return Uint8, nil
	case "int16", "i16", "short":
		return Int16, nil
	case "uint16", "u16":
		return Uint16, nil
	case "int32", "i32", "int":
		return Int32, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedType, name)
}

// bounds returns the value range representable by t.
func (t SampleType) bounds() (lo, hi int64) {
	switch t {
	case Uint8:
		return 0, math.MaxUint8
	case Int16:
		return math.MinInt16, math.MaxInt16
	case Uint16:
		return 0, math.MaxUint16
	}
	return math.MinInt32, math.MaxInt32
}

// RawFormat describes a raw sample file: a fixed-size header that is
// skipped, followed by nx*ny samples in row-major order.
type RawFormat struct {
	Type        SampleType
	ByteOrder   binary.ByteOrder
	HeaderBytes int

	// Clamp makes WriteRaw saturate values outside the range of Type
	// instead of failing. Useful for lossy reconstructions.
	Clamp bool
}

// DefaultRawFormat returns big-endian int16 samples with no header.
func DefaultRawFormat() RawFormat {
	return RawFormat{Type: Int16, ByteOrder: binary.BigEndian}
}

func (f RawFormat) order() binary.ByteOrder {
	if f.ByteOrder == nil {
		return binary.BigEndian
	}
	return f.ByteOrder
}

// ReadRaw reads an nx×ny grid of raw samples from r.
func ReadRaw(r io.Reader, nx, ny int, f RawFormat) (*hcompress.Grid, error) {
	size := f.Type.Size()
	if size == 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, f.Type)
	}
	g, err := hcompress.NewGrid(nx, ny)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(r)
	if f.HeaderBytes > 0 {
		if _, err := br.Discard(f.HeaderBytes); err != nil {
			return nil, fmt.Errorf("%w: header of %d bytes: %w", ErrShortInput, f.HeaderBytes, err)
		}
	}

	order := f.order()
	buf := make([]byte, ny*size)
	for i := 0; i < nx; i++ {
		if _, err := io.ReadFull(br, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("%w: row %d of %d", ErrShortInput, i, nx)
			}
			return nil, err
		}
		row := g.Data[i*ny : (i+1)*ny]
		for j := range row {
			b := buf[j*size:]
			switch f.Type {
			case Uint8:
				row[j] = int32(b[0])
			case Int16:
				row[j] = int32(int16(order.Uint16(b)))
			case Uint16:
				row[j] = int32(order.Uint16(b))
			case Int32:
				row[j] = int32(order.Uint32(b))
			}
		}
	}
	return g, nil
}

// WriteRaw writes the samples of g to w in format f. HeaderBytes is
// ignored; raw output never carries a header.
func WriteRaw(w io.Writer, g *hcompress.Grid, f RawFormat) error {
	size := f.Type.Size()
	if size == 0 {
		return fmt.Errorf("%w: %v", ErrUnsupportedType, f.Type)
	}
	if err := g.Validate(); err != nil {
		return err
	}

	lo, hi := f.Type.bounds()
	order := f.order()
	bw := bufio.NewWriter(w)
	buf := make([]byte, g.Ny*size)
	for i := 0; i < g.Nx; i++ {
		for j, v32 := range g.Data[i*g.Ny : (i+1)*g.Ny] {
			v := int64(v32)
			if v < lo || v > hi {
				if !f.Clamp {
					return fmt.Errorf("%w: %d at (%d, %d) as %v", ErrValueRange, v, i, j, f.Type)
				}
				v = min(max(v, lo), hi)
			}
			b := buf[j*size:]
			switch f.Type {
			case Uint8:
				b[0] = uint8(v)
			case Int16, Uint16:
				order.PutUint16(b, uint16(v))
			case Int32:
				order.PutUint32(b, uint32(v))
			}
		}
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}
