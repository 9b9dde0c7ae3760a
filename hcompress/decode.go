package hcompress

import (
	"errors"
	"fmt"

	"github.com/mrjoshuak/go-hcompress/internal/bitio"
	"github.com/mrjoshuak/go-hcompress/internal/xdr"
)

// DefaultMaxSamples is the largest grid a stream header may declare
// unless DecodeOptions says otherwise.
const DefaultMaxSamples = 1 << 24

// Decode parses a stream into its header and the quantized coefficients
// that Encode was given. Decoding is strict: every byte must be
// accounted for.
func Decode(data []byte) (Header, []int64, error) {
	return decode(data, DefaultMaxSamples)
}

func decode(data []byte, maxSamples int) (Header, []int64, error) {
	r := xdr.NewReader(data)
	h, err := readHeader(r)
	if err != nil {
		return Header{}, nil, err
	}
	if h.Samples() > maxSamples {
		return Header{}, nil, fmt.Errorf("%w: %s exceeds %d samples", ErrInvalidDimensions, h, maxSamples)
	}

	dc, err := r.ReadInt64()
	if err != nil {
		return Header{}, nil, truncated("payload header")
	}
	var nbits [4]int
	for q := range nbits {
		n, err := r.ReadUint8()
		if err != nil {
			return Header{}, nil, truncated("payload header")
		}
		if n > maxPlanes {
			return Header{}, nil, corrupt("quadrant %d declares %d bit planes", q, n)
		}
		nbits[q] = int(n)
	}
	signLen, err := r.ReadUint32()
	if err != nil {
		return Header{}, nil, truncated("payload header")
	}
	if int64(signLen) > int64(r.Len()) {
		return Header{}, nil, truncated("sign section")
	}
	signBytes, err := r.Slice(int(signLen))
	if err != nil {
		return Header{}, nil, truncated("sign section")
	}
	planes := r.Rest()

	n := h.Samples()
	pd := planeDecoder{mag: make([]int64, n), ny: h.Ny, r: bitio.NewReader(planes)}
	for q, reg := range quadrants(h.Nx, h.Ny) {
		if nbits[q] > 0 && reg.empty() {
			return Header{}, nil, corrupt("empty quadrant %d declares %d bit planes", q, nbits[q])
		}
		for b := nbits[q] - 1; b >= 0; b-- {
			if b == nbits[q]-1 {
				err = pd.significant(reg, uint(b))
			} else {
				err = pd.region(reg, uint(b))
			}
			if err != nil {
				return Header{}, nil, err
			}
		}
	}
	if pd.r.Consumed() != len(planes) || !pd.r.PaddingIsZero() {
		return Header{}, nil, corrupt("%d bytes after bit planes", len(planes)-pd.r.Consumed())
	}
	if pd.mag[0] != 0 {
		return Header{}, nil, corrupt("bit planes overwrite the mean coefficient")
	}

	// Magnitudes become the coefficients in place.
	c := pd.mag
	sr := bitio.NewReader(signBytes)
	nonzero := 0
	for i := 1; i < n; i++ {
		if c[i] == 0 {
			continue
		}
		nonzero++
		neg, err := sr.ReadBool()
		if err != nil {
			return Header{}, nil, corrupt("sign section too short for %d nonzero coefficients", nonzero)
		}
		if neg {
			c[i] = -c[i]
		}
	}
	if len(signBytes) != (nonzero+7)/8 || !sr.PaddingIsZero() {
		return Header{}, nil, corrupt("sign section is %d bytes for %d nonzero coefficients", len(signBytes), nonzero)
	}
	c[0] = dc

	return h, c, nil
}

func truncated(section string) error {
	return fmt.Errorf("%w: %s", ErrTruncatedStream, section)
}

// planeDecoder mirrors planeEncoder, OR-ing decoded bits into mag.
// At most maxPlanes planes are read, so magnitudes stay below 1<<63.
type planeDecoder struct {
	mag []int64
	ny  int
	r   *bitio.Reader
}

func (d *planeDecoder) readBit() (uint, error) {
	bit, err := d.r.ReadBit()
	if errors.Is(err, bitio.ErrUnexpectedEnd) {
		return 0, truncated("bit planes")
	}
	return bit, err
}

func (d *planeDecoder) region(q region, b uint) error {
	set, err := d.readBit()
	if err != nil || set == 0 {
		return err
	}
	return d.significant(q, b)
}

func (d *planeDecoder) significant(q region, b uint) error {
	if q.area() <= leafArea {
		seen := false
		last := q.r1*d.ny - d.ny + q.c1 - 1
		for i := q.r0; i < q.r1; i++ {
			for j := q.c0; j < q.c1; j++ {
				idx := i*d.ny + j
				bit := uint(1)
				if idx != last || seen {
					var err error
					if bit, err = d.readBit(); err != nil {
						return err
					}
				}
				if bit != 0 {
					d.mag[idx] |= 1 << b
					seen = true
				}
			}
		}
		return nil
	}

	children, n := q.split()
	seen := false
	for k := 0; k < n; k++ {
		child := children[k]
		if k == n-1 && !seen {
			return d.significant(child, b)
		}
		set, err := d.readBit()
		if err != nil {
			return err
		}
		if set != 0 {
			if err := d.significant(child, b); err != nil {
				return err
			}
			seen = true
		}
	}
	return nil
}
