package hcompress

import (
	"math"

	"github.com/mrjoshuak/go-hcompress/internal/bitio"
	"github.com/mrjoshuak/go-hcompress/internal/xdr"
)

// Payload layout after the 16-byte header:
//
//	8 bytes   dc, the overall mean coefficient c[0]
//	4 bytes   bit-plane count of each quadrant
//	4 bytes   length S of the sign section
//	S bytes   sign bits of the nonzero coefficients, raster order
//	...       bit planes, quadrant by quadrant, most significant first
//
// c[0] is carried verbatim and coded as zero in the planes, so the
// large mean does not inflate the plane count of the first quadrant.

const (
	// payloadFixed is the size of the fixed part of the payload.
	payloadFixed = 8 + 4 + 4

	// maxPlanes is the largest bit-plane count a quadrant may declare.
	maxPlanes = 63
)

// Encode serializes an nx×ny grid of quantized coefficients, as left by
// Transform and Digitize with the given scale. c is not modified.
func Encode(c []int64, nx, ny, scale int) ([]byte, error) {
	if err := checkDimensions(nx, ny); err != nil {
		return nil, err
	}
	if len(c) != nx*ny {
		return nil, ErrInvalidDimensions
	}
	// The header carries the scale as an int32.
	if scale < 1 || int64(scale) > math.MaxInt32 {
		return nil, ErrInvalidScale
	}

	mag := make([]uint64, len(c))
	signs := bitio.NewWriter(len(c) / 64)
	for i := 1; i < len(c); i++ {
		v := c[i]
		switch {
		case v > 0:
			mag[i] = uint64(v)
			signs.WriteBit(0)
		case v < 0:
			mag[i] = uint64(-v)
			signs.WriteBit(1)
		}
	}
	signBytes := signs.Flush()

	quads := quadrants(nx, ny)
	var nbits [4]int
	for q, r := range quads {
		var vmax uint64
		for i := r.r0; i < r.r1; i++ {
			for _, m := range mag[i*ny+r.c0 : i*ny+r.c1] {
				vmax = max(vmax, m)
			}
		}
		nbits[q] = bitLength(vmax)
		if nbits[q] > maxPlanes {
			return nil, corrupt("coefficient magnitude needs %d bits", nbits[q])
		}
	}

	pe := planeEncoder{mag: mag, ny: ny, w: bitio.NewWriter(len(c) / 4)}
	for q, r := range quads {
		for b := nbits[q] - 1; b >= 0; b-- {
			if b == nbits[q]-1 {
				pe.significant(r, uint(b))
			} else {
				pe.region(r, uint(b))
			}
		}
	}
	planes := pe.w.Flush()

	w := xdr.NewBufferWriter(HeaderSize + payloadFixed + len(signBytes) + len(planes))
	Header{Nx: nx, Ny: ny, Scale: scale}.write(w)
	w.WriteInt64(c[0])
	for _, n := range nbits {
		w.WriteUint8(uint8(n))
	}
	w.WriteUint32(uint32(len(signBytes)))
	w.WriteBytes(signBytes)
	w.WriteBytes(planes)
	return w.Bytes(), nil
}

// planeEncoder writes one bit plane of a magnitude grid as a quadtree.
type planeEncoder struct {
	mag []uint64
	ny  int
	w   *bitio.Writer
}

// anySet reports whether any magnitude in q has bit b set.
func (e *planeEncoder) anySet(q region, b uint) bool {
	for i := q.r0; i < q.r1; i++ {
		for _, m := range e.mag[i*e.ny+q.c0 : i*e.ny+q.c1] {
			if m>>b&1 != 0 {
				return true
			}
		}
	}
	return false
}

// region writes whether q has any bit set at plane b and, if so, its
// contents.
func (e *planeEncoder) region(q region, b uint) {
	set := e.anySet(q, b)
	e.w.WriteBool(set)
	if set {
		e.significant(q, b)
	}
}

// significant writes the contents of a region known to have a bit set
// at plane b. Whenever everything before the last cell or child was
// empty, the last one is known to be set and costs nothing.
func (e *planeEncoder) significant(q region, b uint) {
	if q.area() <= leafArea {
		seen := false
		last := q.r1*e.ny - e.ny + q.c1 - 1
		for i := q.r0; i < q.r1; i++ {
			for j := q.c0; j < q.c1; j++ {
				idx := i*e.ny + j
				if idx == last && !seen {
					return
				}
				bit := uint(e.mag[idx]>>b) & 1
				e.w.WriteBit(bit)
				seen = seen || bit != 0
			}
		}
		return
	}

	children, n := q.split()
	seen := false
	for k := 0; k < n; k++ {
		child := children[k]
		if k == n-1 && !seen {
			e.significant(child, b)
			return
		}
		if e.anySet(child, b) {
			e.w.WriteBit(1)
			e.significant(child, b)
			seen = true
		} else {
			e.w.WriteBit(0)
		}
	}
}
