package hcompress

// region is the half-open rectangle [r0,r1) x [c0,c1) of a grid.
type region struct {
	r0, r1, c0, c1 int
}

func (q region) empty() bool {
	return q.r1 <= q.r0 || q.c1 <= q.c0
}

func (q region) area() int {
	if q.empty() {
		return 0
	}
	return (q.r1 - q.r0) * (q.c1 - q.c0)
}

// split divides q at its row and column midpoints, rounding up, and
// returns the non-empty children in raster order.
func (q region) split() ([4]region, int) {
	rm := q.r0 + (q.r1-q.r0+1)/2
	cm := q.c0 + (q.c1-q.c0+1)/2
	cand := [4]region{
		{q.r0, rm, q.c0, cm},
		{q.r0, rm, cm, q.c1},
		{rm, q.r1, q.c0, cm},
		{rm, q.r1, cm, q.c1},
	}
	var out [4]region
	n := 0
	for _, c := range cand {
		if !c.empty() {
			out[n] = c
			n++
		}
	}
	return out, n
}

// leafArea is the largest region whose bits are sent verbatim.
const leafArea = 4

// quadrants splits an nx×ny grid into the four regions that carry their
// own bit-plane counts. After the transform the coarse coefficients
// collect in the first; the others hold the finest detail terms.
func quadrants(nx, ny int) [4]region {
	nx2 := (nx + 1) / 2
	ny2 := (ny + 1) / 2
	return [4]region{
		{0, nx2, 0, ny2},
		{0, nx2, ny2, ny},
		{nx2, nx, 0, ny2},
		{nx2, nx, ny2, ny},
	}
}

// bitLength returns the number of bits needed to represent v.
func bitLength(v uint64) int {
	n := 0
	for v != 0 {
		n++
		v >>= 1
	}
	return n
}
