package hcompress

// H-transform of a 2-D integer grid.
//
// The grid is reduced in log2n passes. Each pass replaces every 2x2
// block a00 a01 / a10 a11 of the current nxtop x nytop sub-grid with
//
//	h0 = (a11 + a10 + a01 + a00) >> shift   mean (DC)
//	hx = (a11 + a10 - a01 - a00) >> shift   difference across rows
//	hy = (a11 - a10 + a01 - a00) >> shift   difference across columns
//	hc = (a11 - a10 - a01 + a00) >> shift   diagonal difference
//
// then shuffles both axes so the h0 terms collect in the upper-left
// quarter, which the next pass reduces again. shift is 0 on the first
// pass and 1 afterwards because h0 already carries a factor of two.
//
// The low bit of hx and hy and the two low bits of h0 are redundant
// with hc and are rounded away, symmetrically for both signs, so the
// coefficients shrink by one bit per term. The masks double every pass
// after the first.

// Transform applies the forward H-transform in place to the nx×ny
// coefficient buffer c, indexed c[i*ny+j]. Within each 2x2 block hx is
// the second row minus the first and hy the second column minus the
// first, so values growing with i give a positive hx.
func Transform(c []int64, nx, ny int) error {
	if err := checkDimensions(nx, ny); err != nil {
		return err
	}
	if len(c) != nx*ny {
		return ErrInvalidDimensions
	}

	log2n := depth(nx, ny)

	shift := uint(0)
	mask := int64(-2)
	mask2 := mask << 1
	prnd := int64(1)
	prnd2 := prnd << 1
	nrnd2 := prnd2 - 1

	nxtop := nx
	nytop := ny

	for k := 0; k < log2n; k++ {
		oddx := nxtop & 1
		oddy := nytop & 1

		i := 0
		for ; i < nxtop-oddx; i += 2 {
			s00 := i * ny   // a[i,j]
			s10 := s00 + ny // a[i+1,j]
			for j := 0; j < nytop-oddy; j += 2 {
				h0 := (c[s10+1] + c[s10] + c[s00+1] + c[s00]) >> shift
				hx := (c[s10+1] + c[s10] - c[s00+1] - c[s00]) >> shift
				hy := (c[s10+1] - c[s10] + c[s00+1] - c[s00]) >> shift
				hc := (c[s10+1] - c[s10] - c[s00+1] + c[s00]) >> shift

				c[s10+1] = hc
				c[s10] = roundDetail(hx, prnd, mask)
				c[s00+1] = roundDetail(hy, prnd, mask)
				c[s00] = roundMean(h0, prnd2, nrnd2, mask2)
				s00 += 2
				s10 += 2
			}
			if oddy != 0 {
				// last element of an odd-length row: s00+1, s10+1 are off the edge
				h0 := (c[s10] + c[s00]) << (1 - shift)
				hx := (c[s10] - c[s00]) << (1 - shift)
				c[s10] = roundDetail(hx, prnd, mask)
				c[s00] = roundMean(h0, prnd2, nrnd2, mask2)
			}
		}
		if oddx != 0 {
			// last row of an odd-length column: s10, s10+1 are off the edge
			s00 := i * ny
			for j := 0; j < nytop-oddy; j += 2 {
				h0 := (c[s00+1] + c[s00]) << (1 - shift)
				hy := (c[s00+1] - c[s00]) << (1 - shift)
				c[s00+1] = roundDetail(hy, prnd, mask)
				c[s00] = roundMean(h0, prnd2, nrnd2, mask2)
				s00 += 2
			}
			if oddy != 0 {
				// isolated corner
				h0 := c[s00] << (2 - shift)
				c[s00] = roundMean(h0, prnd2, nrnd2, mask2)
			}
		}

		shuffleRows(c, nxtop, nytop, ny)

		nxtop = (nxtop + 1) >> 1
		nytop = (nytop + 1) >> 1

		shift = 1
		mask = mask2
		prnd = prnd2
		mask2 <<= 1
		prnd2 <<= 1
		nrnd2 = prnd2 - 1
	}
	return nil
}

// roundDetail drops the bits below mask from a difference term,
// rounding half away from zero.
func roundDetail(h, prnd, mask int64) int64 {
	if h >= 0 {
		return (h + prnd) & mask
	}
	return h & mask
}

// roundMean drops the bits below mask2 from a mean term with the same
// rounding for positive and negative values.
func roundMean(h, prnd2, nrnd2, mask2 int64) int64 {
	if h >= 0 {
		return (h + prnd2) & mask2
	}
	return (h + nrnd2) & mask2
}
