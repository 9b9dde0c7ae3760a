package hcompress

// InverseTransform reverses Transform in place, running the passes
// from the coarsest back to the finest.
//
// Before reconstructing a block the coefficients are re-rounded to the
// lattice the forward pass left them on, and the low bits the forward
// pass dropped from hx, hy and h0 are recovered from hc. For
// coefficients produced by Transform this is exact; for coefficients
// that went through Digitize and Undigitize it snaps the quantized
// values back onto the nearest valid lattice point.
func InverseTransform(c []int64, nx, ny int) error {
	if err := checkDimensions(nx, ny); err != nil {
		return err
	}
	if len(c) != nx*ny {
		return ErrInvalidDimensions
	}

	log2n := depth(nx, ny)
	if log2n == 0 {
		return nil
	}

	shift := uint(1)
	bit0 := int64(1) << (log2n - 1)
	bit1 := bit0 << 1
	bit2 := bit0 << 2
	mask0 := -bit0
	mask1 := mask0 << 1
	mask2 := mask0 << 2
	prnd0 := bit0 >> 1
	prnd1 := bit1 >> 1
	prnd2 := bit2 >> 1
	nrnd0 := prnd0 - 1
	nrnd1 := prnd1 - 1
	nrnd2 := prnd2 - 1

	// the overall mean is a multiple of bit2
	c[0] = roundMean(c[0], prnd2, nrnd2, mask2)

	// nxtop/nytop walk the forward sizes backwards:
	// ntop[k-1] = (ntop[k]+1)/2 with ntop[0] = n.
	nxtop, nytop := 1, 1
	nxf, nyf := nx, ny
	step := 1 << log2n

	for k := log2n - 1; k >= 0; k-- {
		step >>= 1
		nxtop <<= 1
		nytop <<= 1
		if nxf <= step {
			nxtop--
		} else {
			nxf -= step
		}
		if nyf <= step {
			nytop--
		} else {
			nyf -= step
		}

		// the finest pass divides by 4 and has no rounding for hc
		if k == 0 {
			nrnd0 = 0
			shift = 2
		}

		unshuffleRows(c, nxtop, nytop, ny)

		oddx := nxtop & 1
		oddy := nytop & 1

		i := 0
		for ; i < nxtop-oddx; i += 2 {
			s00 := i * ny
			s10 := s00 + ny
			for j := 0; j < nytop-oddy; j += 2 {
				h0 := c[s00]
				hx := roundMean(c[s10], prnd1, nrnd1, mask1)
				hy := roundMean(c[s00+1], prnd1, nrnd1, mask1)
				hc := roundMean(c[s10+1], prnd0, nrnd0, mask0)

				// bit0 of hc belongs to hx and hy
				lowbit0 := hc & bit0
				hx = towardZero(hx, lowbit0)
				hy = towardZero(hy, lowbit0)

				// bits 0 and 1 of hc, hx, hy belong to h0; handled
				// per sign so images with negative samples stay lossless
				lowbit1 := (hc ^ hx ^ hy) & bit1
				switch {
				case h0 >= 0:
					h0 += lowbit0 - lowbit1
				case lowbit0 == 0:
					h0 += lowbit1
				default:
					h0 += lowbit0 - lowbit1
				}

				c[s10+1] = (h0 + hx + hy + hc) >> shift
				c[s10] = (h0 + hx - hy - hc) >> shift
				c[s00+1] = (h0 - hx + hy - hc) >> shift
				c[s00] = (h0 - hx - hy + hc) >> shift
				s00 += 2
				s10 += 2
			}
			if oddy != 0 {
				h0 := c[s00]
				hx := roundMean(c[s10], prnd1, nrnd1, mask1)
				h0 = towardZero(h0, hx&bit1)
				c[s10] = (h0 + hx) >> shift
				c[s00] = (h0 - hx) >> shift
			}
		}
		if oddx != 0 {
			s00 := i * ny
			for j := 0; j < nytop-oddy; j += 2 {
				h0 := c[s00]
				hy := roundMean(c[s00+1], prnd1, nrnd1, mask1)
				h0 = towardZero(h0, hy&bit1)
				c[s00+1] = (h0 + hy) >> shift
				c[s00] = (h0 - hy) >> shift
				s00 += 2
			}
			if oddy != 0 {
				c[s00] >>= shift
			}
		}

		bit1 = bit0
		bit0 >>= 1
		mask1 = mask0
		mask0 >>= 1
		prnd1 = prnd0
		prnd0 >>= 1
		nrnd1 = nrnd0
		nrnd0 = prnd0 - 1
	}
	return nil
}

// towardZero moves h toward zero by the non-negative amount d.
func towardZero(h, d int64) int64 {
	if h >= 0 {
		return h - d
	}
	return h + d
}
