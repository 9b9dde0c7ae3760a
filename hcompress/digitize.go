package hcompress

// Digitize quantizes coefficients in place to the nearest multiple of
// scale, storing the multiplier. Halves round toward zero for positive
// and negative values alike. A scale of 1 or less leaves c untouched.
func Digitize(c []int64, scale int) {
	if scale <= 1 {
		return
	}
	s := int64(scale)
	d := (s+1)/2 - 1
	for i, v := range c {
		if v > 0 {
			c[i] = (v + d) / s
		} else {
			c[i] = (v - d) / s
		}
	}
}

// Undigitize multiplies coefficients by scale in place, restoring the
// quantized lattice point. The rounding error of Digitize, at most
// scale/2 per coefficient, is not recoverable.
func Undigitize(c []int64, scale int) {
	if scale <= 1 {
		return
	}
	s := int64(scale)
	for i := range c {
		c[i] *= s
	}
}
