package hcompress

// Shuffle reorders the n elements a[off], a[off+stride], ...,
// a[off+(n-1)*stride] so the even-position elements occupy the first
// (n+1)/2 slots and the odd-position elements the rest, each group in
// its original order. scratch must hold at least n/2 elements; its
// contents on return are unspecified.
func Shuffle(a []int64, off, n, stride int, scratch []int64) {
	// stash odd elements
	k := 0
	for i := 1; i < n; i += 2 {
		scratch[k] = a[off+i*stride]
		k++
	}

	// compact even elements into the first half, front to back
	for i := 2; i < n; i += 2 {
		a[off+(i>>1)*stride] = a[off+i*stride]
	}

	// odd elements go into the second half
	half := (n + 1) >> 1
	for m := 0; m < k; m++ {
		a[off+(half+m)*stride] = scratch[m]
	}
}

// Unshuffle is the exact inverse of Shuffle: the first (n+1)/2 elements
// return to the even positions and the remainder to the odd positions.
// scratch must hold at least n/2 elements.
func Unshuffle(a []int64, off, n, stride int, scratch []int64) {
	half := (n + 1) >> 1

	// stash the second half
	k := 0
	for i := half; i < n; i++ {
		scratch[k] = a[off+i*stride]
		k++
	}

	// spread the first half onto even positions, back to front
	for i := half - 1; i >= 0; i-- {
		a[off+(i<<1)*stride] = a[off+i*stride]
	}

	// stashed elements fill the odd positions
	m := 0
	for i := 1; i < n; i += 2 {
		a[off+i*stride] = scratch[m]
		m++
	}
}

// shuffleRows shuffles the first ncols elements of each of the first
// nrows rows, then the first nrows elements of each of the first ncols
// columns, of a grid whose rows hold rowLen elements.
func shuffleRows(a []int64, nrows, ncols, rowLen int) {
	scratch := getScratch(max(nrows, ncols))
	for i := 0; i < nrows; i++ {
		Shuffle(a, i*rowLen, ncols, 1, *scratch)
	}
	for j := 0; j < ncols; j++ {
		Shuffle(a, j, nrows, rowLen, *scratch)
	}
	putScratch(scratch)
}

// unshuffleRows reverses shuffleRows.
func unshuffleRows(a []int64, nrows, ncols, rowLen int) {
	scratch := getScratch(max(nrows, ncols))
	for i := 0; i < nrows; i++ {
		Unshuffle(a, i*rowLen, ncols, 1, *scratch)
	}
	for j := 0; j < ncols; j++ {
		Unshuffle(a, j, nrows, rowLen, *scratch)
	}
	putScratch(scratch)
}
