package hcompress

import "sync"

// Pool of shuffle scratch buffers. A buffer is owned by exactly one
// shuffle pass between getScratch and putScratch, so concurrent
// transforms never share one.
var scratchPool = sync.Pool{
	New: func() any {
		buf := make([]int64, 0, 256)
		return &buf
	},
}

// getScratch returns a scratch buffer of length ceil(n/2).
func getScratch(n int) *[]int64 {
	size := (n + 1) >> 1
	p := scratchPool.Get().(*[]int64)
	if cap(*p) < size {
		*p = make([]int64, size)
	}
	*p = (*p)[:size]
	return p
}

func putScratch(p *[]int64) {
	scratchPool.Put(p)
}
