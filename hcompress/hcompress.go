// Package hcompress implements H-compress, a hierarchical integer
// transform codec for single-plane images of signed 32-bit samples.
//
// Compression runs four stages over one grid:
//
//  1. Transform applies the H-transform, a recursive integer Haar-like
//     transform, in log2(max(nx, ny)) halving passes.
//  2. Shuffle groups coefficients of the same order after every pass.
//  3. Digitize divides coefficients by the scale factor (1 = lossless).
//  4. Encode writes the header, the mean term, the sign bits and the
//     magnitude bit planes, each plane coded as a quadtree so that empty
//     quadrants cost a single bit.
//
// Decompression runs the inverse stages in reverse order. With scale 1
// the round trip is exact. With a larger scale every reconstructed
// sample lies within scale of the original.
//
// Basic usage:
//
//	g, _ := hcompress.GridFrom(nx, ny, samples)
//	stream, err := hcompress.Compress(g, 1)
//	...
//	back, err := hcompress.Decompress(stream)
//
// The codec keeps no state between calls; independent grids may be
// compressed concurrently.
package hcompress

import (
	"bytes"
	"fmt"
	"io"
	"math"
)

// DecodeOptions controls decoding limits.
type DecodeOptions struct {
	// MaxSamples caps nx*ny as declared by a stream header, so a short
	// hostile stream cannot force a huge allocation. 0 means
	// DefaultMaxSamples.
	MaxSamples int
}

// DefaultDecodeOptions returns the default decoding options.
func DefaultDecodeOptions() *DecodeOptions {
	return &DecodeOptions{MaxSamples: DefaultMaxSamples}
}

// Compress encodes g with the given scale factor. g is not modified.
func Compress(g *Grid, scale int) ([]byte, error) {
	if scale < 1 || int64(scale) > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidScale, scale)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	c := g.coefficients()
	if err := Transform(c, g.Nx, g.Ny); err != nil {
		return nil, err
	}
	Digitize(c, scale)
	return Encode(c, g.Nx, g.Ny, scale)
}

// Decompress decodes a stream produced by Compress.
func Decompress(data []byte) (*Grid, error) {
	return DecompressWithOptions(data, nil)
}

// DecompressWithOptions decodes a stream with explicit limits. A nil
// opts uses DefaultDecodeOptions.
func DecompressWithOptions(data []byte, opts *DecodeOptions) (*Grid, error) {
	maxSamples := DefaultMaxSamples
	if opts != nil && opts.MaxSamples > 0 {
		maxSamples = opts.MaxSamples
	}

	h, c, err := decode(data, maxSamples)
	if err != nil {
		return nil, err
	}

	// Bound coefficients before they are scaled and combined so the
	// inverse transform cannot overflow on a hostile stream.
	limit := coefficientLimit(h.Nx, h.Ny) / int64(h.Scale)
	for i, v := range c {
		if v > limit || v < -limit {
			return nil, corrupt("coefficient %d out of range", i)
		}
	}

	Undigitize(c, h.Scale)
	if err := InverseTransform(c, h.Nx, h.Ny); err != nil {
		return nil, err
	}

	// Quantization may push a lossy reconstruction of an extreme sample
	// just past the int32 range; the original was in range, so clamp.
	// A lossless stream must reconstruct exactly.
	data32 := make([]int32, len(c))
	for i, v := range c {
		if v > math.MaxInt32 || v < math.MinInt32 {
			if h.Lossless() {
				return nil, corrupt("sample %d reconstructs to %d", i, v)
			}
			v = min(max(v, math.MinInt32), math.MaxInt32)
		}
		data32[i] = int32(v)
	}
	return &Grid{Nx: h.Nx, Ny: h.Ny, Data: data32}, nil
}

// coefficientLimit bounds the magnitude of any H-transform coefficient
// of an nx×ny grid of int32 samples: each pass at most doubles the
// range, starting from 4·2^31. The bound never exceeds 2^60, so four of
// them sum without overflow.
func coefficientLimit(nx, ny int) int64 {
	return int64(1) << min(34+depth(nx, ny), 60)
}

// CompressTo compresses g and writes the stream to w. Nothing is
// written unless compression succeeds.
func CompressTo(w io.Writer, g *Grid, scale int) error {
	stream, err := Compress(g, scale)
	if err != nil {
		return err
	}
	n, err := w.Write(stream)
	if err != nil {
		return ioError(err)
	}
	if n != len(stream) {
		return ioError(io.ErrShortWrite)
	}
	return nil
}

// DecompressFrom reads a whole stream from r and decodes it.
func DecompressFrom(r io.Reader) (*Grid, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, ioError(err)
	}
	return Decompress(buf.Bytes())
}

// Ratio returns the compression ratio of a stream relative to storing
// its samples as 4-byte integers.
func Ratio(stream []byte) (float64, error) {
	h, err := ReadHeader(stream)
	if err != nil {
		return 0, err
	}
	return float64(4*h.Samples()) / float64(len(stream)), nil
}
