package hcompress

import "fmt"

// MaxDimension is the largest accepted value of either grid dimension.
// It bounds the transform depth so that coefficients of int32 samples
// always fit comfortably in int64.
const MaxDimension = 1 << 26

// Grid is a single 2-D plane of signed 32-bit samples stored row-major
// in a flat buffer.
//
// Nx is the slow (outer) axis and Ny the fast (inner) axis: sample
// (i, j), with 0 <= i < Nx and 0 <= j < Ny, lives at Data[i*Ny+j].
type Grid struct {
	Nx   int
	Ny   int
	Data []int32
}

// NewGrid allocates a zeroed nx×ny grid.
func NewGrid(nx, ny int) (*Grid, error) {
	if err := checkDimensions(nx, ny); err != nil {
		return nil, err
	}
	return &Grid{Nx: nx, Ny: ny, Data: make([]int32, nx*ny)}, nil
}

// GridFrom wraps data as an nx×ny grid without copying it.
// The grid takes ownership of data.
func GridFrom(nx, ny int, data []int32) (*Grid, error) {
	g := &Grid{Nx: nx, Ny: ny, Data: data}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks the grid invariants: both dimensions in
// [1, MaxDimension] and a buffer of exactly Nx*Ny samples.
func (g *Grid) Validate() error {
	if g == nil {
		return fmt.Errorf("%w: nil grid", ErrInvalidDimensions)
	}
	if err := checkDimensions(g.Nx, g.Ny); err != nil {
		return err
	}
	if len(g.Data) != g.Nx*g.Ny {
		return fmt.Errorf("%w: buffer holds %d samples, want %dx%d=%d",
			ErrInvalidDimensions, len(g.Data), g.Nx, g.Ny, g.Nx*g.Ny)
	}
	return nil
}

// Index returns the flat buffer index of sample (i, j).
func (g *Grid) Index(i, j int) int {
	return i*g.Ny + j
}

// At returns sample (i, j).
func (g *Grid) At(i, j int) int32 {
	return g.Data[i*g.Ny+j]
}

// Set stores v at sample (i, j).
func (g *Grid) Set(i, j int, v int32) {
	g.Data[i*g.Ny+j] = v
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	data := make([]int32, len(g.Data))
	copy(data, g.Data)
	return &Grid{Nx: g.Nx, Ny: g.Ny, Data: data}
}

// Equal reports whether two grids have the same shape and samples.
func (g *Grid) Equal(o *Grid) bool {
	if g.Nx != o.Nx || g.Ny != o.Ny || len(g.Data) != len(o.Data) {
		return false
	}
	for i := range g.Data {
		if g.Data[i] != o.Data[i] {
			return false
		}
	}
	return true
}

// coefficients widens the samples into a fresh int64 coefficient buffer.
func (g *Grid) coefficients() []int64 {
	c := make([]int64, len(g.Data))
	for i, v := range g.Data {
		c[i] = int64(v)
	}
	return c
}

func checkDimensions(nx, ny int) error {
	if nx < 1 || ny < 1 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, nx, ny)
	}
	if nx > MaxDimension || ny > MaxDimension {
		return fmt.Errorf("%w: %dx%d exceeds limit %d", ErrInvalidDimensions, nx, ny, MaxDimension)
	}
	return nil
}

// depth returns log2n = ceil(log2(max(nx, ny))), the number of
// reduction passes the transform performs.
func depth(nx, ny int) int {
	nmax := max(nx, ny)
	log2n := 0
	for 1<<log2n < nmax {
		log2n++
	}
	return log2n
}
