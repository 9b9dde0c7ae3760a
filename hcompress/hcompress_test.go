package hcompress

import (
	"bytes"
	"encoding/hex"
	"errors"
	"io"
	"math"
	"math/rand"
	"strconv"
	"testing"

	"github.com/mrjoshuak/go-hcompress/internal/xdr"
)

// example4x4 is a 4x4 grid with a gentle gradient.
var example4x4 = []int32{
	10, 12, 11, 13,
	9, 11, 10, 12,
	14, 16, 15, 17,
	13, 15, 14, 16,
}

func mustGrid(t testing.TB, nx, ny int, data []int32) *Grid {
	t.Helper()
	g, err := GridFrom(nx, ny, data)
	if err != nil {
		t.Fatalf("GridFrom(%d, %d) error: %v", nx, ny, err)
	}
	return g
}

func randomGrid(rng *rand.Rand, nx, ny int, lo, hi int32) *Grid {
	data := make([]int32, nx*ny)
	for i := range data {
		data[i] = lo + int32(rng.Int63n(int64(hi)-int64(lo)+1))
	}
	return &Grid{Nx: nx, Ny: ny, Data: data}
}

// smoothGrid returns a slowly varying image with a little noise, the
// kind of data the codec is built for.
func smoothGrid(rng *rand.Rand, nx, ny int) *Grid {
	g := &Grid{Nx: nx, Ny: ny, Data: make([]int32, nx*ny)}
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			v := 1000 + 300*math.Sin(float64(i)/9)*math.Cos(float64(j)/13) + rng.NormFloat64()*3
			g.Set(i, j, int32(v))
		}
	}
	return g
}

func maxAbsError(a, b *Grid) int64 {
	var worst int64
	for i := range a.Data {
		d := int64(a.Data[i]) - int64(b.Data[i])
		if d < 0 {
			d = -d
		}
		worst = max(worst, d)
	}
	return worst
}

func TestCompressLosslessExample(t *testing.T) {
	g := mustGrid(t, 4, 4, append([]int32(nil), example4x4...))
	stream, err := Compress(g, 1)
	if err != nil {
		t.Fatalf("Compress error: %v", err)
	}

	got, err := Decompress(stream)
	if err != nil {
		t.Fatalf("Decompress error: %v", err)
	}
	if !got.Equal(g) {
		t.Errorf("lossless round trip = %v, want %v", got.Data, g.Data)
	}
}

func TestCompressGolden(t *testing.T) {
	g := mustGrid(t, 4, 4, append([]int32(nil), example4x4...))
	stream, err := Compress(g, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := "dd9948430000000400000004000000010000000000000070050302000000000203c0250f3c"
	if got := hex.EncodeToString(stream); got != want {
		t.Errorf("stream = %s\nwant     %s", got, want)
	}
}

func TestCompressLossyExample(t *testing.T) {
	g := mustGrid(t, 4, 4, append([]int32(nil), example4x4...))
	stream, err := Compress(g, 4)
	if err != nil {
		t.Fatal(err)
	}
	lossless, err := Compress(g, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(stream) > len(lossless) {
		t.Errorf("scale 4 stream (%d bytes) larger than lossless (%d bytes)", len(stream), len(lossless))
	}

	got, err := Decompress(stream)
	if err != nil {
		t.Fatal(err)
	}
	if got.Nx != 4 || got.Ny != 4 {
		t.Fatalf("decoded shape %dx%d, want 4x4", got.Nx, got.Ny)
	}
	if e := maxAbsError(got, g); e > 2 {
		t.Errorf("max error %d at scale 4, want <= 2", e)
	}
}

func TestRoundTripDimensions(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	dims := [][2]int{
		{1, 1}, {1, 7}, {7, 1}, {2, 3}, {3, 2}, {5, 5},
		{6, 9}, {9, 6}, {13, 17}, {32, 32}, {33, 65}, {100, 3},
	}
	for _, d := range dims {
		g := randomGrid(rng, d[0], d[1], -5000, 5000)
		stream, err := Compress(g, 1)
		if err != nil {
			t.Fatalf("%dx%d: Compress error: %v", d[0], d[1], err)
		}
		got, err := Decompress(stream)
		if err != nil {
			t.Fatalf("%dx%d: Decompress error: %v", d[0], d[1], err)
		}
		if !got.Equal(g) {
			t.Errorf("%dx%d: lossless round trip differs (max error %d)", d[0], d[1], maxAbsError(got, g))
		}
	}
}

func TestRoundTripFullRange(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	g := randomGrid(rng, 23, 19, math.MinInt32, math.MaxInt32)
	g.Data[0] = math.MinInt32
	g.Data[1] = math.MaxInt32

	stream, err := Compress(g, 1)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decompress(stream)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(g) {
		t.Error("full int32 range did not round trip")
	}
}

func TestLossyBound(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 200; trial++ {
		nx := 1 + rng.Intn(20)
		ny := 1 + rng.Intn(20)
		scale := []int{2, 3, 4, 9, 16, 100}[rng.Intn(6)]
		g := randomGrid(rng, nx, ny, -5000, 5000)

		stream, err := Compress(g, scale)
		if err != nil {
			t.Fatal(err)
		}
		got, err := Decompress(stream)
		if err != nil {
			t.Fatal(err)
		}
		if e := maxAbsError(got, g); e > int64(scale) {
			t.Fatalf("%dx%d scale %d: max error %d", nx, ny, scale, e)
		}
	}
}

func TestCompressionRatio(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	g := smoothGrid(rng, 128, 128)

	prev := math.Inf(1)
	for _, scale := range []int{1, 4, 16} {
		stream, err := Compress(g, scale)
		if err != nil {
			t.Fatal(err)
		}
		frac := float64(len(stream)) / float64(4*len(g.Data))
		if frac >= prev {
			t.Errorf("scale %d: size fraction %.3f did not shrink (previous %.3f)", scale, frac, prev)
		}
		prev = frac

		ratio, err := Ratio(stream)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(ratio*frac-1) > 1e-9 {
			t.Errorf("Ratio = %f, want %f", ratio, 1/frac)
		}
	}

	stream, _ := Compress(g, 1)
	if frac := float64(len(stream)) / float64(4*len(g.Data)); frac > 0.35 {
		t.Errorf("lossless smooth image compressed to %.3f of raw size", frac)
	}
}

func TestCompressDoesNotModifyInput(t *testing.T) {
	g := mustGrid(t, 4, 4, append([]int32(nil), example4x4...))
	if _, err := Compress(g, 3); err != nil {
		t.Fatal(err)
	}
	for i, v := range g.Data {
		if v != example4x4[i] {
			t.Fatalf("Compress modified sample %d", i)
		}
	}
}

func TestCompressInvalid(t *testing.T) {
	g := mustGrid(t, 2, 2, []int32{1, 2, 3, 4})

	scales := []int{0, -1}
	if strconv.IntSize == 64 {
		wide := int64(1) << 31
		scales = append(scales, int(wide), int(wide<<1+1))
	}
	for _, scale := range scales {
		if _, err := Compress(g, scale); !errors.Is(err, ErrInvalidScale) {
			t.Errorf("scale %d: got %v, want ErrInvalidScale", scale, err)
		}
	}

	bad := []*Grid{
		nil,
		{Nx: 0, Ny: 4, Data: nil},
		{Nx: 2, Ny: 2, Data: []int32{1, 2, 3}},
		{Nx: -1, Ny: -1, Data: []int32{1}},
		{Nx: MaxDimension + 1, Ny: 1, Data: nil},
	}
	for i, b := range bad {
		if _, err := Compress(b, 1); !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("grid %d: got %v, want ErrInvalidDimensions", i, err)
		}
	}
}

func TestDecompressBadMagic(t *testing.T) {
	g := mustGrid(t, 4, 4, append([]int32(nil), example4x4...))
	stream, err := Compress(g, 1)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		bad := append([]byte(nil), stream...)
		bad[i] ^= 0xFF
		if _, err := Decompress(bad); !errors.Is(err, ErrBadMagic) {
			t.Errorf("flipped byte %d: got %v, want ErrBadMagic", i, err)
		}
	}
}

func TestDecompressTruncated(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	g := randomGrid(rng, 9, 7, -300, 300)
	stream, err := Compress(g, 1)
	if err != nil {
		t.Fatal(err)
	}

	for n := 0; n < len(stream); n++ {
		if _, err := Decompress(stream[:n]); !errors.Is(err, ErrTruncatedStream) {
			t.Fatalf("prefix of %d/%d bytes: got %v, want ErrTruncatedStream", n, len(stream), err)
		}
	}
}

func TestDecompressTrailingBytes(t *testing.T) {
	g := mustGrid(t, 4, 4, append([]int32(nil), example4x4...))
	stream, err := Compress(g, 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decompress(append(stream, 0)); !errors.Is(err, ErrCorruptPayload) {
		t.Errorf("trailing byte: got %v, want ErrCorruptPayload", err)
	}
}

func TestDecompressCorruptHeader(t *testing.T) {
	g := mustGrid(t, 4, 4, append([]int32(nil), example4x4...))
	stream, err := Compress(g, 1)
	if err != nil {
		t.Fatal(err)
	}

	zeroNx := append([]byte(nil), stream...)
	copy(zeroNx[4:8], []byte{0, 0, 0, 0})
	if _, err := Decompress(zeroNx); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("nx=0: got %v, want ErrInvalidDimensions", err)
	}

	zeroScale := append([]byte(nil), stream...)
	copy(zeroScale[12:16], []byte{0, 0, 0, 0})
	if _, err := Decompress(zeroScale); !errors.Is(err, ErrCorruptPayload) {
		t.Errorf("scale=0: got %v, want ErrCorruptPayload", err)
	}

	planes := append([]byte(nil), stream...)
	planes[24] = 64
	if _, err := Decompress(planes); !errors.Is(err, ErrCorruptPayload) {
		t.Errorf("64 bit planes: got %v, want ErrCorruptPayload", err)
	}
}

func TestDecompressMaxSamples(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	g := randomGrid(rng, 16, 16, 0, 100)
	stream, err := Compress(g, 1)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := DecompressWithOptions(stream, &DecodeOptions{MaxSamples: 255}); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("MaxSamples 255: got %v, want ErrInvalidDimensions", err)
	}
	got, err := DecompressWithOptions(stream, &DecodeOptions{MaxSamples: 256})
	if err != nil {
		t.Fatalf("MaxSamples 256: %v", err)
	}
	if !got.Equal(g) {
		t.Error("round trip with explicit options differs")
	}
	if DefaultDecodeOptions().MaxSamples != DefaultMaxSamples {
		t.Error("DefaultDecodeOptions does not use DefaultMaxSamples")
	}

	// a hostile header declaring a huge grid fails before allocating
	huge := make([]byte, HeaderSize)
	copy(huge, stream[:4])
	copy(huge[4:], []byte{0x04, 0, 0, 0, 0x04, 0, 0, 0, 0, 0, 0, 1})
	if _, err := Decompress(huge); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("huge header: got %v, want ErrInvalidDimensions", err)
	}
}

// emptyStream returns a minimal stream for an nx×ny grid whose
// quadrants all declare zero bit planes.
func emptyStream(nx, ny int) []byte {
	w := xdr.NewBufferWriter(HeaderSize + payloadFixed)
	Header{Nx: nx, Ny: ny, Scale: 1}.write(w)
	w.WriteInt64(0)
	w.WriteBytes([]byte{0, 0, 0, 0})
	w.WriteUint32(0)
	return w.Bytes()
}

func TestDecompressEmptyStreamLimit(t *testing.T) {
	stream := emptyStream(8192, 8192)
	if len(stream) != 32 {
		t.Fatalf("len = %d, want 32", len(stream))
	}
	if _, err := Decompress(stream); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("8192x8192: got %v, want ErrInvalidDimensions", err)
	}
	if _, _, err := Decode(stream); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("Decode 8192x8192: got %v, want ErrInvalidDimensions", err)
	}

	g, err := Decompress(emptyStream(64, 48))
	if err != nil {
		t.Fatalf("64x48: %v", err)
	}
	for i, v := range g.Data {
		if v != 0 {
			t.Fatalf("sample %d = %d, want 0", i, v)
		}
	}
}

func TestDecompressOutOfRangeCoefficient(t *testing.T) {
	g := mustGrid(t, 2, 2, []int32{1, 2, 3, 4})
	stream, err := Compress(g, 1)
	if err != nil {
		t.Fatal(err)
	}
	bad := append([]byte(nil), stream...)
	// dc = 2^62
	copy(bad[16:24], []byte{0x40, 0, 0, 0, 0, 0, 0, 0})
	if _, err := Decompress(bad); !errors.Is(err, ErrCorruptPayload) {
		t.Errorf("huge dc: got %v, want ErrCorruptPayload", err)
	}
}

type failingWriter struct {
	err error
	n   int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	return w.n, nil
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestCompressToDecompressFrom(t *testing.T) {
	g := mustGrid(t, 4, 4, append([]int32(nil), example4x4...))

	var buf bytes.Buffer
	if err := CompressTo(&buf, g, 1); err != nil {
		t.Fatalf("CompressTo error: %v", err)
	}
	got, err := DecompressFrom(&buf)
	if err != nil {
		t.Fatalf("DecompressFrom error: %v", err)
	}
	if !got.Equal(g) {
		t.Error("stream round trip differs")
	}
}

func TestCompressToErrors(t *testing.T) {
	g := mustGrid(t, 4, 4, append([]int32(nil), example4x4...))

	sentinel := errors.New("pipe closed")
	err := CompressTo(&failingWriter{err: sentinel}, g, 1)
	if !errors.Is(err, ErrIO) || !errors.Is(err, sentinel) {
		t.Errorf("failing writer: got %v, want ErrIO wrapping the cause", err)
	}

	err = CompressTo(&failingWriter{n: 3}, g, 1)
	if !errors.Is(err, ErrIO) || !errors.Is(err, io.ErrShortWrite) {
		t.Errorf("short writer: got %v, want ErrIO wrapping io.ErrShortWrite", err)
	}

	var buf bytes.Buffer
	if err := CompressTo(&buf, g, 0); !errors.Is(err, ErrInvalidScale) {
		t.Errorf("scale 0: got %v, want ErrInvalidScale", err)
	}
	if buf.Len() != 0 {
		t.Errorf("failed compression wrote %d bytes", buf.Len())
	}
}

func TestDecompressFromError(t *testing.T) {
	if _, err := DecompressFrom(failingReader{}); !errors.Is(err, ErrIO) {
		t.Errorf("failing reader: got %v, want ErrIO", err)
	}
}

func TestRatioBadStream(t *testing.T) {
	if _, err := Ratio([]byte{1, 2, 3}); !errors.Is(err, ErrTruncatedStream) {
		t.Errorf("Ratio on 3 bytes: got %v, want ErrTruncatedStream", err)
	}
}
