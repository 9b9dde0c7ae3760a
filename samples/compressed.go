package samples

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Codec identifies the general-purpose compression wrapped around a
// sample file. It is independent of the H-compress format.
type Codec int

const (
	CodecNone Codec = iota
	CodecGzip
	CodecZstd
)

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecGzip:
		return "gzip"
	case CodecZstd:
		return "zstd"
	}
	return fmt.Sprintf("Codec(%d)", int(c))
}

// Magic prefixes used to sniff wrapped input
var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// CodecForPath picks a codec from the file extension.
func CodecForPath(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return CodecGzip
	case ".zst", ".zstd":
		return CodecZstd
	}
	return CodecNone
}

// sniff identifies the codec of a stream from its first bytes.
func sniff(head []byte) Codec {
	switch {
	case bytes.HasPrefix(head, zstdMagic):
		return CodecZstd
	case bytes.HasPrefix(head, gzipMagic):
		return CodecGzip
	}
	return CodecNone
}

// gzipWriterPool reuses gzip writers across files.
var gzipWriterPool = sync.Pool{
	New: func() any {
		w, _ := gzip.NewWriterLevel(nil, gzip.BestCompression)
		return w
	},
}

// NewReader returns a reader that transparently removes gzip or zstd
// compression from r, detected by magic number, together with the
// detected codec. Uncompressed input passes through unchanged.
func NewReader(r io.Reader) (io.ReadCloser, Codec, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(zstdMagic))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, CodecNone, err
	}

	codec := sniff(head)
	switch codec {
	case CodecGzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, codec, fmt.Errorf("samples: gzip: %w", err)
		}
		return zr, codec, nil
	case CodecZstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, codec, fmt.Errorf("samples: zstd: %w", err)
		}
		return zr.IOReadCloser(), codec, nil
	}
	return io.NopCloser(br), codec, nil
}

// NewWriter wraps w so that everything written is compressed with
// codec. Close flushes the codec but does not close w.
func NewWriter(w io.Writer, codec Codec) (io.WriteCloser, error) {
	switch codec {
	case CodecNone:
		return nopWriteCloser{w}, nil
	case CodecGzip:
		zw := gzipWriterPool.Get().(*gzip.Writer)
		zw.Reset(w)
		return &pooledGzipWriter{Writer: zw}, nil
	case CodecZstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			return nil, fmt.Errorf("samples: zstd: %w", err)
		}
		return zw, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownCodec, codec)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// pooledGzipWriter returns its writer to the pool on Close.
type pooledGzipWriter struct {
	*gzip.Writer
}

func (p *pooledGzipWriter) Close() error {
	if p.Writer == nil {
		return nil
	}
	err := p.Writer.Close()
	gzipWriterPool.Put(p.Writer)
	p.Writer = nil
	return err
}

// fileReader closes both the decompressor and the file.
type fileReader struct {
	io.ReadCloser
	f *os.File
}

func (r *fileReader) Close() error {
	err := r.ReadCloser.Close()
	if ferr := r.f.Close(); err == nil {
		err = ferr
	}
	return err
}

// Open opens a sample file, removing gzip or zstd compression if present.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rc, _, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &fileReader{ReadCloser: rc, f: f}, nil
}

// fileWriter closes both the compressor and the file.
type fileWriter struct {
	io.WriteCloser
	f *os.File
}

func (w *fileWriter) Close() error {
	err := w.WriteCloser.Close()
	if ferr := w.f.Close(); err == nil {
		err = ferr
	}
	return err
}

// Create creates path and returns a writer that compresses with codec.
// The returned writer must be closed to flush the codec and the file.
func Create(path string, codec Codec) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	wc, err := NewWriter(f, codec)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &fileWriter{WriteCloser: wc, f: f}, nil
}
