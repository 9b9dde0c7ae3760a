package main

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mrjoshuak/go-hcompress/hcompress"
	"github.com/mrjoshuak/go-hcompress/samples"
)

func writeStream(t *testing.T, dir string, data []int32, scale int) string {
	t.Helper()
	g, err := hcompress.GridFrom(2, 2, data)
	if err != nil {
		t.Fatal(err)
	}
	stream, err := hcompress.Compress(g, scale)
	if err != nil {
		t.Fatal(err)
	}
	name := filepath.Join(dir, "in.H")
	if err := os.WriteFile(name, stream, 0o644); err != nil {
		t.Fatal(err)
	}
	return name
}

func TestRunRaw(t *testing.T) {
	dir := t.TempDir()
	in := writeStream(t, dir, []int32{1, 2, 300, -4}, 1)
	opts := options{
		format: "raw",
		raw:    samples.RawFormat{Type: samples.Int16, ByteOrder: binary.BigEndian},
	}
	if err := run(context.Background(), []string{in}, opts); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "in"))
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0, 1, 0, 2, 0x01, 0x2C, 0xFF, 0xFC}
	if string(got) != string(want) {
		t.Errorf("output = % x, want % x", got, want)
	}
}

func TestRunRangeErrorRemovesOutput(t *testing.T) {
	tests := []struct {
		name   string
		format string
		typ    samples.SampleType
		data   []int32
	}{
		{"uint8", "raw", samples.Uint8, []int32{1, 2, 300, 4}},
		{"png", "png", samples.Int16, []int32{1, 2, -3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			in := writeStream(t, dir, tt.data, 1)
			out := filepath.Join(dir, "out")
			opts := options{
				format: tt.format,
				raw:    samples.RawFormat{Type: tt.typ, ByteOrder: binary.BigEndian},
				output: out,
			}
			err := run(context.Background(), []string{in}, opts)
			if !errors.Is(err, samples.ErrValueRange) {
				t.Fatalf("run: got %v, want ErrValueRange", err)
			}
			if _, err := os.Stat(out); !os.IsNotExist(err) {
				t.Errorf("output file left behind: %v", err)
			}
		})
	}
}

func TestRunLossyClamps(t *testing.T) {
	dir := t.TempDir()
	in := writeStream(t, dir, []int32{250, 255, 255, 255}, 8)
	out := filepath.Join(dir, "out")
	opts := options{
		format: "raw",
		raw:    samples.RawFormat{Type: samples.Uint8},
		output: out,
	}
	if err := run(context.Background(), []string{in}, opts); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Errorf("output is %d bytes, want 4", len(got))
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		in     string
		format string
		codec  samples.Codec
		want   string
	}{
		{"a.H", "raw", samples.CodecNone, "a"},
		{"a.h", "png", samples.CodecNone, "a.png"},
		{"a.dat", "raw", samples.CodecNone, "a.dat.out"},
		{"a.H", "j2k", samples.CodecGzip, "a.j2k.gz"},
		{"a.H", "raw", samples.CodecZstd, "a.zst"},
	}
	for _, tt := range tests {
		got := outputName(tt.in, options{format: tt.format, codec: tt.codec})
		if got != tt.want {
			t.Errorf("outputName(%q, %s) = %q, want %q", tt.in, tt.format, got, tt.want)
		}
	}
}
