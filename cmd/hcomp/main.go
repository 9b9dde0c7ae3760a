// hcomp compresses sample files to H-compress streams.
//
// Input may be a raw sample file, a PNG image, or a JPEG 2000 image
// (.jp2, .j2k), optionally wrapped in gzip or zstd. Raw input needs its
// dimensions and sample type on the command line.
//
// Usage:
//
//	hcomp [options] infile [infile ...]
//
// Options:
//
//	-s <scale>   quantization scale factor, 1 = lossless (default 1)
//	-nx <n>      raw input: number of rows
//	-ny <n>      raw input: number of samples per row
//	-type <t>    raw input: uint8, int16, uint16 or int32 (default int16)
//	-le          raw input: little-endian samples
//	-skip <n>    raw input: header bytes to skip
//	-o <file>    output file (single input only; default infile.H)
//	-j <n>       number of files compressed in parallel
//	-v           verbose output
package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/mrjoshuak/go-hcompress/hcompress"
	"github.com/mrjoshuak/go-hcompress/samples"
)

const version = "1.0.0"

type options struct {
	scale   int
	nx, ny  int
	format  samples.RawFormat
	output  string
	workers int
	verbose bool
}

func main() {
	scale := flag.Int("s", 1, "quantization scale factor, 1 = lossless")
	nx := flag.Int("nx", 0, "raw input: number of rows")
	ny := flag.Int("ny", 0, "raw input: number of samples per row")
	typeStr := flag.String("type", "int16", "raw input: sample type (uint8, int16, uint16, int32)")
	little := flag.Bool("le", false, "raw input: little-endian samples")
	skip := flag.Int("skip", 0, "raw input: header bytes to skip")
	output := flag.String("o", "", "output file (single input only)")
	workers := flag.Int("j", 0, "number of files compressed in parallel (0 = all CPUs)")
	verbose := flag.Bool("v", false, "verbose output")
	showVersion := flag.Bool("version", false, "show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: hcomp [options] infile [infile ...]\n\n")
		fmt.Fprintf(os.Stderr, "Compress sample files to H-compress streams (infile.H).\n\n")
		fmt.Fprintf(os.Stderr, "Input formats:\n")
		fmt.Fprintf(os.Stderr, "  raw samples (needs -nx and -ny), .png, .jp2, .j2k\n")
		fmt.Fprintf(os.Stderr, "  any of the above wrapped in gzip (.gz) or zstd (.zst)\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("hcomp version %s\n", version)
		os.Exit(0)
	}

	files := flag.Args()
	if len(files) == 0 {
		flag.Usage()
		os.Exit(1)
	}
	if *output != "" && len(files) > 1 {
		fmt.Fprintf(os.Stderr, "Error: -o needs exactly one input file\n")
		os.Exit(1)
	}

	typ, err := samples.ParseSampleType(*typeStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	opts := options{
		scale:   *scale,
		nx:      *nx,
		ny:      *ny,
		format:  samples.RawFormat{Type: typ, ByteOrder: binary.BigEndian, HeaderBytes: *skip},
		output:  *output,
		workers: *workers,
		verbose: *verbose,
	}
	if *little {
		opts.format.ByteOrder = binary.LittleEndian
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, files, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, files []string, opts options) error {
	grids := make([]*hcompress.Grid, len(files))
	for i, name := range files {
		g, err := readInput(name, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if opts.verbose {
			fmt.Printf("Read %s: %dx%d samples\n", name, g.Nx, g.Ny)
		}
		grids[i] = g
	}

	streams, err := hcompress.CompressBatch(ctx, grids, opts.scale,
		hcompress.ParallelConfig{NumWorkers: opts.workers})
	if err != nil {
		return err
	}

	for i, name := range files {
		out := opts.output
		if out == "" {
			out = outputName(name)
		}
		if err := os.WriteFile(out, streams[i], 0o644); err != nil {
			return err
		}
		if opts.verbose {
			ratio, _ := hcompress.Ratio(streams[i])
			fmt.Printf("Wrote %s: %d bytes, ratio %.2f\n", out, len(streams[i]), ratio)
		}
	}
	return nil
}

// readInput reads one sample grid, picking the reader from the file
// name with any compression suffix removed.
func readInput(name string, opts options) (*hcompress.Grid, error) {
	r, err := samples.Open(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	switch strings.ToLower(filepath.Ext(trimCodecExt(name))) {
	case ".png", ".jp2", ".j2k", ".j2c":
		g, _, err := samples.ReadImage(r)
		return g, err
	}
	if opts.nx <= 0 || opts.ny <= 0 {
		return nil, fmt.Errorf("raw input needs -nx and -ny")
	}
	return samples.ReadRaw(r, opts.nx, opts.ny, opts.format)
}

// trimCodecExt removes a trailing .gz or .zst suffix.
func trimCodecExt(name string) string {
	if samples.CodecForPath(name) != samples.CodecNone {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}

func outputName(name string) string {
	return trimCodecExt(name) + ".H"
}
