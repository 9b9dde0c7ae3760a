// hdecomp decompresses H-compress streams.
//
// Usage:
//
//	hdecomp [options] infile.H [infile.H ...]
//
// Options:
//
//	-f <format>  output format: raw, png, jp2, j2k (default raw)
//	-type <t>    raw output: uint8, int16, uint16 or int32 (default int16)
//	-le          raw output: little-endian samples
//	-z <codec>   wrap output in gzip or zstd
//	-o <file>    output file (single input only)
//	-j <n>       number of streams decoded in parallel
//	-v           verbose output
package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/mrjoshuak/go-hcompress/hcompress"
	"github.com/mrjoshuak/go-hcompress/samples"
	"github.com/mrjoshuak/go-jpeg2000"
)

const version = "1.0.0"

type options struct {
	format  string
	raw     samples.RawFormat
	codec   samples.Codec
	output  string
	workers int
	verbose bool
}

func main() {
	formatStr := flag.String("f", "raw", "output format (raw, png, jp2, j2k)")
	typeStr := flag.String("type", "int16", "raw output: sample type (uint8, int16, uint16, int32)")
	little := flag.Bool("le", false, "raw output: little-endian samples")
	codecStr := flag.String("z", "", "wrap output in gzip or zstd")
	output := flag.String("o", "", "output file (single input only)")
	workers := flag.Int("j", 0, "number of streams decoded in parallel (0 = all CPUs)")
	verbose := flag.Bool("v", false, "verbose output")
	showVersion := flag.Bool("version", false, "show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: hdecomp [options] infile.H [infile.H ...]\n\n")
		fmt.Fprintf(os.Stderr, "Decompress H-compress streams to raw samples or images.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("hdecomp version %s\n", version)
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
		format:  *formatStr,
		raw:     samples.RawFormat{Type: typ, ByteOrder: binary.BigEndian},
		output:  *output,
		workers: *workers,
		verbose: *verbose,
	}
	if *little {
		opts.raw.ByteOrder = binary.LittleEndian
	}
	switch *formatStr {
	case "raw", "png", "jp2", "j2k":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid output format: %s\n", *formatStr)
		fmt.Fprintf(os.Stderr, "Valid options are: raw, png, jp2, j2k\n")
		os.Exit(1)
	}
	switch *codecStr {
	case "":
		opts.codec = samples.CodecNone
	case "gzip", "gz":
		opts.codec = samples.CodecGzip
	case "zstd", "zst":
		opts.codec = samples.CodecZstd
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid codec: %s\n", *codecStr)
		fmt.Fprintf(os.Stderr, "Valid options are: gzip, zstd\n")
		os.Exit(1)
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
	streams := make([][]byte, len(files))
	for i, name := range files {
		data, err := os.ReadFile(name)
		if err != nil {
			return err
		}
		streams[i] = data
	}

	grids, err := hcompress.DecompressBatch(ctx, streams,
		hcompress.ParallelConfig{NumWorkers: opts.workers})
	if err != nil {
		return err
	}

	for i, name := range files {
		out := opts.output
		if out == "" {
			out = outputName(name, opts)
		}
		h, _ := hcompress.ReadHeader(streams[i])
		if err := writeOutput(out, grids[i], h, opts); err != nil {
			return fmt.Errorf("%s: %w", out, err)
		}
		if opts.verbose {
			fmt.Printf("Wrote %s: %s\n", out, h)
		}
	}
	return nil
}

func writeOutput(name string, g *hcompress.Grid, h hcompress.Header, opts options) (err error) {
	w, err := samples.Create(name, opts.codec)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(name)
		}
	}()
	return encode(w, g, h, opts)
}

// encode saturates out-of-range samples only for lossy streams, whose
// reconstruction may overshoot the original range.
func encode(w io.Writer, g *hcompress.Grid, h hcompress.Header, opts options) error {
	clamp := !h.Lossless()
	switch opts.format {
	case "png":
		return samples.WritePNG(w, g, clamp)
	case "jp2":
		return samples.WriteJPEG2000(w, g, jpeg2000.FormatJP2, clamp)
	case "j2k":
		return samples.WriteJPEG2000(w, g, jpeg2000.FormatJ2K, clamp)
	}
	raw := opts.raw
	raw.Clamp = clamp
	return samples.WriteRaw(w, g, raw)
}

func outputName(name string, opts options) string {
	base := name
	if ext := filepath.Ext(name); strings.EqualFold(ext, ".h") {
		base = strings.TrimSuffix(name, ext)
	} else {
		base += ".out"
	}
	if opts.format != "raw" {
		base += "." + opts.format
	}
	switch opts.codec {
	case samples.CodecGzip:
		base += ".gz"
	case samples.CodecZstd:
		base += ".zst"
	}
	return base
}
