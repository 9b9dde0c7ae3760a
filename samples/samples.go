// Package samples reads and writes the sample grids that hcompress
// encodes: raw binary sample files, PNG and JPEG 2000 images, each
// optionally wrapped in gzip or zstd.
package samples

import "errors"

// Sample source and sink errors
var (
	ErrUnsupportedType = errors.New("samples: unsupported sample type")
	ErrShortInput      = errors.New("samples: input shorter than declared grid")
	ErrValueRange      = errors.New("samples: value out of range for output type")
	ErrUnknownCodec    = errors.New("samples: unknown compression codec")
)
