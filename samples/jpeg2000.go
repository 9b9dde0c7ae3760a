package samples

import (
	"fmt"
	"io"

	"github.com/mrjoshuak/go-hcompress/hcompress"
	"github.com/mrjoshuak/go-jpeg2000"
)

// ReadJPEG2000 decodes a JP2 or J2K image into a grid.
func ReadJPEG2000(r io.Reader) (*hcompress.Grid, error) {
	img, err := jpeg2000.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("samples: jpeg2000: %w", err)
	}
	return FromImage(img)
}

// WriteJPEG2000 writes g as a lossless 16-bit grayscale JPEG 2000
// image. format selects the JP2 file wrapper or a bare J2K codestream;
// clamp is passed to ToImage.
func WriteJPEG2000(w io.Writer, g *hcompress.Grid, format jpeg2000.Format, clamp bool) error {
	img, err := ToImage(g, clamp)
	if err != nil {
		return err
	}

	opts := jpeg2000.DefaultOptions()
	opts.Format = format
	opts.Lossless = true
	opts.ColorSpace = jpeg2000.ColorSpaceGray
	if err := jpeg2000.Encode(w, img, opts); err != nil {
		return fmt.Errorf("samples: jpeg2000: %w", err)
	}
	return nil
}
