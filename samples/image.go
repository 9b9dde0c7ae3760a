package samples

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/mrjoshuak/go-hcompress/hcompress"
)

// FromImage converts an image to a grid. Rows become the slow axis:
// Nx is the image height and Ny its width. Gray and Gray16 images keep
// their exact values; anything else is reduced to 16-bit luma.
func FromImage(img image.Image) (*hcompress.Grid, error) {
	b := img.Bounds()
	g, err := hcompress.NewGrid(b.Dy(), b.Dx())
	if err != nil {
		return nil, err
	}

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				g.Set(y, x, int32(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y))
			}
		}
	case *image.Gray16:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				g.Set(y, x, int32(src.Gray16At(b.Min.X+x, b.Min.Y+y).Y))
			}
		}
	default:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				c := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
				g.Set(y, x, int32(c.Y))
			}
		}
	}
	return g, nil
}

// ToImage converts a grid to a 16-bit grayscale image, the inverse of
// FromImage. A sample outside [0, 65535] is ErrValueRange unless clamp
// is set, in which case it saturates.
func ToImage(g *hcompress.Grid, clamp bool) (*image.Gray16, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	img := image.NewGray16(image.Rect(0, 0, g.Ny, g.Nx))
	for y := 0; y < g.Nx; y++ {
		for x := 0; x < g.Ny; x++ {
			v := g.At(y, x)
			if v < 0 || v > 0xFFFF {
				if !clamp {
					return nil, fmt.Errorf("%w: %d at (%d, %d) as 16-bit gray", ErrValueRange, v, y, x)
				}
				v = min(max(v, 0), 0xFFFF)
			}
			img.SetGray16(x, y, color.Gray16{Y: uint16(v)})
		}
	}
	return img, nil
}

// ReadImage decodes any registered image format into a grid and reports
// the format name. PNG, JP2 and J2K are always registered.
func ReadImage(r io.Reader) (*hcompress.Grid, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("samples: decode image: %w", err)
	}
	g, err := FromImage(img)
	if err != nil {
		return nil, format, err
	}
	return g, format, nil
}

// WritePNG writes g as a 16-bit grayscale PNG. clamp is passed to
// ToImage.
func WritePNG(w io.Writer, g *hcompress.Grid, clamp bool) error {
	img, err := ToImage(g, clamp)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}
