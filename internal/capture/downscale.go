package capture

import (
	"image"
	"math"

	"github.com/cockroachdb/errors"
	"gocv.io/x/gocv"
)

// Downscaler resizes frames to fit a fixed working resolution while
// preserving their aspect ratio.
type Downscaler struct {
	Width  int
	Height int
}

// NewDownscaler creates a Downscaler for the given working resolution.
// Non-positive dimensions fall back to the defaults.
func NewDownscaler(width, height int) Downscaler {
	if width <= 0 {
		width = DefaultWorkWidth
	}
	if height <= 0 {
		height = DefaultWorkHeight
	}
	return Downscaler{Width: width, Height: height}
}

// Factor returns the uniform scale applied to a cols x rows frame.
func (d Downscaler) Factor(cols, rows int) float64 {
	if cols <= 0 || rows <= 0 {
		return 0
	}
	return math.Min(float64(d.Width)/float64(cols), float64(d.Height)/float64(rows))
}

// Size returns the working size of a cols x rows frame.
func (d Downscaler) Size(cols, rows int) image.Point {
	f := d.Factor(cols, rows)
	return image.Pt(
		max(1, int(math.Round(float64(cols)*f))),
		max(1, int(math.Round(float64(rows)*f))),
	)
}

// Scale writes the working-resolution copy of src into dst.
func (d Downscaler) Scale(src gocv.Mat, dst *gocv.Mat) error {
	if src.Empty() {
		return ErrEmptyFrame
	}

	size := d.Size(src.Cols(), src.Rows())
	if size.X == src.Cols() && size.Y == src.Rows() {
		src.CopyTo(dst)
		return nil
	}

	gocv.Resize(src, dst, size, 0, 0, gocv.InterpolationLinear)
	if dst.Empty() {
		return errors.Wrapf(ErrEmptyFrame, "resize to %dx%d", size.X, size.Y)
	}
	return nil
}
