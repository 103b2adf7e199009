package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/pixelwarp-mcp/internal/pixel"
)

// Region is a rectangle in pixel coordinates. (X1,Y1) is inclusive and
// (X2,Y2) exclusive.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Crop returns a copy of the part of buf inside r.
func Crop(buf *pixel.Buffer, r Region) (*pixel.Buffer, error) {
	if r.X1 < 0 || r.Y1 < 0 || r.X2 > buf.Width || r.Y2 > buf.Height {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (0,0)-(%d,%d)",
			r.X1, r.Y1, r.X2, r.Y2, buf.Width, buf.Height)
	}
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}
	cropped := imaging.Crop(buf.Image(), image.Rect(r.X1, r.Y1, r.X2, r.Y2))
	return pixel.FromImage(cropped), nil
}

// Resize scales buf to exactly width×height. Masks are resized with a linear
// filter; a buffer that already has the requested size is returned as is.
func Resize(buf *pixel.Buffer, width, height int) *pixel.Buffer {
	if buf.Width == width && buf.Height == height {
		return buf
	}
	if buf.Width == 0 || buf.Height == 0 || width <= 0 || height <= 0 {
		return pixel.New(width, height)
	}
	return pixel.FromImage(imaging.Resize(buf.Image(), width, height, imaging.Linear))
}

// Downsample shrinks buf so that neither side exceeds maxSize, keeping the
// aspect ratio. Buffers already within bounds, and non-positive maxSize, are
// returned unchanged.
func Downsample(buf *pixel.Buffer, maxSize int) *pixel.Buffer {
	if maxSize <= 0 || (buf.Width <= maxSize && buf.Height <= maxSize) {
		return buf
	}
	return pixel.FromImage(imaging.Fit(buf.Image(), maxSize, maxSize, imaging.Box))
}
