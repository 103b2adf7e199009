// Package pixel defines the flat RGBA8 buffer shared by the warp, palette and
// mask engines.
//
// A Buffer stores non-premultiplied samples in R, G, B, A order, row-major,
// with (0,0) at the top-left corner. The invariant len(Pix) == Width*Height*4
// holds for every Buffer produced by this package.
//
// Engines treat their input buffers as read-only and return freshly allocated
// results, so a Buffer can be shared between goroutines as long as nobody
// writes to it.
package pixel

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Channels is the number of samples per pixel.
const Channels = 4

// Point is a continuous coordinate in pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Buffer is a width×height RGBA8 image stored as a flat slice.
type Buffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// New allocates a fully transparent buffer.
func New(width, height int) *Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Buffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*Channels),
	}
}

// FromPix wraps an existing sample slice after checking its length.
// The slice is not copied.
func FromPix(width, height int, pix []uint8) (*Buffer, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("invalid buffer dimensions %dx%d", width, height)
	}
	if len(pix) != width*height*Channels {
		return nil, fmt.Errorf("buffer of %dx%d needs %d samples, got %d",
			width, height, width*height*Channels, len(pix))
	}
	return &Buffer{Width: width, Height: height, Pix: pix}, nil
}

// Valid reports whether the buffer satisfies the length invariant.
func (b *Buffer) Valid() bool {
	return b != nil && b.Width >= 0 && b.Height >= 0 && len(b.Pix) == b.Width*b.Height*Channels
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	pix := make([]uint8, len(b.Pix))
	copy(pix, b.Pix)
	return &Buffer{Width: b.Width, Height: b.Height, Pix: pix}
}

// Offset returns the index of the red sample of pixel (x, y).
func (b *Buffer) Offset(x, y int) int {
	return (y*b.Width + x) * Channels
}

// In reports whether (x, y) addresses a pixel inside the buffer.
func (b *Buffer) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width && y < b.Height
}

// RGBAAt returns the four channels of pixel (x, y).
// The caller must ensure the coordinate is in bounds.
func (b *Buffer) RGBAAt(x, y int) (r, g, bl, a uint8) {
	i := b.Offset(x, y)
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]
}

// SetRGBA writes the four channels of pixel (x, y).
// The caller must ensure the coordinate is in bounds.
func (b *Buffer) SetRGBA(x, y int, r, g, bl, a uint8) {
	i := b.Offset(x, y)
	b.Pix[i] = r
	b.Pix[i+1] = g
	b.Pix[i+2] = bl
	b.Pix[i+3] = a
}

// CopyPixel copies one pixel from src at (sx, sy) to b at (dx, dy).
func (b *Buffer) CopyPixel(dx, dy int, src *Buffer, sx, sy int) {
	di := b.Offset(dx, dy)
	si := src.Offset(sx, sy)
	copy(b.Pix[di:di+Channels], src.Pix[si:si+Channels])
}

// FromImage converts any image.Image into a Buffer.
//
// The image is first normalised to non-premultiplied RGBA with the origin
// moved to (0,0), so sub-images and paletted or YCbCr sources are handled
// the same way as plain NRGBA images.
func FromImage(img image.Image) *Buffer {
	nrgba := imaging.Clone(img)
	w, h := nrgba.Rect.Dx(), nrgba.Rect.Dy()
	buf := New(w, h)
	rowLen := w * Channels
	for y := 0; y < h; y++ {
		src := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+rowLen]
		copy(buf.Pix[y*rowLen:(y+1)*rowLen], src)
	}
	return buf
}

// Image exposes the buffer as an *image.NRGBA sharing the same samples.
func (b *Buffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Width * Channels,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}
