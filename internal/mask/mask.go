// Package mask modulates the alpha channel of an image with a second image.
package mask

import (
	"errors"
	"fmt"
	"math"

	"github.com/anthonynsimon/bild/parallel"

	"github.com/ironsheep/pixelwarp-mcp/internal/pixel"
)

var (
	// ErrSizeMismatch is returned when the mask and primary differ in size.
	// Resizing the mask is the caller's job.
	ErrSizeMismatch = errors.New("mask size does not match image")

	// ErrUnknownMode is returned by ParseMode for unsupported names.
	ErrUnknownMode = errors.New("unknown mask mode")
)

// Mode selects how a mask pixel turns into an alpha factor.
type Mode int

const (
	// ModeAlpha uses the mask's alpha channel: a/255.
	ModeAlpha Mode = iota
	// ModeLuminance uses the mask's luma: (0.299R + 0.587G + 0.114B)/255.
	ModeLuminance
	// ModeInverse uses the complement of the mask's alpha: 1 - a/255.
	ModeInverse
)

// String returns the name accepted by ParseMode.
func (m Mode) String() string {
	switch m {
	case ModeAlpha:
		return "alpha"
	case ModeLuminance:
		return "luminance"
	case ModeInverse:
		return "inverse"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps "alpha", "luminance" or "inverse" to a Mode.
// The empty string selects ModeAlpha.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "alpha":
		return ModeAlpha, nil
	case "luminance":
		return ModeLuminance, nil
	case "inverse":
		return ModeInverse, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// factor returns the alpha multiplier for one mask pixel.
func (m Mode) factor(r, g, b, a uint8) float64 {
	switch m {
	case ModeLuminance:
		return (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255
	case ModeInverse:
		return 1 - float64(a)/255
	default:
		return float64(a) / 255
	}
}

// Apply returns a copy of primary whose alpha channel is multiplied, pixel by
// pixel, by the factor mode derives from mask. The product is rounded to the
// nearest integer. RGB channels are copied unchanged.
//
// mask must already have primary's dimensions; otherwise ErrSizeMismatch is
// returned.
func Apply(primary, mask *pixel.Buffer, mode Mode) (*pixel.Buffer, error) {
	if primary.Width != mask.Width || primary.Height != mask.Height {
		return nil, fmt.Errorf("%w: image %dx%d, mask %dx%d", ErrSizeMismatch,
			primary.Width, primary.Height, mask.Width, mask.Height)
	}
	switch mode {
	case ModeAlpha, ModeLuminance, ModeInverse:
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownMode, mode)
	}

	out := primary.Clone()
	rowLen := primary.Width * pixel.Channels
	parallel.Line(primary.Height, func(start, end int) {
		for i := start * rowLen; i < end*rowLen; i += pixel.Channels {
			f := mode.factor(mask.Pix[i], mask.Pix[i+1], mask.Pix[i+2], mask.Pix[i+3])
			a := math.Round(float64(out.Pix[i+3]) * f)
			out.Pix[i+3] = uint8(math.Max(0, math.Min(255, a)))
		}
	})
	return out, nil
}
