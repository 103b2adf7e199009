package palette

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Format selects how Swatch.Color is rendered.
type Format string

const (
	FormatHex Format = "hex" // #rrggbb, lowercase
	FormatRGB Format = "rgb" // rgb(r,g,b)
	FormatHSL Format = "hsl" // hsl(h, s%, l%)
)

func (f Format) valid() bool {
	switch f {
	case FormatHex, FormatRGB, FormatHSL:
		return true
	}
	return false
}

// HSLColor is a colour in HSL space with integer components.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

func (s Sample) toColorful() colorful.Color {
	return colorful.Color{
		R: float64(s.R) / 255,
		G: float64(s.G) / 255,
		B: float64(s.B) / 255,
	}
}

// Hex returns the sample as "#rrggbb".
func (s Sample) Hex() string {
	return s.toColorful().Hex()
}

// HSL converts the sample to HSL, rounding each component to the nearest
// integer.
func (s Sample) HSL() HSLColor {
	h, sat, l := s.toColorful().Hsl()
	return HSLColor{
		H: int(math.Round(h)),
		S: int(math.Round(sat * 100)),
		L: int(math.Round(l * 100)),
	}
}

// FormatColor renders s in the requested format.
func FormatColor(s Sample, f Format) (string, error) {
	switch f {
	case FormatHex:
		return s.Hex(), nil
	case FormatRGB:
		return fmt.Sprintf("rgb(%d,%d,%d)", s.R, s.G, s.B), nil
	case FormatHSL:
		hsl := s.HSL()
		return fmt.Sprintf("hsl(%d, %d%%, %d%%)", hsl.H, hsl.S, hsl.L), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}
