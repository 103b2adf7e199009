package warp

import (
	"math"

	"github.com/ironsheep/pixelwarp-mcp/internal/pixel"
)

// Bulge applies a radial bulge (intensity > 0) or pinch (intensity < 0)
// centred on center.
//
// Every source pixel closer than radius to the centre is pushed along its
// ray from the centre:
//
//	r           = distance / radius          (0 <= r < 1)
//	amount      = intensity * (1 - r²)
//	newDistance = distance * (1 + amount)
//
// and written to the nearest integer position at newDistance. Pixels
// outside the circle, and positions no source pixel reaches, keep the value
// they have in the source.
//
// intensity is clamped to [-1, 1]. A non-positive radius or zero intensity
// returns an unchanged copy.
func Bulge(src *pixel.Buffer, center pixel.Point, radius, intensity float64) *pixel.Buffer {
	dst := src.Clone()
	intensity = math.Max(-1, math.Min(1, intensity))
	if radius <= 0 || intensity == 0 {
		return dst
	}

	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			dx := float64(x) - center.X
			dy := float64(y) - center.Y
			distance := math.Hypot(dx, dy)
			if distance >= radius {
				continue
			}

			r := distance / radius
			amount := intensity * (1 - r*r)
			nx := int(math.Round(center.X + dx*(1+amount)))
			ny := int(math.Round(center.Y + dy*(1+amount)))
			if dst.In(nx, ny) {
				dst.CopyPixel(nx, ny, src, x, y)
			}
		}
	}
	return dst
}
