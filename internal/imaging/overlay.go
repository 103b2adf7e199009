package imaging

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ironsheep/pixelwarp-mcp/internal/pixel"
)

// DefaultOverlayColor is used when an overlay colour is empty or malformed.
const DefaultOverlayColor = "#ff0000"

// DrawControlGrid returns a copy of buf with a control grid drawn on top:
// each point is marked with a 3×3 square and joined to its right and lower
// neighbours by a one-pixel line. With labels set, every point is tagged
// with its "col,row" index in a small bitmap font.
//
// points is indexed [row][col], the layout warp.ControlGrid uses. Rows may
// differ in length. Parts of the drawing that fall outside the buffer are
// clipped.
func DrawControlGrid(buf *pixel.Buffer, points [][]pixel.Point, hex string, labels bool) *pixel.Buffer {
	c, err := parseHexColor(hex)
	if err != nil {
		c, _ = parseHexColor(DefaultOverlayColor)
	}

	out := buf.Clone()
	for j, row := range points {
		for i, p := range row {
			if i+1 < len(row) {
				drawLine(out, p, row[i+1], c)
			}
			if j+1 < len(points) && i < len(points[j+1]) {
				drawLine(out, p, points[j+1][i], c)
			}
		}
	}
	for _, row := range points {
		for _, p := range row {
			x, y := int(math.Round(p.X)), int(math.Round(p.Y))
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					setClipped(out, x+dx, y+dy, c)
				}
			}
		}
	}

	if labels {
		fg := [4]uint8{255, 255, 255, 255}
		bg := [4]uint8{0, 0, 0, 180}
		for j, row := range points {
			for i, p := range row {
				x, y := int(math.Round(p.X)), int(math.Round(p.Y))
				drawLabel(out, x+3, y+3, fmt.Sprintf("%d,%d", i, j), fg, bg)
			}
		}
	}
	return out
}

// drawLine rasterises the segment a-b with Bresenham's algorithm. The
// segment is clipped to the buffer first, so far-away endpoints cost no more
// than on-screen ones.
func drawLine(buf *pixel.Buffer, a, b pixel.Point, c [4]uint8) {
	a, b, ok := clipSegment(a, b, float64(buf.Width), float64(buf.Height))
	if !ok {
		return
	}
	x0, y0 := int(math.Round(a.X)), int(math.Round(a.Y))
	x1, y1 := int(math.Round(b.X)), int(math.Round(b.Y))
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		setClipped(buf, x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// clipSegment clips a-b to the rectangle [-1, width] × [-1, height] with the
// Liang-Barsky algorithm. The one-pixel margin keeps rounding at the border
// from dropping edge pixels. ok is false when the segment misses it.
func clipSegment(a, b pixel.Point, width, height float64) (pixel.Point, pixel.Point, bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	p := [4]float64{-dx, dx, -dy, dy}
	q := [4]float64{a.X + 1, width - a.X, a.Y + 1, height - a.Y}

	t0, t1 := 0.0, 1.0
	for i := range p {
		if p[i] == 0 {
			if q[i] < 0 {
				return a, b, false
			}
			continue
		}
		t := q[i] / p[i]
		if p[i] < 0 {
			if t > t1 {
				return a, b, false
			}
			t0 = math.Max(t0, t)
		} else {
			if t < t0 {
				return a, b, false
			}
			t1 = math.Min(t1, t)
		}
	}
	return pixel.Point{X: a.X + t0*dx, Y: a.Y + t0*dy},
		pixel.Point{X: a.X + t1*dx, Y: a.Y + t1*dy}, true
}

func setClipped(buf *pixel.Buffer, x, y int, c [4]uint8) {
	if buf.In(x, y) {
		buf.SetRGBA(x, y, c[0], c[1], c[2], c[3])
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) ([4]uint8, error) {
	if len(hex) == 0 {
		return [4]uint8{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	val, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return [4]uint8{}, err
	}
	switch len(hex) {
	case 6:
		return [4]uint8{uint8(val >> 16), uint8(val >> 8), uint8(val), 255}, nil
	case 8:
		return [4]uint8{uint8(val >> 24), uint8(val >> 16), uint8(val >> 8), uint8(val)}, nil
	default:
		return [4]uint8{}, fmt.Errorf("invalid hex color length")
	}
}

// glyphs is a 3x5 bitmap font covering the characters index labels need.
var glyphs = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
	',': {"000", "000", "000", "010", "010"},
}

// drawLabel draws text with its top-left corner at (x, y) over a filled
// background box.
func drawLabel(buf *pixel.Buffer, x, y int, text string, fg, bg [4]uint8) {
	const charWidth, labelHeight = 4, 7

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < len(text)*charWidth; dx++ {
			setClipped(buf, x+dx, y+dy, bg)
		}
	}

	cx := x
	for _, ch := range text {
		for row, line := range glyphs[ch] {
			for col, bit := range line {
				if bit == '1' {
					setClipped(buf, cx+col, y+row, fg)
				}
			}
		}
		cx += charWidth
	}
}
