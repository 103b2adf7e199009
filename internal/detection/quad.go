package detection

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ironsheep/pixelwarp-mcp/internal/pixel"
)

// ErrNoQuad is returned by LargestQuad when nothing passes the filters.
var ErrNoQuad = errors.New("no quadrilateral found")

// Defaults for DetectQuads parameters.
const (
	DefaultMinArea   = 100
	DefaultTolerance = 0.8
)

// Quad is a detected quadrilateral.
type Quad struct {
	// Corners are ordered top-left, top-right, bottom-right, bottom-left.
	Corners [4]pixel.Point `json:"corners"`

	// Area is the shoelace area of the corners in square pixels.
	Area float64 `json:"area"`

	// Confidence compares the number of contour pixels with the quad's
	// perimeter (0.0 to 1.0). Outlines that bulge, branch or have gaps
	// score lower.
	Confidence float64 `json:"confidence"`
}

// QuadsResult contains all quads detected in an image.
type QuadsResult struct {
	// Quads is sorted by area, largest first.
	Quads []Quad `json:"quads"`
	Count int    `json:"count"`
}

// DetectQuads finds the outlines in buf and fits a quadrilateral to each.
//
// Parameters:
//   - minArea: Minimum quad area in square pixels. Typical: 100-1000.
//   - tolerance: Minimum confidence (0.0 to 1.0). Typical: 0.7-0.9.
//
// Returns:
//   - *QuadsResult: Every quad passing both filters, sorted by area, largest
//     first. Never nil; Count is 0 when nothing qualifies.
//
// The perimeter used for the confidence is measured in chessboard distance,
// which is the pixel count of an 8-connected line, so tilted outlines are
// not penalised.
func DetectQuads(buf *pixel.Buffer, minArea, tolerance float64) *QuadsResult {
	quads := make([]Quad, 0)

	for _, contour := range findContours(detectEdges(buf)) {
		q := fitQuad(contour)
		if q.Area < minArea {
			continue
		}

		perimeter := 0.0
		for i := range q.Corners {
			a, b := q.Corners[i], q.Corners[(i+1)%4]
			perimeter += math.Max(math.Abs(a.X-b.X), math.Abs(a.Y-b.Y))
		}
		q.Confidence = math.Max(0, 1-math.Abs(float64(len(contour))-perimeter)/perimeter)
		if q.Confidence < tolerance {
			continue
		}

		quads = append(quads, q)
	}

	sort.SliceStable(quads, func(i, j int) bool {
		return quads[i].Area > quads[j].Area
	})

	return &QuadsResult{
		Quads: quads,
		Count: len(quads),
	}
}

// LargestQuad returns the biggest quad DetectQuads finds.
//
// Parameters:
//   - buf: The image to search.
//   - minArea, tolerance: Passed through to DetectQuads.
//
// Returns:
//   - Quad: The quad with the largest area; the first one found wins ties.
//   - error: Non-nil when no quad qualifies.
//
// # Errors
//
//   - Returns ErrNoQuad (wrapped with the image size and filters) if
//     DetectQuads finds nothing
func LargestQuad(buf *pixel.Buffer, minArea, tolerance float64) (Quad, error) {
	res := DetectQuads(buf, minArea, tolerance)
	if res.Count == 0 {
		return Quad{}, fmt.Errorf("%w in %dx%d image (min area %g, tolerance %g)",
			ErrNoQuad, buf.Width, buf.Height, minArea, tolerance)
	}
	return res.Quads[0], nil
}

// fitQuad picks the contour's extreme points along the diagonals: minimum
// x+y (top-left), maximum x-y (top-right), maximum x+y (bottom-right) and
// maximum y-x (bottom-left). The first point wins ties.
func fitQuad(contour []point) Quad {
	tl, tr, br, bl := contour[0], contour[0], contour[0], contour[0]
	for _, p := range contour[1:] {
		if p.x+p.y < tl.x+tl.y {
			tl = p
		}
		if p.x-p.y > tr.x-tr.y {
			tr = p
		}
		if p.x+p.y > br.x+br.y {
			br = p
		}
		if p.y-p.x > bl.y-bl.x {
			bl = p
		}
	}

	var q Quad
	for i, p := range [4]point{tl, tr, br, bl} {
		q.Corners[i] = pixel.Point{X: float64(p.x), Y: float64(p.y)}
	}

	// Shoelace formula
	sum := 0.0
	for i := range q.Corners {
		a, b := q.Corners[i], q.Corners[(i+1)%4]
		sum += a.X*b.Y - b.X*a.Y
	}
	q.Area = math.Abs(sum) / 2
	return q
}
