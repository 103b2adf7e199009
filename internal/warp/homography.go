package warp

import (
	"fmt"
	"math"

	"github.com/anthonynsimon/bild/parallel"

	"github.com/ironsheep/pixelwarp-mcp/internal/pixel"
)

const (
	// singularDet is the determinant magnitude below which Invert gives up
	// and returns the identity.
	singularDet = 1e-4

	// collinearSine is the smallest |sin| of the angle between two corner
	// edges that still counts as non-collinear.
	collinearSine = 1e-9

	// pivotEpsilon is relative to the largest coefficient of the system.
	pivotEpsilon = 1e-12

	// edgeEpsilon snaps sample coordinates that overshoot the last row or
	// column by floating-point noise back onto it.
	edgeEpsilon = 1e-6
)

// Homography is a 3×3 projective matrix in row-major order:
//
//	| h0 h1 h2 |
//	| h3 h4 h5 |
//	| h6 h7 h8 |
//
// A point (x, y) maps to ((h0x+h1y+h2)/w, (h3x+h4y+h5)/w) with w = h6x+h7y+h8.
type Homography [9]float64

// Identity returns the homography that maps every point onto itself.
func Identity() Homography {
	return Homography{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Apply maps a single point. Points on the line at infinity (w == 0) map to
// +Inf, which every bounds check treats as outside.
func (h Homography) Apply(x, y float64) (float64, float64) {
	w := h[6]*x + h[7]*y + h[8]
	if w == 0 {
		return math.Inf(1), math.Inf(1)
	}
	return (h[0]*x + h[1]*y + h[2]) / w, (h[3]*x + h[4]*y + h[5]) / w
}

// Det returns the determinant of the matrix.
func (h Homography) Det() float64 {
	return h[0]*(h[4]*h[8]-h[5]*h[7]) -
		h[1]*(h[3]*h[8]-h[5]*h[6]) +
		h[2]*(h[3]*h[7]-h[4]*h[6])
}

// Invert returns the inverse matrix computed from the adjugate.
//
// When |det| < 1e-4 the matrix is treated as singular and the identity is
// returned instead, so a warp through a collapsed transform degrades to a
// plain copy rather than failing.
func (h Homography) Invert() Homography {
	det := h.Det()
	if math.Abs(det) < singularDet {
		return Identity()
	}
	inv := 1 / det
	return Homography{
		(h[4]*h[8] - h[5]*h[7]) * inv,
		(h[2]*h[7] - h[1]*h[8]) * inv,
		(h[1]*h[5] - h[2]*h[4]) * inv,
		(h[5]*h[6] - h[3]*h[8]) * inv,
		(h[0]*h[8] - h[2]*h[6]) * inv,
		(h[2]*h[3] - h[0]*h[5]) * inv,
		(h[3]*h[7] - h[4]*h[6]) * inv,
		(h[1]*h[6] - h[0]*h[7]) * inv,
		(h[0]*h[4] - h[1]*h[3]) * inv,
	}
}

// EstimateHomography computes the projective transform that maps each of the
// four src corners onto the matching dst corner.
//
// The eight unknowns h0..h7 (h8 fixed to 1) are solved from the linear system
//
//	h0x + h1y + h2 - h6xu - h7yu = u
//	h3x + h4y + h5 - h6xv - h7yv = v
//
// written once per correspondence (x,y) -> (u,v), using Gaussian elimination
// with partial pivoting.
//
// Returns ErrDegenerateGeometry when two corners coincide, three corners of
// either quadrilateral are collinear, or the system turns out singular.
func EstimateHomography(src, dst [4]pixel.Point) (Homography, error) {
	if err := checkCorners("source", src); err != nil {
		return Homography{}, err
	}
	if err := checkCorners("destination", dst); err != nil {
		return Homography{}, err
	}

	var a [8][9]float64
	for i := 0; i < 4; i++ {
		x, y := src[i].X, src[i].Y
		u, v := dst[i].X, dst[i].Y
		a[2*i] = [9]float64{x, y, 1, 0, 0, 0, -x * u, -y * u, u}
		a[2*i+1] = [9]float64{0, 0, 0, x, y, 1, -x * v, -y * v, v}
	}

	sol, err := solve8(a)
	if err != nil {
		return Homography{}, err
	}

	var h Homography
	copy(h[:8], sol[:])
	h[8] = 1
	return h, nil
}

// solve8 solves an 8×8 system given as an augmented matrix.
func solve8(a [8][9]float64) ([8]float64, error) {
	var x [8]float64

	scale := 0.0
	for r := range a {
		for c := 0; c < 8; c++ {
			scale = math.Max(scale, math.Abs(a[r][c]))
		}
	}
	if scale == 0 {
		return x, fmt.Errorf("%w: empty system", ErrDegenerateGeometry)
	}

	for col := 0; col < 8; col++ {
		pivot := col
		for r := col + 1; r < 8; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < pivotEpsilon*scale {
			return x, fmt.Errorf("%w: singular system at column %d", ErrDegenerateGeometry, col)
		}
		a[col], a[pivot] = a[pivot], a[col]

		for r := col + 1; r < 8; r++ {
			f := a[r][col] / a[col][col]
			if f == 0 {
				continue
			}
			for c := col; c < 9; c++ {
				a[r][c] -= f * a[col][c]
			}
		}
	}

	for r := 7; r >= 0; r-- {
		sum := a[r][8]
		for c := r + 1; c < 8; c++ {
			sum -= a[r][c] * x[c]
		}
		x[r] = sum / a[r][r]
	}
	return x, nil
}

// checkCorners rejects quadrilaterals that cannot anchor a homography.
func checkCorners(name string, q [4]pixel.Point) error {
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			if q[i] == q[j] {
				return fmt.Errorf("%w: %s corners %d and %d coincide", ErrDegenerateGeometry, name, i, j)
			}
		}
	}
	for i := 0; i < 4; i++ {
		p0 := q[i]
		p1 := q[(i+1)%4]
		p2 := q[(i+2)%4]
		ax, ay := p1.X-p0.X, p1.Y-p0.Y
		bx, by := p2.X-p0.X, p2.Y-p0.Y
		cross := ax*by - ay*bx
		if math.Abs(cross) <= collinearSine*math.Hypot(ax, ay)*math.Hypot(bx, by) {
			return fmt.Errorf("%w: %s corners %d, %d and %d are collinear",
				ErrDegenerateGeometry, name, i, (i+1)%4, (i+2)%4)
		}
	}
	return nil
}

// WarpPerspective renders src through h into a new width×height buffer.
//
// Each destination pixel (dx, dy) is mapped back into the source with the
// inverse of h and filled with the bilinear blend of the surrounding 2×2
// source pixels, channel by channel. Destination pixels whose source position
// falls outside the source image stay fully transparent. The last source
// row and column count as inside: their missing neighbour is clamped to the
// edge and carries zero weight, so the border is extended rather than cut.
//
// Rows are distributed across goroutines; the result does not depend on
// scheduling.
func WarpPerspective(src *pixel.Buffer, h Homography, width, height int) *pixel.Buffer {
	dst := pixel.New(width, height)
	if src.Width == 0 || src.Height == 0 || dst.Width == 0 || dst.Height == 0 {
		return dst
	}

	inv := h.Invert()
	parallel.Line(dst.Height, func(start, end int) {
		for dy := start; dy < end; dy++ {
			for dx := 0; dx < dst.Width; dx++ {
				sx, sy := inv.Apply(float64(dx), float64(dy))
				bilinear(src, sx, sy, dst.Pix[dst.Offset(dx, dy):dst.Offset(dx, dy)+pixel.Channels])
			}
		}
	})
	return dst
}

// bilinear writes the interpolated sample at (sx, sy) into out and reports
// whether the position was inside the source. out is left untouched when it
// was not.
//
// The last column and row count as inside: their missing right or lower
// neighbour is clamped and carries zero weight.
func bilinear(src *pixel.Buffer, sx, sy float64, out []uint8) bool {
	maxX := float64(src.Width - 1)
	maxY := float64(src.Height - 1)
	sx = snap(sx, maxX)
	sy = snap(sy, maxY)
	// Written so that NaN fails the test.
	if !(sx >= 0 && sx <= maxX && sy >= 0 && sy <= maxY) {
		return false
	}

	x0 := int(math.Floor(sx))
	y0 := int(math.Floor(sy))
	x1, y1 := x0+1, y0+1
	if x1 >= src.Width {
		x1 = x0
	}
	if y1 >= src.Height {
		y1 = y0
	}
	fx := sx - float64(x0)
	fy := sy - float64(y0)

	i00 := src.Offset(x0, y0)
	i10 := src.Offset(x1, y0)
	i01 := src.Offset(x0, y1)
	i11 := src.Offset(x1, y1)
	for c := 0; c < pixel.Channels; c++ {
		top := float64(src.Pix[i00+c])*(1-fx) + float64(src.Pix[i10+c])*fx
		bottom := float64(src.Pix[i01+c])*(1-fx) + float64(src.Pix[i11+c])*fx
		out[c] = clampByte(top*(1-fy) + bottom*fy)
	}
	return true
}

func snap(v, limit float64) float64 {
	if v < 0 && v > -edgeEpsilon {
		return 0
	}
	if v > limit && v-limit < edgeEpsilon {
		return limit
	}
	return v
}

func clampByte(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
