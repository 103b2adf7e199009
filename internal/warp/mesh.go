package warp

import (
	"fmt"
	"math"

	"github.com/ironsheep/pixelwarp-mcp/internal/pixel"
)

// ControlGrid holds one control point per mesh cell, indexed [row][col].
type ControlGrid [][]pixel.Point

// NewControlGrid returns a gridX×gridY grid whose control points sit on the
// top-left corner of each cell of a width×height image. Cells are
// width/gridX by height/gridY pixels and may be fractional. Callers usually
// start from it and move individual points.
func NewControlGrid(width, height, gridX, gridY int) ControlGrid {
	if gridX < 1 || gridY < 1 {
		return nil
	}
	cellW := float64(width) / float64(gridX)
	cellH := float64(height) / float64(gridY)
	grid := make(ControlGrid, gridY)
	for row := range grid {
		grid[row] = make([]pixel.Point, gridX)
		for col := range grid[row] {
			grid[row][col] = pixel.Point{X: float64(col) * cellW, Y: float64(row) * cellH}
		}
	}
	return grid
}

// Validate checks that the grid is gridY rows of gridX points each.
func (g ControlGrid) Validate(gridX, gridY int) error {
	if len(g) != gridY {
		return fmt.Errorf("%w: got %d rows, want %d", ErrInvalidGrid, len(g), gridY)
	}
	for row, pts := range g {
		if len(pts) != gridX {
			return fmt.Errorf("%w: row %d has %d points, want %d", ErrInvalidGrid, row, len(pts), gridX)
		}
	}
	return nil
}

// MeshWarp distorts src cell by cell using a lattice of control points.
//
// The image is split into gridX×gridY equal cells of width/gridX by
// height/gridY pixels, so every pixel has an owning cell even when the
// division is not exact. A pixel at (px, py) in cell (col, row) with control
// point cp moves to
//
//	localX = (px - col*cellW) / cellW
//	newX   = round(cp.X + (px - cp.X) * localX)
//
// and likewise for Y. Like Bulge, the result starts as a copy of src and
// moved pixels are scattered onto it.
//
// Returns ErrInvalidGrid when the grid dimensions are not positive or do not
// match the shape of controlPoints.
func MeshWarp(src *pixel.Buffer, gridX, gridY int, controlPoints ControlGrid) (*pixel.Buffer, error) {
	if gridX < 1 || gridY < 1 {
		return nil, fmt.Errorf("%w: grid %dx%d must be at least 1x1", ErrInvalidGrid, gridX, gridY)
	}
	if err := controlPoints.Validate(gridX, gridY); err != nil {
		return nil, err
	}

	cellW := float64(src.Width) / float64(gridX)
	cellH := float64(src.Height) / float64(gridY)
	dst := src.Clone()

	for py := 0; py < src.Height; py++ {
		row := min(int(float64(py)/cellH), gridY-1)
		localY := (float64(py) - float64(row)*cellH) / cellH

		for px := 0; px < src.Width; px++ {
			col := min(int(float64(px)/cellW), gridX-1)
			localX := (float64(px) - float64(col)*cellW) / cellW

			cp := controlPoints[row][col]
			nx := int(math.Round(cp.X + (float64(px)-cp.X)*localX))
			ny := int(math.Round(cp.Y + (float64(py)-cp.Y)*localY))
			if dst.In(nx, ny) {
				dst.CopyPixel(nx, ny, src, px, py)
			}
		}
	}
	return dst, nil
}
