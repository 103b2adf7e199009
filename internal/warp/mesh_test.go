package warp

import (
	"errors"
	"testing"

	"github.com/ironsheep/pixelwarp-mcp/internal/pixel"
)

func TestNewControlGrid(t *testing.T) {
	grid := NewControlGrid(10, 6, 2, 3)

	if err := grid.Validate(2, 3); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if got := grid[2][1]; got.X != 5 || got.Y != 4 {
		t.Errorf("grid[2][1]: got (%g,%g), want (5,4)", got.X, got.Y)
	}
	if NewControlGrid(10, 10, 0, 2) != nil {
		t.Error("NewControlGrid should return nil for a zero dimension")
	}
}

func TestMeshWarp_InvalidGrid(t *testing.T) {
	src := createGradientBuffer(8, 8)

	tests := []struct {
		name         string
		gridX, gridY int
		grid         ControlGrid
	}{
		{"too few rows", 2, 2, NewControlGrid(8, 8, 2, 1)},
		{"too many rows", 2, 2, NewControlGrid(8, 8, 2, 3)},
		{"short row", 2, 2, ControlGrid{{{}, {}}, {{}}}},
		{"zero columns", 0, 2, ControlGrid{{}, {}}},
		{"nil grid", 1, 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MeshWarp(src, tt.gridX, tt.gridY, tt.grid)
			if !errors.Is(err, ErrInvalidGrid) {
				t.Errorf("err: got %v, want ErrInvalidGrid", err)
			}
		})
	}
}

func TestMeshWarp_SingleCell(t *testing.T) {
	src := createGradientBuffer(4, 4)
	grid := ControlGrid{{{X: 0, Y: 0}}}

	dst, err := MeshWarp(src, 1, 1, grid)
	if err != nil {
		t.Fatalf("MeshWarp failed: %v", err)
	}

	// With the control point at the origin, x -> round(x*x/4):
	// 0->0, 1->0, 2->1, 3->2.
	tests := []struct {
		dx, dy int
		sx, sy uint8
	}{
		{0, 0, 1, 1},
		{1, 1, 2, 2},
		{2, 2, 3, 3},
		{2, 0, 3, 1},
		{3, 3, 3, 3}, // never written, keeps the source value
	}
	for _, tt := range tests {
		r, g, _, _ := dst.RGBAAt(tt.dx, tt.dy)
		if r != tt.sx || g != tt.sy {
			t.Errorf("pixel (%d,%d): got source (%d,%d), want (%d,%d)", tt.dx, tt.dy, r, g, tt.sx, tt.sy)
		}
	}
}

func TestNewControlGrid_FractionalCells(t *testing.T) {
	grid := NewControlGrid(10, 1, 4, 1)

	want := []float64{0, 2.5, 5, 7.5}
	for col, x := range want {
		if got := grid[0][col].X; got != x {
			t.Errorf("grid[0][%d].X: got %g, want %g", col, got, x)
		}
	}
}

func TestMeshWarp_UnevenCellsCoverImage(t *testing.T) {
	// 10 columns in 3 cells of width 10/3: the last column belongs to cell 2
	// and moves like every other pixel.
	src := pixel.New(10, 1)
	for x := 0; x < 10; x++ {
		src.SetRGBA(x, 0, uint8(10+10*x), 0, 0, 255)
	}
	grid := ControlGrid{{{}, {}, {}}}

	dst, err := MeshWarp(src, 3, 1, grid)
	if err != nil {
		t.Fatalf("MeshWarp failed: %v", err)
	}

	// Destination column -> red value of the source pixel expected there.
	tests := []struct {
		x    int
		want uint8
	}{
		{0, 20},  // from x=1
		{1, 80},  // from x=7, written last
		{3, 90},  // from x=8
		{4, 50},  // never written
		{5, 70},  // from x=6
		{6, 100}, // from x=9, round(9*0.7)
		{9, 100}, // never written
	}
	for _, tt := range tests {
		if r, _, _, _ := dst.RGBAAt(tt.x, 0); r != tt.want {
			t.Errorf("pixel (%d,0): got %d, want %d", tt.x, r, tt.want)
		}
	}
}

func TestMeshWarp_GridFinerThanImage(t *testing.T) {
	src := pixel.New(2, 1)
	src.SetRGBA(0, 0, 10, 0, 0, 255)
	src.SetRGBA(1, 0, 20, 0, 0, 255)
	grid := ControlGrid{{{}, {}, {}, {}}}

	dst, err := MeshWarp(src, 4, 1, grid)
	if err != nil {
		t.Fatalf("MeshWarp failed: %v", err)
	}
	// x=1 starts cell 2, so localX is 0 and it lands on the control point.
	for x := 0; x < 2; x++ {
		if r, _, _, _ := dst.RGBAAt(x, 0); r != 20 {
			t.Errorf("pixel (%d,0): got %d, want 20", x, r)
		}
	}
}

func TestMeshWarp_OffscreenControlPoints(t *testing.T) {
	src := createGradientBuffer(6, 6)
	grid := ControlGrid{
		{{X: 100, Y: 100}, {X: 100, Y: 100}},
		{{X: 100, Y: 100}, {X: 100, Y: 100}},
	}

	dst, err := MeshWarp(src, 2, 2, grid)
	if err != nil {
		t.Fatalf("MeshWarp failed: %v", err)
	}
	// Every pixel lands outside the image, so the copy is untouched.
	equalBuffers(t, dst, src)
}

func TestMeshWarp_DoesNotMutateSource(t *testing.T) {
	src := createGradientBuffer(8, 8)
	before := src.Clone()

	if _, err := MeshWarp(src, 2, 2, NewControlGrid(8, 8, 2, 2)); err != nil {
		t.Fatalf("MeshWarp failed: %v", err)
	}
	equalBuffers(t, src, before)
}
