package detection

import (
	"math"

	"github.com/ironsheep/pixelwarp-mcp/internal/pixel"
)

// edgeThreshold is the luma step, in 8-bit units, that marks an edge.
const edgeThreshold = 30.0

// minContour is the smallest contour, in pixels, kept by findContours.
const minContour = 10

type point struct {
	x, y int
}

// detectEdges performs simple gradient-based edge detection.
//
// A pixel is an edge when its luma differs by more than edgeThreshold from
// its right or lower neighbour. Border pixels are never edges.
func detectEdges(buf *pixel.Buffer) [][]bool {
	width, height := buf.Width, buf.Height
	edges := make([][]bool, height)

	for y := 0; y < height; y++ {
		edges[y] = make([]bool, width)
		for x := 0; x < width; x++ {
			if x == 0 || y == 0 || x == width-1 || y == height-1 {
				continue
			}

			c := luma(buf, x, y)
			dx := math.Abs(c - luma(buf, x+1, y))
			dy := math.Abs(c - luma(buf, x, y+1))

			if dx > edgeThreshold || dy > edgeThreshold {
				edges[y][x] = true
			}
		}
	}

	return edges
}

// findContours groups edge pixels into 8-connected components, scanning
// rows top to bottom. Components smaller than minContour are dropped.
func findContours(edges [][]bool) [][]point {
	height := len(edges)
	visited := make([][]bool, height)
	for y := range visited {
		visited[y] = make([]bool, len(edges[y]))
	}

	var contours [][]point
	for y := range edges {
		for x := range edges[y] {
			if edges[y][x] && !visited[y][x] {
				contour := floodFill(edges, visited, x, y)
				if len(contour) >= minContour {
					contours = append(contours, contour)
				}
			}
		}
	}

	return contours
}

// floodFill collects the component containing (startX, startY) with an
// explicit stack.
func floodFill(edges, visited [][]bool, startX, startY int) []point {
	height := len(edges)
	var contour []point
	stack := []point{{startX, startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.y < 0 || p.y >= height || p.x < 0 || p.x >= len(edges[p.y]) {
			continue
		}
		if visited[p.y][p.x] || !edges[p.y][p.x] {
			continue
		}

		visited[p.y][p.x] = true
		contour = append(contour, p)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, point{p.x + dx, p.y + dy})
			}
		}
	}

	return contour
}

// luma uses ITU-R BT.601 weights on the RGB channels; alpha is ignored.
func luma(buf *pixel.Buffer, x, y int) float64 {
	r, g, b, _ := buf.RGBAAt(x, y)
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}
