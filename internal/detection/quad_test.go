package detection

import (
	"errors"
	"math"
	"testing"

	"github.com/ironsheep/pixelwarp-mcp/internal/pixel"
)

// createRectImage returns a black image with a white filled rectangle
// covering x1..x2, y1..y2 inclusive.
func createRectImage(width, height int, rects ...[4]int) *pixel.Buffer {
	buf := pixel.New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			buf.SetRGBA(x, y, 0, 0, 0, 255)
		}
	}
	for _, r := range rects {
		for y := r[1]; y <= r[3]; y++ {
			for x := r[0]; x <= r[2]; x++ {
				buf.SetRGBA(x, y, 255, 255, 255, 255)
			}
		}
	}
	return buf
}

// createQuadImage fills the convex quad with clockwise corners q.
func createQuadImage(width, height int, q [4]pixel.Point) *pixel.Buffer {
	buf := createRectImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			inside := true
			for i := range q {
				a, b := q[i], q[(i+1)%4]
				if (b.X-a.X)*(float64(y)-a.Y)-(b.Y-a.Y)*(float64(x)-a.X) < 0 {
					inside = false
					break
				}
			}
			if inside {
				buf.SetRGBA(x, y, 255, 255, 255, 255)
			}
		}
	}
	return buf
}

func near(a, b pixel.Point, tol float64) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) <= tol
}

func TestDetectQuads_AxisAligned(t *testing.T) {
	buf := createRectImage(50, 40, [4]int{10, 10, 29, 19})

	res := DetectQuads(buf, DefaultMinArea, DefaultTolerance)
	if res.Count != 1 {
		t.Fatalf("Count: got %d, want 1", res.Count)
	}

	q := res.Quads[0]
	want := [4]pixel.Point{{X: 10, Y: 10}, {X: 29, Y: 10}, {X: 29, Y: 19}, {X: 10, Y: 19}}
	for i := range want {
		if !near(q.Corners[i], want[i], 1.0001) {
			t.Errorf("corner %d: got %v, want near %v", i, q.Corners[i], want[i])
		}
	}
	if q.Confidence < 0.95 {
		t.Errorf("Confidence: got %v, want >= 0.95", q.Confidence)
	}
	if q.Area < 180 || q.Area > 220 {
		t.Errorf("Area: got %v, want about 200", q.Area)
	}
}

func TestDetectQuads_Skewed(t *testing.T) {
	corners := [4]pixel.Point{{X: 12, Y: 8}, {X: 50, Y: 14}, {X: 46, Y: 40}, {X: 8, Y: 34}}
	buf := createQuadImage(64, 48, corners)

	q, err := LargestQuad(buf, DefaultMinArea, 0.7)
	if err != nil {
		t.Fatalf("LargestQuad failed: %v", err)
	}
	for i := range corners {
		if !near(q.Corners[i], corners[i], 3) {
			t.Errorf("corner %d: got %v, want near %v", i, q.Corners[i], corners[i])
		}
	}
}

func TestDetectQuads_SortedByArea(t *testing.T) {
	buf := createRectImage(80, 60, [4]int{5, 5, 20, 20}, [4]int{30, 10, 70, 50})

	res := DetectQuads(buf, DefaultMinArea, DefaultTolerance)
	if res.Count != 2 {
		t.Fatalf("Count: got %d, want 2", res.Count)
	}
	if res.Quads[0].Area <= res.Quads[1].Area {
		t.Errorf("quads not sorted by area: %v then %v", res.Quads[0].Area, res.Quads[1].Area)
	}
	if !near(res.Quads[0].Corners[0], pixel.Point{X: 30, Y: 10}, 1.0001) {
		t.Errorf("largest quad top-left: got %v, want near (30,10)", res.Quads[0].Corners[0])
	}
}

func TestDetectQuads_MinArea(t *testing.T) {
	buf := createRectImage(40, 40, [4]int{10, 10, 16, 15})

	tests := []struct {
		minArea float64
		want    int
	}{
		{10, 1},
		{100, 0},
	}

	for _, tt := range tests {
		if got := DetectQuads(buf, tt.minArea, DefaultTolerance).Count; got != tt.want {
			t.Errorf("minArea %v: got %d quads, want %d", tt.minArea, got, tt.want)
		}
	}
}

func TestLargestQuad_NoEdges(t *testing.T) {
	buf := createRectImage(30, 30)

	_, err := LargestQuad(buf, DefaultMinArea, DefaultTolerance)
	if !errors.Is(err, ErrNoQuad) {
		t.Errorf("err: got %v, want ErrNoQuad", err)
	}
}

func TestFitQuad(t *testing.T) {
	contour := []point{
		{5, 1}, {1, 1}, {9, 1}, {9, 5}, {9, 9}, {5, 9}, {1, 9}, {1, 5},
	}

	q := fitQuad(contour)

	want := [4]pixel.Point{{X: 1, Y: 1}, {X: 9, Y: 1}, {X: 9, Y: 9}, {X: 1, Y: 9}}
	if q.Corners != want {
		t.Errorf("Corners: got %v, want %v", q.Corners, want)
	}
	if q.Area != 64 {
		t.Errorf("Area: got %v, want 64", q.Area)
	}
}

func TestDetectEdges_BorderNeverEdge(t *testing.T) {
	buf := createRectImage(10, 10, [4]int{0, 0, 9, 4})

	edges := detectEdges(buf)
	for x := 0; x < 10; x++ {
		if edges[0][x] || edges[9][x] {
			t.Fatalf("border pixel in column %d marked as edge", x)
		}
	}
	if !edges[4][5] {
		t.Error("(5,4) should be an edge: white above black")
	}
}
