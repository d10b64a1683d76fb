package geometry

import (
	"math"
	"testing"
)

const eps = 1e-9

func approx(a, b float64) bool { return math.Abs(a-b) < eps }

func TestNormalizeDegrees(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{10, 10},
		{360, 0},
		{365, 5},
		{-5, 355},
		{-360, 0},
		{725, 5},
	}
	for _, tt := range tests {
		if got := NormalizeDegrees(tt.in); !approx(got, tt.want) {
			t.Errorf("NormalizeDegrees(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCircumradius(t *testing.T) {
	// A hexagon's circumradius equals its side length.
	if got := Circumradius(6, 50); !approx(got, 50) {
		t.Errorf("hexagon circumradius = %v, want 50", got)
	}
	// Square: s / (2 sin(pi/4)) = s / sqrt(2)
	if got := Circumradius(4, 10); !approx(got, 10/math.Sqrt2) {
		t.Errorf("square circumradius = %v", got)
	}
	if got := Circumradius(2, 10); got != 0 {
		t.Errorf("degenerate circumradius = %v, want 0", got)
	}
}

func TestRegularPolygonVertices(t *testing.T) {
	pts := RegularPolygonVertices(Point{10, 10}, 4, 5)
	if len(pts) != 4 {
		t.Fatalf("got %d vertices, want 4", len(pts))
	}
	if !approx(pts[0].X, 15) || !approx(pts[0].Y, 10) {
		t.Errorf("first vertex = %+v, want (15,10)", pts[0])
	}
	if !approx(pts[1].X, 10) || !approx(pts[1].Y, 15) {
		t.Errorf("second vertex = %+v, want (10,15)", pts[1])
	}
	if RegularPolygonVertices(Point{}, 2, 5) != nil {
		t.Error("expected nil for fewer than 3 sides")
	}
}

func TestPolygonContains(t *testing.T) {
	square := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"center", Point{5, 5}, true},
		{"outside right", Point{11, 5}, false},
		{"outside above", Point{5, -1}, false},
		{"near corner inside", Point{9.9, 9.9}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PolygonContains(square, tt.p); got != tt.want {
				t.Errorf("PolygonContains(%+v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
	if PolygonContains(square[:2], Point{1, 1}) {
		t.Error("a two-point polygon contains nothing")
	}
}

func TestRectOperations(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	b := Rect{X: 5, Y: 5, Width: 10, Height: 10}

	if u := a.Union(b); u != (Rect{0, 0, 15, 15}) {
		t.Errorf("Union = %+v", u)
	}
	if !a.Intersects(b) {
		t.Error("overlapping rects should intersect")
	}
	if a.Intersects(Rect{X: 12, Y: 12, Width: 3, Height: 3}) {
		t.Error("disjoint rects should not intersect")
	}
	if !a.Contains(Point{0, 0}) || a.Contains(Point{10, 10}) {
		t.Error("Contains should be inclusive top-left, exclusive bottom-right")
	}
	if c := a.Center(); c != (Point{5, 5}) {
		t.Errorf("Center = %+v", c)
	}
	if !(Rect{Width: 0, Height: 4}).IsEmpty() {
		t.Error("zero width rect should be empty")
	}
}

func TestNormalizedRect(t *testing.T) {
	r := NormalizedRect(Point{20, 30}, Point{10, 5})
	if r != (Rect{X: 10, Y: 5, Width: 10, Height: 25}) {
		t.Errorf("NormalizedRect = %+v", r)
	}
}

func TestBoundsOf(t *testing.T) {
	r := BoundsOf([]Point{{3, 4}, {-1, 2}, {5, -6}})
	if r != (Rect{X: -1, Y: -6, Width: 6, Height: 10}) {
		t.Errorf("BoundsOf = %+v", r)
	}
	if BoundsOf(nil) != (Rect{}) {
		t.Error("BoundsOf(nil) should be zero")
	}
}

func TestRotateAbout(t *testing.T) {
	m := RotateAbout(90, Point{5, 5})
	p := m.TransformPoint(Point{10, 5})
	if !approx(p.X, 5) || !approx(p.Y, 10) {
		t.Errorf("rotated point = %+v, want (5,10)", p)
	}
	if !RotateAbout(0, Point{3, 3}).IsIdentity() {
		t.Error("zero rotation should be identity")
	}
}

func TestMatrixMultiplyOrder(t *testing.T) {
	// Translate after rotate: rotate (1,0) by 90 then shift by (10,0).
	m := Translate(10, 0).Multiply(RotateDegrees(90))
	p := m.TransformPoint(Point{1, 0})
	if !approx(p.X, 10) || !approx(p.Y, 1) {
		t.Errorf("got %+v, want (10,1)", p)
	}
}
