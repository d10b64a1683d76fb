package geometry

import "math"

// Circumradius returns the radius of the circle through the vertices of a
// regular polygon. Fewer than three sides is not a polygon and yields 0.
func Circumradius(sides int, sideLength float64) float64 {
	if sides < 3 {
		return 0
	}
	return sideLength / (2 * math.Sin(math.Pi/float64(sides)))
}

// RegularPolygonVertices returns the vertices of a regular polygon centered at
// center. Vertex i sits at angle 2πi/sides.
func RegularPolygonVertices(center Point, sides int, radius float64) []Point {
	if sides < 3 {
		return nil
	}
	points := make([]Point, sides)
	for i := range sides {
		angle := 2 * math.Pi * float64(i) / float64(sides)
		points[i] = Point{
			X: center.X + radius*math.Cos(angle),
			Y: center.Y + radius*math.Sin(angle),
		}
	}
	return points
}

// PolygonContains reports whether p lies inside the polygon using ray casting.
func PolygonContains(polygon []Point, p Point) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	j := len(polygon) - 1
	for i := range polygon {
		xi, yi := polygon[i].X, polygon[i].Y
		xj, yj := polygon[j].X, polygon[j].Y

		if (yi > p.Y) != (yj > p.Y) && p.X < (xj-xi)*(p.Y-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}

// NormalizeDegrees maps an angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	r := math.Mod(deg, 360)
	if r < 0 {
		r += 360
	}
	// -0 and values that round up to 360 after the shift
	if r == 0 || r >= 360 {
		return 0
	}
	return r
}
