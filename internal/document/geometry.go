package document

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/inamate/sketchboard/internal/geometry"
)

// Contains reports whether p hits the shape. Rotation is not applied: the
// unrotated footprint of rectangles and polygons is tested.
func Contains(s Shape, p geometry.Point) bool {
	switch v := s.(type) {
	case *Rectangle:
		return v.Footprint().Contains(p)
	case *RegularPolygon:
		return geometry.PolygonContains(v.Vertices(), p)
	case *Group:
		for _, child := range v.children {
			if Contains(child, p) {
				return true
			}
		}
		return false
	default:
		panic(fmt.Sprintf("document: unknown shape %T", s))
	}
}

// Outline returns the shape's corner or vertex set after rotation about its
// rotation center. Groups have no outline of their own.
func Outline(s Shape) []geometry.Point {
	var points []geometry.Point
	switch v := s.(type) {
	case *Rectangle:
		points = v.Footprint().Corners()
	case *RegularPolygon:
		points = v.Vertices()
	case *Group:
		return nil
	default:
		panic(fmt.Sprintf("document: unknown shape %T", s))
	}
	if s.Rotation() == 0 {
		return points
	}
	return geometry.RotateAbout(s.Rotation(), s.RotationCenter()).TransformPoints(points)
}

// BoundingBox returns the axis-aligned box around the shape's rotated
// geometry. A group yields the union of its children; an empty group yields a
// zero-area rect at its anchor.
func BoundingBox(s Shape) geometry.Rect {
	switch v := s.(type) {
	case *Rectangle, *RegularPolygon:
		return geometry.BoundsOf(Outline(v))
	case *Group:
		if len(v.children) == 0 {
			return geometry.Rect{X: v.position.X, Y: v.position.Y}
		}
		box := BoundingBox(v.children[0])
		for _, child := range v.children[1:] {
			box = box.Union(BoundingBox(child))
		}
		return box
	default:
		panic(fmt.Sprintf("document: unknown shape %T", s))
	}
}

// Move translates the shape by (dx, dy). Groups translate every descendant
// and then recompute their anchor. A relocated rotation center stays put.
func Move(s Shape, dx, dy float64) {
	switch v := s.(type) {
	case *Rectangle, *RegularPolygon:
		b := v.common()
		b.position = b.position.Add(dx, dy)
	case *Group:
		for _, child := range v.children {
			Move(child, dx, dy)
		}
		if len(v.children) == 0 {
			v.position = v.position.Add(dx, dy)
		}
		v.refreshAnchor()
	default:
		panic(fmt.Sprintf("document: unknown shape %T", s))
	}
}

// SetPosition moves the shape so its position equals p.
func SetPosition(s Shape, p geometry.Point) {
	cur := s.Position()
	Move(s, p.X-cur.X, p.Y-cur.Y)
}

// SetRotation stores angle normalized to [0, 360). For a group the change
// from its previous rotation is added to each child's own rotation; children
// spin in place and do not orbit the group.
func SetRotation(s Shape, angle float64) {
	switch v := s.(type) {
	case *Rectangle, *RegularPolygon:
		v.common().rotation = geometry.NormalizeDegrees(angle)
	case *Group:
		delta := angle - v.rotation
		for _, child := range v.children {
			SetRotation(child, child.Rotation()+delta)
		}
		v.rotation = geometry.NormalizeDegrees(angle)
	default:
		panic(fmt.Sprintf("document: unknown shape %T", s))
	}
}

// SetFillColor sets the fill; groups pass it down to every descendant.
func SetFillColor(s Shape, c colorful.Color) {
	switch v := s.(type) {
	case *Rectangle:
		v.SetFillColor(c)
	case *RegularPolygon:
		v.SetFillColor(c)
	case *Group:
		v.SetFillColor(c)
	default:
		panic(fmt.Sprintf("document: unknown shape %T", s))
	}
}
