package document

import (
	"fmt"
	"sync/atomic"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/inamate/sketchboard/internal/geometry"
)

var (
	Blue  = colorful.Color{B: 1}
	Green = colorful.Color{G: 1}
)

// NewRectangle builds a rectangle with an explicit id and default colors.
func NewRectangle(id string, x, y, width, height float64) *Rectangle {
	r := &Rectangle{base: newBase(id), Width: width, Height: height}
	r.position = geometry.Point{X: x, Y: y}
	return r
}

// NewRegularPolygon builds a polygon centered at (x, y) with an explicit id.
func NewRegularPolygon(id string, x, y float64, sides int, sideLength float64) *RegularPolygon {
	p := &RegularPolygon{base: newBase(id), sides: sides, sideLength: sideLength}
	p.position = geometry.Point{X: x, Y: y}
	return p
}

// NewGroup builds a group with an explicit id owning children. The children
// must not belong to anything else.
func NewGroup(id string, children ...Shape) *Group {
	g := &Group{base: newBase(id)}
	for _, child := range children {
		g.insertChild(-1, child)
	}
	return g
}

// Factory creates shapes with fresh ids. Callers construct one and pass it to
// whoever needs to create shapes.
type Factory struct {
	ids IDSource
}

// NewFactory returns a factory drawing ids from ids.
func NewFactory(ids IDSource) *Factory {
	return &Factory{ids: ids}
}

// IDs returns the id source backing the factory.
func (f *Factory) IDs() IDSource { return f.ids }

// NewRectangle creates a blue rectangle.
func (f *Factory) NewRectangle(x, y, width, height float64) *Rectangle {
	r := NewRectangle(f.ids.NewID(KindRectangle), x, y, width, height)
	r.fill = Blue
	return r
}

// NewRegularPolygon creates a green regular polygon.
func (f *Factory) NewRegularPolygon(x, y float64, sides int, sideLength float64) *RegularPolygon {
	p := NewRegularPolygon(f.ids.NewID(KindPolygon), x, y, sides, sideLength)
	p.fill = Green
	return p
}

// NewGroup creates a group around children.
func (f *Factory) NewGroup(children ...Shape) *Group {
	return NewGroup(f.ids.NewID(KindGroup), children...)
}

// Clone deep-copies s with fresh ids throughout.
func (f *Factory) Clone(s Shape) Shape {
	return Clone(s, f.ids)
}

// SequentialIDs hands out "<kind>_<n>" ids. It is deterministic, which makes
// it the id source of choice for tests and fixtures.
type SequentialIDs struct {
	n atomic.Int64
}

// NewID returns the next id.
func (s *SequentialIDs) NewID(kind Kind) string {
	return fmt.Sprintf("%s_%d", kind, s.n.Add(1))
}
