package document

import (
	"slices"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/inamate/sketchboard/internal/geometry"
)

// Kind identifies a Shape variant.
type Kind string

const (
	KindRectangle Kind = "rectangle"
	KindPolygon   Kind = "polygon"
	KindGroup     Kind = "group"
)

var (
	White = colorful.Color{R: 1, G: 1, B: 1}
	Black = colorful.Color{}
)

// Shape is a closed set of variants: *Rectangle, *RegularPolygon and *Group.
// Operations over shapes switch on the concrete type and panic on anything
// else, so adding a variant means visiting every switch in this package.
type Shape interface {
	ID() string
	Kind() Kind
	// Parent is the id of the enclosing group, or "" at top level.
	Parent() string
	Position() geometry.Point
	Rotation() float64
	RotationCenter() geometry.Point
	// HasCustomRotationCenter reports whether the rotation center was relocated
	// away from the geometric center.
	HasCustomRotationCenter() bool
	GeometricCenter() geometry.Point
	FillColor() colorful.Color
	BorderColor() colorful.Color

	common() *base
}

// base holds the state every variant shares.
type base struct {
	id           string
	parent       string
	position     geometry.Point
	fill         colorful.Color
	border       colorful.Color
	rotation     float64
	center       geometry.Point
	customCenter bool
}

func newBase(id string) base {
	return base{id: id, fill: White, border: Black}
}

func (b *base) ID() string                    { return b.id }
func (b *base) Parent() string                { return b.parent }
func (b *base) Position() geometry.Point      { return b.position }
func (b *base) Rotation() float64             { return b.rotation }
func (b *base) FillColor() colorful.Color     { return b.fill }
func (b *base) BorderColor() colorful.Color   { return b.border }
func (b *base) HasCustomRotationCenter() bool { return b.customCenter }
func (b *base) common() *base                 { return b }

// SetBorderColor sets the outline color.
func (b *base) SetBorderColor(c colorful.Color) { b.border = c }

// SetRotationCenter relocates the rotation pivot. It stays where it is until
// ResetRotationCenter is called, independent of later moves.
func (b *base) SetRotationCenter(p geometry.Point) {
	b.center = p
	b.customCenter = true
}

// ResetRotationCenter makes the rotation center follow the geometric center
// again.
func (b *base) ResetRotationCenter() {
	b.center = geometry.Point{}
	b.customCenter = false
}

func (b *base) rotationCenterOr(geometric geometry.Point) geometry.Point {
	if b.customCenter {
		return b.center
	}
	return geometric
}

// Rectangle is an axis-aligned box anchored at its top-left corner.
type Rectangle struct {
	base
	Width        float64
	Height       float64
	CornerRadius float64
}

// Kind returns KindRectangle.
func (r *Rectangle) Kind() Kind { return KindRectangle }

// GeometricCenter returns the middle of the unrotated footprint.
func (r *Rectangle) GeometricCenter() geometry.Point {
	return r.position.Add(r.Width/2, r.Height/2)
}

// RotationCenter returns the pivot used for rotation.
func (r *Rectangle) RotationCenter() geometry.Point {
	return r.rotationCenterOr(r.GeometricCenter())
}

// Footprint returns the unrotated rect covered by the rectangle.
func (r *Rectangle) Footprint() geometry.Rect {
	return geometry.Rect{X: r.position.X, Y: r.position.Y, Width: r.Width, Height: r.Height}
}

// SetFillColor sets the interior color.
func (r *Rectangle) SetFillColor(c colorful.Color) { r.fill = c }

// RegularPolygon is centered on its position.
type RegularPolygon struct {
	base
	sides      int
	sideLength float64
}

// Kind returns KindPolygon.
func (p *RegularPolygon) Kind() Kind { return KindPolygon }

// Sides returns the number of sides.
func (p *RegularPolygon) Sides() int { return p.sides }

// SideLength returns the edge length.
func (p *RegularPolygon) SideLength() float64 { return p.sideLength }

// SetSides changes the side count; the circumradius follows.
func (p *RegularPolygon) SetSides(n int) { p.sides = n }

// SetSideLength changes the edge length; the circumradius follows.
func (p *RegularPolygon) SetSideLength(l float64) { p.sideLength = l }

// Circumradius is derived from the current sides and side length on every
// call.
func (p *RegularPolygon) Circumradius() float64 {
	return geometry.Circumradius(p.sides, p.sideLength)
}

// Vertices returns the unrotated vertex set.
func (p *RegularPolygon) Vertices() []geometry.Point {
	return geometry.RegularPolygonVertices(p.position, p.sides, p.Circumradius())
}

// GeometricCenter is the polygon's position.
func (p *RegularPolygon) GeometricCenter() geometry.Point { return p.position }

// RotationCenter returns the pivot used for rotation.
func (p *RegularPolygon) RotationCenter() geometry.Point {
	return p.rotationCenterOr(p.GeometricCenter())
}

// SetFillColor sets the interior color.
func (p *RegularPolygon) SetFillColor(c colorful.Color) { p.fill = c }

// Group exclusively owns an ordered list of children. Its position is the
// minimum of the children's positions.
type Group struct {
	base
	children []Shape
}

// Kind returns KindGroup.
func (g *Group) Kind() Kind { return KindGroup }

// Children returns a copy of the child list.
func (g *Group) Children() []Shape {
	return slices.Clone(g.children)
}

// Len returns the number of direct children.
func (g *Group) Len() int { return len(g.children) }

// GeometricCenter is the center of the group's bounding box.
func (g *Group) GeometricCenter() geometry.Point {
	return BoundingBox(g).Center()
}

// RotationCenter returns the pivot used for rotation.
func (g *Group) RotationCenter() geometry.Point {
	return g.rotationCenterOr(g.GeometricCenter())
}

// SetFillColor sets the group's fill and every descendant's fill.
func (g *Group) SetFillColor(c colorful.Color) {
	g.fill = c
	for _, child := range g.children {
		SetFillColor(child, c)
	}
}

func (g *Group) insertChild(index int, s Shape) {
	if index < 0 || index > len(g.children) {
		index = len(g.children)
	}
	g.children = slices.Insert(g.children, index, s)
	s.common().parent = g.id
	g.refreshAnchor()
}

func (g *Group) removeChild(id string) int {
	idx := slices.IndexFunc(g.children, func(s Shape) bool { return s.ID() == id })
	if idx < 0 {
		return -1
	}
	g.children[idx].common().parent = ""
	g.children = slices.Delete(g.children, idx, idx+1)
	g.refreshAnchor()
	return idx
}

// refreshAnchor recomputes the anchor from the children. An empty group keeps
// its last anchor.
func (g *Group) refreshAnchor() {
	if len(g.children) == 0 {
		return
	}
	p := g.children[0].Position()
	for _, child := range g.children[1:] {
		cp := child.Position()
		p.X = min(p.X, cp.X)
		p.Y = min(p.Y, cp.Y)
	}
	g.position = p
}
