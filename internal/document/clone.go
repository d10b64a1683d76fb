package document

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/inamate/sketchboard/internal/geometry"
)

// IDSource mints shape ids.
type IDSource interface {
	NewID(kind Kind) string
}

// Clone returns a deep copy of s where every shape in the subtree carries a
// fresh id from ids. The copy is detached: its parent is "".
func Clone(s Shape, ids IDSource) Shape {
	return deepCopy(s, func(orig Shape) string { return ids.NewID(orig.Kind()) })
}

// Copy returns a deep, detached copy of s that keeps every id. Snapshots and
// deletion use it to hold shapes outside the document.
func Copy(s Shape) Shape {
	return deepCopy(s, func(orig Shape) string { return orig.ID() })
}

// CopyAll copies each shape with Copy.
func CopyAll(shapes []Shape) []Shape {
	out := make([]Shape, len(shapes))
	for i, s := range shapes {
		out[i] = Copy(s)
	}
	return out
}

func deepCopy(s Shape, idFor func(Shape) string) Shape {
	switch v := s.(type) {
	case *Rectangle:
		c := *v
		c.base = copyBase(&v.base, idFor(v))
		return &c
	case *RegularPolygon:
		c := *v
		c.base = copyBase(&v.base, idFor(v))
		return &c
	case *Group:
		g := &Group{base: copyBase(&v.base, idFor(v))}
		g.children = make([]Shape, 0, len(v.children))
		for _, child := range v.children {
			cc := deepCopy(child, idFor)
			cc.common().parent = g.id
			g.children = append(g.children, cc)
		}
		return g
	default:
		panic(fmt.Sprintf("document: unknown shape %T", s))
	}
}

func copyBase(b *base, id string) base {
	c := *b
	c.id = id
	c.parent = ""
	return c
}

// Props is the user-editable property set of one shape. Variant-specific
// fields are ignored for other variants.
type Props struct {
	Position    geometry.Point
	FillColor   colorful.Color
	BorderColor colorful.Color
	Rotation    float64

	Width        float64
	Height       float64
	CornerRadius float64

	Sides      int
	SideLength float64
}

// PropsOf reads the editable properties of s.
func PropsOf(s Shape) Props {
	p := Props{
		Position:    s.Position(),
		FillColor:   s.FillColor(),
		BorderColor: s.BorderColor(),
		Rotation:    s.Rotation(),
	}
	switch v := s.(type) {
	case *Rectangle:
		p.Width, p.Height, p.CornerRadius = v.Width, v.Height, v.CornerRadius
	case *RegularPolygon:
		p.Sides, p.SideLength = v.sides, v.sideLength
	case *Group:
	default:
		panic(fmt.Sprintf("document: unknown shape %T", s))
	}
	return p
}

// ApplyProps writes p onto s with editing semantics: a group moves its
// children, rotates them by the delta and recolors them.
func ApplyProps(s Shape, p Props) {
	SetPosition(s, p.Position)
	SetFillColor(s, p.FillColor)
	s.common().border = p.BorderColor
	SetRotation(s, p.Rotation)
	switch v := s.(type) {
	case *Rectangle:
		v.Width, v.Height, v.CornerRadius = p.Width, p.Height, p.CornerRadius
	case *RegularPolygon:
		v.sides, v.sideLength = p.Sides, p.SideLength
	case *Group:
	default:
		panic(fmt.Sprintf("document: unknown shape %T", s))
	}
}

// State is a restorable record of one shape's own fields, excluding its
// children and tree position.
type State struct {
	ID           string
	Props        Props
	Center       geometry.Point
	CustomCenter bool
}

// Memento captures a subtree so it can be put back exactly, whatever a
// command did to it in between. Entries are in post-order.
type Memento []State

// Capture records s and all of its descendants.
func Capture(s Shape) Memento {
	var m Memento
	var visit func(Shape)
	visit = func(n Shape) {
		if g, ok := n.(*Group); ok {
			for _, child := range g.children {
				visit(child)
			}
		}
		m = append(m, StateOf(n))
	}
	visit(s)
	return m
}

// StateOf records the own fields of s.
func StateOf(s Shape) State {
	b := s.common()
	return State{ID: s.ID(), Props: PropsOf(s), Center: b.center, CustomCenter: b.customCenter}
}

// RestoreState writes st onto s as stored, without passing position, color or
// rotation on to children. st.ID is ignored. Decoders use it to rebuild
// shapes exactly as saved.
func RestoreState(s Shape, st State) {
	restoreState(s, st)
}

// restoreState writes st onto s without propagating to children.
func restoreState(s Shape, st State) {
	b := s.common()
	b.position = st.Props.Position
	b.fill = st.Props.FillColor
	b.border = st.Props.BorderColor
	b.rotation = st.Props.Rotation
	b.center = st.Center
	b.customCenter = st.CustomCenter
	switch v := s.(type) {
	case *Rectangle:
		v.Width, v.Height, v.CornerRadius = st.Props.Width, st.Props.Height, st.Props.CornerRadius
	case *RegularPolygon:
		v.sides, v.sideLength = st.Props.Sides, st.Props.SideLength
	case *Group:
		v.refreshAnchor()
	default:
		panic(fmt.Sprintf("document: unknown shape %T", s))
	}
}
