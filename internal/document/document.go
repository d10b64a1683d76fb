package document

import (
	"errors"
	"fmt"
	"slices"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/inamate/sketchboard/internal/geometry"
)

var (
	ErrNilShape     = errors.New("nil shape")
	ErrDuplicateID  = errors.New("duplicate shape id")
	ErrNotFound     = errors.New("shape not found")
	ErrNotContainer = errors.New("shape is not a group")
)

// Placement locates a shape inside its container. Parent "" is the document
// root.
type Placement struct {
	Parent string
	Index  int
}

// Document is the scene: an ordered list of top-level shapes, an index over
// every reachable shape, and the selection set.
//
// Readers may use any method. Methods that change the tree or the selection
// are meant to be called by commands (and the selection resolver) only, one
// at a time; the document does no locking.
type Document struct {
	root     []Shape
	index    map[string]Shape
	selected map[string]struct{}
}

// New creates an empty document.
func New() *Document {
	return &Document{
		index:    make(map[string]Shape),
		selected: make(map[string]struct{}),
	}
}

// --- Queries ---

// Shapes returns the top-level shapes in drawing order.
func (d *Document) Shapes() []Shape {
	return slices.Clone(d.root)
}

// Len returns the number of top-level shapes.
func (d *Document) Len() int { return len(d.root) }

// Lookup finds a reachable shape by id, nested ones included.
func (d *Document) Lookup(id string) (Shape, bool) {
	s, ok := d.index[id]
	return s, ok
}

// Walk visits every reachable shape depth-first in drawing order. Returning
// false from fn stops the walk.
func (d *Document) Walk(fn func(Shape) bool) {
	var visit func([]Shape) bool
	visit = func(shapes []Shape) bool {
		for _, s := range shapes {
			if !fn(s) {
				return false
			}
			if g, ok := s.(*Group); ok && !visit(g.children) {
				return false
			}
		}
		return true
	}
	visit(d.root)
}

// PlacementOf returns where id currently sits.
func (d *Document) PlacementOf(id string) (Placement, error) {
	s, ok := d.index[id]
	if !ok {
		return Placement{}, fmt.Errorf("placement of %s: %w", id, ErrNotFound)
	}
	siblings, err := d.container(s.Parent())
	if err != nil {
		return Placement{}, err
	}
	idx := slices.IndexFunc(siblings, func(o Shape) bool { return o.ID() == id })
	return Placement{Parent: s.Parent(), Index: idx}, nil
}

// Selection returns the selected ids in drawing order.
func (d *Document) Selection() []string {
	ids := make([]string, 0, len(d.selected))
	d.Walk(func(s Shape) bool {
		if _, ok := d.selected[s.ID()]; ok {
			ids = append(ids, s.ID())
		}
		return true
	})
	return ids
}

// SelectedShapes returns the selected shapes in drawing order.
func (d *Document) SelectedShapes() []Shape {
	ids := d.Selection()
	shapes := make([]Shape, len(ids))
	for i, id := range ids {
		shapes[i] = d.index[id]
	}
	return shapes
}

// IsSelected reports whether id is in the selection set.
func (d *Document) IsSelected(id string) bool {
	_, ok := d.selected[id]
	return ok
}

// SelectionLen returns the size of the selection set.
func (d *Document) SelectionLen() int { return len(d.selected) }

// --- Tree edits ---

// Insert places s into the group parent ("" for the root) at index. A
// negative or out-of-range index appends.
func (d *Document) Insert(parent string, index int, s Shape) error {
	if s == nil {
		return ErrNilShape
	}
	var dup error
	walkSubtree(s, func(n Shape) {
		if _, exists := d.index[n.ID()]; exists && dup == nil {
			dup = fmt.Errorf("insert %s: %w", n.ID(), ErrDuplicateID)
		}
	})
	if dup != nil {
		return dup
	}

	if parent == "" {
		if index < 0 || index > len(d.root) {
			index = len(d.root)
		}
		d.root = slices.Insert(d.root, index, s)
		s.common().parent = ""
	} else {
		g, err := d.group(parent)
		if err != nil {
			return fmt.Errorf("insert %s: %w", s.ID(), err)
		}
		g.insertChild(index, s)
		d.refreshAncestors(g.Parent())
	}

	walkSubtree(s, func(n Shape) { d.index[n.ID()] = n })
	return nil
}

// Remove detaches id from its container and returns where it was. The shape
// and its descendants leave the index and the selection set.
func (d *Document) Remove(id string) (Placement, error) {
	s, ok := d.index[id]
	if !ok {
		return Placement{}, fmt.Errorf("remove %s: %w", id, ErrNotFound)
	}

	parent := s.Parent()
	var idx int
	if parent == "" {
		idx = slices.IndexFunc(d.root, func(o Shape) bool { return o.ID() == id })
		d.root = slices.Delete(d.root, idx, idx+1)
	} else {
		g, err := d.group(parent)
		if err != nil {
			return Placement{}, fmt.Errorf("remove %s: %w", id, err)
		}
		idx = g.removeChild(id)
		d.refreshAncestors(g.Parent())
	}

	walkSubtree(s, func(n Shape) {
		delete(d.index, n.ID())
		delete(d.selected, n.ID())
	})
	return Placement{Parent: parent, Index: idx}, nil
}

// Replace swaps the whole tree for shapes. Ids must be unique across the new
// tree. The selection is cleared.
func (d *Document) Replace(shapes []Shape) error {
	index := make(map[string]Shape)
	for _, s := range shapes {
		if s == nil {
			return ErrNilShape
		}
		var err error
		walkSubtree(s, func(n Shape) {
			if _, exists := index[n.ID()]; exists && err == nil {
				err = fmt.Errorf("replace: %s: %w", n.ID(), ErrDuplicateID)
			}
			index[n.ID()] = n
		})
		if err != nil {
			return err
		}
	}

	for _, s := range shapes {
		s.common().parent = ""
		relinkChildren(s)
	}
	d.root = slices.Clone(shapes)
	d.index = index
	clear(d.selected)
	return nil
}

// Dissolve removes the group id from its container and splices its children
// into the container at the group's index. The returned group is detached and
// empty.
func (d *Document) Dissolve(id string) (*Group, Placement, error) {
	g, err := d.group(id)
	if err != nil {
		return nil, Placement{}, fmt.Errorf("dissolve: %w", err)
	}
	pl, err := d.Remove(id)
	if err != nil {
		return nil, Placement{}, err
	}

	children := g.children
	g.children = nil
	for i, child := range children {
		child.common().parent = ""
		if err := d.Insert(pl.Parent, pl.Index+i, child); err != nil {
			return nil, Placement{}, fmt.Errorf("dissolve %s: %w", id, err)
		}
	}
	return g, pl, nil
}

// Regroup moves the live shapes named by ids into g, in order, and inserts g
// at pl. Whatever children g held before are dropped.
func (d *Document) Regroup(g *Group, ids []string, pl Placement) error {
	if g == nil {
		return ErrNilShape
	}
	if _, exists := d.index[g.id]; exists {
		return fmt.Errorf("regroup %s: %w", g.id, ErrDuplicateID)
	}
	children := make([]Shape, 0, len(ids))
	for _, id := range ids {
		s, ok := d.index[id]
		if !ok {
			return fmt.Errorf("regroup %s: child %s: %w", g.id, id, ErrNotFound)
		}
		children = append(children, s)
	}
	for _, s := range children {
		if _, err := d.Remove(s.ID()); err != nil {
			return fmt.Errorf("regroup %s: %w", g.id, err)
		}
	}

	g.children = nil
	for _, s := range children {
		g.insertChild(-1, s)
	}
	return d.Insert(pl.Parent, pl.Index, g)
}

// MoveShape translates id by (dx, dy) and refreshes the anchors above it.
func (d *Document) MoveShape(id string, dx, dy float64) error {
	s, ok := d.index[id]
	if !ok {
		return fmt.Errorf("move %s: %w", id, ErrNotFound)
	}
	Move(s, dx, dy)
	d.refreshAncestors(s.Parent())
	return nil
}

// RotateShape sets the rotation of id.
func (d *Document) RotateShape(id string, angle float64) error {
	s, ok := d.index[id]
	if !ok {
		return fmt.Errorf("rotate %s: %w", id, ErrNotFound)
	}
	SetRotation(s, angle)
	return nil
}

// SetRotationCenter relocates the pivot of id; reset snaps it back to the
// geometric center.
func (d *Document) SetRotationCenter(id string, p geometry.Point, reset bool) error {
	s, ok := d.index[id]
	if !ok {
		return fmt.Errorf("set rotation center %s: %w", id, ErrNotFound)
	}
	if reset {
		s.common().ResetRotationCenter()
	} else {
		s.common().SetRotationCenter(p)
	}
	return nil
}

// SetFill recolors id (and its descendants for a group).
func (d *Document) SetFill(id string, c colorful.Color) error {
	s, ok := d.index[id]
	if !ok {
		return fmt.Errorf("set fill %s: %w", id, ErrNotFound)
	}
	SetFillColor(s, c)
	return nil
}

// ApplyProps edits the properties of id.
func (d *Document) ApplyProps(id string, p Props) error {
	s, ok := d.index[id]
	if !ok {
		return fmt.Errorf("edit %s: %w", id, ErrNotFound)
	}
	ApplyProps(s, p)
	d.refreshAncestors(s.Parent())
	return nil
}

// Restore puts back the state recorded by Capture. Shapes that are no longer
// reachable are skipped.
func (d *Document) Restore(m Memento) {
	for _, st := range m {
		s, ok := d.index[st.ID]
		if !ok {
			continue
		}
		restoreState(s, st)
		d.refreshAncestors(s.Parent())
	}
}

// --- Selection edits ---

// Select replaces the selection. Unknown ids are ignored.
func (d *Document) Select(ids ...string) {
	clear(d.selected)
	d.AddToSelection(ids...)
}

// AddToSelection unions ids into the selection. Unknown ids are ignored.
func (d *Document) AddToSelection(ids ...string) {
	for _, id := range ids {
		if _, ok := d.index[id]; ok {
			d.selected[id] = struct{}{}
		}
	}
}

// Deselect removes ids from the selection.
func (d *Document) Deselect(ids ...string) {
	for _, id := range ids {
		delete(d.selected, id)
	}
}

// ToggleSelection flips the membership of id.
func (d *Document) ToggleSelection(id string) {
	if d.IsSelected(id) {
		delete(d.selected, id)
		return
	}
	d.AddToSelection(id)
}

// ClearSelection empties the selection.
func (d *Document) ClearSelection() {
	clear(d.selected)
}

// --- helpers ---

func (d *Document) group(id string) (*Group, error) {
	s, ok := d.index[id]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", id, ErrNotFound)
	}
	g, ok := s.(*Group)
	if !ok {
		return nil, fmt.Errorf("group %s: %w", id, ErrNotContainer)
	}
	return g, nil
}

func (d *Document) container(parent string) ([]Shape, error) {
	if parent == "" {
		return d.root, nil
	}
	g, err := d.group(parent)
	if err != nil {
		return nil, err
	}
	return g.children, nil
}

// refreshAncestors recomputes group anchors from id up to the root.
func (d *Document) refreshAncestors(id string) {
	for id != "" {
		s, ok := d.index[id]
		if !ok {
			return
		}
		if g, ok := s.(*Group); ok {
			g.refreshAnchor()
		}
		id = s.Parent()
	}
}

func walkSubtree(s Shape, fn func(Shape)) {
	fn(s)
	if g, ok := s.(*Group); ok {
		for _, child := range g.children {
			walkSubtree(child, fn)
		}
	}
}

func relinkChildren(s Shape) {
	g, ok := s.(*Group)
	if !ok {
		return
	}
	for _, child := range g.children {
		child.common().parent = g.id
		relinkChildren(child)
	}
	g.refreshAnchor()
}
