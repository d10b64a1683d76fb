// Package selection turns pointer input into selection changes and commands.
package selection

import (
	"slices"

	"github.com/inamate/sketchboard/internal/command"
	"github.com/inamate/sketchboard/internal/document"
	"github.com/inamate/sketchboard/internal/geometry"
)

// CenterHandleRadius is how close a press must land to the rotation center
// of the single selected shape to grab it.
const CenterHandleRadius = 5

// Gesture is the pointer interaction in progress.
type Gesture int

const (
	GestureNone Gesture = iota
	GestureRectangle
	GestureMove
	GestureCenter
)

func (g Gesture) String() string {
	switch g {
	case GestureRectangle:
		return "rectangle"
	case GestureMove:
		return "move"
	case GestureCenter:
		return "center"
	default:
		return "none"
	}
}

// Outcome reports what a press did.
type Outcome struct {
	Gesture Gesture
	// Hit is the id of the topmost shape under the pointer, if any.
	Hit string
}

// Preview describes an unfinished gesture for drawing feedback. The document
// is not touched until the gesture is released.
type Preview struct {
	Gesture Gesture
	// Rect is the rubber band of a rectangle gesture.
	Rect geometry.Rect
	// DX and DY are the accumulated offset of a move or center gesture.
	DX, DY float64
	// Targets are the shapes a move or center gesture applies to.
	Targets []string
}

// Resolver is the pointer state machine for one document. It edits the
// selection directly and hands back commands for everything else.
type Resolver struct {
	doc *document.Document

	gesture Gesture
	origin  geometry.Point
	current geometry.Point
	targets []string
}

// New creates a resolver bound to doc.
func New(doc *document.Document) *Resolver {
	return &Resolver{doc: doc}
}

// HitTest returns the topmost top-level shape containing p. Shapes drawn
// later win.
func (r *Resolver) HitTest(p geometry.Point) (document.Shape, bool) {
	shapes := r.doc.Shapes()
	for i := len(shapes) - 1; i >= 0; i-- {
		if document.Contains(shapes[i], p) {
			return shapes[i], true
		}
	}
	return nil, false
}

// Press starts a gesture at p. With additive set a press on a shape toggles
// its membership, and a press on empty space starts a rectangle gesture that
// keeps the current selection.
func (r *Resolver) Press(p geometry.Point, additive bool) Outcome {
	r.reset()
	r.origin, r.current = p, p

	var hitID string
	hit, ok := r.HitTest(p)
	if ok {
		hitID = hit.ID()
	}

	if sel := r.doc.SelectedShapes(); len(sel) == 1 && sel[0].RotationCenter().Near(p, CenterHandleRadius) {
		r.gesture = GestureCenter
		r.targets = []string{sel[0].ID()}
		return Outcome{Gesture: r.gesture, Hit: hitID}
	}

	switch {
	case additive && ok:
		r.doc.ToggleSelection(hitID)
	case !ok:
		if !additive {
			r.doc.ClearSelection()
		}
		r.gesture = GestureRectangle
	default:
		if !r.doc.IsSelected(hitID) {
			r.doc.Select(hitID)
		}
		r.gesture = GestureMove
		r.targets = r.doc.Selection()
	}
	return Outcome{Gesture: r.gesture, Hit: hitID}
}

// Drag updates the gesture in progress.
func (r *Resolver) Drag(p geometry.Point) {
	if r.gesture == GestureNone {
		return
	}
	r.current = p
}

// Release ends the gesture at p. A rectangle gesture adds every top-level
// shape whose bounding box meets the rectangle to the selection and returns
// no command. A move or center gesture that went somewhere returns the
// command to submit.
func (r *Resolver) Release(p geometry.Point) (command.Command, bool) {
	if r.gesture == GestureNone {
		return nil, false
	}
	r.current = p
	defer r.reset()

	dx, dy := r.current.X-r.origin.X, r.current.Y-r.origin.Y
	switch r.gesture {
	case GestureRectangle:
		r.doc.AddToSelection(r.Enclosed(geometry.NormalizedRect(r.origin, r.current))...)
		return nil, false
	case GestureMove:
		if (dx == 0 && dy == 0) || len(r.targets) == 0 {
			return nil, false
		}
		return command.NewMove(r.doc, r.targets, dx, dy), true
	case GestureCenter:
		if dx == 0 && dy == 0 {
			return nil, false
		}
		s, ok := r.doc.Lookup(r.targets[0])
		if !ok {
			return nil, false
		}
		return command.NewSetRotationCenter(r.doc, r.targets, s.RotationCenter().Add(dx, dy)), true
	}
	return nil, false
}

// Enclosed returns the top-level shapes whose bounding box intersects rect.
// An empty rect selects nothing.
func (r *Resolver) Enclosed(rect geometry.Rect) []string {
	if rect.IsEmpty() {
		return nil
	}
	var ids []string
	for _, s := range r.doc.Shapes() {
		if rect.Intersects(document.BoundingBox(s)) {
			ids = append(ids, s.ID())
		}
	}
	return ids
}

// Preview returns the state of the gesture in progress.
func (r *Resolver) Preview() Preview {
	pv := Preview{Gesture: r.gesture, Targets: slices.Clone(r.targets)}
	switch r.gesture {
	case GestureRectangle:
		pv.Rect = geometry.NormalizedRect(r.origin, r.current)
	case GestureMove, GestureCenter:
		pv.DX, pv.DY = r.current.X-r.origin.X, r.current.Y-r.origin.Y
	}
	return pv
}

// Active returns the gesture in progress.
func (r *Resolver) Active() Gesture { return r.gesture }

// Cancel drops the gesture in progress. Selection changes made by Press
// stay.
func (r *Resolver) Cancel() { r.reset() }

func (r *Resolver) reset() {
	r.gesture = GestureNone
	r.targets = nil
}
