package command

import (
	"fmt"

	"github.com/inamate/sketchboard/internal/document"
	"github.com/inamate/sketchboard/internal/geometry"
)

// Move translates shapes by a fixed delta.
type Move struct {
	doc    *document.Document
	ids    []string
	dx, dy float64
}

// NewMove creates a command moving ids by (dx, dy).
func NewMove(doc *document.Document, ids []string, dx, dy float64) *Move {
	return &Move{doc: doc, ids: Topmost(doc, ids), dx: dx, dy: dy}
}

// Execute moves every target by the delta.
func (c *Move) Execute() error { return c.apply(c.dx, c.dy) }

// Undo moves every target back by the negated delta.
func (c *Move) Undo() error { return c.apply(-c.dx, -c.dy) }

// Redo is Execute.
func (c *Move) Redo() error { return c.Execute() }

// Description returns "Move N shapes".
func (c *Move) Description() string {
	return "Move " + plural(len(c.ids), "shape")
}

func (c *Move) apply(dx, dy float64) error {
	for _, id := range c.ids {
		if err := c.doc.MoveShape(id, dx, dy); err != nil {
			return err
		}
	}
	return nil
}

// Rotate sets or adjusts the rotation of shapes.
type Rotate struct {
	doc      *document.Document
	ids      []string
	amount   float64
	absolute bool
	original map[string]float64
}

// NewRotate creates a rotation command. With absolute set every target is
// set to amount; otherwise amount is added to each target's rotation. The
// current rotations are captured now, so every Undo returns to them.
func NewRotate(doc *document.Document, ids []string, amount float64, absolute bool) *Rotate {
	c := &Rotate{
		doc:      doc,
		ids:      Topmost(doc, ids),
		amount:   amount,
		absolute: absolute,
		original: make(map[string]float64),
	}
	if absolute {
		c.amount = geometry.NormalizeDegrees(amount)
	}
	for _, id := range c.ids {
		s, _ := doc.Lookup(id)
		c.original[id] = s.Rotation()
	}
	return c
}

// Execute applies the rotation.
func (c *Rotate) Execute() error {
	for _, id := range c.ids {
		target := c.amount
		if !c.absolute {
			target = geometry.NormalizeDegrees(c.original[id] + c.amount)
		}
		if err := c.doc.RotateShape(id, target); err != nil {
			return err
		}
	}
	return nil
}

// Undo restores the captured rotations.
func (c *Rotate) Undo() error {
	for _, id := range c.ids {
		if err := c.doc.RotateShape(id, c.original[id]); err != nil {
			return fmt.Errorf("undo rotate: %w", err)
		}
	}
	return nil
}

// Redo is Execute.
func (c *Rotate) Redo() error { return c.Execute() }

// Description describes the rotation.
func (c *Rotate) Description() string {
	if c.absolute {
		return fmt.Sprintf("Rotate to %g°", c.amount)
	}
	return fmt.Sprintf("Rotate by %g°", c.amount)
}

type pivot struct {
	point  geometry.Point
	custom bool
}

// RotationCenter relocates or resets the rotation center of shapes.
type RotationCenter struct {
	doc      *document.Document
	ids      []string
	point    geometry.Point
	reset    bool
	original map[string]pivot
}

// NewSetRotationCenter creates a command moving the rotation center of ids
// to p.
func NewSetRotationCenter(doc *document.Document, ids []string, p geometry.Point) *RotationCenter {
	return newRotationCenter(doc, ids, p, false)
}

// NewResetRotationCenter creates a command snapping the rotation center of
// ids back to their geometric centers.
func NewResetRotationCenter(doc *document.Document, ids []string) *RotationCenter {
	return newRotationCenter(doc, ids, geometry.Point{}, true)
}

func newRotationCenter(doc *document.Document, ids []string, p geometry.Point, reset bool) *RotationCenter {
	c := &RotationCenter{doc: doc, point: p, reset: reset, original: make(map[string]pivot)}
	for _, id := range ids {
		s, ok := doc.Lookup(id)
		if !ok {
			continue
		}
		if _, dup := c.original[id]; dup {
			continue
		}
		c.ids = append(c.ids, id)
		c.original[id] = pivot{point: s.RotationCenter(), custom: s.HasCustomRotationCenter()}
	}
	return c
}

// Execute relocates or resets the centers.
func (c *RotationCenter) Execute() error {
	for _, id := range c.ids {
		if err := c.doc.SetRotationCenter(id, c.point, c.reset); err != nil {
			return err
		}
	}
	return nil
}

// Undo restores each center and whether it was relocated.
func (c *RotationCenter) Undo() error {
	for _, id := range c.ids {
		o := c.original[id]
		if err := c.doc.SetRotationCenter(id, o.point, !o.custom); err != nil {
			return fmt.Errorf("undo rotation center: %w", err)
		}
	}
	return nil
}

// Redo is Execute.
func (c *RotationCenter) Redo() error { return c.Execute() }

// Description describes the change.
func (c *RotationCenter) Description() string {
	if c.reset {
		return "Reset rotation center"
	}
	return "Set rotation center"
}
