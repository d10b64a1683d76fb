package command

import (
	"fmt"

	"github.com/inamate/sketchboard/internal/document"
)

// AddShape inserts a shape at the end of the top-level list.
type AddShape struct {
	doc   *document.Document
	shape document.Shape
}

// NewAddShape creates a command adding shape to doc.
func NewAddShape(doc *document.Document, shape document.Shape) *AddShape {
	return &AddShape{doc: doc, shape: shape}
}

// ID returns the id of the added shape.
func (c *AddShape) ID() string { return c.shape.ID() }

// Execute inserts the shape at the root.
func (c *AddShape) Execute() error {
	if err := c.doc.Insert("", -1, c.shape); err != nil {
		return fmt.Errorf("add shape: %w", err)
	}
	return nil
}

// Undo removes the shape, which also drops it from the selection. The live
// instance is kept for Redo.
func (c *AddShape) Undo() error {
	live, ok := c.doc.Lookup(c.shape.ID())
	if !ok {
		return fmt.Errorf("undo add shape %s: %w", c.shape.ID(), document.ErrNotFound)
	}
	if _, err := c.doc.Remove(live.ID()); err != nil {
		return fmt.Errorf("undo add shape: %w", err)
	}
	c.shape = live
	return nil
}

// Redo inserts the shape again.
func (c *AddShape) Redo() error { return c.Execute() }

// Description names the added kind.
func (c *AddShape) Description() string {
	return fmt.Sprintf("Add %s", c.shape.Kind())
}

// Delete removes shapes from the document.
type Delete struct {
	doc    *document.Document
	copies []document.Shape

	selection  []string
	placements []document.Placement
}

// NewDelete creates a command deleting ids. The targets are deep-copied now,
// ids included, so Undo can restore them whatever happens to the live
// instances. Unknown ids and shapes nested in another target are skipped.
func NewDelete(doc *document.Document, ids ...string) *Delete {
	c := &Delete{doc: doc}
	for _, id := range Topmost(doc, ids) {
		s, _ := doc.Lookup(id)
		c.copies = append(c.copies, document.Copy(s))
	}
	return c
}

// Len returns the number of shapes the command deletes.
func (c *Delete) Len() int { return len(c.copies) }

// Execute records the selection, clears it and removes each target.
func (c *Delete) Execute() error {
	c.selection = c.doc.Selection()
	c.doc.ClearSelection()

	c.placements = c.placements[:0]
	for _, s := range c.copies {
		pl, err := c.doc.Remove(s.ID())
		if err != nil {
			return fmt.Errorf("delete: %w", err)
		}
		c.placements = append(c.placements, pl)
	}
	return nil
}

// Undo reinserts copies of the stored shapes where they were, in reverse
// removal order, and restores the selection.
func (c *Delete) Undo() error {
	for i := len(c.placements) - 1; i >= 0; i-- {
		pl := c.placements[i]
		if err := c.doc.Insert(pl.Parent, pl.Index, document.Copy(c.copies[i])); err != nil {
			return fmt.Errorf("undo delete: %w", err)
		}
	}
	c.doc.Select(c.selection...)
	return nil
}

// Redo deletes the shapes again.
func (c *Delete) Redo() error { return c.Execute() }

// Description returns "Delete N shapes".
func (c *Delete) Description() string {
	return "Delete " + plural(len(c.copies), "shape")
}
