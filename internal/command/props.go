package command

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/inamate/sketchboard/internal/document"
)

// EditProperties applies a property sheet to one shape.
type EditProperties struct {
	doc    *document.Document
	id     string
	props  document.Props
	before document.Memento
}

// NewEditProperties creates a command writing props onto id. The shape and
// its descendants are captured now so Undo can put every field back.
func NewEditProperties(doc *document.Document, id string, props document.Props) *EditProperties {
	c := &EditProperties{doc: doc, id: id, props: props}
	if s, ok := doc.Lookup(id); ok {
		c.before = document.Capture(s)
	}
	return c
}

// Execute applies the properties.
func (c *EditProperties) Execute() error {
	if err := c.doc.ApplyProps(c.id, c.props); err != nil {
		return fmt.Errorf("edit properties: %w", err)
	}
	return nil
}

// Undo restores the captured state.
func (c *EditProperties) Undo() error {
	c.doc.Restore(c.before)
	return nil
}

// Redo is Execute.
func (c *EditProperties) Redo() error { return c.Execute() }

// Description returns "Edit properties".
func (c *EditProperties) Description() string { return "Edit properties" }

// SetFill recolors shapes. Groups pass the color to their descendants.
type SetFill struct {
	doc    *document.Document
	ids    []string
	color  colorful.Color
	before []document.Memento
}

// NewSetFill creates a command filling ids with color.
func NewSetFill(doc *document.Document, ids []string, color colorful.Color) *SetFill {
	c := &SetFill{doc: doc, ids: Topmost(doc, ids), color: color}
	for _, id := range c.ids {
		s, _ := doc.Lookup(id)
		c.before = append(c.before, document.Capture(s))
	}
	return c
}

// Execute recolors every target.
func (c *SetFill) Execute() error {
	for _, id := range c.ids {
		if err := c.doc.SetFill(id, c.color); err != nil {
			return err
		}
	}
	return nil
}

// Undo restores the captured colors.
func (c *SetFill) Undo() error {
	for _, m := range c.before {
		c.doc.Restore(m)
	}
	return nil
}

// Redo is Execute.
func (c *SetFill) Redo() error { return c.Execute() }

// Description returns the new color.
func (c *SetFill) Description() string {
	return "Fill " + c.color.Hex()
}
