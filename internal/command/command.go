// Package command holds the reversible edits applied to a document.
//
// Commands refer to shapes by id and resolve them when they run. Deleting a
// shape and undoing the deletion puts a copy back under the same id, so a
// command further down the history still finds its target.
package command

import (
	"fmt"

	"github.com/inamate/sketchboard/internal/document"
)

// Command is a reversible unit of document mutation.
//
// For any document state S, Undo after Execute gives back S, and Redo after
// that gives back the state Execute produced.
type Command interface {
	// Execute applies the command for the first time.
	Execute() error

	// Undo reverses the last Execute or Redo.
	Undo() error

	// Redo applies the command again after Undo.
	Redo() error

	// Description returns a short human-readable label.
	Description() string
}

// Composite runs several commands as one history entry.
type Composite struct {
	Name     string
	Commands []Command
}

// NewComposite creates a composite of cmds.
func NewComposite(name string, cmds ...Command) *Composite {
	return &Composite{Name: name, Commands: cmds}
}

// Execute runs the sub-commands in order. The first failure stops the run;
// sub-commands that already ran are not rolled back.
func (c *Composite) Execute() error {
	for i, cmd := range c.Commands {
		if err := cmd.Execute(); err != nil {
			return fmt.Errorf("composite %q step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Undo reverses the sub-commands in strict reverse order.
func (c *Composite) Undo() error {
	for i := len(c.Commands) - 1; i >= 0; i-- {
		if err := c.Commands[i].Undo(); err != nil {
			return fmt.Errorf("undo composite %q step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Redo reapplies the sub-commands in order.
func (c *Composite) Redo() error {
	for i, cmd := range c.Commands {
		if err := cmd.Redo(); err != nil {
			return fmt.Errorf("redo composite %q step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Description returns the composite's name.
func (c *Composite) Description() string {
	if c.Name != "" {
		return c.Name
	}
	if len(c.Commands) == 1 {
		return c.Commands[0].Description()
	}
	return fmt.Sprintf("%d operations", len(c.Commands))
}

// Add appends a sub-command.
func (c *Composite) Add(cmd Command) {
	c.Commands = append(c.Commands, cmd)
}

// Len returns the number of sub-commands.
func (c *Composite) Len() int { return len(c.Commands) }

// IsEmpty reports whether the composite has no sub-commands.
func (c *Composite) IsEmpty() bool { return len(c.Commands) == 0 }

// Topmost keeps the ids that resolve, in order, dropping duplicates and any
// shape nested inside another listed shape.
func Topmost(doc *document.Document, ids []string) []string {
	listed := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := doc.Lookup(id); ok {
			listed[id] = true
		}
	}

	out := make([]string, 0, len(listed))
	seen := make(map[string]bool, len(listed))
	for _, id := range ids {
		if !listed[id] || seen[id] || hasListedAncestor(doc, id, listed) {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func hasListedAncestor(doc *document.Document, id string, listed map[string]bool) bool {
	s, _ := doc.Lookup(id)
	for parent := s.Parent(); parent != ""; {
		if listed[parent] {
			return true
		}
		p, ok := doc.Lookup(parent)
		if !ok {
			return false
		}
		parent = p.Parent()
	}
	return false
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
