package command

import (
	"fmt"
	"slices"

	"github.com/inamate/sketchboard/internal/document"
)

// Group wraps two or more shapes in a new group at the end of the top-level
// list.
type Group struct {
	doc     *document.Document
	factory *document.Factory
	ids     []string

	groupID    string
	group      *document.Group
	selection  []string
	placements []document.Placement
}

// NewGroup creates a command grouping ids in the given order. With fewer
// than two resolvable shapes the command does nothing.
func NewGroup(doc *document.Document, factory *document.Factory, ids []string) *Group {
	return &Group{doc: doc, factory: factory, ids: Topmost(doc, ids)}
}

// GroupID returns the id of the group the command creates. It is empty until
// the first Execute.
func (c *Group) GroupID() string { return c.groupID }

// Execute removes the shapes from their containers, groups them and selects
// the group.
func (c *Group) Execute() error {
	if len(c.ids) < 2 {
		return nil
	}
	if c.groupID == "" {
		c.groupID = c.factory.IDs().NewID(document.KindGroup)
	}

	c.selection = c.doc.Selection()
	c.placements = c.placements[:0]
	members := make([]document.Shape, 0, len(c.ids))
	for _, id := range c.ids {
		s, ok := c.doc.Lookup(id)
		if !ok {
			return fmt.Errorf("group %s: %w", id, document.ErrNotFound)
		}
		pl, err := c.doc.Remove(id)
		if err != nil {
			return fmt.Errorf("group: %w", err)
		}
		c.placements = append(c.placements, pl)
		members = append(members, s)
	}

	c.group = document.NewGroup(c.groupID, members...)
	if err := c.doc.Insert("", -1, c.group); err != nil {
		return fmt.Errorf("group: %w", err)
	}
	c.doc.Select(c.groupID)
	return nil
}

// Undo dissolves the group, returns each member to its former container and
// restores the previous selection.
func (c *Group) Undo() error {
	if c.group == nil {
		return nil
	}
	live, ok := c.doc.Lookup(c.groupID)
	if !ok {
		return fmt.Errorf("undo group %s: %w", c.groupID, document.ErrNotFound)
	}
	g, ok := live.(*document.Group)
	if !ok {
		return fmt.Errorf("undo group %s: %w", c.groupID, document.ErrNotContainer)
	}

	members := g.Children()
	if _, err := c.doc.Remove(c.groupID); err != nil {
		return fmt.Errorf("undo group: %w", err)
	}
	for i := len(c.placements) - 1; i >= 0; i-- {
		idx := slices.IndexFunc(members, func(s document.Shape) bool { return s.ID() == c.ids[i] })
		if idx < 0 {
			return fmt.Errorf("undo group: member %s: %w", c.ids[i], document.ErrNotFound)
		}
		pl := c.placements[i]
		if err := c.doc.Insert(pl.Parent, pl.Index, members[idx]); err != nil {
			return fmt.Errorf("undo group: %w", err)
		}
	}

	c.doc.Select(c.selection...)
	c.group = nil
	return nil
}

// Redo groups the shapes again under the same group id, so later commands
// that refer to the group still find it.
func (c *Group) Redo() error { return c.Execute() }

// Description returns "Group N shapes".
func (c *Group) Description() string {
	return "Group " + plural(len(c.ids), "shape")
}

// Ungroup dissolves a group into its container.
type Ungroup struct {
	doc      *document.Document
	groupID  string
	children []string

	group     *document.Group
	placement document.Placement
	selection []string
	additive  bool
}

// NewUngroup creates a command dissolving the group id. The group's children
// are captured now. If id is not a group the command does nothing.
func NewUngroup(doc *document.Document, id string) *Ungroup {
	c := &Ungroup{doc: doc}
	s, ok := doc.Lookup(id)
	if !ok {
		return c
	}
	g, ok := s.(*document.Group)
	if !ok {
		return c
	}
	c.groupID = id
	for _, child := range g.Children() {
		c.children = append(c.children, child.ID())
	}
	return c
}

// KeepSelection makes the command add the children to the selection instead
// of replacing it. Batches use it for every group after the first.
func (c *Ungroup) KeepSelection() *Ungroup {
	c.additive = true
	return c
}

// Children returns the ids of the captured children.
func (c *Ungroup) Children() []string { return slices.Clone(c.children) }

// Execute splices the children in place of the group and selects them.
func (c *Ungroup) Execute() error {
	if c.groupID == "" {
		return nil
	}
	c.selection = c.doc.Selection()

	g, pl, err := c.doc.Dissolve(c.groupID)
	if err != nil {
		return fmt.Errorf("ungroup: %w", err)
	}
	c.group = g
	c.placement = pl

	if c.additive {
		c.doc.Deselect(c.groupID)
		c.doc.AddToSelection(c.children...)
	} else {
		c.doc.Select(c.children...)
	}
	return nil
}

// Undo gathers the children back into the same group instance, puts it where
// it was and selects it again.
func (c *Ungroup) Undo() error {
	if c.group == nil {
		return nil
	}
	if err := c.doc.Regroup(c.group, c.children, c.placement); err != nil {
		return fmt.Errorf("undo ungroup: %w", err)
	}
	c.doc.Select(c.selection...)
	c.doc.AddToSelection(c.groupID)
	return nil
}

// Redo dissolves the group again.
func (c *Ungroup) Redo() error { return c.Execute() }

// Description returns "Ungroup".
func (c *Ungroup) Description() string { return "Ungroup" }
