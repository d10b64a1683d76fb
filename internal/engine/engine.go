package engine

import (
	"fmt"
	"log/slog"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/inamate/sketchboard/internal/command"
	"github.com/inamate/sketchboard/internal/document"
	"github.com/inamate/sketchboard/internal/geometry"
	"github.com/inamate/sketchboard/internal/history"
	"github.com/inamate/sketchboard/internal/selection"
)

// DuplicateOffset is how far Duplicate shifts the copies.
const DuplicateOffset = 10

// Engine owns the document, its history and the pointer state machine.
// Everything that changes the document goes through Submit, Undo or Redo.
//
// An Engine is not safe for concurrent use; callers serialize access.
type Engine struct {
	doc      *document.Document
	factory  *document.Factory
	history  *history.Manager
	resolver *selection.Resolver
}

type options struct {
	limit  int
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*options)

// WithHistoryLimit caps the undo stack.
func WithHistoryLimit(n int) Option {
	return func(o *options) { o.limit = n }
}

// WithLogger sets the logger used for command failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New creates an engine with an empty document.
func New(factory *document.Factory, opts ...Option) *Engine {
	o := options{limit: history.DefaultLimit, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	doc := document.New()
	return &Engine{
		doc:      doc,
		factory:  factory,
		history:  history.New(history.WithLimit(o.limit), history.WithLogger(o.logger)),
		resolver: selection.New(doc),
	}
}

// Factory returns the factory new shapes should come from.
func (e *Engine) Factory() *document.Factory { return e.factory }

// --- Queries ---

// Shapes returns the top-level shapes in drawing order.
func (e *Engine) Shapes() []document.Shape { return e.doc.Shapes() }

// Selection returns the selected ids in drawing order.
func (e *Engine) Selection() []string { return e.doc.Selection() }

// Lookup finds a shape by id, nested shapes included.
func (e *Engine) Lookup(id string) (document.Shape, bool) { return e.doc.Lookup(id) }

// CanUndo reports whether there is anything to undo.
func (e *Engine) CanUndo() bool { return e.history.CanUndo() }

// CanRedo reports whether there is anything to redo.
func (e *Engine) CanRedo() bool { return e.history.CanRedo() }

// PeekUndo describes what Undo would reverse.
func (e *Engine) PeekUndo() (string, bool) { return e.history.PeekUndo() }

// PeekRedo describes what Redo would reapply.
func (e *Engine) PeekRedo() (string, bool) { return e.history.PeekRedo() }

// --- Mutation ---

// Submit runs cmd through the history.
func (e *Engine) Submit(cmd command.Command) error {
	return e.history.Do(cmd)
}

// Undo reverses the newest command.
func (e *Engine) Undo() error { return e.history.Undo() }

// Redo reapplies the last undone command.
func (e *Engine) Redo() error { return e.history.Redo() }

// AddShape adds s at the top of the drawing order.
func (e *Engine) AddShape(s document.Shape) error {
	return e.Submit(command.NewAddShape(e.doc, s))
}

// AddRectangle creates a rectangle and adds it. It returns the new id.
func (e *Engine) AddRectangle(x, y, width, height float64) (string, error) {
	if err := document.CheckRectangle(width, height); err != nil {
		return "", err
	}
	r := e.factory.NewRectangle(x, y, width, height)
	return r.ID(), e.AddShape(r)
}

// AddPolygon creates a regular polygon and adds it. It returns the new id.
func (e *Engine) AddPolygon(x, y float64, sides int, sideLength float64) (string, error) {
	if err := document.CheckPolygon(sides, sideLength); err != nil {
		return "", err
	}
	p := e.factory.NewRegularPolygon(x, y, sides, sideLength)
	return p.ID(), e.AddShape(p)
}

// DeleteSelected deletes the selected shapes.
func (e *Engine) DeleteSelected() error {
	cmd := command.NewDelete(e.doc, e.doc.Selection()...)
	if cmd.Len() == 0 {
		return nil
	}
	return e.Submit(cmd)
}

// MoveSelected moves the selection by (dx, dy).
func (e *Engine) MoveSelected(dx, dy float64) error {
	sel := e.doc.Selection()
	if len(sel) == 0 || (dx == 0 && dy == 0) {
		return nil
	}
	return e.Submit(command.NewMove(e.doc, sel, dx, dy))
}

// RotateSelected rotates the selection, to amount when absolute is set and
// by amount otherwise.
func (e *Engine) RotateSelected(amount float64, absolute bool) error {
	sel := e.doc.Selection()
	if len(sel) == 0 {
		return nil
	}
	return e.Submit(command.NewRotate(e.doc, sel, amount, absolute))
}

// GroupSelected groups the selection and returns the group id. Fewer than two
// selected shapes is a no-op and returns "".
func (e *Engine) GroupSelected() (string, error) {
	if len(command.Topmost(e.doc, e.doc.Selection())) < 2 {
		return "", nil
	}
	cmd := command.NewGroup(e.doc, e.factory, e.doc.Selection())
	if err := e.Submit(cmd); err != nil {
		return "", err
	}
	return cmd.GroupID(), nil
}

// UngroupSelected dissolves every selected group as one history entry and
// selects all of their children. Selected shapes that are not groups are
// ignored and leave the selection.
func (e *Engine) UngroupSelected() error {
	batch := command.NewComposite("Ungroup")
	for _, s := range e.doc.SelectedShapes() {
		if s.Kind() != document.KindGroup {
			continue
		}
		cmd := command.NewUngroup(e.doc, s.ID())
		if !batch.IsEmpty() {
			cmd.KeepSelection()
		}
		batch.Add(cmd)
	}
	if batch.IsEmpty() {
		return nil
	}
	return e.Submit(batch)
}

// SetRotationCenterSelected relocates the rotation center of the selection.
func (e *Engine) SetRotationCenterSelected(p geometry.Point) error {
	sel := e.doc.Selection()
	if len(sel) == 0 {
		return nil
	}
	return e.Submit(command.NewSetRotationCenter(e.doc, sel, p))
}

// ResetRotationCenterSelected snaps the rotation center of the selection back
// to the geometric centers.
func (e *Engine) ResetRotationCenterSelected() error {
	sel := e.doc.Selection()
	if len(sel) == 0 {
		return nil
	}
	return e.Submit(command.NewResetRotationCenter(e.doc, sel))
}

// SetFillSelected recolors the selection.
func (e *Engine) SetFillSelected(c colorful.Color) error {
	sel := e.doc.Selection()
	if len(sel) == 0 {
		return nil
	}
	return e.Submit(command.NewSetFill(e.doc, sel, c))
}

// EditProperties applies a property sheet to id.
func (e *Engine) EditProperties(id string, props document.Props) error {
	s, ok := e.doc.Lookup(id)
	if !ok {
		return fmt.Errorf("edit properties %s: %w", id, document.ErrNotFound)
	}
	if err := document.CheckProps(s.Kind(), props); err != nil {
		return fmt.Errorf("edit properties %s: %w", id, err)
	}
	return e.Submit(command.NewEditProperties(e.doc, id, props))
}

// Duplicate clones the selection, shifted by DuplicateOffset, as one history
// entry and selects the clones. It returns the new ids.
func (e *Engine) Duplicate() ([]string, error) {
	batch := command.NewComposite("Duplicate")
	var ids []string
	for _, id := range command.Topmost(e.doc, e.doc.Selection()) {
		s, _ := e.doc.Lookup(id)
		clone := e.factory.Clone(s)
		document.Move(clone, DuplicateOffset, DuplicateOffset)
		batch.Add(command.NewAddShape(e.doc, clone))
		ids = append(ids, clone.ID())
	}
	if batch.IsEmpty() {
		return nil, nil
	}
	if err := e.Submit(batch); err != nil {
		return nil, err
	}
	e.doc.Select(ids...)
	return ids, nil
}

// --- Selection ---

// Select replaces the selection. Unknown ids are ignored.
func (e *Engine) Select(ids ...string) { e.doc.Select(ids...) }

// SelectAll selects every top-level shape.
func (e *Engine) SelectAll() {
	shapes := e.doc.Shapes()
	ids := make([]string, len(shapes))
	for i, s := range shapes {
		ids[i] = s.ID()
	}
	e.doc.Select(ids...)
}

// ClearSelection empties the selection.
func (e *Engine) ClearSelection() { e.doc.ClearSelection() }

// --- Pointer ---

// PointerDown starts a pointer gesture.
func (e *Engine) PointerDown(p geometry.Point, additive bool) selection.Outcome {
	return e.resolver.Press(p, additive)
}

// PointerDrag updates the gesture preview. The document is not changed.
func (e *Engine) PointerDrag(p geometry.Point) {
	e.resolver.Drag(p)
}

// PointerUp ends the gesture and submits the resulting command, if any.
func (e *Engine) PointerUp(p geometry.Point) error {
	cmd, ok := e.resolver.Release(p)
	if !ok {
		return nil
	}
	return e.Submit(cmd)
}

// PointerCancel abandons the gesture in progress.
func (e *Engine) PointerCancel() { e.resolver.Cancel() }

// Gesture returns the preview of the gesture in progress.
func (e *Engine) Gesture() selection.Preview { return e.resolver.Preview() }

// --- Geometry ---

// Contains reports whether p hits the shape id.
func (e *Engine) Contains(id string, p geometry.Point) (bool, error) {
	s, ok := e.doc.Lookup(id)
	if !ok {
		return false, fmt.Errorf("contains %s: %w", id, document.ErrNotFound)
	}
	return document.Contains(s, p), nil
}

// BoundingBox returns the bounding box of id.
func (e *Engine) BoundingBox(id string) (geometry.Rect, error) {
	s, ok := e.doc.Lookup(id)
	if !ok {
		return geometry.Rect{}, fmt.Errorf("bounding box %s: %w", id, document.ErrNotFound)
	}
	return document.BoundingBox(s), nil
}

// SelectionBounds returns the union of the selected shapes' bounding boxes.
func (e *Engine) SelectionBounds() (geometry.Rect, bool) {
	sel := e.doc.SelectedShapes()
	if len(sel) == 0 {
		return geometry.Rect{}, false
	}
	box := document.BoundingBox(sel[0])
	for _, s := range sel[1:] {
		box = box.Union(document.BoundingBox(s))
	}
	return box, true
}

// HitTest returns the id of the topmost top-level shape under p.
func (e *Engine) HitTest(p geometry.Point) (string, bool) {
	s, ok := e.resolver.HitTest(p)
	if !ok {
		return "", false
	}
	return s.ID(), true
}

// --- Notifications ---

// Subscribe registers fn to run after every successful Do, Undo and Redo,
// and after ImportSnapshot.
func (e *Engine) Subscribe(fn func(history.Event)) history.Subscription {
	return e.history.Subscribe(fn)
}

// Unsubscribe removes a subscriber.
func (e *Engine) Unsubscribe(sub history.Subscription) {
	e.history.Unsubscribe(sub)
}

// --- Snapshot ---

// ExportSnapshot returns an independent deep copy of the tree. Ids are kept.
func (e *Engine) ExportSnapshot() []document.Shape {
	return document.CopyAll(e.doc.Shapes())
}

// ImportSnapshot replaces the document with a copy of tree. The history and
// the selection are cleared, and subscribers receive EventReset.
func (e *Engine) ImportSnapshot(tree []document.Shape) error {
	if err := e.doc.Replace(document.CopyAll(tree)); err != nil {
		return fmt.Errorf("import snapshot: %w", err)
	}
	e.resolver.Cancel()
	e.history.Clear()
	return nil
}

// LoadSample replaces the document with the starter board.
func (e *Engine) LoadSample() error {
	return e.ImportSnapshot(document.NewSampleShapes(e.factory))
}
