package engine

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/inamate/sketchboard/internal/document"
	"github.com/inamate/sketchboard/internal/geometry"
	"github.com/inamate/sketchboard/internal/history"
	"github.com/inamate/sketchboard/internal/selection"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	return New(document.NewFactory(&document.SequentialIDs{}))
}

func mustAdd(t *testing.T, e *Engine, x, y, w, h float64) string {
	t.Helper()
	id, err := e.AddRectangle(x, y, w, h)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func topIDs(e *Engine) []string {
	var ids []string
	for _, s := range e.Shapes() {
		ids = append(ids, s.ID())
	}
	return ids
}

func TestGroupUndoScenario(t *testing.T) {
	e := newEngine(t)
	a := mustAdd(t, e, 0, 0, 10, 10)
	b := mustAdd(t, e, 5, 5, 10, 10)
	e.Select(a, b)

	g, err := e.GroupSelected()
	if err != nil {
		t.Fatal(err)
	}
	if got := topIDs(e); !reflect.DeepEqual(got, []string{g}) {
		t.Fatalf("top level = %v", got)
	}
	if got := e.Selection(); !reflect.DeepEqual(got, []string{g}) {
		t.Errorf("selection = %v", got)
	}

	if err := e.Undo(); err != nil {
		t.Fatal(err)
	}
	if got := topIDs(e); !reflect.DeepEqual(got, []string{a, b}) {
		t.Errorf("top level after undo = %v", got)
	}
	if got := e.Selection(); !reflect.DeepEqual(got, []string{a, b}) {
		t.Errorf("selection after undo = %v", got)
	}
}

func TestGroupNeedsTwo(t *testing.T) {
	e := newEngine(t)
	a := mustAdd(t, e, 0, 0, 10, 10)
	e.Select(a)
	g, err := e.GroupSelected()
	if err != nil || g != "" {
		t.Errorf("GroupSelected = %q, %v", g, err)
	}
	if d, _ := e.PeekUndo(); d != "Add rectangle" {
		t.Errorf("no-op group reached history: %q", d)
	}
}

func TestUngroupSelectedIsOneEntry(t *testing.T) {
	e := newEngine(t)
	ids := []string{
		mustAdd(t, e, 0, 0, 1, 1),
		mustAdd(t, e, 2, 2, 1, 1),
		mustAdd(t, e, 10, 10, 1, 1),
		mustAdd(t, e, 12, 12, 1, 1),
	}
	e.Select(ids[0], ids[1])
	g1, _ := e.GroupSelected()
	e.Select(ids[2], ids[3])
	g2, _ := e.GroupSelected()

	e.Select(g1, g2)
	if err := e.UngroupSelected(); err != nil {
		t.Fatal(err)
	}
	if got := topIDs(e); !reflect.DeepEqual(got, ids) {
		t.Errorf("top level = %v, want %v", got, ids)
	}
	if got := e.Selection(); !reflect.DeepEqual(got, ids) {
		t.Errorf("selection = %v, want all children", got)
	}

	if err := e.Undo(); err != nil {
		t.Fatal(err)
	}
	if got := topIDs(e); !reflect.DeepEqual(got, []string{g1, g2}) {
		t.Errorf("top level after undo = %v", got)
	}
	if got := e.Selection(); !reflect.DeepEqual(got, []string{g1, g2}) {
		t.Errorf("selection after undo = %v", got)
	}
}

func TestRotateSelected(t *testing.T) {
	e := newEngine(t)
	a := mustAdd(t, e, 0, 0, 10, 10)
	e.Select(a)
	_ = e.RotateSelected(10, true)
	if err := e.RotateSelected(355, false); err != nil {
		t.Fatal(err)
	}
	s, _ := e.Lookup(a)
	if s.Rotation() != 5 {
		t.Errorf("rotation = %v, want 5", s.Rotation())
	}
	_ = e.Undo()
	if s.Rotation() != 10 {
		t.Errorf("rotation after undo = %v, want 10", s.Rotation())
	}
}

func TestDeleteSelectedUndo(t *testing.T) {
	e := newEngine(t)
	a := mustAdd(t, e, 0, 0, 10, 10)
	b := mustAdd(t, e, 20, 0, 10, 10)
	e.Select(a, b)

	if err := e.DeleteSelected(); err != nil {
		t.Fatal(err)
	}
	if len(e.Shapes()) != 0 || len(e.Selection()) != 0 {
		t.Fatal("delete left shapes behind")
	}
	_ = e.Undo()
	if got := topIDs(e); !reflect.DeepEqual(got, []string{a, b}) {
		t.Errorf("top level = %v", got)
	}
	if got := e.Selection(); !reflect.DeepEqual(got, []string{a, b}) {
		t.Errorf("selection = %v", got)
	}
}

func TestDuplicate(t *testing.T) {
	e := newEngine(t)
	a := mustAdd(t, e, 0, 0, 10, 10)
	e.Select(a)

	ids, err := e.Duplicate()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] == a {
		t.Fatalf("ids = %v", ids)
	}
	c, _ := e.Lookup(ids[0])
	if c.Position() != (geometry.Point{X: DuplicateOffset, Y: DuplicateOffset}) {
		t.Errorf("clone position = %+v", c.Position())
	}
	if got := e.Selection(); !reflect.DeepEqual(got, ids) {
		t.Errorf("selection = %v", got)
	}
	_ = e.Undo()
	if _, ok := e.Lookup(ids[0]); ok {
		t.Error("undo left the clone")
	}
}

func TestPointerDragSubmitsOnce(t *testing.T) {
	e := newEngine(t)
	a := mustAdd(t, e, 0, 0, 10, 10)

	var events []history.Event
	e.Subscribe(func(ev history.Event) { events = append(events, ev) })

	out := e.PointerDown(geometry.Point{X: 5, Y: 5}, false)
	if out.Gesture != selection.GestureMove || out.Hit != a {
		t.Fatalf("outcome = %+v", out)
	}
	e.PointerDrag(geometry.Point{X: 10, Y: 5})
	e.PointerDrag(geometry.Point{X: 15, Y: 8})

	s, _ := e.Lookup(a)
	if s.Position() != (geometry.Point{}) {
		t.Fatal("drag moved the shape before release")
	}
	list := e.DisplayList()
	if list[0].Transform == nil || list[0].Transform[4] != 10 || list[0].Transform[5] != 3 {
		t.Errorf("preview transform = %v", list[0].Transform)
	}

	if err := e.PointerUp(geometry.Point{X: 15, Y: 8}); err != nil {
		t.Fatal(err)
	}
	if s.Position() != (geometry.Point{X: 10, Y: 3}) {
		t.Errorf("position = %+v", s.Position())
	}
	if len(events) != 1 || events[0].Kind != history.EventDo {
		t.Errorf("events = %+v", events)
	}
	if e.Gesture().Gesture != selection.GestureNone {
		t.Error("gesture not finished")
	}
}

func TestGeometryQueries(t *testing.T) {
	e := newEngine(t)
	a := mustAdd(t, e, 0, 0, 10, 10)
	b := mustAdd(t, e, 20, 0, 10, 10)

	if ok, err := e.Contains(a, geometry.Point{X: 5, Y: 5}); err != nil || !ok {
		t.Errorf("Contains = %v, %v", ok, err)
	}
	if _, err := e.Contains("nope", geometry.Point{}); !errors.Is(err, document.ErrNotFound) {
		t.Errorf("Contains unknown err = %v", err)
	}
	if box, err := e.BoundingBox(b); err != nil || box != (geometry.Rect{X: 20, Width: 10, Height: 10}) {
		t.Errorf("BoundingBox = %+v, %v", box, err)
	}
	if _, ok := e.SelectionBounds(); ok {
		t.Error("empty selection has bounds")
	}
	e.SelectAll()
	if box, ok := e.SelectionBounds(); !ok || box != (geometry.Rect{Width: 30, Height: 10}) {
		t.Errorf("SelectionBounds = %+v", box)
	}
	if id, ok := e.HitTest(geometry.Point{X: 25, Y: 5}); !ok || id != b {
		t.Errorf("HitTest = %q", id)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	e := newEngine(t)
	a := mustAdd(t, e, 0, 0, 10, 10)
	snap := e.ExportSnapshot()

	// The snapshot is independent of the live document.
	e.Select(a)
	_ = e.MoveSelected(50, 50)
	if snap[0].Position() != (geometry.Point{}) {
		t.Fatal("snapshot shares state with the document")
	}

	var events []history.Event
	e.Subscribe(func(ev history.Event) { events = append(events, ev) })
	if err := e.ImportSnapshot(snap); err != nil {
		t.Fatal(err)
	}
	s, _ := e.Lookup(a)
	if s.Position() != (geometry.Point{}) {
		t.Errorf("position after import = %+v", s.Position())
	}
	if e.CanUndo() || e.CanRedo() || len(e.Selection()) != 0 {
		t.Error("import should clear history and selection")
	}
	if len(events) != 1 || events[0].Kind != history.EventReset {
		t.Errorf("events = %+v", events)
	}
}

func TestDisplayList(t *testing.T) {
	e := newEngine(t)
	if err := e.LoadSample(); err != nil {
		t.Fatal(err)
	}
	list := e.DisplayList()
	ids := ObjectIDs(list)
	if len(ids) != 5 {
		t.Fatalf("path ops = %d, want 5", len(ids))
	}
	for _, c := range list {
		if c.Op != OpPath {
			t.Errorf("unexpected op %q with empty selection", c.Op)
		}
		if len(c.Path) < 4 || c.Path[0][0] != "M" || c.Path[len(c.Path)-1][0] != "Z" {
			t.Errorf("malformed path for %s", c.ObjectID)
		}
	}

	e.Select(e.Shapes()[0].ID())
	list = e.DisplayList()
	last := list[len(list)-1]
	if last.Op != OpCenter || last.Point == nil {
		t.Errorf("last op = %+v, want center handle", last)
	}

	out, err := DrawCommandsToJSON(list)
	if err != nil {
		t.Fatal(err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("display list is not valid JSON: %v", err)
	}
}

func TestAddRejectsDegenerateShapes(t *testing.T) {
	e := newEngine(t)
	if _, err := e.AddPolygon(0, 0, 2, 10); !errors.Is(err, document.ErrInvalidGeometry) {
		t.Errorf("two sided polygon: err = %v", err)
	}
	if _, err := e.AddRectangle(0, 0, 10, -1); !errors.Is(err, document.ErrInvalidGeometry) {
		t.Errorf("negative height: err = %v", err)
	}
	if len(e.Shapes()) != 0 || e.CanUndo() {
		t.Error("rejected shape reached the document")
	}
}
