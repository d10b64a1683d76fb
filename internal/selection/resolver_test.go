package selection

import (
	"reflect"
	"testing"

	"github.com/inamate/sketchboard/internal/command"
	"github.com/inamate/sketchboard/internal/document"
	"github.com/inamate/sketchboard/internal/geometry"
)

func pt(x, y float64) geometry.Point { return geometry.Point{X: x, Y: y} }

// newDoc holds A(0,0,10,10), B(5,5,10,10) drawn above A, and C(100,0,10,10).
func newDoc(t *testing.T) (*document.Document, *Resolver) {
	t.Helper()
	doc := document.New()
	for _, r := range []*document.Rectangle{
		document.NewRectangle("A", 0, 0, 10, 10),
		document.NewRectangle("B", 5, 5, 10, 10),
		document.NewRectangle("C", 100, 0, 10, 10),
	} {
		if err := doc.Insert("", -1, r); err != nil {
			t.Fatal(err)
		}
	}
	return doc, New(doc)
}

func TestHitTestTopmostWins(t *testing.T) {
	_, r := newDoc(t)
	tests := []struct {
		p    geometry.Point
		want string
	}{
		{pt(2, 2), "A"},
		{pt(7, 7), "B"},
		{pt(14, 14), "B"},
		{pt(50, 50), ""},
	}
	for _, tt := range tests {
		s, ok := r.HitTest(tt.p)
		got := ""
		if ok {
			got = s.ID()
		}
		if got != tt.want {
			t.Errorf("HitTest(%v) = %q, want %q", tt.p, got, tt.want)
		}
	}
}

func TestPress(t *testing.T) {
	tests := []struct {
		name     string
		before   []string
		p        geometry.Point
		additive bool
		gesture  Gesture
		want     []string
	}{
		{"replace", []string{"C"}, pt(7, 7), false, GestureMove, []string{"B"}},
		{"keep existing multi-selection", []string{"A", "B"}, pt(2, 2), false, GestureMove, []string{"A", "B"}},
		{"toggle on", []string{"C"}, pt(2, 2), true, GestureNone, []string{"A", "C"}},
		{"toggle off", []string{"A", "C"}, pt(2, 2), true, GestureNone, []string{"C"}},
		{"empty space clears", []string{"A"}, pt(50, 50), false, GestureRectangle, nil},
		{"additive empty space keeps", []string{"A"}, pt(50, 50), true, GestureRectangle, []string{"A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, r := newDoc(t)
			doc.Select(tt.before...)
			out := r.Press(tt.p, tt.additive)
			if out.Gesture != tt.gesture {
				t.Errorf("gesture = %v, want %v", out.Gesture, tt.gesture)
			}
			got := doc.Selection()
			if len(got) == 0 {
				got = nil
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("selection = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectangleSelectsIntersecting(t *testing.T) {
	doc, r := newDoc(t)
	r.Press(pt(40, 40), false)
	r.Drag(pt(20, 20))
	if pv := r.Preview(); pv.Gesture != GestureRectangle || pv.Rect != (geometry.Rect{X: 20, Y: 20, Width: 20, Height: 20}) {
		t.Errorf("preview = %+v", pv)
	}
	// B's box spans (5,5)-(15,15); A's ends at 10, so (12,12)-(40,40) only meets B.
	cmd, ok := r.Release(pt(12, 12))
	if ok || cmd != nil {
		t.Error("rectangle gesture should not produce a command")
	}
	if got := doc.Selection(); !reflect.DeepEqual(got, []string{"B"}) {
		t.Errorf("selection = %v, want [B]", got)
	}
	if r.Active() != GestureNone {
		t.Error("gesture still active after release")
	}
}

func TestRectangleUnionsWithExisting(t *testing.T) {
	doc, r := newDoc(t)
	doc.Select("C")
	r.Press(pt(40, 40), true)
	r.Release(pt(12, 12))
	if got := doc.Selection(); !reflect.DeepEqual(got, []string{"B", "C"}) {
		t.Errorf("selection = %v, want [B C]", got)
	}
}

func TestClickOnEmptySpaceSelectsNothing(t *testing.T) {
	doc, r := newDoc(t)
	doc.Select("A")
	r.Press(pt(50, 50), false)
	r.Release(pt(50, 50))
	if doc.SelectionLen() != 0 {
		t.Errorf("selection = %v", doc.Selection())
	}
}

func TestMoveGestureProducesOneCommand(t *testing.T) {
	doc, r := newDoc(t)
	doc.Select("A", "C")
	r.Press(pt(2, 2), false)
	r.Drag(pt(5, 5))
	r.Drag(pt(12, 7))

	a, _ := doc.Lookup("A")
	if a.Position() != (geometry.Point{}) {
		t.Fatalf("drag mutated the document: %+v", a.Position())
	}
	pv := r.Preview()
	if pv.DX != 10 || pv.DY != 5 || !reflect.DeepEqual(pv.Targets, []string{"A", "C"}) {
		t.Errorf("preview = %+v", pv)
	}

	cmd, ok := r.Release(pt(12, 7))
	if !ok {
		t.Fatal("expected a command")
	}
	if _, isMove := cmd.(*command.Move); !isMove {
		t.Fatalf("command = %T, want *command.Move", cmd)
	}
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	c, _ := doc.Lookup("C")
	if a.Position() != pt(10, 5) || c.Position() != pt(110, 5) {
		t.Errorf("positions a=%+v c=%+v", a.Position(), c.Position())
	}
}

func TestMoveGestureWithoutMovement(t *testing.T) {
	_, r := newDoc(t)
	r.Press(pt(2, 2), false)
	if _, ok := r.Release(pt(2, 2)); ok {
		t.Error("click without drag should not produce a command")
	}
}

func TestCenterGesture(t *testing.T) {
	doc, r := newDoc(t)
	doc.Select("C")

	// C's rotation center is (105,5); (108,2) is inside the handle.
	out := r.Press(pt(108, 2), false)
	if out.Gesture != GestureCenter {
		t.Fatalf("gesture = %v", out.Gesture)
	}
	r.Drag(pt(118, 12))
	cmd, ok := r.Release(pt(120, 12))
	if !ok {
		t.Fatal("expected a command")
	}
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	c, _ := doc.Lookup("C")
	if c.RotationCenter() != pt(117, 15) || !c.HasCustomRotationCenter() {
		t.Errorf("center = %+v custom=%v", c.RotationCenter(), c.HasCustomRotationCenter())
	}
	if c.Position() != pt(100, 0) {
		t.Error("center drag moved the shape")
	}
}

func TestCenterHandleNeedsSingleSelection(t *testing.T) {
	doc, r := newDoc(t)
	doc.Select("A", "C")
	if out := r.Press(pt(105, 5), false); out.Gesture != GestureMove {
		t.Errorf("gesture = %v, want move", out.Gesture)
	}
}

func TestCancel(t *testing.T) {
	doc, r := newDoc(t)
	r.Press(pt(2, 2), false)
	r.Drag(pt(20, 20))
	r.Cancel()
	if _, ok := r.Release(pt(20, 20)); ok {
		t.Error("release after cancel produced a command")
	}
	if !doc.IsSelected("A") {
		t.Error("cancel should keep the selection made by press")
	}
}
