package snapshot

import (
	"errors"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/inamate/sketchboard/internal/document"
	"github.com/inamate/sketchboard/internal/geometry"
)

func sampleShapes() []document.Shape {
	return document.NewSampleShapes(document.NewFactory(&document.SequentialIDs{}))
}

// sameTree compares two shape lists field by field, children included.
func sameTree(t *testing.T, want, got []document.Shape) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("got %d shapes, want %d", len(got), len(want))
	}
	for i := range want {
		if w, g := document.StateOf(want[i]), document.StateOf(got[i]); w != g {
			t.Errorf("shape %d:\n got %+v\nwant %+v", i, g, w)
		}
		if want[i].Parent() != got[i].Parent() {
			t.Errorf("%s parent = %q, want %q", got[i].ID(), got[i].Parent(), want[i].Parent())
		}
		wg, wok := want[i].(*document.Group)
		gg, gok := got[i].(*document.Group)
		if wok != gok {
			t.Fatalf("shape %d kind = %s, want %s", i, got[i].Kind(), want[i].Kind())
		}
		if wok {
			sameTree(t, wg.Children(), gg.Children())
		}
	}
}

func TestRoundTrip(t *testing.T) {
	shapes := sampleShapes()
	shapes[0].(*document.Rectangle).CornerRadius = 6
	document.SetRotation(shapes[1], 45)
	shapes[2].(*document.RegularPolygon).SetRotationCenter(geometry.Point{X: 7, Y: -3})

	data, err := Encode(shapes)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	sameTree(t, shapes, got)

	if !got[2].HasCustomRotationCenter() {
		t.Error("custom rotation center lost")
	}
	if got[0].HasCustomRotationCenter() {
		t.Error("default rotation center decoded as custom")
	}
}

func TestRoundTripLoadsIntoDocument(t *testing.T) {
	data, err := Encode(sampleShapes())
	if err != nil {
		t.Fatal(err)
	}
	shapes, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	doc := document.New()
	if err := doc.Replace(shapes); err != nil {
		t.Fatal(err)
	}
	g := shapes[3].(*document.Group)
	for _, child := range g.Children() {
		if _, ok := doc.Lookup(child.ID()); !ok {
			t.Errorf("child %s not indexed", child.ID())
		}
		if child.Parent() != g.ID() {
			t.Errorf("child %s parent = %q", child.ID(), child.Parent())
		}
	}
}

func TestEncodeLayout(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r := document.NewRectangle("rect_1", 1, 2, 3, 4)
	r.SetFillColor(document.Blue)

	data, err := EncodeAt([]document.Shape{r}, at)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		want string
	}{
		{"version", "1"},
		{"savedAt", "2024-03-01T12:00:00Z"},
		{"shapes.0.kind", "rectangle"},
		{"shapes.0.id", "rect_1"},
		{"shapes.0.fill", "#0000ff"},
		{"shapes.0.border", "#000000"},
		{"shapes.0.width", "3"},
		{"shapes.0.height", "4"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := gjson.GetBytes(data, tt.path).String(); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
	if gjson.GetBytes(data, "shapes.0.center").Exists() {
		t.Error("default center should not be written")
	}

	saved, err := SavedAt(data)
	if err != nil {
		t.Fatal(err)
	}
	if !saved.Equal(at) {
		t.Errorf("SavedAt = %v, want %v", saved, at)
	}
}

func TestDecodeNormalizesRotation(t *testing.T) {
	data := []byte(`{"version":1,"shapes":[{"kind":"rectangle","id":"r","rotation":370,"width":1,"height":1}]}`)
	shapes, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if got := shapes[0].Rotation(); got != 10 {
		t.Errorf("rotation = %v, want 10", got)
	}
	if shapes[0].FillColor() != document.White {
		t.Errorf("missing fill should default to white")
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"not json", `{"version":`, ErrMalformed},
		{"wrong version", `{"version":2,"shapes":[]}`, ErrUnsupportedVersion},
		{"missing version", `{"shapes":[]}`, ErrUnsupportedVersion},
		{"shapes not array", `{"version":1,"shapes":{}}`, ErrMalformed},
		{"shape not object", `{"version":1,"shapes":[3]}`, ErrMalformed},
		{"missing id", `{"version":1,"shapes":[{"kind":"rectangle"}]}`, ErrMalformed},
		{"unknown kind", `{"version":1,"shapes":[{"kind":"ellipse","id":"e"}]}`, ErrUnknownKind},
		{"bad color", `{"version":1,"shapes":[{"kind":"rectangle","id":"r","fill":"red"}]}`, ErrMalformed},
		{"two sided polygon", `{"version":1,"shapes":[{"kind":"polygon","id":"p1","x":500,"y":500,"sides":2,"sideLength":10}]}`, ErrMalformed},
		{"negative sides", `{"version":1,"shapes":[{"kind":"polygon","id":"p2","x":10,"y":10,"sides":-4,"sideLength":10}]}`, ErrMalformed},
		{"too many sides", `{"version":1,"shapes":[{"kind":"polygon","id":"p3","sides":1000000,"sideLength":10}]}`, ErrMalformed},
		{"zero side length", `{"version":1,"shapes":[{"kind":"polygon","id":"p4","sides":5}]}`, ErrMalformed},
		{"flat rectangle", `{"version":1,"shapes":[{"kind":"rectangle","id":"r","width":4,"height":0}]}`, ErrMalformed},
		{"degenerate child", `{"version":1,"shapes":[{"kind":"group","id":"g","children":[{"kind":"polygon","id":"c","sides":2,"sideLength":1}]}]}`, ErrMalformed},
		{"bad child", `{"version":1,"shapes":[{"kind":"group","id":"g","children":[{"kind":"x","id":"c"}]}]}`, ErrUnknownKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
