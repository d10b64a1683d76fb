package typeid

import (
	"strings"
	"testing"

	"github.com/inamate/sketchboard/internal/document"
)

func TestShapeIDs(t *testing.T) {
	var ids ShapeIDs
	tests := []struct {
		kind   document.Kind
		prefix string
	}{
		{document.KindRectangle, PrefixRectangle},
		{document.KindPolygon, PrefixPolygon},
		{document.KindGroup, PrefixGroup},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			id := ids.NewID(tt.kind)
			if !strings.HasPrefix(id, tt.prefix+"_") {
				t.Errorf("id %q lacks prefix %q", id, tt.prefix)
			}
			if err := Validate(id, tt.prefix); err != nil {
				t.Error(err)
			}
			if id == ids.NewID(tt.kind) {
				t.Error("ids repeat")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(NewBoardID(), PrefixBoard); err != nil {
		t.Errorf("board id: %v", err)
	}
	if err := Validate(NewBoardID(), PrefixSnapshot); err == nil {
		t.Error("wrong prefix accepted")
	}
	if err := Validate("not-an-id", PrefixBoard); err == nil {
		t.Error("garbage accepted")
	}
}

func TestFactoryWithShapeIDs(t *testing.T) {
	f := document.NewFactory(ShapeIDs{})
	r := f.NewRectangle(0, 0, 1, 1)
	if err := Validate(r.ID(), PrefixRectangle); err != nil {
		t.Error(err)
	}
}
