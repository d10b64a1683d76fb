package document

import (
	"errors"
	"math"
	"testing"
)

func TestCheckProps(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		p    Props
		ok   bool
	}{
		{"rectangle", KindRectangle, Props{Width: 1, Height: 2}, true},
		{"rectangle zero width", KindRectangle, Props{Width: 0, Height: 2}, false},
		{"rectangle negative height", KindRectangle, Props{Width: 1, Height: -2}, false},
		{"rectangle nan", KindRectangle, Props{Width: math.NaN(), Height: 2}, false},
		{"triangle", KindPolygon, Props{Sides: 3, SideLength: 5}, true},
		{"max sides", KindPolygon, Props{Sides: MaxSides, SideLength: 5}, true},
		{"two sides", KindPolygon, Props{Sides: 2, SideLength: 5}, false},
		{"negative sides", KindPolygon, Props{Sides: -4, SideLength: 5}, false},
		{"too many sides", KindPolygon, Props{Sides: MaxSides + 1, SideLength: 5}, false},
		{"zero side length", KindPolygon, Props{Sides: 6, SideLength: 0}, false},
		{"infinite side length", KindPolygon, Props{Sides: 6, SideLength: math.Inf(1)}, false},
		{"group", KindGroup, Props{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckProps(tt.kind, tt.p)
			if tt.ok && err != nil {
				t.Errorf("unexpected error %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidGeometry) {
				t.Errorf("err = %v, want ErrInvalidGeometry", err)
			}
		})
	}
}
