package document

import (
	"errors"
	"fmt"
	"math"
)

// Polygon side counts accepted from outside input.
const (
	MinSides = 3
	MaxSides = 256
)

var ErrInvalidGeometry = errors.New("invalid shape geometry")

// CheckRectangle validates rectangle dimensions.
func CheckRectangle(width, height float64) error {
	if !positive(width) || !positive(height) {
		return fmt.Errorf("%w: rectangle size %vx%v must be positive", ErrInvalidGeometry, width, height)
	}
	return nil
}

// CheckPolygon validates regular polygon dimensions.
func CheckPolygon(sides int, sideLength float64) error {
	if sides < MinSides || sides > MaxSides {
		return fmt.Errorf("%w: polygon needs %d to %d sides, got %d", ErrInvalidGeometry, MinSides, MaxSides, sides)
	}
	if !positive(sideLength) {
		return fmt.Errorf("%w: polygon side length %v must be positive", ErrInvalidGeometry, sideLength)
	}
	return nil
}

// CheckProps validates the variant-specific dimensions in p for kind.
func CheckProps(kind Kind, p Props) error {
	switch kind {
	case KindRectangle:
		return CheckRectangle(p.Width, p.Height)
	case KindPolygon:
		return CheckPolygon(p.Sides, p.SideLength)
	default:
		return nil
	}
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
