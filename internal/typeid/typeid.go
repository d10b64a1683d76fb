package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"

	"github.com/inamate/sketchboard/internal/document"
)

const (
	PrefixUser      = "user"
	PrefixBoard     = "board"
	PrefixSnapshot  = "snap"
	PrefixRectangle = "rect"
	PrefixPolygon   = "poly"
	PrefixGroup     = "group"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewUserID() string     { return New(PrefixUser) }
func NewBoardID() string    { return New(PrefixBoard) }
func NewSnapshotID() string { return New(PrefixSnapshot) }

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}

// PrefixFor returns the id prefix used for shapes of kind k.
func PrefixFor(k document.Kind) string {
	switch k {
	case document.KindRectangle:
		return PrefixRectangle
	case document.KindPolygon:
		return PrefixPolygon
	case document.KindGroup:
		return PrefixGroup
	default:
		panic(fmt.Sprintf("typeid: unknown shape kind %q", k))
	}
}

// ShapeIDs mints shape ids such as "rect_01h455vb4pex5vsknk084sn02q".
type ShapeIDs struct{}

// NewID returns a fresh id for a shape of kind k.
func (ShapeIDs) NewID(k document.Kind) string { return New(PrefixFor(k)) }
