package board

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/inamate/sketchboard/internal/collab"
	"github.com/inamate/sketchboard/internal/document"
	"github.com/inamate/sketchboard/internal/engine"
	"github.com/inamate/sketchboard/internal/geometry"
	"github.com/inamate/sketchboard/internal/history"
)

var (
	ErrUnknownOperation = errors.New("unknown operation type")
	ErrInvalidPayload   = errors.New("invalid operation payload")
)

// Operation types accepted by Apply.
const (
	OpShapeAdd       = "shape.add"
	OpShapeMove      = "shape.move"
	OpShapeRotate    = "shape.rotate"
	OpShapeDelete    = "shape.delete"
	OpShapeGroup     = "shape.group"
	OpShapeUngroup   = "shape.ungroup"
	OpShapeDuplicate = "shape.duplicate"
	OpShapeFill      = "shape.fill"
	OpShapeProps     = "shape.props"
	OpSelectionSet   = "selection.set"
	OpSelectionAll   = "selection.all"
	OpSelectionClear = "selection.clear"
	OpPointerDown    = "pointer.down"
	OpPointerDrag    = "pointer.drag"
	OpPointerUp      = "pointer.up"
	OpPointerCancel  = "pointer.cancel"
	OpHistoryUndo    = "history.undo"
	OpHistoryRedo    = "history.redo"
	OpCenterSet      = "center.set"
	OpCenterReset    = "center.reset"
)

// targeted is embedded by payloads that act on the selection. A non-empty
// IDs replaces the selection first.
type targeted struct {
	IDs []string `json:"ids,omitempty"`
}

type addPayload struct {
	Kind       string  `json:"kind"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Sides      int     `json:"sides"`
	SideLength float64 `json:"sideLength"`
	Fill       string  `json:"fill,omitempty"`
	Border     string  `json:"border,omitempty"`
}

type movePayload struct {
	targeted
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

type rotatePayload struct {
	targeted
	Amount   float64 `json:"amount"`
	Absolute bool    `json:"absolute"`
}

type fillPayload struct {
	targeted
	Color string `json:"color"`
}

type pointPayload struct {
	targeted
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Additive bool    `json:"additive"`
}

type propsPayload struct {
	ID           string   `json:"id"`
	X            *float64 `json:"x,omitempty"`
	Y            *float64 `json:"y,omitempty"`
	Rotation     *float64 `json:"rotation,omitempty"`
	Fill         *string  `json:"fill,omitempty"`
	Border       *string  `json:"border,omitempty"`
	Width        *float64 `json:"width,omitempty"`
	Height       *float64 `json:"height,omitempty"`
	CornerRadius *float64 `json:"cornerRadius,omitempty"`
	Sides        *int     `json:"sides,omitempty"`
	SideLength   *float64 `json:"sideLength,omitempty"`
}

type idResult struct {
	ID string `json:"id,omitempty"`
}

type idsResult struct {
	IDs []string `json:"ids"`
}

type selectionResult struct {
	Selection []string `json:"selection"`
}

type historyResult struct {
	Applied bool `json:"applied"`
	CanUndo bool `json:"canUndo"`
	CanRedo bool `json:"canRedo"`
}

type pressResult struct {
	Gesture string `json:"gesture"`
	Hit     string `json:"hit,omitempty"`
}

// apply runs op against e. The caller holds the board lock.
func apply(e *engine.Engine, op collab.Operation) (any, error) {
	switch op.Type {
	case OpShapeAdd:
		var p addPayload
		if err := decode(op, &p); err != nil {
			return nil, err
		}
		s, err := newShape(e.Factory(), p)
		if err != nil {
			return nil, err
		}
		return idResult{ID: s.ID()}, e.AddShape(s)

	case OpShapeMove:
		var p movePayload
		if err := decodeTargeted(e, op, &p, &p.targeted); err != nil {
			return nil, err
		}
		return nil, e.MoveSelected(p.DX, p.DY)

	case OpShapeRotate:
		var p rotatePayload
		if err := decodeTargeted(e, op, &p, &p.targeted); err != nil {
			return nil, err
		}
		return nil, e.RotateSelected(p.Amount, p.Absolute)

	case OpShapeDelete:
		var p targeted
		if err := decodeTargeted(e, op, &p, &p); err != nil {
			return nil, err
		}
		return nil, e.DeleteSelected()

	case OpShapeGroup:
		var p targeted
		if err := decodeTargeted(e, op, &p, &p); err != nil {
			return nil, err
		}
		id, err := e.GroupSelected()
		return idResult{ID: id}, err

	case OpShapeUngroup:
		var p targeted
		if err := decodeTargeted(e, op, &p, &p); err != nil {
			return nil, err
		}
		return nil, e.UngroupSelected()

	case OpShapeDuplicate:
		var p targeted
		if err := decodeTargeted(e, op, &p, &p); err != nil {
			return nil, err
		}
		ids, err := e.Duplicate()
		return idsResult{IDs: ids}, err

	case OpShapeFill:
		var p fillPayload
		if err := decodeTargeted(e, op, &p, &p.targeted); err != nil {
			return nil, err
		}
		c, err := parseColor("color", p.Color)
		if err != nil {
			return nil, err
		}
		return nil, e.SetFillSelected(c)

	case OpShapeProps:
		var p propsPayload
		if err := decode(op, &p); err != nil {
			return nil, err
		}
		s, ok := e.Lookup(p.ID)
		if !ok {
			return nil, fmt.Errorf("%s %s: %w", op.Type, p.ID, document.ErrNotFound)
		}
		props, err := p.merge(s.Kind(), document.PropsOf(s))
		if err != nil {
			return nil, err
		}
		return nil, e.EditProperties(p.ID, props)

	case OpSelectionSet:
		var p targeted
		if err := decode(op, &p); err != nil {
			return nil, err
		}
		e.Select(p.IDs...)
		return selectionResult{Selection: e.Selection()}, nil

	case OpSelectionAll:
		e.SelectAll()
		return selectionResult{Selection: e.Selection()}, nil

	case OpSelectionClear:
		e.ClearSelection()
		return selectionResult{Selection: e.Selection()}, nil

	case OpPointerDown:
		var p pointPayload
		if err := decode(op, &p); err != nil {
			return nil, err
		}
		out := e.PointerDown(geometry.Point{X: p.X, Y: p.Y}, p.Additive)
		return pressResult{Gesture: out.Gesture.String(), Hit: out.Hit}, nil

	case OpPointerDrag:
		var p pointPayload
		if err := decode(op, &p); err != nil {
			return nil, err
		}
		e.PointerDrag(geometry.Point{X: p.X, Y: p.Y})
		return nil, nil

	case OpPointerUp:
		var p pointPayload
		if err := decode(op, &p); err != nil {
			return nil, err
		}
		if err := e.PointerUp(geometry.Point{X: p.X, Y: p.Y}); err != nil {
			return nil, err
		}
		return selectionResult{Selection: e.Selection()}, nil

	case OpPointerCancel:
		e.PointerCancel()
		return nil, nil

	case OpHistoryUndo:
		return historyStep(e, e.Undo())

	case OpHistoryRedo:
		return historyStep(e, e.Redo())

	case OpCenterSet:
		var p pointPayload
		if err := decodeTargeted(e, op, &p, &p.targeted); err != nil {
			return nil, err
		}
		return nil, e.SetRotationCenterSelected(geometry.Point{X: p.X, Y: p.Y})

	case OpCenterReset:
		var p targeted
		if err := decodeTargeted(e, op, &p, &p); err != nil {
			return nil, err
		}
		return nil, e.ResetRotationCenterSelected()

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, op.Type)
	}
}

// historyStep reports the outcome of an undo or redo. An empty stack is a
// no-op, not a failure.
func historyStep(e *engine.Engine, err error) (any, error) {
	applied := true
	switch {
	case errors.Is(err, history.ErrNothingToUndo), errors.Is(err, history.ErrNothingToRedo):
		applied = false
	case err != nil:
		return nil, err
	}
	return historyResult{Applied: applied, CanUndo: e.CanUndo(), CanRedo: e.CanRedo()}, nil
}

// decode unmarshals the operation payload into v. A missing payload leaves v
// zero.
func decode(op collab.Operation, v any) error {
	if len(op.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(op.Payload, v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidPayload, op.Type, err)
	}
	return nil
}

// decodeTargeted decodes v and, when t names ids, makes them the selection.
func decodeTargeted(e *engine.Engine, op collab.Operation, v any, t *targeted) error {
	if err := decode(op, v); err != nil {
		return err
	}
	if len(t.IDs) > 0 {
		e.Select(t.IDs...)
	}
	return nil
}

func newShape(f *document.Factory, p addPayload) (document.Shape, error) {
	var s document.Shape
	switch document.Kind(p.Kind) {
	case document.KindRectangle:
		if err := document.CheckRectangle(p.Width, p.Height); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		s = f.NewRectangle(p.X, p.Y, p.Width, p.Height)
	case document.KindPolygon:
		if err := document.CheckPolygon(p.Sides, p.SideLength); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		s = f.NewRegularPolygon(p.X, p.Y, p.Sides, p.SideLength)
	default:
		return nil, fmt.Errorf("%w: cannot add shape of kind %q", ErrInvalidPayload, p.Kind)
	}

	if p.Fill != "" {
		c, err := parseColor("fill", p.Fill)
		if err != nil {
			return nil, err
		}
		document.SetFillColor(s, c)
	}
	if p.Border != "" {
		c, err := parseColor("border", p.Border)
		if err != nil {
			return nil, err
		}
		s.(interface{ SetBorderColor(colorful.Color) }).SetBorderColor(c)
	}
	return s, nil
}

func (p propsPayload) merge(kind document.Kind, props document.Props) (document.Props, error) {
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&props.Position.X, p.X)
	set(&props.Position.Y, p.Y)
	set(&props.Rotation, p.Rotation)
	set(&props.Width, p.Width)
	set(&props.Height, p.Height)
	set(&props.CornerRadius, p.CornerRadius)
	set(&props.SideLength, p.SideLength)
	if p.Sides != nil {
		props.Sides = *p.Sides
	}
	if p.Fill != nil {
		c, err := parseColor("fill", *p.Fill)
		if err != nil {
			return props, err
		}
		props.FillColor = c
	}
	if p.Border != nil {
		c, err := parseColor("border", *p.Border)
		if err != nil {
			return props, err
		}
		props.BorderColor = c
	}
	if err := document.CheckProps(kind, props); err != nil {
		return props, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return props, nil
}

func parseColor(field, hex string) (colorful.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("%w: %s %q is not #rrggbb", ErrInvalidPayload, field, hex)
	}
	return c, nil
}
