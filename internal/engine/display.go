package engine

import (
	"encoding/json"
	"slices"

	"github.com/inamate/sketchboard/internal/document"
	"github.com/inamate/sketchboard/internal/geometry"
	"github.com/inamate/sketchboard/internal/selection"
)

// Draw operations understood by renderers.
const (
	OpPath       = "path"       // filled and stroked outline of a primitive
	OpSelection  = "selection"  // selection frame around a shape
	OpCenter     = "center"     // rotation center handle
	OpRubberBand = "rubberband" // rectangle gesture in progress
)

// DrawCommand represents a single drawing operation for the frontend to execute.
// Commands are plain data; the engine never rasterizes anything.
type DrawCommand struct {
	Op           string          `json:"op"`
	ObjectID     string          `json:"objectId,omitempty"`     // For hit correlation
	Transform    []float64       `json:"transform,omitempty"`    // [a, b, c, d, e, f] affine matrix, drag preview only
	Path         []PathCommand   `json:"path,omitempty"`         // Outline after rotation
	Fill         string          `json:"fill,omitempty"`         // Fill color
	Stroke       string          `json:"stroke,omitempty"`       // Stroke color
	StrokeWidth  float64         `json:"strokeWidth,omitempty"`  // Stroke width
	CornerRadius float64         `json:"cornerRadius,omitempty"` // Rectangles only
	Selected     bool            `json:"selected,omitempty"`
	Rect         *geometry.Rect  `json:"rect,omitempty"`  // selection and rubberband ops
	Point        *geometry.Point `json:"point,omitempty"` // center op
}

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["Z"].
type PathCommand []any

const defaultStrokeWidth = 2

// CompileDisplayList turns the document into draw commands in painter's order
// (back to front), followed by the selection overlay. A gesture in progress
// is shown through transforms and overlay ops only.
func CompileDisplayList(doc *document.Document, pv selection.Preview) []DrawCommand {
	var offset []float64
	moving := map[string]bool{}
	if pv.Gesture == selection.GestureMove && (pv.DX != 0 || pv.DY != 0) {
		offset = geometry.Translate(pv.DX, pv.DY).ToSlice()
		for _, id := range pv.Targets {
			moving[id] = true
		}
	}

	var commands []DrawCommand
	for _, s := range doc.Shapes() {
		var transform []float64
		if moving[s.ID()] {
			transform = offset
		}
		compileShape(doc, s, transform, &commands)
	}

	selected := doc.SelectedShapes()
	for _, s := range selected {
		box := document.BoundingBox(s)
		cmd := DrawCommand{Op: OpSelection, ObjectID: s.ID(), Rect: &box}
		if moving[s.ID()] {
			cmd.Transform = offset
		}
		commands = append(commands, cmd)
	}

	if len(selected) == 1 {
		center := selected[0].RotationCenter()
		if pv.Gesture == selection.GestureCenter {
			center = center.Add(pv.DX, pv.DY)
		}
		commands = append(commands, DrawCommand{Op: OpCenter, ObjectID: selected[0].ID(), Point: &center})
	}

	if pv.Gesture == selection.GestureRectangle {
		rect := pv.Rect
		commands = append(commands, DrawCommand{Op: OpRubberBand, Rect: &rect})
	}
	return commands
}

// compileShape emits draw commands for a shape and its descendants.
func compileShape(doc *document.Document, s document.Shape, transform []float64, commands *[]DrawCommand) {
	if g, ok := s.(*document.Group); ok {
		for _, child := range g.Children() {
			compileShape(doc, child, transform, commands)
		}
		return
	}

	cmd := DrawCommand{
		Op:          OpPath,
		ObjectID:    s.ID(),
		Transform:   transform,
		Path:        outlinePath(document.Outline(s)),
		Fill:        s.FillColor().Hex(),
		Stroke:      s.BorderColor().Hex(),
		StrokeWidth: defaultStrokeWidth,
		Selected:    doc.IsSelected(s.ID()),
	}
	if r, ok := s.(*document.Rectangle); ok {
		cmd.CornerRadius = r.CornerRadius
	}
	*commands = append(*commands, cmd)
}

func outlinePath(points []geometry.Point) []PathCommand {
	if len(points) == 0 {
		return nil
	}
	path := make([]PathCommand, 0, len(points)+1)
	for i, p := range points {
		op := "L"
		if i == 0 {
			op = "M"
		}
		path = append(path, PathCommand{op, p.X, p.Y})
	}
	return append(path, PathCommand{"Z"})
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	if commands == nil {
		return "[]", nil
	}
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// RectToJSON serializes a Rect to JSON.
func RectToJSON(r geometry.Rect) string {
	data, _ := json.Marshal(r)
	return string(data)
}

// DisplayList returns the vector draw list for the current state, including
// the preview of any gesture in progress.
func (e *Engine) DisplayList() []DrawCommand {
	return CompileDisplayList(e.doc, e.resolver.Preview())
}

// Render returns DisplayList as JSON.
func (e *Engine) Render() string {
	result, _ := DrawCommandsToJSON(e.DisplayList())
	return result
}

// ObjectIDs returns the ids of the path commands in painter's order.
func ObjectIDs(commands []DrawCommand) []string {
	var ids []string
	for _, c := range commands {
		if c.Op == OpPath && !slices.Contains(ids, c.ObjectID) {
			ids = append(ids, c.ObjectID)
		}
	}
	return ids
}
