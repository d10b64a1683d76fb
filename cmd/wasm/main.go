//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/inamate/sketchboard/internal/document"
	"github.com/inamate/sketchboard/internal/engine"
	"github.com/inamate/sketchboard/internal/geometry"
	"github.com/inamate/sketchboard/internal/history"
	"github.com/inamate/sketchboard/internal/snapshot"
	"github.com/inamate/sketchboard/internal/typeid"
)

var eng *engine.Engine

func main() {
	eng = engine.New(document.NewFactory(typeid.ShapeIDs{}))

	api := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	api.Set("loadDocument", js.FuncOf(loadDocument))
	api.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	api.Set("addRectangle", js.FuncOf(addRectangle))
	api.Set("addPolygon", js.FuncOf(addPolygon))
	api.Set("deleteSelected", js.FuncOf(run(eng.DeleteSelected)))
	api.Set("moveSelected", js.FuncOf(moveSelected))
	api.Set("rotateSelected", js.FuncOf(rotateSelected))
	api.Set("groupSelected", js.FuncOf(groupSelected))
	api.Set("ungroupSelected", js.FuncOf(run(eng.UngroupSelected)))
	api.Set("duplicate", js.FuncOf(duplicate))
	api.Set("setFill", js.FuncOf(setFill))
	api.Set("setRotationCenter", js.FuncOf(setRotationCenter))
	api.Set("resetRotationCenter", js.FuncOf(run(eng.ResetRotationCenterSelected)))
	api.Set("undo", js.FuncOf(run(eng.Undo)))
	api.Set("redo", js.FuncOf(run(eng.Redo)))
	api.Set("setSelection", js.FuncOf(setSelection))
	api.Set("selectAll", js.FuncOf(func(js.Value, []js.Value) interface{} { eng.SelectAll(); return nil }))
	api.Set("clearSelection", js.FuncOf(func(js.Value, []js.Value) interface{} { eng.ClearSelection(); return nil }))
	api.Set("pointerDown", js.FuncOf(pointerDown))
	api.Set("pointerDrag", js.FuncOf(pointerDrag))
	api.Set("pointerUp", js.FuncOf(pointerUp))
	api.Set("pointerCancel", js.FuncOf(func(js.Value, []js.Value) interface{} { eng.PointerCancel(); return nil }))
	api.Set("onChange", js.FuncOf(onChange))

	// --- Queries (frontend ← engine) ---
	api.Set("render", js.FuncOf(render))
	api.Set("hitTest", js.FuncOf(hitTest))
	api.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	api.Set("getDocument", js.FuncOf(getDocument))
	api.Set("getSelection", js.FuncOf(getSelection))
	api.Set("getHistory", js.FuncOf(getHistory))

	js.Global().Set("sketchboardEngine", api)
	js.Global().Set("sketchboardWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func ok() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func fail(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func missing(what string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": "missing " + what})
}

// run adapts an argument-free engine call.
func run(fn func() error) func(js.Value, []js.Value) interface{} {
	return func(js.Value, []js.Value) interface{} {
		if err := fn(); err != nil {
			return fail(err)
		}
		return ok()
	}
}

func point(args []js.Value) geometry.Point {
	return geometry.Point{X: args[0].Float(), Y: args[1].Float()}
}

func toJSON(v any) string {
	data, _ := json.Marshal(v)
	return string(data)
}

// --- Command Handlers ---

func loadDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("document JSON")
	}
	shapes, err := snapshot.Decode([]byte(args[0].String()))
	if err != nil {
		return fail(err)
	}
	if err := eng.ImportSnapshot(shapes); err != nil {
		return fail(err)
	}
	return ok()
}

func loadSampleDocument(this js.Value, args []js.Value) interface{} {
	if err := eng.LoadSample(); err != nil {
		return fail(err)
	}
	return ok()
}

func addRectangle(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return missing("x, y, width, height")
	}
	id, err := eng.AddRectangle(args[0].Float(), args[1].Float(), args[2].Float(), args[3].Float())
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(id)
}

func addPolygon(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return missing("x, y, sides, sideLength")
	}
	id, err := eng.AddPolygon(args[0].Float(), args[1].Float(), args[2].Int(), args[3].Float())
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(id)
}

func moveSelected(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return missing("dx, dy")
	}
	if err := eng.MoveSelected(args[0].Float(), args[1].Float()); err != nil {
		return fail(err)
	}
	return ok()
}

func rotateSelected(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("angle")
	}
	absolute := len(args) > 1 && args[1].Truthy()
	if err := eng.RotateSelected(args[0].Float(), absolute); err != nil {
		return fail(err)
	}
	return ok()
}

func groupSelected(this js.Value, args []js.Value) interface{} {
	id, err := eng.GroupSelected()
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(id)
}

func duplicate(this js.Value, args []js.Value) interface{} {
	ids, err := eng.Duplicate()
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(toJSON(ids))
}

func setFill(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("color")
	}
	c, err := colorful.Hex(args[0].String())
	if err != nil {
		return fail(err)
	}
	if err := eng.SetFillSelected(c); err != nil {
		return fail(err)
	}
	return ok()
}

func setRotationCenter(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return missing("x, y")
	}
	if err := eng.SetRotationCenterSelected(point(args)); err != nil {
		return fail(err)
	}
	return ok()
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeObject {
		eng.ClearSelection()
		return nil
	}

	arr := args[0]
	ids := make([]string, arr.Length())
	for i := range ids {
		ids[i] = arr.Index(i).String()
	}
	eng.Select(ids...)
	return nil
}

func pointerDown(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return missing("x, y")
	}
	additive := len(args) > 2 && args[2].Truthy()
	out := eng.PointerDown(point(args), additive)
	return js.ValueOf(map[string]interface{}{"gesture": out.Gesture.String(), "hit": out.Hit})
}

func pointerDrag(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	eng.PointerDrag(point(args))
	return nil
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return missing("x, y")
	}
	if err := eng.PointerUp(point(args)); err != nil {
		return fail(err)
	}
	return ok()
}

// onChange registers a callback invoked with (event, description) after every
// history change.
func onChange(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeFunction {
		return missing("callback")
	}
	cb := args[0]
	eng.Subscribe(func(ev history.Event) {
		cb.Invoke(ev.Kind.String(), ev.Description)
	})
	return ok()
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Render())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	id, _ := eng.HitTest(point(args))
	return js.ValueOf(id)
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	box, ok := eng.SelectionBounds()
	if !ok {
		return js.ValueOf("null")
	}
	return js.ValueOf(engine.RectToJSON(box))
}

func getDocument(this js.Value, args []js.Value) interface{} {
	data, err := snapshot.Encode(eng.ExportSnapshot())
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(string(data))
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(toJSON(eng.Selection()))
}

func getHistory(this js.Value, args []js.Value) interface{} {
	undo, _ := eng.PeekUndo()
	redo, _ := eng.PeekRedo()
	return js.ValueOf(map[string]interface{}{
		"canUndo": eng.CanUndo(),
		"canRedo": eng.CanRedo(),
		"undo":    undo,
		"redo":    redo,
	})
}
