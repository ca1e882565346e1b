//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/inamate/transformer/internal/document"
	"github.com/inamate/transformer/internal/editor"
)

var ed *editor.Editor

func main() {
	ed = editor.New(editor.Options{})

	// Create the engine API object
	transformerEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	transformerEngine.Set("loadDocument", js.FuncOf(loadDocument))
	transformerEngine.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	transformerEngine.Set("setSelection", js.FuncOf(setSelection))
	transformerEngine.Set("applyTransform", js.FuncOf(applyTransform))
	transformerEngine.Set("pointerDown", js.FuncOf(pointerDown))
	transformerEngine.Set("pointerMove", js.FuncOf(pointerMove))
	transformerEngine.Set("pointerUp", js.FuncOf(pointerUp))
	transformerEngine.Set("pointerUpOutside", js.FuncOf(pointerUpOutside))
	transformerEngine.Set("tick", js.FuncOf(tick))

	// --- Queries (frontend ← backend) ---
	transformerEngine.Set("render", js.FuncOf(render))
	transformerEngine.Set("hitTest", js.FuncOf(hitTest))
	transformerEngine.Set("getCursor", js.FuncOf(getCursor))
	transformerEngine.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	transformerEngine.Set("getGizmoState", js.FuncOf(getGizmoState))
	transformerEngine.Set("getDocument", js.FuncOf(getDocument))
	transformerEngine.Set("getSelection", js.FuncOf(getSelection))

	// Register on global scope
	js.Global().Set("transformerEngine", transformerEngine)

	// Signal that WASM is ready
	js.Global().Set("transformerWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorResult(msg string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": msg})
}

func okResult() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func jsonResult(v interface{}) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResult(err.Error())
	}
	return js.ValueOf(string(data))
}

// point reads (x, y) from the first two arguments.
func point(args []js.Value) (float64, float64, bool) {
	if len(args) < 2 {
		return 0, 0, false
	}
	return args[0].Float(), args[1].Float(), true
}

// --- Command Handlers ---

func loadDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("missing document JSON")
	}
	if err := ed.LoadDocument([]byte(args[0].String())); err != nil {
		return errorResult(err.Error())
	}
	return okResult()
}

func loadSampleDocument(this js.Value, args []js.Value) interface{} {
	projectID := "proj_sample"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		projectID = args[0].String()
	}
	ed.LoadSample(projectID)
	return okResult()
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeObject {
		return jsonResult(ed.SetSelection(nil))
	}

	arr := args[0]
	ids := make([]string, arr.Length())
	for i := range ids {
		ids[i] = arr.Index(i).String()
	}
	return jsonResult(ed.SetSelection(ids))
}

func applyTransform(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("missing object id or transform")
	}
	var t document.Transform
	if err := json.Unmarshal([]byte(args[1].String()), &t); err != nil {
		return errorResult("invalid transform: " + err.Error())
	}
	if err := ed.ApplyTransform(args[0].String(), t); err != nil {
		return errorResult(err.Error())
	}
	return okResult()
}

func pointerDown(this js.Value, args []js.Value) interface{} {
	if x, y, ok := point(args); ok {
		ed.PointerDown(x, y)
	}
	return nil
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	if x, y, ok := point(args); ok {
		ed.PointerMove(x, y)
	}
	return nil
}

// pointerUp returns the committed transform changes as JSON.
func pointerUp(this js.Value, args []js.Value) interface{} {
	x, y, ok := point(args)
	if !ok {
		return jsonResult([]editor.TransformChange{})
	}
	changes := ed.PointerUp(x, y)
	if changes == nil {
		changes = []editor.TransformChange{}
	}
	return jsonResult(changes)
}

func pointerUpOutside(this js.Value, args []js.Value) interface{} {
	x, y, _ := point(args)
	changes := ed.PointerUpOutside(x, y)
	if changes == nil {
		changes = []editor.TransformChange{}
	}
	return jsonResult(changes)
}

func tick(this js.Value, args []js.Value) interface{} {
	ed.Tick()
	return nil
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	out, err := ed.RenderJSON()
	if err != nil {
		return errorResult(err.Error())
	}
	return js.ValueOf(out)
}

func hitTest(this js.Value, args []js.Value) interface{} {
	x, y, ok := point(args)
	if !ok {
		return js.ValueOf("")
	}
	return js.ValueOf(ed.HitTest(x, y))
}

func getCursor(this js.Value, args []js.Value) interface{} {
	x, y, ok := point(args)
	if !ok {
		return js.ValueOf("default")
	}
	return js.ValueOf(ed.Cursor(x, y))
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	return jsonResult(ed.SelectionBounds())
}

func getGizmoState(this js.Value, args []js.Value) interface{} {
	state, ok := ed.GizmoState()
	if !ok {
		return js.ValueOf("null")
	}
	return jsonResult(state)
}

func getDocument(this js.Value, args []js.Value) interface{} {
	data, err := ed.DocumentJSON()
	if err != nil {
		return js.ValueOf("null")
	}
	return js.ValueOf(string(data))
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return jsonResult(ed.Selection())
}
