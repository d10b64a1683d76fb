// Package snapshot is the JSON wire format for board snapshots.
//
//	{"version":1,"savedAt":"2024-01-01T00:00:00Z","shapes":[
//	  {"kind":"rectangle","id":"rect_…","x":0,"y":0,"width":10,"height":10,...},
//	  {"kind":"group","id":"group_…","children":[...],...}]}
//
// Colors are "#rrggbb". A rotation center is written only when it was
// relocated.
package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/inamate/sketchboard/internal/document"
	"github.com/inamate/sketchboard/internal/geometry"
)

// Version is the format version written by Encode.
const Version = 1

var (
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	ErrUnknownKind        = errors.New("unknown shape kind")
	ErrMalformed          = errors.New("malformed snapshot")
)

// Encode serializes shapes into a snapshot stamped with the current time.
func Encode(shapes []document.Shape) ([]byte, error) {
	return EncodeAt(shapes, time.Now())
}

// EncodeAt serializes shapes into a snapshot stamped with savedAt.
func EncodeAt(shapes []document.Shape, savedAt time.Time) ([]byte, error) {
	list, err := encodeList(shapes)
	if err != nil {
		return nil, err
	}

	out := []byte(`{}`)
	if out, err = sjson.SetBytes(out, "version", Version); err != nil {
		return nil, fmt.Errorf("stamp version: %w", err)
	}
	if out, err = sjson.SetBytes(out, "savedAt", savedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return nil, fmt.Errorf("stamp savedAt: %w", err)
	}
	if out, err = sjson.SetRawBytes(out, "shapes", list); err != nil {
		return nil, fmt.Errorf("set shapes: %w", err)
	}
	return out, nil
}

func encodeList(shapes []document.Shape) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, s := range shapes {
		if i > 0 {
			buf.WriteByte(',')
		}
		raw, err := encodeShape(s)
		if err != nil {
			return nil, err
		}
		buf.Write(raw)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func encodeShape(s document.Shape) ([]byte, error) {
	st := document.StateOf(s)
	p := st.Props

	out := []byte(`{}`)
	var err error
	set := func(path string, v any) {
		if err == nil {
			out, err = sjson.SetBytes(out, path, v)
		}
	}

	set("kind", string(s.Kind()))
	set("id", s.ID())
	set("x", p.Position.X)
	set("y", p.Position.Y)
	set("rotation", p.Rotation)
	set("fill", p.FillColor.Hex())
	set("border", p.BorderColor.Hex())
	if st.CustomCenter {
		set("center.x", st.Center.X)
		set("center.y", st.Center.Y)
	}

	switch v := s.(type) {
	case *document.Rectangle:
		set("width", p.Width)
		set("height", p.Height)
		set("cornerRadius", p.CornerRadius)
	case *document.RegularPolygon:
		set("sides", p.Sides)
		set("sideLength", p.SideLength)
	case *document.Group:
		var children []byte
		if children, err = encodeList(v.Children()); err == nil {
			out, err = sjson.SetRawBytes(out, "children", children)
		}
	default:
		panic(fmt.Sprintf("snapshot: unknown shape %T", s))
	}

	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", s.ID(), err)
	}
	return out, nil
}

// Decode parses a snapshot into a detached shape tree.
func Decode(data []byte) ([]document.Shape, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformed)
	}
	if v := gjson.GetBytes(data, "version"); v.Int() != Version {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedVersion, v.Raw)
	}
	list := gjson.GetBytes(data, "shapes")
	if !list.IsArray() {
		return nil, fmt.Errorf("%w: shapes is not an array", ErrMalformed)
	}
	return decodeList(list)
}

// SavedAt returns the time a snapshot was encoded.
func SavedAt(data []byte) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, gjson.GetBytes(data, "savedAt").String())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: savedAt: %w", ErrMalformed, err)
	}
	return t, nil
}

func decodeList(list gjson.Result) ([]document.Shape, error) {
	items := list.Array()
	shapes := make([]document.Shape, 0, len(items))
	for _, item := range items {
		s, err := decodeShape(item)
		if err != nil {
			return nil, err
		}
		shapes = append(shapes, s)
	}
	return shapes, nil
}

func decodeShape(r gjson.Result) (document.Shape, error) {
	if !r.IsObject() {
		return nil, fmt.Errorf("%w: shape is not an object", ErrMalformed)
	}
	id := r.Get("id").String()
	if id == "" {
		return nil, fmt.Errorf("%w: shape without id", ErrMalformed)
	}

	st := document.State{ID: id}
	p := &st.Props
	var err error
	p.Position = geometry.Point{X: r.Get("x").Float(), Y: r.Get("y").Float()}
	p.Rotation = geometry.NormalizeDegrees(r.Get("rotation").Float())
	if p.FillColor, err = decodeColor(r, "fill", document.White); err != nil {
		return nil, err
	}
	if p.BorderColor, err = decodeColor(r, "border", document.Black); err != nil {
		return nil, err
	}
	if c := r.Get("center"); c.Exists() {
		st.Center = geometry.Point{X: c.Get("x").Float(), Y: c.Get("y").Float()}
		st.CustomCenter = true
	}

	var s document.Shape
	switch kind := document.Kind(r.Get("kind").String()); kind {
	case document.KindRectangle:
		p.Width = r.Get("width").Float()
		p.Height = r.Get("height").Float()
		p.CornerRadius = r.Get("cornerRadius").Float()
		s = document.NewRectangle(id, 0, 0, 0, 0)
	case document.KindPolygon:
		p.Sides = int(r.Get("sides").Int())
		p.SideLength = r.Get("sideLength").Float()
		s = document.NewRegularPolygon(id, 0, 0, 0, 0)
	case document.KindGroup:
		children, err := decodeList(r.Get("children"))
		if err != nil {
			return nil, err
		}
		s = document.NewGroup(id, children...)
	default:
		return nil, fmt.Errorf("%w: %q in %s", ErrUnknownKind, kind, id)
	}
	if err := document.CheckProps(s.Kind(), *p); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, id, err)
	}

	document.RestoreState(s, st)
	return s, nil
}

func decodeColor(r gjson.Result, key string, fallback colorful.Color) (colorful.Color, error) {
	v := r.Get(key)
	if !v.Exists() {
		return fallback, nil
	}
	c, err := colorful.Hex(v.String())
	if err != nil {
		return colorful.Color{}, fmt.Errorf("%w: %s: %w", ErrMalformed, key, err)
	}
	return c, nil
}
