package document

import "github.com/lucasb-eyer/go-colorful"

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// NewSampleShapes builds the starter board: a rectangle, a hexagon, a
// triangle and a two-piece group.
func NewSampleShapes(f *Factory) []Shape {
	rect := f.NewRectangle(200, 200, 200, 150)
	rect.SetFillColor(mustHex("#e94560"))
	rect.SetBorderColor(mustHex("#000000"))

	hexagon := f.NewRegularPolygon(640, 360, 6, 80)
	hexagon.SetFillColor(mustHex("#0f3460"))
	hexagon.SetBorderColor(mustHex("#16213e"))

	triangle := f.NewRegularPolygon(1000, 275, 3, 150)
	triangle.SetFillColor(mustHex("#53d769"))
	triangle.SetBorderColor(mustHex("#2d6a4f"))

	body := f.NewRectangle(470, 400, 60, 100)
	body.SetFillColor(mustHex("#f5a623"))
	body.SetBorderColor(mustHex("#c78400"))

	head := f.NewRegularPolygon(500, 380, 8, 16)
	head.SetFillColor(mustHex("#bd10e0"))
	head.SetBorderColor(mustHex("#8b0ba8"))

	spinner := f.NewGroup(body, head)

	return []Shape{rect, hexagon, triangle, spinner}
}
