// Package export writes boards out as standalone SVG files.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inamate/sketchboard/internal/engine"
	"github.com/inamate/sketchboard/internal/geometry"
)

// margin pads the viewBox around the drawing.
const margin = 10

// WriteSVG writes the path commands of a display list as an SVG document.
// Overlay ops (selection frames, handles, rubber bands) are skipped.
func WriteSVG(w io.Writer, commands []engine.DrawCommand) error {
	bw := bufio.NewWriter(w)

	box := pathBounds(commands)
	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %s %s">`+"\n",
		num(box.X-margin), num(box.Y-margin), num(box.Width+2*margin), num(box.Height+2*margin))

	for _, c := range commands {
		if c.Op != engine.OpPath {
			continue
		}
		fmt.Fprintf(bw, `  <path id=%q d=%q fill=%q stroke=%q stroke-width="%s"/>`+"\n",
			c.ObjectID, pathData(c.Path), c.Fill, c.Stroke, num(c.StrokeWidth))
	}

	bw.WriteString("</svg>\n")
	return bw.Flush()
}

func pathData(path []engine.PathCommand) string {
	var sb strings.Builder
	for i, seg := range path {
		if i > 0 {
			sb.WriteByte(' ')
		}
		for j, part := range seg {
			if j > 0 {
				sb.WriteByte(' ')
			}
			switch v := part.(type) {
			case string:
				sb.WriteString(v)
			case float64:
				sb.WriteString(num(v))
			}
		}
	}
	return sb.String()
}

func pathBounds(commands []engine.DrawCommand) geometry.Rect {
	var points []geometry.Point
	for _, c := range commands {
		if c.Op != engine.OpPath {
			continue
		}
		for _, seg := range c.Path {
			if len(seg) != 3 {
				continue
			}
			x, xok := seg[1].(float64)
			y, yok := seg[2].(float64)
			if xok && yok {
				points = append(points, geometry.Point{X: x, Y: y})
			}
		}
	}
	return geometry.BoundsOf(points)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
