// Package export renders a board to standalone documents: SVG markup,
// PNG rasters and the serialized JSON document.
package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"

	"whiteboard/internal/domain"
	"whiteboard/internal/geometry"
)

// DefaultPadding is the margin around the visible shapes in an export.
const DefaultPadding = 20.0

// SVGOptions tunes the vector export. The zero value has no padding and
// no background; use DefaultSVGOptions for the canvas defaults.
type SVGOptions struct {
	Padding    float64
	Background string
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Padding: DefaultPadding}
}

// Document renders the board with default options. ok is false when
// there is nothing visible to export.
func Document(shapes []domain.Shape, connectors []domain.Connector) (string, bool) {
	return SVG(shapes, connectors, DefaultSVGOptions())
}

// SVG renders visible shapes, then connectors whose endpoints are both
// present and visible, into a self-contained SVG document whose viewBox
// is the padded bounding box of the visible shapes.
func SVG(shapes []domain.Shape, connectors []domain.Connector, opts SVGOptions) (string, bool) {
	var visible []domain.Shape
	for _, s := range shapes {
		if s.IsVisible() {
			visible = append(visible, s)
		}
	}
	box, ok := geometry.BoundsOf(visible)
	if !ok {
		return "", false
	}
	box = box.Pad(opts.Padding)
	if box.Width <= 0 || box.Height <= 0 {
		return "", false
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="%s %s %s %s">`,
		num(box.Width), num(box.Height), num(box.X), num(box.Y), num(box.Width), num(box.Height))
	buf.WriteByte('\n')
	if opts.Background != "" {
		fmt.Fprintf(&buf, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`+"\n",
			num(box.X), num(box.Y), num(box.Width), num(box.Height), color(opts.Background))
	}

	for _, s := range visible {
		writeShape(&buf, s)
	}

	idx := geometry.IndexShapes(visible)
	for _, c := range connectors {
		writeConnector(&buf, c, idx)
	}

	buf.WriteString("</svg>\n")
	return buf.String(), true
}

// writeConnector draws a straight line between the centres of the two
// endpoint shapes, with optional arrowheads and a label at the midpoint.
func writeConnector(buf *bytes.Buffer, c domain.Connector, idx geometry.ShapeIndex) {
	src, ok1 := idx[c.FromShapeID]
	dst, ok2 := idx[c.ToShapeID]
	if !ok1 || !ok2 {
		return
	}
	from, to := geometry.Center(src), geometry.Center(dst)
	stroke := color(c.StrokeValue())

	fmt.Fprintf(buf, `<g data-connector="%s">`, escape(c.ID))
	fmt.Fprintf(buf, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s"%s/>`,
		num(from.X), num(from.Y), num(to.X), num(to.Y), stroke, num(c.StrokeWidthValue()), dashAttr(c.DashArray()))
	if c.HasEndArrow() {
		writeArrowHead(buf, from, to, stroke)
	}
	if c.HasStartArrow() {
		writeArrowHead(buf, to, from, stroke)
	}
	if c.Label != "" {
		mid := domain.Point{X: (from.X + to.X) / 2, Y: (from.Y + to.Y) / 2}
		writeText(buf, c.Label, mid, domain.DefaultFontSize*0.875, stroke, "middle")
	}
	buf.WriteString("</g>\n")
}

func writeArrowHead(buf *bytes.Buffer, from, tip domain.Point, stroke string) {
	l, r := geometry.ArrowHead(from, tip)
	fmt.Fprintf(buf, `<polygon points="%s" fill="%s"/>`, points([]domain.Point{tip, l, r}), stroke)
}

// writeText emits a text element centred vertically on at. Each line of
// content becomes a tspan; all content is escaped.
func writeText(buf *bytes.Buffer, content string, at domain.Point, size float64, fill, anchor string) {
	lines := strings.Split(content, "\n")
	lineHeight := size * 1.2
	y := at.Y - float64(len(lines)-1)*lineHeight/2

	fmt.Fprintf(buf, `<text x="%s" y="%s" font-family="sans-serif" font-size="%s" fill="%s" text-anchor="%s" dominant-baseline="middle">`,
		num(at.X), num(y), num(size), fill, anchor)
	if len(lines) == 1 {
		buf.WriteString(escape(content))
	} else {
		for i, line := range lines {
			dy := "0"
			if i > 0 {
				dy = num(lineHeight)
			}
			fmt.Fprintf(buf, `<tspan x="%s" dy="%s">%s</tspan>`, num(at.X), dy, escape(line))
		}
	}
	buf.WriteString("</text>")
}

// num formats v rounded to two decimals with no trailing zeros.
func num(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		return "0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func points(pts []domain.Point) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = num(p.X) + "," + num(p.Y)
	}
	return strings.Join(parts, " ")
}

// escape makes s safe for XML text and attribute values. Characters XML
// cannot carry, invalid UTF-8 included, become U+FFFD.
func escape(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

// color escapes a paint value; transparent becomes none, which every SVG
// consumer understands.
func color(c string) string {
	if c == "" || c == domain.FillTransparent {
		return "none"
	}
	return escape(c)
}

func dashAttr(dash []float64) string {
	if len(dash) == 0 {
		return ""
	}
	parts := make([]string, len(dash))
	for i, d := range dash {
		parts[i] = num(d)
	}
	return ` stroke-dasharray="` + strings.Join(parts, " ") + `"`
}
