package export

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"whiteboard/internal/domain"
	"whiteboard/internal/geometry"
)

const (
	cylinderCapRatio = 0.1
	documentWave     = 0.1
	sectionTitleGap  = 8.0
)

// writeShape emits one shape wrapped in a group carrying its rotation and
// opacity. Every built-in type has a case; unknown custom types draw as a
// plain rectangle.
func writeShape(buf *bytes.Buffer, s domain.Shape) {
	fmt.Fprintf(buf, `<g data-id="%s" data-type="%s"%s>`,
		escape(s.ID), escape(string(s.Type)), groupAttrs(s))

	switch s.Type {
	case domain.ShapeRectangle, domain.ShapeRoundedRectangle, domain.ShapeSticky:
		writeRect(buf, s)
	case domain.ShapeEllipse, domain.ShapeCircle:
		c := geometry.Center(s)
		fmt.Fprintf(buf, `<ellipse cx="%s" cy="%s" rx="%s" ry="%s"%s/>`,
			num(c.X), num(c.Y), num(s.Width/2), num(s.Height/2), paint(s))
	case domain.ShapeDiamond, domain.ShapeTriangle, domain.ShapeTriangleDown,
		domain.ShapePentagon, domain.ShapeHexagon, domain.ShapeStar,
		domain.ShapeCross, domain.ShapeParallelogram:
		pts, _ := geometry.PolygonVertices(s)
		fmt.Fprintf(buf, `<polygon points="%s"%s/>`, points(pts), paint(s))
	case domain.ShapeCylinder:
		writeCylinder(buf, s)
	case domain.ShapeDocument:
		writeDocumentShape(buf, s)
	case domain.ShapeText:
		writeText(buf, s.Text, geometry.Center(s), s.FontSizeValue(), color(s.StrokeValue()), "middle")
	case domain.ShapeFreedraw:
		writeFreedraw(buf, s)
	case domain.ShapeImage:
		writeImage(buf, s)
	case domain.ShapeStamp:
		writeText(buf, s.Emoji, geometry.Center(s), math.Min(s.Width, s.Height)*0.8, color(s.StrokeValue()), "middle")
	case domain.ShapeSection:
		writeRect(buf, s)
		if s.Text != "" {
			writeText(buf, s.Text, domain.Point{X: s.X, Y: s.Y - sectionTitleGap}, s.FontSizeValue(), color(s.StrokeValue()), "start")
		}
	case domain.ShapeTable:
		writeTable(buf, s)
	case domain.ShapeMindmap:
		writeMindmap(buf, s)
	case domain.ShapeEmbed:
		writeEmbed(buf, s)
	default:
		writeRect(buf, s)
	}

	if hasTextOverlay(s) {
		writeText(buf, s.Text, geometry.Center(s), s.FontSizeValue(), color(s.StrokeValue()), "middle")
	}
	buf.WriteString("</g>\n")
}

// hasTextOverlay reports whether the shape's text is drawn centred over
// its primitive. Types whose primitive already renders text are excluded.
func hasTextOverlay(s domain.Shape) bool {
	if s.Text == "" {
		return false
	}
	switch s.Type {
	case domain.ShapeText, domain.ShapeSection, domain.ShapeStamp,
		domain.ShapeTable, domain.ShapeMindmap, domain.ShapeEmbed:
		return false
	}
	return true
}

func groupAttrs(s domain.Shape) string {
	var b strings.Builder
	if r := s.RotationValue(); r != 0 {
		c := geometry.Center(s)
		fmt.Fprintf(&b, ` transform="rotate(%s %s %s)"`, num(r), num(c.X), num(c.Y))
	}
	if o := s.OpacityValue(); o < 1 {
		fmt.Fprintf(&b, ` opacity="%s"`, num(o))
	}
	return b.String()
}

func paint(s domain.Shape) string {
	return fmt.Sprintf(` fill="%s" stroke="%s" stroke-width="%s"`,
		color(s.FillValue()), color(s.StrokeValue()), num(s.StrokeWidthValue()))
}

func writeRect(buf *bytes.Buffer, s domain.Shape) {
	r := s.CornerRadiusValue()
	r = math.Min(r, math.Min(s.Width, s.Height)/2)
	fmt.Fprintf(buf, `<rect x="%s" y="%s" width="%s" height="%s"`, num(s.X), num(s.Y), num(s.Width), num(s.Height))
	if r > 0 {
		fmt.Fprintf(buf, ` rx="%s" ry="%s"`, num(r), num(r))
	}
	fmt.Fprintf(buf, `%s/>`, paint(s))
}

// writeCylinder draws the bottom cap, the body, the two side lines and
// finally the top cap so the top rim sits above the body.
func writeCylinder(buf *bytes.Buffer, s domain.Shape) {
	rx, ry := s.Width/2, s.Height*cylinderCapRatio
	cx := s.X + rx
	top, bottom := s.Y+ry, s.Y+s.Height-ry
	fill, stroke, sw := color(s.FillValue()), color(s.StrokeValue()), num(s.StrokeWidthValue())

	fmt.Fprintf(buf, `<ellipse cx="%s" cy="%s" rx="%s" ry="%s"%s/>`, num(cx), num(bottom), num(rx), num(ry), paint(s))
	fmt.Fprintf(buf, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s" stroke="none"/>`,
		num(s.X), num(top), num(s.Width), num(math.Max(bottom-top, 0)), fill)
	fmt.Fprintf(buf, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s"/>`,
		num(s.X), num(top), num(s.X), num(bottom), stroke, sw)
	fmt.Fprintf(buf, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s"/>`,
		num(s.X+s.Width), num(top), num(s.X+s.Width), num(bottom), stroke, sw)
	fmt.Fprintf(buf, `<ellipse cx="%s" cy="%s" rx="%s" ry="%s"%s/>`, num(cx), num(top), num(rx), num(ry), paint(s))
}

// writeDocumentShape draws a page whose bottom edge is a single wave.
func writeDocumentShape(buf *bytes.Buffer, s domain.Shape) {
	x, y, w, h := s.X, s.Y, s.Width, s.Height
	wave := h * documentWave
	base := y + h - wave
	d := fmt.Sprintf("M %s %s L %s %s L %s %s Q %s %s %s %s T %s %s Z",
		num(x), num(y),
		num(x+w), num(y),
		num(x+w), num(base),
		num(x+w*0.75), num(y+h), num(x+w*0.5), num(base),
		num(x), num(base))
	fmt.Fprintf(buf, `<path d="%s"%s/>`, d, paint(s))
}

// writeFreedraw draws the stroke through the shape's points, which are
// relative to its frame origin.
func writeFreedraw(buf *bytes.Buffer, s domain.Shape) {
	var d strings.Builder
	if len(s.Points) == 0 {
		fmt.Fprintf(&d, "M %s %s", num(s.X), num(s.Y))
	}
	for i, p := range s.Points {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		if i > 0 {
			d.WriteByte(' ')
		}
		fmt.Fprintf(&d, "%s %s %s", cmd, num(s.X+p.X), num(s.Y+p.Y))
	}
	fmt.Fprintf(buf, `<path d="%s" fill="none" stroke="%s" stroke-width="%s" stroke-linecap="round" stroke-linejoin="round"/>`,
		d.String(), color(s.StrokeValue()), num(s.StrokeWidthValue()))
}

func writeImage(buf *bytes.Buffer, s domain.Shape) {
	if s.Src == "" {
		fmt.Fprintf(buf, `<rect x="%s" y="%s" width="%s" height="%s" fill="#f1f5f9" stroke="%s" stroke-width="1" stroke-dasharray="4 4"/>`,
			num(s.X), num(s.Y), num(s.Width), num(s.Height), color(s.StrokeValue()))
		return
	}
	fmt.Fprintf(buf, `<image href="%s" x="%s" y="%s" width="%s" height="%s" preserveAspectRatio="xMidYMid meet"/>`,
		escape(s.Src), num(s.X), num(s.Y), num(s.Width), num(s.Height))
}
