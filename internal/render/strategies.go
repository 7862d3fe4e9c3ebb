package render

import (
	"math"
	"strings"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"whiteboard/internal/domain"
	"whiteboard/internal/export"
	"whiteboard/internal/geometry"
)

const (
	lineHeight       = 1.2
	cylinderCapRatio = 0.1
	documentWave     = 0.1
	sectionTitleGap  = 8.0
	imageFill        = "#f1f5f9"
	metaFill         = "#64748b"
	embedPadding     = 12.0
	embedRadius      = 8.0
)

func builtins() map[domain.ShapeType]Strategy {
	polygon := StrategyFunc(drawPolygon)
	rect := StrategyFunc(drawRect)
	ellipse := StrategyFunc(drawEllipse)
	return map[domain.ShapeType]Strategy{
		domain.ShapeRectangle:        rect,
		domain.ShapeRoundedRectangle: rect,
		domain.ShapeSticky:           rect,
		domain.ShapeEllipse:          ellipse,
		domain.ShapeCircle:           ellipse,
		domain.ShapeDiamond:          polygon,
		domain.ShapeTriangle:         polygon,
		domain.ShapeTriangleDown:     polygon,
		domain.ShapePentagon:         polygon,
		domain.ShapeHexagon:          polygon,
		domain.ShapeStar:             polygon,
		domain.ShapeCross:            polygon,
		domain.ShapeParallelogram:    polygon,
		domain.ShapeCylinder:         StrategyFunc(drawCylinder),
		domain.ShapeDocument:         StrategyFunc(drawDocument),
		domain.ShapeText:             StrategyFunc(drawText),
		domain.ShapeFreedraw:         StrategyFunc(drawFreedraw),
		domain.ShapeImage:            StrategyFunc(drawImage),
		domain.ShapeStamp:            StrategyFunc(drawStamp),
		domain.ShapeSection:          StrategyFunc(drawSection),
		domain.ShapeTable:            StrategyFunc(drawTable),
		domain.ShapeMindmap:          StrategyFunc(drawMindmap),
		domain.ShapeEmbed:            StrategyFunc(drawEmbed),
	}
}

// ─────────────────────────────────────────────────────────────
// Paint helpers
// ─────────────────────────────────────────────────────────────

// setColor selects hex at the given opacity. It reports false for
// transparent colors so callers can skip the operation.
func setColor(dc *gg.Context, hex string, opacity float64) bool {
	if hex == "" || hex == domain.FillTransparent || hex == "none" {
		return false
	}
	c := gg.Hex(hex)
	dc.SetRGBA(c.R, c.G, c.B, c.A*opacity)
	return true
}

// paintPath fills and strokes the current path in the shape's style, then
// clears it.
func paintPath(dc *gg.Context, s domain.Shape, fill string) (int, error) {
	defer dc.ClearPath()
	ops := 0
	if setColor(dc, fill, s.OpacityValue()) {
		if err := dc.FillPreserve(); err != nil {
			return ops, err
		}
		ops++
	}
	if sw := s.StrokeWidthValue(); sw > 0 && setColor(dc, s.StrokeValue(), s.OpacityValue()) {
		dc.SetLineWidth(sw)
		if err := dc.StrokePreserve(); err != nil {
			return ops, err
		}
		ops++
	}
	return ops, nil
}

func strokeOnly(dc *gg.Context, s domain.Shape) (int, error) {
	defer dc.ClearPath()
	if sw := s.StrokeWidthValue(); sw > 0 && setColor(dc, s.StrokeValue(), s.OpacityValue()) {
		dc.SetLineWidth(sw)
		if err := dc.StrokePreserve(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	return 0, nil
}

func tracePolygon(dc *gg.Context, pts []domain.Point) {
	for i, p := range pts {
		if i == 0 {
			dc.MoveTo(p.X, p.Y)
			continue
		}
		dc.LineTo(p.X, p.Y)
	}
	dc.ClosePath()
}

func drawable(s domain.Shape, ops int) Drawable {
	return Drawable{ShapeID: s.ID, Type: s.Type, Bounds: s.Frame(), Ops: ops}
}

// ─────────────────────────────────────────────────────────────
// Text
// ─────────────────────────────────────────────────────────────

// face returns a face of the given size from the shared font, loading the
// font file on first use. It reports false when no font is configured or
// the file cannot be read.
func (sh *Shared) face(size float64) (text.Face, bool) {
	if sh == nil || sh.FontPath == "" {
		return nil, false
	}
	sh.once.Do(func() {
		sh.source, sh.loadErr = text.NewFontSourceFromFile(sh.FontPath)
	})
	if sh.loadErr != nil {
		return nil, false
	}
	return sh.source.Face(size), true
}

// drawLabel draws content vertically centred on at. ax is the horizontal
// anchor: 0 for start, 0.5 for middle.
func drawLabel(dc *gg.Context, sh *Shared, content string, at domain.Point, size float64, hex string, opacity, ax float64) int {
	if content == "" {
		return 0
	}
	f, ok := sh.face(size)
	if !ok || !setColor(dc, hex, opacity) {
		return 0
	}
	dc.SetFont(f)
	lines := strings.Split(content, "\n")
	lh := size * lineHeight
	y := at.Y - float64(len(lines)-1)*lh/2
	for _, line := range lines {
		dc.DrawStringAnchored(line, at.X, y, ax, 0.5)
		y += lh
	}
	return len(lines)
}

// overlay draws the shape's own text centred on its frame.
func overlay(dc *gg.Context, s domain.Shape, sh *Shared) int {
	return drawLabel(dc, sh, s.Text, geometry.Center(s), s.FontSizeValue(), s.StrokeValue(), s.OpacityValue(), 0.5)
}

// ─────────────────────────────────────────────────────────────
// Strategies
// ─────────────────────────────────────────────────────────────

func drawRect(s domain.Shape, dc *gg.Context, sh *Shared) (Drawable, error) {
	r := math.Min(s.CornerRadiusValue(), math.Min(s.Width, s.Height)/2)
	if r > 0 {
		dc.DrawRoundedRectangle(s.X, s.Y, s.Width, s.Height, r)
	} else {
		dc.DrawRectangle(s.X, s.Y, s.Width, s.Height)
	}
	ops, err := paintPath(dc, s, s.FillValue())
	if err != nil {
		return drawable(s, ops), err
	}
	return drawable(s, ops+overlay(dc, s, sh)), nil
}

func drawEllipse(s domain.Shape, dc *gg.Context, sh *Shared) (Drawable, error) {
	c := geometry.Center(s)
	dc.DrawEllipse(c.X, c.Y, s.Width/2, s.Height/2)
	ops, err := paintPath(dc, s, s.FillValue())
	if err != nil {
		return drawable(s, ops), err
	}
	return drawable(s, ops+overlay(dc, s, sh)), nil
}

func drawPolygon(s domain.Shape, dc *gg.Context, sh *Shared) (Drawable, error) {
	pts, ok := geometry.PolygonVertices(s)
	if !ok {
		return drawRect(s, dc, sh)
	}
	tracePolygon(dc, pts)
	ops, err := paintPath(dc, s, s.FillValue())
	if err != nil {
		return drawable(s, ops), err
	}
	return drawable(s, ops+overlay(dc, s, sh)), nil
}

func drawCylinder(s domain.Shape, dc *gg.Context, sh *Shared) (Drawable, error) {
	rx, ry := s.Width/2, s.Height*cylinderCapRatio
	cx := s.X + rx
	top, bottom := s.Y+ry, s.Y+s.Height-ry
	total := 0

	dc.DrawEllipse(cx, bottom, rx, ry)
	ops, err := paintPath(dc, s, s.FillValue())
	total += ops
	if err != nil {
		return drawable(s, total), err
	}

	if setColor(dc, s.FillValue(), s.OpacityValue()) {
		dc.DrawRectangle(s.X, top, s.Width, math.Max(bottom-top, 0))
		if err := dc.Fill(); err != nil {
			return drawable(s, total), err
		}
		total++
	}

	dc.MoveTo(s.X, top)
	dc.LineTo(s.X, bottom)
	dc.MoveTo(s.X+s.Width, top)
	dc.LineTo(s.X+s.Width, bottom)
	ops, err = strokeOnly(dc, s)
	total += ops
	if err != nil {
		return drawable(s, total), err
	}

	dc.DrawEllipse(cx, top, rx, ry)
	ops, err = paintPath(dc, s, s.FillValue())
	total += ops
	if err != nil {
		return drawable(s, total), err
	}
	return drawable(s, total+overlay(dc, s, sh)), nil
}

func drawDocument(s domain.Shape, dc *gg.Context, sh *Shared) (Drawable, error) {
	x, y, w, h := s.X, s.Y, s.Width, s.Height
	wave := h * documentWave
	base := y + h - wave
	dc.MoveTo(x, y)
	dc.LineTo(x+w, y)
	dc.LineTo(x+w, base)
	dc.QuadraticTo(x+w*0.75, y+h, x+w*0.5, base)
	dc.QuadraticTo(x+w*0.25, base-wave, x, base)
	dc.ClosePath()
	ops, err := paintPath(dc, s, s.FillValue())
	if err != nil {
		return drawable(s, ops), err
	}
	return drawable(s, ops+overlay(dc, s, sh)), nil
}

func drawText(s domain.Shape, dc *gg.Context, sh *Shared) (Drawable, error) {
	return drawable(s, overlay(dc, s, sh)), nil
}

func drawFreedraw(s domain.Shape, dc *gg.Context, _ *Shared) (Drawable, error) {
	if len(s.Points) < 2 {
		return drawable(s, 0), nil
	}
	for i, p := range s.Points {
		if i == 0 {
			dc.MoveTo(s.X+p.X, s.Y+p.Y)
			continue
		}
		dc.LineTo(s.X+p.X, s.Y+p.Y)
	}
	ops, err := strokeOnly(dc, s)
	return drawable(s, ops), err
}

// drawImage draws a placeholder frame. Remote sources are never fetched
// while rasterizing.
func drawImage(s domain.Shape, dc *gg.Context, _ *Shared) (Drawable, error) {
	ops := 0
	if setColor(dc, imageFill, s.OpacityValue()) {
		dc.DrawRectangle(s.X, s.Y, s.Width, s.Height)
		if err := dc.Fill(); err != nil {
			return drawable(s, ops), err
		}
		ops++
	}
	dc.SetDash(4, 4)
	defer dc.ClearDash()
	dc.DrawRectangle(s.X, s.Y, s.Width, s.Height)
	dc.MoveTo(s.X, s.Y)
	dc.LineTo(s.X+s.Width, s.Y+s.Height)
	dc.MoveTo(s.X+s.Width, s.Y)
	dc.LineTo(s.X, s.Y+s.Height)
	n, err := strokeOnly(dc, s)
	return drawable(s, ops+n), err
}

func drawStamp(s domain.Shape, dc *gg.Context, sh *Shared) (Drawable, error) {
	size := math.Min(s.Width, s.Height) * 0.8
	return drawable(s, drawLabel(dc, sh, s.Emoji, geometry.Center(s), size, s.StrokeValue(), s.OpacityValue(), 0.5)), nil
}

func drawSection(s domain.Shape, dc *gg.Context, sh *Shared) (Drawable, error) {
	dc.DrawRectangle(s.X, s.Y, s.Width, s.Height)
	ops, err := paintPath(dc, s, s.FillValue())
	if err != nil {
		return drawable(s, ops), err
	}
	ops += drawLabel(dc, sh, s.Text, domain.Point{X: s.X, Y: s.Y - sectionTitleGap},
		s.FontSizeValue(), s.StrokeValue(), s.OpacityValue(), 0)
	return drawable(s, ops), nil
}

func drawTable(s domain.Shape, dc *gg.Context, sh *Shared) (Drawable, error) {
	dc.DrawRectangle(s.X, s.Y, s.Width, s.Height)
	total, err := paintPath(dc, s, s.FillValue())
	if err != nil {
		return drawable(s, total), err
	}
	t := s.Table
	if t == nil || t.Rows <= 0 || t.Cols <= 0 {
		return drawable(s, total), nil
	}

	cw, ch := s.Width/float64(t.Cols), s.Height/float64(t.Rows)
	size := math.Min(s.FontSizeValue(), ch*0.6)
	cellStyle := s
	cellStyle.StrokeWidth = domain.Float(s.StrokeWidthValue() / 2)
	for r := 0; r < t.Rows; r++ {
		for c := 0; c < t.Cols; c++ {
			cell := t.Cell(r, c)
			fill := s.FillValue()
			if cell.Fill != "" {
				fill = cell.Fill
			}
			x, y := s.X+float64(c)*cw, s.Y+float64(r)*ch
			dc.DrawRectangle(x, y, cw, ch)
			ops, err := paintPath(dc, cellStyle, fill)
			total += ops
			if err != nil {
				return drawable(s, total), err
			}
			total += drawLabel(dc, sh, cell.Text, domain.Point{X: x + cw/2, Y: y + ch/2}, size, s.StrokeValue(), s.OpacityValue(), 0.5)
		}
	}
	return drawable(s, total), nil
}

func drawMindmap(s domain.Shape, dc *gg.Context, sh *Shared) (Drawable, error) {
	nodes := export.LayoutMindmap(s)
	total := 0
	for _, n := range nodes {
		if n.Parent < 0 {
			continue
		}
		p := nodes[n.Parent].Box
		dc.MoveTo(p.Right(), p.Center().Y)
		dc.LineTo(n.Box.X, n.Box.Center().Y)
	}
	ops, err := strokeOnly(dc, s)
	total += ops
	if err != nil {
		return drawable(s, total), err
	}
	for _, n := range nodes {
		b := n.Box
		dc.DrawRoundedRectangle(b.X, b.Y, b.Width, b.Height, 6)
		ops, err := paintPath(dc, s, s.FillValue())
		total += ops
		if err != nil {
			return drawable(s, total), err
		}
		total += drawLabel(dc, sh, n.Node.Text, b.Center(), math.Min(s.FontSizeValue(), 14), s.StrokeValue(), s.OpacityValue(), 0.5)
	}
	return drawable(s, total), nil
}

func drawEmbed(s domain.Shape, dc *gg.Context, sh *Shared) (Drawable, error) {
	dc.DrawRoundedRectangle(s.X, s.Y, s.Width, s.Height, math.Min(embedRadius, math.Min(s.Width, s.Height)/2))
	total, err := paintPath(dc, s, s.FillValue())
	if err != nil || s.Embed == nil {
		return drawable(s, total), err
	}
	e := s.Embed
	x, y := s.X+embedPadding, s.Y+embedPadding
	o := s.OpacityValue()
	if e.SiteName != "" {
		y += 6
		total += drawLabel(dc, sh, e.SiteName, domain.Point{X: x, Y: y}, 11, metaFill, o, 0)
		y += 14
	}
	if e.Title != "" {
		y += 8
		total += drawLabel(dc, sh, e.Title, domain.Point{X: x, Y: y}, 15, s.StrokeValue(), o, 0)
		y += 18
	}
	if e.Description != "" {
		y += 7
		total += drawLabel(dc, sh, e.Description, domain.Point{X: x, Y: y}, 12, metaFill, o, 0)
	}
	if e.URL != "" {
		total += drawLabel(dc, sh, e.URL, domain.Point{X: x, Y: s.Y + s.Height - embedPadding - 5}, 11, metaFill, o, 0)
	}
	return drawable(s, total), nil
}

// fontCache holds the parsed font behind Shared.face.
type fontCache struct {
	once    sync.Once
	source  *text.FontSource
	loadErr error
}
