package render

import (
	"bytes"
	"fmt"
	"log"
	"math"

	"github.com/gogpu/gg"

	"whiteboard/internal/domain"
	"whiteboard/internal/export"
	"whiteboard/internal/geometry"
)

const maxCanvasSide = 8192

// BoardOptions configures a full-board raster.
type BoardOptions struct {
	Padding    float64
	Scale      float64
	Background string
	Shared     *Shared
}

func DefaultBoardOptions() BoardOptions {
	return BoardOptions{Padding: export.DefaultPadding, Scale: 1, Background: domain.DefaultFill}
}

// RenderBoard draws every visible shape and connector of doc and returns
// the PNG bytes plus what each shape strategy drew. The canvas covers the
// padded bounding box of the visible shapes. A strategy error is logged
// and the shape skipped; the rest of the board still renders.
func RenderBoard(reg *Registry, doc domain.Document, opts BoardOptions) ([]byte, []Drawable, error) {
	var visible []domain.Shape
	for _, s := range doc.Shapes {
		if s.IsVisible() {
			visible = append(visible, s)
		}
	}
	box, ok := geometry.BoundsOf(visible)
	if !ok {
		return nil, nil, export.ErrNothingToExport
	}
	box = box.Pad(opts.Padding)
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	w := int(math.Ceil(box.Width * scale))
	h := int(math.Ceil(box.Height * scale))
	if w <= 0 || h <= 0 {
		return nil, nil, export.ErrNothingToExport
	}
	if w > maxCanvasSide || h > maxCanvasSide {
		return nil, nil, fmt.Errorf("render board: %dx%d exceeds %d px", w, h, maxCanvasSide)
	}

	dc := gg.NewContext(w, h)
	defer dc.Close()
	if opts.Background != "" && opts.Background != domain.FillTransparent {
		dc.ClearWithColor(gg.Hex(opts.Background))
	}
	dc.Scale(scale, scale)
	dc.Translate(-box.X, -box.Y)

	shared := opts.Shared
	if shared == nil {
		shared = &Shared{}
	}

	drawn := make([]Drawable, 0, len(visible))
	for _, s := range visible {
		d, err := drawShape(reg, s, dc, shared)
		if err != nil {
			log.Printf("render: %v", err)
			continue
		}
		drawn = append(drawn, d)
	}

	idx := geometry.IndexShapes(visible)
	for _, c := range doc.Connectors {
		if err := drawConnector(dc, c, idx, shared); err != nil {
			log.Printf("render: connector %s: %v", c.ID, err)
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), drawn, nil
}

// drawShape applies the shape's rotation around its centre for the
// duration of its strategy.
func drawShape(reg *Registry, s domain.Shape, dc *gg.Context, shared *Shared) (Drawable, error) {
	dc.Push()
	defer dc.Pop()
	if rot := s.RotationValue(); rot != 0 {
		c := geometry.Center(s)
		dc.RotateAbout(rot*math.Pi/180, c.X, c.Y)
	}
	return reg.Render(s, dc, shared)
}

// drawConnector strokes the connector's path, then its arrowheads and
// label. Connectors whose endpoints are missing or hidden are skipped.
func drawConnector(dc *gg.Context, c domain.Connector, idx geometry.ShapeIndex, shared *Shared) error {
	p, ok := geometry.ConnectorPath(c, idx)
	if !ok {
		return nil
	}
	stroke := c.StrokeValue()
	if !setColor(dc, stroke, 1) {
		return nil
	}

	start := p.Start()
	dc.MoveTo(start.X, start.Y)
	if p.Curve {
		dc.QuadraticTo(p.Points[1].X, p.Points[1].Y, p.Points[2].X, p.Points[2].Y)
	} else {
		for _, pt := range p.Points[1:] {
			dc.LineTo(pt.X, pt.Y)
		}
	}
	dc.SetLineWidth(c.StrokeWidthValue())
	dc.SetDash(c.DashArray()...)
	err := dc.Stroke()
	dc.ClearDash()
	if err != nil {
		return err
	}

	if c.HasEndArrow() {
		if err := fillArrowHead(dc, p.Approach(), p.End()); err != nil {
			return err
		}
	}
	if c.HasStartArrow() {
		if err := fillArrowHead(dc, p.Departure(), p.Start()); err != nil {
			return err
		}
	}
	drawLabel(dc, shared, c.Label, p.Midpoint(), domain.DefaultFontSize*0.875, stroke, 1, 0.5)
	return nil
}

func fillArrowHead(dc *gg.Context, from, tip domain.Point) error {
	l, r := geometry.ArrowHead(from, tip)
	tracePolygon(dc, []domain.Point{tip, l, r})
	return dc.Fill()
}

// ─────────────────────────────────────────────────────────────
// PNG exporter backed by the registry
// ─────────────────────────────────────────────────────────────

// Exporter produces PNG exports through the strategy registry instead of
// the SVG rasterizer, so custom shape types and fonts are honored.
type Exporter struct {
	reg  *Registry
	opts BoardOptions
	// thumb caps the longer side of the output when positive.
	thumb int
}

func NewExporter(reg *Registry, opts export.Options, fontPath string) *Exporter {
	return &Exporter{
		reg: reg,
		opts: BoardOptions{
			Padding:    opts.Padding,
			Scale:      opts.Scale,
			Background: opts.Background,
			Shared:     &Shared{FontPath: fontPath},
		},
		thumb: opts.ThumbnailSide,
	}
}

func (*Exporter) Format() export.Format { return export.FormatPNG }
func (*Exporter) Extension() string     { return ".png" }
func (*Exporter) ContentType() string   { return "image/png" }

func (e *Exporter) Export(doc domain.Document) ([]byte, error) {
	data, _, err := RenderBoard(e.reg, doc, e.opts)
	if err != nil {
		return nil, err
	}
	if e.thumb > 0 {
		return export.Thumbnail(data, e.thumb)
	}
	return data, nil
}

var _ export.Exporter = (*Exporter)(nil)
