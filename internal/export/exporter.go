package export

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"whiteboard/internal/domain"
)

// ErrNothingToExport is returned by visual exporters when no shape is
// visible.
var ErrNothingToExport = errors.New("nothing to export")

type Format string

const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatJSON Format = "json"
)

// Options configures every exporter. Scale and ThumbnailSide only affect
// PNG output; a zero ThumbnailSide keeps the full-size raster.
type Options struct {
	Padding       float64
	Background    string
	Scale         float64
	ThumbnailSide int
}

func DefaultOptions() Options {
	return Options{Padding: DefaultPadding, Scale: 1}
}

// ─────────────────────────────────────────────────────────────
// Exporter: one implementation per output format
// ─────────────────────────────────────────────────────────────

type Exporter interface {
	Format() Format
	Extension() string
	ContentType() string
	Export(doc domain.Document) ([]byte, error)
}

var constructors = map[Format]func(Options) Exporter{
	FormatSVG:  func(o Options) Exporter { return svgExporter{opts: o} },
	FormatPNG:  func(o Options) Exporter { return pngExporter{opts: o} },
	FormatJSON: func(Options) Exporter { return jsonExporter{} },
}

// Formats lists the supported formats in name order.
func Formats() []Format {
	out := make([]Format, 0, len(constructors))
	for f := range constructors {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseFormat accepts a format name or a file extension, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	if _, ok := constructors[f]; !ok {
		return "", fmt.Errorf("unsupported export format %q", s)
	}
	return f, nil
}

// NewExporter returns the exporter for f.
func NewExporter(f Format, opts Options) (Exporter, error) {
	ctor, ok := constructors[f]
	if !ok {
		return nil, fmt.Errorf("unsupported export format %q", f)
	}
	return ctor(opts), nil
}

type svgExporter struct{ opts Options }

func (svgExporter) Format() Format      { return FormatSVG }
func (svgExporter) Extension() string   { return ".svg" }
func (svgExporter) ContentType() string { return "image/svg+xml" }

func (e svgExporter) Export(doc domain.Document) ([]byte, error) {
	out, ok := SVG(doc.Shapes, doc.Connectors, SVGOptions{Padding: e.opts.Padding, Background: e.opts.Background})
	if !ok {
		return nil, ErrNothingToExport
	}
	return []byte(out), nil
}

type pngExporter struct{ opts Options }

func (pngExporter) Format() Format      { return FormatPNG }
func (pngExporter) Extension() string   { return ".png" }
func (pngExporter) ContentType() string { return "image/png" }

func (e pngExporter) Export(doc domain.Document) ([]byte, error) {
	out, ok := SVG(doc.Shapes, doc.Connectors, SVGOptions{Padding: e.opts.Padding})
	if !ok {
		return nil, ErrNothingToExport
	}
	data, err := RasterizeSVG(out, e.opts.Scale, e.opts.Background)
	if err != nil {
		return nil, err
	}
	if e.opts.ThumbnailSide > 0 {
		return Thumbnail(data, e.opts.ThumbnailSide)
	}
	return data, nil
}

type jsonExporter struct{}

func (jsonExporter) Format() Format      { return FormatJSON }
func (jsonExporter) Extension() string   { return ".json" }
func (jsonExporter) ContentType() string { return "application/json" }

func (jsonExporter) Export(doc domain.Document) ([]byte, error) {
	return domain.Serialize(doc.Shapes, doc.Connectors)
}
