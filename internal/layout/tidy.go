// Package layout rearranges groups of shapes into regular arrangements and
// finds free space for new shapes.
package layout

import (
	"fmt"
	"math"
	"sort"

	"whiteboard/internal/domain"
)

// Layout names a TidyUp arrangement.
type Layout string

const (
	Grid       Layout = "grid"
	Horizontal Layout = "horizontal"
	Vertical   Layout = "vertical"
	Circle     Layout = "circle"
	// Auto picks a layout with DetectBestLayout.
	Auto Layout = "auto"
)

const (
	DefaultGap = 20.0
	// rowBucket groups shapes whose tops fall in the same band into one
	// visual row before a grid is filled.
	rowBucket = 100.0
)

// ParseLayout validates a user-supplied layout name.
func ParseLayout(s string) (Layout, error) {
	switch l := Layout(s); l {
	case Grid, Horizontal, Vertical, Circle, Auto:
		return l, nil
	}
	return "", fmt.Errorf("unknown layout %q", s)
}

// Options controls TidyUp. StartX/StartY pin the top-left of the
// arrangement; otherwise it is centred on the original bounding box when
// Center is set, or anchored at its top-left when not.
type Options struct {
	Layout  Layout
	Gap     float64
	Center  bool
	StartX  *float64
	StartY  *float64
	Columns int
}

// DefaultOptions returns centred options for l with DefaultGap.
func DefaultOptions(l Layout) Options {
	return Options{Layout: l, Gap: DefaultGap, Center: true}
}

// TidyUp returns copies of shapes moved into the requested arrangement,
// in input order, with positions rounded to whole pixels. Collections of
// zero or one shape come back unchanged.
func TidyUp(shapes []domain.Shape, opts Options) []domain.Shape {
	out := append([]domain.Shape(nil), shapes...)
	if len(out) <= 1 {
		return out
	}
	if opts.Gap < 0 {
		opts.Gap = DefaultGap
	}
	l := opts.Layout
	if l == Auto || l == "" {
		l = DetectBestLayout(shapes)
	}

	box := bounds(shapes)
	switch l {
	case Grid:
		grid(out, box, opts)
	case Horizontal:
		line(out, box, opts, true)
	case Vertical:
		line(out, box, opts, false)
	case Circle:
		circle(out, box, opts)
	default:
		return out
	}
	for i := range out {
		out[i].X = roundHalfUp(out[i].X)
		out[i].Y = roundHalfUp(out[i].Y)
	}
	return out
}

// DetectBestLayout suggests a layout from the aspect ratio of the
// selection's bounding box.
func DetectBestLayout(shapes []domain.Shape) Layout {
	if len(shapes) <= 2 {
		return Horizontal
	}
	box := bounds(shapes)
	if box.Height == 0 {
		return Horizontal
	}
	switch aspect := box.Width / box.Height; {
	case aspect > 2:
		return Horizontal
	case aspect < 0.5:
		return Vertical
	}
	return Grid
}

// origin picks the top-left of an arrangement of size w×h.
func origin(box domain.BoundingBox, w, h float64, opts Options) (float64, float64) {
	x, y := box.X, box.Y
	if opts.Center {
		c := box.Center()
		x, y = c.X-w/2, c.Y-h/2
	}
	if opts.StartX != nil {
		x = *opts.StartX
	}
	if opts.StartY != nil {
		y = *opts.StartY
	}
	return x, y
}

func grid(shapes []domain.Shape, box domain.BoundingBox, opts Options) {
	n := len(shapes)
	order := indices(n)
	sort.SliceStable(order, func(i, j int) bool {
		a, b := shapes[order[i]], shapes[order[j]]
		ra, rb := math.Floor(a.Y/rowBucket), math.Floor(b.Y/rowBucket)
		if ra != rb {
			return ra < rb
		}
		return a.X < b.X
	})

	cols := opts.Columns
	if cols <= 0 {
		cols = int(math.Ceil(math.Sqrt(float64(n))))
	}
	rows := (n + cols - 1) / cols
	usedCols := min(cols, n)

	var cellW, cellH float64
	for _, s := range shapes {
		cellW = math.Max(cellW, s.Width)
		cellH = math.Max(cellH, s.Height)
	}
	gridW := float64(usedCols)*cellW + float64(usedCols-1)*opts.Gap
	gridH := float64(rows)*cellH + float64(rows-1)*opts.Gap
	ox, oy := origin(box, gridW, gridH, opts)

	for slot, i := range order {
		col, row := slot%cols, slot/cols
		s := &shapes[i]
		s.X = ox + float64(col)*(cellW+opts.Gap) + (cellW-s.Width)/2
		s.Y = oy + float64(row)*(cellH+opts.Gap) + (cellH-s.Height)/2
	}
}

// line lays shapes end to end along one axis, centring each on the
// tallest (or widest) member across the other axis.
func line(shapes []domain.Shape, box domain.BoundingBox, opts Options, horizontal bool) {
	order := indices(len(shapes))
	sort.SliceStable(order, func(i, j int) bool {
		if horizontal {
			return shapes[order[i]].X < shapes[order[j]].X
		}
		return shapes[order[i]].Y < shapes[order[j]].Y
	})

	var length, cross float64
	for _, s := range shapes {
		if horizontal {
			length += s.Width
			cross = math.Max(cross, s.Height)
		} else {
			length += s.Height
			cross = math.Max(cross, s.Width)
		}
	}
	length += float64(len(shapes)-1) * opts.Gap

	if horizontal {
		ox, oy := origin(box, length, cross, opts)
		cursor := ox
		for _, i := range order {
			s := &shapes[i]
			s.X, s.Y = cursor, oy+(cross-s.Height)/2
			cursor += s.Width + opts.Gap
		}
		return
	}
	ox, oy := origin(box, cross, length, opts)
	cursor := oy
	for _, i := range order {
		s := &shapes[i]
		s.X, s.Y = ox+(cross-s.Width)/2, cursor
		cursor += s.Height + opts.Gap
	}
}

// circle spaces shapes evenly on a ring whose circumference fits each
// shape's average extent plus the gap, starting at twelve o'clock.
func circle(shapes []domain.Shape, box domain.BoundingBox, opts Options) {
	n := float64(len(shapes))
	var sum float64
	for _, s := range shapes {
		sum += math.Max(s.Width, s.Height)
	}
	avg := sum / n
	r := n * (avg + opts.Gap) / (2 * math.Pi)

	ox, oy := origin(box, 2*r, 2*r, opts)
	cx, cy := ox+r, oy+r

	for i := range shapes {
		a := -math.Pi/2 + float64(i)*2*math.Pi/n
		s := &shapes[i]
		s.X = cx + r*math.Cos(a) - s.Width/2
		s.Y = cy + r*math.Sin(a) - s.Height/2
	}
}

func bounds(shapes []domain.Shape) domain.BoundingBox {
	box := shapes[0].Frame()
	for _, s := range shapes[1:] {
		box = box.Union(s.Frame())
	}
	return box
}

func indices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// roundHalfUp rounds to the nearest integer with halves going up, so -2.5
// becomes -2 like the editor's own coordinates.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
