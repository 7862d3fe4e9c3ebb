package geometry

import (
	"math"

	"whiteboard/internal/domain"
)

// curveBend is how far a curve's control point sits off the chord, as a
// fraction of the chord length.
const curveBend = 0.25

// BoundsOf returns the union of the given frames. ok is false for an empty
// slice.
func BoundsOf(shapes []domain.Shape) (domain.BoundingBox, bool) {
	if len(shapes) == 0 {
		return domain.BoundingBox{}, false
	}
	box := shapes[0].Frame()
	for _, s := range shapes[1:] {
		box = box.Union(s.Frame())
	}
	return box, true
}

// ShapeIndex looks shapes up by id. Later duplicates never replace the
// first occurrence.
type ShapeIndex map[string]domain.Shape

func IndexShapes(shapes []domain.Shape) ShapeIndex {
	idx := make(ShapeIndex, len(shapes))
	for _, s := range shapes {
		if _, dup := idx[s.ID]; !dup {
			idx[s.ID] = s
		}
	}
	return idx
}

// Path is the drawable geometry of a connector. For curves Points holds
// start, control and end of a quadratic Bézier; otherwise it is a polyline.
type Path struct {
	Points []domain.Point `json:"points"`
	Curve  bool           `json:"curve,omitempty"`
}

// Start returns the first point of the path.
func (p Path) Start() domain.Point { return p.Points[0] }

// End returns the last point of the path.
func (p Path) End() domain.Point { return p.Points[len(p.Points)-1] }

// Midpoint returns the point half way along a polyline, or the curve's
// point at t=0.5.
func (p Path) Midpoint() domain.Point {
	if p.Curve && len(p.Points) == 3 {
		a, c, b := p.Points[0], p.Points[1], p.Points[2]
		return domain.Point{X: 0.25*a.X + 0.5*c.X + 0.25*b.X, Y: 0.25*a.Y + 0.5*c.Y + 0.25*b.Y}
	}
	total := 0.0
	for i := 1; i < len(p.Points); i++ {
		total += dist(p.Points[i-1], p.Points[i])
	}
	half := total / 2
	for i := 1; i < len(p.Points); i++ {
		seg := dist(p.Points[i-1], p.Points[i])
		if seg > 0 && half <= seg {
			t := half / seg
			a, b := p.Points[i-1], p.Points[i]
			return domain.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
		}
		half -= seg
	}
	return p.Start()
}

// Approach returns the point from which the path arrives at its end, used
// to orient an end arrowhead.
func (p Path) Approach() domain.Point {
	for i := len(p.Points) - 2; i >= 0; i-- {
		if p.Points[i] != p.End() {
			return p.Points[i]
		}
	}
	return p.Start()
}

// Departure returns the point the path heads to from its start.
func (p Path) Departure() domain.Point {
	for i := 1; i < len(p.Points); i++ {
		if p.Points[i] != p.Start() {
			return p.Points[i]
		}
	}
	return p.End()
}

func dist(a, b domain.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// ConnectorEndpoints resolves both anchors of c against the current
// frames in idx. Auto anchors aim at the other endpoint's centre. ok is
// false when either endpoint shape is missing.
func ConnectorEndpoints(c domain.Connector, idx ShapeIndex) (from, to domain.Point, ok bool) {
	src, ok1 := idx[c.FromShapeID]
	dst, ok2 := idx[c.ToShapeID]
	if !ok1 || !ok2 {
		return domain.Point{}, domain.Point{}, false
	}
	from = ResolveConnectionPoint(src, c.FromAnchorValue(), &dst)
	to = ResolveConnectionPoint(dst, c.ToAnchorValue(), &src)
	return from, to, true
}

// ConnectorPath returns the drawable path of c: a straight segment for
// line and arrow connectors, a quadratic curve for curves and an elbow
// route for orthogonal connectors.
func ConnectorPath(c domain.Connector, idx ShapeIndex) (Path, bool) {
	from, to, ok := ConnectorEndpoints(c, idx)
	if !ok {
		return Path{}, false
	}
	switch c.Type {
	case domain.ConnectorOrthogonal:
		return Path{Points: OrthogonalPath(from, to, c.FromAnchorValue(), c.ToAnchorValue())}, true
	case domain.ConnectorCurve:
		return Path{Points: []domain.Point{from, curveControl(from, to), to}, Curve: true}, true
	}
	return Path{Points: []domain.Point{from, to}}, true
}

// curveControl offsets the chord midpoint perpendicular to the chord,
// bending to the left of the direction of travel.
func curveControl(from, to domain.Point) domain.Point {
	mx, my := (from.X+to.X)/2, (from.Y+to.Y)/2
	dx, dy := to.X-from.X, to.Y-from.Y
	return domain.Point{X: mx + dy*curveBend, Y: my - dx*curveBend}
}
