// Package geometry holds the pure geometric kernel of the editor: shape
// centres, boundary intersections, fixed connection points and connector
// routes. Nothing here allocates shared state or fails; degenerate input
// collapses to the shape centre.
package geometry

import (
	"math"

	"whiteboard/internal/domain"
)

// Center returns the midpoint of the shape's frame.
func Center(s domain.Shape) domain.Point {
	return domain.Point{X: s.X + s.Width/2, Y: s.Y + s.Height/2}
}

// EdgePoint returns where the ray from the shape's centre toward target
// leaves the shape's boundary. A target equal to the centre has no
// direction and yields the centre.
func EdgePoint(s domain.Shape, target domain.Point) domain.Point {
	c := Center(s)
	dx := target.X - c.X
	dy := target.Y - c.Y
	if dx == 0 && dy == 0 {
		return c
	}
	hw, hh := s.Width/2, s.Height/2

	var t float64
	switch {
	case s.Type.IsEllipse() && hw > 0 && hh > 0:
		t = ellipseT(dx, dy, hw, hh)
	case s.Type.IsRhombus():
		t = rhombusT(dx, dy, hw, hh)
	default:
		t = rectT(dx, dy, hw, hh)
	}
	return domain.Point{X: c.X + dx*t, Y: c.Y + dy*t}
}

// ellipseT scales (dx,dy) onto the ellipse x²/a² + y²/b² = 1. The hit is
// the parametric boundary point at angle atan2(dy·a, dx·b), which lies on
// the ray for every aspect ratio.
func ellipseT(dx, dy, a, b float64) float64 {
	return 1 / math.Sqrt(dx*dx/(a*a)+dy*dy/(b*b))
}

// rhombusT scales (dx,dy) onto |x|/a + |y|/b = 1. A direction with no
// projection onto either half-diagonal returns 0.
func rhombusT(dx, dy, a, b float64) float64 {
	denom := ratio(math.Abs(dx), a) + ratio(math.Abs(dy), b)
	if denom == 0 || math.IsInf(denom, 0) || math.IsNaN(denom) {
		return 0
	}
	return 1 / denom
}

func ratio(n, d float64) float64 {
	if n == 0 {
		return 0
	}
	if d == 0 {
		return math.Inf(1)
	}
	return n / d
}

// rectT picks the vertical or horizontal edge the ray exits through by
// comparing |dx|·halfHeight with |dy|·halfWidth.
func rectT(dx, dy, hw, hh float64) float64 {
	adx, ady := math.Abs(dx), math.Abs(dy)
	switch {
	case adx == 0:
		return hh / ady
	case ady == 0:
		return hw / adx
	case adx*hh > ady*hw:
		return hw / adx
	default:
		return hh / ady
	}
}

// Anchors holds the four fixed cardinal connection points of a frame.
type Anchors struct {
	Top    domain.Point `json:"top"`
	Right  domain.Point `json:"right"`
	Bottom domain.Point `json:"bottom"`
	Left   domain.Point `json:"left"`
}

// ConnectionPoints returns the cardinal midpoints of the frame regardless
// of shape type.
func ConnectionPoints(s domain.Shape) Anchors {
	c := Center(s)
	return Anchors{
		Top:    domain.Point{X: c.X, Y: s.Y},
		Right:  domain.Point{X: s.X + s.Width, Y: c.Y},
		Bottom: domain.Point{X: c.X, Y: s.Y + s.Height},
		Left:   domain.Point{X: s.X, Y: c.Y},
	}
}

// At returns the fixed point for a cardinal name.
func (a Anchors) At(name domain.ConnectionPoint) (domain.Point, bool) {
	switch name {
	case domain.AnchorTop:
		return a.Top, true
	case domain.AnchorRight:
		return a.Right, true
	case domain.AnchorBottom:
		return a.Bottom, true
	case domain.AnchorLeft:
		return a.Left, true
	}
	return domain.Point{}, false
}

// ResolveConnectionPoint turns a named anchor into a coordinate. An auto
// anchor with a target is recomputed from the target's current centre;
// unknown names, center, and auto without a target resolve to the centre.
func ResolveConnectionPoint(s domain.Shape, named domain.ConnectionPoint, target *domain.Shape) domain.Point {
	if named == domain.AnchorAuto && target != nil {
		return EdgePoint(s, Center(*target))
	}
	if p, ok := ConnectionPoints(s).At(named); ok {
		return p
	}
	return Center(s)
}

// OrthogonalPath returns the elbow route from one point to another as
// start, two bend points, end. Side anchors force a horizontal first leg,
// top/bottom anchors a vertical first leg; otherwise the dominant axis
// decides.
func OrthogonalPath(from, to domain.Point, fromAnchor, toAnchor domain.ConnectionPoint) []domain.Point {
	horizontalFirst := math.Abs(to.X-from.X) > math.Abs(to.Y-from.Y)
	switch {
	case fromAnchor.IsHorizontal() || toAnchor.IsHorizontal():
		horizontalFirst = true
	case fromAnchor.IsVertical() || toAnchor.IsVertical():
		horizontalFirst = false
	}

	if horizontalFirst {
		midX := (from.X + to.X) / 2
		return []domain.Point{from, {X: midX, Y: from.Y}, {X: midX, Y: to.Y}, to}
	}
	midY := (from.Y + to.Y) / 2
	return []domain.Point{from, {X: from.X, Y: midY}, {X: to.X, Y: midY}, to}
}
