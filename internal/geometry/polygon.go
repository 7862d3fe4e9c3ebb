package geometry

import (
	"math"

	"whiteboard/internal/domain"
)

const (
	// StarInnerRatio is the inner radius of a star as a fraction of its outer radius.
	StarInnerRatio = 0.4
	// CrossArmRatio is the arm thickness of a cross as a fraction of the frame.
	CrossArmRatio = 1.0 / 3.0
	// ParallelogramSkew is the horizontal offset of a parallelogram as a fraction of its width.
	ParallelogramSkew = 0.2

	// ArrowHeadLength is the length of each arrowhead barb.
	ArrowHeadLength = 12.0
	arrowHeadAngle  = math.Pi / 6
)

// PolygonVertices returns the outline of a polygonal shape in frame
// coordinates. ok is false for types that are not drawn as a polygon.
func PolygonVertices(s domain.Shape) ([]domain.Point, bool) {
	x, y, w, h := s.X, s.Y, s.Width, s.Height
	cx, cy := x+w/2, y+h/2

	switch s.Type {
	case domain.ShapeDiamond:
		return []domain.Point{{X: cx, Y: y}, {X: x + w, Y: cy}, {X: cx, Y: y + h}, {X: x, Y: cy}}, true
	case domain.ShapeTriangle:
		return []domain.Point{{X: cx, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}}, true
	case domain.ShapeTriangleDown:
		return []domain.Point{{X: x, Y: y}, {X: x + w, Y: y}, {X: cx, Y: y + h}}, true
	case domain.ShapePentagon:
		return regular(cx, cy, w/2, h/2, 5, -math.Pi/2), true
	case domain.ShapeHexagon:
		return regular(cx, cy, w/2, h/2, 6, 0), true
	case domain.ShapeStar:
		return star(cx, cy, w/2, h/2), true
	case domain.ShapeCross:
		return cross(x, y, w, h), true
	case domain.ShapeParallelogram:
		skew := w * ParallelogramSkew
		return []domain.Point{{X: x + skew, Y: y}, {X: x + w, Y: y}, {X: x + w - skew, Y: y + h}, {X: x, Y: y + h}}, true
	}
	return nil, false
}

// regular places n vertices on the ellipse inscribed in the frame,
// starting at angle start and stepping evenly.
func regular(cx, cy, rx, ry float64, n int, start float64) []domain.Point {
	pts := make([]domain.Point, n)
	step := 2 * math.Pi / float64(n)
	for i := range pts {
		a := start + float64(i)*step
		pts[i] = domain.Point{X: cx + rx*math.Cos(a), Y: cy + ry*math.Sin(a)}
	}
	return pts
}

func star(cx, cy, rx, ry float64) []domain.Point {
	pts := make([]domain.Point, 10)
	for i := range pts {
		a := -math.Pi/2 + float64(i)*math.Pi/5
		k := 1.0
		if i%2 == 1 {
			k = StarInnerRatio
		}
		pts[i] = domain.Point{X: cx + rx*k*math.Cos(a), Y: cy + ry*k*math.Sin(a)}
	}
	return pts
}

func cross(x, y, w, h float64) []domain.Point {
	ax, ay := w*CrossArmRatio, h*CrossArmRatio
	l, r := x+(w-ax)/2, x+(w+ax)/2
	t, b := y+(h-ay)/2, y+(h+ay)/2
	return []domain.Point{
		{X: l, Y: y}, {X: r, Y: y}, {X: r, Y: t}, {X: x + w, Y: t},
		{X: x + w, Y: b}, {X: r, Y: b}, {X: r, Y: y + h}, {X: l, Y: y + h},
		{X: l, Y: b}, {X: x, Y: b}, {X: x, Y: t}, {X: l, Y: t},
	}
}

// ArrowHead returns the two barb points of an arrowhead whose tip sits at
// tip and whose shaft arrives from from. Each barb is ArrowHeadLength long
// and rotated ±30° off the reversed shaft direction.
func ArrowHead(from, tip domain.Point) (domain.Point, domain.Point) {
	angle := math.Atan2(tip.Y-from.Y, tip.X-from.X)
	left := domain.Point{
		X: tip.X - ArrowHeadLength*math.Cos(angle-arrowHeadAngle),
		Y: tip.Y - ArrowHeadLength*math.Sin(angle-arrowHeadAngle),
	}
	right := domain.Point{
		X: tip.X - ArrowHeadLength*math.Cos(angle+arrowHeadAngle),
		Y: tip.Y - ArrowHeadLength*math.Sin(angle+arrowHeadAngle),
	}
	return left, right
}
