package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whiteboard/internal/domain"
)

func TestPolygonVertices(t *testing.T) {
	counts := map[domain.ShapeType]int{
		domain.ShapeDiamond:       4,
		domain.ShapeTriangle:      3,
		domain.ShapeTriangleDown:  3,
		domain.ShapePentagon:      5,
		domain.ShapeHexagon:       6,
		domain.ShapeStar:          10,
		domain.ShapeCross:         12,
		domain.ShapeParallelogram: 4,
	}
	for typ, n := range counts {
		s := domain.Shape{Type: typ, X: 10, Y: 20, Width: 100, Height: 60}
		pts, ok := PolygonVertices(s)
		require.True(t, ok, typ)
		assert.Len(t, pts, n, typ)
		for _, p := range pts {
			assert.True(t, p.X >= 10-1e-9 && p.X <= 110+1e-9, "%s x=%v outside frame", typ, p.X)
			assert.True(t, p.Y >= 20-1e-9 && p.Y <= 80+1e-9, "%s y=%v outside frame", typ, p.Y)
		}
	}

	_, ok := PolygonVertices(rect("r", 0, 0, 10, 10))
	assert.False(t, ok)
}

func TestPolygonVertexFormulas(t *testing.T) {
	star, _ := PolygonVertices(domain.Shape{Type: domain.ShapeStar, Width: 100, Height: 100})
	assert.InDelta(t, 50, star[0].X, 1e-9)
	assert.InDelta(t, 0, star[0].Y, 1e-9)
	assert.InDelta(t, 50*StarInnerRatio, math.Hypot(star[1].X-50, star[1].Y-50), 1e-9)

	para, _ := PolygonVertices(domain.Shape{Type: domain.ShapeParallelogram, Width: 100, Height: 40})
	assert.Equal(t, domain.Point{X: 20, Y: 0}, para[0])
	assert.Equal(t, domain.Point{X: 0, Y: 40}, para[3])

	cross, _ := PolygonVertices(domain.Shape{Type: domain.ShapeCross, Width: 90, Height: 90})
	assert.Equal(t, domain.Point{X: 30, Y: 0}, cross[0])
	assert.Equal(t, domain.Point{X: 60, Y: 0}, cross[1])
}

func TestArrowHead(t *testing.T) {
	tip := domain.Point{X: 100, Y: 0}
	l, r := ArrowHead(domain.Point{X: 0, Y: 0}, tip)

	assert.InDelta(t, ArrowHeadLength, math.Hypot(l.X-tip.X, l.Y-tip.Y), 1e-9)
	assert.InDelta(t, ArrowHeadLength, math.Hypot(r.X-tip.X, r.Y-tip.Y), 1e-9)
	assert.InDelta(t, 100-12*math.Cos(math.Pi/6), l.X, 1e-9)
	assert.InDelta(t, 6, l.Y, 1e-9)
	assert.InDelta(t, -6, r.Y, 1e-9)
}

func TestBoundsOf(t *testing.T) {
	_, ok := BoundsOf(nil)
	assert.False(t, ok)

	box, ok := BoundsOf([]domain.Shape{rect("a", 0, 10, 50, 50), rect("b", 100, -5, 20, 20)})
	require.True(t, ok)
	assert.Equal(t, domain.BoundingBox{X: 0, Y: -5, Width: 120, Height: 65}, box)
}

func TestConnectorPath(t *testing.T) {
	idx := IndexShapes([]domain.Shape{rect("a", 0, 0, 100, 100), rect("b", 300, 0, 100, 100)})

	t.Run("missing endpoint", func(t *testing.T) {
		_, ok := ConnectorPath(domain.Connector{FromShapeID: "a", ToShapeID: "gone"}, idx)
		assert.False(t, ok)
	})

	t.Run("auto anchors aim at each other", func(t *testing.T) {
		p, ok := ConnectorPath(domain.Connector{Type: domain.ConnectorArrow, FromShapeID: "a", ToShapeID: "b"}, idx)
		require.True(t, ok)
		assert.Equal(t, []domain.Point{{X: 100, Y: 50}, {X: 300, Y: 50}}, p.Points)
		assert.Equal(t, domain.Point{X: 200, Y: 50}, p.Midpoint())
		assert.Equal(t, p.Start(), p.Approach())
	})

	t.Run("orthogonal", func(t *testing.T) {
		c := domain.Connector{Type: domain.ConnectorOrthogonal, FromShapeID: "a", ToShapeID: "b",
			FromAnchor: domain.AnchorBottom, ToAnchor: domain.AnchorTop}
		p, ok := ConnectorPath(c, idx)
		require.True(t, ok)
		assert.Equal(t, []domain.Point{{X: 50, Y: 100}, {X: 50, Y: 50}, {X: 350, Y: 50}, {X: 350, Y: 0}}, p.Points)
	})

	t.Run("curve", func(t *testing.T) {
		p, ok := ConnectorPath(domain.Connector{Type: domain.ConnectorCurve, FromShapeID: "a", ToShapeID: "b"}, idx)
		require.True(t, ok)
		assert.True(t, p.Curve)
		require.Len(t, p.Points, 3)
		assert.Equal(t, domain.Point{X: 200, Y: 0}, p.Points[1])
		assert.Equal(t, domain.Point{X: 200, Y: 25}, p.Midpoint())
	})
}

func assertOrthogonal(t *testing.T, pts []domain.Point) {
	t.Helper()
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		if math.Abs(a.X-b.X) > 0.5 && math.Abs(a.Y-b.Y) > 0.5 {
			t.Errorf("diagonal segment %v -> %v", a, b)
		}
	}
}

func TestRouteAroundAvoidsObstacle(t *testing.T) {
	from := domain.BoundingBox{X: 0, Y: 0, Width: 100, Height: 100}
	to := domain.BoundingBox{X: 300, Y: 0, Width: 100, Height: 100}
	wall := domain.BoundingBox{X: 175, Y: 0, Width: 50, Height: 100}

	pts := RouteAround(RouteRequest{
		Start: domain.Point{X: 100, Y: 50}, End: domain.Point{X: 300, Y: 50},
		StartSide: domain.AnchorRight, EndSide: domain.AnchorLeft,
		From: &from, To: &to, Obstacles: []domain.BoundingBox{wall},
	})

	require.GreaterOrEqual(t, len(pts), 4)
	assert.Equal(t, domain.Point{X: 100, Y: 50}, pts[0])
	assert.Equal(t, domain.Point{X: 300, Y: 50}, pts[len(pts)-1])
	assertOrthogonal(t, pts)
	for i := 1; i < len(pts); i++ {
		assert.False(t, crosses(pts[i-1], pts[i], wall), "segment %v -> %v crosses the wall", pts[i-1], pts[i])
	}
}

func TestRouteAroundWithoutFrames(t *testing.T) {
	pts := RouteAround(RouteRequest{
		Start: domain.Point{X: 100, Y: 50}, End: domain.Point{X: 300, Y: 50},
		StartSide: domain.AnchorRight, EndSide: domain.AnchorLeft,
	})
	assert.Equal(t, []domain.Point{{X: 100, Y: 50}, {X: 300, Y: 50}}, pts)

	pts = ElbowRoute(domain.Point{X: 0, Y: 0}, domain.Point{X: 100, Y: 100}, domain.AnchorBottom, domain.AnchorLeft)
	assert.Equal(t, []domain.Point{{X: 0, Y: 0}, {X: 0, Y: 100}, {X: 100, Y: 100}}, pts)
}

func TestFacingSide(t *testing.T) {
	wide := rect("w", 0, 0, 400, 40)
	assert.Equal(t, domain.AnchorBottom, FacingSide(wide, domain.Point{X: 250, Y: 100}))
	assert.Equal(t, domain.AnchorRight, FacingSide(wide, domain.Point{X: 1000, Y: 30}))
	assert.Equal(t, domain.AnchorLeft, FacingSide(wide, domain.Point{X: -10, Y: 20}))
	assert.Equal(t, domain.AnchorTop, FacingSide(wide, domain.Point{X: 200, Y: -50}))
}

func TestRouteConnector(t *testing.T) {
	shapes := []domain.Shape{
		rect("a", 0, 0, 100, 100),
		rect("wall", 175, 0, 50, 100),
		rect("b", 300, 0, 100, 100),
	}
	c := domain.Connector{ID: "c", Type: domain.ConnectorOrthogonal, FromShapeID: "a", ToShapeID: "b"}

	pts, ok := RouteConnector(c, shapes)
	require.True(t, ok)
	assert.Equal(t, domain.Point{X: 100, Y: 50}, pts[0])
	assert.Equal(t, domain.Point{X: 300, Y: 50}, pts[len(pts)-1])
	assertOrthogonal(t, pts)
	for i := 1; i < len(pts); i++ {
		assert.False(t, crosses(pts[i-1], pts[i], shapes[1].Frame()))
	}

	c.ToShapeID = "missing"
	_, ok = RouteConnector(c, shapes)
	assert.False(t, ok)
}
