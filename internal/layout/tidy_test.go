package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whiteboard/internal/domain"
)

func sh(id string, x, y, w, h float64) domain.Shape {
	return domain.Shape{ID: id, Type: domain.ShapeRectangle, X: x, Y: y, Width: w, Height: h}
}

func positions(shapes []domain.Shape) map[string]domain.Point {
	out := make(map[string]domain.Point, len(shapes))
	for _, s := range shapes {
		out[s.ID] = domain.Point{X: s.X, Y: s.Y}
	}
	return out
}

func noCenter(l Layout) Options {
	o := DefaultOptions(l)
	o.Center = false
	return o
}

func TestTidyUpTrivial(t *testing.T) {
	assert.Empty(t, TidyUp(nil, DefaultOptions(Grid)))
	one := []domain.Shape{sh("a", 3.3, 4.4, 10, 10)}
	assert.Equal(t, one, TidyUp(one, DefaultOptions(Grid)))
}

func TestTidyUpGridPreservesIDs(t *testing.T) {
	shapes := []domain.Shape{
		sh("a", 13, 400, 30, 20), sh("b", -50, 7, 80, 60), sh("c", 210, 90, 10, 10),
		sh("d", 5, 5, 45, 45), sh("e", 600, 620, 25, 70),
	}
	out := TidyUp(shapes, DefaultOptions(Grid))

	require.Len(t, out, len(shapes))
	seen := map[string]int{}
	for i, s := range out {
		seen[s.ID]++
		assert.Equal(t, shapes[i].ID, s.ID, "output keeps input order")
		assert.Equal(t, math.Round(s.X), s.X)
		assert.Equal(t, math.Round(s.Y), s.Y)
	}
	for _, s := range shapes {
		assert.Equal(t, 1, seen[s.ID])
	}
	// input untouched
	assert.Equal(t, 13.0, shapes[0].X)
}

func TestTidyUpGridRowsThenColumns(t *testing.T) {
	shapes := []domain.Shape{sh("d", 200, 150, 10, 10), sh("a", 0, 0, 10, 10), sh("c", 0, 150, 10, 10), sh("b", 200, 0, 10, 10)}

	got := positions(TidyUp(shapes, noCenter(Grid)))
	assert.Equal(t, domain.Point{X: 0, Y: 0}, got["a"])
	assert.Equal(t, domain.Point{X: 30, Y: 0}, got["b"])
	assert.Equal(t, domain.Point{X: 0, Y: 30}, got["c"])
	assert.Equal(t, domain.Point{X: 30, Y: 30}, got["d"])
}

func TestTidyUpGridCentersInCell(t *testing.T) {
	shapes := []domain.Shape{sh("big", 0, 0, 40, 40), sh("small", 100, 0, 20, 10)}

	got := positions(TidyUp(shapes, noCenter(Grid)))
	assert.Equal(t, domain.Point{X: 0, Y: 0}, got["big"])
	assert.Equal(t, domain.Point{X: 70, Y: 15}, got["small"])
}

func TestTidyUpHorizontal(t *testing.T) {
	shapes := []domain.Shape{sh("a", 0, 0, 50, 50), sh("b", 100, 0, 50, 30), sh("c", 40, 200, 50, 50)}

	got := positions(TidyUp(shapes, noCenter(Horizontal)))
	assert.Equal(t, domain.Point{X: 0, Y: 0}, got["a"])
	assert.Equal(t, domain.Point{X: 70, Y: 0}, got["c"])
	assert.Equal(t, domain.Point{X: 140, Y: 10}, got["b"])

	// centred on the original bounding box (75,125)
	got = positions(TidyUp(shapes, DefaultOptions(Horizontal)))
	assert.Equal(t, domain.Point{X: -20, Y: 100}, got["a"])
	assert.Equal(t, domain.Point{X: 50, Y: 100}, got["c"])
	assert.Equal(t, domain.Point{X: 120, Y: 110}, got["b"])
}

func TestTidyUpVerticalExplicitStart(t *testing.T) {
	shapes := []domain.Shape{sh("a", 0, 300, 40, 20), sh("b", 90, 10, 20, 20)}
	opts := DefaultOptions(Vertical)
	opts.StartX, opts.StartY = domain.Float(500), domain.Float(600)
	opts.Gap = 10

	got := positions(TidyUp(shapes, opts))
	assert.Equal(t, domain.Point{X: 510, Y: 600}, got["b"])
	assert.Equal(t, domain.Point{X: 500, Y: 630}, got["a"])
}

func TestTidyUpRoundsHalvesUp(t *testing.T) {
	shapes := []domain.Shape{sh("a", 0, 0, 20, 20), sh("b", 0, 100, 20, 20)}
	opts := DefaultOptions(Vertical)
	opts.StartX, opts.StartY = domain.Float(-2.5), domain.Float(-2.5)
	opts.Gap = 10

	got := positions(TidyUp(shapes, opts))
	assert.Equal(t, domain.Point{X: -2, Y: -2}, got["a"])
	assert.Equal(t, domain.Point{X: -2, Y: 28}, got["b"])
}

func TestTidyUpCircle(t *testing.T) {
	shapes := []domain.Shape{sh("n", 0, 0, 20, 20), sh("e", 0, 0, 20, 20), sh("s", 0, 0, 20, 20), sh("w", 0, 0, 20, 20)}
	opts := DefaultOptions(Circle)
	opts.StartX, opts.StartY = domain.Float(0), domain.Float(0)

	r := 4 * 40 / (2 * math.Pi)
	got := positions(TidyUp(shapes, opts))
	assert.Equal(t, domain.Point{X: math.Round(r - 10), Y: -10}, got["n"])
	assert.Equal(t, domain.Point{X: math.Round(2*r - 10), Y: math.Round(r - 10)}, got["e"])
	assert.Equal(t, domain.Point{X: math.Round(r - 10), Y: math.Round(2*r - 10)}, got["s"])
	assert.Equal(t, domain.Point{X: -10, Y: math.Round(r - 10)}, got["w"])
}

func TestDetectBestLayout(t *testing.T) {
	tests := []struct {
		name   string
		shapes []domain.Shape
		want   Layout
	}{
		{"two shapes", []domain.Shape{sh("a", 0, 0, 10, 500), sh("b", 0, 600, 10, 10)}, Horizontal},
		{"wide", []domain.Shape{sh("a", 0, 0, 10, 10), sh("b", 100, 0, 10, 10), sh("c", 200, 0, 10, 10)}, Horizontal},
		{"tall", []domain.Shape{sh("a", 0, 0, 10, 10), sh("b", 0, 100, 10, 10), sh("c", 0, 200, 10, 10)}, Vertical},
		{"square", []domain.Shape{sh("a", 0, 0, 10, 10), sh("b", 100, 0, 10, 10), sh("c", 0, 100, 10, 10)}, Grid},
		{"flat", []domain.Shape{sh("a", 0, 0, 0, 0), sh("b", 0, 0, 0, 0), sh("c", 0, 0, 0, 0)}, Horizontal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectBestLayout(tt.shapes))
		})
	}
}

func TestTidyUpAuto(t *testing.T) {
	shapes := []domain.Shape{sh("a", 0, 0, 10, 10), sh("b", 0, 100, 10, 10), sh("c", 0, 200, 10, 10)}
	assert.Equal(t, TidyUp(shapes, noCenter(Vertical)), TidyUp(shapes, noCenter(Auto)))
}

func TestParseLayout(t *testing.T) {
	l, err := ParseLayout("circle")
	require.NoError(t, err)
	assert.Equal(t, Circle, l)
	_, err = ParseLayout("spiral")
	assert.Error(t, err)
}
