package layout

import (
	"testing"

	"whiteboard/internal/domain"
)

func TestNextPosition_EmptyCanvas(t *testing.T) {
	p := NewPlacer()
	x, y := p.NextPosition(nil, 200, 120)
	if x != 0 || y != 0 {
		t.Errorf("expected (0, 0) for empty canvas, got (%.0f, %.0f)", x, y)
	}
}

func TestNextPosition_AvoidsExistingShapes(t *testing.T) {
	p := NewPlacer()
	existing := []domain.Shape{
		{X: 0, Y: 0, Width: 200, Height: 120},
		{X: 260, Y: 0, Width: 200, Height: 120},
	}
	x, y := p.NextPosition(existing, 200, 120)

	candidate := domain.BoundingBox{X: x, Y: y, Width: 200, Height: 120}
	for _, s := range existing {
		if candidate.Intersects(s.Frame().Pad(Padding)) {
			t.Errorf("position (%.0f, %.0f) overlaps shape at (%.0f, %.0f)", x, y, s.X, s.Y)
		}
	}
	if y != 0 {
		t.Errorf("expected a slot in the first row, got y=%.0f", y)
	}
}

func TestNextPosition_FullRowWrapsBelow(t *testing.T) {
	p := NewPlacer()
	existing := []domain.Shape{{X: 0, Y: 0, Width: MaxRowWidth, Height: 100}}
	x, y := p.NextPosition(existing, 100, 100)
	if x != 0 || y != 140 {
		t.Errorf("expected (0, 140), got (%.0f, %.0f)", x, y)
	}
}

func TestSnap(t *testing.T) {
	p := NewPlacer()
	tests := []struct {
		input, want float64
	}{
		{0, 0},
		{9, 0},
		{10, 20},
		{29, 20},
		{31, 40},
		{100, 100},
	}
	for _, tt := range tests {
		got := p.snap(tt.input)
		if got != tt.want {
			t.Errorf("snap(%.0f) = %.0f, want %.0f", tt.input, got, tt.want)
		}
	}
}
