package layout

import (
	"math"

	"whiteboard/internal/domain"
)

const (
	GridSize    = 20.0
	Padding     = 40.0 // two grid cells between shapes
	MaxRowWidth = 1600.0
)

// Placer finds free canvas space for shapes created without coordinates,
// such as those added by an agent.
type Placer struct {
	gridSize    float64
	padding     float64
	maxRowWidth float64
}

func NewPlacer() *Placer {
	return &Placer{
		gridSize:    GridSize,
		padding:     Padding,
		maxRowWidth: MaxRowWidth,
	}
}

// snap rounds v to the nearest grid point.
func (p *Placer) snap(v float64) float64 {
	return math.Round(v/p.gridSize) * p.gridSize
}

// NextPosition returns the first grid slot, scanning rows top to bottom
// and columns left to right, where a w×h frame keeps Padding clear of
// every existing shape.
func (p *Placer) NextPosition(existing []domain.Shape, w, h float64) (float64, float64) {
	if len(existing) == 0 {
		return 0, 0
	}

	occupied := make([]domain.BoundingBox, len(existing))
	for i, s := range existing {
		occupied[i] = s.Frame().Pad(p.padding)
	}

	candidate := domain.BoundingBox{Width: w, Height: h}
	for y := 0.0; y < 100000; y += p.gridSize {
		for x := 0.0; x < p.maxRowWidth; x += p.gridSize {
			candidate.X = p.snap(x)
			candidate.Y = p.snap(y)
			if !overlapsAny(candidate, occupied) {
				return candidate.X, candidate.Y
			}
		}
	}

	// below everything
	maxY := 0.0
	for _, s := range existing {
		maxY = math.Max(maxY, s.Y+s.Height)
	}
	return 0, p.snap(maxY + p.padding)
}

func overlapsAny(b domain.BoundingBox, others []domain.BoundingBox) bool {
	for _, o := range others {
		if b.Intersects(o) {
			return true
		}
	}
	return false
}
