// Package guides computes smart alignment guides for a shape being
// dragged. It runs on every drag frame, so it keeps its per-shape work to
// a fixed set of reference values and never allocates per comparison.
package guides

import (
	"math"

	"whiteboard/internal/domain"
)

// DefaultThreshold is the snap distance in canvas pixels.
const DefaultThreshold = 5.0

// Options tunes ComputeGuides. Snap off still reports guides.
type Options struct {
	Threshold float64
	Snap      bool
}

// DefaultOptions snaps within DefaultThreshold.
func DefaultOptions() Options {
	return Options{Threshold: DefaultThreshold, Snap: true}
}

// Lines are guide coordinates to draw. Horizontal holds x positions
// compared along the horizontal axis (left, right, centre-x); Vertical
// holds y positions (top, bottom, centre-y).
type Lines struct {
	Horizontal []float64 `json:"horizontal"`
	Vertical   []float64 `json:"vertical"`
}

// Snap is the frame position the dragged shape should jump to. A nil axis
// means no snap on that axis.
type Snap struct {
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
}

// Result is what ComputeGuides found for one drag position.
type Result struct {
	Guides Lines `json:"guides"`
	Snap   Snap  `json:"snap"`
}

// ComputeGuides compares the dragged frame against every other visible
// shape. On each axis the three reference lines of the dragged frame
// (near edge, far edge, centre) are checked against the same three of the
// other shape, nine pairs in a fixed order. Every pair within the
// threshold contributes the other shape's coordinate as a guide; the
// first such pair on an axis sets the snap. Guides are deduplicated.
func ComputeGuides(dragging domain.Shape, all []domain.Shape, opts Options) Result {
	if opts.Threshold < 0 {
		opts.Threshold = DefaultThreshold
	}
	res := Result{Guides: Lines{Horizontal: []float64{}, Vertical: []float64{}}}

	dx := refs(dragging.X, dragging.Width)
	dy := refs(dragging.Y, dragging.Height)

	for _, other := range all {
		if other.ID == dragging.ID || !other.IsVisible() {
			continue
		}
		ox := refs(other.X, other.Width)
		oy := refs(other.Y, other.Height)

		res.Guides.Horizontal, res.Snap.X = match(dx, ox, dragging.X, opts, res.Guides.Horizontal, res.Snap.X)
		res.Guides.Vertical, res.Snap.Y = match(dy, oy, dragging.Y, opts, res.Guides.Vertical, res.Snap.Y)
	}
	return res
}

// refs returns near edge, far edge and centre along one axis.
func refs(pos, extent float64) [3]float64 {
	return [3]float64{pos, pos + extent, pos + extent/2}
}

func match(drag, other [3]float64, origin float64, opts Options, guides []float64, snap *float64) ([]float64, *float64) {
	for _, d := range drag {
		for _, o := range other {
			if math.Abs(d-o) > opts.Threshold {
				continue
			}
			guides = appendUnique(guides, o)
			if opts.Snap && snap == nil {
				v := origin + (o - d)
				snap = &v
			}
		}
	}
	return guides, snap
}

func appendUnique(vals []float64, v float64) []float64 {
	for _, x := range vals {
		if x == v {
			return vals
		}
	}
	return append(vals, v)
}
