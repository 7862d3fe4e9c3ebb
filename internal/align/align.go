// Package align snaps a selection of shapes to the edges or midlines of
// their shared bounding box, and spaces them evenly along an axis.
package align

import (
	"fmt"
	"math"
	"sort"

	"whiteboard/internal/domain"
)

// Mode names the edge or midline shapes are aligned to.
type Mode string

const (
	Left   Mode = "left"
	Center Mode = "center"
	Right  Mode = "right"
	Top    Mode = "top"
	Middle Mode = "middle"
	Bottom Mode = "bottom"
)

// Axis is the direction Distribute spaces shapes along.
type Axis string

const (
	Horizontal Axis = "horizontal"
	Vertical   Axis = "vertical"
)

// epsilon below which a computed position counts as unchanged.
const epsilon = 1e-9

// ParseMode validates a user-supplied alignment mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case Left, Center, Right, Top, Middle, Bottom:
		return m, nil
	}
	return "", fmt.Errorf("unknown align mode %q", s)
}

// ParseAxis validates a user-supplied distribution axis.
func ParseAxis(s string) (Axis, error) {
	switch a := Axis(s); a {
	case Horizontal, Vertical:
		return a, nil
	}
	return "", fmt.Errorf("unknown distribute axis %q", s)
}

// Align moves each shape's matching edge or midline onto the selection's
// bounding box. Only the affected axis is reported, and only for shapes
// that actually move. Fewer than two shapes, or an unknown mode, yield an
// empty update map.
func Align(shapes []domain.Shape, mode Mode) domain.Updates {
	updates := domain.Updates{}
	if len(shapes) < 2 {
		return updates
	}
	box := bounds(shapes)

	for _, s := range shapes {
		switch mode {
		case Left:
			setX(updates, s, box.X)
		case Right:
			setX(updates, s, box.Right()-s.Width)
		case Center:
			setX(updates, s, box.X+box.Width/2-s.Width/2)
		case Top:
			setY(updates, s, box.Y)
		case Bottom:
			setY(updates, s, box.Bottom()-s.Height)
		case Middle:
			setY(updates, s, box.Y+box.Height/2-s.Height/2)
		}
	}
	return updates
}

// Distribute spaces shapes so the gaps between neighbours along axis are
// equal. The first and last shapes along the axis define the span and
// never move. Fewer than three shapes yield an empty update map.
func Distribute(shapes []domain.Shape, axis Axis) domain.Updates {
	updates := domain.Updates{}
	if len(shapes) < 3 {
		return updates
	}
	pos, extent := func(s domain.Shape) float64 { return s.X }, func(s domain.Shape) float64 { return s.Width }
	set := setX
	if axis == Vertical {
		pos, extent = func(s domain.Shape) float64 { return s.Y }, func(s domain.Shape) float64 { return s.Height }
		set = setY
	} else if axis != Horizontal {
		return updates
	}

	sorted := append([]domain.Shape(nil), shapes...)
	sort.SliceStable(sorted, func(i, j int) bool { return pos(sorted[i]) < pos(sorted[j]) })

	first, last := sorted[0], sorted[len(sorted)-1]
	span := pos(last) + extent(last) - pos(first)
	total := 0.0
	for _, s := range sorted {
		total += extent(s)
	}
	gap := (span - total) / float64(len(sorted)-1)

	next := pos(first) + extent(first) + gap
	for _, s := range sorted[1 : len(sorted)-1] {
		set(updates, s, next)
		next += extent(s) + gap
	}
	return updates
}

func bounds(shapes []domain.Shape) domain.BoundingBox {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, s := range shapes {
		minX = math.Min(minX, s.X)
		minY = math.Min(minY, s.Y)
		maxX = math.Max(maxX, s.X+s.Width)
		maxY = math.Max(maxY, s.Y+s.Height)
	}
	return domain.BoundingBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

func setX(u domain.Updates, s domain.Shape, x float64) {
	if math.Abs(x-s.X) > epsilon {
		u.SetX(s.ID, x)
	}
}

func setY(u domain.Updates, s domain.Shape, y float64) {
	if math.Abs(y-s.Y) > epsilon {
		u.SetY(s.ID, y)
	}
}
