package domain

import "math"

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (b BoundingBox) Right() float64  { return b.X + b.Width }
func (b BoundingBox) Bottom() float64 { return b.Y + b.Height }

func (b BoundingBox) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Pad grows the box by p on every side.
func (b BoundingBox) Pad(p float64) BoundingBox {
	return BoundingBox{X: b.X - p, Y: b.Y - p, Width: b.Width + 2*p, Height: b.Height + 2*p}
}

// Union returns the smallest box containing both b and o.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	minX := math.Min(b.X, o.X)
	minY := math.Min(b.Y, o.Y)
	maxX := math.Max(b.Right(), o.Right())
	maxY := math.Max(b.Bottom(), o.Bottom())
	return BoundingBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Intersects reports whether the interiors of b and o overlap.
func (b BoundingBox) Intersects(o BoundingBox) bool {
	return b.X < o.Right() && b.Right() > o.X &&
		b.Y < o.Bottom() && b.Bottom() > o.Y
}

// ConnectionPoint names where a connector attaches to a shape.
type ConnectionPoint string

const (
	AnchorTop    ConnectionPoint = "top"
	AnchorRight  ConnectionPoint = "right"
	AnchorBottom ConnectionPoint = "bottom"
	AnchorLeft   ConnectionPoint = "left"
	AnchorCenter ConnectionPoint = "center"
	AnchorAuto   ConnectionPoint = "auto"
)

// IsHorizontal reports whether the anchor leaves its shape sideways.
func (c ConnectionPoint) IsHorizontal() bool {
	return c == AnchorLeft || c == AnchorRight
}

// IsVertical reports whether the anchor leaves its shape up or down.
func (c ConnectionPoint) IsVertical() bool {
	return c == AnchorTop || c == AnchorBottom
}
