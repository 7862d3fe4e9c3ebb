package domain

type ConnectorType string

const (
	ConnectorLine       ConnectorType = "line"
	ConnectorArrow      ConnectorType = "arrow"
	ConnectorCurve      ConnectorType = "curve"
	ConnectorOrthogonal ConnectorType = "orthogonal"
)

type LineStyle string

const (
	LineSolid  LineStyle = "solid"
	LineDashed LineStyle = "dashed"
	LineDotted LineStyle = "dotted"
)

// Connector joins two shapes of the same collection. Its geometry is never
// stored: endpoints are derived from the current shape frames on every read.
type Connector struct {
	ID          string          `json:"id"`
	Type        ConnectorType   `json:"type"`
	FromShapeID string          `json:"fromShapeId"`
	ToShapeID   string          `json:"toShapeId"`
	FromAnchor  ConnectionPoint `json:"fromAnchor,omitempty"`
	ToAnchor    ConnectionPoint `json:"toAnchor,omitempty"`
	Stroke      string          `json:"stroke,omitempty"`
	StrokeWidth *float64        `json:"strokeWidth,omitempty"`
	LineStyle   LineStyle       `json:"lineStyle,omitempty"`
	ArrowStart  *bool           `json:"arrowStart,omitempty"`
	ArrowEnd    *bool           `json:"arrowEnd,omitempty"`
	Label       string          `json:"label,omitempty"`
}

// HasStartArrow defaults to false.
func (c Connector) HasStartArrow() bool {
	return c.ArrowStart != nil && *c.ArrowStart
}

// HasEndArrow defaults to true for arrow connectors and false otherwise.
func (c Connector) HasEndArrow() bool {
	if c.ArrowEnd != nil {
		return *c.ArrowEnd
	}
	return c.Type == ConnectorArrow
}

func (c Connector) StrokeValue() string {
	if c.Stroke == "" {
		return DefaultStroke
	}
	return c.Stroke
}

func (c Connector) StrokeWidthValue() float64 {
	if c.StrokeWidth == nil || *c.StrokeWidth < 0 {
		return DefaultStrokeWidth
	}
	return *c.StrokeWidth
}

// FromAnchorValue returns the source anchor, auto when unset.
func (c Connector) FromAnchorValue() ConnectionPoint {
	if c.FromAnchor == "" {
		return AnchorAuto
	}
	return c.FromAnchor
}

// ToAnchorValue returns the target anchor, auto when unset.
func (c Connector) ToAnchorValue() ConnectionPoint {
	if c.ToAnchor == "" {
		return AnchorAuto
	}
	return c.ToAnchor
}

// DashArray returns the SVG-style dash pattern for the line style, or nil
// for solid lines.
func (c Connector) DashArray() []float64 {
	switch c.LineStyle {
	case LineDashed:
		return []float64{8, 4}
	case LineDotted:
		return []float64{2, 4}
	}
	return nil
}
