package domain

// ShapeType tags the kind of a shape. The built-in set is closed; custom
// renderers may register additional tags with the render dispatcher.
type ShapeType string

const (
	ShapeRectangle        ShapeType = "rectangle"
	ShapeRoundedRectangle ShapeType = "rounded-rectangle"
	ShapeEllipse          ShapeType = "ellipse"
	ShapeCircle           ShapeType = "circle"
	ShapeDiamond          ShapeType = "diamond"
	ShapeTriangle         ShapeType = "triangle"
	ShapeTriangleDown     ShapeType = "triangle-down"
	ShapePentagon         ShapeType = "pentagon"
	ShapeHexagon          ShapeType = "hexagon"
	ShapeStar             ShapeType = "star"
	ShapeCross            ShapeType = "cross"
	ShapeParallelogram    ShapeType = "parallelogram"
	ShapeCylinder         ShapeType = "cylinder"
	ShapeDocument         ShapeType = "document"
	ShapeText             ShapeType = "text"
	ShapeSticky           ShapeType = "sticky"
	ShapeFreedraw         ShapeType = "freedraw"
	ShapeImage            ShapeType = "image"
	ShapeStamp            ShapeType = "stamp"
	ShapeSection          ShapeType = "section"
	ShapeTable            ShapeType = "table"
	ShapeMindmap          ShapeType = "mindmap"
	ShapeEmbed            ShapeType = "embed"
)

// ShapeTypes returns every built-in shape type in declaration order.
func ShapeTypes() []ShapeType {
	return []ShapeType{
		ShapeRectangle, ShapeRoundedRectangle, ShapeEllipse, ShapeCircle,
		ShapeDiamond, ShapeTriangle, ShapeTriangleDown, ShapePentagon,
		ShapeHexagon, ShapeStar, ShapeCross, ShapeParallelogram,
		ShapeCylinder, ShapeDocument, ShapeText, ShapeSticky,
		ShapeFreedraw, ShapeImage, ShapeStamp, ShapeSection,
		ShapeTable, ShapeMindmap, ShapeEmbed,
	}
}

// IsEllipse reports whether the boundary of t is an ellipse.
func (t ShapeType) IsEllipse() bool {
	return t == ShapeEllipse || t == ShapeCircle
}

// IsRhombus reports whether the boundary of t is a rhombus.
func (t ShapeType) IsRhombus() bool {
	return t == ShapeDiamond
}

// Style defaults applied when a shape leaves the field unset.
const (
	DefaultFill         = "#ffffff"
	DefaultStroke       = "#1e1e1e"
	DefaultStrokeWidth  = 2.0
	DefaultCornerRadius = 8.0
	DefaultFontSize     = 16.0
	DefaultStickyFill   = "#fef08a"
	FillTransparent     = "transparent"
)

// Shape is a single canvas element. The geometric frame is X, Y, Width, Height
// with Width and Height never negative. Optional numeric fields are pointers
// so that "unset" survives a serialize/deserialize round trip.
type Shape struct {
	ID           string    `json:"id"`
	Type         ShapeType `json:"type"`
	X            float64   `json:"x"`
	Y            float64   `json:"y"`
	Width        float64   `json:"width"`
	Height       float64   `json:"height"`
	Rotation     *float64  `json:"rotation,omitempty"` // degrees
	Opacity      *float64  `json:"opacity,omitempty"`
	Visible      *bool     `json:"visible,omitempty"`
	Fill         string    `json:"fill,omitempty"`
	Stroke       string    `json:"stroke,omitempty"`
	StrokeWidth  *float64  `json:"strokeWidth,omitempty"`
	CornerRadius *float64  `json:"cornerRadius,omitempty"`
	FontSize     *float64  `json:"fontSize,omitempty"`

	// Type-specific payload.
	Text    string       `json:"text,omitempty"`
	Points  []Point      `json:"points,omitzero"` // freedraw, relative to X/Y
	Src     string       `json:"src,omitempty"`    // image href
	Emoji   string       `json:"emoji,omitempty"`  // stamp glyph
	Table   *TableData   `json:"table,omitempty"`
	Mindmap *MindmapData `json:"mindmap,omitempty"`
	Embed   *EmbedData   `json:"embed,omitempty"`
}

// TableData is the grid payload of a table shape. Cells is indexed [row][col].
type TableData struct {
	Rows  int           `json:"rows"`
	Cols  int           `json:"cols"`
	Cells [][]TableCell `json:"cells,omitzero"`
}

type TableCell struct {
	Text string `json:"text,omitempty"`
	Fill string `json:"fill,omitempty"`
}

// Cell returns the cell at row r, column c, or an empty cell when Cells
// is shorter than the declared grid.
func (t *TableData) Cell(r, c int) TableCell {
	if r < len(t.Cells) && c < len(t.Cells[r]) {
		return t.Cells[r][c]
	}
	return TableCell{}
}

// MindmapData is the tree payload of a mindmap shape.
type MindmapData struct {
	Root MindmapNode `json:"root"`
}

type MindmapNode struct {
	ID       string        `json:"id"`
	Text     string        `json:"text"`
	Children []MindmapNode `json:"children,omitzero"`
}

// EmbedData is the link-preview payload of an embed shape.
type EmbedData struct {
	URL         string `json:"url,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	SiteName    string `json:"siteName,omitempty"`
}

// Frame returns the shape's geometric frame.
func (s Shape) Frame() BoundingBox {
	return BoundingBox{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
}

// IsVisible reports the visible flag, defaulting to true.
func (s Shape) IsVisible() bool {
	return s.Visible == nil || *s.Visible
}

// OpacityValue returns the opacity clamped to [0,1], defaulting to 1.
func (s Shape) OpacityValue() float64 {
	if s.Opacity == nil {
		return 1
	}
	o := *s.Opacity
	if o < 0 {
		return 0
	}
	if o > 1 {
		return 1
	}
	return o
}

// RotationValue returns the rotation in degrees, defaulting to 0.
func (s Shape) RotationValue() float64 {
	if s.Rotation == nil {
		return 0
	}
	return *s.Rotation
}

func (s Shape) StrokeWidthValue() float64 {
	if s.StrokeWidth == nil || *s.StrokeWidth < 0 {
		return DefaultStrokeWidth
	}
	return *s.StrokeWidth
}

// CornerRadiusValue defaults to DefaultCornerRadius for rounded rectangles
// and 0 for everything else.
func (s Shape) CornerRadiusValue() float64 {
	if s.CornerRadius != nil && *s.CornerRadius >= 0 {
		return *s.CornerRadius
	}
	if s.Type == ShapeRoundedRectangle {
		return DefaultCornerRadius
	}
	return 0
}

func (s Shape) FontSizeValue() float64 {
	if s.FontSize == nil || *s.FontSize <= 0 {
		return DefaultFontSize
	}
	return *s.FontSize
}

func (s Shape) FillValue() string {
	if s.Fill != "" {
		return s.Fill
	}
	if s.Type == ShapeSticky {
		return DefaultStickyFill
	}
	return DefaultFill
}

func (s Shape) StrokeValue() string {
	if s.Stroke == "" {
		return DefaultStroke
	}
	return s.Stroke
}

// Float returns a pointer to v, for filling optional fields.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v, for filling optional fields.
func Bool(v bool) *bool { return &v }
