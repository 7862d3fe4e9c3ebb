package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() ([]Shape, []Connector) {
	shapes := []Shape{
		{ID: "s1", Type: ShapeRectangle, X: 0, Y: 0, Width: 50, Height: 50, Fill: "#ff0000"},
		{ID: "s2", Type: ShapeEllipse, X: 100, Y: 10, Width: 40, Height: 20, Rotation: Float(15), Opacity: Float(0.5)},
		{ID: "s3", Type: ShapeTable, X: 200, Y: 0, Width: 90, Height: 60, Table: &TableData{
			Rows: 1, Cols: 2, Cells: [][]TableCell{{{Text: "a"}, {Text: "b", Fill: "#eee"}}},
		}},
		{ID: "s4", Type: ShapeMindmap, Width: 300, Height: 200, Mindmap: &MindmapData{
			Root: MindmapNode{ID: "r", Text: "root", Children: []MindmapNode{{ID: "c", Text: "child"}}},
		}},
		{ID: "s5", Type: ShapeFreedraw, Points: []Point{{X: 0, Y: 0}, {X: 5, Y: 5}}, Visible: Bool(false)},
	}
	connectors := []Connector{
		{ID: "c1", Type: ConnectorArrow, FromShapeID: "s1", ToShapeID: "s2", FromAnchor: AnchorRight, Label: "flows"},
		{ID: "c2", Type: ConnectorLine, FromShapeID: "s2", ToShapeID: "s3", LineStyle: LineDashed, ArrowEnd: Bool(true)},
	}
	return shapes, connectors
}

func TestSerializeRoundTrip(t *testing.T) {
	shapes, connectors := sampleDocument()

	data, err := Serialize(shapes, connectors)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version":"`+FormatVersion+`"`)

	gotShapes, gotConnectors, err := Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, shapes, gotShapes)
	assert.Equal(t, connectors, gotConnectors)
}

func TestSerializeRoundTripKeepsEmptyPayloads(t *testing.T) {
	shapes := []Shape{
		{ID: "f", Type: ShapeFreedraw, Width: 10, Height: 10, Points: []Point{}},
		{ID: "t", Type: ShapeTable, Width: 10, Height: 10, Table: &TableData{Rows: 0, Cols: 0, Cells: [][]TableCell{}}},
		{ID: "m", Type: ShapeMindmap, Width: 10, Height: 10, Mindmap: &MindmapData{Root: MindmapNode{ID: "r", Children: []MindmapNode{}}}},
		{ID: "r", Type: ShapeRectangle, Width: 10, Height: 10},
	}
	data, err := Serialize(shapes, nil)
	require.NoError(t, err)

	got, _, err := Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, shapes, got)
	assert.NotNil(t, got[0].Points)
	assert.Nil(t, got[3].Points, "absent payload stays absent")
	assert.NotContains(t, string(data), "null")
}

func TestDeserializeMissingArrays(t *testing.T) {
	shapes, connectors, err := Deserialize([]byte(`{"version":"0.9"}`))
	require.NoError(t, err)
	assert.NotNil(t, shapes)
	assert.NotNil(t, connectors)
	assert.Empty(t, shapes)
	assert.Empty(t, connectors)
}

func TestDeserializeRejectsGarbage(t *testing.T) {
	_, _, err := Deserialize([]byte(`not json`))
	assert.Error(t, err)
}

func TestSerializeNilCollections(t *testing.T) {
	data, err := Serialize(nil, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"shapes":[],"connectors":[],"version":"`+FormatVersion+`"}`, string(data))
}

func TestApplyUpdates(t *testing.T) {
	shapes := []Shape{{ID: "a", X: 1, Y: 2}, {ID: "b", X: 3, Y: 4}}
	u := Updates{}
	u.SetX("a", 10)
	u.SetY("b", 40)

	out := ApplyUpdates(shapes, u)
	assert.Equal(t, 10.0, out[0].X)
	assert.Equal(t, 2.0, out[0].Y)
	assert.Equal(t, 3.0, out[1].X)
	assert.Equal(t, 40.0, out[1].Y)
	// input untouched
	assert.Equal(t, 1.0, shapes[0].X)
}

func TestShapeDefaults(t *testing.T) {
	s := Shape{Type: ShapeRoundedRectangle}
	assert.True(t, s.IsVisible())
	assert.Equal(t, 1.0, s.OpacityValue())
	assert.Equal(t, DefaultStrokeWidth, s.StrokeWidthValue())
	assert.Equal(t, DefaultCornerRadius, s.CornerRadiusValue())
	assert.Equal(t, 0.0, Shape{Type: ShapeRectangle}.CornerRadiusValue())
	assert.Equal(t, DefaultStickyFill, Shape{Type: ShapeSticky}.FillValue())
	assert.Equal(t, 1.0, Shape{Opacity: Float(3)}.OpacityValue())
	assert.Equal(t, 0.0, Shape{Opacity: Float(-1)}.OpacityValue())
}

func TestConnectorDefaults(t *testing.T) {
	assert.True(t, Connector{Type: ConnectorArrow}.HasEndArrow())
	assert.False(t, Connector{Type: ConnectorLine}.HasEndArrow())
	assert.False(t, Connector{Type: ConnectorArrow, ArrowEnd: Bool(false)}.HasEndArrow())
	assert.Equal(t, AnchorAuto, Connector{}.FromAnchorValue())
	assert.Nil(t, Connector{}.DashArray())
	assert.Equal(t, []float64{8, 4}, Connector{LineStyle: LineDashed}.DashArray())
}

func TestReplaceShapes(t *testing.T) {
	shapes, connectors := sampleDocument()
	doc := NewDocument(shapes, connectors)

	moved := shapes[0]
	moved.X = 999
	next := doc.ReplaceShapes([]Shape{moved})

	assert.Equal(t, 999.0, next.Shapes[0].X)
	assert.Equal(t, 0.0, doc.Shapes[0].X)
	assert.Len(t, next.Shapes, len(shapes))
	assert.Len(t, doc.SelectShapes([]string{"s2", "s1"}), 2)
	assert.Len(t, doc.SelectShapes(nil), len(shapes))
}
