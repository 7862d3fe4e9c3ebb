package domain

import (
	"encoding/json"
	"fmt"
)

// FormatVersion is stamped on every serialized document.
const FormatVersion = "1.0.0"

// Document is the persisted form of a canvas.
type Document struct {
	Shapes     []Shape     `json:"shapes"`
	Connectors []Connector `json:"connectors"`
	Version    string      `json:"version"`
}

// NewDocument builds a document stamped with the current format version.
// Nil collections become empty so they serialize as [] rather than null.
func NewDocument(shapes []Shape, connectors []Connector) Document {
	if shapes == nil {
		shapes = []Shape{}
	}
	if connectors == nil {
		connectors = []Connector{}
	}
	return Document{Shapes: shapes, Connectors: connectors, Version: FormatVersion}
}

// Serialize encodes shapes and connectors as a versioned JSON document.
func Serialize(shapes []Shape, connectors []Connector) ([]byte, error) {
	data, err := json.Marshal(NewDocument(shapes, connectors))
	if err != nil {
		return nil, fmt.Errorf("serialize document: %w", err)
	}
	return data, nil
}

// Deserialize decodes a document. Missing arrays default to empty; the only
// failure is input that is not JSON at all.
func Deserialize(data []byte) ([]Shape, []Connector, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("deserialize document: %w", err)
	}
	doc = NewDocument(doc.Shapes, doc.Connectors)
	return doc.Shapes, doc.Connectors, nil
}

// ShapeByID returns the first shape with the given id.
func (d Document) ShapeByID(id string) (Shape, bool) {
	for _, s := range d.Shapes {
		if s.ID == id {
			return s, true
		}
	}
	return Shape{}, false
}

// SelectShapes returns the shapes whose ids are listed, in document order.
// An empty id list selects every shape.
func (d Document) SelectShapes(ids []string) []Shape {
	if len(ids) == 0 {
		return append([]Shape(nil), d.Shapes...)
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []Shape
	for _, s := range d.Shapes {
		if want[s.ID] {
			out = append(out, s)
		}
	}
	return out
}

// ReplaceShapes swaps in the given shapes by id and keeps everything else.
func (d Document) ReplaceShapes(changed []Shape) Document {
	byID := make(map[string]Shape, len(changed))
	for _, s := range changed {
		byID[s.ID] = s
	}
	shapes := make([]Shape, len(d.Shapes))
	for i, s := range d.Shapes {
		if c, ok := byID[s.ID]; ok {
			s = c
		}
		shapes[i] = s
	}
	return NewDocument(shapes, d.Connectors)
}
