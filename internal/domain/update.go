package domain

// Update is a partial position change for one shape. Nil fields are left
// untouched when the update is applied.
type Update struct {
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
}

// Updates maps shape id to the partial change for that shape.
type Updates map[string]Update

// SetX records a new X for id, keeping any Y already recorded.
func (u Updates) SetX(id string, x float64) {
	cur := u[id]
	cur.X = Float(x)
	u[id] = cur
}

// SetY records a new Y for id, keeping any X already recorded.
func (u Updates) SetY(id string, y float64) {
	cur := u[id]
	cur.Y = Float(y)
	u[id] = cur
}

// ApplyUpdates returns a copy of shapes with updates applied. The input
// slice is never modified; ids without an update are copied unchanged.
func ApplyUpdates(shapes []Shape, updates Updates) []Shape {
	out := make([]Shape, len(shapes))
	for i, s := range shapes {
		if u, ok := updates[s.ID]; ok {
			if u.X != nil {
				s.X = *u.X
			}
			if u.Y != nil {
				s.Y = *u.Y
			}
		}
		out[i] = s
	}
	return out
}
