// Package render rasterizes shapes onto a gg canvas through an open
// registry of per-type strategies. The registry is built once at startup
// and passed to whatever draws; callers may override or add strategies
// for custom shape types without touching the dispatcher.
package render

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/gg"

	"whiteboard/internal/domain"
)

// Drawable describes what a strategy put on the canvas.
type Drawable struct {
	ShapeID string
	Type    domain.ShapeType
	Bounds  domain.BoundingBox
	// Ops counts the fill and stroke operations issued.
	Ops int
}

// Shared is state every strategy may read during one render pass.
type Shared struct {
	// FontPath is a TrueType/OpenType file used for text. Without it,
	// text is skipped.
	FontPath string

	fontCache
}

// Strategy draws one shape into dc.
type Strategy interface {
	Render(s domain.Shape, dc *gg.Context, shared *Shared) (Drawable, error)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(s domain.Shape, dc *gg.Context, shared *Shared) (Drawable, error)

func (f StrategyFunc) Render(s domain.Shape, dc *gg.Context, shared *Shared) (Drawable, error) {
	return f(s, dc, shared)
}

// Fallback draws the shape's frame as a plain rectangle in its own style.
var Fallback Strategy = StrategyFunc(drawRect)

// ─────────────────────────────────────────────────────────────
// Registry: shape type → strategy
// ─────────────────────────────────────────────────────────────

// Registry maps shape types to strategies. Lookups are safe to run
// concurrently; registration is meant to happen before rendering starts.
type Registry struct {
	mu         sync.RWMutex
	strategies map[domain.ShapeType]Strategy
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[domain.ShapeType]Strategy)}
}

// NewDefaultRegistry creates a registry with a strategy for every
// built-in shape type.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for t, s := range builtins() {
		r.Register(t, s)
	}
	return r
}

// Register sets the strategy for t, replacing any previous one.
func (r *Registry) Register(t domain.ShapeType, s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[t] = s
}

// Lookup returns the strategy registered for t.
func (r *Registry) Lookup(t domain.ShapeType) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[t]
	return s, ok
}

// Types lists registered shape types in name order.
func (r *Registry) Types() []domain.ShapeType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ShapeType, 0, len(r.strategies))
	for t := range r.strategies {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Render draws s with its registered strategy, or with Fallback when the
// type is unknown.
func (r *Registry) Render(s domain.Shape, dc *gg.Context, shared *Shared) (Drawable, error) {
	strategy, ok := r.Lookup(s.Type)
	if !ok {
		strategy = Fallback
	}
	d, err := strategy.Render(s, dc, shared)
	if err != nil {
		return d, fmt.Errorf("render %s %s: %w", s.Type, s.ID, err)
	}
	return d, nil
}
