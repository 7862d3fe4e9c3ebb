package geometry

import (
	"container/heap"
	"math"
	"sort"

	"whiteboard/internal/domain"
)

// RouteMargin is the clearance kept between a routed connector and any
// obstacle, and the length of the stub leaving each anchor.
const RouteMargin = 30.0

// RouteRequest describes an obstacle-aware elbow route between two
// anchored points. From and To are optional: when both are nil the route
// degrades to the plain stub-and-elbow shape.
type RouteRequest struct {
	Start     domain.Point
	End       domain.Point
	StartSide domain.ConnectionPoint
	EndSide   domain.ConnectionPoint
	From      *domain.BoundingBox
	To        *domain.BoundingBox
	Obstacles []domain.BoundingBox
}

// RouteAround finds an orthogonal route that avoids every obstacle. It
// builds a sparse grid from the inflated obstacle edges, runs Dijkstra
// with a bend penalty between the two anchor stubs, and simplifies the
// result. If no route exists it returns the plain elbow route.
func RouteAround(req RouteRequest) []domain.Point {
	if req.From == nil && req.To == nil {
		return ElbowRoute(req.Start, req.End, req.StartSide, req.EndSide)
	}

	m := RouteMargin
	sdx, sdy := sideDir(req.StartSide)
	edx, edy := sideDir(req.EndSide)
	stub1 := domain.Point{X: req.Start.X + sdx*m, Y: req.Start.Y + sdy*m}
	stub2 := domain.Point{X: req.End.X + edx*m, Y: req.End.Y + edy*m}

	var ends []domain.BoundingBox
	if req.From != nil {
		ends = append(ends, *req.From)
	}
	if req.To != nil {
		ends = append(ends, *req.To)
	}
	blocking := append(append([]domain.BoundingBox(nil), ends...), req.Obstacles...)

	var xs, ys []float64
	for _, b := range blocking {
		p := b.Pad(m)
		xs = append(xs, p.X, p.Right())
		ys = append(ys, p.Y, p.Bottom())
	}
	if req.StartSide.IsVertical() {
		xs = append(xs, stub1.X)
	} else {
		ys = append(ys, stub1.Y)
	}
	if req.EndSide.IsVertical() {
		xs = append(xs, stub2.X)
	} else {
		ys = append(ys, stub2.Y)
	}
	xs = append(xs, req.Start.X, req.End.X, stub1.X, stub2.X)
	ys = append(ys, req.Start.Y, req.End.Y, stub1.Y, stub2.Y)
	xs = uniqueSorted(xs)
	ys = uniqueSorted(ys)
	xs = withMidpoints(append([]float64{xs[0] - m}, append(xs, xs[len(xs)-1]+m)...))
	ys = withMidpoints(append([]float64{ys[0] - m}, append(ys, ys[len(ys)-1]+m)...))

	// spots inside the endpoint shapes are unusable, except the stubs
	var spots []domain.Point
	for _, x := range xs {
		for _, y := range ys {
			p := domain.Point{X: x, Y: y}
			if keyOf(p) == keyOf(stub1) || keyOf(p) == keyOf(stub2) || !insideAny(ends, p, 1) {
				spots = append(spots, p)
			}
		}
	}

	mid := shortestPath(spots, stub1, stub2, blocking)
	if mid == nil {
		return ElbowRoute(req.Start, req.End, req.StartSide, req.EndSide)
	}
	full := append([]domain.Point{req.Start}, append(mid, req.End)...)
	return simplify(full)
}

// ElbowRoute is the obstacle-blind fallback: leave each anchor by a stub
// of RouteMargin, then join the stubs with one or two bends.
func ElbowRoute(start, end domain.Point, startSide, endSide domain.ConnectionPoint) []domain.Point {
	vs, ve := startSide.IsVertical(), endSide.IsVertical()
	sdx, sdy := sideDir(startSide)
	edx, edy := sideDir(endSide)
	s := domain.Point{X: start.X + sdx*RouteMargin, Y: start.Y + sdy*RouteMargin}
	e := domain.Point{X: end.X + edx*RouteMargin, Y: end.Y + edy*RouteMargin}

	var pts []domain.Point
	switch {
	case vs && ve:
		midY := (s.Y + e.Y) / 2
		pts = []domain.Point{start, {X: start.X, Y: midY}, {X: end.X, Y: midY}, end}
	case !vs && !ve:
		midX := (s.X + e.X) / 2
		pts = []domain.Point{start, {X: midX, Y: start.Y}, {X: midX, Y: end.Y}, end}
	case vs:
		pts = []domain.Point{start, {X: start.X, Y: end.Y}, end}
	default:
		pts = []domain.Point{start, {X: end.X, Y: start.Y}, end}
	}
	return simplify(pts)
}

// sideDir is the unit vector leaving a shape through the named side.
// Anything that is not a side leaves downward.
func sideDir(side domain.ConnectionPoint) (float64, float64) {
	switch side {
	case domain.AnchorTop:
		return 0, -1
	case domain.AnchorLeft:
		return -1, 0
	case domain.AnchorRight:
		return 1, 0
	}
	return 0, 1
}

type pointKey [2]int64

func keyOf(p domain.Point) pointKey {
	return pointKey{int64(math.Round(p.X * 100)), int64(math.Round(p.Y * 100))}
}

func insideAny(boxes []domain.BoundingBox, p domain.Point, margin float64) bool {
	for _, b := range boxes {
		if p.X >= b.X-margin && p.X <= b.Right()+margin &&
			p.Y >= b.Y-margin && p.Y <= b.Bottom()+margin {
			return true
		}
	}
	return false
}

// crosses reports whether an axis-aligned segment passes through the
// interior of b. Segments running along an edge do not cross.
func crosses(a, c domain.Point, b domain.BoundingBox) bool {
	switch {
	case math.Abs(a.Y-c.Y) < 0.5:
		if a.Y <= b.Y || a.Y >= b.Bottom() {
			return false
		}
		return math.Min(a.X, c.X) < b.Right() && math.Max(a.X, c.X) > b.X
	case math.Abs(a.X-c.X) < 0.5:
		if a.X <= b.X || a.X >= b.Right() {
			return false
		}
		return math.Min(a.Y, c.Y) < b.Bottom() && math.Max(a.Y, c.Y) > b.Y
	}
	return false
}

type axis byte

const (
	axisNone axis = iota
	axisH
	axisV
)

type graphEdge struct {
	to  pointKey
	w   float64
	dir axis
}

type routeNode struct {
	p    domain.Point
	dist float64
	prev *routeNode
	dir  axis
}

// queued snapshots a node's distance at push time so later relaxations
// never reorder entries already in the heap.
type queued struct {
	node *routeNode
	dist float64
}

// routeQueue is a min-heap ordered by distance.
type routeQueue []queued

func (q routeQueue) Len() int           { return len(q) }
func (q routeQueue) Less(i, j int) bool { return q[i].dist < q[j].dist }
func (q routeQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *routeQueue) Push(x any)        { *q = append(*q, x.(queued)) }
func (q *routeQueue) Pop() any {
	old := *q
	n := old[len(old)-1]
	*q = old[:len(old)-1]
	return n
}

// shortestPath runs Dijkstra over the grid formed by spots, connecting
// each spot to its nearest neighbour in the same row and column unless
// the segment crosses a blocking box. A change of direction costs the
// square of the next segment's length, which favours routes with few
// bends. It returns nil when to is unreachable.
func shortestPath(spots []domain.Point, from, to domain.Point, blocking []domain.BoundingBox) []domain.Point {
	nodes := make(map[pointKey]*routeNode, len(spots))
	rows := map[int64][]domain.Point{}
	cols := map[int64][]domain.Point{}
	for _, s := range spots {
		k := keyOf(s)
		if _, dup := nodes[k]; dup {
			continue
		}
		nodes[k] = &routeNode{p: s, dist: math.Inf(1)}
		cols[k[0]] = append(cols[k[0]], s)
		rows[k[1]] = append(rows[k[1]], s)
	}
	start, goal := nodes[keyOf(from)], nodes[keyOf(to)]
	if start == nil || goal == nil {
		return nil
	}

	adj := map[pointKey][]graphEdge{}
	link := func(line []domain.Point, dir axis, less func(a, b domain.Point) bool) {
		sort.Slice(line, func(i, j int) bool { return less(line[i], line[j]) })
		for i := 0; i+1 < len(line); i++ {
			a, b := line[i], line[i+1]
			blocked := false
			for _, r := range blocking {
				if crosses(a, b, r) {
					blocked = true
					break
				}
			}
			if blocked {
				continue
			}
			w := dist(a, b)
			ka, kb := keyOf(a), keyOf(b)
			adj[ka] = append(adj[ka], graphEdge{to: kb, w: w, dir: dir})
			adj[kb] = append(adj[kb], graphEdge{to: ka, w: w, dir: dir})
		}
	}
	for _, k := range sortedKeys(cols) {
		link(cols[k], axisV, func(a, b domain.Point) bool { return a.Y < b.Y })
	}
	for _, k := range sortedKeys(rows) {
		link(rows[k], axisH, func(a, b domain.Point) bool { return a.X < b.X })
	}

	start.dist = 0
	visited := map[pointKey]bool{}
	q := &routeQueue{{node: start}}
	for q.Len() > 0 {
		cur := heap.Pop(q).(queued).node
		ck := keyOf(cur.p)
		if visited[ck] {
			continue
		}
		visited[ck] = true
		if cur == goal {
			break
		}
		for _, e := range adj[ck] {
			if visited[e.to] {
				continue
			}
			next := nodes[e.to]
			cost := cur.dist + e.w
			if cur.dir != axisNone && cur.dir != e.dir {
				cost += (e.w + 1) * (e.w + 1)
			}
			if cost < next.dist {
				next.dist = cost
				next.prev = cur
				next.dir = e.dir
				heap.Push(q, queued{node: next, dist: cost})
			}
		}
	}
	if math.IsInf(goal.dist, 1) {
		return nil
	}

	var path []domain.Point
	for n := goal; n != nil; n = n.prev {
		path = append(path, n.p)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// simplify drops repeated points and interior points that sit on a
// straight run.
func simplify(pts []domain.Point) []domain.Point {
	var dedup []domain.Point
	for _, p := range pts {
		if len(dedup) > 0 {
			last := dedup[len(dedup)-1]
			if math.Abs(p.X-last.X) <= 0.5 && math.Abs(p.Y-last.Y) <= 0.5 {
				continue
			}
		}
		dedup = append(dedup, p)
	}
	if len(dedup) < 3 {
		return dedup
	}
	out := []domain.Point{dedup[0]}
	for i := 1; i < len(dedup)-1; i++ {
		prev, cur, next := out[len(out)-1], dedup[i], dedup[i+1]
		sameX := math.Abs(prev.X-cur.X) < 0.5 && math.Abs(cur.X-next.X) < 0.5
		sameY := math.Abs(prev.Y-cur.Y) < 0.5 && math.Abs(cur.Y-next.Y) < 0.5
		if !sameX && !sameY {
			out = append(out, cur)
		}
	}
	return append(out, dedup[len(dedup)-1])
}

func sortedKeys(m map[int64][]domain.Point) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func uniqueSorted(vals []float64) []float64 {
	seen := map[int64]bool{}
	var out []float64
	for _, v := range vals {
		k := int64(math.Round(v * 100))
		if !seen[k] {
			seen[k] = true
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

// withMidpoints interleaves the midpoint of every adjacent pair.
func withMidpoints(vals []float64) []float64 {
	out := make([]float64, 0, 2*len(vals))
	for i, v := range vals {
		if i > 0 {
			out = append(out, (vals[i-1]+v)/2)
		}
		out = append(out, v)
	}
	return out
}

// FacingSide names the side of s that faces p. Offsets are measured in
// half extents so a wide shape does not always face sideways.
func FacingSide(s domain.Shape, p domain.Point) domain.ConnectionPoint {
	c := Center(s)
	dx, dy := p.X-c.X, p.Y-c.Y
	if hw := s.Width / 2; hw > 0 {
		dx /= hw
	}
	if hh := s.Height / 2; hh > 0 {
		dy /= hh
	}
	if math.Abs(dx) >= math.Abs(dy) {
		if dx < 0 {
			return domain.AnchorLeft
		}
		return domain.AnchorRight
	}
	if dy < 0 {
		return domain.AnchorTop
	}
	return domain.AnchorBottom
}

// RouteConnector resolves c against shapes and routes it around every
// other visible shape. Anchors that are not sides leave through the side
// facing the other endpoint. ok is false when an endpoint is missing or
// hidden.
func RouteConnector(c domain.Connector, shapes []domain.Shape) ([]domain.Point, bool) {
	var visible []domain.Shape
	for _, s := range shapes {
		if s.IsVisible() {
			visible = append(visible, s)
		}
	}
	idx := IndexShapes(visible)
	start, end, ok := ConnectorEndpoints(c, idx)
	if !ok {
		return nil, false
	}
	src, dst := idx[c.FromShapeID], idx[c.ToShapeID]

	startSide, endSide := c.FromAnchorValue(), c.ToAnchorValue()
	if !startSide.IsHorizontal() && !startSide.IsVertical() {
		startSide = FacingSide(src, Center(dst))
	}
	if !endSide.IsHorizontal() && !endSide.IsVertical() {
		endSide = FacingSide(dst, Center(src))
	}

	var obstacles []domain.BoundingBox
	for _, s := range visible {
		if s.ID != src.ID && s.ID != dst.ID {
			obstacles = append(obstacles, s.Frame())
		}
	}
	from, to := src.Frame(), dst.Frame()
	return RouteAround(RouteRequest{
		Start: start, End: end, StartSide: startSide, EndSide: endSide,
		From: &from, To: &to, Obstacles: obstacles,
	}), true
}
