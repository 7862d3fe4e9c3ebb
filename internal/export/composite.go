package export

import (
	"bytes"
	"fmt"

	"whiteboard/internal/domain"
)

// Mindmap node geometry used when laying out a tree for export.
const (
	MindmapNodeWidth  = 120.0
	MindmapNodeHeight = 40.0
	MindmapHGap       = 40.0
	MindmapVGap       = 16.0
)

const (
	embedPadding  = 12.0
	embedRadius   = 8.0
	embedMetaFill = "#64748b"
)

// writeTable draws the outer frame and one rect per cell, each with its
// own fill and centred text.
func writeTable(buf *bytes.Buffer, s domain.Shape) {
	writeRect(buf, s)
	t := s.Table
	if t == nil || t.Rows <= 0 || t.Cols <= 0 {
		return
	}
	cw, ch := s.Width/float64(t.Cols), s.Height/float64(t.Rows)
	stroke, sw := color(s.StrokeValue()), num(s.StrokeWidthValue()/2)
	size := min(s.FontSizeValue(), ch*0.6)

	for r := 0; r < t.Rows; r++ {
		for c := 0; c < t.Cols; c++ {
			cell := t.Cell(r, c)
			fill := s.FillValue()
			if cell.Fill != "" {
				fill = cell.Fill
			}
			x, y := s.X+float64(c)*cw, s.Y+float64(r)*ch
			fmt.Fprintf(buf, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s" stroke="%s" stroke-width="%s"/>`,
				num(x), num(y), num(cw), num(ch), color(fill), stroke, sw)
			if cell.Text != "" {
				writeText(buf, cell.Text, domain.Point{X: x + cw/2, Y: y + ch/2}, size, stroke, "middle")
			}
		}
	}
}

// MindmapNodeBox is one laid-out node of a mindmap tree.
type MindmapNodeBox struct {
	Node   domain.MindmapNode
	Box    domain.BoundingBox
	Parent int // index into the layout, -1 for the root
}

// LayoutMindmap places the tree left to right inside the shape's frame.
// Each node is vertically centred on the band occupied by its subtree, so
// children stack around their parent's midline. The result lists parents
// before their children.
func LayoutMindmap(s domain.Shape) []MindmapNodeBox {
	if s.Mindmap == nil {
		return nil
	}
	root := s.Mindmap.Root
	top := s.Y + (s.Height-subtreeHeight(root))/2
	var out []MindmapNodeBox
	placeNode(&out, root, -1, s.X, top)
	return out
}

func subtreeHeight(n domain.MindmapNode) float64 {
	if len(n.Children) == 0 {
		return MindmapNodeHeight
	}
	total := MindmapVGap * float64(len(n.Children)-1)
	for _, c := range n.Children {
		total += subtreeHeight(c)
	}
	return max(total, MindmapNodeHeight)
}

func placeNode(out *[]MindmapNodeBox, n domain.MindmapNode, parent int, x, top float64) {
	h := subtreeHeight(n)
	cy := top + h/2
	self := len(*out)
	*out = append(*out, MindmapNodeBox{
		Node:   n,
		Box:    domain.BoundingBox{X: x, Y: cy - MindmapNodeHeight/2, Width: MindmapNodeWidth, Height: MindmapNodeHeight},
		Parent: parent,
	})

	childrenH := MindmapVGap * float64(len(n.Children)-1)
	for _, c := range n.Children {
		childrenH += subtreeHeight(c)
	}
	next := cy - childrenH/2
	for _, c := range n.Children {
		placeNode(out, c, self, x+MindmapNodeWidth+MindmapHGap, next)
		next += subtreeHeight(c) + MindmapVGap
	}
}

// writeMindmap draws connecting lines first, then the node boxes and
// their labels on top.
func writeMindmap(buf *bytes.Buffer, s domain.Shape) {
	nodes := LayoutMindmap(s)
	stroke, sw := color(s.StrokeValue()), num(s.StrokeWidthValue())
	for _, n := range nodes {
		if n.Parent < 0 {
			continue
		}
		p := nodes[n.Parent].Box
		fmt.Fprintf(buf, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s"/>`,
			num(p.Right()), num(p.Center().Y), num(n.Box.X), num(n.Box.Center().Y), stroke, sw)
	}
	for _, n := range nodes {
		b := n.Box
		fmt.Fprintf(buf, `<rect x="%s" y="%s" width="%s" height="%s" rx="6" ry="6"%s/>`,
			num(b.X), num(b.Y), num(b.Width), num(b.Height), paint(s))
		if n.Node.Text != "" {
			writeText(buf, n.Node.Text, b.Center(), min(s.FontSizeValue(), 14), stroke, "middle")
		}
	}
}

// writeEmbed draws a link-preview card: site name, title and description
// stacked from the top, the URL pinned to the bottom. Missing fields are
// skipped without leaving gaps.
func writeEmbed(buf *bytes.Buffer, s domain.Shape) {
	fmt.Fprintf(buf, `<rect x="%s" y="%s" width="%s" height="%s" rx="%s" ry="%s"%s/>`,
		num(s.X), num(s.Y), num(s.Width), num(s.Height), num(embedRadius), num(embedRadius), paint(s))
	e := s.Embed
	if e == nil {
		return
	}
	x := s.X + embedPadding
	y := s.Y + embedPadding
	stroke := color(s.StrokeValue())

	if e.SiteName != "" {
		y += 6
		writeText(buf, e.SiteName, domain.Point{X: x, Y: y}, 11, embedMetaFill, "start")
		y += 14
	}
	if e.Title != "" {
		y += 8
		writeText(buf, e.Title, domain.Point{X: x, Y: y}, 15, stroke, "start")
		y += 18
	}
	if e.Description != "" {
		y += 7
		writeText(buf, e.Description, domain.Point{X: x, Y: y}, 12, embedMetaFill, "start")
	}
	if e.URL != "" {
		writeText(buf, e.URL, domain.Point{X: x, Y: s.Y + s.Height - embedPadding - 5}, 11, embedMetaFill, "start")
	}
}
