package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"whiteboard/internal/domain"
)

func (s *Server) registerShapeTools() {
	s.mcp.AddTool(mcp.NewTool("add_shape",
		mcp.WithDescription("Add a shape to a board. Without x and y the shape is placed in the first free grid slot."),
		mcp.WithString("boardId", mcp.Description("Board ID (optional, defaults to active board)")),
		mcp.WithString("type", mcp.Description("Shape type: "+shapeTypeList()), mcp.DefaultString(string(domain.ShapeRectangle))),
		mcp.WithNumber("x", mcp.Description("X position (optional)")),
		mcp.WithNumber("y", mcp.Description("Y position (optional)")),
		mcp.WithNumber("width", mcp.Description("Width"), mcp.Required()),
		mcp.WithNumber("height", mcp.Description("Height"), mcp.Required()),
		mcp.WithString("text", mcp.Description("Text content (optional)")),
		mcp.WithString("fill", mcp.Description("Fill color hex (optional, e.g. #3b82f6, or transparent)")),
		mcp.WithString("stroke", mcp.Description("Stroke color hex (optional)")),
		mcp.WithString("id", mcp.Description("Shape ID (optional, generated when empty)")),
	), s.handleAddShape)

	s.mcp.AddTool(mcp.NewTool("add_shapes",
		mcp.WithDescription("Add multiple shapes at once. Pass a JSON array of shape objects (each with type, width, height and optional id, x, y, text, fill, stroke). Shapes without x and y are auto-placed."),
		mcp.WithString("boardId", mcp.Description("Board ID (optional, defaults to active board)")),
		mcp.WithString("shapes", mcp.Description("JSON array of shape objects [{type, width, height, x?, y?, text?, fill?, stroke?}, ...]"), mcp.Required()),
	), s.handleAddShapes)

	s.mcp.AddTool(mcp.NewTool("add_connector",
		mcp.WithDescription("Connect two shapes. Anchors default to auto, which picks the side facing the other shape."),
		mcp.WithString("boardId", mcp.Description("Board ID (optional, defaults to active board)")),
		mcp.WithString("fromId", mcp.Description("Source shape ID"), mcp.Required()),
		mcp.WithString("toId", mcp.Description("Target shape ID"), mcp.Required()),
		mcp.WithString("type", mcp.Description("Connector type"), mcp.Enum("line", "arrow", "curve", "orthogonal"), mcp.DefaultString("arrow")),
		mcp.WithString("fromAnchor", mcp.Description("top, right, bottom, left, center or auto (optional)")),
		mcp.WithString("toAnchor", mcp.Description("top, right, bottom, left, center or auto (optional)")),
		mcp.WithString("lineStyle", mcp.Description("solid, dashed or dotted (optional)")),
		mcp.WithString("label", mcp.Description("Connector label text (optional)")),
	), s.handleAddConnector)

	s.mcp.AddTool(mcp.NewTool("remove_shape",
		mcp.WithDescription("🛑 DESTRUCTIVE: Remove a shape and its connectors. Requires user approval."),
		mcp.WithString("boardId", mcp.Description("Board ID (optional, defaults to active board)")),
		mcp.WithString("shapeId", mcp.Description("Shape ID to remove"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleRemoveShape)
}

func shapeTypeList() string {
	types := domain.ShapeTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// shapeInput is the agent-facing shape description.
type shapeInput struct {
	ID     string   `json:"id"`
	Type   string   `json:"type"`
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
	Text   string   `json:"text"`
	Fill   string   `json:"fill"`
	Stroke string   `json:"stroke"`
}

func (in shapeInput) shape() (domain.Shape, bool) {
	sh := domain.Shape{
		ID:     in.ID,
		Type:   domain.ShapeType(in.Type),
		Width:  in.Width,
		Height: in.Height,
		Text:   in.Text,
		Fill:   in.Fill,
		Stroke: in.Stroke,
	}
	if in.X == nil || in.Y == nil {
		return sh, true
	}
	sh.X, sh.Y = *in.X, *in.Y
	return sh, false
}

func (s *Server) handleAddShape(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	boardID, err := s.resolveBoardID(args)
	if err != nil {
		return nil, err
	}
	in := shapeInput{
		ID:     req.GetString("id", ""),
		Type:   req.GetString("type", string(domain.ShapeRectangle)),
		Width:  req.GetFloat("width", 0),
		Height: req.GetFloat("height", 0),
		Text:   req.GetString("text", ""),
		Fill:   req.GetString("fill", ""),
		Stroke: req.GetString("stroke", ""),
	}
	if x, ok := floatArg(args, "x"); ok {
		in.X = &x
	}
	if y, ok := floatArg(args, "y"); ok {
		in.Y = &y
	}
	if in.Width < 0 || in.Height < 0 {
		return nil, fmt.Errorf("width and height must not be negative")
	}

	sh, autoPlace := in.shape()
	added, err := s.boards.AddShape(ctx, boardID, sh, autoPlace)
	if err != nil {
		return nil, err
	}
	return jsonResult(summarizeShape(added))
}

func (s *Server) handleAddShapes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardID, err := s.resolveBoardID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	var inputs []shapeInput
	if err := parseJSON(req.GetString("shapes", ""), &inputs); err != nil {
		return nil, fmt.Errorf("parse shapes: %w", err)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("shapes must be a non-empty JSON array")
	}

	added := make([]shapeSummary, 0, len(inputs))
	for i, in := range inputs {
		sh, autoPlace := in.shape()
		got, err := s.boards.AddShape(ctx, boardID, sh, autoPlace)
		if err != nil {
			return nil, fmt.Errorf("shape %d: %w", i, err)
		}
		added = append(added, summarizeShape(got))
	}
	return jsonResult(added)
}

func (s *Server) handleAddConnector(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardID, err := s.resolveBoardID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	c := domain.Connector{
		Type:        domain.ConnectorType(req.GetString("type", string(domain.ConnectorArrow))),
		FromShapeID: req.GetString("fromId", ""),
		ToShapeID:   req.GetString("toId", ""),
		FromAnchor:  domain.ConnectionPoint(req.GetString("fromAnchor", "")),
		ToAnchor:    domain.ConnectionPoint(req.GetString("toAnchor", "")),
		LineStyle:   domain.LineStyle(req.GetString("lineStyle", "")),
		Label:       req.GetString("label", ""),
	}
	if c.FromShapeID == "" || c.ToShapeID == "" {
		return nil, fmt.Errorf("fromId and toId are required")
	}
	added, err := s.boards.AddConnector(ctx, boardID, c)
	if err != nil {
		return nil, err
	}
	return jsonResult(added)
}

func (s *Server) handleRemoveShape(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardID, err := s.resolveBoardID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	shapeID := req.GetString("shapeId", "")
	if shapeID == "" {
		return nil, fmt.Errorf("shapeId is required")
	}
	b, err := s.boards.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	sh, ok := b.Document.ShapeByID(shapeID)
	if !ok {
		return nil, fmt.Errorf("shape %s not found", shapeID)
	}

	desc := fmt.Sprintf("Remove %s shape %s", sh.Type, shapeID)
	if sh.Text != "" {
		desc += fmt.Sprintf(" (%q)", sh.Text)
	}
	meta := marshalJSON(map[string]any{"boardId": boardID, "shapeIds": []string{shapeID}})
	approved, err := s.approval.Request("remove_shape", desc, meta)
	if err != nil || !approved {
		return textResult("Action rejected by user"), nil
	}

	if err := s.boards.RemoveShape(ctx, boardID, shapeID); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Shape %s removed", shapeID)), nil
}
