package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"whiteboard/internal/align"
	"whiteboard/internal/domain"
	"whiteboard/internal/layout"
)

func (s *Server) registerArrangeTools() {
	s.mcp.AddTool(mcp.NewTool("align_shapes",
		mcp.WithDescription("Align shapes to the left/center/right or top/middle/bottom of their shared bounding box"),
		mcp.WithString("boardId", mcp.Description("Board ID (optional, defaults to active board)")),
		mcp.WithString("shapeIds", mcp.Description("Comma-separated shape IDs (optional, defaults to all shapes)")),
		mcp.WithString("mode", mcp.Description("Alignment"), mcp.Enum("left", "center", "right", "top", "middle", "bottom"), mcp.Required()),
	), s.handleAlignShapes)

	s.mcp.AddTool(mcp.NewTool("distribute_shapes",
		mcp.WithDescription("Space three or more shapes evenly. The outermost shapes stay put."),
		mcp.WithString("boardId", mcp.Description("Board ID (optional, defaults to active board)")),
		mcp.WithString("shapeIds", mcp.Description("Comma-separated shape IDs (optional, defaults to all shapes)")),
		mcp.WithString("axis", mcp.Description("Axis"), mcp.Enum("horizontal", "vertical"), mcp.Required()),
	), s.handleDistributeShapes)

	s.mcp.AddTool(mcp.NewTool("tidy_up",
		mcp.WithDescription("Rearrange shapes into a grid, row, column or circle"),
		mcp.WithString("boardId", mcp.Description("Board ID (optional, defaults to active board)")),
		mcp.WithString("shapeIds", mcp.Description("Comma-separated shape IDs (optional, defaults to all shapes)")),
		mcp.WithString("layout", mcp.Description("Arrangement"), mcp.Enum("auto", "grid", "horizontal", "vertical", "circle"), mcp.DefaultString("auto")),
		mcp.WithNumber("gap", mcp.Description("Spacing between shapes (optional)")),
		mcp.WithNumber("columns", mcp.Description("Grid column count (optional)")),
	), s.handleTidyUp)

	s.mcp.AddTool(mcp.NewTool("detect_layout",
		mcp.WithDescription("Suggest the arrangement tidy_up would pick for the shapes"),
		mcp.WithString("boardId", mcp.Description("Board ID (optional, defaults to active board)")),
		mcp.WithString("shapeIds", mcp.Description("Comma-separated shape IDs (optional, defaults to all shapes)")),
	), s.handleDetectLayout)

	s.mcp.AddTool(mcp.NewTool("compute_guides",
		mcp.WithDescription("Compute smart alignment guides and snap position for a frame being moved. Does not modify the board."),
		mcp.WithString("boardId", mcp.Description("Board ID (optional, defaults to active board)")),
		mcp.WithString("shapeId", mcp.Description("ID of the moving shape (optional; it is excluded from the comparison)")),
		mcp.WithNumber("x", mcp.Description("Proposed X position"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("Proposed Y position"), mcp.Required()),
		mcp.WithNumber("width", mcp.Description("Width (optional when shapeId is given)")),
		mcp.WithNumber("height", mcp.Description("Height (optional when shapeId is given)")),
	), s.handleComputeGuides)

	s.mcp.AddTool(mcp.NewTool("route_connector",
		mcp.WithDescription("Compute an orthogonal route for a connector that avoids the other shapes on the board"),
		mcp.WithString("boardId", mcp.Description("Board ID (optional, defaults to active board)")),
		mcp.WithString("connectorId", mcp.Description("Connector ID"), mcp.Required()),
	), s.handleRouteConnector)
}

func (s *Server) handleAlignShapes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardID, err := s.resolveBoardID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	mode, err := align.ParseMode(req.GetString("mode", ""))
	if err != nil {
		return nil, err
	}
	updates, err := s.boards.Align(ctx, boardID, splitIDs(req.GetString("shapeIds", "")), mode)
	if err != nil {
		return nil, err
	}
	return jsonResult(map[string]any{"moved": len(updates), "updates": updates})
}

func (s *Server) handleDistributeShapes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardID, err := s.resolveBoardID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	axis, err := align.ParseAxis(req.GetString("axis", ""))
	if err != nil {
		return nil, err
	}
	updates, err := s.boards.Distribute(ctx, boardID, splitIDs(req.GetString("shapeIds", "")), axis)
	if err != nil {
		return nil, err
	}
	return jsonResult(map[string]any{"moved": len(updates), "updates": updates})
}

func (s *Server) handleTidyUp(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	boardID, err := s.resolveBoardID(args)
	if err != nil {
		return nil, err
	}
	l, err := layout.ParseLayout(req.GetString("layout", string(layout.Auto)))
	if err != nil {
		return nil, err
	}
	opts := s.boards.LayoutOptions(l)
	if gap, ok := floatArg(args, "gap"); ok && gap >= 0 {
		opts.Gap = gap
	}
	if cols, ok := floatArg(args, "columns"); ok && cols > 0 {
		opts.Columns = int(cols)
	}

	arranged, err := s.boards.TidyUp(ctx, boardID, splitIDs(req.GetString("shapeIds", "")), opts)
	if err != nil {
		return nil, err
	}
	shapes := make([]shapeSummary, len(arranged))
	for i, sh := range arranged {
		shapes[i] = summarizeShape(sh)
	}
	return jsonResult(shapes)
}

func (s *Server) handleDetectLayout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardID, err := s.resolveBoardID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	l, err := s.boards.DetectLayout(ctx, boardID, splitIDs(req.GetString("shapeIds", "")))
	if err != nil {
		return nil, err
	}
	return textResult(string(l)), nil
}

func (s *Server) handleComputeGuides(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	boardID, err := s.resolveBoardID(args)
	if err != nil {
		return nil, err
	}

	dragging := domain.Shape{ID: req.GetString("shapeId", "")}
	if dragging.ID != "" {
		b, err := s.boards.GetBoard(ctx, boardID)
		if err != nil {
			return nil, err
		}
		sh, ok := b.Document.ShapeByID(dragging.ID)
		if !ok {
			return nil, fmt.Errorf("shape %s not found", dragging.ID)
		}
		dragging = sh
	}
	dragging.X = req.GetFloat("x", dragging.X)
	dragging.Y = req.GetFloat("y", dragging.Y)
	if w, ok := floatArg(args, "width"); ok {
		dragging.Width = w
	}
	if h, ok := floatArg(args, "height"); ok {
		dragging.Height = h
	}

	res, err := s.boards.Guides(ctx, boardID, dragging)
	if err != nil {
		return nil, err
	}
	return jsonResult(res)
}

func (s *Server) handleRouteConnector(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardID, err := s.resolveBoardID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	connectorID := req.GetString("connectorId", "")
	if connectorID == "" {
		return nil, fmt.Errorf("connectorId is required")
	}
	points, err := s.boards.RouteConnector(ctx, boardID, connectorID)
	if err != nil {
		return nil, err
	}
	return jsonResult(points)
}
