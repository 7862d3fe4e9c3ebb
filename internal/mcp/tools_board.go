package mcpserver

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"whiteboard/internal/domain"
	"whiteboard/internal/export"
)

func (s *Server) registerBoardTools() {
	// ── set_active_board ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_active_board",
		mcp.WithDescription("Set the active board for subsequent tool calls. Tools that accept boardId will default to this."),
		mcp.WithString("boardId",
			mcp.Description("ID of the board to make active"),
			mcp.Required(),
		),
	), s.handleSetActiveBoard)

	// ── list_boards ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_boards",
		mcp.WithDescription("List all boards, most recently updated first"),
	), s.handleListBoards)

	// ── create_board ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_board",
		mcp.WithDescription("Create a new board and make it active. Optionally seed it with a serialized document."),
		mcp.WithString("name",
			mcp.Description("Name of the new board"),
			mcp.Required(),
		),
		mcp.WithString("document",
			mcp.Description("Serialized document JSON {shapes, connectors} (optional)"),
		),
	), s.handleCreateBoard)

	// ── delete_board ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_board",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete a board and its export history. Requires user approval."),
		mcp.WithString("boardId", mcp.Description("Board ID (optional, defaults to active board)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteBoard)

	// ── list_shapes ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_shapes",
		mcp.WithDescription("List all shapes and connectors on a board with their IDs, types, and frames"),
		mcp.WithString("boardId", mcp.Description("Board ID (optional, defaults to active board)")),
	), s.handleListShapes)

	// ── export_board ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("export_board",
		mcp.WithDescription("Export a board as svg, png or json. PNG is returned as an image; with a path the output is written to disk instead."),
		mcp.WithString("boardId", mcp.Description("Board ID (optional, defaults to active board)")),
		mcp.WithString("format",
			mcp.Description("Output format"),
			mcp.Enum("svg", "png", "json"),
			mcp.DefaultString("svg"),
		),
		mcp.WithString("path", mcp.Description("File to write (optional)")),
	), s.handleExportBoard)
}

type boardSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Shapes     int       `json:"shapes"`
	Connectors int       `json:"connectors"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func summarizeBoard(b domain.Board) boardSummary {
	return boardSummary{
		ID:         b.ID,
		Name:       b.Name,
		Shapes:     len(b.Document.Shapes),
		Connectors: len(b.Document.Connectors),
		UpdatedAt:  b.UpdatedAt,
	}
}

// shapeSummary is the compact view of a shape handed to agents.
type shapeSummary struct {
	ID      string           `json:"id"`
	Type    domain.ShapeType `json:"type"`
	X       float64          `json:"x"`
	Y       float64          `json:"y"`
	Width   float64          `json:"width"`
	Height  float64          `json:"height"`
	Text    string           `json:"text,omitempty"`
	Hidden  bool             `json:"hidden,omitempty"`
}

func summarizeShape(sh domain.Shape) shapeSummary {
	return shapeSummary{
		ID:     sh.ID,
		Type:   sh.Type,
		X:      sh.X,
		Y:      sh.Y,
		Width:  sh.Width,
		Height: sh.Height,
		Text:   sh.Text,
		Hidden: !sh.IsVisible(),
	}
}

func (s *Server) handleSetActiveBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardID := req.GetString("boardId", "")
	if boardID == "" {
		return nil, fmt.Errorf("boardId is required")
	}
	if _, err := s.boards.GetBoard(ctx, boardID); err != nil {
		return nil, err
	}
	s.setActiveBoard(boardID)
	return textResult(fmt.Sprintf("Active board set to %s", boardID)), nil
}

func (s *Server) handleListBoards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boards, err := s.boards.ListBoards(ctx)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	summaries := make([]boardSummary, len(boards))
	for i, b := range boards {
		summaries[i] = summarizeBoard(b)
	}
	return jsonResult(summaries)
}

func (s *Server) handleCreateBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	var (
		b   *domain.Board
		err error
	)
	if raw := req.GetString("document", ""); raw != "" {
		b, err = s.boards.ImportDocument(ctx, name, []byte(raw))
	} else {
		b, err = s.boards.CreateBoard(ctx, name, domain.NewDocument(nil, nil))
	}
	if err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}
	// Auto-set as active board
	s.setActiveBoard(b.ID)
	return jsonResult(summarizeBoard(*b))
}

func (s *Server) handleDeleteBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardID, err := s.resolveBoardID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	b, err := s.boards.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}

	desc := fmt.Sprintf("Delete board %q with %d shape(s)", b.Name, len(b.Document.Shapes))
	approved, err := s.approval.Request("delete_board", desc, marshalJSON(map[string]string{"boardId": boardID}))
	if err != nil || !approved {
		return textResult("Action rejected by user"), nil
	}

	if err := s.boards.DeleteBoard(ctx, boardID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.activeBoardID == boardID {
		s.activeBoardID = ""
	}
	s.mu.Unlock()
	return textResult(fmt.Sprintf("Board %s deleted", boardID)), nil
}

func (s *Server) handleListShapes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardID, err := s.resolveBoardID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	b, err := s.boards.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	shapes := make([]shapeSummary, len(b.Document.Shapes))
	for i, sh := range b.Document.Shapes {
		shapes[i] = summarizeShape(sh)
	}
	return jsonResult(map[string]any{
		"shapes":     shapes,
		"connectors": b.Document.Connectors,
	})
}

func (s *Server) handleExportBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardID, err := s.resolveBoardID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	f, err := export.ParseFormat(req.GetString("format", "svg"))
	if err != nil {
		return nil, err
	}
	path := req.GetString("path", "")

	res, err := s.boards.Export(ctx, boardID, f, path, false)
	if err != nil {
		return nil, err
	}
	if res.Record != nil {
		return jsonResult(res.Record)
	}
	if f == export.FormatPNG {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.ImageContent{Type: "image", Data: base64.StdEncoding.EncodeToString(res.Data), MIMEType: "image/png"},
			},
		}, nil
	}
	return textResult(string(res.Data)), nil
}
