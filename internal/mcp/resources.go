package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"whiteboard/internal/domain"
)

const (
	boardsURI      = "whiteboard://boards"
	boardURIPrefix = "whiteboard://board/"
)

func (s *Server) registerResources() {
	// ── whiteboard://boards ────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		boardsURI,
		"All Boards",
		mcp.WithMIMEType("application/json"),
	), s.handleBoardsResource)

	// ── whiteboard://board/{boardId}/document ──────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			boardURIPrefix+"{boardId}/document",
			"Serialized Board Document",
		),
		s.handleBoardDocumentResource,
	)
}

func (s *Server) handleBoardsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	boards, err := s.boards.ListBoards(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]boardSummary, len(boards))
	for i, b := range boards {
		summaries[i] = summarizeBoard(b)
	}

	data, _ := json.MarshalIndent(summaries, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      boardsURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleBoardDocumentResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	boardID := extractBoardIDFromURI(uri)
	if boardID == "" {
		return nil, fmt.Errorf("could not extract boardId from URI: %s", uri)
	}

	b, err := s.boards.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	data, err := domain.Serialize(b.Document.Shapes, b.Document.Connectors)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// extractBoardIDFromURI extracts the board ID from
// "whiteboard://board/{id}/document".
func extractBoardIDFromURI(uri string) string {
	rest, ok := strings.CutPrefix(uri, boardURIPrefix)
	if !ok {
		return ""
	}
	id, _, ok := strings.Cut(rest, "/")
	if !ok {
		return ""
	}
	return id
}
