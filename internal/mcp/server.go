package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"whiteboard/internal/domain"
	"whiteboard/internal/service"
)

// Server is the MCP server for the whiteboard engine.
// It exposes tools, resources, and prompts so AI agents can edit boards.
type Server struct {
	mcp      *server.MCPServer
	emitter  service.EventEmitter
	approval *ApprovalQueue
	boards   *service.BoardService

	// Active board context (set by set_active_board and create_board)
	mu            sync.Mutex
	activeBoardID string
}

// Deps holds the dependencies passed from the CLI to the MCP server.
type Deps struct {
	Emitter service.EventEmitter
	Boards  *service.BoardService
	// Approvals, when set, shares pending destructive actions with another
	// process (`whiteboard approvals`). Otherwise approval happens
	// in-process through Approve/Reject.
	Approvals   domain.ApprovalStore
	AutoApprove bool
}

// New creates and configures a new MCP server with all tools and resources.
func New(ctx context.Context, deps Deps) *Server {
	emitter := deps.Emitter
	if emitter == nil {
		emitter = service.NopEmitter{}
	}
	approval := NewApprovalQueue(ctx, emitter)
	if deps.Approvals != nil {
		approval.SetStore(deps.Approvals)
	}
	approval.SetAutoApprove(deps.AutoApprove)

	s := &Server{
		emitter:  emitter,
		approval: approval,
		boards:   deps.Boards,
	}

	s.mcp = server.NewMCPServer(
		"whiteboard-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerBoardTools()
	s.registerShapeTools()
	s.registerArrangeTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// Approve forwards a user approval to the approval queue.
func (s *Server) Approve(actionID string) {
	s.approval.Approve(actionID)
}

// Reject forwards a user rejection to the approval queue.
func (s *Server) Reject(actionID string) {
	s.approval.Reject(actionID)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func (s *Server) setActiveBoard(id string) {
	s.mu.Lock()
	s.activeBoardID = id
	s.mu.Unlock()
}

// resolveBoardID returns the boardId from tool args or falls back to the
// active board.
func (s *Server) resolveBoardID(args map[string]any) (string, error) {
	if id, ok := args["boardId"].(string); ok && id != "" {
		return id, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeBoardID != "" {
		return s.activeBoardID, nil
	}
	return "", fmt.Errorf("no boardId provided and no active board set (use set_active_board first)")
}
