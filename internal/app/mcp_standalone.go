package app

import (
	"context"
	"fmt"
	"log"

	mcpserver "whiteboard/internal/mcp"
)

// ServeMCP runs a standalone MCP server on stdin/stdout until the client
// disconnects. Destructive tools wait for a decision recorded through the
// approval store (`whiteboard approvals`) unless autoApprove is set.
func (a *App) ServeMCP(ctx context.Context, autoApprove bool) error {
	srv := mcpserver.New(ctx, mcpserver.Deps{
		Emitter:     a.emitter,
		Boards:      a.boards,
		Approvals:   a.store, // Enable store-based approval IPC
		AutoApprove: autoApprove,
	})

	log.Println("[MCP] Starting standalone stdio server...")
	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
