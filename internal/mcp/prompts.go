package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("system_diagram",
		mcp.WithPromptDescription("Create a system architecture diagram using shapes and connectors"),
		mcp.WithArgument("systemName",
			mcp.ArgumentDescription("Name of the system to diagram"),
			mcp.RequiredArgument(),
		),
	), s.handleSystemDiagramPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("tidy_board",
		mcp.WithPromptDescription("Clean up the layout of an existing board"),
		mcp.WithArgument("boardId",
			mcp.ArgumentDescription("Board to clean up"),
			mcp.RequiredArgument(),
		),
	), s.handleTidyBoardPrompt)
}

func (s *Server) handleSystemDiagramPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	systemName := req.Params.Arguments["systemName"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Diagram the %s system", systemName),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Create an architecture diagram of "%s". Follow these steps:

1. Use create_board with the name "%s architecture"
2. Use add_shapes to add one shape per component. Pick types that read well:
   - cylinder for databases and queues
   - rounded-rectangle for services
   - document for files and reports
   - section for grouping related components
   Leave out x and y so shapes are placed automatically.
3. Use add_connector between components that talk to each other, with a short label
4. Use tidy_up with layout "auto" to arrange the components
5. Use route_connector to check connectors that cross other shapes
6. Finish with export_board as svg`, systemName, systemName),
				},
			},
		},
	}, nil
}

func (s *Server) handleTidyBoardPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	boardID := req.Params.Arguments["boardId"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Tidy board %s", boardID),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Clean up board %s. Follow these steps:

1. Use set_active_board with boardId "%s", then list_shapes
2. Use detect_layout to see which arrangement fits the shapes
3. Group shapes that belong together and run tidy_up on each group
4. Use align_shapes and distribute_shapes for rows or columns that are almost straight
5. Do not remove shapes unless asked`, boardID, boardID),
				},
			},
		},
	}, nil
}
