package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var (
	autoApprove bool
	watchGrace  time.Duration
)

var serveMCPCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Serve boards to an agent over MCP on stdin/stdout",
	Long: `serve-mcp exposes the stored boards as MCP tools, resources and prompts.
Destructive tools wait for "whiteboard approvals approve <id>" from another
terminal unless --yes is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.ServeMCP(ctx, autoApprove)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run scheduled exports and re-export watched documents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Watch(ctx, watchGrace)
	},
}

func init() {
	serveMCPCmd.Flags().BoolVarP(&autoApprove, "yes", "y", false, "Approve destructive tools without asking")
	watchCmd.Flags().DurationVar(&watchGrace, "grace", 10*time.Second, "How long to wait for running exports on shutdown")

	rootCmd.AddCommand(serveMCPCmd, watchCmd)
}
