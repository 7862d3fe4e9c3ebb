package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/gogpu/gg"
	"github.com/spf13/cobra"

	"whiteboard/internal/app"
	"whiteboard/internal/config"
	"whiteboard/internal/service"
)

var (
	configPath string
	verbose    bool

	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "whiteboard",
	Short: "Arrange, snap, route and export whiteboard documents",
	Long: `whiteboard edits the geometry of whiteboard documents: alignment,
distribution, tidy-up layouts, smart guides and connector routing. It renders
documents to SVG, PNG or JSON and keeps boards in SQLite, Postgres, MySQL or
MongoDB for agents connected over MCP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		if verbose {
			gg.SetLogger(logger)
		}

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "~/.config/whiteboard/config.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

// openApp opens the configured store. Events are logged only in verbose
// mode.
func openApp(ctx context.Context) (*app.App, error) {
	var emitter service.EventEmitter = service.NopEmitter{}
	if verbose {
		emitter = service.LogEmitter{}
	}
	return app.New(ctx, cfg, emitter)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
