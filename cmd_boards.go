package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"whiteboard/internal/domain"
	"whiteboard/internal/export"
)

var (
	boardsJSON  bool
	importName  string
	boardFormat string
	boardOutput string
)

var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "Manage stored boards",
}

var boardsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored boards, most recently updated first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		boards, err := a.Boards().ListBoards(ctx)
		if err != nil {
			return err
		}
		if boardsJSON {
			type row struct {
				ID         string    `json:"id"`
				Name       string    `json:"name"`
				Shapes     int       `json:"shapes"`
				Connectors int       `json:"connectors"`
				UpdatedAt  time.Time `json:"updatedAt"`
			}
			rows := make([]row, len(boards))
			for i, b := range boards {
				rows[i] = row{b.ID, b.Name, len(b.Document.Shapes), len(b.Document.Connectors), b.UpdatedAt}
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSHAPES\tUPDATED")
		for _, b := range boards {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", b.ID, b.Name, len(b.Document.Shapes), b.UpdatedAt.Local().Format(time.DateTime))
		}
		return w.Flush()
	},
}

var boardsImportCmd = &cobra.Command{
	Use:   "import <document.json>",
	Short: "Store a document file as a new board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read document: %w", err)
		}
		name := importName
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		}

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		b, err := a.Boards().ImportDocument(ctx, name, data)
		if err != nil {
			return err
		}
		fmt.Println(b.ID)
		return nil
	},
}

var boardsExportCmd = &cobra.Command{
	Use:   "export <board-id>",
	Short: "Render a stored board and record the export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		f, err := export.ParseFormat(boardFormat)
		if err != nil {
			return err
		}
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Boards().Export(ctx, args[0], f, boardOutput, true)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %s (%d bytes)\n", res.Record.Path, res.Record.Bytes)
		return nil
	},
}

var boardsHistoryCmd = &cobra.Command{
	Use:   "history <board-id>",
	Short: "List the recorded exports of a board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		records, err := a.Boards().ListExports(ctx, args[0])
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CREATED\tFORMAT\tBYTES\tPATH")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.CreatedAt.Local().Format(time.DateTime), r.Format, r.Bytes, r.Path)
		}
		return w.Flush()
	},
}

var boardsDeleteCmd = &cobra.Command{
	Use:   "delete <board-id>",
	Short: "Delete a board and its export history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Boards().DeleteBoard(ctx, args[0])
	},
}

// ── Approvals ──────────────────────────────────────────────

var approvalsCmd = &cobra.Command{
	Use:   "approvals",
	Short: "Review destructive actions requested by the MCP server",
}

var approvalsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending approvals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		pending, err := a.Store().ListApprovals(ctx, domain.ApprovalPending)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTOOL\tDESCRIPTION")
		for _, p := range pending {
			fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Tool, p.Description)
		}
		return w.Flush()
	},
}

func resolveApprovalCmd(use, short string, approved bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <approval-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Store().ResolveApproval(ctx, args[0], approved)
		},
	}
}

func init() {
	boardsListCmd.Flags().BoolVar(&boardsJSON, "json", false, "Output as JSON")
	boardsImportCmd.Flags().StringVarP(&importName, "name", "n", "", "Board name (default the file name)")
	boardsExportCmd.Flags().StringVarP(&boardFormat, "format", "f", "svg", "Output format: svg, png or json")
	boardsExportCmd.Flags().StringVarP(&boardOutput, "output", "o", "", "Output file (default in the configured export directory)")

	boardsCmd.AddCommand(boardsListCmd, boardsImportCmd, boardsExportCmd, boardsHistoryCmd, boardsDeleteCmd)
	approvalsCmd.AddCommand(
		approvalsListCmd,
		resolveApprovalCmd("approve", "Allow a pending action", true),
		resolveApprovalCmd("reject", "Refuse a pending action", false),
	)
	rootCmd.AddCommand(boardsCmd, approvalsCmd)
}
