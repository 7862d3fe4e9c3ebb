package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"whiteboard/internal/align"
	"whiteboard/internal/domain"
	"whiteboard/internal/export"
	"whiteboard/internal/layout"
	"whiteboard/internal/render"
	"whiteboard/internal/service"
)

// Commands in this file work on document files and never open the store.

var (
	exportFormat string
	outputPath   string
	shapeIDs     string
	tidyLayout   string
	tidyGap      float64
	tidyColumns  int
	alignMode    string
	distAxis     string
)

var exportCmd = &cobra.Command{
	Use:   "export <document.json>",
	Short: "Render a document file as svg, png or json",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}
		f, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		svc := service.NewBoardService(nil, nil, cfg, render.NewDefaultRegistry(), nil)
		e, err := svc.Exporter(f)
		if err != nil {
			return err
		}
		data, err := e.Export(doc)
		if err != nil {
			return err
		}

		out := outputPath
		if out == "" {
			out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + e.Extension()
		}
		if out == "-" {
			_, err = os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(out, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s (%d bytes)\n", out, len(data))
		return nil
	},
}

var tidyCmd = &cobra.Command{
	Use:   "tidy <document.json>",
	Short: "Rearrange shapes into a grid, row, column or circle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}
		l, err := layout.ParseLayout(tidyLayout)
		if err != nil {
			return err
		}
		opts := cfg.LayoutOptions(l)
		if cmd.Flags().Changed("gap") {
			opts.Gap = tidyGap
		}
		opts.Columns = tidyColumns

		selected := doc.SelectShapes(splitIDs(shapeIDs))
		if l == layout.Auto {
			fmt.Fprintf(os.Stderr, "Detected layout: %s\n", layout.DetectBestLayout(selected))
		}
		arranged := layout.TidyUp(selected, opts)
		return writeDocument(args[0], doc.ReplaceShapes(arranged))
	},
}

var alignCmd = &cobra.Command{
	Use:   "align <document.json>",
	Short: "Align shapes to a shared edge or midline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := align.ParseMode(alignMode)
		if err != nil {
			return err
		}
		return applyToDocument(args[0], func(shapes []domain.Shape) domain.Updates {
			return align.Align(shapes, mode)
		})
	},
}

var distributeCmd = &cobra.Command{
	Use:   "distribute <document.json>",
	Short: "Space three or more shapes evenly along an axis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		axis, err := align.ParseAxis(distAxis)
		if err != nil {
			return err
		}
		return applyToDocument(args[0], func(shapes []domain.Shape) domain.Updates {
			return align.Distribute(shapes, axis)
		})
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "svg", "Output format: svg, png or json")
	exportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (- for stdout, default next to the input)")

	tidyCmd.Flags().StringVarP(&tidyLayout, "layout", "l", "auto", "Layout: auto, grid, horizontal, vertical or circle")
	tidyCmd.Flags().Float64Var(&tidyGap, "gap", layout.DefaultGap, "Gap between shapes")
	tidyCmd.Flags().IntVar(&tidyColumns, "columns", 0, "Grid columns (0 picks a near-square grid)")

	alignCmd.Flags().StringVarP(&alignMode, "mode", "m", "", "Alignment: left, center, right, top, middle or bottom")
	alignCmd.MarkFlagRequired("mode")

	distributeCmd.Flags().StringVarP(&distAxis, "axis", "a", "horizontal", "Axis: horizontal or vertical")

	for _, c := range []*cobra.Command{tidyCmd, alignCmd, distributeCmd} {
		c.Flags().StringVar(&shapeIDs, "ids", "", "Comma-separated shape IDs (default all shapes)")
		c.Flags().StringVarP(&outputPath, "output", "o", "", "Write the result here instead of in place (- for stdout)")
	}

	rootCmd.AddCommand(exportCmd, tidyCmd, alignCmd, distributeCmd)
}

// applyToDocument runs an update-producing engine on the selected shapes
// and writes the document back.
func applyToDocument(path string, engine func([]domain.Shape) domain.Updates) error {
	doc, err := readDocument(path)
	if err != nil {
		return err
	}
	updates := engine(doc.SelectShapes(splitIDs(shapeIDs)))
	fmt.Fprintf(os.Stderr, "Moved %d shape(s)\n", len(updates))
	if len(updates) == 0 && outputPath == "" {
		return nil
	}
	return writeDocument(path, domain.NewDocument(domain.ApplyUpdates(doc.Shapes, updates), doc.Connectors))
}

func readDocument(path string) (domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("read document: %w", err)
	}
	shapes, connectors, err := domain.Deserialize(data)
	if err != nil {
		return domain.Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return domain.NewDocument(shapes, connectors), nil
}

// writeDocument writes doc to --output, or back to path when no output
// was given.
func writeDocument(path string, doc domain.Document) error {
	data, err := domain.Serialize(doc.Shapes, doc.Connectors)
	if err != nil {
		return err
	}
	out := outputPath
	if out == "" {
		out = path
	}
	if out == "-" {
		_, err = fmt.Fprintln(os.Stdout, string(data))
		return err
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
