package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"whiteboard/internal/align"
	"whiteboard/internal/config"
	"whiteboard/internal/domain"
	"whiteboard/internal/export"
	"whiteboard/internal/geometry"
	"whiteboard/internal/guides"
	"whiteboard/internal/layout"
	"whiteboard/internal/render"
)

// ─────────────────────────────────────────────────────────────
// Board Service: load, compute, save
// ─────────────────────────────────────────────────────────────

// BoardService applies the pure editing engines to stored boards. Every
// mutation reads the board, runs the engine on a snapshot, writes the
// result back and emits EventBoardChanged.
type BoardService struct {
	store    domain.BoardStore
	exports  domain.ExportLog
	emitter  EventEmitter
	cfg      *config.Config
	registry *render.Registry
	placer   *layout.Placer
}

// NewBoardService creates a BoardService. exports may be nil, in which
// case written exports are not recorded.
func NewBoardService(store domain.BoardStore, exports domain.ExportLog, cfg *config.Config, registry *render.Registry, emitter EventEmitter) *BoardService {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return &BoardService{
		store:    store,
		exports:  exports,
		emitter:  emitter,
		cfg:      cfg,
		registry: registry,
		placer:   layout.NewPlacer(),
	}
}

// Change describes one emitted board mutation.
type Change struct {
	BoardID string `json:"boardId"`
	Op      string `json:"op"`
	Count   int    `json:"count"`
}

// ── Board CRUD ─────────────────────────────────────────────

func (s *BoardService) CreateBoard(ctx context.Context, name string, doc domain.Document) (*domain.Board, error) {
	if strings.TrimSpace(name) == "" {
		name = "Untitled"
	}
	b := &domain.Board{
		ID:       uuid.New().String(),
		Name:     name,
		Document: domain.NewDocument(doc.Shapes, doc.Connectors),
	}
	if err := s.store.CreateBoard(ctx, b); err != nil {
		return nil, err
	}
	s.emitter.Emit(ctx, EventBoardChanged, Change{BoardID: b.ID, Op: "create", Count: len(b.Document.Shapes)})
	return b, nil
}

func (s *BoardService) GetBoard(ctx context.Context, id string) (*domain.Board, error) {
	return s.store.GetBoard(ctx, id)
}

func (s *BoardService) ListBoards(ctx context.Context) ([]domain.Board, error) {
	return s.store.ListBoards(ctx)
}

func (s *BoardService) DeleteBoard(ctx context.Context, id string) error {
	if err := s.store.DeleteBoard(ctx, id); err != nil {
		return err
	}
	s.emitter.Emit(ctx, EventBoardDeleted, Change{BoardID: id, Op: "delete"})
	return nil
}

// ImportDocument creates a board from a serialized document.
func (s *BoardService) ImportDocument(ctx context.Context, name string, data []byte) (*domain.Board, error) {
	shapes, connectors, err := domain.Deserialize(data)
	if err != nil {
		return nil, fmt.Errorf("import document: %w", err)
	}
	return s.CreateBoard(ctx, name, domain.NewDocument(shapes, connectors))
}

// ReplaceDocument overwrites a board's document.
func (s *BoardService) ReplaceDocument(ctx context.Context, id string, doc domain.Document) (*domain.Board, error) {
	return s.mutate(ctx, id, "replace", func(domain.Document) (domain.Document, int, error) {
		return domain.NewDocument(doc.Shapes, doc.Connectors), len(doc.Shapes), nil
	})
}

// mutate loads a board, applies fn and saves the result when fn reports
// a non-zero change count.
func (s *BoardService) mutate(ctx context.Context, id, op string, fn func(domain.Document) (domain.Document, int, error)) (*domain.Board, error) {
	b, err := s.store.GetBoard(ctx, id)
	if err != nil {
		return nil, err
	}
	doc, n, err := fn(b.Document)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return b, nil
	}
	b.Document = doc
	if err := s.store.UpdateBoard(ctx, b); err != nil {
		return nil, err
	}
	s.emitter.Emit(ctx, EventBoardChanged, Change{BoardID: id, Op: op, Count: n})
	return b, nil
}

// ── Shapes and connectors ──────────────────────────────────

// AddShape appends a shape to the board. An empty id is generated. When
// autoPlace is set the shape is moved to the first free grid slot.
func (s *BoardService) AddShape(ctx context.Context, boardID string, shape domain.Shape, autoPlace bool) (domain.Shape, error) {
	if shape.Type == "" {
		shape.Type = domain.ShapeRectangle
	}
	if shape.ID == "" {
		shape.ID = uuid.New().String()
	}
	_, err := s.mutate(ctx, boardID, "add-shape", func(doc domain.Document) (domain.Document, int, error) {
		if _, exists := doc.ShapeByID(shape.ID); exists {
			return doc, 0, fmt.Errorf("add shape: id %s already exists", shape.ID)
		}
		if autoPlace {
			shape.X, shape.Y = s.placer.NextPosition(doc.Shapes, shape.Width, shape.Height)
		}
		return domain.NewDocument(append(doc.Shapes, shape), doc.Connectors), 1, nil
	})
	return shape, err
}

// AddConnector appends a connector between two existing shapes.
func (s *BoardService) AddConnector(ctx context.Context, boardID string, c domain.Connector) (domain.Connector, error) {
	if c.Type == "" {
		c.Type = domain.ConnectorArrow
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	_, err := s.mutate(ctx, boardID, "add-connector", func(doc domain.Document) (domain.Document, int, error) {
		for _, id := range []string{c.FromShapeID, c.ToShapeID} {
			if _, ok := doc.ShapeByID(id); !ok {
				return doc, 0, fmt.Errorf("add connector: shape %s not found", id)
			}
		}
		return domain.NewDocument(doc.Shapes, append(doc.Connectors, c)), 1, nil
	})
	return c, err
}

// RemoveShape deletes a shape and every connector attached to it.
func (s *BoardService) RemoveShape(ctx context.Context, boardID, shapeID string) error {
	_, err := s.mutate(ctx, boardID, "remove-shape", func(doc domain.Document) (domain.Document, int, error) {
		if _, ok := doc.ShapeByID(shapeID); !ok {
			return doc, 0, fmt.Errorf("remove shape: %s not found", shapeID)
		}
		shapes := make([]domain.Shape, 0, len(doc.Shapes))
		for _, sh := range doc.Shapes {
			if sh.ID != shapeID {
				shapes = append(shapes, sh)
			}
		}
		var connectors []domain.Connector
		for _, c := range doc.Connectors {
			if c.FromShapeID != shapeID && c.ToShapeID != shapeID {
				connectors = append(connectors, c)
			}
		}
		return domain.NewDocument(shapes, connectors), 1, nil
	})
	return err
}

// ── Editing engines ────────────────────────────────────────

// Align aligns the listed shapes (all shapes when ids is empty) and
// returns the updates that were applied.
func (s *BoardService) Align(ctx context.Context, boardID string, ids []string, mode align.Mode) (domain.Updates, error) {
	var updates domain.Updates
	_, err := s.mutate(ctx, boardID, "align", func(doc domain.Document) (domain.Document, int, error) {
		updates = align.Align(doc.SelectShapes(ids), mode)
		return applyUpdates(doc, updates), len(updates), nil
	})
	return updates, err
}

// Distribute spaces the listed shapes evenly along axis.
func (s *BoardService) Distribute(ctx context.Context, boardID string, ids []string, axis align.Axis) (domain.Updates, error) {
	var updates domain.Updates
	_, err := s.mutate(ctx, boardID, "distribute", func(doc domain.Document) (domain.Document, int, error) {
		updates = align.Distribute(doc.SelectShapes(ids), axis)
		return applyUpdates(doc, updates), len(updates), nil
	})
	return updates, err
}

func applyUpdates(doc domain.Document, updates domain.Updates) domain.Document {
	if len(updates) == 0 {
		return doc
	}
	return domain.NewDocument(domain.ApplyUpdates(doc.Shapes, updates), doc.Connectors)
}

// TidyUp arranges the listed shapes and returns them in their new
// positions. opts is used as given; LayoutOptions seeds the configured gap.
func (s *BoardService) TidyUp(ctx context.Context, boardID string, ids []string, opts layout.Options) ([]domain.Shape, error) {
	var arranged []domain.Shape
	_, err := s.mutate(ctx, boardID, "tidy", func(doc domain.Document) (domain.Document, int, error) {
		arranged = layout.TidyUp(doc.SelectShapes(ids), opts)
		if len(arranged) <= 1 {
			return doc, 0, nil
		}
		return doc.ReplaceShapes(arranged), len(arranged), nil
	})
	return arranged, err
}

// LayoutOptions returns tidy-up options for l using the configured gap
// and centering.
func (s *BoardService) LayoutOptions(l layout.Layout) layout.Options {
	return s.cfg.LayoutOptions(l)
}

// DetectLayout suggests a tidy-up layout for the listed shapes.
func (s *BoardService) DetectLayout(ctx context.Context, boardID string, ids []string) (layout.Layout, error) {
	b, err := s.store.GetBoard(ctx, boardID)
	if err != nil {
		return "", err
	}
	return layout.DetectBestLayout(b.Document.SelectShapes(ids)), nil
}

// Guides computes smart guides for dragging against the board's shapes.
// It never modifies the board.
func (s *BoardService) Guides(ctx context.Context, boardID string, dragging domain.Shape) (guides.Result, error) {
	b, err := s.store.GetBoard(ctx, boardID)
	if err != nil {
		return guides.Result{}, err
	}
	return guides.ComputeGuides(dragging, b.Document.Shapes, s.cfg.GuideOptions()), nil
}

// RouteConnector returns an obstacle-avoiding orthogonal route for a
// stored connector.
func (s *BoardService) RouteConnector(ctx context.Context, boardID, connectorID string) ([]domain.Point, error) {
	b, err := s.store.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	for _, c := range b.Document.Connectors {
		if c.ID != connectorID {
			continue
		}
		pts, ok := geometry.RouteConnector(c, b.Document.Shapes)
		if !ok {
			return nil, fmt.Errorf("route connector %s: endpoint shape missing or hidden", connectorID)
		}
		return pts, nil
	}
	return nil, fmt.Errorf("route connector: %s not found", connectorID)
}

// ── Export ─────────────────────────────────────────────────

// Exporter returns the exporter for f configured from the export
// settings. PNG goes through the shape registry when the canvas renderer
// is selected.
func (s *BoardService) Exporter(f export.Format) (export.Exporter, error) {
	opts := export.Options{
		Padding:    *s.cfg.Export.Padding,
		Background: s.cfg.Export.Background,
		Scale:      s.cfg.Export.Scale,
	}
	if f == export.FormatPNG && s.cfg.Export.Renderer == config.RendererCanvas && s.registry != nil {
		return render.NewExporter(s.registry, opts, s.cfg.Export.FontPath), nil
	}
	return export.NewExporter(f, opts)
}

// ExportDocument renders a document that is not stored.
func (s *BoardService) ExportDocument(doc domain.Document, f export.Format) ([]byte, error) {
	e, err := s.Exporter(f)
	if err != nil {
		return nil, err
	}
	return e.Export(doc)
}

// ExportResult is a rendered board and, when written, where it went.
type ExportResult struct {
	Data   []byte
	Record *domain.ExportRecord
}

// Export renders a stored board. When path is non-empty, or write is set,
// the output is written to disk (defaulting to the configured output
// directory) and recorded in the export log.
func (s *BoardService) Export(ctx context.Context, boardID string, f export.Format, path string, write bool) (*ExportResult, error) {
	b, err := s.store.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	e, err := s.Exporter(f)
	if err != nil {
		return nil, err
	}
	data, err := e.Export(b.Document)
	if err != nil {
		return nil, fmt.Errorf("export board %s: %w", boardID, err)
	}
	res := &ExportResult{Data: data}
	if path == "" && !write {
		return res, nil
	}
	if path == "" {
		path = filepath.Join(s.cfg.Export.OutputDir, boardID+e.Extension())
	}
	if err := writeFile(path, data); err != nil {
		return nil, err
	}

	rec := &domain.ExportRecord{ID: uuid.New().String(), BoardID: boardID, Format: string(f), Path: path, Bytes: len(data)}
	if s.exports != nil {
		if err := s.exports.RecordExport(ctx, rec); err != nil {
			return nil, err
		}
	}
	res.Record = rec
	s.emitter.Emit(ctx, EventExportCompleted, rec)
	return res, nil
}

// ListExports returns the recorded exports of a board.
func (s *BoardService) ListExports(ctx context.Context, boardID string) ([]domain.ExportRecord, error) {
	if s.exports == nil {
		return nil, nil
	}
	return s.exports.ListExports(ctx, boardID)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
