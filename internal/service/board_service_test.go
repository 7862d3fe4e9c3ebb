package service_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whiteboard/internal/align"
	"whiteboard/internal/config"
	"whiteboard/internal/domain"
	"whiteboard/internal/export"
	"whiteboard/internal/layout"
	"whiteboard/internal/render"
	"whiteboard/internal/service"
	"whiteboard/internal/storage"
)

type fixture struct {
	svc     *service.BoardService
	emitter *service.MockEmitter
	cfg     *config.Config
	db      *storage.DB
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	cfg := testConfig(t, dir)

	db, err := storage.New(config.DriverSQLite, filepath.Join(dir, "boards.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	emitter := &service.MockEmitter{}
	svc := service.NewBoardService(db, db, cfg, render.NewDefaultRegistry(), emitter)
	return &fixture{svc: svc, emitter: emitter, cfg: cfg, db: db}
}

func testConfig(t *testing.T, dir string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = dir
	cfg.Storage.DSN = filepath.Join(dir, "whiteboard.db")
	cfg.Export.OutputDir = filepath.Join(dir, "out")
	require.NoError(t, cfg.Validate())
	return cfg
}

func threeBoxes() domain.Document {
	return domain.NewDocument([]domain.Shape{
		{ID: "a", Type: domain.ShapeRectangle, X: 0, Y: 0, Width: 50, Height: 50},
		{ID: "b", Type: domain.ShapeRectangle, X: 70, Y: 30, Width: 50, Height: 50},
		{ID: "c", Type: domain.ShapeRectangle, X: 300, Y: 10, Width: 50, Height: 50},
	}, nil)
}

func TestBoardService_CreateAndList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	b, err := f.svc.CreateBoard(ctx, "  ", threeBoxes())
	require.NoError(t, err)
	assert.Equal(t, "Untitled", b.Name)
	assert.NotEmpty(t, b.ID)

	boards, err := f.svc.ListBoards(ctx)
	require.NoError(t, err)
	require.Len(t, boards, 1)
	assert.Len(t, boards[0].Document.Shapes, 3)
	assert.Len(t, f.emitter.Named(service.EventBoardChanged), 1)

	require.NoError(t, f.svc.DeleteBoard(ctx, b.ID))
	assert.Len(t, f.emitter.Named(service.EventBoardDeleted), 1)
	_, err = f.svc.GetBoard(ctx, b.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestBoardService_ImportDocument(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	b, err := f.svc.ImportDocument(ctx, "imported", []byte(`{"shapes":[{"id":"x","type":"ellipse","width":10,"height":10}]}`))
	require.NoError(t, err)
	assert.Len(t, b.Document.Shapes, 1)
	assert.Empty(t, b.Document.Connectors)

	_, err = f.svc.ImportDocument(ctx, "broken", []byte("not json"))
	assert.Error(t, err)
}

func TestBoardService_AddShapeAutoPlace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b, err := f.svc.CreateBoard(ctx, "b", domain.NewDocument([]domain.Shape{
		{ID: "a", Type: domain.ShapeRectangle, Width: 100, Height: 100},
	}, nil))
	require.NoError(t, err)

	s, err := f.svc.AddShape(ctx, b.ID, domain.Shape{Width: 40, Height: 40}, true)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, domain.ShapeRectangle, s.Type)
	assert.False(t, s.Frame().Pad(layout.Padding).Intersects(domain.BoundingBox{Width: 100, Height: 100}))

	got, err := f.svc.GetBoard(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, got.Document.Shapes, 2)

	_, err = f.svc.AddShape(ctx, b.ID, domain.Shape{ID: "a"}, false)
	assert.Error(t, err, "duplicate id")
}

func TestBoardService_AddConnectorAndRemoveShape(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b, err := f.svc.CreateBoard(ctx, "b", threeBoxes())
	require.NoError(t, err)

	_, err = f.svc.AddConnector(ctx, b.ID, domain.Connector{FromShapeID: "a", ToShapeID: "missing"})
	assert.Error(t, err)

	c, err := f.svc.AddConnector(ctx, b.ID, domain.Connector{FromShapeID: "a", ToShapeID: "c"})
	require.NoError(t, err)
	assert.Equal(t, domain.ConnectorArrow, c.Type)

	pts, err := f.svc.RouteConnector(ctx, b.ID, c.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(pts), 2)

	_, err = f.svc.RouteConnector(ctx, b.ID, "nope")
	assert.Error(t, err)

	require.NoError(t, f.svc.RemoveShape(ctx, b.ID, "a"))
	got, err := f.svc.GetBoard(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, got.Document.Shapes, 2)
	assert.Empty(t, got.Document.Connectors)
}

func TestBoardService_AlignAndDistribute(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b, err := f.svc.CreateBoard(ctx, "b", threeBoxes())
	require.NoError(t, err)

	updates, err := f.svc.Align(ctx, b.ID, []string{"a", "b"}, align.Top)
	require.NoError(t, err)
	require.Contains(t, updates, "b")
	assert.Equal(t, 0.0, *updates["b"].Y)

	got, err := f.svc.GetBoard(ctx, b.ID)
	require.NoError(t, err)
	s, _ := got.Document.ShapeByID("b")
	assert.Equal(t, 0.0, s.Y)

	updates, err = f.svc.Distribute(ctx, b.ID, nil, align.Horizontal)
	require.NoError(t, err)
	require.Contains(t, updates, "b")
	assert.InDelta(t, 150.0, *updates["b"].X, 1e-9)

	changed := len(f.emitter.Named(service.EventBoardChanged))
	updates, err = f.svc.Align(ctx, b.ID, []string{"a"}, align.Left)
	require.NoError(t, err)
	assert.Empty(t, updates)
	assert.Len(t, f.emitter.Named(service.EventBoardChanged), changed, "no-op is not saved")
}

func TestBoardService_TidyUpAndDetect(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b, err := f.svc.CreateBoard(ctx, "b", threeBoxes())
	require.NoError(t, err)

	l, err := f.svc.DetectLayout(ctx, b.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, layout.Horizontal, l)

	arranged, err := f.svc.TidyUp(ctx, b.ID, nil, f.svc.LayoutOptions(layout.Horizontal))
	require.NoError(t, err)
	require.Len(t, arranged, 3)

	got, err := f.svc.GetBoard(ctx, b.ID)
	require.NoError(t, err)
	a, _ := got.Document.ShapeByID(arranged[0].ID)
	next, _ := got.Document.ShapeByID(arranged[1].ID)
	assert.InDelta(t, *f.cfg.Layout.Gap, next.X-(a.X+a.Width), 1e-9)
}

func TestBoardService_TidyUpZeroGap(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b, err := f.svc.CreateBoard(ctx, "b", threeBoxes())
	require.NoError(t, err)

	opts := f.svc.LayoutOptions(layout.Horizontal)
	opts.Gap = 0
	arranged, err := f.svc.TidyUp(ctx, b.ID, nil, opts)
	require.NoError(t, err)
	require.Len(t, arranged, 3)

	got, err := f.svc.GetBoard(ctx, b.ID)
	require.NoError(t, err)
	a, _ := got.Document.ShapeByID(arranged[0].ID)
	next, _ := got.Document.ShapeByID(arranged[1].ID)
	assert.InDelta(t, 0, next.X-(a.X+a.Width), 1e-9, "shapes touch")
}

func TestBoardService_Guides(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b, err := f.svc.CreateBoard(ctx, "b", threeBoxes())
	require.NoError(t, err)

	res, err := f.svc.Guides(ctx, b.ID, domain.Shape{ID: "d", X: 302, Y: 200, Width: 50, Height: 50})
	require.NoError(t, err)
	require.NotNil(t, res.Snap.X)
	assert.Equal(t, 300.0, *res.Snap.X)
	assert.Nil(t, res.Snap.Y)
}

func TestBoardService_Export(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b, err := f.svc.CreateBoard(ctx, "b", threeBoxes())
	require.NoError(t, err)

	res, err := f.svc.Export(ctx, b.ID, export.FormatSVG, "", false)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(res.Data, []byte("<svg")))
	assert.Nil(t, res.Record)

	res, err = f.svc.Export(ctx, b.ID, export.FormatJSON, "", true)
	require.NoError(t, err)
	require.NotNil(t, res.Record)
	assert.Equal(t, filepath.Join(f.cfg.Export.OutputDir, b.ID+".json"), res.Record.Path)
	onDisk, err := os.ReadFile(res.Record.Path)
	require.NoError(t, err)
	assert.Equal(t, res.Data, onDisk)

	records, err := f.svc.ListExports(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "json", records[0].Format)
	assert.Len(t, f.emitter.Named(service.EventExportCompleted), 1)

	empty, err := f.svc.CreateBoard(ctx, "empty", domain.NewDocument(nil, nil))
	require.NoError(t, err)
	_, err = f.svc.Export(ctx, empty.ID, export.FormatSVG, "", false)
	assert.ErrorIs(t, err, export.ErrNothingToExport)
}

func TestBoardService_CanvasRenderer(t *testing.T) {
	f := newFixture(t)
	f.cfg.Export.Renderer = config.RendererCanvas

	e, err := f.svc.Exporter(export.FormatPNG)
	require.NoError(t, err)
	_, ok := e.(*render.Exporter)
	assert.True(t, ok)

	png, err := f.svc.ExportDocument(threeBoxes(), export.FormatPNG)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	e, err = f.svc.Exporter(export.FormatSVG)
	require.NoError(t, err)
	assert.Equal(t, export.FormatSVG, e.Format())
}
