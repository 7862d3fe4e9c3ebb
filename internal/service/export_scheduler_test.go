package service_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whiteboard/internal/config"
	"whiteboard/internal/domain"
	"whiteboard/internal/service"
)

func writeDocument(t *testing.T, path string, doc domain.Document) {
	t.Helper()
	data, err := domain.Serialize(doc.Shapes, doc.Connectors)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func TestExportScheduler_RunSchedule(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b, err := f.svc.CreateBoard(ctx, "b", threeBoxes())
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "nightly", "board.svg")
	sc := config.Schedule{BoardID: b.ID, Cron: "@every 1h", Format: "svg", Output: out}
	sched := service.NewExportScheduler(f.svc, []config.Schedule{sc}, nil, f.emitter)

	res, err := sched.RunSchedule(ctx, sc)
	require.NoError(t, err)
	require.NotNil(t, res.Record)
	assert.Equal(t, out, res.Record.Path)
	assert.FileExists(t, out)

	_, err = sched.RunSchedule(ctx, config.Schedule{BoardID: "missing", Format: "svg"})
	assert.Error(t, err)
	failed := f.emitter.Named(service.EventExportFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "schedule:missing:svg", failed[0].Data.(service.ExportFailure).JobID)
}

func TestExportScheduler_RunWatchDefaultsOutput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	src := filepath.Join(t.TempDir(), "diagram.json")
	writeDocument(t, src, threeBoxes())

	sched := service.NewExportScheduler(f.svc, nil, nil, f.emitter)
	dest, err := sched.RunWatch(ctx, config.Watch{Path: src, Format: "svg"})
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSuffix(src, ".json")+".svg", dest)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<svg"))
	assert.Len(t, f.emitter.Named(service.EventExportCompleted), 1)

	_, err = sched.RunWatch(ctx, config.Watch{Path: src, Format: "gif"})
	assert.Error(t, err)
}

func TestExportScheduler_StartRejectsBadCron(t *testing.T) {
	f := newFixture(t)
	sched := service.NewExportScheduler(f.svc, []config.Schedule{{BoardID: "b", Cron: "not a cron", Format: "svg"}}, nil, nil)
	assert.Error(t, sched.Start(context.Background()))
	sched.Stop()
}

func TestExportScheduler_WatchTriggersExport(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "live.json")
	out := filepath.Join(dir, "live.svg")
	writeDocument(t, src, threeBoxes())

	sched := service.NewExportScheduler(f.svc, nil, []config.Watch{{Path: src, Format: "svg", Output: out}}, f.emitter)
	require.NoError(t, sched.Start(context.Background()))
	defer sched.Stop()

	doc := threeBoxes()
	doc.Shapes[0].X = 500
	writeDocument(t, src, doc)

	require.Eventually(t, func() bool {
		_, err := os.Stat(out)
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)
}

func TestExportScheduler_StopIdempotent(t *testing.T) {
	f := newFixture(t)
	sched := service.NewExportScheduler(f.svc, nil, nil, nil)
	require.NoError(t, sched.Start(context.Background()))
	sched.Stop()
	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sched.WaitRunning(ctx)
	assert.Empty(t, sched.Running())
}
