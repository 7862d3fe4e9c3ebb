package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whiteboard/internal/config"
	"whiteboard/internal/domain"
	"whiteboard/internal/service"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.DataDir = dir
	cfg.Storage.DSN = filepath.Join(dir, "whiteboard.db")
	cfg.Export.OutputDir = filepath.Join(dir, "exports")
	return cfg
}

func TestBoardWatcherReportsExternalChanges(t *testing.T) {
	ctx := context.Background()
	emitter := &service.MockEmitter{}
	a, err := New(ctx, testConfig(t), nil)
	require.NoError(t, err)
	defer a.Close()

	w := newBoardWatcher(ctx, a.Store(), emitter, time.Hour)
	w.check()
	assert.Empty(t, emitter.Events, "first poll only records state")

	b, err := a.Boards().CreateBoard(ctx, "ext", domain.NewDocument(nil, nil))
	require.NoError(t, err)
	w.check()
	changes := emitter.Named(EventBoardsChangedExternally)
	require.Len(t, changes, 1)
	assert.Equal(t, []string{b.ID}, changes[0].Data.(BoardsChange).Changed)

	w.check()
	assert.Len(t, emitter.Named(EventBoardsChangedExternally), 1, "unchanged boards are quiet")

	require.NoError(t, a.Boards().DeleteBoard(ctx, b.ID))
	w.check()
	changes = emitter.Named(EventBoardsChangedExternally)
	require.Len(t, changes, 2)
	assert.Equal(t, []string{b.ID}, changes[1].Data.(BoardsChange).Deleted)
}

func TestBoardWatcherEmitsApprovalsOnce(t *testing.T) {
	ctx := context.Background()
	emitter := &service.MockEmitter{}
	a, err := New(ctx, testConfig(t), nil)
	require.NoError(t, err)
	defer a.Close()

	w := newBoardWatcher(ctx, a.Store(), emitter, time.Hour)
	require.NoError(t, a.Store().CreateApproval(ctx, &domain.Approval{ID: "p1", Tool: "delete_board"}))

	w.check()
	w.check()
	pending := emitter.Named(EventApprovalPending)
	require.Len(t, pending, 1)
	assert.Equal(t, "p1", pending[0].Data.(domain.Approval).ID)

	require.NoError(t, a.Store().ResolveApproval(ctx, "p1", false))
	w.check()
	assert.Empty(t, w.emittedApprovals)
}

func TestWatchStopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Watch(ctx, time.Second) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatchRejectsBadCron(t *testing.T) {
	cfg := testConfig(t)
	cfg.Schedules = []config.Schedule{{BoardID: "b", Cron: "every tuesday", Format: "svg"}}
	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	assert.Error(t, a.Watch(context.Background(), time.Second))
}
