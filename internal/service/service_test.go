package service_test

import (
	"context"
	"testing"
	"time"

	"whiteboard/internal/service"
)

// ─────────────────────────────────────────────────────────────
// RunningJobsGuard tests
// ─────────────────────────────────────────────────────────────

func TestRunningGuard_TryLock(t *testing.T) {
	var g service.ExportedRunningGuard

	if !g.TryLock("schedule:b1:svg") {
		t.Fatal("expected first TryLock to succeed")
	}
	if g.TryLock("schedule:b1:svg") {
		t.Fatal("expected second TryLock for same job to fail")
	}
	if !g.TryLock("watch:/tmp/a.json") {
		t.Fatal("expected TryLock for different job to succeed")
	}
	if got := g.Running(); len(got) != 2 || got[0] != "schedule:b1:svg" {
		t.Fatalf("unexpected running jobs %v", got)
	}
	g.Unlock("schedule:b1:svg")
	g.Unlock("watch:/tmp/a.json")

	if !g.TryLock("schedule:b1:svg") {
		t.Fatal("expected TryLock to succeed after unlock")
	}
	g.Unlock("schedule:b1:svg")
	if got := g.Running(); len(got) != 0 {
		t.Fatalf("expected no running jobs, got %v", got)
	}
}

func TestRunningGuard_WaitAll(t *testing.T) {
	var g service.ExportedRunningGuard

	if !g.TryLock("job-a") {
		t.Fatal("expected lock to succeed")
	}

	done := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		g.WaitAll(ctx)
		close(done)
	}()

	go func() {
		time.Sleep(20 * time.Millisecond)
		g.Unlock("job-a")
	}()

	select {
	case <-done:
		// success
	case <-time.After(1 * time.Second):
		t.Fatal("WaitAll timed out")
	}
}

// ─────────────────────────────────────────────────────────────
// MockEmitter tests
// ─────────────────────────────────────────────────────────────

func TestMockEmitter_RecordsEvents(t *testing.T) {
	m := &service.MockEmitter{}
	ctx := context.Background()

	m.Emit(ctx, service.EventBoardChanged, map[string]string{"boardId": "b1"})
	m.Emit(ctx, service.EventExportFailed, nil)

	if len(m.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(m.Events))
	}
	if m.Events[0].Event != service.EventBoardChanged {
		t.Errorf("expected %q, got %q", service.EventBoardChanged, m.Events[0].Event)
	}
}

func TestMockEmitter_Named(t *testing.T) {
	m := &service.MockEmitter{}
	ctx := context.Background()

	m.Emit(ctx, "a", "first")
	m.Emit(ctx, "b", "second")
	m.Emit(ctx, "a", "third")

	got := m.Named("a")
	if len(got) != 2 || got[1].Data != "third" {
		t.Errorf("unexpected events %v", got)
	}
	if len(m.Named("c")) != 0 {
		t.Error("expected no events named c")
	}
}
