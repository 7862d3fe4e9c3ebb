package app

import (
	"context"
	"log"
	"sync"
	"time"

	"whiteboard/internal/domain"
	"whiteboard/internal/service"
	"whiteboard/internal/storage"
)

// EventBoardsChangedExternally is emitted when another process (usually the
// standalone MCP server) modified the stored boards.
const EventBoardsChangedExternally = "boards:changed-externally"

// EventApprovalPending is emitted once per pending approval found in the
// store.
const EventApprovalPending = "mcp:approval-required"

// boardWatcher polls the store for changes made by other processes and for
// pending MCP approvals, and reports them through the emitter.
type boardWatcher struct {
	ctx      context.Context
	store    storage.Store
	emitter  service.EventEmitter
	interval time.Duration

	mu sync.Mutex
	// boards fingerprint (id -> updated_at)
	lastBoards map[string]time.Time
	stopCh     chan struct{}
	stopOnce   sync.Once
	// Track emitted approval IDs to avoid re-emission
	emittedApprovals map[string]bool
}

func newBoardWatcher(ctx context.Context, store storage.Store, emitter service.EventEmitter, interval time.Duration) *boardWatcher {
	return &boardWatcher{
		ctx:              ctx,
		store:            store,
		emitter:          emitter,
		interval:         interval,
		emittedApprovals: map[string]bool{},
		stopCh:           make(chan struct{}),
	}
}

// Start begins the polling loop.
func (w *boardWatcher) Start() {
	w.check()
	go w.pollLoop()
}

// Stop terminates the polling loop. It is safe to call more than once.
func (w *boardWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func (w *boardWatcher) pollLoop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.check()
		case <-w.stopCh:
			return
		case <-w.ctx.Done():
			return
		}
	}
}

// BoardsChange lists the boards that appeared, changed or disappeared
// since the previous poll.
type BoardsChange struct {
	Changed []string `json:"changed,omitempty"`
	Deleted []string `json:"deleted,omitempty"`
}

func (w *boardWatcher) check() {
	boards, err := w.store.ListBoards(w.ctx)
	if err != nil {
		log.Printf("board watcher: list boards: %v", err)
		return
	}
	current := make(map[string]time.Time, len(boards))
	for _, b := range boards {
		current[b.ID] = b.UpdatedAt
	}

	w.mu.Lock()
	first := w.lastBoards == nil
	var change BoardsChange
	if !first {
		for _, b := range boards {
			if prev, ok := w.lastBoards[b.ID]; !ok || !prev.Equal(b.UpdatedAt) {
				change.Changed = append(change.Changed, b.ID)
			}
		}
		for id := range w.lastBoards {
			if _, ok := current[id]; !ok {
				change.Deleted = append(change.Deleted, id)
			}
		}
	}
	w.lastBoards = current
	w.mu.Unlock()

	if len(change.Changed) > 0 || len(change.Deleted) > 0 {
		w.emitter.Emit(w.ctx, EventBoardsChangedExternally, change)
	}

	w.checkApprovals()
}

// ── Pending MCP approvals (cross-process IPC) ─────────────

func (w *boardWatcher) checkApprovals() {
	pending, err := w.store.ListApprovals(w.ctx, domain.ApprovalPending)
	if err != nil {
		log.Printf("board watcher: list approvals: %v", err)
		return
	}

	still := make(map[string]bool, len(pending))
	for _, a := range pending {
		still[a.ID] = true
		w.mu.Lock()
		alreadySent := w.emittedApprovals[a.ID]
		w.emittedApprovals[a.ID] = true
		w.mu.Unlock()
		if !alreadySent {
			w.emitter.Emit(w.ctx, EventApprovalPending, a)
		}
	}

	// Forget approvals that were resolved or deleted.
	w.mu.Lock()
	for id := range w.emittedApprovals {
		if !still[id] {
			delete(w.emittedApprovals, id)
		}
	}
	w.mu.Unlock()
}
