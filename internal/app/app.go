// Package app wires configuration, storage and services together for the
// command line entry points.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"whiteboard/internal/config"
	"whiteboard/internal/render"
	"whiteboard/internal/service"
	"whiteboard/internal/storage"
)

// App owns the store and the services built on it.
type App struct {
	cfg      *config.Config
	store    storage.Store
	registry *render.Registry
	emitter  service.EventEmitter
	boards   *service.BoardService
}

// New opens the configured store and builds the services.
func New(ctx context.Context, cfg *config.Config, emitter service.EventEmitter) (*App, error) {
	if emitter == nil {
		emitter = service.NopEmitter{}
	}
	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	registry := render.NewDefaultRegistry()
	return &App{
		cfg:      cfg,
		store:    store,
		registry: registry,
		emitter:  emitter,
		boards:   service.NewBoardService(store, store, cfg, registry, emitter),
	}, nil
}

func (a *App) Config() *config.Config { return a.cfg }

func (a *App) Boards() *service.BoardService { return a.boards }

func (a *App) Store() storage.Store { return a.store }

// Close releases the store.
func (a *App) Close() error {
	return a.store.Close()
}

// Watch runs the configured export schedules and file watches together
// with the board watcher until ctx is cancelled, then waits up to grace
// for running exports to finish.
func (a *App) Watch(ctx context.Context, grace time.Duration) error {
	sched := service.NewExportScheduler(a.boards, a.cfg.Schedules, a.cfg.Watches, a.emitter)
	if err := sched.Start(ctx); err != nil {
		return err
	}

	w := newBoardWatcher(ctx, a.store, a.emitter, 2*time.Second)
	w.Start()

	log.Printf("watch: %d schedule(s), %d file watch(es)", len(a.cfg.Schedules), len(a.cfg.Watches))
	<-ctx.Done()

	w.Stop()
	sched.Stop()
	waitCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	sched.WaitRunning(waitCtx)
	if running := sched.Running(); len(running) > 0 {
		log.Printf("watch: abandoned %d running export(s): %v", len(running), running)
	}
	return nil
}
