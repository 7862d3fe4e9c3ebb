package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"whiteboard/internal/config"
	"whiteboard/internal/domain"
	"whiteboard/internal/export"
)

// watchDebounce collapses bursts of editor writes into one export.
const watchDebounce = 500 * time.Millisecond

// ─────────────────────────────────────────────────────────────
// ExportScheduler: cron and file-watch driven exports
// ─────────────────────────────────────────────────────────────

// ExportScheduler re-exports boards on a cron schedule and re-renders
// document files whenever they change on disk.
type ExportScheduler struct {
	boards    *BoardService
	emitter   EventEmitter
	schedules []config.Schedule
	watches   []config.Watch

	mu          sync.Mutex
	cronSched   *cron.Cron
	watcher     *fsnotify.Watcher
	watchCancel context.CancelFunc
	runningJobs runningJobsGuard
}

func NewExportScheduler(boards *BoardService, schedules []config.Schedule, watches []config.Watch, emitter EventEmitter) *ExportScheduler {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return &ExportScheduler{boards: boards, emitter: emitter, schedules: schedules, watches: watches}
}

func scheduleJobID(sc config.Schedule) string {
	return "schedule:" + sc.BoardID + ":" + sc.Format
}

func watchJobID(w config.Watch) string {
	return "watch:" + w.Path
}

// ExportFailure is the payload of EventExportFailed.
type ExportFailure struct {
	JobID string `json:"jobId"`
	Error string `json:"error"`
}

// RunSchedule exports one scheduled board. It returns (nil, nil) when a
// previous run of the same schedule is still in progress.
func (s *ExportScheduler) RunSchedule(ctx context.Context, sc config.Schedule) (*ExportResult, error) {
	jobID := scheduleJobID(sc)
	if !s.runningJobs.TryLock(jobID) {
		log.Printf("export scheduler: job %s already running, skipping", jobID)
		return nil, nil
	}
	defer s.runningJobs.Unlock(jobID)

	f, err := export.ParseFormat(sc.Format)
	if err != nil {
		return nil, s.fail(ctx, jobID, err)
	}
	res, err := s.boards.Export(ctx, sc.BoardID, f, sc.Output, true)
	if err != nil {
		return nil, s.fail(ctx, jobID, err)
	}
	return res, nil
}

// RunWatch renders a watched document file. Without an explicit output
// the result is written next to the source with the format's extension.
func (s *ExportScheduler) RunWatch(ctx context.Context, w config.Watch) (string, error) {
	jobID := watchJobID(w)
	if !s.runningJobs.TryLock(jobID) {
		log.Printf("export scheduler: job %s already running, skipping", jobID)
		return "", nil
	}
	defer s.runningJobs.Unlock(jobID)

	f, err := export.ParseFormat(w.Format)
	if err != nil {
		return "", s.fail(ctx, jobID, err)
	}
	data, err := os.ReadFile(w.Path)
	if err != nil {
		return "", s.fail(ctx, jobID, fmt.Errorf("read %s: %w", w.Path, err))
	}
	shapes, connectors, err := domain.Deserialize(data)
	if err != nil {
		return "", s.fail(ctx, jobID, fmt.Errorf("parse %s: %w", w.Path, err))
	}
	e, err := s.boards.Exporter(f)
	if err != nil {
		return "", s.fail(ctx, jobID, err)
	}
	out, err := e.Export(domain.NewDocument(shapes, connectors))
	if err != nil {
		return "", s.fail(ctx, jobID, err)
	}

	dest := w.Output
	if dest == "" {
		dest = strings.TrimSuffix(w.Path, filepath.Ext(w.Path)) + e.Extension()
	}
	if err := writeFile(dest, out); err != nil {
		return "", s.fail(ctx, jobID, err)
	}
	s.emitter.Emit(ctx, EventExportCompleted, &domain.ExportRecord{Format: string(f), Path: dest, Bytes: len(out), CreatedAt: time.Now().UTC()})
	return dest, nil
}

func (s *ExportScheduler) fail(ctx context.Context, jobID string, err error) error {
	s.emitter.Emit(ctx, EventExportFailed, ExportFailure{JobID: jobID, Error: err.Error()})
	return fmt.Errorf("export job %s: %w", jobID, err)
}

// ── Lifecycle ──────────────────────────────────────────────

// Start registers the cron schedules and file watches. Invalid cron
// expressions are rejected before anything starts.
func (s *ExportScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()

	if len(s.schedules) > 0 {
		c := cron.New()
		for _, sc := range s.schedules {
			sc := sc
			_, err := c.AddFunc(sc.Cron, func() {
				log.Printf("export cron: running %s", scheduleJobID(sc))
				if _, err := s.RunSchedule(ctx, sc); err != nil {
					log.Printf("export cron: %v", err)
				}
			})
			if err != nil {
				return fmt.Errorf("invalid cron expression %q for board %s: %w", sc.Cron, sc.BoardID, err)
			}
		}
		c.Start()
		s.cronSched = c
		log.Printf("export cron: scheduled %d job(s)", len(s.schedules))
	}

	if len(s.watches) == 0 {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	s.watcher = watcher

	pathToWatch := make(map[string]config.Watch)
	watchedDirs := make(map[string]bool)
	for _, w := range s.watches {
		absPath, err := filepath.Abs(w.Path)
		if err != nil {
			log.Printf("export watcher: bad path %q: %v", w.Path, err)
			continue
		}
		pathToWatch[absPath] = w
		dir := filepath.Dir(absPath)
		if watchedDirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			log.Printf("export watcher: failed to watch dir %q: %v", dir, err)
			continue
		}
		watchedDirs[dir] = true
	}

	watchCtx, cancel := context.WithCancel(ctx)
	s.watchCancel = cancel
	go s.watchLoop(watchCtx, watcher, pathToWatch)

	log.Printf("export watcher: watching %d file(s)", len(pathToWatch))
	return nil
}

func (s *ExportScheduler) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, pathToWatch map[string]config.Watch) {
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			absPath, _ := filepath.Abs(event.Name)
			w, ok := pathToWatch[absPath]
			if !ok {
				continue
			}
			if t, exists := timers[absPath]; exists {
				t.Stop()
			}
			timers[absPath] = time.AfterFunc(watchDebounce, func() {
				log.Printf("export watcher: file changed %q", absPath)
				if _, err := s.RunWatch(ctx, w); err != nil {
					log.Printf("export watcher: %v", err)
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("export watcher: error: %v", err)
		}
	}
}

// Running lists the export jobs currently in progress.
func (s *ExportScheduler) Running() []string {
	return s.runningJobs.Running()
}

// WaitRunning blocks until all running jobs finish or ctx is cancelled.
func (s *ExportScheduler) WaitRunning(ctx context.Context) {
	s.runningJobs.WaitAll(ctx)
}

// Stop tears down the cron scheduler and file watcher.
func (s *ExportScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *ExportScheduler) stopLocked() {
	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}
	if s.watcher != nil {
		s.watcher.Close()
		s.watcher = nil
	}
	if s.cronSched != nil {
		s.cronSched.Stop()
		s.cronSched = nil
	}
}
