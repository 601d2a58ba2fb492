package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"sidenote-sync-server/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	TriggerAuto   = "auto"
	TriggerManual = "manual"
)

// SnapshotSource returns the note collection as it is at the moment of the call.
type SnapshotSource interface {
	Get(ctx context.Context) (*domain.Snapshot, error)
}

type StatusPublisher interface {
	PublishStatus(status domain.SyncStatus)
}

// RunHistory persists finished runs.
type RunHistory interface {
	Record(ctx context.Context, run *domain.SyncRun) error
	Recent(ctx context.Context, limit int) ([]domain.SyncRun, error)
}

type syncJob struct {
	runID   string
	trigger string
	done    chan domain.SyncResult
}

// AutoSyncer serializes sync runs. Edits are debounced before an automatic
// run is requested, and at most one run is in flight at a time: a request
// that arrives while another is running is dropped, not queued.
type AutoSyncer struct {
	syncer    Syncer
	snapshots SnapshotSource
	settings  SettingsProvider
	publisher StatusPublisher
	history   RunHistory
	debounce  time.Duration
	log       zerolog.Logger
	now       func() time.Time

	jobs   chan syncJob
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	timer   *time.Timer
	busy    bool
	stopped bool
	status  domain.SyncStatus
}

func NewAutoSyncer(syncer Syncer, snapshots SnapshotSource, settings SettingsProvider, publisher StatusPublisher, debounce time.Duration, log zerolog.Logger) *AutoSyncer {
	ctx, cancel := context.WithCancel(context.Background())
	return &AutoSyncer{
		syncer:    syncer,
		snapshots: snapshots,
		settings:  settings,
		publisher: publisher,
		debounce:  debounce,
		log:       log.With().Str("component", "auto_sync").Logger(),
		now:       time.Now,
		jobs:      make(chan syncJob, 1),
		ctx:       ctx,
		cancel:    cancel,
		status:    domain.SyncStatus{State: domain.SyncStateIdle},
	}
}

func (a *AutoSyncer) SetHistory(history RunHistory) {
	a.history = history
}

// RestoreStatus seeds the last successful sync time from the run history so
// the status survives a restart.
func (a *AutoSyncer) RestoreStatus(ctx context.Context) error {
	if a.history == nil {
		return nil
	}

	runs, err := a.history.Recent(ctx, 0)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, run := range runs {
		if run.Success {
			finished := run.FinishedAt
			a.status.LastSyncTime = &finished
			break
		}
	}
	return nil
}

func (a *AutoSyncer) Start() {
	a.wg.Add(1)
	go a.worker()
	a.log.Info().Dur("debounce", a.debounce).Msg("auto-sync started")
}

// Stop cancels a pending debounce, aborts the running sync and waits for the
// worker to exit.
func (a *AutoSyncer) Stop() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	a.stopped = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()

	a.cancel()
	a.wg.Wait()
	a.log.Info().Msg("auto-sync stopped")
}

// Trigger records a local edit and (re)starts the debounce window.
func (a *AutoSyncer) Trigger() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.debounce, a.fire)
}

func (a *AutoSyncer) fire() {
	a.mu.Lock()
	a.timer = nil
	a.mu.Unlock()

	settings, err := a.settings.Get(a.ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("could not load settings, skipping auto-sync")
		return
	}
	if !settings.AutoSync || strings.TrimSpace(settings.Token) == "" {
		a.log.Debug().Bool("enabled", settings.AutoSync).Msg("auto-sync disabled or no token, skipping")
		return
	}

	if _, ok := a.offer(TriggerAuto, nil); !ok {
		a.log.Debug().Msg("sync already in progress, auto-sync dropped")
	}
}

// SyncNow runs a sync immediately, ignoring the debounce and the auto-sync
// flag. It returns ErrSyncInProgress without running if another sync is in flight.
func (a *AutoSyncer) SyncNow(ctx context.Context) (domain.SyncResult, error) {
	done := make(chan domain.SyncResult, 1)

	runID, ok := a.offer(TriggerManual, done)
	if !ok {
		if a.isStopped() {
			return domain.SyncFailed(ErrSyncerStopped), ErrSyncerStopped
		}
		return domain.SyncFailed(ErrSyncInProgress), ErrSyncInProgress
	}

	select {
	case result := <-done:
		return result, nil
	case <-a.ctx.Done():
		return domain.SyncFailed(ErrSyncerStopped), ErrSyncerStopped
	case <-ctx.Done():
		a.log.Debug().Str("run_id", runID).Msg("caller went away, sync continues in background")
		return domain.SyncFailed(ctx.Err()), ctx.Err()
	}
}

func (a *AutoSyncer) Status() domain.SyncStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

func (a *AutoSyncer) isStopped() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stopped
}

// offer claims the single run slot and hands the job to the worker.
func (a *AutoSyncer) offer(trigger string, done chan domain.SyncResult) (string, bool) {
	a.mu.Lock()
	if a.stopped || a.busy {
		a.mu.Unlock()
		return "", false
	}

	job := syncJob{runID: uuid.New().String(), trigger: trigger, done: done}
	select {
	case a.jobs <- job:
	default:
		a.mu.Unlock()
		return "", false
	}

	a.busy = true
	a.status.State = domain.SyncStateSyncing
	a.status.IsSyncing = true
	a.status.SyncError = ""
	a.status.RunID = job.runID
	a.status.Trigger = trigger
	status := a.status
	a.mu.Unlock()

	a.publish(status)
	return job.runID, true
}

func (a *AutoSyncer) worker() {
	defer a.wg.Done()
	for {
		select {
		case <-a.ctx.Done():
			return
		case job := <-a.jobs:
			a.run(job)
		}
	}
}

func (a *AutoSyncer) run(job syncJob) {
	log := a.log.With().Str("run_id", job.runID).Str("trigger", job.trigger).Logger()
	start := a.now()

	var result domain.SyncResult
	snapshot, err := a.snapshots.Get(a.ctx)
	if err != nil {
		log.Error().Err(err).Msg("could not load snapshot")
		result = domain.SyncFailed(fmt.Errorf("failed to load notes: %w", err))
	} else {
		result = a.syncer.SyncToRemote(a.ctx, snapshot.Notes, snapshot.Folders)
	}

	finished := a.now()
	a.mu.Lock()
	a.busy = false
	a.status.IsSyncing = false
	if result.Success {
		a.status.State = domain.SyncStateSucceeded
		a.status.LastSyncTime = &finished
		a.status.SyncError = ""
	} else {
		a.status.State = domain.SyncStateFailed
		a.status.SyncError = result.Error
	}
	status := a.status
	a.mu.Unlock()

	log.Info().Bool("success", result.Success).Dur("took", finished.Sub(start)).Msg("sync finished")
	a.publish(status)
	a.record(job, result, start, finished)

	if job.done != nil {
		job.done <- result
	}
}

func (a *AutoSyncer) record(job syncJob, result domain.SyncResult, start, finished time.Time) {
	if a.history == nil {
		return
	}

	run := &domain.SyncRun{
		ID:         job.runID,
		Trigger:    job.trigger,
		Success:    result.Success,
		Message:    result.Message,
		Error:      result.Error,
		StartedAt:  start,
		FinishedAt: finished,
	}
	// the run context may already be cancelled on shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.history.Record(ctx, run); err != nil {
		a.log.Warn().Err(err).Str("run_id", job.runID).Msg("failed to record sync run")
	}
}

func (a *AutoSyncer) publish(status domain.SyncStatus) {
	if a.publisher != nil {
		a.publisher.PublishStatus(status)
	}
}
