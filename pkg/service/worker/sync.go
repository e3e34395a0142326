package worker

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/relaymill/towncrier/pkg/domain/interfaces"
	"github.com/relaymill/towncrier/pkg/domain/model"
	"github.com/relaymill/towncrier/pkg/usecase"
	"github.com/relaymill/towncrier/pkg/utils/logging"
)

// Syncer runs one sync cycle from the given checkpoint
type Syncer interface {
	Sync(ctx context.Context, checkpoint time.Time) (*usecase.SyncResult, error)
}

// SyncWorker runs sync cycles on a fixed interval and persists the checkpoint
// between them.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - For horizontal scaling, implement distributed locking or leader election
type SyncWorker struct {
	repo     interfaces.Repository
	syncer   Syncer
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewSyncWorker creates a worker that syncs every interval
func NewSyncWorker(repo interfaces.Repository, syncer Syncer, interval time.Duration) *SyncWorker {
	return &SyncWorker{
		repo:     repo,
		syncer:   syncer,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background sync loop. The first cycle runs immediately in
// a background goroutine; startup does not block on it.
func (w *SyncWorker) Start(ctx context.Context) error {
	logging.Default().Info("Sync worker starting", "interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *SyncWorker) Stop() {
	logging.Default().Info("Sync worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Sync worker stopped")
}

func (w *SyncWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	if err := w.cycle(ctx); err != nil {
		logging.Default().Error("Sync cycle failed (will retry next interval)",
			"error", err.Error())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.cycle(ctx); err != nil {
				// Log error but continue worker
				logging.Default().Error("Sync cycle failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			logging.Default().Info("Sync worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("Sync worker context cancelled")
			return
		}
	}
}

// RunOnce executes a single checkpoint-to-checkpoint cycle outside the
// ticker loop, for manual triggers.
func (w *SyncWorker) RunOnce(ctx context.Context) error {
	return w.cycle(ctx)
}

// cycle loads the checkpoint, runs one sync, and stores the new checkpoint.
// A missing checkpoint means a fresh deployment: the cycle starts from the
// zero time and the CRM decides how far back to go.
func (w *SyncWorker) cycle(ctx context.Context) error {
	cp, err := w.repo.Checkpoint().Get(ctx)
	if err != nil {
		if !errors.Is(err, interfaces.ErrCheckpointNotFound) {
			return goerr.Wrap(err, "failed to load checkpoint")
		}
		cp = &model.Checkpoint{}
	}

	result, err := w.syncer.Sync(ctx, cp.Position)
	if err != nil {
		return goerr.Wrap(err, "sync cycle failed")
	}

	next := cp.Advanced(result.Checkpoint, time.Now())
	if err := w.repo.Checkpoint().Put(ctx, &next); err != nil {
		return goerr.Wrap(err, "failed to store checkpoint", goerr.V("position", next.Position))
	}

	return nil
}
