package usecase

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/relaymill/towncrier/pkg/domain/model"
	"github.com/relaymill/towncrier/pkg/utils/errutil"
	"github.com/relaymill/towncrier/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// SyncResult holds the outcome of a single sync cycle
type SyncResult struct {
	// Checkpoint is the position the next cycle should start from
	Checkpoint time.Time
	// Fetched counts all recordings the CRM returned
	Fetched int
	// Candidates counts recordings that passed the notify filter
	Candidates int
	// Posted counts recordings delivered to the webhook
	Posted int
	// Skipped counts candidates dropped by per-record failures
	Skipped int
}

// Sync runs one cycle. Only the initial list fetch is fatal; every failure
// after that is scoped to a single recording and tolerated. The returned
// checkpoint never moves backwards.
func (uc *SyncUseCase) Sync(ctx context.Context, checkpoint time.Time) (*SyncResult, error) {
	logger := logging.From(ctx).With("cycle", uuid.New().String())
	ctx = logging.With(ctx, logger)

	recordings, err := uc.crm.ListRecordings(ctx, checkpoint)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list recordings", goerr.V("since", checkpoint))
	}

	result := &SyncResult{
		Checkpoint: checkpoint,
		Fetched:    len(recordings),
	}

	if len(recordings) == 0 {
		logger.Debug("No recordings fetched, checkpoint unchanged", "since", checkpoint)
		return result, nil
	}

	candidates := make([]*model.Recording, 0, len(recordings))
	for _, rec := range recordings {
		if uc.qualifies(rec, checkpoint) {
			candidates = append(candidates, rec)
		}
	}
	result.Candidates = len(candidates)

	if len(candidates) == 0 {
		logger.Info("No recordings qualified, checkpoint unchanged",
			"fetched", len(recordings), "since", checkpoint)
		return result, nil
	}

	// Stable: recordings with equal timestamps keep their fetch order
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})

	var posted, skipped atomic.Int64

	eg := &errgroup.Group{}
	eg.SetLimit(uc.concurrency)
	for _, rec := range candidates {
		eg.Go(func() error {
			if err := uc.deliver(ctx, rec); err != nil {
				errutil.Handle(ctx, err, "skipping recording")
				skipped.Add(1)
				return nil
			}
			posted.Add(1)
			return nil
		})
	}

	// Workers never return errors: per-record failures are only counted.
	// Wait still joins all of them before the checkpoint is computed.
	_ = eg.Wait()

	result.Posted = int(posted.Load())
	result.Skipped = int(skipped.Load())

	// The checkpoint advances over the FULL fetch, including recordings
	// that were filtered out or skipped, so they are never reconsidered
	// and edits to already-seen recordings still roll it forward.
	next := checkpoint
	for _, rec := range recordings {
		if rec.UpdatedAt.After(next) {
			next = rec.UpdatedAt
		}
	}
	result.Checkpoint = next

	logger.Info("Sync cycle completed",
		"fetched", result.Fetched,
		"candidates", result.Candidates,
		"posted", result.Posted,
		"skipped", result.Skipped,
		"checkpoint", next,
	)

	return result, nil
}

// deliver runs the per-recording pipeline: enrich, format, post
func (uc *SyncUseCase) deliver(ctx context.Context, rec *model.Recording) error {
	enriched, err := uc.enrich(ctx, rec)
	if err != nil {
		return err
	}

	msg, err := uc.formatMessage(enriched)
	if err != nil {
		return err
	}

	if err := uc.webhook.Post(ctx, msg); err != nil {
		return err
	}

	logging.From(ctx).Info("Posted recording",
		"id", rec.ID, "type", rec.Type, "subject", rec.SubjectName)
	return nil
}
