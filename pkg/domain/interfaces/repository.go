package interfaces

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/relaymill/towncrier/pkg/domain/model"
)

// ErrCheckpointNotFound is returned when no checkpoint has been stored yet
var ErrCheckpointNotFound = goerr.New("checkpoint not found")

// Repository defines the interface for checkpoint persistence
type Repository interface {
	Checkpoint() CheckpointRepository
	Close() error
}

// CheckpointRepository persists the sync checkpoint between cycles
type CheckpointRepository interface {
	// Get returns the stored checkpoint, or ErrCheckpointNotFound if none
	// has been saved yet.
	Get(ctx context.Context) (*model.Checkpoint, error)

	// Put stores the checkpoint, replacing any previous value.
	Put(ctx context.Context, cp *model.Checkpoint) error
}
