package memory

import (
	"context"
	"sync"

	"github.com/relaymill/towncrier/pkg/domain/interfaces"
	"github.com/relaymill/towncrier/pkg/domain/model"
)

// Memory is an in-memory repository for tests and one-shot runs
type Memory struct {
	checkpoint *checkpointRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		checkpoint: &checkpointRepository{},
	}
}

func (m *Memory) Checkpoint() interfaces.CheckpointRepository {
	return m.checkpoint
}

func (m *Memory) Close() error {
	return nil
}

type checkpointRepository struct {
	mu sync.Mutex
	cp *model.Checkpoint
}

func (r *checkpointRepository) Get(ctx context.Context) (*model.Checkpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cp == nil {
		return nil, interfaces.ErrCheckpointNotFound
	}

	cp := *r.cp
	return &cp, nil
}

func (r *checkpointRepository) Put(ctx context.Context, cp *model.Checkpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *cp
	r.cp = &stored
	return nil
}
