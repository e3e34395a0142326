package localfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/relaymill/towncrier/pkg/domain/interfaces"
	"github.com/relaymill/towncrier/pkg/domain/model"
)

// LocalFile persists the checkpoint as a JSON file on disk. It is meant for
// single-instance deployments without access to a managed store.
type LocalFile struct {
	checkpoint *checkpointRepository
}

var _ interfaces.Repository = &LocalFile{}

func New(path string) (*LocalFile, error) {
	if path == "" {
		return nil, goerr.New("checkpoint file path is empty")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, goerr.Wrap(err, "failed to create checkpoint directory", goerr.V("dir", dir))
		}
	}

	return &LocalFile{
		checkpoint: &checkpointRepository{path: path},
	}, nil
}

func (f *LocalFile) Checkpoint() interfaces.CheckpointRepository {
	return f.checkpoint
}

func (f *LocalFile) Close() error {
	return nil
}

type checkpointRepository struct {
	mu   sync.Mutex
	path string
}

func (r *checkpointRepository) Get(ctx context.Context) (*model.Checkpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, interfaces.ErrCheckpointNotFound
		}
		return nil, goerr.Wrap(err, "failed to read checkpoint file", goerr.V("path", r.path))
	}

	var cp model.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal checkpoint file", goerr.V("path", r.path))
	}

	return &cp, nil
}

func (r *checkpointRepository) Put(ctx context.Context, cp *model.Checkpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal checkpoint")
	}

	// Write-then-rename so a crash mid-write never leaves a torn file
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return goerr.Wrap(err, "failed to write checkpoint file", goerr.V("path", tmp))
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return goerr.Wrap(err, "failed to replace checkpoint file", goerr.V("path", r.path))
	}

	return nil
}
