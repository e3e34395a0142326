package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/relaymill/towncrier/pkg/domain/interfaces"
	"github.com/relaymill/towncrier/pkg/domain/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const checkpointsCollection = "checkpoints"

// checkpointDoc is the document ID. The repository keeps a single checkpoint
// per collection; multiple deployments isolate themselves with a prefix.
const checkpointDoc = "current"

type Firestore struct {
	client     *firestore.Client
	checkpoint *checkpointRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.checkpoint.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:     client,
		checkpoint: &checkpointRepository{client: client},
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Checkpoint() interfaces.CheckpointRepository {
	return f.checkpoint
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

type checkpointRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func (r *checkpointRepository) collection() string {
	return r.collectionPrefix + checkpointsCollection
}

func (r *checkpointRepository) Get(ctx context.Context) (*model.Checkpoint, error) {
	docRef := r.client.Collection(r.collection()).Doc(checkpointDoc)
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, interfaces.ErrCheckpointNotFound
		}
		return nil, goerr.Wrap(err, "failed to get checkpoint from firestore")
	}

	var cp model.Checkpoint
	if err := doc.DataTo(&cp); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal checkpoint")
	}

	return &cp, nil
}

func (r *checkpointRepository) Put(ctx context.Context, cp *model.Checkpoint) error {
	docRef := r.client.Collection(r.collection()).Doc(checkpointDoc)
	if _, err := docRef.Set(ctx, cp); err != nil {
		return goerr.Wrap(err, "failed to put checkpoint to firestore")
	}

	return nil
}
