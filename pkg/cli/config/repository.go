package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/relaymill/towncrier/pkg/domain/interfaces"
	"github.com/relaymill/towncrier/pkg/repository/firestore"
	"github.com/relaymill/towncrier/pkg/repository/localfile"
	"github.com/relaymill/towncrier/pkg/repository/memory"
	"github.com/relaymill/towncrier/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository holds CLI flags for checkpoint storage configuration
type Repository struct {
	backend    string
	projectID  string
	databaseID string
	filePath   string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Checkpoint storage backend (firestore, localfile, or memory)",
			Category:    "Repository",
			Value:       "localfile",
			Sources:     cli.EnvVars("TOWNCRIER_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("TOWNCRIER_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("TOWNCRIER_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "checkpoint-file",
			Usage:       "Checkpoint file path (localfile backend)",
			Category:    "Repository",
			Value:       "towncrier-checkpoint.json",
			Sources:     cli.EnvVars("TOWNCRIER_CHECKPOINT_FILE"),
			Destination: &r.filePath,
		},
	}
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case "firestore":
		if r.projectID == "" {
			return nil, goerr.New("firestore-project-id is required when using firestore backend")
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case "localfile":
		repo, err := localfile.New(r.filePath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize localfile repository")
		}
		logging.Default().Info("Using local file repository", "path", r.filePath)
		return repo, nil

	case "memory":
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.New("invalid repository backend", goerr.V("backend", r.backend))
	}
}
