package cli

import (
	"context"
	"errors"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/relaymill/towncrier/pkg/cli/config"
	"github.com/relaymill/towncrier/pkg/domain/interfaces"
	"github.com/relaymill/towncrier/pkg/domain/model"
	"github.com/relaymill/towncrier/pkg/usecase"
	"github.com/relaymill/towncrier/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdSync() *cli.Command {
	var since string
	var concurrency int
	var crmCfg config.CRM
	var webhookCfg config.Webhook
	var notifyCfg config.Notify
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "since",
			Usage:       "Override the stored checkpoint (RFC3339 format)",
			Sources:     cli.EnvVars("TOWNCRIER_SINCE"),
			Destination: &since,
		},
		&cli.IntFlag{
			Name:        "concurrency",
			Usage:       "Number of recordings processed in parallel",
			Value:       8,
			Sources:     cli.EnvVars("TOWNCRIER_CONCURRENCY"),
			Destination: &concurrency,
		},
	}
	flags = append(flags, crmCfg.Flags()...)
	flags = append(flags, webhookCfg.Flags()...)
	flags = append(flags, notifyCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "sync",
		Aliases: []string{"run"},
		Usage:   "Run one sync cycle and exit",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close repository", "error", err.Error())
				}
			}()

			uc, err := buildUseCase(&crmCfg, &webhookCfg, &notifyCfg, concurrency)
			if err != nil {
				return err
			}

			cp, err := loadCheckpoint(ctx, repo, since)
			if err != nil {
				return err
			}

			result, err := uc.Sync(ctx, cp.Position)
			if err != nil {
				return goerr.Wrap(err, "sync cycle failed")
			}

			next := cp.Advanced(result.Checkpoint, time.Now())
			if err := repo.Checkpoint().Put(ctx, &next); err != nil {
				return goerr.Wrap(err, "failed to store checkpoint")
			}

			printSummary(result, &next)
			return nil
		},
	}
}

// buildUseCase assembles the sync pipeline from the shared config sections
func buildUseCase(crmCfg *config.CRM, webhookCfg *config.Webhook, notifyCfg *config.Notify, concurrency int) (*usecase.SyncUseCase, error) {
	crmSvc, err := crmCfg.Configure()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize CRM service")
	}

	webhookSvc, err := webhookCfg.Configure()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize webhook service")
	}

	policy, err := notifyCfg.Configure()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load notification policy")
	}

	return usecase.NewSyncUseCase(crmSvc, webhookSvc, policy,
		usecase.WithBaseURL(crmCfg.BaseURL()),
		usecase.WithConcurrency(concurrency),
	), nil
}

// loadCheckpoint returns the stored checkpoint, an override from --since, or
// the zero checkpoint on a fresh deployment.
func loadCheckpoint(ctx context.Context, repo interfaces.Repository, since string) (*model.Checkpoint, error) {
	if since != "" {
		pos, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to parse since", goerr.V("since", since))
		}
		return &model.Checkpoint{Position: pos}, nil
	}

	cp, err := repo.Checkpoint().Get(ctx)
	if err != nil {
		if errors.Is(err, interfaces.ErrCheckpointNotFound) {
			logging.Default().Info("No stored checkpoint, starting from the beginning")
			return &model.Checkpoint{}, nil
		}
		return nil, goerr.Wrap(err, "failed to load checkpoint")
	}

	return cp, nil
}

func printSummary(result *usecase.SyncResult, cp *model.Checkpoint) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	bold.Println("Sync cycle completed")
	green.Printf("  posted:     %d\n", result.Posted)
	if result.Skipped > 0 {
		yellow.Printf("  skipped:    %d\n", result.Skipped)
	}
	bold.Printf("  fetched:    %d\n", result.Fetched)
	bold.Printf("  candidates: %d\n", result.Candidates)
	bold.Printf("  checkpoint: %s\n", cp.Position.Format(time.RFC3339))
}
