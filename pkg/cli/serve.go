package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/relaymill/towncrier/pkg/cli/config"
	httpctrl "github.com/relaymill/towncrier/pkg/controller/http"
	"github.com/relaymill/towncrier/pkg/service/worker"
	"github.com/relaymill/towncrier/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var interval time.Duration
	var concurrency int
	var crmCfg config.CRM
	var webhookCfg config.Webhook
	var notifyCfg config.Notify
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("TOWNCRIER_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "interval",
			Usage:       "Interval between sync cycles",
			Value:       5 * time.Minute,
			Sources:     cli.EnvVars("TOWNCRIER_INTERVAL"),
			Destination: &interval,
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
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Run sync cycles on an interval with an HTTP control surface",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			uc, err := buildUseCase(&crmCfg, &webhookCfg, &notifyCfg, concurrency)
			if err != nil {
				return err
			}

			syncWorker := worker.NewSyncWorker(repo, uc, interval)
			if err := syncWorker.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start sync worker")
			}

			httpHandler := httpctrl.New(syncWorker, httpctrl.WithRepository(repo))
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr, "interval", interval.String())
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				syncWorker.Stop()
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				// Stop the worker first so no cycle races the shutdown
				syncWorker.Stop()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
