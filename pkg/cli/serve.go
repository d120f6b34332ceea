package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/cli/config"
	httpctrl "github.com/secmon-lab/polyconn/pkg/controller/http"
	"github.com/secmon-lab/polyconn/pkg/utils/logging"
	"github.com/secmon-lab/polyconn/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var providers config.Providers
	var serverCfg config.Server

	var flags []cli.Flag
	flags = append(flags, serverCfg.Flags()...)
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, providers.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Provision connections from the environment and start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()
			logger.Info("Serve configuration",
				"server", serverCfg,
				"config", appCfg,
				"repository", repoCfg,
				"providers", providers,
			)

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			uc, err := newUseCases(repo, &appCfg, &providers)
			if err != nil {
				return err
			}

			// Provisioning failures are logged per provider and never stop startup
			uc.Provisioner.Run(ctx)

			handler := sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle(
				httpctrl.New(uc, httpctrl.WithSafeMode(serverCfg.SafeMode())),
			)
			server := &http.Server{
				Addr:              serverCfg.Addr(),
				Handler:           handler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting HTTP server", "addr", serverCfg.Addr(), "safe_mode", serverCfg.SafeMode())
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logger.Info("Received shutdown signal", "signal", sig)
			case <-ctx.Done():
				logger.Info("Context canceled, shutting down")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown completed")
			return nil
		},
	}
}
