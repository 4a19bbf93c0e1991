// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/taskflow/taskflow/internal/auth"
	authpg "github.com/taskflow/taskflow/internal/auth/postgres"
	"github.com/taskflow/taskflow/internal/config"
	"github.com/taskflow/taskflow/internal/httpapi"
	"github.com/taskflow/taskflow/internal/logging"
	"github.com/taskflow/taskflow/internal/observability"
	"github.com/taskflow/taskflow/internal/org"
	orgpg "github.com/taskflow/taskflow/internal/org/postgres"
	"github.com/taskflow/taskflow/internal/store"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the TaskFlow API server",
		Long: `Start the REST API server together with the observability
endpoints (Prometheus metrics and health probes).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	// Flag names match config keys so they override the config file directly.
	cmd.Flags().String("database_url", "", "PostgreSQL connection URL")
	cmd.Flags().String("listen_addr", config.DefaultListenAddr, "API listen address")
	cmd.Flags().String("metrics_addr", config.DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("log_format", config.DefaultLogFormat, "log format (json or text)")
	cmd.Flags().String("auth.secret_key", "", "JWT signing secret")
	cmd.Flags().String("auth.token_algorithm", config.DefaultTokenAlgorithm, "JWT signing algorithm (HS256, HS384, HS512)")
	cmd.Flags().Int("auth.token_ttl_minutes", config.DefaultTokenTTLMinutes, "token lifetime in minutes")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logging.SetDefault("taskflow", version, cfg.LogFormat)
	logger := slog.Default()

	logger.Info("starting taskflow",
		"listen_addr", cfg.ListenAddr,
		"metrics_addr", cfg.MetricsAddr,
	)

	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	logger.Info("connected to database")

	accounts := authpg.NewAccountRepository(pool)
	orgRepo := orgpg.NewOrganizationRepository(pool)
	memberRepo := orgpg.NewMembershipRepository(pool)

	directory, err := auth.NewDirectory(accounts, auth.NewArgon2idHasher())
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenService(auth.TokenConfig{
		SecretKey: cfg.Auth.SecretKey,
		Algorithm: cfg.Auth.TokenAlgorithm,
		TTL:       cfg.TokenTTL(),
	})
	if err != nil {
		return err
	}
	gateway, err := auth.NewGateway(directory, tokens)
	if err != nil {
		return err
	}
	registry, err := org.NewRegistry(orgRepo, memberRepo, accounts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Observability server first so the API can record metrics.
	var metrics *observability.Metrics
	var obsServer *observability.Server
	if cfg.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.MetricsAddr, func() bool {
			pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
			defer pingCancel()
			return pool.Ping(pingCtx) == nil
		})
		obsErrCh, err := obsServer.Start()
		if err != nil {
			return oops.With("operation", "start observability server").Wrap(err)
		}
		metrics = obsServer.Metrics()
		go monitorServerErrors(ctx, cancel, obsErrCh, "observability")
	}

	apiServer, err := httpapi.NewServer(cfg.ListenAddr, gateway, directory, registry, logger, metrics)
	if err != nil {
		return err
	}
	apiErrCh, err := apiServer.Start()
	if err != nil {
		stopServers(nil, obsServer)
		return oops.With("operation", "start api server").Wrap(err)
	}
	go monitorServerErrors(ctx, cancel, apiErrCh, "api")

	logger.Info("taskflow ready", "addr", apiServer.Addr())

	// Wait for a shutdown signal or a server failure.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	stopServers(apiServer, obsServer)
	logger.Info("shutdown complete")
	return nil
}

func stopServers(apiServer *httpapi.Server, obsServer *observability.Server) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if apiServer != nil {
		if err := apiServer.Stop(shutdownCtx); err != nil {
			slog.Warn("error stopping api server", "error", err)
		}
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			slog.Warn("error stopping observability server", "error", err)
		}
	}
}

// monitorServerErrors cancels the context when a server reports a fatal
// error, so one failing listener brings the process down cleanly.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
