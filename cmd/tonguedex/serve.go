// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonguedex Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tonguedex/tonguedex/internal/auth"
	authpg "github.com/tonguedex/tonguedex/internal/auth/postgres"
	"github.com/tonguedex/tonguedex/internal/catalog"
	catalogpg "github.com/tonguedex/tonguedex/internal/catalog/postgres"
	"github.com/tonguedex/tonguedex/internal/config"
	"github.com/tonguedex/tonguedex/internal/logging"
	"github.com/tonguedex/tonguedex/internal/observability"
	"github.com/tonguedex/tonguedex/internal/session"
	sessionpg "github.com/tonguedex/tonguedex/internal/session/postgres"
	"github.com/tonguedex/tonguedex/internal/store"
	"github.com/tonguedex/tonguedex/internal/xdg"
)

// Core bundles the wired core services the web layer consumes.
type Core struct {
	Auth     *auth.Service
	Sessions *session.Manager
	Catalog  catalog.Repository
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the tonguedex core process",
		Long: `Start the core process: the authentication backend, session
manager with its expiry sweeper, the catalog search engine, and the
observability endpoint. The web rendering layer runs in front of it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := configFile
			if path == "" {
				path = xdg.DefaultConfigFile()
			}
			cfg, err := config.Load(path, cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, cmd)
		},
	}

	config.RegisterFlags(cmd.Flags())
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, cmd *cobra.Command) error {
	slog.SetDefault(logging.New("tonguedex", version, cfg.Log.Format, nil))

	slog.Info("starting core process", "metrics_addr", cfg.Metrics.Addr)

	pool, err := store.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()
	slog.Info("connected to database")

	core, err := buildCore(pool, cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sweeper := session.NewSweeper(core.Sessions, cfg.Session.SweepInterval)
	sweeper.Start(ctx)
	defer sweeper.Stop()
	slog.Info("session sweeper started", "interval", cfg.Session.SweepInterval)

	var obsServer *observability.Server
	if cfg.Metrics.Addr != "" {
		obsServer = observability.NewServer(cfg.Metrics.Addr, func() bool {
			pingCtx, pingCancel := context.WithTimeout(ctx, time.Second)
			defer pingCancel()
			return pool.Ping(pingCtx) == nil
		})
		obsErrChan, startErr := obsServer.Start()
		if startErr != nil {
			return startErr
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("Core process started")
	slog.Info("core process ready")

	select {
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
		slog.Info("context cancelled, shutting down")
	}

	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			slog.Warn("error stopping observability server", "error", err)
		}
	}

	slog.Info("shutdown complete")
	return nil
}

// buildCore wires the repositories and services over one pool.
func buildCore(db store.Querier, cfg *config.Config) (*Core, error) {
	authService, err := auth.NewService(authpg.NewIdentityRepository(db), auth.NewArgon2idHasher())
	if err != nil {
		return nil, err
	}

	sessionManager, err := session.NewManager(
		sessionpg.NewSessionRepository(db),
		session.NewMemoryCache(),
		session.ManagerConfig{
			SlidingTTL:  cfg.Session.SlidingTTL,
			RememberTTL: cfg.Session.RememberTTL,
		},
	)
	if err != nil {
		return nil, err
	}

	return &Core{
		Auth:     authService,
		Sessions: sessionManager,
		Catalog:  catalogpg.NewTongueRepository(db),
	}, nil
}

// monitorServerErrors cancels the context when a server reports an
// error, so one failing component shuts the whole process down cleanly.
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
