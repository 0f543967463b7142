package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/graaaaa/teamstats/internal/api"
	"github.com/graaaaa/teamstats/internal/app"
	"github.com/graaaaa/teamstats/internal/config"
	"github.com/graaaaa/teamstats/internal/store"
	"github.com/graaaaa/teamstats/internal/version"
)

// NewServeCommand creates the serve command.
func NewServeCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cmd, root)
		},
	}
}

func runServe(ctx context.Context, cmd *cobra.Command, root *RootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// 1. Load configuration (env > file > defaults)
	cfg, err := config.Load(root.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Open the connection pool, waiting for the database if needed
	retry := store.DefaultRetryConfig()
	retry.Attempts = cfg.Database.ConnectAttempts
	db, err := store.Connect(sigCtx, store.Options{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.ConnString(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		Logger:          logger,
	}, retry)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// 3. Build dependencies
	health := app.HealthService{Version: version.String(), DB: db}
	teams := app.NewTeamsService(app.StorePool{Store: db}, app.Tables{
		Teams:   cfg.Tables.Teams,
		Records: cfg.Tables.Records,
		Stats:   cfg.Tables.Stats,
	},
		app.WithStrictColumns(cfg.StrictColumns),
		app.WithLogger(logger.With("component", "teams")),
	)

	serverOpts := []api.ServerOption{
		api.WithTeamsUsecase(teams),
		api.WithLogger(logger),
	}
	if len(cfg.CORSOrigins) > 0 {
		serverOpts = append(serverOpts, api.WithCORS(api.CORSConfig{AllowedOrigins: cfg.CORSOrigins}))
	}
	if cfg.RateLimit > 0 {
		rl := api.NewRateLimiter(api.RateLimiterConfig{
			Rate:        cfg.RateLimit,
			Burst:       cfg.RateBurst,
			ExemptPaths: []string{"/health"},
		})
		defer rl.Stop()
		serverOpts = append(serverOpts, api.WithRateLimiter(rl))
	}

	server := api.NewServer(cfg.Addr(), health, serverOpts...)

	// 4. Serve until a signal or a listener error
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			"version", version.String(),
			"addr", server.Addr(),
			"driver", cfg.Database.Driver,
		)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-sigCtx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
	return nil
}
