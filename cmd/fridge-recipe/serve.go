package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fridge-recipe/internal/api"
	"fridge-recipe/internal/pkg/common"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	shutdownTimeout        = 5 * time.Second
	sessionCleanupInterval = time.Minute
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			defer common.Sync()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			a.suggestions.StartCleanup(ctx, sessionCleanupInterval)

			router := api.SetupRouter(cfg, api.Dependencies{
				DB:          a.db,
				Ingredients: a.ingredients,
				Dinners:     a.dinners,
				Suggestions: a.suggestions,
				Queue:       a.queue,
				Memory:      a.memory,
				Metrics:     a.metrics,
			})

			srv := &http.Server{
				Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
				Handler:      router,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
				IdleTimeout:  cfg.Server.IdleTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				common.LogInfo("啟動應用",
					zap.String("addr", srv.Addr),
					zap.String("version", cfg.App.Version),
					zap.String("env", cfg.App.Env),
					zap.Bool("debug", cfg.App.Debug),
				)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					common.LogError("Failed to start server", zap.Error(err))
					return err
				}
			case <-ctx.Done():
			}

			common.LogInfo("Shutting down server...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				common.LogError("Server forced to shutdown", zap.Error(err))
				return err
			}

			common.LogInfo("Server exited")
			return nil
		},
	}
}
