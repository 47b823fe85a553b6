package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kapu/group-notice-bot/internal/app"
	"github.com/kapu/group-notice-bot/internal/config"
	"github.com/kapu/group-notice-bot/internal/constants"
	"github.com/kapu/group-notice-bot/internal/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Group notice bot starting...",
		zap.String("storage", cfg.Storage.Backend),
		zap.String("log_level", cfg.Logging.Level),
	)

	buildCtx, buildCancel := context.WithTimeout(context.Background(), 30*time.Second)
	container, err := app.Build(buildCtx, cfg, logger)
	buildCancel()
	if err != nil {
		logger.Error("Failed to assemble application services", zap.Error(err))
		os.Exit(1)
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return container.Bot.Start(gctx)
	})

	g.Go(func() error {
		logger.Info("HTTP server listening", zap.String("addr", container.HTTP.Addr))
		if err := container.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ServerConfig.ShutdownTimeout)
		defer cancel()

		if err := container.Bot.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during bot shutdown", zap.Error(err))
		}
		return container.HTTP.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Bot stopped with error", zap.Error(err))
		container.Close()
		os.Exit(1)
	}

	logger.Info("Shutdown complete")
}
