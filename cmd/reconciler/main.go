package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"bloodlink/internal/infra"
	"bloodlink/internal/reconcile"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("reconciler: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)

	worker := reconcile.NewWorker(runner, logger, cfg.ReconcileInterval)
	logger.Info().Dur("interval", cfg.ReconcileInterval).Msg("reconciler: started")
	worker.Run(ctx)
	logger.Info().Msg("reconciler: stopped")
}
