package main

import (
	"context"

	"dine-server/config"
	"dine-server/di"
	"dine-server/logger"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	logger.Initialize(cfg.Env)
	defer logger.Log.Sync()

	container := di.NewContainer(cfg)
	defer container.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Log.Info("starting periodic session reaper job",
		zap.Duration("interval", cfg.SessionReaperSchedule),
		zap.Duration("idle_ttl", cfg.SessionIdleTTL))
	container.SessionReaperService.StartPeriodicJob(ctx, cfg.SessionReaperSchedule)

	container.DineHttpServer.Start()
}
