package main

import (
    "context"
    "log"
    "os/signal"
    "syscall"

    "go.uber.org/zap"

    "github.com/StabilityNexus/hackhub-explorer/internal/app"
    "github.com/StabilityNexus/hackhub-explorer/internal/config"
    "github.com/StabilityNexus/hackhub-explorer/internal/refresher"
)

func main() {
    if err := config.LoadDotenv(); err != nil { log.Fatalf("env: %v", err) }
    cfg := config.LoadWarmer()
    logger, err := cfg.Logger()
    if err != nil { log.Fatalf("logger: %v", err) }
    defer logger.Sync()

    ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer cancel()

    a, err := app.New(ctx, cfg.Common, logger)
    if err != nil { logger.Fatal("wiring", zap.Error(err)) }
    defer a.Close()
    if cfg.RedisAddr == "" {
        a.Log.Warn("REDIS_ADDR is empty; warming a process-local cache nobody else reads")
    }

    r := &refresher.Refresher{
        Service: a.Service, Pages: cfg.Pages, Interval: cfg.Interval,
        ProgressInterval: cfg.ProgressInterval, Log: a.Log.Named("refresher"),
    }
    if err := r.Run(ctx); err != nil && err != context.Canceled {
        a.Log.Error("refresher stopped", zap.Error(err))
    }
}
