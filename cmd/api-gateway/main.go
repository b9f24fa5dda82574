package main

import (
    "context"
    "log"
    "net/http"
    "os/signal"
    "syscall"
    "time"

    "go.uber.org/zap"

    "github.com/StabilityNexus/hackhub-explorer/internal/api"
    "github.com/StabilityNexus/hackhub-explorer/internal/app"
    "github.com/StabilityNexus/hackhub-explorer/internal/config"
)

func main() {
    if err := config.LoadDotenv(); err != nil { log.Fatalf("env: %v", err) }
    cfg := config.LoadAPI()
    logger, err := cfg.Logger()
    if err != nil { log.Fatalf("logger: %v", err) }
    defer logger.Sync()

    ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer cancel()

    a, err := app.New(ctx, cfg.Common, logger)
    if err != nil { logger.Fatal("wiring", zap.Error(err)) }
    defer a.Close()

    h := &api.Handler{Pages: a.Service, Tokens: a.Tokens, ChainID: a.ChainID, Log: a.Log.Named("api")}
    srv := &http.Server{Addr: cfg.Addr, Handler: h.Handler(), ReadHeaderTimeout: 10 * time.Second}

    go func() {
        <-ctx.Done()
        sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
        defer scancel()
        _ = srv.Shutdown(sctx)
    }()

    a.Log.Info("api listening", zap.String("addr", cfg.Addr))
    if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
        a.Log.Fatal("server error", zap.Error(err))
    }
    // let detached refreshes land in the cache
    a.Service.Wait()
}
