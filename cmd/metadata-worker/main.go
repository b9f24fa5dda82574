package main

import (
    "context"
    "log"
    "os/signal"
    "syscall"

    "go.uber.org/zap"

    "github.com/StabilityNexus/hackhub-explorer/internal/config"
    "github.com/StabilityNexus/hackhub-explorer/internal/eth"
    "github.com/StabilityNexus/hackhub-explorer/internal/metadata"
    "github.com/StabilityNexus/hackhub-explorer/internal/store"
)

func main() {
    if err := config.LoadDotenv(); err != nil { log.Fatalf("env: %v", err) }
    cfg := config.LoadWorker()
    logger, err := cfg.Logger()
    if err != nil { log.Fatalf("logger: %v", err) }
    defer logger.Sync()

    ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer cancel()

    if cfg.PgDSN == "" { logger.Fatal("PG_DSN is required") }
    pg, err := store.NewPostgres(ctx, cfg.PgDSN)
    if err != nil { logger.Fatal("postgres", zap.Error(err)) }
    defer pg.Close()
    if err := pg.Migrate(ctx); err != nil { logger.Fatal("migrate", zap.Error(err)) }

    c, err := eth.Dial(ctx, cfg.RPCURL)
    if err != nil { logger.Fatal("rpc", zap.Error(err)) }
    defer c.Close()
    chainID := cfg.ChainID
    if chainID == 0 {
        if chainID, err = c.ChainID(ctx); err != nil { logger.Fatal("chain id", zap.Error(err)) }
    }

    w := &metadata.Worker{
        Store: pg, ERC20: eth.NewERC20Client(c), ChainID: chainID,
        Batch: cfg.Batch, IdleDelay: cfg.IdleDelay, RetryAfter: cfg.RetryInterval,
        Log: logger.Named("metadata"),
    }
    if err := w.Run(ctx); err != nil && err != context.Canceled {
        logger.Error("metadata worker stopped", zap.Error(err))
    }
}
