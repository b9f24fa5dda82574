package app

import (
    "context"
    "strings"

    "github.com/pkg/errors"
    "go.uber.org/zap"

    "github.com/StabilityNexus/hackhub-explorer/internal/cache"
    "github.com/StabilityNexus/hackhub-explorer/internal/config"
    "github.com/StabilityNexus/hackhub-explorer/internal/eth"
    "github.com/StabilityNexus/hackhub-explorer/internal/hackathons"
    "github.com/StabilityNexus/hackhub-explorer/internal/metadata"
    "github.com/StabilityNexus/hackhub-explorer/internal/store"
    "github.com/StabilityNexus/hackhub-explorer/internal/view"
)

const defaultCacheSize = 4096

// App holds the shared read-side wiring of every binary.
type App struct {
    Client   *eth.Client
    Reader   *eth.Reader
    Cache    cache.Store
    Repo     *cache.Repository
    Store    store.Store
    Tokens   *metadata.Resolver
    Service  *hackathons.Service
    ChainID  uint64
    Log      *zap.Logger

    closers []func()
}

func New(ctx context.Context, cfg config.Common, log *zap.Logger) (*App, error) {
    if log == nil { log = zap.NewNop() }
    a := &App{Log: log}
    if err := a.init(ctx, cfg); err != nil {
        a.Close()
        return nil, err
    }
    return a, nil
}

func (a *App) init(ctx context.Context, cfg config.Common) error {
    factory, err := eth.ParseAddress(cfg.Factory)
    if err != nil { return errors.Wrap(err, "FACTORY_ADDRESS") }

    if a.Client, err = eth.Dial(ctx, cfg.RPCURL); err != nil { return err }
    a.closers = append(a.closers, a.Client.Close)

    if a.ChainID, err = a.Client.ChainID(ctx); err != nil { return errors.Wrap(err, "chain id") }
    if cfg.ChainID != 0 && cfg.ChainID != a.ChainID {
        return errors.Errorf("CHAIN_ID %d does not match node chain %d", cfg.ChainID, a.ChainID)
    }
    a.Log = a.Log.With(zap.Uint64("chain_id", a.ChainID))

    if cfg.RedisAddr != "" {
        rds := cache.NewRedis(cfg.RedisAddr, cfg.RedisDB)
        a.closers = append(a.closers, func() { _ = rds.Close() })
        if err := rds.Ping(ctx); err != nil { return errors.Wrap(err, "redis") }
        a.Cache = rds
    } else {
        size := cfg.CacheSize
        if size <= 0 { size = defaultCacheSize }
        mem, err := cache.NewMemory(size)
        if err != nil { return err }
        a.Cache = mem
    }
    a.Repo = cache.NewRepository(a.Cache, cfg.CacheTTL, nil)

    if cfg.PgDSN != "" {
        pg, err := store.NewPostgres(ctx, cfg.PgDSN)
        if err != nil { return errors.Wrap(err, "postgres") }
        a.closers = append(a.closers, pg.Close)
        if err := pg.Migrate(ctx); err != nil { return err }
        a.Store = pg
    }

    if a.Tokens, err = metadata.NewResolver(eth.NewERC20Client(a.Client), a.Store, 0, a.Log); err != nil { return err }
    known, err := config.LoadTokens(cfg.TokensFile)
    if err != nil { return err }
    a.Tokens.Seed(known)

    a.Reader = eth.NewReader(a.Client, factory, a.Log)
    a.Service = hackathons.New(a.Reader, a.Repo, view.NewAssembler(a.Tokens, a.Log), factory, a.ChainID, a.Log)
    if cfg.PageSize > 0 { a.Service.PageSize = cfg.PageSize }
    if a.Store != nil { a.Service.Store = a.Store }

    a.Log.Info("wired",
        zap.String("factory", strings.ToLower(factory.Hex())),
        zap.Bool("redis", cfg.RedisAddr != ""),
        zap.Bool("postgres", a.Store != nil),
        zap.Int("known_tokens", len(known)))
    return nil
}

// Close releases resources in reverse order.
func (a *App) Close() {
    for i := len(a.closers) - 1; i >= 0; i-- { a.closers[i]() }
    a.closers = nil
}
