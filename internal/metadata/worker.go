package metadata

import (
    "context"
    "strings"
    "time"

    "github.com/ethereum/go-ethereum/common"
    "go.uber.org/zap"

    "github.com/StabilityNexus/hackhub-explorer/internal/models"
    "github.com/StabilityNexus/hackhub-explorer/internal/store"
)

// Worker fills token_metadata for tokens the explorer has seen in pools.
type Worker struct {
    Store      store.Store
    ERC20      ChainTokens
    ChainID    uint64
    Batch      int
    IdleDelay  time.Duration
    RetryAfter time.Duration
    Timeout    time.Duration
    Log        *zap.Logger
}

func (w *Worker) log() *zap.Logger {
    if w.Log == nil { return zap.NewNop() }
    return w.Log
}

func sleep(ctx context.Context, d time.Duration) {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
    case <-t.C:
    }
}

func (w *Worker) Run(ctx context.Context) error {
    w.log().Info("metadata worker starting", zap.Uint64("chain_id", w.ChainID), zap.Int("batch", w.Batch))
    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        default:
        }

        n, err := w.RunOnce(ctx)
        if err != nil {
            w.log().Error("missing metadata query failed", zap.Error(err))
            sleep(ctx, w.IdleDelay)
            continue
        }
        if n == 0 { sleep(ctx, w.IdleDelay) }
    }
}

// RunOnce processes one batch and returns how many tokens were claimed.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
    tokens, err := w.Store.MissingMetadataTokens(ctx, w.ChainID, w.Batch, w.RetryAfter)
    if err != nil { return 0, err }
    for _, t := range tokens {
        md, ok := w.fetchOne(ctx, t)
        if !ok { continue }
        if err := w.Store.UpsertTokenMetadata(ctx, md); err != nil {
            w.log().Error("upsert token metadata", zap.String("token", t), zap.Error(err))
        }
    }
    return len(tokens), nil
}

func (w *Worker) fetchOne(ctx context.Context, token string) (models.TokenMetadata, bool) {
    token = strings.ToLower(token)
    timeout := w.Timeout
    if timeout <= 0 { timeout = 3 * time.Second }
    cctx, cancel := context.WithTimeout(ctx, timeout)
    defer cancel()

    md, ok, err := readToken(cctx, w.ERC20, w.ChainID, common.HexToAddress(token))
    if !ok {
        // left unclaimed until RetryAfter passes
        w.log().Warn("token metadata read failed", zap.String("token", token), zap.Error(err))
        return models.TokenMetadata{}, false
    }
    if md.Decimals < 0 { w.log().Info("no contract code, recording as unknown", zap.String("token", token)) }
    md.UpdatedAt = time.Now().UTC()
    return md, true
}
