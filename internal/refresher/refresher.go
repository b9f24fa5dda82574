package refresher

import (
    "context"
    "time"

    "go.uber.org/zap"
)

// DefaultInterval is used when Interval is not positive.
const DefaultInterval = time.Minute

// Warmer force-refreshes the first pages of the listing.
type Warmer interface {
    Warm(ctx context.Context, pages int) error
}

// Refresher keeps the listing cache warm so cold page loads hit it.
type Refresher struct {
    Service  Warmer
    Pages    int
    Interval time.Duration
    // ProgressInterval controls how often a summary line is logged.
    ProgressInterval time.Duration
    Log              *zap.Logger

    runs, failures int
}

func (r *Refresher) log() *zap.Logger {
    if r.Log == nil { return zap.NewNop() }
    return r.Log
}

func (r *Refresher) Run(ctx context.Context) error {
    interval := r.Interval
    if interval <= 0 { interval = DefaultInterval }
    r.log().Info("refresher starting", zap.Int("pages", r.Pages), zap.Duration("interval", interval))
    ticker := time.NewTicker(interval)
    defer ticker.Stop()
    progress := r.ProgressInterval
    if progress <= 0 { progress = time.Minute }
    progTicker := time.NewTicker(progress)
    defer progTicker.Stop()

    r.once(ctx)
    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case <-ticker.C:
            r.once(ctx)
        case <-progTicker.C:
            r.log().Info("progress", zap.Int("runs", r.runs), zap.Int("failures", r.failures))
        }
    }
}

func (r *Refresher) once(ctx context.Context) {
    t0 := time.Now()
    r.runs++
    if err := r.Service.Warm(ctx, r.Pages); err != nil {
        if ctx.Err() != nil { return }
        r.failures++
        r.log().Error("warm failed", zap.Error(err))
        return
    }
    r.log().Debug("warm done", zap.Duration("took", time.Since(t0)))
}
