package loader

import (
    "context"
    "sync/atomic"
    "time"

    "go.uber.org/zap"
    "golang.org/x/sync/singleflight"

    "github.com/StabilityNexus/hackhub-explorer/internal/cache"
    "github.com/StabilityNexus/hackhub-explorer/internal/models"
)

// Source is the cache side of a loader.
type Source[T any] interface {
    Lookup(ctx context.Context, key cache.Key) (models.Entry[T], bool, error)
    Save(ctx context.Context, key cache.Key, data T) error
}

// Fetcher performs the authoritative read.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Emit receives state transitions. Returning false stops further emissions
// for that invocation.
type Emit[T any] func(State[T]) bool

type Options struct {
    // Force skips the cache read and reports Syncing instead of Loading.
    Force bool
}

// State is what a caller renders.
type State[T any] struct {
    Data       T
    HasData    bool
    Loading    bool
    Syncing    bool
    FromCache  bool
    CachedAt   time.Time
    Err        error
    Generation uint64
}

type box[T any] struct{ v T }

// Loader serves cached data first and then always reconciles with the
// authoritative source. Concurrent loads of one key share a single fetch.
type Loader[T any] struct {
    Source  Source[T]
    Log     *zap.Logger
    Timeout time.Duration

    group   singleflight.Group
    fetches atomic.Int64
}

func New[T any](src Source[T], log *zap.Logger) *Loader[T] {
    if log == nil { log = zap.NewNop() }
    return &Loader[T]{Source: src, Log: log.Named("loader")}
}

// Fetches is the number of authoritative fetches started so far.
func (l *Loader[T]) Fetches() int64 { return l.fetches.Load() }

// Cached returns a valid cache entry for key, if any. Cache failures are
// reported as misses.
func (l *Loader[T]) Cached(ctx context.Context, key cache.Key) (models.Entry[T], bool) {
    if l.Source == nil { return models.Entry[T]{}, false }
    e, ok, err := l.Source.Lookup(ctx, key)
    if err != nil {
        l.Log.Debug("cache read failed", zap.String("key", key.String()), zap.Error(err))
        return models.Entry[T]{}, false
    }
    return e, ok
}

// Load runs one cache-then-reconcile cycle for key and returns the final
// state. On fetch failure the provisional cached data, if any, is kept
// alongside the error.
func (l *Loader[T]) Load(ctx context.Context, key cache.Key, fetch Fetcher[T], opts Options, emit Emit[T]) State[T] {
    var st State[T]
    alive := true
    send := func() {
        if !alive || emit == nil { return }
        if ctx.Err() != nil {
            alive = false
            return
        }
        alive = emit(st)
    }

    if opts.Force {
        st.Syncing = true
    } else {
        st.Loading = true
        if e, ok := l.Cached(ctx, key); ok {
            st.Data, st.HasData, st.FromCache = e.Data, true, true
            st.CachedAt = e.WrittenAt()
            st.Loading = false
        }
    }
    send()

    ch := l.group.DoChan(key.String(), func() (interface{}, error) {
        return l.fetch(ctx, key, fetch)
    })
    select {
    case <-ctx.Done():
        st.Loading, st.Syncing = false, false
        st.Err = ctx.Err()
        return st
    case res := <-ch:
        st.Loading, st.Syncing = false, false
        if res.Err != nil {
            st.Err = res.Err
        } else {
            st.Data = res.Val.(box[T]).v
            st.HasData, st.FromCache, st.CachedAt = true, false, time.Time{}
        }
    }
    send()
    return st
}

func (l *Loader[T]) fetch(ctx context.Context, key cache.Key, fetch Fetcher[T]) (interface{}, error) {
    // the shared fetch outlives any single caller
    fctx := context.WithoutCancel(ctx)
    if l.Timeout > 0 {
        var cancel context.CancelFunc
        fctx, cancel = context.WithTimeout(fctx, l.Timeout)
        defer cancel()
    }
    l.fetches.Add(1)
    v, err := fetch(fctx)
    if err != nil {
        l.Log.Warn("fetch failed", zap.String("key", key.String()), zap.Error(err))
        return nil, err
    }
    if l.Source != nil {
        if err := l.Source.Save(fctx, key, v); err != nil {
            l.Log.Debug("cache write failed", zap.String("key", key.String()), zap.Error(err))
        }
    }
    return box[T]{v: v}, nil
}

// Refresh is Load with Force set.
func (l *Loader[T]) Refresh(ctx context.Context, key cache.Key, fetch Fetcher[T], emit Emit[T]) State[T] {
    return l.Load(ctx, key, fetch, Options{Force: true}, emit)
}
