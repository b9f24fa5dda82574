package loader

import (
    "context"
    "sync"

    "github.com/pkg/errors"

    "github.com/StabilityNexus/hackhub-explorer/internal/cache"
)

var ErrNothingLoaded = errors.New("nothing loaded yet")

// Resource is the state of one view fed by a Loader. Each Load starts a new
// generation; emissions from older generations are dropped, so a slow
// response for a previous key never overwrites a newer one.
type Resource[T any] struct {
    loader *Loader[T]
    // OnChange is called with every accepted state, under the resource lock.
    OnChange func(State[T])

    mu    sync.Mutex
    gen   uint64
    state State[T]
    key   cache.Key
    fetch Fetcher[T]
}

func NewResource[T any](l *Loader[T], onChange func(State[T])) *Resource[T] {
    return &Resource[T]{loader: l, OnChange: onChange}
}

func (r *Resource[T]) Load(ctx context.Context, key cache.Key, fetch Fetcher[T], opts Options) State[T] {
    r.mu.Lock()
    r.gen++
    gen := r.gen
    r.key, r.fetch = key, fetch
    r.mu.Unlock()

    st := r.loader.Load(ctx, key, fetch, opts, func(s State[T]) bool {
        return r.apply(gen, s)
    })
    st.Generation = gen
    return st
}

func (r *Resource[T]) apply(gen uint64, s State[T]) bool {
    r.mu.Lock()
    defer r.mu.Unlock()
    if gen != r.gen { return false }
    s.Generation = gen
    r.state = s
    if r.OnChange != nil { r.OnChange(s) }
    return true
}

// Refresh re-runs the last load with Force.
func (r *Resource[T]) Refresh(ctx context.Context) (State[T], error) {
    r.mu.Lock()
    key, fetch := r.key, r.fetch
    r.mu.Unlock()
    if fetch == nil { return State[T]{}, ErrNothingLoaded }
    return r.Load(ctx, key, fetch, Options{Force: true}), nil
}

func (r *Resource[T]) State() State[T] {
    r.mu.Lock()
    defer r.mu.Unlock()
    return r.state
}
