package loader

import (
    "context"
    "reflect"
    "sync"
    "testing"
    "time"

    "github.com/pkg/errors"

    "github.com/StabilityNexus/hackhub-explorer/internal/cache"
    "github.com/StabilityNexus/hackhub-explorer/internal/models"
)

type recording struct {
    cache.Typed[[]string]
    saved   chan cache.Key
    readErr error
}

func (r *recording) Lookup(ctx context.Context, key cache.Key) (models.Entry[[]string], bool, error) {
    if r.readErr != nil { return models.Entry[[]string]{}, false, r.readErr }
    return r.Typed.Lookup(ctx, key)
}

func (r *recording) Save(ctx context.Context, key cache.Key, data []string) error {
    err := r.Typed.Save(ctx, key, data)
    select {
    case r.saved <- key:
    default:
    }
    return err
}

func newSource(t *testing.T) *recording {
    t.Helper()
    mem, err := cache.NewMemory(16)
    if err != nil { t.Fatal(err) }
    return &recording{Typed: cache.Typed[[]string]{Store: mem, TTL: time.Minute}, saved: make(chan cache.Key, 8)}
}

type states struct {
    mu   sync.Mutex
    list []State[[]string]
    // first is closed on the first emission
    first chan struct{}
}

func newStates() *states { return &states{first: make(chan struct{})} }

func (s *states) emit(st State[[]string]) bool {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.list = append(s.list, st)
    if len(s.list) == 1 { close(s.first) }
    return true
}

func (s *states) all() []State[[]string] {
    s.mu.Lock()
    defer s.mu.Unlock()
    return append([]State[[]string](nil), s.list...)
}

var key = cache.ListingKey("0xfa", 534351, 1)

func gated(data []string, err error) (Fetcher[[]string], chan struct{}) {
    release := make(chan struct{})
    return func(ctx context.Context) ([]string, error) {
        <-release
        return data, err
    }, release
}

func TestCachedRenderBeforeChainSettles(t *testing.T) {
    src := newSource(t)
    if err := src.Typed.Save(context.Background(), key, []string{"cached"}); err != nil { t.Fatal(err) }
    l := New[[]string](src, nil)
    fetch, release := gated([]string{"fresh"}, nil)
    rec := newStates()

    done := make(chan State[[]string])
    go func() { done <- l.Load(context.Background(), key, fetch, Options{}, rec.emit) }()

    <-rec.first
    first := rec.all()[0]
    if !first.FromCache || first.Loading || first.Data[0] != "cached" {
        t.Fatalf("provisional state: %+v", first)
    }
    close(release)
    final := <-done
    if final.FromCache || final.Err != nil || final.Data[0] != "fresh" {
        t.Fatalf("final state: %+v", final)
    }
    if got := rec.all(); len(got) != 2 || got[1].Data[0] != "fresh" {
        t.Fatalf("emissions: %+v", got)
    }
    e, ok, _ := src.Lookup(context.Background(), key)
    if !ok || e.Data[0] != "fresh" {
        t.Fatalf("cache not overwritten: %+v", e)
    }
}

func TestMissShowsLoading(t *testing.T) {
    l := New[[]string](newSource(t), nil)
    rec := newStates()
    st := l.Load(context.Background(), key, func(context.Context) ([]string, error) { return []string{"a"}, nil }, Options{}, rec.emit)
    got := rec.all()
    if !got[0].Loading || got[0].HasData {
        t.Fatalf("first: %+v", got[0])
    }
    if st.Loading || !st.HasData || st.Data[0] != "a" {
        t.Fatalf("final: %+v", st)
    }
}

func TestForceSkipsCache(t *testing.T) {
    src := newSource(t)
    _ = src.Typed.Save(context.Background(), key, []string{"cached"})
    l := New[[]string](src, nil)
    rec := newStates()
    l.Refresh(context.Background(), key, func(context.Context) ([]string, error) { return []string{"fresh"}, nil }, rec.emit)
    first := rec.all()[0]
    if !first.Syncing || first.HasData || first.FromCache {
        t.Fatalf("forced first emission: %+v", first)
    }
}

func TestStaleWhileError(t *testing.T) {
    src := newSource(t)
    _ = src.Typed.Save(context.Background(), key, []string{"cached"})
    l := New[[]string](src, nil)
    boom := errors.New("rpc down")
    st := l.Load(context.Background(), key, func(context.Context) ([]string, error) { return nil, boom }, Options{}, nil)
    if !errors.Is(st.Err, boom) { t.Fatalf("err = %v", st.Err) }
    if !st.HasData || !st.FromCache || st.Data[0] != "cached" {
        t.Fatalf("stale data dropped: %+v", st)
    }
    e, ok, _ := src.Lookup(context.Background(), key)
    if !ok || e.Data[0] != "cached" {
        t.Fatalf("failed fetch must not touch the cache")
    }
}

func TestCacheReadErrorIsAMiss(t *testing.T) {
    src := newSource(t)
    src.readErr = errors.New("redis gone")
    l := New[[]string](src, nil)
    rec := newStates()
    st := l.Load(context.Background(), key, func(context.Context) ([]string, error) { return []string{"x"}, nil }, Options{}, rec.emit)
    if st.Err != nil || st.Data[0] != "x" { t.Fatalf("state: %+v", st) }
    if first := rec.all()[0]; !first.Loading { t.Fatalf("first: %+v", first) }
}

func TestConcurrentLoadsShareOneFetch(t *testing.T) {
    l := New[[]string](newSource(t), nil)
    fetch, release := gated([]string{"one"}, nil)
    a, b := newStates(), newStates()

    var wg sync.WaitGroup
    results := make([]State[[]string], 2)
    for i, rec := range []*states{a, b} {
        wg.Add(1)
        go func(i int, rec *states) {
            defer wg.Done()
            results[i] = l.Load(context.Background(), key, fetch, Options{}, rec.emit)
        }(i, rec)
    }
    <-a.first
    <-b.first
    time.Sleep(50 * time.Millisecond)
    close(release)
    wg.Wait()

    if n := l.Fetches(); n != 1 { t.Fatalf("fetches = %d", n) }
    for _, r := range results {
        if r.Data[0] != "one" { t.Fatalf("result: %+v", r) }
    }
}

func TestForcedRefreshIsIdempotent(t *testing.T) {
    src := newSource(t)
    l := New[[]string](src, nil)
    fetch := func(context.Context) ([]string, error) { return []string{"a", "b"}, nil }

    l.Refresh(context.Background(), key, fetch, nil)
    first, _, _ := src.Lookup(context.Background(), key)
    l.Refresh(context.Background(), key, fetch, nil)
    second, _, _ := src.Lookup(context.Background(), key)
    if !reflect.DeepEqual(first.Data, second.Data) {
        t.Fatalf("%v != %v", first.Data, second.Data)
    }
    if l.Fetches() != 2 { t.Fatalf("fetches = %d", l.Fetches()) }
}

func TestCancelledCallerStillFillsCache(t *testing.T) {
    src := newSource(t)
    l := New[[]string](src, nil)
    fetch, release := gated([]string{"late"}, nil)
    ctx, cancel := context.WithCancel(context.Background())
    rec := newStates()

    done := make(chan State[[]string])
    go func() { done <- l.Load(ctx, key, fetch, Options{}, rec.emit) }()
    <-rec.first
    cancel()
    st := <-done
    if !errors.Is(st.Err, context.Canceled) { t.Fatalf("err = %v", st.Err) }

    close(release)
    select {
    case <-src.saved:
    case <-time.After(2 * time.Second):
        t.Fatal("cache never written")
    }
    if n := len(rec.all()); n != 1 { t.Fatalf("cancelled caller got %d emissions", n) }
}

func TestResourceDropsOlderGenerations(t *testing.T) {
    l := New[[]string](newSource(t), nil)
    var seen []string
    r := NewResource(l, func(s State[[]string]) {
        if s.HasData { seen = append(seen, s.Data[0]) }
    })
    slow, release := gated([]string{"page1"}, nil)

    started := make(chan struct{})
    done := make(chan State[[]string])
    go func() {
        close(started)
        done <- r.Load(context.Background(), cache.ListingKey("0xfa", 534351, 1), slow, Options{})
    }()
    <-started
    // wait until the first load registered its generation
    for r.State().Generation == 0 { time.Sleep(time.Millisecond) }

    fast := func(context.Context) ([]string, error) { return []string{"page2"}, nil }
    st2 := r.Load(context.Background(), cache.ListingKey("0xfa", 534351, 2), fast, Options{})
    close(release)
    st1 := <-done

    if st1.Generation != 1 || st2.Generation != 2 {
        t.Fatalf("generations %d %d", st1.Generation, st2.Generation)
    }
    if cur := r.State(); cur.Data[0] != "page2" || cur.Generation != 2 {
        t.Fatalf("current state: %+v", cur)
    }
    if !reflect.DeepEqual(seen, []string{"page2"}) {
        t.Fatalf("observer saw %v", seen)
    }
}

func TestResourceRefresh(t *testing.T) {
    r := NewResource(New[[]string](newSource(t), nil), nil)
    if _, err := r.Refresh(context.Background()); !errors.Is(err, ErrNothingLoaded) {
        t.Fatalf("err = %v", err)
    }
    calls := 0
    fetch := func(context.Context) ([]string, error) { calls++; return []string{"v"}, nil }
    r.Load(context.Background(), key, fetch, Options{})
    st, err := r.Refresh(context.Background())
    if err != nil || calls != 2 || st.Data[0] != "v" || st.Generation != 2 {
        t.Fatalf("refresh: %+v err=%v calls=%d", st, err, calls)
    }
}
