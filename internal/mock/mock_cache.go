package mock

import (
    "context"
    "sync"
    "time"

    "github.com/StabilityNexus/hackhub-explorer/internal/cache"
)

// MockCache is a map-backed cache.Store with failure injection. It ignores
// TTLs; validity is decided by the typed layer.
type MockCache struct {
    mu     sync.Mutex
    Items  map[string][]byte
    Gets   int
    Puts   int
    GetErr error
    PutErr error
}

func NewMockCache() *MockCache { return &MockCache{Items: map[string][]byte{}} }

func (m *MockCache) Get(ctx context.Context, key cache.Key) ([]byte, bool, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.Gets++
    if m.GetErr != nil { return nil, false, m.GetErr }
    v, ok := m.Items[key.String()]
    return v, ok, nil
}

func (m *MockCache) Put(ctx context.Context, key cache.Key, raw []byte, ttl time.Duration) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.Puts++
    if m.PutErr != nil { return m.PutErr }
    m.Items[key.String()] = append([]byte(nil), raw...)
    return nil
}

func (m *MockCache) Delete(ctx context.Context, keys ...cache.Key) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    for _, k := range keys { delete(m.Items, k.String()) }
    return nil
}

func (m *MockCache) Has(key cache.Key) bool {
    m.mu.Lock()
    defer m.mu.Unlock()
    _, ok := m.Items[key.String()]
    return ok
}
