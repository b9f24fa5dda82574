package mock

import (
    "context"
    "sort"
    "strconv"
    "strings"
    "sync"
    "time"

    "github.com/StabilityNexus/hackhub-explorer/internal/models"
    "github.com/StabilityNexus/hackhub-explorer/internal/store"
)

type MockStore struct {
    mu       sync.Mutex
    MetaMap  map[string]models.TokenMetadata // key: chain|token
    Seen     map[string]time.Time            // key: chain|token -> last attempt
    Upserts  int
    // Err, when set, is returned by every method.
    Err error
}

func NewMockStore() *MockStore {
    return &MockStore{MetaMap: map[string]models.TokenMetadata{}, Seen: map[string]time.Time{}}
}

func (m *MockStore) key(chainID uint64, token string) string {
    return strconv.FormatUint(chainID, 10) + "|" + strings.ToLower(token)
}

func (m *MockStore) UpsertTokenMetadata(ctx context.Context, md models.TokenMetadata) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.Err != nil { return m.Err }
    md.TokenAddress = strings.ToLower(md.TokenAddress)
    k := m.key(md.ChainID, md.TokenAddress)
    if old, ok := m.MetaMap[k]; ok {
        if md.Name == "" { md.Name = old.Name }
        if md.Symbol == "" { md.Symbol = old.Symbol }
        if md.Decimals < 0 { md.Decimals = old.Decimals }
    }
    m.MetaMap[k] = md
    m.Upserts++
    return nil
}

func (m *MockStore) GetTokenMetadata(ctx context.Context, chainID uint64, token string) (models.TokenMetadata, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.Err != nil { return models.TokenMetadata{}, m.Err }
    if v, ok := m.MetaMap[m.key(chainID, token)]; ok { return v, nil }
    return models.TokenMetadata{}, store.ErrNotFound
}

func (m *MockStore) RecordTokens(ctx context.Context, chainID uint64, tokens []string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.Err != nil { return m.Err }
    for _, t := range tokens {
        k := m.key(chainID, t)
        if _, ok := m.Seen[k]; !ok { m.Seen[k] = time.Time{} }
    }
    return nil
}

func (m *MockStore) MissingMetadataTokens(ctx context.Context, chainID uint64, limit int, retryAfter time.Duration) ([]string, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.Err != nil { return nil, m.Err }
    prefix := strconv.FormatUint(chainID, 10) + "|"
    now := time.Now()
    var keys []string
    for k, at := range m.Seen {
        if !strings.HasPrefix(k, prefix) { continue }
        if _, ok := m.MetaMap[k]; ok { continue }
        if !at.IsZero() && now.Sub(at) < retryAfter { continue }
        keys = append(keys, k)
    }
    sort.Strings(keys)
    if len(keys) > limit { keys = keys[:limit] }
    out := make([]string, len(keys))
    for i, k := range keys {
        m.Seen[k] = now
        out[i] = strings.TrimPrefix(k, prefix)
    }
    return out, nil
}
