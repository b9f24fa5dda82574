package cache

import (
    "context"
    "time"

    lru "github.com/hashicorp/golang-lru"
    "github.com/pkg/errors"
)

type memItem struct {
    raw     []byte
    expires time.Time
}

// Memory is a bounded in-process Store. Least recently used records are
// dropped once Size is reached.
type Memory struct {
    lru *lru.Cache
    now func() time.Time
}

func NewMemory(size int) (*Memory, error) {
    c, err := lru.New(size)
    if err != nil {
        return nil, errors.Wrap(err, "memory cache")
    }
    return &Memory{lru: c, now: time.Now}, nil
}

// WithClock replaces the expiry clock, for tests.
func (m *Memory) WithClock(now func() time.Time) *Memory {
    m.now = now
    return m
}

func (m *Memory) Get(_ context.Context, key Key) ([]byte, bool, error) {
    v, ok := m.lru.Get(key.String())
    if !ok { return nil, false, nil }
    it := v.(memItem)
    if !it.expires.IsZero() && !m.now().Before(it.expires) {
        m.lru.Remove(key.String())
        return nil, false, nil
    }
    return append([]byte(nil), it.raw...), true, nil
}

func (m *Memory) Put(_ context.Context, key Key, raw []byte, ttl time.Duration) error {
    it := memItem{raw: append([]byte(nil), raw...)}
    if ttl > 0 { it.expires = m.now().Add(ttl) }
    m.lru.Add(key.String(), it)
    return nil
}

func (m *Memory) Delete(_ context.Context, keys ...Key) error {
    for _, k := range keys {
        m.lru.Remove(k.String())
    }
    return nil
}

func (m *Memory) Len() int { return m.lru.Len() }
