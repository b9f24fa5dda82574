package cache

import (
    "context"
    "encoding/json"
    "time"

    "github.com/pkg/errors"

    "github.com/StabilityNexus/hackhub-explorer/internal/models"
)

// Encode wraps data in an Entry stamped with now and the key's chain id.
func Encode[T any](key Key, data T, now time.Time) ([]byte, error) {
    b, err := json.Marshal(models.Entry[T]{
        Data:      data,
        Timestamp: now.UnixMilli(),
        ChainID:   key.ChainID,
        Key:       key.String(),
    })
    return b, errors.Wrap(err, "encode entry")
}

func Decode[T any](raw []byte) (models.Entry[T], error) {
    var e models.Entry[T]
    if err := json.Unmarshal(raw, &e); err != nil {
        return e, errors.Wrap(err, "decode entry")
    }
    return e, nil
}

// Valid reports whether an entry written for chainID is still usable at now.
func Valid[T any](e models.Entry[T], chainID uint64, ttl time.Duration, now time.Time) bool {
    if e.ChainID != chainID { return false }
    return now.Sub(e.WrittenAt()) < ttl
}

// Typed reads and writes entries of one view type through a Store.
type Typed[T any] struct {
    Store Store
    TTL   time.Duration
    Now   func() time.Time
}

func (t Typed[T]) now() time.Time {
    if t.Now != nil { return t.Now() }
    return time.Now()
}

func (t Typed[T]) ttl() time.Duration {
    if t.TTL > 0 { return t.TTL }
    return DefaultTTL
}

// Lookup returns the entry under key when it exists and is valid for the
// key's chain. Expired, foreign-chain and undecodable entries are absent;
// the latter is also reported as an error.
func (t Typed[T]) Lookup(ctx context.Context, key Key) (models.Entry[T], bool, error) {
    var zero models.Entry[T]
    raw, ok, err := t.Store.Get(ctx, key)
    if err != nil || !ok { return zero, false, err }
    e, err := Decode[T](raw)
    if err != nil { return zero, false, errors.Wrapf(err, "key %s", key) }
    if !Valid(e, key.ChainID, t.ttl(), t.now()) {
        return zero, false, nil
    }
    return e, true, nil
}

// Save overwrites the entry under key with a fresh timestamp.
func (t Typed[T]) Save(ctx context.Context, key Key, data T) error {
    raw, err := Encode(key, data, t.now())
    if err != nil { return err }
    return t.Store.Put(ctx, key, raw, t.ttl())
}
