package cache

import (
    "context"
    "time"

    "github.com/pkg/errors"
    "github.com/redis/go-redis/v9"
)

type Redis struct {
    cli *redis.Client
}

func NewRedis(addr string, db int) *Redis {
    cli := redis.NewClient(&redis.Options{Addr: addr, DB: db})
    return &Redis{cli: cli}
}

func (r *Redis) Close() error { return r.cli.Close() }

func (r *Redis) Ping(ctx context.Context) error { return r.cli.Ping(ctx).Err() }

func (r *Redis) Get(ctx context.Context, key Key) ([]byte, bool, error) {
    b, err := r.cli.Get(ctx, key.String()).Bytes()
    if errors.Is(err, redis.Nil) {
        return nil, false, nil
    }
    if err != nil {
        return nil, false, errors.Wrapf(err, "redis get %s", key)
    }
    return b, true, nil
}

func (r *Redis) Put(ctx context.Context, key Key, raw []byte, ttl time.Duration) error {
    if err := r.cli.Set(ctx, key.String(), raw, ttl).Err(); err != nil {
        return errors.Wrapf(err, "redis set %s", key)
    }
    return nil
}

func (r *Redis) Delete(ctx context.Context, keys ...Key) error {
    if len(keys) == 0 { return nil }
    pipe := r.cli.TxPipeline()
    for _, k := range keys {
        pipe.Del(ctx, k.String())
    }
    _, err := pipe.Exec(ctx)
    return errors.Wrap(err, "redis del")
}
