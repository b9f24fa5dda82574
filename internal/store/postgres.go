package store

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/pkg/errors"

    "github.com/StabilityNexus/hackhub-explorer/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS token_metadata (
    chain_id      BIGINT NOT NULL,
    token_address TEXT   NOT NULL,
    name          TEXT,
    symbol        TEXT,
    decimals      INTEGER,
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (chain_id, token_address)
);
CREATE TABLE IF NOT EXISTS seen_tokens (
    chain_id      BIGINT NOT NULL,
    token_address TEXT   NOT NULL,
    first_seen    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    attempted_at  TIMESTAMPTZ,
    PRIMARY KEY (chain_id, token_address)
);
`

type Postgres struct {
    pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
    cfg, err := pgxpool.ParseConfig(dsn)
    if err != nil {
        return nil, errors.Wrap(err, "parse dsn")
    }
    pool, err := pgxpool.NewWithConfig(ctx, cfg)
    if err != nil {
        return nil, errors.Wrap(err, "connect")
    }
    return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() { p.pool.Close() }

// Migrate creates the tables if they do not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
    _, err := p.pool.Exec(ctx, schema)
    return errors.Wrap(err, "migrate")
}

// UpsertTokenMetadata inserts or updates ERC20 metadata. Empty fields never
// overwrite known values.
func (p *Postgres) UpsertTokenMetadata(ctx context.Context, md models.TokenMetadata) error {
    var (
        name sql.NullString
        symbol sql.NullString
        decimals sql.NullInt32
    )
    if md.Name != "" { name = sql.NullString{String: md.Name, Valid: true} }
    if md.Symbol != "" { symbol = sql.NullString{String: md.Symbol, Valid: true} }
    if md.Decimals >= 0 { decimals = sql.NullInt32{Int32: md.Decimals, Valid: true} }

    _, err := p.pool.Exec(ctx, `
        INSERT INTO token_metadata (chain_id, token_address, name, symbol, decimals, updated_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        ON CONFLICT (chain_id, token_address)
        DO UPDATE SET name = COALESCE(EXCLUDED.name, token_metadata.name),
                      symbol = COALESCE(EXCLUDED.symbol, token_metadata.symbol),
                      decimals = COALESCE(EXCLUDED.decimals, token_metadata.decimals),
                      updated_at = NOW()
    `, int64(md.ChainID), strings.ToLower(md.TokenAddress), name, symbol, decimals)
    return errors.Wrapf(err, "upsert metadata %s", md.TokenAddress)
}

func (p *Postgres) GetTokenMetadata(ctx context.Context, chainID uint64, token string) (models.TokenMetadata, error) {
    md := models.TokenMetadata{ChainID: chainID}
    err := p.pool.QueryRow(ctx, `
        SELECT token_address, COALESCE(name, ''), COALESCE(symbol, ''), COALESCE(decimals, -1), updated_at
        FROM token_metadata WHERE chain_id = $1 AND token_address = $2
    `, int64(chainID), strings.ToLower(token)).Scan(&md.TokenAddress, &md.Name, &md.Symbol, &md.Decimals, &md.UpdatedAt)
    if errors.Is(err, pgx.ErrNoRows) {
        return models.TokenMetadata{}, ErrNotFound
    }
    if err != nil {
        return models.TokenMetadata{}, errors.Wrapf(err, "get metadata %s", token)
    }
    return md, nil
}

func (p *Postgres) RecordTokens(ctx context.Context, chainID uint64, tokens []string) error {
    if len(tokens) == 0 { return nil }
    lower := make([]string, len(tokens))
    for i, t := range tokens { lower[i] = strings.ToLower(t) }
    _, err := p.pool.Exec(ctx, `
        INSERT INTO seen_tokens (chain_id, token_address)
        SELECT $1, t FROM UNNEST($2::text[]) AS t
        ON CONFLICT (chain_id, token_address) DO NOTHING
    `, int64(chainID), lower)
    return errors.Wrap(err, "record tokens")
}

func (p *Postgres) MissingMetadataTokens(ctx context.Context, chainID uint64, limit int, retryAfter time.Duration) ([]string, error) {
    rows, err := p.pool.Query(ctx, `
        UPDATE seen_tokens s SET attempted_at = NOW()
        WHERE (s.chain_id, s.token_address) IN (
            SELECT t.chain_id, t.token_address
            FROM seen_tokens t
            LEFT JOIN token_metadata m ON m.chain_id = t.chain_id AND m.token_address = t.token_address
            WHERE t.chain_id = $1 AND m.token_address IS NULL
              AND (t.attempted_at IS NULL OR t.attempted_at < NOW() - make_interval(secs => $3))
            ORDER BY t.token_address
            LIMIT $2
        )
        RETURNING s.token_address
    `, int64(chainID), limit, retryAfter.Seconds())
    if err != nil { return nil, errors.Wrap(err, "missing metadata") }
    defer rows.Close()
    var out []string
    for rows.Next() {
        var s string
        if err := rows.Scan(&s); err != nil { return nil, err }
        out = append(out, s)
    }
    return out, rows.Err()
}
