package store

import (
    "context"
    "time"

    "github.com/pkg/errors"

    "github.com/StabilityNexus/hackhub-explorer/internal/models"
)

var ErrNotFound = errors.New("not found")

type Store interface {
    // Metadata
    UpsertTokenMetadata(ctx context.Context, md models.TokenMetadata) error
    GetTokenMetadata(ctx context.Context, chainID uint64, token string) (models.TokenMetadata, error)

    // RecordTokens remembers tokens discovered in hackathon pools.
    RecordTokens(ctx context.Context, chainID uint64, tokens []string) error
    // MissingMetadataTokens claims up to limit seen tokens that have no
    // metadata row and were not attempted within retryAfter.
    MissingMetadataTokens(ctx context.Context, chainID uint64, limit int, retryAfter time.Duration) ([]string, error)
}
