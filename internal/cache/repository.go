package cache

import (
    "context"
    "time"

    "github.com/StabilityNexus/hackhub-explorer/internal/models"
)

// Repository is the only place cache keys are built. It hands out typed
// sources per view kind.
type Repository struct {
    store Store
    ttl   time.Duration
    now   func() time.Time
}

func NewRepository(store Store, ttl time.Duration, now func() time.Time) *Repository {
    if ttl <= 0 { ttl = DefaultTTL }
    if now == nil { now = time.Now }
    return &Repository{store: store, ttl: ttl, now: now}
}

func (r *Repository) TTL() time.Duration { return r.ttl }

func ListingKey(factory string, chainID uint64, page int) Key {
    return Key{Partition: PartitionListings, ID: factory, ChainID: chainID, Page: page}
}

func AllListingsKey(factory string, chainID uint64) Key {
    return Key{Partition: PartitionListings, ID: factory, ChainID: chainID, Page: PageAll}
}

func UserKey(user, tab string, chainID uint64, page int) Key {
    return Key{Partition: PartitionUser, ID: user + ":" + tab, ChainID: chainID, Page: page}
}

func OrganizerKey(organizer string, chainID uint64, page int) Key {
    return Key{Partition: PartitionOrganizer, ID: organizer, ChainID: chainID, Page: page}
}

func DetailKey(hackathon string, chainID uint64) Key {
    return Key{Partition: PartitionDetail, ID: hackathon, ChainID: chainID}
}

func (r *Repository) Pages() Typed[models.HackathonPage] {
    return Typed[models.HackathonPage]{Store: r.store, TTL: r.ttl, Now: r.now}
}

func (r *Repository) Lists() Typed[[]models.HackathonView] {
    return Typed[[]models.HackathonView]{Store: r.store, TTL: r.ttl, Now: r.now}
}

func (r *Repository) Details() Typed[models.HackathonDetail] {
    return Typed[models.HackathonDetail]{Store: r.store, TTL: r.ttl, Now: r.now}
}

func (r *Repository) Listing(ctx context.Context, factory string, chainID uint64, page int) (models.HackathonPage, bool) {
    e, ok, err := r.Pages().Lookup(ctx, ListingKey(factory, chainID, page))
    if err != nil || !ok { return models.HackathonPage{}, false }
    return e.Data, true
}

func (r *Repository) PutListing(ctx context.Context, factory string, chainID uint64, page int, p models.HackathonPage) error {
    return r.Pages().Save(ctx, ListingKey(factory, chainID, page), p)
}

func (r *Repository) Detail(ctx context.Context, hackathon string, chainID uint64) (models.HackathonDetail, bool) {
    e, ok, err := r.Details().Lookup(ctx, DetailKey(hackathon, chainID))
    if err != nil || !ok { return models.HackathonDetail{}, false }
    return e.Data, true
}

func (r *Repository) PutDetail(ctx context.Context, hackathon string, chainID uint64, d models.HackathonDetail) error {
    return r.Details().Save(ctx, DetailKey(hackathon, chainID), d)
}

func (r *Repository) Invalidate(ctx context.Context, keys ...Key) error {
    return r.store.Delete(ctx, keys...)
}
