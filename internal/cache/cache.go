package cache

import (
    "context"
    "strconv"
    "strings"
    "time"
)

const DefaultTTL = 5 * time.Minute

// Partition scopes keys by the kind of view they hold.
type Partition string

const (
    PartitionListings  Partition = "listings"
    PartitionUser      Partition = "user"
    PartitionOrganizer Partition = "organizer"
    PartitionDetail    Partition = "detail"
)

// PageAll marks a key holding every matching record instead of one page.
const PageAll = -1

// Key identifies one cached view: entity id + chain id + optional page.
// Page 0 means the view is not paginated.
type Key struct {
    Partition Partition
    ID        string
    ChainID   uint64
    Page      int
}

func (k Key) String() string {
    var sb strings.Builder
    sb.WriteString("hackhub:")
    sb.WriteString(string(k.Partition))
    sb.WriteByte(':')
    sb.WriteString(strings.ToLower(k.ID))
    sb.WriteByte(':')
    sb.WriteString(strconv.FormatUint(k.ChainID, 10))
    switch {
    case k.Page == PageAll:
        sb.WriteString(":all")
    case k.Page > 0:
        sb.WriteString(":p")
        sb.WriteString(strconv.Itoa(k.Page))
    }
    return sb.String()
}

// Store is a byte-level key-value store with per-record expiration.
// A missing record is (nil, false, nil).
type Store interface {
    Get(ctx context.Context, key Key) (raw []byte, ok bool, err error)
    Put(ctx context.Context, key Key, raw []byte, ttl time.Duration) error
    Delete(ctx context.Context, keys ...Key) error
}
