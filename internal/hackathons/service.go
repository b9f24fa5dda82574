package hackathons

import (
    "context"
    "strconv"
    "strings"
    "sync"
    "time"

    "github.com/ethereum/go-ethereum/common"
    "github.com/pkg/errors"
    "go.uber.org/zap"

    "github.com/StabilityNexus/hackhub-explorer/internal/cache"
    "github.com/StabilityNexus/hackhub-explorer/internal/eth"
    "github.com/StabilityNexus/hackhub-explorer/internal/loader"
    "github.com/StabilityNexus/hackhub-explorer/internal/models"
    "github.com/StabilityNexus/hackhub-explorer/internal/store"
    "github.com/StabilityNexus/hackhub-explorer/internal/view"
)

var ErrInvalidInput = errors.New("invalid input")

const (
    DefaultPageSize = 12
    MaxPageSize     = 100
)

// ChainReader is the subset of eth.Reader the pages need.
type ChainReader interface {
    HackathonsPage(ctx context.Context, page, pageSize int) ([]common.Address, int, error)
    AllHackathons(ctx context.Context) ([]common.Address, error)
    OrganizerHackathons(ctx context.Context, organizer common.Address) ([]common.Address, error)
    ParticipantHackathons(ctx context.Context, user common.Address) ([]common.Address, error)
    JudgeHackathons(ctx context.Context, judge common.Address) ([]common.Address, error)
    Summaries(ctx context.Context, addrs []common.Address) ([]eth.HackathonInfo, error)
    Detail(ctx context.Context, addr common.Address, probe []common.Address) (*eth.DetailInfo, error)
}

type Tab string

const (
    TabParticipating Tab = "participating"
    TabJudging       Tab = "judging"
    TabOrganizing    Tab = "organizing"
)

func (t Tab) Valid() bool {
    switch t {
    case TabParticipating, TabJudging, TabOrganizing:
        return true
    }
    return false
}

type Options struct {
    // Force skips the cache and always waits for the chain.
    Force bool
    // PreferCache answers from a valid cache entry right away and refreshes
    // in the background.
    PreferCache bool
}

// Result is a page payload with its provenance. Stale is set when the chain
// read failed and Data is the cached copy; Err then holds the failure.
type Result[T any] struct {
    Data      T
    FromCache bool
    CachedAt  time.Time
    Stale     bool
    Err       error
}

type Service struct {
    Reader    ChainReader
    Repo      *cache.Repository
    Assembler *view.Assembler
    // Store is optional; pool tokens seen on detail pages are recorded there
    // for the metadata worker.
    Store    store.Store
    Factory  common.Address
    ChainID  uint64
    PageSize int
    Now      func() time.Time
    Log      *zap.Logger

    pages   *loader.Loader[models.HackathonPage]
    lists   *loader.Loader[[]models.HackathonView]
    details *loader.Loader[models.HackathonDetail]

    bg sync.WaitGroup
}

func New(reader ChainReader, repo *cache.Repository, asm *view.Assembler, factory common.Address, chainID uint64, log *zap.Logger) *Service {
    if log == nil { log = zap.NewNop() }
    log = log.Named("hackathons")
    return &Service{
        Reader: reader, Repo: repo, Assembler: asm,
        Factory: factory, ChainID: chainID,
        PageSize: DefaultPageSize, Now: time.Now, Log: log,
        pages:   loader.New[models.HackathonPage](repo.Pages(), log),
        lists:   loader.New[[]models.HackathonView](repo.Lists(), log),
        details: loader.New[models.HackathonDetail](repo.Details(), log),
    }
}

// Wait blocks until background refreshes started by PreferCache finish.
func (s *Service) Wait() { s.bg.Wait() }

func (s *Service) factoryID() string { return strings.ToLower(s.Factory.Hex()) }

func (s *Service) pageSize(n int) (int, error) {
    if n == 0 { return s.PageSize, nil }
    if n < 0 || n > MaxPageSize { return 0, errors.Wrapf(ErrInvalidInput, "page size %d", n) }
    return n, nil
}

func parseAddr(s string) (common.Address, error) {
    a, err := eth.ParseAddress(strings.TrimSpace(s))
    if err != nil { return common.Address{}, errors.Wrapf(ErrInvalidInput, "address %q", s) }
    return a, nil
}

func run[T any](s *Service, ctx context.Context, l *loader.Loader[T], key cache.Key, fetch loader.Fetcher[T], opts Options) (Result[T], error) {
    if opts.PreferCache && !opts.Force {
        if e, ok := l.Cached(ctx, key); ok {
            bctx := context.WithoutCancel(ctx)
            s.bg.Add(1)
            go func() {
                defer s.bg.Done()
                l.Refresh(bctx, key, fetch, nil)
            }()
            return Result[T]{Data: e.Data, FromCache: true, CachedAt: e.WrittenAt()}, nil
        }
    }
    st := l.Load(ctx, key, fetch, loader.Options{Force: opts.Force}, nil)
    if st.Err != nil && !st.HasData { return Result[T]{}, st.Err }
    return Result[T]{
        Data: st.Data, FromCache: st.FromCache, CachedAt: st.CachedAt,
        Stale: st.Err != nil, Err: st.Err,
    }, nil
}

func (s *Service) summaries(ctx context.Context, addrs []common.Address) ([]models.HackathonView, error) {
    if len(addrs) == 0 { return []models.HackathonView{}, nil }
    infos, err := s.Reader.Summaries(ctx, addrs)
    if err != nil { return nil, errors.Wrap(err, "summaries") }
    return s.Assembler.Hackathons(infos, s.ChainID, s.Now()), nil
}

func pageOf[T any](all []T, page, size int) []T {
    if page < 1 || size < 1 || page-1 >= (len(all)+size-1)/size { return []T{} }
    lo := (page - 1) * size
    hi := lo + size
    if hi > len(all) { hi = len(all) }
    return all[lo:hi]
}

type ExploreQuery struct {
    Page     int
    PageSize int
    Search   string
    Status   models.Status
}

func (q ExploreQuery) filtered() bool { return q.Search != "" || q.Status != "" }

// Explore serves the public listing. Without filters pages come from the
// chain one at a time; with filters the full listing is cached once and
// filtered and paginated in process.
func (s *Service) Explore(ctx context.Context, q ExploreQuery, opts Options) (Result[models.HackathonPage], error) {
    if q.Page < 1 { q.Page = 1 }
    size, err := s.pageSize(q.PageSize)
    if err != nil { return Result[models.HackathonPage]{}, err }
    q.PageSize, q.Search = size, strings.ToLower(strings.TrimSpace(q.Search))
    if q.Status != "" && !q.Status.Valid() {
        return Result[models.HackathonPage]{}, errors.Wrapf(ErrInvalidInput, "status %q", q.Status)
    }
    if q.filtered() { return s.exploreFiltered(ctx, q, opts) }

    id := s.factoryID()
    if size != s.PageSize { id += ":s" + strconv.Itoa(size) }
    key := cache.ListingKey(id, s.ChainID, q.Page)
    res, err := run(s, ctx, s.pages, key, func(ctx context.Context) (models.HackathonPage, error) {
        addrs, total, err := s.Reader.HackathonsPage(ctx, q.Page, size)
        if err != nil { return models.HackathonPage{}, errors.Wrap(err, "listing page") }
        items, err := s.summaries(ctx, addrs)
        if err != nil { return models.HackathonPage{}, err }
        return models.HackathonPage{Items: items, Page: q.Page, PageSize: size, Total: total}, nil
    }, opts)
    if err != nil { return res, err }
    res.Data.Items = view.Restatus(res.Data.Items, s.Now())
    return res, nil
}

// All returns the full listing, newest first.
func (s *Service) All(ctx context.Context, opts Options) (Result[[]models.HackathonView], error) {
    key := cache.AllListingsKey(s.factoryID(), s.ChainID)
    res, err := run(s, ctx, s.lists, key, func(ctx context.Context) ([]models.HackathonView, error) {
        addrs, err := s.Reader.AllHackathons(ctx)
        if err != nil { return nil, errors.Wrap(err, "all hackathons") }
        return s.summaries(ctx, addrs)
    }, opts)
    if err != nil { return res, err }
    res.Data = view.Restatus(res.Data, s.Now())
    return res, nil
}

func (s *Service) exploreFiltered(ctx context.Context, q ExploreQuery, opts Options) (Result[models.HackathonPage], error) {
    all, err := s.All(ctx, opts)
    if err != nil { return Result[models.HackathonPage]{}, err }
    var match []models.HackathonView
    for _, h := range all.Data {
        if q.Status != "" && h.Status != q.Status { continue }
        if q.Search != "" && !strings.Contains(strings.ToLower(h.Name), q.Search) { continue }
        match = append(match, h)
    }
    return Result[models.HackathonPage]{
        Data: models.HackathonPage{
            Items: pageOf(match, q.Page, q.PageSize), Page: q.Page, PageSize: q.PageSize, Total: len(match),
        },
        FromCache: all.FromCache, CachedAt: all.CachedAt, Stale: all.Stale, Err: all.Err,
    }, nil
}

func (s *Service) accountPage(ctx context.Context, key cache.Key, page int, list func(context.Context) ([]common.Address, error), opts Options) (Result[models.HackathonPage], error) {
    if page < 1 { page = 1 }
    key.Page = page
    size := s.PageSize
    res, err := run(s, ctx, s.pages, key, func(ctx context.Context) (models.HackathonPage, error) {
        addrs, err := list(ctx)
        if err != nil { return models.HackathonPage{}, errors.Wrap(err, "account hackathons") }
        items, err := s.summaries(ctx, pageOf(addrs, page, size))
        if err != nil { return models.HackathonPage{}, err }
        return models.HackathonPage{Items: items, Page: page, PageSize: size, Total: len(addrs)}, nil
    }, opts)
    if err != nil { return res, err }
    res.Data.Items = view.Restatus(res.Data.Items, s.Now())
    return res, nil
}

// MyHackathons serves the dashboard tabs of user.
func (s *Service) MyHackathons(ctx context.Context, user string, tab Tab, page int, opts Options) (Result[models.HackathonPage], error) {
    addr, err := parseAddr(user)
    if err != nil { return Result[models.HackathonPage]{}, err }
    var list func(context.Context, common.Address) ([]common.Address, error)
    switch tab {
    case TabParticipating:
        list = s.Reader.ParticipantHackathons
    case TabJudging:
        list = s.Reader.JudgeHackathons
    case TabOrganizing:
        list = s.Reader.OrganizerHackathons
    default:
        return Result[models.HackathonPage]{}, errors.Wrapf(ErrInvalidInput, "tab %q", tab)
    }
    key := cache.UserKey(strings.ToLower(addr.Hex()), string(tab), s.ChainID, page)
    return s.accountPage(ctx, key, page, func(ctx context.Context) ([]common.Address, error) {
        return list(ctx, addr)
    }, opts)
}

// OrganizerHackathons serves the organizer lookup page.
func (s *Service) OrganizerHackathons(ctx context.Context, organizer string, page int, opts Options) (Result[models.HackathonPage], error) {
    addr, err := parseAddr(organizer)
    if err != nil { return Result[models.HackathonPage]{}, err }
    key := cache.OrganizerKey(strings.ToLower(addr.Hex()), s.ChainID, page)
    return s.accountPage(ctx, key, page, func(ctx context.Context) ([]common.Address, error) {
        return s.Reader.OrganizerHackathons(ctx, addr)
    }, opts)
}

// Hackathon serves the detail page. viewer may be empty. The cached detail
// is shared by all viewers; the viewer fields are applied on every read.
func (s *Service) Hackathon(ctx context.Context, hackathon, viewer string, opts Options) (Result[models.HackathonDetail], error) {
    addr, who, err := parseDetailArgs(hackathon, viewer)
    if err != nil { return Result[models.HackathonDetail]{}, err }
    res, err := run(s, ctx, s.details, s.detailKey(addr), s.detailFetch(addr, who), opts)
    if err != nil { return res, err }
    res.Data = view.Personalize(res.Data, strings.ToLower(who.Hex()), s.Now())
    return res, nil
}

// WatchHackathon loads the detail page through a loader.Resource and reports
// every state to onChange: the cached copy first when there is one, then the
// chain result.
func (s *Service) WatchHackathon(ctx context.Context, hackathon, viewer string, force bool, onChange func(loader.State[models.HackathonDetail])) (loader.State[models.HackathonDetail], error) {
    addr, who, err := parseDetailArgs(hackathon, viewer)
    if err != nil { return loader.State[models.HackathonDetail]{}, err }
    personalize := func(st loader.State[models.HackathonDetail]) loader.State[models.HackathonDetail] {
        if st.HasData { st.Data = view.Personalize(st.Data, strings.ToLower(who.Hex()), s.Now()) }
        return st
    }
    r := loader.NewResource(s.details, func(st loader.State[models.HackathonDetail]) {
        if onChange != nil { onChange(personalize(st)) }
    })
    st := r.Load(ctx, s.detailKey(addr), s.detailFetch(addr, who), loader.Options{Force: force})
    return personalize(st), nil
}

func parseDetailArgs(hackathon, viewer string) (common.Address, common.Address, error) {
    addr, err := parseAddr(hackathon)
    if err != nil { return common.Address{}, common.Address{}, err }
    var who common.Address
    if viewer != "" {
        if who, err = parseAddr(viewer); err != nil { return common.Address{}, common.Address{}, err }
    }
    return addr, who, nil
}

func (s *Service) detailKey(addr common.Address) cache.Key {
    return cache.DetailKey(strings.ToLower(addr.Hex()), s.ChainID)
}

// InvalidateHackathon drops the cached detail, typically after a write.
func (s *Service) InvalidateHackathon(ctx context.Context, hackathon common.Address) error {
    return s.Repo.Invalidate(ctx, s.detailKey(hackathon))
}

func (s *Service) detailFetch(addr, who common.Address) loader.Fetcher[models.HackathonDetail] {
    return func(ctx context.Context) (models.HackathonDetail, error) {
        var probe []common.Address
        if who != (common.Address{}) { probe = append(probe, who) }
        d, err := s.Reader.Detail(ctx, addr, probe)
        if err != nil { return models.HackathonDetail{}, errors.Wrapf(err, "detail %s", addr.Hex()) }
        s.recordTokens(ctx, d)
        return s.Assembler.Detail(ctx, d, s.ChainID, s.Now()), nil
    }
}

func (s *Service) recordTokens(ctx context.Context, d *eth.DetailInfo) {
    if s.Store == nil { return }
    var tokens []string
    for _, p := range d.Tokens {
        if p.Token != (common.Address{}) { tokens = append(tokens, strings.ToLower(p.Token.Hex())) }
    }
    if err := s.Store.RecordTokens(ctx, s.ChainID, tokens); err != nil {
        s.Log.Debug("record tokens failed", zap.Error(err))
    }
}

// Warm force-refreshes the first pages of the listing and the full listing.
func (s *Service) Warm(ctx context.Context, pages int) error {
    for p := 1; p <= pages; p++ {
        if _, err := s.Explore(ctx, ExploreQuery{Page: p}, Options{Force: true}); err != nil {
            return errors.Wrapf(err, "warm page %d", p)
        }
    }
    _, err := s.All(ctx, Options{Force: true})
    return errors.Wrap(err, "warm all")
}
