package view

import (
    "context"
    "math/big"
    "strconv"
    "strings"
    "time"

    "github.com/ethereum/go-ethereum/common"
    "go.uber.org/zap"

    "github.com/StabilityNexus/hackhub-explorer/internal/eth"
    "github.com/StabilityNexus/hackhub-explorer/internal/models"
    "github.com/StabilityNexus/hackhub-explorer/internal/units"
)

const NativeSymbol = "ETH"

// TokenResolver provides display metadata for ERC20 tokens.
type TokenResolver interface {
    Token(ctx context.Context, chainID uint64, token common.Address) (symbol string, decimals uint8, err error)
}

// Assembler turns raw contract tuples into view models.
type Assembler struct {
    Tokens TokenResolver
    Log    *zap.Logger
}

func NewAssembler(tokens TokenResolver, log *zap.Logger) *Assembler {
    if log == nil { log = zap.NewNop() }
    return &Assembler{Tokens: tokens, Log: log.Named("assembler")}
}

func unixTime(v *big.Int) time.Time {
    if v == nil || !v.IsInt64() { return time.Unix(0, 0) }
    return time.Unix(v.Int64(), 0)
}

func addrString(a common.Address) string { return strings.ToLower(a.Hex()) }

func (a *Assembler) Hackathon(h eth.HackathonInfo, chainID uint64, now time.Time) models.HackathonView {
    start, end := unixTime(h.StartTime), unixTime(h.EndTime)
    return models.HackathonView{
        Address:      addrString(h.Address),
        ChainID:      chainID,
        Name:         h.Name,
        ImageURL:     h.ImageURL,
        StartTime:    start.Unix(),
        EndTime:      end.Unix(),
        StartDate:    YYYYMMDD(start),
        EndDate:      YYYYMMDD(end),
        Concluded:    h.Concluded,
        Organizer:    addrString(h.Organizer),
        JudgeCount:   nz(h.JudgeCount).Uint64(),
        ProjectCount: nz(h.ProjectCount).Uint64(),
        TotalTokens:  units.NewInt(h.TotalTokens),
        Status:       DeriveStatus(start, end, h.Concluded, now),
    }
}

func (a *Assembler) Hackathons(hs []eth.HackathonInfo, chainID uint64, now time.Time) []models.HackathonView {
    out := make([]models.HackathonView, 0, len(hs))
    for _, h := range hs {
        out = append(out, a.Hackathon(h, chainID, now))
    }
    return out
}

type tokenMeta struct {
    symbol   string
    decimals uint8
    native   bool
}

func (a *Assembler) token(ctx context.Context, chainID uint64, t common.Address, memo map[common.Address]tokenMeta) tokenMeta {
    if m, ok := memo[t]; ok { return m }
    m := tokenMeta{symbol: NativeSymbol, decimals: units.NativeDecimals, native: true}
    if t != (common.Address{}) {
        m = tokenMeta{symbol: ShortAddress(addrString(t)), decimals: units.DefaultDecimals}
        if a.Tokens != nil {
            sym, dec, err := a.Tokens.Token(ctx, chainID, t)
            if err != nil {
                a.Log.Debug("token metadata unavailable, using defaults", zap.String("token", t.Hex()), zap.Error(err))
            } else {
                m.decimals = dec
                if sym != "" { m.symbol = sym }
            }
        }
    }
    memo[t] = m
    return m
}

// Detail assembles the single-hackathon page. Viewer fields are left empty;
// Personalize fills them per request.
func (a *Assembler) Detail(ctx context.Context, d *eth.DetailInfo, chainID uint64, now time.Time) models.HackathonDetail {
    out := models.HackathonDetail{
        Hackathon:  a.Hackathon(d.Hackathon, chainID, now),
        Judges:     []models.JudgeView{},
        Projects:   []models.ProjectView{},
        Sponsors:   []models.SponsorView{},
        Tokens:     []models.TokenInfo{},
    }
    memo := map[common.Address]tokenMeta{}

    for _, p := range d.Tokens {
        m := a.token(ctx, chainID, p.Token, memo)
        out.Tokens = append(out.Tokens, models.TokenInfo{
            Address:    addrString(p.Token),
            Symbol:     m.symbol,
            Decimals:   m.decimals,
            IsNative:   m.native,
            PoolTotal:  units.NewInt(p.Total),
            Formatted:  units.FormatAmount(m.native, p.Total, m.decimals),
            MinDeposit: units.NewInt(p.MinDeposit),
        })
    }

    for i, j := range d.Judges {
        alloc, rem := nz(j.Allocated), nz(j.Remaining)
        if rem.Cmp(alloc) > 0 { rem = alloc }
        out.Judges = append(out.Judges, models.JudgeView{
            Address:         addrString(j.Address),
            Name:            "Judge " + strconv.Itoa(i+1),
            TokensAllocated: units.NewInt(alloc),
            TokensRemaining: units.NewInt(rem),
        })
    }

    total := new(big.Int)
    for _, p := range d.Projects {
        total.Add(total, nz(p.TokensReceived))
    }
    out.TotalVotesCast = units.NewInt(total)

    for _, p := range d.Projects {
        pv := models.ProjectView{
            ID:               p.ID,
            Submitter:        addrString(p.Submitter),
            Recipient:        addrString(p.Recipient),
            SourceCode:       p.SourceCode,
            DocsURL:          p.Docs,
            TokensReceived:   units.NewInt(p.TokensReceived),
            SharePercent:     SharePercent(p.TokensReceived, total),
            EstimatedPayouts: []models.Payout{},
            PrizeClaimed:     p.PrizeClaimed,
        }
        for _, pool := range d.Tokens {
            m := a.token(ctx, chainID, pool.Token, memo)
            amt := EstimatePayout(pool.Total, p.TokensReceived, total)
            pv.EstimatedPayouts = append(pv.EstimatedPayouts, models.Payout{
                Token:     addrString(pool.Token),
                Symbol:    m.symbol,
                Amount:    units.NewInt(amt),
                Formatted: units.FormatAmount(m.native, amt, m.decimals),
            })
        }
        out.Projects = append(out.Projects, pv)
    }

    for _, s := range d.Sponsors {
        sv := models.SponsorView{
            Address:       addrString(s.Address),
            Name:          s.Name,
            ImageURL:      s.Image,
            Contributions: []models.Contribution{},
        }
        if sv.Name == "" { sv.Name = ShortAddress(sv.Address) }
        for _, c := range s.Contributions {
            m := a.token(ctx, chainID, c.Token, memo)
            sv.Contributions = append(sv.Contributions, models.Contribution{
                Token:     addrString(c.Token),
                Symbol:    m.symbol,
                Amount:    units.NewInt(c.Amount),
                Formatted: units.FormatAmount(m.native, c.Amount, m.decimals),
            })
        }
        out.Sponsors = append(out.Sponsors, sv)
    }

    return out
}
