package eth

import (
    "context"
    "math/big"

    "github.com/ethereum/go-ethereum/common"
    "github.com/pkg/errors"
    "go.uber.org/zap"
)

// Reader reads the factory and per-hackathon contracts.
type Reader struct {
    c       *Client
    Factory common.Address
    Log     *zap.Logger
    // ListChunk bounds getHackathons(offset, limit) calls.
    ListChunk int
}

func NewReader(c *Client, factory common.Address, log *zap.Logger) *Reader {
    if log == nil { log = zap.NewNop() }
    return &Reader{c: c, Factory: factory, Log: log.Named("reader"), ListChunk: 500}
}

func (r *Reader) ChainID(ctx context.Context) (uint64, error) { return r.c.ChainID(ctx) }

func (r *Reader) HackathonCount(ctx context.Context) (uint64, error) {
    call := NewCall(r.Factory, FactoryABI, "getHackathonCount")
    if err := r.c.Do(ctx, call); err != nil { return 0, err }
    n, err := bigOut(call, 0)
    if err != nil { return 0, err }
    return n.Uint64(), nil
}

func (r *Reader) rangeCall(ctx context.Context, offset, limit uint64) ([]common.Address, error) {
    call := NewCall(r.Factory, FactoryABI, "getHackathons", new(big.Int).SetUint64(offset), new(big.Int).SetUint64(limit))
    if err := r.c.Do(ctx, call); err != nil { return nil, err }
    return outAt[[]common.Address](call, 0)
}

// HackathonsPage returns one page of hackathons, newest first. Pages start
// at 1. The second return value is the total number of hackathons.
func (r *Reader) HackathonsPage(ctx context.Context, page, pageSize int) ([]common.Address, int, error) {
    if page < 1 { page = 1 }
    if pageSize < 1 { return nil, 0, errors.Errorf("invalid page size %d", pageSize) }
    count, err := r.HackathonCount(ctx)
    if err != nil { return nil, 0, err }
    if uint64(page-1) >= (count+uint64(pageSize)-1)/uint64(pageSize) {
        return []common.Address{}, int(count), nil
    }
    skip := uint64(page-1) * uint64(pageSize)
    end := count - skip
    start := uint64(0)
    if end > uint64(pageSize) { start = end - uint64(pageSize) }
    addrs, err := r.rangeCall(ctx, start, end-start)
    if err != nil { return nil, 0, err }
    return reversed(addrs), int(count), nil
}

// AllHackathons returns every hackathon known to the factory, newest first.
func (r *Reader) AllHackathons(ctx context.Context) ([]common.Address, error) {
    count, err := r.HackathonCount(ctx)
    if err != nil { return nil, err }
    chunk := uint64(r.ListChunk)
    if chunk == 0 { chunk = 500 }
    calls := make([]*Call, 0, count/chunk+1)
    for off := uint64(0); off < count; off += chunk {
        lim := chunk
        if off+lim > count { lim = count - off }
        calls = append(calls, NewCall(r.Factory, FactoryABI, "getHackathons", new(big.Int).SetUint64(off), new(big.Int).SetUint64(lim)))
    }
    if err := r.c.BatchCall(ctx, calls); err != nil { return nil, err }
    out := make([]common.Address, 0, count)
    for _, call := range calls {
        addrs, err := outAt[[]common.Address](call, 0)
        if err != nil { return nil, err }
        out = append(out, addrs...)
    }
    return reversed(out), nil
}

func (r *Reader) byAccount(ctx context.Context, method string, account common.Address) ([]common.Address, error) {
    call := NewCall(r.Factory, FactoryABI, method, account)
    if err := r.c.Do(ctx, call); err != nil { return nil, err }
    addrs, err := outAt[[]common.Address](call, 0)
    if err != nil { return nil, err }
    return reversed(addrs), nil
}

func (r *Reader) OrganizerHackathons(ctx context.Context, organizer common.Address) ([]common.Address, error) {
    return r.byAccount(ctx, "getOrganizerHackathons", organizer)
}

func (r *Reader) ParticipantHackathons(ctx context.Context, user common.Address) ([]common.Address, error) {
    return r.byAccount(ctx, "getParticipantHackathons", user)
}

func (r *Reader) JudgeHackathons(ctx context.Context, judge common.Address) ([]common.Address, error) {
    return r.byAccount(ctx, "getJudgeHackathons", judge)
}

var headerMethods = []string{"name", "imageURL", "startTime", "endTime", "concluded", "organizer", "judgeCount", "projectCount", "totalTokens"}

func headerCalls(addr common.Address) []*Call {
    calls := make([]*Call, len(headerMethods))
    for i, m := range headerMethods {
        calls[i] = NewCall(addr, HackathonABI, m)
    }
    return calls
}

func decodeHeader(addr common.Address, calls []*Call) (HackathonInfo, error) {
    h := HackathonInfo{Address: addr}
    var err error
    if h.Name, err = outAt[string](calls[0], 0); err != nil { return h, err }
    if h.ImageURL, err = outAt[string](calls[1], 0); err != nil { return h, err }
    if h.StartTime, err = bigOut(calls[2], 0); err != nil { return h, err }
    if h.EndTime, err = bigOut(calls[3], 0); err != nil { return h, err }
    if h.Concluded, err = outAt[bool](calls[4], 0); err != nil { return h, err }
    if h.Organizer, err = outAt[common.Address](calls[5], 0); err != nil { return h, err }
    if h.JudgeCount, err = bigOut(calls[6], 0); err != nil { return h, err }
    if h.ProjectCount, err = bigOut(calls[7], 0); err != nil { return h, err }
    if h.TotalTokens, err = bigOut(calls[8], 0); err != nil { return h, err }
    return h, nil
}

// Summaries reads the headers of many hackathons in one batch. Contracts
// whose header cannot be decoded are skipped.
func (r *Reader) Summaries(ctx context.Context, addrs []common.Address) ([]HackathonInfo, error) {
    calls := make([]*Call, 0, len(addrs)*len(headerMethods))
    for _, a := range addrs {
        calls = append(calls, headerCalls(a)...)
    }
    if err := r.c.BatchCall(ctx, calls); err != nil { return nil, err }
    out := make([]HackathonInfo, 0, len(addrs))
    n := len(headerMethods)
    for i, a := range addrs {
        h, err := decodeHeader(a, calls[i*n:(i+1)*n])
        if err != nil {
            r.Log.Warn("skip hackathon", zap.String("address", a.Hex()), zap.Error(err))
            continue
        }
        out = append(out, h)
    }
    return out, nil
}

// Detail reads one hackathon in three batched rounds. probe lists extra
// sponsor candidates used when the contract cannot enumerate sponsors.
func (r *Reader) Detail(ctx context.Context, addr common.Address, probe []common.Address) (*DetailInfo, error) {
    // round 1: header and enumerations
    head := headerCalls(addr)
    judgesCall := NewCall(addr, HackathonABI, "getAllJudges")
    tokensCall := NewCall(addr, HackathonABI, "getDepositedTokensList")
    sponsorsCall := NewCall(addr, HackathonABI, "getAllSponsors")
    if err := r.c.BatchCall(ctx, append(head, judgesCall, tokensCall, sponsorsCall)); err != nil {
        return nil, err
    }
    h, err := decodeHeader(addr, head)
    if err != nil { return nil, errors.Wrapf(err, "hackathon %s", addr.Hex()) }
    judges, err := outAt[[]common.Address](judgesCall, 0)
    if err != nil { return nil, err }
    tokens, err := outAt[[]common.Address](tokensCall, 0)
    if err != nil { return nil, err }

    d := &DetailInfo{Hackathon: h}
    sponsors, err := outAt[[]common.Address](sponsorsCall, 0)
    if err != nil {
        r.Log.Debug("sponsor enumerator unavailable, probing", zap.String("address", addr.Hex()), zap.Error(err))
        d.SponsorsProbed = true
        sponsors = uniqueAddrs(append([]common.Address{h.Organizer}, probe...))
    }

    // round 2: per-judge, per-project, per-token, per-sponsor
    var round2 []*Call
    judgeCalls := make([][2]*Call, len(judges))
    for i, j := range judges {
        judgeCalls[i] = [2]*Call{
            NewCall(addr, HackathonABI, "judgeTokens", j),
            NewCall(addr, HackathonABI, "remainingJudgeTokens", j),
        }
        round2 = append(round2, judgeCalls[i][0], judgeCalls[i][1])
    }
    nProjects := h.ProjectCount.Uint64()
    projectCalls := make([]*Call, nProjects)
    for i := uint64(0); i < nProjects; i++ {
        projectCalls[i] = NewCall(addr, HackathonABI, "getProject", new(big.Int).SetUint64(i))
        round2 = append(round2, projectCalls[i])
    }
    tokenCalls := make([][2]*Call, len(tokens))
    for i, t := range tokens {
        tokenCalls[i] = [2]*Call{
            NewCall(addr, HackathonABI, "totalTokenPool", t),
            NewCall(addr, HackathonABI, "tokenMinAmounts", t),
        }
        round2 = append(round2, tokenCalls[i][0], tokenCalls[i][1])
    }
    sponsorCalls := make([][2]*Call, len(sponsors))
    for i, s := range sponsors {
        sponsorCalls[i] = [2]*Call{
            NewCall(addr, HackathonABI, "getSponsorTokens", s),
            NewCall(addr, HackathonABI, "getSponsorProfile", s),
        }
        round2 = append(round2, sponsorCalls[i][0], sponsorCalls[i][1])
    }
    if err := r.c.BatchCall(ctx, round2); err != nil { return nil, err }

    for i, j := range judges {
        alloc, err := bigOut(judgeCalls[i][0], 0)
        if err != nil { return nil, err }
        rem, err := bigOut(judgeCalls[i][1], 0)
        if err != nil { return nil, err }
        d.Judges = append(d.Judges, JudgeInfo{Address: j, Allocated: alloc, Remaining: rem})
    }
    for i, call := range projectCalls {
        p, err := decodeProject(uint64(i), call)
        if err != nil { return nil, err }
        d.Projects = append(d.Projects, p)
    }
    for i, t := range tokens {
        total, err := bigOut(tokenCalls[i][0], 0)
        if err != nil { return nil, err }
        minDep, err := bigOut(tokenCalls[i][1], 0)
        if err != nil { minDep = new(big.Int) }
        d.Tokens = append(d.Tokens, TokenPool{Token: t, Total: total, MinDeposit: minDep})
    }

    // round 3: sponsor amounts
    type pending struct {
        info  SponsorInfo
        calls []*Call
    }
    var round3 []*Call
    var ps []pending
    for i, s := range sponsors {
        st, err := outAt[[]common.Address](sponsorCalls[i][0], 0)
        if err != nil {
            if d.SponsorsProbed { continue }
            return nil, err
        }
        if d.SponsorsProbed && len(st) == 0 { continue }
        info := SponsorInfo{Address: s}
        info.Name, _ = outAt[string](sponsorCalls[i][1], 0)
        info.Image, _ = outAt[string](sponsorCalls[i][1], 1)
        p := pending{info: info}
        for _, t := range st {
            c := NewCall(addr, HackathonABI, "getSponsorTokenAmount", s, t)
            p.calls = append(p.calls, c)
            round3 = append(round3, c)
        }
        ps = append(ps, p)
    }
    if err := r.c.BatchCall(ctx, round3); err != nil { return nil, err }
    for _, p := range ps {
        for _, c := range p.calls {
            amt, err := bigOut(c, 0)
            if err != nil { return nil, err }
            p.info.Contributions = append(p.info.Contributions, SponsorContribution{Token: c.Args[1].(common.Address), Amount: amt})
        }
        d.Sponsors = append(d.Sponsors, p.info)
    }
    return d, nil
}

func decodeProject(id uint64, call *Call) (ProjectInfo, error) {
    p := ProjectInfo{ID: id}
    var err error
    if p.Submitter, err = outAt[common.Address](call, 0); err != nil { return p, err }
    if p.Recipient, err = outAt[common.Address](call, 1); err != nil { return p, err }
    if p.SourceCode, err = outAt[string](call, 2); err != nil { return p, err }
    if p.Docs, err = outAt[string](call, 3); err != nil { return p, err }
    if p.TokensReceived, err = bigOut(call, 4); err != nil { return p, err }
    if p.PrizeClaimed, err = outAt[bool](call, 5); err != nil { return p, err }
    return p, nil
}

func reversed(in []common.Address) []common.Address {
    out := make([]common.Address, len(in))
    for i, a := range in {
        out[len(in)-1-i] = a
    }
    return out
}

func uniqueAddrs(in []common.Address) []common.Address {
    seen := make(map[common.Address]struct{}, len(in))
    out := make([]common.Address, 0, len(in))
    for _, a := range in {
        if a == (common.Address{}) { continue }
        if _, ok := seen[a]; ok { continue }
        seen[a] = struct{}{}
        out = append(out, a)
    }
    return out
}
