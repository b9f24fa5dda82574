package mock

import (
    "errors"
    "math/big"

    "github.com/ethereum/go-ethereum/common"

    "github.com/StabilityNexus/hackhub-explorer/internal/eth"
)

type Judge struct {
    Address   common.Address
    Allocated int64
    Remaining int64
}

type Project struct {
    Submitter common.Address
    Recipient common.Address
    Source    string
    Docs      string
    Votes     int64
    Claimed   bool
}

type Pool struct {
    Token common.Address
    Total *big.Int
    Min   *big.Int
}

type Sponsor struct {
    Address common.Address
    Name    string
    Image   string
    Amounts map[common.Address]*big.Int
}

// Hackathon describes one hackathon contract to seed into a ChainNode.
type Hackathon struct {
    Name        string
    Image       string
    Start       int64
    End         int64
    Concluded   bool
    Organizer   common.Address
    TotalTokens int64
    Judges      []Judge
    Projects    []Project
    Pools       []Pool
    Sponsors    []Sponsor
    // Legacy contracts have no getAllSponsors enumerator.
    Legacy bool
}

func b(n int64) *big.Int { return big.NewInt(n) }

// SeedHackathon registers every read method of h at addr.
func SeedHackathon(n *ChainNode, addr common.Address, h Hackathon) {
    a := eth.HackathonABI
    n.Return(addr, a, "name", h.Name)
    n.Return(addr, a, "imageURL", h.Image)
    n.Return(addr, a, "startTime", b(h.Start))
    n.Return(addr, a, "endTime", b(h.End))
    n.Return(addr, a, "concluded", h.Concluded)
    n.Return(addr, a, "organizer", h.Organizer)
    n.Return(addr, a, "judgeCount", b(int64(len(h.Judges))))
    n.Return(addr, a, "projectCount", b(int64(len(h.Projects))))
    n.Return(addr, a, "totalTokens", b(h.TotalTokens))

    judges := make([]common.Address, len(h.Judges))
    byJudge := map[common.Address]Judge{}
    for i, j := range h.Judges {
        judges[i] = j.Address
        byJudge[j.Address] = j
    }
    n.Return(addr, a, "getAllJudges", judges)
    n.Handle(addr, a, "judgeTokens", func(args []interface{}) ([]interface{}, error) {
        return []interface{}{b(byJudge[args[0].(common.Address)].Allocated)}, nil
    })
    n.Handle(addr, a, "remainingJudgeTokens", func(args []interface{}) ([]interface{}, error) {
        return []interface{}{b(byJudge[args[0].(common.Address)].Remaining)}, nil
    })
    n.Handle(addr, a, "getProject", func(args []interface{}) ([]interface{}, error) {
        id := args[0].(*big.Int)
        if !id.IsInt64() || id.Int64() >= int64(len(h.Projects)) {
            return nil, errors.New("no such project")
        }
        p := h.Projects[id.Int64()]
        return []interface{}{p.Submitter, p.Recipient, p.Source, p.Docs, b(p.Votes), p.Claimed}, nil
    })

    tokens := make([]common.Address, len(h.Pools))
    pools := map[common.Address]Pool{}
    for i, p := range h.Pools {
        tokens[i] = p.Token
        pools[p.Token] = p
    }
    n.Return(addr, a, "getDepositedTokensList", tokens)
    n.Handle(addr, a, "totalTokenPool", func(args []interface{}) ([]interface{}, error) {
        return []interface{}{orZero(pools[args[0].(common.Address)].Total)}, nil
    })
    n.Handle(addr, a, "tokenMinAmounts", func(args []interface{}) ([]interface{}, error) {
        return []interface{}{orZero(pools[args[0].(common.Address)].Min)}, nil
    })

    sponsors := make([]common.Address, len(h.Sponsors))
    bySponsor := map[common.Address]Sponsor{}
    for i, s := range h.Sponsors {
        sponsors[i] = s.Address
        bySponsor[s.Address] = s
    }
    if !h.Legacy {
        n.Return(addr, a, "getAllSponsors", sponsors)
    }
    n.Handle(addr, a, "getSponsorTokens", func(args []interface{}) ([]interface{}, error) {
        s := bySponsor[args[0].(common.Address)]
        out := []common.Address{}
        for _, t := range tokens {
            if _, ok := s.Amounts[t]; ok { out = append(out, t) }
        }
        return []interface{}{out}, nil
    })
    n.Handle(addr, a, "getSponsorTokenAmount", func(args []interface{}) ([]interface{}, error) {
        s := bySponsor[args[0].(common.Address)]
        return []interface{}{orZero(s.Amounts[args[1].(common.Address)])}, nil
    })
    n.Handle(addr, a, "getSponsorProfile", func(args []interface{}) ([]interface{}, error) {
        s := bySponsor[args[0].(common.Address)]
        return []interface{}{s.Name, s.Image}, nil
    })
}

// Factory describes the factory contract's registries.
type Factory struct {
    Hackathons    []common.Address // creation order
    ByOrganizer   map[common.Address][]common.Address
    ByParticipant map[common.Address][]common.Address
    ByJudge       map[common.Address][]common.Address
}

func SeedFactory(n *ChainNode, addr common.Address, f Factory) {
    a := eth.FactoryABI
    n.Handle(addr, a, "getHackathonCount", func([]interface{}) ([]interface{}, error) {
        return []interface{}{b(int64(len(f.Hackathons)))}, nil
    })
    n.Handle(addr, a, "getHackathons", func(args []interface{}) ([]interface{}, error) {
        off := args[0].(*big.Int).Int64()
        lim := args[1].(*big.Int).Int64()
        total := int64(len(f.Hackathons))
        if off > total { off = total }
        end := off + lim
        if end > total { end = total }
        return []interface{}{append([]common.Address{}, f.Hackathons[off:end]...)}, nil
    })
    lookup := func(m map[common.Address][]common.Address) MethodFunc {
        return func(args []interface{}) ([]interface{}, error) {
            out := m[args[0].(common.Address)]
            if out == nil { out = []common.Address{} }
            return []interface{}{out}, nil
        }
    }
    n.Handle(addr, a, "getOrganizerHackathons", lookup(f.ByOrganizer))
    n.Handle(addr, a, "getParticipantHackathons", lookup(f.ByParticipant))
    n.Handle(addr, a, "getJudgeHackathons", lookup(f.ByJudge))
}

// SeedERC20 registers a token's metadata methods.
func SeedERC20(n *ChainNode, token common.Address, name, symbol string, decimals uint8) {
    n.Return(token, eth.ERC20ABI, "name", name)
    n.Return(token, eth.ERC20ABI, "symbol", symbol)
    n.Return(token, eth.ERC20ABI, "decimals", decimals)
}

func orZero(v *big.Int) *big.Int {
    if v == nil { return new(big.Int) }
    return v
}
