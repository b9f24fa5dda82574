package mock

import (
    "context"
    "sync"

    "github.com/ethereum/go-ethereum/common"
    "github.com/pkg/errors"

    "github.com/StabilityNexus/hackhub-explorer/internal/eth"
)

// MockReader is an in-memory chain reader. Order lists hackathons in
// factory (oldest first) order; the account maps hold newest-first lists.
type MockReader struct {
    mu            sync.Mutex
    Order         []common.Address
    Infos         map[common.Address]eth.HackathonInfo
    Details       map[common.Address]*eth.DetailInfo
    ByOrganizer   map[common.Address][]common.Address
    ByParticipant map[common.Address][]common.Address
    ByJudge       map[common.Address][]common.Address
    // Err fails every call when set.
    Err error
    // Gate, when set, blocks every call until it is closed.
    Gate chan struct{}

    calls  map[string]int
    probes [][]common.Address
}

func NewMockReader() *MockReader {
    return &MockReader{
        Infos:         map[common.Address]eth.HackathonInfo{},
        Details:       map[common.Address]*eth.DetailInfo{},
        ByOrganizer:   map[common.Address][]common.Address{},
        ByParticipant: map[common.Address][]common.Address{},
        ByJudge:       map[common.Address][]common.Address{},
        calls:         map[string]int{},
    }
}

// Add appends a hackathon to the factory.
func (m *MockReader) Add(h eth.HackathonInfo) {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.Order = append(m.Order, h.Address)
    m.Infos[h.Address] = h
}

func (m *MockReader) SetErr(err error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.Err = err
}

func (m *MockReader) Calls(method string) int {
    m.mu.Lock()
    defer m.mu.Unlock()
    return m.calls[method]
}

func (m *MockReader) Probes() [][]common.Address {
    m.mu.Lock()
    defer m.mu.Unlock()
    return append([][]common.Address(nil), m.probes...)
}

func (m *MockReader) enter(ctx context.Context, method string) error {
    m.mu.Lock()
    m.calls[method]++
    gate := m.Gate
    m.mu.Unlock()
    if gate != nil {
        select {
        case <-gate:
        case <-ctx.Done():
            return ctx.Err()
        }
    }
    m.mu.Lock()
    defer m.mu.Unlock()
    return m.Err
}

func newestFirst(in []common.Address) []common.Address {
    out := make([]common.Address, len(in))
    for i, a := range in { out[len(in)-1-i] = a }
    return out
}

func (m *MockReader) HackathonsPage(ctx context.Context, page, pageSize int) ([]common.Address, int, error) {
    if err := m.enter(ctx, "HackathonsPage"); err != nil { return nil, 0, err }
    m.mu.Lock()
    defer m.mu.Unlock()
    all := newestFirst(m.Order)
    if page < 1 || pageSize < 1 || page-1 >= (len(all)+pageSize-1)/pageSize {
        return []common.Address{}, len(all), nil
    }
    lo := (page - 1) * pageSize
    hi := lo + pageSize
    if hi > len(all) { hi = len(all) }
    return all[lo:hi], len(all), nil
}

func (m *MockReader) AllHackathons(ctx context.Context) ([]common.Address, error) {
    if err := m.enter(ctx, "AllHackathons"); err != nil { return nil, err }
    m.mu.Lock()
    defer m.mu.Unlock()
    return newestFirst(m.Order), nil
}

func (m *MockReader) byAccount(ctx context.Context, method string, src map[common.Address][]common.Address, a common.Address) ([]common.Address, error) {
    if err := m.enter(ctx, method); err != nil { return nil, err }
    m.mu.Lock()
    defer m.mu.Unlock()
    return append([]common.Address{}, src[a]...), nil
}

func (m *MockReader) OrganizerHackathons(ctx context.Context, organizer common.Address) ([]common.Address, error) {
    return m.byAccount(ctx, "OrganizerHackathons", m.ByOrganizer, organizer)
}

func (m *MockReader) ParticipantHackathons(ctx context.Context, user common.Address) ([]common.Address, error) {
    return m.byAccount(ctx, "ParticipantHackathons", m.ByParticipant, user)
}

func (m *MockReader) JudgeHackathons(ctx context.Context, judge common.Address) ([]common.Address, error) {
    return m.byAccount(ctx, "JudgeHackathons", m.ByJudge, judge)
}

func (m *MockReader) Summaries(ctx context.Context, addrs []common.Address) ([]eth.HackathonInfo, error) {
    if err := m.enter(ctx, "Summaries"); err != nil { return nil, err }
    m.mu.Lock()
    defer m.mu.Unlock()
    out := make([]eth.HackathonInfo, 0, len(addrs))
    for _, a := range addrs {
        if h, ok := m.Infos[a]; ok { out = append(out, h) }
    }
    return out, nil
}

func (m *MockReader) Detail(ctx context.Context, addr common.Address, probe []common.Address) (*eth.DetailInfo, error) {
    if err := m.enter(ctx, "Detail"); err != nil { return nil, err }
    m.mu.Lock()
    defer m.mu.Unlock()
    m.probes = append(m.probes, probe)
    d, ok := m.Details[addr]
    if !ok { return nil, errors.Errorf("no contract at %s", addr.Hex()) }
    cp := *d
    return &cp, nil
}
