package view

import (
    "context"
    "errors"
    "math/big"
    "testing"
    "time"

    "github.com/ethereum/go-ethereum/common"

    "github.com/StabilityNexus/hackhub-explorer/internal/eth"
    "github.com/StabilityNexus/hackhub-explorer/internal/models"
)

func TestDeriveStatus(t *testing.T) {
    start := time.Unix(1_000, 0)
    end := time.Unix(2_000, 0)
    cases := []struct {
        now       int64
        concluded bool
        want      models.Status
    }{
        {999, false, models.StatusUpcoming},
        {1_000, false, models.StatusAccepting},
        {1_999, false, models.StatusAccepting},
        {2_000, false, models.StatusJudging},
        {9_999, false, models.StatusJudging},
        {500, true, models.StatusConcluded},
        {1_500, true, models.StatusConcluded},
        {5_000, true, models.StatusConcluded},
    }
    for _, c := range cases {
        now := time.Unix(c.now, 0)
        got := DeriveStatus(start, end, c.concluded, now)
        if got != c.want {
            t.Errorf("now=%d concluded=%v: got %s want %s", c.now, c.concluded, got, c.want)
        }
        if again := DeriveStatus(start, end, c.concluded, now); again != got {
            t.Errorf("not deterministic: %s then %s", got, again)
        }
        if !got.Valid() {
            t.Errorf("invalid status %q", got)
        }
    }
}

func TestEstimatePayout(t *testing.T) {
    pool := big.NewInt(1_000)
    if got := EstimatePayout(pool, big.NewInt(1), big.NewInt(3)); got.Int64() != 333 {
        t.Fatalf("floor: got %s want 333", got)
    }
    if got := EstimatePayout(pool, big.NewInt(3), big.NewInt(3)); got.Int64() != 1_000 {
        t.Fatalf("full share: got %s", got)
    }
    huge, _ := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)
    if got := EstimatePayout(huge, big.NewInt(2), big.NewInt(4)); got.Cmp(new(big.Int).Rsh(huge, 1)) != 0 {
        t.Fatalf("big pool: got %s", got)
    }
}

func TestZeroTotalVotesUsesDivisorOne(t *testing.T) {
    pool := big.NewInt(1_000)
    // no votes anywhere: the payout is 0, not a panic
    if got := EstimatePayout(pool, big.NewInt(0), big.NewInt(0)); got.Sign() != 0 {
        t.Fatalf("got %s want 0", got)
    }
    // votes without a total behave as if the total were 1
    if got := EstimatePayout(pool, big.NewInt(2), big.NewInt(0)); got.Int64() != 2_000 {
        t.Fatalf("got %s want 2000", got)
    }
    if got := EstimatePayout(nil, nil, nil); got.Sign() != 0 {
        t.Fatalf("nil inputs: got %s", got)
    }
    if got := SharePercent(big.NewInt(0), big.NewInt(0)); got != "0.00" {
        t.Fatalf("share with no votes: got %s", got)
    }
}

func TestSharePercent(t *testing.T) {
    cases := []struct{ votes, total int64; want string }{
        {1, 3, "33.33"},
        {2, 3, "66.66"},
        {3, 3, "100.00"},
        {1, 8, "12.50"},
    }
    for _, c := range cases {
        if got := SharePercent(big.NewInt(c.votes), big.NewInt(c.total)); got != c.want {
            t.Errorf("%d/%d: got %s want %s", c.votes, c.total, got, c.want)
        }
    }
}

func TestYYYYMMDD(t *testing.T) {
    ts := time.Date(2025, time.March, 7, 23, 59, 0, 0, time.UTC)
    if got := YYYYMMDD(ts); got != 20250307 {
        t.Fatalf("got %d", got)
    }
}

type fakeTokens map[common.Address]uint8

func (f fakeTokens) Token(_ context.Context, _ uint64, t common.Address) (string, uint8, error) {
    d, ok := f[t]
    if !ok { return "", 0, errors.New("no decimals") }
    return "TKN", d, nil
}

func TestAssembleDetail(t *testing.T) {
    org := common.HexToAddress("0x00000000000000000000000000000000000000b1")
    judge := common.HexToAddress("0x00000000000000000000000000000000000000c1")
    p1 := common.HexToAddress("0x00000000000000000000000000000000000000d1")
    p2 := common.HexToAddress("0x00000000000000000000000000000000000000d2")
    usdc := common.HexToAddress("0x00000000000000000000000000000000000000e1")
    broken := common.HexToAddress("0x00000000000000000000000000000000000000e2")
    wei, _ := new(big.Int).SetString("1500000000000000000", 10)

    d := &eth.DetailInfo{
        Hackathon: eth.HackathonInfo{
            Address: common.HexToAddress("0x000000000000000000000000000000000000a001"),
            Name: "Alpha", StartTime: big.NewInt(100), EndTime: big.NewInt(200), Organizer: org,
            JudgeCount: big.NewInt(1), ProjectCount: big.NewInt(2), TotalTokens: big.NewInt(4),
        },
        Judges: []eth.JudgeInfo{{Address: judge, Allocated: big.NewInt(4), Remaining: big.NewInt(9)}},
        Projects: []eth.ProjectInfo{
            {ID: 0, Submitter: p1, Recipient: p1, TokensReceived: big.NewInt(1)},
            {ID: 1, Submitter: p2, Recipient: org, TokensReceived: big.NewInt(3)},
        },
        Tokens: []eth.TokenPool{
            {Token: common.Address{}, Total: wei, MinDeposit: big.NewInt(0)},
            {Token: usdc, Total: wei, MinDeposit: big.NewInt(0)},
            {Token: broken, Total: wei, MinDeposit: big.NewInt(0)},
        },
        Sponsors: []eth.SponsorInfo{{Address: org, Contributions: []eth.SponsorContribution{{Token: usdc, Amount: wei}}}},
    }
    a := NewAssembler(fakeTokens{usdc: 6}, nil)
    out := a.Detail(context.Background(), d, 534351, time.Unix(150, 0))

    if out.Hackathon.Status != models.StatusAccepting || out.Hackathon.ChainID != 534351 {
        t.Fatalf("header: %+v", out.Hackathon)
    }
    if out.Viewer != "" || out.ViewerRole != "" {
        t.Fatalf("assembled detail carries a viewer: %q %q", out.Viewer, out.ViewerRole)
    }
    if got := Personalize(out, p2.Hex(), time.Unix(150, 0)).ViewerRole; got != models.RoleParticipant {
        t.Fatalf("role: %s", got)
    }
    if got := out.Judges[0].TokensRemaining.Big().Int64(); got != 4 {
        t.Fatalf("remaining should be clamped to allocation, got %d", got)
    }
    if out.TotalVotesCast.Big().Int64() != 4 {
        t.Fatalf("total votes: %s", out.TotalVotesCast)
    }
    if out.Tokens[0].Formatted != "1.5" || out.Tokens[0].Symbol != NativeSymbol {
        t.Fatalf("native token: %+v", out.Tokens[0])
    }
    if out.Tokens[1].Formatted != "1500000000000" || out.Tokens[1].Decimals != 6 {
        t.Fatalf("usdc token: %+v", out.Tokens[1])
    }
    if out.Tokens[2].Decimals != 18 || out.Tokens[2].Formatted != "1" {
        t.Fatalf("failed lookup should default to 18 decimals: %+v", out.Tokens[2])
    }
    pay := out.Projects[1].EstimatedPayouts[0]
    if pay.Amount.String() != "1125000000000000000" || pay.Formatted != "1.125" {
        t.Fatalf("payout: %+v", pay)
    }
    if out.Projects[0].SharePercent != "25.00" {
        t.Fatalf("share: %s", out.Projects[0].SharePercent)
    }
    if out.Sponsors[0].Name == "" || out.Sponsors[0].Contributions[0].Symbol != "TKN" {
        t.Fatalf("sponsor: %+v", out.Sponsors[0])
    }
}

func TestPersonalize(t *testing.T) {
    d := models.HackathonDetail{
        Hackathon: models.HackathonView{Organizer: "0xorg", StartTime: 100, EndTime: 200, Status: models.StatusUpcoming},
        Judges:    []models.JudgeView{{Address: "0xjudge"}},
        Projects:  []models.ProjectView{{Submitter: "0xdev"}},
    }
    now := time.Unix(250, 0)
    roles := map[string]models.ViewerRole{
        "0xORG":   models.RoleOrganizer,
        "0xjudge": models.RoleJudge,
        "0xdev":   models.RoleParticipant,
        "0xother": models.RoleVisitor,
        "":        "",
    }
    for viewer, want := range roles {
        got := Personalize(d, viewer, now)
        if got.ViewerRole != want {
            t.Errorf("viewer %q: role %q want %q", viewer, got.ViewerRole, want)
        }
        if got.Hackathon.Status != models.StatusJudging {
            t.Errorf("status not recomputed: %s", got.Hackathon.Status)
        }
    }
    if d.ViewerRole != "" { t.Fatalf("input mutated") }
}
